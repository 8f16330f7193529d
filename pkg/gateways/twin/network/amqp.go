package network

import (
	"time"

	"github.com/cenkalti/backoff"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	exchangeTypeDirect = "direct"

	ExchangeSensor = "sensor"

	durable          = true
	deleteWhenUnused = false
	exclusive        = false
	noWait           = false
	internal         = false
	noAck            = true
	noLocal          = false
	consumerTag      = ""
)

// Messaging is the consuming side of the broker connection.
type Messaging interface {
	Start() error
	Stop() error
	OnMessage(msgChan chan InMsg, queueName, exchangeName, exchangeType, key string) error
}

// InMsg carries one delivery off the broker.
type InMsg struct {
	Exchange      string
	RoutingKey    string
	ReplyTo       string
	CorrelationID string
	Headers       map[string]interface{}
	Body          []byte
}

type AMQPHandler struct {
	conn connection
	log  *logrus.Entry
}

func NewAMQPHandler(conn connection, log *logrus.Entry) *AMQPHandler {
	return &AMQPHandler{conn: conn, log: log}
}

func (a *AMQPHandler) Start() error {
	err := backoff.Retry(a.connect, backoff.NewExponentialBackOff())
	if err != nil {
		return err
	}
	go a.notifyWhenClosed()
	return nil
}

func (a *AMQPHandler) Stop() error {
	if a.conn.isClosed() {
		return nil
	}
	if err := a.conn.closeChannel(); err != nil {
		return err
	}
	return a.conn.close()
}

func (a *AMQPHandler) OnMessage(msgChan chan InMsg, queueName, exchangeName, exchangeType, key string) error {
	err := a.conn.exchangeDeclare(exchangeName, exchangeType)
	if err != nil {
		return err
	}

	err = a.conn.queueDeclare(queueName)
	if err != nil {
		return err
	}

	err = a.conn.queueBind(
		queueName,
		key,
		exchangeName,
		noWait,
		nil, // arguments
	)
	if err != nil {
		return err
	}

	deliveries, err := a.conn.consume(
		queueName,
		consumerTag,
		noAck,
		exclusive,
		noLocal,
		noWait,
		nil, // arguments
	)
	if err != nil {
		return err
	}

	go convertDeliveryToInMsg(deliveries, msgChan)

	return nil
}

func (a *AMQPHandler) connect() error {
	if err := a.conn.connect(); err != nil {
		return err
	}
	return a.conn.createChannel()
}

func (a *AMQPHandler) notifyWhenClosed() {
	errReason := <-a.conn.notifyClose(make(chan *amqp.Error))
	if errReason == nil {
		return
	}

	reconnectionBackOff := backoff.NewExponentialBackOff()
	reconnectionBackOff.InitialInterval = 30 * time.Second
	reconnectionBackOff.MaxInterval = 5 * time.Minute
	reconnectionBackOff.Multiplier = 1.7
	reconnectionBackOff.MaxElapsedTime = 0 // retry until reconnected

	a.log.Errorln("broker connection closed:", errReason)
	if err := backoff.Retry(a.connect, reconnectionBackOff); err != nil {
		a.log.Errorln("broker reconnection failed:", err)
		return
	}
	a.log.Println("broker reconnection successful")
	go a.notifyWhenClosed()
}

func convertDeliveryToInMsg(deliveries <-chan amqp.Delivery, outMsg chan InMsg) {
	for d := range deliveries {
		outMsg <- InMsg{d.Exchange, d.RoutingKey, d.ReplyTo, d.CorrelationId, d.Headers, d.Body}
	}
}
