package network

const (
	queueName              = "twin-sync-state-events"
	BindingKeyStateChanged = "sensor.state.changed"
)

type Subscriber interface {
	SubscribeToStateEvents(msgChan chan InMsg) error
}

type msgSubscriber struct {
	amqp Messaging
}

func NewMsgSubscriber(amqp Messaging) Subscriber {
	return &msgSubscriber{amqp}
}

func (ms *msgSubscriber) SubscribeToStateEvents(msgChan chan InMsg) error {
	return ms.amqp.OnMessage(msgChan, queueName, ExchangeSensor, exchangeTypeDirect, BindingKeyStateChanged)
}
