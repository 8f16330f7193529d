package twin

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pvictorino/twin-sync-golang/pkg/entities"
	"github.com/pvictorino/twin-sync-golang/pkg/gateways/twin/network"
	"github.com/pvictorino/twin-sync-golang/pkg/gateways/twin/store"
)

// Integration wires the broker intake to the batch processor and owns the
// consuming loop.
type Integration struct {
	amqp      network.Messaging
	processor *Processor
	msgChan   chan network.InMsg
	log       *logrus.Entry
}

func NewIntegration(conf entities.IntegrationTwinConfig, log *logrus.Entry) (*Integration, error) {
	amqpConnection := network.NewAmqpConnection(conf.AMQPURL)
	amqp := network.NewAMQPHandler(amqpConnection, log)
	if err := amqp.Start(); err != nil {
		return nil, errors.Wrap(err, "start broker connection")
	}

	msgChan := make(chan network.InMsg)
	subscriber := network.NewMsgSubscriber(amqp)
	if err := subscriber.SubscribeToStateEvents(msgChan); err != nil {
		return nil, errors.Wrap(err, "subscribe to state events")
	}

	client := store.NewHTTPClient(conf.TwinStoreURL, conf.TwinStoreToken)
	processor := NewProcessor(entities.DefaultClassification(), client, log)

	integration := &Integration{
		amqp:      amqp,
		processor: processor,
		msgChan:   msgChan,
		log:       log,
	}
	go integration.consume()

	return integration, nil
}

func (i *Integration) consume() {
	for message := range i.msgChan {
		i.handleDelivery(context.Background(), message)
	}
}

func (i *Integration) Close() error {
	return i.amqp.Stop()
}
