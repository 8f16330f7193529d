package network

import (
	"github.com/stretchr/testify/mock"
)

type AmqpMock struct {
	mock.Mock
}

func (m *AmqpMock) Start() error {
	return nil
}

func (m *AmqpMock) Stop() error { return nil }

func (m *AmqpMock) OnMessage(msgChan chan InMsg, queueName, exchangeName, exchangeType, key string) error {
	args := m.Called(msgChan, queueName, exchangeName, exchangeType, key)
	return args.Error(0)
}
