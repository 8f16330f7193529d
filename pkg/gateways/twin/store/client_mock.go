package store

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type ClientMock struct {
	mock.Mock
}

func (m *ClientMock) PatchTwin(ctx context.Context, twinID string, patch []PatchOperation) Outcome {
	args := m.Called(ctx, twinID, patch)
	return args.Get(0).(Outcome)
}

func (m *ClientMock) CreateTwin(ctx context.Context, twinID string, twin TwinDocument) Outcome {
	args := m.Called(ctx, twinID, twin)
	return args.Get(0).(Outcome)
}
