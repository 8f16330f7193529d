package twin

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pvictorino/twin-sync-golang/pkg/entities"
	"github.com/pvictorino/twin-sync-golang/pkg/gateways/twin/store"
)

func createNullLogger() (*logrus.Entry, *test.Hook) {
	log, hook := test.NewNullLogger()
	logger := log.WithFields(logrus.Fields{
		"Context": "testing",
	})
	return logger, hook
}

func createProcessor(client store.Client) *Processor {
	logger, _ := createNullLogger()
	return NewProcessor(entities.DefaultClassification(), client, logger)
}

func createEventPayload(entityID, state, deviceClass, lastChanged string) json.RawMessage {
	event := map[string]interface{}{
		"entity_id":    entityID,
		"state":        state,
		"attributes":   map[string]interface{}{},
		"last_changed": lastChanged,
	}
	if deviceClass != "" {
		event["attributes"] = map[string]interface{}{"device_class": deviceClass}
	}
	payload, _ := json.Marshal(event)
	return payload
}

func mustChangedAt(value string) time.Time {
	changedAt, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		panic(err)
	}
	return changedAt
}

func TestGivenTemperatureEventThenReplaceLastKnownValue(t *testing.T) {
	clientMock := new(store.ClientMock)
	changedAt := mustChangedAt("2024-01-01T00:00:00Z")
	expectedPatch := store.ReplaceLastKnownValue(entities.NumericReading(21.5), changedAt)
	clientMock.On("PatchTwin", mock.Anything, "kitchen_temp", expectedPatch).Return(store.AppliedOutcome())

	processor := createProcessor(clientMock)
	payload := createEventPayload("sensor.kitchen_temp", "21.5", "temperature", "2024-01-01T00:00:00Z")
	results := processor.ProcessBatch(context.Background(), []json.RawMessage{payload})

	assert.Len(t, results, 1)
	assert.Equal(t, StatusApplied, results[0].Status)
	assert.Equal(t, "kitchen_temp", results[0].TwinID)
	clientMock.AssertExpectations(t)
}

type motionValueTestCase struct {
	state    string
	expected bool
}

var motionValueTestCases = []motionValueTestCase{
	{state: "on", expected: true},
	{state: "ON", expected: true},
	{state: "On", expected: true},
	{state: "off", expected: false},
}

func TestGivenMotionEventThenBooleanValue(t *testing.T) {
	for _, test := range motionValueTestCases {
		clientMock := new(store.ClientMock)
		changedAt := mustChangedAt("2024-01-01T00:00:00Z")
		expectedPatch := store.ReplaceLastKnownValue(entities.BooleanReading(test.expected), changedAt)
		clientMock.On("PatchTwin", mock.Anything, "hall_motion", expectedPatch).Return(store.AppliedOutcome())

		processor := createProcessor(clientMock)
		payload := createEventPayload("binary_sensor.hall_motion", test.state, "motion", "2024-01-01T00:00:00Z")
		results := processor.ProcessBatch(context.Background(), []json.RawMessage{payload})

		assert.Equal(t, StatusApplied, results[0].Status, test.state)
		clientMock.AssertExpectations(t)
	}
}

func TestGivenMissingDeviceClassThenNoRegistryCall(t *testing.T) {
	clientMock := new(store.ClientMock)
	processor := createProcessor(clientMock)

	payload := createEventPayload("sensor.kitchen_temp", "21.5", "", "2024-01-01T00:00:00Z")
	results := processor.ProcessBatch(context.Background(), []json.RawMessage{payload})

	assert.Equal(t, StatusSkipped, results[0].Status)
	assert.NoError(t, results[0].Err)
	clientMock.AssertNumberOfCalls(t, "PatchTwin", 0)
	clientMock.AssertNumberOfCalls(t, "CreateTwin", 0)
}

func TestGivenUnknownDeviceClassThenNoRegistryCall(t *testing.T) {
	clientMock := new(store.ClientMock)
	processor := createProcessor(clientMock)

	payload := createEventPayload("sensor.kitchen_humidity", "55", "humidity", "2024-01-01T00:00:00Z")
	results := processor.ProcessBatch(context.Background(), []json.RawMessage{payload})

	assert.Equal(t, StatusSkipped, results[0].Status)
	clientMock.AssertNumberOfCalls(t, "PatchTwin", 0)
}

func TestGivenNonNumericStateThenSkipWithoutError(t *testing.T) {
	clientMock := new(store.ClientMock)
	processor := createProcessor(clientMock)

	payload := createEventPayload("sensor.kitchen_temp", "unavailable", "temperature", "2024-01-01T00:00:00Z")
	results := processor.ProcessBatch(context.Background(), []json.RawMessage{payload})

	assert.Equal(t, StatusSkipped, results[0].Status)
	assert.NoError(t, results[0].Err)
	clientMock.AssertNumberOfCalls(t, "PatchTwin", 0)
}

func TestGivenMalformedTimestampThenFailure(t *testing.T) {
	clientMock := new(store.ClientMock)
	processor := createProcessor(clientMock)

	payload := createEventPayload("sensor.kitchen_temp", "21.5", "temperature", "yesterday")
	results := processor.ProcessBatch(context.Background(), []json.RawMessage{payload})

	assert.Equal(t, StatusFailed, results[0].Status)
	assert.Error(t, results[0].Err)
	clientMock.AssertNumberOfCalls(t, "PatchTwin", 0)
}

func TestGivenMalformedPayloadThenFailure(t *testing.T) {
	clientMock := new(store.ClientMock)
	processor := createProcessor(clientMock)

	results := processor.ProcessBatch(context.Background(), []json.RawMessage{json.RawMessage("{not json")})

	assert.Equal(t, StatusFailed, results[0].Status)
	assert.Error(t, results[0].Err)
}

func TestGivenEntityIDWithoutDomainThenFailure(t *testing.T) {
	clientMock := new(store.ClientMock)
	processor := createProcessor(clientMock)

	payload := createEventPayload("kitchen_temp", "21.5", "temperature", "2024-01-01T00:00:00Z")
	results := processor.ProcessBatch(context.Background(), []json.RawMessage{payload})

	assert.Equal(t, StatusFailed, results[0].Status)
	clientMock.AssertNumberOfCalls(t, "PatchTwin", 0)
}

func TestGivenTwinNotFoundThenCreateTwin(t *testing.T) {
	clientMock := new(store.ClientMock)
	changedAt := mustChangedAt("2024-01-01T00:00:00Z")
	reading := entities.NumericReading(21.5)
	expectedDocument := store.NewTwinDocument("dtmi:twinsync:sensor:Temperature;1", reading, changedAt)

	clientMock.On("PatchTwin", mock.Anything, "kitchen_temp", store.ReplaceLastKnownValue(reading, changedAt)).Return(store.NotFoundOutcome())
	clientMock.On("CreateTwin", mock.Anything, "kitchen_temp", expectedDocument).Return(store.AppliedOutcome())

	processor := createProcessor(clientMock)
	payload := createEventPayload("sensor.kitchen_temp", "21.5", "temperature", "2024-01-01T00:00:00Z")
	results := processor.ProcessBatch(context.Background(), []json.RawMessage{payload})

	assert.Equal(t, StatusCreated, results[0].Status)
	assert.NoError(t, results[0].Err)
	clientMock.AssertExpectations(t)
}

func TestGivenTwinNotFoundAndCreateFailsThenFailure(t *testing.T) {
	clientMock := new(store.ClientMock)
	clientMock.On("PatchTwin", mock.Anything, "kitchen_temp", mock.Anything).Return(store.NotFoundOutcome())
	clientMock.On("CreateTwin", mock.Anything, "kitchen_temp", mock.Anything).Return(store.FailedOutcome(errors.New("registry down")))

	processor := createProcessor(clientMock)
	payload := createEventPayload("sensor.kitchen_temp", "21.5", "temperature", "2024-01-01T00:00:00Z")
	results := processor.ProcessBatch(context.Background(), []json.RawMessage{payload})

	assert.Equal(t, StatusFailed, results[0].Status)
	assert.Contains(t, results[0].Err.Error(), "registry down")
}

func TestGivenUninitializedFieldThenAddLastKnownValue(t *testing.T) {
	clientMock := new(store.ClientMock)
	changedAt := mustChangedAt("2024-01-01T00:00:00Z")
	reading := entities.BooleanReading(true)

	clientMock.On("PatchTwin", mock.Anything, "hall_motion", store.ReplaceLastKnownValue(reading, changedAt)).Return(store.UninitializedFieldOutcome())
	clientMock.On("PatchTwin", mock.Anything, "hall_motion", store.AddLastKnownValue(reading, changedAt)).Return(store.AppliedOutcome())

	processor := createProcessor(clientMock)
	payload := createEventPayload("binary_sensor.hall_motion", "on", "motion", "2024-01-01T00:00:00Z")
	results := processor.ProcessBatch(context.Background(), []json.RawMessage{payload})

	assert.Equal(t, StatusInitialized, results[0].Status)
	clientMock.AssertExpectations(t)
}

func TestGivenRecognizedClassWithoutModelThenCreateFailsExplicitly(t *testing.T) {
	clientMock := new(store.ClientMock)
	clientMock.On("PatchTwin", mock.Anything, "kitchen_pressure", mock.Anything).Return(store.NotFoundOutcome())

	classification := entities.NewClassification(map[string]entities.ClassRule{
		"pressure": {Kind: entities.ValueNumeric},
	})
	logger, _ := createNullLogger()
	processor := NewProcessor(classification, clientMock, logger)

	payload := createEventPayload("sensor.kitchen_pressure", "1013.2", "pressure", "2024-01-01T00:00:00Z")
	results := processor.ProcessBatch(context.Background(), []json.RawMessage{payload})

	assert.Equal(t, StatusFailed, results[0].Status)
	assert.Error(t, results[0].Err)
	clientMock.AssertNumberOfCalls(t, "CreateTwin", 0)
}

func TestGivenFailuresInBatchThenRemainingEventsStillAttempted(t *testing.T) {
	clientMock := new(store.ClientMock)
	clientMock.On("PatchTwin", mock.Anything, "ok_one", mock.Anything).Return(store.AppliedOutcome())
	clientMock.On("PatchTwin", mock.Anything, "broken", mock.Anything).Return(store.FailedOutcome(errors.New("boom")))
	clientMock.On("PatchTwin", mock.Anything, "ok_two", mock.Anything).Return(store.AppliedOutcome())

	processor := createProcessor(clientMock)
	payloads := []json.RawMessage{
		createEventPayload("sensor.bad_clock", "21.5", "temperature", "yesterday"),
		createEventPayload("sensor.ok_one", "21.5", "temperature", "2024-01-01T00:00:00Z"),
		createEventPayload("sensor.broken", "21.5", "temperature", "2024-01-01T00:00:00Z"),
		createEventPayload("sensor.ok_two", "21.5", "temperature", "2024-01-01T00:00:00Z"),
	}
	results := processor.ProcessBatch(context.Background(), payloads)

	assert.Len(t, results, 4)
	assert.Equal(t, StatusFailed, results[0].Status)
	assert.Equal(t, StatusApplied, results[1].Status)
	assert.Equal(t, StatusFailed, results[2].Status)
	assert.Equal(t, StatusApplied, results[3].Status)

	err := FoldResults(results)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Contains(t, err.Error(), "last_changed")
}

func TestGivenNoFailuresThenFoldResultsNil(t *testing.T) {
	results := []EventResult{
		{TwinID: "a", Status: StatusApplied},
		{TwinID: "b", Status: StatusSkipped},
	}
	assert.NoError(t, FoldResults(results))
}

func TestGivenSingleFailureThenFoldResultsReturnsIt(t *testing.T) {
	failure := errors.New("single failure")
	results := []EventResult{
		{TwinID: "a", Status: StatusApplied},
		{TwinID: "b", Status: StatusFailed, Err: failure},
	}
	err := FoldResults(results)
	assert.Equal(t, failure, err)
}

func TestGivenMultipleFailuresThenFoldResultsAggregatesAll(t *testing.T) {
	first := errors.New("first failure")
	second := errors.New("second failure")
	results := []EventResult{
		{TwinID: "a", Status: StatusFailed, Err: first},
		{TwinID: "b", Status: StatusApplied},
		{TwinID: "c", Status: StatusFailed, Err: second},
	}
	err := FoldResults(results)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, first))
	assert.True(t, errors.Is(err, second))
	assert.Equal(t, 2, strings.Count(err.Error(), "failure"))
}
