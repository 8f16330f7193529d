package store

import (
	"time"

	"github.com/pvictorino/twin-sync-golang/pkg/entities"
)

const lastKnownValuePath = "/lastKnownValue"

// PatchOperation is one (op, path, value) triple of a patch document.
type PatchOperation struct {
	Op    string      `json:"op"`
	Path  string      `json:"path"`
	Value interface{} `json:"value"`
}

// LastKnownValue is the (value, timestamp) record kept on each twin.
type LastKnownValue struct {
	Value     interface{} `json:"value"`
	Timestamp string      `json:"timestamp"`
}

// TwinMetadata carries the model reference of a twin document.
type TwinMetadata struct {
	Model string `json:"$model"`
}

// TwinDocument is the full create-or-replace payload for a twin.
type TwinDocument struct {
	Metadata       TwinMetadata   `json:"$metadata"`
	LastKnownValue LastKnownValue `json:"lastKnownValue"`
}

func newLastKnownValue(reading entities.Reading, changedAt time.Time) LastKnownValue {
	return LastKnownValue{
		Value:     reading.Value(),
		Timestamp: changedAt.Format(time.RFC3339Nano),
	}
}

// ReplaceLastKnownValue patches value and timestamp of an existing
// lastKnownValue record.
func ReplaceLastKnownValue(reading entities.Reading, changedAt time.Time) []PatchOperation {
	record := newLastKnownValue(reading, changedAt)
	return []PatchOperation{
		{Op: "replace", Path: lastKnownValuePath + "/value", Value: record.Value},
		{Op: "replace", Path: lastKnownValuePath + "/timestamp", Value: record.Timestamp},
	}
}

// AddLastKnownValue adds the whole lastKnownValue object, used when the
// twin exists but the record was never initialized.
func AddLastKnownValue(reading entities.Reading, changedAt time.Time) []PatchOperation {
	return []PatchOperation{
		{Op: "add", Path: lastKnownValuePath, Value: newLastKnownValue(reading, changedAt)},
	}
}

// NewTwinDocument builds the initial document for a twin that does not
// exist yet.
func NewTwinDocument(modelID string, reading entities.Reading, changedAt time.Time) TwinDocument {
	return TwinDocument{
		Metadata:       TwinMetadata{Model: modelID},
		LastKnownValue: newLastKnownValue(reading, changedAt),
	}
}
