package twin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pvictorino/twin-sync-golang/pkg/entities"
	"github.com/pvictorino/twin-sync-golang/pkg/gateways/twin/store"
)

// EventStatus says what happened to one event of a batch.
type EventStatus int

const (
	StatusSkipped EventStatus = iota
	StatusApplied
	StatusCreated
	StatusInitialized
	StatusFailed
)

// EventResult is the outcome of one event. Err is set only for
// StatusFailed.
type EventResult struct {
	TwinID string
	Status EventStatus
	Err    error
}

// Processor maps sensor state events onto twin registry updates. The
// classification table is fixed at construction.
type Processor struct {
	classification entities.Classification
	store          store.Client
	log            *logrus.Entry
}

func NewProcessor(classification entities.Classification, client store.Client, log *logrus.Entry) *Processor {
	return &Processor{classification: classification, store: client, log: log}
}

// ProcessBatch handles every event in input order; a single event failure
// never aborts the rest. The returned slice has one entry per payload.
func (p *Processor) ProcessBatch(ctx context.Context, payloads []json.RawMessage) []EventResult {
	results := make([]EventResult, 0, len(payloads))
	for _, payload := range payloads {
		results = append(results, p.processEvent(ctx, payload))
	}
	return results
}

func (p *Processor) processEvent(ctx context.Context, payload []byte) (result EventResult) {
	defer func() {
		if r := recover(); r != nil {
			result = EventResult{Status: StatusFailed, Err: fmt.Errorf("panic while processing event: %v", r)}
		}
	}()

	var event entities.StateEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return EventResult{Status: StatusFailed, Err: pkgerrors.Wrap(err, "decode state event")}
	}
	if !event.HasRequiredFields() {
		p.log.Debugln("event missing required fields, nothing to do")
		return EventResult{Status: StatusSkipped}
	}

	_, twinID, ok := entities.SplitEntityID(event.EntityID)
	if !ok {
		return EventResult{Status: StatusFailed, Err: fmt.Errorf("malformed entity id %q", event.EntityID)}
	}

	changedAt, err := event.ChangedAt()
	if err != nil {
		return EventResult{TwinID: twinID, Status: StatusFailed, Err: pkgerrors.Wrapf(err, "parse last_changed for %s", twinID)}
	}

	if event.Attributes.DeviceClass == "" {
		return EventResult{TwinID: twinID, Status: StatusSkipped}
	}

	reading := p.classification.Classify(event.Attributes.DeviceClass, event.State)
	if reading.Kind == entities.ReadingUnmapped {
		p.log.Debugln("state of", event.EntityID, "could not be mapped, nothing to do")
		return EventResult{TwinID: twinID, Status: StatusSkipped}
	}

	return p.applyUpdate(ctx, twinID, event.Attributes.DeviceClass, reading, changedAt)
}

func (p *Processor) applyUpdate(ctx context.Context, twinID, deviceClass string, reading entities.Reading, changedAt time.Time) EventResult {
	outcome := p.store.PatchTwin(ctx, twinID, store.ReplaceLastKnownValue(reading, changedAt))
	switch outcome.Kind {
	case store.Applied:
		return EventResult{TwinID: twinID, Status: StatusApplied}
	case store.NotFound:
		return p.createTwin(ctx, twinID, deviceClass, reading, changedAt)
	case store.UninitializedField:
		return p.initializeLastKnownValue(ctx, twinID, reading, changedAt)
	default:
		return EventResult{TwinID: twinID, Status: StatusFailed, Err: outcomeError("update", twinID, outcome)}
	}
}

func (p *Processor) createTwin(ctx context.Context, twinID, deviceClass string, reading entities.Reading, changedAt time.Time) EventResult {
	modelID, err := p.classification.ModelID(deviceClass)
	if err != nil {
		return EventResult{TwinID: twinID, Status: StatusFailed, Err: err}
	}

	outcome := p.store.CreateTwin(ctx, twinID, store.NewTwinDocument(modelID, reading, changedAt))
	if outcome.Kind != store.Applied {
		return EventResult{TwinID: twinID, Status: StatusFailed, Err: outcomeError("create", twinID, outcome)}
	}
	p.log.Println("created twin", twinID)
	return EventResult{TwinID: twinID, Status: StatusCreated}
}

func (p *Processor) initializeLastKnownValue(ctx context.Context, twinID string, reading entities.Reading, changedAt time.Time) EventResult {
	outcome := p.store.PatchTwin(ctx, twinID, store.AddLastKnownValue(reading, changedAt))
	if outcome.Kind != store.Applied {
		return EventResult{TwinID: twinID, Status: StatusFailed, Err: outcomeError("initialize", twinID, outcome)}
	}
	p.log.Println("initialized lastKnownValue on twin", twinID)
	return EventResult{TwinID: twinID, Status: StatusInitialized}
}

func outcomeError(action, twinID string, outcome store.Outcome) error {
	if outcome.Err != nil {
		return pkgerrors.Wrapf(outcome.Err, "%s twin %s", action, twinID)
	}
	return fmt.Errorf("%s twin %s: unexpected registry outcome", action, twinID)
}

// FoldResults reduces per-event results to the batch failure signal: nil
// when nothing failed, the error itself for a single failure, and an
// aggregate carrying every failure otherwise.
func FoldResults(results []EventResult) error {
	var failures []error
	for _, result := range results {
		if result.Err != nil {
			failures = append(failures, result.Err)
		}
	}
	switch len(failures) {
	case 0:
		return nil
	case 1:
		return failures[0]
	default:
		return errors.Join(failures...)
	}
}
