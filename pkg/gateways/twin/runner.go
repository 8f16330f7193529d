package twin

import (
	"context"

	"github.com/google/uuid"

	"github.com/pvictorino/twin-sync-golang/pkg/gateways/twin/network"
	"github.com/pvictorino/twin-sync-golang/pkg/observability/metrics"
)

func (i *Integration) handleDelivery(ctx context.Context, message network.InMsg) {
	log := i.log.WithField("batch", uuid.NewString())

	payloads, err := network.DecodeBatch(message.Body)
	if err != nil {
		metrics.BatchFailures.Inc()
		log.Errorln("malformed batch payload:", err)
		return
	}

	results := i.processor.ProcessBatch(ctx, payloads)
	for _, result := range results {
		metrics.EventsProcessed.WithLabelValues(statusLabel(result.Status)).Inc()
		if result.Status == StatusCreated {
			metrics.TwinsCreated.Inc()
		}
	}

	if err := FoldResults(results); err != nil {
		metrics.BatchFailures.Inc()
		log.Errorln("batch finished with failures:", err)
		return
	}
	log.Println("batch processed,", len(payloads), "events")
}

func statusLabel(status EventStatus) string {
	switch status {
	case StatusApplied:
		return "applied"
	case StatusCreated:
		return "created"
	case StatusInitialized:
		return "initialized"
	case StatusFailed:
		return "failed"
	default:
		return "skipped"
	}
}
