package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SyncMetrics tracks reconciliation outcomes: how many fulfillments were
// created, how many applies were idempotent no-ops, and how many items were
// skipped or failed.
type SyncMetrics struct {
	outcomes metric.Int64Counter
}

// NewSyncMetrics registers the reconciliation counters on the given meter.
func NewSyncMetrics(meter metric.Meter) (*SyncMetrics, error) {
	outcomes, err := meter.Int64Counter(
		"korealy_sync_outcomes_total",
		metric.WithDescription("Total reconciliation outcomes by kind"),
		metric.WithUnit("{outcomes}"),
	)
	if err != nil {
		return nil, err
	}
	return &SyncMetrics{outcomes: outcomes}, nil
}

// RecordOutcome counts one outcome of the given kind.
func (m *SyncMetrics) RecordOutcome(ctx context.Context, kind string) {
	m.outcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
