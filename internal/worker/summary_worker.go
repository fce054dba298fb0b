// Package worker maintains the daily summary table from transaction events
// and mirrors created movements into the optional spreadsheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"caixa/internal/amqp"
	"caixa/internal/core"
)

// SummaryStore is the slice of the storage layer the worker needs.
type SummaryStore interface {
	ApplySummaryDelta(ctx context.Context, day string, inflowDelta, outflowDelta int64) error
	RebuildDailySummaries(ctx context.Context) error
}

// Mirror receives created movements. Mirroring is best-effort; a mirror
// failure never blocks the summary update.
type Mirror interface {
	AppendTransaction(ctx context.Context, ev amqp.TransactionEvent) error
}

type SummaryWorker struct {
	store  SummaryStore
	mirror Mirror
}

// NewSummaryWorker creates a worker. mirror may be nil when no spreadsheet
// is configured.
func NewSummaryWorker(store SummaryStore, mirror Mirror) *SummaryWorker {
	return &SummaryWorker{store: store, mirror: mirror}
}

// HandleEvent applies one transaction event to the daily summaries. Created
// events add the amount to the day's bucket, deleted events subtract it, so
// replaying a create/delete pair leaves the day unchanged.
func (w *SummaryWorker) HandleEvent(ctx context.Context, ev amqp.TransactionEvent) error {
	var inflow, outflow int64
	switch core.Kind(ev.Kind) {
	case core.Inflow:
		inflow = ev.AmountCents
	case core.Outflow:
		outflow = ev.AmountCents
	default:
		return fmt.Errorf("unknown transaction kind %q in event %s", ev.Kind, ev.ID)
	}

	switch ev.Type {
	case amqp.EventCreated:
		// keep the signs
	case amqp.EventDeleted:
		inflow, outflow = -inflow, -outflow
	default:
		return fmt.Errorf("unknown event type %q for transaction %s", ev.Type, ev.ID)
	}

	day := ev.Day()
	if err := w.store.ApplySummaryDelta(ctx, day, inflow, outflow); err != nil {
		return fmt.Errorf("apply summary delta for %s: %w", day, err)
	}

	slog.InfoContext(ctx, "Applied transaction event to daily summary",
		"event_type", ev.Type,
		"transaction_id", ev.ID,
		"day", day,
		"inflow_delta", inflow,
		"outflow_delta", outflow)

	if w.mirror != nil && ev.Type == amqp.EventCreated {
		if err := w.mirror.AppendTransaction(ctx, ev); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror transaction to spreadsheet",
				"transaction_id", ev.ID,
				"error", err)
		}
	}

	return nil
}

// Rebuild recomputes every daily summary from the transaction table. Run
// periodically to correct any drift from missed events.
func (w *SummaryWorker) Rebuild(ctx context.Context) error {
	if err := w.store.RebuildDailySummaries(ctx); err != nil {
		return fmt.Errorf("rebuild daily summaries: %w", err)
	}
	slog.InfoContext(ctx, "Rebuilt daily summaries")
	return nil
}
