package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"caixa/internal/core"
)

// Service orchestrates record mutations across the store and the event
// stream. Store failures propagate unchanged; the presentation layer decides
// what to show. Event publishing is best-effort write-behind.
type Service struct {
	store     RecordStore
	publisher EventPublisher
	units     core.UnitSet
}

func NewService(store RecordStore, publisher EventPublisher, units core.UnitSet) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		units:     units,
	}
}

// Units exposes the configured business unit set for form rendering.
func (s *Service) Units() core.UnitSet {
	return s.units
}

// Snapshot fetches the full record set. Callers replace their working copy
// wholesale; there is no incremental patching.
func (s *Service) Snapshot(ctx context.Context) ([]core.Transaction, error) {
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return records, nil
}

// Record validates the draft and inserts it. The stored transaction (with
// store-assigned id and timestamp) is returned so callers can refetch or
// display it.
func (s *Service) Record(ctx context.Context, d core.Draft) (core.Transaction, error) {
	if err := d.Validate(s.units); err != nil {
		return core.Transaction{}, err
	}

	t, err := s.store.Insert(ctx, d)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishCreated(ctx, t); err != nil {
			// The transaction is already persisted; losing the event only
			// delays derived summaries.
			slog.ErrorContext(ctx, "Failed to publish created event",
				"id", t.ID, "error", err)
		}
	}

	return t, nil
}

// Delete removes a transaction by id. Unknown ids surface the store error so
// the caller keeps its prior snapshot.
func (s *Service) Delete(ctx context.Context, id string) error {
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	var deleted core.Transaction
	found := false
	for _, t := range records {
		if t.ID == id {
			deleted = t
			found = true
			break
		}
	}
	if !found {
		return ErrNotFound
	}

	if err := s.store.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishDeleted(ctx, deleted); err != nil {
			slog.ErrorContext(ctx, "Failed to publish deleted event",
				"id", id, "error", err)
		}
	}

	return nil
}
