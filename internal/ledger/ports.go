package ledger

import (
	"context"
	"errors"

	"caixa/internal/core"
)

// ErrNotFound is returned by stores when a delete names an id that does not
// exist. The caller must leave its local snapshot unchanged.
var ErrNotFound = errors.New("transaction not found")

// Ports for outbound adapters.
type (
	// RecordStore is the external record store contract. ListAll returns the
	// full set ordered by creation time descending; there is no pagination.
	// Insert assigns id and creation timestamp.
	RecordStore interface {
		ListAll(ctx context.Context) ([]core.Transaction, error)
		Insert(ctx context.Context, d core.Draft) (core.Transaction, error)
		DeleteByID(ctx context.Context, id string) error
	}

	// EventPublisher notifies downstream consumers of ledger mutations.
	// Publish failures never fail the user action.
	EventPublisher interface {
		PublishCreated(ctx context.Context, t core.Transaction) error
		PublishDeleted(ctx context.Context, t core.Transaction) error
	}

	// ReportRenderer turns projected rows into a printable document.
	// Render failures are surfaced to the caller, not dropped.
	ReportRenderer interface {
		Render(ctx context.Context, title string, rows []core.ReportRow, totals core.Summary) ([]byte, error)
	}
)
