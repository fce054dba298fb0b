// Package storage implements the SQLite record store behind the ledger
// ports, plus the derived daily summary table maintained by the worker.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"caixa/internal/core"
	"caixa/internal/ledger"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ ledger.RecordStore = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ListAll implements ledger.RecordStore. The full live set is returned,
// newest first; soft-deleted rows are excluded.
func (r *SQLiteRepository) ListAll(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, description, amount_cents, kind, method, business_unit, category, owner_id, created_at
		FROM transactions
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var kind, method string
		if err := rows.Scan(&t.ID, &t.Description, &t.Amount.Cents, &kind, &method,
			&t.Unit, &t.Category, &t.OwnerID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Kind = core.Kind(kind)
		t.Method = core.PaymentMethod(method)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// Insert implements ledger.RecordStore, assigning id and creation time.
func (r *SQLiteRepository) Insert(ctx context.Context, d core.Draft) (core.Transaction, error) {
	t := core.Transaction{
		ID:          uuid.NewString(),
		Description: d.Description,
		Amount:      d.Amount,
		Kind:        d.Kind,
		Method:      d.Method,
		Unit:        d.Unit,
		Category:    d.Category,
		OwnerID:     d.OwnerID,
		CreatedAt:   time.Now().UTC(),
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, description, amount_cents, kind, method, business_unit, category, owner_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Description, t.Amount.Cents, string(t.Kind), string(t.Method),
		t.Unit, t.Category, t.OwnerID, t.CreatedAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"description", t.Description,
		"amount_cents", t.Amount.Cents,
		"kind", t.Kind)

	return t, nil
}

// DeleteByID implements ledger.RecordStore with a soft delete. Unknown or
// already-deleted ids fail with ledger.ErrNotFound.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("soft delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ledger.ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction soft deleted", "id", id)
	return nil
}

// DailySummary is one row of the derived per-day aggregate table. It can be
// rebuilt from the transactions table at any time.
type DailySummary struct {
	Day          string // YYYY-MM-DD
	TotalInflow  core.Money
	TotalOutflow core.Money
}

// ApplySummaryDelta adjusts the daily summary row for one day. Deltas may be
// negative (transaction deleted).
func (r *SQLiteRepository) ApplySummaryDelta(ctx context.Context, day string, inflowCents, outflowCents int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO daily_summaries (day, total_inflow_cents, total_outflow_cents, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(day) DO UPDATE SET
			total_inflow_cents = total_inflow_cents + excluded.total_inflow_cents,
			total_outflow_cents = total_outflow_cents + excluded.total_outflow_cents,
			updated_at = excluded.updated_at`,
		day, inflowCents, outflowCents, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("apply summary delta: %w", err)
	}
	return nil
}

// RebuildDailySummaries recomputes every summary row from the live
// transactions. Used by the worker at startup so a missed event cannot skew
// derived data forever.
func (r *SQLiteRepository) RebuildDailySummaries(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM daily_summaries`); err != nil {
		return fmt.Errorf("clear summaries: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO daily_summaries (day, total_inflow_cents, total_outflow_cents, updated_at)
		SELECT date(created_at),
		       COALESCE(SUM(CASE WHEN kind = 'inflow' THEN amount_cents ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN kind = 'outflow' THEN amount_cents ELSE 0 END), 0),
		       ?
		FROM transactions
		WHERE deleted_at IS NULL
		GROUP BY date(created_at)`,
		time.Now().UTC()); err != nil {
		return fmt.Errorf("rebuild summaries: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rebuild: %w", err)
	}

	slog.InfoContext(ctx, "Daily summaries rebuilt")
	return nil
}

// GetDailySummary returns the summary row for one day; a missing day yields
// a zero row, not an error.
func (r *SQLiteRepository) GetDailySummary(ctx context.Context, day string) (DailySummary, error) {
	s := DailySummary{Day: day}
	err := r.db.QueryRowContext(ctx, `
		SELECT total_inflow_cents, total_outflow_cents
		FROM daily_summaries WHERE day = ?`, day).
		Scan(&s.TotalInflow.Cents, &s.TotalOutflow.Cents)
	if err == sql.ErrNoRows {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("get daily summary: %w", err)
	}
	return s, nil
}
