package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"caixa/internal/core"
	"caixa/internal/ledger"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "caixa.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func draft(desc string, cents int64, kind core.Kind, method core.PaymentMethod) core.Draft {
	return core.Draft{
		Description: desc,
		Amount:      core.Money{Cents: cents},
		Kind:        kind,
		Method:      method,
		Unit:        "Loja de Roupas",
		OwnerID:     "u1",
	}
}

func TestInsertListDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.Insert(ctx, draft("Venda de Bolo", 1500, core.Inflow, core.MethodPix))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if first.ID == "" || first.CreatedAt.IsZero() {
		t.Fatalf("store must assign id and creation time: %+v", first)
	}

	second, err := repo.Insert(ctx, draft("Reposição", 4000, core.Outflow, core.MethodCash))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}

	if err := repo.DeleteByID(ctx, second.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err = repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(got) != 1 || got[0].ID != first.ID {
		t.Fatalf("deleted id must not be listed: %v", got)
	}
}

func TestDeleteUnknownID(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.DeleteByID(context.Background(), "nope"); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteIsIdempotentFailure(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Insert(ctx, draft("x", 100, core.Inflow, core.MethodCard))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := repo.DeleteByID(ctx, created.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	// A second delete of the same id behaves like deleting a missing record
	if err := repo.DeleteByID(ctx, created.ID); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDailySummaries(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.ApplySummaryDelta(ctx, "2024-03-01", 10000, 0); err != nil {
		t.Fatalf("delta: %v", err)
	}
	if err := repo.ApplySummaryDelta(ctx, "2024-03-01", 0, 4000); err != nil {
		t.Fatalf("delta: %v", err)
	}

	s, err := repo.GetDailySummary(ctx, "2024-03-01")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if s.TotalInflow.Cents != 10000 || s.TotalOutflow.Cents != 4000 {
		t.Fatalf("unexpected summary %+v", s)
	}

	// Missing day yields a zero row
	empty, err := repo.GetDailySummary(ctx, "1999-01-01")
	if err != nil {
		t.Fatalf("get empty: %v", err)
	}
	if empty.TotalInflow.Cents != 0 || empty.TotalOutflow.Cents != 0 {
		t.Fatalf("expected zero row, got %+v", empty)
	}
}

func TestRebuildDailySummaries(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	in, err := repo.Insert(ctx, draft("venda", 10000, core.Inflow, core.MethodPix))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := repo.Insert(ctx, draft("compra", 4000, core.Outflow, core.MethodCash)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := repo.RebuildDailySummaries(ctx); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	day := in.CreatedAt.Format("2006-01-02")
	s, err := repo.GetDailySummary(ctx, day)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if s.TotalInflow.Cents != 10000 || s.TotalOutflow.Cents != 4000 {
		t.Fatalf("rebuild produced %+v", s)
	}
}
