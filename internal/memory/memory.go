// Package memory provides a mutex-guarded in-process record store. It is the
// default backend and the store used by HTTP handler tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"caixa/internal/core"
	"caixa/internal/ledger"

	"github.com/google/uuid"
)

type Store struct {
	mu    sync.Mutex
	items []core.Transaction
	now   func() time.Time
}

var _ ledger.RecordStore = (*Store)(nil)

func New() *Store {
	return &Store{now: time.Now}
}

// NewWithClock injects the timestamp source, used by tests that need
// deterministic creation times.
func NewWithClock(now func() time.Time) *Store {
	return &Store{now: now}
}

// ListAll returns a copy of the full set ordered by creation time descending.
func (s *Store) ListAll(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.Transaction(nil), s.items...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Insert assigns id and creation time and stores the record.
func (s *Store) Insert(_ context.Context, d core.Draft) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := core.Transaction{
		ID:          uuid.NewString(),
		Description: d.Description,
		Amount:      d.Amount,
		Kind:        d.Kind,
		Method:      d.Method,
		Unit:        d.Unit,
		Category:    d.Category,
		OwnerID:     d.OwnerID,
		CreatedAt:   s.now(),
	}
	s.items = append(s.items, t)
	return t, nil
}

// DeleteByID removes the record or fails with ledger.ErrNotFound.
func (s *Store) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.items {
		if t.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return ledger.ErrNotFound
}
