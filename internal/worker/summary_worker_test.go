package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"caixa/internal/amqp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type delta struct {
	day     string
	inflow  int64
	outflow int64
}

type fakeStore struct {
	deltas     []delta
	applyErr   error
	rebuilds   int
	rebuildErr error
}

func (s *fakeStore) ApplySummaryDelta(_ context.Context, day string, inflow, outflow int64) error {
	if s.applyErr != nil {
		return s.applyErr
	}
	s.deltas = append(s.deltas, delta{day: day, inflow: inflow, outflow: outflow})
	return nil
}

func (s *fakeStore) RebuildDailySummaries(context.Context) error {
	if s.rebuildErr != nil {
		return s.rebuildErr
	}
	s.rebuilds++
	return nil
}

type fakeMirror struct {
	appended []amqp.TransactionEvent
	err      error
}

func (m *fakeMirror) AppendTransaction(_ context.Context, ev amqp.TransactionEvent) error {
	if m.err != nil {
		return m.err
	}
	m.appended = append(m.appended, ev)
	return nil
}

func event(eventType, kind string, cents int64) amqp.TransactionEvent {
	return amqp.TransactionEvent{
		Type:        eventType,
		ID:          "tx-1",
		Kind:        kind,
		AmountCents: cents,
		Method:      "pix",
		Unit:        "Loja de Roupas",
		OccurredAt:  time.Date(2026, 4, 10, 14, 30, 0, 0, time.UTC),
		Timestamp:   time.Date(2026, 4, 10, 14, 30, 1, 0, time.UTC),
	}
}

func TestHandleEventCreatedInflow(t *testing.T) {
	store := &fakeStore{}
	w := NewSummaryWorker(store, nil)

	err := w.HandleEvent(context.Background(), event(amqp.EventCreated, "inflow", 5000))
	require.NoError(t, err)
	require.Len(t, store.deltas, 1)
	assert.Equal(t, delta{day: "2026-04-10", inflow: 5000, outflow: 0}, store.deltas[0])
}

func TestHandleEventDeletedOutflow(t *testing.T) {
	store := &fakeStore{}
	w := NewSummaryWorker(store, nil)

	err := w.HandleEvent(context.Background(), event(amqp.EventDeleted, "outflow", 2500))
	require.NoError(t, err)
	require.Len(t, store.deltas, 1)
	assert.Equal(t, delta{day: "2026-04-10", inflow: 0, outflow: -2500}, store.deltas[0])
}

func TestHandleEventCreateThenDeleteCancelsOut(t *testing.T) {
	store := &fakeStore{}
	w := NewSummaryWorker(store, nil)

	require.NoError(t, w.HandleEvent(context.Background(), event(amqp.EventCreated, "inflow", 1200)))
	require.NoError(t, w.HandleEvent(context.Background(), event(amqp.EventDeleted, "inflow", 1200)))

	var inflow int64
	for _, d := range store.deltas {
		inflow += d.inflow
	}
	assert.Zero(t, inflow)
}

func TestHandleEventUnknownKind(t *testing.T) {
	store := &fakeStore{}
	w := NewSummaryWorker(store, nil)

	err := w.HandleEvent(context.Background(), event(amqp.EventCreated, "transfer", 100))
	require.Error(t, err)
	assert.Empty(t, store.deltas)
}

func TestHandleEventUnknownType(t *testing.T) {
	store := &fakeStore{}
	w := NewSummaryWorker(store, nil)

	err := w.HandleEvent(context.Background(), event("transaction.updated", "inflow", 100))
	require.Error(t, err)
	assert.Empty(t, store.deltas)
}

func TestHandleEventMirrorsCreatedOnly(t *testing.T) {
	store := &fakeStore{}
	mirror := &fakeMirror{}
	w := NewSummaryWorker(store, mirror)

	require.NoError(t, w.HandleEvent(context.Background(), event(amqp.EventCreated, "inflow", 100)))
	require.NoError(t, w.HandleEvent(context.Background(), event(amqp.EventDeleted, "inflow", 100)))

	require.Len(t, mirror.appended, 1)
	assert.Equal(t, amqp.EventCreated, mirror.appended[0].Type)
}

func TestHandleEventMirrorFailureIsNotFatal(t *testing.T) {
	store := &fakeStore{}
	mirror := &fakeMirror{err: errors.New("quota exceeded")}
	w := NewSummaryWorker(store, mirror)

	err := w.HandleEvent(context.Background(), event(amqp.EventCreated, "outflow", 300))
	require.NoError(t, err)
	require.Len(t, store.deltas, 1)
}

func TestHandleEventStoreFailure(t *testing.T) {
	store := &fakeStore{applyErr: errors.New("db locked")}
	w := NewSummaryWorker(store, nil)

	err := w.HandleEvent(context.Background(), event(amqp.EventCreated, "inflow", 100))
	require.Error(t, err)
}

func TestRebuild(t *testing.T) {
	store := &fakeStore{}
	w := NewSummaryWorker(store, nil)

	require.NoError(t, w.Rebuild(context.Background()))
	assert.Equal(t, 1, store.rebuilds)

	store.rebuildErr = errors.New("disk full")
	require.Error(t, w.Rebuild(context.Background()))
}
