package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/example/atelier/internal/core/effects"
	"github.com/example/atelier/internal/ctxutil"
)

// mockAuditSink records events and optionally fails or blocks.
type mockAuditSink struct {
	mu      sync.Mutex
	events  []effects.AuditEffect
	err     error
	started chan struct{}
	gate    chan struct{}
}

func (m *mockAuditSink) Record(_ context.Context, e effects.AuditEffect) error {
	if m.started != nil {
		m.started <- struct{}{}
	}
	if m.gate != nil {
		<-m.gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, e)
	return nil
}

func (m *mockAuditSink) ids() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, len(m.events))
	for i, e := range m.events {
		ids[i] = e.EventID
	}
	return ids
}

func event(id string) effects.AuditEffect {
	return effects.AuditEffect{EventID: id, Table: "assignments", Action: effects.ActionUpdate}
}

func TestAuditDispatcher_SyncDeliversInOrder(t *testing.T) {
	sink := &mockAuditSink{}
	d := NewAuditDispatcher(sink, zap.NewNop(), AuditDispatcherOptions{})

	d.Dispatch(context.Background(), []effects.AuditEffect{event("a"), event("b")})
	assert.Equal(t, []string{"a", "b"}, sink.ids())
	assert.NoError(t, d.Close(context.Background()))
}

func TestAuditDispatcher_SinkFailureIsLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	sink := &mockAuditSink{err: errors.New("disk full")}
	d := NewAuditDispatcher(sink, zap.New(core), AuditDispatcherOptions{})

	assert.NotPanics(t, func() {
		d.Dispatch(context.Background(), []effects.AuditEffect{event("a")})
	})
	require.Equal(t, 1, logs.FilterMessage("audit delivery failed").Len())
	assert.Equal(t, "a", logs.All()[0].ContextMap()["event_id"])
}

func TestAuditDispatcher_AsyncDrainsOnClose(t *testing.T) {
	sink := &mockAuditSink{}
	d := NewAuditDispatcher(sink, zap.NewNop(), AuditDispatcherOptions{Async: true, Buffer: 8})

	d.Dispatch(context.Background(), []effects.AuditEffect{event("a"), event("b"), event("c")})
	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, []string{"a", "b", "c"}, sink.ids())

	// Dispatch after Close drops instead of panicking.
	assert.NotPanics(t, func() {
		d.Dispatch(context.Background(), []effects.AuditEffect{event("late")})
	})
	assert.Equal(t, []string{"a", "b", "c"}, sink.ids())
}

func TestAuditDispatcher_FullQueueDrops(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	sink := &mockAuditSink{started: make(chan struct{}, 4), gate: make(chan struct{})}
	d := NewAuditDispatcher(sink, zap.New(core), AuditDispatcherOptions{Async: true, Buffer: 1})

	d.Dispatch(context.Background(), []effects.AuditEffect{event("a")})
	<-sink.started // worker is now blocked inside the sink

	d.Dispatch(context.Background(), []effects.AuditEffect{event("b"), event("c")})
	close(sink.gate)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))

	assert.Equal(t, []string{"a", "b"}, sink.ids())
	assert.Equal(t, 1, logs.FilterMessage("audit event dropped").Len())
}

func TestMultiSink(t *testing.T) {
	good := &mockAuditSink{}
	bad := &mockAuditSink{err: errors.New("stream down")}
	sink := MultiSink{bad, good}

	err := sink.Record(context.Background(), event("a"))
	assert.ErrorContains(t, err, "stream down")
	assert.Equal(t, []string{"a"}, good.ids(), "later sinks still receive the event")
}

func TestNewAuditEffect(t *testing.T) {
	ctx := ctxutil.WithActorID(context.Background(), "planner")
	ctx = ctxutil.WithOrigin(ctx, ctxutil.Origin{IP: "192.168.1.20", UserAgent: "atelier-cli/1.0"})
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	e := newAuditEffect(ctx, now, effects.ActionCreate, "orders", 5, nil, map[string]int{"quantity": 10})
	assert.NotEmpty(t, e.EventID)
	assert.Equal(t, "planner", e.Actor)
	assert.Equal(t, "192.168.1.20", e.Provenance.IP)
	assert.Equal(t, "atelier-cli/1.0", e.Provenance.UserAgent)
	assert.Nil(t, e.Before)
	assert.JSONEq(t, `{"quantity":10}`, string(e.After))
	assert.Equal(t, now, e.At)

	anonymous := newAuditEffect(context.Background(), now, effects.ActionUpdate, "orders", 5, nil, nil)
	assert.Equal(t, ctxutil.SystemActor, anonymous.Actor)
	assert.NotEqual(t, e.EventID, anonymous.EventID)
}
