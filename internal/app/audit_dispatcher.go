package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/atelier/internal/core/effects"
	"github.com/example/atelier/internal/ctxutil"
	"github.com/example/atelier/internal/ports/secondary"
)

// AuditPublisher receives the audit effects of a committed unit of work.
type AuditPublisher interface {
	Dispatch(ctx context.Context, events []effects.AuditEffect)
}

// AuditDispatcherOptions configures delivery.
type AuditDispatcherOptions struct {
	// Async queues events for a background worker instead of delivering
	// them on the caller's goroutine.
	Async bool
	// Buffer is the queue size in async mode. A full queue drops events.
	Buffer int
}

// AuditDispatcher delivers audit effects to a sink after commit. Delivery
// never fails the caller: sink errors are logged and counted.
type AuditDispatcher struct {
	sink   secondary.AuditSink
	logger *zap.Logger

	mu     sync.RWMutex
	queue  chan effects.AuditEffect
	closed bool
	done   chan struct{}
}

// NewAuditDispatcher creates a dispatcher. In async mode a worker goroutine
// is started; call Close to drain it.
func NewAuditDispatcher(sink secondary.AuditSink, logger *zap.Logger, opts AuditDispatcherOptions) *AuditDispatcher {
	d := &AuditDispatcher{sink: sink, logger: logger}
	if opts.Async {
		buffer := opts.Buffer
		if buffer <= 0 {
			buffer = 256
		}
		d.queue = make(chan effects.AuditEffect, buffer)
		d.done = make(chan struct{})
		go d.run()
	}
	return d
}

var _ AuditPublisher = (*AuditDispatcher)(nil)

// Dispatch delivers or enqueues events in order.
func (d *AuditDispatcher) Dispatch(ctx context.Context, events []effects.AuditEffect) {
	if d.queue == nil {
		for _, e := range events {
			d.deliver(ctx, e)
		}
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, e := range events {
		if d.closed {
			d.drop(e, "dispatcher closed")
			continue
		}
		select {
		case d.queue <- e:
		default:
			d.drop(e, "queue full")
		}
	}
}

// Close stops accepting events and waits for queued ones to be delivered,
// or for ctx to expire.
func (d *AuditDispatcher) Close(ctx context.Context) error {
	if d.queue == nil {
		return nil
	}

	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return errors.Join(errors.New("audit queue not drained"), ctx.Err())
	}
}

func (d *AuditDispatcher) run() {
	defer close(d.done)
	for e := range d.queue {
		d.deliver(context.Background(), e)
	}
}

func (d *AuditDispatcher) deliver(ctx context.Context, e effects.AuditEffect) {
	if err := d.sink.Record(ctx, e); err != nil {
		auditDeliveriesTotal.WithLabelValues("failed").Inc()
		d.logger.Warn("audit delivery failed",
			zap.String("event_id", e.EventID),
			zap.String("table", e.Table),
			zap.Int64("row_id", e.RowID),
			zap.String("action", e.Action),
			zap.Error(err))
		return
	}
	auditDeliveriesTotal.WithLabelValues("ok").Inc()
}

func (d *AuditDispatcher) drop(e effects.AuditEffect, why string) {
	auditDeliveriesTotal.WithLabelValues("dropped").Inc()
	d.logger.Warn("audit event dropped",
		zap.String("reason", why),
		zap.String("event_id", e.EventID),
		zap.String("table", e.Table),
		zap.Int64("row_id", e.RowID))
}

// MultiSink fans an event out to several sinks. Every sink is tried; the
// failures are joined.
type MultiSink []secondary.AuditSink

// Record implements secondary.AuditSink.
func (m MultiSink) Record(ctx context.Context, e effects.AuditEffect) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Record(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// newAuditEffect builds the audit effect of one mutation, taking actor and
// provenance from ctx. Pass a nil before for creations.
func newAuditEffect(ctx context.Context, at time.Time, action, table string, rowID int64, before, after any) effects.AuditEffect {
	origin := ctxutil.OriginFromContext(ctx)
	return effects.AuditEffect{
		EventID: uuid.NewString(),
		Actor:   ctxutil.ActorOrSystem(ctx),
		Action:  action,
		Table:   table,
		RowID:   rowID,
		Before:  effects.Snapshot(before),
		After:   effects.Snapshot(after),
		Provenance: effects.Provenance{
			IP:        origin.IP,
			UserAgent: origin.UserAgent,
		},
		At: at,
	}
}
