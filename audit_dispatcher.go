package avfacepay

import (
	"context"
	"sync"
	"sync/atomic"
)

// auditDispatcher moves capture, fallback, and checkout audit events off the
// engine's hot path. Emitters never touch the sink directly: events are queued
// on a bounded channel and a single goroutine delivers them, so a slow sink
// can never stall a countdown tick or an OTP verification.
type auditDispatcher struct {
	cfg       AuditConfig
	sink      AuditSink
	events    chan AuditEvent
	quit      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *auditDispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &auditDispatcher{
		cfg:    cfg,
		sink:   sink,
		events: make(chan AuditEvent, cfg.BufferSize),
		quit:   make(chan struct{}),
	}

	d.wg.Add(1)
	go d.deliver()

	return d
}

func (d *auditDispatcher) deliver() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.events:
			d.sink.Emit(context.Background(), event)
		case <-d.quit:
			// Drain whatever the capture and payment flows queued
			// before Close so shutdown never loses the trail.
			for {
				select {
				case event := <-d.events:
					d.sink.Emit(context.Background(), event)
				default:
					return
				}
			}
		}
	}
}

// Emit describes the emit operation and its observable behavior.
//
// Emit queues one audit event for asynchronous delivery. With DropIfFull set
// the event is counted and discarded when the buffer is full; otherwise Emit
// blocks until there is room, the context ends, or the dispatcher closes.
// Emit does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *auditDispatcher) Emit(ctx context.Context, event AuditEvent) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.cfg.DropIfFull {
		select {
		case d.events <- event:
		case <-d.quit:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.events <- event:
	case <-ctx.Done():
	case <-d.quit:
	}
}

// Close describes the close operation and its observable behavior.
//
// Close stops the delivery goroutine after draining buffered events. Emits
// that arrive afterwards are ignored. Close is idempotent.
func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.quit)
		d.wg.Wait()
	})
}

// Dropped describes the dropped operation and its observable behavior.
//
// Dropped reports how many events were discarded because the buffer was full.
// Dropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
