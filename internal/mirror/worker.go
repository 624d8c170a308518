package mirror

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"shopping-matrix/internal/domain"
)

// Sink mirrors events into one remote store.
type Sink interface {
	Name() string
	Apply(ctx context.Context, ev Event) error
}

// Worker drains a bounded event queue into every configured sink. Remote
// failures are retried and then logged; they never reach the publisher.
type Worker struct {
	queue      chan Event
	sinks      []Sink
	logger     *log.Logger
	maxRetries uint64
	newBackOff func() backoff.BackOff

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
	done    chan struct{}
}

func NewWorker(logger *log.Logger, queueSize, maxRetries int, sinks ...Sink) *Worker {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Worker{
		queue:      make(chan Event, queueSize),
		sinks:      sinks,
		logger:     logger,
		maxRetries: uint64(maxRetries),
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			b.MaxInterval = 5 * time.Second
			b.MaxElapsedTime = 30 * time.Second
			return b
		},
		done: make(chan struct{}),
	}
}

// Publish enqueues the event without blocking. A full or closed queue drops it.
func (w *Worker) Publish(ev Event) {
	if len(w.sinks) == 0 {
		return
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		w.dropped.Add(1)
		return
	}
	select {
	case w.queue <- ev:
	default:
		w.dropped.Add(1)
		w.logger.Printf("mirror: queue full, dropped kind=%s session=%s", ev.Kind, ev.SessionID)
	}
}

// Dropped reports how many events were discarded because the queue was full or closed.
func (w *Worker) Dropped() int64 {
	return w.dropped.Load()
}

// Run applies queued events until Close is called and the queue is drained,
// or until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.queue:
			if !ok {
				return
			}
			w.apply(ctx, ev)
		}
	}
}

// Close stops accepting events and waits for Run to drain the queue or for
// ctx to expire.
func (w *Worker) Close(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) apply(ctx context.Context, ev Event) {
	for _, sink := range w.sinks {
		attempts := 0
		op := func() error {
			attempts++
			err := sink.Apply(ctx, ev)
			if errors.Is(err, domain.ErrNotFound) {
				return backoff.Permanent(err)
			}
			return err
		}
		policy := backoff.WithContext(backoff.WithMaxRetries(w.newBackOff(), w.maxRetries), ctx)
		if err := backoff.Retry(op, policy); err != nil {
			w.logger.Printf("mirror: sink=%s kind=%s session=%s attempts=%d error=%v", sink.Name(), ev.Kind, ev.SessionID, attempts, err)
		}
	}
}
