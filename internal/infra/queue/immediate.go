package queue

import (
	"context"
	"sync"

	"github.com/seoulfit/seoulfit-api/internal/domain/trigger"
)

// HandlerQueue is a job queue whose consumer is attached after construction.
type HandlerQueue interface {
	trigger.Queue
	SetHandler(handler Handler)
	Close()
}

// Handler executes one job.
type Handler func(ctx context.Context, name string, payload map[string]any)

// ImmediateQueue hands each job to the handler on its own goroutine.
type ImmediateQueue struct {
	mu      sync.RWMutex
	handler Handler
	wg      sync.WaitGroup
}

// NewImmediateQueue constructs the queue.
func NewImmediateQueue(handler Handler) *ImmediateQueue {
	return &ImmediateQueue{handler: handler}
}

// SetHandler replaces the handler used for queued jobs.
func (q *ImmediateQueue) SetHandler(handler Handler) {
	q.mu.Lock()
	q.handler = handler
	q.mu.Unlock()
}

// Enqueue invokes the handler asynchronously. The job runs detached from
// the caller's cancellation.
func (q *ImmediateQueue) Enqueue(ctx context.Context, name string, payload any) error {
	typed, ok := payload.(map[string]any)
	if !ok {
		typed = map[string]any{}
	}
	q.mu.RLock()
	handler := q.handler
	q.mu.RUnlock()
	if handler == nil {
		return nil
	}
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		handler(context.WithoutCancel(ctx), name, typed)
	}()
	return nil
}

// Close waits for in-flight jobs.
func (q *ImmediateQueue) Close() {
	q.wg.Wait()
}

var _ HandlerQueue = (*ImmediateQueue)(nil)
