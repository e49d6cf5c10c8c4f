package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"
)

type jobEnvelope struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Payload    map[string]any `json:"payload"`
	EnqueuedAt int64          `json:"enqueuedAt"`
}

// ValkeyQueue keeps jobs in a Valkey list. A popped job is moved to a
// processing list and only removed after its handler returns, so jobs held
// by a crashed worker are put back on the next start.
type ValkeyQueue struct {
	client        valkey.Client
	queueKey      string
	processingKey string
	logger        *slog.Logger
	pollTimeout   time.Duration

	mu      sync.Mutex
	handler Handler
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewValkeyQueue constructs a Valkey-backed queue. Nothing is consumed until
// SetHandler is called.
func NewValkeyQueue(client valkey.Client, queueKey string, logger *slog.Logger) *ValkeyQueue {
	if queueKey == "" {
		queueKey = "seoulfit:jobs"
	}
	return &ValkeyQueue{
		client:        client,
		queueKey:      queueKey,
		processingKey: queueKey + ":processing",
		logger:        logger.With("component", "queue.valkey", "key", queueKey),
		pollTimeout:   5 * time.Second,
	}
}

// SetHandler starts the worker loop. Later calls are ignored.
func (q *ValkeyQueue) SetHandler(handler Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if handler == nil || q.handler != nil {
		return
	}
	q.handler = handler
	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel
	q.done = make(chan struct{})
	go q.consume(ctx)
}

// Enqueue pushes a job onto the queue.
func (q *ValkeyQueue) Enqueue(ctx context.Context, name string, payload any) error {
	typed, ok := payload.(map[string]any)
	if !ok {
		typed = map[string]any{}
	}
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(jobEnvelope{ID: id.String(), Name: name, Payload: typed, EnqueuedAt: time.Now().UnixMilli()})
	if err != nil {
		return err
	}
	return q.client.Do(ctx, q.client.B().Lpush().Key(q.queueKey).Element(string(encoded)).Build()).Error()
}

// Close stops the worker and waits for the job in hand to finish.
func (q *ValkeyQueue) Close() {
	q.mu.Lock()
	cancel, done := q.cancel, q.done
	q.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (q *ValkeyQueue) consume(ctx context.Context) {
	defer close(q.done)
	q.requeueStranded(ctx)
	for ctx.Err() == nil {
		raw, err := q.client.Do(ctx, q.client.B().Blmove().
			Source(q.queueKey).Destination(q.processingKey).
			Right().Left().
			Timeout(q.pollTimeout.Seconds()).Build()).ToString()
		switch {
		case valkey.IsValkeyNil(err):
			continue
		case errors.Is(err, context.Canceled):
			return
		case err != nil:
			q.logger.Warn("valkey queue pop failed", "error", err)
			q.pause(ctx, time.Second)
			continue
		}
		q.handle(ctx, raw)
	}
}

func (q *ValkeyQueue) handle(ctx context.Context, raw string) {
	var job jobEnvelope
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		q.logger.Warn("dropping undecodable job", "error", err)
	} else {
		q.handler(context.WithoutCancel(ctx), job.Name, job.Payload)
	}
	ack := context.WithoutCancel(ctx)
	if err := q.client.Do(ack, q.client.B().Lrem().Key(q.processingKey).Count(1).Element(raw).Build()).Error(); err != nil {
		q.logger.Warn("valkey queue ack failed", "id", job.ID, "error", err)
	}
}

// requeueStranded moves jobs left in the processing list back to the queue.
func (q *ValkeyQueue) requeueStranded(ctx context.Context) {
	moved := 0
	for ctx.Err() == nil {
		err := q.client.Do(ctx, q.client.B().Lmove().
			Source(q.processingKey).Destination(q.queueKey).
			Right().Right().Build()).Error()
		if err != nil {
			if !valkey.IsValkeyNil(err) {
				q.logger.Warn("requeue of stranded jobs failed", "error", err)
			}
			break
		}
		moved++
	}
	if moved > 0 {
		q.logger.Info("requeued stranded jobs", "count", moved)
	}
}

func (q *ValkeyQueue) pause(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

var _ HandlerQueue = (*ValkeyQueue)(nil)
