package trigger

import (
	"context"
	"time"

	"github.com/seoulfit/seoulfit-api/internal/spatial"
)

// Queue delivers named jobs to a worker.
type Queue interface {
	Enqueue(ctx context.Context, name string, payload any) error
}

// Publisher turns accepted positions into queued trigger jobs.
type Publisher struct {
	queue Queue
}

// NewPublisher builds a publisher on top of queue.
func NewPublisher(queue Queue) *Publisher {
	return &Publisher{queue: queue}
}

// PublishTrigger enqueues a job for owner at p.
func (p *Publisher) PublishTrigger(ctx context.Context, owner string, pt spatial.Point, at time.Time) error {
	return p.queue.Enqueue(ctx, JobName, encodeJob(Job{Owner: owner, Position: pt, At: at}))
}

func encodeJob(job Job) map[string]any {
	return map[string]any{
		"owner": job.Owner,
		"lat":   job.Position.Lat,
		"lng":   job.Position.Lng,
		"at":    job.At.UnixMilli(),
	}
}

// decodeJob accepts payloads that went through JSON (numbers as float64)
// as well as ones handed over in-process.
func decodeJob(payload map[string]any) (Job, bool) {
	owner, _ := payload["owner"].(string)
	lat, okLat := number(payload["lat"])
	lng, okLng := number(payload["lng"])
	if owner == "" || !okLat || !okLng {
		return Job{}, false
	}
	job := Job{Owner: owner, Position: spatial.Point{Lat: lat, Lng: lng}}
	if at, ok := number(payload["at"]); ok {
		job.At = time.UnixMilli(int64(at)).UTC()
	}
	return job, job.Position.Valid()
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
