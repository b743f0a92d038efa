package relay

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/adityakx/sehat/internal/observability"
)

type job struct {
	userID string
	text   string
}

// Dispatcher decouples webhook acknowledgement from pipeline work. Enqueue
// never blocks the webhook handler: when the queue is full the message is
// dropped and counted.
type Dispatcher struct {
	orch    *Orchestrator
	jobs    chan job
	workers int
	metrics *observability.Metrics
	logger  *slog.Logger
}

func NewDispatcher(orch *Orchestrator, workers, queueSize int, metrics *observability.Metrics, logger *slog.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 8
	}
	if queueSize <= 0 {
		queueSize = 1024
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		orch:    orch,
		jobs:    make(chan job, queueSize),
		workers: workers,
		metrics: metrics,
		logger:  logger.With("component", "dispatcher"),
	}
}

// Enqueue queues a message for processing. It reports false when the queue
// is full; the caller still acknowledges the webhook either way.
func (d *Dispatcher) Enqueue(userID, text string) bool {
	select {
	case d.jobs <- job{userID: userID, text: text}:
		d.metrics.QueueDepth.Set(float64(len(d.jobs)))
		return true
	default:
		d.metrics.MessagesDropped.Inc()
		d.logger.Warn("queue full, message dropped", "user", userID)
		return false
	}
}

// Run consumes the queue with a fixed worker pool until ctx is cancelled,
// then drains in-flight work and returns.
func (d *Dispatcher) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < d.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case j := <-d.jobs:
					d.metrics.QueueDepth.Set(float64(len(d.jobs)))
					if err := d.orch.Handle(ctx, j.userID, j.text); err != nil {
						d.logger.Error("message handling failed", "user", j.userID, "error", err)
					}
				}
			}
		})
	}
	return g.Wait()
}
