package agent

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sender delivers one job.
type Sender interface {
	Send(ctx context.Context, job Job) (int, error)
}

// Agent produces one random job per interval and hands it to a pool of
// workers.
type Agent struct {
	sender   Sender
	logger   *zap.SugaredLogger
	interval time.Duration
	workers  int
	rnd      *rand.Rand
}

func New(sender Sender, cfg *AgentConfig, logger *zap.SugaredLogger) *Agent {
	return &Agent{
		sender:   sender,
		logger:   logger,
		interval: cfg.PollInterval,
		workers:  cfg.RateLimit,
		rnd:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// Run generates traffic until ctx is cancelled, then waits for the workers
// to drain the queue.
func (a *Agent) Run(ctx context.Context) {
	jobs := make(chan Job, 20)

	var wg sync.WaitGroup
	for range a.workers {
		wg.Go(func() {
			a.worker(ctx, jobs)
		})
	}

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		case <-ticker.C:
			select {
			case jobs <- RandomJob(a.rnd):
			default:
				a.logger.Warn("job queue is full, dropping request")
			}
		}
	}
}

func (a *Agent) worker(ctx context.Context, jobs <-chan Job) {
	for job := range jobs {
		status, err := a.sender.Send(ctx, job)
		if err != nil {
			if ctx.Err() == nil {
				a.logger.Errorw("error sending request", "path", job.Path, "error", err)
			}
			continue
		}
		a.logger.Debugw("request delivered", "method", job.Method, "path", job.Path, "status", status)
	}
}
