// Package stress implements the background load simulation of the sandbox.
package stress

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/Schera-ole/qasandbox/internal/config"
	models "github.com/Schera-ole/qasandbox/internal/model"
)

// Recorder is the part of the metric registry the generator writes to.
type Recorder interface {
	Increment(name, labelValue string)
	SetGauge(name string, value float64)
}

// Emitter writes leveled log lines.
type Emitter interface {
	Log(level models.Level, message string)
}

// Generator emits random status codes, business actions and log lines while
// active, and keeps the uptime gauge fresh in both states.
type Generator struct {
	recorder Recorder
	emitter  Emitter
	rnd      *rand.Rand
	started  time.Time
	active   atomic.Bool

	activePeriod time.Duration
	idlePeriod   time.Duration
	now          func() time.Time
}

// Option customizes a Generator.
type Option func(*Generator)

// WithRand makes the generator draw from rnd. rnd is only used by the loop
// goroutine.
func WithRand(rnd *rand.Rand) Option {
	return func(g *Generator) {
		g.rnd = rnd
	}
}

// WithPeriods overrides the active and idle waits between iterations.
func WithPeriods(active, idle time.Duration) Option {
	return func(g *Generator) {
		g.activePeriod = active
		g.idlePeriod = idle
	}
}

// WithClock overrides the wall clock used for uptime.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// New creates an idle generator. started is the process start time the uptime
// gauge is measured from.
func New(recorder Recorder, emitter Emitter, started time.Time, opts ...Option) *Generator {
	g := &Generator{
		recorder:     recorder,
		emitter:      emitter,
		rnd:          rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		started:      started,
		activePeriod: config.ActiveTickPeriod,
		idlePeriod:   config.IdleTickPeriod,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Toggle flips the stress state and returns the new state.
func (g *Generator) Toggle() bool {
	for {
		old := g.active.Load()
		if g.active.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Active reports whether the stress test is running.
func (g *Generator) Active() bool {
	return g.active.Load()
}

// Uptime returns the time elapsed since the process start.
func (g *Generator) Uptime() time.Duration {
	return g.now().Sub(g.started)
}

// Run executes iterations until ctx is cancelled.
func (g *Generator) Run(ctx context.Context) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			timer.Reset(g.Tick())
		}
	}
}

// Tick runs one loop iteration and returns how long to wait before the next.
func (g *Generator) Tick() time.Duration {
	g.recorder.SetGauge(config.UptimeMetric, g.Uptime().Seconds())

	if !g.active.Load() {
		return g.idlePeriod
	}

	code := RandomCode(g.rnd)
	action := RandomAction(g.rnd)
	g.recorder.Increment(config.HTTPCodesMetric, code)
	g.recorder.Increment(config.UserActionsMetric, action)

	if level, message, ok := logLine(g.rnd.Float64(), code, action); ok {
		g.emitter.Log(level, message)
	}
	return g.activePeriod
}

// RandomCode picks a status code uniformly from the known set.
func RandomCode(rnd *rand.Rand) string {
	return config.StatusCodes[rnd.IntN(len(config.StatusCodes))]
}

// RandomAction picks a business action uniformly from the known set.
func RandomAction(rnd *rand.Rand) string {
	return config.UserActions[rnd.IntN(len(config.UserActions))]
}

// logLine maps a uniform draw r in [0,1) to the log line of one stress
// iteration: 10% error, 20% warning, 30% info, 40% nothing.
func logLine(r float64, code, action string) (models.Level, string, bool) {
	switch {
	case r < 0.10:
		return models.LevelError, fmt.Sprintf("STRESS-TEST: Critical system failure detected for action %s", action), true
	case r < 0.30:
		return models.LevelWarning, fmt.Sprintf("STRESS-TEST: Slow response time for action %s with code %s", action, code), true
	case r < 0.60:
		return models.LevelInfo, fmt.Sprintf("STRESS-TEST: User successfully executed %s", action), true
	default:
		return "", "", false
	}
}
