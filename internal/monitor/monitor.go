// Package monitor periodically logs the resource usage of the sandbox process.
package monitor

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"
)

// Monitor logs one resource line per interval.
type Monitor struct {
	interval time.Duration
	logger   *zap.SugaredLogger
	wg       sync.WaitGroup
	proc     *process.Process
}

// New creates a monitor for the current process.
func New(interval time.Duration, logger *zap.SugaredLogger) (*Monitor, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("monitor interval must be positive, got %s", interval)
	}
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("failed to get process handle: %w", err)
	}

	return &Monitor{
		interval: interval,
		logger:   logger,
		proc:     proc,
	}, nil
}

// Run starts the monitoring loop in a background goroutine. The loop exits
// when ctx is cancelled; use Wait to block until it has.
func (m *Monitor) Run(ctx context.Context) {
	m.wg.Go(func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		m.collect()

		for {
			select {
			case <-ctx.Done():
				m.logger.Debug("monitor stopped")
				return
			case <-ticker.C:
				m.collect()
			}
		}
	})
}

// Wait blocks until the monitor goroutine exits.
func (m *Monitor) Wait() {
	m.wg.Wait()
}

func (m *Monitor) collect() {
	cpu, err := m.proc.CPUPercent()
	if err != nil {
		m.logger.Warnw("failed to get CPU percent", "error", err)
		cpu = 0
	}

	var rss uint64
	memInfo, err := m.proc.MemoryInfo()
	if err != nil {
		m.logger.Warnw("failed to get memory info", "error", err)
	} else {
		rss = memInfo.RSS
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	m.logger.Infow("resource",
		"cpu", fmt.Sprintf("%.2f%%", cpu),
		"rss", fmt.Sprintf("%.2fMB", mb(rss)),
		"heap_alloc", fmt.Sprintf("%.2fMB", mb(ms.HeapAlloc)),
		"goroutines", runtime.NumGoroutine(),
		"gc", ms.NumGC,
	)
}

func mb(b uint64) float64 {
	return float64(b) / (1024 * 1024)
}
