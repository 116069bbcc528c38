package diagnose

import (
	"context"
	"log/slog"
	"time"

	"github.com/battwhy/battwhy/internal/domain"
	"github.com/battwhy/battwhy/internal/metric"
)

// Options configures one diagnostic run.
type Options struct {
	SampleDuration time.Duration // window between the two counter snapshots
	TopProcesses   int           // per-process list length
}

const (
	defaultSampleDuration = 2 * time.Second
	defaultTopProcesses   = 5
)

// Engine performs one diagnostic run over a Collector. It holds no state
// between runs; two runs over the same inputs produce identical diagnoses.
type Engine struct {
	col  domain.Collector
	opts Options
	log  *slog.Logger

	// wait blocks for the sampling window and reports the wall-clock time
	// actually elapsed. Swappable in tests.
	wait func(ctx context.Context, d time.Duration) (time.Duration, error)
}

// New creates an Engine. Zero option fields take the defaults (2s window,
// top 5 processes).
func New(col domain.Collector, opts Options, logger *slog.Logger) *Engine {
	if opts.SampleDuration <= 0 {
		opts.SampleDuration = defaultSampleDuration
	}
	if opts.TopProcesses <= 0 {
		opts.TopProcesses = defaultTopProcesses
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{col: col, opts: opts, log: logger, wait: sleepWait}
}

func sleepWait(ctx context.Context, d time.Duration) (time.Duration, error) {
	start := time.Now()
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return time.Since(start), nil
	case <-ctx.Done():
		return time.Since(start), ctx.Err()
	}
}

// Run produces a complete Diagnosis. It never fails: every unreadable
// source degrades to an Unavailable metric and a Good-default indicator.
// The only blocking point is the sampling window; if ctx is cancelled
// during it, the snapshot-dependent metrics are reported unavailable
// instead of computed from a truncated window.
func (e *Engine) Run(ctx context.Context) domain.Diagnosis {
	battery := e.col.Battery()
	devices := e.col.DeviceActivity()
	cpuBefore := e.col.CPUSnapshot()
	wakeBefore := e.col.WakeupCounters()

	e.log.Debug("sampling", "window", e.opts.SampleDuration)
	elapsed, waitErr := e.wait(ctx, e.opts.SampleDuration)

	var notes []string
	var cpu metric.Metric[domain.CPUUsageReport]
	var wakeups domain.WakeupMetrics

	if waitErr != nil {
		e.log.Debug("sampling interrupted", "err", waitErr)
		notes = append(notes, "Sampling interrupted; CPU and wakeup metrics unavailable")
		cpu = metric.Unavailable[domain.CPUUsageReport]("sampling interrupted")
		wakeups = domain.WakeupMetrics{
			ContextSwitchesPerSec: metric.Unavailable[float64]("sampling interrupted"),
			InterruptsPerSec:      metric.Unavailable[float64]("sampling interrupted"),
		}
	} else {
		cpuAfter := e.col.CPUSnapshot()
		wakeAfter := e.col.WakeupCounters()
		cpu = BuildCPUReport(cpuBefore, cpuAfter, elapsed, e.opts.TopProcesses)
		wakeups = DeriveWakeupMetrics(wakeBefore, wakeAfter, elapsed)
	}

	if !battery.IsPresent() {
		notes = append(notes, "No battery data: "+battery.Reason())
	}
	if !cpu.IsPresent() && waitErr == nil {
		notes = append(notes, "No CPU data: "+cpu.Reason())
	}
	if !devices.IsPresent() {
		notes = append(notes, "No device data: "+devices.Reason())
	}

	return aggregate(battery, cpu, devices, wakeups, notes)
}
