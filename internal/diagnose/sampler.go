// Package diagnose is the diagnostic synthesis engine: it derives stable
// utilization figures from paired counter snapshots, classifies each
// indicator against fixed thresholds, and merges the results into one
// deterministic Diagnosis.
package diagnose

import (
	"fmt"
	"sort"
	"time"

	"github.com/battwhy/battwhy/internal/domain"
	"github.com/battwhy/battwhy/internal/metric"
)

// minProcessPercent is the floor below which a process is omitted from the
// per-process list.
const minProcessPercent = 0.1

// BuildCPUReport derives utilization from two snapshots taken elapsed apart.
// If either snapshot is unavailable, or the window is not positive, the
// whole report is unavailable and the CPU indicator degrades with it.
func BuildCPUReport(before, after metric.Metric[domain.CPUSnapshot], elapsed time.Duration, topN int) metric.Metric[domain.CPUUsageReport] {
	b, ok := before.Get()
	if !ok {
		return metric.Unavailable[domain.CPUUsageReport](before.Reason())
	}
	a, ok := after.Get()
	if !ok {
		return metric.Unavailable[domain.CPUUsageReport](after.Reason())
	}
	if elapsed <= 0 {
		return metric.Unavailable[domain.CPUUsageReport]("sampling window was not positive")
	}
	return metric.Present(buildReport(b, a, elapsed, topN))
}

func buildReport(before, after domain.CPUSnapshot, elapsed time.Duration, topN int) domain.CPUUsageReport {
	report := domain.CPUUsageReport{
		OverallPercent: overallPercent(before.Times, after.Times),
	}

	hz := before.ClockTicksPerSec
	if hz <= 0 {
		hz = 100
	}
	cores := before.NumCPU
	if cores < 1 {
		cores = 1
	}
	windowTicks := elapsed.Seconds() * float64(hz)
	maxPercent := 100 * float64(cores)

	for pid, cur := range after.Procs {
		prev, ok := before.Procs[pid]
		if !ok {
			continue // started during the window
		}
		delta := cur.Ticks - prev.Ticks
		if delta <= 0 {
			continue
		}
		pct := float64(delta) / windowTicks * 100
		if pct > maxPercent {
			pct = maxPercent // counter anomaly; clamp, never fail
		}
		if pct < minProcessPercent {
			continue
		}
		report.Processes = append(report.Processes, domain.ProcessUsage{
			PID:     pid,
			Name:    processName(pid, cur, prev),
			Percent: pct,
		})
	}

	sort.Slice(report.Processes, func(i, j int) bool {
		pi, pj := report.Processes[i], report.Processes[j]
		if pi.Percent != pj.Percent {
			return pi.Percent > pj.Percent
		}
		return pi.PID < pj.PID
	})
	if topN > 0 && len(report.Processes) > topN {
		report.Processes = report.Processes[:topN]
	}
	return report
}

// overallPercent is the non-idle share of the aggregate counter delta,
// clamped to [0,100]. A zero or negative total delta reports 0.
func overallPercent(before, after domain.CPUTimes) float64 {
	total := after.TotalTicks() - before.TotalTicks()
	if total <= 0 {
		return 0
	}
	active := after.ActiveTicks() - before.ActiveTicks()
	pct := float64(active) / float64(total) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

func processName(pid int, cur, prev domain.ProcTimes) string {
	if cur.Comm != "" {
		return cur.Comm
	}
	if prev.Comm != "" {
		return prev.Comm
	}
	return fmt.Sprintf("PID %d", pid)
}

// DeriveWakeupMetrics turns two cumulative counter reads into per-second
// rates. Non-monotonic or stalled counters yield an unavailable rate rather
// than a misleading zero.
func DeriveWakeupMetrics(before, after metric.Metric[domain.WakeupCounters], elapsed time.Duration) domain.WakeupMetrics {
	b, bok := before.Get()
	a, aok := after.Get()
	if !bok || !aok || elapsed <= 0 {
		reason := "wakeup counters unavailable"
		if !bok {
			reason = before.Reason()
		} else if !aok {
			reason = after.Reason()
		}
		return domain.WakeupMetrics{
			ContextSwitchesPerSec: metric.Unavailable[float64](reason),
			InterruptsPerSec:      metric.Unavailable[float64](reason),
		}
	}
	return domain.WakeupMetrics{
		ContextSwitchesPerSec: counterRate(b.ContextSwitches, a.ContextSwitches, elapsed),
		InterruptsPerSec:      counterRate(b.Interrupts, a.Interrupts, elapsed),
	}
}

func counterRate(before, after metric.Metric[int64], elapsed time.Duration) metric.Metric[float64] {
	b, bok := before.Get()
	a, aok := after.Get()
	if !bok || !aok {
		return metric.Unavailable[float64]("counter not reported")
	}
	if a <= b {
		return metric.Unavailable[float64]("counter did not advance")
	}
	return metric.Present(float64(a-b) / elapsed.Seconds())
}
