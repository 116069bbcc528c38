package collector

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/battwhy/battwhy/internal/domain"
	"github.com/battwhy/battwhy/internal/metric"
)

// WakeupCounters reads the cumulative context switch and interrupt counters.
// Called twice per run; the engine derives per-second rates from the deltas.
func (s *System) WakeupCounters() metric.Metric[domain.WakeupCounters] {
	c := domain.WakeupCounters{
		ContextSwitches: readContextSwitches(),
		Interrupts:      readInterruptsTotal(),
	}
	if !c.ContextSwitches.IsPresent() && !c.Interrupts.IsPresent() {
		return metric.Unavailable[domain.WakeupCounters](c.ContextSwitches.Reason())
	}
	return metric.Present(c)
}

// readContextSwitches returns the "ctxt" counter from /proc/stat.
func readContextSwitches() metric.Metric[int64] {
	data, err := os.ReadFile(filepath.Join(procRoot, "stat"))
	if err != nil {
		return metric.Unavailable[int64]("read /proc/stat: " + err.Error())
	}
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "ctxt ") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			break
		}
		v, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			break
		}
		return metric.Present(v)
	}
	return metric.Unavailable[int64]("no ctxt line in /proc/stat")
}

// readInterruptsTotal sums the per-CPU columns of every /proc/interrupts
// line, stopping per line at the first non-numeric field (the source name).
func readInterruptsTotal() metric.Metric[int64] {
	f, err := os.Open(filepath.Join(procRoot, "interrupts"))
	if err != nil {
		return metric.Unavailable[int64]("read /proc/interrupts: " + err.Error())
	}
	defer f.Close()

	var total int64
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "CPU") {
			continue
		}
		fields := strings.Fields(line)
		// First field is the IRQ label ("0:", "LOC:"); counts follow.
		for _, field := range fields[1:] {
			v, err := strconv.ParseInt(field, 10, 64)
			if err != nil {
				break
			}
			total += v
		}
	}
	if total <= 0 {
		return metric.Unavailable[int64]("no interrupt counts in /proc/interrupts")
	}
	return metric.Present(total)
}
