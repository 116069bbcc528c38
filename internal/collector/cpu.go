package collector

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	gopscpu "github.com/shirou/gopsutil/v3/cpu"

	"github.com/battwhy/battwhy/internal/domain"
	"github.com/battwhy/battwhy/internal/metric"
)

// CPUSnapshot reads the aggregate "cpu " line of /proc/stat and the
// cumulative CPU time of every visible process. Called twice per run.
func (s *System) CPUSnapshot() metric.Metric[domain.CPUSnapshot] {
	times, err := readAggregateTimes()
	if err != nil {
		return unavailable[domain.CPUSnapshot](err)
	}

	snap := domain.CPUSnapshot{
		Times:            times,
		Procs:            readProcTimes(),
		ClockTicksPerSec: userHz,
		NumCPU:           logicalCPUs(),
	}
	return metric.Present(snap)
}

func readAggregateTimes() (domain.CPUTimes, error) {
	data, err := os.ReadFile(filepath.Join(procRoot, "stat"))
	if err != nil {
		return domain.CPUTimes{}, fmt.Errorf("read /proc/stat: %w", err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "cpu ") {
			continue
		}
		fields := strings.Fields(line)[1:]
		// user, nice, system and idle are guaranteed; later kernels add
		// iowait through guest_nice. Missing trailing fields read as 0.
		if len(fields) < 4 {
			return domain.CPUTimes{}, fmt.Errorf("malformed cpu line in /proc/stat")
		}
		v := make([]int64, 10)
		for i := 0; i < len(v) && i < len(fields); i++ {
			v[i], _ = strconv.ParseInt(fields[i], 10, 64)
		}
		return domain.CPUTimes{
			User: v[0], Nice: v[1], System: v[2], Idle: v[3], Iowait: v[4],
			IRQ: v[5], SoftIRQ: v[6], Steal: v[7], Guest: v[8], GuestNice: v[9],
		}, nil
	}
	return domain.CPUTimes{}, fmt.Errorf("no cpu line in /proc/stat")
}

// readProcTimes walks /proc for numeric directories and records each
// process's cumulative ticks. Processes that vanish mid-walk are skipped.
func readProcTimes() map[int]domain.ProcTimes {
	procs := make(map[int]domain.ProcTimes)
	entries, err := os.ReadDir(procRoot)
	if err != nil {
		return procs
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		pt, err := readProcStat(pid)
		if err != nil {
			continue
		}
		procs[pid] = pt
	}
	return procs
}

// readProcStat parses /proc/[pid]/stat for comm, utime and stime. comm is
// in parens and may itself contain spaces or parens, so it is delimited by
// the first '(' and the last ')'.
func readProcStat(pid int) (domain.ProcTimes, error) {
	data, err := os.ReadFile(filepath.Join(procRoot, strconv.Itoa(pid), "stat"))
	if err != nil {
		return domain.ProcTimes{}, err
	}
	start := bytes.IndexByte(data, '(')
	end := bytes.LastIndexByte(data, ')')
	if start < 0 || end < 0 || end >= len(data)-1 {
		return domain.ProcTimes{}, fmt.Errorf("malformed stat for pid %d", pid)
	}
	comm := string(data[start+1 : end])

	// Fields after ')': state ppid pgrp session tty_nr tpgid flags minflt
	// cminflt majflt cmajflt utime stime ... (utime at index 11).
	fields := strings.Fields(string(data[end+2:]))
	if len(fields) < 13 {
		return domain.ProcTimes{}, fmt.Errorf("too few stat fields for pid %d", pid)
	}
	utime, _ := strconv.ParseInt(fields[11], 10, 64)
	stime, _ := strconv.ParseInt(fields[12], 10, 64)

	return domain.ProcTimes{Comm: comm, Ticks: utime + stime}, nil
}

func logicalCPUs() int {
	if n, err := gopscpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}
