// Package domain holds the value objects exchanged between the collectors,
// the diagnostic engine, and the renderers, plus the collector port the
// engine consumes.
package domain

import (
	"github.com/battwhy/battwhy/internal/metric"
)

// ChargeState is the battery charge direction as reported by the kernel.
type ChargeState string

const (
	Charging    ChargeState = "Charging"
	Discharging ChargeState = "Discharging"
	Full        ChargeState = "Full"
	UnknownCS   ChargeState = "Unknown"
)

// ParseChargeState maps a power_supply status string to a ChargeState.
// Anything unrecognized ("Not charging", firmware oddities) becomes Unknown.
func ParseChargeState(s string) ChargeState {
	switch s {
	case "Charging":
		return Charging
	case "Discharging":
		return Discharging
	case "Full":
		return Full
	default:
		return UnknownCS
	}
}

// BatteryStatus is one battery reading. Sub-fields are independently
// unavailable; RemainingHours is only computed while discharging with a
// positive draw.
type BatteryStatus struct {
	Name            string
	State           ChargeState
	CapacityLevel   string // Normal, Low, Critical... empty if not reported
	CapacityPercent metric.Metric[int]
	PowerDrawWatts  metric.Metric[float64]
	RemainingHours  metric.Metric[float64]
}

// CPUTimes is the aggregate "cpu " line of /proc/stat, in USER_HZ ticks.
type CPUTimes struct {
	User      int64
	Nice      int64
	System    int64
	Idle      int64
	Iowait    int64
	IRQ       int64
	SoftIRQ   int64
	Steal     int64
	Guest     int64
	GuestNice int64
}

// IdleTicks is idle plus iowait.
func (t CPUTimes) IdleTicks() int64 { return t.Idle + t.Iowait }

// ActiveTicks is everything except idle and iowait.
func (t CPUTimes) ActiveTicks() int64 {
	return t.User + t.Nice + t.System + t.IRQ + t.SoftIRQ + t.Steal + t.Guest + t.GuestNice
}

// TotalTicks is the sum of all categories.
func (t CPUTimes) TotalTicks() int64 { return t.ActiveTicks() + t.IdleTicks() }

// ProcTimes is the cumulative CPU time of one process.
type ProcTimes struct {
	Comm  string
	Ticks int64 // utime + stime
}

// CPUSnapshot is a point-in-time reading of the aggregate and per-process
// CPU counters. Two snapshots over a known window form a CPUUsageReport.
type CPUSnapshot struct {
	Times            CPUTimes
	Procs            map[int]ProcTimes
	ClockTicksPerSec int64
	NumCPU           int
}

// ProcessUsage is one entry of the per-process utilization list.
type ProcessUsage struct {
	PID     int
	Name    string
	Percent float64
}

// CPUUsageReport is the derived utilization over a sampling window.
// Processes are sorted descending by percent (pid ascending on ties) and
// truncated to the configured top-N.
type CPUUsageReport struct {
	OverallPercent float64
	Processes      []ProcessUsage
}

// DeviceState describes one device category's activity.
type DeviceState struct {
	Active bool
	Name   string
	Detail string
}

// DeviceActivity reports power-relevant device state. Each field is
// independently unavailable when its sysfs subsystem is absent.
type DeviceActivity struct {
	Wifi      metric.Metric[DeviceState]
	GPU       metric.Metric[DeviceState] // dedicated GPU only
	USBCount  metric.Metric[int]
	Bluetooth metric.Metric[DeviceState]
}

// WakeupCounters are raw cumulative kernel counters, read twice per run.
type WakeupCounters struct {
	ContextSwitches metric.Metric[int64]
	Interrupts      metric.Metric[int64]
}

// WakeupMetrics are the per-second rates derived from two counter reads.
type WakeupMetrics struct {
	ContextSwitchesPerSec metric.Metric[float64]
	InterruptsPerSec      metric.Metric[float64]
}
