package domain

import "github.com/battwhy/battwhy/internal/metric"

// Collector is the engine's only view of the machine. Battery and
// DeviceActivity are read once per run; CPUSnapshot and WakeupCounters are
// read twice, before and after the sampling window. A failed read is
// reported as an Unavailable metric, never as an error.
type Collector interface {
	Battery() metric.Metric[BatteryStatus]
	CPUSnapshot() metric.Metric[CPUSnapshot]
	DeviceActivity() metric.Metric[DeviceActivity]
	WakeupCounters() metric.Metric[WakeupCounters]
}
