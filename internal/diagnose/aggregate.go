package diagnose

import (
	"fmt"

	"github.com/battwhy/battwhy/internal/domain"
	"github.com/battwhy/battwhy/internal/metric"
)

// aggregate merges the four classifier results into the final Diagnosis.
// Findings keep the fixed indicator order power, cpu, device, wakeup;
// recommendations are synthesized from specific finding patterns, never from
// severity alone.
func aggregate(
	battery metric.Metric[domain.BatteryStatus],
	cpu metric.Metric[domain.CPUUsageReport],
	devices metric.Metric[domain.DeviceActivity],
	wakeups domain.WakeupMetrics,
	notes []string,
) domain.Diagnosis {
	power := classifyPower(battery)
	cpuRes := classifyCPU(cpu)
	devRes := classifyDevices(devices)
	wakeRes := classifyWakeups(wakeups)

	var findings []domain.Finding
	findings = append(findings, power.findings...)
	findings = append(findings, cpuRes.findings...)
	findings = append(findings, devRes.findings...)
	findings = append(findings, wakeRes.findings...)

	recs := recommendations(battery, cpu, devices)

	return domain.NewDiagnosis(battery, cpu, devices, wakeups, notes, findings, recs)
}

// recommendations derives the ordered action list: offending processes
// first (highest offender leading), then GPU, then radios (only while
// discharging), then the general high-draw advice.
func recommendations(
	battery metric.Metric[domain.BatteryStatus],
	cpu metric.Metric[domain.CPUUsageReport],
	devices metric.Metric[domain.DeviceActivity],
) []string {
	var recs []string

	if report, ok := cpu.Get(); ok {
		seen := make(map[string]bool)
		for _, p := range report.Processes {
			if p.Percent <= procMediumPct || seen[p.Name] {
				continue
			}
			seen[p.Name] = true
			recs = append(recs, fmt.Sprintf("Consider closing or reducing activity of '%s'", p.Name))
		}
	}

	discharging := false
	if st, ok := battery.Get(); ok {
		discharging = st.State == domain.Discharging
	}

	if d, ok := devices.Get(); ok {
		if gpu, ok := d.GPU.Get(); ok && gpu.Active {
			recs = append(recs, "Consider switching to integrated graphics or using GPU power-saving mode")
		}
		if wifi, ok := d.Wifi.Get(); ok && wifi.Active && discharging {
			recs = append(recs, "Consider disabling Wi-Fi if not needed")
		}
		if bt, ok := d.Bluetooth.Get(); ok && bt.Active && discharging {
			recs = append(recs, "Consider disabling Bluetooth if not needed")
		}
	}

	if st, ok := battery.Get(); ok && discharging {
		if watts, ok := st.PowerDrawWatts.Get(); ok && watts > powerHighWatts {
			recs = append(recs, "Check for background processes and reduce system activity")
		}
	}

	return recs
}
