package diagnose

import (
	"fmt"

	"github.com/battwhy/battwhy/internal/domain"
	"github.com/battwhy/battwhy/internal/metric"
)

// Classification thresholds. These are fixed, empirically chosen constants
// of the rule table, not configuration.
const (
	powerVeryHighWatts = 20.0
	powerHighWatts     = 15.0
	powerLowWatts      = 5.0

	cpuOverallVeryHighPct = 50.0
	cpuOverallHighPct     = 30.0
	procHighPct           = 20.0
	procMediumPct         = 10.0

	usbManyDevices = 3

	wakeupHighPerSec     = 5000.0
	wakeupModeratePerSec = 1000.0
)

// indicatorResult is one classifier's verdict: the findings it emitted and
// their maximum severity (Good when none fired).
type indicatorResult struct {
	severity domain.Severity
	findings []domain.Finding
}

func result(findings ...domain.Finding) indicatorResult {
	return indicatorResult{
		severity: domain.MaxFindingSeverity(findings),
		findings: findings,
	}
}

func finding(ind domain.Indicator, sev domain.Severity, format string, args ...any) domain.Finding {
	return domain.Finding{
		Text:      fmt.Sprintf(format, args...),
		Severity:  sev,
		Indicator: ind,
	}
}

// classifyPower rates the instantaneous battery draw. A missing battery or
// missing draw contributes nothing; a battery that is not discharging gets
// a single informational finding instead of draw thresholds.
func classifyPower(battery metric.Metric[domain.BatteryStatus]) indicatorResult {
	st, ok := battery.Get()
	if !ok {
		return result()
	}
	if st.State != domain.Discharging {
		return result(finding(domain.IndicatorPower, domain.SeverityLow,
			"Battery is not discharging (charging or full)"))
	}
	watts, ok := st.PowerDrawWatts.Get()
	if !ok {
		return result()
	}
	switch {
	case watts > powerVeryHighWatts:
		return result(finding(domain.IndicatorPower, domain.SeverityVeryHigh,
			"Very high power draw: ~%.1fW", watts))
	case watts > powerHighWatts:
		return result(finding(domain.IndicatorPower, domain.SeverityMedium,
			"High power draw: ~%.1fW", watts))
	case watts < powerLowWatts:
		return result(finding(domain.IndicatorPower, domain.SeverityLow,
			"Low power draw: ~%.1fW (good)", watts))
	default:
		return result(finding(domain.IndicatorPower, domain.SeverityLow,
			"Moderate power draw: ~%.1fW", watts))
	}
}

// classifyCPU rates overall utilization and each top process independently;
// the indicator severity is the maximum across everything that fired. The
// overall finding precedes per-process findings, which keep the report's
// descending-percent order.
func classifyCPU(report metric.Metric[domain.CPUUsageReport]) indicatorResult {
	r, ok := report.Get()
	if !ok {
		return result()
	}

	var findings []domain.Finding
	switch {
	case r.OverallPercent > cpuOverallVeryHighPct:
		findings = append(findings, finding(domain.IndicatorCPU, domain.SeverityVeryHigh,
			"Very high overall CPU usage: %.1f%%", r.OverallPercent))
	case r.OverallPercent > cpuOverallHighPct:
		findings = append(findings, finding(domain.IndicatorCPU, domain.SeverityHigh,
			"High overall CPU usage: %.1f%%", r.OverallPercent))
	}

	for _, p := range r.Processes {
		switch {
		case p.Percent > procHighPct:
			findings = append(findings, finding(domain.IndicatorCPU, domain.SeverityHigh,
				"High CPU usage by process '%s' (%.1f%%)", p.Name, p.Percent))
		case p.Percent > procMediumPct:
			findings = append(findings, finding(domain.IndicatorCPU, domain.SeverityMedium,
				"High CPU usage by process '%s' (%.1f%%)", p.Name, p.Percent))
		}
	}
	return result(findings...)
}

// classifyDevices rates each device category independently; several findings
// may fire at once and the severity is their maximum. Unavailable fields
// contribute nothing.
func classifyDevices(devices metric.Metric[domain.DeviceActivity]) indicatorResult {
	d, ok := devices.Get()
	if !ok {
		return result()
	}

	var findings []domain.Finding
	if gpu, ok := d.GPU.Get(); ok && gpu.Active {
		findings = append(findings, finding(domain.IndicatorDevice, domain.SeverityHigh,
			"Dedicated GPU is active while on battery"))
	}
	if wifi, ok := d.Wifi.Get(); ok && wifi.Active {
		findings = append(findings, finding(domain.IndicatorDevice, domain.SeverityMedium,
			"Wi-Fi interface active (%s)", wifi.Name))
	}
	if bt, ok := d.Bluetooth.Get(); ok && bt.Active {
		findings = append(findings, finding(domain.IndicatorDevice, domain.SeverityMedium,
			"Bluetooth adapter active (%s)", bt.Name))
	}
	if n, ok := d.USBCount.Get(); ok && n > usbManyDevices {
		findings = append(findings, finding(domain.IndicatorDevice, domain.SeverityMedium,
			"Many active USB devices (%d)", n))
	}
	return result(findings...)
}

// classifyWakeups rates the context switch rate. Rates below the moderate
// threshold are unremarkable and emit nothing.
func classifyWakeups(w domain.WakeupMetrics) indicatorResult {
	rate, ok := w.ContextSwitchesPerSec.Get()
	if !ok {
		return result()
	}
	switch {
	case rate > wakeupHighPerSec:
		return result(finding(domain.IndicatorWakeup, domain.SeverityHigh,
			"High system wakeup rate (frequent context switches/interrupts)"))
	case rate > wakeupModeratePerSec:
		return result(finding(domain.IndicatorWakeup, domain.SeverityMedium,
			"Moderate system wakeup rate (%.0f context switches/sec)", rate))
	default:
		return result()
	}
}
