package diagnose

import (
	"strings"
	"testing"

	"github.com/battwhy/battwhy/internal/domain"
	"github.com/battwhy/battwhy/internal/metric"
)

func dischargingAt(watts float64) metric.Metric[domain.BatteryStatus] {
	return metric.Present(domain.BatteryStatus{
		Name:           "BAT0",
		State:          domain.Discharging,
		PowerDrawWatts: metric.Present(watts),
	})
}

func TestClassifyPower_Bands(t *testing.T) {
	tests := []struct {
		name     string
		watts    float64
		severity domain.Severity
		text     string
	}{
		{"very high", 25.0, domain.SeverityVeryHigh, "Very high power draw: ~25.0W"},
		{"high", 18.0, domain.SeverityMedium, "High power draw: ~18.0W"},
		{"moderate", 12.5, domain.SeverityLow, "Moderate power draw: ~12.5W"},
		{"low", 3.2, domain.SeverityLow, "Low power draw: ~3.2W (good)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := classifyPower(dischargingAt(tt.watts))
			if res.severity != tt.severity {
				t.Errorf("severity = %v, want %v", res.severity, tt.severity)
			}
			if len(res.findings) != 1 || res.findings[0].Text != tt.text {
				t.Errorf("findings = %+v, want single %q", res.findings, tt.text)
			}
			if len(res.findings) == 1 && res.findings[0].Indicator != domain.IndicatorPower {
				t.Errorf("indicator = %q, want power", res.findings[0].Indicator)
			}
		})
	}
}

func TestClassifyPower_ExactThresholdsAreExclusive(t *testing.T) {
	// 20.0W is not "above 20", 15.0W is not "above 15", 5.0W is not "below 5".
	if res := classifyPower(dischargingAt(20.0)); res.findings[0].Text != "High power draw: ~20.0W" {
		t.Errorf("20W: %q", res.findings[0].Text)
	}
	if res := classifyPower(dischargingAt(15.0)); res.findings[0].Text != "Moderate power draw: ~15.0W" {
		t.Errorf("15W: %q", res.findings[0].Text)
	}
	if res := classifyPower(dischargingAt(5.0)); res.findings[0].Text != "Moderate power draw: ~5.0W" {
		t.Errorf("5W: %q", res.findings[0].Text)
	}
}

func TestClassifyPower_NotDischarging(t *testing.T) {
	res := classifyPower(metric.Present(domain.BatteryStatus{
		Name:           "BAT0",
		State:          domain.Charging,
		PowerDrawWatts: metric.Present(30.0), // draw must be ignored while charging
	}))
	if res.severity != domain.SeverityLow {
		t.Errorf("severity = %v, want low", res.severity)
	}
	if len(res.findings) != 1 || res.findings[0].Text != "Battery is not discharging (charging or full)" {
		t.Errorf("findings = %+v", res.findings)
	}
}

func TestClassifyPower_Unavailable(t *testing.T) {
	res := classifyPower(metric.Unavailable[domain.BatteryStatus]("no battery found"))
	if res.severity != domain.SeverityGood || len(res.findings) != 0 {
		t.Errorf("got %+v, want good with no findings", res)
	}

	noDraw := metric.Present(domain.BatteryStatus{Name: "BAT0", State: domain.Discharging})
	res = classifyPower(noDraw)
	if res.severity != domain.SeverityGood || len(res.findings) != 0 {
		t.Errorf("missing draw: got %+v, want good with no findings", res)
	}
}

func TestClassifyCPU_OverallBands(t *testing.T) {
	report := func(pct float64) metric.Metric[domain.CPUUsageReport] {
		return metric.Present(domain.CPUUsageReport{OverallPercent: pct})
	}

	if res := classifyCPU(report(55.0)); res.severity != domain.SeverityVeryHigh {
		t.Errorf("55%%: severity = %v, want very high", res.severity)
	}
	if res := classifyCPU(report(35.2)); res.severity != domain.SeverityHigh ||
		res.findings[0].Text != "High overall CPU usage: 35.2%" {
		t.Errorf("35.2%%: got %+v", res)
	}
	if res := classifyCPU(report(30.0)); len(res.findings) != 0 {
		t.Errorf("30%% exactly should not fire, got %+v", res.findings)
	}
	if res := classifyCPU(report(12.0)); res.severity != domain.SeverityGood {
		t.Errorf("12%%: severity = %v, want good", res.severity)
	}
}

func TestClassifyCPU_PerProcess(t *testing.T) {
	res := classifyCPU(metric.Present(domain.CPUUsageReport{
		OverallPercent: 40.0,
		Processes: []domain.ProcessUsage{
			{PID: 1, Name: "firefox", Percent: 25.0},
			{PID: 2, Name: "chrome", Percent: 15.0},
			{PID: 3, Name: "bash", Percent: 2.0},
		},
	}))

	want := []struct {
		text string
		sev  domain.Severity
	}{
		{"High overall CPU usage: 40.0%", domain.SeverityHigh},
		{"High CPU usage by process 'firefox' (25.0%)", domain.SeverityHigh},
		{"High CPU usage by process 'chrome' (15.0%)", domain.SeverityMedium},
	}
	if len(res.findings) != len(want) {
		t.Fatalf("findings = %+v, want %d entries", res.findings, len(want))
	}
	for i, w := range want {
		if res.findings[i].Text != w.text || res.findings[i].Severity != w.sev {
			t.Errorf("findings[%d] = %+v, want %q %v", i, res.findings[i], w.text, w.sev)
		}
	}
	if res.severity != domain.SeverityHigh {
		t.Errorf("severity = %v, want high", res.severity)
	}
}

func TestClassifyCPU_Unavailable(t *testing.T) {
	res := classifyCPU(metric.Unavailable[domain.CPUUsageReport]("sampling interrupted"))
	if res.severity != domain.SeverityGood || len(res.findings) != 0 {
		t.Errorf("got %+v, want good with no findings", res)
	}
}

func TestClassifyDevices(t *testing.T) {
	activity := domain.DeviceActivity{
		GPU:       metric.Present(domain.DeviceState{Active: true, Name: "card1"}),
		Wifi:      metric.Present(domain.DeviceState{Active: true, Name: "wlan0"}),
		Bluetooth: metric.Present(domain.DeviceState{Active: true, Name: "hci0"}),
		USBCount:  metric.Present(5),
	}
	res := classifyDevices(metric.Present(activity))

	if res.severity != domain.SeverityHigh {
		t.Errorf("severity = %v, want high (GPU)", res.severity)
	}
	wantTexts := []string{
		"Dedicated GPU is active while on battery",
		"Wi-Fi interface active (wlan0)",
		"Bluetooth adapter active (hci0)",
		"Many active USB devices (5)",
	}
	if len(res.findings) != len(wantTexts) {
		t.Fatalf("findings = %+v, want %d", res.findings, len(wantTexts))
	}
	for i, w := range wantTexts {
		if res.findings[i].Text != w {
			t.Errorf("findings[%d].Text = %q, want %q", i, res.findings[i].Text, w)
		}
	}
}

func TestClassifyDevices_InactiveAndBoundary(t *testing.T) {
	quiet := domain.DeviceActivity{
		GPU:       metric.Present(domain.DeviceState{Active: false, Name: "card1"}),
		Wifi:      metric.Present(domain.DeviceState{Active: false, Name: "wlan0"}),
		Bluetooth: metric.Unavailable[domain.DeviceState]("rfkill not present"),
		USBCount:  metric.Present(3), // exactly 3 is not "many"
	}
	res := classifyDevices(metric.Present(quiet))
	if res.severity != domain.SeverityGood || len(res.findings) != 0 {
		t.Errorf("got %+v, want good with no findings", res)
	}
}

func TestClassifyWakeups(t *testing.T) {
	rate := func(v float64) domain.WakeupMetrics {
		return domain.WakeupMetrics{ContextSwitchesPerSec: metric.Present(v)}
	}

	res := classifyWakeups(rate(6000))
	if res.severity != domain.SeverityHigh ||
		res.findings[0].Text != "High system wakeup rate (frequent context switches/interrupts)" {
		t.Errorf("6000/s: got %+v", res)
	}

	res = classifyWakeups(rate(2500))
	if res.severity != domain.SeverityMedium ||
		res.findings[0].Text != "Moderate system wakeup rate (2500 context switches/sec)" {
		t.Errorf("2500/s: got %+v", res)
	}

	if res := classifyWakeups(rate(800)); len(res.findings) != 0 {
		t.Errorf("800/s should be quiet, got %+v", res.findings)
	}
	if res := classifyWakeups(domain.WakeupMetrics{}); len(res.findings) != 0 {
		t.Errorf("unavailable rate should be quiet, got %+v", res.findings)
	}
}

func TestAggregate_OverallIsMaxFindingSeverity(t *testing.T) {
	battery := dischargingAt(25.0) // very high power finding
	cpu := metric.Present(domain.CPUUsageReport{OverallPercent: 35.0})
	devices := metric.Present(domain.DeviceActivity{})

	d := aggregate(battery, cpu, devices, domain.WakeupMetrics{}, nil)
	if d.Overall != domain.SeverityVeryHigh {
		t.Errorf("Overall = %v, want very high", d.Overall)
	}
	max := domain.MaxFindingSeverity(d.Findings)
	if d.Overall != max {
		t.Errorf("Overall %v != max finding severity %v", d.Overall, max)
	}
}

func TestAggregate_NoFindingsIsGood(t *testing.T) {
	d := aggregate(
		metric.Unavailable[domain.BatteryStatus]("no battery found"),
		metric.Unavailable[domain.CPUUsageReport]("read /proc/stat: gone"),
		metric.Unavailable[domain.DeviceActivity]("sysfs unreadable"),
		domain.WakeupMetrics{},
		[]string{"No battery data: no battery found"},
	)
	if d.Overall != domain.SeverityGood {
		t.Errorf("Overall = %v, want good", d.Overall)
	}
	if len(d.Findings) != 0 || len(d.Recommendations) != 0 {
		t.Errorf("expected empty findings/recommendations, got %+v / %v", d.Findings, d.Recommendations)
	}
	if len(d.Notes) != 1 {
		t.Errorf("Notes = %v, want the passed-through note", d.Notes)
	}
}

func TestRecommendations_OrderAndDedup(t *testing.T) {
	battery := dischargingAt(18.0)
	cpu := metric.Present(domain.CPUUsageReport{
		OverallPercent: 45.0,
		Processes: []domain.ProcessUsage{
			{PID: 10, Name: "firefox", Percent: 25.0},
			{PID: 11, Name: "firefox", Percent: 12.0}, // same name, must dedup
			{PID: 12, Name: "chrome", Percent: 11.0},
			{PID: 13, Name: "bash", Percent: 3.0},
		},
	})
	devices := metric.Present(domain.DeviceActivity{
		GPU:       metric.Present(domain.DeviceState{Active: true, Name: "card1"}),
		Wifi:      metric.Present(domain.DeviceState{Active: true, Name: "wlan0"}),
		Bluetooth: metric.Present(domain.DeviceState{Active: true, Name: "hci0"}),
	})

	recs := recommendations(battery, cpu, devices)
	want := []string{
		"Consider closing or reducing activity of 'firefox'",
		"Consider closing or reducing activity of 'chrome'",
		"Consider switching to integrated graphics or using GPU power-saving mode",
		"Consider disabling Wi-Fi if not needed",
		"Consider disabling Bluetooth if not needed",
		"Check for background processes and reduce system activity",
	}
	if len(recs) != len(want) {
		t.Fatalf("recs = %v, want %d entries", recs, len(want))
	}
	for i := range want {
		if recs[i] != want[i] {
			t.Errorf("recs[%d] = %q, want %q", i, recs[i], want[i])
		}
	}
}

func TestRecommendations_RadiosOnlyWhileDischarging(t *testing.T) {
	charging := metric.Present(domain.BatteryStatus{State: domain.Charging})
	devices := metric.Present(domain.DeviceActivity{
		Wifi:      metric.Present(domain.DeviceState{Active: true, Name: "wlan0"}),
		Bluetooth: metric.Present(domain.DeviceState{Active: true, Name: "hci0"}),
	})

	recs := recommendations(charging, metric.Unavailable[domain.CPUUsageReport](""), devices)
	for _, r := range recs {
		if strings.Contains(r, "Wi-Fi") || strings.Contains(r, "Bluetooth") {
			t.Errorf("radio recommendation while charging: %q", r)
		}
	}
}
