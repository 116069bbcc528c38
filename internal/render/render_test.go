package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/battwhy/battwhy/internal/domain"
	"github.com/battwhy/battwhy/internal/metric"
)

func sampleDiagnosis() domain.Diagnosis {
	battery := metric.Present(domain.BatteryStatus{
		Name:            "BAT0",
		State:           domain.Discharging,
		CapacityPercent: metric.Present(63),
		PowerDrawWatts:  metric.Present(12.5),
		RemainingHours:  metric.Present(3.4),
	})
	cpu := metric.Present(domain.CPUUsageReport{
		OverallPercent: 35.2,
		Processes: []domain.ProcessUsage{
			{PID: 100, Name: "firefox", Percent: 15.0},
			{PID: 200, Name: "chrome", Percent: 8.5},
		},
	})
	devices := metric.Present(domain.DeviceActivity{
		GPU:       metric.Present(domain.DeviceState{Active: true, Name: "card1", Detail: "power_state: D0"}),
		Wifi:      metric.Present(domain.DeviceState{Active: true, Name: "wlan0"}),
		Bluetooth: metric.Unavailable[domain.DeviceState]("rfkill not present"),
		USBCount:  metric.Present(1),
	})
	wakeups := domain.WakeupMetrics{
		ContextSwitchesPerSec: metric.Present(800.0),
		InterruptsPerSec:      metric.Unavailable[float64]("counter did not advance"),
	}
	findings := []domain.Finding{
		{Text: "High overall CPU usage: 35.2%", Severity: domain.SeverityHigh, Indicator: domain.IndicatorCPU},
		{Text: "Dedicated GPU is active while on battery", Severity: domain.SeverityHigh, Indicator: domain.IndicatorDevice},
	}
	recs := []string{"Consider switching to integrated graphics or using GPU power-saving mode"}

	return domain.NewDiagnosis(battery, cpu, devices, wakeups, nil, findings, recs)
}

func TestJSON_FieldNames(t *testing.T) {
	data, err := JSON(sampleDiagnosis())
	if err != nil {
		t.Fatalf("JSON() error = %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	battery, ok := got["battery"].(map[string]any)
	if !ok {
		t.Fatalf("battery = %v, want object", got["battery"])
	}
	if battery["status"] != "Discharging" {
		t.Errorf("battery.status = %v", battery["status"])
	}
	if battery["capacity_percent"] != float64(63) {
		t.Errorf("battery.capacity_percent = %v", battery["capacity_percent"])
	}
	if battery["power_watts"] != 12.5 {
		t.Errorf("battery.power_watts = %v", battery["power_watts"])
	}

	cpu := got["cpu"].(map[string]any)
	procs := cpu["top_processes"].([]any)
	if len(procs) != 2 {
		t.Fatalf("top_processes = %v, want 2 entries", procs)
	}
	first := procs[0].(map[string]any)
	if first["pid"] != float64(100) || first["name"] != "firefox" || first["cpu_percent"] != float64(15) {
		t.Errorf("top_processes[0] = %v", first)
	}

	devices := got["devices"].(map[string]any)
	if devices["bluetooth"] != nil {
		t.Errorf("devices.bluetooth = %v, want null for unavailable", devices["bluetooth"])
	}
	gpu := devices["gpu"].(map[string]any)
	if gpu["active"] != true || gpu["name"] != "card1" {
		t.Errorf("devices.gpu = %v", gpu)
	}

	wakeups := got["wakeups"].(map[string]any)
	if wakeups["context_switches_per_sec"] != float64(800) {
		t.Errorf("context_switches_per_sec = %v", wakeups["context_switches_per_sec"])
	}
	if wakeups["interrupts_per_sec"] != nil {
		t.Errorf("interrupts_per_sec = %v, want null", wakeups["interrupts_per_sec"])
	}

	diag := got["diagnosis"].(map[string]any)
	if diag["severity"] != "high" {
		t.Errorf("diagnosis.severity = %v", diag["severity"])
	}
	issues := diag["issues"].([]any)
	if len(issues) != 2 {
		t.Fatalf("issues = %v, want 2", issues)
	}
	issue := issues[0].(map[string]any)
	if issue["severity"] != "high" || issue["indicator"] != "cpu" {
		t.Errorf("issues[0] = %v", issue)
	}
}

func TestJSON_AllUnavailable(t *testing.T) {
	d := domain.NewDiagnosis(
		metric.Unavailable[domain.BatteryStatus]("no battery found"),
		metric.Unavailable[domain.CPUUsageReport]("sampling interrupted"),
		metric.Unavailable[domain.DeviceActivity]("sysfs unreadable"),
		domain.WakeupMetrics{},
		[]string{"No battery data: no battery found"},
		nil, nil,
	)

	data, err := JSON(d)
	if err != nil {
		t.Fatalf("JSON() error = %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	for _, key := range []string{"battery", "cpu", "devices"} {
		if got[key] != nil {
			t.Errorf("%s = %v, want null", key, got[key])
		}
	}

	// Absent lists stay [] so consumers can range without nil checks.
	diag := got["diagnosis"].(map[string]any)
	if diag["severity"] != "good" {
		t.Errorf("severity = %v, want good", diag["severity"])
	}
	if issues, ok := diag["issues"].([]any); !ok || len(issues) != 0 {
		t.Errorf("issues = %v, want empty array", diag["issues"])
	}
	if recs, ok := diag["recommendations"].([]any); !ok || len(recs) != 0 {
		t.Errorf("recommendations = %v, want empty array", diag["recommendations"])
	}
	notes := got["notes"].([]any)
	if len(notes) != 1 {
		t.Errorf("notes = %v, want 1 entry", notes)
	}
}

func TestTextRender_Plain(t *testing.T) {
	out := NewText(false).Render(sampleDiagnosis(), "testhost, arch, kernel 6.10")

	want := []string{
		"battwhy: battery drain diagnosis",
		"Host: testhost, arch, kernel 6.10",
		"Battery (BAT0)",
		"Status:      Discharging",
		"Capacity:    63%",
		"Power draw:  12.5 W",
		"Remaining:   ~3.4 h",
		"Overall usage: 35.2%",
		"firefox (pid 100)",
		"chrome (pid 200)",
		"active (card1, power_state: D0)",
		"active (wlan0)",
		"Bluetooth: n/a",
		"USB:       1 active",
		"Context switches: 800/s",
		"Interrupts:       n/a",
		"Diagnosis: HIGH",
		"[high]",
		"High overall CPU usage: 35.2%",
		"- Consider switching to integrated graphics or using GPU power-saving mode",
	}
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q\n%s", w, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("plain output contains ANSI escapes")
	}
}

func TestTextRender_NoBattery(t *testing.T) {
	d := domain.NewDiagnosis(
		metric.Unavailable[domain.BatteryStatus]("no battery found"),
		metric.Unavailable[domain.CPUUsageReport]("read /proc/stat: gone"),
		metric.Unavailable[domain.DeviceActivity]("sysfs unreadable"),
		domain.WakeupMetrics{},
		[]string{"No battery data: no battery found"},
		nil, nil,
	)

	out := NewText(false).Render(d, "")

	want := []string{
		"n/a: no battery found",
		"n/a: read /proc/stat: gone",
		"n/a: sysfs unreadable",
		"Diagnosis: GOOD",
		"Notes",
		"- No battery data: no battery found",
	}
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q\n%s", w, out)
		}
	}
	if strings.Contains(out, "Host:") {
		t.Error("empty host line should omit the header")
	}
}
