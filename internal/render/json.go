// Package render turns a Diagnosis into terminal text or machine-readable
// JSON. It never consults the system; everything it prints is already in
// the Diagnosis.
package render

import (
	"encoding/json"

	"github.com/battwhy/battwhy/internal/domain"
	"github.com/battwhy/battwhy/internal/metric"
)

// The JSON field names below are a stable contract for scripting; metrics
// that were unavailable render as null, not as zero.

type batteryJSON struct {
	Status                  string   `json:"status"`
	CapacityPercent         *int     `json:"capacity_percent"`
	PowerWatts              *float64 `json:"power_watts"`
	EstimatedRemainingHours *float64 `json:"estimated_remaining_hours"`
}

type processJSON struct {
	PID        int     `json:"pid"`
	Name       string  `json:"name"`
	CPUPercent float64 `json:"cpu_percent"`
}

type cpuJSON struct {
	OverallPercent float64       `json:"overall_percent"`
	TopProcesses   []processJSON `json:"top_processes"`
}

type deviceJSON struct {
	Active bool   `json:"active"`
	Name   string `json:"name"`
	Detail string `json:"detail,omitempty"`
}

type devicesJSON struct {
	Wifi      *deviceJSON `json:"wifi"`
	GPU       *deviceJSON `json:"gpu"`
	Bluetooth *deviceJSON `json:"bluetooth"`
	USBCount  *int        `json:"usb_count"`
}

type wakeupsJSON struct {
	ContextSwitchesPerSec *float64 `json:"context_switches_per_sec"`
	InterruptsPerSec      *float64 `json:"interrupts_per_sec"`
}

type issueJSON struct {
	Text      string `json:"text"`
	Severity  string `json:"severity"`
	Indicator string `json:"indicator"`
}

type diagnosisJSON struct {
	Severity        string      `json:"severity"`
	Issues          []issueJSON `json:"issues"`
	Recommendations []string    `json:"recommendations"`
}

type reportJSON struct {
	Battery   *batteryJSON  `json:"battery"`
	CPU       *cpuJSON      `json:"cpu"`
	Devices   *devicesJSON  `json:"devices"`
	Wakeups   wakeupsJSON   `json:"wakeups"`
	Notes     []string      `json:"notes"`
	Diagnosis diagnosisJSON `json:"diagnosis"`
}

// JSON renders the diagnosis as indented JSON.
func JSON(d domain.Diagnosis) ([]byte, error) {
	return json.MarshalIndent(buildReportJSON(d), "", "  ")
}

func buildReportJSON(d domain.Diagnosis) reportJSON {
	r := reportJSON{
		Wakeups: wakeupsJSON{
			ContextSwitchesPerSec: floatPtr(d.Wakeups.ContextSwitchesPerSec),
			InterruptsPerSec:      floatPtr(d.Wakeups.InterruptsPerSec),
		},
		Notes: emptyIfNil(d.Notes),
		Diagnosis: diagnosisJSON{
			Severity:        d.Overall.String(),
			Issues:          []issueJSON{},
			Recommendations: emptyIfNil(d.Recommendations),
		},
	}

	if st, ok := d.Battery.Get(); ok {
		r.Battery = &batteryJSON{
			Status:                  string(st.State),
			CapacityPercent:         intPtr(st.CapacityPercent),
			PowerWatts:              floatPtr(st.PowerDrawWatts),
			EstimatedRemainingHours: floatPtr(st.RemainingHours),
		}
	}

	if report, ok := d.CPU.Get(); ok {
		cj := &cpuJSON{
			OverallPercent: report.OverallPercent,
			TopProcesses:   []processJSON{},
		}
		for _, p := range report.Processes {
			cj.TopProcesses = append(cj.TopProcesses, processJSON{
				PID:        p.PID,
				Name:       p.Name,
				CPUPercent: p.Percent,
			})
		}
		r.CPU = cj
	}

	if act, ok := d.Devices.Get(); ok {
		r.Devices = &devicesJSON{
			Wifi:      devicePtr(act.Wifi),
			GPU:       devicePtr(act.GPU),
			Bluetooth: devicePtr(act.Bluetooth),
			USBCount:  intPtr(act.USBCount),
		}
	}

	for _, f := range d.Findings {
		r.Diagnosis.Issues = append(r.Diagnosis.Issues, issueJSON{
			Text:      f.Text,
			Severity:  f.Severity.String(),
			Indicator: string(f.Indicator),
		})
	}

	return r
}

func floatPtr(m metric.Metric[float64]) *float64 {
	if v, ok := m.Get(); ok {
		return &v
	}
	return nil
}

func intPtr(m metric.Metric[int]) *int {
	if v, ok := m.Get(); ok {
		return &v
	}
	return nil
}

func devicePtr(m metric.Metric[domain.DeviceState]) *deviceJSON {
	st, ok := m.Get()
	if !ok {
		return nil
	}
	return &deviceJSON{Active: st.Active, Name: st.Name, Detail: st.Detail}
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
