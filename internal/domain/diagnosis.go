package domain

import "github.com/battwhy/battwhy/internal/metric"

// Severity classifies how concerning an indicator's value is. The order is
// total: Good < Low < Medium < High < VeryHigh.
type Severity int

const (
	SeverityGood Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityVeryHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityGood:
		return "good"
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityVeryHigh:
		return "very high"
	default:
		return "unknown"
	}
}

// MarshalText renders the severity for JSON output.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// MaxSeverity returns the larger of two severities.
func MaxSeverity(a, b Severity) Severity {
	if a > b {
		return a
	}
	return b
}

// Indicator names one of the four observation categories.
type Indicator string

const (
	IndicatorPower  Indicator = "power"
	IndicatorCPU    Indicator = "cpu"
	IndicatorDevice Indicator = "device"
	IndicatorWakeup Indicator = "wakeup"
)

// Finding is one textual observation tied to an indicator and a severity.
type Finding struct {
	Text      string
	Severity  Severity
	Indicator Indicator
}

// Diagnosis is the immutable result of one run. It is built exactly once by
// the aggregator and consumed only by the renderers.
type Diagnosis struct {
	Battery metric.Metric[BatteryStatus]
	CPU     metric.Metric[CPUUsageReport]
	Devices metric.Metric[DeviceActivity]
	Wakeups WakeupMetrics

	Notes           []string
	Findings        []Finding
	Recommendations []string
	Overall         Severity
}

// NewDiagnosis assembles a Diagnosis. Overall is derived from the findings:
// the maximum finding severity, or Good when there are none.
func NewDiagnosis(
	battery metric.Metric[BatteryStatus],
	cpu metric.Metric[CPUUsageReport],
	devices metric.Metric[DeviceActivity],
	wakeups WakeupMetrics,
	notes []string,
	findings []Finding,
	recommendations []string,
) Diagnosis {
	return Diagnosis{
		Battery:         battery,
		CPU:             cpu,
		Devices:         devices,
		Wakeups:         wakeups,
		Notes:           notes,
		Findings:        findings,
		Recommendations: recommendations,
		Overall:         MaxFindingSeverity(findings),
	}
}

// MaxFindingSeverity returns the maximum severity across findings, with
// Good as the floor for an empty list.
func MaxFindingSeverity(findings []Finding) Severity {
	overall := SeverityGood
	for _, f := range findings {
		overall = MaxSeverity(overall, f.Severity)
	}
	return overall
}
