package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shirou/gopsutil/v3/host"

	"github.com/battwhy/battwhy/internal/domain"
	"github.com/battwhy/battwhy/internal/metric"
)

// Text renders a Diagnosis for the terminal. With color disabled every
// style degrades to plain text, so output stays grep-friendly in pipes.
type Text struct {
	title    lipgloss.Style
	section  lipgloss.Style
	label    lipgloss.Style
	dim      lipgloss.Style
	severity map[domain.Severity]lipgloss.Style
}

func NewText(color bool) *Text {
	if !color {
		plain := lipgloss.NewStyle()
		return &Text{
			title:   plain,
			section: plain,
			label:   plain,
			dim:     plain,
			severity: map[domain.Severity]lipgloss.Style{
				domain.SeverityGood:     plain,
				domain.SeverityLow:      plain,
				domain.SeverityMedium:   plain,
				domain.SeverityHigh:     plain,
				domain.SeverityVeryHigh: plain,
			},
		}
	}
	return &Text{
		title:   lipgloss.NewStyle().Bold(true),
		section: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		label:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		severity: map[domain.Severity]lipgloss.Style{
			domain.SeverityGood:     lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
			domain.SeverityLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
			domain.SeverityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
			domain.SeverityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
			domain.SeverityVeryHigh: lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		},
	}
}

// HostLine describes the machine for the report header. Best effort; an
// empty string means the header is simply omitted.
func HostLine() string {
	info, err := host.Info()
	if err != nil {
		return ""
	}
	parts := []string{info.Hostname}
	if info.Platform != "" {
		parts = append(parts, info.Platform)
	}
	if info.KernelVersion != "" {
		parts = append(parts, "kernel "+info.KernelVersion)
	}
	return strings.Join(parts, ", ")
}

// Render produces the full text report. hostLine may be empty.
func (t *Text) Render(d domain.Diagnosis, hostLine string) string {
	var b strings.Builder

	b.WriteString(t.title.Render("battwhy: battery drain diagnosis"))
	b.WriteByte('\n')
	if hostLine != "" {
		fmt.Fprintf(&b, "%s %s\n", t.label.Render("Host:"), hostLine)
	}
	b.WriteByte('\n')

	t.renderBattery(&b, d.Battery)
	t.renderCPU(&b, d.CPU)
	t.renderDevices(&b, d.Devices)
	t.renderWakeups(&b, d.Wakeups)
	t.renderDiagnosis(&b, d)

	return b.String()
}

func (t *Text) renderBattery(b *strings.Builder, battery metric.Metric[domain.BatteryStatus]) {
	st, ok := battery.Get()
	if !ok {
		fmt.Fprintf(b, "%s\n  %s\n\n", t.section.Render("Battery"), t.dim.Render("n/a: "+battery.Reason()))
		return
	}

	header := "Battery"
	if st.Name != "" {
		header = "Battery (" + st.Name + ")"
	}
	fmt.Fprintf(b, "%s\n", t.section.Render(header))
	fmt.Fprintf(b, "  %s %s\n", t.label.Render("Status:     "), string(st.State))
	if pct, ok := st.CapacityPercent.Get(); ok {
		fmt.Fprintf(b, "  %s %d%%\n", t.label.Render("Capacity:   "), pct)
	}
	if watts, ok := st.PowerDrawWatts.Get(); ok {
		fmt.Fprintf(b, "  %s %.1f W\n", t.label.Render("Power draw: "), watts)
	}
	if hours, ok := st.RemainingHours.Get(); ok {
		fmt.Fprintf(b, "  %s ~%.1f h\n", t.label.Render("Remaining:  "), hours)
	}
	b.WriteByte('\n')
}

func (t *Text) renderCPU(b *strings.Builder, cpu metric.Metric[domain.CPUUsageReport]) {
	fmt.Fprintf(b, "%s\n", t.section.Render("CPU"))
	report, ok := cpu.Get()
	if !ok {
		fmt.Fprintf(b, "  %s\n\n", t.dim.Render("n/a: "+cpu.Reason()))
		return
	}

	fmt.Fprintf(b, "  %s %.1f%%\n", t.label.Render("Overall usage:"), report.OverallPercent)
	if len(report.Processes) > 0 {
		fmt.Fprintf(b, "  %s\n", t.label.Render("Top processes:"))
		for _, p := range report.Processes {
			fmt.Fprintf(b, "    %-24s %5.1f%%\n", fmt.Sprintf("%s (pid %d)", p.Name, p.PID), p.Percent)
		}
	}
	b.WriteByte('\n')
}

func (t *Text) renderDevices(b *strings.Builder, devices metric.Metric[domain.DeviceActivity]) {
	fmt.Fprintf(b, "%s\n", t.section.Render("Devices"))
	act, ok := devices.Get()
	if !ok {
		fmt.Fprintf(b, "  %s\n\n", t.dim.Render("n/a: "+devices.Reason()))
		return
	}

	fmt.Fprintf(b, "  %s %s\n", t.label.Render("GPU:      "), t.deviceLine(act.GPU))
	fmt.Fprintf(b, "  %s %s\n", t.label.Render("Wi-Fi:    "), t.deviceLine(act.Wifi))
	fmt.Fprintf(b, "  %s %s\n", t.label.Render("Bluetooth:"), t.deviceLine(act.Bluetooth))
	if n, ok := act.USBCount.Get(); ok {
		fmt.Fprintf(b, "  %s %d active\n", t.label.Render("USB:      "), n)
	} else {
		fmt.Fprintf(b, "  %s %s\n", t.label.Render("USB:      "), t.dim.Render("n/a"))
	}
	b.WriteByte('\n')
}

func (t *Text) deviceLine(m metric.Metric[domain.DeviceState]) string {
	st, ok := m.Get()
	if !ok {
		return t.dim.Render("n/a")
	}
	state := "inactive"
	if st.Active {
		state = "active"
	}
	detail := st.Name
	if st.Detail != "" {
		detail += ", " + st.Detail
	}
	if detail != "" {
		return fmt.Sprintf("%s (%s)", state, detail)
	}
	return state
}

func (t *Text) renderWakeups(b *strings.Builder, w domain.WakeupMetrics) {
	fmt.Fprintf(b, "%s\n", t.section.Render("Wakeups"))
	if rate, ok := w.ContextSwitchesPerSec.Get(); ok {
		fmt.Fprintf(b, "  %s %.0f/s\n", t.label.Render("Context switches:"), rate)
	} else {
		fmt.Fprintf(b, "  %s %s\n", t.label.Render("Context switches:"), t.dim.Render("n/a"))
	}
	if rate, ok := w.InterruptsPerSec.Get(); ok {
		fmt.Fprintf(b, "  %s %.0f/s\n", t.label.Render("Interrupts:      "), rate)
	} else {
		fmt.Fprintf(b, "  %s %s\n", t.label.Render("Interrupts:      "), t.dim.Render("n/a"))
	}
	b.WriteByte('\n')
}

func (t *Text) renderDiagnosis(b *strings.Builder, d domain.Diagnosis) {
	sev := strings.ToUpper(d.Overall.String())
	fmt.Fprintf(b, "%s %s\n", t.section.Render("Diagnosis:"), t.severity[d.Overall].Render(sev))
	for _, f := range d.Findings {
		marker := t.severity[f.Severity].Render("[" + f.Severity.String() + "]")
		fmt.Fprintf(b, "  %-10s %s\n", marker, f.Text)
	}

	if len(d.Recommendations) > 0 {
		b.WriteByte('\n')
		fmt.Fprintf(b, "%s\n", t.section.Render("Recommendations"))
		for _, r := range d.Recommendations {
			fmt.Fprintf(b, "  - %s\n", r)
		}
	}

	if len(d.Notes) > 0 {
		b.WriteByte('\n')
		fmt.Fprintf(b, "%s\n", t.section.Render("Notes"))
		for _, n := range d.Notes {
			fmt.Fprintf(b, "  - %s\n", t.dim.Render(n))
		}
	}
}
