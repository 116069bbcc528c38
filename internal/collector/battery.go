package collector

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/battwhy/battwhy/internal/domain"
	"github.com/battwhy/battwhy/internal/metric"
)

var errNoBattery = errors.New("no battery found")

// Battery reads the first battery under /sys/class/power_supply. When sysfs
// exposes no battery at all, the UPower D-Bus display device is tried before
// reporting the metric unavailable.
func (s *System) Battery() metric.Metric[domain.BatteryStatus] {
	st, err := readSysfsBattery()
	if err == nil {
		return metric.Present(st)
	}
	if errors.Is(err, errNoBattery) {
		if up, uerr := s.upower(); uerr == nil {
			s.log.Debug("battery read via UPower fallback")
			return metric.Present(up)
		} else {
			s.log.Debug("UPower fallback failed", "err", uerr)
		}
	}
	return unavailable[domain.BatteryStatus](err)
}

func readSysfsBattery() (domain.BatteryStatus, error) {
	matches, err := filepath.Glob(filepath.Join(sysfsRoot, "class/power_supply/BAT*"))
	if err != nil {
		return domain.BatteryStatus{}, fmt.Errorf("glob battery: %w", err)
	}
	if len(matches) == 0 {
		return domain.BatteryStatus{}, errNoBattery
	}
	sort.Strings(matches)

	// Most laptops have one battery; use the first.
	dir := matches[0]
	data, err := os.ReadFile(filepath.Join(dir, "uevent"))
	if err != nil {
		return domain.BatteryStatus{}, fmt.Errorf("read uevent: %w", err)
	}
	props := parseUevent(string(data))

	st := domain.BatteryStatus{
		Name:          filepath.Base(dir),
		State:         domain.ParseChargeState(props["POWER_SUPPLY_STATUS"]),
		CapacityLevel: props["POWER_SUPPLY_CAPACITY_LEVEL"],
	}

	if cap, ok := parseInt(props["POWER_SUPPLY_CAPACITY"]); ok {
		st.CapacityPercent = metric.Present(clampInt(int(cap), 0, 100))
	} else {
		st.CapacityPercent = metric.Unavailable[int]("capacity not reported")
	}

	// Some firmware reports "Discharging" at full capacity while on AC
	// power. Detect this and correct to "Full".
	if st.State == domain.Discharging && st.CapacityPercent.Or(0) >= 100 && isACOnline() {
		st.State = domain.Full
	}

	voltageUV, hasVoltage := parseInt(props["POWER_SUPPLY_VOLTAGE_NOW"])
	currentUA, hasCurrent := parseInt(props["POWER_SUPPLY_CURRENT_NOW"])

	// power_now is in µW; when absent, fall back to voltage * current.
	powerUW, hasPower := parseInt(props["POWER_SUPPLY_POWER_NOW"])
	if (!hasPower || powerUW == 0) && hasVoltage && hasCurrent {
		powerUW = (voltageUV / 1000) * (absInt64(currentUA) / 1000)
		hasPower = powerUW > 0
	}
	if hasPower && powerUW > 0 {
		st.PowerDrawWatts = metric.Present(float64(powerUW) / 1e6)
	} else {
		st.PowerDrawWatts = metric.Unavailable[float64]("power draw not reported")
	}

	st.RemainingHours = remainingHours(st, props, voltageUV, hasVoltage)
	return st, nil
}

// remainingHours estimates time to empty from the remaining energy divided
// by the current draw. Only meaningful while discharging with positive draw.
func remainingHours(st domain.BatteryStatus, props map[string]string, voltageUV int64, hasVoltage bool) metric.Metric[float64] {
	if st.State != domain.Discharging {
		return metric.Unavailable[float64]("not discharging")
	}
	watts, ok := st.PowerDrawWatts.Get()
	if !ok || watts <= 0 {
		return metric.Unavailable[float64]("power draw unavailable or zero")
	}

	// energy_now is µWh; charge_now is µAh and needs voltage to become Wh.
	var wh float64
	if energyUWH, ok := parseInt(props["POWER_SUPPLY_ENERGY_NOW"]); ok && energyUWH > 0 {
		wh = float64(energyUWH) / 1e6
	} else if chargeUAH, ok := parseInt(props["POWER_SUPPLY_CHARGE_NOW"]); ok && chargeUAH > 0 && hasVoltage {
		wh = float64(chargeUAH) / 1e6 * float64(voltageUV) / 1e6
	} else {
		return metric.Unavailable[float64]("remaining energy not reported")
	}
	return metric.Present(wh / watts)
}

// isACOnline checks if any AC adapter is online.
func isACOnline() bool {
	matches, err := filepath.Glob(filepath.Join(sysfsRoot, "class/power_supply/AC*/online"))
	if err != nil {
		return false
	}
	for _, path := range matches {
		if v, err := readStringFile(path); err == nil && v == "1" {
			return true
		}
	}
	return false
}

func parseUevent(data string) map[string]string {
	props := make(map[string]string)
	for _, line := range strings.Split(data, "\n") {
		if k, v, ok := strings.Cut(line, "="); ok {
			props[k] = v
		}
	}
	return props
}

func parseInt(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
