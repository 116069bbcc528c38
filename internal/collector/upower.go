package collector

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/battwhy/battwhy/internal/domain"
	"github.com/battwhy/battwhy/internal/metric"
)

const (
	upowerService    = "org.freedesktop.UPower"
	upowerDevicePath = "/org/freedesktop/UPower/devices/DisplayDevice"
	upowerDeviceIF   = "org.freedesktop.UPower.Device"
)

// UPower device State values.
const (
	upowerStateCharging     uint32 = 1
	upowerStateDischarging  uint32 = 2
	upowerStateFullyCharged uint32 = 4
)

// readUPowerBattery queries the UPower composite display device over the
// system bus. Used only when sysfs exposes no battery (e.g. some ARM
// laptops report power through UPower-specific drivers).
func readUPowerBattery() (domain.BatteryStatus, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return domain.BatteryStatus{}, fmt.Errorf("connect system bus: %w", err)
	}
	obj := conn.Object(upowerService, upowerDevicePath)

	present, err := getProp[bool](obj, "IsPresent")
	if err != nil {
		return domain.BatteryStatus{}, fmt.Errorf("query UPower: %w", err)
	}
	if !present {
		return domain.BatteryStatus{}, errNoBattery
	}

	st := domain.BatteryStatus{Name: "DisplayDevice", State: domain.UnknownCS}

	if state, err := getProp[uint32](obj, "State"); err == nil {
		switch state {
		case upowerStateCharging:
			st.State = domain.Charging
		case upowerStateDischarging:
			st.State = domain.Discharging
		case upowerStateFullyCharged:
			st.State = domain.Full
		}
	}

	st.CapacityPercent = metric.Unavailable[int]("capacity not reported")
	if pct, err := getProp[float64](obj, "Percentage"); err == nil {
		st.CapacityPercent = metric.Present(clampInt(int(pct+0.5), 0, 100))
	}

	st.PowerDrawWatts = metric.Unavailable[float64]("power draw not reported")
	if rate, err := getProp[float64](obj, "EnergyRate"); err == nil && rate > 0 {
		st.PowerDrawWatts = metric.Present(rate)
	}

	st.RemainingHours = metric.Unavailable[float64]("not discharging")
	if st.State == domain.Discharging {
		watts, ok := st.PowerDrawWatts.Get()
		if energy, err := getProp[float64](obj, "Energy"); err == nil && ok && watts > 0 && energy > 0 {
			st.RemainingHours = metric.Present(energy / watts)
		} else {
			st.RemainingHours = metric.Unavailable[float64]("remaining energy not reported")
		}
	}

	return st, nil
}

func getProp[T any](obj dbus.BusObject, name string) (T, error) {
	var zero T
	v, err := obj.GetProperty(upowerDeviceIF + "." + name)
	if err != nil {
		return zero, err
	}
	val, ok := v.Value().(T)
	if !ok {
		return zero, fmt.Errorf("property %s: unexpected type %T", name, v.Value())
	}
	return val, nil
}
