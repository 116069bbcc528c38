package collector

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/battwhy/battwhy/internal/domain"
	"github.com/battwhy/battwhy/internal/metric"
)

// DeviceActivity checks the power-relevant device categories. Each field is
// independently unavailable when its sysfs subsystem is absent.
func (s *System) DeviceActivity() metric.Metric[domain.DeviceActivity] {
	return metric.Present(domain.DeviceActivity{
		Wifi:      readWifi(),
		GPU:       readDedicatedGPU(),
		USBCount:  readActiveUSBCount(),
		Bluetooth: readBluetooth(),
	})
}

// readWifi looks for a wireless interface with operstate "up".
func readWifi() metric.Metric[domain.DeviceState] {
	netDir := filepath.Join(sysfsRoot, "class/net")
	entries, err := os.ReadDir(netDir)
	if err != nil {
		return metric.Unavailable[domain.DeviceState]("no network class in sysfs")
	}
	for _, entry := range entries {
		name := entry.Name()
		if !isWireless(filepath.Join(netDir, name), name) {
			continue
		}
		operstate, err := readStringFile(filepath.Join(netDir, name, "operstate"))
		if err != nil || operstate != "up" {
			continue
		}
		carrier := "disconnected"
		if v, err := readStringFile(filepath.Join(netDir, name, "carrier")); err == nil && v == "1" {
			carrier = "connected"
		}
		return metric.Present(domain.DeviceState{
			Active: true,
			Name:   name,
			Detail: fmt.Sprintf("operstate: %s, carrier: %s", operstate, carrier),
		})
	}
	return metric.Present(domain.DeviceState{})
}

func isWireless(dir, name string) bool {
	if _, err := os.Stat(filepath.Join(dir, "wireless")); err == nil {
		return true
	}
	return strings.HasPrefix(name, "wl")
}

// readDedicatedGPU scans DRM cards for an active dedicated GPU. Cards with
// boot_vga=1 are the integrated/primary adapter and never flagged.
func readDedicatedGPU() metric.Metric[domain.DeviceState] {
	drmDir := filepath.Join(sysfsRoot, "class/drm")
	entries, err := os.ReadDir(drmDir)
	if err != nil {
		return metric.Unavailable[domain.DeviceState]("no drm class in sysfs")
	}
	for _, entry := range entries {
		name := entry.Name()
		if !isCardDir(name) {
			continue
		}
		deviceDir := filepath.Join(drmDir, name, "device")
		if v, err := readStringFile(filepath.Join(deviceDir, "boot_vga")); err == nil && v == "1" {
			continue // integrated
		}

		if state, err := readStringFile(filepath.Join(deviceDir, "power_state")); err == nil {
			if strings.HasPrefix(state, "D0") || state == "unknown" {
				return metric.Present(domain.DeviceState{
					Active: true,
					Name:   name,
					Detail: "power_state: " + state,
				})
			}
			continue
		}
		if status, err := readStringFile(filepath.Join(deviceDir, "power/runtime_status")); err == nil && status == "active" {
			return metric.Present(domain.DeviceState{
				Active: true,
				Name:   name,
				Detail: "runtime_status: active",
			})
		}
	}
	return metric.Present(domain.DeviceState{})
}

// isCardDir matches "card0", "card1"... but not connectors like
// "card0-eDP-1".
func isCardDir(name string) bool {
	if !strings.HasPrefix(name, "card") || len(name) == 4 {
		return false
	}
	for _, r := range name[4:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// readActiveUSBCount counts USB devices not in runtime power saving. Root
// hubs ("usbN") and interface entries (containing ':') are skipped.
func readActiveUSBCount() metric.Metric[int] {
	usbDir := filepath.Join(sysfsRoot, "bus/usb/devices")
	entries, err := os.ReadDir(usbDir)
	if err != nil {
		return metric.Unavailable[int]("no usb bus in sysfs")
	}
	count := 0
	for _, entry := range entries {
		name := entry.Name()
		if isUSBRootHub(name) || strings.Contains(name, ":") {
			continue
		}
		powerDir := filepath.Join(usbDir, name, "power")
		status, _ := readStringFile(filepath.Join(powerDir, "runtime_status"))
		control, _ := readStringFile(filepath.Join(powerDir, "control"))
		if status == "active" || control == "on" {
			count++
		}
	}
	return metric.Present(count)
}

func isUSBRootHub(name string) bool {
	if !strings.HasPrefix(name, "usb") || len(name) == 3 {
		return false
	}
	for _, r := range name[3:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// readBluetooth checks rfkill for an unblocked bluetooth adapter, falling
// back to adapter presence under /sys/class/bluetooth.
func readBluetooth() metric.Metric[domain.DeviceState] {
	rfkillDir := filepath.Join(sysfsRoot, "class/rfkill")
	entries, rfkillErr := os.ReadDir(rfkillDir)
	if rfkillErr == nil {
		for _, entry := range entries {
			dir := filepath.Join(rfkillDir, entry.Name())
			if t, err := readStringFile(filepath.Join(dir, "type")); err != nil || t != "bluetooth" {
				continue
			}
			state, err := readStringFile(filepath.Join(dir, "state"))
			if err != nil {
				continue
			}
			name, _ := readStringFile(filepath.Join(dir, "name"))
			if name == "" {
				name = entry.Name()
			}
			// state 1 = unblocked, 0 = soft/hard blocked.
			return metric.Present(domain.DeviceState{
				Active: state == "1",
				Name:   name,
				Detail: "rfkill state: " + state,
			})
		}
	}

	btDir := filepath.Join(sysfsRoot, "class/bluetooth")
	btEntries, btErr := os.ReadDir(btDir)
	if btErr == nil {
		for _, entry := range btEntries {
			return metric.Present(domain.DeviceState{
				Active: true,
				Name:   entry.Name(),
				Detail: "adapter present",
			})
		}
	}

	if rfkillErr != nil && btErr != nil {
		return metric.Unavailable[domain.DeviceState]("no bluetooth or rfkill class in sysfs")
	}
	return metric.Present(domain.DeviceState{})
}
