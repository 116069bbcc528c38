// Package collector reads the kernel pseudo-files backing the four
// diagnostic indicators. Every read is best-effort: a missing or malformed
// source degrades to an Unavailable metric instead of failing the run.
package collector

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/battwhy/battwhy/internal/domain"
	"github.com/battwhy/battwhy/internal/metric"
)

// Roots are package variables so tests can point the collector at fixture
// trees built under t.TempDir().
var (
	sysfsRoot = "/sys"
	procRoot  = "/proc"
)

// userHz is the kernel's USER_HZ, fixed at 100 on every Linux architecture
// Go supports.
const userHz = 100

// System reads live data from sysfs and procfs. It implements
// domain.Collector.
type System struct {
	log *slog.Logger

	// upower is the fallback battery source when sysfs exposes no battery.
	// Swappable in tests.
	upower func() (domain.BatteryStatus, error)
}

// New creates a System collector.
func New(logger *slog.Logger) *System {
	if logger == nil {
		logger = slog.Default()
	}
	return &System{log: logger, upower: readUPowerBattery}
}

var _ domain.Collector = (*System)(nil)

// readIntFile reads a whitespace-trimmed integer from a pseudo-file.
func readIntFile(path string) (int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
}

// readStringFile reads a whitespace-trimmed string from a pseudo-file.
func readStringFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func unavailable[T any](err error) metric.Metric[T] {
	return metric.Unavailable[T](err.Error())
}
