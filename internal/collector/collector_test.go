package collector

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/battwhy/battwhy/internal/domain"
)

func newTestSystem() *System {
	s := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.upower = func() (domain.BatteryStatus, error) {
		return domain.BatteryStatus{}, errors.New("upower disabled in tests")
	}
	return s
}

func setTestSysfsRoot(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	oldRoot := sysfsRoot
	sysfsRoot = root
	t.Cleanup(func() {
		sysfsRoot = oldRoot
	})

	return root
}

func setTestProcRoot(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	oldRoot := procRoot
	procRoot = root
	t.Cleanup(func() {
		procRoot = oldRoot
	})

	return root
}

func writeTestFile(t *testing.T, path, contents string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
