package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/battwhy/battwhy/internal/collector"
	"github.com/battwhy/battwhy/internal/config"
	"github.com/battwhy/battwhy/internal/diagnose"
	"github.com/battwhy/battwhy/internal/domain"
	"github.com/battwhy/battwhy/internal/render"
	"github.com/battwhy/battwhy/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "config file (default ~/.config/battwhy/config.toml)")
	duration := flag.Int("duration", 0, "sampling window in seconds (overrides config)")
	top := flag.Int("top", 0, "number of top processes to report (overrides config)")
	_ = flag.Bool("json", false, "emit JSON instead of text")
	_ = flag.Bool("no-color", false, "disable colored output")
	historyDB := flag.String("history-db", "", "sqlite file for run history (overrides config)")
	showHistory := flag.Int("show-history", 0, "print the last N recorded runs and exit")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("load config", "err", err)
		os.Exit(1)
	}

	// Flags win over file values, but only when actually given.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "duration":
			cfg.Sampling.DurationSeconds = *duration
		case "top":
			cfg.Sampling.TopProcesses = *top
		case "json":
			cfg.Output.Mode = "json"
		case "no-color":
			cfg.Output.Color = false
		case "history-db":
			cfg.Storage.HistoryDBPath = *historyDB
		}
	})
	cfg, err = config.NormalizeAndValidate(cfg)
	if err != nil {
		logger.Error("invalid options", "err", err)
		os.Exit(1)
	}

	if *showHistory > 0 {
		if err := printHistory(cfg.Storage.HistoryDBPath, *showHistory); err != nil {
			logger.Error("show history", "err", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine := diagnose.New(collector.New(logger), diagnose.Options{
		SampleDuration: time.Duration(cfg.Sampling.DurationSeconds) * time.Second,
		TopProcesses:   cfg.Sampling.TopProcesses,
	}, logger)

	diagnosis := engine.Run(ctx)

	if cfg.Output.Mode == "json" {
		data, err := render.JSON(diagnosis)
		if err != nil {
			logger.Error("encode diagnosis", "err", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	} else {
		fmt.Print(render.NewText(cfg.Output.Color).Render(diagnosis, render.HostLine()))
	}

	if cfg.Storage.HistoryDBPath != "" {
		if err := recordRun(cfg.Storage.HistoryDBPath, diagnosis); err != nil {
			logger.Warn("record run history", "err", err)
		}
	}
}

// loadConfig resolves the config path and loads it. A missing file at the
// default location is fine; an explicitly given path must exist.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.Load(filepath.Join(home, ".config", "battwhy", "config.toml"))
	if os.IsNotExist(err) {
		return config.DefaultConfig(), nil
	}
	return cfg, err
}

func recordRun(path string, d domain.Diagnosis) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	db, err := storage.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	detail, err := render.JSON(d)
	if err != nil {
		return fmt.Errorf("encode diagnosis: %w", err)
	}

	run := storage.Run{
		Timestamp:    time.Now().Unix(),
		Severity:     d.Overall.String(),
		FindingCount: len(d.Findings),
		DetailJSON:   string(detail),
	}
	if st, ok := d.Battery.Get(); ok {
		if pct, ok := st.CapacityPercent.Get(); ok {
			run.CapacityPct = sql.NullInt64{Int64: int64(pct), Valid: true}
		}
		if watts, ok := st.PowerDrawWatts.Get(); ok {
			run.PowerWatts = sql.NullFloat64{Float64: watts, Valid: true}
		}
	}
	if report, ok := d.CPU.Get(); ok {
		run.CPUPercent = sql.NullFloat64{Float64: report.OverallPercent, Valid: true}
	}

	_, err = db.InsertRun(run)
	return err
}

func printHistory(path string, n int) error {
	if path == "" {
		return fmt.Errorf("no history database configured (set storage.history_db_path or -history-db)")
	}
	db, err := storage.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.RecentRuns(n)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no recorded runs")
		return nil
	}
	for _, r := range runs {
		ts := time.Unix(r.Timestamp, 0).Format("2006-01-02 15:04:05")
		line := fmt.Sprintf("%s  %-9s  findings=%d", ts, r.Severity, r.FindingCount)
		if r.PowerWatts.Valid {
			line += fmt.Sprintf("  draw=%.1fW", r.PowerWatts.Float64)
		}
		if r.CPUPercent.Valid {
			line += fmt.Sprintf("  cpu=%.1f%%", r.CPUPercent.Float64)
		}
		if r.CapacityPct.Valid {
			line += fmt.Sprintf("  capacity=%d%%", r.CapacityPct.Int64)
		}
		fmt.Println(line)
	}
	return nil
}
