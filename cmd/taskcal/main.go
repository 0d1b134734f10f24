package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sandeepkv93/taskcal/internal/agenda"
	"github.com/sandeepkv93/taskcal/internal/api"
	"github.com/sandeepkv93/taskcal/internal/config"
	"github.com/sandeepkv93/taskcal/internal/logging"
	"github.com/sandeepkv93/taskcal/internal/storage"
	"github.com/sandeepkv93/taskcal/internal/tasks"
	"github.com/sandeepkv93/taskcal/internal/update"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "taskcal failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", filepath.Join(config.DefaultDir(), config.DefaultConfigFileName), "path to the TOML config file")
	filterFlag := flag.String("filter", "", "initial task filter: ALL, Pending, Done or Missed")
	viewFlag := flag.String("view", "home", "initial view: home, tasks or calendar")
	resetOnboarding := flag.Bool("reset-onboarding", false, "show the onboarding screen again")
	flag.Parse()

	cfg, err := config.LoadOrCreate(*configPath)
	if err != nil {
		return err
	}

	log, err := logging.New(logging.Options{File: cfg.Log.File, Level: cfg.Log.Level})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	loc, err := cfg.Client.Location()
	if err != nil {
		return err
	}

	rawFilter := cfg.Client.DefaultFilter
	if *filterFlag != "" {
		rawFilter = *filterFlag
	}
	filter, err := agenda.ParseFilter(rawFilter)
	if err != nil {
		return err
	}
	view, ok := update.ParseView(*viewFlag)
	if !ok {
		return fmt.Errorf("unknown view %q", *viewFlag)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Client.DeviceDBPath), 0o755); err != nil {
		return fmt.Errorf("create device store dir: %w", err)
	}
	device, err := storage.OpenDeviceStore(cfg.Client.DeviceDBPath)
	if err != nil {
		return err
	}
	defer func() { _ = device.Close() }()

	ctx := context.Background()
	if *resetOnboarding {
		if err := storage.SetOnboarded(ctx, device, false, time.Now()); err != nil {
			return err
		}
	}
	onboarded, err := storage.Onboarded(ctx, device)
	if err != nil {
		log.Warn("read onboarding flag", zap.Error(err))
	}

	client, err := api.NewClient(api.Options{
		BaseURL:  cfg.Client.APIBaseURL,
		Timeout:  cfg.Client.Timeout(),
		Location: loc,
		Logger:   log,
	})
	if err != nil {
		return err
	}
	svc := tasks.NewService(client, tasks.WithLogger(log))

	log.Info("starting",
		zap.String("api", cfg.Client.APIBaseURL),
		zap.String("view", string(view)),
		zap.String("filter", string(filter)),
		zap.Bool("onboarded", onboarded),
	)

	program := tea.NewProgram(update.NewModel(update.Options{
		Service:   svc,
		Onboarded: onboarded,
		MarkOnboarded: func(ctx context.Context) error {
			return storage.SetOnboarded(ctx, device, true, time.Now())
		},
		InitialView:    view,
		InitialFilter:  filter,
		Location:       loc,
		RequestTimeout: cfg.Client.Timeout(),
		Logger:         log,
	}), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return err
	}
	return nil
}
