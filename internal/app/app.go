package app

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"gpusim/internal/config"
	"gpusim/internal/httpapi"
	"gpusim/internal/logger"
	"gpusim/internal/market"
	"gpusim/internal/report"
	"gpusim/internal/store"
)

// App wires the configured dependencies and drives the two entrypoints:
// running a simulation and serving recorded runs over HTTP.
type App struct {
	cfg  *config.Config
	runs *store.Store
}

// New builds the application from a loaded config. The results store is
// opened only when store.path is set; without it runs stay in memory.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)

	var runs *store.Store
	if cfg.Store.Path != "" {
		s, err := store.Open(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("opening results store: %w", err)
		}
		runs = s
	}
	return &App{cfg: cfg, runs: runs}, nil
}

// Close releases the results store, if one was opened.
func (a *App) Close() error {
	if a.runs == nil {
		return nil
	}
	return a.runs.Close()
}

// RunSimulation executes one full simulation and produces the configured
// reports: console mirror, persisted run, chart file, and replay config.
func (a *App) RunSimulation(ctx context.Context) (report.Summary, error) {
	cfg := a.cfg

	agents, err := market.BuildPopulation(cfg.Sim.Agents.Distribution, cfg.Sim.Agents.Capital, cfg.Sim.Agents.Units, cfg.Sim.Iterations)
	if err != nil {
		return report.Summary{}, fmt.Errorf("building agent population: %w", err)
	}

	seed := cfg.Sim.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	var recorders report.MultiRecorder
	if cfg.Report.Console {
		recorders = append(recorders, report.LogRecorder{})
	}

	var run store.Run
	var storeRec *report.StoreRecorder
	if a.runs != nil {
		run, err = a.runs.CreateRun(ctx, store.RunParams{
			InitialPrice: cfg.Sim.InitialPrice,
			InitialStock: cfg.Sim.InitialStock,
			Iterations:   cfg.Sim.Iterations,
			AgentCount:   len(agents),
			Seed:         seed,
			Config:       cfg,
		})
		if err != nil {
			return report.Summary{}, fmt.Errorf("creating run: %w", err)
		}
		storeRec = report.NewStoreRecorder(ctx, a.runs, run.ID)
		recorders = append(recorders, storeRec)
		logger.Infof("run %s created", run.ID)
	}

	var recorder market.Recorder
	switch len(recorders) {
	case 0:
	case 1:
		recorder = recorders[0]
	default:
		recorder = recorders
	}

	m, err := market.New(market.Config{
		InitialPrice: cfg.Sim.InitialPrice,
		Iterations:   cfg.Sim.Iterations,
		InitialStock: cfg.Sim.InitialStock,
		Agents:       agents,
		Rand:         rng,
		Recorder:     recorder,
	})
	if err != nil {
		return report.Summary{}, err
	}

	logger.Infof("simulating %d iterations, %d agents, seed %d", cfg.Sim.Iterations, len(agents), seed)
	if err := m.Simulate(); err != nil {
		if a.runs != nil {
			if ferr := a.runs.FinishRun(ctx, run.ID, store.RunStatusFailed, err.Error(), m.Price(), m.Stock()); ferr != nil {
				logger.Warnf("marking run %s failed: %v", run.ID, ferr)
			}
		}
		return report.Summary{}, fmt.Errorf("simulation aborted: %w", err)
	}

	summary := report.Summarize(m)
	summary.Log()

	if a.runs != nil {
		if err := a.runs.FinishRun(ctx, run.ID, store.RunStatusDone, "completed", m.Price(), m.Stock()); err != nil {
			logger.Warnf("marking run %s done: %v", run.ID, err)
		}
		if storeRec.Err() != nil {
			logger.Warnf("run %s persisted with gaps: %v", run.ID, storeRec.Err())
		}
	}

	if cfg.Report.ChartPath != "" {
		title := fmt.Sprintf("GPU market, %d iterations", cfg.Sim.Iterations)
		if err := report.WriteChartFile(cfg.Report.ChartPath, title, report.PointsFromHistory(m.History())); err != nil {
			return summary, fmt.Errorf("writing chart: %w", err)
		}
		logger.Infof("chart written to %s", cfg.Report.ChartPath)
	}
	if cfg.Report.RunConfigPath != "" {
		if err := writeRunConfig(cfg, seed); err != nil {
			return summary, fmt.Errorf("writing run config: %w", err)
		}
		logger.Infof("replay config written to %s", cfg.Report.RunConfigPath)
	}
	return summary, nil
}

// writeRunConfig dumps the resolved config with the seed actually used,
// so the file replays this exact run.
func writeRunConfig(cfg *config.Config, seed int64) error {
	resolved := *cfg
	resolved.Sim.Seed = seed
	raw, err := yaml.Marshal(&resolved)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(cfg.Report.RunConfigPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(cfg.Report.RunConfigPath, raw, 0o644)
}

// Serve exposes recorded runs over HTTP until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	if a.runs == nil {
		return fmt.Errorf("the server needs a results store; set store.path")
	}
	srv, err := httpapi.NewServer(httpapi.Config{
		Addr: a.cfg.Server.Addr,
		Runs: a.runs,
	})
	if err != nil {
		return err
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Infof("http server listening on %s", a.cfg.Server.Addr)
		if err := srv.Start(ctx); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	return group.Wait()
}
