// Package main replays survival scenarios: it loads content and scripts,
// runs each scenario file given on the command line and reports what the
// character went through.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/survival/internal/config"
	"github.com/cory-johannsen/survival/internal/game/clock"
	"github.com/cory-johannsen/survival/internal/game/content"
	"github.com/cory-johannsen/survival/internal/game/dice"
	"github.com/cory-johannsen/survival/internal/game/stomach"
	"github.com/cory-johannsen/survival/internal/observability"
	"github.com/cory-johannsen/survival/internal/scripting"
	"github.com/cory-johannsen/survival/internal/server"
	"github.com/cory-johannsen/survival/internal/simulation"
	"github.com/cory-johannsen/survival/internal/storage/postgres"
	"github.com/cory-johannsen/survival/internal/telemetry"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	persist := flag.Bool("persist", false, "restore and store character state in PostgreSQL")
	realtime := flag.Bool("realtime", false, "pace ticks by metabolism.tick_interval instead of stepping at full speed")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] scenario.yaml...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, "simulate")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	scenarios := make([]*simulation.Scenario, 0, flag.NArg())
	for _, path := range flag.Args() {
		sc, err := simulation.LoadScenario(path)
		if err != nil {
			logger.Fatal("loading scenario", zap.String("path", path), zap.Error(err))
		}
		scenarios = append(scenarios, sc)
	}

	cat, err := content.Load(cfg.Content.Dir, logger)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}

	src := dice.NewCryptoSource()
	if cfg.Simulation.Seed != 0 {
		src = dice.NewSeededSource(uint64(cfg.Simulation.Seed))
	}
	roller := dice.NewLoggedRoller(src, logger)

	var scriptMgr *scripting.Manager
	if cfg.Scripting.Dir != "" {
		scriptMgr = scripting.NewManager(roller, logger)
		defer scriptMgr.Close()
		if err := loadScopes(scriptMgr, cfg.Scripting); err != nil {
			logger.Fatal("loading scripts", zap.Error(err))
		}
	}

	metrics := observability.NewMetrics()
	out, err := telemetry.NewOutput(cfg.Simulation.TelemetryDir)
	if err != nil {
		logger.Fatal("opening telemetry output", zap.Error(err))
	}
	defer func() {
		if err := out.Close(); err != nil {
			logger.Error("closing telemetry output", zap.Error(err))
		}
	}()

	lifecycle := server.NewLifecycle(logger)

	var store simulation.Store
	if *persist {
		pool, err := postgres.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		store = postgres.NewCharacterStore(pool.DB(), cat.Vitamins, cat.Items, logger)
		lifecycle.Add("postgres", &server.FuncService{
			StartFn: func(ctx context.Context) error {
				return pool.Watch(ctx, 30*time.Second, 5*time.Second)
			},
			StopFn: pool.Close,
		})
	}

	if addr := cfg.Simulation.MetricsAddr; addr != "" {
		srv := &http.Server{Addr: addr, Handler: metrics.Handler(), ReadHeaderTimeout: 5 * time.Second}
		lifecycle.Add("metrics", &server.FuncService{
			StartFn: func(context.Context) error {
				logger.Info("metrics listening", zap.String("addr", addr))
				if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			},
			StopFn: func() {
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(sctx)
			},
		})
	}

	var interval time.Duration
	if *realtime {
		interval = cfg.Metabolism.TickInterval
	}
	engine, err := simulation.NewEngine(cat, simulation.Options{
		Scripts:      scriptMgr,
		Recorder:     metrics,
		Output:       out,
		Rand:         src,
		Logger:       logger,
		Rates:        stomach.NeedsRates{Hunger: cfg.Metabolism.Hunger, KCal: cfg.Metabolism.DailyKCal},
		TurnsPerTick: clock.Turn(cfg.Metabolism.TurnsPerTick),
		Interval:     interval,
		Store:        store,
	})
	if err != nil {
		logger.Fatal("creating engine", zap.Error(err))
	}

	lifecycle.Add("simulation", &server.FuncService{
		StartFn: func(ctx context.Context) error {
			for _, sc := range scenarios {
				rep, err := engine.Run(ctx, sc)
				if err != nil {
					return fmt.Errorf("scenario %q: %w", sc.Name, err)
				}
				printReport(rep)
			}
			return nil
		},
	})

	logger.Info("simulator initialized",
		zap.Duration("startup", time.Since(start)),
		zap.Int("scenarios", len(scenarios)),
		zap.String("telemetry_dir", out.Dir()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("simulation failed", zap.Error(err))
	}
}

// loadScopes loads one script scope per subdirectory of cfg.Dir.
func loadScopes(m *scripting.Manager, cfg config.ScriptingConfig) error {
	entries, err := os.ReadDir(cfg.Dir)
	if err != nil {
		return fmt.Errorf("reading script root: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if err := m.LoadScope(e.Name(), filepath.Join(cfg.Dir, e.Name()), cfg.InstructionLimit); err != nil {
			return err
		}
	}
	return nil
}

func printReport(rep *simulation.Report) {
	fmt.Printf("== %s (%s) after %s\n", rep.Scenario, rep.CharacterID, rep.Turns)
	fmt.Printf("hits: %d  incoming: %.1f  remaining: %.1f  negated: %d  armor destroyed: %d\n",
		rep.Hits, rep.Incoming, rep.Remaining, rep.Negated, rep.ArmorDestroyed)
	fmt.Printf("absorbed: %d kcal  hydration: %s  power: %s  meals refused: %d\n",
		rep.Absorbed.KCal(), rep.Hydration, rep.Power, rep.MealsRefused)
	for _, name := range rep.Floor {
		fmt.Printf("on the ground: %s\n", name)
	}
	for _, m := range rep.Messages {
		fmt.Printf("[%s] %s\n", m.Kind, m.Text)
	}
	for _, line := range rep.Memorial {
		fmt.Printf("memorial: %s\n", line)
	}
}
