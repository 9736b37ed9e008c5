// Package main applies or rolls back the character state schema.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/cory-johannsen/survival/internal/config"
	"github.com/cory-johannsen/survival/internal/observability"
)

// migrateLogger routes golang-migrate's progress output through zap.
type migrateLogger struct {
	sugar   *zap.SugaredLogger
	verbose bool
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.sugar.Infof(strings.TrimSuffix(format, "\n"), v...)
}

func (l migrateLogger) Verbose() bool { return l.verbose }

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	dir := flag.String("dir", "migrations", "directory holding the migration files")
	direction := flag.String("direction", "up", "migration direction: up, down or status")
	steps := flag.Int("steps", 0, "number of steps (0 = all)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging, "migrate")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	m, err := migrate.New("file://"+*dir, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("creating migrator", zap.String("dir", *dir), zap.Error(err))
	}
	defer m.Close()
	m.Log = migrateLogger{sugar: logger.Sugar(), verbose: cfg.Logging.Level == "debug"}

	switch *direction {
	case "up":
		if *steps > 0 {
			err = m.Steps(*steps)
		} else {
			err = m.Up()
		}
	case "down":
		if *steps > 0 {
			err = m.Steps(-*steps)
		} else {
			err = m.Down()
		}
	case "status":
	default:
		logger.Fatal("invalid direction", zap.String("direction", *direction))
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Fatal("migration failed", zap.String("direction", *direction), zap.Error(err))
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		logger.Fatal("reading schema version", zap.Error(verr))
	}
	logger.Info("schema",
		zap.String("direction", *direction),
		zap.Bool("changed", err == nil && *direction != "status"),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
		zap.Duration("elapsed", time.Since(start)),
	)
	fmt.Fprintf(os.Stdout, "version=%d dirty=%v\n", version, dirty)
}
