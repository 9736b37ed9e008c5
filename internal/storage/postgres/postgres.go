// Package postgres persists character state (stomach and worn item wear)
// in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/survival/internal/config"
)

// ApplicationName tags the simulator's sessions in pg_stat_activity.
const ApplicationName = "survival-simulate"

// Pool is the connection pool shared by the character state repositories.
type Pool struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPool connects to the database described by cfg and pings it once.
//
// Precondition: cfg must pass config validation.
// Postcondition: Returns a reachable Pool or a non-nil error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Pool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.ConnConfig.RuntimeParams["application_name"] = ApplicationName

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	logger.Info("database connected",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Name),
		zap.Int32("max_conns", cfg.MaxConns),
	)
	return &Pool{pool: pool, logger: logger}, nil
}

// Health pings the database, giving up after timeout.
//
// Precondition: The pool must not be closed.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// Watch checks Health every interval until ctx ends, logging failures and the
// pool's connection counts. It always returns nil so a flaky database never
// stops a simulation that is still writing telemetry.
func (p *Pool) Watch(ctx context.Context, interval, timeout time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			stat := p.pool.Stat()
			fields := []zap.Field{
				zap.Int32("total_conns", stat.TotalConns()),
				zap.Int32("idle_conns", stat.IdleConns()),
				zap.Int32("acquired_conns", stat.AcquiredConns()),
			}
			if err := p.Health(ctx, timeout); err != nil {
				p.logger.Warn("database health check failed", append(fields, zap.Error(err))...)
				continue
			}
			p.logger.Debug("database healthy", fields...)
		}
	}
}

// Close releases all pool resources.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgxpool.Pool for the repositories.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
