// Package server runs the simulator's long-lived pieces side by side: the
// scenario runner, the metrics endpoint and the database health check. The
// group shuts down together when one piece finishes, fails or a signal arrives.
package server

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is a component that runs until ctx ends or its work is done.
type Service interface {
	// Start blocks while the service runs. Returning nil means the work is complete.
	Start(ctx context.Context) error
	// Stop releases what Start holds. It may be called after Start returned.
	Stop()
}

// FuncService adapts a start/stop function pair into the Service interface.
// A nil StopFn is skipped.
type FuncService struct {
	StartFn func(ctx context.Context) error
	StopFn  func()
}

// Start calls the underlying start function.
func (f *FuncService) Start(ctx context.Context) error { return f.StartFn(ctx) }

// Stop calls the underlying stop function.
func (f *FuncService) Stop() {
	if f.StopFn != nil {
		f.StopFn()
	}
}

// Lifecycle starts a group of services and stops them in reverse order.
type Lifecycle struct {
	logger   *zap.Logger
	services []namedService
	mu       sync.Mutex
}

type namedService struct {
	name    string
	service Service
}

type exit struct {
	name string
	err  error
}

// NewLifecycle creates a new Lifecycle manager.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{
		logger: logger,
	}
}

// Add registers a named service. Services start in the order they are added.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services = append(l.services, namedService{name: name, service: svc})
}

// Run starts every service and blocks until the first of them returns, ctx
// ends or SIGINT/SIGTERM arrives. Every service is then stopped in reverse
// order and waited for.
//
// Postcondition: All services have returned from Start. Returns the error of
// the service that ended the run, or nil.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()

	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l.mu.Lock()
	services := append([]namedService(nil), l.services...)
	l.mu.Unlock()

	exits := make(chan exit, len(services))
	for _, ns := range services {
		go func() {
			l.logger.Info("starting service", zap.String("service", ns.name))
			svcStart := time.Now()
			err := ns.service.Start(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				l.logger.Error("service failed",
					zap.String("service", ns.name),
					zap.Error(err),
					zap.Duration("uptime", time.Since(svcStart)),
				)
			}
			exits <- exit{name: ns.name, err: err}
		}()
	}
	l.logger.Info("all services started",
		zap.Int("count", len(services)),
		zap.Duration("startup", time.Since(start)),
	)

	var result error
	remaining := len(services)
	if remaining > 0 {
		select {
		case first := <-exits:
			remaining--
			l.logger.Info("service finished, shutting down", zap.String("service", first.name))
			if first.err != nil && !errors.Is(first.err, context.Canceled) {
				result = fmt.Errorf("service %s: %w", first.name, first.err)
			}
		case <-ctx.Done():
			l.logger.Info("context cancelled, shutting down", zap.NamedError("cause", context.Cause(ctx)))
		}
	}
	cancel()
	l.shutdown(services)
	for ; remaining > 0; remaining-- {
		<-exits
	}

	l.logger.Info("shutdown complete",
		zap.Duration("total_uptime", time.Since(start)),
	)
	return result
}

func (l *Lifecycle) shutdown(services []namedService) {
	shutdownStart := time.Now()
	for i := len(services) - 1; i >= 0; i-- {
		ns := services[i]
		svcStart := time.Now()
		ns.service.Stop()
		l.logger.Info("service stopped",
			zap.String("service", ns.name),
			zap.Duration("elapsed", time.Since(svcStart)),
		)
	}
	l.logger.Info("all services stopped",
		zap.Duration("shutdown_elapsed", time.Since(shutdownStart)),
	)
}
