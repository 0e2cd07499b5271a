// Package jobs runs planner work on a cron schedule inside the worker process.
package jobs

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/loadplanner/internal/config"
	loadsvc "github.com/Additional-Code/loadplanner/internal/service/load"
)

// Optimizer runs an optimization.
type Optimizer interface {
	Optimize(ctx context.Context, req loadsvc.OptimizeRequest) (*loadsvc.OptimizeResult, error)
}

// Scheduler triggers Optimize on a cron spec. Runs never overlap.
type Scheduler struct {
	cron      *cron.Cron
	optimizer Optimizer
	logger    *zap.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

// Module wires the scheduler into the Fx lifecycle when enabled.
var Module = fx.Options(
	fx.Invoke(func(lc fx.Lifecycle, cfg config.Config, svc *loadsvc.Service, logger *zap.Logger) error {
		if !cfg.Scheduler.Enabled {
			logger.Info("optimization scheduler disabled")
			return nil
		}
		s, err := NewScheduler(cfg.Scheduler.Spec, svc, logger)
		if err != nil {
			return err
		}
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				s.Start()
				logger.Info("optimization scheduler started", zap.String("spec", cfg.Scheduler.Spec))
				return nil
			},
			OnStop: s.Stop,
		})
		return nil
	}),
)

// NewScheduler registers the optimization job under spec.
func NewScheduler(spec string, optimizer Optimizer, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cl := cronLogger{logger: logger.Named("cron")}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{cron: c, optimizer: optimizer, logger: logger, ctx: ctx, cancel: cancel}

	if _, err := c.AddFunc(spec, s.Run); err != nil {
		cancel()
		return nil, fmt.Errorf("schedule optimization %q: %w", spec, err)
	}
	return s, nil
}

// Start begins dispatching scheduled runs.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels an in-flight run and waits for it to return or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("optimization scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run performs one optimization over the whole pending pool.
func (s *Scheduler) Run() {
	result, err := s.optimizer.Optimize(s.ctx, loadsvc.OptimizeRequest{})
	if err != nil {
		s.logger.Error("scheduled optimization failed", zap.Error(err))
		return
	}

	fields := []zap.Field{
		zap.String("source", string(result.Plan.Source)),
		zap.Int("orders", result.Plan.Summary.TotalOrders),
		zap.Int("loads", len(result.Plan.Loads)),
	}
	if result.Report != nil {
		fields = append(fields,
			zap.Int("committed", result.Report.Committed),
			zap.Int("failed", result.Report.Failed),
		)
	}
	s.logger.Info("scheduled optimization finished", fields...)
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
