package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultSpec runs the expiry sweep every 15 minutes.
const DefaultSpec = "0 */15 * * * *"

const defaultSweepTimeout = 10 * time.Minute

// Sweeper processes expired temporary suspensions.
type Sweeper interface {
	ProcessExpiredTS(ctx context.Context) int
}

// Scheduler triggers the expiry sweep on a cron spec with a seconds field.
// A tick that fires while the previous sweep is running is skipped.
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	sweeper Sweeper
	logger  *zap.Logger
	timeout time.Duration

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures the scheduler.
type Option func(*Scheduler)

// WithSweepTimeout bounds a single sweep.
func WithSweepTimeout(timeout time.Duration) Option {
	return func(s *Scheduler) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// New validates spec and registers the sweep job.
func New(spec string, sweeper Sweeper, logger *zap.Logger, opts ...Option) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if spec == "" {
		spec = DefaultSpec
	}
	s := &Scheduler{spec: spec, sweeper: sweeper, logger: logger, timeout: defaultSweepTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	cronLog := cronLogger{sugar: logger.Sugar()}
	s.cron = cron.New(
		cron.WithSeconds(),
		cron.WithLocation(time.UTC),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return nil, fmt.Errorf("invalid auto revival schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins firing ticks. Sweeps run under ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()
	s.cron.Start()
	s.logger.Info("auto revival scheduler started", zap.String("spec", s.spec))
}

// Stop prevents new ticks, cancels a running sweep and waits for it.
func (s *Scheduler) Stop() {
	done := s.cron.Stop()
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	<-done.Done()
	s.logger.Info("auto revival scheduler stopped")
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	base := s.ctx
	s.mu.Unlock()
	if base == nil {
		base = context.Background()
	}
	ctx, cancel := context.WithTimeout(base, s.timeout)
	defer cancel()

	start := time.Now()
	revived := s.sweeper.ProcessExpiredTS(ctx)
	s.logger.Info("auto revival tick completed", zap.Int("revived", revived), zap.Duration("elapsed", time.Since(start)))
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
