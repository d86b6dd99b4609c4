package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/notice-suspension-api/internal/dto"
	"github.com/noah-isme/notice-suspension-api/internal/models"
	"github.com/noah-isme/notice-suspension-api/internal/policy"
	"github.com/noah-isme/notice-suspension-api/pkg/jobs"
	"github.com/noah-isme/notice-suspension-api/pkg/logger"
)

const (
	paymentJobType       = "payment_revival"
	defaultSweepLimit    = 500
	loopReapplyRemarks   = "re-applied after expiry"
	paymentQueueName     = "payment-revival"
	defaultPaymentBuffer = 64
)

type autoRevivalEventStore interface {
	FindActive(ctx context.Context, noticeNo string, t models.SuspensionType) ([]models.SuspendedNotice, error)
	FindExpiredTS(ctx context.Context, now time.Time, limit int) ([]models.SuspendedNotice, error)
}

type eventReviver interface {
	ReviveEvent(ctx context.Context, eventID string, revival models.Revival) dto.SuspensionResult
}

type suspensionApplier interface {
	Apply(ctx context.Context, cmd ApplyCommand) dto.SuspensionResult
}

type furnishStatusLookup interface {
	LatestStatus(ctx context.Context, noticeNo string) (models.FurnishStatus, bool, error)
}

// AutoRevivalService revives holds after payment or expiry and re-applies
// looping codes. It never propagates errors to its triggers.
type AutoRevivalService struct {
	events  autoRevivalEventStore
	reviver eventReviver
	applier suspensionApplier
	furnish furnishStatusLookup
	policy  *policy.Policy
	logger  *zap.Logger
	metrics *MetricsService
	now     func() time.Time
	limit   int

	queueConfig jobs.QueueConfig
	queue       *jobs.Queue
}

// AutoRevivalOption configures the orchestrator.
type AutoRevivalOption func(*AutoRevivalService)

// WithAutoRevivalMetrics records outcomes per trigger.
func WithAutoRevivalMetrics(metrics *MetricsService) AutoRevivalOption {
	return func(s *AutoRevivalService) {
		s.metrics = metrics
	}
}

// WithPaymentWorkers sizes the payment worker pool.
func WithPaymentWorkers(workers, buffer int) AutoRevivalOption {
	return func(s *AutoRevivalService) {
		s.queueConfig.Workers = workers
		s.queueConfig.BufferSize = buffer
	}
}

// WithAutoRevivalClock injects the time source.
func WithAutoRevivalClock(now func() time.Time) AutoRevivalOption {
	return func(s *AutoRevivalService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSweepLimit caps how many expired events one sweep handles.
func WithSweepLimit(limit int) AutoRevivalOption {
	return func(s *AutoRevivalService) {
		if limit > 0 {
			s.limit = limit
		}
	}
}

// NewAutoRevivalService constructs the orchestrator.
func NewAutoRevivalService(events autoRevivalEventStore, reviver eventReviver, applier suspensionApplier, furnish furnishStatusLookup, p *policy.Policy, log *zap.Logger, opts ...AutoRevivalOption) *AutoRevivalService {
	if log == nil {
		log = zap.NewNop()
	}
	svc := &AutoRevivalService{
		events:      events,
		reviver:     reviver,
		applier:     applier,
		furnish:     furnish,
		policy:      p,
		logger:      log,
		now:         time.Now,
		limit:       defaultSweepLimit,
		queueConfig: jobs.QueueConfig{Workers: 1, BufferSize: defaultPaymentBuffer},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	svc.queueConfig.MaxRetries = 0
	svc.queueConfig.Logger = log
	svc.queue = jobs.NewQueue(paymentQueueName, svc.handlePayment, svc.queueConfig)
	return svc
}

// Start launches the payment workers.
func (s *AutoRevivalService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains queued payment revivals and waits for the workers.
func (s *AutoRevivalService) Stop() {
	s.queue.Stop()
}

// ReviveAfterPayment queues revival of every active hold on the notice and
// returns immediately. Only a rejected enqueue is reported.
func (s *AutoRevivalService) ReviveAfterPayment(ctx context.Context, noticeNo string) error {
	err := s.queue.Enqueue(jobs.Job{ID: noticeNo, Type: paymentJobType, Payload: noticeNo})
	if err != nil {
		s.metrics.RecordAutoRevival(TriggerPayment, OutcomeRejected)
		logger.FromContext(ctx, s.logger).Error("failed to queue payment revival", zap.String("notice_no", noticeNo), zap.Error(err))
		return fmt.Errorf("queue payment revival for %s: %w", noticeNo, err)
	}
	return nil
}

func (s *AutoRevivalService) handlePayment(ctx context.Context, job jobs.Job) error {
	noticeNo, ok := job.Payload.(string)
	if !ok {
		return errors.New("payment revival job without notice number")
	}
	active, err := s.events.FindActive(ctx, noticeNo, "")
	if err != nil {
		s.metrics.RecordAutoRevival(TriggerPayment, OutcomeFailed)
		return fmt.Errorf("load active suspensions for %s: %w", noticeNo, err)
	}

	revival := models.Revival{
		Reason:  models.RevivalReasonPayment,
		Remarks: models.RevivalRemarksPayment,
		Officer: models.OfficerSystem,
	}
	revived := 0
	for _, event := range active {
		result := s.reviver.ReviveEvent(ctx, event.ID, revival)
		if !result.Success() {
			s.metrics.RecordAutoRevival(TriggerPayment, OutcomeFailed)
			s.logger.Warn("payment revival failed",
				zap.String("notice_no", noticeNo),
				zap.String("suspension_id", event.ID),
				zap.String("app_code", result.AppCode),
				zap.String("message", result.Message))
			continue
		}
		s.metrics.RecordAutoRevival(TriggerPayment, OutcomeRevived)
		revived++
	}
	s.logger.Info("payment revival completed", zap.String("notice_no", noticeNo), zap.Int("active", len(active)), zap.Int("revived", revived))
	return nil
}

// ProcessExpiredTS revives every active TS whose due date has passed and
// re-applies looping codes. It returns the number of successful revivals.
func (s *AutoRevivalService) ProcessExpiredTS(ctx context.Context) (revived int) {
	start := time.Now()
	log := logger.FromContext(ctx, s.logger)
	defer func() {
		if r := recover(); r != nil {
			log.Error("expired revival sweep panicked", zap.Any("panic", r))
		}
		s.metrics.ObserveSweep(time.Since(start))
	}()

	expired, err := s.events.FindExpiredTS(ctx, s.now(), s.limit)
	if err != nil {
		s.metrics.RecordAutoRevival(TriggerExpired, OutcomeFailed)
		log.Error("failed to load expired suspensions", zap.Error(err))
		return 0
	}

	revival := models.Revival{
		Reason:  models.RevivalReasonExpired,
		Remarks: models.RevivalRemarksExpired,
		Officer: models.OfficerSystem,
	}
	for _, event := range expired {
		if ctx.Err() != nil {
			log.Warn("expired revival sweep interrupted", zap.Int("revived", revived), zap.Error(ctx.Err()))
			break
		}
		result := s.reviver.ReviveEvent(ctx, event.ID, revival)
		if !result.Success() {
			s.metrics.RecordAutoRevival(TriggerExpired, OutcomeFailed)
			log.Warn("expired revival failed",
				zap.String("notice_no", event.NoticeNo),
				zap.String("suspension_id", event.ID),
				zap.String("app_code", result.AppCode),
				zap.String("message", result.Message))
			continue
		}
		revived++
		s.metrics.RecordAutoRevival(TriggerExpired, OutcomeRevived)
		s.loop(ctx, event)
	}

	log.Info("expired revival sweep completed", zap.Int("found", len(expired)), zap.Int("revived", revived))
	return revived
}

// loop re-applies the revived code when its looping rule asks for it.
func (s *AutoRevivalService) loop(ctx context.Context, event models.SuspendedNotice) {
	log := logger.FromContext(ctx, s.logger).With(zap.String("notice_no", event.NoticeNo), zap.String("code", event.ReasonOfSuspension))

	switch s.policy.Loop(event.ReasonOfSuspension) {
	case policy.LoopAlways:
	case policy.LoopFurnishPending:
		if s.furnish == nil {
			return
		}
		status, ok, err := s.furnish.LatestStatus(ctx, event.NoticeNo)
		if err != nil {
			log.Warn("furnish status lookup failed, not re-applying", zap.Error(err))
			return
		}
		if !ok || status != models.FurnishStatusPending {
			return
		}
	default:
		return
	}

	result := s.applier.Apply(ctx, ApplyCommand{
		NoticeNo: event.NoticeNo,
		Source:   models.SourceBackend,
		Type:     models.SuspensionTypeTemporary,
		Code:     event.ReasonOfSuspension,
		Remarks:  loopReapplyRemarks,
		Officer:  models.OfficerSystem,
	})
	if !result.Success() {
		s.metrics.RecordAutoRevival(TriggerExpired, OutcomeFailed)
		log.Warn("looping re-apply failed", zap.String("app_code", result.AppCode), zap.String("message", result.Message))
		return
	}
	s.metrics.RecordAutoRevival(TriggerExpired, OutcomeReapply)
	log.Info("looping suspension re-applied", zap.String("app_code", result.AppCode))
}
