package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/notice-suspension-api/internal/dto"
	"github.com/noah-isme/notice-suspension-api/internal/models"
	"github.com/noah-isme/notice-suspension-api/internal/policy"
	appErrors "github.com/noah-isme/notice-suspension-api/pkg/errors"
)

// DefaultRevivalDays is used when neither the request nor the registry
// supplies a TS duration.
const DefaultRevivalDays = 30

// ApplyCommand applies one code to one notice.
type ApplyCommand struct {
	NoticeNo     string `validate:"required"`
	Source       string
	Type         models.SuspensionType `validate:"required,oneof=TS PS"`
	Code         string                `validate:"required"`
	DaysToRevive *int
	Remarks      string
	Officer      string `validate:"required"`
	SrNo         int
	CaseNo       string
}

var applyFieldErrors = map[string]*appErrors.Error{
	"NoticeNo": appErrors.Clone(appErrors.ErrInvalidNotice, "Invalid Notice Number"),
	"Type":     appErrors.Clone(appErrors.ErrMissingField, "Suspension Type is missing"),
	"Code":     appErrors.Clone(appErrors.ErrMissingField, "Reason of Suspension is missing"),
	"Officer":  appErrors.Clone(appErrors.ErrMissingField, "Officer Authorising Suspension is missing"),
}

type reasonLookup interface {
	DefaultDays(ctx context.Context, code string) *int
}

// applyDecision is the outcome of the read-only part of the pipeline.
type applyDecision struct {
	strategy suspensionStrategy
	notice   *models.Notice
	due      *time.Time
	plan     overlapPlan
	refund   bool
	// already short-circuits with success-already-applied and no event.
	already bool
}

// SuspensionService validates and applies suspensions.
type SuspensionService struct {
	suspensionEnv
	reasons      reasonLookup
	validator    *validator.Validate
	fallbackDays int
}

// NewSuspensionService constructs the applier.
func NewSuspensionService(notices noticeStore, events suspensionEventStore, reasons reasonLookup, p *policy.Policy, validate *validator.Validate, fallbackDays int, logger *zap.Logger, opts ...SuspensionOption) *SuspensionService {
	if validate == nil {
		validate = validator.New()
	}
	if fallbackDays <= 0 {
		fallbackDays = DefaultRevivalDays
	}
	return &SuspensionService{
		suspensionEnv: newSuspensionEnv(notices, events, p, logger, opts),
		reasons:       reasons,
		validator:     validate,
		fallbackDays:  fallbackDays,
	}
}

// Apply runs the full pipeline and persists the event. It never returns an
// error; every failure is reported in the result.
func (s *SuspensionService) Apply(ctx context.Context, cmd ApplyCommand) (result dto.SuspensionResult) {
	defer func() {
		if r := recover(); r != nil {
			s.log(ctx).Error("apply suspension panicked", zap.String("notice_no", cmd.NoticeNo), zap.Any("panic", r))
			result = dto.ResultFromError(cmd.NoticeNo, appErrors.ErrSystem)
		}
		s.metrics.RecordOutcome("apply", string(cmd.Type), result.AppCode)
	}()

	if err := s.validateCommand(cmd); err != nil {
		return dto.ResultFromError(cmd.NoticeNo, err)
	}

	unlock, err := s.locker.Lock(ctx, cmd.NoticeNo)
	if err != nil {
		s.log(ctx).Error("failed to lock notice", zap.String("notice_no", cmd.NoticeNo), zap.Error(err))
		return dto.ResultFromError(cmd.NoticeNo, appErrors.ErrSystem)
	}
	defer unlock()

	decision, err := s.evaluate(ctx, cmd)
	if err != nil {
		return dto.ResultFromError(cmd.NoticeNo, err)
	}
	if decision.already {
		return dto.Succeeded(cmd.NoticeNo, nil, appErrors.CodeAlreadyApplied, fmt.Sprintf("Notice already %s-%s", cmd.Type, cmd.Code))
	}
	return s.persist(ctx, cmd, decision)
}

// Check runs the pipeline without persisting anything.
func (s *SuspensionService) Check(ctx context.Context, cmd ApplyCommand) (result dto.SuspensionResult) {
	defer func() {
		if r := recover(); r != nil {
			s.log(ctx).Error("check suspension panicked", zap.String("notice_no", cmd.NoticeNo), zap.Any("panic", r))
			result = dto.ResultFromError(cmd.NoticeNo, appErrors.ErrSystem)
		}
		s.metrics.RecordOutcome("check", string(cmd.Type), result.AppCode)
	}()

	if err := s.validateCommand(cmd); err != nil {
		return dto.ResultFromError(cmd.NoticeNo, err)
	}
	decision, err := s.evaluate(ctx, cmd)
	if err != nil {
		return dto.ResultFromError(cmd.NoticeNo, err)
	}
	if decision.already {
		return dto.Succeeded(cmd.NoticeNo, nil, appErrors.CodeAlreadyApplied, fmt.Sprintf("Notice already %s-%s", cmd.Type, cmd.Code))
	}
	if decision.plan.keepSnapshot {
		return dto.Succeeded(cmd.NoticeNo, nil, appErrors.CodeAlreadyApplied, decision.plan.message)
	}
	return dto.Succeeded(cmd.NoticeNo, nil, appErrors.CodeSuccess, fmt.Sprintf("%s-%s can be applied", cmd.Type, cmd.Code))
}

// ApplyBatch applies the request to every listed notice as source.
func (s *SuspensionService) ApplyBatch(ctx context.Context, req dto.ApplySuspensionRequest, source string) dto.BatchResult {
	results := make([]dto.SuspensionResult, 0, len(req.NoticeNo))
	for _, noticeNo := range req.NoticeNo {
		results = append(results, s.Apply(ctx, commandFromRequest(req, noticeNo, source)))
	}
	return dto.NewBatchResult(results)
}

// CheckBatch dry-runs the request for every listed notice.
func (s *SuspensionService) CheckBatch(ctx context.Context, req dto.ApplySuspensionRequest, source string) dto.BatchResult {
	results := make([]dto.SuspensionResult, 0, len(req.NoticeNo))
	for _, noticeNo := range req.NoticeNo {
		results = append(results, s.Check(ctx, commandFromRequest(req, noticeNo, source)))
	}
	return dto.NewBatchResult(results)
}

func commandFromRequest(req dto.ApplySuspensionRequest, noticeNo, source string) ApplyCommand {
	return ApplyCommand{
		NoticeNo:     noticeNo,
		Source:       source,
		Type:         models.SuspensionType(req.SuspensionType),
		Code:         req.ReasonOfSuspension,
		DaysToRevive: req.DaysToRevive,
		Remarks:      req.SuspensionRemarks,
		Officer:      req.OfficerAuthorisingSuspension,
		CaseNo:       req.CaseNo,
	}
}

func (s *SuspensionService) validateCommand(cmd ApplyCommand) error {
	err := s.validator.Struct(cmd)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		if first.Field() == "Type" && first.Tag() == "oneof" {
			return appErrors.Clone(appErrors.ErrMissingField, "Invalid Suspension Type")
		}
		if mapped, ok := applyFieldErrors[first.Field()]; ok {
			return mapped
		}
	}
	return appErrors.Wrap(err, appErrors.ErrMissingField.Code, appErrors.ErrMissingField.Status, appErrors.ErrMissingField.Message)
}

// evaluate performs every read-only step of the pipeline in order.
func (s *SuspensionService) evaluate(ctx context.Context, cmd ApplyCommand) (applyDecision, error) {
	notice, err := s.loadNotice(ctx, cmd.NoticeNo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return applyDecision{}, appErrors.Clone(appErrors.ErrInvalidNotice, "Invalid Notice Number")
		}
		s.log(ctx).Error("failed to load notice", zap.String("notice_no", cmd.NoticeNo), zap.Error(err))
		return applyDecision{}, appErrors.ErrSystem
	}

	strategy := strategyFor(cmd.Type, s.policy)
	var registryDays *int
	if cmd.Type == models.SuspensionTypeTemporary && (cmd.DaysToRevive == nil || *cmd.DaysToRevive <= 0) && s.reasons != nil {
		registryDays = s.reasons.DefaultDays(ctx, cmd.Code)
	}
	due := strategy.RevivalDate(s.clock(), cmd.DaysToRevive, registryDays, s.fallbackDays)

	if notice.SnapshotMatches(cmd.Type, cmd.Code) && sameDueDate(notice.DueDateOfRevival, due) {
		return applyDecision{notice: notice, already: true}, nil
	}

	if !s.policy.SourceAllowed(cmd.Source, cmd.Type, cmd.Code) {
		return applyDecision{}, appErrors.Clone(appErrors.ErrSourceNotAuthorized,
			fmt.Sprintf("%s-%s is not allowed for source %q", cmd.Type, cmd.Code, cmd.Source))
	}

	if reason := s.policy.CheckStage(cmd.Type, cmd.Code, notice.Stage()); reason != "" {
		return applyDecision{}, appErrors.Clone(appErrors.ErrStageNotEligible, reason)
	}

	decision := applyDecision{notice: notice, strategy: strategy, due: due}
	if notice.Paid() {
		if cmd.Type != models.SuspensionTypePermanent || !s.policy.RefundOnPaid(cmd.Code) {
			return applyDecision{}, appErrors.Clone(appErrors.ErrNoticePaid, "Notice has been paid")
		}
		decision.refund = true
	}

	active, err := s.events.FindActive(ctx, cmd.NoticeNo, "")
	if err != nil {
		s.log(ctx).Error("failed to load active suspensions", zap.String("notice_no", cmd.NoticeNo), zap.Error(err))
		return applyDecision{}, appErrors.ErrSystem
	}
	decision.plan, err = decision.strategy.ValidateOverlap(notice, active, cmd.Code, decision.due)
	if err != nil {
		return applyDecision{}, err
	}
	return decision, nil
}

// sameDueDate compares revival dates by calendar day in UTC. Two nil dates
// are equal, which makes every PS re-apply a no-op.
func sameDueDate(current, next *time.Time) bool {
	if current == nil || next == nil {
		return current == nil && next == nil
	}
	cy, cm, cd := current.UTC().Date()
	ny, nm, nd := next.UTC().Date()
	return cy == ny && cm == nm && cd == nd
}

func (s *SuspensionService) persist(ctx context.Context, cmd ApplyCommand, decision applyDecision) dto.SuspensionResult {
	notice := decision.notice
	now := s.clock()
	event := &models.SuspendedNotice{
		NoticeNo:                     cmd.NoticeNo,
		SrNo:                         cmd.SrNo,
		SuspensionType:               cmd.Type,
		ReasonOfSuspension:           cmd.Code,
		DateOfSuspension:             now,
		DueDateOfRevival:             decision.due,
		SuspensionSource:             cmd.Source,
		OfficerAuthorisingSuspension: cmd.Officer,
		CaseNo:                       optionalString(cmd.CaseNo),
		SuspensionRemarks:            optionalString(cmd.Remarks),
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, old := range decision.plan.supersede {
			revival := models.Revival{
				Date:    now,
				Reason:  models.RevivalReasonChangeOfReason,
				Remarks: models.RevivalRemarksChangeOfReason,
				Officer: models.OfficerSystem,
			}
			if err := s.events.MarkRevived(ctx, old.ID, revival); err != nil {
				return fmt.Errorf("revive superseded PS-%s: %w", old.ReasonOfSuspension, err)
			}
		}
		if event.SrNo == 0 {
			srNo, err := s.events.NextSrNo(ctx)
			if err != nil {
				return fmt.Errorf("allocate sr no: %w", err)
			}
			event.SrNo = srNo
		}
		if err := s.events.Create(ctx, event); err != nil {
			return fmt.Errorf("create suspension event: %w", err)
		}
		if decision.plan.keepSnapshot {
			return nil
		}
		notice.ApplySnapshot(*event)
		if err := s.notices.Save(ctx, notice); err != nil {
			return fmt.Errorf("update notice snapshot: %w", err)
		}
		return nil
	})
	if err != nil {
		s.log(ctx).Error("failed to apply suspension",
			zap.String("notice_no", cmd.NoticeNo),
			zap.String("suspension_type", string(cmd.Type)),
			zap.String("code", cmd.Code),
			zap.Error(err))
		return dto.ResultFromError(cmd.NoticeNo, appErrors.ErrSystem)
	}

	if !decision.plan.keepSnapshot {
		s.syncMirror(ctx, notice)
	}
	if decision.refund {
		s.identifyRefund(ctx, notice, cmd.Type, cmd.Code, RefundTriggerApply)
	}
	s.recordAudit(ctx, models.AuditActionSuspensionApply, cmd.Officer, cmd.NoticeNo, event)

	srNo := event.SrNo
	if decision.plan.keepSnapshot {
		return dto.Succeeded(cmd.NoticeNo, &srNo, appErrors.CodeAlreadyApplied, decision.plan.message)
	}
	return dto.Succeeded(cmd.NoticeNo, &srNo, appErrors.CodeSuccess, fmt.Sprintf("%s Success", cmd.Type))
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
