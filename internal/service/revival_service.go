package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/notice-suspension-api/internal/dto"
	"github.com/noah-isme/notice-suspension-api/internal/models"
	"github.com/noah-isme/notice-suspension-api/internal/policy"
	appErrors "github.com/noah-isme/notice-suspension-api/pkg/errors"
)

// ReviveCommand lifts the current suspension of Type from a notice.
type ReviveCommand struct {
	NoticeNo string                `validate:"required"`
	Type     models.SuspensionType `validate:"required,oneof=TS PS"`
	Reason   string                `validate:"required"`
	Remarks  string
	Officer  string `validate:"required"`
}

var reviveFieldErrors = map[string]*appErrors.Error{
	"NoticeNo": appErrors.Clone(appErrors.ErrInvalidNotice, "Invalid Notice Number"),
	"Type":     appErrors.Clone(appErrors.ErrMissingField, "Suspension Type is missing"),
	"Reason":   appErrors.Clone(appErrors.ErrMissingField, "Revival Reason is missing"),
	"Officer":  appErrors.Clone(appErrors.ErrMissingField, "Officer Authorising Revival is missing"),
}

// RevivalService lifts suspension events and promotes whatever remains.
type RevivalService struct {
	suspensionEnv
	patcher   *NPDPatcher
	validator *validator.Validate
}

// NewRevivalService constructs the revival engine.
func NewRevivalService(notices noticeStore, events suspensionEventStore, p *policy.Policy, patcher *NPDPatcher, validate *validator.Validate, logger *zap.Logger, opts ...SuspensionOption) *RevivalService {
	if validate == nil {
		validate = validator.New()
	}
	env := newSuspensionEnv(notices, events, p, logger, opts)
	if patcher == nil {
		patcher = NewNPDPatcher(p, DefaultNPDPatchDays, env.now)
	}
	return &RevivalService{suspensionEnv: env, patcher: patcher, validator: validate}
}

// Revive lifts the event reflected by the notice snapshot. It never returns
// an error; every failure is reported in the result.
func (s *RevivalService) Revive(ctx context.Context, cmd ReviveCommand) (result dto.SuspensionResult) {
	noticeNo, suspensionType := cmd.NoticeNo, string(cmd.Type)
	defer s.guard(ctx, "revive", &suspensionType, &noticeNo, &result)

	if err := s.validateCommand(cmd); err != nil {
		return dto.ResultFromError(cmd.NoticeNo, err)
	}

	unlock, err := s.locker.Lock(ctx, cmd.NoticeNo)
	if err != nil {
		s.log(ctx).Error("failed to lock notice", zap.String("notice_no", cmd.NoticeNo), zap.Error(err))
		return dto.ResultFromError(cmd.NoticeNo, appErrors.ErrSystem)
	}
	defer unlock()

	notice, err := s.loadNotice(ctx, cmd.NoticeNo)
	if err != nil {
		return dto.ResultFromError(cmd.NoticeNo, s.noticeError(ctx, cmd.NoticeNo, err))
	}
	if notice.CurrentType() != cmd.Type {
		return dto.ResultFromError(cmd.NoticeNo, appErrors.Clone(appErrors.ErrNotSuspended,
			fmt.Sprintf("Notice is not currently under %s", cmd.Type)))
	}

	active, err := s.events.FindActive(ctx, cmd.NoticeNo, "")
	if err != nil {
		s.log(ctx).Error("failed to load active suspensions", zap.String("notice_no", cmd.NoticeNo), zap.Error(err))
		return dto.ResultFromError(cmd.NoticeNo, appErrors.ErrSystem)
	}
	target := reflectedEvent(notice, active, cmd.Type)
	if target == nil {
		return dto.ResultFromError(cmd.NoticeNo, appErrors.Clone(appErrors.ErrNotSuspended,
			fmt.Sprintf("No active %s found for notice", cmd.Type)))
	}

	revival := models.Revival{Reason: cmd.Reason, Remarks: cmd.Remarks, Officer: cmd.Officer}
	if err := s.revive(ctx, notice, active, *target, revival, true); err != nil {
		return dto.ResultFromError(cmd.NoticeNo, err)
	}
	return dto.Succeeded(cmd.NoticeNo, nil, appErrors.CodeSuccess, fmt.Sprintf("%s Revival Success", cmd.Type))
}

// ReviveEvent lifts one specific event regardless of the snapshot. The
// snapshot is recomputed only when it currently shows the event's type.
func (s *RevivalService) ReviveEvent(ctx context.Context, eventID string, revival models.Revival) (result dto.SuspensionResult) {
	var noticeNo, suspensionType string
	defer s.guard(ctx, "revive_event", &suspensionType, &noticeNo, &result)

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dto.ResultFromError("", appErrors.Clone(appErrors.ErrNotSuspended, "Suspension not found"))
		}
		s.log(ctx).Error("failed to load suspension", zap.String("suspension_id", eventID), zap.Error(err))
		return dto.ResultFromError("", appErrors.ErrSystem)
	}
	noticeNo, suspensionType = event.NoticeNo, string(event.SuspensionType)

	unlock, err := s.locker.Lock(ctx, noticeNo)
	if err != nil {
		s.log(ctx).Error("failed to lock notice", zap.String("notice_no", noticeNo), zap.Error(err))
		return dto.ResultFromError(noticeNo, appErrors.ErrSystem)
	}
	defer unlock()

	notice, err := s.loadNotice(ctx, noticeNo)
	if err != nil {
		return dto.ResultFromError(noticeNo, s.noticeError(ctx, noticeNo, err))
	}
	active, err := s.events.FindActive(ctx, noticeNo, "")
	if err != nil {
		s.log(ctx).Error("failed to load active suspensions", zap.String("notice_no", noticeNo), zap.Error(err))
		return dto.ResultFromError(noticeNo, appErrors.ErrSystem)
	}
	var target *models.SuspendedNotice
	for i := range active {
		if active[i].ID == eventID {
			target = &active[i]
			break
		}
	}
	if target == nil {
		return dto.ResultFromError(noticeNo, appErrors.Clone(appErrors.ErrNotSuspended, "Suspension already revived"))
	}

	updateSnapshot := notice.CurrentType() == target.SuspensionType
	if err := s.revive(ctx, notice, active, *target, revival, updateSnapshot); err != nil {
		return dto.ResultFromError(noticeNo, err)
	}
	return dto.Succeeded(noticeNo, nil, appErrors.CodeSuccess, fmt.Sprintf("%s Revival Success", target.SuspensionType))
}

// ReviveBatch revives every listed notice.
func (s *RevivalService) ReviveBatch(ctx context.Context, req dto.ReviveSuspensionRequest) dto.BatchResult {
	results := make([]dto.SuspensionResult, 0, len(req.NoticeNo))
	for _, noticeNo := range req.NoticeNo {
		results = append(results, s.Revive(ctx, ReviveCommand{
			NoticeNo: noticeNo,
			Type:     models.SuspensionType(req.SuspensionType),
			Reason:   req.RevivalReason,
			Remarks:  req.RevivalRemarks,
			Officer:  req.OfficerAuthorisingRevival,
		}))
	}
	return dto.NewBatchResult(results)
}

// guard is deferred directly so recover sees the panic; the pointers are read
// after the body has filled them in.
func (s *RevivalService) guard(ctx context.Context, operation string, suspensionType, noticeNo *string, result *dto.SuspensionResult) {
	if r := recover(); r != nil {
		s.log(ctx).Error("revival panicked", zap.String("notice_no", *noticeNo), zap.Any("panic", r))
		*result = dto.ResultFromError(*noticeNo, appErrors.ErrSystem)
	}
	s.metrics.RecordOutcome(operation, *suspensionType, result.AppCode)
}

func (s *RevivalService) validateCommand(cmd ReviveCommand) error {
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
		if mapped, ok := reviveFieldErrors[first.Field()]; ok {
			return mapped
		}
	}
	return appErrors.Wrap(err, appErrors.ErrMissingField.Code, appErrors.ErrMissingField.Status, appErrors.ErrMissingField.Message)
}

func (s *RevivalService) noticeError(ctx context.Context, noticeNo string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrInvalidNotice, "Invalid Notice Number")
	}
	s.log(ctx).Error("failed to load notice", zap.String("notice_no", noticeNo), zap.Error(err))
	return appErrors.ErrSystem
}

// revive marks target revived, recomputes the snapshot when asked and patches
// the next processing date, all in one transaction.
func (s *RevivalService) revive(ctx context.Context, notice *models.Notice, active []models.SuspendedNotice, target models.SuspendedNotice, revival models.Revival, updateSnapshot bool) error {
	revival.Date = s.clock()
	remaining := make([]models.SuspendedNotice, 0, len(active))
	for _, e := range active {
		if e.ID != target.ID {
			remaining = append(remaining, e)
		}
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.events.MarkRevived(ctx, target.ID, revival); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotSuspended, "Suspension already revived")
			}
			return fmt.Errorf("mark suspension revived: %w", err)
		}

		changed := false
		if updateSnapshot {
			if next := s.promote(target.SuspensionType, remaining); next != nil {
				notice.ApplySnapshot(*next)
			} else {
				notice.ClearSnapshot()
			}
			changed = true
		}
		if npd, patched := s.patcher.Patch(notice.NextProcessingDate, target.SuspensionType, target.ReasonOfSuspension); patched {
			notice.NextProcessingDate = npd
			changed = true
		}
		if !changed {
			return nil
		}
		if err := s.notices.Save(ctx, notice); err != nil {
			return fmt.Errorf("update notice snapshot: %w", err)
		}
		return nil
	})
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) && appErr.Code == appErrors.CodeNotSuspended {
			return appErr
		}
		s.log(ctx).Error("failed to revive suspension",
			zap.String("notice_no", notice.NoticeNo),
			zap.String("suspension_id", target.ID),
			zap.String("code", target.ReasonOfSuspension),
			zap.Error(err))
		return appErrors.ErrSystem
	}

	if updateSnapshot {
		s.syncMirror(ctx, notice)
	}
	if target.SuspensionType == models.SuspensionTypePermanent && s.policy.RefundOnRevival(target.ReasonOfSuspension) {
		s.identifyRefund(ctx, notice, target.SuspensionType, target.ReasonOfSuspension, RefundTriggerRevival)
	}
	s.recordAudit(ctx, models.AuditActionSuspensionRevive, revival.Officer, notice.NoticeNo, map[string]interface{}{
		"suspension_id":  target.ID,
		"sr_no":          target.SrNo,
		"code":           target.ReasonOfSuspension,
		"revival_reason": revival.Reason,
	})
	return nil
}

// promote selects the next current event: the same type first, then the
// other type so a hold of either kind is never hidden.
func (s *RevivalService) promote(t models.SuspensionType, remaining []models.SuspendedNotice) *models.SuspendedNotice {
	if next := strategyFor(t, s.policy).SelectRemaining(remaining); next != nil {
		return next
	}
	other := models.SuspensionTypePermanent
	if t == models.SuspensionTypePermanent {
		other = models.SuspensionTypeTemporary
	}
	return strategyFor(other, s.policy).SelectRemaining(remaining)
}

// reflectedEvent finds the active event of type t the snapshot points at,
// falling back to the most recently applied one.
func reflectedEvent(notice *models.Notice, active []models.SuspendedNotice, t models.SuspensionType) *models.SuspendedNotice {
	for i := range active {
		if active[i].SuspensionType == t && notice.ReflectsEvent(active[i]) {
			return &active[i]
		}
	}
	return latestApplied(active, t)
}
