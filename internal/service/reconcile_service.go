package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/notice-suspension-api/internal/dto"
	"github.com/noah-isme/notice-suspension-api/internal/models"
	"github.com/noah-isme/notice-suspension-api/internal/policy"
)

const reconcilePageSize = 200

type reconcileNoticeStore interface {
	ListForReconcile(ctx context.Context, after string, limit int) ([]models.Notice, error)
}

type activeEventFinder interface {
	FindActive(ctx context.Context, noticeNo string, t models.SuspensionType) ([]models.SuspendedNotice, error)
}

// ReconcileService reports notices whose snapshot does not point at an
// active event.
type ReconcileService struct {
	notices reconcileNoticeStore
	events  activeEventFinder
	policy  *policy.Policy
	logger  *zap.Logger
}

// NewReconcileService constructs the checker.
func NewReconcileService(notices reconcileNoticeStore, events activeEventFinder, p *policy.Policy, logger *zap.Logger) *ReconcileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconcileService{notices: notices, events: events, policy: p, logger: logger}
}

// Check walks every suspended notice. It is read only.
func (s *ReconcileService) Check(ctx context.Context) (dto.DriftReport, error) {
	report := dto.DriftReport{Drifted: []dto.NoticeDrift{}}
	after := ""
	for {
		notices, err := s.notices.ListForReconcile(ctx, after, reconcilePageSize)
		if err != nil {
			return report, fmt.Errorf("list notices: %w", err)
		}
		for i := range notices {
			notice := &notices[i]
			active, err := s.events.FindActive(ctx, notice.NoticeNo, "")
			if err != nil {
				return report, fmt.Errorf("load active suspensions for %s: %w", notice.NoticeNo, err)
			}
			report.Checked++
			if drift, ok := s.drift(notice, active); ok {
				report.Drifted = append(report.Drifted, drift)
			}
		}
		if len(notices) < reconcilePageSize {
			break
		}
		after = notices[len(notices)-1].NoticeNo
	}
	s.logger.Info("snapshot reconcile completed", zap.Int("checked", report.Checked), zap.Int("drifted", len(report.Drifted)))
	return report, nil
}

func (s *ReconcileService) drift(notice *models.Notice, active []models.SuspendedNotice) (dto.NoticeDrift, bool) {
	if notice.CurrentType() != "" {
		for _, e := range active {
			if notice.ReflectsEvent(e) {
				return dto.NoticeDrift{}, false
			}
		}
	} else if len(active) == 0 {
		return dto.NoticeDrift{}, false
	}

	expected := "none"
	t := notice.CurrentType()
	if t == "" {
		t = models.SuspensionTypeTemporary
	}
	if next := strategyFor(t, s.policy).SelectRemaining(active); next != nil {
		expected = describeEvent(next.SuspensionType, next.ReasonOfSuspension)
	} else if next := latestAny(active); next != nil {
		expected = describeEvent(next.SuspensionType, next.ReasonOfSuspension)
	}
	snapshot := "none"
	if notice.CurrentType() != "" {
		snapshot = describeEvent(notice.CurrentType(), notice.CurrentCode())
	}
	return dto.NoticeDrift{NoticeNo: notice.NoticeNo, Snapshot: snapshot, Expected: expected}, true
}

func latestAny(active []models.SuspendedNotice) *models.SuspendedNotice {
	if ps := latestApplied(active, models.SuspensionTypePermanent); ps != nil {
		return ps
	}
	return latestApplied(active, models.SuspensionTypeTemporary)
}

func describeEvent(t models.SuspensionType, code string) string {
	return fmt.Sprintf("%s-%s", t, code)
}
