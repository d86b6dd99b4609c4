package service

import (
	"fmt"
	"time"

	"github.com/noah-isme/notice-suspension-api/internal/models"
	"github.com/noah-isme/notice-suspension-api/internal/policy"
	appErrors "github.com/noah-isme/notice-suspension-api/pkg/errors"
)

const retainedMessage = "TS applied (existing TS with later revival date retained)"

// overlapPlan is what the strategy decided about holds already on the notice.
type overlapPlan struct {
	// keepSnapshot records the new event without making it current.
	keepSnapshot bool
	message      string
	// supersede lists events to revive with reason CSR before the new one lands.
	supersede []models.SuspendedNotice
}

// suspensionStrategy captures the rules that differ between TS and PS.
type suspensionStrategy interface {
	Type() models.SuspensionType
	// ValidateOverlap decides how the new code interacts with existing holds.
	// due is the new event's revival date, nil for PS.
	ValidateOverlap(notice *models.Notice, active []models.SuspendedNotice, code string, due *time.Time) (overlapPlan, error)
	// RevivalDate computes the due date for a new event applied at now.
	RevivalDate(now time.Time, override *int, registryDays *int, fallbackDays int) *time.Time
	// SelectRemaining picks the event that should become current once the
	// others of this type have been revived. It returns nil when none remain.
	SelectRemaining(active []models.SuspendedNotice) *models.SuspendedNotice
}

func strategyFor(t models.SuspensionType, p *policy.Policy) suspensionStrategy {
	if t == models.SuspensionTypePermanent {
		return psStrategy{policy: p}
	}
	return tsStrategy{policy: p}
}

type tsStrategy struct {
	policy *policy.Policy
}

func (tsStrategy) Type() models.SuspensionType { return models.SuspensionTypeTemporary }

func (s tsStrategy) ValidateOverlap(notice *models.Notice, _ []models.SuspendedNotice, _ string, due *time.Time) (overlapPlan, error) {
	switch notice.CurrentType() {
	case models.SuspensionTypePermanent:
		if !s.policy.IsException(notice.CurrentCode()) {
			return overlapPlan{}, appErrors.Clone(appErrors.ErrSuspensionConflict, "Cannot apply TS - Notice has been permanently suspended")
		}
	case models.SuspensionTypeTemporary:
		existing := notice.DueDateOfRevival
		if existing != nil && due != nil && due.Before(*existing) {
			return overlapPlan{keepSnapshot: true, message: retainedMessage}, nil
		}
	}
	return overlapPlan{}, nil
}

func (tsStrategy) RevivalDate(now time.Time, override *int, registryDays *int, fallbackDays int) *time.Time {
	days := fallbackDays
	switch {
	case override != nil && *override > 0:
		days = *override
	case registryDays != nil && *registryDays > 0:
		days = *registryDays
	}
	due := now.AddDate(0, 0, days)
	return &due
}

// SelectRemaining prefers the latest due date and falls back to the latest
// date of suspension when no event carries one.
func (tsStrategy) SelectRemaining(active []models.SuspendedNotice) *models.SuspendedNotice {
	var best *models.SuspendedNotice
	for i := range active {
		e := &active[i]
		if e.SuspensionType != models.SuspensionTypeTemporary || e.DueDateOfRevival == nil {
			continue
		}
		if best == nil || e.DueDateOfRevival.After(*best.DueDateOfRevival) {
			best = e
		}
	}
	if best != nil {
		return best
	}
	return latestApplied(active, models.SuspensionTypeTemporary)
}

type psStrategy struct {
	policy *policy.Policy
}

func (psStrategy) Type() models.SuspensionType { return models.SuspensionTypePermanent }

func (s psStrategy) ValidateOverlap(notice *models.Notice, active []models.SuspendedNotice, code string, _ *time.Time) (overlapPlan, error) {
	if notice.CurrentType() != models.SuspensionTypePermanent || notice.CurrentCode() == "" {
		return overlapPlan{}, nil
	}
	existing := notice.CurrentCode()
	exception := s.policy.IsException(existing)

	if s.policy.IsCRS(code) {
		if !exception {
			return overlapPlan{}, appErrors.Clone(appErrors.ErrSuspensionConflict, fmt.Sprintf("Cannot apply PS-%s on existing PS", code))
		}
		return overlapPlan{}, nil
	}
	if exception {
		return overlapPlan{}, nil
	}

	plan := overlapPlan{}
	for _, e := range active {
		if e.SuspensionType == models.SuspensionTypePermanent && e.Active() && !s.policy.IsException(e.ReasonOfSuspension) {
			plan.supersede = append(plan.supersede, e)
		}
	}
	return plan, nil
}

func (psStrategy) RevivalDate(time.Time, *int, *int, int) *time.Time {
	return nil
}

func (psStrategy) SelectRemaining(active []models.SuspendedNotice) *models.SuspendedNotice {
	return latestApplied(active, models.SuspensionTypePermanent)
}

// latestApplied returns the active event of type t with the latest date of
// suspension, breaking ties on SR number.
func latestApplied(events []models.SuspendedNotice, t models.SuspensionType) *models.SuspendedNotice {
	var best *models.SuspendedNotice
	for i := range events {
		e := &events[i]
		if e.SuspensionType != t || !e.Active() {
			continue
		}
		if best == nil || e.DateOfSuspension.After(best.DateOfSuspension) ||
			(e.DateOfSuspension.Equal(best.DateOfSuspension) && e.SrNo > best.SrNo) {
			best = e
		}
	}
	return best
}
