package service

import (
	"time"

	"github.com/noah-isme/notice-suspension-api/internal/models"
	"github.com/noah-isme/notice-suspension-api/internal/policy"
)

// DefaultNPDPatchDays pushes the next processing date this far past now.
const DefaultNPDPatchDays = 2

// NPDPatcher decides whether reviving a code moves the notice's next
// processing date forward.
type NPDPatcher struct {
	policy *policy.Policy
	days   int
	now    func() time.Time
}

// NewNPDPatcher constructs a patcher. Non-positive days use DefaultNPDPatchDays.
func NewNPDPatcher(p *policy.Policy, days int, now func() time.Time) *NPDPatcher {
	if days <= 0 {
		days = DefaultNPDPatchDays
	}
	if now == nil {
		now = time.Now
	}
	return &NPDPatcher{policy: p, days: days, now: now}
}

// Patch returns the next processing date after reviving (t, code) and whether
// it differs from current.
func (p *NPDPatcher) Patch(current *time.Time, t models.SuspensionType, code string) (*time.Time, bool) {
	now := p.now()
	next := now.AddDate(0, 0, p.days)

	switch p.policy.NPD(t, code) {
	case policy.NPDAlways:
		return &next, true
	case policy.NPDIfLapsed:
		if current == nil || current.Before(now) {
			return &next, true
		}
	}
	return current, false
}
