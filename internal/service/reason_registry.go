package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/notice-suspension-api/internal/dto"
	"github.com/noah-isme/notice-suspension-api/internal/models"
	"github.com/noah-isme/notice-suspension-api/internal/policy"
	appErrors "github.com/noah-isme/notice-suspension-api/pkg/errors"
)

type reasonStore interface {
	List(ctx context.Context) ([]models.SuspensionReason, error)
	Get(ctx context.Context, t models.SuspensionType, code string) (*models.SuspensionReason, error)
}

const reasonListCacheKey = "reasons:all"

// ReasonRegistry serves suspension reason reference data through the Redis cache.
type ReasonRegistry struct {
	store  reasonStore
	policy *policy.Policy
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger
}

// NewReasonRegistry constructs the registry. cache may be nil.
func NewReasonRegistry(store reasonStore, p *policy.Policy, cache *CacheService, ttl time.Duration, logger *zap.Logger) *ReasonRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReasonRegistry{store: store, policy: p, cache: cache, ttl: ttl, logger: logger}
}

// Lookup returns the reference row for (t, code). Unknown codes yield ErrNotFound.
func (r *ReasonRegistry) Lookup(ctx context.Context, t models.SuspensionType, code string) (*models.SuspensionReason, error) {
	key := fmt.Sprintf("reason:%s:%s", t, code)
	var cached models.SuspensionReason
	if hit, _ := r.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	reason, err := r.store.Get(ctx, t, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("suspension reason %s-%s not found", t, code))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load suspension reason")
	}
	_ = r.cache.Set(ctx, key, reason, r.ttl)
	return reason, nil
}

// DefaultDays returns the registry revival duration for a TS code, or nil
// when the code is unknown or the lookup fails.
func (r *ReasonRegistry) DefaultDays(ctx context.Context, code string) *int {
	reason, err := r.Lookup(ctx, models.SuspensionTypeTemporary, code)
	if err != nil {
		if !errors.Is(err, appErrors.ErrNotFound) {
			r.logger.Warn("suspension reason lookup failed, using fallback duration", zap.String("code", code), zap.Error(err))
		}
		return nil
	}
	return reason.NoOfDaysForRevival
}

// List returns every reference row.
func (r *ReasonRegistry) List(ctx context.Context) ([]models.SuspensionReason, error) {
	var cached []models.SuspensionReason
	if hit, _ := r.cache.Get(ctx, reasonListCacheKey, &cached); hit {
		return cached, nil
	}
	reasons, err := r.store.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list suspension reasons")
	}
	_ = r.cache.Set(ctx, reasonListCacheKey, reasons, r.ttl)
	return reasons, nil
}

// Codes lists the active codes of type t that source may apply. Empty t or
// source widen the listing.
func (r *ReasonRegistry) Codes(ctx context.Context, t models.SuspensionType, source string) ([]dto.SuspensionCode, error) {
	reasons, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]models.SuspensionReason, len(reasons))
	for _, reason := range reasons {
		byKey[string(reason.SuspensionType)+":"+reason.ReasonOfSuspension] = reason
	}

	codes := make([]dto.SuspensionCode, 0)
	for _, rule := range r.policy.Codes(t, source) {
		reason, ok := byKey[string(rule.Type)+":"+rule.Code]
		if !ok || !reason.Active() {
			continue
		}
		codes = append(codes, dto.SuspensionCode{
			SuspensionType:     rule.Type,
			ReasonOfSuspension: rule.Code,
			Description:        reason.Description,
			NoOfDaysForRevival: reason.NoOfDaysForRevival,
			Status:             reason.Status,
		})
	}
	return codes, nil
}

// Invalidate drops cached reference rows.
func (r *ReasonRegistry) Invalidate(ctx context.Context) error {
	return r.cache.Invalidate(ctx, "reason*")
}
