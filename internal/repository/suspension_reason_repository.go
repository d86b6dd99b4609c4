package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/notice-suspension-api/internal/models"
)

// SuspensionReasonRepository reads the ocms_suspension_reason reference table.
type SuspensionReasonRepository struct {
	db *sqlx.DB
}

// NewSuspensionReasonRepository constructs the repository.
func NewSuspensionReasonRepository(db *sqlx.DB) *SuspensionReasonRepository {
	return &SuspensionReasonRepository{db: db}
}

// List returns every reason row ordered by type and code.
func (r *SuspensionReasonRepository) List(ctx context.Context) ([]models.SuspensionReason, error) {
	const query = `SELECT suspension_type, reason_of_suspension, description, no_of_days_for_revival, status
	FROM ocms_suspension_reason ORDER BY suspension_type DESC, reason_of_suspension`
	var reasons []models.SuspensionReason
	if err := r.db.SelectContext(ctx, &reasons, query); err != nil {
		return nil, fmt.Errorf("list suspension reasons: %w", err)
	}
	return reasons, nil
}

// Get returns the reason keyed by (type, code) or sql.ErrNoRows.
func (r *SuspensionReasonRepository) Get(ctx context.Context, t models.SuspensionType, code string) (*models.SuspensionReason, error) {
	const query = `SELECT suspension_type, reason_of_suspension, description, no_of_days_for_revival, status
	FROM ocms_suspension_reason WHERE suspension_type = $1 AND reason_of_suspension = $2`
	var reason models.SuspensionReason
	if err := r.db.GetContext(ctx, &reason, query, t, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get suspension reason %s-%s: %w", t, code, err)
	}
	return &reason, nil
}
