package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/notice-suspension-api/internal/models"
)

// FurnishApplicationRepository answers status questions about furnish applications.
type FurnishApplicationRepository struct {
	db *sqlx.DB
}

// NewFurnishApplicationRepository constructs the repository.
func NewFurnishApplicationRepository(db *sqlx.DB) *FurnishApplicationRepository {
	return &FurnishApplicationRepository{db: db}
}

// LatestStatus returns the status of the most recent application. ok is false
// when the notice has no application.
func (r *FurnishApplicationRepository) LatestStatus(ctx context.Context, noticeNo string) (status models.FurnishStatus, ok bool, err error) {
	const query = `SELECT status FROM ocms_furnish_application WHERE notice_no = $1 ORDER BY cre_date DESC LIMIT 1`
	if err := r.db.GetContext(ctx, &status, query, noticeNo); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("latest furnish status %s: %w", noticeNo, err)
	}
	return status, true, nil
}
