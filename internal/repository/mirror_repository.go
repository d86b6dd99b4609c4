package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/notice-suspension-api/internal/models"
)

// MirrorRepository updates the public eService copy of the notice. It runs
// against its own database and never joins the primary transaction.
type MirrorRepository struct {
	db *sqlx.DB
}

// NewMirrorRepository constructs the repository.
func NewMirrorRepository(db *sqlx.DB) *MirrorRepository {
	return &MirrorRepository{db: db}
}

// Get returns the mirror row or sql.ErrNoRows.
func (r *MirrorRepository) Get(ctx context.Context, noticeNo string) (*models.NoticeMirror, error) {
	const query = `SELECT notice_no, suspension_type, epr_reason_of_suspension, epr_date_of_suspension
	FROM eocms_valid_offence_notice WHERE notice_no = $1`
	var mirror models.NoticeMirror
	if err := r.db.GetContext(ctx, &mirror, query, noticeNo); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get mirror notice %s: %w", noticeNo, err)
	}
	return &mirror, nil
}

// Save overwrites the mirror snapshot. It returns sql.ErrNoRows when the row is absent.
func (r *MirrorRepository) Save(ctx context.Context, mirror models.NoticeMirror) error {
	const query = `UPDATE eocms_valid_offence_notice
	SET suspension_type = :suspension_type,
	    epr_reason_of_suspension = :epr_reason_of_suspension,
	    epr_date_of_suspension = :epr_date_of_suspension
	WHERE notice_no = :notice_no`
	result, err := r.db.NamedExecContext(ctx, query, mirror)
	if err != nil {
		return fmt.Errorf("update mirror notice %s: %w", mirror.NoticeNo, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check mirror update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
