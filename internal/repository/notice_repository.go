package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/notice-suspension-api/internal/models"
	"github.com/noah-isme/notice-suspension-api/pkg/database"
	appErrors "github.com/noah-isme/notice-suspension-api/pkg/errors"
)

const noticeColumns = `notice_no, last_processing_stage, next_processing_date, crs_reason_of_suspension,
       amount_paid, amount_payable, suspension_type, epr_reason_of_suspension, epr_date_of_suspension,
       due_date_of_revival, version`

// NoticeRepository reads and updates the suspension columns of offence notices.
type NoticeRepository struct {
	db *sqlx.DB
}

// NewNoticeRepository constructs the repository.
func NewNoticeRepository(db *sqlx.DB) *NoticeRepository {
	return &NoticeRepository{db: db}
}

// Get returns the notice or sql.ErrNoRows.
func (r *NoticeRepository) Get(ctx context.Context, noticeNo string) (*models.Notice, error) {
	query := `SELECT ` + noticeColumns + ` FROM ocms_valid_offence_notice WHERE notice_no = $1`
	var notice models.Notice
	if err := database.Conn(ctx, r.db).GetContext(ctx, &notice, query, noticeNo); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get notice %s: %w", noticeNo, err)
	}
	return &notice, nil
}

// Save writes the snapshot and next processing date when the stored version
// still equals notice.Version, then bumps the version.
func (r *NoticeRepository) Save(ctx context.Context, notice *models.Notice) error {
	const query = `UPDATE ocms_valid_offence_notice
	SET suspension_type = :suspension_type,
	    epr_reason_of_suspension = :epr_reason_of_suspension,
	    epr_date_of_suspension = :epr_date_of_suspension,
	    due_date_of_revival = :due_date_of_revival,
	    next_processing_date = :next_processing_date,
	    version = version + 1
	WHERE notice_no = :notice_no AND version = :version`
	result, err := database.Conn(ctx, r.db).NamedExecContext(ctx, query, notice)
	if err != nil {
		return fmt.Errorf("update notice %s: %w", notice.NoticeNo, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check notice update rows: %w", err)
	}
	if rows == 0 {
		return appErrors.Clone(appErrors.ErrStaleVersion, fmt.Sprintf("notice %s modified concurrently", notice.NoticeNo))
	}
	notice.Version++
	return nil
}

// ListForReconcile pages through notices that carry a snapshot or an active
// event, ordered by notice number after the given cursor.
func (r *NoticeRepository) ListForReconcile(ctx context.Context, after string, limit int) ([]models.Notice, error) {
	if limit <= 0 || limit > 1000 {
		limit = 200
	}
	query := `SELECT ` + noticeColumns + ` FROM ocms_valid_offence_notice n
	WHERE n.notice_no > $1
	  AND (n.suspension_type IS NOT NULL
	       OR EXISTS (SELECT 1 FROM ocms_suspended_notice s WHERE s.notice_no = n.notice_no AND s.date_of_revival IS NULL))
	ORDER BY n.notice_no
	LIMIT $2`
	var notices []models.Notice
	if err := database.Conn(ctx, r.db).SelectContext(ctx, &notices, query, after, limit); err != nil {
		return nil, fmt.Errorf("list notices for reconcile: %w", err)
	}
	return notices, nil
}
