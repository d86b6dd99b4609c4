package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/notice-suspension-api/internal/models"
	"github.com/noah-isme/notice-suspension-api/pkg/database"
)

const suspendedNoticeColumns = `id, notice_no, sr_no, suspension_type, reason_of_suspension, date_of_suspension,
       due_date_of_revival, suspension_source, case_no, officer_authorising_suspension, suspension_remarks,
       date_of_revival, revival_reason, revival_remarks, officer_authorising_revival`

// SuspendedNoticeRepository persists the append-only suspension event log.
type SuspendedNoticeRepository struct {
	db *sqlx.DB
}

// NewSuspendedNoticeRepository constructs the repository.
func NewSuspendedNoticeRepository(db *sqlx.DB) *SuspendedNoticeRepository {
	return &SuspendedNoticeRepository{db: db}
}

// NextSrNo draws the next serial number from suspended_notice_seq.
func (r *SuspendedNoticeRepository) NextSrNo(ctx context.Context) (int, error) {
	var srNo int
	if err := database.Conn(ctx, r.db).GetContext(ctx, &srNo, `SELECT nextval('suspended_notice_seq')`); err != nil {
		return 0, fmt.Errorf("next suspension sr_no: %w", err)
	}
	return srNo, nil
}

// Create inserts a new event.
func (r *SuspendedNoticeRepository) Create(ctx context.Context, event *models.SuspendedNotice) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.DateOfSuspension.IsZero() {
		event.DateOfSuspension = time.Now().UTC()
	}
	const query = `INSERT INTO ocms_suspended_notice
	(id, notice_no, sr_no, suspension_type, reason_of_suspension, date_of_suspension, due_date_of_revival,
	 suspension_source, case_no, officer_authorising_suspension, suspension_remarks)
	VALUES (:id, :notice_no, :sr_no, :suspension_type, :reason_of_suspension, :date_of_suspension, :due_date_of_revival,
	 :suspension_source, :case_no, :officer_authorising_suspension, :suspension_remarks)`
	if _, err := database.Conn(ctx, r.db).NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create suspended notice: %w", err)
	}
	return nil
}

// MarkRevived sets the revival fields of an active event. It returns
// sql.ErrNoRows when the event does not exist or was already revived.
func (r *SuspendedNoticeRepository) MarkRevived(ctx context.Context, id string, revival models.Revival) error {
	const query = `UPDATE ocms_suspended_notice
	SET date_of_revival = $2, revival_reason = $3, revival_remarks = $4, officer_authorising_revival = $5
	WHERE id = $1 AND date_of_revival IS NULL`
	result, err := database.Conn(ctx, r.db).ExecContext(ctx, query, id, revival.Date, revival.Reason, nullableString(revival.Remarks), revival.Officer)
	if err != nil {
		return fmt.Errorf("revive suspended notice %s: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check revival rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetByID returns a single event or sql.ErrNoRows.
func (r *SuspendedNoticeRepository) GetByID(ctx context.Context, id string) (*models.SuspendedNotice, error) {
	query := `SELECT ` + suspendedNoticeColumns + ` FROM ocms_suspended_notice WHERE id = $1`
	var event models.SuspendedNotice
	if err := database.Conn(ctx, r.db).GetContext(ctx, &event, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get suspended notice %s: %w", id, err)
	}
	return &event, nil
}

// FindActive lists non-revived events of the notice, oldest first. An empty
// type matches both TS and PS.
func (r *SuspendedNoticeRepository) FindActive(ctx context.Context, noticeNo string, t models.SuspensionType) ([]models.SuspendedNotice, error) {
	args := []interface{}{noticeNo}
	query := `SELECT ` + suspendedNoticeColumns + ` FROM ocms_suspended_notice WHERE notice_no = $1 AND date_of_revival IS NULL`
	if t != "" {
		args = append(args, t)
		query += ` AND suspension_type = $2`
	}
	query += ` ORDER BY date_of_suspension, sr_no`

	var events []models.SuspendedNotice
	if err := database.Conn(ctx, r.db).SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("find active suspensions: %w", err)
	}
	return events, nil
}

// FindExpiredTS lists active TS events whose due date is at or before now.
func (r *SuspendedNoticeRepository) FindExpiredTS(ctx context.Context, now time.Time, limit int) ([]models.SuspendedNotice, error) {
	if limit <= 0 {
		limit = 500
	}
	query := `SELECT ` + suspendedNoticeColumns + ` FROM ocms_suspended_notice
	WHERE suspension_type = 'TS' AND date_of_revival IS NULL AND due_date_of_revival <= $1
	ORDER BY due_date_of_revival, notice_no
	LIMIT $2`
	var events []models.SuspendedNotice
	if err := database.Conn(ctx, r.db).SelectContext(ctx, &events, query, now, limit); err != nil {
		return nil, fmt.Errorf("find expired temporary suspensions: %w", err)
	}
	return events, nil
}

// List returns a notice's event history (latest first) and the total count.
func (r *SuspendedNoticeRepository) List(ctx context.Context, filter models.SuspendedNoticeFilter) ([]models.SuspendedNotice, int, error) {
	conditions := []string{"notice_no = $1"}
	args := []interface{}{filter.NoticeNo}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("suspension_type = $%d", len(args)))
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "date_of_revival IS NULL")
	}
	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int
	conn := database.Conn(ctx, r.db)
	if err := conn.GetContext(ctx, &total, `SELECT COUNT(*) FROM ocms_suspended_notice`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count suspension history: %w", err)
	}

	page, size := filter.Page, filter.PageSize
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 500 {
		size = 50
	}
	query := `SELECT ` + suspendedNoticeColumns + ` FROM ocms_suspended_notice` + where +
		fmt.Sprintf(" ORDER BY date_of_suspension DESC, sr_no DESC LIMIT %d OFFSET %d", size, (page-1)*size)

	var events []models.SuspendedNotice
	if err := conn.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list suspension history: %w", err)
	}
	return events, total, nil
}

func nullableString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
