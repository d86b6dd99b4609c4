package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/notice-suspension-api/internal/models"
)

func TestSuspendedNoticeRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ocms_suspended_notice")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	event := &models.SuspendedNotice{
		NoticeNo:                     "500400001A",
		SrNo:                         17,
		SuspensionType:               models.SuspensionTypeTemporary,
		ReasonOfSuspension:           "ACR",
		SuspensionSource:             models.SourceStaff,
		OfficerAuthorisingSuspension: "officer-1",
	}
	require.NoError(t, NewSuspendedNoticeRepository(db).Create(context.Background(), event))

	assert.NotEmpty(t, event.ID)
	assert.False(t, event.DateOfSuspension.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSuspendedNoticeRepositoryNextSrNo(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT nextval('suspended_notice_seq')")).
		WillReturnRows(sqlmock.NewRows([]string{"nextval"}).AddRow(42))

	srNo, err := NewSuspendedNoticeRepository(db).NextSrNo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, srNo)
}

func TestSuspendedNoticeRepositoryMarkRevived(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSuspendedNoticeRepository(db)
	now := time.Now().UTC()
	revival := models.Revival{Date: now, Reason: models.RevivalReasonPayment, Officer: models.OfficerSystem}

	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND date_of_revival IS NULL")).
		WithArgs("evt-1", now, "PAY", nil, "SYSTEM").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.MarkRevived(context.Background(), "evt-1", revival))

	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND date_of_revival IS NULL")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.MarkRevived(context.Background(), "evt-1", revival)
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSuspendedNoticeRepositoryFindActiveByType(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	applied := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	due := applied.AddDate(0, 0, 30)
	rows := sqlmock.NewRows(suspendedNoticeColumnNames).
		AddRow("evt-1", "N-1", 1, "TS", "ACR", applied, due, "OCMS", nil, "officer", nil, nil, nil, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("date_of_revival IS NULL AND suspension_type = $2")).
		WithArgs("N-1", "TS").
		WillReturnRows(rows)

	events, err := NewSuspendedNoticeRepository(db).FindActive(context.Background(), "N-1", models.SuspensionTypeTemporary)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].Active())
	assert.Equal(t, due, *events[0].DueDateOfRevival)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSuspendedNoticeRepositoryFindActiveAnyType(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(`date_of_revival IS NULL ORDER BY`).
		WithArgs("N-1").
		WillReturnRows(sqlmock.NewRows(suspendedNoticeColumnNames))

	events, err := NewSuspendedNoticeRepository(db).FindActive(context.Background(), "N-1", "")
	require.NoError(t, err)
	assert.Empty(t, events)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSuspendedNoticeRepositoryFindExpiredTS(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(suspendedNoticeColumnNames).
		AddRow("evt-9", "N-9", 9, "TS", "CLV", now.AddDate(0, 0, -31), now.Add(-time.Hour), "BACKEND", nil, "SYSTEM", nil, nil, nil, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("due_date_of_revival <= $1")).
		WithArgs(now, 500).
		WillReturnRows(rows)

	events, err := NewSuspendedNoticeRepository(db).FindExpiredTS(context.Background(), now, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "CLV", events[0].ReasonOfSuspension)
}

func TestSuspendedNoticeRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM ocms_suspended_notice WHERE notice_no = $1 AND suspension_type = $2 AND date_of_revival IS NULL")).
		WithArgs("N-1", "PS").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY date_of_suspension DESC, sr_no DESC LIMIT 10 OFFSET 10")).
		WithArgs("N-1", "PS").
		WillReturnRows(sqlmock.NewRows(suspendedNoticeColumnNames).
			AddRow("evt-2", "N-1", 2, "PS", "FOR", time.Now(), nil, "OCMS", nil, "officer", nil, nil, nil, nil, nil))

	events, total, err := NewSuspendedNoticeRepository(db).List(context.Background(), models.SuspendedNoticeFilter{
		NoticeNo: "N-1", Type: models.SuspensionTypePermanent, ActiveOnly: true, Page: 2, PageSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, events, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
