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

var reasonColumnNames = []string{"suspension_type", "reason_of_suspension", "description", "no_of_days_for_revival", "status"}

func TestSuspensionReasonRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	rows := sqlmock.NewRows(reasonColumnNames).
		AddRow("TS", "ACR", "Appeal", 21, "A").
		AddRow("PS", "FOR", "Foreign vehicle", nil, "A")
	mock.ExpectQuery(regexp.QuoteMeta("FROM ocms_suspension_reason ORDER BY")).WillReturnRows(rows)

	reasons, err := NewSuspensionReasonRepository(db).List(context.Background())
	require.NoError(t, err)
	require.Len(t, reasons, 2)
	require.NotNil(t, reasons[0].NoOfDaysForRevival)
	assert.Equal(t, 21, *reasons[0].NoOfDaysForRevival)
	assert.Nil(t, reasons[1].NoOfDaysForRevival)
	assert.Equal(t, models.SuspensionTypePermanent, reasons[1].SuspensionType)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSuspensionReasonRepositoryGet(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSuspensionReasonRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE suspension_type = $1 AND reason_of_suspension = $2")).
		WithArgs("TS", "OUT").
		WillReturnRows(sqlmock.NewRows(reasonColumnNames).AddRow("TS", "OUT", "Outstanding", nil, "A"))
	reason, err := repo.Get(context.Background(), models.SuspensionTypeTemporary, "OUT")
	require.NoError(t, err)
	assert.Equal(t, "Outstanding", reason.Description)

	mock.ExpectQuery("FROM ocms_suspension_reason").WillReturnError(sql.ErrNoRows)
	_, err = repo.Get(context.Background(), models.SuspensionTypeTemporary, "ZZZ")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFurnishApplicationRepositoryLatestStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFurnishApplicationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM ocms_furnish_application WHERE notice_no = $1 ORDER BY cre_date DESC LIMIT 1")).
		WithArgs("N1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("P"))
	status, ok, err := repo.LatestStatus(context.Background(), "N1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.FurnishStatusPending, status)

	mock.ExpectQuery("FROM ocms_furnish_application").WillReturnError(sql.ErrNoRows)
	_, ok, err = repo.LatestStatus(context.Background(), "N2")
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectQuery("FROM ocms_furnish_application").WillReturnError(errors.New("timeout"))
	_, _, err = repo.LatestStatus(context.Background(), "N3")
	assert.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMirrorRepositoryGetAndSave(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMirrorRepository(db)
	applied := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM eocms_valid_offence_notice WHERE notice_no = $1")).
		WithArgs("N1").
		WillReturnRows(sqlmock.NewRows([]string{"notice_no", "suspension_type", "epr_reason_of_suspension", "epr_date_of_suspension"}).
			AddRow("N1", "TS", "ACR", applied))
	mirror, err := repo.Get(context.Background(), "N1")
	require.NoError(t, err)
	require.NotNil(t, mirror.SuspensionType)
	assert.Equal(t, models.SuspensionTypeTemporary, *mirror.SuspensionType)
	assert.Equal(t, "ACR", *mirror.EprReasonOfSuspension)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE eocms_valid_offence_notice")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Save(context.Background(), models.NoticeMirror{NoticeNo: "N1"}))

	mock.ExpectExec("UPDATE eocms_valid_offence_notice").WillReturnResult(sqlmock.NewResult(0, 0))
	err = repo.Save(context.Background(), models.NoticeMirror{NoticeNo: "N404"})
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}
