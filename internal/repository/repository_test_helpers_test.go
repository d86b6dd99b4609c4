package repository

import (
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var noticeColumnNames = []string{"notice_no", "last_processing_stage", "next_processing_date", "crs_reason_of_suspension",
	"amount_paid", "amount_payable", "suspension_type", "epr_reason_of_suspension", "epr_date_of_suspension",
	"due_date_of_revival", "version"}

var suspendedNoticeColumnNames = []string{"id", "notice_no", "sr_no", "suspension_type", "reason_of_suspension", "date_of_suspension",
	"due_date_of_revival", "suspension_source", "case_no", "officer_authorising_suspension", "suspension_remarks",
	"date_of_revival", "revival_reason", "revival_remarks", "officer_authorising_revival"}
