package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/notice-suspension-api/internal/models"
)

func TestAuditRepositoryCreateFillsDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.AuditLog{Action: models.AuditActionSuspensionApply, Resource: "suspension_batch"}
	require.NoError(t, NewAuditRepository(db).CreateAuditLog(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryCreateError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO audit_logs").WillReturnError(errors.New("insert failed"))

	err := NewAuditRepository(db).CreateAuditLog(context.Background(), &models.AuditLog{ID: "a1", Action: models.AuditActionPaymentRevival})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create audit log")
}
