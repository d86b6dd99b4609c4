package dto

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/notice-suspension-api/pkg/errors"
)

func TestResultFromError(t *testing.T) {
	r := ResultFromError("N-1", appErrors.Clone(appErrors.ErrNoticePaid, ""))
	assert.Equal(t, appErrors.CodeNoticePaid, r.AppCode)
	assert.Equal(t, "N-1", r.NoticeNo)
	assert.False(t, r.Success())

	r = ResultFromError("N-1", errors.New("connection reset"))
	assert.Equal(t, appErrors.CodeSystemError, r.AppCode)

	r = ResultFromError("N-1", appErrors.ErrValidation)
	assert.Equal(t, appErrors.CodeSystemError, r.AppCode)
}

func TestNewBatchResultCounts(t *testing.T) {
	batch := NewBatchResult([]SuspensionResult{
		Succeeded("N-1", nil, appErrors.CodeSuccess, "ok"),
		Succeeded("N-2", nil, appErrors.CodeAlreadyApplied, "already"),
		ResultFromError("N-3", appErrors.ErrInvalidNotice),
	})

	assert.Equal(t, 3, batch.TotalProcessed)
	assert.Equal(t, 2, batch.SuccessCount)
	assert.Equal(t, 1, batch.ErrorCount)

	empty := NewBatchResult(nil)
	assert.NotNil(t, empty.Results)
}
