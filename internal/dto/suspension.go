package dto

import (
	"strings"
	"time"

	"github.com/noah-isme/notice-suspension-api/internal/models"
	appErrors "github.com/noah-isme/notice-suspension-api/pkg/errors"
)

// ApplySuspensionRequest applies one code to a list of notices.
type ApplySuspensionRequest struct {
	NoticeNo                     []string `json:"noticeNo"`
	SuspensionType               string   `json:"suspensionType"`
	ReasonOfSuspension           string   `json:"reasonOfSuspension"`
	DaysToRevive                 *int     `json:"daysToRevive,omitempty"`
	SuspensionRemarks            string   `json:"suspensionRemarks"`
	OfficerAuthorisingSuspension string   `json:"officerAuthorisingSuspension"`
	CaseNo                       string   `json:"caseNo,omitempty"`
}

// ReviveSuspensionRequest lifts the current suspension of a type from a list of notices.
type ReviveSuspensionRequest struct {
	NoticeNo                  []string `json:"noticeNo"`
	SuspensionType            string   `json:"suspensionType"`
	RevivalReason             string   `json:"revivalReason"`
	RevivalRemarks            string   `json:"revivalRemarks"`
	OfficerAuthorisingRevival string   `json:"officerAuthorisingRevival"`
}

// SuspensionResult is the per-notice outcome of an apply or revive.
type SuspensionResult struct {
	NoticeNo string `json:"noticeNo"`
	SrNo     *int   `json:"srNo,omitempty"`
	AppCode  string `json:"appCode"`
	Message  string `json:"message"`
}

// Success reports whether the result carries an OCMS-2xxx code.
func (r SuspensionResult) Success() bool {
	return strings.HasPrefix(r.AppCode, "OCMS-2")
}

// Succeeded builds a success result.
func Succeeded(noticeNo string, srNo *int, appCode, message string) SuspensionResult {
	return SuspensionResult{NoticeNo: noticeNo, SrNo: srNo, AppCode: appCode, Message: message}
}

// ResultFromError maps a typed error to a result. Unknown errors become system errors.
func ResultFromError(noticeNo string, err error) SuspensionResult {
	appErr := appErrors.FromError(err)
	if !strings.HasPrefix(appErr.Code, "OCMS-") {
		appErr = appErrors.ErrSystem
	}
	return SuspensionResult{NoticeNo: noticeNo, AppCode: appErr.Code, Message: appErr.Message}
}

// BatchResult summarises a batch request.
type BatchResult struct {
	TotalProcessed int                `json:"totalProcessed"`
	SuccessCount   int                `json:"successCount"`
	ErrorCount     int                `json:"errorCount"`
	Results        []SuspensionResult `json:"results"`
}

// NewBatchResult counts successes and errors.
func NewBatchResult(results []SuspensionResult) BatchResult {
	batch := BatchResult{TotalProcessed: len(results), Results: results}
	for _, r := range results {
		if r.Success() {
			batch.SuccessCount++
		} else {
			batch.ErrorCount++
		}
	}
	if batch.Results == nil {
		batch.Results = []SuspensionResult{}
	}
	return batch
}

// SuspensionCode is one entry of the suspension-codes listing.
type SuspensionCode struct {
	SuspensionType     models.SuspensionType `json:"suspensionType"`
	ReasonOfSuspension string                `json:"reasonOfSuspension"`
	Description        string                `json:"description"`
	NoOfDaysForRevival *int                  `json:"noOfDaysForRevival,omitempty"`
	Status             string                `json:"status"`
}

// ExpiredRevivalResponse reports a sweep of expired temporary suspensions.
type ExpiredRevivalResponse struct {
	RevivedCount int `json:"revivedCount"`
}

// PaymentAccepted acknowledges a payment-triggered revival request.
type PaymentAccepted struct {
	NoticeNo string    `json:"noticeNo"`
	Queued   bool      `json:"queued"`
	At       time.Time `json:"at"`
}

// SuspensionHistoryQuery mirrors supported listing filters.
type SuspensionHistoryQuery struct {
	Type       models.SuspensionType
	ActiveOnly bool
	Page       int
	PageSize   int
}

// DriftReport lists notices whose snapshot disagrees with their active events.
type DriftReport struct {
	Checked int           `json:"checked"`
	Drifted []NoticeDrift `json:"drifted"`
}

// NoticeDrift describes one inconsistent notice.
type NoticeDrift struct {
	NoticeNo string `json:"noticeNo"`
	Snapshot string `json:"snapshot"`
	Expected string `json:"expected"`
}
