package models

import "time"

// SuspensionType distinguishes temporary from permanent holds.
type SuspensionType string

const (
	SuspensionTypeTemporary SuspensionType = "TS"
	SuspensionTypePermanent SuspensionType = "PS"
)

// Valid reports whether t is TS or PS.
func (t SuspensionType) Valid() bool {
	return t == SuspensionTypeTemporary || t == SuspensionTypePermanent
}

// Request sources. Each source has its own allow-list per suspension type.
const (
	SourceStaff   = "OCMS"
	SourcePlus    = "PLUS"
	SourceBackend = "BACKEND"
)

// Revival reasons written by the system itself.
const (
	RevivalReasonPayment         = "PAY"
	RevivalReasonExpired         = "SPO"
	RevivalReasonChangeOfReason  = "CSR"
	OfficerSystem                = "SYSTEM"
	RevivalRemarksPayment        = "payment received"
	RevivalRemarksExpired        = "expired"
	RevivalRemarksChangeOfReason = "change of suspension reason"
)

// SuspendedNotice is one append-only suspension event (ocms_suspended_notice).
// It is active until DateOfRevival is set, which happens at most once.
type SuspendedNotice struct {
	ID                           string         `db:"id" json:"id"`
	NoticeNo                     string         `db:"notice_no" json:"notice_no"`
	SrNo                         int            `db:"sr_no" json:"sr_no"`
	SuspensionType               SuspensionType `db:"suspension_type" json:"suspension_type"`
	ReasonOfSuspension           string         `db:"reason_of_suspension" json:"reason_of_suspension"`
	DateOfSuspension             time.Time      `db:"date_of_suspension" json:"date_of_suspension"`
	DueDateOfRevival             *time.Time     `db:"due_date_of_revival" json:"due_date_of_revival,omitempty"`
	SuspensionSource             string         `db:"suspension_source" json:"suspension_source"`
	CaseNo                       *string        `db:"case_no" json:"case_no,omitempty"`
	OfficerAuthorisingSuspension string         `db:"officer_authorising_suspension" json:"officer_authorising_suspension"`
	SuspensionRemarks            *string        `db:"suspension_remarks" json:"suspension_remarks,omitempty"`
	DateOfRevival                *time.Time     `db:"date_of_revival" json:"date_of_revival,omitempty"`
	RevivalReason                *string        `db:"revival_reason" json:"revival_reason,omitempty"`
	RevivalRemarks               *string        `db:"revival_remarks" json:"revival_remarks,omitempty"`
	OfficerAuthorisingRevival    *string        `db:"officer_authorising_revival" json:"officer_authorising_revival,omitempty"`
}

// Active reports whether the event has not been revived.
func (e SuspendedNotice) Active() bool {
	return e.DateOfRevival == nil
}

// Revival carries the fields set when an event is lifted.
type Revival struct {
	Date    time.Time
	Reason  string
	Remarks string
	Officer string
}

// SuspendedNoticeFilter narrows history listings.
type SuspendedNoticeFilter struct {
	NoticeNo   string
	Type       SuspensionType
	ActiveOnly bool
	Page       int
	PageSize   int
}
