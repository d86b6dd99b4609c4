package models

import "time"

// Notice is the authoritative offence notice row (ocms_valid_offence_notice).
// The suspension columns form the "current suspension" snapshot.
type Notice struct {
	NoticeNo              string          `db:"notice_no" json:"notice_no"`
	LastProcessingStage   *string         `db:"last_processing_stage" json:"last_processing_stage,omitempty"`
	NextProcessingDate    *time.Time      `db:"next_processing_date" json:"next_processing_date,omitempty"`
	CrsReasonOfSuspension *string         `db:"crs_reason_of_suspension" json:"crs_reason_of_suspension,omitempty"`
	AmountPaid            *float64        `db:"amount_paid" json:"amount_paid,omitempty"`
	AmountPayable         *float64        `db:"amount_payable" json:"amount_payable,omitempty"`
	SuspensionType        *SuspensionType `db:"suspension_type" json:"suspension_type,omitempty"`
	EprReasonOfSuspension *string         `db:"epr_reason_of_suspension" json:"epr_reason_of_suspension,omitempty"`
	EprDateOfSuspension   *time.Time      `db:"epr_date_of_suspension" json:"epr_date_of_suspension,omitempty"`
	DueDateOfRevival      *time.Time      `db:"due_date_of_revival" json:"due_date_of_revival,omitempty"`
	Version               int64           `db:"version" json:"version"`
}

// Paid reports whether a payment-triggered hold exists on the notice.
func (n Notice) Paid() bool {
	return n.CrsReasonOfSuspension != nil && *n.CrsReasonOfSuspension != ""
}

// CurrentType returns the snapshot suspension type or "" when not suspended.
func (n Notice) CurrentType() SuspensionType {
	if n.SuspensionType == nil {
		return ""
	}
	return *n.SuspensionType
}

// CurrentCode returns the snapshot reason code or "".
func (n Notice) CurrentCode() string {
	if n.EprReasonOfSuspension == nil {
		return ""
	}
	return *n.EprReasonOfSuspension
}

// Stage returns the last processing stage or "".
func (n Notice) Stage() string {
	if n.LastProcessingStage == nil {
		return ""
	}
	return *n.LastProcessingStage
}

// SnapshotMatches reports whether the snapshot already reflects type and code.
func (n Notice) SnapshotMatches(t SuspensionType, code string) bool {
	return n.CurrentType() == t && n.CurrentCode() == code
}

// ReflectsEvent reports whether event is the one mirrored by the snapshot.
func (n Notice) ReflectsEvent(event SuspendedNotice) bool {
	if !n.SnapshotMatches(event.SuspensionType, event.ReasonOfSuspension) || n.EprDateOfSuspension == nil {
		return false
	}
	return n.EprDateOfSuspension.Equal(event.DateOfSuspension)
}

// ApplySnapshot copies the event into the current suspension fields.
func (n *Notice) ApplySnapshot(event SuspendedNotice) {
	t := event.SuspensionType
	code := event.ReasonOfSuspension
	date := event.DateOfSuspension
	n.SuspensionType = &t
	n.EprReasonOfSuspension = &code
	n.EprDateOfSuspension = &date
	if event.DueDateOfRevival != nil {
		due := *event.DueDateOfRevival
		n.DueDateOfRevival = &due
	} else {
		n.DueDateOfRevival = nil
	}
}

// ClearSnapshot removes the current suspension.
func (n *Notice) ClearSnapshot() {
	n.SuspensionType = nil
	n.EprReasonOfSuspension = nil
	n.EprDateOfSuspension = nil
	n.DueDateOfRevival = nil
}

// NoticeMirror is the public eService copy of the snapshot (eocms_valid_offence_notice).
type NoticeMirror struct {
	NoticeNo              string          `db:"notice_no" json:"notice_no"`
	SuspensionType        *SuspensionType `db:"suspension_type" json:"suspension_type,omitempty"`
	EprReasonOfSuspension *string         `db:"epr_reason_of_suspension" json:"epr_reason_of_suspension,omitempty"`
	EprDateOfSuspension   *time.Time      `db:"epr_date_of_suspension" json:"epr_date_of_suspension,omitempty"`
}

// MirrorOf projects the notice snapshot onto the mirror shape.
func MirrorOf(n *Notice) NoticeMirror {
	return NoticeMirror{
		NoticeNo:              n.NoticeNo,
		SuspensionType:        n.SuspensionType,
		EprReasonOfSuspension: n.EprReasonOfSuspension,
		EprDateOfSuspension:   n.EprDateOfSuspension,
	}
}
