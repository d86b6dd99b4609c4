package models

// ReasonStatusActive marks reference rows that may be applied.
const ReasonStatusActive = "A"

// SuspensionReason is reference data keyed by (type, code) (ocms_suspension_reason).
type SuspensionReason struct {
	SuspensionType     SuspensionType `db:"suspension_type" json:"suspension_type"`
	ReasonOfSuspension string         `db:"reason_of_suspension" json:"reason_of_suspension"`
	Description        string         `db:"description" json:"description"`
	NoOfDaysForRevival *int           `db:"no_of_days_for_revival" json:"no_of_days_for_revival,omitempty"`
	Status             string         `db:"status" json:"status"`
}

// Active reports whether the code may still be applied.
func (r SuspensionReason) Active() bool {
	return r.Status == ReasonStatusActive
}
