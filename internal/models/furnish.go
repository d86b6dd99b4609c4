package models

import "time"

// FurnishStatus is the review state of a driver/hirer furnish application.
type FurnishStatus string

const (
	FurnishStatusPending  FurnishStatus = "P"
	FurnishStatusApproved FurnishStatus = "A"
	FurnishStatusRejected FurnishStatus = "R"
)

// FurnishApplication is the read-only projection of ocms_furnish_application.
type FurnishApplication struct {
	NoticeNo string        `db:"notice_no" json:"notice_no"`
	Status   FurnishStatus `db:"status" json:"status"`
	CreDate  time.Time     `db:"cre_date" json:"cre_date"`
}
