package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func snapshotOf(event SuspendedNotice) Notice {
	n := Notice{NoticeNo: event.NoticeNo}
	n.ApplySnapshot(event)
	return n
}

func TestNoticeAccessorsOnValues(t *testing.T) {
	applied := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	event := SuspendedNotice{NoticeNo: "N1", SuspensionType: SuspensionTypeTemporary, ReasonOfSuspension: "ACR", DateOfSuspension: applied}

	assert.Equal(t, SuspensionTypeTemporary, snapshotOf(event).CurrentType())
	assert.Equal(t, "ACR", snapshotOf(event).CurrentCode())
	assert.True(t, snapshotOf(event).SnapshotMatches(SuspensionTypeTemporary, "ACR"))
	assert.True(t, snapshotOf(event).ReflectsEvent(event))

	later := event
	later.DateOfSuspension = applied.Add(time.Hour)
	assert.False(t, snapshotOf(event).ReflectsEvent(later))
}

func TestNoticeEmptySnapshot(t *testing.T) {
	var n Notice
	assert.Empty(t, n.CurrentType())
	assert.Empty(t, n.CurrentCode())
	assert.Empty(t, n.Stage())
	assert.False(t, n.Paid())

	paid := "FP"
	n.CrsReasonOfSuspension = &paid
	assert.True(t, n.Paid())

	n.ApplySnapshot(SuspendedNotice{SuspensionType: SuspensionTypePermanent, ReasonOfSuspension: "FOR"})
	n.ClearSnapshot()
	assert.Nil(t, n.SuspensionType)
	assert.Nil(t, n.DueDateOfRevival)
}
