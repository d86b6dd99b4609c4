package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/notice-suspension-api/internal/models"
)

type failingNotices struct{}

func (failingNotices) ListForReconcile(context.Context, string, int) ([]models.Notice, error) {
	return nil, errors.New("db down")
}

func TestReconcileReportsDrift(t *testing.T) {
	store := newMemStore()

	store.addNotice(noticeAt("A-OK", "RD1"))
	store.seedEvent(tsEvent("A-OK", "ACR", baseTime, 10), true)

	store.addNotice(noticeAt("B-CLEAR", "RD1"))

	store.addNotice(noticeAt("C-STALE", "RD1"))
	stale := store.seedEvent(tsEvent("C-STALE", "ACR", baseTime.Add(-time.Hour), 10), true)
	store.seedEvent(tsEvent("C-STALE", "OUT", baseTime, 20), false)
	require.NoError(t, store.MarkRevived(context.Background(), stale.ID, models.Revival{Date: baseTime, Reason: "MAN", Officer: "o"}))

	store.addNotice(noticeAt("D-MISSING", "RD1"))
	store.seedEvent(models.SuspendedNotice{NoticeNo: "D-MISSING", SuspensionType: ps, ReasonOfSuspension: "DBB", DateOfSuspension: baseTime}, false)

	report, err := NewReconcileService(store, store, testPolicy(t), nil).Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, report.Checked)
	require.Len(t, report.Drifted, 2)
	assert.Equal(t, "C-STALE", report.Drifted[0].NoticeNo)
	assert.Equal(t, "TS-ACR", report.Drifted[0].Snapshot)
	assert.Equal(t, "TS-OUT", report.Drifted[0].Expected)
	assert.Equal(t, "D-MISSING", report.Drifted[1].NoticeNo)
	assert.Equal(t, "none", report.Drifted[1].Snapshot)
	assert.Equal(t, "PS-DBB", report.Drifted[1].Expected)
}

func TestReconcilePagesThroughNotices(t *testing.T) {
	store := newMemStore()
	for i := 0; i < reconcilePageSize+5; i++ {
		store.addNotice(noticeAt(fmt.Sprintf("N%04d", i), "RD1"))
	}

	report, err := NewReconcileService(store, store, testPolicy(t), nil).Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, reconcilePageSize+5, report.Checked)
	assert.Empty(t, report.Drifted)
}

func TestReconcileListFailure(t *testing.T) {
	_, err := NewReconcileService(failingNotices{}, newMemStore(), testPolicy(t), nil).Check(context.Background())
	assert.Error(t, err)
}
