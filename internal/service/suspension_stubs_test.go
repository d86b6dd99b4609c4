package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/notice-suspension-api/internal/models"
	"github.com/noah-isme/notice-suspension-api/internal/policy"
	appErrors "github.com/noah-isme/notice-suspension-api/pkg/errors"
)

var baseTime = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock { return &testClock{now: baseTime} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// memStore is an in-memory notice and suspension-event store.
type memStore struct {
	mu      sync.Mutex
	notices map[string]*models.Notice
	events  []*models.SuspendedNotice
	seq     int

	getErr    error
	saveErr   error
	createErr error
	panicOn   string
	saves     int
}

func newMemStore() *memStore {
	return &memStore{notices: make(map[string]*models.Notice)}
}

func (m *memStore) addNotice(n models.Notice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := n
	m.notices[n.NoticeNo] = &copy
}

func (m *memStore) notice(t *testing.T, noticeNo string) models.Notice {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notices[noticeNo]
	require.True(t, ok, "notice %s", noticeNo)
	return *n
}

// seedEvent stores an active event and optionally reflects it in the snapshot.
func (m *memStore) seedEvent(e models.SuspendedNotice, reflect bool) models.SuspendedNotice {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if e.ID == "" {
		e.ID = fmt.Sprintf("evt-%d", m.seq)
	}
	if e.SrNo == 0 {
		e.SrNo = m.seq
	}
	copy := e
	m.events = append(m.events, &copy)
	if reflect {
		m.notices[e.NoticeNo].ApplySnapshot(e)
	}
	return e
}

func (m *memStore) all(noticeNo string) []models.SuspendedNotice {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.SuspendedNotice
	for _, e := range m.events {
		if e.NoticeNo == noticeNo {
			out = append(out, *e)
		}
	}
	return out
}

func (m *memStore) activeCodes(noticeNo string) []string {
	var codes []string
	for _, e := range m.all(noticeNo) {
		if e.Active() {
			codes = append(codes, string(e.SuspensionType)+"-"+e.ReasonOfSuspension)
		}
	}
	return codes
}

func (m *memStore) Get(_ context.Context, noticeNo string) (*models.Notice, error) {
	if m.panicOn == "get" {
		panic("store exploded")
	}
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notices[noticeNo]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *n
	return &copy, nil
}

func (m *memStore) Save(_ context.Context, notice *models.Notice) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.notices[notice.NoticeNo]
	if !ok || current.Version != notice.Version {
		return appErrors.Clone(appErrors.ErrStaleVersion, "stale")
	}
	notice.Version++
	copy := *notice
	m.notices[notice.NoticeNo] = &copy
	m.saves++
	return nil
}

func (m *memStore) NextSrNo(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return m.seq, nil
}

func (m *memStore) Create(_ context.Context, event *models.SuspendedNotice) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if event.ID == "" {
		event.ID = fmt.Sprintf("evt-new-%d", len(m.events)+1)
	}
	copy := *event
	m.events = append(m.events, &copy)
	return nil
}

func (m *memStore) MarkRevived(_ context.Context, id string, revival models.Revival) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id && e.Active() {
			date, reason, remarks, officer := revival.Date, revival.Reason, revival.Remarks, revival.Officer
			e.DateOfRevival = &date
			e.RevivalReason = &reason
			e.RevivalRemarks = &remarks
			e.OfficerAuthorisingRevival = &officer
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *memStore) GetByID(_ context.Context, id string) (*models.SuspendedNotice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			copy := *e
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memStore) FindActive(_ context.Context, noticeNo string, t models.SuspensionType) ([]models.SuspendedNotice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.SuspendedNotice
	for _, e := range m.events {
		if e.NoticeNo == noticeNo && e.Active() && (t == "" || e.SuspensionType == t) {
			out = append(out, *e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].DateOfSuspension.Equal(out[j].DateOfSuspension) {
			return out[i].DateOfSuspension.Before(out[j].DateOfSuspension)
		}
		return out[i].SrNo < out[j].SrNo
	})
	return out, nil
}

func (m *memStore) FindExpiredTS(_ context.Context, now time.Time, limit int) ([]models.SuspendedNotice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.SuspendedNotice
	for _, e := range m.events {
		if e.Active() && e.SuspensionType == models.SuspensionTypeTemporary && e.DueDateOfRevival != nil && !e.DueDateOfRevival.After(now) {
			out = append(out, *e)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// ListForReconcile pages notices by number for the reconcile checker.
func (m *memStore) ListForReconcile(_ context.Context, after string, limit int) ([]models.Notice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.notices))
	for no := range m.notices {
		if no > after {
			keys = append(keys, no)
		}
	}
	sort.Strings(keys)
	if len(keys) > limit {
		keys = keys[:limit]
	}
	out := make([]models.Notice, 0, len(keys))
	for _, no := range keys {
		out = append(out, *m.notices[no])
	}
	return out, nil
}

type mirrorStub struct {
	mu      sync.Mutex
	saved   []models.NoticeMirror
	missing bool
}

func (m *mirrorStub) Save(_ context.Context, mirror models.NoticeMirror) error {
	if m.missing {
		return sql.ErrNoRows
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, mirror)
	return nil
}

type refundStub struct {
	mu      sync.Mutex
	refunds []RefundIdentification
}

func (r *refundStub) RecordRefund(_ context.Context, refund RefundIdentification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refunds = append(r.refunds, refund)
	return nil
}

type reasonDaysStub map[string]int

func (r reasonDaysStub) DefaultDays(_ context.Context, code string) *int {
	days, ok := r[code]
	if !ok {
		return nil
	}
	return &days
}

type furnishStub struct {
	status models.FurnishStatus
	ok     bool
	err    error
}

func (f furnishStub) LatestStatus(context.Context, string) (models.FurnishStatus, bool, error) {
	return f.status, f.ok, f.err
}

func testPolicy(t *testing.T) *policy.Policy {
	t.Helper()
	p, err := policy.Default()
	require.NoError(t, err)
	return p
}

func strPtr(v string) *string { return &v }

func intPtr(v int) *int { return &v }

func timePtr(v time.Time) *time.Time { return &v }

func noticeAt(noticeNo, stage string) models.Notice {
	return models.Notice{NoticeNo: noticeNo, LastProcessingStage: strPtr(stage)}
}

// requireSnapshotActive asserts the snapshot is null or reflects an active event.
func requireSnapshotActive(t *testing.T, store *memStore, noticeNo string) {
	t.Helper()
	n := store.notice(t, noticeNo)
	if n.CurrentType() == "" {
		return
	}
	for _, e := range store.all(noticeNo) {
		if n.ReflectsEvent(e) {
			require.True(t, e.Active(), "snapshot reflects revived event %s", e.ID)
			return
		}
	}
	t.Fatalf("snapshot %s-%s does not reflect any event", n.CurrentType(), n.CurrentCode())
}
