package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/notice-suspension-api/internal/models"
	appErrors "github.com/noah-isme/notice-suspension-api/pkg/errors"
)

type mapCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMapCache() *mapCache { return &mapCache{items: make(map[string][]byte)} }

func (c *mapCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *mapCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = raw
	return nil
}

func (c *mapCache) DeleteByPattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
	return nil
}

type reasonStoreStub struct {
	reasons []models.SuspensionReason
	err     error
	lists   int
	gets    int
}

func (s *reasonStoreStub) List(context.Context) ([]models.SuspensionReason, error) {
	s.lists++
	return s.reasons, s.err
}

func (s *reasonStoreStub) Get(_ context.Context, t models.SuspensionType, code string) (*models.SuspensionReason, error) {
	s.gets++
	if s.err != nil {
		return nil, s.err
	}
	for _, r := range s.reasons {
		if r.SuspensionType == t && r.ReasonOfSuspension == code {
			copy := r
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func newRegistryFixture(t *testing.T, store *reasonStoreStub) (*ReasonRegistry, *MetricsService) {
	t.Helper()
	metrics := NewMetricsService()
	cache := NewCacheService(newMapCache(), metrics, time.Minute, nil, true)
	return NewReasonRegistry(store, testPolicy(t), cache, time.Minute, nil), metrics
}

func TestReasonRegistryLookupUsesCache(t *testing.T) {
	store := &reasonStoreStub{reasons: []models.SuspensionReason{
		{SuspensionType: ts, ReasonOfSuspension: "ACR", Description: "Appeal", NoOfDaysForRevival: intPtr(21), Status: models.ReasonStatusActive},
	}}
	registry, metrics := newRegistryFixture(t, store)

	first, err := registry.Lookup(context.Background(), ts, "ACR")
	require.NoError(t, err)
	second, err := registry.Lookup(context.Background(), ts, "ACR")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.gets)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheMisses))

	require.NoError(t, registry.Invalidate(context.Background()))
	_, err = registry.Lookup(context.Background(), ts, "ACR")
	require.NoError(t, err)
	assert.Equal(t, 2, store.gets)
}

func TestReasonRegistryDefaultDays(t *testing.T) {
	store := &reasonStoreStub{reasons: []models.SuspensionReason{
		{SuspensionType: ts, ReasonOfSuspension: "ACR", NoOfDaysForRevival: intPtr(21), Status: models.ReasonStatusActive},
		{SuspensionType: ts, ReasonOfSuspension: "OUT", Status: models.ReasonStatusActive},
	}}
	registry, _ := newRegistryFixture(t, store)

	assert.Equal(t, intPtr(21), registry.DefaultDays(context.Background(), "ACR"))
	assert.Nil(t, registry.DefaultDays(context.Background(), "OUT"))
	assert.Nil(t, registry.DefaultDays(context.Background(), "ZZZ"))

	_, err := registry.Lookup(context.Background(), ts, "ZZZ")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	failing, _ := newRegistryFixture(t, &reasonStoreStub{err: errors.New("db down")})
	assert.Nil(t, failing.DefaultDays(context.Background(), "ACR"))
}

func TestReasonRegistryCodesFiltersBySourceAndStatus(t *testing.T) {
	store := &reasonStoreStub{reasons: []models.SuspensionReason{
		{SuspensionType: ts, ReasonOfSuspension: "ACR", Description: "Appeal", NoOfDaysForRevival: intPtr(21), Status: models.ReasonStatusActive},
		{SuspensionType: ts, ReasonOfSuspension: "OUT", Description: "Outstanding", Status: "I"},
		{SuspensionType: ts, ReasonOfSuspension: "APP", Description: "Appeal via PLUS", Status: models.ReasonStatusActive},
		{SuspensionType: ps, ReasonOfSuspension: "DBB", Description: "Double booking", Status: models.ReasonStatusActive},
	}}
	registry, _ := newRegistryFixture(t, store)

	codes, err := registry.Codes(context.Background(), "", models.SourceStaff)
	require.NoError(t, err)
	require.Len(t, codes, 2)
	assert.Equal(t, "ACR", codes[0].ReasonOfSuspension)
	assert.Equal(t, intPtr(21), codes[0].NoOfDaysForRevival)
	assert.Equal(t, "DBB", codes[1].ReasonOfSuspension)

	plus, err := registry.Codes(context.Background(), ts, models.SourcePlus)
	require.NoError(t, err)
	require.Len(t, plus, 1)
	assert.Equal(t, "APP", plus[0].ReasonOfSuspension)
	assert.Equal(t, 1, store.lists)
}

func TestReasonRegistryWithoutCache(t *testing.T) {
	store := &reasonStoreStub{reasons: []models.SuspensionReason{
		{SuspensionType: ps, ReasonOfSuspension: "DBB", Status: models.ReasonStatusActive},
	}}
	registry := NewReasonRegistry(store, testPolicy(t), nil, time.Minute, nil)

	for i := 0; i < 2; i++ {
		_, err := registry.List(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 2, store.lists)
	assert.NoError(t, registry.Invalidate(context.Background()))
}
