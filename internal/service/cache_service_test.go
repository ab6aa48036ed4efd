package service

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hr-letter-api/internal/dto"
	"github.com/noah-isme/hr-letter-api/internal/models"
	appErrors "github.com/noah-isme/hr-letter-api/pkg/errors"
)

type memoryCacheRepo struct {
	entries map[string][]byte
	getErr  error
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: make(map[string][]byte)}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	for key := range m.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.entries, key)
		}
	}
	return nil
}

func TestCacheServiceRecordsHitsAndMisses(t *testing.T) {
	metrics := NewMetricsService()
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, metrics, time.Minute, nil, true)
	ctx := context.Background()

	var out []string
	assert.False(t, svc.Get(ctx, "k", &out))
	svc.Set(ctx, "k", []string{"a"}, 0)
	assert.True(t, svc.Get(ctx, "k", &out))
	assert.Equal(t, []string{"a"}, out)

	body := scrapeMetrics(t, metrics)
	assert.Contains(t, body, "cache_hits_total 1")
	assert.Contains(t, body, "cache_misses_total 1")
	assert.Contains(t, body, "cache_hit_ratio 0.5")

	repo.getErr = errors.New("redis down")
	assert.False(t, svc.Get(ctx, "k", &out))
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, nil, 0, nil, false)
	svc.Set(context.Background(), "k", 1, 0)
	assert.Empty(t, repo.entries)
	assert.False(t, svc.Enabled())

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
	nilSvc.Invalidate(context.Background(), "*")
}

func TestLetterRequestServiceListUsesCacheUntilWrite(t *testing.T) {
	repo := newLetterRequestRepoStub()
	cache := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, nil, true)
	svc := NewLetterRequestService(repo, nil, nil, nil, WithLetterRequestCache(cache, time.Minute))
	ctx := context.Background()

	_, err := svc.Create(ctx, dto.CreateLetterRequest{EmployeeID: "E100", EmployeeName: "Asha", LetterType: "noc"}, employeeActor)
	require.NoError(t, err)

	first, err := svc.ListAll(ctx, dto.LetterRequestQuery{})
	require.NoError(t, err)
	second, err := svc.ListAll(ctx, dto.LetterRequestQuery{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.lists)

	_, err = svc.Transition(ctx, first[0].ID, dto.TransitionLetterRequest{Status: models.LetterRequestStatusApproved}, adminActor)
	require.NoError(t, err)

	after, err := svc.ListAll(ctx, dto.LetterRequestQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.lists)
	assert.Equal(t, models.LetterRequestStatusApproved, after[0].Status)
}
