package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/justsurfingit/jobsprint/internal/cache"
	"github.com/justsurfingit/jobsprint/internal/config"
	"github.com/justsurfingit/jobsprint/internal/database"
	"github.com/justsurfingit/jobsprint/internal/events"
)

var testDBSeq int64

func newTestDB(t *testing.T) *database.Provider {
	t.Helper()

	dsn := fmt.Sprintf("file:jobsprint_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return database.NewStaticProvider(db)
}

func unconfiguredDB() *database.Provider {
	return database.NewProvider(config.DatabaseConfig{}, zap.NewNop())
}

// fakeSearch answers per host. Calls are recorded for assertions.
type fakeSearch struct {
	mu         sync.Mutex
	configured bool
	hits       map[string][]SearchHit
	errs       map[string]error
	delay      map[string]time.Duration
	queries    []SearchQuery
}

func newFakeSearch() *fakeSearch {
	return &fakeSearch{
		configured: true,
		hits:       map[string][]SearchHit{},
		errs:       map[string]error{},
		delay:      map[string]time.Duration{},
	}
}

func (f *fakeSearch) Configured() bool { return f.configured }

func (f *fakeSearch) Search(ctx context.Context, q SearchQuery) ([]SearchHit, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()

	host := strings.TrimPrefix(strings.SplitN(q.Q, " ", 2)[0], "site:")
	if d := f.delay[host]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := f.errs[host]; err != nil {
		return nil, err
	}
	return f.hits[host], nil
}

func (f *fakeSearch) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

// memCache is an in-process cache.Cache for tests.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (m *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	v, ok := value.(interface{ MarshalBinary() ([]byte, error) })
	if !ok {
		return cache.ErrInvalidValue
	}
	b, err := v.MarshalBinary()
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = b
	return nil
}

func (m *memCache) Get(_ context.Context, key string, value interface{}) error {
	m.mu.Lock()
	b, ok := m.data[key]
	m.mu.Unlock()
	if !ok {
		return cache.ErrNotFound
	}
	v, ok := value.(interface{ UnmarshalBinary([]byte) error })
	if !ok {
		return cache.ErrInvalidValue
	}
	return v.UnmarshalBinary(b)
}

func (m *memCache) Close() error { return nil }

// recordingPublisher keeps published events in memory.
type recordingPublisher struct {
	mu       sync.Mutex
	enqueued []events.EnqueuedEvent
	statuses []events.StatusChangedEvent
}

func (p *recordingPublisher) PublishEnqueued(_ context.Context, evt events.EnqueuedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enqueued = append(p.enqueued, evt)
	return nil
}

func (p *recordingPublisher) PublishStatusChanged(_ context.Context, evt events.StatusChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statuses = append(p.statuses, evt)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }
