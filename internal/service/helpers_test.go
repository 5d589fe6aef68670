package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"study_tracker_backend/internal/model"
	"study_tracker_backend/internal/repository"
	"study_tracker_backend/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	alice = model.UserContext{UserID: 1, Email: "alice@example.com"}
	bob   = model.UserContext{UserID: 2, Email: "bob@example.com"}
)

// countingStore 记录调用次数，用于断言前置条件失败时不访问存储
type countingStore struct {
	repository.RecordStore
	mu    sync.Mutex
	calls int
}

func (s *countingStore) hit() {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
}

func (s *countingStore) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *countingStore) Select(ctx context.Context, user model.UserContext, c repository.Collection, dest interface{}, q repository.Query) error {
	s.hit()
	return s.RecordStore.Select(ctx, user, c, dest, q)
}

func (s *countingStore) Insert(ctx context.Context, user model.UserContext, c repository.Collection, rows ...model.Owned) error {
	s.hit()
	return s.RecordStore.Insert(ctx, user, c, rows...)
}

func (s *countingStore) Update(ctx context.Context, user model.UserContext, c repository.Collection, patch map[string]interface{}, filters ...repository.Filter) (int64, error) {
	s.hit()
	return s.RecordStore.Update(ctx, user, c, patch, filters...)
}

func (s *countingStore) Delete(ctx context.Context, user model.UserContext, c repository.Collection, filters ...repository.Filter) (int64, error) {
	s.hit()
	return s.RecordStore.Delete(ctx, user, c, filters...)
}

// memoryCache 进程内的 StatsCache
type memoryCache struct {
	mu          sync.Mutex
	entries     map[uint]*model.StatsOverview
	invalidated int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[uint]*model.StatsOverview{}}
}

func (c *memoryCache) Get(_ context.Context, userID uint) (*model.StatsOverview, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	o, ok := c.entries[userID]
	return o, ok
}

func (c *memoryCache) Set(_ context.Context, userID uint, o *model.StatsOverview) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = o
}

func (c *memoryCache) Invalidate(_ context.Context, userID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	c.invalidated++
}

type fixture struct {
	db      *gorm.DB
	store   *countingStore
	cache   *memoryCache
	stats   *StatsService
	courses *CourseService
	detail  *CourseDetailService
	clock   *fakeClock
}

// closeDB 关闭底层连接，之后的存储调用都会失败
func (f *fixture) closeDB(t *testing.T) {
	t.Helper()
	sqlDB, err := f.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	store := &countingStore{RecordStore: repository.NewGormRecordStore(db)}
	cache := newMemoryCache()
	clock := &fakeClock{now: time.Date(2026, 5, 20, 23, 30, 0, 0, time.UTC)}

	stats := NewStatsService(store, cache)
	courses := NewCourseService(store, stats)
	courses.now = clock.Now
	detail := NewCourseDetailService(store, stats)
	detail.now = clock.Now

	return &fixture{db: db, store: store, cache: cache, stats: stats, courses: courses, detail: detail, clock: clock}
}
