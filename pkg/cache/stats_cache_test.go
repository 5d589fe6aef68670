package cache

import (
	"context"
	"testing"
	"time"

	"study_tracker_backend/internal/model"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverviewRoundTrip(t *testing.T) {
	overview := &model.StatsOverview{
		Stats: model.Stats{
			TotalCourses:      2,
			InProgressCourses: 1,
			CompletedCourses:  1,
			TotalHours:        7.3,
			AverageProgress:   70,
			Derived:           &model.DerivedStats{CompletionRate: 50, AverageHoursPerCourse: 3.7},
		},
		Headline: "headline",
		Subline:  "subline",
	}

	raw, err := encodeOverview(overview)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"derived":{"completionRate":50,"averageHoursPerCourse":3.7}`)

	decoded, err := decodeOverview(raw)
	require.NoError(t, err)
	assert.Equal(t, overview, decoded)
}

func TestEmptyOverviewOmitsDerived(t *testing.T) {
	raw, err := encodeOverview(&model.StatsOverview{Headline: "开始"})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "derived")

	decoded, err := decodeOverview(raw)
	require.NoError(t, err)
	assert.Nil(t, decoded.Derived)
	assert.Equal(t, 0, decoded.TotalCourses)

	_, err = decodeOverview([]byte("{not json"))
	assert.Error(t, err)
}

func TestStatsKeyIsPerUser(t *testing.T) {
	assert.Equal(t, "study_tracker:stats:42", statsKey(42))
	assert.NotEqual(t, statsKey(1), statsKey(2))
}

func TestUnreachableRedisIsAMiss(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { rdb.Close() })
	c := NewRedisStatsCache(rdb, time.Minute)
	ctx := context.Background()

	c.Set(ctx, 1, &model.StatsOverview{Headline: "x"})
	overview, ok := c.Get(ctx, 1)
	assert.False(t, ok)
	assert.Nil(t, overview)
	c.Invalidate(ctx, 1)
}
