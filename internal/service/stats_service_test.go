package service

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"study_tracker_backend/internal/model"
	"study_tracker_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStatsScenario(t *testing.T) {
	stats := ComputeStats([]model.LearningProgress{
		{Status: model.StatusInProgress, HoursSpent: 2.25, ProgressPercentage: 40},
		{Status: model.StatusCompleted, HoursSpent: 5.0, ProgressPercentage: 100},
	})

	assert.Equal(t, 2, stats.TotalCourses)
	assert.Equal(t, 1, stats.InProgressCourses)
	assert.Equal(t, 1, stats.CompletedCourses)
	assert.Equal(t, 7.3, stats.TotalHours)
	assert.Equal(t, 70, stats.AverageProgress)
	require.NotNil(t, stats.Derived)
	assert.Equal(t, 50.0, stats.Derived.CompletionRate)
	assert.Equal(t, 3.7, stats.Derived.AverageHoursPerCourse)
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil)

	assert.Equal(t, model.Stats{}, stats)
	assert.Nil(t, stats.Derived)
}

func TestComputeStatsRoundsHalfUp(t *testing.T) {
	stats := ComputeStats([]model.LearningProgress{
		{Status: model.StatusNotStarted, HoursSpent: 0.05, ProgressPercentage: 0},
		{Status: model.StatusNotStarted, HoursSpent: 0, ProgressPercentage: 1},
	})
	// 0.05 -> 0.1, 平均 0.5 -> 1
	assert.Equal(t, 0.1, stats.TotalHours)
	assert.Equal(t, 1, stats.AverageProgress)
	assert.Equal(t, 0, stats.InProgressCourses)
	assert.Equal(t, 0, stats.CompletedCourses)
}

func TestComputeStatsProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	statuses := []model.ProgressStatus{model.StatusNotStarted, model.StatusInProgress, model.StatusCompleted}

	for i := 0; i < 200; i++ {
		n := rng.Intn(12)
		records := make([]model.LearningProgress, n)
		var hours float64
		var percent int
		for j := range records {
			records[j] = model.LearningProgress{
				Status:             statuses[rng.Intn(len(statuses))],
				HoursSpent:         float64(rng.Intn(4000)) / 100,
				ProgressPercentage: rng.Intn(101),
			}
			hours += records[j].HoursSpent
			percent += records[j].ProgressPercentage
		}

		stats := ComputeStats(records)
		assert.Equal(t, n, stats.TotalCourses)
		assert.LessOrEqual(t, stats.InProgressCourses+stats.CompletedCourses, stats.TotalCourses)
		assert.Equal(t, math.Floor(hours*10+0.5)/10, stats.TotalHours)
		if n == 0 {
			assert.Equal(t, 0, stats.AverageProgress)
			assert.Nil(t, stats.Derived)
		} else {
			assert.Equal(t, int(math.Floor(float64(percent)/float64(n)+0.5)), stats.AverageProgress)
			assert.NotNil(t, stats.Derived)
		}

		// 与顺序无关
		shuffled := append([]model.LearningProgress(nil), records...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, stats.TotalCourses, ComputeStats(shuffled).TotalCourses)
		assert.Equal(t, stats.AverageProgress, ComputeStats(shuffled).AverageProgress)
	}
}

func TestOverviewUsesStoreAndCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	overview, err := f.stats.Overview(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 0, overview.TotalCourses)
	assert.Nil(t, overview.Derived)
	assert.Contains(t, overview.Headline, "开始")

	course, err := f.courses.Create(ctx, alice, CreateCourseInput{Title: "Go"})
	require.NoError(t, err)
	require.NoError(t, f.detail.UpdateProgress(ctx, alice, course.ID, 100, model.StatusCompleted))
	require.NoError(t, f.detail.UpdateHours(ctx, alice, course.ID, 2.25))

	overview, err = f.stats.Overview(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 1, overview.TotalCourses)
	assert.Equal(t, 1, overview.CompletedCourses)
	assert.Equal(t, 2.3, overview.TotalHours)
	assert.Equal(t, 100, overview.AverageProgress)
	assert.Contains(t, overview.Headline, "1 门课程")

	// 第二次命中缓存，不访问存储
	before := f.store.Calls()
	cached, err := f.stats.Overview(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, overview, cached)
	assert.Equal(t, before, f.store.Calls())

	// 其他用户看不到
	other, err := f.stats.Overview(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, 0, other.TotalCourses)
}

func TestOverviewRequiresUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.stats.Overview(context.Background(), model.UserContext{})
	assert.ErrorIs(t, err, util.ErrNoUser)
	assert.Equal(t, 0, f.store.Calls())
}
