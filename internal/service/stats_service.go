package service

import (
	"context"
	"fmt"
	"math"

	"study_tracker_backend/internal/model"
	"study_tracker_backend/internal/repository"
	"study_tracker_backend/internal/util"
	"study_tracker_backend/pkg/monitoring"
)

// StatsCache 统计结果缓存，可为 nil
type StatsCache interface {
	Get(ctx context.Context, userID uint) (*model.StatsOverview, bool)
	Set(ctx context.Context, userID uint, overview *model.StatsOverview)
	Invalidate(ctx context.Context, userID uint)
}

// roundHalfUp 与前端 Math.round 一致：.5 向上取整
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

func roundTenth(v float64) float64 {
	return roundHalfUp(v*10) / 10
}

// ComputeStats 把进度记录归约为统计概览，纯函数，与输入顺序无关
func ComputeStats(records []model.LearningProgress) model.Stats {
	var (
		stats        model.Stats
		hours        float64
		percentTotal int
	)

	stats.TotalCourses = len(records)
	for _, r := range records {
		switch r.Status {
		case model.StatusInProgress:
			stats.InProgressCourses++
		case model.StatusCompleted:
			stats.CompletedCourses++
		}
		hours += r.HoursSpent
		percentTotal += r.ProgressPercentage
	}

	stats.TotalHours = roundTenth(hours)
	if stats.TotalCourses == 0 {
		return stats
	}

	total := float64(stats.TotalCourses)
	stats.AverageProgress = int(roundHalfUp(float64(percentTotal) / total))
	stats.Derived = &model.DerivedStats{
		CompletionRate:        roundTenth(float64(stats.CompletedCourses) / total * 100),
		AverageHoursPerCourse: roundTenth(stats.TotalHours / total),
	}
	return stats
}

func headlines(stats model.Stats) (string, string) {
	headline := "💪 开始你的学习旅程吧！"
	if stats.CompletedCourses > 0 {
		headline = fmt.Sprintf("🎉 太棒了！你已经完成了 %d 门课程！", stats.CompletedCourses)
	}
	subline := "点击「我的课程」开始新的学习计划"
	if stats.InProgressCourses > 0 {
		subline = fmt.Sprintf("继续加油，你正在学习 %d 门课程", stats.InProgressCourses)
	}
	return headline, subline
}

type StatsService struct {
	store repository.RecordStore
	cache StatsCache
}

func NewStatsService(store repository.RecordStore, cache StatsCache) *StatsService {
	return &StatsService{store: store, cache: cache}
}

// Overview 读取用户全部进度（连同课程）并计算统计
func (s *StatsService) Overview(ctx context.Context, user model.UserContext) (*model.StatsOverview, error) {
	if !user.Authenticated() {
		return nil, util.ErrNoUser
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, user.UserID); ok {
			monitoring.StatsCacheLookups.WithLabelValues("hit").Inc()
			return cached, nil
		}
		monitoring.StatsCacheLookups.WithLabelValues("miss").Inc()
	}

	var records []model.LearningProgress
	err := s.store.Select(ctx, user, repository.CollectionProgress, &records, repository.Query{
		Joins: []repository.Collection{repository.CollectionCourses},
	})
	if err != nil {
		return nil, err
	}

	overview := &model.StatsOverview{Stats: ComputeStats(records)}
	overview.Headline, overview.Subline = headlines(overview.Stats)

	if s.cache != nil {
		s.cache.Set(ctx, user.UserID, overview)
	}
	return overview, nil
}

// Invalidate 用户数据变更后调用，下次 Overview 重新计算
func (s *StatsService) Invalidate(ctx context.Context, user model.UserContext) {
	if s == nil || s.cache == nil {
		return
	}
	s.cache.Invalidate(ctx, user.UserID)
}
