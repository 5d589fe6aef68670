package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"study_tracker_backend/internal/model"
	"study_tracker_backend/internal/repository"
	"study_tracker_backend/internal/util"
	"study_tracker_backend/pkg/logger"
	"study_tracker_backend/pkg/monitoring"

	"go.uber.org/zap"
)

type CreateCourseInput struct {
	Title       string
	Description string
	Category    string
	TargetHours int
}

type CourseService struct {
	store repository.RecordStore
	stats *StatsService
	now   func() time.Time
}

func NewCourseService(store repository.RecordStore, stats *StatsService) *CourseService {
	return &CourseService{store: store, stats: stats, now: time.Now}
}

// Create 新建课程，存储层会同时写入初始进度
func (s *CourseService) Create(ctx context.Context, user model.UserContext, in CreateCourseInput) (*model.Course, error) {
	if !user.Authenticated() {
		return nil, util.ErrNoUser
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", util.ErrInvalidInput)
	}
	if in.TargetHours < 0 {
		return nil, fmt.Errorf("%w: target hours must not be negative", util.ErrInvalidInput)
	}

	now := s.now()
	course := &model.Course{
		UUIDBase:    model.UUIDBase{CreatedAt: now, UpdatedAt: now},
		Title:       title,
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		TargetHours: in.TargetHours,
	}

	err := s.store.Insert(ctx, user, repository.CollectionCourses, course)
	monitoring.ObserveMutation("create_course", err)
	if err != nil {
		return nil, err
	}

	s.stats.Invalidate(ctx, user)
	logger.Log.Info("course created",
		zap.Uint("user_id", user.UserID),
		zap.String("course_id", course.ID),
	)
	return course, nil
}

// List 课程连同进度，按创建时间倒序
func (s *CourseService) List(ctx context.Context, user model.UserContext) ([]model.Course, error) {
	if !user.Authenticated() {
		return nil, util.ErrNoUser
	}

	courses := []model.Course{}
	err := s.store.Select(ctx, user, repository.CollectionCourses, &courses, repository.Query{
		Joins: []repository.Collection{repository.CollectionProgress},
		Order: &repository.Order{Column: "created_at", Descending: true},
	})
	if err != nil {
		return nil, err
	}
	return courses, nil
}

func (s *CourseService) Get(ctx context.Context, user model.UserContext, courseID string) (*model.Course, error) {
	if !user.Authenticated() {
		return nil, util.ErrNoUser
	}

	var courses []model.Course
	err := s.store.Select(ctx, user, repository.CollectionCourses, &courses, repository.Query{
		Filters: []repository.Filter{repository.Eq("id", courseID)},
		Joins:   []repository.Collection{repository.CollectionProgress},
	})
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return nil, util.ErrCourseNotFound
	}
	return &courses[0], nil
}
