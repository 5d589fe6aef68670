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

// CourseDetailService 单门课程的进度、笔记、学习记录读写。
// 每次调用只访问一次存储；本地前置条件不满足时直接返回错误，不访问存储。
type CourseDetailService struct {
	store repository.RecordStore
	stats *StatsService
	now   func() time.Time
}

func NewCourseDetailService(store repository.RecordStore, stats *StatsService) *CourseDetailService {
	return &CourseDetailService{store: store, stats: stats, now: time.Now}
}

func requireCourse(user model.UserContext, courseID string) error {
	if !user.Authenticated() {
		return util.ErrNoUser
	}
	if strings.TrimSpace(courseID) == "" {
		return fmt.Errorf("%w: course id is required", util.ErrInvalidInput)
	}
	return nil
}

// LoadNotes 按创建时间倒序
func (s *CourseDetailService) LoadNotes(ctx context.Context, user model.UserContext, courseID string) ([]model.Note, error) {
	if err := requireCourse(user, courseID); err != nil {
		return nil, err
	}

	notes := []model.Note{}
	err := s.store.Select(ctx, user, repository.CollectionNotes, &notes, repository.Query{
		Filters: []repository.Filter{repository.Eq("course_id", courseID)},
		Order:   &repository.Order{Column: "created_at", Descending: true},
	})
	if err != nil {
		return nil, err
	}
	return notes, nil
}

// LoadSessions 按学习日期倒序
func (s *CourseDetailService) LoadSessions(ctx context.Context, user model.UserContext, courseID string) ([]model.StudySession, error) {
	if err := requireCourse(user, courseID); err != nil {
		return nil, err
	}

	sessions := []model.StudySession{}
	err := s.store.Select(ctx, user, repository.CollectionSessions, &sessions, repository.Query{
		Filters: []repository.Filter{repository.Eq("course_id", courseID)},
		Order:   &repository.Order{Column: "session_date", Descending: true},
	})
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// UpdateProgress 状态之间可任意切换；没有匹配的进度记录时返回 ErrProgressNotFound
func (s *CourseDetailService) UpdateProgress(ctx context.Context, user model.UserContext, courseID string, percentage int, status model.ProgressStatus) error {
	if err := requireCourse(user, courseID); err != nil {
		return err
	}
	if percentage < 0 || percentage > 100 {
		return fmt.Errorf("%w: progress percentage %d out of range 0-100", util.ErrInvalidInput, percentage)
	}
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", util.ErrInvalidInput, status)
	}

	affected, err := s.store.Update(ctx, user, repository.CollectionProgress, map[string]interface{}{
		"progress_percentage": percentage,
		"status":              string(status),
		"last_studied_at":     s.now(),
	},
		repository.Eq("course_id", courseID),
		repository.Eq("user_id", user.UserID),
	)
	if err == nil && affected == 0 {
		err = util.ErrProgressNotFound
	}
	monitoring.ObserveMutation("update_progress", err)
	if err != nil {
		return err
	}

	s.stats.Invalidate(ctx, user)
	logger.Log.Debug("progress updated",
		zap.Uint("user_id", user.UserID),
		zap.String("course_id", courseID),
		zap.Int("percentage", percentage),
		zap.String("status", string(status)),
	)
	return nil
}

// UpdateHours 手动设置累计学习时数，与学习记录相互独立
func (s *CourseDetailService) UpdateHours(ctx context.Context, user model.UserContext, courseID string, hours float64) error {
	if err := requireCourse(user, courseID); err != nil {
		return err
	}
	if hours < 0 {
		return fmt.Errorf("%w: hours spent must not be negative", util.ErrInvalidInput)
	}

	affected, err := s.store.Update(ctx, user, repository.CollectionProgress, map[string]interface{}{
		"hours_spent":     hours,
		"last_studied_at": s.now(),
	},
		repository.Eq("course_id", courseID),
		repository.Eq("user_id", user.UserID),
	)
	if err == nil && affected == 0 {
		err = util.ErrProgressNotFound
	}
	monitoring.ObserveMutation("update_hours", err)
	if err != nil {
		return err
	}

	s.stats.Invalidate(ctx, user)
	return nil
}

// AddSession 记录一次学习，日期取当天（UTC）；不会改动 hours_spent
func (s *CourseDetailService) AddSession(ctx context.Context, user model.UserContext, courseID string, durationMinutes int, notes string) (*model.StudySession, error) {
	if err := requireCourse(user, courseID); err != nil {
		return nil, err
	}
	if durationMinutes < 1 {
		return nil, fmt.Errorf("%w: duration must be at least 1 minute", util.ErrInvalidInput)
	}

	now := s.now()
	y, m, d := now.UTC().Date()
	session := &model.StudySession{
		UUIDBase:        model.UUIDBase{CreatedAt: now, UpdatedAt: now},
		CourseID:        courseID,
		DurationMinutes: durationMinutes,
		SessionDate:     time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Notes:           notes,
	}

	err := s.store.Insert(ctx, user, repository.CollectionSessions, session)
	monitoring.ObserveMutation("add_session", err)
	if err != nil {
		return nil, err
	}
	monitoring.StudyMinutes.Add(float64(durationMinutes))

	s.stats.Invalidate(ctx, user)
	logger.Log.Debug("study session recorded",
		zap.Uint("user_id", user.UserID),
		zap.String("course_id", courseID),
		zap.Int("minutes", durationMinutes),
		zap.String("date", session.SessionDate.Format(util.DateFormat)),
	)
	return session, nil
}

func (s *CourseDetailService) AddNote(ctx context.Context, user model.UserContext, courseID, title, content string) (*model.Note, error) {
	if err := requireCourse(user, courseID); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: note title is required", util.ErrInvalidInput)
	}

	now := s.now()
	note := &model.Note{
		UUIDBase: model.UUIDBase{CreatedAt: now, UpdatedAt: now},
		CourseID: courseID,
		Title:    title,
		Content:  content,
	}

	err := s.store.Insert(ctx, user, repository.CollectionNotes, note)
	monitoring.ObserveMutation("add_note", err)
	if err != nil {
		return nil, err
	}

	s.stats.Invalidate(ctx, user)
	return note, nil
}

// DeleteCourse 不可恢复，调用方必须先得到用户确认
func (s *CourseDetailService) DeleteCourse(ctx context.Context, user model.UserContext, courseID string, confirmed bool) error {
	if err := requireCourse(user, courseID); err != nil {
		return err
	}
	if !confirmed {
		return util.ErrConfirmationRequired
	}

	affected, err := s.store.Delete(ctx, user, repository.CollectionCourses, repository.Eq("id", courseID))
	if err == nil && affected == 0 {
		err = util.ErrCourseNotFound
	}
	monitoring.ObserveMutation("delete_course", err)
	if err != nil {
		return err
	}

	s.stats.Invalidate(ctx, user)
	logger.Log.Info("course deleted",
		zap.Uint("user_id", user.UserID),
		zap.String("course_id", courseID),
	)
	return nil
}
