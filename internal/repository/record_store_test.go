package repository

import (
	"context"
	"testing"
	"time"

	"study_tracker_backend/internal/model"
	"study_tracker_backend/internal/testutil"
	"study_tracker_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = model.UserContext{UserID: 1, Email: "alice@example.com"}
	bob   = model.UserContext{UserID: 2, Email: "bob@example.com"}
)

func newStore(t *testing.T) *GormRecordStore {
	return NewGormRecordStore(testutil.NewDB(t))
}

func insertCourse(t *testing.T, store *GormRecordStore, user model.UserContext, title string, createdAt time.Time) *model.Course {
	t.Helper()
	course := &model.Course{UUIDBase: model.UUIDBase{CreatedAt: createdAt}, Title: title}
	require.NoError(t, store.Insert(context.Background(), user, CollectionCourses, course))
	return course
}

func TestInsertCourseCreatesDefaultProgress(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	course := insertCourse(t, store, alice, "Go", time.Now())
	assert.NotEmpty(t, course.ID)
	assert.Equal(t, alice.UserID, course.UserID)
	require.NotNil(t, course.Progress)

	var progress []model.LearningProgress
	require.NoError(t, store.Select(ctx, alice, CollectionProgress, &progress, Query{
		Filters: []Filter{Eq("course_id", course.ID)},
	}))
	require.Len(t, progress, 1)
	assert.Equal(t, 0, progress[0].ProgressPercentage)
	assert.Equal(t, 0.0, progress[0].HoursSpent)
	assert.Equal(t, model.StatusNotStarted, progress[0].Status)
	assert.Nil(t, progress[0].LastStudiedAt)
}

func TestSelectIsOwnerScoped(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	insertCourse(t, store, alice, "Alice course", time.Now())
	insertCourse(t, store, bob, "Bob course", time.Now())

	var courses []model.Course
	require.NoError(t, store.Select(ctx, alice, CollectionCourses, &courses, Query{}))
	require.Len(t, courses, 1)
	assert.Equal(t, "Alice course", courses[0].Title)
}

func TestSelectOrderingAndJoin(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	insertCourse(t, store, alice, "first", base)
	insertCourse(t, store, alice, "second", base.Add(time.Hour))
	insertCourse(t, store, alice, "third", base.Add(2*time.Hour))

	var courses []model.Course
	require.NoError(t, store.Select(ctx, alice, CollectionCourses, &courses, Query{
		Joins: []Collection{CollectionProgress},
		Order: &Order{Column: "created_at", Descending: true},
	}))
	require.Len(t, courses, 3)
	assert.Equal(t, "third", courses[0].Title)
	assert.Equal(t, "first", courses[2].Title)
	for _, c := range courses {
		require.NotNil(t, c.Progress)
		assert.Equal(t, c.ID, c.Progress.CourseID)
	}

	var progress []model.LearningProgress
	require.NoError(t, store.Select(ctx, alice, CollectionProgress, &progress, Query{
		Joins: []Collection{CollectionCourses},
	}))
	require.Len(t, progress, 3)
	for _, p := range progress {
		require.NotNil(t, p.Course)
	}
}

func TestSelectRejectsUnknownNames(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	var rows []model.Course

	err := store.Select(ctx, alice, Collection("payments"), &rows, Query{})
	assert.ErrorIs(t, err, util.ErrUnknownCollection)

	err = store.Select(ctx, alice, CollectionCourses, &rows, Query{Filters: []Filter{Eq("password", "x")}})
	assert.ErrorIs(t, err, util.ErrUnknownColumn)

	err = store.Select(ctx, alice, CollectionCourses, &rows, Query{Order: &Order{Column: "1; DROP TABLE courses"}})
	assert.ErrorIs(t, err, util.ErrUnknownColumn)

	err = store.Select(ctx, alice, CollectionNotes, &rows, Query{Joins: []Collection{CollectionSessions}})
	assert.ErrorIs(t, err, util.ErrUnknownCollection)
}

func TestInsertRejectsMismatchedRow(t *testing.T) {
	store := newStore(t)
	err := store.Insert(context.Background(), alice, CollectionNotes, &model.StudySession{CourseID: "x", DurationMinutes: 5})
	assert.Error(t, err)
}

func TestUpdateReportsAffectedRows(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	course := insertCourse(t, store, alice, "Go", time.Now())

	affected, err := store.Update(ctx, alice, CollectionProgress,
		map[string]interface{}{"progress_percentage": 40, "status": "in_progress"},
		Eq("course_id", course.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	// 其他用户无法修改
	affected, err = store.Update(ctx, bob, CollectionProgress,
		map[string]interface{}{"progress_percentage": 90},
		Eq("course_id", course.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	affected, err = store.Update(ctx, alice, CollectionProgress,
		map[string]interface{}{"progress_percentage": 90},
		Eq("course_id", "missing"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	var progress []model.LearningProgress
	require.NoError(t, store.Select(ctx, alice, CollectionProgress, &progress, Query{}))
	require.Len(t, progress, 1)
	assert.Equal(t, 40, progress[0].ProgressPercentage)
	assert.Equal(t, model.StatusInProgress, progress[0].Status)
}

func TestUpdateRejectsOwnerColumn(t *testing.T) {
	store := newStore(t)
	_, err := store.Update(context.Background(), alice, CollectionProgress,
		map[string]interface{}{"user_id": 2}, Eq("course_id", "x"))
	assert.ErrorIs(t, err, util.ErrUnknownColumn)
}

func TestDeleteCourseCascades(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	course := insertCourse(t, store, alice, "Go", time.Now())
	other := insertCourse(t, store, alice, "Rust", time.Now())

	require.NoError(t, store.Insert(ctx, alice, CollectionNotes, &model.Note{CourseID: course.ID, Title: "n1"}))
	require.NoError(t, store.Insert(ctx, alice, CollectionSessions, &model.StudySession{
		CourseID: course.ID, DurationMinutes: 30, SessionDate: time.Now(),
	}))

	affected, err := store.Delete(ctx, bob, CollectionCourses, Eq("id", course.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	affected, err = store.Delete(ctx, alice, CollectionCourses, Eq("id", course.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	var progress []model.LearningProgress
	require.NoError(t, store.Select(ctx, alice, CollectionProgress, &progress, Query{}))
	require.Len(t, progress, 1)
	assert.Equal(t, other.ID, progress[0].CourseID)

	var notes []model.Note
	require.NoError(t, store.Select(ctx, alice, CollectionNotes, &notes, Query{}))
	assert.Empty(t, notes)

	var sessions []model.StudySession
	require.NoError(t, store.Select(ctx, alice, CollectionSessions, &sessions, Query{}))
	assert.Empty(t, sessions)
}

func TestInsertRequiresOwnedCourse(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	course := insertCourse(t, store, alice, "Go", time.Now())

	err := store.Insert(ctx, bob, CollectionNotes, &model.Note{CourseID: course.ID, Title: "intrusion"})
	assert.ErrorIs(t, err, util.ErrCourseNotFound)

	err = store.Insert(ctx, bob, CollectionSessions, &model.StudySession{
		CourseID: course.ID, DurationMinutes: 10, SessionDate: time.Now(),
	})
	assert.ErrorIs(t, err, util.ErrCourseNotFound)

	err = store.Insert(ctx, alice, CollectionNotes, &model.Note{CourseID: "missing", Title: "orphan"})
	assert.ErrorIs(t, err, util.ErrCourseNotFound)

	var count int64
	require.NoError(t, store.DB.Model(&model.Note{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, store.DB.Model(&model.StudySession{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeleteCourseLeavesOtherUsersRows(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	course := insertCourse(t, store, alice, "Go", time.Now())

	// 早期数据中可能存在挂在他人课程下的记录
	require.NoError(t, store.DB.Create(&model.Note{CourseID: course.ID, UserID: bob.UserID, Title: "bob's"}).Error)
	require.NoError(t, store.DB.Create(&model.StudySession{
		CourseID: course.ID, UserID: bob.UserID, DurationMinutes: 20, SessionDate: time.Now(),
	}).Error)
	require.NoError(t, store.Insert(ctx, alice, CollectionNotes, &model.Note{CourseID: course.ID, Title: "alice's"}))

	affected, err := store.Delete(ctx, alice, CollectionCourses, Eq("id", course.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	var notes []model.Note
	require.NoError(t, store.Select(ctx, alice, CollectionNotes, &notes, Query{}))
	assert.Empty(t, notes)

	require.NoError(t, store.Select(ctx, bob, CollectionNotes, &notes, Query{}))
	require.Len(t, notes, 1)
	assert.Equal(t, "bob's", notes[0].Title)

	var sessions []model.StudySession
	require.NoError(t, store.Select(ctx, bob, CollectionSessions, &sessions, Query{}))
	assert.Len(t, sessions, 1)
}
