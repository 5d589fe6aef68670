package service

import (
	"context"
	"testing"

	"study_tracker_backend/internal/model"
	"study_tracker_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCourse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	course, err := f.courses.Create(ctx, alice, CreateCourseInput{
		Title:       "  JavaScript 基础  ",
		Description: "从零开始",
		Category:    "编程",
		TargetHours: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, "JavaScript 基础", course.Title)
	assert.Equal(t, 20, course.TargetHours)
	require.NotNil(t, course.Progress)
	assert.Equal(t, model.StatusNotStarted, course.Progress.Status)
	assert.Equal(t, 1, f.cache.invalidated)
}

func TestListCoursesNewestFirstWithProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	empty, err := f.courses.List(ctx, alice)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	createCourse(t, f, alice, "first")
	createCourse(t, f, alice, "second")
	createCourse(t, f, bob, "bob's")

	courses, err := f.courses.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "second", courses[0].Title)
	assert.Equal(t, "first", courses[1].Title)
	for _, c := range courses {
		require.NotNil(t, c.Progress)
		assert.Equal(t, 0, c.Progress.ProgressPercentage)
	}
}

func TestGetCourseNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.courses.Get(context.Background(), alice, "missing")
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}
