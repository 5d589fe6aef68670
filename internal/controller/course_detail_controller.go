package controller

import (
	"study_tracker_backend/internal/model"
	"study_tracker_backend/internal/service"
	"study_tracker_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseDetailController struct {
	detail *service.CourseDetailService
}

func NewCourseDetailController(detail *service.CourseDetailService) *CourseDetailController {
	return &CourseDetailController{detail: detail}
}

type UpdateProgressRequest struct {
	ProgressPercentage *int   `json:"progressPercentage" binding:"required"`
	Status             string `json:"status" binding:"required"`
}

type UpdateHoursRequest struct {
	HoursSpent *float64 `json:"hoursSpent" binding:"required"`
}

type AddNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type AddSessionRequest struct {
	DurationMinutes int    `json:"durationMinutes"`
	Notes           string `json:"notes"`
}

func clampPercentage(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// UpdateProgress godoc
// @Summary 更新学习进度
// @Description 百分比会被限制在 0-100；状态可在 not_started / in_progress / completed 之间任意切换
// @Tags 课程详情
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "课程ID"
// @Param body body UpdateProgressRequest true "进度"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "没有对应的进度记录"
// @Router /api/courses/{id}/progress [put]
func (c *CourseDetailController) UpdateProgress(ctx *gin.Context) {
	var req UpdateProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	courseID := ctx.Param("id")
	percentage := clampPercentage(*req.ProgressPercentage)
	status := model.ProgressStatus(req.Status)

	if err := c.detail.UpdateProgress(ctx.Request.Context(), util.UserContextFrom(ctx), courseID, percentage, status); err != nil {
		handleServiceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"courseId":           courseID,
		"progressPercentage": percentage,
		"status":             status,
	})
}

// UpdateHours godoc
// @Summary 设置累计学习时数
// @Tags 课程详情
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "课程ID"
// @Param body body UpdateHoursRequest true "时数"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/hours [put]
func (c *CourseDetailController) UpdateHours(ctx *gin.Context) {
	var req UpdateHoursRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	courseID := ctx.Param("id")
	if err := c.detail.UpdateHours(ctx.Request.Context(), util.UserContextFrom(ctx), courseID, *req.HoursSpent); err != nil {
		handleServiceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"courseId": courseID, "hoursSpent": *req.HoursSpent})
}

// ListNotes godoc
// @Summary 课程笔记（按创建时间倒序）
// @Tags 课程详情
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response{data=[]model.Note}
// @Router /api/courses/{id}/notes [get]
func (c *CourseDetailController) ListNotes(ctx *gin.Context) {
	notes, err := c.detail.LoadNotes(ctx.Request.Context(), util.UserContextFrom(ctx), ctx.Param("id"))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, notes)
}

// AddNote godoc
// @Summary 新增笔记
// @Tags 课程详情
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "课程ID"
// @Param body body AddNoteRequest true "笔记"
// @Success 201 {object} util.Response{data=model.Note}
// @Router /api/courses/{id}/notes [post]
func (c *CourseDetailController) AddNote(ctx *gin.Context) {
	var req AddNoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	note, err := c.detail.AddNote(ctx.Request.Context(), util.UserContextFrom(ctx), ctx.Param("id"), req.Title, req.Content)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Created(ctx, note)
}

// ListSessions godoc
// @Summary 学习记录（按日期倒序）
// @Tags 课程详情
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response{data=[]model.StudySession}
// @Router /api/courses/{id}/sessions [get]
func (c *CourseDetailController) ListSessions(ctx *gin.Context) {
	sessions, err := c.detail.LoadSessions(ctx.Request.Context(), util.UserContextFrom(ctx), ctx.Param("id"))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, sessions)
}

// AddSession godoc
// @Summary 记录学习时间
// @Tags 课程详情
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "课程ID"
// @Param body body AddSessionRequest true "学习记录"
// @Success 201 {object} util.Response{data=model.StudySession}
// @Failure 400 {object} util.Response "时长至少 1 分钟"
// @Router /api/courses/{id}/sessions [post]
func (c *CourseDetailController) AddSession(ctx *gin.Context) {
	var req AddSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.detail.AddSession(ctx.Request.Context(), util.UserContextFrom(ctx), ctx.Param("id"), req.DurationMinutes, req.Notes)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Created(ctx, session)
}
