package controller

import (
	"strconv"

	"study_tracker_backend/internal/service"
	"study_tracker_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	courses *service.CourseService
	detail  *service.CourseDetailService
}

func NewCourseController(courses *service.CourseService, detail *service.CourseDetailService) *CourseController {
	return &CourseController{courses: courses, detail: detail}
}

type CreateCourseRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	TargetHours int    `json:"targetHours"`
}

// ListCourses godoc
// @Summary 我的课程（含进度）
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Course}
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	courses, err := c.courses.List(ctx.Request.Context(), util.UserContextFrom(ctx))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// CreateCourse godoc
// @Summary 新增课程
// @Tags 课程
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CreateCourseRequest true "课程信息"
// @Success 201 {object} util.Response{data=model.Course}
// @Router /api/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req CreateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.courses.Create(ctx.Request.Context(), util.UserContextFrom(ctx), service.CreateCourseInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		TargetHours: req.TargetHours,
	})
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// GetCourse godoc
// @Summary 课程详情
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	course, err := c.courses.Get(ctx.Request.Context(), util.UserContextFrom(ctx), ctx.Param("id"))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// DeleteCourse godoc
// @Summary 删除课程（不可恢复，需 confirm=true）
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "课程ID"
// @Param confirm query bool true "确认删除"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	confirmed, _ := strconv.ParseBool(ctx.Query("confirm"))

	courseID := ctx.Param("id")
	if err := c.detail.DeleteCourse(ctx.Request.Context(), util.UserContextFrom(ctx), courseID, confirmed); err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": courseID, "deleted": true})
}
