package controller

import (
	"study_tracker_backend/internal/service"
	"study_tracker_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StatsController struct {
	StatsService *service.StatsService
}

func NewStatsController(statsService *service.StatsService) *StatsController {
	return &StatsController{StatsService: statsService}
}

// @Summary 学习统计
// @Description 课程总数、进行中、已完成、总时数、平均进度；有课程时附带完成率与平均时数
// @Tags 统计
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.StatsOverview}
// @Router /api/stats [get]
func (c *StatsController) GetOverview(ctx *gin.Context) {
	overview, err := c.StatsService.Overview(ctx.Request.Context(), util.UserContextFrom(ctx))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, overview)
}
