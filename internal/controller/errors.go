package controller

import (
	"errors"
	"net/http"

	"study_tracker_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// handleServiceError 把服务层错误映射为 HTTP 响应
func handleServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrNoUser):
		util.Unauthorized(ctx)
	case errors.Is(err, util.ErrInvalidInput), errors.Is(err, util.ErrConfirmationRequired):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrCourseNotFound), errors.Is(err, util.ErrProgressNotFound), errors.Is(err, util.ErrUserNotFound):
		util.NotFound(ctx, err.Error())
	case errors.Is(err, util.ErrEmailRegistered):
		util.Error(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, util.ErrInvalidCredentials):
		util.Error(ctx, http.StatusUnauthorized, err.Error())
	default:
		util.StoreError(ctx, err)
	}
}
