package controller

import (
	"errors"
	"net/http"

	"certgo_backend/internal/model"
	"certgo_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// respondError 把领域错误映射为 HTTP 状态码，其余按 500 处理并记录日志
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrDuplicateEmail),
		errors.Is(err, util.ErrValidation),
		errors.Is(err, util.ErrWrongPassword),
		errors.Is(err, util.ErrPasswordMismatch):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrInvalidCredentials):
		ctx.Header("WWW-Authenticate", "Bearer")
		util.Error(ctx, http.StatusUnauthorized, err.Error())
	case errors.Is(err, util.ErrUnauthorized), errors.Is(err, util.ErrInvalidToken):
		util.Unauthorized(ctx)
	case errors.Is(err, util.ErrForbidden):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrDuplicateCertificate),
		errors.Is(err, util.ErrDuplicateSourceURL),
		errors.Is(err, util.ErrDuplicatePlan),
		errors.Is(err, util.ErrAttemptFinished),
		errors.Is(err, util.ErrContentNotReady):
		util.Error(ctx, http.StatusConflict, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// currentUser 由 AuthMiddleware 注入；缺失时直接返回 401
func currentUser(ctx *gin.Context) (*model.User, bool) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return nil, false
	}
	return user, true
}
