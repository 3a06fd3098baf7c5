package controller

import (
	"certgo_backend/internal/service"
	"certgo_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// RecordProgress godoc
// @Summary 记录学习进度
// @Description 百分比会被截断到 0-100
// @Tags 学习进度
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   contentId path string true "内容ID"
// @Param   body body service.ProgressInput true "进度"
// @Success 200 {object} util.Response{data=model.UserLearningProgress}
// @Router /api/v1/progress/{contentId} [put]
func (c *ProgressController) RecordProgress(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req service.ProgressInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	progress, err := c.ProgressService.RecordProgress(ctx.Request.Context(), user, ctx.Param("contentId"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// RecordSummary godoc
// @Summary 摘要次数加一
// @Tags 学习进度
// @Produce  json
// @Security ApiKeyAuth
// @Param   contentId path string true "内容ID"
// @Success 200 {object} util.Response{data=model.UserLearningProgress}
// @Router /api/v1/progress/{contentId}/summary [post]
func (c *ProgressController) RecordSummary(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	progress, err := c.ProgressService.IncrementSummaryCount(ctx.Request.Context(), user, ctx.Param("contentId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// ListProgress godoc
// @Summary 我的学习进度
// @Tags 学习进度
// @Produce  json
// @Security ApiKeyAuth
// @Param   offset query int false "偏移"
// @Param   limit query int false "数量"
// @Success 200 {object} util.Response{data=[]model.UserLearningProgress}
// @Router /api/v1/progress [get]
func (c *ProgressController) ListProgress(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	offset, limit := util.Pagination(ctx)
	progress, err := c.ProgressService.ListProgress(ctx.Request.Context(), user, offset, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}
