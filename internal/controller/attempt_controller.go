package controller

import (
	"certgo_backend/internal/service"
	"certgo_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	AttemptService *service.AttemptService
}

func NewAttemptController(attemptService *service.AttemptService) *AttemptController {
	return &AttemptController{AttemptService: attemptService}
}

// StartAttempt godoc
// @Summary 开始一次测验
// @Tags 测验记录
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.AttemptInput true "测验类型"
// @Success 201 {object} util.Response{data=model.UserQuizAttempt}
// @Router /api/v1/attempts [post]
func (c *AttemptController) StartAttempt(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req service.AttemptInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.AttemptService.StartAttempt(ctx.Request.Context(), user, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, attempt)
}

// ListAttempts godoc
// @Summary 我的测验记录
// @Tags 测验记录
// @Produce  json
// @Security ApiKeyAuth
// @Param   offset query int false "偏移"
// @Param   limit query int false "数量"
// @Success 200 {object} util.Response{data=[]model.UserQuizAttempt}
// @Router /api/v1/attempts [get]
func (c *AttemptController) ListAttempts(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	offset, limit := util.Pagination(ctx)
	attempts, err := c.AttemptService.ListAttempts(ctx.Request.Context(), user, offset, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

// GetAttempt godoc
// @Summary 测验记录详情（含作答）
// @Tags 测验记录
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "记录ID"
// @Success 200 {object} util.Response{data=model.UserQuizAttempt}
// @Failure 404 {object} util.Response "不存在"
// @Router /api/v1/attempts/{id} [get]
func (c *AttemptController) GetAttempt(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	attempt, err := c.AttemptService.GetAttempt(ctx.Request.Context(), user, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// SubmitAnswer godoc
// @Summary 提交作答
// @Tags 测验记录
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "记录ID"
// @Param   body body service.AnswerInput true "作答"
// @Success 200 {object} util.Response{data=model.UserAnswer}
// @Failure 409 {object} util.Response "测验已结束"
// @Router /api/v1/attempts/{id}/answers [post]
func (c *AttemptController) SubmitAnswer(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req service.AnswerInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	answer, err := c.AttemptService.SubmitAnswer(ctx.Request.Context(), user, ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, answer)
}

// FinishAttempt godoc
// @Summary 结束测验并计分
// @Tags 测验记录
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "记录ID"
// @Success 200 {object} util.Response{data=model.UserQuizAttempt}
// @Failure 409 {object} util.Response "测验已结束"
// @Router /api/v1/attempts/{id}/finish [post]
func (c *AttemptController) FinishAttempt(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	attempt, err := c.AttemptService.FinishAttempt(ctx.Request.Context(), user, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// swagger:model BookmarkRequest
type BookmarkRequest struct {
	Bookmarked bool `json:"bookmarked"`
}

// SetBookmark godoc
// @Summary 收藏/取消收藏作答
// @Tags 测验记录
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "作答ID"
// @Param   body body BookmarkRequest true "收藏状态"
// @Success 200 {object} util.Response{data=model.UserAnswer}
// @Router /api/v1/answers/{id}/bookmark [put]
func (c *AttemptController) SetBookmark(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req BookmarkRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	answer, err := c.AttemptService.SetBookmark(ctx.Request.Context(), user, ctx.Param("id"), req.Bookmarked)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, answer)
}
