package controller

import (
	"strconv"

	"certgo_backend/internal/service"
	"certgo_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SubscriptionController struct {
	SubscriptionService *service.SubscriptionService
}

func NewSubscriptionController(subService *service.SubscriptionService) *SubscriptionController {
	return &SubscriptionController{SubscriptionService: subService}
}

// ListPlans godoc
// @Summary 订阅方案列表
// @Tags 订阅
// @Produce  json
// @Param   all query bool false "包含已下架方案"
// @Success 200 {object} util.Response{data=[]model.SubscriptionPlan}
// @Router /api/v1/plans [get]
func (c *SubscriptionController) ListPlans(ctx *gin.Context) {
	all, _ := strconv.ParseBool(ctx.DefaultQuery("all", "false"))
	plans, err := c.SubscriptionService.ListPlans(ctx.Request.Context(), !all)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, plans)
}

// CreatePlan godoc
// @Summary 创建订阅方案（管理员）
// @Tags 订阅
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.PlanInput true "方案"
// @Success 201 {object} util.Response{data=model.SubscriptionPlan}
// @Failure 409 {object} util.Response "名称已存在"
// @Router /api/v1/plans [post]
func (c *SubscriptionController) CreatePlan(ctx *gin.Context) {
	var req service.PlanInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	plan, err := c.SubscriptionService.CreatePlan(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, plan)
}

// Subscribe godoc
// @Summary 订阅方案
// @Description 已有的有效订阅会被取消
// @Tags 订阅
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.SubscribeInput true "订阅"
// @Success 201 {object} util.Response{data=model.UserSubscription}
// @Router /api/v1/subscriptions [post]
func (c *SubscriptionController) Subscribe(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req service.SubscribeInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sub, err := c.SubscriptionService.Subscribe(ctx.Request.Context(), user, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, sub)
}

// CurrentSubscription godoc
// @Summary 当前订阅
// @Tags 订阅
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.UserSubscription}
// @Failure 404 {object} util.Response "没有有效订阅"
// @Router /api/v1/subscriptions/current [get]
func (c *SubscriptionController) CurrentSubscription(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	sub, err := c.SubscriptionService.CurrentSubscription(ctx.Request.Context(), user)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, sub)
}

// CancelSubscription godoc
// @Summary 取消订阅
// @Tags 订阅
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "没有有效订阅"
// @Router /api/v1/subscriptions/current [delete]
func (c *SubscriptionController) CancelSubscription(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	if err := c.SubscriptionService.CancelSubscription(ctx.Request.Context(), user); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Subscription cancelled"})
}
