package controller

import (
	"certgo_backend/internal/service"
	"certgo_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// GetMe godoc
// @Summary 获取当前用户
// @Tags 用户
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.User}
// @Failure 401 {object} util.Response "未授权"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/v1/users/me [get]
func (c *UserController) GetMe(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	util.Success(ctx, user)
}

// UpdateProfile godoc
// @Summary 更新个人资料
// @Description 只更新请求中出现的字段
// @Tags 用户
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.ProfileUpdate true "资料"
// @Success 200 {object} util.Response{data=model.User}
// @Router /api/v1/users/me [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req service.ProfileUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	updated, err := c.UserService.UpdateProfile(ctx.Request.Context(), user, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, updated)
}

// UpdateNotifications godoc
// @Summary 更新通知设置
// @Tags 用户
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.NotificationUpdate true "通知开关"
// @Success 200 {object} util.Response{data=model.User}
// @Router /api/v1/users/me/notifications [put]
func (c *UserController) UpdateNotifications(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req service.NotificationUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	updated, err := c.UserService.UpdateNotificationPrefs(ctx.Request.Context(), user, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, updated)
}

// swagger:model ChangePasswordRequest
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// ChangePassword godoc
// @Summary 修改密码
// @Tags 用户
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body ChangePasswordRequest true "密码"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "当前密码错误或两次输入不一致"
// @Router /api/v1/users/me/password [put]
func (c *UserController) ChangePassword(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.UserService.ChangePassword(ctx.Request.Context(), user, req.CurrentPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Password updated successfully"})
}

// DeleteMe godoc
// @Summary 注销账号
// @Description 删除账号及其全部学习记录，不可恢复
// @Tags 用户
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/v1/users/me [delete]
func (c *UserController) DeleteMe(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	if err := c.UserService.Delete(ctx.Request.Context(), user); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Account deleted successfully"})
}

// LoginHistory godoc
// @Summary 登录历史
// @Tags 用户
// @Produce  json
// @Security ApiKeyAuth
// @Param   offset query int false "偏移"
// @Param   limit query int false "数量"
// @Success 200 {object} util.Response{data=[]model.LoginHistory}
// @Router /api/v1/users/me/login-history [get]
func (c *UserController) LoginHistory(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	offset, limit := util.Pagination(ctx)
	history, err := c.UserService.LoginHistory(ctx.Request.Context(), user, offset, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, history)
}
