package controller

import (
	"certgo_backend/internal/service"
	"certgo_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// RegisterRequest defines model for registration
// swagger:model RegisterRequest
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

// Register godoc
// @Summary 注册新用户
// @Description 邮箱唯一，管理员邮箱由配置指定
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body RegisterRequest true "用户注册信息"
// @Success 201 {object} util.Response{data=model.User} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误或邮箱已被注册"
// @Failure 500 {object} util.Response "服务器内部错误"
// @Router /api/v1/auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.AuthService.Register(ctx.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, user)
}

// LoginRequest 兼容 OAuth2 密码模式的表单提交，也接受 JSON
// swagger:model LoginRequest
type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// swagger:model TokenResponse
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login godoc
// @Summary 用户登录
// @Description username 为邮箱，成功后返回 bearer 令牌
// @Tags 认证
// @Accept  x-www-form-urlencoded,json
// @Produce  json
// @Param   username formData string true "邮箱"
// @Param   password formData string true "密码"
// @Success 200 {object} util.Response{data=TokenResponse} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "用户名或密码错误"
// @Router /api/v1/auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBind(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, _, err := c.AuthService.Login(ctx.Request.Context(), req.Username, req.Password, service.LoginMeta{
		IPAddress:  ctx.ClientIP(),
		DeviceInfo: ctx.Request.UserAgent(),
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, TokenResponse{AccessToken: token, TokenType: util.TokenType})
}
