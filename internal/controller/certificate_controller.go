package controller

import (
	"certgo_backend/internal/service"
	"certgo_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CertificateController struct {
	CertificateService *service.CertificateService
	ContentService     *service.ContentService
	QuizService        *service.QuizService
}

func NewCertificateController(certService *service.CertificateService, contentService *service.ContentService, quizService *service.QuizService) *CertificateController {
	return &CertificateController{
		CertificateService: certService,
		ContentService:     contentService,
		QuizService:        quizService,
	}
}

// CreateCertificate godoc
// @Summary 创建证书（管理员）
// @Tags 证书
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CertificateInput true "证书信息"
// @Success 201 {object} util.Response{data=model.Certificate}
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 403 {object} util.Response "无权限"
// @Failure 409 {object} util.Response "名称已存在"
// @Router /api/v1/certificates [post]
func (c *CertificateController) CreateCertificate(ctx *gin.Context) {
	var req service.CertificateInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	cert, err := c.CertificateService.CreateCertificate(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, cert)
}

// ListCertificates godoc
// @Summary 证书列表
// @Tags 证书
// @Produce  json
// @Param   offset query int false "偏移"
// @Param   limit query int false "数量"
// @Success 200 {object} util.Response{data=[]model.Certificate}
// @Router /api/v1/certificates [get]
func (c *CertificateController) ListCertificates(ctx *gin.Context) {
	offset, limit := util.Pagination(ctx)
	certs, err := c.CertificateService.ListCertificates(ctx.Request.Context(), offset, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, certs)
}

// GetCertificate godoc
// @Summary 证书详情
// @Tags 证书
// @Produce  json
// @Param   id path string true "证书ID"
// @Success 200 {object} util.Response{data=model.Certificate}
// @Failure 404 {object} util.Response "不存在"
// @Router /api/v1/certificates/{id} [get]
func (c *CertificateController) GetCertificate(ctx *gin.Context) {
	cert, err := c.CertificateService.GetCertificate(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, cert)
}

// ListContents godoc
// @Summary 证书下的学习内容
// @Tags 证书
// @Produce  json
// @Param   id path string true "证书ID"
// @Param   offset query int false "偏移"
// @Param   limit query int false "数量"
// @Success 200 {object} util.Response{data=[]model.LearningContent}
// @Router /api/v1/certificates/{id}/contents [get]
func (c *CertificateController) ListContents(ctx *gin.Context) {
	offset, limit := util.Pagination(ctx)
	contents, err := c.ContentService.ListContentByCertificate(ctx.Request.Context(), ctx.Param("id"), offset, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, contents)
}

// ListQuizzes godoc
// @Summary 证书下的测验
// @Tags 证书
// @Produce  json
// @Param   id path string true "证书ID"
// @Param   offset query int false "偏移"
// @Param   limit query int false "数量"
// @Success 200 {object} util.Response{data=[]model.Quiz}
// @Router /api/v1/certificates/{id}/quizzes [get]
func (c *CertificateController) ListQuizzes(ctx *gin.Context) {
	offset, limit := util.Pagination(ctx)
	quizzes, err := c.QuizService.ListQuizzesByCertificate(ctx.Request.Context(), ctx.Param("id"), offset, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}
