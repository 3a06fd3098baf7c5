package controller

import (
	"errors"
	"io"
	"net/http"

	"certgo_backend/internal/service"
	"certgo_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ContentController struct {
	ContentService *service.ContentService
	QuizService    *service.QuizService
}

func NewContentController(contentService *service.ContentService, quizService *service.QuizService) *ContentController {
	return &ContentController{
		ContentService: contentService,
		QuizService:    quizService,
	}
}

// CreateContent godoc
// @Summary 创建学习内容
// @Description 内容以 PENDING 状态创建，后台任务负责抓取与分段
// @Tags 学习内容
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.ContentInput true "内容信息"
// @Success 201 {object} util.Response{data=model.LearningContent}
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 404 {object} util.Response "证书不存在"
// @Failure 409 {object} util.Response "source_url 已存在"
// @Router /api/v1/learning-content [post]
func (c *ContentController) CreateContent(ctx *gin.Context) {
	var req service.ContentInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	content, err := c.ContentService.CreateContent(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, content)
}

// ListContents godoc
// @Summary 学习内容列表
// @Tags 学习内容
// @Produce  json
// @Param   offset query int false "偏移"
// @Param   limit query int false "数量"
// @Success 200 {object} util.Response{data=[]model.LearningContent}
// @Router /api/v1/learning-content [get]
func (c *ContentController) ListContents(ctx *gin.Context) {
	offset, limit := util.Pagination(ctx)
	contents, err := c.ContentService.ListContents(ctx.Request.Context(), offset, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, contents)
}

// GetContent godoc
// @Summary 学习内容详情（含分段）
// @Tags 学习内容
// @Produce  json
// @Param   id path string true "内容ID"
// @Success 200 {object} util.Response{data=model.LearningContent}
// @Failure 404 {object} util.Response "不存在"
// @Router /api/v1/learning-content/{id} [get]
func (c *ContentController) GetContent(ctx *gin.Context) {
	content, err := c.ContentService.GetContent(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, content)
}

// ListSections godoc
// @Summary 学习内容分段
// @Tags 学习内容
// @Produce  json
// @Param   id path string true "内容ID"
// @Success 200 {object} util.Response{data=[]model.ContentSection}
// @Failure 404 {object} util.Response "不存在"
// @Router /api/v1/learning-content/{id}/sections [get]
func (c *ContentController) ListSections(ctx *gin.Context) {
	sections, err := c.ContentService.ListSections(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, sections)
}

// GenerateQuizzes godoc
// @Summary 请求生成测验
// @Description 记录生成任务并立即返回，测验由后台生成
// @Tags 学习内容
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "内容ID"
// @Param   body body service.QuizGenerationRequest false "难度与数量"
// @Success 202 {object} util.Response{data=model.ProcessingTask}
// @Failure 404 {object} util.Response "不存在"
// @Failure 409 {object} util.Response "内容尚未处理完成"
// @Router /api/v1/learning-content/{id}/quizzes/generate [post]
func (c *ContentController) GenerateQuizzes(ctx *gin.Context) {
	var req service.QuizGenerationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		util.BadRequest(ctx, err.Error())
		return
	}

	task, err := c.ContentService.RequestQuizGeneration(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Accepted(ctx, task)
}

// DeleteContent godoc
// @Summary 删除学习内容
// @Description 同时删除分段、学习进度、待处理任务与原始素材，关联测验保留
// @Tags 学习内容
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "内容ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response "需要管理员"
// @Failure 404 {object} util.Response "不存在"
// @Router /api/v1/learning-content/{id} [delete]
func (c *ContentController) DeleteContent(ctx *gin.Context) {
	if err := c.ContentService.DeleteContent(ctx.Request.Context(), ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// GetRawSource godoc
// @Summary 下载原始抓取内容
// @Tags 学习内容
// @Produce  octet-stream
// @Security ApiKeyAuth
// @Param   id path string true "内容ID"
// @Success 200 {file} file
// @Failure 403 {object} util.Response "需要管理员"
// @Failure 404 {object} util.Response "尚未抓取"
// @Router /api/v1/learning-content/{id}/raw [get]
func (c *ContentController) GetRawSource(ctx *gin.Context) {
	rc, err := c.ContentService.OpenRawSource(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	defer rc.Close()

	ctx.Header("Content-Disposition", "attachment; filename=\""+ctx.Param("id")+"\"")
	ctx.DataFromReader(http.StatusOK, -1, "application/octet-stream", rc, nil)
}

// ListQuizzes godoc
// @Summary 学习内容的测验
// @Tags 学习内容
// @Produce  json
// @Param   id path string true "内容ID"
// @Param   offset query int false "偏移"
// @Param   limit query int false "数量"
// @Success 200 {object} util.Response{data=[]model.Quiz}
// @Router /api/v1/learning-content/{id}/quizzes [get]
func (c *ContentController) ListQuizzes(ctx *gin.Context) {
	offset, limit := util.Pagination(ctx)
	quizzes, err := c.QuizService.ListQuizzesByContent(ctx.Request.Context(), ctx.Param("id"), offset, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}
