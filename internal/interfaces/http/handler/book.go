// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"bookdraft-api/internal/application/book"
	"bookdraft-api/internal/application/preview"
	"bookdraft-api/internal/domain/entity"
	"bookdraft-api/internal/interfaces/http/dto"
	"bookdraft-api/pkg/logger"
)

// BookHandler 书稿处理器
type BookHandler struct {
	svc *book.Service
}

// NewBookHandler 创建书稿处理器
func NewBookHandler(svc *book.Service) *BookHandler {
	return &BookHandler{svc: svc}
}

// Plan 生成书籍规划
// @Summary 生成书籍规划
// @Description 按主题生成书名与章节规划，并导入草稿视图
// @Tags Book
// @Accept json
// @Produce json
// @Param body body dto.PlanRequest true "规划参数"
// @Success 200 {object} dto.Response[dto.PlanResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/plan [post]
func (h *BookHandler) Plan(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	plan, err := h.svc.Plan(ctx, book.PlanRequest{
		Topic:             req.Topic,
		NumChapters:       req.NumChapters,
		Tone:              req.Tone,
		ReferenceURLs:     req.ReferenceURLs,
		AdditionalContent: req.AdditionalContent,
	})
	if err != nil {
		logger.Error(ctx, "failed to plan book", err, "topic", req.Topic)
		respondError(c, err)
		return
	}

	dto.Success(c, dto.ToPlanResponse(plan))
}

// Write 写作全部章节
// @Summary 写作全部章节
// @Description 对给定规划写作所有章节正文
// @Tags Book
// @Accept json
// @Produce json
// @Param body body dto.WriteRequest true "写作参数"
// @Success 200 {object} dto.Response[dto.WriteResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/write [post]
func (h *BookHandler) Write(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.WriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	content, err := h.svc.Write(ctx, book.WriteRequest{
		Title:    req.Title,
		Topic:    req.Topic,
		Tone:     req.Tone,
		Chapters: dto.ToPlanEntities(req.Chapters),
	})
	if err != nil {
		logger.Error(ctx, "failed to write book", err, "title", req.Title)
		respondError(c, err)
		return
	}

	dto.Success(c, toWriteResponse(content))
}

// Generate 一键生成全书
// @Summary 一键生成全书
// @Description 规划后立即写作全部章节
// @Tags Book
// @Accept json
// @Produce json
// @Param body body dto.PlanRequest true "生成参数"
// @Success 200 {object} dto.Response[dto.GenerateResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/generate [post]
func (h *BookHandler) Generate(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	plan, content, err := h.svc.Generate(ctx, book.GenerateRequest{
		Topic:             req.Topic,
		NumChapters:       req.NumChapters,
		Tone:              req.Tone,
		ReferenceURLs:     req.ReferenceURLs,
		AdditionalContent: req.AdditionalContent,
	})
	if err != nil {
		logger.Error(ctx, "failed to generate book", err, "topic", req.Topic)
		respondError(c, err)
		return
	}

	dto.Success(c, dto.GenerateResponse{
		Plan: dto.ToPlanResponse(plan),
		Book: toWriteResponse(content),
	})
}

// toWriteResponse 组装写作响应，正文同时给出原始文本与规整后的 HTML
func toWriteResponse(content *entity.BookContent) dto.WriteResponse {
	resp := dto.WriteResponse{
		Title:    content.Title,
		Chapters: make([]dto.ChapterContentDTO, 0, len(content.Chapters)),
	}
	for _, ch := range content.Chapters {
		resp.Chapters = append(resp.Chapters, dto.ChapterContentDTO{
			Title:   ch.Title,
			Content: ch.Content,
			HTML:    preview.Normalize(ch.Content, ch.Title),
		})
	}
	return resp
}
