// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"bookdraft-api/internal/application/book"
	"bookdraft-api/internal/application/preview"
	"bookdraft-api/internal/domain/repository"
	"bookdraft-api/internal/interfaces/http/dto"
	"bookdraft-api/pkg/logger"
)

// ChapterHandler 章节处理器
type ChapterHandler struct {
	chapterRepo repository.ChapterRepository
	bookSvc     *book.Service
}

// NewChapterHandler 创建章节处理器
func NewChapterHandler(chapterRepo repository.ChapterRepository, bookSvc *book.Service) *ChapterHandler {
	return &ChapterHandler{
		chapterRepo: chapterRepo,
		bookSvc:     bookSvc,
	}
}

// ListChapters 获取章节列表
// @Summary 获取章节列表
// @Description 按顺序返回草稿视图中的全部章节
// @Tags Chapters
// @Produce json
// @Success 200 {object} dto.Response[dto.ChapterListResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/chapters [get]
func (h *ChapterHandler) ListChapters(c *gin.Context) {
	ctx := c.Request.Context()

	chapters, err := h.chapterRepo.List(ctx)
	if err != nil {
		logger.Error(ctx, "failed to list chapters", err)
		respondError(c, err)
		return
	}

	dto.Success(c, dto.ToChapterListResponse(chapters))
}

// CreateChapter 创建章节
// @Summary 创建章节
// @Description 在列表尾部追加一条草稿章节
// @Tags Chapters
// @Accept json
// @Produce json
// @Param body body dto.CreateChapterRequest true "章节信息"
// @Success 201 {object} dto.Response[dto.ChapterResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/chapters [post]
func (h *ChapterHandler) CreateChapter(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	chapter := req.ToChapterEntity(0)
	if err := h.chapterRepo.Create(ctx, chapter); err != nil {
		logger.Error(ctx, "failed to create chapter", err)
		respondError(c, err)
		return
	}

	dto.Created(c, dto.ToChapterResponse(chapter))
}

// GetChapter 获取章节详情
// @Summary 获取章节详情
// @Tags Chapters
// @Produce json
// @Param cid path string true "章节 ID"
// @Success 200 {object} dto.Response[dto.ChapterResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/chapters/{cid} [get]
func (h *ChapterHandler) GetChapter(c *gin.Context) {
	ctx := c.Request.Context()
	chapterID := c.Param("cid")

	chapter, err := h.chapterRepo.Get(ctx, chapterID)
	if err != nil {
		respondError(c, err)
		return
	}

	dto.Success(c, dto.ToChapterResponse(chapter))
}

// UpdateChapter 更新章节
// @Summary 更新章节
// @Description 更新标题、摘要、正文或展开状态
// @Tags Chapters
// @Accept json
// @Produce json
// @Param cid path string true "章节 ID"
// @Param body body dto.UpdateChapterRequest true "更新内容"
// @Success 200 {object} dto.Response[dto.ChapterResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/chapters/{cid} [put]
func (h *ChapterHandler) UpdateChapter(c *gin.Context) {
	ctx := c.Request.Context()
	chapterID := c.Param("cid")

	var req dto.UpdateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	chapter, err := h.chapterRepo.Get(ctx, chapterID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !chapter.IsEditable() {
		dto.Conflict(c, "chapter is being generated")
		return
	}

	req.ApplyToChapter(chapter)
	if err := h.chapterRepo.Update(ctx, chapter); err != nil {
		logger.Error(ctx, "failed to update chapter", err, "chapter_id", chapterID)
		respondError(c, err)
		return
	}

	dto.Success(c, dto.ToChapterResponse(chapter))
}

// DeleteChapter 删除章节
// @Summary 删除章节
// @Tags Chapters
// @Param cid path string true "章节 ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/chapters/{cid} [delete]
func (h *ChapterHandler) DeleteChapter(c *gin.Context) {
	ctx := c.Request.Context()
	chapterID := c.Param("cid")

	if err := h.chapterRepo.Delete(ctx, chapterID); err != nil {
		respondError(c, err)
		return
	}

	dto.NoContent(c)
}

// ReorderChapter 调整章节位置
// @Summary 调整章节位置
// @Description 将章节移动到目标位置（0 起始），其余章节顺延
// @Tags Chapters
// @Accept json
// @Produce json
// @Param cid path string true "章节 ID"
// @Param body body dto.ReorderChapterRequest true "目标位置"
// @Success 200 {object} dto.Response[dto.ChapterListResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/chapters/{cid}/reorder [post]
func (h *ChapterHandler) ReorderChapter(c *gin.Context) {
	ctx := c.Request.Context()
	chapterID := c.Param("cid")

	var req dto.ReorderChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.chapterRepo.Reorder(ctx, chapterID, *req.Position); err != nil {
		respondError(c, err)
		return
	}

	chapters, err := h.chapterRepo.List(ctx)
	if err != nil {
		logger.Error(ctx, "failed to list chapters after reorder", err)
		respondError(c, err)
		return
	}
	dto.Success(c, dto.ToChapterListResponse(chapters))
}

// MergeChapter 合并章节
// @Summary 合并章节
// @Description 将 source 章节并入当前章节：正文拼接，source 降级为子主题
// @Tags Chapters
// @Accept json
// @Produce json
// @Param cid path string true "目标章节 ID"
// @Param body body dto.MergeChapterRequest true "来源章节"
// @Success 200 {object} dto.Response[dto.ChapterResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/chapters/{cid}/merge [post]
func (h *ChapterHandler) MergeChapter(c *gin.Context) {
	ctx := c.Request.Context()
	chapterID := c.Param("cid")

	var req dto.MergeChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	merged, err := h.chapterRepo.Merge(ctx, chapterID, req.SourceID)
	if err != nil {
		logger.Error(ctx, "failed to merge chapters", err,
			"target_id", chapterID, "source_id", req.SourceID)
		respondError(c, err)
		return
	}

	dto.Success(c, dto.ToChapterResponse(merged))
}

// PreviewChapter 预览章节正文
// @Summary 预览章节正文
// @Description 返回章节正文规整后的 HTML
// @Tags Chapters
// @Produce json
// @Param cid path string true "章节 ID"
// @Success 200 {object} dto.Response[dto.PreviewResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/chapters/{cid}/preview [get]
func (h *ChapterHandler) PreviewChapter(c *gin.Context) {
	ctx := c.Request.Context()
	chapterID := c.Param("cid")

	chapter, err := h.chapterRepo.Get(ctx, chapterID)
	if err != nil {
		respondError(c, err)
		return
	}

	dto.Success(c, dto.PreviewResponse{
		HTML: preview.Normalize(chapter.Content, chapter.Title),
	})
}

// GenerateChapter 生成章节正文
// @Summary 生成章节正文
// @Description 为单个草稿章节生成正文
// @Tags Chapters
// @Accept json
// @Produce json
// @Param cid path string true "章节 ID"
// @Param body body dto.GenerateChapterRequest true "生成参数"
// @Success 200 {object} dto.Response[dto.ChapterResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/chapters/{cid}/generate [post]
func (h *ChapterHandler) GenerateChapter(c *gin.Context) {
	ctx := c.Request.Context()
	chapterID := c.Param("cid")

	// 请求体可省略，省略时使用默认语气
	var req dto.GenerateChapterRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			dto.BadRequest(c, "invalid request body: "+err.Error())
			return
		}
	}

	chapter, err := h.bookSvc.GenerateChapter(ctx, chapterID, req.Tone)
	if err != nil {
		logger.Error(ctx, "failed to generate chapter", err, "chapter_id", chapterID)
		respondError(c, err)
		return
	}

	dto.Success(c, dto.ToChapterResponse(chapter))
}
