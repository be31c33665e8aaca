// Package handler 提供 HTTP 请求处理器
package handler

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"bookdraft-api/internal/application/export"
	"bookdraft-api/internal/domain/repository"
	"bookdraft-api/pkg/logger"
)

// ExportHandler 书稿导出处理器
type ExportHandler struct {
	chapterRepo repository.ChapterRepository
	exportSvc   *export.Service
}

// NewExportHandler 创建导出处理器
func NewExportHandler(chapterRepo repository.ChapterRepository, exportSvc *export.Service) *ExportHandler {
	return &ExportHandler{
		chapterRepo: chapterRepo,
		exportSvc:   exportSvc,
	}
}

// Export 导出当前书稿
// @Summary 导出当前书稿
// @Description 把草稿视图中的全部章节渲染为单个 html / markdown / json 文件
// @Tags Export
// @Produce octet-stream
// @Param format query string false "导出格式" Enums(html, markdown, json) default(html)
// @Param title query string false "书名"
// @Success 200 {string} string "导出文件内容"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	ctx := c.Request.Context()
	format := c.DefaultQuery("format", export.FormatHTML)
	title := strings.TrimSpace(c.Query("title"))
	if title == "" {
		title = "Untitled Book"
	}

	chapters, err := h.chapterRepo.List(ctx)
	if err != nil {
		logger.Error(ctx, "failed to list chapters for export", err)
		respondError(c, err)
		return
	}

	result, err := h.exportSvc.Render(ctx, title, chapters, format)
	if err != nil {
		logger.Error(ctx, "failed to export book", err, "format", format)
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("%s.%s", slugify(title), result.Extension)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(200, result.ContentType, result.Data)
}

// slugify 把书名转成安全的文件名
func slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "book"
	}
	return out
}
