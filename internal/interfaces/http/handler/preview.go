// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"bookdraft-api/internal/application/preview"
	"bookdraft-api/internal/interfaces/http/dto"
)

// PreviewHandler 内容规整预览处理器
type PreviewHandler struct{}

// NewPreviewHandler 创建预览处理器
func NewPreviewHandler() *PreviewHandler {
	return &PreviewHandler{}
}

// Normalize 内容规整预览
// @Summary 内容规整预览
// @Description 将原始章节内容规整为带固定样式的 HTML
// @Tags Preview
// @Accept json
// @Produce json
// @Param body body dto.PreviewRequest true "原始内容"
// @Success 200 {object} dto.Response[dto.PreviewResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/preview [post]
func (h *PreviewHandler) Normalize(c *gin.Context) {
	var req dto.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	dto.Success(c, dto.PreviewResponse{
		HTML: preview.Normalize(req.Content, req.Title),
	})
}
