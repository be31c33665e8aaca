// Package dto 提供 HTTP 层数据传输对象
package dto

// PreviewRequest 内容规整预览请求
type PreviewRequest struct {
	Content string `json:"content" binding:"required"`
	Title   string `json:"title" binding:"omitempty,max=255"`
}

// PreviewResponse 内容规整预览响应
type PreviewResponse struct {
	HTML string `json:"html"`
}
