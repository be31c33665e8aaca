// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(v1 *gin.RouterGroup, h Handlers) {
	// 书稿生成
	v1.POST("/plan", h.Book.Plan)
	v1.POST("/write", h.Book.Write)
	v1.POST("/generate", h.Book.Generate)

	// 章节管理
	chapters := v1.Group("/chapters")
	{
		chapters.GET("", h.Chapter.ListChapters)
		chapters.POST("", h.Chapter.CreateChapter)
		chapters.GET("/:cid", h.Chapter.GetChapter)
		chapters.PUT("/:cid", h.Chapter.UpdateChapter)
		chapters.DELETE("/:cid", h.Chapter.DeleteChapter)
		chapters.POST("/:cid/reorder", h.Chapter.ReorderChapter)
		chapters.POST("/:cid/merge", h.Chapter.MergeChapter)
		chapters.POST("/:cid/generate", h.Chapter.GenerateChapter)
		chapters.GET("/:cid/preview", h.Chapter.PreviewChapter)
	}

	// 内容规整预览
	v1.POST("/preview", h.Preview.Normalize)

	// 书稿导出
	v1.GET("/export", h.Export.Export)
}
