// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"bookdraft-api/internal/domain/entity"
)

// PlanRequest 书籍规划请求
type PlanRequest struct {
	Topic             string   `json:"topic" binding:"required,max=500"`
	NumChapters       int      `json:"num_chapters" binding:"omitempty,gte=1,lte=50"`
	Tone              string   `json:"tone" binding:"omitempty,max=32"`
	ReferenceURLs     []string `json:"reference_urls" binding:"omitempty,max=10,dive,url"`
	AdditionalContent string   `json:"additional_content" binding:"omitempty,max=50000"`
}

// ChapterPlanDTO 章节规划
type ChapterPlanDTO struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// PlanResponse 书籍规划响应
type PlanResponse struct {
	Title    string           `json:"title"`
	Chapters []ChapterPlanDTO `json:"chapters"`
}

// WriteRequest 书籍写作请求：对既有规划写作全部章节
type WriteRequest struct {
	Title    string           `json:"title" binding:"required,max=500"`
	Topic    string           `json:"topic" binding:"required,max=500"`
	Tone     string           `json:"tone" binding:"omitempty,max=32"`
	Chapters []ChapterPlanDTO `json:"chapters" binding:"required,min=1,max=50"`
}

// ChapterContentDTO 已写作章节：原始正文 + 规整后的 HTML
type ChapterContentDTO struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	HTML    string `json:"html"`
}

// WriteResponse 书籍写作响应
type WriteResponse struct {
	Title    string              `json:"title"`
	Chapters []ChapterContentDTO `json:"chapters"`
}

// GenerateResponse 一键生成响应
type GenerateResponse struct {
	Plan PlanResponse  `json:"plan"`
	Book WriteResponse `json:"book"`
}

// ToPlanResponse 将规划实体转换为响应 DTO
func ToPlanResponse(plan *entity.BookPlan) PlanResponse {
	resp := PlanResponse{
		Title:    plan.Title,
		Chapters: make([]ChapterPlanDTO, 0, len(plan.Chapters)),
	}
	for _, ch := range plan.Chapters {
		resp.Chapters = append(resp.Chapters, ChapterPlanDTO{Title: ch.Title, Summary: ch.Summary})
	}
	return resp
}

// ToPlanEntities 将章节规划 DTO 转换为领域对象
func ToPlanEntities(chapters []ChapterPlanDTO) []entity.ChapterPlan {
	out := make([]entity.ChapterPlan, 0, len(chapters))
	for _, ch := range chapters {
		out = append(out, entity.ChapterPlan{Title: ch.Title, Summary: ch.Summary})
	}
	return out
}
