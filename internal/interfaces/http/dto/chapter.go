// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"bookdraft-api/internal/domain/entity"
)

// CreateChapterRequest 创建章节请求
type CreateChapterRequest struct {
	Title   string `json:"title" binding:"required,max=255"`
	Summary string `json:"summary" binding:"max=5000"`
}

// UpdateChapterRequest 更新章节请求
type UpdateChapterRequest struct {
	Title      *string `json:"title,omitempty" binding:"omitempty,max=255"`
	Summary    *string `json:"summary,omitempty" binding:"omitempty,max=5000"`
	Content    *string `json:"content,omitempty"`
	IsExpanded *bool   `json:"is_expanded,omitempty"`
}

// ReorderChapterRequest 章节排序请求
type ReorderChapterRequest struct {
	Position *int `json:"position" binding:"required,gte=0"`
}

// MergeChapterRequest 章节合并请求
type MergeChapterRequest struct {
	SourceID string `json:"source_id" binding:"required"`
}

// GenerateChapterRequest 章节生成请求
type GenerateChapterRequest struct {
	Tone string `json:"tone" binding:"omitempty,max=32"`
}

// SubtopicResponse 子主题响应
type SubtopicResponse struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
}

// GenerationMetadataResponse 生成元数据响应
type GenerationMetadataResponse struct {
	Provider    string  `json:"provider,omitempty"`
	Tone        string  `json:"tone,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	GeneratedAt string  `json:"generated_at,omitempty"`
}

// ChapterResponse 章节响应
type ChapterResponse struct {
	ID                 string                      `json:"id"`
	SeqNum             int                         `json:"seq_num"`
	Title              string                      `json:"title"`
	Summary            string                      `json:"summary,omitempty"`
	Content            string                      `json:"content,omitempty"`
	Subtopics          []SubtopicResponse          `json:"subtopics"`
	IsExpanded         bool                        `json:"is_expanded"`
	WordCount          int                         `json:"word_count"`
	Status             string                      `json:"status"`
	GenerationMetadata *GenerationMetadataResponse `json:"generation_metadata,omitempty"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
}

// ChapterListResponse 章节列表响应
type ChapterListResponse struct {
	Chapters []*ChapterResponse `json:"chapters"`
}

// ToChapterResponse 将领域实体转换为响应 DTO
func ToChapterResponse(c *entity.Chapter) *ChapterResponse {
	if c == nil {
		return nil
	}

	resp := &ChapterResponse{
		ID:         c.ID,
		SeqNum:     c.SeqNum,
		Title:      c.Title,
		Summary:    c.Summary,
		Content:    c.Content,
		Subtopics:  make([]SubtopicResponse, 0, len(c.Subtopics)),
		IsExpanded: c.IsExpanded,
		WordCount:  c.WordCount,
		Status:     string(c.Status),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	for _, st := range c.Subtopics {
		resp.Subtopics = append(resp.Subtopics, SubtopicResponse{
			ID:      st.ID,
			Title:   st.Title,
			Content: st.Content,
		})
	}
	if c.GenerationMetadata != nil {
		resp.GenerationMetadata = &GenerationMetadataResponse{
			Provider:    c.GenerationMetadata.Provider,
			Tone:        c.GenerationMetadata.Tone,
			Temperature: c.GenerationMetadata.Temperature,
			GeneratedAt: c.GenerationMetadata.GeneratedAt,
		}
	}
	return resp
}

// ToChapterListResponse 将领域实体列表转换为响应 DTO
func ToChapterListResponse(chapters []*entity.Chapter) *ChapterListResponse {
	resp := &ChapterListResponse{
		Chapters: make([]*ChapterResponse, 0, len(chapters)),
	}
	for _, c := range chapters {
		resp.Chapters = append(resp.Chapters, ToChapterResponse(c))
	}
	return resp
}

// ToChapterEntity 将创建请求转换为领域实体
func (r *CreateChapterRequest) ToChapterEntity(seqNum int) *entity.Chapter {
	return entity.NewChapter(r.Title, r.Summary, seqNum)
}

// ApplyToChapter 将更新请求应用到章节实体
func (r *UpdateChapterRequest) ApplyToChapter(c *entity.Chapter) {
	if r.Title != nil {
		c.Title = *r.Title
	}
	if r.Summary != nil {
		c.Summary = *r.Summary
	}
	if r.Content != nil {
		c.SetContent(*r.Content)
	}
	if r.IsExpanded != nil {
		c.IsExpanded = *r.IsExpanded
	}
	c.UpdatedAt = time.Now()
}
