// Package entity 定义领域实体
package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChapterStatus 章节状态
type ChapterStatus string

const (
	ChapterStatusDraft      ChapterStatus = "draft"
	ChapterStatusGenerating ChapterStatus = "generating"
	ChapterStatusCompleted  ChapterStatus = "completed"
)

// GenerationMetadata 生成元数据
type GenerationMetadata struct {
	Provider    string  `json:"provider,omitempty"`
	Tone        string  `json:"tone,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	GeneratedAt string  `json:"generated_at,omitempty"`
}

// Subtopic 章节下的子主题
type Subtopic struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
}

// Chapter 章节实体
// 对应草稿视图中的一条章节记录：标题、正文、子主题与展开状态。
type Chapter struct {
	ID                 string              `json:"id"`
	SeqNum             int                 `json:"seq_num"`
	Title              string              `json:"title"`
	Summary            string              `json:"summary,omitempty"`
	Content            string              `json:"content,omitempty"`
	Subtopics          []Subtopic          `json:"subtopics"`
	IsExpanded         bool                `json:"is_expanded"`
	WordCount          int                 `json:"word_count"`
	Status             ChapterStatus       `json:"status"`
	GenerationMetadata *GenerationMetadata `json:"generation_metadata,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// NewChapter 创建新章节
func NewChapter(title, summary string, seqNum int) *Chapter {
	now := time.Now()
	return &Chapter{
		ID:         uuid.New().String(),
		SeqNum:     seqNum,
		Title:      title,
		Summary:    summary,
		Subtopics:  []Subtopic{},
		IsExpanded: false,
		Status:     ChapterStatusDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// NewSubtopic 创建新子主题
func NewSubtopic(title, content string) Subtopic {
	return Subtopic{
		ID:      uuid.New().String(),
		Title:   title,
		Content: content,
	}
}

// SetContent 设置章节正文并更新字数
func (c *Chapter) SetContent(content string) {
	c.Content = content
	c.WordCount = len([]rune(content))
	c.UpdatedAt = time.Now()
}

// IsEditable 检查章节是否可编辑
func (c *Chapter) IsEditable() bool {
	return c.Status != ChapterStatusGenerating
}
