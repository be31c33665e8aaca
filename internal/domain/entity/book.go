// Package entity 定义领域实体
package entity

// ChapterPlan 章节规划：标题 + 摘要
type ChapterPlan struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// BookPlan 书籍规划：书名 + 章节规划列表
type BookPlan struct {
	Title    string        `json:"title"`
	Chapters []ChapterPlan `json:"chapters"`
}

// ChapterContent 已写作的章节：标题 + 正文
type ChapterContent struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// BookContent 已写作的书籍：书名 + 章节正文列表
type BookContent struct {
	Title    string           `json:"title"`
	Chapters []ChapterContent `json:"chapters"`
}
