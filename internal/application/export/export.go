// Package export 提供书稿导出服务
package export

import (
	"context"
	"encoding/json"
	"fmt"
	stdhtml "html"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"bookdraft-api/internal/application/preview"
	"bookdraft-api/internal/domain/entity"
	"bookdraft-api/pkg/errors"
	"bookdraft-api/pkg/logger"
	"bookdraft-api/pkg/metrics"
)

// 支持的导出格式
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Service 导出服务：把当前书稿状态渲染为可下载的单文件
type Service struct{}

// NewService 创建导出服务
func NewService() *Service {
	return &Service{}
}

// Result 导出结果
type Result struct {
	Data        []byte
	ContentType string
	Extension   string
}

// jsonChapter JSON 导出的章节结构
type jsonChapter struct {
	ID        string            `json:"id"`
	SeqNum    int               `json:"seq_num"`
	Title     string            `json:"title"`
	Summary   string            `json:"summary,omitempty"`
	Content   string            `json:"content,omitempty"`
	Status    string            `json:"status"`
	WordCount int               `json:"word_count"`
	Subtopics []entity.Subtopic `json:"subtopics,omitempty"`
}

// jsonBook JSON 导出的书稿结构
type jsonBook struct {
	Title      string        `json:"title"`
	ExportedAt time.Time     `json:"exported_at"`
	Chapters   []jsonChapter `json:"chapters"`
}

// Render 把书稿渲染为指定格式
// html 与 markdown 都基于规整后的章节内容；json 保留原始内容与章节元数据。
func (s *Service) Render(ctx context.Context, title string, chapters []*entity.Chapter, format string) (*Result, error) {
	format = strings.ToLower(strings.TrimSpace(format))

	var (
		result *Result
		err    error
	)
	switch format {
	case FormatHTML, "":
		result, err = s.renderHTML(title, chapters)
	case FormatMarkdown, "md":
		result, err = s.renderMarkdown(title, chapters)
	case FormatJSON:
		result, err = s.renderJSON(title, chapters)
	default:
		err = errors.New(errors.CodeInvalidFormat, "unsupported export format").WithDetail(format)
	}

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.ExportTotal.WithLabelValues(format, status).Inc()
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "book exported",
		"title", title, "format", format, "chapters", len(chapters), "bytes", len(result.Data))
	return result, nil
}

// renderHTML 拼装完整 HTML 文档，章节正文经规整后嵌入
func (s *Service) renderHTML(title string, chapters []*entity.Chapter) (*Result, error) {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString("<title>" + stdhtml.EscapeString(title) + "</title>\n</head>\n<body>\n")
	b.WriteString("<h1>" + stdhtml.EscapeString(title) + "</h1>\n")

	for _, ch := range chapters {
		b.WriteString("<section>\n")
		b.WriteString("<h2>" + stdhtml.EscapeString(ch.Title) + "</h2>\n")
		if content := preview.Normalize(ch.Content, ch.Title); content != "" {
			b.WriteString(content)
			b.WriteString("\n")
		}
		b.WriteString("</section>\n")
	}
	b.WriteString("</body>\n</html>\n")

	return &Result{
		Data:        []byte(b.String()),
		ContentType: "text/html; charset=utf-8",
		Extension:   "html",
	}, nil
}

// renderMarkdown 先按 HTML 渲染再整体转换为 Markdown
func (s *Service) renderMarkdown(title string, chapters []*entity.Chapter) (*Result, error) {
	htmlResult, err := s.renderHTML(title, chapters)
	if err != nil {
		return nil, err
	}
	markdown, err := htmltomarkdown.ConvertString(string(htmlResult.Data))
	if err != nil {
		return nil, errors.Wrap(fmt.Errorf("converting HTML to markdown: %w", err), errors.CodeExportFailed, "book export failed")
	}
	return &Result{
		Data:        []byte(markdown),
		ContentType: "text/markdown; charset=utf-8",
		Extension:   "md",
	}, nil
}

// renderJSON 导出结构化书稿，内容保持原样不做规整
func (s *Service) renderJSON(title string, chapters []*entity.Chapter) (*Result, error) {
	book := jsonBook{
		Title:      title,
		ExportedAt: time.Now().UTC(),
		Chapters:   make([]jsonChapter, 0, len(chapters)),
	}
	for _, ch := range chapters {
		book.Chapters = append(book.Chapters, jsonChapter{
			ID:        ch.ID,
			SeqNum:    ch.SeqNum,
			Title:     ch.Title,
			Summary:   ch.Summary,
			Content:   ch.Content,
			Status:    string(ch.Status),
			WordCount: ch.WordCount,
			Subtopics: ch.Subtopics,
		})
	}

	data, err := json.MarshalIndent(book, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeExportFailed, "book export failed")
	}
	return &Result{
		Data:        data,
		ContentType: "application/json; charset=utf-8",
		Extension:   "json",
	}, nil
}
