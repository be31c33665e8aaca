// Package planner 提供书籍目录规划服务
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"bookdraft-api/internal/config"
	"bookdraft-api/internal/domain/entity"
	"bookdraft-api/internal/infrastructure/llm"
	"bookdraft-api/internal/workflow/node"
	"bookdraft-api/internal/workflow/prompt"
	"bookdraft-api/pkg/errors"
	"bookdraft-api/pkg/logger"
	"bookdraft-api/pkg/metrics"
)

// Service 规划服务：调用提供方生成书名与章节规划
type Service struct {
	provider llm.Provider
	prompts  *prompt.Registry
	cfg      *config.GenerationConfig
}

// NewService 创建规划服务
func NewService(provider llm.Provider, prompts *prompt.Registry, cfg *config.GenerationConfig) *Service {
	return &Service{
		provider: provider,
		prompts:  prompts,
		cfg:      cfg,
	}
}

// Input 规划输入
type Input struct {
	// Topic 书籍主题，必填
	Topic string
	// NumChapters 期望章节数，<=0 时取配置默认值
	NumChapters int
	// Tone 语气，空值取配置默认值
	Tone string
	// TOCContext 参考目录上下文，来自抓取或调用方直接提供
	TOCContext string
	// AdditionalContent 调用方附加的补充材料
	AdditionalContent string
}

// planPayload 提供方返回的规划 JSON 结构
// 学术语气可能按 parts 分部返回，解析时统一摊平为章节列表。
type planPayload struct {
	Title    string `json:"title"`
	Chapters []struct {
		Title   string `json:"title"`
		Summary string `json:"summary"`
	} `json:"chapters"`
	Parts []struct {
		PartTitle string `json:"part_title"`
		Chapters  []struct {
			ChapterNumber int    `json:"chapter_number"`
			Title         string `json:"title"`
			Sections      []struct {
				Title string `json:"title"`
			} `json:"sections"`
		} `json:"chapters"`
	} `json:"parts"`
}

// promptVars 规划模板变量
type promptVars struct {
	Topic       string
	NumChapters int
}

// Plan 生成书籍规划
// 提供方输出无法解析时退化为固定骨架规划，调用方总能拿到恰好 NumChapters 章。
func (s *Service) Plan(ctx context.Context, in Input) (*entity.BookPlan, error) {
	if strings.TrimSpace(in.Topic) == "" {
		return nil, errors.New(errors.CodeInvalidParam, "topic is required")
	}

	numChapters := in.NumChapters
	if numChapters <= 0 {
		numChapters = s.cfg.DefaultNumChapters
	}
	tone := in.Tone
	if strings.TrimSpace(tone) == "" {
		tone = s.cfg.DefaultTone
	}

	start := time.Now()
	plan, err := s.plan(ctx, in, numChapters, tone)
	status := "ok"
	if err != nil {
		status = "fallback"
		logger.Warn(ctx, "plan generation failed, using fallback skeleton",
			"topic", in.Topic, "tone", tone, "error", err)
		plan = s.fallbackPlan(in.Topic, numChapters)
	}
	metrics.PlanTotal.WithLabelValues(tone, status).Inc()
	metrics.PlanDuration.WithLabelValues(tone).Observe(time.Since(start).Seconds())

	logger.Info(ctx, "book plan ready",
		"topic", in.Topic, "tone", tone, "chapters", len(plan.Chapters), "status", status)
	return plan, nil
}

func (s *Service) plan(ctx context.Context, in Input, numChapters int, tone string) (*entity.BookPlan, error) {
	tpl, err := s.prompts.ChatTemplate(prompt.PlannerPrompt(tone))
	if err != nil {
		return nil, err
	}
	system, user, err := tpl.Format(promptVars{Topic: in.Topic, NumChapters: numChapters})
	if err != nil {
		return nil, err
	}

	messages := []llm.Message{{Role: llm.RoleSystem, Content: system}}
	if refCtx := s.referenceContext(in); refCtx != "" {
		messages = append(messages, llm.Message{
			Role:    llm.RoleAssistant,
			Content: "REFERENCE TOC EXAMPLES:\n" + refCtx,
		})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: user})

	raw, err := s.provider.CompleteMessages(ctx, messages, llm.Options{Temperature: 0.4})
	if err != nil {
		return nil, fmt.Errorf("provider completion: %w", err)
	}

	plan, err := parsePlan(raw)
	if err != nil {
		return nil, err
	}
	return normalizePlan(plan, in.Topic, numChapters), nil
}

// referenceContext 合并参考上下文并按 rune 数截断
func (s *Service) referenceContext(in Input) string {
	var parts []string
	if t := strings.TrimSpace(in.TOCContext); t != "" {
		parts = append(parts, t)
	}
	if t := strings.TrimSpace(in.AdditionalContent); t != "" {
		parts = append(parts, t)
	}
	merged := strings.Join(parts, "\n\n")
	if merged == "" {
		return ""
	}
	if truncated := node.TruncateByRunes(merged, s.cfg.MaxContextChars); truncated != merged {
		return truncated + "\n...[truncated]"
	}
	return merged
}

// parsePlan 从提供方输出中提取并解析规划 JSON
func parsePlan(raw string) (*planPayload, error) {
	jsonStr := node.ExtractJSONObject(raw)
	var payload planPayload
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return nil, fmt.Errorf("unmarshaling plan JSON: %w", err)
	}
	if len(payload.Chapters) == 0 && len(payload.Parts) == 0 {
		return nil, fmt.Errorf("plan JSON contains no chapters")
	}
	return &payload, nil
}

// normalizePlan 将解析结果整理为恰好 numChapters 章的规划：
// 分部结构摊平、缺失字段补默认值、标题统一带 "Chapter N:" 前缀、不足补齐、超出截断。
func normalizePlan(payload *planPayload, topic string, numChapters int) *entity.BookPlan {
	title := strings.TrimSpace(payload.Title)
	if title == "" {
		title = fmt.Sprintf("The Complete Guide to %s", topic)
	}

	var chapters []entity.ChapterPlan
	for _, ch := range payload.Chapters {
		chapters = append(chapters, entity.ChapterPlan{
			Title:   strings.TrimSpace(ch.Title),
			Summary: strings.TrimSpace(ch.Summary),
		})
	}

	// 学术语气的分部结构：小节标题拼进摘要后摊平
	if len(chapters) == 0 {
		for _, part := range payload.Parts {
			for _, ch := range part.Chapters {
				var sections []string
				for _, sec := range ch.Sections {
					if t := strings.TrimSpace(sec.Title); t != "" {
						sections = append(sections, t)
					}
				}
				summary := ""
				if len(sections) > 0 {
					summary = "Includes sections: " + strings.Join(sections, "; ")
				}
				chapters = append(chapters, entity.ChapterPlan{
					Title:   strings.TrimSpace(ch.Title),
					Summary: summary,
				})
			}
		}
	}

	for i := range chapters {
		if chapters[i].Title == "" {
			chapters[i].Title = "Untitled Chapter"
		}
		if !chapterPrefixed(chapters[i].Title) {
			chapters[i].Title = fmt.Sprintf("Chapter %d: %s", i+1, chapters[i].Title)
		}
	}

	for len(chapters) < numChapters {
		idx := len(chapters) + 1
		chapters = append(chapters, entity.ChapterPlan{
			Title:   fmt.Sprintf("Chapter %d: Advanced Topics in %s", idx, topic),
			Summary: fmt.Sprintf("Further exploration of advanced aspects of %s.", topic),
		})
	}
	if len(chapters) > numChapters {
		chapters = chapters[:numChapters]
	}

	return &entity.BookPlan{Title: title, Chapters: chapters}
}

// chapterPrefixed 判断标题是否已带 "Chapter N:" 前缀
func chapterPrefixed(title string) bool {
	lower := strings.ToLower(title)
	if !strings.HasPrefix(lower, "chapter ") {
		return false
	}
	rest := lower[len("chapter "):]
	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	if i == 0 {
		return false
	}
	rest = strings.TrimLeft(rest[i:], " ")
	return strings.HasPrefix(rest, ":")
}

// fallbackPlan 提供方不可用或输出不可解析时的固定骨架规划
func (s *Service) fallbackPlan(topic string, numChapters int) *entity.BookPlan {
	skeleton := []entity.ChapterPlan{
		{Title: "Introduction to %s", Summary: "An overview of %s and why it matters."},
		{Title: "The Fundamentals of %s", Summary: "Core concepts and terminology of %s."},
		{Title: "A Brief History of %s", Summary: "How %s evolved into its present form."},
		{Title: "Key Techniques in %s", Summary: "The essential methods practitioners of %s rely on."},
		{Title: "%s in Practice", Summary: "Real-world applications and case studies of %s."},
		{Title: "Common Challenges in %s", Summary: "Pitfalls in %s and how to avoid them."},
		{Title: "The Future of %s", Summary: "Emerging trends and open questions in %s."},
		{Title: "Mastering %s", Summary: "A roadmap for going from competent to expert in %s."},
	}

	var chapters []entity.ChapterPlan
	for i := 0; len(chapters) < numChapters; i++ {
		tmpl := skeleton[i%len(skeleton)]
		idx := len(chapters) + 1
		chapters = append(chapters, entity.ChapterPlan{
			Title:   fmt.Sprintf("Chapter %d: %s", idx, strings.ReplaceAll(tmpl.Title, "%s", topic)),
			Summary: strings.ReplaceAll(tmpl.Summary, "%s", topic),
		})
	}

	return &entity.BookPlan{
		Title:    fmt.Sprintf("The Complete Guide to %s", topic),
		Chapters: chapters,
	}
}
