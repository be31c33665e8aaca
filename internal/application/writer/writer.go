// Package writer 提供章节写作服务
package writer

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"bookdraft-api/internal/config"
	"bookdraft-api/internal/domain/entity"
	"bookdraft-api/internal/infrastructure/llm"
	"bookdraft-api/internal/workflow/prompt"
	"bookdraft-api/pkg/errors"
	"bookdraft-api/pkg/logger"
	"bookdraft-api/pkg/metrics"
)

// Service 写作服务：按规划并发生成各章节正文
type Service struct {
	provider llm.Provider
	prompts  *prompt.Registry
	cfg      *config.GenerationConfig
}

// NewService 创建写作服务
func NewService(provider llm.Provider, prompts *prompt.Registry, cfg *config.GenerationConfig) *Service {
	return &Service{
		provider: provider,
		prompts:  prompts,
		cfg:      cfg,
	}
}

// promptVars 写作模板变量
type promptVars struct {
	ChapterIndex int
	ChapterCount int
	BookTitle    string
	Topic        string
	ChapterTitle string
	Summary      string
}

// Write 并发写作全书章节
// 结果按规划顺序排列，与写作完成的先后无关；任一章节失败则整体失败。
func (s *Service) Write(ctx context.Context, bookTitle, topic string, plans []entity.ChapterPlan, tone string) (*entity.BookContent, error) {
	if len(plans) == 0 {
		return nil, errors.New(errors.CodeInvalidParam, "chapter plans are required")
	}
	if strings.TrimSpace(tone) == "" {
		tone = s.cfg.DefaultTone
	}

	chapters := make([]entity.ChapterContent, len(plans))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency())

	for i, plan := range plans {
		g.Go(func() error {
			content, err := s.WriteChapter(gctx, bookTitle, topic, plan, i+1, len(plans), tone)
			if err != nil {
				return fmt.Errorf("chapter %d (%s): %w", i+1, plan.Title, err)
			}
			chapters[i] = entity.ChapterContent{Title: plan.Title, Content: content}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, errors.CodeWriteFailed, "chapter writing failed")
	}

	logger.Info(ctx, "book writing completed",
		"title", bookTitle, "topic", topic, "chapters", len(chapters), "tone", tone)
	return &entity.BookContent{Title: bookTitle, Chapters: chapters}, nil
}

// WriteChapter 写作单个章节，返回原始正文（未经规整）
func (s *Service) WriteChapter(ctx context.Context, bookTitle, topic string, plan entity.ChapterPlan, index, total int, tone string) (string, error) {
	if strings.TrimSpace(tone) == "" {
		tone = s.cfg.DefaultTone
	}

	tpl, err := s.prompts.ChatTemplate(prompt.WriterPrompt(tone))
	if err != nil {
		return "", err
	}
	system, user, err := tpl.Format(promptVars{
		ChapterIndex: index,
		ChapterCount: total,
		BookTitle:    bookTitle,
		Topic:        topic,
		ChapterTitle: plan.Title,
		Summary:      plan.Summary,
	})
	if err != nil {
		return "", err
	}

	start := time.Now()
	content, err := s.provider.CompleteMessages(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: user},
	}, llm.Options{Temperature: 0.7})

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.ChapterWriteTotal.WithLabelValues(tone, status).Inc()
	metrics.ChapterWriteDuration.WithLabelValues(tone).Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("provider completion: %w", err)
	}

	content = strings.TrimSpace(content)
	metrics.ChapterWordCount.WithLabelValues(tone).Observe(float64(utf8.RuneCountInString(content)))

	logger.Debug(ctx, "chapter written",
		"index", index, "title", plan.Title, "chars", utf8.RuneCountInString(content))
	return content, nil
}

// concurrency 写作并发上限，配置缺失时退回串行
func (s *Service) concurrency() int {
	if s.cfg.WriterConcurrency > 0 {
		return s.cfg.WriterConcurrency
	}
	return 1
}
