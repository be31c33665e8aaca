// Package book 提供书稿编排服务
// 串联目录规划、章节写作与草稿存储，是 HTTP 层唯一的书稿入口。
package book

import (
	"context"
	"strings"
	"time"

	"bookdraft-api/internal/application/planner"
	"bookdraft-api/internal/application/writer"
	"bookdraft-api/internal/config"
	"bookdraft-api/internal/domain/entity"
	"bookdraft-api/internal/domain/repository"
	"bookdraft-api/internal/infrastructure/llm"
	"bookdraft-api/internal/infrastructure/scraper"
	"bookdraft-api/pkg/errors"
	"bookdraft-api/pkg/logger"
)

// Service 书稿编排服务
type Service struct {
	planner  *planner.Service
	writer   *writer.Service
	repo     repository.ChapterRepository
	scraper  *scraper.TOCScraper
	provider llm.Provider
	cfg      *config.GenerationConfig
}

// NewService 创建书稿编排服务
func NewService(
	plannerSvc *planner.Service,
	writerSvc *writer.Service,
	repo repository.ChapterRepository,
	tocScraper *scraper.TOCScraper,
	provider llm.Provider,
	cfg *config.GenerationConfig,
) *Service {
	return &Service{
		planner:  plannerSvc,
		writer:   writerSvc,
		repo:     repo,
		scraper:  tocScraper,
		provider: provider,
		cfg:      cfg,
	}
}

// PlanRequest 规划请求
type PlanRequest struct {
	Topic             string
	NumChapters       int
	Tone              string
	ReferenceURLs     []string
	AdditionalContent string
}

// WriteRequest 写作请求：对既有规划写作全部章节
type WriteRequest struct {
	Title    string
	Topic    string
	Tone     string
	Chapters []entity.ChapterPlan
}

// GenerateRequest 一键生成请求：规划 + 写作
type GenerateRequest = PlanRequest

// Plan 生成书籍规划并导入草稿视图
// 已有草稿章节会被整体替换。
func (s *Service) Plan(ctx context.Context, req PlanRequest) (*entity.BookPlan, error) {
	ctx = logger.WithContext(ctx, logger.TopicKey, req.Topic)

	tocContext := ""
	if len(req.ReferenceURLs) > 0 {
		tocContext = s.scraper.Context(ctx, req.ReferenceURLs)
	}

	plan, err := s.planner.Plan(ctx, planner.Input{
		Topic:             req.Topic,
		NumChapters:       req.NumChapters,
		Tone:              req.Tone,
		TOCContext:        tocContext,
		AdditionalContent: req.AdditionalContent,
	})
	if err != nil {
		return nil, err
	}

	if err := s.importPlan(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Write 对给定规划写作全部章节，并把结果写入草稿视图
func (s *Service) Write(ctx context.Context, req WriteRequest) (*entity.BookContent, error) {
	ctx = logger.WithContext(ctx, logger.TopicKey, req.Topic)

	content, err := s.writer.Write(ctx, req.Title, req.Topic, req.Chapters, req.Tone)
	if err != nil {
		return nil, err
	}

	if err := s.importContent(ctx, req, content); err != nil {
		return nil, err
	}
	return content, nil
}

// Generate 一键生成：规划后立即写作全书
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*entity.BookPlan, *entity.BookContent, error) {
	plan, err := s.Plan(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	content, err := s.Write(ctx, WriteRequest{
		Title:    plan.Title,
		Topic:    req.Topic,
		Tone:     req.Tone,
		Chapters: plan.Chapters,
	})
	if err != nil {
		return plan, nil, err
	}
	return plan, content, nil
}

// GenerateChapter 为单个草稿章节生成正文
// 写作期间章节进入 generating 状态，完成后带生成元数据落回存储。
func (s *Service) GenerateChapter(ctx context.Context, chapterID, tone string) (*entity.Chapter, error) {
	ctx = logger.WithContext(ctx, logger.ChapterIDKey, chapterID)

	chapter, err := s.repo.Get(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	if !chapter.IsEditable() {
		return nil, errors.New(errors.CodeConflict, "chapter generation already in progress")
	}
	if strings.TrimSpace(tone) == "" {
		tone = s.cfg.DefaultTone
	}

	chapter.Status = entity.ChapterStatusGenerating
	if err := s.repo.Update(ctx, chapter); err != nil {
		return nil, err
	}

	chapters, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	index, total := chapter.SeqNum, len(chapters)

	content, err := s.writer.WriteChapter(ctx, "", chapter.Title,
		entity.ChapterPlan{Title: chapter.Title, Summary: chapter.Summary},
		index, total, tone)
	if err != nil {
		// 写作失败时把状态还原为草稿，避免章节卡在 generating
		chapter.Status = entity.ChapterStatusDraft
		if updateErr := s.repo.Update(ctx, chapter); updateErr != nil {
			logger.Error(ctx, "failed to reset chapter status", updateErr)
		}
		return nil, errors.Wrap(err, errors.CodeWriteFailed, "chapter writing failed")
	}

	chapter.SetContent(content)
	chapter.Status = entity.ChapterStatusCompleted
	chapter.GenerationMetadata = &entity.GenerationMetadata{
		Provider:    s.provider.Name(),
		Tone:        tone,
		Temperature: 0.7,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.repo.Update(ctx, chapter); err != nil {
		return nil, err
	}

	logger.Info(ctx, "chapter generated", "title", chapter.Title, "chars", chapter.WordCount)
	return chapter, nil
}

// importPlan 把规划导入草稿视图：每章一条 draft 记录
func (s *Service) importPlan(ctx context.Context, plan *entity.BookPlan) error {
	chapters := make([]*entity.Chapter, 0, len(plan.Chapters))
	for i, ch := range plan.Chapters {
		chapters = append(chapters, entity.NewChapter(ch.Title, ch.Summary, i+1))
	}
	return s.repo.ReplaceAll(ctx, chapters)
}

// importContent 把写作结果落进草稿视图
// 标题匹配的既有章节原位更新，其余整体替换。
func (s *Service) importContent(ctx context.Context, req WriteRequest, content *entity.BookContent) error {
	existing, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	byTitle := make(map[string]*entity.Chapter, len(existing))
	for _, ch := range existing {
		byTitle[strings.ToLower(strings.TrimSpace(ch.Title))] = ch
	}

	chapters := make([]*entity.Chapter, 0, len(content.Chapters))
	for i, ch := range content.Chapters {
		target, ok := byTitle[strings.ToLower(strings.TrimSpace(ch.Title))]
		if !ok {
			summary := ""
			if i < len(req.Chapters) {
				summary = req.Chapters[i].Summary
			}
			target = entity.NewChapter(ch.Title, summary, i+1)
		}
		target.SeqNum = i + 1
		target.SetContent(ch.Content)
		target.Status = entity.ChapterStatusCompleted
		target.GenerationMetadata = &entity.GenerationMetadata{
			Provider:    s.provider.Name(),
			Tone:        req.Tone,
			Temperature: 0.7,
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		}
		chapters = append(chapters, target)
	}
	return s.repo.ReplaceAll(ctx, chapters)
}
