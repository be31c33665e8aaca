// Package memory 提供内存章节存储
// 本服务不落盘：章节列表只存在于进程内存中（参见设计说明，持久化为非目标）。
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"bookdraft-api/internal/domain/entity"
	"bookdraft-api/internal/domain/repository"
	"bookdraft-api/pkg/errors"
)

// ChapterStore 内存章节存储
// 扁平有序列表 + RWMutex，满足 ChapterRepository 的全部语义。
type ChapterStore struct {
	mu       sync.RWMutex
	chapters []*entity.Chapter
}

var _ repository.ChapterRepository = (*ChapterStore)(nil)

// NewChapterStore 创建内存章节存储
func NewChapterStore() *ChapterStore {
	return &ChapterStore{
		chapters: make([]*entity.Chapter, 0),
	}
}

// List 按 SeqNum 顺序返回全部章节
func (s *ChapterStore) List(_ context.Context) ([]*entity.Chapter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entity.Chapter, 0, len(s.chapters))
	for _, c := range s.chapters {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

// Get 按 ID 获取章节
func (s *ChapterStore) Get(_ context.Context, id string) (*entity.Chapter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, errors.ErrChapterNotFound
	}
	cp := *s.chapters[idx]
	return &cp, nil
}

// Create 追加章节到列表尾部
func (s *ChapterStore) Create(_ context.Context, chapter *entity.Chapter) error {
	if chapter == nil {
		return errors.ErrInvalidParam
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *chapter
	cp.SeqNum = len(s.chapters) + 1
	if cp.Subtopics == nil {
		cp.Subtopics = []entity.Subtopic{}
	}
	s.chapters = append(s.chapters, &cp)
	chapter.SeqNum = cp.SeqNum
	return nil
}

// Update 更新章节
func (s *ChapterStore) Update(_ context.Context, chapter *entity.Chapter) error {
	if chapter == nil {
		return errors.ErrInvalidParam
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(chapter.ID)
	if idx < 0 {
		return errors.ErrChapterNotFound
	}
	cp := *chapter
	cp.SeqNum = s.chapters[idx].SeqNum
	cp.UpdatedAt = time.Now()
	s.chapters[idx] = &cp
	return nil
}

// Delete 删除章节
func (s *ChapterStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return errors.ErrChapterNotFound
	}
	s.chapters = append(s.chapters[:idx], s.chapters[idx+1:]...)
	s.renumber()
	return nil
}

// Reorder 将章节移动到目标位置（0 起始），其余章节顺延
func (s *ChapterStore) Reorder(_ context.Context, id string, position int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return errors.ErrChapterNotFound
	}
	if position < 0 {
		position = 0
	}
	if position >= len(s.chapters) {
		position = len(s.chapters) - 1
	}

	moved := s.chapters[idx]
	s.chapters = append(s.chapters[:idx], s.chapters[idx+1:]...)
	s.chapters = append(s.chapters[:position], append([]*entity.Chapter{moved}, s.chapters[position:]...)...)
	s.renumber()
	return nil
}

// Merge 将 source 章节并入 target：正文拼接，source 降级为 target 的子主题
func (s *ChapterStore) Merge(_ context.Context, targetID, sourceID string) (*entity.Chapter, error) {
	if targetID == sourceID {
		return nil, errors.New(errors.CodeInvalidParam, "cannot merge a chapter into itself")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dstIdx := s.indexOf(targetID)
	srcIdx := s.indexOf(sourceID)
	if dstIdx < 0 || srcIdx < 0 {
		return nil, errors.ErrChapterNotFound
	}

	dst := s.chapters[dstIdx]
	src := s.chapters[srcIdx]

	if strings.TrimSpace(src.Content) != "" {
		if strings.TrimSpace(dst.Content) != "" {
			dst.Content += "\n\n" + src.Content
		} else {
			dst.Content = src.Content
		}
		dst.WordCount = len([]rune(dst.Content))
	}
	dst.Subtopics = append(dst.Subtopics, entity.Subtopic{
		ID:      src.ID,
		Title:   src.Title,
		Content: src.Content,
	})
	dst.Subtopics = append(dst.Subtopics, src.Subtopics...)
	dst.UpdatedAt = time.Now()

	s.chapters = append(s.chapters[:srcIdx], s.chapters[srcIdx+1:]...)
	s.renumber()

	cp := *dst
	return &cp, nil
}

// ReplaceAll 用新的章节列表整体替换现有列表
func (s *ChapterStore) ReplaceAll(_ context.Context, chapters []*entity.Chapter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chapters = make([]*entity.Chapter, 0, len(chapters))
	for _, c := range chapters {
		if c == nil {
			continue
		}
		cp := *c
		if cp.Subtopics == nil {
			cp.Subtopics = []entity.Subtopic{}
		}
		s.chapters = append(s.chapters, &cp)
	}
	s.renumber()
	return nil
}

// indexOf 返回章节下标，未找到返回 -1。调用方必须持有锁。
func (s *ChapterStore) indexOf(id string) int {
	for i, c := range s.chapters {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// renumber 重新分配 SeqNum。调用方必须持有写锁。
func (s *ChapterStore) renumber() {
	for i, c := range s.chapters {
		c.SeqNum = i + 1
	}
}
