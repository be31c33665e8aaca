// Package repository 定义领域仓储接口
package repository

import (
	"context"

	"bookdraft-api/internal/domain/entity"
)

// ChapterRepository 章节仓储接口
// 草稿视图的后备存储：一个有序的章节扁平列表。
type ChapterRepository interface {
	// List 按 SeqNum 顺序返回全部章节
	List(ctx context.Context) ([]*entity.Chapter, error)

	// Get 按 ID 获取章节
	Get(ctx context.Context, id string) (*entity.Chapter, error)

	// Create 追加章节到列表尾部
	Create(ctx context.Context, chapter *entity.Chapter) error

	// Update 更新章节
	Update(ctx context.Context, chapter *entity.Chapter) error

	// Delete 删除章节
	Delete(ctx context.Context, id string) error

	// Reorder 将章节移动到目标位置（0 起始），其余章节顺延
	Reorder(ctx context.Context, id string, position int) error

	// Merge 将 source 章节并入 target：正文拼接，source 降级为 target 的子主题
	Merge(ctx context.Context, targetID, sourceID string) (*entity.Chapter, error)

	// ReplaceAll 用新的章节列表整体替换现有列表（导入规划时使用）
	ReplaceAll(ctx context.Context, chapters []*entity.Chapter) error
}
