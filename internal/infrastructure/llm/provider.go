// Package llm 提供文本生成提供方抽象
package llm

import (
	"context"
	"fmt"
	"strings"

	"bookdraft-api/internal/config"
)

// 消息角色
const (
	RoleSystem    = "system"
	RoleAssistant = "assistant"
	RoleUser      = "user"
)

// Message 对话消息
type Message struct {
	Role    string
	Content string
}

// Options 单次调用选项
type Options struct {
	Temperature float64
}

// Provider 文本生成提供方接口
// 本服务只内置 mock 实现；接口保留真实提供方的形状，方便后续接入。
type Provider interface {
	// Name 返回提供方名称
	Name() string

	// Available 返回提供方是否可用
	Available() bool

	// CompleteMessages 以消息列表发起一次补全
	CompleteMessages(ctx context.Context, messages []Message, opts Options) (string, error)
}

// NewProvider 按配置创建提供方
func NewProvider(cfg *config.LLMConfig) (Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("llm config is nil")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "mock":
		return NewMockProvider(cfg.Mock.Delay), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}

// LastUserMessage 返回最后一条 user 消息的内容
func LastUserMessage(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content
		}
	}
	return ""
}
