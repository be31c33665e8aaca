// Package prompt 提供内嵌的提示词模板注册表
package prompt

import (
	"embed"
	"fmt"
	"strings"
	"sync"
	"text/template"
)

//go:embed templates/*.txt
var templatesFS embed.FS

// PromptID 提示词模板标识
type PromptID string

const (
	PromptPlannerCasualV1       PromptID = "planner_casual_v1"
	PromptPlannerFormalV1       PromptID = "planner_formal_v1"
	PromptPlannerAcademicV1     PromptID = "planner_academic_v1"
	PromptPlannerStorytellingV1 PromptID = "planner_storytelling_v1"

	PromptWriterCasualV1       PromptID = "writer_casual_v1"
	PromptWriterFormalV1       PromptID = "writer_formal_v1"
	PromptWriterAcademicV1     PromptID = "writer_academic_v1"
	PromptWriterStorytellingV1 PromptID = "writer_storytelling_v1"
)

// PlannerPrompt 按语气选择规划提示词，未知语气回退 casual
func PlannerPrompt(tone string) PromptID {
	switch strings.ToLower(strings.TrimSpace(tone)) {
	case "formal":
		return PromptPlannerFormalV1
	case "academic":
		return PromptPlannerAcademicV1
	case "storytelling":
		return PromptPlannerStorytellingV1
	default:
		return PromptPlannerCasualV1
	}
}

// WriterPrompt 按语气选择写作提示词，未知语气回退 casual
func WriterPrompt(tone string) PromptID {
	switch strings.ToLower(strings.TrimSpace(tone)) {
	case "formal":
		return PromptWriterFormalV1
	case "academic":
		return PromptWriterAcademicV1
	case "storytelling":
		return PromptWriterStorytellingV1
	default:
		return PromptWriterCasualV1
	}
}

// ChatTemplate system + user 两段式模板
type ChatTemplate struct {
	system *template.Template
	user   *template.Template
}

// Format 渲染模板，返回 system 与 user 两段文本
func (t *ChatTemplate) Format(vars any) (string, string, error) {
	if t == nil {
		return "", "", fmt.Errorf("chat template is nil")
	}
	var sysBuf, userBuf strings.Builder
	if err := t.system.Execute(&sysBuf, vars); err != nil {
		return "", "", fmt.Errorf("rendering system prompt: %w", err)
	}
	if err := t.user.Execute(&userBuf, vars); err != nil {
		return "", "", fmt.Errorf("rendering user prompt: %w", err)
	}
	return sysBuf.String(), userBuf.String(), nil
}

// Registry 提示词模板注册表，首次使用时从内嵌文件加载并缓存
type Registry struct {
	mu    sync.RWMutex
	cache map[PromptID]*ChatTemplate
}

// NewRegistry 创建注册表
func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[PromptID]*ChatTemplate),
	}
}

// ChatTemplate 获取指定 ID 的模板
func (r *Registry) ChatTemplate(id PromptID) (*ChatTemplate, error) {
	if r == nil {
		return nil, fmt.Errorf("prompt registry is nil")
	}

	r.mu.RLock()
	if tpl, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return tpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.cache[id]; ok {
		return tpl, nil
	}

	systemPath, userPath, err := resolvePromptFiles(id)
	if err != nil {
		return nil, err
	}
	system, err := readEmbeddedTemplate(systemPath)
	if err != nil {
		return nil, err
	}
	user, err := readEmbeddedTemplate(userPath)
	if err != nil {
		return nil, err
	}

	tpl := &ChatTemplate{system: system, user: user}
	r.cache[id] = tpl
	return tpl, nil
}

// resolvePromptFiles 将 PromptID 解析为 system/user 模板文件路径
// 写作类模板共用同一个 user 模板，语气差异全部落在 system 模板里。
func resolvePromptFiles(id PromptID) (systemFile string, userFile string, err error) {
	switch id {
	case PromptPlannerCasualV1, PromptPlannerFormalV1, PromptPlannerAcademicV1, PromptPlannerStorytellingV1:
		base := "templates/" + string(id)
		return base + "_system.txt", base + "_user.txt", nil
	case PromptWriterCasualV1, PromptWriterFormalV1, PromptWriterAcademicV1, PromptWriterStorytellingV1:
		return "templates/" + string(id) + "_system.txt", "templates/writer_v1_user.txt", nil
	default:
		return "", "", fmt.Errorf("unknown prompt id: %s", id)
	}
}

// readEmbeddedTemplate 读取并解析内嵌模板文件
func readEmbeddedTemplate(path string) (*template.Template, error) {
	content, err := templatesFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading prompt template %s: %w", path, err)
	}
	tpl, err := template.New(path).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parsing prompt template %s: %w", path, err)
	}
	return tpl, nil
}
