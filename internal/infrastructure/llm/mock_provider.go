// Package llm 提供文本生成提供方抽象
package llm

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"bookdraft-api/pkg/logger"
	"bookdraft-api/pkg/metrics"
)

// MockProvider 占位文本提供方
// 固定延迟 + 确定性占位输出，不访问任何外部服务。
// 规划类提示词返回带代码围栏的 JSON，写作类提示词返回带 <h2> 小节的占位正文，
// 两者分别走通下游的 JSON 提取与内容规整路径。
type MockProvider struct {
	delay time.Duration
}

var _ Provider = (*MockProvider)(nil)

// NewMockProvider 创建 mock 提供方
func NewMockProvider(delay time.Duration) *MockProvider {
	return &MockProvider{delay: delay}
}

// Name 返回提供方名称
func (p *MockProvider) Name() string {
	return "mock"
}

// Available mock 提供方总是可用
func (p *MockProvider) Available() bool {
	return true
}

var (
	topicRe       = regexp.MustCompile(`(?m)^Topic:\s*(.+)\s*$`)
	numChaptersRe = regexp.MustCompile(`exactly (\d+) chapters`)
	chapterRe     = regexp.MustCompile(`(?m)^Chapter Title:\s*(.+)\s*$`)
)

// CompleteMessages 固定延迟后返回占位输出
func (p *MockProvider) CompleteMessages(ctx context.Context, messages []Message, _ Options) (string, error) {
	start := time.Now()
	if p.delay > 0 {
		select {
		case <-ctx.Done():
			metrics.ProviderCallTotal.WithLabelValues(p.Name(), "canceled").Inc()
			return "", ctx.Err()
		case <-time.After(p.delay):
		}
	}

	prompt := LastUserMessage(messages)
	logger.Debug(ctx, "mock provider completing", "prompt_len", len(prompt))

	var out string
	if strings.Contains(prompt, "Table of Contents") || strings.Contains(prompt, `"chapters"`) {
		out = p.mockPlan(prompt)
	} else {
		out = p.mockChapter(prompt)
	}

	metrics.ProviderCallTotal.WithLabelValues(p.Name(), "ok").Inc()
	metrics.ProviderCallDuration.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())
	return out, nil
}

// 占位章节骨架：标题片段 + 摘要片段，按序循环使用
var planSkeleton = []struct {
	title   string
	summary string
}{
	{"Foundations of %s", "Introductory concepts, key terminology, and the historical context readers need before going deeper."},
	{"Core Frameworks and Models", "A guided tour of the central models and architectures, with worked examples along the way."},
	{"Implementation and Best Practices", "Practical guidance for applying the material, from first prototype to production habits."},
	{"Case Studies from the Field", "Real-world applications across different sectors and what their outcomes teach us."},
	{"Scaling and Optimization", "Techniques for improving performance and reliability once the basics are in place."},
	{"Ethics, Governance and Compliance", "Responsible approaches, common pitfalls, and the governance structures that prevent them."},
	{"Future Directions", "Emerging trends, open questions, and predictions for where the field is heading."},
	{"A Practical Roadmap", "Actionable steps for readers to begin applying everything covered in this book."},
}

// mockPlan 生成占位书籍规划 JSON，围栏包裹以模拟真实模型输出
func (p *MockProvider) mockPlan(prompt string) string {
	topic := "the subject"
	if m := topicRe.FindStringSubmatch(prompt); m != nil {
		topic = strings.TrimSpace(m[1])
	}
	n := 8
	if m := numChaptersRe.FindStringSubmatch(prompt); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil && v > 0 {
			n = v
		}
	}

	var b strings.Builder
	b.WriteString("Here is the requested outline.\n\n```json\n{\n")
	fmt.Fprintf(&b, "  %q: %q,\n", "title", "The Complete Guide to "+topic)
	b.WriteString("  \"chapters\": [\n")
	for i := 0; i < n; i++ {
		sk := planSkeleton[i%len(planSkeleton)]
		title := sk.title
		if strings.Contains(title, "%s") {
			title = fmt.Sprintf(title, topic)
		}
		fmt.Fprintf(&b, "    {%q: %q, %q: %q}", "title", fmt.Sprintf("Chapter %d: %s", i+1, title), "summary", sk.summary)
		if i < n-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("  ]\n}\n```\n")
	return b.String()
}

// mockChapter 生成占位章节正文，形态与真实写作输出一致（<h2> 小节 + 纯文本段落）
func (p *MockProvider) mockChapter(prompt string) string {
	title := "This Chapter"
	if m := chapterRe.FindStringSubmatch(prompt); m != nil {
		title = strings.TrimSpace(m[1])
	}

	var b strings.Builder
	b.WriteString(title + "\n\n")
	b.WriteString("<h2>Setting the Stage</h2>\n")
	b.WriteString("This placeholder chapter stands in for generated prose. It keeps the same shape a writing model would produce: section headings, paragraphs, and the occasional list. Downstream formatting and preview code can be exercised against it without calling a real provider.\n\n")
	b.WriteString("<h2>Key Ideas</h2>\n")
	b.WriteString("The ideas below are placeholders. Each one is written as a complete sentence so paragraph splitting has something to work with. Short follow-up sentences appear too. They keep the rhythm of real generated text.\n\n")
	b.WriteString("- A first placeholder point for this section\n")
	b.WriteString("- A second placeholder point with slightly more words in it\n")
	b.WriteString("- A closing placeholder point\n\n")
	b.WriteString("<h2>Looking Ahead</h2>\n")
	b.WriteString("The closing section ties the placeholder material together. It hints at what the next chapter would cover. Real generated chapters end the same way.\n")
	return b.String()
}
