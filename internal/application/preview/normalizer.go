// Package preview 提供章节内容规整功能
// 将模型输出的自由文本 / 半成品 HTML 转换为结构一致、可直接渲染的 HTML。
// 转换是纯函数：无 I/O、无共享状态，相同输入必得相同输出。
package preview

import (
	stdhtml "html"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"bookdraft-api/pkg/metrics"
)

// 固定的内联展示样式
const (
	styleH2 = "margin:28px 0 14px;font-size:1.4em;font-weight:700;border-bottom:2px solid #e2e8f0;padding-bottom:6px"
	styleH3 = "margin:20px 0 10px;font-size:1.15em;font-weight:600"
	styleP  = "margin:0 0 14px;line-height:1.75"
	styleUL = "margin:0 0 14px 22px;padding-left:6px;list-style-type:disc"
)

var (
	// 含 h1-h6 开标签即走 HTML 结构化路径
	htmlHeadingRe = regexp.MustCompile(`(?i)<h[1-6][\s/>]`)

	boldMarkRe        = regexp.MustCompile(`\*\*(.*?)\*\*`)
	numberedHeadingRe = regexp.MustCompile(`^\d+(\.\d+)+\s+`)
	bulletRe          = regexp.MustCompile(`^[-*]\s+`)
	chapterPrefixRe   = regexp.MustCompile(`(?i)^chapter\s+\d+\s*:\s*`)
	whitespaceRe      = regexp.MustCompile(`\s+`)

	// 句子：非终结符序列 + 可选的 . ! ? 结尾
	sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]*`)

	// 回退路径：按块级标签断行、识别标签行
	blockOpenTagRe   = regexp.MustCompile(`(?i)<(?:p|h[1-6]|ul|ol|li|div|section|article|table)\b[^>]*>`)
	blockCloseTagRe  = regexp.MustCompile(`(?i)</(?:p|h[1-6]|ul|ol|li|div|section|article|table)>`)
	tagLineRe        = regexp.MustCompile(`(?i)^</?(?:p|h[1-6]|ul|ol|li|div|section|article|table)\b`)
	headingTagLineRe = regexp.MustCompile(`(?i)^</?h[1-6]\b`)
	leadingOpenTagRe = regexp.MustCompile(`(?is)^\s*<(h[1-6]|p|div)\b[^>]*>`)
	h1ElementRe      = regexp.MustCompile(`(?is)<h1\b[^>]*>(.*?)</h1>`)
	anyTagRe         = regexp.MustCompile(`<[^>]*>`)
	subheadingMaxLen = 80
)

// 块级容器：游离内容包装阶段会递归进入的标签
var blockContainers = map[string]bool{
	"body": true, "div": true, "section": true, "article": true,
	"p": true, "li": true, "ul": true, "ol": true, "table": true,
	"thead": true, "tbody": true, "tfoot": true, "tr": true, "td": true, "th": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// Normalize 将原始章节内容规整为带固定样式的 HTML
// raw 可能是纯文本、类 Markdown 文本或半成品 HTML；title 仅用于去除开头重复的章节标题。
// 对任意字符串输入都不会报错：解析失败时退化为逐行正则处理。
func Normalize(raw, title string) string {
	if raw == "" {
		return ""
	}

	start := time.Now()
	var out, mode string
	if htmlHeadingRe.MatchString(raw) {
		out = normalizeHTML(raw, title)
		mode = "html"
	} else {
		out = normalizeText(raw, title)
		mode = "text"
	}
	metrics.NormalizeDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	return out
}

// ---------------------------------------------------------------------------
// HTML 结构化路径
// ---------------------------------------------------------------------------

// normalizeHTML 解析 HTML 片段，去重标题、注入样式、包装游离内容后重新序列化
func normalizeHTML(raw, title string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return fallbackNormalize(raw, title)
	}
	body := doc.Find("body")
	if body.Length() == 0 {
		return fallbackNormalize(raw, title)
	}

	// 去除开头重复的章节标题；另外移除任何正文匹配候选集的 h1
	candidates := titleCandidates(title)
	if len(candidates) > 0 {
		for {
			first := body.Children().First()
			if first.Length() == 0 || !matchesTitle(first.Text(), candidates) {
				break
			}
			first.Remove()
		}
		body.Find("h1").Each(func(_ int, h *goquery.Selection) {
			if matchesTitle(h.Text(), candidates) {
				h.Remove()
			}
		})
	}

	// 样式注入
	body.Find("h2").SetAttr("style", styleH2)
	body.Find("h3").SetAttr("style", styleH3)
	body.Find("p").SetAttr("style", styleP)
	body.Find("ul").SetAttr("style", styleUL)

	// <br> 替换为换行文本节点，除非被重新包装，否则不再渲染为可见换行
	body.Find("br").Each(func(_ int, br *goquery.Selection) {
		for _, n := range br.Nodes {
			parent := n.Parent
			if parent == nil {
				continue
			}
			parent.InsertBefore(&html.Node{Type: html.TextNode, Data: "\n"}, n)
			parent.RemoveChild(n)
		}
	})

	// 游离内容包装
	for _, n := range body.Nodes {
		wrapLooseContent(n)
	}

	out, err := body.Html()
	if err != nil {
		return fallbackNormalize(raw, title)
	}
	return strings.TrimSpace(out)
}

// wrapLooseContent 深度优先遍历块级容器：
// 有内容的文本节点按句子两两分组包进段落；不认识的元素节点整体移入新段落。
func wrapLooseContent(n *html.Node) {
	if n.Type != html.ElementNode || !blockContainers[n.Data] {
		return
	}

	var children []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, c)
	}

	for _, c := range children {
		switch {
		case c.Type == html.TextNode:
			if strings.TrimSpace(c.Data) == "" {
				continue
			}
			for _, para := range paragraphGroups(c.Data) {
				p := newParagraphNode()
				p.AppendChild(&html.Node{Type: html.TextNode, Data: para})
				n.InsertBefore(p, c)
			}
			n.RemoveChild(c)

		case c.Type == html.ElementNode && !blockContainers[c.Data]:
			p := newParagraphNode()
			n.InsertBefore(p, c)
			n.RemoveChild(c)
			p.AppendChild(c)

		case c.Type == html.ElementNode:
			wrapLooseContent(c)
		}
	}
}

// newParagraphNode 创建带段落样式的 <p> 节点
func newParagraphNode() *html.Node {
	return &html.Node{
		Type: html.ElementNode,
		Data: "p",
		Attr: []html.Attribute{{Key: "style", Val: styleP}},
	}
}

// ---------------------------------------------------------------------------
// 回退路径：结构化解析不可用时的逐行正则处理
// ---------------------------------------------------------------------------

// fallbackNormalize 逐行扫描实现与 DOM 路径相同的目标
func fallbackNormalize(raw, title string) string {
	// 在已有块级标签前后补换行，简化按行扫描
	s := blockOpenTagRe.ReplaceAllString(raw, "\n$0")
	s = blockCloseTagRe.ReplaceAllString(s, "$0\n")

	var b strings.Builder
	inList := false
	closeList := func() {
		if inList {
			b.WriteString("</ul>")
			inList = false
		}
	}

	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			closeList()
			continue
		}
		if tagLineRe.MatchString(line) {
			// 已有标签原样通过；标题标签行先闭合打开的列表
			if headingTagLineRe.MatchString(line) {
				closeList()
			}
			b.WriteString(line)
			continue
		}
		if m := bulletRe.FindStringIndex(line); m != nil {
			if !inList {
				b.WriteString(`<ul style="` + styleUL + `">`)
				inList = true
			}
			b.WriteString("<li>" + stdhtml.EscapeString(line[m[1]:]) + "</li>")
			continue
		}
		closeList()
		for _, para := range paragraphGroups(line) {
			b.WriteString(`<p style="` + styleP + `">` + stdhtml.EscapeString(para) + "</p>")
		}
	}
	closeList()

	return stripDuplicateTitle(b.String(), title)
}

// ---------------------------------------------------------------------------
// 纯文本路径
// ---------------------------------------------------------------------------

// normalizeText 逐行处理纯文本：
// 首个非空行固定作为章节主标题，之后依次尝试编号小节、列表项、启发式小标题，否则按段落输出。
func normalizeText(raw, title string) string {
	text := boldMarkRe.ReplaceAllString(raw, "$1")

	var b strings.Builder
	headingDone := false
	inList := false
	closeList := func() {
		if inList {
			b.WriteString("</ul>")
			inList = false
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			closeList()

		case !headingDone:
			// 全文第一个非空行一律作为主标题，即便它是列表项或编号小节
			b.WriteString(`<h2 style="` + styleH2 + `">` + stdhtml.EscapeString(line) + "</h2>")
			headingDone = true

		case numberedHeadingRe.MatchString(line):
			closeList()
			b.WriteString(`<h3 style="` + styleH3 + `">` + stdhtml.EscapeString(line) + "</h3>")

		case bulletRe.MatchString(line):
			if !inList {
				b.WriteString(`<ul style="` + styleUL + `">`)
				inList = true
			}
			rest := bulletRe.ReplaceAllString(line, "")
			b.WriteString("<li>" + stdhtml.EscapeString(rest) + "</li>")

		case looksLikeSubheading(line):
			closeList()
			b.WriteString(`<h3 style="` + styleH3 + `">` + stdhtml.EscapeString(line) + "</h3>")

		default:
			closeList()
			for _, para := range paragraphGroups(line) {
				b.WriteString(`<p style="` + styleP + `">` + stdhtml.EscapeString(para) + "</p>")
			}
		}
	}
	closeList()

	return stripDuplicateTitle(b.String(), title)
}

// looksLikeSubheading 小标题启发式：短、首字母大写、无结尾标点、无连续空格。
// 会把真正的短句误判为小标题，这是沿用的已知取舍。
func looksLikeSubheading(line string) bool {
	runes := []rune(line)
	if len(runes) == 0 || len(runes) >= subheadingMaxLen {
		return false
	}
	last := runes[len(runes)-1]
	if last == '.' || last == '!' || last == '?' {
		return false
	}
	if !unicode.IsUpper(runes[0]) {
		return false
	}
	return !strings.Contains(line, "  ")
}

// ---------------------------------------------------------------------------
// 公共辅助
// ---------------------------------------------------------------------------

// splitSentences 按终结标点切句。缩写（如 "Dr. Smith"）会被误切，属已知取舍。
func splitSentences(s string) []string {
	var out []string
	for _, m := range sentenceRe.FindAllString(s, -1) {
		m = strings.TrimSpace(m)
		if m != "" {
			out = append(out, m)
		}
	}
	return out
}

// paragraphGroups 每两句合为一个段落
func paragraphGroups(s string) []string {
	sentences := splitSentences(s)
	var out []string
	for i := 0; i < len(sentences); i += 2 {
		if i+1 < len(sentences) {
			out = append(out, sentences[i]+" "+sentences[i+1])
		} else {
			out = append(out, sentences[i])
		}
	}
	return out
}

// titleCandidates 标题候选集：原标题 + 去掉 "Chapter N:" 前缀的标题
// 统一小写并压缩空白后比较。
func titleCandidates(title string) []string {
	t := collapseWhitespace(title)
	if t == "" {
		return nil
	}
	lower := strings.ToLower(t)
	out := []string{lower}
	if stripped := collapseWhitespace(chapterPrefixRe.ReplaceAllString(t, "")); stripped != "" {
		if s := strings.ToLower(stripped); s != lower {
			out = append(out, s)
		}
	}
	return out
}

// matchesTitle 判断文本是否命中标题候选集
func matchesTitle(text string, candidates []string) bool {
	t := strings.ToLower(collapseWhitespace(text))
	if t == "" {
		return false
	}
	for _, c := range candidates {
		if t == c {
			return true
		}
	}
	return false
}

// collapseWhitespace 压缩内部空白为单个空格并去掉首尾空白
func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// indexFold 返回 sub 在 s 中首次出现的字节下标，忽略 ASCII 大小写
func indexFold(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(sub)], sub) {
			return i
		}
	}
	return -1
}

// stripDuplicateTitle 在拼装好的 HTML 字符串上去除开头重复的标题元素，
// 并移除任何命中候选集的 h1。最多连续剥离到第一个不匹配的元素为止。
func stripDuplicateTitle(s, title string) string {
	candidates := titleCandidates(title)
	if len(candidates) == 0 {
		return s
	}

	// 开标签与闭标签分两步匹配：先取标签名，再找同名闭标签
	for {
		m := leadingOpenTagRe.FindStringSubmatch(s)
		if m == nil {
			break
		}
		closing := "</" + strings.ToLower(m[1]) + ">"
		rest := s[len(m[0]):]
		end := indexFold(rest, closing)
		if end < 0 {
			break
		}
		inner := stdhtml.UnescapeString(anyTagRe.ReplaceAllString(rest[:end], " "))
		if !matchesTitle(inner, candidates) {
			break
		}
		s = rest[end+len(closing):]
	}

	return h1ElementRe.ReplaceAllStringFunc(s, func(el string) string {
		m := h1ElementRe.FindStringSubmatch(el)
		if m == nil {
			return el
		}
		inner := stdhtml.UnescapeString(anyTagRe.ReplaceAllString(m[1], " "))
		if matchesTitle(inner, candidates) {
			return ""
		}
		return el
	})
}
