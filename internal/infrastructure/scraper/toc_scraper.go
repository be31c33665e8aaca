// Package scraper 提供参考书目 TOC 抓取功能
// 给定一组参考 URL，抽取页面中的目录文本，合并为规划提示词的参考上下文。
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"bookdraft-api/internal/config"
	"bookdraft-api/pkg/logger"
	"bookdraft-api/pkg/metrics"
)

// 常见目录容器选择器，按命中概率排列
var tocSelectors = []string{
	"#table-of-contents", ".table-of-contents",
	"#toc", ".toc",
	"#contents", ".contents",
	"[class*='toc']", "[id*='toc']",
}

// 标题兜底时排除的导航性文本
var headingStopWords = []string{"contact", "about", "subscribe", "login", "copyright"}

// TOCScraper 目录抓取器
type TOCScraper struct {
	client          *http.Client
	userAgent       string
	maxSources      int
	minSnippetChars int
}

// New 创建目录抓取器
func New(cfg *config.ScraperConfig) *TOCScraper {
	timeout := 12 * time.Second
	maxSources := 4
	minSnippet := 120
	userAgent := "Mozilla/5.0 (compatible; bookdraft-api)"
	if cfg != nil {
		if cfg.Timeout > 0 {
			timeout = cfg.Timeout
		}
		if cfg.MaxSources > 0 {
			maxSources = cfg.MaxSources
		}
		if cfg.MinSnippetChars > 0 {
			minSnippet = cfg.MinSnippetChars
		}
		if cfg.UserAgent != "" {
			userAgent = cfg.UserAgent
		}
	}
	return &TOCScraper{
		client:          &http.Client{Timeout: timeout},
		userAgent:       userAgent,
		maxSources:      maxSources,
		minSnippetChars: minSnippet,
	}
}

// Context 抓取一组 URL 的目录文本，合并为参考上下文
// 单个 URL 失败只记日志，不影响其余来源；达到 maxSources 个有效片段后停止。
func (s *TOCScraper) Context(ctx context.Context, urls []string) string {
	var parts []string
	for _, url := range urls {
		if len(parts) >= s.maxSources {
			break
		}
		toc, err := s.ExtractTOC(ctx, url)
		if err != nil {
			logger.Warn(ctx, "toc scrape failed", "url", url, "error", err.Error())
			metrics.TOCScrapeTotal.WithLabelValues("error").Inc()
			continue
		}
		if len(toc) < s.minSnippetChars {
			metrics.TOCScrapeTotal.WithLabelValues("too_short").Inc()
			continue
		}
		metrics.TOCScrapeTotal.WithLabelValues("ok").Inc()
		parts = append(parts, fmt.Sprintf("Book TOC from %s:\n%s", url, toc))
	}
	return strings.Join(parts, "\n\n")
}

// ExtractTOC 抓取单个页面并抽取目录文本
// 先尝试常见目录容器选择器；没有命中时退化为收集页面标题。
func (s *TOCScraper) ExtractTOC(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetching %s: unexpected status %d", url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", url, err)
	}

	for _, sel := range tocSelectors {
		nodes := doc.Find(sel)
		if nodes.Length() == 0 {
			continue
		}
		var texts []string
		nodes.Each(func(_ int, n *goquery.Selection) {
			t := strings.TrimSpace(collapseLines(n.Text()))
			if t != "" {
				texts = append(texts, t)
			}
		})
		if joined := strings.TrimSpace(strings.Join(texts, "\n")); joined != "" {
			return joined, nil
		}
	}

	// 兜底：收集页面标题
	var headings []string
	doc.Find("h1, h2, h3, h4").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		t := strings.TrimSpace(h.Text())
		if t == "" {
			return true
		}
		low := strings.ToLower(t)
		for _, bad := range headingStopWords {
			if strings.Contains(low, bad) {
				return true
			}
		}
		headings = append(headings, t)
		return len(headings) < 30
	})
	return strings.Join(headings, "\n"), nil
}

// collapseLines 压缩多余空白行，保留行结构
func collapseLines(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
