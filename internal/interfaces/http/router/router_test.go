package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"bookdraft-api/internal/application/book"
	"bookdraft-api/internal/application/export"
	"bookdraft-api/internal/application/planner"
	"bookdraft-api/internal/application/writer"
	"bookdraft-api/internal/config"
	"bookdraft-api/internal/infrastructure/llm"
	"bookdraft-api/internal/infrastructure/persistence/memory"
	"bookdraft-api/internal/infrastructure/scraper"
	"bookdraft-api/internal/interfaces/http/handler"
	"bookdraft-api/internal/workflow/prompt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestServer 用 mock 提供方和内存章节库组装一整套路由
func newTestServer() (*gin.Engine, *memory.ChapterStore) {
	cfg := &config.Config{}
	cfg.App.Name = "bookdraft-api"
	cfg.App.Env = "test"
	cfg.Generation = config.GenerationConfig{
		DefaultNumChapters: 8,
		DefaultTone:        "casual",
		WriterConcurrency:  4,
		MaxContextChars:    8000,
	}
	cfg.Scraper = config.ScraperConfig{
		Timeout:         time.Second,
		MaxSources:      2,
		MinSnippetChars: 10,
		UserAgent:       "bookdraft-test",
	}

	provider := llm.NewMockProvider(0)
	prompts := prompt.NewRegistry()
	store := memory.NewChapterStore()

	plannerSvc := planner.NewService(provider, prompts, &cfg.Generation)
	writerSvc := writer.NewService(provider, prompts, &cfg.Generation)
	bookSvc := book.NewService(plannerSvc, writerSvc, store, scraper.New(&cfg.Scraper), provider, &cfg.Generation)

	r := New(cfg, Handlers{
		Health:  handler.NewHealthHandler("test", provider),
		Book:    handler.NewBookHandler(bookSvc),
		Chapter: handler.NewChapterHandler(store, bookSvc),
		Preview: handler.NewPreviewHandler(),
		Export:  handler.NewExportHandler(store, export.NewService()),
	})
	return r.Engine(), store
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var resp struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response envelope: %v\n%s", err, w.Body.String())
	}
	var data T
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("decode response data: %v\n%s", err, w.Body.String())
	}
	return data
}

type chapterData struct {
	ID        string `json:"id"`
	SeqNum    int    `json:"seq_num"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Status    string `json:"status"`
	Subtopics []struct {
		Title string `json:"title"`
	} `json:"subtopics"`
	GenerationMetadata *struct {
		Provider string `json:"provider"`
		Tone     string `json:"tone"`
	} `json:"generation_metadata"`
}

type chapterListData struct {
	Chapters []chapterData `json:"chapters"`
}

func createChapter(t *testing.T, engine *gin.Engine, title string) chapterData {
	t.Helper()
	w := doJSON(t, engine, http.MethodPost, "/v1/chapters", gin.H{"title": title, "summary": "about " + title})
	if w.Code != http.StatusCreated {
		t.Fatalf("create %q: status %d: %s", title, w.Code, w.Body.String())
	}
	return decodeData[chapterData](t, w)
}

func TestHealthEndpoints(t *testing.T) {
	engine, _ := newTestServer()
	for _, path := range []string{"/health", "/ready", "/live"} {
		w := doJSON(t, engine, http.MethodGet, path, nil)
		if w.Code != http.StatusOK {
			t.Errorf("GET %s: status %d", path, w.Code)
		}
	}
}

func TestChapterCRUD(t *testing.T) {
	engine, _ := newTestServer()

	created := createChapter(t, engine, "Openings")
	if created.ID == "" || created.SeqNum != 1 || created.Status != "draft" {
		t.Fatalf("unexpected created chapter: %+v", created)
	}

	w := doJSON(t, engine, http.MethodGet, "/v1/chapters/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get chapter: status %d", w.Code)
	}

	w = doJSON(t, engine, http.MethodPut, "/v1/chapters/"+created.ID, gin.H{
		"title":   "Openings, Revised",
		"content": "Fresh body text here.",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update chapter: status %d: %s", w.Code, w.Body.String())
	}
	updated := decodeData[chapterData](t, w)
	if updated.Title != "Openings, Revised" || updated.Content != "Fresh body text here." {
		t.Fatalf("update not applied: %+v", updated)
	}

	w = doJSON(t, engine, http.MethodDelete, "/v1/chapters/"+created.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete chapter: status %d", w.Code)
	}

	w = doJSON(t, engine, http.MethodGet, "/v1/chapters/"+created.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("deleted chapter should 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestChapterValidation(t *testing.T) {
	engine, _ := newTestServer()

	// title 必填
	w := doJSON(t, engine, http.MethodPost, "/v1/chapters", gin.H{"summary": "no title"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing title should 400, got %d", w.Code)
	}

	// position 必填且 >= 0
	c := createChapter(t, engine, "Solo")
	w = doJSON(t, engine, http.MethodPost, "/v1/chapters/"+c.ID+"/reorder", gin.H{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing position should 400, got %d", w.Code)
	}
}

func TestReorderChapterEndpoint(t *testing.T) {
	engine, _ := newTestServer()

	a := createChapter(t, engine, "A")
	createChapter(t, engine, "B")
	c := createChapter(t, engine, "C")

	w := doJSON(t, engine, http.MethodPost, "/v1/chapters/"+c.ID+"/reorder", gin.H{"position": 0})
	if w.Code != http.StatusOK {
		t.Fatalf("reorder: status %d: %s", w.Code, w.Body.String())
	}
	list := decodeData[chapterListData](t, w)
	if len(list.Chapters) != 3 {
		t.Fatalf("chapter count = %d", len(list.Chapters))
	}
	wantOrder := []string{"C", "A", "B"}
	for i, ch := range list.Chapters {
		if ch.Title != wantOrder[i] || ch.SeqNum != i+1 {
			t.Fatalf("position %d: got %q seq %d, want %q seq %d", i, ch.Title, ch.SeqNum, wantOrder[i], i+1)
		}
	}

	w = doJSON(t, engine, http.MethodPost, "/v1/chapters/"+a.ID+"/reorder", gin.H{"position": 99})
	if w.Code != http.StatusOK {
		t.Fatalf("reorder past end should clamp, got %d: %s", w.Code, w.Body.String())
	}
}

func TestMergeChapterEndpoint(t *testing.T) {
	engine, _ := newTestServer()

	target := createChapter(t, engine, "Target")
	source := createChapter(t, engine, "Source")

	doJSON(t, engine, http.MethodPut, "/v1/chapters/"+target.ID, gin.H{"content": "target body"})
	doJSON(t, engine, http.MethodPut, "/v1/chapters/"+source.ID, gin.H{"content": "source body"})

	w := doJSON(t, engine, http.MethodPost, "/v1/chapters/"+target.ID+"/merge", gin.H{"source_id": source.ID})
	if w.Code != http.StatusOK {
		t.Fatalf("merge: status %d: %s", w.Code, w.Body.String())
	}
	merged := decodeData[chapterData](t, w)
	if merged.Content != "target body\n\nsource body" {
		t.Fatalf("merged content = %q", merged.Content)
	}
	if len(merged.Subtopics) != 1 || merged.Subtopics[0].Title != "Source" {
		t.Fatalf("source should become a subtopic: %+v", merged.Subtopics)
	}

	w = doJSON(t, engine, http.MethodGet, "/v1/chapters/"+source.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("merged source should be gone, got %d", w.Code)
	}
}

func TestGenerateChapterEndpoint(t *testing.T) {
	engine, _ := newTestServer()
	c := createChapter(t, engine, "Chapter 1: Hives")

	// 请求体可省略
	w := doJSON(t, engine, http.MethodPost, "/v1/chapters/"+c.ID+"/generate", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("generate chapter: status %d: %s", w.Code, w.Body.String())
	}
	generated := decodeData[chapterData](t, w)
	if generated.Status != "completed" || generated.Content == "" {
		t.Fatalf("unexpected generated chapter: status=%q content_len=%d", generated.Status, len(generated.Content))
	}
	if generated.GenerationMetadata == nil || generated.GenerationMetadata.Provider != "mock" {
		t.Fatalf("generation metadata missing: %+v", generated.GenerationMetadata)
	}

	w = doJSON(t, engine, http.MethodPost, "/v1/chapters/missing/generate", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("generating a missing chapter should 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPlanEndpointImportsDraft(t *testing.T) {
	engine, _ := newTestServer()

	w := doJSON(t, engine, http.MethodPost, "/v1/plan", gin.H{"topic": "Beekeeping", "num_chapters": 3})
	if w.Code != http.StatusOK {
		t.Fatalf("plan: status %d: %s", w.Code, w.Body.String())
	}
	plan := decodeData[struct {
		Title    string `json:"title"`
		Chapters []struct {
			Title string `json:"title"`
		} `json:"chapters"`
	}](t, w)
	if len(plan.Chapters) != 3 {
		t.Fatalf("chapter count = %d, want 3", len(plan.Chapters))
	}
	if !strings.HasPrefix(plan.Chapters[0].Title, "Chapter 1: ") {
		t.Fatalf("chapter titles should be numbered: %q", plan.Chapters[0].Title)
	}

	// 规划结果应整体替换草稿视图
	w = doJSON(t, engine, http.MethodGet, "/v1/chapters", nil)
	list := decodeData[chapterListData](t, w)
	if len(list.Chapters) != 3 {
		t.Fatalf("draft view should hold the planned chapters, got %d", len(list.Chapters))
	}

	w = doJSON(t, engine, http.MethodPost, "/v1/plan", gin.H{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing topic should 400, got %d", w.Code)
	}
}

func TestGenerateEndpoint(t *testing.T) {
	engine, _ := newTestServer()

	w := doJSON(t, engine, http.MethodPost, "/v1/generate", gin.H{"topic": "Beekeeping", "num_chapters": 2})
	if w.Code != http.StatusOK {
		t.Fatalf("generate: status %d: %s", w.Code, w.Body.String())
	}
	data := decodeData[struct {
		Plan struct {
			Chapters []struct {
				Title string `json:"title"`
			} `json:"chapters"`
		} `json:"plan"`
		Book struct {
			Chapters []struct {
				Title   string `json:"title"`
				Content string `json:"content"`
				HTML    string `json:"html"`
			} `json:"chapters"`
		} `json:"book"`
	}](t, w)
	if len(data.Plan.Chapters) != 2 || len(data.Book.Chapters) != 2 {
		t.Fatalf("plan/book chapter counts = %d/%d", len(data.Plan.Chapters), len(data.Book.Chapters))
	}
	for i, ch := range data.Book.Chapters {
		if ch.Content == "" {
			t.Fatalf("chapter %d has no content", i)
		}
		if !strings.Contains(ch.HTML, "<h2 style=") {
			t.Fatalf("chapter %d html is not normalized: %q", i, ch.HTML)
		}
	}
}

func TestPreviewEndpoint(t *testing.T) {
	engine, _ := newTestServer()

	w := doJSON(t, engine, http.MethodPost, "/v1/preview", gin.H{
		"content": "Getting Started\n\nFirst sentence here. Second one too.",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("preview: status %d: %s", w.Code, w.Body.String())
	}
	data := decodeData[struct {
		HTML string `json:"html"`
	}](t, w)
	if !strings.Contains(data.HTML, "<h2 style=") || !strings.Contains(data.HTML, "<p style=") {
		t.Fatalf("preview html missing styled blocks: %q", data.HTML)
	}

	w = doJSON(t, engine, http.MethodPost, "/v1/preview", gin.H{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing content should 400, got %d", w.Code)
	}
}

func TestChapterPreviewEndpoint(t *testing.T) {
	engine, _ := newTestServer()

	c := createChapter(t, engine, "Chapter 1: Basics")
	doJSON(t, engine, http.MethodPut, "/v1/chapters/"+c.ID, gin.H{
		"content": "Chapter 1: Basics\n\nOne sentence of body.",
	})

	w := doJSON(t, engine, http.MethodGet, "/v1/chapters/"+c.ID+"/preview", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("chapter preview: status %d: %s", w.Code, w.Body.String())
	}
	data := decodeData[struct {
		HTML string `json:"html"`
	}](t, w)
	if !strings.Contains(data.HTML, "One sentence of body.") {
		t.Fatalf("preview html missing body: %q", data.HTML)
	}
	// 正文首行与章节标题重复，规整后应被去掉
	if strings.Contains(data.HTML, ">Chapter 1: Basics<") {
		t.Fatalf("duplicated leading title should be stripped: %q", data.HTML)
	}

	w = doJSON(t, engine, http.MethodGet, "/v1/chapters/missing/preview", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing chapter preview should 404, got %d", w.Code)
	}
}

func TestExportEndpoint(t *testing.T) {
	engine, _ := newTestServer()

	c := createChapter(t, engine, "Only Chapter")
	doJSON(t, engine, http.MethodPut, "/v1/chapters/"+c.ID, gin.H{"content": "A sentence of body text."})

	w := doJSON(t, engine, http.MethodGet, "/v1/export?format=json&title=My+Great+Book", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export: status %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Disposition"); got != fmt.Sprintf("attachment; filename=%q", "my-great-book.json") {
		t.Fatalf("content disposition = %q", got)
	}
	var payload struct {
		Title    string `json:"title"`
		Chapters []struct {
			Title string `json:"title"`
		} `json:"chapters"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("export body should be JSON: %v", err)
	}
	if payload.Title != "My Great Book" || len(payload.Chapters) != 1 {
		t.Fatalf("unexpected export payload: %+v", payload)
	}

	w = doJSON(t, engine, http.MethodGet, "/v1/export?format=pdf", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unsupported format should 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRequestIDHeader(t *testing.T) {
	engine, _ := newTestServer()
	w := doJSON(t, engine, http.MethodGet, "/health", nil)
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("X-Request-ID header should be set")
	}
}
