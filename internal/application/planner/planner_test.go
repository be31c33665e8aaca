package planner

import (
	"context"
	"strings"
	"testing"

	"bookdraft-api/internal/config"
	"bookdraft-api/internal/infrastructure/llm"
	"bookdraft-api/internal/workflow/prompt"
)

type stubProvider struct {
	out      string
	err      error
	messages []llm.Message
}

func (s *stubProvider) Name() string    { return "stub" }
func (s *stubProvider) Available() bool { return true }

func (s *stubProvider) CompleteMessages(_ context.Context, messages []llm.Message, _ llm.Options) (string, error) {
	s.messages = messages
	return s.out, s.err
}

func testGenerationConfig() *config.GenerationConfig {
	return &config.GenerationConfig{
		DefaultNumChapters: 8,
		DefaultTone:        "casual",
		WriterConcurrency:  2,
		MaxContextChars:    8000,
	}
}

func newTestService(p llm.Provider, cfg *config.GenerationConfig) *Service {
	return NewService(p, prompt.NewRegistry(), cfg)
}

func TestPlanParsesProviderOutput(t *testing.T) {
	stub := &stubProvider{out: "Here you go.\n\n```json\n" + `{
  "title": "The Go Field Guide",
  "chapters": [
    {"title": "Getting Started", "summary": "First steps."},
    {"title": "Chapter 2: Tooling", "summary": "Build and test tools."}
  ]
}` + "\n```\n"}

	svc := newTestService(stub, testGenerationConfig())
	plan, err := svc.Plan(context.Background(), Input{Topic: "Go", NumChapters: 2})
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	if plan.Title != "The Go Field Guide" {
		t.Fatalf("title = %q", plan.Title)
	}
	if len(plan.Chapters) != 2 {
		t.Fatalf("chapter count = %d, want 2", len(plan.Chapters))
	}
	if plan.Chapters[0].Title != "Chapter 1: Getting Started" {
		t.Fatalf("unprefixed title should gain a chapter prefix, got %q", plan.Chapters[0].Title)
	}
	if plan.Chapters[1].Title != "Chapter 2: Tooling" {
		t.Fatalf("already prefixed title must stay untouched, got %q", plan.Chapters[1].Title)
	}
}

func TestPlanFallsBackOnUnparseableOutput(t *testing.T) {
	stub := &stubProvider{out: "sorry, I cannot help with that"}

	svc := newTestService(stub, testGenerationConfig())
	plan, err := svc.Plan(context.Background(), Input{Topic: "Beekeeping", NumChapters: 5})
	if err != nil {
		t.Fatalf("fallback path must not surface an error: %v", err)
	}
	if plan.Title != "The Complete Guide to Beekeeping" {
		t.Fatalf("fallback title = %q", plan.Title)
	}
	if len(plan.Chapters) != 5 {
		t.Fatalf("fallback chapter count = %d, want 5", len(plan.Chapters))
	}
	for i, ch := range plan.Chapters {
		if !strings.Contains(ch.Title, "Beekeeping") {
			t.Errorf("chapter %d title should mention the topic: %q", i, ch.Title)
		}
		if !strings.HasPrefix(ch.Title, "Chapter ") {
			t.Errorf("chapter %d title should carry a chapter prefix: %q", i, ch.Title)
		}
	}
}

func TestPlanRequiresTopic(t *testing.T) {
	svc := newTestService(&stubProvider{}, testGenerationConfig())
	if _, err := svc.Plan(context.Background(), Input{Topic: "   "}); err == nil {
		t.Fatal("expected error for blank topic")
	}
}

func TestPlanSendsReferenceContext(t *testing.T) {
	stub := &stubProvider{out: "nonsense"}
	svc := newTestService(stub, testGenerationConfig())

	toc := strings.Repeat("Chapter listing line\n", 20)
	if _, err := svc.Plan(context.Background(), Input{Topic: "Go", NumChapters: 3, TOCContext: toc}); err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}

	var found bool
	for _, m := range stub.messages {
		if m.Role == llm.RoleAssistant && strings.HasPrefix(m.Content, "REFERENCE TOC EXAMPLES:") {
			found = true
		}
	}
	if !found {
		t.Fatalf("reference context should travel as an assistant message, got %+v", stub.messages)
	}
}

func TestReferenceContextTruncation(t *testing.T) {
	cfg := testGenerationConfig()
	cfg.MaxContextChars = 10
	svc := newTestService(&stubProvider{}, cfg)

	got := svc.referenceContext(Input{TOCContext: "0123456789ABCDEF"})
	if !strings.HasSuffix(got, "\n...[truncated]") {
		t.Fatalf("over-limit context should be marked truncated: %q", got)
	}
	if !strings.HasPrefix(got, "0123456789") {
		t.Fatalf("truncation should keep the leading runes: %q", got)
	}

	if got := svc.referenceContext(Input{}); got != "" {
		t.Fatalf("empty inputs should yield empty context, got %q", got)
	}
}

func TestNormalizePlanPadsAndTruncates(t *testing.T) {
	payload := &planPayload{Title: "T"}
	payload.Chapters = append(payload.Chapters, struct {
		Title   string `json:"title"`
		Summary string `json:"summary"`
	}{Title: "Only One", Summary: "s"})

	padded := normalizePlan(payload, "Gardening", 3)
	if len(padded.Chapters) != 3 {
		t.Fatalf("padded count = %d, want 3", len(padded.Chapters))
	}
	if padded.Chapters[2].Title != "Chapter 3: Advanced Topics in Gardening" {
		t.Fatalf("padding title = %q", padded.Chapters[2].Title)
	}

	truncated := normalizePlan(payload, "Gardening", 1)
	if len(truncated.Chapters) != 1 {
		t.Fatalf("truncated count = %d, want 1", len(truncated.Chapters))
	}
}

func TestParsePlanFlattensParts(t *testing.T) {
	raw := `{
  "title": "An Academic Treatise",
  "parts": [
    {
      "part_title": "Part I",
      "chapters": [
        {"chapter_number": 1, "title": "Origins", "sections": [{"title": "Early Days"}, {"title": "Turning Points"}]},
        {"chapter_number": 2, "title": "Methods", "sections": []}
      ]
    }
  ]
}`
	payload, err := parsePlan(raw)
	if err != nil {
		t.Fatalf("parsePlan: %v", err)
	}

	plan := normalizePlan(payload, "History", 2)
	if len(plan.Chapters) != 2 {
		t.Fatalf("flattened count = %d, want 2", len(plan.Chapters))
	}
	if plan.Chapters[0].Title != "Chapter 1: Origins" {
		t.Fatalf("flattened title = %q", plan.Chapters[0].Title)
	}
	if want := "Includes sections: Early Days; Turning Points"; plan.Chapters[0].Summary != want {
		t.Fatalf("section summary = %q, want %q", plan.Chapters[0].Summary, want)
	}
	if plan.Chapters[1].Summary != "" {
		t.Fatalf("chapter without sections should keep an empty summary, got %q", plan.Chapters[1].Summary)
	}
}

func TestParsePlanRejectsEmpty(t *testing.T) {
	if _, err := parsePlan(`{"title": "x"}`); err == nil {
		t.Fatal("payload without chapters must be rejected")
	}
	if _, err := parsePlan("not json at all"); err == nil {
		t.Fatal("non-JSON output must be rejected")
	}
}

func TestChapterPrefixed(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"Chapter 1: Intro", true},
		{"chapter 12 : Deep Dive", true},
		{"Chapter: Intro", false},
		{"Chapters 1: Intro", false},
		{"Intro", false},
	}
	for _, tt := range tests {
		if got := chapterPrefixed(tt.title); got != tt.want {
			t.Errorf("chapterPrefixed(%q) = %v, want %v", tt.title, got, tt.want)
		}
	}
}
