package prompt

import (
	"strings"
	"testing"
)

func TestPlannerPromptToneMapping(t *testing.T) {
	tests := []struct {
		tone string
		want PromptID
	}{
		{"casual", PromptPlannerCasualV1},
		{"FORMAL", PromptPlannerFormalV1},
		{" academic ", PromptPlannerAcademicV1},
		{"storytelling", PromptPlannerStorytellingV1},
		{"", PromptPlannerCasualV1},
		{"unknown", PromptPlannerCasualV1},
	}
	for _, tt := range tests {
		if got := PlannerPrompt(tt.tone); got != tt.want {
			t.Errorf("PlannerPrompt(%q) = %q, want %q", tt.tone, got, tt.want)
		}
	}
}

func TestWriterPromptToneMapping(t *testing.T) {
	if got := WriterPrompt("storytelling"); got != PromptWriterStorytellingV1 {
		t.Fatalf("WriterPrompt(storytelling) = %q", got)
	}
	if got := WriterPrompt("nope"); got != PromptWriterCasualV1 {
		t.Fatalf("unknown tone should fall back to casual, got %q", got)
	}
}

func TestRegistryLoadsAllTemplates(t *testing.T) {
	r := NewRegistry()
	ids := []PromptID{
		PromptPlannerCasualV1, PromptPlannerFormalV1, PromptPlannerAcademicV1, PromptPlannerStorytellingV1,
		PromptWriterCasualV1, PromptWriterFormalV1, PromptWriterAcademicV1, PromptWriterStorytellingV1,
	}
	for _, id := range ids {
		if _, err := r.ChatTemplate(id); err != nil {
			t.Errorf("ChatTemplate(%q): %v", id, err)
		}
	}

	if _, err := r.ChatTemplate(PromptID("missing_v9")); err == nil {
		t.Fatal("unknown prompt id must fail")
	}
}

func TestPlannerTemplateRendersVars(t *testing.T) {
	r := NewRegistry()
	tpl, err := r.ChatTemplate(PromptPlannerCasualV1)
	if err != nil {
		t.Fatalf("ChatTemplate: %v", err)
	}

	system, user, err := tpl.Format(struct {
		Topic       string
		NumChapters int
	}{Topic: "Urban Farming", NumChapters: 6})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if system == "" {
		t.Fatal("system prompt is empty")
	}
	for _, want := range []string{"Topic: Urban Farming", "exactly 6 chapters", "Table of Contents"} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q:\n%s", want, user)
		}
	}
}

func TestWriterTemplateRendersVars(t *testing.T) {
	r := NewRegistry()
	tpl, err := r.ChatTemplate(PromptWriterFormalV1)
	if err != nil {
		t.Fatalf("ChatTemplate: %v", err)
	}

	_, user, err := tpl.Format(struct {
		ChapterIndex int
		ChapterCount int
		BookTitle    string
		Topic        string
		ChapterTitle string
		Summary      string
	}{2, 8, "The Book", "farming", "Chapter 2: Soil", "all about soil"})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	for _, want := range []string{"chapter 2 of 8", "Chapter Title: Chapter 2: Soil", "Summary: all about soil"} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q:\n%s", want, user)
		}
	}
}
