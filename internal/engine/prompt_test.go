package engine

import (
	"errors"
	"testing"
)

func TestPrompt_DefaultTransform(t *testing.T) {
	p := MustParsePrompt("transform", DefaultTransformTemplate)

	got, err := p.Render(PromptData{Prompt: "to kotlin", FileName: "src/A.java", Code: "class A {}"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "### User Prompt:\nto kotlin\n\n### File: src/A.java\n\nclass A {}"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestPrompt_DefaultRethink(t *testing.T) {
	p := MustParsePrompt("rethink", DefaultRethinkTemplate)

	got, err := p.Render(PromptData{Prompt: "simplify", FileName: "A.kt", Code: "class A"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "### AI Rethink Request:\n\nsimplify\n\n### File: A.kt\n\nclass A"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestPrompt_Funcs(t *testing.T) {
	p := MustParsePrompt("custom", `{{ upper .FileName }}|{{ default "none" .Prompt }}`)

	got, err := p.Render(PromptData{FileName: "a.go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "A.GO|none" {
		t.Errorf("unexpected render: %q", got)
	}
}

func TestParsePrompt_Invalid(t *testing.T) {
	_, err := ParsePrompt("bad", "{{ .Prompt ")
	if !errors.Is(err, ErrTemplateParse) {
		t.Errorf("expected ErrTemplateParse, got %v", err)
	}
}

func TestPrompt_UnknownField(t *testing.T) {
	p := MustParsePrompt("unknown", "{{ .Missing }}")

	_, err := p.Render(PromptData{})
	if !errors.Is(err, ErrTemplateRender) {
		t.Errorf("expected ErrTemplateRender, got %v", err)
	}
}
