package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// mockChatModel — фейковая chat-модель с заранее заданным ответом.
type mockChatModel struct {
	reply   string
	err     error
	prompts []string
}

func (m *mockChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	for _, msg := range input {
		m.prompts = append(m.prompts, msg.Content)
	}
	if m.err != nil {
		return nil, m.err
	}
	return schema.AssistantMessage(m.reply, nil), nil
}

func (m *mockChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func TestChatTransformer_Transform(t *testing.T) {
	m := &mockChatModel{reply: "Here you go:\n```json\n{\"converted_code\":\"fun main() {}\",\"suggestions\":[\"x\"]}\n```"}
	tr := NewChatTransformer(m, discardLogger())

	res, err := tr.Transform(context.Background(), "### User Prompt:\nto kotlin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ConvertedCode != "fun main() {}" || res.Suggestions.Text() != "x" {
		t.Errorf("unexpected result %+v", res)
	}

	if len(m.prompts) != 1 {
		t.Fatalf("expected one prompt, got %d", len(m.prompts))
	}
	if !strings.HasPrefix(m.prompts[0], "### User Prompt:\nto kotlin") {
		t.Errorf("prompt should start with the request text: %q", m.prompts[0])
	}
	if !strings.Contains(m.prompts[0], "converted_code") {
		t.Error("prompt should include the reply schema")
	}
}

func TestChatTransformer_TransformBatch(t *testing.T) {
	m := &mockChatModel{reply: `{"files":[{"file_name":"A.java","content":"A2","suggestions":"ok"}]}`}
	tr := NewChatTransformer(m, discardLogger())

	res, err := tr.TransformBatch(context.Background(), "modernize", []BatchFile{
		{FileName: "A.java", Content: "class A {}"},
		{FileName: "B.java", Content: "class B {}"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a, ok := res.Find("A.java"); !ok || a.Content != "A2" {
		t.Errorf("unexpected batch result %+v", res)
	}

	prompt := m.prompts[0]
	for _, want := range []string{"modernize", "### File: A.java\n\nclass A {}", "### File: B.java\n\nclass B {}"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt should contain %q", want)
		}
	}
}

func TestChatTransformer_ModelError(t *testing.T) {
	tr := NewChatTransformer(&mockChatModel{err: errors.New("rate limited")}, discardLogger())

	_, err := tr.Transform(context.Background(), "x")
	if !errors.Is(err, ErrRequestFailed) {
		t.Errorf("expected ErrRequestFailed, got %v", err)
	}
}

func TestChatTransformer_NonJSONReply(t *testing.T) {
	tr := NewChatTransformer(&mockChatModel{reply: "I cannot help with that."}, discardLogger())

	_, err := tr.Transform(context.Background(), "x")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced", "text\n```json\n{\"a\":1}\n```\nmore", `{"a":1}`},
		{"embedded", `Sure! {"a":{"b":2}} done`, `{"a":{"b":2}}`},
		{"none", "no json here", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNewChatModel_Unsupported(t *testing.T) {
	_, err := NewChatModel(context.Background(), ModelConfig{Type: "bard"})
	if !errors.Is(err, ErrUnsupportedModel) {
		t.Errorf("expected ErrUnsupportedModel, got %v", err)
	}
}

func TestComposite(t *testing.T) {
	m := &mockChatModel{reply: `{"converted_code":"llm"}`}
	httpBackend := NewHTTPClient(HTTPClientConfig{BaseURL: "http://127.0.0.1:0", Logger: discardLogger()})
	chat := NewChatTransformer(m, discardLogger())

	var b Backend = Composite{
		Transformer:       chat,
		BatchTransformer:  chat,
		ArtifactGenerator: httpBackend,
		Deployer:          httpBackend,
		TestGenerator:     httpBackend,
	}

	res, err := b.Transform(context.Background(), "x")
	if err != nil || res.ConvertedCode != "llm" {
		t.Errorf("transform should go to the chat model, got %+v %v", res, err)
	}
}
