package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino-ext/components/model/qwen"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/invopop/jsonschema"

	"github.com/shaiso/Codeshift/internal/telemetry"
)

// Типы chat-моделей.
const (
	ModelTypeOpenAI = "openai"
	ModelTypeOllama = "ollama"
	ModelTypeClaude = "claude"
	ModelTypeARK    = "ark"
	ModelTypeQwen   = "qwen"
)

const (
	defaultMaxTokens    = 16 * 1024
	defaultModelTimeout = 10 * time.Minute
	defaultQwenBaseURL  = "https://dashscope.aliyuncs.com/compatible-mode/v1"
)

// ModelConfig — параметры chat-модели.
type ModelConfig struct {
	Type        string
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature *float32
	Timeout     time.Duration
}

// NewChatModel создаёт chat-модель eino по типу.
func NewChatModel(ctx context.Context, cfg ModelConfig) (model.BaseChatModel, error) {
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultModelTimeout
	}

	switch cfg.Type {
	case ModelTypeOpenAI:
		m, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:     cfg.BaseURL,
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   &cfg.MaxTokens,
			Timeout:     cfg.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}
		return m, nil

	case ModelTypeOllama:
		m, err := ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}
		return m, nil

	case ModelTypeClaude:
		var baseURL *string
		if cfg.BaseURL != "" {
			baseURL = &cfg.BaseURL
		}
		m, err := claude.NewChatModel(ctx, &claude.Config{
			BaseURL:     baseURL,
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("create claude model: %w", err)
		}
		return m, nil

	case ModelTypeARK:
		m, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
			BaseURL:     cfg.BaseURL,
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   &cfg.MaxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("create ark model: %w", err)
		}
		return m, nil

	case ModelTypeQwen:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = defaultQwenBaseURL
		}
		m, err := qwen.NewChatModel(ctx, &qwen.ChatModelConfig{
			BaseURL:     baseURL,
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   &cfg.MaxTokens,
			Timeout:     cfg.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("create qwen model: %w", err)
		}
		return m, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedModel, cfg.Type)
	}
}

// ChatTransformer — Transformer и BatchTransformer поверх chat-модели.
//
// Модель получает текст запроса и JSON Schema ожидаемого ответа;
// ответ модели разбирается как JSON (в том числе внутри ```json блока).
type ChatTransformer struct {
	model  model.BaseChatModel
	logger *slog.Logger

	transformSchema string
	batchSchema     string
}

var (
	_ Transformer      = (*ChatTransformer)(nil)
	_ BatchTransformer = (*ChatTransformer)(nil)
)

// NewChatTransformer создаёт ChatTransformer.
func NewChatTransformer(m model.BaseChatModel, logger *slog.Logger) *ChatTransformer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatTransformer{
		model:           m,
		logger:          logger,
		transformSchema: schemaFor(&TransformResult{}),
		batchSchema:     schemaFor(&BatchResult{}),
	}
}

// Transform отправляет текст запроса модели.
func (t *ChatTransformer) Transform(ctx context.Context, text string) (*TransformResult, error) {
	content, err := t.generate(ctx, OpTransform, text+replyInstructions(t.transformSchema))
	if err != nil {
		return nil, err
	}

	var result TransformResult
	if err := decodeReply(content, &result); err != nil {
		return nil, fmt.Errorf("%s: %w", OpTransform, err)
	}
	return &result, nil
}

// TransformBatch отправляет модели все файлы одним сообщением.
func (t *ChatTransformer) TransformBatch(ctx context.Context, prompt string, files []BatchFile) (*BatchResult, error) {
	var b strings.Builder
	b.WriteString("### User Prompt:\n")
	b.WriteString(prompt)
	for _, f := range files {
		b.WriteString("\n\n### File: ")
		b.WriteString(f.FileName)
		b.WriteString("\n\n")
		b.WriteString(f.Content)
	}
	b.WriteString(replyInstructions(t.batchSchema))

	content, err := t.generate(ctx, OpTransformBatch, b.String())
	if err != nil {
		return nil, err
	}

	var result BatchResult
	if err := decodeReply(content, &result); err != nil {
		return nil, fmt.Errorf("%s: %w", OpTransformBatch, err)
	}
	return &result, nil
}

// generate вызывает модель с одним пользовательским сообщением.
func (t *ChatTransformer) generate(ctx context.Context, op, prompt string) (string, error) {
	defer telemetry.ObserveRemoteCall(op, time.Now())

	msg, err := t.model.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrRequestFailed, op, err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", fmt.Errorf("%w: %s: empty model reply", ErrMalformedResponse, op)
	}

	t.logger.Debug("model replied", "operation", op, "length", len(msg.Content))
	return msg.Content, nil
}

// schemaFor возвращает JSON Schema типа в виде текста.
func schemaFor(v any) string {
	r := &jsonschema.Reflector{
		DoNotReference:            true,
		AllowAdditionalProperties: true,
	}
	data, err := json.MarshalIndent(r.Reflect(v), "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

func replyInstructions(schemaText string) string {
	return "\n\n### Reply format:\nRespond with a single JSON object matching this JSON Schema and nothing else.\n\n" + schemaText
}

// decodeReply извлекает JSON объект из ответа модели.
func decodeReply(content string, out any) error {
	raw := extractJSON(content)
	if raw == "" {
		return fmt.Errorf("%w: no JSON object in model reply", ErrMalformedResponse)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// extractJSON находит JSON объект: весь ответ, содержимое ```json блока
// или текст от первой '{' до последней '}'.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	if json.Valid([]byte(content)) && strings.HasPrefix(content, "{") {
		return content
	}

	if start := strings.Index(content, "```json"); start != -1 {
		rest := content[start+len("```json"):]
		if end := strings.Index(rest, "```"); end != -1 {
			return strings.TrimSpace(rest[:end])
		}
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return ""
	}
	return content[start : end+1]
}
