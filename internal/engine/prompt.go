package engine

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Шаблоны запросов к сервису трансформации по умолчанию.
const (
	// DefaultTransformTemplate — запрос одиночной трансформации файла.
	DefaultTransformTemplate = "### User Prompt:\n{{ .Prompt }}\n\n### File: {{ .FileName }}\n\n{{ .Code }}"

	// DefaultRethinkTemplate — запрос повторной обработки выбранного файла.
	DefaultRethinkTemplate = "### AI Rethink Request:\n\n{{ .Prompt }}\n\n### File: {{ .FileName }}\n\n{{ .Code }}"
)

// PromptData — данные, доступные в шаблоне запроса:
//
//	{{ .Prompt }}   — инструкция пользователя
//	{{ .FileName }} — имя файла
//	{{ .Code }}     — содержимое файла
type PromptData struct {
	Prompt   string
	FileName string
	Code     string
}

// templateFuncs — дополнительные функции для шаблонов.
var templateFuncs = template.FuncMap{
	"trim":  strings.TrimSpace,
	"lower": strings.ToLower,
	"upper": strings.ToUpper,

	// default — возвращает значение по умолчанию, если строка пустая
	"default": func(def, val string) string {
		if val == "" {
			return def
		}
		return val
	},
}

// PromptTemplate — разобранный шаблон запроса.
type PromptTemplate struct {
	tmpl *template.Template
}

// ParsePrompt разбирает шаблон запроса.
func ParsePrompt(name, text string) (*PromptTemplate, error) {
	t, err := template.New(name).Funcs(templateFuncs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateParse, err)
	}
	return &PromptTemplate{tmpl: t}, nil
}

// MustParsePrompt — ParsePrompt, паникующий при ошибке.
// Используется для встроенных шаблонов.
func MustParsePrompt(name, text string) *PromptTemplate {
	p, err := ParsePrompt(name, text)
	if err != nil {
		panic(err)
	}
	return p
}

// Render рендерит шаблон с данными.
func (p *PromptTemplate) Render(data PromptData) (string, error) {
	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}
	return buf.String(), nil
}
