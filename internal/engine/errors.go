package engine

import "errors"

// Ошибки рендеринга шаблонов.
var (
	// ErrTemplateRender — ошибка рендеринга шаблона.
	ErrTemplateRender = errors.New("template render failed")

	// ErrTemplateParse — ошибка парсинга шаблона.
	ErrTemplateParse = errors.New("template parse failed")
)

// ErrTaskPanic — задача барьера завершилась паникой.
var ErrTaskPanic = errors.New("task panicked")
