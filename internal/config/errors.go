package config

import "errors"

var (
	// ErrUnknownBackend — неизвестный бэкенд трансформации.
	ErrUnknownBackend = errors.New("unknown transform backend")

	// ErrUnknownModelType — неизвестный тип chat-модели.
	ErrUnknownModelType = errors.New("unknown llm type")

	// ErrInvalidValue — недопустимое значение параметра.
	ErrInvalidValue = errors.New("invalid config value")
)
