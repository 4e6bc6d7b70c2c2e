package service

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedResponse — ответ сервиса не соответствует контракту.
	ErrMalformedResponse = errors.New("malformed service response")

	// ErrInvalidEncoding — поле не является корректным base64.
	ErrInvalidEncoding = errors.New("invalid base64 payload")

	// ErrUnsupportedModel — неизвестный тип chat-модели.
	ErrUnsupportedModel = errors.New("unsupported model type")

	// ErrRequestFailed — запрос не дошёл до сервиса.
	ErrRequestFailed = errors.New("service request failed")
)

// HTTPError — сервис ответил статусом >= 400.
type HTTPError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

// Error реализует интерфейс error.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.Operation, e.StatusCode, e.Status)
}

// IsHTTPError проверяет, является ли ошибка (или обёрнутая в ней) HTTPError.
func IsHTTPError(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr)
}
