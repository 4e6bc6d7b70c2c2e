package service

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// EncodeBase64 кодирует UTF-8 текст в base64 (стандартный алфавит, с паддингом).
func EncodeBase64(text string) string {
	return base64.StdEncoding.EncodeToString([]byte(text))
}

// DecodeBase64 декодирует base64 в текст.
//
// Ошибкой считается только некорректный base64. Байты, не образующие
// UTF-8, заменяются на U+FFFD: вывод kubectl может содержать что угодно.
func DecodeBase64(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return strings.ToValidUTF8(string(data), "\uFFFD"), nil
}
