package service

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Suggestions — рекомендации сервиса.
//
// Сервис присылает либо одну строку, либо список; оба варианта
// декодируются в список и выводятся одним блоком через "\n".
type Suggestions []string

// UnmarshalJSON принимает строку, список или null.
func (s *Suggestions) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		*s = nil
	case string:
		*s = Suggestions{v}
	case []any:
		out := make(Suggestions, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		*s = out
	default:
		return fmt.Errorf("%w: suggestions must be a string or a list, got %T", ErrMalformedResponse, raw)
	}
	return nil
}

// Text возвращает рекомендации одним текстом.
func (s Suggestions) Text() string {
	return strings.Join(s, "\n")
}
