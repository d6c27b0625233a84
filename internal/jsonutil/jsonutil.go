package jsonutil

import (
	"encoding/json"
	"errors"
	"strings"
)

var ErrEmptyInput = errors.New("empty json input")

// DecodeWithFallback decodes strict JSON, tolerating a surrounding markdown
// code fence. Model responses asked for strict JSON still arrive fenced
// often enough that callers should not have to care.
func DecodeWithFallback(raw string, out any) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ErrEmptyInput
	}
	if err := json.Unmarshal([]byte(raw), out); err == nil {
		return nil
	}
	stripped := stripCodeFence(raw)
	if stripped == "" {
		return ErrEmptyInput
	}
	return json.Unmarshal([]byte(stripped), out)
}

func stripCodeFence(raw string) string {
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	raw = strings.TrimPrefix(raw, "```")
	if idx := strings.IndexByte(raw, '\n'); idx >= 0 {
		// Drop the info string ("json", "JSON", ...) on the fence line.
		raw = raw[idx+1:]
	}
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
	return strings.TrimSpace(raw)
}
