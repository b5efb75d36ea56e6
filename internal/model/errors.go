package model

import (
	"errors"
	"strings"
)

// ErrBlocked matches any *BlockedError via errors.Is.
var ErrBlocked = errors.New("response blocked")

// BlockedError means the provider withheld its output, usually because of
// safety filtering. Reason is the provider's stated cause when it gave one.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	if e.Reason == "" {
		return "response blocked due to safety settings or other reasons"
	}
	return "response blocked due to: " + e.Reason
}

func (e *BlockedError) Is(target error) bool {
	return target == ErrBlocked
}

// Finish reasons across providers that mean the output was withheld.
var blockingFinishReasons = map[string]struct{}{
	"SAFETY":             {},
	"RECITATION":         {},
	"BLOCKLIST":          {},
	"PROHIBITED_CONTENT": {},
	"SPII":               {},
	"IMAGE_SAFETY":       {},
	"CONTENT_FILTER":     {}, // openai, ark, qwen
	"SENSITIVE":          {}, // ark
	"REFUSAL":            {}, // anthropic
}

// IsBlockingFinishReason reports whether a finish reason signals blocked output.
func IsBlockingFinishReason(reason string) bool {
	_, ok := blockingFinishReasons[strings.ToUpper(strings.TrimSpace(reason))]
	return ok
}
