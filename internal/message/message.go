// Package message defines the Message entity. Messages are immutable once
// accepted by the store; editing history is explicitly out of scope.
package message

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxContentBytes is the default ceiling on message content size, used
// when a caller has no configured limit of its own (e.g. in tests).
const MaxContentBytes = 4096

// Sentinel errors for the message package.
var (
	ErrNotFound      = errors.New("message not found")
	ErrEmptyContent  = errors.New("message content must not be empty")
	ErrContentTooBig = errors.New("message content exceeds the maximum allowed size")
	ErrInvalidText   = errors.New("message content is not valid UTF-8")
)

// Message is one entry in a channel's ordered history.
type Message struct {
	ID        uuid.UUID
	ChannelID uuid.UUID
	Sender    uuid.UUID
	CreatedMS int64
	Content   string
}

// ValidateContent trims surrounding whitespace and checks that the result
// is non-empty and does not exceed maxBytes bytes (not runes — the spec
// bounds wire size, and UTF-8 content can be multi-byte per rune). maxBytes
// <= 0 falls back to MaxContentBytes.
func ValidateContent(content string, maxBytes int) (string, error) {
	if maxBytes <= 0 {
		maxBytes = MaxContentBytes
	}
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", ErrEmptyContent
	}
	if len(trimmed) > maxBytes {
		return "", ErrContentTooBig
	}
	if !utf8.ValidString(trimmed) {
		return "", ErrInvalidText
	}
	return trimmed, nil
}
