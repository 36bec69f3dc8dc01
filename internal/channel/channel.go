// Package channel defines the Channel entity: a named message stream
// within exactly one hub.
package channel

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Sentinel errors for the channel package.
var (
	ErrNotFound         = errors.New("channel not found")
	ErrNameLength       = errors.New("channel name must be between 1 and 100 characters")
	ErrDescriptionLength = errors.New("channel description must be 1024 characters or fewer")
)

// Channel is a named message stream within a hub.
type Channel struct {
	ID          uuid.UUID
	HubID       uuid.UUID
	Name        string
	Description string
	CreatedMS   int64
}

// ValidateName trims whitespace and checks that the result is 1-100 runes.
func ValidateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if n := utf8.RuneCountInString(trimmed); n < 1 || n > 100 {
		return "", ErrNameLength
	}
	return trimmed, nil
}

// ValidateDescription checks that description is 1024 runes or fewer. An
// empty description is always valid.
func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > 1024 {
		return ErrDescriptionLength
	}
	return nil
}
