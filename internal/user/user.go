// Package user defines the User entity and its validation rules. Accounts,
// OAuth login, and request authentication are external collaborators; this
// package only holds the shape the core reads and the rules it enforces
// when a username or bio is set.
package user

import (
	"errors"
	"regexp"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Sentinel errors for the user package.
var (
	ErrNotFound        = errors.New("user not found")
	ErrInvalidUsername = errors.New("username must be 1-31 characters from [A-Za-z0-9 ._,-]")
	ErrBioTooLong      = errors.New("bio must be 512 characters or fewer")
)

const maxBioRunes = 512

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9 ._,-]{1,31}$`)

// User is a registered account, independent of any particular hub.
type User struct {
	ID        uuid.UUID
	Username  string
	CreatedMS int64
	Bio       string
	InHubs    []uuid.UUID
}

// ValidateUsername checks that username matches the printable username
// pattern [A-Za-z0-9 ._,-]{1,31}.
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

// ValidateBio checks that bio does not exceed maxBioRunes runes. An empty
// bio is always valid.
func ValidateBio(bio string) error {
	if utf8.RuneCountInString(bio) > maxBioRunes {
		return ErrBioTooLong
	}
	return nil
}
