// Package hub defines the Hub entity: a named container of channels and
// members, generalizing the single-server model into a multi-hub one.
package hub

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hubline-chat/hubline-server/internal/channel"
	"github.com/hubline-chat/hubline-server/internal/member"
)

// Sentinel errors for the hub package.
var (
	ErrNotFound          = errors.New("hub not found")
	ErrNameLength        = errors.New("hub name must be between 1 and 100 characters")
	ErrDescriptionLength = errors.New("hub description must be 1024 characters or fewer")
)

// Hub is a named container of channels and members.
type Hub struct {
	ID          uuid.UUID
	Name        string
	Description string
	Owner       uuid.UUID
	CreatedMS   int64

	Members                 map[uuid.UUID]*member.Member
	Channels                map[uuid.UUID]*channel.Channel
	DefaultPermissionGroups []string
	Bans                    map[uuid.UUID]struct{}
	Mutes                   map[uuid.UUID]struct{}
}

// IsOwner reports whether userID owns h.
func (h *Hub) IsOwner(userID uuid.UUID) bool { return h.Owner == userID }

// IsBanned reports whether userID is banned from h.
func (h *Hub) IsBanned(userID uuid.UUID) bool {
	_, banned := h.Bans[userID]
	return banned
}

// IsMuted reports whether userID is muted in h.
func (h *Hub) IsMuted(userID uuid.UUID) bool {
	_, muted := h.Mutes[userID]
	return muted
}

// Member returns the member record for userID, or nil if userID is not a
// member of h.
func (h *Hub) Member(userID uuid.UUID) *member.Member {
	return h.Members[userID]
}

// Channel returns the channel record for channelID, or nil if it does not
// belong to h.
func (h *Hub) Channel(channelID uuid.UUID) *channel.Channel {
	return h.Channels[channelID]
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
