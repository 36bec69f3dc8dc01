// Package member defines the Member entity: a user bound to one hub with
// per-hub and per-channel tri-state permission settings.
package member

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hubline-chat/hubline-server/internal/permission"
)

// Sentinel errors for the member package.
var (
	ErrNotFound         = errors.New("member not found")
	ErrAlreadyMember    = errors.New("user is already a member")
	ErrNicknameLength   = errors.New("nickname must be between 1 and 32 characters")
)

// Member binds a user to a hub. Owner status is not stored here; it is
// derived by comparing UserID against Hub.Owner.
type Member struct {
	UserID             uuid.UUID
	HubID              uuid.UUID
	JoinedMS           int64
	Nickname           string
	HubPermissions     map[permission.HubPermission]permission.TriState
	ChannelPermissions map[uuid.UUID]map[permission.ChannelPermission]permission.TriState
}

// ChannelSettings returns the member's explicit tri-state settings for one
// channel, or nil if none have ever been set.
func (m *Member) ChannelSettings(channelID uuid.UUID) map[permission.ChannelPermission]permission.TriState {
	if m.ChannelPermissions == nil {
		return nil
	}
	return m.ChannelPermissions[channelID]
}

// SetHubPermission records an explicit hub-wide tri-state. Setting Unset
// removes the entry so it no longer shadows a future default.
func (m *Member) SetHubPermission(perm permission.HubPermission, state permission.TriState) {
	if m.HubPermissions == nil {
		if state == permission.Unset {
			return
		}
		m.HubPermissions = map[permission.HubPermission]permission.TriState{}
	}
	if state == permission.Unset {
		delete(m.HubPermissions, perm)
		return
	}
	m.HubPermissions[perm] = state
}

// SetChannelPermission records an explicit per-channel tri-state.
func (m *Member) SetChannelPermission(channelID uuid.UUID, perm permission.ChannelPermission, state permission.TriState) {
	if m.ChannelPermissions == nil {
		if state == permission.Unset {
			return
		}
		m.ChannelPermissions = map[uuid.UUID]map[permission.ChannelPermission]permission.TriState{}
	}
	settings := m.ChannelPermissions[channelID]
	if settings == nil {
		if state == permission.Unset {
			return
		}
		settings = map[permission.ChannelPermission]permission.TriState{}
		m.ChannelPermissions[channelID] = settings
	}
	if state == permission.Unset {
		delete(settings, perm)
		return
	}
	settings[perm] = state
}

// ValidateNickname trims whitespace and checks that a non-empty nickname is
// 1-32 runes. An empty string means "no nickname set" and is always valid.
func ValidateNickname(nickname string) (string, error) {
	trimmed := strings.TrimSpace(nickname)
	if trimmed == "" {
		return "", nil
	}
	if n := utf8.RuneCountInString(trimmed); n < 1 || n > 32 {
		return "", ErrNicknameLength
	}
	return trimmed, nil
}
