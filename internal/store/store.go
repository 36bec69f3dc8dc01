// Package store defines the hub/channel store adapter: the persistence
// contract the core depends on (component B). The core treats this as an
// interface only; internal/store/postgres provides the concrete
// implementation that backs it in a running server.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/hubline-chat/hubline-server/internal/channel"
	"github.com/hubline-chat/hubline-server/internal/hub"
	"github.com/hubline-chat/hubline-server/internal/message"
	"github.com/hubline-chat/hubline-server/internal/permission"
)

// Store is the persistence contract for hubs, channels, members, and
// messages. append_message on the same channel is serialized by the
// implementation; concurrent appends to different channels may proceed in
// parallel.
type Store interface {
	// LoadHub returns a full hub snapshot, including its members and
	// channels, or hub.ErrNotFound.
	LoadHub(ctx context.Context, hubID uuid.UUID) (*hub.Hub, error)

	// AppendMessage assigns id and created_ms atomically and durably
	// persists the message before returning.
	AppendMessage(ctx context.Context, hubID, channelID, sender uuid.UUID, content string) (*message.Message, error)

	// MessagesAfter returns messages in creation order, exclusive of
	// afterID. A zero afterID means "from the beginning of the channel".
	MessagesAfter(ctx context.Context, hubID, channelID, afterID uuid.UUID) ([]message.Message, error)

	// CreateHub persists a new hub owned by ownerID.
	CreateHub(ctx context.Context, name, description string, ownerID uuid.UUID) (*hub.Hub, error)

	// CreateChannel persists a new channel within hubID.
	CreateChannel(ctx context.Context, hubID uuid.UUID, name, description string) (*channel.Channel, error)

	// Join adds userID as a member of hubID. Returns member.ErrAlreadyMember
	// if already a member, or hub.ErrNotFound if banned.
	Join(ctx context.Context, hubID, userID uuid.UUID) error

	// Leave removes userID from hubID's membership.
	Leave(ctx context.Context, hubID, userID uuid.UUID) error

	// SetBan bans userID from hubID, removing membership if present.
	SetBan(ctx context.Context, hubID, userID uuid.UUID) error

	// ClearBan lifts a ban, without restoring membership.
	ClearBan(ctx context.Context, hubID, userID uuid.UUID) error

	// SetMute mutes userID in hubID.
	SetMute(ctx context.Context, hubID, userID uuid.UUID) error

	// ClearMute unmutes userID in hubID.
	ClearMute(ctx context.Context, hubID, userID uuid.UUID) error

	// SetMemberHubPermission records an explicit hub-wide tri-state for a
	// member. permission.Unset removes any existing override.
	SetMemberHubPermission(ctx context.Context, hubID, userID uuid.UUID, perm permission.HubPermission, state permission.TriState) error

	// SetMemberChannelPermission records an explicit per-channel tri-state
	// for a member. permission.Unset removes any existing override.
	SetMemberChannelPermission(ctx context.Context, hubID, userID, channelID uuid.UUID, perm permission.ChannelPermission, state permission.TriState) error
}
