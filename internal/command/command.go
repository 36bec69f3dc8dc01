// Package command implements the session command handler (component F):
// the orchestrator that, for every client command, loads the hub snapshot
// (B), checks permissions (A), mutates the registry (D) or persists (B),
// emits the resulting events (E), and for SendMessage additionally hands
// the new message to the index (C).
package command

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hubline-chat/hubline-server/internal/apperr"
	"github.com/hubline-chat/hubline-server/internal/fanout"
	"github.com/hubline-chat/hubline-server/internal/hub"
	"github.com/hubline-chat/hubline-server/internal/index"
	"github.com/hubline-chat/hubline-server/internal/message"
	"github.com/hubline-chat/hubline-server/internal/permission"
	"github.com/hubline-chat/hubline-server/internal/registry"
	"github.com/hubline-chat/hubline-server/internal/session"
	"github.com/hubline-chat/hubline-server/internal/store"
)

// Store is an alias of the full store.Store interface the handler depends
// on, so callers can pass any store.Store directly.
type Store = store.Store

// Handler wires components A, B, C, D, and E together to service the
// commands a connected session may issue.
type Handler struct {
	store           store.Store
	reg             *registry.Registry
	fan             *fanout.Router
	idx             *index.Manager
	maxMessageBytes int
	log             zerolog.Logger
}

// New wires a Handler. maxMessageBytes <= 0 falls back to
// message.MaxContentBytes.
func New(st store.Store, reg *registry.Registry, fan *fanout.Router, idx *index.Manager, maxMessageBytes int, logger zerolog.Logger) *Handler {
	return &Handler{
		store:           st,
		reg:             reg,
		fan:             fan,
		idx:             idx,
		maxMessageBytes: maxMessageBytes,
		log:             logger.With().Str("component", "command").Logger(),
	}
}

func (h *Handler) loadHub(ctx context.Context, hubID uuid.UUID) (*hub.Hub, error) {
	snap, err := h.store.LoadHub(ctx, hubID)
	if err != nil {
		if err == hub.ErrNotFound {
			return nil, apperr.New(apperr.KindHubNotFound)
		}
		return nil, apperr.Wrap(apperr.KindDataError, string(apperr.DataRead), err)
	}
	return snap, nil
}

// facts extracts the permission.Facts for userID from a loaded hub
// snapshot. channelID may be uuid.Nil for a hub-level check.
func facts(h *hub.Hub, userID, channelID uuid.UUID) permission.Facts {
	f := permission.Facts{
		IsOwner:  h.IsOwner(userID),
		IsBanned: h.IsBanned(userID),
		IsMuted:  h.IsMuted(userID),
	}
	m := h.Member(userID)
	f.IsMember = m != nil
	if m != nil {
		f.HubSettings = m.HubPermissions
		if channelID != uuid.Nil {
			f.ChannelSettings = m.ChannelSettings(channelID)
		}
	}
	return f
}

// requireMember implements subscribe_hub's "permission = member of hub":
// no specific permission grant is needed, only active, unbanned membership.
func requireMember(f permission.Facts) error {
	if f.IsBanned {
		return apperr.New(apperr.KindBanned)
	}
	if !f.IsMember {
		return apperr.New(apperr.KindNotAMember)
	}
	return nil
}

func channelOf(h *hub.Hub, channelID uuid.UUID) error {
	if h.Channel(channelID) == nil {
		return apperr.New(apperr.KindChannelNotFound)
	}
	return nil
}

// SubscribeHub subscribes sess to hub-level events for hubID. Requires
// userID to be an unbanned member of hubID.
func (h *Handler) SubscribeHub(ctx context.Context, sess session.ID, userID, hubID uuid.UUID, sink session.Sink) error {
	snap, err := h.loadHub(ctx, hubID)
	if err != nil {
		return err
	}
	f := facts(snap, userID, uuid.Nil)
	if err := requireMember(f); err != nil {
		return err
	}
	h.reg.SubscribeHub(sess, userID, hubID, sink)
	return nil
}

// UnsubscribeHub is idempotent and requires no permission check: a session
// may always stop listening to something it may or may not be subscribed
// to.
func (h *Handler) UnsubscribeHub(sess session.ID, hubID uuid.UUID) {
	h.reg.UnsubscribeHub(sess, hubID)
}

// SubscribeChannel subscribes sess to channelID's events. Requires channel
// Read permission.
func (h *Handler) SubscribeChannel(ctx context.Context, sess session.ID, userID, hubID, channelID uuid.UUID, sink session.Sink) error {
	snap, err := h.loadHub(ctx, hubID)
	if err != nil {
		return err
	}
	if err := channelOf(snap, channelID); err != nil {
		return err
	}
	f := facts(snap, userID, channelID)
	if err := permission.EvaluateChannel(f, permission.ChannelRead); err != nil {
		return err
	}
	h.reg.SubscribeChannel(sess, userID, hubID, channelID, sink)
	return nil
}

// UnsubscribeChannel is idempotent and requires no permission check.
func (h *Handler) UnsubscribeChannel(sess session.ID, hubID, channelID uuid.UUID) {
	h.reg.UnsubscribeChannel(sess, hubID, channelID)
}

// Disconnect tears down every subscription sess holds. It is always
// permitted; a disconnecting session needs no hub lookup.
func (h *Handler) Disconnect(sess session.ID) {
	h.reg.Disconnect(sess)
}

// StartTyping emits a TypingStart event for channelID. Typing events
// require channel Write and are never persisted.
func (h *Handler) StartTyping(ctx context.Context, userID, hubID, channelID uuid.UUID) error {
	snap, err := h.loadHub(ctx, hubID)
	if err != nil {
		return err
	}
	if err := channelOf(snap, channelID); err != nil {
		return err
	}
	f := facts(snap, userID, channelID)
	if err := permission.EvaluateChannel(f, permission.ChannelWrite); err != nil {
		return err
	}
	h.fan.Publish(fanout.TypingStart(hubID, channelID, userID))
	return nil
}

// StopTyping emits a TypingStop event. Same permission rule as StartTyping.
func (h *Handler) StopTyping(ctx context.Context, userID, hubID, channelID uuid.UUID) error {
	snap, err := h.loadHub(ctx, hubID)
	if err != nil {
		return err
	}
	if err := channelOf(snap, channelID); err != nil {
		return err
	}
	f := facts(snap, userID, channelID)
	if err := permission.EvaluateChannel(f, permission.ChannelWrite); err != nil {
		return err
	}
	h.fan.Publish(fanout.TypingStop(hubID, channelID, userID))
	return nil
}

// SendMessage validates and persists content, fans out the resulting
// NewMessage event immediately (from this same call, preserving per-channel
// order per spec.md §5), and hands the message to the index. Send requires
// channel Write and an unmuted member; CheckSendMessage reports a mute as
// the distinct Muted error rather than the generic missing-Write error.
func (h *Handler) SendMessage(ctx context.Context, userID, hubID, channelID uuid.UUID, content string) (uuid.UUID, error) {
	snap, err := h.loadHub(ctx, hubID)
	if err != nil {
		return uuid.Nil, err
	}
	if err := channelOf(snap, channelID); err != nil {
		return uuid.Nil, err
	}
	f := facts(snap, userID, channelID)
	if err := permission.CheckSendMessage(f); err != nil {
		return uuid.Nil, err
	}

	trimmed, err := message.ValidateContent(content, h.maxMessageBytes)
	if err != nil {
		return uuid.Nil, translateValidation(err)
	}

	msg, err := h.store.AppendMessage(ctx, hubID, channelID, userID, trimmed)
	if err != nil {
		return uuid.Nil, apperr.Wrap(apperr.KindDataError, string(apperr.DataWrite), err)
	}

	h.fan.Publish(fanout.NewMessage(hubID, channelID, *msg))

	if err := h.idx.Add(ctx, hubID, channelID, *msg); err != nil {
		h.log.Error().Err(err).Stringer("hub_id", hubID).Stringer("channel_id", channelID).
			Stringer("message_id", msg.ID).Msg("failed to index message")
	}

	return msg.ID, nil
}

func translateValidation(err error) error {
	switch err {
	case message.ErrEmptyContent, message.ErrInvalidText:
		return apperr.New(apperr.KindInvalidText)
	case message.ErrContentTooBig:
		return apperr.New(apperr.KindTooBig)
	default:
		return apperr.New(apperr.KindInvalidText)
	}
}
