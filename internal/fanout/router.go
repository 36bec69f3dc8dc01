package fanout

import (
	"github.com/rs/zerolog"

	"github.com/hubline-chat/hubline-server/internal/registry"
	"github.com/hubline-chat/hubline-server/internal/session"
)

// Router fans events out to the sessions subscribed to the hub or channel
// they concern. Delivery is best-effort and at-most-once: a full or closed
// sink only drops the event for that one session, never for the others.
type Router struct {
	reg *registry.Registry
	log zerolog.Logger
}

func New(reg *registry.Registry, logger zerolog.Logger) *Router {
	return &Router{reg: reg, log: logger.With().Str("component", "fanout").Logger()}
}

// Publish delivers event to every current subscriber of the hub or channel
// it names. It takes a read lock on the registry only long enough to copy
// out the subscriber sinks; the sends themselves happen afterward, so a
// slow subscriber can never stall the registry or other subscribers.
//
// For NewMessage, the caller is responsible for calling Publish immediately
// after the message was durably appended, from the same goroutine that
// appended it — that ordering is what gives a channel's NewMessage events
// their in-order delivery guarantee. Typing and hub-update events carry no
// such guarantee.
func (r *Router) Publish(event Event) {
	var subs map[session.ID]session.Sink
	switch event.Type {
	case EventNewMessage, EventTypingStart, EventTypingStop:
		subs = r.reg.ChannelSubscribers(event.HubID, event.ChannelID)
	case EventHubUpdated:
		subs = r.reg.HubSubscribers(event.HubID)
	default:
		r.log.Warn().Str("type", string(event.Type)).Msg("dropping event of unknown type")
		return
	}

	for id, sink := range subs {
		if !sink.Send(event) {
			r.log.Debug().Stringer("session", id).Str("type", string(event.Type)).
				Msg("dropped event: sink full or closed")
		}
	}
}
