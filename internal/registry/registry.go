// Package registry implements the subscription registry: the set of
// sessions listening for events on each hub and channel, and the reverse
// index used to tear a session's subscriptions down atomically on
// disconnect.
//
// Permission checks happen one layer up, in the command handler; this
// package only ever records or removes edges it is told to.
package registry

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hubline-chat/hubline-server/internal/session"
)

type channelKey struct {
	HubID     uuid.UUID
	ChannelID uuid.UUID
}

// subscriberSet is the set<session> value of one hub_subs or channel_subs
// entry. Its own lock is the "per-entry" lock referred to by the registry's
// locking discipline: top-level before per-entry, never the reverse.
type subscriberSet struct {
	mu       sync.RWMutex
	sessions map[session.ID]session.Sink
}

func newSubscriberSet() *subscriberSet {
	return &subscriberSet{sessions: map[session.ID]session.Sink{}}
}

func (s *subscriberSet) add(id session.ID, sink session.Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = sink
}

func (s *subscriberSet) remove(id session.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// snapshot copies the current sinks out from under the lock so a caller can
// fan out to them without holding it.
func (s *subscriberSet) snapshot() map[session.ID]session.Sink {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[session.ID]session.Sink, len(s.sessions))
	for id, sink := range s.sessions {
		out[id] = sink
	}
	return out
}

// sessionEdges is the reverse-index value for one session: every hub and
// channel it is currently subscribed to, so disconnect can unwind them all.
type sessionEdges struct {
	mu       sync.RWMutex
	hubs     map[uuid.UUID]struct{}
	channels map[channelKey]struct{}
}

func newSessionEdges() *sessionEdges {
	return &sessionEdges{hubs: map[uuid.UUID]struct{}{}, channels: map[channelKey]struct{}{}}
}

// Registry holds the three synchronized maps: channel_subs, hub_subs, and
// session_index. mu is the top-level lock; it guards only the existence of
// entries in the three maps, never the contents of a subscriberSet or
// sessionEdges value once found.
type Registry struct {
	mu sync.RWMutex

	channelSubs map[channelKey]*subscriberSet
	hubSubs     map[uuid.UUID]*subscriberSet
	sessionIdx  map[session.ID]*sessionEdges

	log zerolog.Logger
}

func New(logger zerolog.Logger) *Registry {
	return &Registry{
		channelSubs: map[channelKey]*subscriberSet{},
		hubSubs:     map[uuid.UUID]*subscriberSet{},
		sessionIdx:  map[session.ID]*sessionEdges{},
		log:         logger.With().Str("component", "registry").Logger(),
	}
}

// SubscribeHub adds the forward edge (hub_subs) and reverse edge
// (session_index) for sess. The caller is responsible for having already
// checked that user_id is a member of hub_id; user_id is carried through
// only for logging.
func (r *Registry) SubscribeHub(sess session.ID, userID, hubID uuid.UUID, sink session.Sink) {
	r.getOrCreateHubSet(hubID).add(sess, sink)

	edges := r.getOrCreateSessionEdges(sess)
	edges.mu.Lock()
	edges.hubs[hubID] = struct{}{}
	edges.mu.Unlock()

	r.log.Debug().Stringer("session", uuid.UUID(sess)).Stringer("user_id", userID).
		Stringer("hub_id", hubID).Msg("subscribed to hub")
}

// UnsubscribeHub removes both edges. Missing edges are silently tolerated.
func (r *Registry) UnsubscribeHub(sess session.ID, hubID uuid.UUID) {
	r.mu.RLock()
	set, hasSet := r.hubSubs[hubID]
	edges, hasEdges := r.sessionIdx[sess]
	r.mu.RUnlock()

	if hasSet {
		set.remove(sess)
	}
	if hasEdges {
		edges.mu.Lock()
		delete(edges.hubs, hubID)
		edges.mu.Unlock()
	}
}

// SubscribeChannel adds the forward edge (channel_subs) and reverse edge
// (session_index) for sess. The caller is responsible for having already
// checked channel Read permission.
func (r *Registry) SubscribeChannel(sess session.ID, userID, hubID, channelID uuid.UUID, sink session.Sink) {
	key := channelKey{HubID: hubID, ChannelID: channelID}
	r.getOrCreateChannelSet(key).add(sess, sink)

	edges := r.getOrCreateSessionEdges(sess)
	edges.mu.Lock()
	edges.channels[key] = struct{}{}
	edges.mu.Unlock()

	r.log.Debug().Stringer("session", uuid.UUID(sess)).Stringer("user_id", userID).
		Stringer("hub_id", hubID).Stringer("channel_id", channelID).Msg("subscribed to channel")
}

// UnsubscribeChannel removes both edges. Missing edges are silently
// tolerated.
func (r *Registry) UnsubscribeChannel(sess session.ID, hubID, channelID uuid.UUID) {
	key := channelKey{HubID: hubID, ChannelID: channelID}

	r.mu.RLock()
	set, hasSet := r.channelSubs[key]
	edges, hasEdges := r.sessionIdx[sess]
	r.mu.RUnlock()

	if hasSet {
		set.remove(sess)
	}
	if hasEdges {
		edges.mu.Lock()
		delete(edges.channels, key)
		edges.mu.Unlock()
	}
}

// Disconnect atomically removes every edge sess participates in from all
// three maps. It takes the top-level write lock once, then removes sess
// from each per-entry set sequentially under that same lock, per the
// registry's locking discipline — never the reverse order.
func (r *Registry) Disconnect(sess session.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	edges, ok := r.sessionIdx[sess]
	if !ok {
		return
	}

	edges.mu.RLock()
	hubs := make([]uuid.UUID, 0, len(edges.hubs))
	for h := range edges.hubs {
		hubs = append(hubs, h)
	}
	channels := make([]channelKey, 0, len(edges.channels))
	for c := range edges.channels {
		channels = append(channels, c)
	}
	edges.mu.RUnlock()

	for _, h := range hubs {
		if set, ok := r.hubSubs[h]; ok {
			set.remove(sess)
		}
	}
	for _, c := range channels {
		if set, ok := r.channelSubs[c]; ok {
			set.remove(sess)
		}
	}
	delete(r.sessionIdx, sess)

	r.log.Debug().Stringer("session", uuid.UUID(sess)).Msg("disconnected")
}

// ChannelSubscribers returns a snapshot of the sinks subscribed to
// (hub_id, channel_id). The caller must not rely on the map staying in
// sync with the registry after this call returns.
func (r *Registry) ChannelSubscribers(hubID, channelID uuid.UUID) map[session.ID]session.Sink {
	r.mu.RLock()
	set, ok := r.channelSubs[channelKey{HubID: hubID, ChannelID: channelID}]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	return set.snapshot()
}

// HubSubscribers returns a snapshot of the sinks subscribed to hub_id.
func (r *Registry) HubSubscribers(hubID uuid.UUID) map[session.ID]session.Sink {
	r.mu.RLock()
	set, ok := r.hubSubs[hubID]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	return set.snapshot()
}

func (r *Registry) getOrCreateHubSet(hubID uuid.UUID) *subscriberSet {
	r.mu.RLock()
	set, ok := r.hubSubs[hubID]
	r.mu.RUnlock()
	if ok {
		return set
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if set, ok := r.hubSubs[hubID]; ok {
		return set
	}
	set = newSubscriberSet()
	r.hubSubs[hubID] = set
	return set
}

func (r *Registry) getOrCreateChannelSet(key channelKey) *subscriberSet {
	r.mu.RLock()
	set, ok := r.channelSubs[key]
	r.mu.RUnlock()
	if ok {
		return set
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if set, ok := r.channelSubs[key]; ok {
		return set
	}
	set = newSubscriberSet()
	r.channelSubs[key] = set
	return set
}

func (r *Registry) getOrCreateSessionEdges(sess session.ID) *sessionEdges {
	r.mu.RLock()
	edges, ok := r.sessionIdx[sess]
	r.mu.RUnlock()
	if ok {
		return edges
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if edges, ok := r.sessionIdx[sess]; ok {
		return edges
	}
	edges = newSessionEdges()
	r.sessionIdx[sess] = edges
	return edges
}
