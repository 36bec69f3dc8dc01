// Package cache wraps a store.Store with a Redis-backed LoadHub cache and
// cross-process invalidation, so repeated LoadHub calls for a hot hub don't
// all round-trip to Postgres.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hubline-chat/hubline-server/internal/channel"
	"github.com/hubline-chat/hubline-server/internal/hub"
	"github.com/hubline-chat/hubline-server/internal/message"
	"github.com/hubline-chat/hubline-server/internal/permission"
	"github.com/hubline-chat/hubline-server/internal/store"
)

const invalidateChannel = "hubline.cache.invalidate"

func hubKey(hubID uuid.UUID) string { return "hubline:hub:" + hubID.String() }

// Store decorates another store.Store, caching LoadHub results in Redis and
// publishing an invalidation message on the shared pub/sub channel whenever
// a mutation makes a cached snapshot stale. Any process subscribed via
// Listen sees the invalidation regardless of which process made the change.
type Store struct {
	inner store.Store
	rdb   *redis.Client
	ttl   time.Duration
	log   zerolog.Logger
}

// New wraps inner with a Redis cache. ttl bounds how long a cached hub
// snapshot is served before falling back to inner even without an explicit
// invalidation.
func New(inner store.Store, rdb *redis.Client, ttl time.Duration, logger zerolog.Logger) *Store {
	return &Store{inner: inner, rdb: rdb, ttl: ttl, log: logger}
}

// LoadHub returns the cached snapshot if present and unexpired, otherwise
// loads from inner and populates the cache.
func (s *Store) LoadHub(ctx context.Context, hubID uuid.UUID) (*hub.Hub, error) {
	cached, err := s.rdb.Get(ctx, hubKey(hubID)).Bytes()
	if err == nil {
		var h hub.Hub
		if jsonErr := json.Unmarshal(cached, &h); jsonErr == nil {
			return &h, nil
		}
		s.log.Warn().Str("hub_id", hubID.String()).Msg("discarding unparseable cached hub snapshot")
	} else if err != redis.Nil {
		s.log.Warn().Err(err).Str("hub_id", hubID.String()).Msg("hub cache read failed, falling back to store")
	}

	h, err := s.inner.LoadHub(ctx, hubID)
	if err != nil {
		return nil, err
	}

	s.store(ctx, h)
	return h, nil
}

func (s *Store) store(ctx context.Context, h *hub.Hub) {
	payload, err := json.Marshal(h)
	if err != nil {
		s.log.Warn().Err(err).Str("hub_id", h.ID.String()).Msg("failed to marshal hub snapshot for cache")
		return
	}
	if err := s.rdb.Set(ctx, hubKey(h.ID), payload, s.ttl).Err(); err != nil {
		s.log.Warn().Err(err).Str("hub_id", h.ID.String()).Msg("failed to populate hub cache")
	}
}

// invalidate drops the cached snapshot for hubID and notifies any other
// process listening on the invalidation channel.
func (s *Store) invalidate(ctx context.Context, hubID uuid.UUID) {
	if err := s.rdb.Del(ctx, hubKey(hubID)).Err(); err != nil {
		s.log.Warn().Err(err).Str("hub_id", hubID.String()).Msg("failed to delete cached hub snapshot")
	}
	if err := s.rdb.Publish(ctx, invalidateChannel, hubID.String()).Err(); err != nil {
		s.log.Warn().Err(err).Str("hub_id", hubID.String()).Msg("failed to publish cache invalidation")
	}
}

// Listen subscribes to the invalidation channel and invokes onInvalidate
// for every hub id published on it, including invalidations this process
// published itself. It blocks until ctx is cancelled or the subscription
// fails.
func (s *Store) Listen(ctx context.Context, onInvalidate func(hubID uuid.UUID)) error {
	sub := s.rdb.Subscribe(ctx, invalidateChannel)
	defer func() { _ = sub.Close() }()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			hubID, err := uuid.Parse(msg.Payload)
			if err != nil {
				s.log.Warn().Str("payload", msg.Payload).Msg("invalid hub id in cache invalidation message")
				continue
			}
			onInvalidate(hubID)
		}
	}
}

// AppendMessage delegates without touching the hub cache: message history
// is never embedded in a cached hub snapshot, so appends don't invalidate it.
func (s *Store) AppendMessage(ctx context.Context, hubID, channelID, sender uuid.UUID, content string) (*message.Message, error) {
	return s.inner.AppendMessage(ctx, hubID, channelID, sender, content)
}

// MessagesAfter delegates straight through; message history isn't cached.
func (s *Store) MessagesAfter(ctx context.Context, hubID, channelID, afterID uuid.UUID) ([]message.Message, error) {
	return s.inner.MessagesAfter(ctx, hubID, channelID, afterID)
}

// CreateHub delegates and pre-populates the cache with the new hub.
func (s *Store) CreateHub(ctx context.Context, name, description string, ownerID uuid.UUID) (*hub.Hub, error) {
	h, err := s.inner.CreateHub(ctx, name, description, ownerID)
	if err != nil {
		return nil, err
	}
	s.store(ctx, h)
	return h, nil
}

// CreateChannel delegates and invalidates the owning hub's cached snapshot.
func (s *Store) CreateChannel(ctx context.Context, hubID uuid.UUID, name, description string) (*channel.Channel, error) {
	c, err := s.inner.CreateChannel(ctx, hubID, name, description)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, hubID)
	return c, nil
}

// Join delegates and invalidates hubID's cached snapshot on success.
func (s *Store) Join(ctx context.Context, hubID, userID uuid.UUID) error {
	if err := s.inner.Join(ctx, hubID, userID); err != nil {
		return err
	}
	s.invalidate(ctx, hubID)
	return nil
}

// Leave delegates and invalidates hubID's cached snapshot on success.
func (s *Store) Leave(ctx context.Context, hubID, userID uuid.UUID) error {
	if err := s.inner.Leave(ctx, hubID, userID); err != nil {
		return err
	}
	s.invalidate(ctx, hubID)
	return nil
}

// SetBan delegates and invalidates hubID's cached snapshot on success.
func (s *Store) SetBan(ctx context.Context, hubID, userID uuid.UUID) error {
	if err := s.inner.SetBan(ctx, hubID, userID); err != nil {
		return err
	}
	s.invalidate(ctx, hubID)
	return nil
}

// ClearBan delegates and invalidates hubID's cached snapshot on success.
func (s *Store) ClearBan(ctx context.Context, hubID, userID uuid.UUID) error {
	if err := s.inner.ClearBan(ctx, hubID, userID); err != nil {
		return err
	}
	s.invalidate(ctx, hubID)
	return nil
}

// SetMute delegates and invalidates hubID's cached snapshot on success.
func (s *Store) SetMute(ctx context.Context, hubID, userID uuid.UUID) error {
	if err := s.inner.SetMute(ctx, hubID, userID); err != nil {
		return err
	}
	s.invalidate(ctx, hubID)
	return nil
}

// ClearMute delegates and invalidates hubID's cached snapshot on success.
func (s *Store) ClearMute(ctx context.Context, hubID, userID uuid.UUID) error {
	if err := s.inner.ClearMute(ctx, hubID, userID); err != nil {
		return err
	}
	s.invalidate(ctx, hubID)
	return nil
}

// SetMemberHubPermission delegates and invalidates hubID's cached snapshot on success.
func (s *Store) SetMemberHubPermission(ctx context.Context, hubID, userID uuid.UUID, perm permission.HubPermission, state permission.TriState) error {
	if err := s.inner.SetMemberHubPermission(ctx, hubID, userID, perm, state); err != nil {
		return err
	}
	s.invalidate(ctx, hubID)
	return nil
}

// SetMemberChannelPermission delegates and invalidates hubID's cached snapshot on success.
func (s *Store) SetMemberChannelPermission(ctx context.Context, hubID, userID, channelID uuid.UUID, perm permission.ChannelPermission, state permission.TriState) error {
	if err := s.inner.SetMemberChannelPermission(ctx, hubID, userID, channelID, perm, state); err != nil {
		return err
	}
	s.invalidate(ctx, hubID)
	return nil
}
