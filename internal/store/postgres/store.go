// Package postgres implements the hub/channel store adapter (component B)
// over PostgreSQL via pgx, grounded on the message and hub repository
// patterns used throughout the rest of this codebase: pgxpool transactions,
// RETURNING-based inserts, and goose-managed migrations.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/hubline-chat/hubline-server/internal/channel"
	"github.com/hubline-chat/hubline-server/internal/hub"
	"github.com/hubline-chat/hubline-server/internal/member"
	"github.com/hubline-chat/hubline-server/internal/message"
	"github.com/hubline-chat/hubline-server/internal/permission"
	pgutil "github.com/hubline-chat/hubline-server/internal/postgres"
)

func unixMS(t time.Time) int64 { return t.UnixMilli() }

// Store implements store.Store using PostgreSQL.
type Store struct {
	db  *pgxpool.Pool
	log zerolog.Logger
}

// New creates a new PostgreSQL-backed store adapter.
func New(db *pgxpool.Pool, logger zerolog.Logger) *Store {
	return &Store{db: db, log: logger}
}

// LoadHub returns a full hub snapshot: metadata, members with their
// permission overrides, channels, bans, and mutes.
func (s *Store) LoadHub(ctx context.Context, hubID uuid.UUID) (*hub.Hub, error) {
	row := s.db.QueryRow(ctx,
		"SELECT id, name, description, owner_id, created_at FROM hubs WHERE id = $1", hubID)

	h := &hub.Hub{
		Members:  map[uuid.UUID]*member.Member{},
		Channels: map[uuid.UUID]*channel.Channel{},
		Bans:     map[uuid.UUID]struct{}{},
		Mutes:    map[uuid.UUID]struct{}{},
	}
	var createdAt time.Time
	if err := row.Scan(&h.ID, &h.Name, &h.Description, &h.Owner, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, hub.ErrNotFound
		}
		return nil, fmt.Errorf("query hub: %w", err)
	}
	h.CreatedMS = unixMS(createdAt)

	if err := s.loadChannels(ctx, h); err != nil {
		return nil, err
	}
	if err := s.loadMembers(ctx, h); err != nil {
		return nil, err
	}
	if err := s.loadBansAndMutes(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *Store) loadChannels(ctx context.Context, h *hub.Hub) error {
	rows, err := s.db.Query(ctx,
		"SELECT id, hub_id, name, description, created_at FROM channels WHERE hub_id = $1", h.ID)
	if err != nil {
		return fmt.Errorf("query channels: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c channel.Channel
		var createdAt time.Time
		if err := rows.Scan(&c.ID, &c.HubID, &c.Name, &c.Description, &createdAt); err != nil {
			return fmt.Errorf("scan channel: %w", err)
		}
		c.CreatedMS = unixMS(createdAt)
		h.Channels[c.ID] = &c
	}
	return rows.Err()
}

func (s *Store) loadMembers(ctx context.Context, h *hub.Hub) error {
	rows, err := s.db.Query(ctx,
		"SELECT user_id, nickname, joined_at FROM members WHERE hub_id = $1", h.ID)
	if err != nil {
		return fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m member.Member
		var joinedAt time.Time
		if err := rows.Scan(&m.UserID, &m.Nickname, &joinedAt); err != nil {
			return fmt.Errorf("scan member: %w", err)
		}
		m.HubID = h.ID
		m.JoinedMS = unixMS(joinedAt)
		h.Members[m.UserID] = &m
	}
	if err := rows.Err(); err != nil {
		return err
	}

	hubPermRows, err := s.db.Query(ctx,
		"SELECT user_id, permission, state FROM member_hub_permissions WHERE hub_id = $1", h.ID)
	if err != nil {
		return fmt.Errorf("query member hub permissions: %w", err)
	}
	defer hubPermRows.Close()
	for hubPermRows.Next() {
		var userID uuid.UUID
		var perm string
		var state int16
		if err := hubPermRows.Scan(&userID, &perm, &state); err != nil {
			return fmt.Errorf("scan member hub permission: %w", err)
		}
		if m, ok := h.Members[userID]; ok {
			m.SetHubPermission(permission.HubPermission(perm), permission.TriState(state))
		}
	}
	if err := hubPermRows.Err(); err != nil {
		return err
	}

	chanPermRows, err := s.db.Query(ctx,
		"SELECT user_id, channel_id, permission, state FROM member_channel_permissions WHERE hub_id = $1", h.ID)
	if err != nil {
		return fmt.Errorf("query member channel permissions: %w", err)
	}
	defer chanPermRows.Close()
	for chanPermRows.Next() {
		var userID, channelID uuid.UUID
		var perm string
		var state int16
		if err := chanPermRows.Scan(&userID, &channelID, &perm, &state); err != nil {
			return fmt.Errorf("scan member channel permission: %w", err)
		}
		if m, ok := h.Members[userID]; ok {
			m.SetChannelPermission(channelID, permission.ChannelPermission(perm), permission.TriState(state))
		}
	}
	return chanPermRows.Err()
}

func (s *Store) loadBansAndMutes(ctx context.Context, h *hub.Hub) error {
	banRows, err := s.db.Query(ctx, "SELECT user_id FROM hub_bans WHERE hub_id = $1", h.ID)
	if err != nil {
		return fmt.Errorf("query bans: %w", err)
	}
	defer banRows.Close()
	for banRows.Next() {
		var userID uuid.UUID
		if err := banRows.Scan(&userID); err != nil {
			return fmt.Errorf("scan ban: %w", err)
		}
		h.Bans[userID] = struct{}{}
	}
	if err := banRows.Err(); err != nil {
		return err
	}

	muteRows, err := s.db.Query(ctx, "SELECT user_id FROM hub_mutes WHERE hub_id = $1", h.ID)
	if err != nil {
		return fmt.Errorf("query mutes: %w", err)
	}
	defer muteRows.Close()
	for muteRows.Next() {
		var userID uuid.UUID
		if err := muteRows.Scan(&userID); err != nil {
			return fmt.Errorf("scan mute: %w", err)
		}
		h.Mutes[userID] = struct{}{}
	}
	return muteRows.Err()
}

// AppendMessage assigns a time-ordered id (UUIDv7, so byte ordering matches
// creation order) and persists the message inside a transaction holding a
// per-channel advisory lock, serializing concurrent appends to the same
// channel while letting different channels proceed in parallel.
func (s *Store) AppendMessage(ctx context.Context, hubID, channelID, sender uuid.UUID, content string) (*message.Message, error) {
	var msg message.Message
	err := pgutil.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", channelID.String()); err != nil {
			return fmt.Errorf("acquire channel lock: %w", err)
		}

		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generate message id: %w", err)
		}

		var createdAt time.Time
		row := tx.QueryRow(ctx,
			`INSERT INTO messages (id, hub_id, channel_id, sender, content) VALUES ($1, $2, $3, $4, $5)
			 RETURNING created_at`, id, hubID, channelID, sender, content)
		if err := row.Scan(&createdAt); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}

		msg = message.Message{ID: id, ChannelID: channelID, Sender: sender, Content: content, CreatedMS: unixMS(createdAt)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// MessagesAfter returns messages newer than afterID, in creation order.
// Ordering by id rather than created_at alone is correct because message
// ids are UUIDv7 and therefore monotonically increasing with creation time.
func (s *Store) MessagesAfter(ctx context.Context, hubID, channelID, afterID uuid.UUID) ([]message.Message, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, channel_id, sender, content, created_at FROM messages
		 WHERE hub_id = $1 AND channel_id = $2 AND id > $3
		 ORDER BY id ASC`, hubID, channelID, afterID)
	if err != nil {
		return nil, fmt.Errorf("query messages after: %w", err)
	}
	defer rows.Close()

	var messages []message.Message
	for rows.Next() {
		var m message.Message
		var createdAt time.Time
		if err := rows.Scan(&m.ID, &m.ChannelID, &m.Sender, &m.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.CreatedMS = unixMS(createdAt)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// CreateHub persists a new hub owned by ownerID.
func (s *Store) CreateHub(ctx context.Context, name, description string, ownerID uuid.UUID) (*hub.Hub, error) {
	id := uuid.New()
	_, err := s.db.Exec(ctx,
		"INSERT INTO hubs (id, name, description, owner_id) VALUES ($1, $2, $3, $4)",
		id, name, description, ownerID)
	if err != nil {
		return nil, fmt.Errorf("insert hub: %w", err)
	}
	return s.LoadHub(ctx, id)
}

// CreateChannel persists a new channel within hubID.
func (s *Store) CreateChannel(ctx context.Context, hubID uuid.UUID, name, description string) (*channel.Channel, error) {
	id := uuid.New()
	var createdAt time.Time
	row := s.db.QueryRow(ctx,
		"INSERT INTO channels (id, hub_id, name, description) VALUES ($1, $2, $3, $4) RETURNING created_at",
		id, hubID, name, description)
	if err := row.Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("insert channel: %w", err)
	}
	return &channel.Channel{ID: id, HubID: hubID, Name: name, Description: description, CreatedMS: unixMS(createdAt)}, nil
}

// Join adds userID as a member of hubID.
func (s *Store) Join(ctx context.Context, hubID, userID uuid.UUID) error {
	var banned bool
	if err := s.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM hub_bans WHERE hub_id = $1 AND user_id = $2)", hubID, userID).Scan(&banned); err != nil {
		return fmt.Errorf("check ban: %w", err)
	}
	if banned {
		return hub.ErrNotFound
	}

	_, err := s.db.Exec(ctx, "INSERT INTO members (hub_id, user_id) VALUES ($1, $2)", hubID, userID)
	if err != nil {
		if pgutil.IsUniqueViolation(err) {
			return member.ErrAlreadyMember
		}
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

// Leave removes userID from hubID's membership.
func (s *Store) Leave(ctx context.Context, hubID, userID uuid.UUID) error {
	_, err := s.db.Exec(ctx, "DELETE FROM members WHERE hub_id = $1 AND user_id = $2", hubID, userID)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	return nil
}

// SetBan bans userID from hubID, removing any existing membership.
func (s *Store) SetBan(ctx context.Context, hubID, userID uuid.UUID) error {
	return pgutil.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM members WHERE hub_id = $1 AND user_id = $2", hubID, userID); err != nil {
			return fmt.Errorf("remove member before ban: %w", err)
		}
		_, err := tx.Exec(ctx,
			"INSERT INTO hub_bans (hub_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING", hubID, userID)
		if err != nil {
			return fmt.Errorf("insert ban: %w", err)
		}
		return nil
	})
}

// ClearBan lifts a ban, without restoring membership.
func (s *Store) ClearBan(ctx context.Context, hubID, userID uuid.UUID) error {
	_, err := s.db.Exec(ctx, "DELETE FROM hub_bans WHERE hub_id = $1 AND user_id = $2", hubID, userID)
	if err != nil {
		return fmt.Errorf("delete ban: %w", err)
	}
	return nil
}

// SetMute mutes userID in hubID.
func (s *Store) SetMute(ctx context.Context, hubID, userID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		"INSERT INTO hub_mutes (hub_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING", hubID, userID)
	if err != nil {
		return fmt.Errorf("insert mute: %w", err)
	}
	return nil
}

// ClearMute unmutes userID in hubID.
func (s *Store) ClearMute(ctx context.Context, hubID, userID uuid.UUID) error {
	_, err := s.db.Exec(ctx, "DELETE FROM hub_mutes WHERE hub_id = $1 AND user_id = $2", hubID, userID)
	if err != nil {
		return fmt.Errorf("delete mute: %w", err)
	}
	return nil
}

// SetMemberHubPermission records an explicit hub-wide tri-state for a member.
func (s *Store) SetMemberHubPermission(ctx context.Context, hubID, userID uuid.UUID, perm permission.HubPermission, state permission.TriState) error {
	if state == permission.Unset {
		_, err := s.db.Exec(ctx,
			"DELETE FROM member_hub_permissions WHERE hub_id = $1 AND user_id = $2 AND permission = $3",
			hubID, userID, string(perm))
		if err != nil {
			return fmt.Errorf("delete member hub permission: %w", err)
		}
		return nil
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO member_hub_permissions (hub_id, user_id, permission, state) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (hub_id, user_id, permission) DO UPDATE SET state = EXCLUDED.state`,
		hubID, userID, string(perm), int16(state))
	if err != nil {
		return fmt.Errorf("upsert member hub permission: %w", err)
	}
	return nil
}

// SetMemberChannelPermission records an explicit per-channel tri-state for a member.
func (s *Store) SetMemberChannelPermission(ctx context.Context, hubID, userID, channelID uuid.UUID, perm permission.ChannelPermission, state permission.TriState) error {
	if state == permission.Unset {
		_, err := s.db.Exec(ctx,
			"DELETE FROM member_channel_permissions WHERE hub_id = $1 AND user_id = $2 AND channel_id = $3 AND permission = $4",
			hubID, userID, channelID, string(perm))
		if err != nil {
			return fmt.Errorf("delete member channel permission: %w", err)
		}
		return nil
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO member_channel_permissions (hub_id, user_id, channel_id, permission, state)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (hub_id, user_id, channel_id, permission) DO UPDATE SET state = EXCLUDED.state`,
		hubID, userID, channelID, string(perm), int16(state))
	if err != nil {
		return fmt.Errorf("upsert member channel permission: %w", err)
	}
	return nil
}
