// Package index maintains a durable, searchable full-text index over each
// channel's messages, with batched commits and a crash-safe recovery log so
// no committed message is ever lost from the index across restarts.
package index

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hubline-chat/hubline-server/internal/apperr"
	"github.com/hubline-chat/hubline-server/internal/message"
	"github.com/hubline-chat/hubline-server/internal/store"
)

// DefaultCommitThreshold is the number of added documents after which an
// index is force-committed if no search has triggered an earlier commit.
const DefaultCommitThreshold = 10

// DefaultIndexBatchSize is the number of messages replayed into a single
// bleve batch at a time during startup recovery.
const DefaultIndexBatchSize = 100

type channelKey struct {
	HubID     uuid.UUID
	ChannelID uuid.UUID
}

// channelIndex holds all per-(hub,channel) index state. mu serializes
// access to the writer-side fields (batch, pendingCount, lastPendingID,
// recovery log); bleve's reader is lock-free across goroutines, so searches
// only take mu to flush a pending batch before querying.
type channelIndex struct {
	mu sync.Mutex

	idx     bleve.Index
	batch   *bleve.Batch
	logPath string

	pendingCount    int
	lastPendingID   uuid.UUID
	hasRecoveryLog  bool
	lastCommittedID uuid.UUID
}

// Manager owns every open channel index and lazily creates new ones on
// first use, per spec: "Indexes: lazily created on first write or first
// search for a (hub, channel)."
type Manager struct {
	mu              sync.RWMutex
	indexes         map[channelKey]*channelIndex
	dataDir         string
	commitThreshold int
	batchSize       int
	store           store.Store
	log             zerolog.Logger
}

// New creates an index manager rooted at dataDir. commitThreshold <= 0 is
// replaced with DefaultCommitThreshold. batchSize <= 0 is replaced with
// DefaultIndexBatchSize; it bounds how many messages a single replay batch
// holds, independent of commitThreshold, so recovering a channel with a
// large backlog never builds one unbounded bleve.Batch in memory.
func New(dataDir string, commitThreshold, batchSize int, st store.Store, logger zerolog.Logger) *Manager {
	if commitThreshold <= 0 {
		commitThreshold = DefaultCommitThreshold
	}
	if batchSize <= 0 {
		batchSize = DefaultIndexBatchSize
	}
	return &Manager{
		indexes:         map[channelKey]*channelIndex{},
		dataDir:         dataDir,
		commitThreshold: commitThreshold,
		batchSize:       batchSize,
		store:           st,
		log:             logger.With().Str("component", "index").Logger(),
	}
}

// Add indexes msg, force-committing once pendingCount reaches the commit
// threshold. On the very first add for a channel with no recovery log yet,
// the recovery log is written immediately so a crash before any later
// commit still leaves a valid replay starting point.
func (m *Manager) Add(ctx context.Context, hubID, channelID uuid.UUID, msg message.Message) error {
	ci, err := m.getOrOpen(ctx, hubID, channelID)
	if err != nil {
		return err
	}

	ci.mu.Lock()
	defer ci.mu.Unlock()

	if err := ci.batch.Index(msg.ID.String(), toDoc(msg)); err != nil {
		return apperr.Wrap(apperr.KindIndexError, string(apperr.IndexWriter), err)
	}
	ci.pendingCount++
	ci.lastPendingID = msg.ID

	if !ci.hasRecoveryLog {
		if err := writeRecoveryLog(ci.logPath, msg.ID); err != nil {
			return err
		}
		ci.hasRecoveryLog = true
		ci.lastCommittedID = msg.ID
	}

	if ci.pendingCount >= m.commitThreshold {
		return m.commitLocked(ci)
	}
	return nil
}

// Search commits any pending documents first so a search always observes
// every add that has already returned, then runs query against the
// content field and returns matching message ids, highest score first.
func (m *Manager) Search(ctx context.Context, hubID, channelID uuid.UUID, queryString string, limit int) ([]uuid.UUID, error) {
	ci, err := m.getOrOpen(ctx, hubID, channelID)
	if err != nil {
		return nil, err
	}

	ci.mu.Lock()
	if ci.pendingCount > 0 {
		if err := m.commitLocked(ci); err != nil {
			ci.mu.Unlock()
			return nil, err
		}
	}
	idx := ci.idx
	ci.mu.Unlock()

	if queryString == "" {
		return nil, apperr.Wrap(apperr.KindIndexError, string(apperr.IndexParse), fmt.Errorf("empty query"))
	}

	q := bleve.NewQueryStringQuery(queryString)
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	req.Fields = []string{"id"}

	result, err := idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindIndexError, string(apperr.IndexSearch), err)
	}

	ids := make([]uuid.UUID, 0, len(result.Hits))
	for _, hit := range result.Hits {
		raw, ok := hit.Fields["id"].(string)
		if !ok {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Shutdown flushes every open index's pending batch and closes it. A forced
// shutdown that skips this (process kill) is still safe: the next
// getOrOpen replays from the recovery log.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for key, ci := range m.indexes {
		ci.mu.Lock()
		if ci.pendingCount > 0 {
			if err := m.commitLocked(ci); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		if err := ci.idx.Close(); err != nil && firstErr == nil {
			firstErr = apperr.Wrap(apperr.KindIndexError, string(apperr.IndexWriter), err)
		}
		ci.mu.Unlock()
		delete(m.indexes, key)
	}
	return firstErr
}

// commitLocked applies ci's pending batch, updates the recovery log to the
// latest added id, and resets pendingCount. ci.mu must already be held.
func (m *Manager) commitLocked(ci *channelIndex) error {
	if err := ci.idx.Batch(ci.batch); err != nil {
		return apperr.Wrap(apperr.KindIndexError, string(apperr.IndexCommit), err)
	}
	ci.batch = ci.idx.NewBatch()

	if err := writeRecoveryLog(ci.logPath, ci.lastPendingID); err != nil {
		return err
	}
	ci.hasRecoveryLog = true
	ci.lastCommittedID = ci.lastPendingID
	ci.pendingCount = 0
	return nil
}

// getOrOpen returns the channel's index, opening and replaying it from disk
// on first use.
func (m *Manager) getOrOpen(ctx context.Context, hubID, channelID uuid.UUID) (*channelIndex, error) {
	key := channelKey{HubID: hubID, ChannelID: channelID}

	m.mu.RLock()
	ci, ok := m.indexes[key]
	m.mu.RUnlock()
	if ok {
		return ci, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if ci, ok := m.indexes[key]; ok {
		return ci, nil
	}

	ci, err := m.openOrCreate(ctx, hubID, channelID)
	if err != nil {
		return nil, err
	}
	m.indexes[key] = ci
	return ci, nil
}

func (m *Manager) openOrCreate(ctx context.Context, hubID, channelID uuid.UUID) (*channelIndex, error) {
	dir := channelDir(m.dataDir, hubID, channelID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperr.Wrap(apperr.KindDataError, string(apperr.DataDirectory), err)
	}

	idxPath := indexPath(m.dataDir, hubID, channelID)
	idx, err := bleve.Open(idxPath)
	if err != nil {
		idx, err = bleve.New(idxPath, buildMapping())
		if err != nil {
			return nil, apperr.Wrap(apperr.KindIndexError, string(apperr.IndexOpen), err)
		}
	}

	logPath := recoveryLogPath(m.dataDir, hubID, channelID)
	lastCommitted, hasLog, err := readRecoveryLog(logPath)
	if err != nil {
		return nil, err
	}

	ci := &channelIndex{
		idx:             idx,
		batch:           idx.NewBatch(),
		logPath:         logPath,
		hasRecoveryLog:  hasLog,
		lastCommittedID: lastCommitted,
	}

	if hasLog {
		if err := m.replay(ctx, hubID, channelID, ci); err != nil {
			return nil, err
		}
	}

	return ci, nil
}

// replay catches the index up with everything the store accepted after
// ci.lastCommittedID, deleting any stale copy of each id before re-adding
// it so a message that was already partially indexed before a crash is
// never duplicated. Messages are applied m.batchSize at a time, with the
// recovery log advanced after every chunk, so a crash partway through a
// large backlog resumes close to where it left off instead of redoing the
// whole replay.
func (m *Manager) replay(ctx context.Context, hubID, channelID uuid.UUID, ci *channelIndex) error {
	messages, err := m.store.MessagesAfter(ctx, hubID, channelID, ci.lastCommittedID)
	if err != nil {
		return apperr.Wrap(apperr.KindDataError, string(apperr.DataRead), err)
	}
	if len(messages) == 0 {
		return nil
	}

	for start := 0; start < len(messages); start += m.batchSize {
		end := min(start+m.batchSize, len(messages))
		for _, msg := range messages[start:end] {
			ci.batch.Delete(msg.ID.String())
			if err := ci.batch.Index(msg.ID.String(), toDoc(msg)); err != nil {
				return apperr.Wrap(apperr.KindIndexError, string(apperr.IndexWriter), err)
			}
			ci.lastPendingID = msg.ID
		}

		if err := ci.idx.Batch(ci.batch); err != nil {
			return apperr.Wrap(apperr.KindIndexError, string(apperr.IndexCommit), err)
		}
		ci.batch = ci.idx.NewBatch()

		if err := writeRecoveryLog(ci.logPath, ci.lastPendingID); err != nil {
			return err
		}
		ci.hasRecoveryLog = true
		ci.lastCommittedID = ci.lastPendingID
	}

	m.log.Info().
		Str("hub_id", hubID.String()).
		Str("channel_id", channelID.String()).
		Int("replayed", len(messages)).
		Msg("replayed messages into index on startup")
	return nil
}
