package game

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/notedrop/backend/internal/config"
	"github.com/notedrop/backend/internal/models"
	"github.com/redis/go-redis/v9"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many active sessions")
)

// IdleSetKey is the redis sorted set of session ids scored by idle deadline.
const IdleSetKey = "session_idle"

// SessionManager owns all live sessions and their frame runners.
type SessionManager struct {
	sessions map[string]*managedSession
	stages   []Stage
	rdb      *redis.Client  // snapshots and idle deadlines; optional
	db       *sqlx.DB       // run audit log; optional
	config   *config.Config // may be nil in tests
	sink     EventSink
	onFrame  func(Snapshot)
	rng      func() RandomSource
	clock    Clock
	mu       sync.RWMutex
}

type managedSession struct {
	session *Session
	ctx     context.Context
	cancel  context.CancelFunc
}

// SessionInfo is the admin listing row for a live session.
type SessionInfo struct {
	ID           string    `json:"id"`
	Phase        Phase     `json:"phase"`
	Score        int       `json:"score"`
	StageIndex   int       `json:"stage_index"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

var (
	// Global session manager instance
	Manager *SessionManager
)

// InitializeManager sets up the global session manager.
func InitializeManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config, stages []Stage) {
	Manager = NewSessionManager(db, rdb, cfg, stages)
}

// NewSessionManager creates an empty registry. db, rdb and cfg may be nil.
func NewSessionManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config, stages []Stage) *SessionManager {
	if stages == nil {
		stages = DefaultStages()
	}
	return &SessionManager{
		sessions: make(map[string]*managedSession),
		stages:   stages,
		rdb:      rdb,
		db:       db,
		config:   cfg,
		rng:      DefaultRNG,
		clock:    SystemClock(),
	}
}

// SetEventSink sets where session events go. Call before creating sessions.
func (sm *SessionManager) SetEventSink(sink EventSink) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sink = sink
}

// SetFrameHandler sets the receiver of every ticked frame.
func (sm *SessionManager) SetFrameHandler(fn func(Snapshot)) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.onFrame = fn
}

// Stages returns the stage table new sessions use.
func (sm *SessionManager) Stages() []Stage {
	return sm.stages
}

// generateToken generates a secure random token
func generateToken(length int) string {
	bytes := make([]byte, length)
	if _, err := randRead(bytes); err != nil {
		log.Panicf("[SESSION] random source failed: %v", err)
	}
	return hex.EncodeToString(bytes)
}

var randRead = rand.Read

func generateSessionID() string {
	return "sess_" + generateToken(8)
}

// CreateSession registers a new session. A non-nil stageIndex starts that
// stage immediately; otherwise the session opens on the stage list.
func (sm *SessionManager) CreateSession(stageIndex *int) (*Session, error) {
	id := generateSessionID()

	sm.mu.Lock()
	if sm.config != nil && sm.config.MaxSessions > 0 && len(sm.sessions) >= sm.config.MaxSessions {
		sm.mu.Unlock()
		return nil, ErrTooManySessions
	}

	s := NewSession(id, SessionOptions{
		Stages: sm.stages,
		Clock:  sm.clock,
		RNG:    sm.rng(),
		Sink:   EventSinkFunc(func(ev Event) error { return sm.handleEvent(ev) }),
	})
	ctx, cancel := context.WithCancel(context.Background())
	sm.sessions[id] = &managedSession{session: s, ctx: ctx, cancel: cancel}
	sm.mu.Unlock()

	log.Printf("[SESSION] created %s", id)

	if stageIndex != nil {
		if err := s.SelectStage(*stageIndex); err != nil {
			sm.Remove(id)
			return nil, err
		}
		sm.ensureRunner(id)
	}
	sm.touch(s)
	return s, nil
}

// Get returns a live session.
func (sm *SessionManager) Get(id string) (*Session, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	m, ok := sm.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return m.session, nil
}

// Drop forwards a drop and reports whether it was accepted.
func (sm *SessionManager) Drop(id string, x float64) (bool, error) {
	s, err := sm.Get(id)
	if err != nil {
		return false, err
	}
	ok := s.DropAt(x)
	if ok {
		sm.touch(s)
	}
	return ok, nil
}

// Restart replays the session's stage, or free play without one.
func (sm *SessionManager) Restart(id string) error {
	s, err := sm.Get(id)
	if err != nil {
		return err
	}
	s.Restart()
	sm.ensureRunner(id)
	sm.touch(s)
	return nil
}

// SelectStage starts stage index on the session.
func (sm *SessionManager) SelectStage(id string, index int) error {
	s, err := sm.Get(id)
	if err != nil {
		return err
	}
	if err := s.SelectStage(index); err != nil {
		return err
	}
	sm.ensureRunner(id)
	sm.touch(s)
	return nil
}

// NextStage advances a cleared session and reports whether a stage started.
func (sm *SessionManager) NextStage(id string) (bool, error) {
	s, err := sm.Get(id)
	if err != nil {
		return false, err
	}
	started := s.NextStage()
	if started {
		sm.ensureRunner(id)
	}
	sm.touch(s)
	return started, nil
}

// OpenStageSelect returns the session to the stage list.
func (sm *SessionManager) OpenStageSelect(id string) error {
	s, err := sm.Get(id)
	if err != nil {
		return err
	}
	s.OpenStageSelect()
	sm.touch(s)
	return nil
}

// Remove stops and forgets a session.
func (sm *SessionManager) Remove(id string) bool {
	sm.mu.Lock()
	m, ok := sm.sessions[id]
	if ok {
		delete(sm.sessions, id)
	}
	sm.mu.Unlock()
	if !ok {
		return false
	}
	m.cancel()

	if sm.rdb != nil {
		ctx := context.Background()
		sm.rdb.ZRem(ctx, IdleSetKey, id)
		sm.rdb.Del(ctx, snapshotKey(id))
	}
	log.Printf("[SESSION] removed %s", id)
	return true
}

// Count returns the number of live sessions.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// List returns live sessions, newest first.
func (sm *SessionManager) List() []SessionInfo {
	sm.mu.RLock()
	out := make([]SessionInfo, 0, len(sm.sessions))
	for _, m := range sm.sessions {
		s := m.session
		out = append(out, SessionInfo{
			ID:           s.ID,
			Phase:        s.Phase(),
			Score:        s.Score(),
			StageIndex:   s.StageIndex(),
			CreatedAt:    s.CreatedAt,
			LastActivity: s.LastActivity(),
		})
	}
	sm.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// IdleSince returns sessions whose last activity is at or before cutoff.
func (sm *SessionManager) IdleSince(cutoff time.Time) []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	var ids []string
	for id, m := range sm.sessions {
		if !m.session.LastActivity().After(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids
}

// ensureRunner starts the frame loop if the session is Playing without one.
func (sm *SessionManager) ensureRunner(id string) {
	sm.mu.RLock()
	m, ok := sm.sessions[id]
	sm.mu.RUnlock()
	if !ok || !m.session.claimRunner() {
		return
	}
	go m.session.Run(m.ctx, FrameInterval, sm.frame)
}

func (sm *SessionManager) frame(snap Snapshot) {
	sm.mu.RLock()
	fn := sm.onFrame
	sm.mu.RUnlock()
	if fn != nil {
		fn(snap)
	}
	if snap.Phase.Terminal() {
		if err := sm.saveSnapshot(snap); err != nil {
			log.Printf("[REDIS] snapshot save failed for %s: %v", snap.SessionID, err)
		}
	}
}

// handleEvent records finished runs and forwards to the configured sink.
func (sm *SessionManager) handleEvent(ev Event) error {
	if ev.Type == EventGameOver || ev.Type == EventStageComplete {
		sm.recordRun(ev)
	}
	sm.mu.RLock()
	sink := sm.sink
	sm.mu.RUnlock()
	if sink == nil {
		return nil
	}
	return sink.Publish(ev)
}

// touch pushes the session's idle deadline and snapshot to redis.
func (sm *SessionManager) touch(s *Session) {
	if sm.rdb == nil {
		return
	}
	ctx := context.Background()
	deadline := s.LastActivity().Add(sm.idleTimeout())
	if err := sm.rdb.ZAdd(ctx, IdleSetKey, redis.Z{Score: float64(deadline.Unix()), Member: s.ID}).Err(); err != nil {
		log.Printf("[REDIS] idle deadline update failed for %s: %v", s.ID, err)
	}
	if err := sm.saveSnapshot(s.Snapshot()); err != nil {
		log.Printf("[REDIS] snapshot save failed for %s: %v", s.ID, err)
	}
}

func (sm *SessionManager) idleTimeout() time.Duration {
	if sm.config == nil || sm.config.IdleTimeoutSeconds <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(sm.config.IdleTimeoutSeconds) * time.Second
}

func (sm *SessionManager) sessionTTL() time.Duration {
	if sm.config == nil || sm.config.SessionTimeoutMin <= 0 {
		return time.Hour
	}
	return time.Duration(sm.config.SessionTimeoutMin) * time.Minute
}

func snapshotKey(id string) string {
	return "session:" + id + ":snapshot"
}

// saveSnapshot stores the latest frame for dashboards. Sessions are never
// restored from it.
func (sm *SessionManager) saveSnapshot(snap Snapshot) error {
	if sm.rdb == nil {
		return nil
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return sm.rdb.SetEx(context.Background(), snapshotKey(snap.SessionID), data, sm.sessionTTL()).Err()
}

// LoadSnapshot reads the last stored frame of a session.
func (sm *SessionManager) LoadSnapshot(ctx context.Context, id string) (*Snapshot, error) {
	if sm.rdb == nil {
		return nil, errors.New("no redis client")
	}
	data, err := sm.rdb.Get(ctx, snapshotKey(id)).Bytes()
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// recordRun writes the finished run to the audit table.
func (sm *SessionManager) recordRun(ev Event) {
	if sm.db == nil {
		return
	}
	s, err := sm.Get(ev.SessionID)
	if err != nil {
		return
	}
	snap := s.Snapshot()

	var stage sql.NullInt64
	if snap.StageIndex != nil {
		stage = sql.NullInt64{Int64: int64(*snap.StageIndex), Valid: true}
	}
	outcome := "game_over"
	if ev.Type == EventStageComplete {
		outcome = "stage_complete"
	}

	_, err = sm.db.Exec(
		`INSERT INTO runs (session_id, stage_index, stage_title, outcome, score, collected, target, started_at, ended_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		ev.SessionID, stage, snap.StageTitle, outcome, ev.Score, snap.Progress.Done, snap.Progress.Total, s.CreatedAt, ev.At,
	)
	if err != nil {
		log.Printf("[DB] Failed to record run for session %s: %v", ev.SessionID, err)
	}
}

// RecentRuns returns the newest audit rows.
func (sm *SessionManager) RecentRuns(limit, offset int) ([]models.Run, error) {
	if sm.db == nil {
		return []models.Run{}, nil
	}
	var runs []models.Run
	err := sm.db.Select(&runs, `
		SELECT id, session_id, stage_index, stage_title, outcome, score, collected, target, started_at, ended_at
		FROM runs
		ORDER BY ended_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return runs, err
}
