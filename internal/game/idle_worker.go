package game

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/notedrop/backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// StartIdleWorker evicts sessions that stopped receiving input. Deadlines come
// from the session_idle sorted set when redis is available; without it the
// worker scans the manager directly.
func StartIdleWorker(ctx context.Context, sm *SessionManager, rdb *redis.Client, cfg *config.Config) {
	if sm == nil || cfg == nil {
		log.Println("[IDLE] Manager or config missing; idle worker not started")
		return
	}

	interval := time.Duration(cfg.IdleWorkerPollInterval) * time.Second
	if interval <= 0 {
		interval = 15 * time.Second
	}

	log.Println("[IDLE] Idle worker started")
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[IDLE] Idle worker stopping")
				return
			case <-ticker.C:
				if rdb != nil {
					sweepIdleRedis(ctx, sm, rdb)
				} else {
					SweepIdle(sm, time.Now().Add(-sm.idleTimeout()))
				}
			}
		}
	}()
}

func sweepIdleRedis(ctx context.Context, sm *SessionManager, rdb *redis.Client) {
	now := time.Now()
	members, err := rdb.ZRangeByScore(ctx, IdleSetKey, &redis.ZRangeBy{Min: "-inf", Max: fmt.Sprintf("%d", now.Unix())}).Result()
	if err != nil {
		log.Printf("[IDLE] Failed to fetch idle sessions: %v", err)
		return
	}
	for _, id := range members {
		// Attempt to remove (race-safe across instances)
		if removed, _ := rdb.ZRem(ctx, IdleSetKey, id).Result(); removed == 0 {
			continue
		}
		s, err := sm.Get(id)
		if err != nil {
			continue // owned by another instance or already gone
		}
		// A command may have landed after the deadline was read.
		if now.Sub(s.LastActivity()) < sm.idleTimeout() {
			sm.touch(s)
			continue
		}
		expire(sm, s)
	}
}

// SweepIdle expires every session idle since cutoff and returns how many.
func SweepIdle(sm *SessionManager, cutoff time.Time) int {
	n := 0
	for _, id := range sm.IdleSince(cutoff) {
		s, err := sm.Get(id)
		if err != nil {
			continue
		}
		expire(sm, s)
		n++
	}
	return n
}

func expire(sm *SessionManager, s *Session) {
	log.Printf("[IDLE] Expiring session %s (idle since %s)", s.ID, s.LastActivity().Format(time.RFC3339))
	snap := s.Snapshot()
	ev := Event{
		Type:      EventSessionExpired,
		SessionID: s.ID,
		Score:     snap.Score,
		Phase:     snap.Phase,
		At:        time.Now(),
	}
	sm.Remove(s.ID)
	if err := sm.handleEvent(ev); err != nil {
		log.Printf("[IDLE] publish expiry failed: session=%s err=%v", s.ID, err)
	}
}
