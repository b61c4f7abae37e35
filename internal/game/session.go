package game

import (
	"context"
	"log"
	"sync"
	"time"
)

// SessionOptions wires a session's collaborators. Zero fields get defaults.
type SessionOptions struct {
	Stages []Stage
	Clock  Clock
	RNG    RandomSource
	Sink   EventSink
}

// TokenView is the per-token shape handed to renderers.
type TokenView struct {
	ID      int     `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Radius  float64 `json:"radius"`
	TypeID  TypeID  `json:"type_id"`
	Opacity float64 `json:"opacity"`
}

// Snapshot is everything a renderer needs for one frame.
type Snapshot struct {
	SessionID  string          `json:"session_id"`
	Phase      Phase           `json:"phase"`
	Score      int             `json:"score"`
	StageIndex *int            `json:"stage_index"`
	StageTitle string          `json:"stage_title"`
	NextType   *TypeID         `json:"next_type"`
	NextName   string          `json:"next_name,omitempty"`
	Arena      Arena           `json:"arena"`
	Tokens     []TokenView     `json:"tokens"`
	Progress   ProgressSummary `json:"progress"`
}

// Session is one player's run: the phase machine around a World.
type Session struct {
	ID        string
	CreatedAt time.Time

	stages     []Stage
	stageIndex int // -1 when no stage is active
	score      int
	phase      Phase
	next       TypeID
	hasNext    bool

	world   *World
	goals   *GoalTracker // nil in free play
	spawner *SpawnSelector
	clock   Clock
	sink    EventSink

	lastActivity time.Time
	running      bool
	pending      []Event
	mu           sync.Mutex
}

// NewSession creates a session showing the stage list.
func NewSession(id string, opts SessionOptions) *Session {
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.Stages == nil {
		opts.Stages = DefaultStages()
	}
	now := opts.Clock.Now()
	return &Session{
		ID:           id,
		CreatedAt:    now,
		stages:       opts.Stages,
		stageIndex:   -1,
		phase:        PhaseSelecting,
		world:        NewWorld(StandardArena()),
		spawner:      NewSpawnSelector(opts.RNG),
		clock:        opts.Clock,
		sink:         opts.Sink,
		lastActivity: now,
	}
}

// Stages returns the stage list this session picks from.
func (s *Session) Stages() []Stage {
	return s.stages
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// StageIndex returns the active stage, or -1.
func (s *Session) StageIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stageIndex
}

func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// SelectStage starts stage i from scratch. Unknown or placeholder stages are
// rejected without any state change.
func (s *Session) SelectStage(i int) error {
	s.mu.Lock()
	if i < 0 || i >= len(s.stages) {
		s.mu.Unlock()
		return ErrStageNotFound
	}
	if !s.stages[i].Playable() {
		s.mu.Unlock()
		return ErrStageUnplayable
	}
	s.stageIndex = i
	s.resetLocked()
	events := s.takePending()
	s.mu.Unlock()

	deliver(s.sink, events)
	return nil
}

// Restart replays the active stage, or starts free play when none is active.
func (s *Session) Restart() {
	s.mu.Lock()
	s.resetLocked()
	events := s.takePending()
	s.mu.Unlock()

	deliver(s.sink, events)
}

// NextStage advances after a cleared stage. When the following stage is not
// playable it returns to the stage list instead. It reports whether a new
// stage started.
func (s *Session) NextStage() bool {
	s.mu.Lock()
	if s.phase != PhaseStageComplete {
		s.mu.Unlock()
		return false
	}
	next := s.stageIndex + 1
	if next >= len(s.stages) || !s.stages[next].Playable() {
		s.openStageSelectLocked()
		s.mu.Unlock()
		return false
	}
	s.stageIndex = next
	s.resetLocked()
	events := s.takePending()
	s.mu.Unlock()

	deliver(s.sink, events)
	return true
}

// OpenStageSelect leaves the arena for the stage list; ticking stops.
func (s *Session) OpenStageSelect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openStageSelectLocked()
}

func (s *Session) openStageSelectLocked() {
	s.phase = PhaseSelecting
	s.lastActivity = s.clock.Now()
}

// DropAt drops the offered token at x. It is ignored unless the session is
// playing and has an offer, and reports whether the drop happened.
func (s *Session) DropAt(x float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhasePlaying || !s.hasNext {
		return false
	}
	now := s.clock.Now()
	s.world.Drop(s.next, x, now)
	s.next = s.spawner.PickNext(s.goals)
	s.lastActivity = now
	return true
}

// Tick steps the world once if playing. It returns the resulting frame and
// whether the session is still playing.
func (s *Session) Tick() (Snapshot, bool) {
	s.mu.Lock()
	if s.phase != PhasePlaying {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, false
	}

	now := s.clock.Now()
	res := s.world.Step(now, func(primary, _ *Token) {
		s.applyMergeLocked(primary, now)
	})
	if res.Lost && s.phase == PhasePlaying {
		s.phase = PhaseGameOver
		log.Printf("[SESSION] %s game over, score=%d", s.ID, s.score)
		s.queue(Event{Type: EventGameOver, Score: s.score, Phase: s.phase, At: now})
	}

	snap := s.snapshotLocked()
	playing := s.phase == PhasePlaying
	events := s.takePending()
	s.mu.Unlock()

	deliver(s.sink, events)
	return snap, playing
}

func (s *Session) applyMergeLocked(primary *Token, now time.Time) {
	r := ResolveMerge(primary, s.goals, now)
	s.score += r.Points

	if r.Collected {
		s.queue(Event{Type: EventReveal, TypeID: r.To, TypeName: NameOf(r.To), Score: s.score, Phase: s.phase, At: now})
	}
	if s.goals == nil {
		return
	}
	progress := s.goals.Progress()
	s.queue(Event{Type: EventGoalProgress, TypeID: r.To, Score: s.score, Phase: s.phase, Progress: &progress, At: now})

	if s.phase == PhasePlaying && s.goals.IsStageComplete() {
		s.phase = PhaseStageComplete
		log.Printf("[SESSION] %s cleared stage %d, score=%d", s.ID, s.stageIndex, s.score)
		s.queue(Event{Type: EventStageComplete, Score: s.score, Phase: s.phase, Progress: &progress, At: now})
	}
}

// Snapshot returns the current frame without stepping.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	now := s.clock.Now()
	snap := Snapshot{
		SessionID: s.ID,
		Phase:     s.phase,
		Score:     s.score,
		Arena:     s.world.Arena,
		Tokens:    make([]TokenView, 0, len(s.world.Tokens)),
	}
	if s.stageIndex >= 0 {
		idx := s.stageIndex
		snap.StageIndex = &idx
		snap.StageTitle = s.stages[idx].Title
	}
	if s.hasNext {
		next := s.next
		snap.NextType = &next
		snap.NextName = NameOf(next)
	}
	for _, t := range s.world.Tokens {
		snap.Tokens = append(snap.Tokens, TokenView{
			ID:      t.ID,
			X:       t.Position.X,
			Y:       t.Position.Y,
			Radius:  t.Radius,
			TypeID:  t.Type,
			Opacity: t.Opacity(now),
		})
	}
	if s.goals != nil {
		snap.Progress = s.goals.Progress()
	} else {
		snap.Progress = ProgressSummary{Goals: []GoalProgress{}}
	}
	return snap
}

// resetLocked clears the field and enters Playing for the active stage.
func (s *Session) resetLocked() {
	now := s.clock.Now()
	s.world.Reset()
	s.score = 0
	s.goals = nil
	if s.stageIndex >= 0 {
		s.goals = NewGoalTracker(s.stages[s.stageIndex].Goals)
	}
	s.next = s.spawner.PickNext(s.goals)
	s.hasNext = true
	s.phase = PhasePlaying
	s.lastActivity = now

	ev := Event{Type: EventStageStarted, Phase: s.phase, At: now}
	if s.goals != nil {
		progress := s.goals.Progress()
		ev.Progress = &progress
	}
	s.queue(ev)
	log.Printf("[SESSION] %s started stage %d", s.ID, s.stageIndex)
}

func (s *Session) queue(ev Event) {
	ev.SessionID = s.ID
	s.pending = append(s.pending, ev)
}

func (s *Session) takePending() []Event {
	events := s.pending
	s.pending = nil
	return events
}

// claimRunner marks the session as ticking. It returns false when the
// session is not playing or a runner already owns it.
func (s *Session) claimRunner() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhasePlaying || s.running {
		return false
	}
	s.running = true
	return true
}

// releaseRunner gives up ticking unless a restart re-entered Playing since
// the last tick, in which case the runner keeps going.
func (s *Session) releaseRunner() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhasePlaying {
		return false
	}
	s.running = false
	return true
}

// Run ticks once per interval until the session leaves Playing or ctx ends.
// onFrame receives every frame, including the one that ended play.
func (s *Session) Run(ctx context.Context, interval time.Duration, onFrame func(Snapshot)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			return
		case <-ticker.C:
			snap, playing := s.Tick()
			if onFrame != nil {
				onFrame(snap)
			}
			if !playing && s.releaseRunner() {
				return
			}
		}
	}
}

// World exposes the field for renderers that draw straight from it.
func (s *Session) World() *World {
	return s.world
}
