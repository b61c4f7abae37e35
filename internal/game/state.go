package game

// Phase represents the current state of a session
type Phase string

const (
	PhaseSelecting     Phase = "SELECTING"
	PhasePlaying       Phase = "PLAYING"
	PhaseGameOver      Phase = "GAME_OVER"
	PhaseStageComplete Phase = "STAGE_COMPLETE"
)

// Terminal reports whether the phase ends a run.
func (p Phase) Terminal() bool {
	return p == PhaseGameOver || p == PhaseStageComplete
}
