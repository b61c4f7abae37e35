package game

// GoalTracker holds a stage's targets and how many of each goaled type the
// player has collected so far.
type GoalTracker struct {
	goals     map[TypeID]int
	collected map[TypeID]int
}

// GoalProgress is one row of the progress list shown next to the arena.
type GoalProgress struct {
	TypeID    TypeID `json:"type_id"`
	Name      string `json:"name"`
	Collected int    `json:"collected"`
	Target    int    `json:"target"`
	Complete  bool   `json:"complete"`
}

// ProgressSummary aggregates all goal rows.
type ProgressSummary struct {
	Goals []GoalProgress `json:"goals"`
	Done  int            `json:"done"`
	Total int            `json:"total"`
}

// NewGoalTracker copies goals so later edits to the stage table cannot leak in.
func NewGoalTracker(goals map[TypeID]int) *GoalTracker {
	g := &GoalTracker{
		goals:     make(map[TypeID]int, len(goals)),
		collected: make(map[TypeID]int, len(goals)),
	}
	for id, target := range goals {
		g.goals[id] = target
	}
	return g
}

// Goal returns the target for id and whether one is declared.
func (g *GoalTracker) Goal(id TypeID) (int, bool) {
	target, ok := g.goals[id]
	return target, ok
}

func (g *GoalTracker) Collected(id TypeID) int {
	return g.collected[id]
}

// HasGoal reports whether id carries a nonzero target.
func (g *GoalTracker) HasGoal(id TypeID) bool {
	return g.goals[id] > 0
}

// RemainingGoal is true iff id has a nonzero goal that is not yet met.
func (g *GoalTracker) RemainingGoal(id TypeID) bool {
	target := g.goals[id]
	if target == 0 {
		return false
	}
	return g.collected[id] < target
}

// RecordCollection counts one id toward its goal. It returns true only for a
// fresh collection; ids without a goal or with a met goal are left untouched.
func (g *GoalTracker) RecordCollection(id TypeID) bool {
	if !g.RemainingGoal(id) {
		return false
	}
	g.collected[id]++
	return true
}

// IsStageComplete is true when goals exist and every target is met.
func (g *GoalTracker) IsStageComplete() bool {
	if len(g.goals) == 0 {
		return false
	}
	for id, target := range g.goals {
		if g.collected[id] < target {
			return false
		}
	}
	return true
}

// anyRemaining reports whether any of ids is declared and still remaining,
// plus whether any of them is declared at all.
func (g *GoalTracker) anyRemaining(ids []TypeID) (declared, remaining bool) {
	for _, id := range ids {
		if g.HasGoal(id) {
			declared = true
			if g.RemainingGoal(id) {
				remaining = true
			}
		}
	}
	return declared, remaining
}

// restGoals lists goaled rest types.
func (g *GoalTracker) restGoals() []TypeID {
	var ids []TypeID
	for id := range g.goals {
		if IsRest(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Progress returns goal rows ordered by type id.
func (g *GoalTracker) Progress() ProgressSummary {
	st := Stage{Goals: g.goals}
	sum := ProgressSummary{Goals: make([]GoalProgress, 0, len(g.goals))}
	for _, id := range st.GoalTypes() {
		target := g.goals[id]
		cur := g.collected[id]
		sum.Goals = append(sum.Goals, GoalProgress{
			TypeID:    id,
			Name:      NameOf(id),
			Collected: cur,
			Target:    target,
			Complete:  cur >= target,
		})
		sum.Total += target
		sum.Done += min(cur, target)
	}
	return sum
}
