package game

// freePlayPool is drawn from when no stage is active, so no goal set is consulted.
var freePlayPool = []TypeID{Sixteenth, Eighth, DottedEighth, SixteenthRest, EighthRest, DottedEighthRest}

// SpawnSelector picks the next type offered to the player.
type SpawnSelector struct {
	rng RandomSource
}

func NewSpawnSelector(rng RandomSource) *SpawnSelector {
	if rng == nil {
		rng = DefaultRNG()
	}
	return &SpawnSelector{rng: rng}
}

// PickNext draws from the weighted pool for the given goals. A nil tracker
// means no stage is active.
func (s *SpawnSelector) PickNext(goals *GoalTracker) TypeID {
	if goals == nil {
		return pick(freePlayPool, s.rng)
	}
	return pick(SpawnPool(goals), s.rng)
}

// SpawnPool assembles the weighted multiset for the current goal state.
// Duplicated entries carry the weight.
func SpawnPool(goals *GoalTracker) []TypeID {
	pool := []TypeID{Sixteenth, Sixteenth, Sixteenth, Sixteenth, Eighth}

	rests := shouldSpawnRests(goals)
	if rests {
		pool = append(pool, SixteenthRest, SixteenthRest, SixteenthRest, EighthRest)
	}
	if declared, remaining := goals.anyRemaining(DottedNoteTypes); declared && remaining {
		pool = append(pool, DottedEighth)
	}
	if declared, remaining := goals.anyRemaining(DottedRestTypes); declared && remaining && rests {
		pool = append(pool, DottedEighthRest)
	}
	return pool
}

// shouldSpawnRests: with no rest goals rests always drop; otherwise they
// drop only while some rest goal is still open.
func shouldSpawnRests(goals *GoalTracker) bool {
	ids := goals.restGoals()
	if len(ids) == 0 {
		return true
	}
	for _, id := range ids {
		if goals.RemainingGoal(id) {
			return true
		}
	}
	return false
}
