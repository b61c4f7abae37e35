package game

import (
	"slices"
	"testing"
)

// fixedRNG replays a fixed sequence of draws.
type fixedRNG struct {
	vals []float64
	i    int
}

func (f *fixedRNG) Float64() float64 {
	v := f.vals[f.i%len(f.vals)]
	f.i++
	return v
}

func TestFreePlayDrawsFromFreePool(t *testing.T) {
	s := NewSpawnSelector(NewSeededRNG(7))
	for i := 0; i < 500; i++ {
		id := s.PickNext(nil)
		if !slices.Contains(freePlayPool, id) {
			t.Fatalf("free play offered %s", NameOf(id))
		}
	}
}

func TestPlainGoalsNeverOfferDotted(t *testing.T) {
	g := NewGoalTracker(map[TypeID]int{Quarter: 3})
	pool := SpawnPool(g)

	for _, id := range pool {
		if IsDotted(id) {
			t.Errorf("plain-goal pool contains dotted %s", NameOf(id))
		}
	}
	// No rest goals declared, so rests drop freely.
	if !slices.Contains(pool, SixteenthRest) || !slices.Contains(pool, EighthRest) {
		t.Error("expected rests in pool when no rest goal is declared")
	}
	if slices.Contains(pool, DottedEighthRest) {
		t.Error("dotted rest offered without a dotted rest goal")
	}
}

func TestRestsStopOnceRestGoalsMet(t *testing.T) {
	g := NewGoalTracker(map[TypeID]int{QuarterRest: 1, Quarter: 1})
	if !slices.Contains(SpawnPool(g), SixteenthRest) {
		t.Fatal("expected rests while a rest goal is open")
	}

	g.RecordCollection(QuarterRest)
	for _, id := range SpawnPool(g) {
		if IsRest(id) {
			t.Errorf("rest %s offered after rest goals were met", NameOf(id))
		}
	}
}

func TestDottedSeedsGatedOnGoals(t *testing.T) {
	g := NewGoalTracker(map[TypeID]int{DottedQuarter: 1, DottedQuarterRest: 1})
	pool := SpawnPool(g)
	if !slices.Contains(pool, DottedEighth) {
		t.Error("expected dotted 8th note while a dotted note goal is open")
	}
	if !slices.Contains(pool, DottedEighthRest) {
		t.Error("expected dotted 8th rest while a dotted rest goal is open")
	}

	g.RecordCollection(DottedQuarter)
	pool = SpawnPool(g)
	if slices.Contains(pool, DottedEighth) {
		t.Error("dotted note seed offered after dotted note goals were met")
	}
	if !slices.Contains(pool, DottedEighthRest) {
		t.Error("dotted rest seed should remain while its goal is open")
	}
}

func TestSeedTypesOnly(t *testing.T) {
	seeds := []TypeID{Sixteenth, Eighth, DottedEighth, SixteenthRest, EighthRest, DottedEighthRest}
	g := NewGoalTracker(map[TypeID]int{DottedHalf: 1, DottedHalfRest: 1, WholeRest: 1})
	for _, id := range SpawnPool(g) {
		if !slices.Contains(seeds, id) {
			t.Errorf("pool contains non-seed %s", NameOf(id))
		}
	}
}

func TestPoolWeights(t *testing.T) {
	pool := SpawnPool(NewGoalTracker(map[TypeID]int{Quarter: 1}))
	count := func(id TypeID) int {
		n := 0
		for _, p := range pool {
			if p == id {
				n++
			}
		}
		return n
	}
	if count(Sixteenth) != 4 || count(Eighth) != 1 || count(SixteenthRest) != 3 || count(EighthRest) != 1 {
		t.Errorf("unexpected weights in pool %v", pool)
	}
}

func TestPickUsesDraw(t *testing.T) {
	pool := []TypeID{Sixteenth, Eighth, Quarter}
	rng := &fixedRNG{vals: []float64{0, 0.5, 0.999999}}
	got := []TypeID{pick(pool, rng), pick(pool, rng), pick(pool, rng)}
	want := []TypeID{Sixteenth, Eighth, Quarter}
	if !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSeededSelectorIsDeterministic(t *testing.T) {
	g := NewGoalTracker(map[TypeID]int{Quarter: 2, EighthRest: 1})
	run := func() []TypeID {
		s := NewSpawnSelector(NewSeededRNG(42))
		out := make([]TypeID, 50)
		for i := range out {
			out[i] = s.PickNext(g)
		}
		return out
	}
	if !slices.Equal(run(), run()) {
		t.Error("same seed should give the same offers")
	}
}
