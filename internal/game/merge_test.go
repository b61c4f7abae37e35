package game

import "testing"

func TestResolveMergeCollected(t *testing.T) {
	goals := NewGoalTracker(map[TypeID]int{Quarter: 1})
	tok := &Token{ID: 4, Type: Eighth, Radius: RadiusOf(Eighth), Velocity: NewVec2(3, 3)}

	r := ResolveMerge(tok, goals, testEpoch)

	if r.From != Eighth || r.To != Quarter || !r.Collected {
		t.Errorf("unexpected result %+v", r)
	}
	if r.Points != 40 {
		t.Errorf("expected 40 points, got %d", r.Points)
	}
	if tok.Type != Quarter || tok.Radius != RadiusOf(Quarter) {
		t.Error("primary should be promoted in place")
	}
	if tok.Velocity != MergePopVelocity {
		t.Errorf("expected pop velocity, got %v", tok.Velocity)
	}
	if !tok.VanishAt.Equal(testEpoch.Add(VanishDelay)) {
		t.Errorf("expected vanish at +%s, got %s", VanishDelay, tok.VanishAt)
	}
	if !tok.CooldownUntil.Equal(testEpoch.Add(MergeCooldown)) {
		t.Error("expected merge cooldown to be set")
	}
	if goals.Collected(Quarter) != 1 {
		t.Error("expected the goal to count the collection")
	}
}

func TestResolveMergeUncounted(t *testing.T) {
	goals := NewGoalTracker(map[TypeID]int{Half: 1})
	tok := &Token{Type: Sixteenth, Radius: RadiusOf(Sixteenth)}

	r := ResolveMerge(tok, goals, testEpoch)

	if r.Collected {
		t.Error("eighth has no goal and should not count")
	}
	if r.Points != 20 {
		t.Errorf("expected 20 points, got %d", r.Points)
	}
	if tok.Vanishing() {
		t.Error("uncounted merge should leave the token on the field")
	}
}

func TestResolveMergeFreePlay(t *testing.T) {
	tok := &Token{Type: HalfRest, Radius: RadiusOf(HalfRest)}
	r := ResolveMerge(tok, nil, testEpoch)
	if r.To != WholeRest || r.Collected || r.Points != 160 {
		t.Errorf("unexpected free play result %+v", r)
	}
}

func TestResolveMergeTerminal(t *testing.T) {
	tok := &Token{Type: Whole, Radius: RadiusOf(Whole)}
	r := ResolveMerge(tok, nil, testEpoch)
	if r.To != Whole || r.Points != 0 || tok.Type != Whole {
		t.Errorf("terminal type should be left alone, got %+v", r)
	}
}
