package game

import "testing"

func TestPromotionChainsTerminate(t *testing.T) {
	for _, tt := range Types() {
		id := tt.ID
		steps := 0
		for {
			next, ok := PromotionOf(id)
			if !ok {
				break
			}
			if IsRest(next) != IsRest(id) {
				t.Errorf("%s promotes across note/rest to %s", NameOf(id), NameOf(next))
			}
			if IsDotted(next) != IsDotted(id) {
				t.Errorf("%s promotes across dotted/plain to %s", NameOf(id), NameOf(next))
			}
			if RadiusOf(next) <= RadiusOf(id) {
				t.Errorf("%s promotes to a smaller or equal radius", NameOf(id))
			}
			id = next
			steps++
			if steps > 7 {
				t.Fatalf("promotion chain from %s does not terminate", tt.Name)
			}
		}
	}
}

func TestPromotionTable(t *testing.T) {
	cases := []struct {
		from, to TypeID
	}{
		{Sixteenth, Eighth},
		{Eighth, Quarter},
		{Quarter, Half},
		{Half, Whole},
		{DottedEighth, DottedQuarter},
		{DottedQuarter, DottedHalf},
		{SixteenthRest, EighthRest},
		{QuarterRest, HalfRest},
		{DottedQuarterRest, DottedHalfRest},
		{HalfRest, WholeRest},
	}
	for _, c := range cases {
		got, ok := PromotionOf(c.from)
		if !ok || got != c.to {
			t.Errorf("PromotionOf(%s) = %s, %v; want %s", NameOf(c.from), NameOf(got), ok, NameOf(c.to))
		}
	}

	for _, terminal := range []TypeID{Whole, WholeRest, DottedHalf, DottedHalfRest} {
		if _, ok := PromotionOf(terminal); ok {
			t.Errorf("expected %s to be terminal", NameOf(terminal))
		}
	}
}

func TestRestsMirrorNotes(t *testing.T) {
	for id := Sixteenth; id <= Whole; id++ {
		note, rest := TypeOf(id), TypeOf(id+RestOffset)
		if note.IsRest || !rest.IsRest {
			t.Errorf("type %d/%d rest flags wrong", id, id+RestOffset)
		}
		if note.Radius != rest.Radius || note.Duration != rest.Duration || note.IsDotted != rest.IsDotted {
			t.Errorf("%s and %s should share size and duration", note.Name, rest.Name)
		}
	}
}

func TestCatalogIDsMatchIndex(t *testing.T) {
	for i, tt := range Types() {
		if int(tt.ID) != i {
			t.Errorf("catalog entry %d has id %d", i, tt.ID)
		}
		if tt.Radius < 20 || tt.Radius > 40 {
			t.Errorf("%s radius %.0f out of range", tt.Name, tt.Radius)
		}
	}
}

func TestInvalidIDs(t *testing.T) {
	for _, id := range []TypeID{-1, NumTypes, 99} {
		if id.Valid() {
			t.Errorf("expected %d to be invalid", id)
		}
		if IsRest(id) || IsDotted(id) {
			t.Errorf("expected flags false for invalid id %d", id)
		}
		if NameOf(id) != "unknown type" {
			t.Errorf("expected placeholder name for %d, got %q", id, NameOf(id))
		}
	}
}
