package game

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultStages(t *testing.T) {
	stages := DefaultStages()
	if len(stages) != 6 {
		t.Fatalf("expected 6 stages, got %d", len(stages))
	}
	if !stages[0].Playable() || !stages[1].Playable() {
		t.Error("first two stages should be playable")
	}
	for _, st := range stages[2:] {
		if st.Playable() {
			t.Errorf("%q should be a placeholder", st.Title)
		}
	}
	if got := stages[0].Goals[Eighth]; got != 22 {
		t.Errorf("expected 22 eighth notes in stage one, got %d", got)
	}
}

func TestParseStages(t *testing.T) {
	data := []byte(`
stages:
  - title: Warmup
    goals:
      3: 2
      11: 1
  - title: Coming soon
`)
	stages, err := ParseStages(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stages) != 2 {
		t.Fatalf("expected 2 stages, got %d", len(stages))
	}
	if stages[0].Goals[Quarter] != 2 || stages[0].Goals[QuarterRest] != 1 {
		t.Errorf("unexpected goals %v", stages[0].Goals)
	}
	if stages[1].Playable() {
		t.Error("stage without goals should be a placeholder")
	}
	if ids := stages[0].GoalTypes(); len(ids) != 2 || ids[0] != Quarter || ids[1] != QuarterRest {
		t.Errorf("expected sorted goal types, got %v", ids)
	}
}

func TestParseStagesRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"empty":         "stages: []",
		"missing title": "stages:\n  - goals: {3: 1}",
		"unknown type":  "stages:\n  - title: x\n    goals: {42: 1}",
		"negative":      "stages:\n  - title: x\n    goals: {3: -1}",
		"malformed":     "stages: [",
	}
	for name, data := range cases {
		if _, err := ParseStages([]byte(data)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestLoadStagesFallsBackToDefaults(t *testing.T) {
	stages, err := LoadStages("")
	if err != nil || len(stages) != len(DefaultStages()) {
		t.Errorf("empty path: got %d stages, err %v", len(stages), err)
	}

	stages, err = LoadStages(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil || len(stages) != len(DefaultStages()) {
		t.Errorf("missing file: got %d stages, err %v", len(stages), err)
	}
}

func TestLoadStagesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stages.yaml")
	if err := os.WriteFile(path, []byte("stages:\n  - title: Solo\n    goals: {1: 4}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	stages, err := LoadStages(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stages) != 1 || stages[0].Title != "Solo" || stages[0].Goals[Eighth] != 4 {
		t.Errorf("unexpected stages %+v", stages)
	}
}

func TestSessionRejectsStagesByIndex(t *testing.T) {
	s := NewSession("s", SessionOptions{Stages: DefaultStages(), RNG: NewSeededRNG(1)})
	if err := s.SelectStage(2); !errors.Is(err, ErrStageUnplayable) {
		t.Errorf("expected ErrStageUnplayable, got %v", err)
	}
	if err := s.SelectStage(99); !errors.Is(err, ErrStageNotFound) {
		t.Errorf("expected ErrStageNotFound, got %v", err)
	}
	if err := s.SelectStage(-1); !errors.Is(err, ErrStageNotFound) {
		t.Errorf("expected ErrStageNotFound for negative index, got %v", err)
	}
	if s.Phase() != PhaseSelecting {
		t.Errorf("rejected selections should leave the stage list open, got %s", s.Phase())
	}
}
