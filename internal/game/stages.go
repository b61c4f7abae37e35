package game

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

var (
	ErrStageNotFound   = errors.New("stage not found")
	ErrStageUnplayable = errors.New("stage has no goals")
)

// Stage is a static stage record. A nil Goals map marks a placeholder stage
// that cannot be played yet.
type Stage struct {
	Title string         `json:"title" yaml:"title"`
	Goals map[TypeID]int `json:"goals" yaml:"goals"`
}

// Playable reports whether the stage declares goals.
func (s Stage) Playable() bool {
	return s.Goals != nil
}

// GoalTypes returns the goaled type ids in ascending order.
func (s Stage) GoalTypes() []TypeID {
	ids := make([]TypeID, 0, len(s.Goals))
	for id := range s.Goals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// DefaultStages returns the built-in song list.
func DefaultStages() []Stage {
	return []Stage{
		{
			Title: "Song of the Sprout",
			Goals: map[TypeID]int{Quarter: 13, Eighth: 22, QuarterRest: 2, Half: 1, DottedHalf: 1},
		},
		{
			Title: "Bead Rain",
			Goals: map[TypeID]int{DottedQuarterRest: 5, Quarter: 7, Eighth: 31, EighthRest: 4},
		},
		{Title: "Hand Clap, Foot Clap"},
		{Title: "Namsaeng, Come Play"},
		{Title: "Little Star"},
		{Title: "Salamander"},
	}
}

type stageFile struct {
	Stages []Stage `yaml:"stages"`
}

// LoadStages reads a stage list from a YAML file. An empty path or a missing
// file yields the built-in stages.
func LoadStages(path string) ([]Stage, error) {
	if path == "" {
		return DefaultStages(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultStages(), nil
		}
		return nil, fmt.Errorf("read stages: %w", err)
	}
	return ParseStages(b)
}

// ParseStages decodes and validates a YAML stage list.
func ParseStages(b []byte) ([]Stage, error) {
	var f stageFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("decode stages: %w", err)
	}
	if len(f.Stages) == 0 {
		return nil, errors.New("stage file declares no stages")
	}
	for i, st := range f.Stages {
		if st.Title == "" {
			return nil, fmt.Errorf("stage %d: missing title", i)
		}
		for id, target := range st.Goals {
			if !id.Valid() {
				return nil, fmt.Errorf("stage %d (%s): unknown type %d", i, st.Title, id)
			}
			if target < 0 {
				return nil, fmt.Errorf("stage %d (%s): negative target for %s", i, st.Title, NameOf(id))
			}
		}
	}
	return f.Stages, nil
}
