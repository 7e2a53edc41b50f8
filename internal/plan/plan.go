// Package plan holds the sample plan: every id with the shape, colours,
// motion and duration it is rendered with.
package plan

import (
	"fmt"
	"sort"

	"github.com/ivlev/shapes2video/internal/shape"
)

// StartID is the first id handed out by Generate.
const StartID = 100000

// Plan is loaded wholesale before a render starts and never mutated by it.
type Plan struct {
	Version string `json:"version" yaml:"version"`
	Seed    int64  `json:"seed" yaml:"seed"`
	// Relation is empty for single-caption plans.
	Relation string         `json:"relation,omitempty" yaml:"relation,omitempty"`
	Mode     string         `json:"mode,omitempty" yaml:"mode,omitempty"`
	Content  map[int]Record `json:"content" yaml:"content"`
}

// Record is one sample as stored. Points may be empty, the geometry is then
// drawn at render time from the plan seed and the id.
type Record struct {
	Shape    string    `json:"shape" yaml:"shape"`
	Points   []float64 `json:"points,omitempty" yaml:"points,omitempty,flow"`
	FGColor  string    `json:"fgcolor" yaml:"fgcolor"`
	BGColor  string    `json:"bgcolor" yaml:"bgcolor"`
	Action   string    `json:"action" yaml:"action"`
	Speed    string    `json:"speed" yaml:"speed"`
	Dir      string    `json:"dir" yaml:"dir"`
	Duration float64   `json:"duration" yaml:"duration"`
	Accent   string    `json:"accent,omitempty" yaml:"accent,omitempty"`
}

// Sample is a Record with every field parsed.
type Sample struct {
	ID       int
	Kind     shape.Kind
	Geometry shape.Geometry // nil when the record has no points
	FG, BG   shape.Color
	Action   shape.Action
	Dir      shape.Direction
	Speed    shape.Speed
	Duration float64
	Accent   shape.Accent
}

// Settings are the plan-wide tags.
type Settings struct {
	Mode     shape.Mode
	Relation shape.Relation // zero for single-caption plans
	Single   bool
}

func (p *Plan) Settings() (Settings, error) {
	mode, err := shape.ParseMode(p.Mode)
	if err != nil {
		return Settings{}, err
	}
	if p.Relation == "" {
		return Settings{Mode: mode, Single: true}, nil
	}
	rel, err := shape.ParseRelation(p.Relation)
	if err != nil {
		return Settings{}, err
	}
	return Settings{Mode: mode, Relation: rel}, nil
}

// IDs returns the plan ids in ascending order, the order samples are
// rendered in.
func (p *Plan) IDs() []int {
	ids := make([]int, 0, len(p.Content))
	for id := range p.Content {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Parse validates r. Every failure wraps shape.ErrConfig.
func (r Record) Parse(id int, mode shape.Mode) (Sample, error) {
	s := Sample{ID: id, Duration: r.Duration}
	var err error

	if s.Kind, err = shape.ParseKind(r.Shape); err != nil {
		return Sample{}, fmt.Errorf("record %d: %w", id, err)
	}
	if s.FG, err = shape.ParseForeground(r.FGColor); err != nil {
		return Sample{}, fmt.Errorf("record %d: %w", id, err)
	}
	if s.BG, err = shape.ParseBackground(r.BGColor); err != nil {
		return Sample{}, fmt.Errorf("record %d: %w", id, err)
	}
	if s.Action, err = shape.ParseAction(r.Action); err != nil {
		return Sample{}, fmt.Errorf("record %d: %w", id, err)
	}
	if s.Dir, err = shape.ParseDirection(r.Dir); err != nil {
		return Sample{}, fmt.Errorf("record %d: %w", id, err)
	}
	if s.Speed, err = shape.ParseSpeed(r.Speed); err != nil {
		return Sample{}, fmt.Errorf("record %d: %w", id, err)
	}
	if s.Accent, err = shape.ParseAccent(r.Accent); err != nil {
		return Sample{}, fmt.Errorf("record %d: %w", id, err)
	}
	if len(r.Points) > 0 {
		if s.Geometry, err = shape.DecodeGeometry(s.Kind, mode, r.Points); err != nil {
			return Sample{}, fmt.Errorf("record %d: %w", id, err)
		}
	}
	return s, nil
}

// Validate parses every record of p.
func (p *Plan) Validate() error {
	st, err := p.Settings()
	if err != nil {
		return err
	}
	for _, id := range p.IDs() {
		if _, err := p.Content[id].Parse(id, st.Mode); err != nil {
			return err
		}
	}
	return nil
}
