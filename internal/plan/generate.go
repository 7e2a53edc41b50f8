package plan

import (
	"fmt"
	"math/rand"

	"github.com/ivlev/shapes2video/internal/family"
	"github.com/ivlev/shapes2video/internal/sampler"
	"github.com/ivlev/shapes2video/internal/shape"
)

// Options drive Generate.
type Options struct {
	Seed     int64
	Mode     shape.Mode
	Relation string // "" for a single-caption plan
	// Limit keeps a random subset of that many records when > 0.
	Limit int
	// Deferred leaves Points empty so geometry is drawn at render time.
	Deferred bool
}

// Generate enumerates shape x fg x bg x speed x action x direction, giving
// every combination a sampled start geometry and a duration in [2, 5).
// Regular plans also draw a random accent.
func Generate(opts Options) (*Plan, error) {
	mode := opts.Mode
	if mode == 0 {
		mode = shape.ModeRegular
	}
	if opts.Relation != "" {
		if _, err := shape.ParseRelation(opts.Relation); err != nil {
			return nil, err
		}
	}

	s := sampler.NewSeeded(opts.Seed)
	rng := s.Rand()
	p := &Plan{
		Version:  "1.0",
		Seed:     opts.Seed,
		Relation: opts.Relation,
		Mode:     mode.String(),
		Content:  make(map[int]Record),
	}

	id := StartID
	for _, kind := range mode.Kinds() {
		fam, err := family.For(kind, mode)
		if err != nil {
			return nil, err
		}
		for _, fg := range shape.ForegroundColors() {
			for _, bg := range shape.BackgroundColors() {
				for _, speed := range shape.AllSpeeds() {
					for _, action := range fam.Actions() {
						for _, dir := range family.Directions(action) {
							rec := Record{
								Shape:    kind.String(),
								FGColor:  fg.String(),
								BGColor:  bg.String(),
								Action:   action.String(),
								Speed:    speed.String(),
								Dir:      dir.String(),
								Duration: 2 + 3*rng.Float64(),
							}
							if mode == shape.ModeRegular {
								accents := shape.AllAccents()
								rec.Accent = accents[rng.Intn(len(accents))].String()
							}
							if !opts.Deferred {
								g, err := fam.Sample(s)
								if err != nil {
									return nil, fmt.Errorf("sample %d: %w", id, err)
								}
								rec.Points = g.Points()
							}
							p.Content[id] = rec
							id++
						}
					}
				}
			}
		}
	}

	if opts.Limit > 0 && opts.Limit < len(p.Content) {
		keep(p, opts.Limit, rng)
	}
	return p, nil
}

func keep(p *Plan, n int, rng *rand.Rand) {
	ids := p.IDs()
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	for _, id := range ids[n:] {
		delete(p.Content, id)
	}
}
