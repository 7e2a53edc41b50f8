// Package caption builds the visual and spoken sentences paired with a sample.
package caption

import (
	"fmt"
	"sync"

	"github.com/ivlev/shapes2video/internal/shape"
)

// Input is everything a caption depends on.
type Input struct {
	Kind     shape.Kind
	FG, BG   shape.Color
	Action   shape.Action
	Dir      shape.Direction
	Speed    shape.Speed
	Relation shape.Relation
}

// Captions is the pair written for one sample. Visual goes to texts.csv,
// Spoken is sent to the speech service.
type Captions struct {
	Visual string
	Spoken string
}

// Verb maps an action and its direction to a participle phrase.
func Verb(a shape.Action, d shape.Direction) (string, error) {
	switch a {
	case shape.Shift:
		switch d {
		case shape.Right, shape.Left, shape.Up, shape.Down:
			return "moving " + d.String(), nil
		}
	case shape.Rotate:
		switch d {
		case shape.Clock:
			return "rotating clockwise", nil
		case shape.Anticlock:
			return "rotating anticlockwise", nil
		}
	case shape.Roll:
		return "rolling", nil
	case shape.Grow:
		switch d {
		case shape.Bigger:
			return "growing in size", nil
		case shape.Smaller:
			return "shrinking in size", nil
		}
	case shape.Jump:
		return "jumping up and down", nil
	}
	return "", fmt.Errorf("%w: no verb for %s %s", shape.ErrConfig, a, d)
}

func Adverb(s shape.Speed) (string, error) {
	switch s {
	case shape.Slow:
		return "slowly", nil
	case shape.Fast:
		return "quickly", nil
	}
	return "", fmt.Errorf("%w: no adverb for %s", shape.ErrConfig, s)
}

// Articles returns the sentence-initial article for the foreground colour
// and the lower-case one for the background colour.
func Articles(fg, bg shape.Color) (string, string) {
	fgArt, bgArt := "A", "a"
	if fg.StartsWithVowel() {
		fgArt = "An"
	}
	if bg.StartsWithVowel() {
		bgArt = "an"
	}
	return fgArt, bgArt
}

type parts struct {
	fgArt, bgArt string
	verb, adverb string
}

func build(in Input) (parts, error) {
	if _, err := shape.ParseKind(in.Kind.String()); err != nil {
		return parts{}, err
	}
	if _, err := shape.ParseForeground(in.FG.String()); err != nil {
		return parts{}, err
	}
	if _, err := shape.ParseBackground(in.BG.String()); err != nil {
		return parts{}, err
	}
	verb, err := Verb(in.Action, in.Dir)
	if err != nil {
		return parts{}, err
	}
	adverb, err := Adverb(in.Speed)
	if err != nil {
		return parts{}, err
	}
	fgArt, bgArt := Articles(in.FG, in.BG)
	return parts{fgArt: fgArt, bgArt: bgArt, verb: verb, adverb: adverb}, nil
}

// Compose fills the relation table:
//
//	disjoint  visual: colours only     spoken: motion only
//	overlap   visual: colours only     spoken: shape and motion
//	subset    visual: colours only     spoken: everything
//	same      visual: everything       spoken: same as visual
func Compose(in Input) (Captions, error) {
	p, err := build(in)
	if err != nil {
		return Captions{}, err
	}

	still := fmt.Sprintf("%s %s %s on %s %s background.", p.fgArt, in.FG, in.Kind, p.bgArt, in.BG)
	full := fmt.Sprintf("%s %s %s is %s %s on %s %s background.",
		p.fgArt, in.FG, in.Kind, p.verb, p.adverb, p.bgArt, in.BG)

	switch in.Relation {
	case shape.Disjoint:
		return Captions{Visual: still, Spoken: fmt.Sprintf("The shape is %s %s.", p.verb, p.adverb)}, nil
	case shape.Overlap:
		// The article follows the foreground colour even though the colour
		// itself is not spoken.
		return Captions{Visual: still, Spoken: fmt.Sprintf("%s %s is %s %s.", p.fgArt, in.Kind, p.verb, p.adverb)}, nil
	case shape.Subset:
		return Captions{Visual: still, Spoken: full}, nil
	case shape.Same:
		return Captions{Visual: full, Spoken: full}, nil
	}
	return Captions{}, fmt.Errorf("%w: unknown relation %s", shape.ErrConfig, in.Relation)
}

// ComposeLegacy is the single-sentence caption of plans without a relation.
func ComposeLegacy(in Input) (string, error) {
	in.Relation = shape.Same
	c, err := Compose(in)
	if err != nil {
		return "", err
	}
	return c.Visual, nil
}

// Cache memoises captions per sample id.
type Cache struct {
	mu      sync.Mutex
	entries map[int]Captions
}

func NewCache() *Cache {
	return &Cache{entries: make(map[int]Captions)}
}

// Get returns the cached captions for id, composing them on first use.
// Errors are not cached.
func (c *Cache) Get(id int, in Input) (Captions, error) {
	return c.get(id, func() (Captions, error) { return Compose(in) })
}

// GetSingle is Get for plans without a relation: the one sentence is both
// shown and spoken.
func (c *Cache) GetSingle(id int, in Input) (Captions, error) {
	return c.get(id, func() (Captions, error) {
		text, err := ComposeLegacy(in)
		return Captions{Visual: text, Spoken: text}, err
	})
}

func (c *Cache) get(id int, compose func() (Captions, error)) (Captions, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if got, ok := c.entries[id]; ok {
		return got, nil
	}
	got, err := compose()
	if err != nil {
		return Captions{}, err
	}
	c.entries[id] = got
	return got, nil
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
