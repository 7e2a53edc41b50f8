package shape

import (
	"errors"
	"fmt"
)

// ErrConfig marks a configuration defect: unknown enum value, impossible
// combination or out-of-range parameter. It aborts the whole run.
var ErrConfig = errors.New("invalid configuration")

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrConfig}, args...)...)
}

// Kind is the shape identity.
type Kind uint8

const (
	Triangle Kind = iota + 1
	Square
	Pentagon
	Hexagon
	Circle
	Ellipse
)

var kindNames = map[Kind]string{
	Triangle: "triangle",
	Square:   "square",
	Pentagon: "pentagon",
	Hexagon:  "hexagon",
	Circle:   "circle",
	Ellipse:  "ellipse",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Sides returns the vertex count of a regular polygon kind.
func (k Kind) Sides() (int, error) {
	switch k {
	case Triangle:
		return 3, nil
	case Square:
		return 4, nil
	case Pentagon:
		return 5, nil
	case Hexagon:
		return 6, nil
	case Circle, Ellipse:
		return 0, configErrorf("%s is not a regular polygon", k)
	}
	return 0, configErrorf("undefined shape %s", k)
}

// IsPolygon reports whether k is drawn as a regular polygon.
func (k Kind) IsPolygon() bool {
	_, err := k.Sides()
	return err == nil
}

// IsRound reports whether k belongs to the circle/ellipse family.
func (k Kind) IsRound() bool { return k == Circle || k == Ellipse }

func AllKinds() []Kind {
	return []Kind{Triangle, Square, Pentagon, Hexagon, Circle, Ellipse}
}

func ParseKind(s string) (Kind, error) {
	for _, k := range AllKinds() {
		if kindNames[k] == s {
			return k, nil
		}
	}
	return 0, configErrorf("unknown shape %q", s)
}

// Mode selects the generation of the design a plan was built for.
//
// ModeRegular draws every Kind through the polygon/ellipse families.
// ModeLegacy only knows triangles (three raw vertices in distinct quadrants)
// and circles (raw centre and radius).
type Mode uint8

const (
	ModeRegular Mode = iota + 1
	ModeLegacy
)

func (m Mode) String() string {
	switch m {
	case ModeRegular:
		return "regular"
	case ModeLegacy:
		return "legacy"
	}
	return fmt.Sprintf("mode(%d)", m)
}

// ParseMode accepts an empty string as ModeRegular, older plans carry no mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "regular", "":
		return ModeRegular, nil
	case "legacy":
		return ModeLegacy, nil
	}
	return 0, configErrorf("unknown mode %q", s)
}

// Kinds lists the shapes a mode can generate.
func (m Mode) Kinds() []Kind {
	if m == ModeLegacy {
		return []Kind{Triangle, Circle}
	}
	return AllKinds()
}

// Action is the kind of motion applied to a shape.
type Action uint8

const (
	Shift Action = iota + 1
	Rotate
	Roll
	Jump
	Grow
)

var actionNames = map[Action]string{
	Shift:  "shift",
	Rotate: "rotate",
	Roll:   "roll",
	Jump:   "jump",
	Grow:   "grow",
}

func (a Action) String() string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return fmt.Sprintf("action(%d)", a)
}

func AllActions() []Action { return []Action{Shift, Rotate, Roll, Jump, Grow} }

func ParseAction(s string) (Action, error) {
	for _, a := range AllActions() {
		if actionNames[a] == s {
			return a, nil
		}
	}
	return 0, configErrorf("unknown action %q", s)
}

// Direction is the polarity of an action.
type Direction uint8

const (
	Right Direction = iota + 1
	Left
	Up
	Down
	Clock
	Anticlock
	Bigger
	Smaller
)

var directionNames = map[Direction]string{
	Right:     "right",
	Left:      "left",
	Up:        "up",
	Down:      "down",
	Clock:     "clock",
	Anticlock: "anticlock",
	Bigger:    "bigger",
	Smaller:   "smaller",
}

func (d Direction) String() string {
	if n, ok := directionNames[d]; ok {
		return n
	}
	return fmt.Sprintf("direction(%d)", d)
}

func AllDirections() []Direction {
	return []Direction{Right, Left, Up, Down, Clock, Anticlock, Bigger, Smaller}
}

func ParseDirection(s string) (Direction, error) {
	for _, d := range AllDirections() {
		if directionNames[d] == s {
			return d, nil
		}
	}
	return 0, configErrorf("unknown direction %q", s)
}

// Speed is the coarse speed class of a motion.
type Speed uint8

const (
	Slow Speed = iota + 1
	Fast
)

func (s Speed) String() string {
	switch s {
	case Slow:
		return "slow"
	case Fast:
		return "fast"
	}
	return fmt.Sprintf("speed(%d)", s)
}

// Step is the per-frame increment of the speed class, independent of fps.
func (s Speed) Step() (float64, error) {
	switch s {
	case Slow:
		return 5e-3, nil
	case Fast:
		return 1e-2, nil
	}
	return 0, configErrorf("invalid speed %s", s)
}

func AllSpeeds() []Speed { return []Speed{Slow, Fast} }

func ParseSpeed(s string) (Speed, error) {
	switch s {
	case "slow":
		return Slow, nil
	case "fast":
		return Fast, nil
	}
	return 0, configErrorf("unknown speed %q", s)
}

// Relation controls how much of the visual caption the spoken one reveals.
type Relation uint8

const (
	Disjoint Relation = iota + 1
	Overlap
	Subset
	Same
)

var relationNames = map[Relation]string{
	Disjoint: "disjoint",
	Overlap:  "overlap",
	Subset:   "subset",
	Same:     "same",
}

func (r Relation) String() string {
	if n, ok := relationNames[r]; ok {
		return n
	}
	return fmt.Sprintf("relation(%d)", r)
}

func AllRelations() []Relation { return []Relation{Disjoint, Overlap, Subset, Same} }

func ParseRelation(s string) (Relation, error) {
	for _, r := range AllRelations() {
		if relationNames[r] == s {
			return r, nil
		}
	}
	return 0, configErrorf("unknown relation %q", s)
}

// Accent is the regional accent requested from the speech service.
type Accent uint8

const (
	AccentNone Accent = iota
	AccentAU
	AccentCA
	AccentIND
	AccentUK
)

var accentNames = map[Accent]string{
	AccentNone: "",
	AccentAU:   "au",
	AccentCA:   "ca",
	AccentIND:  "ind",
	AccentUK:   "uk",
}

func (a Accent) String() string {
	if n, ok := accentNames[a]; ok {
		return n
	}
	return fmt.Sprintf("accent(%d)", a)
}

// AllAccents returns the concrete accents, AccentNone excluded.
func AllAccents() []Accent { return []Accent{AccentAU, AccentCA, AccentIND, AccentUK} }

func ParseAccent(s string) (Accent, error) {
	if s == "" {
		return AccentNone, nil
	}
	for _, a := range AllAccents() {
		if accentNames[a] == s {
			return a, nil
		}
	}
	return 0, configErrorf("unknown accent %q", s)
}
