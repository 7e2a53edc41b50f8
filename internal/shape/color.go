package shape

import (
	"image/color"

	"golang.org/x/image/colornames"
)

// Color is a named CSS colour. Names double as caption words.
type Color string

var (
	foregrounds = []Color{"red", "magenta", "orange", "brown", "green", "cyan", "blue", "black"}
	backgrounds = []Color{"white", "pink", "beige", "aquamarine", "yellow"}
)

func ForegroundColors() []Color { return append([]Color(nil), foregrounds...) }
func BackgroundColors() []Color { return append([]Color(nil), backgrounds...) }

func (c Color) String() string { return string(c) }

// RGBA resolves the colour through the SVG 1.1 palette.
func (c Color) RGBA() (color.RGBA, error) {
	rgba, ok := colornames.Map[string(c)]
	if !ok {
		return color.RGBA{}, configErrorf("unknown colour %q", string(c))
	}
	return rgba, nil
}

// StartsWithVowel decides between "a" and "an".
func (c Color) StartsWithVowel() bool {
	if c == "" {
		return false
	}
	switch c[0] {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

func ParseForeground(s string) (Color, error) {
	for _, c := range foregrounds {
		if string(c) == s {
			return c, nil
		}
	}
	return "", configErrorf("unknown foreground colour %q", s)
}

func ParseBackground(s string) (Color, error) {
	for _, c := range backgrounds {
		if string(c) == s {
			return c, nil
		}
	}
	return "", configErrorf("unknown background colour %q", s)
}
