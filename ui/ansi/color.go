package ansi

import (
	"fmt"
	"image/color"
	"strconv"

	"charm.land/lipgloss/v2"
)

// ColorKind distinguishes the SGR color forms.
type ColorKind uint8

const (
	NoColor ColorKind = iota
	Basic             // 30–37, 90–97 and their backgrounds; Index 0–15
	Indexed           // 38;5;n / 48;5;n
	TrueColor         // 38;2;r;g;b / 48;2;r;g;b
)

// Color is a decoded SGR color. The zero value means "terminal default".
type Color struct {
	Kind    ColorKind
	Index   uint8
	R, G, B uint8
}

// The sixteen basic colors, bright variants at 8–15.
var (
	Black         = Color{Kind: Basic, Index: 0}
	Red           = Color{Kind: Basic, Index: 1}
	Green         = Color{Kind: Basic, Index: 2}
	Yellow        = Color{Kind: Basic, Index: 3}
	Blue          = Color{Kind: Basic, Index: 4}
	Magenta       = Color{Kind: Basic, Index: 5}
	Cyan          = Color{Kind: Basic, Index: 6}
	White         = Color{Kind: Basic, Index: 7}
	BrightBlack   = Color{Kind: Basic, Index: 8}
	BrightRed     = Color{Kind: Basic, Index: 9}
	BrightGreen   = Color{Kind: Basic, Index: 10}
	BrightYellow  = Color{Kind: Basic, Index: 11}
	BrightBlue    = Color{Kind: Basic, Index: 12}
	BrightMagenta = Color{Kind: Basic, Index: 13}
	BrightCyan    = Color{Kind: Basic, Index: 14}
	BrightWhite   = Color{Kind: Basic, Index: 15}
)

var basicNames = [16]string{
	"black", "red", "green", "yellow", "blue", "magenta", "cyan", "white",
	"bright-black", "bright-red", "bright-green", "bright-yellow",
	"bright-blue", "bright-magenta", "bright-cyan", "bright-white",
}

func basic(i int) Color { return Color{Kind: Basic, Index: uint8(i)} }

// IsSet reports whether c overrides the terminal default.
func (c Color) IsSet() bool { return c.Kind != NoColor }

// String names the color: "red", "bright-cyan", "color(208)", "#ff8800",
// or "" for the default.
func (c Color) String() string {
	switch c.Kind {
	case Basic:
		return basicNames[c.Index&15]
	case Indexed:
		return fmt.Sprintf("color(%d)", c.Index)
	case TrueColor:
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return ""
}

// TermColor converts c for lipgloss. It returns nil for the default color.
func (c Color) TermColor() color.Color {
	switch c.Kind {
	case Basic, Indexed:
		return lipgloss.Color(strconv.Itoa(int(c.Index)))
	case TrueColor:
		return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
	}
	return nil
}
