// Package markdown renders markdown cell labels and table titles. The
// strategy is picked once at setup and injected into the grid.
package markdown

import (
	"cmp"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	xansi "github.com/charmbracelet/x/ansi"
)

// Renderer turns markdown into terminal text wrapped at width.
type Renderer interface {
	Render(md string, width int) string
}

// Plain leaves markdown untouched.
type Plain struct{}

// Render returns md unchanged.
func (Plain) Render(md string, _ int) string { return md }

// Glamour renders with glamour, falling back to the raw text if the
// renderer cannot be built or fails.
type Glamour struct {
	// Style is a glamour standard style name; empty means auto-detect.
	Style string
	// Wrap is the width used when Render gets none; 0 means 100.
	Wrap int

	mu        sync.Mutex
	renderers map[int]*glamour.TermRenderer
}

// NewGlamour returns a glamour strategy using the named style.
func NewGlamour(style string) *Glamour {
	return &Glamour{Style: style, renderers: make(map[int]*glamour.TermRenderer)}
}

// Render converts md to styled ANSI output.
func (g *Glamour) Render(md string, width int) string {
	if strings.TrimSpace(md) == "" {
		return md
	}
	r := g.renderer(width)
	if r == nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	// glamour adds trailing newlines; trim for inline display.
	return strings.TrimRight(out, "\n")
}

func (g *Glamour) renderer(width int) *glamour.TermRenderer {
	if width <= 0 {
		width = cmp.Or(g.Wrap, 100)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.renderers == nil {
		g.renderers = make(map[int]*glamour.TermRenderer)
	}
	if r, ok := g.renderers[width]; ok {
		return r
	}
	styleOpt := glamour.WithAutoStyle()
	if g.Style != "" {
		styleOpt = glamour.WithStandardStyle(g.Style)
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		r = nil
	}
	g.renderers[width] = r
	return r
}

// inlineWidth keeps single labels from wrapping.
const inlineWidth = 1 << 10

// Inline renders md for a single-line slot: the first non-blank output line
// with glamour's margins trimmed.
func Inline(r Renderer, md string) string {
	if r == nil {
		return md
	}
	out := r.Render(md, inlineWidth)
	for _, line := range strings.Split(out, "\n") {
		plain := xansi.Strip(line)
		if strings.TrimSpace(plain) == "" {
			continue
		}
		lead := len(plain) - len(strings.TrimLeft(plain, " "))
		trail := len(plain) - len(strings.TrimRight(plain, " "))
		if trail > 0 {
			line = xansi.Truncate(line, xansi.StringWidth(line)-trail, "")
		}
		if lead > 0 {
			line = xansi.TruncateLeft(line, lead, "")
		}
		return line
	}
	return md
}

// Strategy names accepted by New.
const (
	StrategyGlamour = "glamour"
	StrategyPlain   = "plain"
)

// New builds the renderer for a configured strategy. Disabled markdown or
// an unknown strategy yields Plain.
func New(enabled bool, style string) Renderer {
	if !enabled || style == StrategyPlain {
		return Plain{}
	}
	if style == StrategyGlamour {
		style = ""
	}
	return NewGlamour(style)
}
