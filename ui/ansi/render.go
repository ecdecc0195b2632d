package ansi

import (
	"strings"

	"charm.land/lipgloss/v2"
	xansi "github.com/charmbracelet/x/ansi"
)

// controlGlyphs makes stray control bytes visible instead of letting them
// reach the terminal. Tabs expand to four spaces, matching lipgloss.
var controlGlyphs = strings.NewReplacer(
	"\t", "    ",
	"\x1b", "␛",
	"\a", "␇",
	"\b", "␈",
	"\r", "",
	"\x00", "␀",
)

// Style returns the lipgloss style equivalent to the span's attributes.
func (s Span) Style() lipgloss.Style {
	st := lipgloss.NewStyle()
	if c := s.Foreground.TermColor(); c != nil {
		st = st.Foreground(c)
	}
	if c := s.Background.TermColor(); c != nil {
		st = st.Background(c)
	}
	if s.Bold {
		st = st.Bold(true)
	}
	if s.Dim {
		st = st.Faint(true)
	}
	if s.Italic {
		st = st.Italic(true)
	}
	if s.Underline {
		st = st.Underline(true)
	}
	if s.Strikethrough {
		st = st.Strikethrough(true)
	}
	return st
}

// Plain reports whether the span carries no styling at all.
func (s Span) Plain() bool {
	return !s.Foreground.IsSet() && !s.Background.IsSet() &&
		!s.Bold && !s.Dim && !s.Italic && !s.Underline && !s.Strikethrough &&
		s.Hyperlink == ""
}

// RenderLine re-encodes decoded spans for the terminal.
func RenderLine(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		text := controlGlyphs.Replace(s.Text)
		if text == "" {
			continue
		}
		if s.Plain() {
			b.WriteString(text)
			continue
		}
		if s.Hyperlink != "" {
			b.WriteString(xansi.SetHyperlink(s.Hyperlink))
		}
		b.WriteString(s.Style().Render(text))
		if s.Hyperlink != "" {
			b.WriteString(xansi.ResetHyperlink())
		}
	}
	return b.String()
}
