// Package common holds small view components shared by the host screens.
package common

import (
	"strings"

	"github.com/miosa/osa-view/style"
)

const (
	scrollTrackChar = "│"
	scrollThumbChar = "█"
)

// Scrollbar tracks the dimensions needed to render a vertical scrollbar
// for a virtualized list whose full size is known but never rendered.
type Scrollbar struct {
	viewport int
	total    int
	offset   int
}

// NewScrollbar creates a Scrollbar for a viewport over total units scrolled
// to offset.
func NewScrollbar(viewport, total, offset int) Scrollbar {
	return Scrollbar{viewport: viewport, total: total, offset: offset}
}

// SetDimensions updates the scrollbar dimensions.
func (s *Scrollbar) SetDimensions(viewport, total, offset int) {
	s.viewport = viewport
	s.total = total
	s.offset = offset
}

// Visible reports whether the content overflows the viewport.
func (s Scrollbar) Visible() bool {
	return s.viewport > 0 && s.total > s.viewport
}

// Thumb returns the thumb's first row and height within the track.
func (s Scrollbar) Thumb() (top, height int) {
	vh, ch := s.viewport, s.total
	if !s.Visible() {
		return 0, 0
	}

	// at least 1 row
	height = vh * vh / ch
	if height < 1 {
		height = 1
	}

	scrollable := ch - vh
	top = s.offset * (vh - height) / scrollable
	if top+height > vh {
		top = vh - height
	}
	if top < 0 {
		top = 0
	}
	return top, height
}

// Rows renders the track one row per entry, or nil when the content fits.
func (s Scrollbar) Rows() []string {
	if !s.Visible() {
		return nil
	}
	top, height := s.Thumb()
	rows := make([]string, s.viewport)
	for i := range rows {
		if i >= top && i < top+height {
			rows[i] = style.ScrollbarThumb.Render(scrollThumbChar)
		} else {
			rows[i] = style.ScrollbarTrack.Render(scrollTrackChar)
		}
	}
	return rows
}

// View renders the scrollbar as a single column of characters.
func (s Scrollbar) View() string {
	return strings.Join(s.Rows(), "\n")
}
