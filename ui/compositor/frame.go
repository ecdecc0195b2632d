package compositor

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"

	"github.com/miosa/osa-view/ui/grid"
)

// Placed is one mounted item: a text line or a grid row, positioned along
// the scroll axis.
type Placed struct {
	Index  int
	Y      int
	Height int
	Lines  []string
	Keys   []string
	Cells  []grid.Cell
}

// Frame is the result of one render pass.
type Frame struct {
	Items       []Placed
	TotalSize   int
	Offset      int
	Viewport    int
	Virtualized bool
}

// Mounted returns the number of instantiated items.
func (f Frame) Mounted() int { return len(f.Items) }

// Indices returns the index of every mounted item in order.
func (f Frame) Indices() []int {
	out := make([]int, len(f.Items))
	for i, p := range f.Items {
		out[i] = p.Index
	}
	return out
}

// View paints the frame into its viewport, one terminal row per unit.
// Lines wider than width are clipped; width <= 0 disables clipping. A frame
// without a viewport paints every item.
func (f Frame) View(width int) string {
	height := f.Viewport
	offset := f.Offset
	if height <= 0 {
		height = f.TotalSize
		offset = 0
	}
	if height <= 0 {
		return ""
	}
	rows := make([]string, height)
	for _, p := range f.Items {
		for j, line := range p.Lines {
			y := p.Y - offset + j
			if y < 0 || y >= height {
				continue
			}
			if width > 0 && xansi.StringWidth(line) > width {
				line = xansi.Truncate(line, width, "")
			}
			rows[y] = line
		}
	}
	return strings.Join(rows, "\n")
}
