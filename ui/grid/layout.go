package grid

import (
	"math"

	"github.com/mattn/go-runewidth"

	"github.com/miosa/osa-view/markdown"
	"github.com/miosa/osa-view/table"
)

// Mode selects how rows are drawn.
type Mode int

const (
	// Names lays row names out in auto-filled columns.
	Names Mode = iota
	// Badges draws one colored two-letter badge per row in a square grid.
	Badges
)

func (m Mode) String() string {
	if m == Badges {
		return "badges"
	}
	return "names"
}

// ModeFor picks badges when the table has a gradable column.
func ModeFor(t *table.Table) Mode {
	if t != nil && t.Gradable() >= 0 {
		return Badges
	}
	return Names
}

// BadgeWidth is the terminal width of one badge cell including its gap.
const BadgeWidth = 3

// DefaultGutter separates name columns.
const DefaultGutter = 2

// Cell is one laid out grid entry. Index is the row's position in the full
// row list, never its position within a window.
type Cell struct {
	Index       int
	Row         int
	Col         int
	Key         string
	Label       string
	Class       Class
	Tooltip     string
	JustUpdated bool
}

// Columns returns the badge grid width for n badges: ceil(sqrt(n)).
func Columns(n int) int {
	if n <= 0 {
		return 1
	}
	c := int(math.Ceil(math.Sqrt(float64(n))))
	if c < 1 {
		c = 1
	}
	return c
}

// Position returns the grid row and column of index i.
func Position(i, nCols int) (row, col int) {
	return i / nCols, i % nCols
}

// BadgeLabel returns the first two runes of name.
func BadgeLabel(name string) string {
	n := 0
	for i := range name {
		if n == 2 {
			return name[:i]
		}
		n++
	}
	return name
}

// NameWidth estimates the rendered width of name. Wide Latin glyphs count
// one and a half cells; everything else counts its terminal width.
func NameWidth(name string) float64 {
	var w float64
	for _, r := range name {
		switch r {
		case 'm', 'M', 'w', 'W':
			w += 1.5
		default:
			w += float64(runewidth.RuneWidth(r))
		}
	}
	return w
}

// NameColumnWidth returns the column width that fits the widest name plus
// gutter.
func NameColumnWidth(rows []table.Row, gutter int) int {
	var widest float64
	for _, r := range rows {
		if w := NameWidth(r.Name); w > widest {
			widest = w
		}
	}
	w := int(math.Ceil(widest)) + gutter
	if w < 1 {
		w = 1
	}
	return w
}

// NameColumns returns how many columns of colWidth fit in viewportWidth.
func NameColumns(viewportWidth, colWidth int) int {
	if colWidth < 1 {
		return 1
	}
	n := viewportWidth / colWidth
	if n < 1 {
		n = 1
	}
	return n
}

// Options configures a Layout.
type Options struct {
	Width    int
	Gutter   int
	Policy   StatusColorPolicy
	Markdown markdown.Renderer
}

// Layout precomputes the mode and column geometry for a set of rows.
type Layout struct {
	table  *table.Table
	rows   []table.Row
	mode   Mode
	cols   int
	colW   int
	opts   Options
	labels []string // name-mode labels, lazily rendered
}

// NewLayout lays out rows, which default to the table body.
func NewLayout(t *table.Table, rows []table.Row, opts Options) *Layout {
	if rows == nil && t != nil {
		rows = t.Body
	}
	if t == nil {
		t = table.New(rows)
	}
	if opts.Policy == nil {
		opts.Policy = DefaultPolicy(DefaultThresholds)
	}
	if opts.Gutter <= 0 {
		opts.Gutter = DefaultGutter
	}
	l := &Layout{table: t, rows: rows, mode: ModeFor(t), opts: opts}
	l.reflow()
	return l
}

func (l *Layout) reflow() {
	if l.mode == Badges {
		l.cols = Columns(len(l.rows))
		l.colW = BadgeWidth
		return
	}
	l.colW = NameColumnWidth(l.rows, l.opts.Gutter)
	l.cols = NameColumns(l.opts.Width, l.colW)
}

// SetWidth reflows name columns for a new viewport width.
func (l *Layout) SetWidth(w int) {
	l.opts.Width = w
	l.reflow()
}

// Mode returns the layout mode.
func (l *Layout) Mode() Mode { return l.mode }

// Columns returns the number of grid columns.
func (l *Layout) Columns() int { return l.cols }

// ColumnWidth returns the width of one grid column in terminal cells.
func (l *Layout) ColumnWidth() int { return l.colW }

// Len returns the number of rows laid out.
func (l *Layout) Len() int { return len(l.rows) }

// GridRows returns the number of synthetic grid rows.
func (l *Layout) GridRows() int {
	return (len(l.rows) + l.cols - 1) / l.cols
}

// Cell returns the cell for row index i.
func (l *Layout) Cell(i int, justUpdated map[string]bool) Cell {
	row := l.rows[i]
	r, c := Position(i, l.cols)
	cell := Cell{
		Index:       i,
		Row:         r,
		Col:         c,
		Key:         row.Key(),
		JustUpdated: justUpdated[row.Key()],
	}
	if l.mode == Badges {
		cell.Label = BadgeLabel(row.Name)
		cell.Class = l.opts.Policy(row, l.table)
		cell.Tooltip = row.Name
		if v, ok := row.Attr(l.table.Gradable()); ok && v.Value != "" {
			cell.Tooltip += ": " + v.Value
		}
		return cell
	}
	cell.Label = l.nameLabel(i)
	cell.Tooltip = row.Name
	return cell
}

func (l *Layout) nameLabel(i int) string {
	if !l.table.Markdown || l.opts.Markdown == nil {
		return l.rows[i].Name
	}
	if l.labels == nil {
		l.labels = make([]string, len(l.rows))
	}
	if l.labels[i] == "" {
		l.labels[i] = markdown.Inline(l.opts.Markdown, l.rows[i].Name)
	}
	return l.labels[i]
}

// CellsForRows returns the cells of grid rows [r0, r1).
func (l *Layout) CellsForRows(r0, r1 int, justUpdated map[string]bool) []Cell {
	if r0 < 0 {
		r0 = 0
	}
	first := r0 * l.cols
	last := r1 * l.cols
	if last > len(l.rows) {
		last = len(l.rows)
	}
	if first >= last {
		return nil
	}
	out := make([]Cell, 0, last-first)
	for i := first; i < last; i++ {
		out = append(out, l.Cell(i, justUpdated))
	}
	return out
}

// Cells returns every cell.
func (l *Layout) Cells(justUpdated map[string]bool) []Cell {
	return l.CellsForRows(0, l.GridRows(), justUpdated)
}

// CellAt returns the cell under column x of grid row r.
func (l *Layout) CellAt(r, x int, justUpdated map[string]bool) (Cell, bool) {
	if r < 0 || x < 0 {
		return Cell{}, false
	}
	c := x / l.colW
	if c >= l.cols {
		return Cell{}, false
	}
	// the gap after a badge is not part of it
	if l.mode == Badges && x%l.colW >= BadgeWidth-1 {
		return Cell{}, false
	}
	i := r*l.cols + c
	if i >= len(l.rows) {
		return Cell{}, false
	}
	return l.Cell(i, justUpdated), true
}
