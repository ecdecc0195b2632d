// Package source adapts table rows and raw text into indexable, counted
// sequences with a stable key per item.
package source

import (
	"strconv"
	"strings"

	"github.com/miosa/osa-view/table"
)

// Source is an indexable sequence of renderable items.
type Source interface {
	Len() int
	Key(i int) string
}

// Lines indexes raw output by line without copying it. A trailing newline
// terminates the last line rather than opening an empty one, so streamed
// output that ends mid-line grows that line on the next Append.
type Lines struct {
	buf    strings.Builder
	text   string
	starts []int
}

// NewLines indexes text.
func NewLines(text string) *Lines {
	l := &Lines{}
	l.Append(text)
	return l
}

// Len returns the number of lines. Empty text has none.
func (l *Lines) Len() int { return len(l.starts) }

// Key returns the line's position; lines have no identity beyond it.
func (l *Lines) Key(i int) string { return strconv.Itoa(i) }

// Line returns line i without its terminating newline or carriage return.
func (l *Lines) Line(i int) string {
	if i < 0 || i >= len(l.starts) {
		return ""
	}
	start := l.starts[i]
	end := len(l.text)
	if i+1 < len(l.starts) {
		end = l.starts[i+1] - 1
	} else if strings.HasSuffix(l.text, "\n") {
		end--
	}
	return strings.TrimSuffix(l.text[start:end], "\r")
}

// Text returns everything appended so far.
func (l *Lines) Text() string { return l.text }

// Append adds streamed output and returns how many lines were added. A
// chunk continuing an unterminated last line does not count as a new line.
func (l *Lines) Append(chunk string) int {
	if chunk == "" {
		return 0
	}
	before := len(l.starts)
	from := len(l.text)
	if n := len(l.starts); n > 0 && !strings.HasSuffix(l.text, "\n") {
		from = l.starts[n-1]
		l.starts = l.starts[:n-1]
	}
	l.buf.WriteString(chunk)
	l.text = l.buf.String()
	for pos := from; pos < len(l.text); {
		l.starts = append(l.starts, pos)
		j := strings.IndexByte(l.text[pos:], '\n')
		if j < 0 {
			break
		}
		pos += j + 1
	}
	return len(l.starts) - before
}

// Rows exposes table rows keyed by Row.Key.
type Rows struct {
	rows []table.Row
}

// NewRows wraps rows. The slice is not copied and must not be mutated while
// in use.
func NewRows(rows []table.Row) Rows { return Rows{rows: rows} }

// Len returns the number of rows.
func (r Rows) Len() int { return len(r.rows) }

// Key returns rowKey, falling back to the row name.
func (r Rows) Key(i int) string { return r.rows[i].Key() }

// Row returns row i.
func (r Rows) Row(i int) table.Row { return r.rows[i] }

// All returns the underlying rows.
func (r Rows) All() []table.Row { return r.rows }
