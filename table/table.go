// Package table holds the tabular command-result model rendered by the
// grid views: ordered rows, per-row cell attributes, and the table-level
// settings that pick a coloring mode.
package table

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// ColorBy selects how badge colors are derived.
type ColorBy string

const (
	ColorByDefault  ColorBy = ""
	ColorByDuration ColorBy = "duration"
	ColorByStatus   ColorBy = "status"
)

// Cell is one attribute of a row.
type Cell struct {
	Value   string `json:"value"`
	CSS     string `json:"css,omitempty"`
	OnClick string `json:"onclick,omitempty"`
}

// CSSList is a list of class tokens. It decodes from either a single JSON
// string or an array of strings.
type CSSList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *CSSList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one == "" {
			*l = nil
			return nil
		}
		*l = CSSList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return errors.Wrap(err, "rowCSS must be a string or an array of strings")
	}
	*l = many
	return nil
}

// Row is a logical table row.
type Row struct {
	Name       string  `json:"name"`
	RowKey     string  `json:"rowKey,omitempty"`
	Attributes []Cell  `json:"attributes,omitempty"`
	CSS        string  `json:"css,omitempty"`
	RowCSS     CSSList `json:"rowCSS,omitempty"`
	OnClick    string  `json:"onclick,omitempty"`
}

// Key returns the row's stable identity: RowKey when set, otherwise Name.
func (r Row) Key() string {
	if r.RowKey != "" {
		return r.RowKey
	}
	return r.Name
}

// Attr returns the cell at idx, or false when the row has no such cell.
func (r Row) Attr(idx int) (Cell, bool) {
	if idx < 0 || idx >= len(r.Attributes) {
		return Cell{}, false
	}
	return r.Attributes[idx], true
}

// Classes returns every class token carried by the row itself (CSS and
// RowCSS), split on whitespace.
func (r Row) Classes() []string {
	out := strings.Fields(r.CSS)
	for _, c := range r.RowCSS {
		out = append(out, strings.Fields(c)...)
	}
	return out
}

// Table is an ordered set of rows plus the settings that drive grid coloring.
//
// DurationColumnIdx and GradableColumnIdx are -1 when unset.
type Table struct {
	Title             string  `json:"title,omitempty"`
	Header            *Row    `json:"header,omitempty"`
	Body              []Row   `json:"body"`
	DurationColumnIdx int     `json:"durationColumnIdx"`
	GradableColumnIdx int     `json:"gradableColumnIdx"`
	ColorBy           ColorBy `json:"colorBy,omitempty"`
	Markdown          bool    `json:"markdown,omitempty"`
}

// New returns a table over body with no duration or gradable column.
func New(body []Row) *Table {
	return &Table{
		Body:              body,
		DurationColumnIdx: -1,
		GradableColumnIdx: -1,
	}
}

// Len returns the number of body rows. A nil table has none.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Body)
}

// Gradable returns the index of the column that drives badge coloring, or
// -1 when the table has none and should render as a name grid.
func (t *Table) Gradable() int {
	if t == nil {
		return -1
	}
	if t.GradableColumnIdx >= 0 {
		return t.GradableColumnIdx
	}
	if t.DurationColumnIdx >= 0 {
		return t.DurationColumnIdx
	}
	return -1
}

// Validate checks that DurationColumnIdx is -1 or addresses a cell in every
// row.
func (t *Table) Validate() error {
	if t.DurationColumnIdx < -1 {
		return errors.Errorf("durationColumnIdx %d out of range", t.DurationColumnIdx)
	}
	if t.GradableColumnIdx < -1 {
		return errors.Errorf("gradableColumnIdx %d out of range", t.GradableColumnIdx)
	}
	if t.DurationColumnIdx == -1 {
		return nil
	}
	for i, r := range t.Body {
		if t.DurationColumnIdx >= len(r.Attributes) {
			return errors.Errorf("row %d (%q): durationColumnIdx %d but only %d attributes",
				i, r.Key(), t.DurationColumnIdx, len(r.Attributes))
		}
	}
	return nil
}

// gradableHeaders are header labels that mark a status-like column.
var gradableHeaders = map[string]bool{
	"STATUS":   true,
	"STATE":    true,
	"PHASE":    true,
	"READY":    true,
	"RESULT":   true,
	"DURATION": true,
}

// DetectGradable returns the index of the first header attribute whose label
// names a status-like column, or -1.
func DetectGradable(header Row) int {
	for i, c := range header.Attributes {
		if gradableHeaders[strings.ToUpper(strings.TrimSpace(c.Value))] {
			return i
		}
	}
	return -1
}
