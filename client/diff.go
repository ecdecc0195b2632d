package client

import (
	"slices"

	"github.com/miosa/osa-view/table"
)

// Diff returns the keys of rows in next that are new or whose attributes or
// classes differ from prev. A nil prev marks nothing, since the first
// snapshot is not an update.
func Diff(prev, next *table.Table) map[string]bool {
	changed := make(map[string]bool)
	if prev == nil || next == nil {
		return changed
	}
	old := make(map[string]table.Row, len(prev.Body))
	for _, r := range prev.Body {
		old[r.Key()] = r
	}
	for _, r := range next.Body {
		o, ok := old[r.Key()]
		if !ok || !sameRow(o, r) {
			changed[r.Key()] = true
		}
	}
	return changed
}

func sameRow(a, b table.Row) bool {
	return a.Name == b.Name &&
		a.CSS == b.CSS &&
		a.OnClick == b.OnClick &&
		slices.Equal(a.RowCSS, b.RowCSS) &&
		slices.Equal(a.Attributes, b.Attributes)
}
