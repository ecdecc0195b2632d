// Package compositor mounts table or text content into a scroll container,
// choosing between full rendering and the windowed path, and places the
// rendered items for painting.
package compositor

import (
	"github.com/miosa/osa-view/table"
)

// Content is the thing being shown: either raw ANSI text or a table.
type Content struct {
	Text  string
	Table *table.Table
}

// TextContent wraps raw ANSI-encoded output.
func TextContent(s string) Content { return Content{Text: s} }

// TableContent wraps a table.
func TableContent(t *table.Table) Content { return Content{Table: t} }

// IsTable reports whether the content is a table.
func (c Content) IsTable() bool { return c.Table != nil }

// Action is what a click on a row resolves to. Commands are opaque strings
// handed back to the host; they are never executed here.
type Action struct {
	RowKey  string
	Command string
	// Column is the attribute index whose cell carried the command, or -1
	// for a row-level command.
	Column int
}

// ActionTable maps row keys to their click action.
type ActionTable map[string]Action

// BuildActions collects the click action of every row. A row-level onclick
// wins over cell-level ones; among cells the first one wins.
func BuildActions(rows []table.Row) ActionTable {
	actions := make(ActionTable)
	for _, r := range rows {
		key := r.Key()
		if r.OnClick != "" {
			actions[key] = Action{RowKey: key, Command: r.OnClick, Column: -1}
			continue
		}
		for i, c := range r.Attributes {
			if c.OnClick != "" {
				actions[key] = Action{RowKey: key, Command: c.OnClick, Column: i}
				break
			}
		}
	}
	return actions
}

// Lookup resolves the action for a row key.
func (a ActionTable) Lookup(rowKey string) (Action, bool) {
	act, ok := a[rowKey]
	return act, ok
}
