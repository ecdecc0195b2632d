// Package msg defines all tea.Msg types dispatched within the viewer.
// It imports only the table model to avoid import cycles.
package msg

import (
	"time"

	"github.com/miosa/osa-view/table"
)

// -- Content --

// ContentLoaded carries the initial content: a table or raw text.
type ContentLoaded struct {
	Source string
	Text   string
	Table  *table.Table
	Err    error
}

// ContentAppended carries a chunk of streamed output.
type ContentAppended struct {
	Text string
}

// StreamClosed is sent when a followed stream ends. Err is nil on EOF.
type StreamClosed struct {
	Err error
}

// TableRefreshed carries a new snapshot of the displayed table.
type TableRefreshed struct {
	Table *table.Table
	At    time.Time
}

// FlashExpired clears the just-updated highlight. Generation guards against
// a stale timer clearing a newer flash.
type FlashExpired struct {
	Generation int
}

// -- Interaction --

// CellClicked reports the action resolved for a clicked cell. The command
// is shown, never executed.
type CellClicked struct {
	RowKey  string
	Command string
}

// -- Watch feed --

// WatchConnected is sent when the refresh stream is established.
type WatchConnected struct {
	URL string
}

// WatchDisconnected is sent when the refresh stream drops or closes.
type WatchDisconnected struct {
	Err error
}

// WatchReconnecting is sent before each reconnect attempt.
type WatchReconnecting struct {
	Attempt int
}

// WatchAuthFailed is sent when the refresh stream gets a 401/403.
type WatchAuthFailed struct{}
