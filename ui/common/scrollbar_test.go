package common

import (
	"strings"
	"testing"

	"charm.land/bubbles/v2/key"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrollbarHiddenWhenContentFits(t *testing.T) {
	s := NewScrollbar(10, 10, 0)
	assert.False(t, s.Visible())
	assert.Empty(t, s.View())
	assert.Nil(t, s.Rows())
}

func TestScrollbarThumb(t *testing.T) {
	tests := []struct {
		name             string
		viewport, total  int
		offset           int
		wantTop, wantLen int
	}{
		{"top", 10, 100, 0, 0, 1},
		{"bottom", 10, 100, 90, 9, 1},
		{"middle", 10, 20, 5, 2, 5},
		{"huge list keeps one row", 20, 10_000_000, 5_000_000, 9, 1},
		{"overscrolled clamps", 10, 20, 500, 5, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			top, h := NewScrollbar(tt.viewport, tt.total, tt.offset).Thumb()
			assert.Equal(t, tt.wantTop, top)
			assert.Equal(t, tt.wantLen, h)
		})
	}
}

func TestScrollbarRows(t *testing.T) {
	var s Scrollbar
	s.SetDimensions(4, 8, 4)
	rows := s.Rows()
	require.Len(t, rows, 4)
	got := xansi.Strip(strings.Join(rows, ""))
	assert.Equal(t, "││██", got)
	assert.Equal(t, 3, strings.Count(s.View(), "\n"))
}

func TestKeyHelp(t *testing.T) {
	down := key.NewBinding(key.WithKeys("j"), key.WithHelp("j", "down"))
	quit := key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit"))
	hidden := key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "hidden"), key.WithDisabled())

	assert.Equal(t, "j down  q quit", xansi.Strip(KeyHelp(down, hidden, quit)))
	assert.Empty(t, KeyHelp())
}
