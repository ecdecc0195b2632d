package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miosa/osa-view/client"
	"github.com/miosa/osa-view/msg"
	"github.com/miosa/osa-view/table"
)

func update(t *testing.T, m Model, in tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(in)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func press(t *testing.T, m Model, k string) Model {
	t.Helper()
	r := []rune(k)[0]
	m, _ = update(t, m, tea.KeyPressMsg{Code: r, Text: k})
	return m
}

func numbered(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	return b.String()
}

func screen(m Model) string { return xansi.Strip(m.renderView()) }

func loadedText(t *testing.T, n int) Model {
	t.Helper()
	m := New(WithSource("build.log"))
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 12})
	m, _ = update(t, m, msg.ContentLoaded{Source: "build.log", Text: numbered(n)})
	return m
}

// -- Layout -------------------------------------------------------------------

func TestComputeLayout(t *testing.T) {
	l := ComputeLayout(80, 24, true)
	assert.Equal(t, 79, l.ViewWidth)
	assert.Equal(t, 22, l.ViewHeight)
	assert.Equal(t, 1, l.HeaderHeight)

	l = ComputeLayout(80, 24, false)
	assert.Equal(t, 23, l.ViewHeight)

	l = ComputeLayout(1, 1, true)
	assert.Equal(t, 1, l.ViewWidth)
	assert.Equal(t, minViewHeight, l.ViewHeight)
}

// -- Text ---------------------------------------------------------------------

func TestLargeTextIsWindowed(t *testing.T) {
	m := loadedText(t, 10_000)
	require.Equal(t, StateViewing, m.State())
	require.True(t, m.Mounted().Virtualized())
	assert.Equal(t, 10, m.layout.ViewHeight)
	assert.LessOrEqual(t, m.Mounted().Render().Mounted(), 30)

	s := screen(m)
	assert.Contains(t, s, "build.log")
	assert.Contains(t, s, "line 0")
	assert.Contains(t, s, "lines 1-10 of 10000")
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, visible(m))
}

func TestViewIsExactlyTerminalHeight(t *testing.T) {
	m := loadedText(t, 3)
	assert.Len(t, strings.Split(m.renderView(), "\n"), 12)
	for _, line := range strings.Split(m.renderView(), "\n") {
		assert.LessOrEqual(t, xansi.StringWidth(line), 40)
	}
}

func TestScrolling(t *testing.T) {
	m := loadedText(t, 10_000)

	m, _ = update(t, m, tea.MouseWheelMsg{Button: tea.MouseWheelDown})
	assert.Equal(t, wheelStep, m.ScrollOffset())

	m = press(t, m, "k")
	assert.Equal(t, wheelStep-1, m.ScrollOffset())

	m = press(t, m, "G")
	assert.Equal(t, 10_000-10, m.ScrollOffset())
	assert.Contains(t, screen(m), "line 9999")
	assert.Equal(t, []int{9990, 9991, 9992, 9993, 9994, 9995, 9996, 9997, 9998, 9999}, visible(m))

	m = press(t, m, "j")
	assert.Equal(t, 10_000-10, m.ScrollOffset(), "clamped at the end")

	m = press(t, m, "g")
	assert.Equal(t, 0, m.ScrollOffset())

	m = press(t, m, "d")
	assert.Equal(t, 5, m.ScrollOffset())

	m, _ = update(t, m, tea.MouseWheelMsg{Button: tea.MouseWheelUp})
	assert.Equal(t, 2, m.ScrollOffset())
}

// visible returns the indices painted inside the viewport.
func visible(m Model) []int {
	f := m.Mounted().Render()
	var out []int
	for _, p := range f.Items {
		if p.Y >= f.Offset && p.Y < f.Offset+f.Viewport {
			out = append(out, p.Index)
		}
	}
	return out
}

func TestResizeKeepsOffsetInRange(t *testing.T) {
	m := loadedText(t, 50)
	m = press(t, m, "G")
	assert.Equal(t, 40, m.ScrollOffset())

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 32})
	assert.Equal(t, 20, m.ScrollOffset())
}

func TestLoadError(t *testing.T) {
	m := New(WithSource("missing.log"))
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 8})
	assert.Contains(t, screen(m), "loading missing.log")

	m, _ = update(t, m, msg.ContentLoaded{Source: "missing.log", Err: errors.New("no such file")})
	assert.Equal(t, StateError, m.State())
	assert.Contains(t, screen(m), "error: no such file")
}

func TestEmptyContent(t *testing.T) {
	m := loadedText(t, 0)
	s := screen(m)
	assert.Contains(t, s, "(no content)")
	assert.Contains(t, s, "empty")
}

// -- Follow -------------------------------------------------------------------

func TestFollowPinsTail(t *testing.T) {
	m := New(WithFollow(strings.NewReader("")))
	require.Equal(t, StateViewing, m.State())
	require.True(t, m.Following())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 10})
	require.Equal(t, 9, m.layout.ViewHeight)

	m, _ = update(t, m, msg.ContentAppended{Text: numbered(100)})
	assert.Equal(t, 91, m.ScrollOffset())

	m = press(t, m, "k")
	assert.False(t, m.Following())
	m, _ = update(t, m, msg.ContentAppended{Text: numbered(600)})
	assert.Equal(t, 90, m.ScrollOffset())
	assert.True(t, m.Mounted().Virtualized(), "crossing the line threshold switches to windowed")

	m = press(t, m, "F")
	assert.True(t, m.Following())
	assert.Equal(t, 700-9, m.ScrollOffset())

	m, _ = update(t, m, msg.StreamClosed{})
	assert.Equal(t, "stream closed", m.Status())
}

// -- Tables -------------------------------------------------------------------

func namesTable() *table.Table {
	t := table.New([]table.Row{
		{Name: "api", OnClick: "kubectl logs api"},
		{Name: "db"},
	})
	t.Title = "pods"
	return t
}

func badgeTable(values ...string) *table.Table {
	rows := make([]table.Row, len(values))
	for i, v := range values {
		rows[i] = table.Row{Name: fmt.Sprintf("job-%d", i), Attributes: []table.Cell{{Value: v}}}
	}
	t := table.New(rows)
	t.Title = "jobs"
	t.GradableColumnIdx = 0
	return t
}

func TestClickShowsCommand(t *testing.T) {
	m := New()
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 10})
	m, _ = update(t, m, msg.ContentLoaded{Source: "pods.json", Table: namesTable()})
	require.Equal(t, "names", m.Mounted().Mode())
	require.Equal(t, 1, m.layout.HeaderHeight)

	_, cmd := update(t, m, tea.MouseClickMsg{X: 0, Y: 0})
	assert.Nil(t, cmd, "the header is not clickable")

	m, cmd = update(t, m, tea.MouseClickMsg{X: 0, Y: 1})
	require.NotNil(t, cmd)
	clicked := cmd()
	assert.Equal(t, msg.CellClicked{RowKey: "api", Command: "kubectl logs api"}, clicked)

	m, _ = update(t, m, clicked)
	assert.Equal(t, "▸ kubectl logs api", m.Status())
	assert.Contains(t, screen(m), "kubectl logs api")
}

func TestHoverTooltip(t *testing.T) {
	m := New()
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 10})
	m, _ = update(t, m, msg.ContentLoaded{Table: badgeTable("120ms", "3s")})
	require.Equal(t, "badges", m.Mounted().Mode())

	m, _ = update(t, m, tea.MouseMotionMsg{X: 0, Y: 1})
	assert.Equal(t, "job-0: 120ms", m.Tooltip())
	assert.Contains(t, screen(m), "job-0: 120ms")

	m, _ = update(t, m, tea.MouseMotionMsg{X: 0, Y: 9})
	assert.Empty(t, m.Tooltip())
}

func TestRefreshFlashesChangedRows(t *testing.T) {
	m := New()
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 10})
	m, _ = update(t, m, msg.ContentLoaded{Table: badgeTable("120ms", "3s")})

	m, cmd := update(t, m, msg.TableRefreshed{Table: badgeTable("120ms", "400ms")})
	require.NotNil(t, cmd)
	assert.Equal(t, map[string]bool{"job-1": true}, m.JustUpdated())

	m, _ = update(t, m, msg.FlashExpired{Generation: 0})
	assert.NotEmpty(t, m.JustUpdated(), "a stale timer leaves the flash alone")

	m, _ = update(t, m, msg.FlashExpired{Generation: 1})
	assert.Empty(t, m.JustUpdated())

	_, cmd = update(t, m, msg.TableRefreshed{Table: badgeTable("120ms", "400ms")})
	assert.Nil(t, cmd, "an identical snapshot does not flash")
}

func TestRefreshWithoutLoadMounts(t *testing.T) {
	m := New()
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 10})
	m, _ = update(t, m, msg.TableRefreshed{Table: badgeTable("1s")})
	assert.Equal(t, StateViewing, m.State())
	assert.Equal(t, "badges", m.Mounted().Mode())
	assert.Contains(t, screen(m), "jobs")
}

// -- Lifecycle ----------------------------------------------------------------

func TestQuitClosesMount(t *testing.T) {
	m := loadedText(t, 1_000)
	mounted := m.Mounted()
	m, cmd := update(t, m, tea.KeyPressMsg{Code: 'q', Text: "q"})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, mounted.Closed())
	assert.Zero(t, mounted.Render().Mounted())
}

func TestWatchMessagesWithoutProgram(t *testing.T) {
	m := New()
	m, cmd := update(t, m, msg.WatchDisconnected{Err: errors.New("reset")})
	assert.Nil(t, cmd)

	m, _ = update(t, m, msg.WatchReconnecting{Attempt: 2})
	assert.Equal(t, "reconnecting (2/10)", m.Status())

	m, _ = update(t, m, msg.WatchConnected{URL: "http://ci/jobs"})
	assert.Equal(t, "watching http://ci/jobs", m.Status())

	m, _ = update(t, m, msg.WatchAuthFailed{})
	assert.Contains(t, m.Status(), "authentication failed")
}

// -- Loaders ------------------------------------------------------------------

func TestLoadReaderCmd(t *testing.T) {
	got := LoadReaderCmd("pods", strings.NewReader(`{"body":[{"name":"api"}]}`), false)()
	loaded, ok := got.(msg.ContentLoaded)
	require.True(t, ok)
	require.NoError(t, loaded.Err)
	require.NotNil(t, loaded.Table)
	assert.Equal(t, "api", loaded.Table.Body[0].Name)

	got = LoadReaderCmd("log", strings.NewReader("plain\n"), false)()
	assert.Equal(t, msg.ContentLoaded{Source: "log", Text: "plain\n"}, got)

	got = LoadReaderCmd("log", strings.NewReader("plain\n"), true)()
	loaded = got.(msg.ContentLoaded)
	require.Error(t, loaded.Err)
	assert.Contains(t, loaded.Err.Error(), "decode log")
}

func TestFetchCmdForcedTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "plain\n")
	}))
	defer srv.Close()

	got := FetchCmd(context.Background(), client.New(), srv.URL, false)().(msg.ContentLoaded)
	require.NoError(t, got.Err)
	assert.Equal(t, "plain\n", got.Text)

	got = FetchCmd(context.Background(), client.New(), srv.URL, true)().(msg.ContentLoaded)
	require.Error(t, got.Err)
	assert.Contains(t, got.Err.Error(), "decode table")
}

func TestQuitCancelsFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	m := New(WithFetch(client.New(), srv.URL, false))
	load := m.Init()
	require.NotNil(t, load)

	_, cmd := update(t, m, tea.KeyPressMsg{Code: 'q', Text: "q"})
	require.NotNil(t, cmd)

	got := load().(msg.ContentLoaded)
	require.Error(t, got.Err)
	assert.ErrorIs(t, got.Err, context.Canceled)
	assert.Equal(t, srv.URL, got.Source)
}

func TestLoadFileCmdMissing(t *testing.T) {
	got := LoadFileCmd(t.TempDir()+"/nope.json", false)().(msg.ContentLoaded)
	require.Error(t, got.Err)
	assert.Contains(t, got.Err.Error(), "open ")
}
