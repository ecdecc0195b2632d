package app

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	xansi "github.com/charmbracelet/x/ansi"

	"github.com/miosa/osa-view/client"
	"github.com/miosa/osa-view/config"
	"github.com/miosa/osa-view/markdown"
	"github.com/miosa/osa-view/msg"
	"github.com/miosa/osa-view/style"
	"github.com/miosa/osa-view/table"
	"github.com/miosa/osa-view/ui/common"
	"github.com/miosa/osa-view/ui/compositor"
	"github.com/miosa/osa-view/ui/grid"
	"github.com/miosa/osa-view/ui/virtual"
)

// wheelStep is the number of rows one mouse wheel notch scrolls.
const wheelStep = 3

// ProgramReady is sent to the model after the tea.Program is created so it
// can start background feeds that push messages into the program.
type ProgramReady struct{ Program *tea.Program }

var errNotLaidOut = errors.New("viewport not laid out")

// scroller is the scroll container the mounted content is bound to. It is
// shared by pointer so value copies of Model see the same position.
type scroller struct {
	offset int
	height int
}

func (s *scroller) ScrollOffset() int { return s.offset }

func (s *scroller) ViewportSize() (int, error) {
	if s.height <= 0 {
		return 0, errNotLaidOut
	}
	return s.height, nil
}

// clickSlot receives the action resolved by Mounted.Click during Update.
type clickSlot struct {
	action *compositor.Action
}

func (c *clickSlot) set(a compositor.Action) { c.action = &a }

func (c *clickSlot) take() (compositor.Action, bool) {
	if c.action == nil {
		return compositor.Action{}, false
	}
	a := *c.action
	c.action = nil
	return a, true
}

// Option configures a Model.
type Option func(*Model)

// WithConfig sets the render, duration and flash settings.
func WithConfig(cfg config.Config) Option {
	return func(m *Model) { m.cfg = cfg }
}

// WithMarkdown sets the renderer used for markdown name labels.
func WithMarkdown(r markdown.Renderer) Option {
	return func(m *Model) { m.md = r }
}

// WithPolicy sets the badge coloring policy.
func WithPolicy(p grid.StatusColorPolicy) Option {
	return func(m *Model) { m.policy = p }
}

// WithLoader sets the command that produces the initial msg.ContentLoaded.
func WithLoader(cmd tea.Cmd) Option {
	return func(m *Model) { m.loader = cmd }
}

// WithFetch loads url through c as the initial content. Quitting cancels
// a fetch still in flight.
func WithFetch(c *client.Client, url string, forceTable bool) Option {
	return func(m *Model) { m.loader = FetchCmd(m.ctx, c, url, forceTable) }
}

// WithWatcher subscribes to table refreshes once the program is ready.
func WithWatcher(w *client.Watcher) Option {
	return func(m *Model) { m.watcher = w }
}

// WithFollow streams r into the view once the program is ready and keeps
// the view pinned to the tail while it grows.
func WithFollow(r io.Reader) Option {
	return func(m *Model) {
		m.followR = r
		m.follow = true
	}
}

// WithSource names the content shown before anything loads.
func WithSource(name string) Option {
	return func(m *Model) { m.source = name }
}

// Model is the root bubbletea model hosting one mounted content view.
type Model struct {
	cfg    config.Config
	keys   KeyMap
	layout Layout
	state  State
	md     markdown.Renderer
	policy grid.StatusColorPolicy

	source string
	title  string
	err    error

	mount  *compositor.Mounted
	table  *table.Table
	scroll *scroller
	clicks *clickSlot

	justUpdated map[string]bool
	flashGen    int

	tooltip string
	status  string

	// -- Feeds --
	loader       tea.Cmd
	sender       client.Sender
	watcher      *client.Watcher
	reconnecting bool
	followR      io.Reader
	follow       bool

	// ctx scopes fetches and followed streams; shutdown cancels it.
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates the root model.
func New(opts ...Option) Model {
	ctx, cancel := context.WithCancel(context.Background())
	m := Model{
		cfg:          config.Default(),
		keys:         DefaultKeyMap(),
		state:        StateLoading,
		md:           markdown.Plain{},
		scroll:       &scroller{},
		clicks:       &clickSlot{},
		ctx:          ctx,
		cancel:       cancel,
	}
	for _, o := range opts {
		o(&m)
	}
	if m.policy == nil {
		m.policy = grid.DefaultPolicy(grid.Thresholds{
			Fast:   m.cfg.Durations.Fast(),
			Medium: m.cfg.Durations.Medium(),
		})
	}
	if m.loader == nil && m.followR != nil {
		// followed output starts empty and grows
		m.mountContent(compositor.TextContent(""))
		m.state = StateViewing
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.loader
}

// -- Accessors ----------------------------------------------------------------

// State returns the current application state.
func (m Model) State() State { return m.state }

// Mounted returns the mounted content, or nil before anything loaded.
func (m Model) Mounted() *compositor.Mounted { return m.mount }

// ScrollOffset returns the scroll position in rows.
func (m Model) ScrollOffset() int { return m.scroll.offset }

// Status returns the transient status line message.
func (m Model) Status() string { return m.status }

// Tooltip returns the tooltip of the hovered cell.
func (m Model) Tooltip() string { return m.tooltip }

// JustUpdated returns the keys of rows currently flashing.
func (m Model) JustUpdated() map[string]bool { return m.justUpdated }

// Following reports whether the view sticks to the tail of streamed output.
func (m Model) Following() bool { return m.follow }

// -- Update -------------------------------------------------------------------

// Update implements tea.Model.
func (m Model) Update(rawMsg tea.Msg) (tea.Model, tea.Cmd) {
	switch v := rawMsg.(type) {

	case tea.WindowSizeMsg:
		m.resize(v.Width, v.Height)
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(v)

	case tea.MouseWheelMsg:
		switch v.Button {
		case tea.MouseWheelUp:
			m.scrollBy(-wheelStep)
		case tea.MouseWheelDown:
			m.scrollBy(wheelStep)
		}
		return m, nil

	case tea.MouseClickMsg:
		return m.handleClick(v.X, v.Y)

	case tea.MouseMotionMsg:
		m.tooltip = ""
		if y, ok := m.viewY(v.Y); ok && m.mount != nil {
			m.tooltip = m.mount.Tooltip(v.X, y)
		}
		return m, nil

	// -- Program lifecycle --

	case ProgramReady:
		m.sender = v.Program
		return m, m.startFeeds()

	// -- Content --

	case msg.ContentLoaded:
		return m.handleLoaded(v)

	case msg.ContentAppended:
		m.handleAppend(v.Text)
		return m, nil

	case msg.StreamClosed:
		if v.Err != nil {
			slog.Warn("followed stream failed", "err", v.Err)
			m.status = "stream error: " + v.Err.Error()
		} else {
			m.status = "stream closed"
		}
		return m, nil

	case msg.TableRefreshed:
		return m.handleRefresh(v)

	case msg.FlashExpired:
		if v.Generation == m.flashGen {
			m.justUpdated = nil
			if m.mount != nil {
				m.mount.SetJustUpdated(nil)
			}
		}
		return m, nil

	case msg.CellClicked:
		if v.Command != "" {
			m.status = "▸ " + v.Command
		} else {
			m.status = "▸ " + v.RowKey
		}
		return m, nil

	// -- Watch feed --

	case msg.WatchConnected:
		m.reconnecting = false
		m.status = "watching " + v.URL
		return m, nil

	case msg.WatchReconnecting:
		m.status = fmt.Sprintf("reconnecting (%d/%d)", v.Attempt, client.MaxReconnects)
		return m, nil

	case msg.WatchAuthFailed:
		m.reconnecting = false
		m.status = "watch: authentication failed"
		return m, nil

	case msg.WatchDisconnected:
		return m.handleDisconnect(v)
	}

	return m, nil
}

func (m Model) handleKey(k tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	page := m.layout.ViewHeight
	if page < 1 {
		page = 1
	}
	switch {
	case key.Matches(k, m.keys.Quit):
		m.shutdown()
		return m, tea.Quit
	case key.Matches(k, m.keys.ScrollDown):
		m.scrollBy(1)
	case key.Matches(k, m.keys.ScrollUp):
		m.scrollBy(-1)
	case key.Matches(k, m.keys.PageDown):
		m.scrollBy(page)
	case key.Matches(k, m.keys.PageUp):
		m.scrollBy(-page)
	case key.Matches(k, m.keys.HalfPageDown):
		m.scrollBy(max(page/2, 1))
	case key.Matches(k, m.keys.HalfPageUp):
		m.scrollBy(-max(page/2, 1))
	case key.Matches(k, m.keys.ScrollTop):
		m.scrollTo(0)
	case key.Matches(k, m.keys.ScrollBottom):
		m.scrollToBottom()
	case key.Matches(k, m.keys.Follow):
		if m.followR != nil {
			m.follow = !m.follow
			if m.follow {
				m.scrollToBottom()
			}
		}
	}
	return m, nil
}

func (m Model) handleClick(x, termY int) (tea.Model, tea.Cmd) {
	y, ok := m.viewY(termY)
	if !ok || m.mount == nil {
		return m, nil
	}
	if !m.mount.Click(x, y) {
		return m, nil
	}
	act, ok := m.clicks.take()
	if !ok {
		return m, nil
	}
	return m, func() tea.Msg {
		return msg.CellClicked{RowKey: act.RowKey, Command: act.Command}
	}
}

func (m Model) handleLoaded(v msg.ContentLoaded) (tea.Model, tea.Cmd) {
	if v.Source != "" {
		m.source = v.Source
	}
	if v.Err != nil {
		slog.Error("load failed", "source", v.Source, "err", v.Err)
		m.err = v.Err
		m.state = StateError
		return m, nil
	}
	m.err = nil
	m.state = StateViewing
	m.scroll.offset = 0
	if v.Table != nil {
		m.table = v.Table
		m.mountContent(compositor.TableContent(v.Table))
	} else {
		m.table = nil
		m.mountContent(compositor.TextContent(v.Text))
	}
	m.retitle()
	slog.Info("content mounted", "source", m.source, "mode", m.mount.Mode(),
		"items", m.mount.Count(), "virtualized", m.mount.Virtualized())
	return m, nil
}

func (m *Model) handleAppend(text string) {
	if m.mount == nil || m.table != nil {
		m.table = nil
		m.mountContent(compositor.TextContent(""))
		m.state = StateViewing
		m.retitle()
	}
	pinned := m.follow && m.atBottom()
	m.mount.Append(text)
	if pinned {
		m.scrollToBottom()
	} else {
		m.clampScroll()
		m.mount.NotifyScroll()
	}
}

func (m Model) handleRefresh(v msg.TableRefreshed) (tea.Model, tea.Cmd) {
	if v.Table == nil {
		return m, nil
	}
	changed := client.Diff(m.table, v.Table)
	m.table = v.Table
	m.justUpdated = changed
	m.state = StateViewing
	content := compositor.TableContent(v.Table)
	if m.mount == nil {
		m.mountContent(content)
		m.mount.SetJustUpdated(changed)
	} else {
		m.mount.Update(m.props(content, changed))
	}
	m.retitle()
	m.clampScroll()
	m.mount.NotifyScroll()

	if len(changed) == 0 {
		return m, nil
	}
	slog.Debug("table refreshed", "changed", len(changed))
	m.flashGen++
	gen := m.flashGen
	return m, tea.Tick(m.cfg.Flash.Duration(), func(time.Time) tea.Msg {
		return msg.FlashExpired{Generation: gen}
	})
}

func (m Model) handleDisconnect(v msg.WatchDisconnected) (tea.Model, tea.Cmd) {
	if m.watcher == nil || m.watcher.IsClosed() || m.sender == nil {
		return m, nil
	}
	if m.reconnecting && v.Err != nil {
		// reconnect gave up
		slog.Warn("watch stream lost", "err", v.Err)
		m.reconnecting = false
		m.status = "watch lost: " + v.Err.Error()
		return m, nil
	}
	if v.Err != nil {
		slog.Debug("watch stream dropped", "err", v.Err)
	}
	m.reconnecting = true
	return m, m.watcher.ReconnectCmd(m.sender)
}

// startFeeds launches the watch and follow commands once messages can be
// pushed into the program.
func (m Model) startFeeds() tea.Cmd {
	if m.sender == nil {
		return nil
	}
	var cmds []tea.Cmd
	if m.watcher != nil && !m.watcher.IsClosed() {
		cmds = append(cmds, m.watcher.ListenCmd(m.sender))
	}
	if m.followR != nil {
		cmds = append(cmds, client.FollowCmd(m.ctx, m.followR, m.sender))
	}
	return tea.Batch(cmds...)
}

func (m *Model) shutdown() {
	if m.mount != nil {
		m.mount.Close()
	}
	if m.watcher != nil {
		m.watcher.Close()
	}
	m.cancel()
}

// -- Mounting -----------------------------------------------------------------

func (m *Model) props(c compositor.Content, justUpdated map[string]bool) compositor.Props {
	return compositor.Props{
		Content:     c,
		JustUpdated: justUpdated,
		OnCellClick: m.clicks.set,
	}
}

func (m *Model) mountContent(c compositor.Content) {
	if m.mount != nil {
		m.mount.Close()
	}
	m.mount = compositor.Mount(m.props(c, nil), compositor.Options{
		Width:    m.layout.ViewWidth,
		Markdown: m.md,
		Policy:   m.policy,
		Config:   m.cfg.Render,
		OnWindowChange: func(w virtual.Window) {
			first, last := w.Range()
			slog.Debug("window changed", "first", first, "last", last)
		},
	})
	m.mount.Attach(m.scroll)
}

// retitle picks the header text and relayouts when the header appears or
// disappears.
func (m *Model) retitle() {
	title := m.source
	if m.table != nil && m.table.Title != "" {
		title = m.table.Title
	}
	hadTitle := m.title != ""
	m.title = title
	if hadTitle != (title != "") && m.layout.TermWidth > 0 {
		m.resize(m.layout.TermWidth, m.layout.TermHeight)
	}
}

// -- Scrolling ----------------------------------------------------------------

func (m *Model) resize(w, h int) {
	m.layout = ComputeLayout(w, h, m.title != "")
	m.scroll.height = m.layout.ViewHeight
	if m.mount == nil {
		return
	}
	m.mount.SetWidth(m.layout.ViewWidth)
	if m.follow {
		m.scroll.offset = m.maxOffset()
	}
	m.clampScroll()
	m.mount.NotifyResize()
}

func (m *Model) totalSize() int {
	if m.mount == nil {
		return 0
	}
	return m.mount.TotalSize()
}

func (m *Model) maxOffset() int {
	return max(m.totalSize()-m.scroll.height, 0)
}

func (m *Model) atBottom() bool {
	return m.scroll.offset >= m.maxOffset()
}

func (m *Model) clampScroll() {
	m.scroll.offset = virtual.ClampOffset(m.scroll.offset, m.scroll.height, m.totalSize())
}

func (m *Model) scrollTo(offset int) {
	m.scroll.offset = offset
	m.clampScroll()
	if m.followR != nil {
		m.follow = m.atBottom()
	}
	if m.mount != nil {
		m.mount.NotifyScroll()
	}
}

func (m *Model) scrollBy(delta int) { m.scrollTo(m.scroll.offset + delta) }

func (m *Model) scrollToBottom() { m.scrollTo(m.maxOffset()) }

// viewY converts a terminal row into a row inside the scroll container.
func (m Model) viewY(termY int) (int, bool) {
	y := termY - m.layout.HeaderHeight
	if y < 0 || y >= m.layout.ViewHeight {
		return 0, false
	}
	return y, true
}

// -- View ---------------------------------------------------------------------

// View returns the tea.View for the current frame. All-motion mouse
// reporting drives cell tooltips.
func (m Model) View() tea.View {
	v := tea.NewView(m.renderView())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeAllMotion
	return v
}

// renderView composes the full terminal frame as a string.
func (m Model) renderView() string {
	if m.layout.TermWidth == 0 {
		return ""
	}
	var sections []string
	if m.layout.HeaderHeight > 0 {
		head := style.Title(m.title)
		if m.table != nil && m.table.Markdown {
			head = markdown.Inline(m.md, m.title)
		}
		sections = append(sections, xansi.Truncate(head, m.layout.TermWidth, "…"))
	}
	sections = append(sections, m.renderBody(), m.renderStatus())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderBody paints the scroll container plus the scrollbar column,
// exactly ViewHeight rows tall.
func (m Model) renderBody() string {
	var body string
	switch {
	case m.state == StateLoading:
		body = style.Hint.Render("loading " + m.source + "…")
	case m.state == StateError:
		body = style.ErrorText.Render("error: " + m.err.Error())
	case m.mount == nil || m.mount.Count() == 0:
		body = style.Empty.Render("(no content)")
	default:
		body = m.mount.Render().View(m.layout.ViewWidth)
	}

	w, h := m.layout.ViewWidth, m.layout.ViewHeight
	lines := strings.Split(body, "\n")
	bar := common.NewScrollbar(h, m.totalSize(), m.scroll.offset).Rows()

	var b strings.Builder
	for i := range h {
		line := ""
		if i < len(lines) {
			line = lines[i]
		}
		if lw := xansi.StringWidth(line); lw > w {
			line = xansi.Truncate(line, w, "")
		} else {
			line += strings.Repeat(" ", w-lw)
		}
		b.WriteString(line)
		if i < len(bar) {
			b.WriteString(bar[i])
		} else {
			b.WriteString(strings.Repeat(" ", scrollbarWidth))
		}
		if i < h-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// renderStatus lays out mode, position and one message. A tooltip or status
// message beats the position when space is short; help only shows when it
// fits.
func (m Model) renderStatus() string {
	width := m.layout.TermWidth
	mode := style.StatusKey.Render(" " + m.modeName() + " ")
	pos := style.StatusValue.Render(" " + m.position() + " ")
	fits := func(parts ...string) bool {
		w := 0
		for _, p := range parts {
			w += xansi.StringWidth(p)
		}
		return w <= width
	}

	var right string
	if text := cmp.Or(m.tooltip, m.status); text != "" {
		right = style.Tooltip.Render(" " + text + " ")
		if !fits(mode, pos, right) {
			pos = ""
		}
	} else if help := style.StatusBar.Render(" ") + m.helpText(); fits(mode, pos, help) {
		right = help
	}

	left := mode + pos
	gap := width - xansi.StringWidth(left) - xansi.StringWidth(right)
	line := left
	if gap > 0 {
		line += style.StatusBar.Render(strings.Repeat(" ", gap))
	}
	line += right
	return xansi.Truncate(line, width, "")
}

func (m Model) modeName() string {
	switch {
	case m.state != StateViewing || m.mount == nil:
		return m.state.String()
	case m.follow:
		return m.mount.Mode() + " ⇣"
	default:
		return m.mount.Mode()
	}
}

// position describes the visible range, e.g. "lines 1-20 of 10000".
func (m Model) position() string {
	total := m.totalSize()
	if total == 0 {
		return "empty"
	}
	unit := "rows"
	if m.mount != nil && m.mount.Mode() == "text" {
		unit = "lines"
	}
	first := m.scroll.offset + 1
	last := min(m.scroll.offset+m.scroll.height, total)
	s := fmt.Sprintf("%s %d-%d of %d", unit, first, last, total)
	if m.table != nil {
		s += fmt.Sprintf(" · %d items", m.table.Len())
	}
	if m.mount != nil && m.mount.Virtualized() {
		s += " · windowed"
	}
	return s
}

func (m Model) helpText() string {
	return common.KeyHelp(m.keys.ShortHelp()...)
}
