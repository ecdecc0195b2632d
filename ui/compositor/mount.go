package compositor

import (
	"log/slog"

	"github.com/miosa/osa-view/config"
	"github.com/miosa/osa-view/markdown"
	"github.com/miosa/osa-view/table"
	"github.com/miosa/osa-view/ui/grid"
	"github.com/miosa/osa-view/ui/source"
	"github.com/miosa/osa-view/ui/virtual"
)

// Props is the content side of a mount.
type Props struct {
	Content Content
	// VisibleRows overrides the table body, e.g. after filtering.
	VisibleRows []table.Row
	// JustUpdated holds the keys of rows to flash.
	JustUpdated map[string]bool
	OnCellClick func(Action)
}

// Options is the environment side of a mount, fixed at setup.
type Options struct {
	Width    int
	Markdown markdown.Renderer
	Policy   grid.StatusColorPolicy
	// Config tunes thresholds, overscan and estimates. The zero value means
	// config.Default().Render.
	Config         config.Render
	OnWindowChange func(virtual.Window)
}

// Mounted is content bound to a scroll container.
type Mounted struct {
	props Props
	opts  Options

	isTable bool
	lines   *source.Lines
	rows    source.Rows
	layout  *grid.Layout
	actions ActionTable

	gate     virtual.Gate
	estimate int
	overscan int

	// exactly one of offsets and virt is set
	offsets   *virtual.Offsets
	virt      *virtual.Virtualizer
	cancelObs func()

	container virtual.Container
	viewport  int
	closed    bool
}

// Mount prepares content for display. Nothing is measured until Attach.
func Mount(props Props, opts Options) *Mounted {
	if opts.Config == (config.Render{}) {
		opts.Config = config.Default().Render
	}
	if opts.Config.LineEstimate < 1 {
		opts.Config.LineEstimate = 1
	}
	if opts.Config.BadgeRowEstimate < 1 {
		opts.Config.BadgeRowEstimate = 1
	}
	if opts.Markdown == nil {
		opts.Markdown = markdown.Plain{}
	}
	if opts.Policy == nil {
		opts.Policy = grid.DefaultPolicy(grid.DefaultThresholds)
	}
	m := &Mounted{opts: opts}
	m.load(props)
	return m
}

func (m *Mounted) load(props Props) {
	m.props = props
	cfg := m.opts.Config
	if t := props.Content.Table; t != nil {
		rows := props.VisibleRows
		if rows == nil {
			rows = t.Body
		}
		m.isTable = true
		m.lines = nil
		m.rows = source.NewRows(rows)
		m.layout = grid.NewLayout(t, rows, grid.Options{
			Width:    m.opts.Width,
			Gutter:   cfg.NameColumnGutter,
			Policy:   m.opts.Policy,
			Markdown: m.opts.Markdown,
		})
		m.actions = BuildActions(rows)
		m.gate = virtual.Gate{Threshold: cfg.RowThreshold}
		m.estimate = cfg.BadgeRowEstimate
		m.overscan = cfg.BadgeOverscan
	} else {
		m.isTable = false
		m.lines = source.NewLines(props.Content.Text)
		m.rows = source.Rows{}
		m.layout = nil
		m.actions = nil
		m.gate = virtual.Gate{Threshold: cfg.LineThreshold}
		m.estimate = cfg.LineEstimate
		m.overscan = cfg.LineOverscan
	}
	m.relayout()
}

// gateCount is what the threshold applies to: lines or table rows.
func (m *Mounted) gateCount() int {
	if m.isTable {
		return m.rows.Len()
	}
	return m.lines.Len()
}

// Count returns the number of placeable items: lines or grid rows.
func (m *Mounted) Count() int {
	if m.isTable {
		return m.layout.GridRows()
	}
	return m.lines.Len()
}

func (m *Mounted) relayout() {
	n := m.Count()
	if !m.gate.Virtualize(m.gateCount()) {
		m.dropVirtualizer()
		m.offsets = virtual.FixedOffsets(n, m.estimate)
		return
	}
	m.offsets = nil
	if m.virt != nil {
		m.virt.SetCount(n)
		return
	}
	m.virt = virtual.NewFixed(n, m.estimate, m.overscan)
	if fn := m.opts.OnWindowChange; fn != nil {
		m.cancelObs = m.virt.Observe(fn)
	}
	slog.Debug("virtualizing", "items", n, "threshold", m.gate.Threshold)
	if m.container != nil {
		m.virt.Attach(m.container)
	}
}

func (m *Mounted) dropVirtualizer() {
	if m.virt == nil {
		return
	}
	if m.cancelObs != nil {
		m.cancelObs()
		m.cancelObs = nil
	}
	m.virt.Close()
	m.virt = nil
}

func (m *Mounted) layoutOffsets() *virtual.Offsets {
	if m.virt != nil {
		return m.virt.Offsets()
	}
	return m.offsets
}

// Virtualized reports whether the windowed path is active.
func (m *Mounted) Virtualized() bool { return m.virt != nil }

// TotalSize returns the full scrollable size in units.
func (m *Mounted) TotalSize() int {
	if m.closed {
		return 0
	}
	return m.layoutOffsets().Total()
}

// Mode names what is being shown: text, names or badges.
func (m *Mounted) Mode() string {
	if !m.isTable {
		return "text"
	}
	return m.layout.Mode().String()
}

// Attach binds the scroll container.
func (m *Mounted) Attach(c virtual.Container) {
	if m.closed {
		return
	}
	m.container = c
	m.measure()
	if m.virt != nil {
		m.virt.Attach(c)
	}
}

// NotifyScroll tells the mount the container scrolled.
func (m *Mounted) NotifyScroll() {
	if m.virt != nil {
		m.virt.NotifyScroll()
	}
}

// NotifyResize tells the mount the container changed size.
func (m *Mounted) NotifyResize() {
	if m.closed {
		return
	}
	m.measure()
	if m.virt != nil {
		m.virt.NotifyResize()
	}
}

// measure returns the clamped scroll offset and the viewport size, reusing
// the last good viewport when measurement fails.
func (m *Mounted) measure() (offset, viewport int) {
	if m.container == nil {
		return 0, 0
	}
	vp, err := m.container.ViewportSize()
	if err != nil {
		slog.Debug("viewport measurement failed", "err", err)
		vp = m.viewport
	} else {
		m.viewport = vp
	}
	return virtual.ClampOffset(m.container.ScrollOffset(), vp, m.TotalSize()), vp
}

// Render places the items to paint. Below the threshold every item is
// placed; above it only the virtualizer's window.
func (m *Mounted) Render() Frame {
	if m.closed {
		return Frame{}
	}
	offset, vp := m.measure()
	f := Frame{
		TotalSize:   m.TotalSize(),
		Offset:      offset,
		Viewport:    vp,
		Virtualized: m.virt != nil,
	}
	if m.virt != nil {
		w := m.virt.Window()
		f.Items = make([]Placed, 0, len(w.Items))
		for _, it := range w.Items {
			f.Items = append(f.Items, m.place(it))
		}
		return f
	}
	n := m.Count()
	f.Items = make([]Placed, 0, n)
	for i := 0; i < n; i++ {
		f.Items = append(f.Items, m.place(virtual.Item{
			Index: i,
			Start: m.offsets.Start(i),
			Size:  m.offsets.Size(i),
		}))
	}
	return f
}

func (m *Mounted) place(it virtual.Item) Placed {
	p := Placed{Index: it.Index, Y: it.Start, Height: it.Size}
	if !m.isTable {
		p.Lines = []string{paintLine(m.lines.Line(it.Index))}
		p.Keys = []string{m.lines.Key(it.Index)}
		return p
	}
	p.Cells = m.layout.CellsForRows(it.Index, it.Index+1, m.props.JustUpdated)
	p.Keys = make([]string, len(p.Cells))
	for i, c := range p.Cells {
		p.Keys[i] = c.Key
	}
	if m.layout.Mode() == grid.Badges {
		p.Lines = []string{paintBadges(p.Cells)}
	} else {
		p.Lines = []string{paintNames(p.Cells, m.layout.ColumnWidth(), m.opts.Config.NameColumnGutter, m.actions)}
	}
	return p
}

// cellAt hit-tests viewport coordinates against the grid.
func (m *Mounted) cellAt(x, y int) (grid.Cell, bool) {
	if m.closed || !m.isTable || y < 0 {
		return grid.Cell{}, false
	}
	offset, _ := m.measure()
	pos := offset + y
	o := m.layoutOffsets()
	if pos >= o.Total() {
		return grid.Cell{}, false
	}
	r := o.IndexAt(pos)
	if r < 0 {
		return grid.Cell{}, false
	}
	return m.layout.CellAt(r, x, m.props.JustUpdated)
}

// Click resolves a click at viewport coordinates to the row's action and
// hands it to OnCellClick. It reports whether an action was found.
func (m *Mounted) Click(x, y int) bool {
	c, ok := m.cellAt(x, y)
	if !ok {
		return false
	}
	act, ok := m.actions.Lookup(c.Key)
	if !ok {
		return false
	}
	slog.Debug("cell clicked", "row", act.RowKey, "command", act.Command)
	if m.props.OnCellClick != nil {
		m.props.OnCellClick(act)
	}
	return true
}

// Tooltip returns the tooltip of the cell under viewport coordinates.
func (m *Mounted) Tooltip(x, y int) string {
	c, ok := m.cellAt(x, y)
	if !ok {
		return ""
	}
	return c.Tooltip
}

// Append adds streamed text and returns the number of new lines. Crossing
// the line threshold switches to the windowed path.
func (m *Mounted) Append(text string) int {
	if m.closed || m.isTable {
		return 0
	}
	n := m.lines.Append(text)
	if n > 0 {
		m.relayout()
	}
	return n
}

// Update replaces the content, e.g. with a refreshed table snapshot.
func (m *Mounted) Update(props Props) {
	if m.closed {
		return
	}
	if props.Content.IsTable() != m.isTable {
		m.dropVirtualizer()
	}
	m.load(props)
}

// SetJustUpdated replaces the set of flashing rows.
func (m *Mounted) SetJustUpdated(keys map[string]bool) {
	m.props.JustUpdated = keys
}

// SetWidth reflows name grids for a new viewport width.
func (m *Mounted) SetWidth(w int) {
	if m.closed {
		return
	}
	m.opts.Width = w
	if m.layout != nil {
		m.layout.SetWidth(w)
		m.relayout()
	}
}

// Close releases the virtualizer and its observers. A closed mount renders
// an empty frame and ignores every later call.
func (m *Mounted) Close() {
	if m.closed {
		return
	}
	m.dropVirtualizer()
	m.closed = true
	m.container = nil
}

// Closed reports whether Close was called.
func (m *Mounted) Closed() bool { return m.closed }
