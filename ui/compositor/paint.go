package compositor

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"

	"github.com/miosa/osa-view/style"
	"github.com/miosa/osa-view/ui/ansi"
	"github.com/miosa/osa-view/ui/grid"
)

// paintLine decodes and re-encodes one line of output.
func paintLine(raw string) string {
	return ansi.RenderLine(ansi.DecodeLine(raw))
}

// paintBadges renders one grid row of badges.
func paintBadges(cells []grid.Cell) string {
	var b strings.Builder
	for i, c := range cells {
		if i > 0 {
			b.WriteByte(' ')
		}
		label := pad(c.Label, grid.BadgeWidth-1)
		st := style.Badge(string(c.Class))
		if c.JustUpdated {
			st = st.Bold(true).Underline(true)
		}
		b.WriteString(st.Render(label))
	}
	return b.String()
}

// paintNames renders one grid row of names padded to the column width.
func paintNames(cells []grid.Cell, colW, gutter int, actions ActionTable) string {
	var b strings.Builder
	for i, c := range cells {
		label := c.Label
		if limit := colW - gutter; limit > 0 && xansi.StringWidth(label) > limit {
			label = xansi.Truncate(label, limit, "…")
		}
		st := style.NameCell
		if _, ok := actions[c.Key]; ok {
			st = style.Clickable
		}
		if c.JustUpdated {
			st = style.Flash
		}
		label = st.Render(label)
		if i < len(cells)-1 {
			label = pad(label, colW)
		}
		b.WriteString(label)
	}
	return b.String()
}

func pad(s string, w int) string {
	if n := xansi.StringWidth(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}
