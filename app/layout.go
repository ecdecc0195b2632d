package app

const (
	// scrollbarWidth is reserved on the right even when the content fits,
	// so the grid does not reflow as the scrollbar appears.
	scrollbarWidth = 1

	statusHeight = 1

	// minViewHeight keeps a usable body on tiny terminals.
	minViewHeight = 1
)

// Layout holds computed dimensions for the current frame.
type Layout struct {
	TermWidth    int
	TermHeight   int
	HeaderHeight int // title line, 0 without a title
	StatusHeight int
	ViewWidth    int // width of the scroll container
	ViewHeight   int // height of the scroll container
}

// ComputeLayout calculates the layout dimensions for a terminal size.
func ComputeLayout(termW, termH int, hasTitle bool) Layout {
	l := Layout{
		TermWidth:    termW,
		TermHeight:   termH,
		StatusHeight: statusHeight,
	}
	if hasTitle {
		l.HeaderHeight = 1
	}

	l.ViewWidth = termW - scrollbarWidth
	if l.ViewWidth < 1 {
		l.ViewWidth = 1
	}

	l.ViewHeight = termH - l.HeaderHeight - l.StatusHeight
	if l.ViewHeight < minViewHeight {
		l.ViewHeight = minViewHeight
	}
	return l
}
