package virtual

// Item counts above which the windowed path replaces full rendering.
const (
	LineThreshold = 500
	RowThreshold  = 100
)

// ShouldVirtualize reports whether count items warrant windowing.
func ShouldVirtualize(count, threshold int) bool { return count > threshold }

// Gate picks between full and windowed rendering for one kind of content.
type Gate struct {
	Threshold int
}

// Virtualize reports whether count items take the windowed path.
func (g Gate) Virtualize(count int) bool { return ShouldVirtualize(count, g.Threshold) }
