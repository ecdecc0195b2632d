package app

// State represents the current application state.
type State int

const (
	StateLoading State = iota // Waiting for the initial content
	StateViewing              // Content mounted
	StateError                // Loading failed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateViewing:
		return "viewing"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}
