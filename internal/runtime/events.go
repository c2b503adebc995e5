package runtime

// WindowEventKind discriminates WindowEvent.
type WindowEventKind int

const (
	WindowResized WindowEventKind = iota + 1
	WindowMoved
	WindowCloseRequested
	WindowDestroyed
	WindowFocused
	WindowScaleFactorChanged
)

func (k WindowEventKind) String() string {
	switch k {
	case WindowResized:
		return "resized"
	case WindowMoved:
		return "moved"
	case WindowCloseRequested:
		return "close-requested"
	case WindowDestroyed:
		return "destroyed"
	case WindowFocused:
		return "focused"
	case WindowScaleFactorChanged:
		return "scale-factor-changed"
	}
	return "unknown"
}

// WindowEvent is a native event on a window. Only the fields relevant to
// Kind are set.
type WindowEvent struct {
	Kind WindowEventKind
	// Size is the new inner size for Resized and ScaleFactorChanged.
	Size PhysicalSize
	// Position is the new outer position for Moved.
	Position PhysicalPosition
	// Focused is true when focus was gained.
	Focused     bool
	ScaleFactor float64
}

// FileDropKind discriminates FileDropEvent.
type FileDropKind int

const (
	FileDropHovered FileDropKind = iota + 1
	FileDropDropped
	FileDropCancelled
)

// FileDropEvent reports files dragged over or dropped onto a window.
type FileDropEvent struct {
	Kind  FileDropKind
	Paths []string
}
