package headless

import (
	"slices"
	"sync"

	"github.com/mattjoyce/webshell/internal/runtime"
	"github.com/mattjoyce/webshell/internal/tag"
)

// Window is an in-memory window. It implements runtime.Dispatch.
type Window struct {
	rt      *Runtime
	label   tag.Label
	pending runtime.PendingWindow

	mu          sync.Mutex
	closed      bool
	title       string
	size        runtime.PhysicalSize
	position    runtime.PhysicalPosition
	minSize     *runtime.Size
	maxSize     *runtime.Size
	scale       float64
	resizable   bool
	fullscreen  bool
	maximized   bool
	minimized   bool
	visible     bool
	decorations bool
	alwaysOnTop bool
	icon        *runtime.Icon
	listeners   []func(runtime.WindowEvent)
}

var _ runtime.Dispatch = (*Window)(nil)

// Title returns the current title.
func (w *Window) Title() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.title
}

// Visible reports whether the window is shown.
func (w *Window) Visible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

// Closed reports whether the window was destroyed.
func (w *Window) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

func (w *Window) fire(ev runtime.WindowEvent) {
	w.mu.Lock()
	listeners := slices.Clone(w.listeners)
	if ev.Kind == runtime.WindowDestroyed {
		w.closed = true
	}
	w.mu.Unlock()

	if ev.Kind == runtime.WindowDestroyed {
		w.rt.remove(w.label)
	}
	for _, fn := range listeners {
		fn(ev)
	}
}

// mutate records the call and applies fn under the window lock.
func (w *Window) mutate(method string, fn func(), args ...any) error {
	w.rt.record(w.label, method, args...)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return runtime.ErrWindowClosed
	}
	if fn != nil {
		fn()
	}
	return nil
}

func (w *Window) read(method string) error {
	w.rt.record(w.label, method)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return runtime.ErrWindowClosed
	}
	return nil
}

func (w *Window) RunOnMainThread(fn func()) error {
	return w.rt.post(fn)
}

func (w *Window) OnWindowEvent(fn func(runtime.WindowEvent)) {
	w.mu.Lock()
	w.listeners = append(w.listeners, fn)
	w.mu.Unlock()
}

func (w *Window) CreateWindow(pending runtime.PendingWindow) (runtime.DetachedWindow, error) {
	w.rt.record(w.label, "CreateWindow", pending.Label)
	return w.rt.CreateWindow(pending)
}

func (w *Window) ScaleFactor() (float64, error) {
	if err := w.read("ScaleFactor"); err != nil {
		return 0, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.scale, nil
}

func (w *Window) InnerPosition() (runtime.PhysicalPosition, error) {
	if err := w.read("InnerPosition"); err != nil {
		return runtime.PhysicalPosition{}, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.position, nil
}

func (w *Window) OuterPosition() (runtime.PhysicalPosition, error) {
	if err := w.read("OuterPosition"); err != nil {
		return runtime.PhysicalPosition{}, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.position, nil
}

func (w *Window) InnerSize() (runtime.PhysicalSize, error) {
	if err := w.read("InnerSize"); err != nil {
		return runtime.PhysicalSize{}, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size, nil
}

func (w *Window) OuterSize() (runtime.PhysicalSize, error) {
	if err := w.read("OuterSize"); err != nil {
		return runtime.PhysicalSize{}, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size, nil
}

func (w *Window) IsFullscreen() (bool, error) {
	if err := w.read("IsFullscreen"); err != nil {
		return false, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fullscreen, nil
}

func (w *Window) IsMaximized() (bool, error) {
	if err := w.read("IsMaximized"); err != nil {
		return false, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.maximized, nil
}

func (w *Window) CurrentMonitor() (*runtime.Monitor, error) {
	if err := w.read("CurrentMonitor"); err != nil {
		return nil, err
	}
	return w.rt.primaryMonitor()
}

func (w *Window) PrimaryMonitor() (*runtime.Monitor, error) {
	if err := w.read("PrimaryMonitor"); err != nil {
		return nil, err
	}
	return w.rt.primaryMonitor()
}

func (w *Window) AvailableMonitors() ([]runtime.Monitor, error) {
	if err := w.read("AvailableMonitors"); err != nil {
		return nil, err
	}
	return append([]runtime.Monitor(nil), w.rt.monitors...), nil
}

func (w *Window) SetResizable(resizable bool) error {
	return w.mutate("SetResizable", func() { w.resizable = resizable }, resizable)
}

func (w *Window) SetTitle(title string) error {
	return w.mutate("SetTitle", func() { w.title = title }, title)
}

func (w *Window) Maximize() error {
	return w.mutate("Maximize", func() { w.maximized = true })
}

func (w *Window) Unmaximize() error {
	return w.mutate("Unmaximize", func() { w.maximized = false })
}

func (w *Window) Minimize() error {
	return w.mutate("Minimize", func() { w.minimized = true })
}

func (w *Window) Unminimize() error {
	return w.mutate("Unminimize", func() { w.minimized = false })
}

func (w *Window) Show() error {
	return w.mutate("Show", func() { w.visible = true })
}

func (w *Window) Hide() error {
	return w.mutate("Hide", func() { w.visible = false })
}

// Close destroys the window and fires WindowDestroyed.
func (w *Window) Close() error {
	if err := w.mutate("Close", nil); err != nil {
		return err
	}
	w.fire(runtime.WindowEvent{Kind: runtime.WindowDestroyed})
	return nil
}

func (w *Window) SetDecorations(decorations bool) error {
	return w.mutate("SetDecorations", func() { w.decorations = decorations }, decorations)
}

func (w *Window) SetAlwaysOnTop(alwaysOnTop bool) error {
	return w.mutate("SetAlwaysOnTop", func() { w.alwaysOnTop = alwaysOnTop }, alwaysOnTop)
}

// SetSize resizes the window and fires WindowResized.
func (w *Window) SetSize(size runtime.Size) error {
	var next runtime.PhysicalSize
	err := w.mutate("SetSize", func() {
		w.size = size.ToPhysical(w.scale)
		next = w.size
	}, size)
	if err != nil {
		return err
	}
	w.fire(runtime.WindowEvent{Kind: runtime.WindowResized, Size: next})
	return nil
}

func (w *Window) SetMinSize(size *runtime.Size) error {
	return w.mutate("SetMinSize", func() { w.minSize = size }, size)
}

func (w *Window) SetMaxSize(size *runtime.Size) error {
	return w.mutate("SetMaxSize", func() { w.maxSize = size }, size)
}

// SetPosition moves the window and fires WindowMoved.
func (w *Window) SetPosition(position runtime.Position) error {
	var next runtime.PhysicalPosition
	err := w.mutate("SetPosition", func() {
		w.position = position.ToPhysical(w.scale)
		next = w.position
	}, position)
	if err != nil {
		return err
	}
	w.fire(runtime.WindowEvent{Kind: runtime.WindowMoved, Position: next})
	return nil
}

func (w *Window) SetFullscreen(fullscreen bool) error {
	return w.mutate("SetFullscreen", func() { w.fullscreen = fullscreen }, fullscreen)
}

// SetIcon decodes icon so invalid images fail the same way they would on
// a native backend.
func (w *Window) SetIcon(icon runtime.Icon) error {
	w.rt.record(w.label, "SetIcon", icon)
	if _, err := runtime.DecodeIcon(icon); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return runtime.ErrWindowClosed
	}
	w.icon = &icon
	return nil
}

func (w *Window) StartDragging() error {
	return w.mutate("StartDragging", nil)
}

func (w *Window) EvalScript(script string) error {
	if err := w.mutate("EvalScript", nil, script); err != nil {
		return err
	}
	w.rt.mu.Lock()
	w.rt.scripts[w.label] = append(w.rt.scripts[w.label], script)
	w.rt.mu.Unlock()
	if w.rt.sink != nil {
		w.rt.sink(w.label, script)
	}
	return nil
}

func (r *Runtime) primaryMonitor() (*runtime.Monitor, error) {
	if len(r.monitors) == 0 {
		return nil, runtime.ErrNoMonitor
	}
	m := r.monitors[0]
	return &m, nil
}
