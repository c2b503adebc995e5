package browser

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"slices"
	"sync"

	"github.com/mattjoyce/webshell/internal/runtime"
	"github.com/mattjoyce/webshell/internal/tag"
)

// Window is a browser page standing in for a native window. Geometry is
// tracked host-side; title, icon, visibility and close are forwarded to
// the page as scripts.
type Window struct {
	rt      *Runtime
	label   tag.Label
	pending runtime.PendingWindow
	hub     *Hub

	mu          sync.Mutex
	closed      bool
	title       string
	size        runtime.PhysicalSize
	position    runtime.PhysicalPosition
	scale       float64
	fullscreen  bool
	maximized   bool
	resizable   bool
	decorations bool
	alwaysOnTop bool
	visible     bool
	listeners   []func(runtime.WindowEvent)
}

var _ runtime.Dispatch = (*Window)(nil)

func newWindow(rt *Runtime, pending runtime.PendingWindow, scale float64) *Window {
	attrs := pending.WindowAttributes
	w := &Window{
		rt:          rt,
		label:       pending.Label,
		pending:     pending,
		hub:         NewHub(rt.cfg.ScriptBuffer),
		title:       attrs.Title,
		size:        attrs.Size.ToPhysical(scale),
		scale:       scale,
		fullscreen:  attrs.Fullscreen,
		maximized:   attrs.Maximized,
		resizable:   attrs.Resizable,
		decorations: attrs.Decorations,
		alwaysOnTop: attrs.AlwaysOnTop,
		visible:     attrs.Visible,
	}
	if attrs.Position != nil {
		w.position = attrs.Position.ToPhysical(scale)
	}
	return w
}

func (w *Window) detached() runtime.DetachedWindow {
	return runtime.DetachedWindow{Label: w.label, Dispatcher: w}
}

func (w *Window) fire(ev runtime.WindowEvent) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	switch ev.Kind {
	case runtime.WindowResized:
		w.size = ev.Size
	case runtime.WindowMoved:
		w.position = ev.Position
	case runtime.WindowScaleFactorChanged:
		w.scale = ev.ScaleFactor
		w.size = ev.Size
	case runtime.WindowDestroyed:
		w.closed = true
	}
	listeners := slices.Clone(w.listeners)
	w.mu.Unlock()

	if ev.Kind == runtime.WindowDestroyed {
		w.rt.remove(w.label)
		w.hub.Close()
	}
	for _, fn := range listeners {
		fn(ev)
	}
}

func (w *Window) live() error {
	if w.closed {
		return runtime.ErrWindowClosed
	}
	return nil
}

// set applies fn under the lock unless the window is closed.
func (w *Window) set(fn func()) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.live(); err != nil {
		return err
	}
	fn()
	return nil
}

func (w *Window) page(script string) error {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return runtime.ErrWindowClosed
	}
	w.hub.Publish(script)
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
	return w.rt.CreateWindow(pending)
}

func (w *Window) ScaleFactor() (float64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.scale, w.live()
}

func (w *Window) InnerPosition() (runtime.PhysicalPosition, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.position, w.live()
}

func (w *Window) OuterPosition() (runtime.PhysicalPosition, error) {
	return w.InnerPosition()
}

func (w *Window) InnerSize() (runtime.PhysicalSize, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size, w.live()
}

func (w *Window) OuterSize() (runtime.PhysicalSize, error) {
	return w.InnerSize()
}

func (w *Window) IsFullscreen() (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fullscreen, w.live()
}

func (w *Window) IsMaximized() (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.maximized, w.live()
}

func (w *Window) CurrentMonitor() (*runtime.Monitor, error) {
	return w.rt.monitor()
}

func (w *Window) PrimaryMonitor() (*runtime.Monitor, error) {
	return w.rt.monitor()
}

func (w *Window) AvailableMonitors() ([]runtime.Monitor, error) {
	m, err := w.rt.monitor()
	if err != nil {
		return nil, err
	}
	return []runtime.Monitor{*m}, nil
}

func (w *Window) SetResizable(resizable bool) error {
	return w.set(func() { w.resizable = resizable })
}

func (w *Window) SetTitle(title string) error {
	if err := w.set(func() { w.title = title }); err != nil {
		return err
	}
	lit, _ := json.Marshal(title)
	return w.page(fmt.Sprintf("document.title = %s;", lit))
}

func (w *Window) Maximize() error {
	return w.set(func() { w.maximized = true })
}

func (w *Window) Unmaximize() error {
	return w.set(func() { w.maximized = false })
}

func (w *Window) Minimize() error { return runtime.ErrUnsupported }

func (w *Window) Unminimize() error { return runtime.ErrUnsupported }

func (w *Window) Show() error {
	if err := w.set(func() { w.visible = true }); err != nil {
		return err
	}
	return w.page(`document.documentElement.style.visibility = "";`)
}

func (w *Window) Hide() error {
	if err := w.set(func() { w.visible = false }); err != nil {
		return err
	}
	return w.page(`document.documentElement.style.visibility = "hidden";`)
}

// Close asks the page to close itself and destroys the window.
func (w *Window) Close() error {
	if err := w.page("window.close();"); err != nil {
		return err
	}
	w.fire(runtime.WindowEvent{Kind: runtime.WindowDestroyed})
	return nil
}

func (w *Window) SetDecorations(decorations bool) error {
	return w.set(func() { w.decorations = decorations })
}

func (w *Window) SetAlwaysOnTop(alwaysOnTop bool) error {
	return w.set(func() { w.alwaysOnTop = alwaysOnTop })
}

func (w *Window) SetSize(size runtime.Size) error {
	var next runtime.PhysicalSize
	if err := w.set(func() { next = size.ToPhysical(w.scale) }); err != nil {
		return err
	}
	w.fire(runtime.WindowEvent{Kind: runtime.WindowResized, Size: next})
	return nil
}

func (w *Window) SetMinSize(*runtime.Size) error { return w.set(func() {}) }

func (w *Window) SetMaxSize(*runtime.Size) error { return w.set(func() {}) }

func (w *Window) SetPosition(position runtime.Position) error {
	var next runtime.PhysicalPosition
	if err := w.set(func() { next = position.ToPhysical(w.scale) }); err != nil {
		return err
	}
	w.fire(runtime.WindowEvent{Kind: runtime.WindowMoved, Position: next})
	return nil
}

func (w *Window) SetFullscreen(fullscreen bool) error {
	if err := w.set(func() { w.fullscreen = fullscreen }); err != nil {
		return err
	}
	if fullscreen {
		return w.page(`if (document.documentElement.requestFullscreen) { document.documentElement.requestFullscreen().catch(function () {}); }`)
	}
	return w.page(`if (document.fullscreenElement) { document.exitFullscreen(); }`)
}

// SetIcon swaps the page favicon for the decoded icon.
func (w *Window) SetIcon(icon runtime.Icon) error {
	img, err := runtime.DecodeIcon(icon)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, runtime.ScaleIcon(img, 64)); err != nil {
		return fmt.Errorf("encode icon: %w", err)
	}
	href, _ := json.Marshal("data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()))
	return w.page(fmt.Sprintf(`(function () {
  var link = document.querySelector("link[rel~='icon']");
  if (!link) { link = document.createElement("link"); link.rel = "icon"; document.head.appendChild(link); }
  link.href = %s;
})();`, href))
}

func (w *Window) StartDragging() error { return runtime.ErrUnsupported }

func (w *Window) EvalScript(script string) error {
	return w.page(script)
}
