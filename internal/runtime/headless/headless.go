// Package headless is an in-process Runtime with no native windows.
//
// Window state lives in memory and every Dispatch call is recorded, which
// makes it the backend of choice for tests and for running the shell on a
// machine without a display.
package headless

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mattjoyce/webshell/internal/runtime"
	"github.com/mattjoyce/webshell/internal/tag"
)

// ErrUnknownWindow is returned when a label has no live window.
var ErrUnknownWindow = errors.New("unknown window")

// Call is one recorded Dispatch invocation.
type Call struct {
	Window tag.Label
	Method string
	Args   []any
}

// ScriptSink receives every evaluated script.
type ScriptSink func(label tag.Label, script string)

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the runtime logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) { r.logger = logger }
}

// WithScriptSink forwards evaluated scripts to sink.
func WithScriptSink(sink ScriptSink) Option {
	return func(r *Runtime) { r.sink = sink }
}

// WithMonitors replaces the default single 1920x1080 monitor.
func WithMonitors(monitors ...runtime.Monitor) Option {
	return func(r *Runtime) { r.monitors = monitors }
}

// Runtime is the headless backend.
type Runtime struct {
	logger   *slog.Logger
	sink     ScriptSink
	monitors []runtime.Monitor

	tasks chan func()
	exit  chan struct{}
	once  sync.Once

	mu      sync.Mutex
	windows map[tag.Label]*Window
	order   []tag.Label
	calls   []Call
	scripts map[tag.Label][]string
}

// New creates a headless runtime.
func New(opts ...Option) *Runtime {
	name := "headless"
	r := &Runtime{
		logger: slog.Default(),
		monitors: []runtime.Monitor{{
			Name:        &name,
			Size:        runtime.PhysicalSize{Width: 1920, Height: 1080},
			ScaleFactor: 1,
		}},
		tasks:   make(chan func(), 256),
		exit:    make(chan struct{}),
		windows: make(map[tag.Label]*Window),
		scripts: make(map[tag.Label][]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Factory returns a runtime.Factory producing headless runtimes.
func Factory(opts ...Option) runtime.Factory {
	return func() (runtime.Runtime, error) {
		return New(opts...), nil
	}
}

// CreateWindow creates an in-memory window.
func (r *Runtime) CreateWindow(pending runtime.PendingWindow) (runtime.DetachedWindow, error) {
	if pending.Label.IsZero() {
		return runtime.DetachedWindow{}, fmt.Errorf("create window: empty label")
	}
	if len(r.monitors) == 0 {
		return runtime.DetachedWindow{}, runtime.ErrNoMonitor
	}
	scale := r.monitors[0].ScaleFactor
	attrs := pending.WindowAttributes
	w := &Window{
		rt:          r,
		label:       pending.Label,
		pending:     pending,
		title:       attrs.Title,
		size:        attrs.Size.ToPhysical(scale),
		resizable:   attrs.Resizable,
		fullscreen:  attrs.Fullscreen,
		maximized:   attrs.Maximized,
		visible:     attrs.Visible,
		decorations: attrs.Decorations,
		alwaysOnTop: attrs.AlwaysOnTop,
		scale:       scale,
	}
	if attrs.Position != nil {
		w.position = attrs.Position.ToPhysical(scale)
	}
	if attrs.MinSize != nil {
		s := runtime.Size{Logical: attrs.MinSize}
		w.minSize = &s
	}
	if attrs.MaxSize != nil {
		s := runtime.Size{Logical: attrs.MaxSize}
		w.maxSize = &s
	}

	r.mu.Lock()
	if _, exists := r.windows[pending.Label]; exists {
		r.mu.Unlock()
		return runtime.DetachedWindow{}, fmt.Errorf("create window %q: label already in use", pending.Label)
	}
	r.windows[pending.Label] = w
	r.order = append(r.order, pending.Label)
	r.mu.Unlock()

	r.logger.Debug("window created", "window", pending.Label, "url", pending.URL)
	return runtime.DetachedWindow{Label: pending.Label, Dispatcher: w}, nil
}

// Run executes main-thread tasks until ctx is done or Exit is called.
func (r *Runtime) Run(ctx context.Context) error {
	r.logger.Info("headless runtime running")
	for {
		select {
		case <-ctx.Done():
			r.Exit()
			r.logger.Info("headless runtime stopped", "reason", ctx.Err())
			return nil
		case <-r.exit:
			r.logger.Info("headless runtime exited")
			return nil
		case fn := <-r.tasks:
			fn()
		}
	}
}

// Exit stops Run.
func (r *Runtime) Exit() {
	r.once.Do(func() { close(r.exit) })
}

func (r *Runtime) post(fn func()) error {
	select {
	case <-r.exit:
		return runtime.ErrWindowClosed
	default:
	}
	select {
	case <-r.exit:
		return runtime.ErrWindowClosed
	case r.tasks <- fn:
		return nil
	}
}

// Window returns the live window for label.
func (r *Runtime) Window(label tag.Label) (*Window, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.windows[label]
	return w, ok
}

// Labels returns live window labels in creation order.
func (r *Runtime) Labels() []tag.Label {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]tag.Label, 0, len(r.order))
	for _, l := range r.order {
		if _, ok := r.windows[l]; ok {
			out = append(out, l)
		}
	}
	return out
}

// Calls returns every recorded Dispatch call.
func (r *Runtime) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// CallsTo returns calls of method on label.
func (r *Runtime) CallsTo(label tag.Label, method string) []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.Window == label && c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Scripts returns the scripts evaluated in label, oldest first.
func (r *Runtime) Scripts(label tag.Label) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.scripts[label]...)
}

// Inject posts a raw invoke message from label's script context.
func (r *Runtime) Inject(label tag.Label, message []byte) error {
	w, ok := r.Window(label)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWindow, label)
	}
	if w.pending.RPCHandler == nil {
		return fmt.Errorf("window %s has no rpc handler", label)
	}
	w.pending.RPCHandler(runtime.DetachedWindow{Label: label, Dispatcher: w}, message)
	return nil
}

// Emit delivers a native window event to label's listeners.
func (r *Runtime) Emit(label tag.Label, ev runtime.WindowEvent) error {
	w, ok := r.Window(label)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWindow, label)
	}
	w.fire(ev)
	return nil
}

// DropFiles simulates a file drag and drop on label. It reports whether
// the window's handler consumed the event.
func (r *Runtime) DropFiles(label tag.Label, ev runtime.FileDropEvent) (bool, error) {
	w, ok := r.Window(label)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownWindow, label)
	}
	if !w.pending.WebviewAttributes.FileDropEnabled || w.pending.FileDropHandler == nil {
		return false, nil
	}
	return w.pending.FileDropHandler(ev, runtime.DetachedWindow{Label: label, Dispatcher: w}), nil
}

// Protocol serves uri through the custom protocol registered on label.
func (r *Runtime) Protocol(label tag.Label, scheme, uri string) ([]byte, error) {
	w, ok := r.Window(label)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownWindow, label)
	}
	handler, ok := w.pending.WebviewAttributes.CustomProtocols[scheme]
	if !ok {
		return nil, fmt.Errorf("no %q protocol on window %s", scheme, label)
	}
	return handler(uri)
}

// Pending returns the pending window label was created from.
func (r *Runtime) Pending(label tag.Label) (runtime.PendingWindow, bool) {
	w, ok := r.Window(label)
	if !ok {
		return runtime.PendingWindow{}, false
	}
	return w.pending, true
}

func (r *Runtime) record(label tag.Label, method string, args ...any) {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Window: label, Method: method, Args: args})
	r.mu.Unlock()
}

func (r *Runtime) remove(label tag.Label) {
	r.mu.Lock()
	delete(r.windows, label)
	r.mu.Unlock()
}
