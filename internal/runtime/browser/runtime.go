// Package browser is a Runtime that renders every window as a page in
// the user's web browser.
//
// The host serves window content over HTTP. Evaluated scripts reach the
// page over server-sent events and invoke messages come back as POSTs
// carrying a per-window bearer token.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	pkgbrowser "github.com/pkg/browser"

	"github.com/mattjoyce/webshell/internal/auth"
	"github.com/mattjoyce/webshell/internal/metrics"
	"github.com/mattjoyce/webshell/internal/runtime"
	"github.com/mattjoyce/webshell/internal/tag"
)

// Config configures the browser backend.
type Config struct {
	// Listen is the HTTP listen address, e.g. 127.0.0.1:4680.
	Listen string
	// DevOrigins are allowed cross-origin callers, typically the dev server.
	DevOrigins []string
	// Metrics, when set, is served on /metrics and wraps every request.
	Metrics *metrics.Metrics
	// OpenBrowser opens each window in the system browser once serving.
	OpenBrowser bool
	// ScriptBuffer is the per-window replay buffer size.
	ScriptBuffer int
	// Monitor is reported for monitor queries.
	Monitor runtime.Monitor
	Logger  *slog.Logger
}

// Runtime is the browser backend.
type Runtime struct {
	cfg    Config
	logger *slog.Logger
	tokens *auth.Tokens
	tasks  chan func()

	mu      sync.RWMutex
	windows map[tag.Label]*Window
	order   []tag.Label
	baseURL string
	stopped bool
}

// New creates a browser runtime.
func New(cfg Config) *Runtime {
	if cfg.Listen == "" {
		cfg.Listen = "127.0.0.1:4680"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Monitor.ScaleFactor == 0 {
		name := "browser"
		cfg.Monitor = runtime.Monitor{
			Name:        &name,
			Size:        runtime.PhysicalSize{Width: 1920, Height: 1080},
			ScaleFactor: 1,
		}
	}
	return &Runtime{
		cfg:     cfg,
		logger:  cfg.Logger,
		tokens:  auth.NewTokens(),
		tasks:   make(chan func(), 256),
		windows: make(map[tag.Label]*Window),
	}
}

// Factory returns a runtime.Factory for cfg.
func Factory(cfg Config) runtime.Factory {
	return func() (runtime.Runtime, error) {
		return New(cfg), nil
	}
}

// CreateWindow registers a page for pending and issues its token.
func (r *Runtime) CreateWindow(pending runtime.PendingWindow) (runtime.DetachedWindow, error) {
	if pending.Label.IsZero() {
		return runtime.DetachedWindow{}, fmt.Errorf("create window: empty label")
	}
	w := newWindow(r, pending, r.cfg.Monitor.ScaleFactor)

	r.mu.Lock()
	if _, exists := r.windows[pending.Label]; exists {
		r.mu.Unlock()
		return runtime.DetachedWindow{}, fmt.Errorf("create window %q: label already in use", pending.Label)
	}
	if _, err := r.tokens.Issue(pending.Label); err != nil {
		r.mu.Unlock()
		return runtime.DetachedWindow{}, fmt.Errorf("create window %q: issue token: %w", pending.Label, err)
	}
	r.windows[pending.Label] = w
	r.order = append(r.order, pending.Label)
	base := r.baseURL
	r.mu.Unlock()

	r.logger.Info("window created", "window", pending.Label, "url", pending.URL)
	if base != "" {
		r.open(base, pending.Label)
	}
	return w.detached(), nil
}

// Handler returns the HTTP handler serving every window.
func (r *Runtime) Handler() http.Handler {
	return r.routes()
}

// Run serves HTTP and executes main-thread tasks until ctx is done.
func (r *Runtime) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", r.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", r.cfg.Listen, err)
	}
	server := &http.Server{
		Handler:     r.routes(),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	base := "http://" + ln.Addr().String()
	r.mu.Lock()
	r.baseURL = base
	labels := append([]tag.Label(nil), r.order...)
	r.mu.Unlock()

	r.logger.Info("browser runtime serving", "url", base)
	for _, l := range labels {
		r.open(base, l)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	defer func() {
		r.mu.Lock()
		r.stopped = true
		r.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("browser runtime shutting down")
			r.closeHubs()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			return nil
		case err := <-errCh:
			return fmt.Errorf("server error: %w", err)
		case fn := <-r.tasks:
			fn()
		}
	}
}

// URL returns the address of label's page once the server is running.
func (r *Runtime) URL(label tag.Label) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.baseURL == "" {
		return "", false
	}
	return r.baseURL + windowPath(label), true
}

func (r *Runtime) open(base string, label tag.Label) {
	if !r.cfg.OpenBrowser {
		return
	}
	url := base + windowPath(label)
	if err := pkgbrowser.OpenURL(url); err != nil {
		r.logger.Warn("open browser failed", "window", label, "url", url, "error", err)
	}
}

func (r *Runtime) post(fn func()) error {
	r.mu.RLock()
	stopped := r.stopped
	r.mu.RUnlock()
	if stopped {
		return runtime.ErrWindowClosed
	}
	select {
	case r.tasks <- fn:
		return nil
	default:
		return fmt.Errorf("main thread queue full")
	}
}

func (r *Runtime) window(label tag.Label) (*Window, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.windows[label]
	return w, ok
}

func (r *Runtime) labels() []tag.Label {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]tag.Label, 0, len(r.windows))
	for _, l := range r.order {
		if _, ok := r.windows[l]; ok {
			out = append(out, l)
		}
	}
	return out
}

func (r *Runtime) remove(label tag.Label) {
	r.mu.Lock()
	delete(r.windows, label)
	r.mu.Unlock()
	r.tokens.Revoke(label)
}

func (r *Runtime) closeHubs() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.windows {
		w.hub.Close()
	}
}

func (r *Runtime) monitor() (*runtime.Monitor, error) {
	m := r.cfg.Monitor
	return &m, nil
}
