// Package app composes the runtime, window manager, invoke bridge, event
// bus and plugins into a running application.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/mattjoyce/webshell/internal/assets"
	"github.com/mattjoyce/webshell/internal/async"
	"github.com/mattjoyce/webshell/internal/config"
	"github.com/mattjoyce/webshell/internal/endpoints"
	"github.com/mattjoyce/webshell/internal/ipc"
	"github.com/mattjoyce/webshell/internal/log"
	"github.com/mattjoyce/webshell/internal/metrics"
	"github.com/mattjoyce/webshell/internal/plugin"
	"github.com/mattjoyce/webshell/internal/runtime"
	"github.com/mattjoyce/webshell/internal/state"
	"github.com/mattjoyce/webshell/internal/tag"
)

// Context carries what an application is built from.
type Context struct {
	Config            *config.Config
	Assets            assets.Assets
	DefaultWindowIcon *runtime.Icon
}

// SetupHook runs once after the initial windows exist. An error aborts
// startup.
type SetupHook func(app *App) error

// WindowConfigurer adjusts the attributes of a window declared with
// Builder.CreateWindow.
type WindowConfigurer func(runtime.WindowAttributes, runtime.WebviewAttributes) (runtime.WindowAttributes, runtime.WebviewAttributes)

// Builder accumulates application configuration. Everything registered on
// a Builder is fixed once Run starts.
type Builder struct {
	factory       runtime.Factory
	commands      map[string]CommandHandler
	invokeHandler InvokeHandler
	setup         SetupHook
	onPageLoad    PageLoadHook
	plugins       *plugin.Store
	state         *state.Manager
	pending       []runtime.PendingWindow
	protocols     map[string]runtime.URISchemeHandler
	deps          endpoints.Deps
	metrics       *metrics.Metrics

	err     error
	running atomic.Bool
}

// NewBuilder returns a builder whose windows are created by factory.
func NewBuilder(factory runtime.Factory) *Builder {
	return &Builder{
		factory:   factory,
		commands:  make(map[string]CommandHandler),
		plugins:   plugin.NewStore(),
		state:     state.NewManager(),
		protocols: make(map[string]runtime.URISchemeHandler),
	}
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Err returns the first configuration error recorded so far.
func (b *Builder) Err() error { return b.err }

// Command registers handler under name.
func (b *Builder) Command(name string, handler CommandHandler) *Builder {
	switch {
	case name == "" || name == ipc.InitializedCommand:
		return b.fail(fmt.Errorf("invalid command name %q", name))
	case strings.HasPrefix(name, ipc.PluginPrefix):
		return b.fail(fmt.Errorf("command %q uses the plugin namespace", name))
	}
	if _, ok := b.commands[name]; ok {
		return b.fail(fmt.Errorf("command %q registered twice", name))
	}
	b.commands[name] = handler
	return b
}

// InvokeHandler handles invokes that match no registered command.
func (b *Builder) InvokeHandler(h InvokeHandler) *Builder {
	b.invokeHandler = h
	return b
}

func (b *Builder) Setup(h SetupHook) *Builder {
	b.setup = h
	return b
}

func (b *Builder) OnPageLoad(h PageLoadHook) *Builder {
	b.onPageLoad = h
	return b
}

func (b *Builder) Plugin(p plugin.Plugin) *Builder {
	if err := b.plugins.Add(p); err != nil {
		return b.fail(err)
	}
	return b
}

// Manage registers application state. Registering a second value of the
// same type is a configuration error reported by Run.
func (b *Builder) Manage(v any) *Builder {
	if err := b.state.Set(v); err != nil {
		return b.fail(err)
	}
	return b
}

// CreateWindow declares a window created at startup, ahead of the windows
// in the config. An invalid label panics.
func (b *Builder) CreateWindow(label string, url config.WindowURL, configure WindowConfigurer) *Builder {
	attrs := runtime.NewWindowAttributes()
	webview := runtime.NewWebviewAttributes(url)
	if configure != nil {
		attrs, webview = configure(attrs, webview)
	}
	b.pending = append(b.pending, runtime.NewPendingWindow(attrs, webview, tag.MustLabel(label)))
	return b
}

// RegisterURIScheme serves scheme in every window.
func (b *Builder) RegisterURIScheme(scheme string, handler runtime.URISchemeHandler) *Builder {
	b.protocols[scheme] = handler
	return b
}

// Endpoints sets the collaborators used by the built-in modules.
func (b *Builder) Endpoints(deps endpoints.Deps) *Builder {
	b.deps = deps
	return b
}

func (b *Builder) Metrics(m *metrics.Metrics) *Builder {
	b.metrics = m
	return b
}

// Build creates the runtime, initializes plugins, creates every declared
// window and runs the setup hook. The returned App has not started its
// event loop.
func (b *Builder) Build(c Context) (*App, error) {
	if !b.running.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}
	if b.err != nil {
		return nil, b.err
	}
	if b.factory == nil {
		return nil, errors.New("no runtime factory")
	}
	cfg := c.Config
	if cfg == nil {
		cfg = config.Defaults()
	}

	pending := append([]runtime.PendingWindow(nil), b.pending...)
	for _, wc := range cfg.Tauri.Windows {
		pending = append(pending, runtime.PendingWindowFromConfig(wc, runtime.NewWebviewAttributes(wc.URL), tag.MustLabel(wc.Label)))
	}

	rt, err := b.factory()
	if err != nil {
		return nil, fmt.Errorf("create runtime: %w", err)
	}

	logger := log.WithComponent("app")
	m := newManager(cfg, managerOptions{
		assets:        c.Assets,
		defaultIcon:   c.DefaultWindowIcon,
		metrics:       b.metrics,
		pool:          async.NewPool(cfg.Runtime.Workers, logger),
		plugins:       b.plugins,
		state:         b.state,
		endpoints:     endpoints.New(b.deps),
		commands:      b.commands,
		invokeHandler: b.invokeHandler,
		onPageLoad:    b.onPageLoad,
		protocols:     b.protocols,
	})
	a := &App{runtime: rt, manager: m}

	if err := m.InitializePlugins(a); err != nil {
		return nil, err
	}

	var labels []tag.Label
	for _, p := range pending {
		prepared, err := m.PrepareWindow(p, labels)
		if err != nil {
			return nil, err
		}
		detached, err := rt.CreateWindow(prepared)
		if err != nil {
			return nil, fmt.Errorf("create window %s: %w", p.Label, err)
		}
		if _, err := m.AttachWindow(detached); err != nil {
			return nil, err
		}
		labels = append(labels, p.Label)
	}

	if b.setup != nil {
		if err := b.setup(a); err != nil {
			return nil, fmt.Errorf("setup: %w", err)
		}
	}
	m.seal()
	logger.Info("application ready", "windows", len(labels), "plugins", b.plugins.Len())
	return a, nil
}

// Run builds the application and blocks on the runtime's event loop.
func (b *Builder) Run(ctx context.Context, c Context) error {
	a, err := b.Build(c)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}
