package app

import (
	"context"

	"github.com/mattjoyce/webshell/internal/config"
	"github.com/mattjoyce/webshell/internal/event"
	"github.com/mattjoyce/webshell/internal/plugin"
	"github.com/mattjoyce/webshell/internal/runtime"
	"github.com/mattjoyce/webshell/internal/state"
	"github.com/mattjoyce/webshell/internal/tag"
)

// App is a built application.
type App struct {
	runtime runtime.Runtime
	manager *Manager
}

var _ plugin.Host = (*App)(nil)

func (a *App) Manager() *Manager { return a.manager }

func (a *App) Runtime() runtime.Runtime { return a.runtime }

func (a *App) Config() *config.Config { return a.manager.config }

func (a *App) State() *state.Manager { return a.manager.state }

// Manage registers managed state. It only succeeds from plugin
// initialization or the setup hook; afterwards it returns ErrStateSealed.
func (a *App) Manage(v any) error { return a.manager.Manage(v) }

func (a *App) GetWindow(label tag.Label) (*Window, bool) { return a.manager.GetWindow(label) }

func (a *App) Windows() []*Window { return a.manager.Windows() }

func (a *App) EmitAll(ev tag.Event, payload any) error { return a.manager.EmitAll(ev, payload) }

// Listen registers a global host-side handler.
func (a *App) Listen(ev tag.Event, handler event.Handler) event.HandlerID {
	return a.manager.Listen(ev, "", handler)
}

// CreateWindow creates and attaches a window after startup.
func (a *App) CreateWindow(pending runtime.PendingWindow) (*Window, error) {
	return a.manager.createWindow(a.runtime.CreateWindow, pending)
}

// Run blocks on the event loop. In-flight invokes are allowed to finish
// before it returns.
func (a *App) Run(ctx context.Context) error {
	err := a.runtime.Run(ctx)
	a.manager.pool.Close()
	a.manager.pool.Wait()
	return err
}
