package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/mattjoyce/webshell/internal/ipc"
	"github.com/mattjoyce/webshell/internal/metrics"
	"github.com/mattjoyce/webshell/internal/plugin"
	"github.com/mattjoyce/webshell/internal/runtime"
	"github.com/mattjoyce/webshell/internal/state"
)

// InvokeMessage is a decoded call from a window's script.
type InvokeMessage struct {
	Command    string
	MainThread bool

	payload json.RawMessage
	window  *Window
}

// Payload is the full JSON the window posted.
func (m *InvokeMessage) Payload() json.RawMessage { return m.payload }

// Window is the window that sent the message.
func (m *InvokeMessage) Window() *Window { return m.window }

// State is the application's managed state.
func (m *InvokeMessage) State() *state.Manager { return m.window.manager.state }

// Bind decodes the payload into v.
func (m *InvokeMessage) Bind(v any) error {
	if err := json.Unmarshal(m.payload, v); err != nil {
		return fmt.Errorf("invalid arguments for %s: %w", m.Command, err)
	}
	return nil
}

// Invoke pairs a message with the resolver that answers it.
type Invoke struct {
	Message  *InvokeMessage
	Resolver *ipc.Resolver

	started  time.Time
	route    string
	outcome  string
	observed atomic.Bool
}

var _ plugin.Invoke = (*Invoke)(nil)

func newInvoke(w *Window, payload ipc.Payload) *Invoke {
	return &Invoke{
		Message: &InvokeMessage{
			Command:    payload.Command,
			MainThread: payload.MainThread,
			payload:    payload.Inner,
			window:     w,
		},
		Resolver: ipc.NewResolver(w, payload.Callback, payload.Error),
		started:  time.Now(),
	}
}

func (i *Invoke) Command() string { return i.Message.Command }

func (i *Invoke) Payload() json.RawMessage { return i.Message.payload }

func (i *Invoke) Window() plugin.Window { return i.Message.window }

// Resolve answers the invoke with v. Only the first answer is delivered.
func (i *Invoke) Resolve(v any) error {
	err := i.Resolver.Resolve(v)
	i.observe(metrics.OutcomeOK)
	return err
}

// Reject answers the invoke with an error value.
func (i *Invoke) Reject(v any) error {
	err := i.Resolver.Reject(v)
	i.observe(i.failure())
	return err
}

// Respond runs task and answers with its result. Tasks run on the worker
// pool unless the message asked for the main thread.
func (i *Invoke) Respond(task ipc.Task) {
	w := i.Message.window
	var spawner ipc.Spawner = w.manager.pool
	if i.Message.MainThread {
		spawner = mainThread{w.dispatcher}
	}
	ipc.RespondAsync(context.Background(), spawner, i.Resolver, task, func(taskErr, deliverErr error) {
		i.observe(i.outcomeFor(taskErr))
		if deliverErr != nil {
			w.manager.logger.Debug("invoke result not delivered", "window", w.label, "command", i.Message.Command, "error", deliverErr)
		}
	})
}

func (i *Invoke) outcomeFor(err error) string {
	if err == nil {
		return metrics.OutcomeOK
	}
	return i.failure()
}

func (i *Invoke) failure() string {
	if i.outcome != "" {
		return i.outcome
	}
	return metrics.OutcomeError
}

// mainThread runs tasks on a window's event loop.
type mainThread struct{ dispatcher runtime.Dispatch }

func (m mainThread) Spawn(ctx context.Context, fn func(context.Context)) error {
	return m.dispatcher.RunOnMainThread(func() { fn(ctx) })
}

func (i *Invoke) observe(outcome string) {
	if i.route == "" || !i.observed.CompareAndSwap(false, true) {
		return
	}
	i.Message.window.manager.metrics.ObserveInvoke(i.route, outcome, i.started)
}
