package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/mattjoyce/webshell/internal/assets"
	"github.com/mattjoyce/webshell/internal/async"
	"github.com/mattjoyce/webshell/internal/config"
	"github.com/mattjoyce/webshell/internal/endpoints"
	"github.com/mattjoyce/webshell/internal/event"
	"github.com/mattjoyce/webshell/internal/ipc"
	"github.com/mattjoyce/webshell/internal/log"
	"github.com/mattjoyce/webshell/internal/metrics"
	"github.com/mattjoyce/webshell/internal/plugin"
	"github.com/mattjoyce/webshell/internal/runtime"
	"github.com/mattjoyce/webshell/internal/state"
	"github.com/mattjoyce/webshell/internal/tag"
)

// LocalScheme is the custom protocol that serves local assets.
const LocalScheme = "tauri"

// CommandHandler answers a user command. It runs on the worker pool.
type CommandHandler func(ctx context.Context, msg *InvokeMessage) (any, error)

// InvokeHandler receives invokes that no registered command matched.
type InvokeHandler func(invoke *Invoke)

// PageLoadHook runs when a window reports a finished page load.
type PageLoadHook func(window *Window, payload ipc.PageLoadPayload)

// Manager owns every attached window and the state shared between them.
// A Manager lives as long as the application.
type Manager struct {
	config      *config.Config
	packageInfo config.PackageInfo
	assets      assets.Assets
	defaultIcon *runtime.Icon
	logger      *slog.Logger
	metrics     *metrics.Metrics
	pool        *async.Pool

	listeners *event.Listeners
	plugins   *plugin.Store
	state     *state.Manager
	endpoints *endpoints.Endpoints
	sealed    atomic.Bool

	commands      map[string]CommandHandler
	invokeHandler InvokeHandler
	onPageLoad    PageLoadHook
	protocols     map[string]runtime.URISchemeHandler

	mu      sync.RWMutex
	windows map[tag.Label]*Window

	saltMu sync.Mutex
	salts  map[string]struct{}
}

type managerOptions struct {
	assets        assets.Assets
	defaultIcon   *runtime.Icon
	metrics       *metrics.Metrics
	pool          *async.Pool
	plugins       *plugin.Store
	state         *state.Manager
	endpoints     *endpoints.Endpoints
	commands      map[string]CommandHandler
	invokeHandler InvokeHandler
	onPageLoad    PageLoadHook
	protocols     map[string]runtime.URISchemeHandler
}

func newManager(cfg *config.Config, opts managerOptions) *Manager {
	if cfg == nil {
		cfg = config.Defaults()
	}
	m := &Manager{
		config:        cfg,
		packageInfo:   cfg.PackageInfo(),
		assets:        opts.assets,
		defaultIcon:   opts.defaultIcon,
		logger:        log.WithComponent("manager"),
		metrics:       opts.metrics,
		pool:          opts.pool,
		listeners:     event.NewListeners(),
		plugins:       opts.plugins,
		state:         opts.state,
		endpoints:     opts.endpoints,
		commands:      opts.commands,
		invokeHandler: opts.invokeHandler,
		onPageLoad:    opts.onPageLoad,
		protocols:     opts.protocols,
		windows:       make(map[tag.Label]*Window),
		salts:         make(map[string]struct{}),
	}
	if m.pool == nil {
		m.pool = async.NewPool(cfg.Runtime.Workers, m.logger)
	}
	if m.plugins == nil {
		m.plugins = plugin.NewStore()
	}
	if m.state == nil {
		m.state = state.NewManager()
	}
	if m.endpoints == nil {
		m.endpoints = endpoints.New(endpoints.Deps{})
	}
	if m.commands == nil {
		m.commands = make(map[string]CommandHandler)
	}
	return m
}

func (m *Manager) Config() *config.Config { return m.config }

func (m *Manager) PackageInfo() config.PackageInfo { return m.packageInfo }

func (m *Manager) State() *state.Manager { return m.state }

// Manage registers v as managed state. A second value of the same type
// is rejected, and so is anything registered once startup has finished.
func (m *Manager) Manage(v any) error {
	if m.sealed.Load() {
		return ErrStateSealed
	}
	return m.state.Set(v)
}

// seal closes managed state to further registration.
func (m *Manager) seal() { m.sealed.Store(true) }

func (m *Manager) Plugins() *plugin.Store { return m.plugins }

// EmitFunctionName is the window global that receives emitted events.
func (m *Manager) EmitFunctionName() string { return m.config.Runtime.EmitFunctionName }

// GenerateSalt issues a single-use token.
func (m *Manager) GenerateSalt() string {
	salt := uuid.NewString()
	m.saltMu.Lock()
	m.salts[salt] = struct{}{}
	m.saltMu.Unlock()
	return salt
}

// VerifySalt consumes salt. It reports true only the first time a salt
// issued by GenerateSalt is presented.
func (m *Manager) VerifySalt(salt string) bool {
	m.saltMu.Lock()
	defer m.saltMu.Unlock()
	if _, ok := m.salts[salt]; !ok {
		return false
	}
	delete(m.salts, salt)
	return true
}

// Windows returns the attached windows sorted by label.
func (m *Manager) Windows() []*Window {
	m.mu.RLock()
	out := make([]*Window, 0, len(m.windows))
	for _, w := range m.windows {
		out = append(out, w)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].label.Compare(out[j].label) < 0 })
	return out
}

// Labels returns the labels of the attached windows in sorted order.
func (m *Manager) Labels() []tag.Label {
	windows := m.Windows()
	out := make([]tag.Label, len(windows))
	for i, w := range windows {
		out[i] = w.label
	}
	return out
}

func (m *Manager) GetWindow(label tag.Label) (*Window, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.windows[label]
	return w, ok
}

func (m *Manager) hasWindow(label tag.Label) bool {
	_, ok := m.GetWindow(label)
	return ok
}

// Listen registers handler for event. A zero scope listens to triggers
// from every window.
func (m *Manager) Listen(ev tag.Event, scope tag.Label, handler event.Handler) event.HandlerID {
	return m.listeners.Listen(ev, scope, handler)
}

// Once is Listen for a single delivery.
func (m *Manager) Once(ev tag.Event, scope tag.Label, handler event.Handler) event.HandlerID {
	return m.listeners.Once(ev, scope, handler)
}

func (m *Manager) Unlisten(id event.HandlerID) bool { return m.listeners.Unlisten(id) }

// Trigger fires host-side handlers for event.
func (m *Manager) Trigger(ev tag.Event, scope tag.Label, data *string) {
	m.listeners.Trigger(ev, scope, data)
	m.metrics.EventTriggered()
}

// EmitAll emits event to every attached window.
func (m *Manager) EmitAll(ev tag.Event, payload any) error {
	return m.EmitFilter(ev, payload, func(*Window) bool { return true })
}

// EmitTo emits event to a single window.
func (m *Manager) EmitTo(label tag.Label, ev tag.Event, payload any) error {
	if !m.hasWindow(label) {
		return fmt.Errorf("%w: %s", ErrWindowNotFound, label)
	}
	return m.EmitFilter(ev, payload, func(w *Window) bool { return w.label == label })
}

// EmitOthers emits event to every window except the one labelled except.
func (m *Manager) EmitOthers(except tag.Label, ev tag.Event, payload any) error {
	return m.EmitFilter(ev, payload, func(w *Window) bool { return w.label != except })
}

// EmitFilter serializes payload once and emits it to every window
// matching predicate. Delivery errors are joined.
func (m *Manager) EmitFilter(ev tag.Event, payload any, predicate func(*Window) bool) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", ev, err)
	}
	var errs []error
	for _, w := range m.Windows() {
		if !predicate(w) {
			continue
		}
		if err := w.emitRaw(ev, data); err != nil {
			errs = append(errs, fmt.Errorf("emit %s to %s: %w", ev, w.label, err))
		}
	}
	return errors.Join(errs...)
}

// emitScript builds the call that hands an event to the window's emit
// function together with a fresh salt.
func (m *Manager) emitScript(ev tag.Event, payload json.RawMessage) string {
	fn, _ := json.Marshal(m.EmitFunctionName())
	salt, _ := json.Marshal(m.GenerateSalt())
	return fmt.Sprintf("window[%s]({event: %s, payload: %s}, %s)", fn, ev.JSString(), payload, salt)
}

// InitializePlugins runs every plugin's Initialize in registration order.
func (m *Manager) InitializePlugins(host plugin.Host) error {
	if err := m.plugins.Initialize(host, m.config.Plugins); err != nil {
		return fmt.Errorf("initialize plugins: %w", err)
	}
	return nil
}

// PrepareWindow readies pending for the runtime. existing lists labels
// already claimed by windows created earlier in the same batch.
func (m *Manager) PrepareWindow(pending runtime.PendingWindow, existing []tag.Label) (runtime.PendingWindow, error) {
	if pending.Label.IsZero() {
		return pending, errors.New("window label is empty")
	}
	if m.hasWindow(pending.Label) {
		return pending, fmt.Errorf("%w: %s", ErrDuplicateLabel, pending.Label)
	}
	for _, l := range existing {
		if l == pending.Label {
			return pending, fmt.Errorf("%w: %s", ErrDuplicateLabel, pending.Label)
		}
	}

	webview := pending.WebviewAttributes
	for scheme, handler := range m.protocols {
		if !webview.HasURIScheme(scheme) {
			webview = webview.RegisterURIScheme(scheme, handler)
		}
	}

	url, err := m.resolveURL(webview.URL)
	if err != nil {
		return pending, fmt.Errorf("window %s: %w", pending.Label, err)
	}
	if strings.HasPrefix(url, LocalScheme+"://") && !webview.HasURIScheme(LocalScheme) {
		webview = webview.RegisterURIScheme(LocalScheme, m.serveLocal)
	}
	pending.URL = url

	scripts := []string{m.initializationScript(pending.Label, m.knownLabels(existing, pending.Label))}
	webview.InitializationScripts = append(scripts, webview.InitializationScripts...)
	pending.WebviewAttributes = webview

	if pending.WindowAttributes.Icon == nil && m.defaultIcon != nil {
		pending.WindowAttributes = pending.WindowAttributes.WithIcon(*m.defaultIcon)
	}

	pending.RPCHandler = m.onMessage
	pending.FileDropHandler = m.onFileDrop
	return pending, nil
}

// AttachWindow registers a created window and returns its managed handle.
func (m *Manager) AttachWindow(detached runtime.DetachedWindow) (*Window, error) {
	w := &Window{label: detached.Label, dispatcher: detached.Dispatcher, manager: m}

	m.mu.Lock()
	if _, ok := m.windows[w.label]; ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrDuplicateLabel, w.label)
	}
	m.windows[w.label] = w
	m.mu.Unlock()

	detached.Dispatcher.OnWindowEvent(func(ev runtime.WindowEvent) { m.onWindowEvent(w, ev) })
	m.metrics.WindowAttached()
	m.plugins.Created(w)
	m.logger.Info("window attached", "window", w.label)
	return w, nil
}

// knownLabels merges the attached labels with extra, sorted and without
// duplicates.
func (m *Manager) knownLabels(extra []tag.Label, more ...tag.Label) []tag.Label {
	seen := make(map[tag.Label]bool)
	var out []tag.Label
	for _, set := range [][]tag.Label{m.Labels(), extra, more} {
		for _, l := range set {
			if !seen[l] {
				seen[l] = true
				out = append(out, l)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })
	return out
}

func (m *Manager) detach(label tag.Label) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.windows[label]; !ok {
		return false
	}
	delete(m.windows, label)
	return true
}

// createWindow prepares, creates and attaches pending using dispatcher.
func (m *Manager) createWindow(create func(runtime.PendingWindow) (runtime.DetachedWindow, error), pending runtime.PendingWindow) (*Window, error) {
	prepared, err := m.PrepareWindow(pending, nil)
	if err != nil {
		return nil, err
	}
	detached, err := create(prepared)
	if err != nil {
		return nil, fmt.Errorf("create window %s: %w", pending.Label, err)
	}
	return m.AttachWindow(detached)
}

// resolveURL maps a configured window URL to what the webview loads.
func (m *Manager) resolveURL(u config.WindowURL) (string, error) {
	if u.External() {
		return string(u), nil
	}
	p := assets.Normalize(string(u))
	if dev := config.WindowURL(m.config.Build.DevPath); m.config.Runtime.Dev && dev.External() {
		return strings.TrimSuffix(string(dev), "/") + "/" + p, nil
	}
	if m.assets == nil {
		return "", fmt.Errorf("%w: %s (no assets configured)", ErrAssetNotFound, p)
	}
	if _, ok := m.assets.Get(p); !ok {
		return "", fmt.Errorf("%w: %s", ErrAssetNotFound, p)
	}
	return LocalScheme + "://localhost/" + p, nil
}

// serveLocal answers tauri://localhost/<path> from the configured assets,
// adding the content security policy to HTML documents.
func (m *Manager) serveLocal(uri string) ([]byte, error) {
	p := strings.TrimPrefix(uri, LocalScheme+"://")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[i+1:]
	} else {
		p = ""
	}
	p = assets.Normalize(p)
	if m.assets == nil {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, p)
	}
	body, ok := m.assets.Get(p)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, p)
	}
	if csp := m.config.Tauri.Security.CSP; csp != "" && assets.IsHTML(p) {
		return assets.InjectCSP(body, csp)
	}
	return body, nil
}

// onMessage routes a raw invoke posted by a window.
func (m *Manager) onMessage(detached runtime.DetachedWindow, raw []byte) {
	w, ok := m.GetWindow(detached.Label)
	if !ok {
		m.logger.Warn("message from unattached window", "window", detached.Label)
		return
	}
	payload, err := ipc.DecodePayload(raw)
	if err != nil {
		m.logger.Warn("dropping malformed invoke", "window", w.label, "error", err)
		return
	}

	if payload.Command == ipc.InitializedCommand {
		m.pageLoaded(w, payload)
		return
	}

	invoke := newInvoke(w, payload)
	switch {
	case payload.Module != "":
		m.runEndpoint(invoke, payload.Module)
	case strings.HasPrefix(payload.Command, ipc.PluginPrefix):
		invoke.route = metrics.RoutePlugin
		m.plugins.ExtendAPI(invoke)
	default:
		m.runCommand(invoke)
	}
}

func (m *Manager) pageLoaded(w *Window, payload ipc.Payload) {
	pl, err := ipc.DecodePageLoad(payload)
	if err != nil {
		m.logger.Warn("invalid page load payload", "window", w.label, "error", err)
		return
	}
	started := time.Now()
	m.plugins.OnPageLoad(w, pl)
	if m.onPageLoad != nil {
		m.onPageLoad(w, pl)
	}
	m.metrics.ObserveInvoke(metrics.RoutePage, metrics.OutcomeOK, started)
}

func (m *Manager) runEndpoint(invoke *Invoke, module string) {
	invoke.route = metrics.RouteModule
	w := invoke.Message.window
	caller := endpoints.Caller{Label: w.label, Dispatcher: w.dispatcher}
	host := endpointHost{m}
	inner := invoke.Message.payload
	invoke.Respond(func(ctx context.Context) (any, error) {
		return m.endpoints.Run(ctx, host, caller, module, inner)
	})
}

func (m *Manager) runCommand(invoke *Invoke) {
	invoke.route = metrics.RouteCommand
	name := invoke.Message.Command
	if handler, ok := m.commands[name]; ok {
		msg := invoke.Message
		invoke.Respond(func(ctx context.Context) (any, error) {
			return handler(ctx, msg)
		})
		return
	}
	if m.invokeHandler != nil {
		m.invokeHandler(invoke)
		return
	}
	invoke.outcome = metrics.OutcomeRejected
	err := fmt.Errorf("%w %q", ErrUnknownCommand, name)
	if s := suggest(name, m.commandNames()); s != "" {
		err = fmt.Errorf("%w; did you mean %q?", err, s)
	}
	_ = invoke.Reject(err.Error())
}

func (m *Manager) commandNames() []string {
	names := make([]string, 0, len(m.commands))
	for name := range m.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// endpointHost exposes the manager to built-in endpoint modules.
type endpointHost struct{ m *Manager }

var _ endpoints.Host = endpointHost{}

func (h endpointHost) Config() *config.Config { return h.m.config }

func (h endpointHost) PackageInfo() config.PackageInfo { return h.m.packageInfo }

func (h endpointHost) VerifySalt(salt string) bool { return h.m.VerifySalt(salt) }

func (h endpointHost) Trigger(ev tag.Event, scope tag.Label, data *string) {
	h.m.Trigger(ev, scope, data)
}

func (h endpointHost) EmitAll(ev tag.Event, payload any) error {
	return h.m.EmitAll(ev, payload)
}

func (h endpointHost) EmitTo(label tag.Label, ev tag.Event, payload any) error {
	return h.m.EmitTo(label, ev, payload)
}

func (h endpointHost) EmitOthers(except tag.Label, ev tag.Event, payload any) error {
	return h.m.EmitOthers(except, ev, payload)
}

func (h endpointHost) CreateWindow(parent tag.Label, pending runtime.PendingWindow) (tag.Label, error) {
	w, ok := h.m.GetWindow(parent)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrWindowNotFound, parent)
	}
	created, err := w.CreateWindow(pending)
	if err != nil {
		return "", err
	}
	return created.label, nil
}
