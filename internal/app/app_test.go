package app

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/webshell/internal/assets"
	"github.com/mattjoyce/webshell/internal/config"
	"github.com/mattjoyce/webshell/internal/event"
	"github.com/mattjoyce/webshell/internal/ipc"
	"github.com/mattjoyce/webshell/internal/metrics"
	"github.com/mattjoyce/webshell/internal/plugin"
	"github.com/mattjoyce/webshell/internal/runtime"
	"github.com/mattjoyce/webshell/internal/runtime/headless"
	"github.com/mattjoyce/webshell/internal/state"
	"github.com/mattjoyce/webshell/internal/tag"
)

const indexHTML = `<!doctype html><html><head><title>t</title></head><body>hi</body></html>`

type evaluated struct {
	label  tag.Label
	script string
}

type harness struct {
	t       *testing.T
	rt      *headless.Runtime
	app     *App
	scripts chan evaluated
}

func testConfig(windows ...string) *config.Config {
	cfg := config.Defaults()
	cfg.Tauri.Windows = nil
	for _, label := range windows {
		cfg.Tauri.Windows = append(cfg.Tauri.Windows, config.WindowConfig{
			Label: label, URL: "index.html", Title: label, Width: 800, Height: 600,
		})
	}
	cfg.Runtime.Workers = 2
	return cfg
}

func testAssets() assets.Assets {
	return assets.NewFS(fstest.MapFS{
		"index.html": {Data: []byte(indexHTML)},
		"app.js":     {Data: []byte("console.log(1)")},
	})
}

// build wires b to a fresh headless runtime whose evaluated scripts are
// streamed to the harness.
func build(t *testing.T, b *Builder, cfg *config.Config) *harness {
	t.Helper()
	h := &harness{t: t, scripts: make(chan evaluated, 1024)}
	h.rt = headless.New(headless.WithScriptSink(func(label tag.Label, script string) {
		h.scripts <- evaluated{label: label, script: script}
	}))
	b.factory = func() (runtime.Runtime, error) { return h.rt, nil }
	a, err := b.Build(Context{Config: cfg, Assets: testAssets()})
	require.NoError(t, err)
	h.app = a
	t.Cleanup(func() {
		a.manager.pool.Close()
		a.manager.pool.Wait()
	})
	return h
}

func (h *harness) inject(label tag.Label, msg string) {
	h.t.Helper()
	require.NoError(h.t, h.rt.Inject(label, []byte(msg)))
}

// await returns the first script evaluated in label that contains needle.
func (h *harness) await(label tag.Label, needle string) string {
	h.t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-h.scripts:
			if ev.label == label && strings.Contains(ev.script, needle) {
				return ev.script
			}
		case <-timeout:
			h.t.Fatalf("no script containing %q evaluated in %s", needle, label)
			return ""
		}
	}
}

func TestSetTitleFromScript(t *testing.T) {
	cfg := testConfig("main")
	cfg.Tauri.Allowlist.Window.All = true
	h := build(t, NewBuilder(nil), cfg)

	h.inject("main", `{"cmd":"tauri","__tauriModule":"Window","callback":1,"error":2,"message":{"cmd":"setTitle","data":"Hello"}}`)
	h.await("main", `window["_1"]`)

	calls := h.rt.CallsTo("main", "SetTitle")
	require.Len(t, calls, 1)
	assert.Equal(t, []any{"Hello"}, calls[0].Args)
	w, ok := h.rt.Window("main")
	require.True(t, ok)
	assert.Equal(t, "Hello", w.Title())
}

func TestModuleNotAllowlistedRejects(t *testing.T) {
	h := build(t, NewBuilder(nil), testConfig("main"))

	h.inject("main", `{"cmd":"tauri","__tauriModule":"Window","callback":1,"error":2,"message":{"cmd":"setTitle","data":"Hello"}}`)
	script := h.await("main", `window["_2"]`)

	// json.Marshal escapes '>' in the delivered string.
	assert.Contains(t, script, `'window \u003e all' not allowlisted`)
	assert.Empty(t, h.rt.CallsTo("main", "SetTitle"))
}

func TestCommandRoundTrip(t *testing.T) {
	b := NewBuilder(nil).Command("greet", func(_ context.Context, msg *InvokeMessage) (any, error) {
		var args struct {
			Name string `json:"name"`
		}
		if err := msg.Bind(&args); err != nil {
			return nil, err
		}
		if args.Name == "" {
			return nil, errors.New("name is required")
		}
		return "hi " + args.Name + " from " + msg.Window().Label().String(), nil
	})
	h := build(t, b, testConfig("main"))

	h.inject("main", `{"cmd":"greet","callback":3,"error":4,"name":"bob"}`)
	script := h.await("main", `window["_3"]`)
	assert.Contains(t, script, `cb("hi bob from main")`)

	h.inject("main", `{"cmd":"greet","callback":5,"error":6}`)
	script = h.await("main", `window["_6"]`)
	assert.Contains(t, script, "name is required")
}

func TestCommandPanicIsRejected(t *testing.T) {
	b := NewBuilder(nil).Command("explode", func(context.Context, *InvokeMessage) (any, error) {
		panic("kaboom")
	})
	h := build(t, b, testConfig("main"))

	h.inject("main", `{"cmd":"explode","callback":1,"error":2}`)
	script := h.await("main", `window["_2"]`)
	assert.Contains(t, script, "kaboom")
}

func TestUnknownCommandSuggestsClosest(t *testing.T) {
	b := NewBuilder(nil).
		Command("greet", func(context.Context, *InvokeMessage) (any, error) { return nil, nil }).
		Command("shutdown", func(context.Context, *InvokeMessage) (any, error) { return nil, nil })
	h := build(t, b, testConfig("main"))

	h.inject("main", `{"cmd":"gret","callback":1,"error":2}`)
	script := h.await("main", `window["_2"]`)
	assert.Contains(t, script, `unknown command \"gret\"; did you mean \"greet\"?`)

	h.inject("main", `{"cmd":"zzzzzzzzzz","callback":3,"error":4}`)
	script = h.await("main", `window["_4"]`)
	assert.NotContains(t, script, "did you mean")
}

func TestInvokeHandlerFallback(t *testing.T) {
	var got []string
	var mu sync.Mutex
	b := NewBuilder(nil).InvokeHandler(func(invoke *Invoke) {
		mu.Lock()
		got = append(got, invoke.Command())
		mu.Unlock()
		_ = invoke.Resolve("handled")
	})
	h := build(t, b, testConfig("main"))

	h.inject("main", `{"cmd":"anything","callback":1,"error":2}`)
	script := h.await("main", `window["_1"]`)
	assert.Contains(t, script, `cb("handled")`)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"anything"}, got)
}

func TestMainThreadInvokeRunsOnEventLoop(t *testing.T) {
	b := NewBuilder(nil).Command("where", func(context.Context, *InvokeMessage) (any, error) {
		return "main-thread", nil
	})
	h := build(t, b, testConfig("main"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.rt.Run(ctx) }()

	h.inject("main", `{"cmd":"where","mainThread":true,"callback":1,"error":2}`)
	script := h.await("main", `window["_1"]`)
	assert.Contains(t, script, "main-thread")

	cancel()
	require.NoError(t, <-done)
}

func TestMainThreadInvokeRejectedAfterShutdown(t *testing.T) {
	b := NewBuilder(nil).Command("where", func(context.Context, *InvokeMessage) (any, error) {
		return "main-thread", nil
	})
	h := build(t, b, testConfig("main"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, h.rt.Run(ctx))

	h.inject("main", `{"cmd":"where","mainThread":true,"callback":1,"error":2}`)
	script := h.await("main", `window["_2"]`)
	assert.Contains(t, script, runtime.ErrWindowClosed.Error())
}

// invokeCount reads webshell_invokes_total for one route and outcome.
func invokeCount(t *testing.T, m *metrics.Metrics, route, outcome string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != "webshell_invokes_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			labels := make(map[string]string)
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["route"] == route && labels["outcome"] == outcome {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestInvokeOutcomesAreCounted(t *testing.T) {
	m := metrics.New()
	b := NewBuilder(nil).
		Metrics(m).
		Command("ok", func(context.Context, *InvokeMessage) (any, error) { return true, nil }).
		Command("fail", func(context.Context, *InvokeMessage) (any, error) { return nil, errors.New("nope") })
	h := build(t, b, testConfig("main"))

	h.inject("main", `{"cmd":"ok","callback":1,"error":2}`)
	h.await("main", `window["_1"]`)
	h.inject("main", `{"cmd":"fail","callback":3,"error":4}`)
	h.await("main", `window["_4"]`)
	h.inject("main", `{"cmd":"missing","callback":5,"error":6}`)
	h.await("main", `window["_6"]`)

	require.Eventually(t, func() bool {
		return invokeCount(t, m, metrics.RouteCommand, metrics.OutcomeOK) == 1 &&
			invokeCount(t, m, metrics.RouteCommand, metrics.OutcomeError) == 1 &&
			invokeCount(t, m, metrics.RouteCommand, metrics.OutcomeRejected) == 1
	}, 5*time.Second, 10*time.Millisecond)
}

func TestBuilderRejectsReservedCommandNames(t *testing.T) {
	noop := func(context.Context, *InvokeMessage) (any, error) { return nil, nil }
	for _, name := range []string{"", ipc.InitializedCommand, "plugin:x|y"} {
		b := NewBuilder(headless.Factory()).Command(name, noop)
		require.Error(t, b.Err(), name)
	}
	b := NewBuilder(headless.Factory()).Command("a", noop).Command("a", noop)
	require.Error(t, b.Err())
	_, err := b.Build(Context{Config: testConfig("main"), Assets: testAssets()})
	require.Error(t, err)
}

func TestBuildOnlyOnce(t *testing.T) {
	b := NewBuilder(nil)
	build(t, b, testConfig("main"))
	_, err := b.Build(Context{Config: testConfig("main"), Assets: testAssets()})
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}

type counter struct{ n int }

func TestDuplicateManagedStateFailsBuild(t *testing.T) {
	b := NewBuilder(headless.Factory()).Manage(&counter{}).Manage(&counter{n: 1})
	_, err := b.Build(Context{Config: testConfig("main"), Assets: testAssets()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, state.ErrStateAlreadyManaged))
}

func TestManagedStateReachesCommands(t *testing.T) {
	b := NewBuilder(nil).
		Manage(&counter{n: 41}).
		Command("next", func(_ context.Context, msg *InvokeMessage) (any, error) {
			c, err := state.Get[*counter](msg.State())
			if err != nil {
				return nil, err
			}
			c.n++
			return c.n, nil
		})
	h := build(t, b, testConfig("main"))

	h.inject("main", `{"cmd":"next","callback":1,"error":2}`)
	script := h.await("main", `window["_1"]`)
	assert.Contains(t, script, "cb(42)")
}

func TestManagedStateClosesAfterSetup(t *testing.T) {
	type theme struct{ name string }
	b := NewBuilder(nil).Setup(func(a *App) error {
		return a.Manage(&theme{name: "dark"})
	})
	h := build(t, b, testConfig("main"))

	got, err := state.Get[*theme](h.app.State())
	require.NoError(t, err)
	assert.Equal(t, "dark", got.name)
	assert.ErrorIs(t, h.app.Manage(&counter{}), ErrStateSealed)
}

func TestDuplicateWindowLabel(t *testing.T) {
	b := NewBuilder(headless.Factory()).CreateWindow("main", "index.html", nil)
	_, err := b.Build(Context{Config: testConfig("main"), Assets: testAssets()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateLabel))

	h := build(t, NewBuilder(nil), testConfig("main"))
	_, err = h.app.CreateWindow(runtime.NewPendingWindow(runtime.NewWindowAttributes(), runtime.NewWebviewAttributes("index.html"), "main"))
	assert.True(t, errors.Is(err, ErrDuplicateLabel))
	assert.Len(t, h.app.Windows(), 1)
}

func TestMissingAssetFailsBuild(t *testing.T) {
	cfg := testConfig("main")
	cfg.Tauri.Windows[0].URL = "missing.html"
	_, err := NewBuilder(headless.Factory()).Build(Context{Config: cfg, Assets: testAssets()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAssetNotFound))
}

func TestSetupErrorAbortsBuild(t *testing.T) {
	b := NewBuilder(headless.Factory()).Setup(func(a *App) error {
		_, ok := a.GetWindow("main")
		if !ok {
			return errors.New("main window missing")
		}
		return errors.New("boom")
	})
	_, err := b.Build(Context{Config: testConfig("main"), Assets: testAssets()})
	require.Error(t, err)
	assert.Equal(t, "setup: boom", err.Error())
}

func TestEventScoping(t *testing.T) {
	h := build(t, NewBuilder(nil), testConfig("main", "about"))
	main, _ := h.app.GetWindow("main")
	about, _ := h.app.GetWindow("about")

	var mu sync.Mutex
	var got []string
	record := func(name string) event.Handler {
		return func(ev event.Event) {
			mu.Lock()
			got = append(got, name+":"+ev.Payload())
			mu.Unlock()
		}
	}
	h.app.Listen("ping", record("global"))
	main.Listen("ping", record("main"))
	about.Listen("ping", record("about"))

	payload := `"p"`
	main.Trigger("ping", &payload)
	assert.ElementsMatch(t, []string{`global:"p"`, `main:"p"`}, got)

	got = nil
	h.app.Manager().Trigger("ping", "", nil)
	assert.ElementsMatch(t, []string{"global:", "main:", "about:"}, got)
}

func TestOnceDeliversOnce(t *testing.T) {
	h := build(t, NewBuilder(nil), testConfig("main"))
	main, _ := h.app.GetWindow("main")

	calls := 0
	main.Once("ready", func(event.Event) { calls++ })
	main.Trigger("ready", nil)
	main.Trigger("ready", nil)
	assert.Equal(t, 1, calls)
}

func TestEmitOthersExcludesSender(t *testing.T) {
	h := build(t, NewBuilder(nil), testConfig("main", "about", "settings"))
	main, _ := h.app.GetWindow("main")

	require.NoError(t, main.EmitOthers("ping", map[string]int{"n": 1}))

	assert.Empty(t, h.rt.Scripts("main"))
	for _, label := range []tag.Label{"about", "settings"} {
		scripts := h.rt.Scripts(label)
		require.Len(t, scripts, 1, label)
		assert.Contains(t, scripts[0], `window["__TAURI_EMIT__"]({event: "ping", payload: {"n":1}}`)
	}
}

func TestEmitToUnknownWindow(t *testing.T) {
	h := build(t, NewBuilder(nil), testConfig("main"))
	err := h.app.Manager().EmitTo("nope", "ping", nil)
	assert.True(t, errors.Is(err, ErrWindowNotFound))
}

var saltPattern = regexp.MustCompile(`, "([0-9a-f-]{36})"\)$`)

func TestEmitSaltIsSingleUse(t *testing.T) {
	h := build(t, NewBuilder(nil), testConfig("main"))
	require.NoError(t, h.app.EmitAll("ping", nil))

	scripts := h.rt.Scripts("main")
	require.Len(t, scripts, 1)
	m := saltPattern.FindStringSubmatch(scripts[0])
	require.Len(t, m, 2, scripts[0])

	mgr := h.app.Manager()
	assert.False(t, mgr.VerifySalt("not-a-salt"))
	assert.True(t, mgr.VerifySalt(m[1]))
	assert.False(t, mgr.VerifySalt(m[1]))
}

func TestValidateSaltFromScript(t *testing.T) {
	h := build(t, NewBuilder(nil), testConfig("main"))
	salt := h.app.Manager().GenerateSalt()

	msg, err := json.Marshal(map[string]any{
		"cmd": "tauri", "__tauriModule": "Internal", "callback": 1, "error": 2,
		"message": map[string]string{"cmd": "validateSalt", "salt": salt},
	})
	require.NoError(t, err)
	h.inject("main", string(msg))
	assert.Contains(t, h.await("main", `window["_1"]`), "cb(true)")

	h.inject("main", strings.Replace(string(msg), `"callback":1`, `"callback":3`, 1))
	assert.Contains(t, h.await("main", `window["_3"]`), "cb(false)")
}

func TestCreateWebviewFromScript(t *testing.T) {
	cfg := testConfig("main")
	cfg.Tauri.Allowlist.Window = config.WindowAllowlist{All: true, Create: true}
	h := build(t, NewBuilder(nil), cfg)

	h.inject("main", `{"cmd":"tauri","__tauriModule":"Window","callback":1,"error":2,"message":{"cmd":"createWebview","data":{"options":{"label":"about","url":"index.html"}}}}`)
	h.await("main", `window["_1"]`)

	_, ok := h.app.GetWindow("about")
	require.True(t, ok)
	assert.Len(t, h.rt.CallsTo("main", "CreateWindow"), 1)
	created := false
	for _, s := range h.rt.Scripts("main") {
		if strings.Contains(s, `"tauri://window-created"`) && strings.Contains(s, `{"label":"about"}`) {
			created = true
		}
	}
	assert.True(t, created, "main is told about the new window")
	for _, s := range h.rt.Scripts("about") {
		assert.NotContains(t, s, "tauri://window-created")
	}
}

type echoPlugin struct {
	plugin.Base
	mu      sync.Mutex
	host    plugin.Host
	created []tag.Label
	loaded  []string
}

func (p *echoPlugin) Name() string { return "echo" }

func (p *echoPlugin) Initialize(host plugin.Host, _ json.RawMessage) error {
	p.host = host
	return nil
}

func (p *echoPlugin) InitializationScript() string { return "window.__echo = true;" }

func (p *echoPlugin) Created(w plugin.Window) {
	p.mu.Lock()
	p.created = append(p.created, w.Label())
	p.mu.Unlock()
}

func (p *echoPlugin) OnPageLoad(_ plugin.Window, payload ipc.PageLoadPayload) {
	p.mu.Lock()
	p.loaded = append(p.loaded, payload.URL)
	p.mu.Unlock()
}

func (p *echoPlugin) ExtendAPI(invoke plugin.Invoke) {
	_, cmd, _ := plugin.ParseCommand(invoke.Command())
	_ = invoke.Resolve(cmd + "@" + invoke.Window().Label().String())
}

func TestPluginLifecycleAndRouting(t *testing.T) {
	p := &echoPlugin{}
	var hooked []string
	b := NewBuilder(nil).Plugin(p).OnPageLoad(func(w *Window, payload ipc.PageLoadPayload) {
		hooked = append(hooked, w.Label().String()+" "+payload.URL)
	})
	h := build(t, b, testConfig("main"))

	require.NotNil(t, p.host, "plugins initialize during build")
	assert.Equal(t, []tag.Label{"main"}, p.created)

	pending, ok := h.rt.Pending("main")
	require.True(t, ok)
	require.NotEmpty(t, pending.WebviewAttributes.InitializationScripts)
	assert.Contains(t, pending.WebviewAttributes.InitializationScripts[0], "window.__echo = true;")

	h.inject("main", `{"cmd":"plugin:echo|ping","callback":1,"error":2}`)
	assert.Contains(t, h.await("main", `window["_1"]`), `cb("ping@main")`)

	h.inject("main", `{"cmd":"plugin:missing|ping","callback":3,"error":4}`)
	assert.Contains(t, h.await("main", `window["_4"]`), `plugin \"missing\" not found`)

	h.inject("main", `{"cmd":"__initialized","url":"tauri://localhost/index.html"}`)
	assert.Equal(t, []string{"tauri://localhost/index.html"}, p.loaded)
	assert.Equal(t, []string{"main tauri://localhost/index.html"}, hooked)
}

func TestInitializationScript(t *testing.T) {
	h := build(t, NewBuilder(nil), testConfig("main", "about"))

	pending, ok := h.rt.Pending("about")
	require.True(t, ok)
	script := pending.WebviewAttributes.InitializationScripts[0]
	assert.Contains(t, script, `"__TAURI_EMIT__"`)
	assert.Contains(t, script, `"`+ipc.ListenersVar+`"`)
	assert.Contains(t, script, `["about","main"]`)
	assert.NotContains(t, script, "__EMIT_FN__")
	assert.NotContains(t, script, "__LABEL__")
}

func TestLocalSchemeServesAssetsWithCSP(t *testing.T) {
	cfg := testConfig("main")
	cfg.Tauri.Security.CSP = "default-src 'self'"
	h := build(t, NewBuilder(nil), cfg)

	pending, ok := h.rt.Pending("main")
	require.True(t, ok)
	assert.Equal(t, "tauri://localhost/index.html", pending.URL)

	body, err := h.rt.Protocol("main", LocalScheme, "tauri://localhost/index.html")
	require.NoError(t, err)
	assert.Contains(t, string(body), `http-equiv="Content-Security-Policy"`)
	assert.Contains(t, string(body), "default-src &#39;self&#39;")

	body, err = h.rt.Protocol("main", LocalScheme, "tauri://localhost/app.js")
	require.NoError(t, err)
	assert.Equal(t, "console.log(1)", string(body))

	_, err = h.rt.Protocol("main", LocalScheme, "tauri://localhost/nope.css")
	assert.True(t, errors.Is(err, ErrAssetNotFound))
}

func TestExternalURLNeedsNoAssets(t *testing.T) {
	cfg := testConfig()
	cfg.Tauri.Windows = []config.WindowConfig{{Label: "main", URL: "https://example.com/app"}}
	b := NewBuilder(headless.Factory())
	a, err := b.Build(Context{Config: cfg})
	require.NoError(t, err)
	_, ok := a.GetWindow("main")
	assert.True(t, ok)
}

func TestCustomURISchemeInEveryWindow(t *testing.T) {
	b := NewBuilder(nil).RegisterURIScheme("data", func(uri string) ([]byte, error) {
		return []byte("served " + uri), nil
	})
	h := build(t, b, testConfig("main", "about"))

	for _, label := range []tag.Label{"main", "about"} {
		body, err := h.rt.Protocol(label, "data", "data://x")
		require.NoError(t, err)
		assert.Equal(t, "served data://x", string(body))
	}
}

func TestWindowEventsAreForwarded(t *testing.T) {
	h := build(t, NewBuilder(nil), testConfig("main"))

	var mu sync.Mutex
	var resized []string
	h.app.Listen(tag.WindowResize, func(ev event.Event) {
		mu.Lock()
		resized = append(resized, ev.Payload())
		mu.Unlock()
	})

	require.NoError(t, h.rt.Emit("main", runtime.WindowEvent{Kind: runtime.WindowResized, Size: runtime.PhysicalSize{Width: 300, Height: 200}}))
	assert.Equal(t, []string{`{"width":300,"height":200}`}, resized)
	scripts := h.rt.Scripts("main")
	require.NotEmpty(t, scripts)
	assert.Contains(t, scripts[len(scripts)-1], `"tauri://resize"`)

	require.NoError(t, h.rt.Emit("main", runtime.WindowEvent{Kind: runtime.WindowFocused}))
	scripts = h.rt.Scripts("main")
	assert.Contains(t, scripts[len(scripts)-1], `"tauri://blur"`)
}

func TestDestroyedWindowIsDetached(t *testing.T) {
	h := build(t, NewBuilder(nil), testConfig("main", "about"))

	destroyed := 0
	h.app.Listen(tag.WindowDestroyed, func(event.Event) { destroyed++ })

	about, _ := h.app.GetWindow("about")
	require.NoError(t, about.Dispatcher().Close())

	_, ok := h.app.GetWindow("about")
	assert.False(t, ok)
	assert.Equal(t, 1, destroyed)
	assert.Equal(t, []tag.Label{"main"}, h.app.Manager().Labels())

	require.NoError(t, h.app.EmitAll("ping", nil))
	assert.True(t, errors.Is(about.Emit("ping", nil), runtime.ErrWindowClosed))
}

func TestFileDropIsForwarded(t *testing.T) {
	h := build(t, NewBuilder(nil), testConfig("main"))

	var got []string
	h.app.Listen(tag.FileDrop, func(ev event.Event) { got = append(got, ev.Payload()) })

	handled, err := h.rt.DropFiles("main", runtime.FileDropEvent{Kind: runtime.FileDropDropped, Paths: []string{"/tmp/a.txt"}})
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, []string{`["/tmp/a.txt"]`}, got)

	scripts := h.rt.Scripts("main")
	require.NotEmpty(t, scripts)
	assert.Contains(t, scripts[len(scripts)-1], `"tauri://file-drop"`)
}

func TestMalformedMessagesAreDropped(t *testing.T) {
	h := build(t, NewBuilder(nil), testConfig("main"))
	h.inject("main", `not json`)
	h.inject("main", `{"cmd":"greet"}`)
	h.inject("main", `{"cmd":"greet","callback":"x);alert(1","error":2}`)
	assert.Empty(t, h.rt.Scripts("main"))
}
