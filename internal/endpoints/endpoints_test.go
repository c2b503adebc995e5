package endpoints

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/webshell/internal/config"
	"github.com/mattjoyce/webshell/internal/runtime"
	"github.com/mattjoyce/webshell/internal/runtime/mocks"
	"github.com/mattjoyce/webshell/internal/tag"
)

type emitted struct {
	Target  string
	Event   tag.Event
	Payload any
}

type triggered struct {
	Event tag.Event
	Scope tag.Label
	Data  *string
}

type fakeHost struct {
	mu        sync.Mutex
	cfg       *config.Config
	salts     map[string]bool
	emits     []emitted
	triggers  []triggered
	created   []runtime.PendingWindow
	createErr error
}

func newFakeHost(allow config.Allowlist) *fakeHost {
	cfg := config.Defaults()
	cfg.Tauri.Allowlist = allow
	return &fakeHost{cfg: cfg, salts: map[string]bool{}}
}

func (h *fakeHost) Config() *config.Config { return h.cfg }

func (h *fakeHost) PackageInfo() config.PackageInfo { return h.cfg.PackageInfo() }

func (h *fakeHost) VerifySalt(salt string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	ok := h.salts[salt]
	delete(h.salts, salt)
	return ok
}

func (h *fakeHost) Trigger(ev tag.Event, scope tag.Label, data *string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.triggers = append(h.triggers, triggered{Event: ev, Scope: scope, Data: data})
}

func (h *fakeHost) EmitAll(ev tag.Event, payload any) error {
	return h.record("*", ev, payload)
}

func (h *fakeHost) EmitTo(label tag.Label, ev tag.Event, payload any) error {
	return h.record(label.String(), ev, payload)
}

func (h *fakeHost) EmitOthers(except tag.Label, ev tag.Event, payload any) error {
	return h.record("!"+except.String(), ev, payload)
}

func (h *fakeHost) record(target string, ev tag.Event, payload any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.emits = append(h.emits, emitted{Target: target, Event: ev, Payload: payload})
	return nil
}

func (h *fakeHost) CreateWindow(_ tag.Label, pending runtime.PendingWindow) (tag.Label, error) {
	if h.createErr != nil {
		return "", h.createErr
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.created = append(h.created, pending)
	return pending.Label, nil
}

// message wraps a module message in the invoke envelope.
func message(t *testing.T, msg string) json.RawMessage {
	t.Helper()
	require.True(t, json.Valid([]byte(msg)), "invalid test message %s", msg)
	return json.RawMessage(`{"cmd":"tauri","callback":1,"error":2,"message":` + msg + `}`)
}

func TestRunUnknownModule(t *testing.T) {
	e := New(Deps{})
	_, err := e.Run(context.Background(), newFakeHost(config.AllowAll()), Caller{Label: "main"}, "Bluetooth", message(t, `{"cmd":"scan"}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownModule))
}

func TestRunMissingMessage(t *testing.T) {
	e := New(Deps{})
	_, err := e.Run(context.Background(), newFakeHost(config.AllowAll()), Caller{Label: "main"}, ModuleApp, json.RawMessage(`{"cmd":"tauri"}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidMessage))
}

func TestUnknownCommandInModule(t *testing.T) {
	e := New(Deps{})
	_, err := e.Run(context.Background(), newFakeHost(config.AllowAll()), Caller{Label: "main"}, ModuleApp, message(t, `{"cmd":"selfDestruct"}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownCommand))
	assert.Contains(t, err.Error(), "App.selfDestruct")
}

func TestAppModule(t *testing.T) {
	e := New(Deps{Version: "1.2.3"})
	host := newFakeHost(config.Allowlist{})
	ctx := context.Background()

	v, err := e.Run(ctx, host, Caller{Label: "main"}, ModuleApp, message(t, `{"cmd":"getAppVersion"}`))
	require.NoError(t, err)
	assert.Equal(t, "0.1.0", v)

	v, err = e.Run(ctx, host, Caller{Label: "main"}, ModuleApp, message(t, `{"cmd":"getAppName"}`))
	require.NoError(t, err)
	assert.Equal(t, "webshell", v)

	v, err = e.Run(ctx, host, Caller{Label: "main"}, ModuleApp, message(t, `{"cmd":"getTauriVersion"}`))
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", v)
}

func TestProcessModule(t *testing.T) {
	var code = -1
	relaunched := false
	e := New(Deps{
		Exit:     func(c int) { code = c },
		Relaunch: func() error { relaunched = true; return nil },
	})
	ctx := context.Background()

	_, err := e.Run(ctx, newFakeHost(config.Allowlist{}), Caller{Label: "main"}, ModuleProcess, message(t, `{"cmd":"exit","exitCode":3}`))
	var notAllowed *NotAllowlistedError
	require.True(t, errors.As(err, &notAllowed))
	assert.Equal(t, config.CategoryProcess, notAllowed.Category)
	assert.Equal(t, -1, code)

	host := newFakeHost(config.Allowlist{Process: true})
	_, err = e.Run(ctx, host, Caller{Label: "main"}, ModuleProcess, message(t, `{"cmd":"exit","exitCode":3}`))
	require.NoError(t, err)
	assert.Equal(t, 3, code)

	_, err = e.Run(ctx, host, Caller{Label: "main"}, ModuleProcess, message(t, `{"cmd":"relaunch"}`))
	require.NoError(t, err)
	assert.True(t, relaunched)
}

func TestInternalValidateSalt(t *testing.T) {
	e := New(Deps{})
	host := newFakeHost(config.Allowlist{})
	host.salts["abc"] = true
	ctx := context.Background()

	v, err := e.Run(ctx, host, Caller{Label: "main"}, ModuleInternal, message(t, `{"cmd":"validateSalt","salt":"abc"}`))
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = e.Run(ctx, host, Caller{Label: "main"}, ModuleInternal, message(t, `{"cmd":"validateSalt","salt":"abc"}`))
	require.NoError(t, err)
	assert.Equal(t, false, v)
}

func TestEventModule(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	d := mocks.NewMockDispatch(ctrl)
	e := New(Deps{})
	host := newFakeHost(config.Allowlist{})
	caller := Caller{Label: "main", Dispatcher: d}
	ctx := context.Background()

	t.Run("listen evaluates a registration script", func(t *testing.T) {
		var script string
		d.EXPECT().EvalScript(gomock.Any()).DoAndReturn(func(s string) error {
			script = s
			return nil
		})
		v, err := e.Run(ctx, host, caller, ModuleEvent, message(t, `{"cmd":"listen","event":"ping","handler":77}`))
		require.NoError(t, err)
		assert.Equal(t, uint32(1), v)
		assert.Contains(t, script, `window["_77"]`)
		assert.Contains(t, script, `"ping"`)
	})

	t.Run("unlisten evaluates a removal script", func(t *testing.T) {
		d.EXPECT().EvalScript(gomock.Any()).Return(nil)
		_, err := e.Run(ctx, host, caller, ModuleEvent, message(t, `{"cmd":"unlisten","event":"ping","eventId":1}`))
		require.NoError(t, err)
	})

	t.Run("emit triggers and broadcasts", func(t *testing.T) {
		_, err := e.Run(ctx, host, caller, ModuleEvent, message(t, `{"cmd":"emit","event":"ping","payload":"{\"n\":1}"}`))
		require.NoError(t, err)
		require.Len(t, host.triggers, 1)
		assert.Equal(t, tag.Label("main"), host.triggers[0].Scope)
		assert.Equal(t, `{"n":1}`, *host.triggers[0].Data)
		require.Len(t, host.emits, 1)
		assert.Equal(t, "*", host.emits[0].Target)
	})

	t.Run("emit to a single window", func(t *testing.T) {
		_, err := e.Run(ctx, host, caller, ModuleEvent, message(t, `{"cmd":"emit","event":"ping","windowLabel":"about"}`))
		require.NoError(t, err)
		assert.Equal(t, "about", host.emits[len(host.emits)-1].Target)
	})

	t.Run("reserved events are rejected", func(t *testing.T) {
		before := len(host.triggers)
		_, err := e.Run(ctx, host, caller, ModuleEvent, message(t, `{"cmd":"emit","event":"tauri://window-created"}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reserved")
		assert.Len(t, host.triggers, before)
	})
}

func TestDialogModule(t *testing.T) {
	e := New(Deps{Dialogs: StaticDialogs{Answer: true, Paths: []string{"/a", "/b"}, SavePath: "/out.txt"}})
	ctx := context.Background()

	_, err := e.Run(ctx, newFakeHost(config.Allowlist{}), Caller{Label: "main"}, ModuleDialog, message(t, `{"cmd":"ask","title":"t","message":"m"}`))
	var notAllowed *NotAllowlistedError
	require.True(t, errors.As(err, &notAllowed))

	host := newFakeHost(config.Allowlist{Dialog: true})
	v, err := e.Run(ctx, host, Caller{Label: "main"}, ModuleDialog, message(t, `{"cmd":"ask","title":"t","message":"m"}`))
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = e.Run(ctx, host, Caller{Label: "main"}, ModuleDialog, message(t, `{"cmd":"open","options":{"multiple":true}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b"}, v)

	v, err = e.Run(ctx, host, Caller{Label: "main"}, ModuleDialog, message(t, `{"cmd":"open"}`))
	require.NoError(t, err)
	assert.Equal(t, "/a", v)

	v, err = e.Run(ctx, host, Caller{Label: "main"}, ModuleDialog, message(t, `{"cmd":"save","options":{}}`))
	require.NoError(t, err)
	assert.Equal(t, "/out.txt", v)
}

func TestUnavailableDialogs(t *testing.T) {
	e := New(Deps{})
	_, err := e.Run(context.Background(), newFakeHost(config.Allowlist{Dialog: true}), Caller{Label: "main"}, ModuleDialog, message(t, `{"cmd":"message","message":"hi"}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoDialogs))
}
