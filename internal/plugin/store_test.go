package plugin

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/webshell/internal/ipc"
)

type recordingPlugin struct {
	Base
	name     string
	initErr  error
	script   string
	calls    *[]string
	gotCfg   json.RawMessage
	invoked  []string
	created  int
	pageLoad []string
}

func (p *recordingPlugin) Name() string { return p.name }

func (p *recordingPlugin) Initialize(_ Host, cfg json.RawMessage) error {
	if p.calls != nil {
		*p.calls = append(*p.calls, p.name)
	}
	p.gotCfg = cfg
	return p.initErr
}

func (p *recordingPlugin) InitializationScript() string { return p.script }

func (p *recordingPlugin) Created(Window) { p.created++ }

func (p *recordingPlugin) OnPageLoad(_ Window, payload ipc.PageLoadPayload) {
	p.pageLoad = append(p.pageLoad, payload.URL)
}

func (p *recordingPlugin) ExtendAPI(inv Invoke) {
	p.invoked = append(p.invoked, inv.Command())
	_ = inv.Resolve("ok")
}

type fakeInvoke struct {
	command  string
	resolved any
	rejected any
}

func (f *fakeInvoke) Command() string          { return f.command }
func (f *fakeInvoke) Payload() json.RawMessage { return nil }
func (f *fakeInvoke) Window() Window           { return nil }
func (f *fakeInvoke) Resolve(v any) error      { f.resolved = v; return nil }
func (f *fakeInvoke) Reject(v any) error       { f.rejected = v; return nil }

func TestStoreAddRejectsDuplicates(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(&recordingPlugin{name: "store"}))
	err := s.Add(&recordingPlugin{name: "store"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `plugin "store" already registered`)
	assert.Error(t, s.Add(&recordingPlugin{name: ""}))
	assert.Error(t, s.Add(&recordingPlugin{name: "a|b"}))
	assert.Equal(t, 1, s.Len())
}

func TestStoreInitializeInOrderAndStopsOnError(t *testing.T) {
	var calls []string
	s := NewStore()
	require.NoError(t, s.Add(&recordingPlugin{name: "one", calls: &calls}))
	require.NoError(t, s.Add(&recordingPlugin{name: "two", calls: &calls, initErr: errors.New("nope")}))
	require.NoError(t, s.Add(&recordingPlugin{name: "three", calls: &calls}))

	err := s.Initialize(nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `plugin "two"`)
	assert.Equal(t, []string{"one", "two"}, calls)
}

func TestStoreInitializePassesConfig(t *testing.T) {
	p := &recordingPlugin{name: "one"}
	s := NewStore()
	require.NoError(t, s.Add(p))
	require.NoError(t, s.Initialize(nil, map[string]any{"one": map[string]any{"k": "v"}}))
	assert.JSONEq(t, `{"k":"v"}`, string(p.gotCfg))
}

func TestStoreExtendAPIRouting(t *testing.T) {
	p := &recordingPlugin{name: "store"}
	s := NewStore()
	require.NoError(t, s.Add(p))

	inv := &fakeInvoke{command: "plugin:store|get"}
	s.ExtendAPI(inv)
	assert.Equal(t, []string{"plugin:store|get"}, p.invoked)
	assert.Equal(t, "ok", inv.resolved)

	missing := &fakeInvoke{command: "plugin:other|get"}
	s.ExtendAPI(missing)
	assert.Equal(t, `plugin "other" not found`, missing.rejected)

	malformed := &fakeInvoke{command: "plugin:store"}
	s.ExtendAPI(malformed)
	assert.NotNil(t, malformed.rejected)
}

func TestBaseRejectsCommands(t *testing.T) {
	inv := &fakeInvoke{command: "plugin:x|y"}
	Base{}.ExtendAPI(inv)
	assert.NotNil(t, inv.rejected)
}

func TestStoreHooksFanOut(t *testing.T) {
	a := &recordingPlugin{name: "a", script: "console.log('a')"}
	b := &recordingPlugin{name: "b"}
	s := NewStore()
	require.NoError(t, s.Add(a))
	require.NoError(t, s.Add(b))

	s.Created(nil)
	s.OnPageLoad(nil, ipc.PageLoadPayload{URL: "tauri://localhost"})
	assert.Equal(t, 1, a.created)
	assert.Equal(t, []string{"tauri://localhost"}, b.pageLoad)

	script := s.InitializationScript()
	assert.Contains(t, script, "console.log('a')")
	assert.Contains(t, script, "(function () {")
}

func TestParseCommand(t *testing.T) {
	name, cmd, ok := ParseCommand("plugin:fs-extra|exists")
	require.True(t, ok)
	assert.Equal(t, "fs-extra", name)
	assert.Equal(t, "exists", cmd)

	for _, bad := range []string{"greet", "plugin:", "plugin:x|", "plugin:|y"} {
		_, _, ok := ParseCommand(bad)
		assert.False(t, ok, bad)
	}
}
