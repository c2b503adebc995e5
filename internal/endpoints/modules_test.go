package endpoints

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	goruntime "runtime"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/webshell/internal/config"
	"github.com/mattjoyce/webshell/internal/runtime/mocks"
	"github.com/mattjoyce/webshell/internal/settings"
	"github.com/mattjoyce/webshell/internal/storage"
)

func TestFsModule(t *testing.T) {
	mem := afero.NewMemMapFs()
	e := New(Deps{FS: mem})
	host := newFakeHost(config.Allowlist{Fs: config.FsAllowlist{All: true}})
	caller := Caller{Label: "main"}
	ctx := context.Background()
	run := func(msg string) (any, error) {
		return e.Run(ctx, host, caller, ModuleFs, message(t, msg))
	}

	_, err := run(`{"cmd":"createDir","path":"/data/notes","options":{"recursive":true}}`)
	require.NoError(t, err)
	_, err = run(`{"cmd":"writeFile","path":"/data/notes/a.txt","contents":"hello"}`)
	require.NoError(t, err)

	v, err := run(`{"cmd":"readTextFile","path":"/data/notes/a.txt"}`)
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	_, err = run(`{"cmd":"writeBinaryFile","path":"/data/b.bin","contents":"AQID"}`)
	require.NoError(t, err)
	v, err = run(`{"cmd":"readBinaryFile","path":"/data/b.bin"}`)
	require.NoError(t, err)
	b, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2,3]`, string(b))

	_, err = run(`{"cmd":"copyFile","source":"/data/notes/a.txt","destination":"/data/notes/c.txt"}`)
	require.NoError(t, err)
	_, err = run(`{"cmd":"renameFile","oldPath":"/data/notes/c.txt","newPath":"/data/notes/d.txt"}`)
	require.NoError(t, err)

	v, err = run(`{"cmd":"readDir","path":"/data","options":{"recursive":true}}`)
	require.NoError(t, err)
	entries := v.([]DiskEntry)
	require.Len(t, entries, 2)
	assert.Equal(t, "b.bin", entries[0].Name)
	assert.Equal(t, "notes", entries[1].Name)
	require.Len(t, entries[1].Children, 2)
	assert.Equal(t, "a.txt", entries[1].Children[0].Name)
	assert.Equal(t, "d.txt", entries[1].Children[1].Name)

	_, err = run(`{"cmd":"removeFile","path":"/data/b.bin"}`)
	require.NoError(t, err)
	_, err = run(`{"cmd":"removeDir","path":"/data/notes","options":{"recursive":true}}`)
	require.NoError(t, err)
	exists, err := afero.Exists(mem, "/data/notes")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFsModuleScopeAndGating(t *testing.T) {
	mem := afero.NewMemMapFs()
	root := filepath.Join(string(filepath.Separator), "srv", "app")
	require.NoError(t, afero.WriteFile(mem, filepath.Join(root, "ok.txt"), []byte("ok"), 0o644))
	require.NoError(t, afero.WriteFile(mem, filepath.Join(string(filepath.Separator), "etc", "passwd"), []byte("root"), 0o644))
	e := New(Deps{FS: mem})
	ctx := context.Background()

	_, err := e.Run(ctx, newFakeHost(config.Allowlist{}), Caller{Label: "main"}, ModuleFs, message(t, `{"cmd":"readTextFile","path":"/srv/app/ok.txt"}`))
	var notAllowed *NotAllowlistedError
	require.True(t, errors.As(err, &notAllowed))

	host := newFakeHost(config.Allowlist{Fs: config.FsAllowlist{All: true, Scope: []string{root}}})
	v, err := e.Run(ctx, host, Caller{Label: "main"}, ModuleFs, message(t, `{"cmd":"readTextFile","path":"/srv/app/ok.txt"}`))
	require.NoError(t, err)
	assert.Equal(t, "ok", v)

	for _, p := range []string{"/etc/passwd", "/srv/app/../../etc/passwd", "/srv/application/x"} {
		raw, err := json.Marshal(map[string]string{"cmd": "readTextFile", "path": p})
		require.NoError(t, err)
		_, err = e.Run(ctx, host, Caller{Label: "main"}, ModuleFs, message(t, string(raw)))
		require.Error(t, err, p)
		assert.True(t, errors.Is(err, ErrOutsideScope), p)
	}
}

func TestShellOpen(t *testing.T) {
	var opened []string
	e := New(Deps{OpenURL: func(target string) error {
		opened = append(opened, target)
		return nil
	}})
	ctx := context.Background()

	_, err := e.Run(ctx, newFakeHost(config.Allowlist{Shell: config.ShellAllowlist{Execute: true}}), Caller{Label: "main"},
		ModuleShell, message(t, `{"cmd":"open","path":"https://example.com"}`))
	var notAllowed *NotAllowlistedError
	require.True(t, errors.As(err, &notAllowed))
	assert.Equal(t, config.CategoryShellOpen, notAllowed.Category)

	host := newFakeHost(config.Allowlist{Shell: config.ShellAllowlist{Open: true}})
	_, err = e.Run(ctx, host, Caller{Label: "main"}, ModuleShell, message(t, `{"cmd":"open","path":"https://example.com"}`))
	require.NoError(t, err)
	_, err = e.Run(ctx, host, Caller{Label: "main"}, ModuleShell, message(t, `{"cmd":"open","path":"file:///etc/passwd"}`))
	require.Error(t, err)
	assert.Equal(t, []string{"https://example.com"}, opened)
}

func TestShellExecute(t *testing.T) {
	if goruntime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	e := New(Deps{})
	host := newFakeHost(config.Allowlist{Shell: config.ShellAllowlist{Execute: true}})

	v, err := e.Run(context.Background(), host, Caller{Label: "main"}, ModuleShell,
		message(t, `{"cmd":"execute","program":"sh","args":"-c 'echo hi; echo oops >&2; exit 3'"}`))
	require.NoError(t, err)
	out := v.(ExecOutput)
	assert.Equal(t, 3, out.Code)
	assert.Equal(t, "hi\n", out.Stdout)
	assert.Equal(t, "oops\n", out.Stderr)

	_, err = e.Run(context.Background(), host, Caller{Label: "main"}, ModuleShell,
		message(t, `{"cmd":"execute","program":"definitely-not-a-real-binary-xyz"}`))
	require.Error(t, err)
}

func TestMatchArgs(t *testing.T) {
	cfg := &config.CliConfig{Args: []config.CliArg{
		{Name: "verbose", Short: "v"},
		{Name: "theme", TakesValue: true},
		{Name: "open", TakesValue: true, Multiple: true},
		{Name: "debug"},
	}}
	m, err := MatchArgs(cfg, []string{"-vv", "--theme", "dark", "--open", "a.txt", "--open=b.txt", "extra"})
	require.NoError(t, err)

	assert.Equal(t, ArgMatch{Value: true, Occurrences: 2}, m.Args["verbose"])
	assert.Equal(t, ArgMatch{Value: "dark", Occurrences: 1}, m.Args["theme"])
	assert.Equal(t, ArgMatch{Value: []string{"a.txt", "b.txt"}, Occurrences: 2}, m.Args["open"])
	assert.Equal(t, ArgMatch{Value: false, Occurrences: 0}, m.Args["debug"])
	assert.Equal(t, []string{"extra"}, m.Positional)

	_, err = MatchArgs(cfg, []string{"--nope"})
	require.Error(t, err)
}

func TestCliModule(t *testing.T) {
	e := New(Deps{Args: []string{"--theme", "light"}})
	host := newFakeHost(config.Allowlist{Cli: true})

	_, err := e.Run(context.Background(), host, Caller{Label: "main"}, ModuleCli, message(t, `{"cmd":"cliMatches"}`))
	require.Error(t, err, "no cli section configured")

	host.cfg.Tauri.Cli = &config.CliConfig{Args: []config.CliArg{{Name: "theme", TakesValue: true}}}
	v, err := e.Run(context.Background(), host, Caller{Label: "main"}, ModuleCli, message(t, `{"cmd":"cliMatches"}`))
	require.NoError(t, err)
	assert.Equal(t, "light", v.(Matches).Args["theme"].Value)
}

type countingDialogs struct {
	UnavailableDialogs
	mu     sync.Mutex
	asked  int
	answer bool
}

func (d *countingDialogs) Ask(context.Context, string, string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.asked++
	return d.answer, nil
}

type recordedNotifier struct {
	got []Notification
}

func (n *recordedNotifier) Notify(_ context.Context, _ Caller, _ string, note Notification) error {
	n.got = append(n.got, note)
	return nil
}

func openSettings(t *testing.T) *settings.Store {
	t.Helper()
	db, err := storage.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return settings.NewStore(db)
}

func TestNotificationNotAllowlisted(t *testing.T) {
	notifier := &recordedNotifier{}
	e := New(Deps{Notifier: notifier})
	host := newFakeHost(config.Allowlist{})
	ctx := context.Background()

	v, err := e.Run(ctx, host, Caller{Label: "main"}, ModuleNotification, message(t, `{"cmd":"isNotificationPermissionGranted"}`))
	require.NoError(t, err)
	assert.Equal(t, false, v)

	v, err = e.Run(ctx, host, Caller{Label: "main"}, ModuleNotification, message(t, `{"cmd":"requestNotificationPermission"}`))
	require.NoError(t, err)
	assert.Equal(t, PermissionDenied, v)

	_, err = e.Run(ctx, host, Caller{Label: "main"}, ModuleNotification, message(t, `{"cmd":"notification","options":{"title":"hi"}}`))
	var notAllowed *NotAllowlistedError
	require.True(t, errors.As(err, &notAllowed))
	assert.Empty(t, notifier.got)
}

func TestNotificationPermissionPersisted(t *testing.T) {
	dialogs := &countingDialogs{answer: true}
	notifier := &recordedNotifier{}
	e := New(Deps{Dialogs: dialogs, Notifier: notifier, Settings: openSettings(t)})
	host := newFakeHost(config.Allowlist{Notification: true})
	ctx := context.Background()

	v, err := e.Run(ctx, host, Caller{Label: "main"}, ModuleNotification, message(t, `{"cmd":"isNotificationPermissionGranted"}`))
	require.NoError(t, err)
	assert.Nil(t, v)

	for i := 0; i < 2; i++ {
		v, err = e.Run(ctx, host, Caller{Label: "main"}, ModuleNotification, message(t, `{"cmd":"requestNotificationPermission"}`))
		require.NoError(t, err)
		assert.Equal(t, PermissionGranted, v)
	}
	assert.Equal(t, 1, dialogs.asked)

	v, err = e.Run(ctx, host, Caller{Label: "main"}, ModuleNotification, message(t, `{"cmd":"isNotificationPermissionGranted"}`))
	require.NoError(t, err)
	assert.Equal(t, true, v)

	_, err = e.Run(ctx, host, Caller{Label: "main"}, ModuleNotification, message(t, `{"cmd":"notification","options":{"title":"Build done","body":"42 tests"}}`))
	require.NoError(t, err)
	require.Len(t, notifier.got, 1)
	assert.Equal(t, Notification{Title: "Build done", Body: "42 tests"}, notifier.got[0])
}

func TestScriptNotifier(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	d := mocks.NewMockDispatch(ctrl)
	var script string
	d.EXPECT().EvalScript(gomock.Any()).DoAndReturn(func(s string) error {
		script = s
		return nil
	})
	err := ScriptNotifier{}.Notify(context.Background(), Caller{Label: "main", Dispatcher: d}, "com.example", Notification{Title: `say "hi"`})
	require.NoError(t, err)
	assert.Contains(t, script, `new Notification("say \"hi\""`)
}

func TestHTTPModule(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Seen-Query", r.URL.Query().Get("q"))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"method":      r.Method,
			"body":        string(body),
			"contentType": r.Header.Get("Content-Type"),
			"auth":        r.Header.Get("Authorization"),
		})
	}))
	defer srv.Close()

	e := New(Deps{HTTPClient: srv.Client()})
	ctx := context.Background()

	raw, err := json.Marshal(map[string]any{
		"cmd": "httpRequest",
		"options": map[string]any{
			"method":  "post",
			"url":     srv.URL + "/echo",
			"query":   map[string]string{"q": "go"},
			"headers": map[string]string{"Authorization": "Bearer t"},
			"body":    map[string]any{"type": "Json", "payload": map[string]int{"n": 1}},
		},
	})
	require.NoError(t, err)

	_, err = e.Run(ctx, newFakeHost(config.Allowlist{}), Caller{Label: "main"}, ModuleHTTP, message(t, string(raw)))
	var notAllowed *NotAllowlistedError
	require.True(t, errors.As(err, &notAllowed))

	v, err := e.Run(ctx, newFakeHost(config.Allowlist{HTTP: true}), Caller{Label: "main"}, ModuleHTTP, message(t, string(raw)))
	require.NoError(t, err)
	resp := v.(*HTTPResponse)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "go", resp.Headers["X-Seen-Query"])
	data := resp.Data.(map[string]any)
	assert.Equal(t, "POST", data["method"])
	assert.JSONEq(t, `{"n":1}`, data["body"].(string))
	assert.Equal(t, "application/json", data["contentType"])
	assert.Equal(t, "Bearer t", data["auth"])
}

func TestHTTPModuleRejectsNonHTTP(t *testing.T) {
	e := New(Deps{})
	_, err := e.Run(context.Background(), newFakeHost(config.Allowlist{HTTP: true}), Caller{Label: "main"}, ModuleHTTP,
		message(t, `{"cmd":"httpRequest","options":{"url":"file:///etc/passwd"}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid request url")
}

func TestParseAccelerator(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "CmdOrCtrl+Shift+k", want: "CmdOrCtrl+Shift+K"},
		{in: "shift+commandorcontrol+K", want: "CmdOrCtrl+Shift+K"},
		{in: "Alt+F12", want: "Alt+F12"},
		{in: "Option+space", want: "Alt+Space"},
		{in: "Ctrl+F25", wantErr: true},
		{in: "Ctrl+Ctrl+A", wantErr: true},
		{in: "Hyper+A", wantErr: true},
		{in: "Ctrl+", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAccelerator(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidAccelerator))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGlobalShortcutModule(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	d := mocks.NewMockDispatch(ctrl)
	registry := NewShortcutRegistry()
	e := New(Deps{Shortcuts: registry})
	host := newFakeHost(config.Allowlist{GlobalShortcut: true})
	caller := Caller{Label: "main", Dispatcher: d}
	ctx := context.Background()

	_, err := e.Run(ctx, host, caller, ModuleGlobalShortcut, message(t, `{"cmd":"register","shortcut":"CmdOrCtrl+K","handler":9}`))
	require.NoError(t, err)

	_, err = e.Run(ctx, host, caller, ModuleGlobalShortcut, message(t, `{"cmd":"register","shortcut":"commandorcontrol+k","handler":9}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShortcutTaken))

	v, err := e.Run(ctx, host, caller, ModuleGlobalShortcut, message(t, `{"cmd":"isRegistered","shortcut":"CmdOrCtrl+K"}`))
	require.NoError(t, err)
	assert.Equal(t, true, v)

	d.EXPECT().EvalScript(gomock.Any()).DoAndReturn(func(s string) error {
		assert.Contains(t, s, `window["_9"]`)
		assert.Contains(t, s, `cb("CmdOrCtrl+K")`)
		return nil
	})
	assert.True(t, registry.Press("CmdOrCtrl+K"))

	_, err = e.Run(ctx, host, caller, ModuleGlobalShortcut, message(t, `{"cmd":"registerAll","shortcuts":["Alt+1","Alt+2"],"handler":10}`))
	require.NoError(t, err)
	_, err = e.Run(ctx, host, caller, ModuleGlobalShortcut, message(t, `{"cmd":"unregister","shortcut":"Alt+1"}`))
	require.NoError(t, err)
	assert.False(t, registry.Press("Alt+1"))

	_, err = e.Run(ctx, host, caller, ModuleGlobalShortcut, message(t, `{"cmd":"unregisterAll"}`))
	require.NoError(t, err)
	v, err = e.Run(ctx, host, caller, ModuleGlobalShortcut, message(t, `{"cmd":"isRegistered","shortcut":"Alt+2"}`))
	require.NoError(t, err)
	assert.Equal(t, false, v)
}
