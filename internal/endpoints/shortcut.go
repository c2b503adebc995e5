package endpoints

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/mattjoyce/webshell/internal/config"
	"github.com/mattjoyce/webshell/internal/ipc"
)

var (
	ErrInvalidAccelerator = errors.New("invalid accelerator")
	ErrShortcutTaken      = errors.New("shortcut already registered")
)

// ShortcutManager binds global keyboard shortcuts.
type ShortcutManager interface {
	Register(accelerator string, handler func()) error
	Unregister(accelerator string) error
	UnregisterAll() error
	IsRegistered(accelerator string) (bool, error)
}

var modifierNames = map[string]string{
	"commandorcontrol": "CmdOrCtrl",
	"cmdorctrl":        "CmdOrCtrl",
	"command":          "Cmd",
	"cmd":              "Cmd",
	"control":          "Ctrl",
	"ctrl":             "Ctrl",
	"alt":              "Alt",
	"option":           "Alt",
	"shift":            "Shift",
	"super":            "Super",
	"meta":             "Super",
}

var modifierOrder = map[string]int{"CmdOrCtrl": 0, "Cmd": 1, "Ctrl": 2, "Alt": 3, "Shift": 4, "Super": 5}

var namedKeys = map[string]string{
	"space": "Space", "tab": "Tab", "enter": "Enter", "return": "Enter",
	"escape": "Escape", "esc": "Escape", "backspace": "Backspace",
	"delete": "Delete", "insert": "Insert", "home": "Home", "end": "End",
	"pageup": "PageUp", "pagedown": "PageDown", "up": "Up", "down": "Down",
	"left": "Left", "right": "Right", "plus": "Plus", "minus": "Minus",
}

// ParseAccelerator normalizes an accelerator such as "CmdOrCtrl+Shift+K"
// so equivalent spellings compare equal.
func ParseAccelerator(s string) (string, error) {
	parts := strings.Split(strings.TrimSpace(s), "+")
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidAccelerator, s)
	}
	var mods []string
	seen := map[string]bool{}
	for _, p := range parts[:len(parts)-1] {
		m, ok := modifierNames[strings.ToLower(strings.TrimSpace(p))]
		if !ok || seen[m] {
			return "", fmt.Errorf("%w: %q", ErrInvalidAccelerator, s)
		}
		seen[m] = true
		mods = append(mods, m)
	}
	sort.Slice(mods, func(i, j int) bool { return modifierOrder[mods[i]] < modifierOrder[mods[j]] })

	key, err := normalizeKey(strings.TrimSpace(parts[len(parts)-1]))
	if err != nil {
		return "", fmt.Errorf("%w: %q", err, s)
	}
	return strings.Join(append(mods, key), "+"), nil
}

func normalizeKey(k string) (string, error) {
	if len(k) == 1 {
		c := k[0]
		switch {
		case c >= 'a' && c <= 'z':
			return strings.ToUpper(k), nil
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			return k, nil
		}
	}
	lower := strings.ToLower(k)
	if named, ok := namedKeys[lower]; ok {
		return named, nil
	}
	if len(lower) >= 2 && lower[0] == 'f' {
		if n, err := strconv.Atoi(lower[1:]); err == nil && n >= 1 && n <= 24 && strconv.Itoa(n) == lower[1:] {
			return "F" + strconv.Itoa(n), nil
		}
	}
	return "", ErrInvalidAccelerator
}

// ShortcutRegistry keeps shortcuts in memory. Press fires a registered
// handler; a platform hook or a test drives it.
type ShortcutRegistry struct {
	mu       sync.Mutex
	handlers map[string]func()
}

func NewShortcutRegistry() *ShortcutRegistry {
	return &ShortcutRegistry{handlers: make(map[string]func())}
}

func (r *ShortcutRegistry) Register(accelerator string, handler func()) error {
	key, err := ParseAccelerator(accelerator)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handlers[key]; ok {
		return fmt.Errorf("%w: %s", ErrShortcutTaken, key)
	}
	r.handlers[key] = handler
	return nil
}

func (r *ShortcutRegistry) Unregister(accelerator string) error {
	key, err := ParseAccelerator(accelerator)
	if err != nil {
		return err
	}
	r.mu.Lock()
	delete(r.handlers, key)
	r.mu.Unlock()
	return nil
}

func (r *ShortcutRegistry) UnregisterAll() error {
	r.mu.Lock()
	r.handlers = make(map[string]func())
	r.mu.Unlock()
	return nil
}

func (r *ShortcutRegistry) IsRegistered(accelerator string) (bool, error) {
	key, err := ParseAccelerator(accelerator)
	if err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.handlers[key]
	return ok, nil
}

// Press fires the handler bound to accelerator and reports whether one was.
func (r *ShortcutRegistry) Press(accelerator string) bool {
	key, err := ParseAccelerator(accelerator)
	if err != nil {
		return false
	}
	r.mu.Lock()
	h, ok := r.handlers[key]
	r.mu.Unlock()
	if ok {
		h()
	}
	return ok
}

type shortcutArgs struct {
	Shortcut  string         `json:"shortcut"`
	Shortcuts []string       `json:"shortcuts"`
	Handler   ipc.CallbackID `json:"handler"`
}

func (e *Endpoints) globalShortcut(_ context.Context, host Host, caller Caller, msg json.RawMessage) (any, error) {
	cmd, err := decodeCommand(ModuleGlobalShortcut, msg)
	if err != nil {
		return nil, err
	}
	if err := allowed(host, config.CategoryGlobalShortcut); err != nil {
		return nil, err
	}
	var args shortcutArgs
	if err := decode(ModuleGlobalShortcut, cmd, msg, &args); err != nil {
		return nil, err
	}
	shortcuts := e.deps.Shortcuts

	switch cmd {
	case "register":
		return nil, e.registerShortcut(caller, args.Shortcut, args.Handler)
	case "registerAll":
		for _, s := range args.Shortcuts {
			if err := e.registerShortcut(caller, s, args.Handler); err != nil {
				return nil, err
			}
		}
		return nil, nil
	case "unregister":
		return nil, shortcuts.Unregister(args.Shortcut)
	case "unregisterAll":
		return nil, shortcuts.UnregisterAll()
	case "isRegistered":
		return shortcuts.IsRegistered(args.Shortcut)
	}
	return nil, unknownCommand(ModuleGlobalShortcut, cmd)
}

// registerShortcut calls back into the registering window each time the
// shortcut fires.
func (e *Endpoints) registerShortcut(caller Caller, shortcut string, handler ipc.CallbackID) error {
	if !handler.Valid() {
		return fmt.Errorf("%w: GlobalShortcut: invalid handler", ErrInvalidMessage)
	}
	arg, err := json.Marshal(shortcut)
	if err != nil {
		return err
	}
	script := ipc.FormatCallback(handler, arg)
	return e.deps.Shortcuts.Register(shortcut, func() {
		if err := caller.Dispatcher.EvalScript(script); err != nil {
			e.logger.Warn("shortcut callback failed", "window", caller.Label, "shortcut", shortcut, "error", err)
		}
	})
}
