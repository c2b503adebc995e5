package plugin

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mattjoyce/webshell/internal/ipc"
)

// Store holds plugins in registration order.
type Store struct {
	order   []Plugin
	plugins map[string]Plugin
}

// NewStore creates an empty plugin store.
func NewStore() *Store {
	return &Store{plugins: make(map[string]Plugin)}
}

// Add registers a plugin.
func (s *Store) Add(p Plugin) error {
	name := p.Name()
	if name == "" {
		return fmt.Errorf("plugin name is empty")
	}
	if strings.ContainsAny(name, "|:") {
		return fmt.Errorf("plugin name %q must not contain '|' or ':'", name)
	}
	if _, exists := s.plugins[name]; exists {
		return fmt.Errorf("plugin %q already registered", name)
	}
	s.plugins[name] = p
	s.order = append(s.order, p)
	return nil
}

// Get retrieves a plugin by name.
func (s *Store) Get(name string) (Plugin, bool) {
	p, ok := s.plugins[name]
	return p, ok
}

// All returns plugins in registration order.
func (s *Store) All() []Plugin {
	return append([]Plugin(nil), s.order...)
}

// Len returns the number of registered plugins.
func (s *Store) Len() int { return len(s.order) }

// Initialize runs every plugin's setup in registration order and stops at
// the first failure. configs holds per-plugin settings keyed by name.
func (s *Store) Initialize(host Host, configs map[string]any) error {
	for _, p := range s.order {
		raw := json.RawMessage("null")
		if c, ok := configs[p.Name()]; ok {
			b, err := json.Marshal(c)
			if err != nil {
				return fmt.Errorf("plugin %q: encode config: %w", p.Name(), err)
			}
			raw = b
		}
		if err := p.Initialize(host, raw); err != nil {
			return fmt.Errorf("plugin %q: initialize: %w", p.Name(), err)
		}
	}
	return nil
}

// InitializationScript concatenates every plugin's script, each wrapped
// in its own function scope.
func (s *Store) InitializationScript() string {
	var b strings.Builder
	for _, p := range s.order {
		script := p.InitializationScript()
		if script == "" {
			continue
		}
		fmt.Fprintf(&b, "(function () {\n%s\n})();\n", script)
	}
	return b.String()
}

// Created notifies every plugin of a new window.
func (s *Store) Created(w Window) {
	for _, p := range s.order {
		p.Created(w)
	}
}

// OnPageLoad notifies every plugin of a page load.
func (s *Store) OnPageLoad(w Window, payload ipc.PageLoadPayload) {
	for _, p := range s.order {
		p.OnPageLoad(w, payload)
	}
}

// ParseCommand splits "plugin:<name>|<cmd>" into its parts.
func ParseCommand(command string) (name, cmd string, ok bool) {
	rest, found := strings.CutPrefix(command, ipc.PluginPrefix)
	if !found {
		return "", "", false
	}
	name, cmd, found = strings.Cut(rest, "|")
	if !found || name == "" || cmd == "" {
		return "", "", false
	}
	return name, cmd, true
}

// ExtendAPI routes a plugin invoke to its plugin. Malformed or unknown
// targets are rejected on the invoke's error channel.
func (s *Store) ExtendAPI(invoke Invoke) {
	name, _, ok := ParseCommand(invoke.Command())
	if !ok {
		_ = invoke.Reject(fmt.Sprintf("malformed plugin command %q (want plugin:<name>|<cmd>)", invoke.Command()))
		return
	}
	p, found := s.plugins[name]
	if !found {
		_ = invoke.Reject(fmt.Sprintf("plugin %q not found", name))
		return
	}
	p.ExtendAPI(invoke)
}
