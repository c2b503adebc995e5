package app

import (
	_ "embed"
	"encoding/json"
	"strings"

	"github.com/mattjoyce/webshell/internal/ipc"
	"github.com/mattjoyce/webshell/internal/tag"
)

//go:embed bridge.js
var bridgeJS string

// initializationScript is injected into every window ahead of page
// scripts: the invoke and event bridge followed by plugin scripts.
func (m *Manager) initializationScript(label tag.Label, labels []tag.Label) string {
	lit := func(v any) string {
		b, _ := json.Marshal(v)
		return string(b)
	}
	if labels == nil {
		labels = []tag.Label{}
	}
	script := strings.NewReplacer(
		"__EMIT_FN__", lit(m.EmitFunctionName()),
		"__LISTENERS_VAR__", lit(ipc.ListenersVar),
		"__LABEL__", lit(label),
		"__WINDOWS__", lit(labels),
	).Replace(bridgeJS)

	if plugins := m.plugins.InitializationScript(); plugins != "" {
		script += "\n" + plugins
	}
	return script
}
