// Package doctor reviews a webshell configuration before it is run:
// windows that cannot load, capabilities that are broader than they look,
// and plugins whose settings are missing.
package doctor

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"github.com/mattjoyce/webshell/internal/assets"
	"github.com/mattjoyce/webshell/internal/config"
	"github.com/mattjoyce/webshell/internal/plugin"
)

// Result holds the outcome of a validation run.
type Result struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors,omitempty"`
	Warnings []Issue `json:"warnings,omitempty"`
}

// Issue describes a single validation error or warning.
type Issue struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Field    string `json:"field,omitempty"`
}

// Doctor validates configuration against the dist dir and discovered
// plugins.
type Doctor struct {
	cfg     *config.Config
	assets  assets.Assets
	plugins map[string]*plugin.ScriptPlugin
}

// New creates a Doctor. dist may be nil when no dist dir exists; plugins
// may be empty.
func New(cfg *config.Config, dist assets.Assets, plugins []*plugin.ScriptPlugin) *Doctor {
	byName := make(map[string]*plugin.ScriptPlugin, len(plugins))
	for _, p := range plugins {
		byName[p.PluginName] = p
	}
	return &Doctor{cfg: cfg, assets: dist, plugins: byName}
}

// Validate runs all checks and returns a result.
func (d *Doctor) Validate() *Result {
	r := &Result{Valid: true}

	d.validateWindows(r)
	d.validatePluginRefs(r)
	d.warnBroadAllowlist(r)
	d.warnMissingCSP(r)
	d.warnUnusedPlugins(r)
	d.warnMissingEnvVars(r)

	r.Valid = len(r.Errors) == 0
	return r
}

func (d *Doctor) addError(r *Result, category, field, msg string) {
	r.Errors = append(r.Errors, Issue{Category: category, Field: field, Message: msg})
}

func (d *Doctor) addWarning(r *Result, category, field, msg string) {
	r.Warnings = append(r.Warnings, Issue{Category: category, Field: field, Message: msg})
}

// validateWindows checks that every local window URL resolves to an asset.
func (d *Doctor) validateWindows(r *Result) {
	if len(d.cfg.Tauri.Windows) == 0 {
		d.addWarning(r, "windows", "tauri.windows", "no windows declared; only windows created in code will open")
	}
	devServer := config.WindowURL(d.cfg.Build.DevPath).External()
	if d.cfg.Build.DevPath != "" && !devServer {
		d.addError(r, "windows", "build.dev_path",
			fmt.Sprintf("dev_path %q must be an http or https URL", d.cfg.Build.DevPath))
	}
	for i, w := range d.cfg.Tauri.Windows {
		field := fmt.Sprintf("tauri.windows[%d].url", i)
		if w.URL.External() || (d.cfg.Runtime.Dev && devServer) {
			continue
		}
		if d.assets == nil {
			d.addError(r, "windows", field,
				fmt.Sprintf("window %q loads %q but build.dist_dir %q is missing", w.Label, w.URL, d.cfg.Build.DistDir))
			continue
		}
		if _, ok := d.assets.Get(string(w.URL)); !ok {
			d.addError(r, "windows", field,
				fmt.Sprintf("window %q loads %q which is not in build.dist_dir", w.Label, w.URL))
		}
	}
}

// validatePluginRefs checks that configured plugins exist and carry their
// required keys.
func (d *Doctor) validatePluginRefs(r *Result) {
	names := make([]string, 0, len(d.cfg.Plugins))
	for name := range d.cfg.Plugins {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p, ok := d.plugins[name]
		if !ok {
			d.addError(r, "plugin_refs", fmt.Sprintf("plugins.%s", name),
				fmt.Sprintf("plugin %q in config but not found in the plugins dir", name))
			continue
		}
		if p.ConfigKeys == nil {
			continue
		}
		values, _ := d.cfg.Plugins[name].(map[string]any)
		for _, key := range p.ConfigKeys.Required {
			if _, exists := values[key]; !exists {
				d.addError(r, "plugin_refs", fmt.Sprintf("plugins.%s.%s", name, key),
					fmt.Sprintf("plugin %q requires config key %q", name, key))
			}
		}
	}
}

// warnBroadAllowlist flags capabilities that expose more than they appear to.
func (d *Doctor) warnBroadAllowlist(r *Result) {
	a := d.cfg.Tauri.Allowlist
	if a.All {
		d.addWarning(r, "allowlist", "tauri.allowlist.all", "every capability is enabled for every window")
	}
	if a.Shell.Execute || a.Shell.All {
		d.addWarning(r, "allowlist", "tauri.allowlist.shell.execute", "windows may run arbitrary programs")
	}
	if (a.Fs.All || a.All) && len(a.Fs.Scope) == 0 {
		d.addWarning(r, "allowlist", "tauri.allowlist.fs.scope", "fs is enabled without a scope; every path is reachable")
	}
	if a.Window.Create && !a.Window.All && !a.All {
		d.addWarning(r, "allowlist", "tauri.allowlist.window.create", "window.create has no effect without window.all")
	}
}

func (d *Doctor) warnMissingCSP(r *Result) {
	if d.cfg.Tauri.Security.CSP == "" {
		d.addWarning(r, "security", "tauri.security.csp", "no content security policy is injected into local pages")
	}
}

// warnUnusedPlugins warns about discovered plugins not referenced in config.
func (d *Doctor) warnUnusedPlugins(r *Result) {
	names := make([]string, 0, len(d.plugins))
	for name, p := range d.plugins {
		if _, inConfig := d.cfg.Plugins[name]; !inConfig && p.ConfigKeys != nil && len(p.ConfigKeys.Required) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		d.addWarning(r, "unused", fmt.Sprintf("plugins.%s", name),
			fmt.Sprintf("plugin %q needs config but has none and will fail to initialize", name))
	}
}

var envVarRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// warnMissingEnvVars warns about ${VAR} references left in values where VAR
// is not set.
func (d *Doctor) warnMissingEnvVars(r *Result) {
	check := func(field, value string) {
		for _, m := range envVarRe.FindAllStringSubmatch(value, -1) {
			if os.Getenv(m[1]) == "" {
				d.addWarning(r, "env_vars", field, fmt.Sprintf("environment variable ${%s} not set", m[1]))
			}
		}
	}
	check("build.dev_path", d.cfg.Build.DevPath)
	check("tauri.security.csp", d.cfg.Tauri.Security.CSP)
	for i, w := range d.cfg.Tauri.Windows {
		check(fmt.Sprintf("tauri.windows[%d].title", i), w.Title)
	}
}
