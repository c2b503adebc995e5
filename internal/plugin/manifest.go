package plugin

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	SupportedManifestSpec    = "webshell.plugin"
	SupportedManifestVersion = 1
)

// Manifest defines the structure of a script plugin's manifest.yaml file.
type Manifest struct {
	ManifestSpec    string      `yaml:"manifest_spec"`
	ManifestVersion int         `yaml:"manifest_version"`
	Name            string      `yaml:"name"`
	Version         string      `yaml:"version"`
	Description     string      `yaml:"description,omitempty"`
	InitScript      string      `yaml:"init_script"`
	ConfigKeys      *ConfigKeys `yaml:"config_keys,omitempty"`
}

// ConfigKeys defines required and optional configuration keys for a plugin.
type ConfigKeys struct {
	Required []string `yaml:"required,omitempty"`
	Optional []string `yaml:"optional,omitempty"`
}

// ScriptPlugin is a plugin discovered on disk. It contributes a window
// script and receives its configuration as a global the script can read.
type ScriptPlugin struct {
	Base

	PluginName  string
	Path        string // Absolute path to plugin directory
	Version     string
	Description string
	Script      string
	ConfigKeys  *ConfigKeys

	config json.RawMessage
}

func (p *ScriptPlugin) Name() string { return p.PluginName }

// Initialize checks required config keys and keeps the config for the
// init script.
func (p *ScriptPlugin) Initialize(_ Host, config json.RawMessage) error {
	var values map[string]any
	if len(config) > 0 && string(config) != "null" {
		if err := json.Unmarshal(config, &values); err != nil {
			return fmt.Errorf("config must be an object: %w", err)
		}
	}
	if p.ConfigKeys != nil {
		var missing []string
		for _, k := range p.ConfigKeys.Required {
			if _, ok := values[k]; !ok {
				missing = append(missing, k)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("missing required config keys: %s", strings.Join(missing, ", "))
		}
	}
	if values == nil {
		values = map[string]any{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return err
	}
	p.config = b
	return nil
}

// InitializationScript exposes the plugin config and then runs the script.
func (p *ScriptPlugin) InitializationScript() string {
	cfg := p.config
	if cfg == nil {
		cfg = json.RawMessage("{}")
	}
	name, _ := json.Marshal(p.PluginName)
	return fmt.Sprintf("var __PLUGIN_CONFIG__ = Object.freeze(%s);\nvar __PLUGIN_NAME__ = %s;\n%s", cfg, name, p.Script)
}
