package config

import (
	"fmt"
	"regexp"

	"github.com/mattjoyce/webshell/internal/tag"
)

var jsIdentPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

var validBackends = map[string]bool{"browser": true, "headless": true}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// validate performs basic validation on the configuration.
func validate(cfg *Config) error {
	if !validBackends[cfg.Runtime.Backend] {
		return fmt.Errorf("runtime.backend must be one of: browser, headless (got %q)", cfg.Runtime.Backend)
	}
	if cfg.Runtime.Workers < 1 {
		return fmt.Errorf("runtime.workers must be positive")
	}
	if !validLogLevels[cfg.Runtime.LogLevel] {
		return fmt.Errorf("runtime.log_level must be one of: debug, info, warn, error (got %q)", cfg.Runtime.LogLevel)
	}
	if !jsIdentPattern.MatchString(cfg.Runtime.EmitFunctionName) {
		return fmt.Errorf("runtime.emit_function_name %q is not a script identifier", cfg.Runtime.EmitFunctionName)
	}

	seen := make(map[tag.Label]int, len(cfg.Tauri.Windows))
	for i, w := range cfg.Tauri.Windows {
		label, err := tag.ParseLabel(w.Label)
		if err != nil {
			return fmt.Errorf("tauri.windows[%d]: %w", i, err)
		}
		if prev, dup := seen[label]; dup {
			return fmt.Errorf("tauri.windows[%d]: label %q already used by tauri.windows[%d]", i, label, prev)
		}
		seen[label] = i
		if envVarPattern.MatchString(string(w.URL)) {
			return fmt.Errorf("tauri.windows[%d].url: unresolved environment variable", i)
		}
	}

	if cli := cfg.Tauri.Cli; cli != nil {
		names := make(map[string]bool, len(cli.Args))
		for i, arg := range cli.Args {
			if arg.Name == "" {
				return fmt.Errorf("tauri.cli.args[%d].name is required", i)
			}
			if names[arg.Name] {
				return fmt.Errorf("tauri.cli.args[%d]: duplicate argument %q", i, arg.Name)
			}
			names[arg.Name] = true
			if len(arg.Short) > 1 {
				return fmt.Errorf("tauri.cli.args[%d].short must be a single character", i)
			}
		}
	}

	if cfg.Tauri.Bundle.Identifier == "" {
		return fmt.Errorf("tauri.bundle.identifier is required")
	}
	return nil
}
