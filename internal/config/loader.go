package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads and parses configuration from a file. The decoder is chosen by
// extension: .yaml/.yml, .toml or .json. Values not present in the file
// keep their Defaults.
func Load(configPath string) (*Config, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", absPath)
	}

	cfg, err := Parse(filepath.Ext(absPath), data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", absPath, err)
	}
	cfg.SourceHash = Fingerprint(data)

	// Relative dirs are anchored at the config file, not the cwd.
	baseDir := filepath.Dir(absPath)
	cfg.Build.DistDir = anchor(baseDir, cfg.Build.DistDir)
	cfg.Runtime.DataDir = anchor(baseDir, cfg.Runtime.DataDir)

	return cfg, nil
}

// Parse decodes data in the format named by ext, applies defaults and
// validates the result.
func Parse(ext string, data []byte) (*Config, error) {
	interpolated := []byte(interpolateEnv(string(data)))

	cfg := Defaults()
	defaultWindows := cfg.Tauri.Windows
	cfg.Tauri.Windows = nil
	var err error
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(interpolated, cfg)
	case ".toml":
		err = toml.Unmarshal(interpolated, cfg)
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(interpolated))
		dec.DisallowUnknownFields()
		err = dec.Decode(cfg)
	default:
		return nil, fmt.Errorf("unsupported config format %q (want .yaml, .toml or .json)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", strings.TrimPrefix(ext, "."), err)
	}

	if len(cfg.Tauri.Windows) == 0 {
		cfg.Tauri.Windows = defaultWindows
	}
	applyConfigDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func anchor(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// applyConfigDefaults fills zero values a partial file may leave behind.
func applyConfigDefaults(cfg *Config) {
	def := Defaults()
	if cfg.Runtime.Backend == "" {
		cfg.Runtime.Backend = def.Runtime.Backend
	}
	if cfg.Runtime.Listen == "" {
		cfg.Runtime.Listen = def.Runtime.Listen
	}
	if cfg.Runtime.Workers == 0 {
		cfg.Runtime.Workers = def.Runtime.Workers
	}
	if cfg.Runtime.EmitFunctionName == "" {
		cfg.Runtime.EmitFunctionName = def.Runtime.EmitFunctionName
	}
	if cfg.Runtime.LogLevel == "" {
		cfg.Runtime.LogLevel = def.Runtime.LogLevel
	}
	if cfg.Runtime.LogFormat == "" {
		cfg.Runtime.LogFormat = def.Runtime.LogFormat
	}
	if cfg.Plugins == nil {
		cfg.Plugins = make(map[string]any)
	}
	for i := range cfg.Tauri.Windows {
		w := &cfg.Tauri.Windows[i]
		if w.URL == "" {
			w.URL = "index.html"
		}
		if w.Width == 0 {
			w.Width = 800
		}
		if w.Height == 0 {
			w.Height = 600
		}
	}
}

// interpolateEnv replaces ${VAR} with environment variable values.
func interpolateEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		// Leave the placeholder; validation reports it where it matters.
		return match
	})
}
