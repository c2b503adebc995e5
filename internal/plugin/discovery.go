package plugin

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const manifestFilename = "manifest.yaml"

// Discover scans pluginsDir for script plugins with a manifest.yaml.
// Invalid plugins are logged and skipped; duplicate names keep the first
// one found.
func Discover(pluginsDir string, logger func(level, msg string, args ...any)) ([]*ScriptPlugin, error) {
	if logger == nil {
		logger = func(level, msg string, args ...any) {}
	}
	absRoot, err := filepath.Abs(strings.TrimSpace(pluginsDir))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve plugin root %q: %w", pluginsDir, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("plugin root does not exist: %s", absRoot)
		}
		return nil, fmt.Errorf("failed to stat plugin root %s: %w", absRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("plugin root is not a directory: %s", absRoot)
	}

	var found []*ScriptPlugin
	seen := make(map[string]string)
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || d.Name() != manifestFilename {
			return nil
		}

		pluginPath := filepath.Dir(path)
		p, err := loadScriptPlugin(pluginPath, absRoot)
		if err != nil {
			logger("warn", "failed to load plugin", "path", pluginPath, "error", err.Error())
			return nil
		}
		if kept, dup := seen[p.PluginName]; dup {
			logger("warn", "duplicate plugin ignored (keeping first discovered)",
				"plugin", p.PluginName, "ignored_path", p.Path, "kept_path", kept)
			return nil
		}
		seen[p.PluginName] = p.Path
		found = append(found, p)
		logger("info", "loaded plugin", "plugin", p.PluginName, "path", p.Path, "version", p.Version)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan plugin root %s: %w", absRoot, err)
	}
	return found, nil
}

// loadScriptPlugin reads and validates a single plugin directory.
func loadScriptPlugin(pluginPath, root string) (*ScriptPlugin, error) {
	data, err := os.ReadFile(filepath.Join(pluginPath, manifestFilename))
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest YAML: %w", err)
	}
	if err := validateManifest(&manifest); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	scriptPath := filepath.Join(pluginPath, manifest.InitScript)
	if err := validateTrust(scriptPath, pluginPath, root); err != nil {
		return nil, fmt.Errorf("trust validation failed: %w", err)
	}
	script, err := os.ReadFile(scriptPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read init script: %w", err)
	}

	return &ScriptPlugin{
		PluginName:  manifest.Name,
		Path:        pluginPath,
		Version:     manifest.Version,
		Description: manifest.Description,
		Script:      string(script),
		ConfigKeys:  manifest.ConfigKeys,
	}, nil
}

// validateManifest checks required manifest fields.
func validateManifest(m *Manifest) error {
	if strings.TrimSpace(m.ManifestSpec) == "" {
		return fmt.Errorf("manifest_spec is required")
	}
	if m.ManifestSpec != SupportedManifestSpec {
		return fmt.Errorf("unsupported manifest_spec %q (supported: %q)", m.ManifestSpec, SupportedManifestSpec)
	}
	if m.ManifestVersion == 0 {
		return fmt.Errorf("manifest_version is required")
	}
	if m.ManifestVersion != SupportedManifestVersion {
		return fmt.Errorf("unsupported manifest_version %d (supported: %d)", m.ManifestVersion, SupportedManifestVersion)
	}
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.ContainsAny(m.Name, "|: ") {
		return fmt.Errorf("name %q must not contain '|', ':' or spaces", m.Name)
	}
	if m.InitScript == "" {
		return fmt.Errorf("init_script is required")
	}
	if strings.Contains(m.InitScript, "..") {
		return fmt.Errorf("init_script contains path traversal: %s", m.InitScript)
	}
	return nil
}

// validateTrust requires the script to live inside the plugin directory
// under root, and the plugin directory not to be world-writable.
func validateTrust(scriptPath, pluginPath, root string) error {
	resolvedScript, err := filepath.EvalSymlinks(scriptPath)
	if err != nil {
		return fmt.Errorf("failed to resolve init script symlink: %w", err)
	}
	resolvedPluginPath, err := filepath.EvalSymlinks(pluginPath)
	if err != nil {
		return fmt.Errorf("failed to resolve plugin path symlink: %w", err)
	}
	resolvedRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return fmt.Errorf("failed to resolve plugin root symlink %s: %w", root, err)
	}

	if !strings.HasPrefix(resolvedScript, resolvedRoot+string(os.PathSeparator)) {
		return fmt.Errorf("init script %s is not under plugin root", resolvedScript)
	}
	if !strings.HasPrefix(resolvedScript, resolvedPluginPath+string(os.PathSeparator)) {
		return fmt.Errorf("init script %s is not under plugin directory %s", resolvedScript, resolvedPluginPath)
	}

	pluginInfo, err := os.Stat(resolvedPluginPath)
	if err != nil {
		return fmt.Errorf("plugin directory not found: %w", err)
	}
	if pluginInfo.Mode().Perm()&0002 != 0 {
		return fmt.Errorf("plugin directory is world-writable: %s", resolvedPluginPath)
	}
	return nil
}
