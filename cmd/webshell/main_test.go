package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/webshell/internal/config"
	"github.com/mattjoyce/webshell/internal/endpoints"
	"github.com/mattjoyce/webshell/internal/metrics"
)

func TestRunVersionJSON(t *testing.T) {
	var out bytes.Buffer
	require.Equal(t, 0, runVersion([]string{"--json"}, &out))

	var info versionInfo
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.Equal(t, version, info.Version)
	assert.Equal(t, apiVersion, info.APIVersion)
	assert.NotEmpty(t, info.Commit)
}

func TestRunVersionRejectsArgs(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 1, runVersion([]string{"extra"}, &out))
	assert.Empty(t, out.String())
}

func TestNormalizeBuildTimeUTC(t *testing.T) {
	got, ok := normalizeBuildTimeUTC("2024-03-01T10:00:00+02:00")
	require.True(t, ok)
	assert.Equal(t, "2024-03-01T08:00:00Z", got)

	_, ok = normalizeBuildTimeUTC("unknown")
	assert.False(t, ok)
	_, ok = normalizeBuildTimeUTC("yesterday")
	assert.False(t, ok)
}

func TestShortenCommit(t *testing.T) {
	assert.Equal(t, "abc", shortenCommit("abc"))
	assert.Equal(t, "0123456789ab", shortenCommit("0123456789abcdef"))
}

func TestParseRunFlags(t *testing.T) {
	opts, err := parseRunFlags([]string{"--config", "app.yaml", "--backend", "headless", "--no-open", "--", "--theme", "dark"})
	require.NoError(t, err)
	assert.Equal(t, "app.yaml", opts.configPath)
	assert.Equal(t, "headless", opts.backend)
	assert.True(t, opts.noOpen)
	assert.Equal(t, []string{"--theme", "dark"}, opts.appArgs)

	_, err = parseRunFlags(nil)
	require.Error(t, err)
}

func TestLoadRunConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
package:
  product_name: demo
  version: 2.0.0
tauri:
  windows:
    - label: main
      url: index.html
  bundle:
    identifier: com.example.demo
`), 0o644))

	cfg, err := loadRunConfig(runOptions{configPath: path, distDir: "web", backend: "headless"})
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Package.ProductName)
	assert.Equal(t, "headless", cfg.Runtime.Backend)
	assert.True(t, filepath.IsAbs(cfg.Build.DistDir))
	assert.Equal(t, "web", filepath.Base(cfg.Build.DistDir))
}

func TestBackendFactory(t *testing.T) {
	cfg := config.Defaults()

	cfg.Runtime.Backend = "headless"
	f, err := backendFactory(cfg, metrics.New(), false)
	require.NoError(t, err)
	rt, err := f()
	require.NoError(t, err)
	assert.NotNil(t, rt)
	assert.IsType(t, endpoints.StaticDialogs{}, dialogsFor(cfg))

	cfg.Runtime.Backend = "browser"
	_, err = backendFactory(cfg, metrics.New(), false)
	require.NoError(t, err)
	assert.IsType(t, endpoints.UnavailableDialogs{}, dialogsFor(cfg))

	cfg.Runtime.Backend = "gtk"
	_, err = backendFactory(cfg, metrics.New(), false)
	require.Error(t, err)
}

func TestRunCLIUnknownCommand(t *testing.T) {
	assert.Equal(t, 1, runCLI([]string{"frobnicate"}))
	assert.Equal(t, 1, runCLI(nil))
}

func TestRunCheck(t *testing.T) {
	dir := t.TempDir()
	dist := filepath.Join(dir, "dist")
	require.NoError(t, os.MkdirAll(dist, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dist, "index.html"), []byte("<html></html>"), 0o644))
	path := filepath.Join(dir, "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tauri:
  windows:
    - label: main
      url: index.html
    - label: docs
      url: docs.html
`), 0o644))

	var out bytes.Buffer
	assert.Equal(t, 1, runCheck([]string{"--config", path, "--dist", dist, "--json"}, &out))

	var report struct {
		Valid  bool `json:"valid"`
		Errors []struct {
			Field string `json:"field"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.False(t, report.Valid)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "tauri.windows[1].url", report.Errors[0].Field)

	require.NoError(t, os.WriteFile(filepath.Join(dist, "docs.html"), []byte("<html></html>"), 0o644))
	out.Reset()
	assert.Equal(t, 0, runCheck([]string{"--config", path, "--dist", dist}, &out))
	assert.Contains(t, out.String(), "Configuration OK")
}
