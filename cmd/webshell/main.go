package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/mattjoyce/webshell/internal/app"
	"github.com/mattjoyce/webshell/internal/assets"
	"github.com/mattjoyce/webshell/internal/config"
	"github.com/mattjoyce/webshell/internal/doctor"
	"github.com/mattjoyce/webshell/internal/endpoints"
	"github.com/mattjoyce/webshell/internal/lock"
	"github.com/mattjoyce/webshell/internal/log"
	"github.com/mattjoyce/webshell/internal/metrics"
	"github.com/mattjoyce/webshell/internal/plugin"
	"github.com/mattjoyce/webshell/internal/runtime"
	"github.com/mattjoyce/webshell/internal/runtime/browser"
	"github.com/mattjoyce/webshell/internal/runtime/headless"
	"github.com/mattjoyce/webshell/internal/settings"
	"github.com/mattjoyce/webshell/internal/storage"
)

var (
	version   = "0.1.0-dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// apiVersion is reported to scripts as the bridge version.
const apiVersion = "1.2.0"

func main() {
	os.Exit(runCLI(os.Args[1:]))
}

func runCLI(cliArgs []string) int {
	if len(cliArgs) < 1 {
		printUsage(os.Stderr)
		return 1
	}

	cmd := cliArgs[0]
	args := cliArgs[1:]

	switch cmd {
	case "run":
		return runApp(args)
	case "check":
		return runCheck(args, os.Stdout)
	case "version", "--version":
		return runVersion(args, os.Stdout)
	case "help", "--help", "-h":
		printUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage(os.Stderr)
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Usage: webshell <command> [flags]

Commands:
  run        Open the configured windows and serve them until interrupted
  check      Validate a configuration without opening windows
  version    Print version metadata

Run flags:
  --config <file>    Configuration file (.yaml, .toml or .json)
  --dist <dir>       Override build.dist_dir
  --backend <name>   Override runtime.backend (browser or headless)
  --plugins <dir>    Load script plugins from dir
  --no-open          Do not open windows in the system browser

Check flags:
  --config, --dist, --plugins as for run
  --json             Output the report as JSON
`)
}

type versionInfo struct {
	Version    string `json:"version"`
	APIVersion string `json:"api_version"`
	Commit     string `json:"commit"`
	BuildTime  string `json:"build_time"`
}

func runVersion(args []string, w io.Writer) int {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	jsonOut := fs.Bool("json", false, "Output version metadata as JSON")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if fs.NArg() > 0 {
		fmt.Fprintln(os.Stderr, "Usage: webshell version [--json]")
		return 1
	}

	info := currentVersionInfo()
	if *jsonOut {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render version JSON: %v\n", err)
			return 1
		}
		fmt.Fprintln(w, string(data))
		return 0
	}

	fmt.Fprintf(w, "webshell %s\n", info.Version)
	fmt.Fprintf(w, "api: %s\n", info.APIVersion)
	fmt.Fprintf(w, "commit: %s\n", info.Commit)
	fmt.Fprintf(w, "built_at: %s\n", info.BuildTime)
	return 0
}

func currentVersionInfo() versionInfo {
	info := versionInfo{
		Version:    strings.TrimSpace(version),
		APIVersion: apiVersion,
		Commit:     "unknown",
		BuildTime:  "unknown",
	}
	if info.Version == "" {
		info.Version = "0.0.0-dev"
	}

	commit := strings.TrimSpace(gitCommit)
	if commit == "" || commit == "unknown" {
		commit = strings.TrimSpace(readBuildSetting("vcs.revision"))
	}
	if commit != "" {
		info.Commit = shortenCommit(commit)
	}

	built := strings.TrimSpace(buildDate)
	if built == "" || built == "unknown" {
		built = strings.TrimSpace(readBuildSetting("vcs.time"))
	}
	if normalized, ok := normalizeBuildTimeUTC(built); ok {
		info.BuildTime = normalized
	}
	return info
}

func shortenCommit(commit string) string {
	if len(commit) <= 12 {
		return commit
	}
	return commit[:12]
}

func normalizeBuildTimeUTC(raw string) (string, bool) {
	if raw == "" || raw == "unknown" {
		return "", false
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return "", false
	}
	return t.UTC().Format(time.RFC3339), true
}

func readBuildSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == key {
			return setting.Value
		}
	}
	return ""
}

type runOptions struct {
	configPath string
	distDir    string
	backend    string
	pluginsDir string
	noOpen     bool
	appArgs    []string
}

func parseRunFlags(args []string) (runOptions, error) {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var opts runOptions
	fs.StringVar(&opts.configPath, "config", "", "Configuration file")
	fs.StringVar(&opts.distDir, "dist", "", "Override build.dist_dir")
	fs.StringVar(&opts.backend, "backend", "", "Override runtime.backend")
	fs.StringVar(&opts.pluginsDir, "plugins", "", "Script plugin directory")
	fs.BoolVar(&opts.noOpen, "no-open", false, "Do not open the system browser")
	if err := fs.Parse(args); err != nil {
		return runOptions{}, err
	}
	// Arguments after the flags belong to the application's Cli module.
	opts.appArgs = fs.Args()
	if opts.configPath == "" {
		return runOptions{}, errors.New("--config is required")
	}
	return opts, nil
}

func loadRunConfig(opts runOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.distDir != "" {
		abs, err := filepath.Abs(opts.distDir)
		if err != nil {
			return nil, fmt.Errorf("resolve --dist: %w", err)
		}
		cfg.Build.DistDir = abs
	}
	if opts.backend != "" {
		cfg.Runtime.Backend = opts.backend
	}
	return cfg, nil
}

func runApp(args []string) int {
	opts, err := parseRunFlags(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	cfg, err := loadRunConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log.Setup(cfg.Runtime.LogLevel, cfg.Runtime.LogFormat)
	logger := log.WithComponent("main")
	logger.Info("webshell starting", "version", version, "config", opts.configPath, "config_hash", cfg.SourceHash, "backend", cfg.Runtime.Backend)

	pidLockPath := lock.PathFor(cfg.Runtime.DataDir, cfg.Tauri.Bundle.Identifier)
	pidLock, err := lock.AcquirePIDLock(pidLockPath)
	if err != nil {
		logger.Error("failed to acquire PID lock", "path", pidLockPath, "error", err)
		return 1
	}
	defer pidLock.Release()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dbPath := filepath.Join(cfg.Runtime.DataDir, "settings.db")
	db, err := storage.OpenSQLite(ctx, dbPath)
	if err != nil {
		logger.Error("failed to open settings database", "path", dbPath, "error", err)
		return 1
	}
	defer db.Close()

	m := metrics.New()
	factory, err := backendFactory(cfg, m, !opts.noOpen)
	if err != nil {
		logger.Error("invalid backend", "error", err)
		return 1
	}

	builder := app.NewBuilder(factory).
		Metrics(m).
		Endpoints(endpoints.Deps{
			Settings: settings.NewStore(db),
			Dialogs:  dialogsFor(cfg),
			Args:     opts.appArgs,
			Version:  apiVersion,
			Exit: func(code int) {
				logger.Info("exit requested by window", "code", code)
				cancel()
			},
		})

	if opts.pluginsDir != "" {
		found, err := plugin.Discover(opts.pluginsDir, pluginLogger(log.WithComponent("plugins")))
		if err != nil {
			logger.Error("plugin discovery failed", "plugins_dir", opts.pluginsDir, "error", err)
			return 1
		}
		for _, p := range found {
			builder.Plugin(p)
		}
		logger.Info("plugin discovery complete", "count", len(found))
	}

	var dist assets.Assets
	if cfg.Build.DistDir != "" {
		dist = assets.Dir(cfg.Build.DistDir)
	}
	a, err := builder.Build(app.Context{Config: cfg, Assets: dist})
	if err != nil {
		logger.Error("failed to build application", "error", err)
		return 1
	}

	if cfg.Runtime.Dev && cfg.Build.DistDir != "" && cfg.Build.DevPath == "" {
		go watchDist(ctx, a, cfg.Build.DistDir)
	}

	if err := a.Run(ctx); err != nil {
		logger.Error("runtime stopped with error", "error", err)
		return 1
	}
	logger.Info("webshell stopped")
	return 0
}

func backendFactory(cfg *config.Config, m *metrics.Metrics, openBrowser bool) (runtime.Factory, error) {
	switch cfg.Runtime.Backend {
	case "", "browser":
		var origins []string
		if dev := config.WindowURL(cfg.Build.DevPath); dev.External() {
			origins = append(origins, strings.TrimSuffix(cfg.Build.DevPath, "/"))
		}
		return browser.Factory(browser.Config{
			Listen:      cfg.Runtime.Listen,
			DevOrigins:  origins,
			Metrics:     m,
			OpenBrowser: openBrowser,
			Logger:      log.WithComponent("browser"),
		}), nil
	case "headless":
		return headless.Factory(headless.WithLogger(log.WithComponent("headless"))), nil
	}
	return nil, fmt.Errorf("unknown backend %q (want browser or headless)", cfg.Runtime.Backend)
}

// dialogsFor answers dialogs without a user when nothing can show them.
func dialogsFor(cfg *config.Config) endpoints.Dialogs {
	if cfg.Runtime.Backend == "headless" {
		return endpoints.StaticDialogs{Logger: log.WithComponent("dialogs")}
	}
	return endpoints.UnavailableDialogs{}
}

func pluginLogger(logger *slog.Logger) func(level, msg string, args ...any) {
	return func(level, msg string, args ...any) {
		switch level {
		case "debug":
			logger.Debug(msg, args...)
		case "warn":
			logger.Warn(msg, args...)
		case "error":
			logger.Error(msg, args...)
		default:
			logger.Info(msg, args...)
		}
	}
}

// watchDist reloads every window when the dist dir changes.
func watchDist(ctx context.Context, a *app.App, dir string) {
	logger := log.WithComponent("watch")
	err := assets.Watch(ctx, dir, 200*time.Millisecond, logger, func(changed []string) {
		logger.Info("assets changed, reloading windows", "files", len(changed))
		for _, w := range a.Windows() {
			if err := w.Eval("window.location.reload()"); err != nil {
				logger.Warn("reload failed", "window", w.Label(), "error", err)
			}
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("asset watcher stopped", "dir", dir, "error", err)
	}
}

func runCheck(args []string, w io.Writer) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var opts runOptions
	fs.StringVar(&opts.configPath, "config", "", "Configuration file")
	fs.StringVar(&opts.distDir, "dist", "", "Override build.dist_dir")
	fs.StringVar(&opts.pluginsDir, "plugins", "", "Script plugin directory")
	jsonOut := fs.Bool("json", false, "Output the report as JSON")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if opts.configPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: webshell check --config <file> [--dist <dir>] [--plugins <dir>] [--json]")
		return 1
	}
	cfg, err := loadRunConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	var dist assets.Assets
	if info, err := os.Stat(cfg.Build.DistDir); err == nil && info.IsDir() {
		dist = assets.Dir(cfg.Build.DistDir)
	}
	var found []*plugin.ScriptPlugin
	if opts.pluginsDir != "" {
		found, err = plugin.Discover(opts.pluginsDir, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Plugin discovery failed: %v\n", err)
			return 1
		}
	}

	result := doctor.New(cfg, dist, found).Validate()
	if *jsonOut {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render report: %v\n", err)
			return 1
		}
		fmt.Fprintln(w, string(data))
	} else {
		for _, e := range result.Errors {
			fmt.Fprintf(w, "ERROR   [%s] %s: %s\n", e.Category, e.Field, e.Message)
		}
		for _, warn := range result.Warnings {
			fmt.Fprintf(w, "WARNING [%s] %s: %s\n", warn.Category, warn.Field, warn.Message)
		}
		if result.Valid {
			fmt.Fprintf(w, "Configuration OK (%d warnings)\n", len(result.Warnings))
		}
	}
	if !result.Valid {
		return 1
	}
	return 0
}
