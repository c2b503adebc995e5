package config

// Config represents the complete webshell configuration.
type Config struct {
	Package PackageConfig  `yaml:"package" json:"package" toml:"package"`
	Build   BuildConfig    `yaml:"build" json:"build" toml:"build"`
	Tauri   TauriConfig    `yaml:"tauri" json:"tauri" toml:"tauri"`
	Runtime RuntimeConfig  `yaml:"runtime" json:"runtime" toml:"runtime"`
	Plugins map[string]any `yaml:"plugins,omitempty" json:"plugins,omitempty" toml:"plugins,omitempty"`

	// SourceHash is the BLAKE3 fingerprint of the file Load read, empty for
	// configs built in code.
	SourceHash string `yaml:"-" json:"-" toml:"-"`
}

// PackageConfig names the application.
type PackageConfig struct {
	ProductName string `yaml:"product_name" json:"productName" toml:"product_name"`
	Version     string `yaml:"version" json:"version" toml:"version"`
}

// BuildConfig locates the front-end content.
type BuildConfig struct {
	// DistDir holds the built assets served for app:// window URLs.
	DistDir string `yaml:"dist_dir" json:"distDir" toml:"dist_dir"`
	// DevPath is a dev server URL. When set, window URLs are not resolved
	// against DistDir.
	DevPath         string `yaml:"dev_path" json:"devPath" toml:"dev_path"`
	WithGlobalTauri bool   `yaml:"with_global_tauri" json:"withGlobalTauri" toml:"with_global_tauri"`
}

// TauriConfig describes windows and the capabilities exposed to them.
type TauriConfig struct {
	Windows   []WindowConfig `yaml:"windows" json:"windows" toml:"windows"`
	Allowlist Allowlist      `yaml:"allowlist" json:"allowlist" toml:"allowlist"`
	Security  SecurityConfig `yaml:"security" json:"security" toml:"security"`
	Cli       *CliConfig     `yaml:"cli,omitempty" json:"cli,omitempty" toml:"cli,omitempty"`
	Bundle    BundleConfig   `yaml:"bundle" json:"bundle" toml:"bundle"`
}

// WindowURL is either an external URL (http, https) or a path relative to
// the dist dir.
type WindowURL string

// External reports whether u is loaded as-is instead of from local assets.
func (u WindowURL) External() bool {
	s := string(u)
	for _, p := range []string{"http://", "https://"} {
		if len(s) >= len(p) && s[:len(p)] == p {
			return true
		}
	}
	return false
}

// WindowConfig declares a window created at startup or from script.
type WindowConfig struct {
	Label           string    `yaml:"label" json:"label" toml:"label"`
	URL             WindowURL `yaml:"url" json:"url" toml:"url"`
	Title           string    `yaml:"title" json:"title" toml:"title"`
	X               *float64  `yaml:"x,omitempty" json:"x,omitempty" toml:"x,omitempty"`
	Y               *float64  `yaml:"y,omitempty" json:"y,omitempty" toml:"y,omitempty"`
	Width           float64   `yaml:"width" json:"width" toml:"width"`
	Height          float64   `yaml:"height" json:"height" toml:"height"`
	MinWidth        *float64  `yaml:"min_width,omitempty" json:"minWidth,omitempty" toml:"min_width,omitempty"`
	MinHeight       *float64  `yaml:"min_height,omitempty" json:"minHeight,omitempty" toml:"min_height,omitempty"`
	MaxWidth        *float64  `yaml:"max_width,omitempty" json:"maxWidth,omitempty" toml:"max_width,omitempty"`
	MaxHeight       *float64  `yaml:"max_height,omitempty" json:"maxHeight,omitempty" toml:"max_height,omitempty"`
	Resizable       *bool     `yaml:"resizable,omitempty" json:"resizable,omitempty" toml:"resizable,omitempty"`
	Fullscreen      bool      `yaml:"fullscreen" json:"fullscreen" toml:"fullscreen"`
	Focus           bool      `yaml:"focus" json:"focus" toml:"focus"`
	Transparent     bool      `yaml:"transparent" json:"transparent" toml:"transparent"`
	Maximized       bool      `yaml:"maximized" json:"maximized" toml:"maximized"`
	Visible         *bool     `yaml:"visible,omitempty" json:"visible,omitempty" toml:"visible,omitempty"`
	Decorations     *bool     `yaml:"decorations,omitempty" json:"decorations,omitempty" toml:"decorations,omitempty"`
	AlwaysOnTop     bool      `yaml:"always_on_top" json:"alwaysOnTop" toml:"always_on_top"`
	FileDropEnabled *bool     `yaml:"file_drop_enabled,omitempty" json:"fileDropEnabled,omitempty" toml:"file_drop_enabled,omitempty"`
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

func (w WindowConfig) IsResizable() bool       { return boolOr(w.Resizable, true) }
func (w WindowConfig) IsVisible() bool         { return boolOr(w.Visible, true) }
func (w WindowConfig) HasDecorations() bool    { return boolOr(w.Decorations, true) }
func (w WindowConfig) IsFileDropEnabled() bool { return boolOr(w.FileDropEnabled, true) }

// SecurityConfig holds content security settings.
type SecurityConfig struct {
	// CSP is injected into every locally served HTML document.
	CSP string `yaml:"csp" json:"csp" toml:"csp"`
}

// CliConfig describes the arguments the application accepts.
type CliConfig struct {
	Description string   `yaml:"description" json:"description" toml:"description"`
	Args        []CliArg `yaml:"args" json:"args" toml:"args"`
}

// CliArg is a single command line argument definition.
type CliArg struct {
	Name        string `yaml:"name" json:"name" toml:"name"`
	Short       string `yaml:"short,omitempty" json:"short,omitempty" toml:"short,omitempty"`
	Description string `yaml:"description" json:"description" toml:"description"`
	TakesValue  bool   `yaml:"takes_value" json:"takesValue" toml:"takes_value"`
	Multiple    bool   `yaml:"multiple" json:"multiple" toml:"multiple"`
}

// BundleConfig carries packaging metadata used at runtime.
type BundleConfig struct {
	// Identifier keys per-application settings such as notification
	// permission.
	Identifier string `yaml:"identifier" json:"identifier" toml:"identifier"`
}

// RuntimeConfig defines how the shell process runs.
type RuntimeConfig struct {
	// Backend selects the window backend: browser or headless.
	Backend          string `yaml:"backend" json:"backend" toml:"backend"`
	Listen           string `yaml:"listen" json:"listen" toml:"listen"`
	Workers          int    `yaml:"workers" json:"workers" toml:"workers"`
	EmitFunctionName string `yaml:"emit_function_name" json:"emitFunctionName" toml:"emit_function_name"`
	LogLevel         string `yaml:"log_level" json:"logLevel" toml:"log_level"`
	LogFormat        string `yaml:"log_format" json:"logFormat" toml:"log_format"`
	DataDir          string `yaml:"data_dir" json:"dataDir" toml:"data_dir"`
	Dev              bool   `yaml:"dev" json:"dev" toml:"dev"`
}

// PackageInfo is the name and version reported to scripts.
type PackageInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// PackageInfo derives the application identity from the package section.
func (c *Config) PackageInfo() PackageInfo {
	return PackageInfo{Name: c.Package.ProductName, Version: c.Package.Version}
}

// Defaults returns a Config with one main window and every capability off.
func Defaults() *Config {
	return &Config{
		Package: PackageConfig{
			ProductName: "webshell",
			Version:     "0.1.0",
		},
		Build: BuildConfig{
			DistDir: "./dist",
		},
		Tauri: TauriConfig{
			Windows: []WindowConfig{{
				Label:  "main",
				URL:    "index.html",
				Title:  "webshell",
				Width:  800,
				Height: 600,
			}},
			Bundle: BundleConfig{Identifier: "com.webshell.app"},
		},
		Runtime: RuntimeConfig{
			Backend:          "browser",
			Listen:           "127.0.0.1:4680",
			Workers:          8,
			EmitFunctionName: "__TAURI_EMIT__",
			LogLevel:         "info",
			LogFormat:        "json",
			DataDir:          "./data",
		},
		Plugins: make(map[string]any),
	}
}
