package config

// Capability categories checked before a built-in endpoint runs. The
// strings are what callers see in "not allowlisted" errors.
const (
	CategoryWindow         = "window > all"
	CategoryWindowCreate   = "window > create"
	CategoryFs             = "fs > all"
	CategoryShellExecute   = "shell > execute"
	CategoryShellOpen      = "shell > open"
	CategoryDialog         = "dialog > all"
	CategoryHTTP           = "http > all"
	CategoryNotification   = "notification > all"
	CategoryGlobalShortcut = "globalShortcut > all"
	CategoryCli            = "cli > all"
	CategoryProcess        = "process > all"
)

// Allowlist enables groups of built-in endpoints.
type Allowlist struct {
	All            bool            `yaml:"all" json:"all" toml:"all"`
	Window         WindowAllowlist `yaml:"window" json:"window" toml:"window"`
	Fs             FsAllowlist     `yaml:"fs" json:"fs" toml:"fs"`
	Shell          ShellAllowlist  `yaml:"shell" json:"shell" toml:"shell"`
	Dialog         bool            `yaml:"dialog" json:"dialog" toml:"dialog"`
	HTTP           bool            `yaml:"http" json:"http" toml:"http"`
	Notification   bool            `yaml:"notification" json:"notification" toml:"notification"`
	GlobalShortcut bool            `yaml:"global_shortcut" json:"globalShortcut" toml:"global_shortcut"`
	Cli            bool            `yaml:"cli" json:"cli" toml:"cli"`
	Process        bool            `yaml:"process" json:"process" toml:"process"`
}

type WindowAllowlist struct {
	All    bool `yaml:"all" json:"all" toml:"all"`
	Create bool `yaml:"create" json:"create" toml:"create"`
}

type FsAllowlist struct {
	All bool `yaml:"all" json:"all" toml:"all"`
	// Scope limits filesystem access to these directories. Empty means no
	// restriction.
	Scope []string `yaml:"scope,omitempty" json:"scope,omitempty" toml:"scope,omitempty"`
}

type ShellAllowlist struct {
	All     bool `yaml:"all" json:"all" toml:"all"`
	Execute bool `yaml:"execute" json:"execute" toml:"execute"`
	Open    bool `yaml:"open" json:"open" toml:"open"`
}

// AllowAll returns an allowlist with every category enabled.
func AllowAll() Allowlist {
	return Allowlist{All: true}
}

// Allowed reports whether category is enabled.
func (a Allowlist) Allowed(category string) bool {
	if a.All {
		return true
	}
	switch category {
	case CategoryWindow:
		return a.Window.All
	case CategoryWindowCreate:
		return a.Window.All && a.Window.Create
	case CategoryFs:
		return a.Fs.All
	case CategoryShellExecute:
		return a.Shell.All || a.Shell.Execute
	case CategoryShellOpen:
		return a.Shell.All || a.Shell.Open
	case CategoryDialog:
		return a.Dialog
	case CategoryHTTP:
		return a.HTTP
	case CategoryNotification:
		return a.Notification
	case CategoryGlobalShortcut:
		return a.GlobalShortcut
	case CategoryCli:
		return a.Cli
	case CategoryProcess:
		return a.Process
	}
	return false
}
