package runtime

import (
	"github.com/mattjoyce/webshell/internal/config"
	"github.com/mattjoyce/webshell/internal/tag"
)

// DefaultURL is where a pending window points until the manager resolves
// its real content.
const DefaultURL = "tauri://localhost"

// RPCHandler receives raw invoke messages posted by a window's script.
type RPCHandler func(window DetachedWindow, message []byte)

// FileDropHandler receives file drop events. Returning true tells the
// backend the event was handled.
type FileDropHandler func(event FileDropEvent, window DetachedWindow) bool

// URISchemeHandler serves a custom URI scheme. It receives the full
// request URI, e.g. example://localhost/asset.css.
type URISchemeHandler func(uri string) ([]byte, error)

// WebviewAttributes configures the webview inside a window.
type WebviewAttributes struct {
	URL                   config.WindowURL
	InitializationScripts []string
	CustomProtocols       map[string]URISchemeHandler
	FileDropEnabled       bool
}

// NewWebviewAttributes returns attributes for url with file drop enabled.
func NewWebviewAttributes(url config.WindowURL) WebviewAttributes {
	return WebviewAttributes{
		URL:             url,
		CustomProtocols: make(map[string]URISchemeHandler),
		FileDropEnabled: true,
	}
}

// InitializationScript appends a script run before any page script.
func (w WebviewAttributes) InitializationScript(script string) WebviewAttributes {
	w.InitializationScripts = append(append([]string(nil), w.InitializationScripts...), script)
	return w
}

// RegisterURIScheme binds a custom protocol for this window only.
func (w WebviewAttributes) RegisterURIScheme(scheme string, handler URISchemeHandler) WebviewAttributes {
	protocols := make(map[string]URISchemeHandler, len(w.CustomProtocols)+1)
	for k, v := range w.CustomProtocols {
		protocols[k] = v
	}
	protocols[scheme] = handler
	w.CustomProtocols = protocols
	return w
}

// HasURIScheme reports whether scheme is already bound.
func (w WebviewAttributes) HasURIScheme(scheme string) bool {
	_, ok := w.CustomProtocols[scheme]
	return ok
}

// PendingWindow is a window that has not been created yet. The runtime
// consumes it exactly once.
type PendingWindow struct {
	Label             tag.Label
	WindowAttributes  WindowAttributes
	WebviewAttributes WebviewAttributes
	RPCHandler        RPCHandler
	FileDropHandler   FileDropHandler
	// URL is the resolved location the webview navigates to.
	URL string
}

// NewPendingWindow creates a pending window pointing at DefaultURL.
func NewPendingWindow(attrs WindowAttributes, webview WebviewAttributes, label tag.Label) PendingWindow {
	return PendingWindow{
		Label:             label,
		WindowAttributes:  attrs,
		WebviewAttributes: webview,
		URL:               DefaultURL,
	}
}

// PendingWindowFromConfig creates a pending window from a declared window.
func PendingWindowFromConfig(cfg config.WindowConfig, webview WebviewAttributes, label tag.Label) PendingWindow {
	webview.FileDropEnabled = cfg.IsFileDropEnabled()
	return NewPendingWindow(WindowAttributesFromConfig(cfg), webview, label)
}

// DetachedWindow is a live window not yet registered with a manager.
// Identity is the label alone.
type DetachedWindow struct {
	Label      tag.Label
	Dispatcher Dispatch
}

// Equal compares by label only.
func (w DetachedWindow) Equal(other DetachedWindow) bool {
	return w.Label == other.Label
}

// Key is the map key for w.
func (w DetachedWindow) Key() tag.Label { return w.Label }
