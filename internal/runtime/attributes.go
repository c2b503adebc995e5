package runtime

import "github.com/mattjoyce/webshell/internal/config"

// WindowAttributes describes a native window. Setters return a modified
// copy so attributes can be built in a chain.
type WindowAttributes struct {
	Title       string
	Position    *LogicalPosition
	Size        LogicalSize
	MinSize     *LogicalSize
	MaxSize     *LogicalSize
	Resizable   bool
	Fullscreen  bool
	Focus       bool
	Maximized   bool
	Visible     bool
	Decorations bool
	AlwaysOnTop bool
	Transparent bool
	Icon        *Icon
}

// NewWindowAttributes returns the attributes of a plain 800x600 window.
func NewWindowAttributes() WindowAttributes {
	return WindowAttributes{
		Size:        LogicalSize{Width: 800, Height: 600},
		Resizable:   true,
		Visible:     true,
		Decorations: true,
	}
}

// WindowAttributesFromConfig maps a declared window onto attributes.
func WindowAttributesFromConfig(cfg config.WindowConfig) WindowAttributes {
	a := NewWindowAttributes().
		WithTitle(cfg.Title).
		WithInnerSize(cfg.Width, cfg.Height).
		WithResizable(cfg.IsResizable()).
		WithFullscreen(cfg.Fullscreen).
		WithFocus(cfg.Focus).
		WithMaximized(cfg.Maximized).
		WithVisible(cfg.IsVisible()).
		WithDecorations(cfg.HasDecorations()).
		WithAlwaysOnTop(cfg.AlwaysOnTop).
		WithTransparent(cfg.Transparent)
	if cfg.X != nil && cfg.Y != nil {
		a = a.WithPosition(*cfg.X, *cfg.Y)
	}
	if cfg.MinWidth != nil && cfg.MinHeight != nil {
		a = a.WithMinInnerSize(*cfg.MinWidth, *cfg.MinHeight)
	}
	if cfg.MaxWidth != nil && cfg.MaxHeight != nil {
		a = a.WithMaxInnerSize(*cfg.MaxWidth, *cfg.MaxHeight)
	}
	return a
}

func (a WindowAttributes) WithTitle(title string) WindowAttributes {
	a.Title = title
	return a
}

func (a WindowAttributes) WithPosition(x, y float64) WindowAttributes {
	a.Position = &LogicalPosition{X: x, Y: y}
	return a
}

func (a WindowAttributes) WithInnerSize(width, height float64) WindowAttributes {
	a.Size = LogicalSize{Width: width, Height: height}
	return a
}

func (a WindowAttributes) WithMinInnerSize(width, height float64) WindowAttributes {
	a.MinSize = &LogicalSize{Width: width, Height: height}
	return a
}

func (a WindowAttributes) WithMaxInnerSize(width, height float64) WindowAttributes {
	a.MaxSize = &LogicalSize{Width: width, Height: height}
	return a
}

func (a WindowAttributes) WithResizable(resizable bool) WindowAttributes {
	a.Resizable = resizable
	return a
}

func (a WindowAttributes) WithFullscreen(fullscreen bool) WindowAttributes {
	a.Fullscreen = fullscreen
	return a
}

func (a WindowAttributes) WithFocus(focus bool) WindowAttributes {
	a.Focus = focus
	return a
}

func (a WindowAttributes) WithMaximized(maximized bool) WindowAttributes {
	a.Maximized = maximized
	return a
}

func (a WindowAttributes) WithVisible(visible bool) WindowAttributes {
	a.Visible = visible
	return a
}

func (a WindowAttributes) WithDecorations(decorations bool) WindowAttributes {
	a.Decorations = decorations
	return a
}

func (a WindowAttributes) WithAlwaysOnTop(alwaysOnTop bool) WindowAttributes {
	a.AlwaysOnTop = alwaysOnTop
	return a
}

func (a WindowAttributes) WithTransparent(transparent bool) WindowAttributes {
	a.Transparent = transparent
	return a
}

func (a WindowAttributes) WithIcon(icon Icon) WindowAttributes {
	a.Icon = &icon
	return a
}
