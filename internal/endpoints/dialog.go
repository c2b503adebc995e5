package endpoints

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/mattjoyce/webshell/internal/config"
	"github.com/mattjoyce/webshell/internal/log"
)

// ErrNoDialogs is returned by UnavailableDialogs.
var ErrNoDialogs = errors.New("dialogs are not available")

// DialogFilter restricts selectable files by extension.
type DialogFilter struct {
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
}

// OpenDialogOptions configures a file open dialog.
type OpenDialogOptions struct {
	Filters     []DialogFilter `json:"filters,omitempty"`
	Multiple    bool           `json:"multiple"`
	Directory   bool           `json:"directory"`
	DefaultPath string         `json:"defaultPath,omitempty"`
}

// SaveDialogOptions configures a file save dialog.
type SaveDialogOptions struct {
	Filters     []DialogFilter `json:"filters,omitempty"`
	DefaultPath string         `json:"defaultPath,omitempty"`
}

// Dialogs shows native dialogs.
type Dialogs interface {
	// Open returns the chosen paths, empty when cancelled.
	Open(ctx context.Context, opts OpenDialogOptions) ([]string, error)
	// Save returns the chosen path, empty when cancelled.
	Save(ctx context.Context, opts SaveDialogOptions) (string, error)
	Message(ctx context.Context, title, message string) error
	Ask(ctx context.Context, title, message string) (bool, error)
}

// UnavailableDialogs fails every dialog.
type UnavailableDialogs struct{}

func (UnavailableDialogs) Open(context.Context, OpenDialogOptions) ([]string, error) {
	return nil, ErrNoDialogs
}

func (UnavailableDialogs) Save(context.Context, SaveDialogOptions) (string, error) {
	return "", ErrNoDialogs
}

func (UnavailableDialogs) Message(context.Context, string, string) error { return ErrNoDialogs }

func (UnavailableDialogs) Ask(context.Context, string, string) (bool, error) {
	return false, ErrNoDialogs
}

// StaticDialogs answers every dialog with fixed values and logs what was
// asked. It stands in for a user on backends with no native dialogs.
type StaticDialogs struct {
	Answer   bool
	Paths    []string
	SavePath string
	Logger   *slog.Logger
}

func (d StaticDialogs) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return log.WithComponent("dialogs")
}

func (d StaticDialogs) Open(_ context.Context, opts OpenDialogOptions) ([]string, error) {
	d.logger().Info("open dialog", "multiple", opts.Multiple, "directory", opts.Directory, "answer", d.Paths)
	if !opts.Multiple && len(d.Paths) > 1 {
		return d.Paths[:1], nil
	}
	return d.Paths, nil
}

func (d StaticDialogs) Save(_ context.Context, opts SaveDialogOptions) (string, error) {
	d.logger().Info("save dialog", "default_path", opts.DefaultPath, "answer", d.SavePath)
	return d.SavePath, nil
}

func (d StaticDialogs) Message(_ context.Context, title, message string) error {
	d.logger().Info("message dialog", "title", title, "message", message)
	return nil
}

func (d StaticDialogs) Ask(_ context.Context, title, message string) (bool, error) {
	d.logger().Info("ask dialog", "title", title, "message", message, "answer", d.Answer)
	return d.Answer, nil
}

type dialogArgs struct {
	Options json.RawMessage `json:"options"`
	Title   string          `json:"title"`
	Message string          `json:"message"`
}

func (e *Endpoints) dialog(ctx context.Context, host Host, _ Caller, msg json.RawMessage) (any, error) {
	cmd, err := decodeCommand(ModuleDialog, msg)
	if err != nil {
		return nil, err
	}
	if err := allowed(host, config.CategoryDialog); err != nil {
		return nil, err
	}
	var args dialogArgs
	if err := decode(ModuleDialog, cmd, msg, &args); err != nil {
		return nil, err
	}
	d := e.deps.Dialogs

	switch cmd {
	case "open":
		var opts OpenDialogOptions
		if len(args.Options) > 0 {
			if err := decode(ModuleDialog, cmd, args.Options, &opts); err != nil {
				return nil, err
			}
		}
		paths, err := d.Open(ctx, opts)
		if err != nil {
			return nil, err
		}
		if opts.Multiple {
			if paths == nil {
				paths = []string{}
			}
			return paths, nil
		}
		if len(paths) == 0 {
			return nil, nil
		}
		return paths[0], nil
	case "save":
		var opts SaveDialogOptions
		if len(args.Options) > 0 {
			if err := decode(ModuleDialog, cmd, args.Options, &opts); err != nil {
				return nil, err
			}
		}
		p, err := d.Save(ctx, opts)
		if err != nil || p == "" {
			return nil, err
		}
		return p, nil
	case "message":
		title := args.Title
		if title == "" {
			title = host.PackageInfo().Name
		}
		return nil, d.Message(ctx, title, args.Message)
	case "ask":
		return d.Ask(ctx, args.Title, args.Message)
	}
	return nil, unknownCommand(ModuleDialog, cmd)
}
