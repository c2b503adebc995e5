package endpoints

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mattjoyce/webshell/internal/config"
)

// Permission answers for Notification.requestNotificationPermission.
const (
	PermissionGranted = "granted"
	PermissionDenied  = "denied"
)

// notificationSetting is the app settings key for the user's choice.
const notificationSetting = "allow_notification"

// Notification is what a window asked to show.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

// Notifier displays notifications.
type Notifier interface {
	Notify(ctx context.Context, caller Caller, identifier string, n Notification) error
}

// ScriptNotifier shows the notification through the calling window's own
// Notification API.
type ScriptNotifier struct{}

func (ScriptNotifier) Notify(_ context.Context, caller Caller, _ string, n Notification) error {
	opts, err := json.Marshal(map[string]string{"body": n.Body, "icon": n.Icon})
	if err != nil {
		return err
	}
	title, err := json.Marshal(n.Title)
	if err != nil {
		return err
	}
	return caller.Dispatcher.EvalScript(fmt.Sprintf(`(function () {
  if (!("Notification" in window)) { return; }
  var show = function () { new Notification(%[1]s, %[2]s); };
  if (Notification.permission === "granted") { show(); return; }
  Notification.requestPermission().then(function (p) { if (p === "granted") { show(); } });
})()`, title, opts))
}

func (e *Endpoints) notification(ctx context.Context, host Host, caller Caller, msg json.RawMessage) (any, error) {
	cmd, err := decodeCommand(ModuleNotification, msg)
	if err != nil {
		return nil, err
	}
	enabled := allowed(host, config.CategoryNotification) == nil
	identifier := host.Config().Tauri.Bundle.Identifier

	switch cmd {
	case "notification":
		if err := allowed(host, config.CategoryNotification); err != nil {
			return nil, err
		}
		var args struct {
			Options Notification `json:"options"`
		}
		if err := decode(ModuleNotification, cmd, msg, &args); err != nil {
			return nil, err
		}
		if args.Options.Title == "" {
			return nil, fmt.Errorf("%w: Notification.notification: missing title", ErrInvalidMessage)
		}
		return nil, e.deps.Notifier.Notify(ctx, caller, identifier, args.Options)
	case "isNotificationPermissionGranted":
		if !enabled {
			return false, nil
		}
		if e.deps.Settings == nil {
			return nil, nil
		}
		v, ok, err := e.deps.Settings.Bool(ctx, identifier, notificationSetting)
		if err != nil || !ok {
			return nil, err
		}
		return v, nil
	case "requestNotificationPermission":
		if !enabled {
			return PermissionDenied, nil
		}
		return e.requestPermission(ctx, host, identifier)
	}
	return nil, unknownCommand(ModuleNotification, cmd)
}

// requestPermission returns the stored answer or asks the user and
// stores theirs.
func (e *Endpoints) requestPermission(ctx context.Context, host Host, identifier string) (string, error) {
	if e.deps.Settings != nil {
		v, ok, err := e.deps.Settings.Bool(ctx, identifier, notificationSetting)
		if err != nil {
			return "", err
		}
		if ok {
			return permission(v), nil
		}
	}
	answer, err := e.deps.Dialogs.Ask(ctx, "Permissions", fmt.Sprintf("%s wants to show notifications. Do you allow?", host.PackageInfo().Name))
	if err != nil {
		return "", err
	}
	if e.deps.Settings != nil {
		if err := e.deps.Settings.SetBool(ctx, identifier, notificationSetting, answer); err != nil {
			return "", err
		}
	}
	return permission(answer), nil
}

func permission(granted bool) string {
	if granted {
		return PermissionGranted
	}
	return PermissionDenied
}
