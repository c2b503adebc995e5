package endpoints

import (
	"context"
	"encoding/json"

	"github.com/mattjoyce/webshell/internal/config"
)

func (e *Endpoints) app(_ context.Context, host Host, _ Caller, msg json.RawMessage) (any, error) {
	cmd, err := decodeCommand(ModuleApp, msg)
	if err != nil {
		return nil, err
	}
	switch cmd {
	case "getAppVersion":
		return host.PackageInfo().Version, nil
	case "getAppName":
		return host.PackageInfo().Name, nil
	case "getTauriVersion":
		return e.deps.Version, nil
	}
	return nil, unknownCommand(ModuleApp, cmd)
}

func (e *Endpoints) process(_ context.Context, host Host, caller Caller, msg json.RawMessage) (any, error) {
	cmd, err := decodeCommand(ModuleProcess, msg)
	if err != nil {
		return nil, err
	}
	switch cmd {
	case "exit":
		var args struct {
			ExitCode int `json:"exitCode"`
		}
		if err := decode(ModuleProcess, cmd, msg, &args); err != nil {
			return nil, err
		}
		if err := allowed(host, config.CategoryProcess); err != nil {
			return nil, err
		}
		e.logger.Info("exit requested", "window", caller.Label, "code", args.ExitCode)
		e.deps.Exit(args.ExitCode)
		return nil, nil
	case "relaunch":
		if err := allowed(host, config.CategoryProcess); err != nil {
			return nil, err
		}
		e.logger.Info("relaunch requested", "window", caller.Label)
		return nil, e.deps.Relaunch()
	}
	return nil, unknownCommand(ModuleProcess, cmd)
}

// internal closes the salt loop: the bridge asks whether the salt that
// accompanied an emitted event was issued by this process.
func (e *Endpoints) internal(_ context.Context, host Host, _ Caller, msg json.RawMessage) (any, error) {
	cmd, err := decodeCommand(ModuleInternal, msg)
	if err != nil {
		return nil, err
	}
	switch cmd {
	case "validateSalt":
		var args struct {
			Salt string `json:"salt"`
		}
		if err := decode(ModuleInternal, cmd, msg, &args); err != nil {
			return nil, err
		}
		return host.VerifySalt(args.Salt), nil
	}
	return nil, unknownCommand(ModuleInternal, cmd)
}
