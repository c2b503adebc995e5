package endpoints

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"sort"

	shellquote "github.com/kballard/go-shellquote"

	"github.com/mattjoyce/webshell/internal/config"
)

// ExecOutput is the result of Shell.execute.
type ExecOutput struct {
	Code   int    `json:"code"`
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
}

// shellArgs accepts args either as a list or as a single command line
// split with shell quoting rules.
type shellArgs []string

func (a *shellArgs) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*a = list
		return nil
	}
	var line string
	if err := json.Unmarshal(b, &line); err != nil {
		return fmt.Errorf("args must be a string or a list of strings")
	}
	words, err := shellquote.Split(line)
	if err != nil {
		return fmt.Errorf("args: %w", err)
	}
	*a = words
	return nil
}

type executeArgs struct {
	Program string    `json:"program"`
	Args    shellArgs `json:"args"`
	Options struct {
		Cwd string            `json:"cwd"`
		Env map[string]string `json:"env"`
	} `json:"options"`
}

type openArgs struct {
	Path string `json:"path"`
}

var openSchemes = map[string]bool{"http": true, "https": true, "mailto": true, "tel": true}

func (e *Endpoints) shell(ctx context.Context, host Host, caller Caller, msg json.RawMessage) (any, error) {
	cmd, err := decodeCommand(ModuleShell, msg)
	if err != nil {
		return nil, err
	}
	switch cmd {
	case "execute":
		if err := allowed(host, config.CategoryShellExecute); err != nil {
			return nil, err
		}
		var args executeArgs
		if err := decode(ModuleShell, cmd, msg, &args); err != nil {
			return nil, err
		}
		if args.Program == "" {
			return nil, fmt.Errorf("%w: Shell.execute: missing program", ErrInvalidMessage)
		}
		e.logger.Info("executing program", "window", caller.Label, "program", args.Program, "args", shellquote.Join(args.Args...))
		return execute(ctx, args)
	case "open":
		if err := allowed(host, config.CategoryShellOpen); err != nil {
			return nil, err
		}
		var args openArgs
		if err := decode(ModuleShell, cmd, msg, &args); err != nil {
			return nil, err
		}
		u, err := url.Parse(args.Path)
		if err != nil || !openSchemes[u.Scheme] {
			return nil, fmt.Errorf("refusing to open %q: only http, https, mailto and tel URLs are allowed", args.Path)
		}
		return nil, e.deps.OpenURL(args.Path)
	}
	return nil, unknownCommand(ModuleShell, cmd)
}

func execute(ctx context.Context, args executeArgs) (ExecOutput, error) {
	c := exec.CommandContext(ctx, args.Program, args.Args...)
	c.Dir = args.Options.Cwd
	if len(args.Options.Env) > 0 {
		keys := make([]string, 0, len(args.Options.Env))
		for k := range args.Options.Env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		c.Env = os.Environ()
		for _, k := range keys {
			c.Env = append(c.Env, k+"="+args.Options.Env[k])
		}
	}
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	out := ExecOutput{Stdout: stdout.String(), Stderr: stderr.String()}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return out, nil
	case errors.As(err, &exitErr):
		out.Code = exitErr.ExitCode()
		return out, nil
	}
	return out, fmt.Errorf("execute %s: %w", args.Program, err)
}
