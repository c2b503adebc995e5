package endpoints

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/mattjoyce/webshell/internal/config"
)

// ArgMatch is the value and occurrence count of one argument.
type ArgMatch struct {
	Value       any `json:"value"`
	Occurrences int `json:"occurrences"`
}

// Matches is the result of Cli.cliMatches.
type Matches struct {
	Args map[string]ArgMatch `json:"args"`
	// Positional holds arguments left after flags.
	Positional []string `json:"positional"`
}

func (e *Endpoints) cli(_ context.Context, host Host, _ Caller, msg json.RawMessage) (any, error) {
	cmd, err := decodeCommand(ModuleCli, msg)
	if err != nil {
		return nil, err
	}
	if err := allowed(host, config.CategoryCli); err != nil {
		return nil, err
	}
	switch cmd {
	case "cliMatches":
		cfg := host.Config().Tauri.Cli
		if cfg == nil {
			return nil, errors.New("cli is not configured")
		}
		return MatchArgs(cfg, e.deps.Args)
	}
	return nil, unknownCommand(ModuleCli, cmd)
}

// MatchArgs parses args against the declared arguments. Arguments that
// take no value report a boolean and how often they appeared.
func MatchArgs(cfg *config.CliConfig, args []string) (Matches, error) {
	fs := pflag.NewFlagSet("app", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	type binding struct {
		name   string
		single *string
		multi  *[]string
		count  *int
	}
	bindings := make([]binding, 0, len(cfg.Args))
	for _, a := range cfg.Args {
		b := binding{name: a.Name}
		switch {
		case a.TakesValue && a.Multiple:
			b.multi = fs.StringArrayP(a.Name, a.Short, nil, a.Description)
		case a.TakesValue:
			b.single = fs.StringP(a.Name, a.Short, "", a.Description)
		default:
			b.count = fs.CountP(a.Name, a.Short, a.Description)
		}
		bindings = append(bindings, b)
	}

	if err := fs.Parse(args); err != nil {
		return Matches{}, fmt.Errorf("parse arguments: %w", err)
	}

	out := Matches{Args: make(map[string]ArgMatch, len(bindings)), Positional: fs.Args()}
	if out.Positional == nil {
		out.Positional = []string{}
	}
	for _, b := range bindings {
		switch {
		case b.multi != nil:
			out.Args[b.name] = ArgMatch{Value: *b.multi, Occurrences: len(*b.multi)}
		case b.single != nil:
			m := ArgMatch{}
			if fs.Changed(b.name) {
				m.Value, m.Occurrences = *b.single, 1
			}
			out.Args[b.name] = m
		default:
			out.Args[b.name] = ArgMatch{Value: *b.count > 0, Occurrences: *b.count}
		}
	}
	return out, nil
}
