package endpoints

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mattjoyce/webshell/internal/ipc"
	"github.com/mattjoyce/webshell/internal/tag"
)

type listenArgs struct {
	Event   tag.Event      `json:"event"`
	Handler ipc.CallbackID `json:"handler"`
}

type unlistenArgs struct {
	Event   tag.Event `json:"event"`
	EventID uint32    `json:"eventId"`
}

type emitArgs struct {
	Event       tag.Event `json:"event"`
	WindowLabel tag.Label `json:"windowLabel,omitempty"`
	Payload     *string   `json:"payload,omitempty"`
}

func (e *Endpoints) event(_ context.Context, host Host, caller Caller, msg json.RawMessage) (any, error) {
	cmd, err := decodeCommand(ModuleEvent, msg)
	if err != nil {
		return nil, err
	}
	switch cmd {
	case "listen":
		var args listenArgs
		if err := decode(ModuleEvent, cmd, msg, &args); err != nil {
			return nil, err
		}
		if args.Event == "" || !args.Handler.Valid() {
			return nil, fmt.Errorf("%w: Event.listen needs an event and a handler", ErrInvalidMessage)
		}
		id := e.listenerSeq.Add(1)
		if err := caller.Dispatcher.EvalScript(listenScript(args.Event, id, args.Handler)); err != nil {
			return nil, err
		}
		return id, nil
	case "unlisten":
		var args unlistenArgs
		if err := decode(ModuleEvent, cmd, msg, &args); err != nil {
			return nil, err
		}
		return nil, caller.Dispatcher.EvalScript(unlistenScript(args.Event, args.EventID))
	case "emit":
		var args emitArgs
		if err := decode(ModuleEvent, cmd, msg, &args); err != nil {
			return nil, err
		}
		if args.Event.IsReserved() {
			return nil, fmt.Errorf("event %q is reserved", args.Event)
		}
		host.Trigger(args.Event, caller.Label, args.Payload)
		if !args.WindowLabel.IsZero() {
			return nil, host.EmitTo(args.WindowLabel, args.Event, args.Payload)
		}
		return nil, host.EmitAll(args.Event, args.Payload)
	}
	return nil, unknownCommand(ModuleEvent, cmd)
}

// listenScript registers the window callback handler under event in the
// script-side listener table.
func listenScript(event tag.Event, id uint32, handler ipc.CallbackID) string {
	name, _ := json.Marshal(ipc.ListenersVar)
	return fmt.Sprintf(`(function () {
  var listeners = window[%[1]s];
  if (!listeners) { return; }
  (listeners[%[2]s] = listeners[%[2]s] || []).push({ id: %[3]d, handler: window["_%[4]s"] });
})()`, name, event.JSString(), id, handler)
}

func unlistenScript(event tag.Event, id uint32) string {
	name, _ := json.Marshal(ipc.ListenersVar)
	return fmt.Sprintf(`(function () {
  var listeners = window[%[1]s];
  if (!listeners || !listeners[%[2]s]) { return; }
  listeners[%[2]s] = listeners[%[2]s].filter(function (l) { return l.id !== %[3]d; });
})()`, name, event.JSString(), id)
}
