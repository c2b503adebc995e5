package ipc

import (
	"encoding/json"
	"fmt"
)

// FormatCallback returns a script that calls the window-side callback fn
// with arg. arg must already be JSON.
func FormatCallback(fn CallbackID, arg json.RawMessage) string {
	return fmt.Sprintf(`(function () {
  var cb = window["_%[1]s"];
  if (typeof cb === "function") {
    cb(%[2]s);
  } else {
    console.warn("[webshell] Couldn't find callback id %[1]s in window. This happens when the page is reloaded while an asynchronous operation is running.");
  }
})()`, fn, arg)
}

// FormatCallbackResult marshals v and formats a call to fn. When v cannot
// be marshalled the error callback receives the marshal error instead.
func FormatCallbackResult(v any, success bool, callback, errorCallback CallbackID) string {
	target := errorCallback
	if success {
		target = callback
	}
	data, err := json.Marshal(v)
	if err != nil {
		msg, _ := json.Marshal(err.Error())
		return FormatCallback(errorCallback, msg)
	}
	return FormatCallback(target, data)
}
