package ipc

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrAlreadyResolved is returned when a resolver is used a second time.
var ErrAlreadyResolved = errors.New("invoke already resolved")

// Evaluator runs a script in a window.
type Evaluator interface {
	Eval(script string) error
}

// Resolver delivers exactly one result for an invoke message.
type Resolver struct {
	window   Evaluator
	callback CallbackID
	errorCb  CallbackID
	done     atomic.Bool
}

func NewResolver(window Evaluator, callback, errorCallback CallbackID) *Resolver {
	return &Resolver{window: window, callback: callback, errorCb: errorCallback}
}

// Callback returns the success callback id.
func (r *Resolver) Callback() CallbackID { return r.callback }

// ErrorCallback returns the error callback id.
func (r *Resolver) ErrorCallback() CallbackID { return r.errorCb }

// Resolved reports whether a result has been delivered.
func (r *Resolver) Resolved() bool { return r.done.Load() }

// Resolve delivers v to the success callback.
func (r *Resolver) Resolve(v any) error {
	return r.deliver(v, true)
}

// Reject delivers v to the error callback.
func (r *Resolver) Reject(v any) error {
	return r.deliver(v, false)
}

// Respond delivers v on success or err's message on failure.
func (r *Resolver) Respond(v any, err error) error {
	if err != nil {
		return r.Reject(err.Error())
	}
	return r.Resolve(v)
}

func (r *Resolver) deliver(v any, success bool) error {
	if !r.done.CompareAndSwap(false, true) {
		return ErrAlreadyResolved
	}
	if err := r.window.Eval(FormatCallbackResult(v, success, r.callback, r.errorCb)); err != nil {
		return fmt.Errorf("deliver invoke result: %w", err)
	}
	return nil
}

// Spawner runs a task off the calling goroutine.
type Spawner interface {
	Spawn(ctx context.Context, fn func(context.Context)) error
}

// Task is the body of an asynchronous command.
type Task func(ctx context.Context) (any, error)

// RespondAsync runs task on pool and delivers its outcome through r. A
// panicking task is reported on the error callback. done, if non-nil, is
// called once the answer has been sent, with the task's error (or the
// spawn error when the task never ran) and the delivery error.
func RespondAsync(ctx context.Context, pool Spawner, r *Resolver, task Task, done func(taskErr, deliverErr error)) {
	finish := func(taskErr, deliverErr error) {
		if done != nil {
			done(taskErr, deliverErr)
		}
	}
	run := func(ctx context.Context) {
		v, err := SafeRun(ctx, task)
		finish(err, r.Respond(v, err))
	}
	if err := pool.Spawn(ctx, run); err != nil {
		finish(err, r.Reject(err.Error()))
	}
}

// SafeRun calls task and turns a panic into an error.
func SafeRun(ctx context.Context, task Task) (v any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("command panicked: %v", rec)
		}
	}()
	return task(ctx)
}
