package app

import "errors"

var (
	// ErrDuplicateLabel is returned when a window label is already in use.
	ErrDuplicateLabel = errors.New("duplicate window label")
	// ErrWindowNotFound is returned when no attached window has a label.
	ErrWindowNotFound = errors.New("window not found")
	// ErrUnknownCommand rejects invokes no route can handle.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrAlreadyRunning is returned by Run on a builder that already ran.
	ErrAlreadyRunning = errors.New("application already running")
	// ErrAssetNotFound is returned when a local window URL has no asset.
	ErrAssetNotFound = errors.New("asset not found")
	// ErrStateSealed rejects managed state registered after startup.
	ErrStateSealed = errors.New("managed state can only be registered during startup")
)
