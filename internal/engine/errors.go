package engine

import "errors"

var (
	// ErrConcurrentCommand is returned when a command is issued while another
	// one is still waiting for the remote.
	ErrConcurrentCommand = errors.New("another command is in flight")

	// ErrNotLoaded is returned by commands until the remote status has been
	// loaded. It wraps the last load error when there is one.
	ErrNotLoaded = errors.New("session status not loaded")

	// ErrClosed is returned by commands after Close.
	ErrClosed = errors.New("engine closed")
)
