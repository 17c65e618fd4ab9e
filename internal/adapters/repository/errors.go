package repository

import "errors"

// Sentinel kinds for sink errors.
var (
	// ErrPersistence marks a failed write to a sink table. It is never
	// swallowed inside the sink: callers decide whether the run failed.
	ErrPersistence = errors.New("sink write failed")

	// ErrUnknownTable marks a read against a table the sink does not own.
	ErrUnknownTable = errors.New("unknown sink table")
)
