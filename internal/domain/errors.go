package domain

import "errors"

var (
	// ErrMissingTabID is returned when a snapshot fetch or registry
	// lookup is attempted without a tab correlation key.
	ErrMissingTabID = errors.New("missing tabID")
	// ErrTabNotFound indicates no tab identity has been registered yet.
	ErrTabNotFound = errors.New("tab identity not found")
	// ErrSnapshotUnavailable indicates the startup snapshot could not be fetched.
	ErrSnapshotUnavailable = errors.New("poll snapshot unavailable")
)
