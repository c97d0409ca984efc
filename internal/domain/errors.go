package domain

import "errors"

var (
	// ErrStaleTarget is returned when a mismatch no longer points at a
	// declaration of the supplied snapshot.
	ErrStaleTarget = errors.New("stale target")

	// ErrUnsupportedStructure is returned when a declaration sits in a scope
	// the engine cannot rebuild.
	ErrUnsupportedStructure = errors.New("unsupported structure")

	// ErrEditConflict is returned when an edit does not fit the snapshot it
	// is applied to (adding an existing file, removing a missing one).
	ErrEditConflict = errors.New("edit conflict")

	// ErrMismatchesFound is returned by the check workflow when at least one
	// declaration does not match its file name.
	ErrMismatchesFound = errors.New("type/file name mismatches found")
)
