package model

import "errors"

// Error kinds reported by locating and replacement operations. All of them
// are local and recoverable; callers match them with errors.Is.
var (
	// ErrInvalidColorFormat is returned for a colour value that is not a
	// 1- or 3-channel value, a packed 0xRRGGBB integer or a hex string.
	ErrInvalidColorFormat = errors.New("invalid color format")

	// ErrInvalidPattern is returned when a regular expression selector does
	// not compile.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrInvalidAddress is returned for a container id with the wrong number
	// of parts or non-numeric parts.
	ErrInvalidAddress = errors.New("invalid container address")

	// ErrNoMatch is returned when a selector matched nothing.
	ErrNoMatch = errors.New("no match")

	// ErrOccurrenceOutOfRange is returned when the requested occurrence index
	// exceeds the number of matches.
	ErrOccurrenceOutOfRange = errors.New("occurrence out of range")

	// ErrDegenerateRegion is returned when padding collapses a region to zero
	// or negative extent.
	ErrDegenerateRegion = errors.New("degenerate region")

	// ErrTextOverflow is returned when replacement text does not fit its
	// target region at the requested style.
	ErrTextOverflow = errors.New("text overflow")

	// ErrAlreadyApplied is returned when an operation that already reached a
	// terminal state is applied or submitted again.
	ErrAlreadyApplied = errors.New("operation already applied")

	// ErrInvalidOperation is returned when a replacement operation has
	// neither a selector nor a target, or both.
	ErrInvalidOperation = errors.New("invalid replacement operation")

	// ErrSaveUnsupported is returned when saving through an engine that
	// cannot persist its mutations.
	ErrSaveUnsupported = errors.New("engine does not support saving")
)
