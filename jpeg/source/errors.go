package source

import "errors"

var (
	// ErrClosed is returned when writing to a Buffer after Close
	ErrClosed = errors.New("source closed")

	// ErrNegativeSkip is returned when Skip is asked to move backwards
	ErrNegativeSkip = errors.New("negative skip")

	// ErrUnitInUse is returned when opening a unit number that is already open
	ErrUnitInUse = errors.New("unit already open")

	// ErrUnitNotOpen is returned when a unit number has no open file
	ErrUnitNotOpen = errors.New("unit not open")
)
