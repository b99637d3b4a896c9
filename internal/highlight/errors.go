package highlight

import "errors"

var (
	// ErrSignal marks empty or zero-duration input readings. Fatal for the
	// input being analyzed; no partial output is produced.
	ErrSignal = errors.New("signal error")

	// ErrConfig marks out-of-range or mutually inconsistent analysis options.
	// Detected before any scan begins.
	ErrConfig = errors.New("config error")
)
