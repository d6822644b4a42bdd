package compress

import "errors"

// Error taxonomy shared by every backend and the factory. Failures wrap one of
// these with context, match them with errors.Is.
var (
	// ErrInvalidInput is returned for input the backend cannot accept at all.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidConfiguration is returned for an out-of-range level, window log or strategy.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrBackendUnavailable is returned when a codec library is missing or its
	// contexts could not be allocated.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrUnknownBackend is returned when a backend name was never registered.
	ErrUnknownBackend = errors.New("unknown backend")
	// ErrNoBackendsAvailable is returned when auto-selection finds nothing usable.
	ErrNoBackendsAvailable = errors.New("no backends available")
	// ErrCompressionFailed is returned when the codec itself fails to encode.
	ErrCompressionFailed = errors.New("compression failed")
	// ErrInvalidFrame is returned when a payload header is malformed or declares
	// a size the payload cannot produce.
	ErrInvalidFrame = errors.New("invalid frame")
	// ErrSizeMismatch is returned when the decoded length differs from the
	// declared length or exceeds the input limit.
	ErrSizeMismatch = errors.New("size mismatch")
	// ErrCorruptData is returned when the codec rejects the payload body.
	ErrCorruptData = errors.New("corrupt data")
)
