package splitframe

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
)

// Package errors.
var (
	// ErrNoDevices is returned when the execution layer enumerates no devices.
	ErrNoDevices = errors.New("splitframe: no rendering devices found")

	// ErrNoCapableQueue is returned when the primary device has no queue
	// family that is both graphics-capable and able to present.
	ErrNoCapableQueue = errors.New("splitframe: no graphics queue with presentation support")

	// ErrNoMemoryType is returned when a device has no memory type suitable
	// for host-written vertex data.
	ErrNoMemoryType = errors.New("splitframe: no compatible memory type")

	// ErrShaderLoad is returned when a shader binary cannot be read or compiled.
	ErrShaderLoad = errors.New("splitframe: shader load failed")

	// ErrNoBackendAvailable is returned when no registered backend is available.
	ErrNoBackendAvailable = errors.New("splitframe: no backend available")

	// ErrUnknownBackend is returned by Open for an unregistered backend name.
	ErrUnknownBackend = errors.New("splitframe: unknown backend")

	// ErrBackendUnavailable is returned by Open when the backend reports
	// itself unavailable on this system.
	ErrBackendUnavailable = errors.New("splitframe: backend unavailable")

	// ErrInvalidDimensions is returned for non-positive target sizes.
	ErrInvalidDimensions = errors.New("splitframe: invalid dimensions")

	// ErrInvalidConfig is returned when scheduling constants are out of range.
	ErrInvalidConfig = errors.New("splitframe: invalid configuration")
)

// SetupError reports a fatal startup failure: the failing operation, the
// status code returned by the execution layer and the source location that
// detected it. Callers are expected to tear down and exit.
type SetupError struct {
	Op   string
	Code Status
	File string
	Line int
	Err  error
}

// NewSetupError creates a SetupError for op and records the caller's file
// and line.
func NewSetupError(op string, code Status, err error) *SetupError {
	e := &SetupError{Op: op, Code: code, Err: err}
	if _, file, line, ok := runtime.Caller(1); ok {
		e.File = filepath.Base(file)
		e.Line = line
	}
	return e
}

// Location returns "file:line" of the site that raised the error.
func (e *SetupError) Location() string {
	if e.File == "" {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", e.File, e.Line)
}

func (e *SetupError) Error() string {
	msg := fmt.Sprintf("splitframe: %s failed: %s (%d) at %s", e.Op, e.Code, int32(e.Code), e.Location())
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SetupError) Unwrap() error { return e.Err }
