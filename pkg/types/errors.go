package types

import (
	"errors"
	"fmt"
)

// Error taxonomy for the retrieval engine:
//
//   - ConfigurationError: fatal, raised at construction time only.
//   - ConnectivityError: a backing service was unreachable or timed out.
//     Recoverable per method; the orchestrator logs it and proceeds with
//     whatever other methods completed.
//   - DimensionMismatchError: an embedding had the wrong dimension. The
//     embedding path auto-repairs (pad/truncate) with a warning, so this
//     only escapes from direct VectorIndex inserts.
var (
	// ErrNoStoreEndpoint indicates no graph store endpoint was configured.
	ErrNoStoreEndpoint = errors.New("no graph store endpoint configured")

	// ErrInvalidDimension indicates a non-positive vector dimension.
	ErrInvalidDimension = errors.New("vector dimension must be positive")

	// ErrInvalidK indicates a non-positive top-k at query time.
	ErrInvalidK = errors.New("k must be positive")
)

// ConfigurationError wraps a construction-time misconfiguration. It is never
// produced at query time.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %q: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Is allows errors.Is(err, &ConfigurationError{}) against wrapped errors.
func (e *ConfigurationError) Is(target error) bool {
	_, ok := target.(*ConfigurationError)
	return ok
}

// ConnectivityError marks a failure reaching a backing service. The
// orchestrator treats it as a degraded method, not a fatal condition.
type ConnectivityError struct {
	Service string
	Err     error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("%s unreachable: %v", e.Service, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

func (e *ConnectivityError) Is(target error) bool {
	_, ok := target.(*ConnectivityError)
	return ok
}

// NewConnectivityError wraps err as a connectivity failure of service.
func NewConnectivityError(service string, err error) *ConnectivityError {
	return &ConnectivityError{Service: service, Err: err}
}

// DimensionMismatchError reports a vector whose length does not match the
// index's configured dimension.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: index expects %d, got %d", e.Want, e.Got)
}

func (e *DimensionMismatchError) Is(target error) bool {
	_, ok := target.(*DimensionMismatchError)
	return ok
}
