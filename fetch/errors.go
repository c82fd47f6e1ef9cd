package fetch

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrNetwork matches every *NetworkError via errors.Is.
	ErrNetwork = errors.New("fetch: network failure")

	// ErrEmptyResult indicates the network collaborator returned neither a
	// result nor an error.
	ErrEmptyResult = errors.New("fetch: network returned no result")

	// ErrUnknownPolicy indicates an unrecognized policy name.
	ErrUnknownPolicy = errors.New("fetch: unknown fetch policy")

	// ErrNilStore indicates a nil Cache was provided.
	ErrNilStore = errors.New("fetch: store is nil")

	// ErrNilNetwork indicates a nil Network was provided.
	ErrNilNetwork = errors.New("fetch: network is nil")

	// ErrInvalidBatchLimit indicates a negative Config.BatchLimit.
	ErrInvalidBatchLimit = errors.New("fetch: batch limit must not be negative")
)

// NetworkError wraps a failure of the network collaborator.
// The cause is preserved for errors.Is and errors.As.
type NetworkError struct {
	Cause error
}

func (e *NetworkError) Error() string {
	if e.Cause == nil {
		return ErrNetwork.Error()
	}
	return fmt.Sprintf("%s: %v", ErrNetwork, e.Cause)
}

// Unwrap returns the collaborator's error.
func (e *NetworkError) Unwrap() error { return e.Cause }

// Is matches ErrNetwork.
func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// asNetworkError wraps err unless it already carries a *NetworkError.
func asNetworkError(err error) error {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return err
	}
	return &NetworkError{Cause: err}
}

// CompositeError reports that both the cache and the network were tried and
// both failed. Both causes stay reachable through errors.Is and errors.As.
type CompositeError struct {
	// CacheMiss is the read failure, normally a *normalize.CacheMissError.
	CacheMiss error

	// Network is the network failure, normally a *NetworkError.
	Network error
}

func (e *CompositeError) Error() string {
	return fmt.Sprintf("fetch: cache and network both failed: cache: %v; network: %v", e.CacheMiss, e.Network)
}

// Unwrap returns both causes.
func (e *CompositeError) Unwrap() []error {
	return []error{e.CacheMiss, e.Network}
}
