package health

import "errors"

var (
	// ErrCheckFailed indicates a component is past its critical threshold.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout indicates a check did not finish in time.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound indicates no checker is registered under a name.
	ErrCheckerNotFound = errors.New("health: checker not found")

	// ErrInvalidThreshold indicates thresholds outside (0, 1] or out of order.
	ErrInvalidThreshold = errors.New("health: invalid threshold")

	// ErrNilSource indicates a checker was built without its component.
	ErrNilSource = errors.New("health: source is nil")
)
