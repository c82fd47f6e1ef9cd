package fetch

import (
	"errors"
	"strings"
	"testing"

	"github.com/jonwraymond/gqlcache/normalize"
)

func TestNetworkError(t *testing.T) {
	err := &NetworkError{Cause: errDown}

	if !errors.Is(err, ErrNetwork) {
		t.Error("NetworkError should match ErrNetwork")
	}
	if !errors.Is(err, errDown) {
		t.Error("NetworkError should unwrap to its cause")
	}
	if got := err.Error(); got != "fetch: network failure: connection refused" {
		t.Errorf("Error() = %q", got)
	}
	if got := (&NetworkError{}).Error(); got != ErrNetwork.Error() {
		t.Errorf("Error() without cause = %q", got)
	}
}

func TestAsNetworkError(t *testing.T) {
	orig := &NetworkError{Cause: errDown}
	if got := asNetworkError(orig); got != error(orig) {
		t.Errorf("asNetworkError() rewrapped %v", got)
	}

	var ne *NetworkError
	if !errors.As(asNetworkError(errDown), &ne) || ne.Cause != errDown {
		t.Errorf("asNetworkError() did not wrap %v", errDown)
	}
}

func TestCompositeError(t *testing.T) {
	miss := &normalize.CacheMissError{Key: "QUERY_ROOT"}
	err := &CompositeError{CacheMiss: miss, Network: &NetworkError{Cause: errDown}}

	msg := err.Error()
	for _, want := range []string{"cache:", "QUERY_ROOT", "network:", "connection refused"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}

	var gotMiss *normalize.CacheMissError
	if !errors.As(err, &gotMiss) || gotMiss != miss {
		t.Error("CompositeError should expose the cache miss")
	}
	var gotNet *NetworkError
	if !errors.As(err, &gotNet) || !errors.Is(err, errDown) {
		t.Error("CompositeError should expose the network error")
	}
}
