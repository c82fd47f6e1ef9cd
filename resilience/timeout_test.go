package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonwraymond/gqlcache/fetch"
)

func TestNewTimeout_Default(t *testing.T) {
	if got := NewTimeout(0).Duration(); got != DefaultTimeout {
		t.Errorf("Duration() = %v, want %v", got, DefaultTimeout)
	}
	if got := NewTimeout(time.Second).Duration(); got != time.Second {
		t.Errorf("Duration() = %v, want 1s", got)
	}
}

func TestTimeout_CompletesInTime(t *testing.T) {
	next := &scriptedNetwork{}
	res, err := NewTimeout(time.Second).Wrap(next).Execute(context.Background(), queryRequest())
	if err != nil || res == nil {
		t.Fatalf("Execute() = %v, %v", res, err)
	}
}

func TestTimeout_AttemptExpires(t *testing.T) {
	next := &scriptedNetwork{block: make(chan struct{})}
	defer close(next.block)

	_, err := NewTimeout(10*time.Millisecond).Wrap(next).Execute(context.Background(), queryRequest())
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("error = %v, want %v", err, ErrTimeout)
	}
}

func TestTimeout_TransportIgnoringContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	next := fetch.NetworkFunc(func(ctx context.Context, req fetch.Request) (*fetch.Result, error) {
		<-release
		return &fetch.Result{}, nil
	})

	start := time.Now()
	_, err := NewTimeout(10*time.Millisecond).Wrap(next).Execute(context.Background(), queryRequest())
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("error = %v, want %v", err, ErrTimeout)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("Execute waited for a transport that ignores its context")
	}
}

func TestTimeout_CallerCancellationWins(t *testing.T) {
	next := &scriptedNetwork{block: make(chan struct{})}
	defer close(next.block)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := NewTimeout(time.Minute).Wrap(next).Execute(ctx, queryRequest())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want %v", err, context.Canceled)
	}
}
