package fetch

import (
	"context"
	"sync"
)

// Stream delivers the responses of one request in order.
//
// The producer hands each response over unbuffered, so the consumer can work
// on a cache response before the network response exists. After Next reports
// false, Err returns the terminal error, if any.
//
// A Stream must be drained or closed; Close cancels any work still in flight.
type Stream struct {
	ch     chan *Response
	done   chan struct{}
	cancel context.CancelFunc

	mu  sync.Mutex
	err error
}

func newStream(cancel context.CancelFunc) *Stream {
	return &Stream{
		ch:     make(chan *Response),
		done:   make(chan struct{}),
		cancel: cancel,
	}
}

// send hands resp to the consumer. It reports false if ctx ended first.
func (s *Stream) send(ctx context.Context, resp *Response) bool {
	select {
	case s.ch <- resp:
		return true
	case <-ctx.Done():
		return false
	}
}

// finish records the terminal error and closes the stream.
func (s *Stream) finish(err error) {
	if err != nil {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
	}
	close(s.ch)
	close(s.done)
}

// Next waits for the next response. It returns false when the stream has
// terminated or ctx is done; Err then reports why.
func (s *Stream) Next(ctx context.Context) (*Response, bool) {
	select {
	case resp, ok := <-s.ch:
		return resp, ok
	case <-ctx.Done():
		s.mu.Lock()
		if s.err == nil {
			s.err = ctx.Err()
		}
		s.mu.Unlock()
		return nil, false
	}
}

// Err returns the terminal error of the stream, or nil if it completed
// successfully or is still running.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close cancels the request and waits for the producer to stop.
// It is safe to call more than once and after the stream completed.
func (s *Stream) Close() {
	s.cancel()
	<-s.done
}

// Done is closed when the producer has stopped.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// Collect drains the stream and returns every response in order together
// with the terminal error.
func (s *Stream) Collect(ctx context.Context) ([]*Response, error) {
	var out []*Response
	for {
		resp, ok := s.Next(ctx)
		if !ok {
			break
		}
		out = append(out, resp)
	}
	return out, s.Err()
}
