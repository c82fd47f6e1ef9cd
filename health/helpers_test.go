package health

import (
	"context"

	"github.com/jonwraymond/gqlcache/fetch"
	"github.com/jonwraymond/gqlcache/record"
)

type failingNetwork struct {
	err error
}

func (n failingNetwork) Execute(ctx context.Context, req fetch.Request) (*fetch.Result, error) {
	return nil, n.err
}

func resilienceRequest() fetch.Request {
	return fetch.Request{ID: "req-1", RootKey: record.QueryRoot}
}

func fixed(name string, r Result) Checker {
	return NewCheckerFunc(name, func(context.Context) Result { return r })
}
