package fetch

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/gqlcache/normalize"
	"github.com/jonwraymond/gqlcache/observe"
	"github.com/jonwraymond/gqlcache/record"
)

// Orchestrator resolves requests against a Cache and a Network according to
// each request's fetch policy.
//
// Contract:
//   - Concurrency: safe for concurrent use; requests run independently.
//   - Context: the request context bounds the network call and the write-through.
//   - Errors: every failure is the terminal outcome of its stream; only a
//     failed write-through is swallowed (logged and counted).
type Orchestrator struct {
	cache   Cache
	network Network
	cfg     Config
	inst    observe.Instruments
	mw      *observe.Middleware
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithInstruments sets the tracer, metrics and logger the orchestrator reports to.
func WithInstruments(inst observe.Instruments) Option {
	return func(o *Orchestrator) {
		o.inst = inst
	}
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(cache Cache, network Network, cfg Config, opts ...Option) (*Orchestrator, error) {
	if cache == nil {
		return nil, ErrNilStore
	}
	if network == nil {
		return nil, ErrNilNetwork
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &Orchestrator{cache: cache, network: network, cfg: cfg}
	for _, opt := range opts {
		opt(o)
	}
	o.inst = o.inst.WithDefaults()
	o.mw = observe.MiddlewareFromInstruments(o.inst)
	if cfg.Deduplicate {
		o.network = Deduplicate(o.network)
	}
	return o, nil
}

// Execute starts resolving req and returns its response stream.
func (o *Orchestrator) Execute(ctx context.Context, req Request) *Stream {
	req = o.prepare(req)

	ctx, cancel := context.WithCancel(ctx)
	s := newStream(cancel)
	go func() {
		defer cancel()
		s.finish(o.run(ctx, req, s))
	}()
	return s
}

// Query resolves req and returns its final response. For CacheAndNetwork
// that is the network response; use Execute to observe both.
func (o *Orchestrator) Query(ctx context.Context, req Request) (*Response, error) {
	s := o.Execute(ctx, req)
	defer s.Close()

	responses, err := s.Collect(ctx)
	if err != nil {
		return nil, err
	}
	if len(responses) == 0 {
		return nil, ErrEmptyResult
	}
	return responses[len(responses)-1], nil
}

// ExecuteBatch resolves reqs concurrently and returns their final responses
// in order. The first failure cancels the remaining requests and is returned.
func (o *Orchestrator) ExecuteBatch(ctx context.Context, reqs []Request) ([]*Response, error) {
	out := make([]*Response, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	if o.cfg.BatchLimit > 0 {
		g.SetLimit(o.cfg.BatchLimit)
	}
	for i, req := range reqs {
		g.Go(func() error {
			resp, err := o.Query(gctx, req)
			if err != nil {
				return err
			}
			out[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, nil
}

func (o *Orchestrator) prepare(req Request) Request {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.RootKey == "" {
		req.RootKey = record.QueryRoot
	}
	if req.Policy == PolicyDefault {
		req.Policy = o.cfg.defaultPolicy()
	}
	return req
}

// run executes the policy state machine for one request.
func (o *Orchestrator) run(ctx context.Context, req Request, s *Stream) error {
	meta := observe.OperationMeta{
		Name:      req.OperationName,
		Type:      req.operationType(),
		Policy:    req.Policy.String(),
		RequestID: req.ID,
	}
	ctx, span := o.inst.Tracer.StartSpan(ctx, observe.StageFetch, meta)
	x := &execution{o: o, req: req, meta: meta, stream: s, start: time.Now()}

	err := x.run(ctx)

	o.inst.Tracer.EndSpan(span, err)
	if err != nil {
		o.inst.Metrics.RecordFetch(ctx, meta, time.Since(x.start), false, err)
		o.inst.Logger.WithOperation(meta).Debug(ctx, "fetch failed", observe.Field{Key: "error", Value: err})
	}
	return err
}

// execution carries the state of one request through its policy.
type execution struct {
	o      *Orchestrator
	req    Request
	meta   observe.OperationMeta
	stream *Stream
	start  time.Time
}

func (x *execution) run(ctx context.Context) error {
	switch x.req.Policy {
	case CacheFirst:
		return x.cacheFirst(ctx)
	case NetworkFirst:
		return x.networkFirst(ctx)
	case CacheOnly:
		return x.cacheOnly(ctx)
	case NetworkOnly:
		return x.networkOnly(ctx)
	case CacheAndNetwork:
		return x.cacheAndNetwork(ctx)
	default:
		return ErrUnknownPolicy
	}
}

func (x *execution) cacheFirst(ctx context.Context) error {
	data, missErr := x.read(ctx)
	if missErr == nil {
		return x.emitCache(ctx, data)
	}
	if !isCacheMiss(missErr) {
		return missErr
	}

	res, netErr := x.fetch(ctx)
	if netErr != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &CompositeError{CacheMiss: missErr, Network: netErr}
	}
	return x.emitNetwork(ctx, res)
}

func (x *execution) networkFirst(ctx context.Context) error {
	res, netErr := x.fetch(ctx)
	if netErr == nil {
		return x.emitNetwork(ctx, res)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	data, missErr := x.read(ctx)
	if missErr == nil {
		return x.emitCache(ctx, data)
	}
	if isCacheMiss(missErr) {
		return netErr
	}
	return missErr
}

func (x *execution) cacheOnly(ctx context.Context) error {
	data, err := x.read(ctx)
	if err != nil {
		return err
	}
	return x.emitCache(ctx, data)
}

func (x *execution) networkOnly(ctx context.Context) error {
	res, err := x.fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return x.emitNetwork(ctx, res)
}

func (x *execution) cacheAndNetwork(ctx context.Context) error {
	data, missErr := x.read(ctx)
	hit := missErr == nil
	if hit {
		if err := x.emitCache(ctx, data); err != nil {
			return err
		}
	} else if !isCacheMiss(missErr) {
		return missErr
	}

	res, netErr := x.fetch(ctx)
	if netErr != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if hit {
			return netErr
		}
		return &CompositeError{CacheMiss: missErr, Network: netErr}
	}
	return x.emitNetwork(ctx, res)
}

// read serves the request from the store.
func (x *execution) read(ctx context.Context) (map[string]any, error) {
	return x.o.cache.Read(ctx, x.req.RootKey, x.req.Selections)
}

// fetch calls the network once and writes a cacheable result through to the
// store before returning it.
func (x *execution) fetch(ctx context.Context) (*Result, error) {
	out, err := x.o.mw.Wrap(func(ctx context.Context, _ observe.OperationMeta) (any, error) {
		return x.o.network.Execute(ctx, x.req)
	})(ctx, x.meta)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, asNetworkError(err)
	}
	res, _ := out.(*Result)
	if res == nil {
		return nil, &NetworkError{Cause: ErrEmptyResult}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	x.writeThrough(ctx, res)
	return res, nil
}

func (x *execution) writeThrough(ctx context.Context, res *Result) {
	if !res.cacheable() {
		return
	}
	if _, err := x.o.cache.Write(ctx, x.req.RootKey, x.req.Selections, res.Data); err != nil {
		x.o.inst.Logger.WithOperation(x.meta).Warn(ctx, "cache write-through failed",
			observe.Field{Key: "error", Value: err},
		)
	}
}

func (x *execution) emitCache(ctx context.Context, data map[string]any) error {
	return x.emit(ctx, &Response{RequestID: x.req.ID, Data: data, IsFromCache: true})
}

func (x *execution) emitNetwork(ctx context.Context, res *Result) error {
	return x.emit(ctx, &Response{RequestID: x.req.ID, Data: res.Data, Errors: res.Errors})
}

func (x *execution) emit(ctx context.Context, resp *Response) error {
	if !x.stream.send(ctx, resp) {
		return ctx.Err()
	}
	x.o.inst.Metrics.RecordFetch(ctx, x.meta, time.Since(x.start), resp.IsFromCache, nil)
	return nil
}

func isCacheMiss(err error) bool {
	return errors.Is(err, normalize.ErrCacheMiss)
}
