// Package fetch arbitrates between the cache and the network for each
// request according to its fetch policy.
//
// An Orchestrator runs one small state machine per request and delivers its
// outcome as a Stream of Responses. Every policy emits at most two responses
// and then terminates, either cleanly or with one terminal error:
//
//   - CacheFirst: the cache, falling back to the network on a miss.
//   - NetworkFirst: the network, falling back to the cache on failure.
//   - CacheOnly: the cache; the network is never called.
//   - NetworkOnly: the network; the cache is written but never read.
//   - CacheAndNetwork: a cache response if one exists, then the network one.
//
// Network results are written through to the store before they are emitted,
// so a consumer that sees a network response can immediately read the same
// data from the cache. A failed write-through is logged and counted; it never
// replaces the network response.
//
// Errors:
//
//   - *normalize.CacheMissError: the cache could not serve the request.
//   - *NetworkError: the network collaborator failed.
//   - *CompositeError: both sources were tried and both failed.
//
// The context passed to Execute governs the whole request. Cancelling it
// stops the network call, skips the write-through and ends the stream with
// the context's error.
package fetch
