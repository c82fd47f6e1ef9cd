// Package normalize converts between nested GraphQL response trees and flat
// records.
//
// The Normalizer walks a response tree along its requested shape and emits
// one record per identified object, replacing embedded objects with
// references. The Denormalizer walks the same shape over a store snapshot and
// rebuilds a detached tree, or fails with a *CacheMissError naming the first
// absent record or field. Denormalization is all-or-nothing: a partial tree is
// never returned.
//
// Whether a map in the response is an object or an opaque JSON scalar is
// decided by the shape alone: fields with sub-selections are objects, leaf
// fields are scalars and are stored whole.
package normalize
