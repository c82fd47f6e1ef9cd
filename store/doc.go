// Package store is the transactional facade over normalization and the
// record store.
//
// A Store pairs a Normalizer and a Denormalizer with one cache.RecordStore.
// Write normalizes a whole response before touching the record store and
// merges it in one atomic call; Read rebuilds a tree from one consistent
// snapshot. Neither ever exposes a live record to the caller.
//
// Example:
//
//	s, err := store.New(store.Config{MaxSizeBytes: 4 << 20})
//	if err != nil {
//		return err
//	}
//	sel := normalize.SelectionSet{normalize.Object("hero", normalize.Leaf("id"), normalize.Leaf("name"))}
//	if _, err := s.Write(ctx, record.QueryRoot, sel, data); err != nil {
//		return err
//	}
//	tree, err := s.Read(ctx, record.QueryRoot, sel)
package store
