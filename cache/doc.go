// Package cache provides the record store that owns every normalized record.
//
// It provides a RecordStore interface with a size-bounded in-memory
// implementation, field-level merge writes and snapshot views for readers
// that need one consistent picture of the graph.
package cache
