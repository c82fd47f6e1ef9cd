// Package record defines the normalized representation of GraphQL response
// data: cache keys, the closed set of field values and the records that own
// them.
//
// Records never point at each other directly. A field that holds another
// identified object stores that object's Key, so cyclic graphs (a hero whose
// friends list the hero again) cost nothing to represent and the owning store
// stays the single place where records live.
//
// Field-level merge is always whole-value replacement: a JSON scalar written
// twice under the same field keeps only the second value.
package record
