package normalize

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jonwraymond/gqlcache/record"
)

// Resolver derives the cache key of an object in a response.
//
// Contract:
// - Determinism: same inputs must produce the same key.
// - Concurrency: implementations must be safe for concurrent use.
// - Side effects: none. Returning false embeds the object in its parent.
type Resolver interface {
	Resolve(typename string, fields map[string]any) (record.Key, bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(typename string, fields map[string]any) (record.Key, bool)

// Resolve calls f.
func (f ResolverFunc) Resolve(typename string, fields map[string]any) (record.Key, bool) {
	return f(typename, fields)
}

// FieldResolver keys objects by their typename and identifying fields.
// Format: Typename:value[:value...]
type FieldResolver struct {
	// KeyFields are the identifying fields used for every type.
	// Default: ["id"]
	KeyFields []string

	// TypeKeyFields overrides KeyFields per typename.
	TypeKeyFields map[string][]string
}

// DefaultResolver returns a resolver keyed on the id field.
func DefaultResolver() *FieldResolver {
	return &FieldResolver{KeyFields: []string{"id"}}
}

// Resolve returns a key when the typename is known and every identifying
// field holds a non-null scalar.
func (r *FieldResolver) Resolve(typename string, fields map[string]any) (record.Key, bool) {
	if typename == "" {
		return "", false
	}
	keyFields := r.KeyFields
	if override, ok := r.TypeKeyFields[typename]; ok {
		keyFields = override
	}
	if len(keyFields) == 0 {
		return "", false
	}

	parts := make([]string, 0, len(keyFields)+1)
	parts = append(parts, typename)
	for _, name := range keyFields {
		s, ok := scalarString(fields[name])
		if !ok {
			return "", false
		}
		parts = append(parts, s)
	}
	return record.Key(strings.Join(parts, ":")), true
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, t != ""
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	case int:
		return strconv.Itoa(t), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return "", false
	}
}

// Ensure FieldResolver implements Resolver
var _ Resolver = (*FieldResolver)(nil)
