package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jonwraymond/gqlcache/record"
)

// Normalizer flattens response trees into records.
//
// Contract:
// - Concurrency: safe for concurrent use when its Resolver is.
// - Ownership: returned records share nothing with the input tree.
type Normalizer struct {
	resolver Resolver
}

// NewNormalizer creates a normalizer. If resolver is nil, DefaultResolver is used.
func NewNormalizer(resolver Resolver) *Normalizer {
	if resolver == nil {
		resolver = DefaultResolver()
	}
	return &Normalizer{resolver: resolver}
}

// Normalize flattens data, requested with sel, under rootKey. Objects the
// resolver identifies get their own record and are replaced by references;
// other objects are embedded in their parent. Records that appear more than
// once in the tree are merged in visit order. The root record comes first.
func (n *Normalizer) Normalize(rootKey record.Key, sel SelectionSet, data map[string]any) ([]*record.Record, error) {
	w := &normalization{
		resolver: n.resolver,
		records:  make(map[record.Key]*record.Record),
	}
	if err := w.object(rootKey, sel, data, nil); err != nil {
		return nil, err
	}

	out := make([]*record.Record, len(w.order))
	for i, key := range w.order {
		out[i] = w.records[key]
	}
	return out, nil
}

type normalization struct {
	resolver Resolver
	records  map[record.Key]*record.Record
	order    []record.Key
}

func (w *normalization) object(key record.Key, sel SelectionSet, obj map[string]any, path []string) error {
	// Reserve the slot first so the root (or a parent) precedes its children.
	if _, ok := w.records[key]; !ok {
		w.records[key] = record.New(key)
		w.order = append(w.order, key)
	}

	fields, err := w.fields(sel, obj, path)
	if err != nil {
		return err
	}
	w.records[key].Merge(&record.Record{Key: key, Fields: fields})
	return nil
}

func (w *normalization) fields(sel SelectionSet, obj map[string]any, path []string) (map[string]record.Value, error) {
	fields := make(map[string]record.Value, len(sel))
	for _, f := range sel {
		raw, ok := obj[f.ResponseKey()]
		if !ok {
			continue
		}
		name, err := f.StorageKey()
		if err != nil {
			return nil, err
		}
		v, err := w.value(f, raw, appendPath(path, f.ResponseKey()))
		if err != nil {
			return nil, err
		}
		fields[name] = v
	}
	return fields, nil
}

func (w *normalization) value(f Field, raw any, path []string) (record.Value, error) {
	if raw == nil {
		return record.Null(), nil
	}
	if !f.IsComposite() {
		return record.Scalar(raw), nil
	}

	switch t := raw.(type) {
	case map[string]any:
		return w.objectValue(f, t, path)
	case []any:
		return w.listValue(f, t, path)
	default:
		return record.Value{}, fmt.Errorf("%w: %s: expected object or list, got %T",
			ErrShapeMismatch, strings.Join(path, "."), raw)
	}
}

func (w *normalization) objectValue(f Field, obj map[string]any, path []string) (record.Value, error) {
	typename := f.TypeName
	if s, ok := obj["__typename"].(string); ok && s != "" {
		typename = s
	}

	if key, ok := w.resolver.Resolve(typename, obj); ok {
		if err := w.object(key, f.Selections, obj, path); err != nil {
			return record.Value{}, err
		}
		return record.Reference(key), nil
	}

	fields, err := w.fields(f.Selections, obj, path)
	if err != nil {
		return record.Value{}, err
	}
	return record.Object(fields), nil
}

func (w *normalization) listValue(f Field, items []any, path []string) (record.Value, error) {
	values := make([]record.Value, len(items))
	allRefs := true
	for i, item := range items {
		v, err := w.value(f, item, appendPath(path, strconv.Itoa(i)))
		if err != nil {
			return record.Value{}, err
		}
		if k := v.Kind(); k != record.KindReference && k != record.KindNull {
			allRefs = false
		}
		values[i] = v
	}

	if !allRefs {
		return record.List(values), nil
	}
	keys := make([]record.Key, len(values))
	for i, v := range values {
		keys[i] = v.Ref()
	}
	return record.ReferenceList(keys), nil
}

func appendPath(path []string, elem string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, elem)
}
