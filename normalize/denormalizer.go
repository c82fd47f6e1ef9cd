package normalize

import (
	"fmt"
	"strconv"

	"github.com/jonwraymond/gqlcache/record"
)

// Source is the read side the Denormalizer walks. cache.Snapshot satisfies it.
type Source interface {
	Get(key record.Key) (*record.Record, bool)
}

// Denormalizer rebuilds response trees from records.
type Denormalizer struct{}

// NewDenormalizer creates a denormalizer.
func NewDenormalizer() *Denormalizer {
	return &Denormalizer{}
}

// Denormalize rebuilds the tree requested by sel under rootKey. It fails with
// a *CacheMissError at the first absent record or field and never returns a
// partial tree. The result shares nothing with src.
func (d *Denormalizer) Denormalize(src Source, rootKey record.Key, sel SelectionSet) (map[string]any, error) {
	return denormalization{src: src}.object(rootKey, sel, nil)
}

type denormalization struct {
	src Source
}

func (d denormalization) object(key record.Key, sel SelectionSet, path []string) (map[string]any, error) {
	rec, ok := d.src.Get(key)
	if !ok {
		return nil, &CacheMissError{Key: key, Path: path}
	}
	return d.fields(key, rec.Fields, sel, path)
}

func (d denormalization) fields(owner record.Key, fields map[string]record.Value, sel SelectionSet, path []string) (map[string]any, error) {
	out := make(map[string]any, len(sel))
	for _, f := range sel {
		name, err := f.StorageKey()
		if err != nil {
			return nil, err
		}
		fieldPath := appendPath(path, f.ResponseKey())

		v, ok := fields[name]
		if !ok {
			return nil, &CacheMissError{Key: owner, Field: name, Path: fieldPath}
		}
		val, err := d.value(owner, name, f, v, fieldPath)
		if err != nil {
			return nil, err
		}
		out[f.ResponseKey()] = val
	}
	return out, nil
}

func (d denormalization) value(owner record.Key, name string, f Field, v record.Value, path []string) (any, error) {
	switch v.Kind() {
	case record.KindNull:
		return nil, nil

	case record.KindScalar:
		if f.IsComposite() {
			// Stored by a request that selected this field as a leaf.
			return nil, &CacheMissError{Key: owner, Field: name, Path: path}
		}
		return v.ScalarValue(), nil

	case record.KindReference:
		if !f.IsComposite() {
			return nil, &CacheMissError{Key: owner, Field: name, Path: path}
		}
		return d.object(v.Ref(), f.Selections, path)

	case record.KindReferenceList:
		if !f.IsComposite() {
			return nil, &CacheMissError{Key: owner, Field: name, Path: path}
		}
		refs := v.Refs()
		out := make([]any, len(refs))
		for i, key := range refs {
			if key == "" {
				continue
			}
			obj, err := d.object(key, f.Selections, appendPath(path, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			out[i] = obj
		}
		return out, nil

	case record.KindObject:
		if !f.IsComposite() {
			return nil, &CacheMissError{Key: owner, Field: name, Path: path}
		}
		return d.fields(owner, v.Fields(), f.Selections, path)

	case record.KindList:
		items := v.Items()
		out := make([]any, len(items))
		for i, item := range items {
			val, err := d.value(owner, name, f, item, appendPath(path, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			out[i] = val
		}
		return out, nil

	case record.KindMissing:
		return nil, &CacheMissError{Key: owner, Field: name, Path: path}

	default:
		panic(fmt.Sprintf("normalize: unhandled value kind %s", v.Kind()))
	}
}
