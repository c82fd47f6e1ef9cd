package record

import (
	"fmt"
	"reflect"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	// KindMissing marks a field whose value is unknown. It is the zero Kind.
	KindMissing Kind = iota
	// KindNull is an explicit GraphQL null.
	KindNull
	// KindScalar is a leaf value, including opaque JSON documents.
	KindScalar
	// KindReference points at another record.
	KindReference
	// KindReferenceList is an ordered list of references; empty keys are nulls.
	KindReferenceList
	// KindObject is an object without a key, embedded in its parent record.
	KindObject
	// KindList is an ordered list of values that are not all references.
	KindList
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindReference:
		return "reference"
	case KindReferenceList:
		return "reference_list"
	case KindObject:
		return "object"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is a normalized field value. The zero Value is Missing.
//
// Only the payload matching Kind is meaningful; construct values with the
// package constructors rather than struct literals.
type Value struct {
	kind   Kind
	scalar any
	ref    Key
	refs   []Key
	fields map[string]Value
	items  []Value
}

// Missing returns the missing sentinel.
func Missing() Value { return Value{} }

// Null returns an explicit null.
func Null() Value { return Value{kind: KindNull} }

// Scalar wraps a leaf value. Maps and slices are kept whole and are never
// split into sub-records; the value is copied so callers keep ownership of v.
func Scalar(v any) Value {
	if v == nil {
		return Null()
	}
	return Value{kind: KindScalar, scalar: CloneTree(v)}
}

// Reference points at the record stored under k.
func Reference(k Key) Value {
	return Value{kind: KindReference, ref: k}
}

// ReferenceList holds ordered references. An empty Key stands for null.
func ReferenceList(keys []Key) Value {
	return Value{kind: KindReferenceList, refs: append([]Key{}, keys...)}
}

// Object embeds the fields of an object that has no key of its own.
func Object(fields map[string]Value) Value {
	out := make(map[string]Value, len(fields))
	for name, v := range fields {
		out[name] = v.Clone()
	}
	return Value{kind: KindObject, fields: out}
}

// List holds ordered values of mixed variants.
func List(items []Value) Value {
	out := make([]Value, len(items))
	for i, v := range items {
		out[i] = v.Clone()
	}
	return Value{kind: KindList, items: out}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether v is the missing sentinel.
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// ScalarValue returns a detached copy of the scalar payload.
func (v Value) ScalarValue() any { return CloneTree(v.scalar) }

// Ref returns the referenced key.
func (v Value) Ref() Key { return v.ref }

// Refs returns a copy of the reference list.
func (v Value) Refs() []Key { return append([]Key(nil), v.refs...) }

// Fields returns the embedded object fields. The map must not be modified.
func (v Value) Fields() map[string]Value { return v.fields }

// Items returns the list items. The slice must not be modified.
func (v Value) Items() []Value { return v.items }

// References appends every key v points at, directly or through embedded
// objects and lists, to dst.
func (v Value) References(dst []Key) []Key {
	switch v.kind {
	case KindReference:
		dst = append(dst, v.ref)
	case KindReferenceList:
		for _, k := range v.refs {
			if k != "" {
				dst = append(dst, k)
			}
		}
	case KindObject:
		for _, f := range v.fields {
			dst = f.References(dst)
		}
	case KindList:
		for _, item := range v.items {
			dst = item.References(dst)
		}
	}
	return dst
}

// Equal reports whether v and o hold the same variant and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindMissing, KindNull:
		return true
	case KindScalar:
		return reflect.DeepEqual(v.scalar, o.scalar)
	case KindReference:
		return v.ref == o.ref
	case KindReferenceList:
		if len(v.refs) != len(o.refs) {
			return false
		}
		for i := range v.refs {
			if v.refs[i] != o.refs[i] {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.fields) != len(o.fields) {
			return false
		}
		for name, f := range v.fields {
			g, ok := o.fields[name]
			if !ok || !f.Equal(g) {
				return false
			}
		}
		return true
	case KindList:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	default:
		panic(fmt.Sprintf("record: unhandled value kind %d", v.kind))
	}
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	switch v.kind {
	case KindScalar:
		return Value{kind: KindScalar, scalar: CloneTree(v.scalar)}
	case KindReferenceList:
		return Value{kind: KindReferenceList, refs: append([]Key{}, v.refs...)}
	case KindObject:
		return Object(v.fields)
	case KindList:
		return List(v.items)
	default:
		return v
	}
}

// Size estimates the memory held by v in bytes.
func (v Value) Size() int {
	switch v.kind {
	case KindMissing, KindNull:
		return 1
	case KindScalar:
		return 1 + estimateSize(v.scalar)
	case KindReference:
		return 1 + len(v.ref)
	case KindReferenceList:
		n := 1
		for _, k := range v.refs {
			n += len(k) + 1
		}
		return n
	case KindObject:
		n := 1
		for name, f := range v.fields {
			n += len(name) + f.Size()
		}
		return n
	case KindList:
		n := 1
		for _, item := range v.items {
			n += item.Size()
		}
		return n
	default:
		return 1
	}
}

// String renders v for diagnostics.
func (v Value) String() string {
	switch v.kind {
	case KindScalar:
		return fmt.Sprintf("%v", v.scalar)
	case KindReference:
		return "@" + string(v.ref)
	case KindReferenceList:
		return fmt.Sprintf("@%v", v.refs)
	case KindObject:
		return fmt.Sprintf("%v", v.fields)
	case KindList:
		return fmt.Sprintf("%v", v.items)
	default:
		return v.kind.String()
	}
}
