package normalize

import "github.com/jonwraymond/gqlcache/record"

// Field is one requested field of a selection set.
type Field struct {
	// Name is the schema field name.
	Name string

	// Alias is the response key; empty means Name.
	Alias string

	// Arguments are the resolved argument values. Fields invoked with
	// different arguments are stored under different keys.
	Arguments map[string]any

	// TypeName is the static object type, used when the response does not
	// carry __typename.
	TypeName string

	// Selections are the sub-fields of an object field. Leaf fields have none.
	Selections SelectionSet
}

// SelectionSet is the requested shape of an object.
type SelectionSet []Field

// Leaf requests a scalar field.
func Leaf(name string) Field {
	return Field{Name: name}
}

// Object requests an object field with the given sub-selections.
func Object(name string, selections ...Field) Field {
	return Field{Name: name, Selections: selections}
}

// As returns a copy of f with a response alias.
func (f Field) As(alias string) Field {
	f.Alias = alias
	return f
}

// With returns a copy of f invoked with args.
func (f Field) With(args map[string]any) Field {
	f.Arguments = args
	return f
}

// OfType returns a copy of f with a static type name.
func (f Field) OfType(typename string) Field {
	f.TypeName = typename
	return f
}

// ResponseKey returns the key the field occupies in a response tree.
func (f Field) ResponseKey() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// IsComposite reports whether the field selects sub-fields.
func (f Field) IsComposite() bool {
	return len(f.Selections) > 0
}

// StorageKey returns the record field name, including arguments.
func (f Field) StorageKey() (string, error) {
	return record.FieldKey(f.Name, f.Arguments)
}
