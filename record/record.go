package record

// Record is the flat, normalized form of one identified object.
type Record struct {
	Key    Key
	Fields map[string]Value
}

// New creates an empty record for key.
func New(key Key) *Record {
	return &Record{Key: key, Fields: make(map[string]Value)}
}

// Set stores v under the field storage key name.
func (r *Record) Set(name string, v Value) {
	if r.Fields == nil {
		r.Fields = make(map[string]Value)
	}
	r.Fields[name] = v
}

// Get returns the value stored under name.
func (r *Record) Get(name string) (Value, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	out := &Record{Key: r.Key, Fields: make(map[string]Value, len(r.Fields))}
	for name, v := range r.Fields {
		out.Fields[name] = v.Clone()
	}
	return out
}

// Merge applies the fields of in on top of r and reports whether anything
// changed. Incoming fields replace existing ones whole, fields absent from in
// are kept, and an incoming null overwrites to null.
func (r *Record) Merge(in *Record) bool {
	if r.Fields == nil {
		r.Fields = make(map[string]Value, len(in.Fields))
	}
	changed := false
	for name, v := range in.Fields {
		if old, ok := r.Fields[name]; ok && old.Equal(v) {
			continue
		}
		r.Fields[name] = v.Clone()
		changed = true
	}
	return changed
}

// Size estimates the bytes held by r.
func (r *Record) Size() int {
	n := len(r.Key)
	for name, v := range r.Fields {
		n += len(name) + v.Size()
	}
	return n
}

// References returns every key the record points at, in no particular order.
func (r *Record) References() []Key {
	var out []Key
	for _, v := range r.Fields {
		out = v.References(out)
	}
	return out
}
