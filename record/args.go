package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// FieldKey returns the storage key of a field invoked with args: the bare
// name when there are no arguments, name(<args as JSON>) otherwise, e.g.
// hero({"episode":"JEDI"}). Object members are ordered by key at every depth.
func FieldKey(name string, args map[string]any) (string, error) {
	if len(args) == 0 {
		return name, nil
	}
	var buf bytes.Buffer
	buf.WriteString(name)
	buf.WriteByte('(')
	if err := writeArg(&buf, args); err != nil {
		return "", fmt.Errorf("record: arguments of %q: %w", name, err)
	}
	buf.WriteByte(')')
	return buf.String(), nil
}

func writeArg(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case map[string]any:
		buf.WriteByte('{')
		for i, k := range slices.Sorted(maps.Keys(val)) {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeArg(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeArg(buf, val[k]); err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
		}
		buf.WriteByte('}')
	case []any:
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeArg(buf, item); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return err
		}
		buf.Write(raw)
	}
	return nil
}
