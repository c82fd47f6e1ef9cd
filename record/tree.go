package record

import "encoding/json"

// CloneTree deep copies a decoded response tree made of maps, slices and
// JSON primitives. Values of other types are returned as-is.
func CloneTree(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[k] = CloneTree(child)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = CloneTree(child)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

func estimateSize(v any) int {
	switch t := v.(type) {
	case nil:
		return 4
	case bool:
		return 1
	case string:
		return len(t)
	case json.Number:
		return len(t)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return 8
	case map[string]any:
		n := 2
		for k, child := range t {
			n += len(k) + estimateSize(child)
		}
		return n
	case []any:
		n := 2
		for _, child := range t {
			n += estimateSize(child)
		}
		return n
	case []string:
		n := 2
		for _, s := range t {
			n += len(s)
		}
		return n
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return 16
		}
		return len(b)
	}
}
