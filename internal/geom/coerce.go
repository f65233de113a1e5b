// Package geom repairs geometry payloads arriving from the query backend.
//
// Backends that deep-clone GeoJSON through a naive serialize/deserialize
// round trip can deliver coordinate arrays as objects with stringified
// integer keys ({"0": ..., "1": ...}). Coerce rebuilds those into ordered
// slices so the payload can be decoded as regular GeoJSON again.
package geom

import (
	"strconv"
)

// Coerce recursively normalizes a decoded JSON value so that every
// index-keyed object becomes a true ordered slice. Scalars and nil pass
// through unchanged, slices recurse element-wise preserving order, and
// non-indexed objects recurse key-wise into a new map. The input is never
// mutated.
//
// Coerce is idempotent: a value that is already properly array-shaped
// comes back deep-equal to itself.
func Coerce(raw any) any {
	switch v := raw.(type) {
	case nil:
		return nil
	case []any:
		out := make([]any, len(v))
		for i, el := range v {
			out[i] = Coerce(el)
		}
		return out
	case map[string]any:
		if n, ok := indexKeyed(v); ok {
			out := make([]any, n)
			for key, el := range v {
				i, _ := strconv.Atoi(key)
				out[i] = Coerce(el)
			}
			return out
		}
		out := make(map[string]any, len(v))
		for key, el := range v {
			out[key] = Coerce(el)
		}
		return out
	default:
		// Numbers, strings, bools.
		return raw
	}
}

// indexKeyed reports whether every key of m is a canonical decimal index
// ("0", "1", ... without leading zeros), returning the implied slice length
// (highest index + 1). Missing intermediate indices become nil holes in the
// rebuilt slice.
func indexKeyed(m map[string]any) (int, bool) {
	if len(m) == 0 {
		return 0, false
	}
	max := -1
	for key := range m {
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || strconv.Itoa(i) != key {
			return 0, false
		}
		if i > max {
			max = i
		}
	}
	return max + 1, true
}
