// Package attrs reads values back out of slog-style key/value slices, so a
// single attribute list can feed both a log line and an audit event.
package attrs

// ExtractString extracts a string value from a key-value attribute slice.
// The slice should be formatted as [key1, value1, key2, value2, ...].
// fmt.Stringer values are rendered. Returns empty string if the key is absent.
func ExtractString(attrs []any, key string) string {
	v, ok := lookup(attrs, key)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case interface{ String() string }:
		return s.String()
	default:
		return ""
	}
}

// ExtractUint64 extracts an unsigned integer. Any unsigned width and named
// unsigned types with a Uint64 conversion are accepted; other values yield 0.
func ExtractUint64(attrs []any, key string) uint64 {
	v, ok := lookup(attrs, key)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case uint64:
		return n
	case uint32:
		return uint64(n)
	case uint16:
		return uint64(n)
	case uint:
		return uint64(n)
	case interface{ Uint64() uint64 }:
		return n.Uint64()
	default:
		return 0
	}
}

func lookup(attrs []any, key string) (any, bool) {
	for i := 0; i < len(attrs)-1; i += 2 {
		k, ok := attrs[i].(string)
		if !ok {
			continue
		}
		if k == key {
			return attrs[i+1], true
		}
	}
	return nil, false
}
