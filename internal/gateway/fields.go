package gateway

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Fields is the body of a document. Values are strings, numbers, booleans or
// times; backends may hand numbers back as any numeric type.
type Fields map[string]any

// String returns the string value of key, or "".
func (f Fields) String(key string) string {
	switch v := f[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Int returns the integer value of key, or 0.
func (f Fields) Int(key string) int {
	switch v := f[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(math.Round(v))
	case float32:
		return int(math.Round(float64(v)))
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}

// Time returns the time value of key, or the zero time.
func (f Fields) Time(key string) time.Time {
	switch v := f[key].(type) {
	case time.Time:
		return v.UTC()
	case string:
		for _, layout := range []string{TimeLayout, time.RFC3339Nano} {
			if t, err := time.Parse(layout, v); err == nil {
				return t.UTC()
			}
		}
	}
	return time.Time{}
}

// Clone returns a shallow copy.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// normalize converts time values to TimeLayout strings so every backend stores
// the same representation.
func normalize(f Fields) Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		if t, ok := v.(time.Time); ok {
			v = FormatTime(t)
		}
		out[k] = v
	}
	return out
}

// Normalize is exported for backends outside this package.
func Normalize(f Fields) Fields { return normalize(f) }
