package cache

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrDecode indicates a cached payload could not be decoded into the
// requested type.
var ErrDecode = errors.New("cache: cannot decode cached value")

// Value is the tagged result of a cache lookup. A payload that parses as
// JSON is held in structured form; anything else is held as the raw string
// exactly as stored. Malformed-looking payloads are opaque strings, never
// errors.
type Value struct {
	raw    string
	parsed any
	isJSON bool
}

// NewValue interprets a stored payload the way a lookup would.
func NewValue(payload string) *Value {
	return decode(payload)
}

// decode interprets a stored payload. Structured parse first, raw string
// fallback.
func decode(payload string) *Value {
	v := &Value{raw: payload}
	var parsed any
	if err := json.Unmarshal([]byte(payload), &parsed); err == nil {
		v.parsed = parsed
		v.isJSON = true
	}
	return v
}

// Raw returns the stored payload verbatim.
func (v *Value) Raw() string {
	return v.raw
}

// IsJSON reports whether the payload parsed as structured data.
func (v *Value) IsJSON() bool {
	return v.isJSON
}

// Interface returns the structured form when the payload parsed as JSON,
// otherwise the raw string.
func (v *Value) Interface() any {
	if v.isJSON {
		return v.parsed
	}
	return v.raw
}

// Decode unmarshals the payload into dst. A non-JSON payload can only be
// decoded into a *string.
func (v *Value) Decode(dst any) error {
	if err := json.Unmarshal([]byte(v.raw), dst); err == nil {
		return nil
	}
	if s, ok := dst.(*string); ok {
		*s = v.raw
		return nil
	}
	return fmt.Errorf("%w into %T", ErrDecode, dst)
}

// encode serializes a value for storage. Strings and byte slices are stored
// verbatim (no double-encoding); everything else is JSON-encoded.
func encode(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return "", fmt.Errorf("marshal cache value: %w", err)
		}
		return string(data), nil
	}
}
