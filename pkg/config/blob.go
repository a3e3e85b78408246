package config

import (
	"fmt"
	"time"
)

// Blob is a free-form configuration section as decoded from TOML or YAML.
// Numbers may arrive as any Go numeric type depending on the decoder, so the
// accessors normalize them. Every accessor returns def when the key is absent.
type Blob map[string]any

// String returns the string at key.
func (b Blob) String(key, def string) (string, error) {
	v, ok := b[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return def, typeError(key, "string", v)
	}
	return s, nil
}

// Bool returns the boolean at key.
func (b Blob) Bool(key string, def bool) (bool, error) {
	v, ok := b[key]
	if !ok || v == nil {
		return def, nil
	}
	x, ok := v.(bool)
	if !ok {
		return def, typeError(key, "bool", v)
	}
	return x, nil
}

// Float returns the number at key.
func (b Blob) Float(key string, def float64) (float64, error) {
	v, ok := b[key]
	if !ok || v == nil {
		return def, nil
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	}
	return def, typeError(key, "number", v)
}

// Int returns the integer at key. Floats with a fractional part are rejected.
func (b Blob) Int(key string, def int) (int, error) {
	f, err := b.Float(key, float64(def))
	if err != nil {
		return def, err
	}
	if f != float64(int(f)) {
		return def, fmt.Errorf("%s: expected integer, got %v", key, f)
	}
	return int(f), nil
}

// Duration returns the duration at key, written as a Go duration string
// ("8s", "1m30s"). A bare number is read as seconds.
func (b Blob) Duration(key string, def time.Duration) (time.Duration, error) {
	v, ok := b[key]
	if !ok || v == nil {
		return def, nil
	}
	if s, ok := v.(string); ok {
		d, err := time.ParseDuration(s)
		if err != nil {
			return def, fmt.Errorf("%s: %w", key, err)
		}
		return d, nil
	}
	f, err := b.Float(key, 0)
	if err != nil {
		return def, typeError(key, "duration", v)
	}
	return time.Duration(f * float64(time.Second)), nil
}

// Strings returns the string list at key.
func (b Blob) Strings(key string) ([]string, error) {
	v, ok := b[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch x := v.(type) {
	case []string:
		return x, nil
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				return nil, typeError(key, "string list", v)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, typeError(key, "string list", v)
}

// Section returns the nested table at key.
func (b Blob) Section(key string) (Blob, error) {
	v, ok := b[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch x := v.(type) {
	case map[string]any:
		return Blob(x), nil
	case Blob:
		return x, nil
	}
	return nil, typeError(key, "table", v)
}

func typeError(key, want string, got any) error {
	return fmt.Errorf("%s: expected %s, got %T", key, want, got)
}
