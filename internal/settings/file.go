package settings

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Decode reads a YAML mapping of field names to values and applies it on top
// of the defaults. Every value goes through the same sanitizing as form
// input; numbers written as YAML numbers are clamped directly.
func Decode(r io.Reader) (Settings, error) {
	s := Default()
	var raw map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return s, fmt.Errorf("decode settings: %w", err)
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		f := Field(k)
		var (
			u   Update
			err error
		)
		switch v := raw[k].(type) {
		case int:
			u, err = numberUpdate(f, float64(v))
		case float64:
			u, err = numberUpdate(f, v)
		case bool:
			u, err = Sanitize(f, strconv.FormatBool(v))
		case string:
			u, err = Sanitize(f, v)
		case nil:
			u, err = Sanitize(f, "")
		default:
			err = fmt.Errorf("unsupported value %v", v)
		}
		if err != nil {
			return s, fmt.Errorf("field %s: %w", k, err)
		}
		s = s.With(u)
	}
	return s, nil
}

func numberUpdate(f Field, v float64) (Update, error) {
	if f.IsNumeric() {
		return Clamp(f, v)
	}
	return Sanitize(f, strconv.FormatFloat(v, 'f', -1, 64))
}
