package settings

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	ErrUnknownField = errors.New("unknown settings field")
	ErrInvalidLevel = errors.New("invalid error correction level")
)

// MaxDataLength caps the encoded content, in characters.
const MaxDataLength = 2000

// Field names a settings field as it appears in forms and query strings.
type Field string

const (
	FieldData         Field = "data"
	FieldFgColor      Field = "fgColor"
	FieldBgColor      Field = "bgColor"
	FieldBorderColor  Field = "borderColor"
	FieldLevel        Field = "level"
	FieldSize         Field = "size"
	FieldQuietZone    Field = "quietZone"
	FieldLogoWidth    Field = "logoWidth"
	FieldLogoHeight   Field = "logoHeight"
	FieldLogoExcavate Field = "logoExcavate"
	FieldPadding      Field = "padding"
	FieldBorderRadius Field = "borderRadius"
	FieldBorderWidth  Field = "borderWidth"
)

// Fields lists every field Sanitize accepts, in form order.
var Fields = []Field{
	FieldData, FieldLevel, FieldFgColor, FieldBgColor, FieldSize, FieldQuietZone,
	FieldPadding, FieldBorderWidth, FieldBorderRadius, FieldBorderColor,
	FieldLogoWidth, FieldLogoHeight, FieldLogoExcavate,
}

// Bounds is an inclusive integer range.
type Bounds struct {
	Min, Max int
}

var numericBounds = map[Field]Bounds{
	FieldSize:         {50, 1000},
	FieldQuietZone:    {0, 40},
	FieldLogoWidth:    {10, 200},
	FieldLogoHeight:   {10, 200},
	FieldPadding:      {0, 100},
	FieldBorderRadius: {0, 150},
	FieldBorderWidth:  {0, 50},
}

// BoundsOf returns the range of a numeric field.
func BoundsOf(f Field) (Bounds, bool) {
	b, ok := numericBounds[f]
	return b, ok
}

// IsNumeric reports whether f is clamped into a range.
func (f Field) IsNumeric() bool {
	_, ok := numericBounds[f]
	return ok
}

// Update is a single sanitized field change. Build one with Sanitize or
// Clamp; the zero value changes nothing.
type Update struct {
	Field  Field
	text   string
	number int
	flag   bool
}

// Value returns the sanitized value as an int, bool or string.
func (u Update) Value() any {
	switch {
	case u.Field.IsNumeric():
		return u.number
	case u.Field == FieldLogoExcavate:
		return u.flag
	}
	return u.text
}

// Sanitize turns raw user input for field into an update that is safe to apply.
// Numbers that do not parse count as 0 and every number is clamped, so the only
// errors are an unknown field or an unknown error-correction level.
func Sanitize(field Field, raw string) (Update, error) {
	u := Update{Field: field}
	switch field {
	case FieldData:
		u.text = truncate(raw, MaxDataLength)
	case FieldFgColor, FieldBgColor, FieldBorderColor:
		u.text = raw
	case FieldLevel:
		l, err := ParseLevel(raw)
		if err != nil {
			return Update{}, err
		}
		u.text = string(l)
	case FieldLogoExcavate:
		u.flag = parseCheckbox(raw)
	default:
		if !field.IsNumeric() {
			return Update{}, fmt.Errorf("%w: %q", ErrUnknownField, field)
		}
		return Clamp(field, parseNumber(raw))
	}
	return u, nil
}

// Clamp builds a numeric update, snapping v into the field's bounds.
func Clamp(field Field, v float64) (Update, error) {
	b, ok := numericBounds[field]
	if !ok {
		return Update{}, fmt.Errorf("%w: %q is not numeric", ErrUnknownField, field)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	v = math.Max(float64(b.Min), math.Min(float64(b.Max), math.Round(v)))
	return Update{Field: field, number: int(v)}, nil
}

func parseNumber(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseCheckbox(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "true", "1", "yes", "checked":
		return true
	}
	return false
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
