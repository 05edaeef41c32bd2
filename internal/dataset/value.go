package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/spf13/cast"
)

// Kind enumerates the scalar kinds a cell can hold.
type Kind uint8

const (
	KindNull Kind = iota
	KindNumber
	KindString
	KindTime
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Value is a single cell. The zero Value is Null.
type Value struct {
	kind Kind
	num  float64
	str  string
	t    time.Time
	b    bool
}

// Null returns the empty value.
func Null() Value { return Value{} }

// Number wraps a float. NaN and infinities are kept as-is; callers decide
// whether they count.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// String wraps a string. The empty string is kept distinct from Null.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Time wraps an instant.
func Time(t time.Time) Value { return Value{kind: KindTime, t: t} }

// Bool wraps a boolean. false is falsy when grouping chart data.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// FromAny converts decoded JSON or parser output into a Value.
// Booleans keep their kind; other scalars are stringified and objects and
// arrays are kept as their JSON text.
func FromAny(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case string:
		return String(x)
	case bool:
		return Bool(x)
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return Number(cast.ToFloat64(x))
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return Number(f)
		}
		return String(x.String())
	case time.Time:
		return Time(x)
	case map[string]any, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return String(fmt.Sprint(x))
		}
		return String(string(b))
	default:
		s, err := cast.ToStringE(x)
		if err != nil {
			return String(fmt.Sprint(x))
		}
		return String(s)
	}
}

func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v holds no value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsEmpty reports whether v is Null or the empty string. Whitespace is not empty.
func (v Value) IsEmpty() bool {
	return v.kind == KindNull || (v.kind == KindString && v.str == "")
}

// Float returns the number held by v.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Text returns the string held by v.
func (v Value) Text() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// Boolean returns the bool held by v.
func (v Value) Boolean() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// Instant returns the time held by v.
func (v Value) Instant() (time.Time, bool) {
	if v.kind != KindTime {
		return time.Time{}, false
	}
	return v.t, true
}

// String renders v the way it is compared in filters and used as a group key.
// Null renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return FormatNumber(v.num)
	case KindString:
		return v.str
	case KindTime:
		return v.t.Format(time.RFC3339)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num || (math.IsNaN(v.num) && math.IsNaN(o.num))
	case KindString:
		return v.str == o.str
	case KindTime:
		return v.t.Equal(o.t)
	case KindBool:
		return v.b == o.b
	default:
		return true
	}
}

// FormatNumber renders f without exponent for the common range, matching
// how numbers print in the browser.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// MarshalJSON encodes non-finite numbers as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.num)
	case KindString:
		return json.Marshal(v.str)
	case KindTime:
		return json.Marshal(v.t.Format(time.RFC3339Nano))
	case KindBool:
		return json.Marshal(v.b)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts any JSON value. Times arrive as strings.
func (v *Value) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode value: %w", err)
	}
	*v = FromAny(raw)
	return nil
}
