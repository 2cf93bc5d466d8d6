package table

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies the type held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindText
)

// String returns the lowercase kind name used in config files and summaries.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	default:
		return "null"
	}
}

// ParseKind converts a kind name ("int", "float", "text") to a Kind.
func ParseKind(name string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "int", "integer":
		return KindInt, true
	case "float", "number":
		return KindFloat, true
	case "text", "string", "category", "categorical":
		return KindText, true
	}
	return KindNull, false
}

// Value is a single table cell.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
}

// Null returns the null value.
func Null() Value { return Value{} }

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a floating-point value. NaN is stored as null.
func Float(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}
	return Value{kind: KindFloat, f: f}
}

// Text returns a text value.
func Text(s string) Value { return Value{kind: KindText, s: s} }

// Kind returns the value kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsNumeric reports whether the value is an integer or float.
func (v Value) IsNumeric() bool { return v.kind == KindInt || v.kind == KindFloat }

// Float64 returns the numeric value as float64.
func (v Value) Float64() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	}
	return 0, false
}

// Int64 returns the integer payload of an int value.
func (v Value) Int64() (int64, bool) {
	if v.kind == KindInt {
		return v.i, true
	}
	return 0, false
}

// String formats the value the way it is written to CSV. Floats always keep
// a decimal point (2.0, not 2) and nulls are empty.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	case KindText:
		return v.s
	}
	return ""
}

// Key returns a string that is equal for equal values. Integers and integral
// floats share a key so 1 and 1.0 group together.
func (v Value) Key() string {
	switch v.kind {
	case KindInt:
		return "n:" + strconv.FormatInt(v.i, 10)
	case KindFloat:
		if v.f == math.Trunc(v.f) && math.Abs(v.f) < 1<<53 {
			return "n:" + strconv.FormatInt(int64(v.f), 10)
		}
		return "n:" + strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindText:
		return "s:" + v.s
	}
	return "null"
}

// Equal reports whether two values are equal. Numbers compare numerically.
func (v Value) Equal(o Value) bool {
	return v.Key() == o.Key()
}

// Compare orders values: numbers numerically, text by code point, numbers
// before text, nulls last.
func Compare(a, b Value) int {
	if a.kind == KindNull || b.kind == KindNull {
		switch {
		case a.kind == b.kind:
			return 0
		case a.kind == KindNull:
			return 1
		default:
			return -1
		}
	}
	af, aNum := a.Float64()
	bf, bNum := b.Float64()
	switch {
	case aNum && bNum:
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	case aNum:
		return -1
	case bNum:
		return 1
	}
	return strings.Compare(a.s, b.s)
}

// Parse infers the kind of a single raw cell. Empty strings are null.
func Parse(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Null()
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) {
		return Float(f)
	}
	return Text(raw)
}

// IsNaN reports whether raw spells a NaN ("NaN", "nan"), the missing
// marker written by dataframe exports.
func IsNaN(raw string) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	return err == nil && math.IsNaN(f)
}

// ParseAs converts a raw cell to the requested kind. ok is false when the
// cell cannot be represented in that kind. Empty and NaN cells are null
// in the numeric kinds.
func ParseAs(raw string, kind Kind) (Value, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || (kind != KindText && IsNaN(s)) {
		return Null(), true
	}
	switch kind {
	case KindInt:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Null(), false
		}
		return Int(i), true
	case KindFloat:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Null(), false
		}
		return Float(f), true
	case KindText:
		return Text(raw), true
	}
	return Null(), false
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if math.IsInf(f, 0) {
		return s
	}
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
