package frame

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the payload carried by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindDate
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "unknown"
	}
}

// Value is a single identifier cell. The zero Value is null, which is
// distinct from the empty string and from zero.
type Value struct {
	kind Kind
	s    string
	n    float64
	d    time.Time
}

// Null returns the missing-value marker.
func Null() Value {
	return Value{}
}

// String returns a string cell.
func String(s string) Value {
	return Value{kind: KindString, s: s}
}

// Number returns a numeric cell.
func Number(f float64) Value {
	return Value{kind: KindNumber, n: f}
}

// Date returns a date cell truncated to the calendar day.
func Date(t time.Time) Value {
	return Value{kind: KindDate, d: Day(t)}
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// D builds a date from its parts. Handy in tests and examples.
func D(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Kind returns the payload kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the missing-value marker.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the string payload, or "" for other kinds.
func (v Value) Str() string { return v.s }

// Float returns the numeric payload, or NaN for other kinds.
func (v Value) Float() float64 {
	if v.kind != KindNumber {
		return math.NaN()
	}
	return v.n
}

// Time returns the date payload, or the zero time for other kinds.
func (v Value) Time() time.Time { return v.d }

// String renders the value for display. Null renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindNumber:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	case KindDate:
		return v.d.Format(DateFormat)
	default:
		return ""
	}
}

// Equal reports whether two values have the same kind and payload.
// Two nulls are equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.s == o.s
	case KindNumber:
		return v.n == o.n || (math.IsNaN(v.n) && math.IsNaN(o.n))
	case KindDate:
		return v.d.Equal(o.d)
	default:
		return true
	}
}

// Compare orders values by kind and then payload. Nulls sort last.
func Compare(a, b Value) int {
	if a.kind != b.kind {
		switch {
		case a.kind == KindNull:
			return 1
		case b.kind == KindNull:
			return -1
		case a.kind < b.kind:
			return -1
		default:
			return 1
		}
	}
	switch a.kind {
	case KindString:
		return strings.Compare(a.s, b.s)
	case KindNumber:
		switch {
		case a.n < b.n:
			return -1
		case a.n > b.n:
			return 1
		}
		return 0
	case KindDate:
		return a.d.Compare(b.d)
	default:
		return 0
	}
}

// appendKey writes a collision-free encoding of v. Null gets its own
// placeholder so null cells group together instead of being dropped.
func (v Value) appendKey(b *strings.Builder) {
	switch v.kind {
	case KindNull:
		b.WriteString("N|")
	case KindString:
		b.WriteByte('S')
		b.WriteString(strconv.Itoa(len(v.s)))
		b.WriteByte(':')
		b.WriteString(v.s)
	case KindNumber:
		n := v.n
		if n == 0 {
			n = 0 // -0 groups with 0
		}
		b.WriteByte('F')
		b.WriteString(strconv.FormatFloat(n, 'g', -1, 64))
		b.WriteByte('|')
	case KindDate:
		b.WriteByte('D')
		b.WriteString(v.d.Format(DateFormat))
		b.WriteByte('|')
	}
}
