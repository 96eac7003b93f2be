package filter

import (
	"fmt"
	"strconv"
	"time"
)

// ValueKind is the active variant of a TypedValue.
type ValueKind int

const (
	KindInteger32 ValueKind = iota + 1
	KindInteger64
	KindFloat64
	KindBool
	KindUtcInstant
	KindDurationMillis
	KindStringLiteral
	KindWildcardMarker
	KindBareText
)

var kindNames = map[ValueKind]string{
	KindInteger32:      "integer32",
	KindInteger64:      "integer64",
	KindFloat64:        "float64",
	KindBool:           "bool",
	KindUtcInstant:     "utc instant",
	KindDurationMillis: "duration millis",
	KindStringLiteral:  "string",
	KindWildcardMarker: "wildcard",
	KindBareText:       "text",
}

func (k ValueKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ValueKind(%d)", int(k))
}

// TypedValue is a resolved literal. Exactly one variant is active.
type TypedValue struct {
	kind ValueKind
	raw  string
	i    int64
	f    float64
	b    bool
	t    time.Time
	s    string
}

func Integer32(v int32) TypedValue {
	return TypedValue{kind: KindInteger32, raw: strconv.FormatInt(int64(v), 10), i: int64(v)}
}

func Integer64(v int64) TypedValue {
	return TypedValue{kind: KindInteger64, raw: strconv.FormatInt(v, 10), i: v}
}

func Float64(v float64) TypedValue {
	return TypedValue{kind: KindFloat64, raw: strconv.FormatFloat(v, 'g', -1, 64), f: v}
}

func Bool(v bool) TypedValue {
	return TypedValue{kind: KindBool, raw: strconv.FormatBool(v), b: v}
}

func UtcInstant(v time.Time) TypedValue {
	v = v.UTC()
	return TypedValue{kind: KindUtcInstant, raw: v.Format(time.RFC3339Nano), t: v}
}

func DurationMillis(ms float64) TypedValue {
	return TypedValue{kind: KindDurationMillis, raw: strconv.FormatFloat(ms/1000, 'g', -1, 64) + "s", f: ms}
}

func StringLiteral(v string) TypedValue {
	return TypedValue{kind: KindStringLiteral, raw: strconv.Quote(v), s: v}
}

func WildcardMarker(pattern string) TypedValue {
	return TypedValue{kind: KindWildcardMarker, raw: pattern, s: pattern}
}

func BareText(v string) TypedValue {
	return TypedValue{kind: KindBareText, raw: v, s: v}
}

func (v TypedValue) withRaw(raw string) TypedValue {
	v.raw = raw
	return v
}

// Kind returns the active variant.
func (v TypedValue) Kind() ValueKind {
	return v.kind
}

// Raw returns the literal text the value was resolved from.
func (v TypedValue) Raw() string {
	return v.raw
}

// IsText reports whether the value is a string literal or bare text.
func (v TypedValue) IsText() bool {
	return v.kind == KindStringLiteral || v.kind == KindBareText
}

// IsInteger reports whether the value is a 32 or 64 bit integer.
func (v TypedValue) IsInteger() bool {
	return v.kind == KindInteger32 || v.kind == KindInteger64
}

// Int64 returns integer variants widened to 64 bits.
func (v TypedValue) Int64() (int64, bool) {
	if !v.IsInteger() {
		return 0, false
	}
	return v.i, true
}

// Float returns numeric variants as float64. Durations yield milliseconds.
func (v TypedValue) Float() (float64, bool) {
	switch v.kind {
	case KindInteger32, KindInteger64:
		return float64(v.i), true
	case KindFloat64, KindDurationMillis:
		return v.f, true
	}
	return 0, false
}

// Duration converts a DurationMillis value.
func (v TypedValue) Duration() (time.Duration, bool) {
	if v.kind != KindDurationMillis {
		return 0, false
	}
	return time.Duration(v.f * float64(time.Millisecond)), true
}

// Time returns the instant of a UtcInstant value.
func (v TypedValue) Time() (time.Time, bool) {
	if v.kind != KindUtcInstant {
		return time.Time{}, false
	}
	return v.t, true
}

// Text returns the content of string, wildcard and bare text values.
func (v TypedValue) Text() (string, bool) {
	switch v.kind {
	case KindStringLiteral, KindWildcardMarker, KindBareText:
		return v.s, true
	}
	return "", false
}

// Native returns the value as a plain Go value:
// int32, int64, float64, bool, time.Time or string.
func (v TypedValue) Native() any {
	switch v.kind {
	case KindInteger32:
		return int32(v.i)
	case KindInteger64:
		return v.i
	case KindFloat64, KindDurationMillis:
		return v.f
	case KindBool:
		return v.b
	case KindUtcInstant:
		return v.t
	case KindStringLiteral, KindWildcardMarker, KindBareText:
		return v.s
	}
	return nil
}

func (v TypedValue) String() string {
	return v.raw
}
