package filter

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/krew-solutions/aip-filter-go/aipfilter/filter/domain/syntax"
)

var datetimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ResolveMember resolves an argument member. A dotted member renders to bare text.
func ResolveMember(m *syntax.Member) (TypedValue, error) {
	if len(m.Fields) > 0 {
		return BareText(m.Text()), nil
	}
	return ResolveValue(m.Value)
}

// ResolveValue converts one literal node into a TypedValue.
func ResolveValue(n *syntax.Value) (TypedValue, error) {
	text := n.Text
	switch n.Kind {
	case syntax.KindInteger:
		return resolveInteger(text)
	case syntax.KindFloat:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return TypedValue{}, &LiteralParseError{Text: text, Kind: n.Kind, Err: err}
		}
		return Float64(f).withRaw(text), nil
	case syntax.KindBoolean:
		switch text {
		case "true":
			return Bool(true).withRaw(text), nil
		case "false":
			return Bool(false).withRaw(text), nil
		}
		return TypedValue{}, &LiteralParseError{Text: text, Kind: n.Kind, Err: errors.New("expected true or false")}
	case syntax.KindDuration:
		seconds, err := strconv.ParseFloat(strings.TrimSuffix(text, "s"), 64)
		if err != nil {
			return TypedValue{}, &LiteralParseError{Text: text, Kind: n.Kind, Err: err}
		}
		return DurationMillis(seconds * 1000).withRaw(text), nil
	case syntax.KindDatetime:
		t, err := ParseDatetime(text)
		if err != nil {
			return TypedValue{}, &LiteralParseError{Text: text, Kind: n.Kind, Err: err}
		}
		return UtcInstant(t).withRaw(text), nil
	case syntax.KindString:
		return StringLiteral(unquote(text)).withRaw(text), nil
	case syntax.KindAsterisk:
		return WildcardMarker(text), nil
	case syntax.KindText:
		return BareText(text), nil
	}
	return TypedValue{}, &LiteralParseError{Text: text, Kind: n.Kind, Err: errors.Errorf("unknown literal kind %q", n.Kind)}
}

func resolveInteger(text string) (TypedValue, error) {
	i, err := strconv.ParseInt(text, 10, 32)
	if err == nil {
		return Integer32(int32(i)).withRaw(text), nil
	}
	if errors.Is(err, strconv.ErrRange) {
		i, err = strconv.ParseInt(text, 10, 64)
		if err == nil {
			return Integer64(i).withRaw(text), nil
		}
	}
	return TypedValue{}, &LiteralParseError{Text: text, Kind: syntax.KindInteger, Err: err}
}

// ParseDatetime accepts RFC 3339 with or without offset and bare dates.
// A missing offset means UTC.
func ParseDatetime(text string) (time.Time, error) {
	normalized := strings.ToUpper(text)
	var lastErr error
	for _, layout := range datetimeLayouts {
		t, err := time.ParseInLocation(layout, normalized, time.UTC)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// unquote strips exactly one layer of surrounding double quotes.
func unquote(text string) string {
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		return text[1 : len(text)-1]
	}
	return text
}
