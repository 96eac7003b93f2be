package filter

import (
	"fmt"

	"github.com/krew-solutions/aip-filter-go/aipfilter/filter/domain/syntax"
)

// LiteralParseError is returned when literal text does not parse as its kind.
type LiteralParseError struct {
	Text string
	Kind syntax.ValueKind
	Err  error
}

func (e *LiteralParseError) Error() string {
	return fmt.Sprintf("cannot parse %q as %s: %v", e.Text, e.Kind, e.Err)
}

func (e *LiteralParseError) Unwrap() error {
	return e.Err
}

// UnsupportedComparatorError is returned for comparator text outside the supported set.
type UnsupportedComparatorError struct {
	Comparator string
}

func (e *UnsupportedComparatorError) Error() string {
	return fmt.Sprintf("unsupported comparator %q", e.Comparator)
}

// TypeMismatchError is returned when a result is requested in a representation it does not hold.
type TypeMismatchError struct {
	Want string
	Have string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("result holds %s, not %s", e.Have, e.Want)
}

// UnsupportedRestrictionError is returned for restrictions the adapter capability set cannot express.
type UnsupportedRestrictionError struct {
	Field  string
	Reason string
}

func (e *UnsupportedRestrictionError) Error() string {
	return fmt.Sprintf("unsupported restriction on %q: %s", e.Field, e.Reason)
}
