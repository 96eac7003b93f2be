package mongo

import (
	"fmt"

	filter "github.com/krew-solutions/aip-filter-go/aipfilter/filter/domain"
)

// CoercionError is returned when a value cannot be stored in the Go type of a document field.
type CoercionError struct {
	Type string
	Kind filter.ValueKind
	Text string
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot coerce %s %q into %s", e.Kind, e.Text, e.Type)
}
