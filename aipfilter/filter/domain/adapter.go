package filter

import (
	"fmt"
	"reflect"
	"strings"
)

// Adapter builds backend-native predicates of type P.
// Every call returns a new predicate and leaves its inputs untouched.
type Adapter[P any] interface {
	And(predicates []P) (P, error)
	Or(predicates []P) (P, error)
	Not(predicate P) (P, error)

	// PrefixSearch receives the literal with its trailing '*'.
	PrefixSearch(field string, literal string) (P, error)
	// SuffixSearch receives the literal with its leading '*'.
	SuffixSearch(field string, literal string) (P, error)

	LessThan(field string, value TypedValue) (P, error)
	LessThanEquals(field string, value TypedValue) (P, error)
	GreaterThan(field string, value TypedValue) (P, error)
	GreaterThanEquals(field string, value TypedValue) (P, error)
	NotEquals(field string, value TypedValue) (P, error)
	Equality(field string, value TypedValue) (P, error)

	// Has is membership of value in the collection field, never a substring test.
	Has(field string, value TypedValue) (P, error)
}

// Named is implemented by adapters that report a backend name.
type Named interface {
	Name() string
}

// PrefixPattern strips exactly one trailing wildcard marker.
func PrefixPattern(literal string) string {
	return strings.TrimSuffix(literal, "*")
}

// SuffixPattern strips exactly one leading wildcard marker.
func SuffixPattern(literal string) string {
	return strings.TrimPrefix(literal, "*")
}

// AnyResult is a compiled filter with its representation erased.
type AnyResult interface {
	Backend() string
	value() any
}

// Result holds a compiled predicate together with the backend that produced it.
type Result[P any] struct {
	backend   string
	predicate P
}

// NewResult wraps a predicate produced by the named backend.
func NewResult[P any](backend string, predicate P) Result[P] {
	return Result[P]{backend: backend, predicate: predicate}
}

func (r Result[P]) Predicate() P {
	return r.predicate
}

func (r Result[P]) Backend() string {
	return r.backend
}

func (r Result[P]) value() any {
	return r.predicate
}

// As extracts the predicate of an erased result as T.
func As[T any](r AnyResult) (T, error) {
	var zero T
	if r == nil {
		return zero, &TypeMismatchError{Want: typeName[T](), Have: "nothing"}
	}
	v, ok := r.value().(T)
	if !ok {
		return zero, &TypeMismatchError{Want: typeName[T](), Have: fmt.Sprintf("%T", r.value())}
	}
	return v, nil
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}

func backendName(adapter any) string {
	if n, ok := adapter.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", adapter)
}
