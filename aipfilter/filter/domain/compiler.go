package filter

import (
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/krew-solutions/aip-filter-go/aipfilter/filter/domain/syntax"
)

type options struct {
	logger *zap.Logger
}

type Option func(*options)

// WithLogger sets the logger compiled filters and failures are reported to at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Compiler translates parse trees into predicates through an adapter.
type Compiler[P any] struct {
	adapter Adapter[P]
	backend string
	logger  *zap.Logger
}

// NewCompiler returns a compiler emitting predicates through adapter.
func NewCompiler[P any](adapter Adapter[P], opts ...Option) *Compiler[P] {
	o := options{logger: zap.NewNop()}
	for i := range opts {
		opts[i](&o)
	}
	backend := backendName(adapter)
	return &Compiler[P]{
		adapter: adapter,
		backend: backend,
		logger:  o.logger.With(zap.String("backend", backend)),
	}
}

// Compile is a shortcut for NewCompiler(adapter, opts...).CompileString(filter).
func Compile[P any](adapter Adapter[P], filter string, opts ...Option) (Result[P], error) {
	return NewCompiler(adapter, opts...).CompileString(filter)
}

// CompileString parses and compiles filter text.
func (c *Compiler[P]) CompileString(filter string) (Result[P], error) {
	expr, err := syntax.Parse(filter)
	if err != nil {
		c.logger.Debug("filter parsing failed", zap.String("filter", filter), zap.Error(err))
		return Result[P]{}, errors.Wrap(err, "parse filter")
	}
	return c.Compile(expr)
}

// Compile translates a parse tree. The first error aborts compilation.
func (c *Compiler[P]) Compile(expr *syntax.Expression) (Result[P], error) {
	if expr == nil || len(expr.Sequences) == 0 {
		return Result[P]{}, syntax.ErrEmptyFilter
	}
	p, err := c.expression(expr, c.restriction)
	if err != nil {
		c.logger.Debug("filter compilation failed", zap.Stringer("filter", expr), zap.Error(err))
		return Result[P]{}, err
	}
	c.logger.Debug("filter compiled", zap.Stringer("filter", expr))
	return NewResult(c.backend, p), nil
}

// restrictionFunc compiles a leaf restriction. Composite arguments swap it
// for one bound to the outer field and comparator.
type restrictionFunc[P any] func(*syntax.Restriction) (P, error)

func (c *Compiler[P]) expression(n *syntax.Expression, leaf restrictionFunc[P]) (P, error) {
	predicates := make([]P, 0, len(n.Sequences))
	for _, seq := range n.Sequences {
		p, err := c.sequence(seq, leaf)
		if err != nil {
			return p, err
		}
		predicates = append(predicates, p)
	}
	return c.fold(predicates, c.adapter.And)
}

func (c *Compiler[P]) sequence(n *syntax.Sequence, leaf restrictionFunc[P]) (P, error) {
	predicates := make([]P, 0, len(n.Factors))
	for _, factor := range n.Factors {
		p, err := c.factor(factor, leaf)
		if err != nil {
			return p, err
		}
		predicates = append(predicates, p)
	}
	return c.fold(predicates, c.adapter.And)
}

func (c *Compiler[P]) factor(n *syntax.Factor, leaf restrictionFunc[P]) (P, error) {
	predicates := make([]P, 0, len(n.Terms))
	for _, term := range n.Terms {
		p, err := c.term(term, leaf)
		if err != nil {
			return p, err
		}
		predicates = append(predicates, p)
	}
	return c.fold(predicates, c.adapter.Or)
}

func (c *Compiler[P]) fold(predicates []P, combine func([]P) (P, error)) (P, error) {
	if len(predicates) == 1 {
		return predicates[0], nil
	}
	return combine(predicates)
}

func (c *Compiler[P]) term(n *syntax.Term, leaf restrictionFunc[P]) (P, error) {
	p, err := c.simple(n.Simple, leaf)
	if err != nil || !n.Negated {
		return p, err
	}
	return c.adapter.Not(p)
}

func (c *Compiler[P]) simple(n syntax.Simple, leaf restrictionFunc[P]) (P, error) {
	switch n := n.(type) {
	case *syntax.Restriction:
		return leaf(n)
	case *syntax.Composite:
		return c.expression(n.Expression, leaf)
	}
	var zero P
	return zero, errors.Errorf("unexpected node %T", n)
}

func (c *Compiler[P]) restriction(n *syntax.Restriction) (P, error) {
	var zero P
	field := n.Comparable.Text()
	if n.IsGlobal() {
		return zero, &UnsupportedRestrictionError{Field: field, Reason: "restriction has no comparator"}
	}
	comparator, err := ParseComparator(n.Comparator)
	if err != nil {
		return zero, err
	}
	switch arg := n.Arg.(type) {
	case *syntax.Member:
		value, err := ResolveMember(arg)
		if err != nil {
			return zero, errors.Wrapf(err, "restriction on %q", field)
		}
		return c.dispatch(field, comparator, value)
	case *syntax.Composite:
		return c.expression(arg.Expression, c.compositeArg(field, comparator))
	}
	return zero, errors.Errorf("unexpected argument %T", n.Arg)
}

// compositeArg compiles each bare value v of `field op (...)` as `field op v`.
func (c *Compiler[P]) compositeArg(field string, comparator Comparator) restrictionFunc[P] {
	return func(n *syntax.Restriction) (P, error) {
		var zero P
		if !n.IsGlobal() {
			return zero, &UnsupportedRestrictionError{
				Field:  field,
				Reason: "composite argument contains restriction " + n.String(),
			}
		}
		value, err := ResolveMember(n.Comparable)
		if err != nil {
			return zero, errors.Wrapf(err, "restriction on %q", field)
		}
		return c.dispatch(field, comparator, value)
	}
}

func (c *Compiler[P]) dispatch(field string, comparator Comparator, value TypedValue) (P, error) {
	var p P
	var err error
	switch comparator {
	case Eq:
		p, err = c.equality(field, value)
	case Lt:
		p, err = c.adapter.LessThan(field, value)
	case Lte:
		p, err = c.adapter.LessThanEquals(field, value)
	case Gte:
		p, err = c.adapter.GreaterThanEquals(field, value)
	case Gt:
		p, err = c.adapter.GreaterThan(field, value)
	case Ne:
		p, err = c.adapter.NotEquals(field, value)
	case Has:
		p, err = c.adapter.Has(field, value)
	default:
		return p, &UnsupportedComparatorError{Comparator: string(comparator)}
	}
	if err != nil {
		return p, errors.Wrapf(err, "%s %s %s", field, comparator, value)
	}
	return p, nil
}

// equality turns `field = "abc*"` into a prefix search and `field = "*abc"`
// into a suffix search. Any other use of '*' is matched literally.
func (c *Compiler[P]) equality(field string, value TypedValue) (P, error) {
	if text, ok := value.Text(); ok && value.IsText() && len(text) > 1 && strings.Count(text, "*") == 1 {
		switch {
		case strings.HasSuffix(text, "*"):
			return c.adapter.PrefixSearch(field, text)
		case strings.HasPrefix(text, "*"):
			return c.adapter.SuffixSearch(field, text)
		}
	}
	return c.adapter.Equality(field, value)
}
