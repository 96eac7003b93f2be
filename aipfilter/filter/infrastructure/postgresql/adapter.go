// Package postgresql builds parameterized PostgreSQL WHERE fragments from AIP-160 filters.
package postgresql

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	filter "github.com/krew-solutions/aip-filter-go/aipfilter/filter/domain"
)

const BackendName = "postgresql"

// Clause is a boolean SQL expression with its named arguments.
// It can be passed to pgx as `query, clause.Args`.
type Clause struct {
	SQL        string
	Args       pgx.NamedArgs
	precedence int
}

func (c Clause) String() string {
	return c.SQL
}

type Option func(*Adapter)

// WithColumnMapping maps filter field paths to column names.
// Unmapped fields are used as is, dots separating qualifiers.
func WithColumnMapping(columns map[string]string) Option {
	return func(a *Adapter) {
		for field, column := range columns {
			a.columns[field] = column
		}
	}
}

// WithPlaceholderPrefix sets the argument name prefix, "p" by default.
func WithPlaceholderPrefix(prefix string) Option {
	return func(a *Adapter) {
		a.placeholderPrefix = prefix
	}
}

// Adapter builds Clause predicates. It numbers arguments, so one instance
// serves one filter at a time.
type Adapter struct {
	placeholderPrefix string
	placeholderIndex  int
	columns           map[string]string
	precedenceMapping map[string]int
}

var _ filter.Adapter[Clause] = (*Adapter)(nil)

func NewAdapter(opts ...Option) *Adapter {
	a := &Adapter{
		placeholderPrefix: "p",
		columns:           make(map[string]string),
		precedenceMapping: make(map[string]int),
	}
	// https://www.postgresql.org/docs/14/sql-syntax-lexical.html#SQL-PRECEDENCE-TABLE
	a.setPrecedence(90, "LIKE")
	a.setPrecedence(80, "<", ">", "=", "<=", ">=", "<>")
	a.setPrecedence(60, "NOT")
	a.setPrecedence(50, "AND")
	a.setPrecedence(40, "OR")
	for i := range opts {
		opts[i](a)
	}
	return a
}

func (a *Adapter) setPrecedence(precedence int, operators ...string) {
	for _, op := range operators {
		a.precedenceMapping[op] = precedence
	}
}

func (a *Adapter) Name() string {
	return BackendName
}

func (a *Adapter) And(predicates []Clause) (Clause, error) {
	return a.combine("AND", predicates)
}

func (a *Adapter) Or(predicates []Clause) (Clause, error) {
	return a.combine("OR", predicates)
}

func (a *Adapter) Not(predicate Clause) (Clause, error) {
	precedence := a.precedenceMapping["NOT"]
	return Clause{
		SQL:        "NOT " + wrap(predicate, precedence),
		Args:       merge(predicate),
		precedence: precedence,
	}, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (a *Adapter) PrefixSearch(field string, literal string) (Clause, error) {
	return a.like(field, likeEscaper.Replace(filter.PrefixPattern(literal))+"%")
}

func (a *Adapter) SuffixSearch(field string, literal string) (Clause, error) {
	return a.like(field, "%"+likeEscaper.Replace(filter.SuffixPattern(literal)))
}

func (a *Adapter) LessThan(field string, value filter.TypedValue) (Clause, error) {
	return a.compare(field, "<", value)
}

func (a *Adapter) LessThanEquals(field string, value filter.TypedValue) (Clause, error) {
	return a.compare(field, "<=", value)
}

func (a *Adapter) GreaterThan(field string, value filter.TypedValue) (Clause, error) {
	return a.compare(field, ">", value)
}

func (a *Adapter) GreaterThanEquals(field string, value filter.TypedValue) (Clause, error) {
	return a.compare(field, ">=", value)
}

func (a *Adapter) NotEquals(field string, value filter.TypedValue) (Clause, error) {
	return a.compare(field, "<>", value)
}

func (a *Adapter) Equality(field string, value filter.TypedValue) (Clause, error) {
	return a.compare(field, "=", value)
}

// Has tests membership in an array column.
func (a *Adapter) Has(field string, value filter.TypedValue) (Clause, error) {
	name, args := a.bind(value.Native())
	return Clause{
		SQL:        fmt.Sprintf("%s = ANY(%s)", name, a.column(field)),
		Args:       args,
		precedence: a.precedenceMapping["="],
	}, nil
}

func (a *Adapter) compare(field, operator string, value filter.TypedValue) (Clause, error) {
	name, args := a.bind(value.Native())
	return Clause{
		SQL:        fmt.Sprintf("%s %s %s", a.column(field), operator, name),
		Args:       args,
		precedence: a.precedenceMapping[operator],
	}, nil
}

func (a *Adapter) like(field, pattern string) (Clause, error) {
	name, args := a.bind(pattern)
	return Clause{
		SQL:        fmt.Sprintf("%s LIKE %s", a.column(field), name),
		Args:       args,
		precedence: a.precedenceMapping["LIKE"],
	}, nil
}

func (a *Adapter) combine(operator string, predicates []Clause) (Clause, error) {
	if len(predicates) == 0 {
		return Clause{}, errors.Errorf("%s needs at least one operand", operator)
	}
	precedence := a.precedenceMapping[operator]
	parts := make([]string, len(predicates))
	for i, p := range predicates {
		parts[i] = wrap(p, precedence)
	}
	return Clause{
		SQL:        strings.Join(parts, " "+operator+" "),
		Args:       merge(predicates...),
		precedence: precedence,
	}, nil
}

func (a *Adapter) bind(value any) (string, pgx.NamedArgs) {
	a.placeholderIndex++
	name := fmt.Sprintf("%s%d", a.placeholderPrefix, a.placeholderIndex)
	return "@" + name, pgx.NamedArgs{name: value}
}

func (a *Adapter) column(field string) string {
	if column, ok := a.columns[field]; ok {
		field = column
	}
	return pgx.Identifier(strings.Split(field, ".")).Sanitize()
}

// wrap parenthesizes an operand binding looser than its outer operator.
func wrap(c Clause, outerPrecedence int) string {
	if c.precedence < outerPrecedence {
		return "(" + c.SQL + ")"
	}
	return c.SQL
}

func merge(clauses ...Clause) pgx.NamedArgs {
	args := make(pgx.NamedArgs)
	for _, c := range clauses {
		for k, v := range c.Args {
			args[k] = v
		}
	}
	return args
}
