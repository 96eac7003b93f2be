package syntax

import "strings"

// ValueKind identifies the lexical class of a literal.
type ValueKind string

const (
	KindInteger  ValueKind = "INTEGER"
	KindFloat    ValueKind = "FLOAT"
	KindBoolean  ValueKind = "BOOLEAN"
	KindDuration ValueKind = "DURATION"
	KindDatetime ValueKind = "DATETIME"
	KindString   ValueKind = "STRING"
	KindText     ValueKind = "TEXT"
	KindAsterisk ValueKind = "ASTERISK"
)

// Expression is `sequence (AND sequence)*`.
// More than one sequence means an explicit AND.
type Expression struct {
	Sequences []*Sequence
}

func (n *Expression) String() string {
	parts := make([]string, len(n.Sequences))
	for i, s := range n.Sequences {
		parts[i] = s.String()
	}
	return strings.Join(parts, " AND ")
}

// Sequence is a run of juxtaposed factors, joined by an implicit AND.
type Sequence struct {
	Factors []*Factor
}

func (n *Sequence) String() string {
	parts := make([]string, len(n.Factors))
	for i, f := range n.Factors {
		parts[i] = f.String()
	}
	return strings.Join(parts, " ")
}

// Factor is `term (OR term)*`.
type Factor struct {
	Terms []*Term
}

func (n *Factor) String() string {
	parts := make([]string, len(n.Terms))
	for i, t := range n.Terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " OR ")
}

// Term is an optionally negated simple.
type Term struct {
	Negated bool
	Simple  Simple
}

func (n *Term) String() string {
	if n.Negated {
		return "NOT " + n.Simple.String()
	}
	return n.Simple.String()
}

// Simple is either a *Restriction or a *Composite.
type Simple interface {
	String() string
	simpleNode()
}

// Arg is either a *Member or a *Composite.
type Arg interface {
	String() string
	argNode()
}

// Composite is a parenthesized expression.
type Composite struct {
	Expression *Expression
}

func (n *Composite) String() string {
	return "(" + n.Expression.String() + ")"
}

func (*Composite) simpleNode() {}
func (*Composite) argNode()    {}

// Restriction is `comparable comparator arg`.
// A restriction with an empty Comparator is a global restriction (a bare value).
type Restriction struct {
	Comparable *Member
	Comparator string
	Arg        Arg
}

func (n *Restriction) String() string {
	if n.Comparator == "" {
		return n.Comparable.String()
	}
	return n.Comparable.String() + " " + n.Comparator + " " + n.Arg.String()
}

// IsGlobal reports whether the restriction carries no comparator.
func (n *Restriction) IsGlobal() bool {
	return n.Comparator == ""
}

func (*Restriction) simpleNode() {}

// Member is `value ('.' field)*`.
type Member struct {
	Value  *Value
	Fields []*Value
}

// Text renders the member path, e.g. "address.city".
func (n *Member) Text() string {
	if len(n.Fields) == 0 {
		return n.Value.Text
	}
	parts := make([]string, 0, len(n.Fields)+1)
	parts = append(parts, n.Value.Text)
	for _, f := range n.Fields {
		parts = append(parts, f.Text)
	}
	return strings.Join(parts, ".")
}

func (n *Member) String() string {
	return n.Text()
}

func (*Member) argNode() {}

// Value is a single literal token.
type Value struct {
	Kind     ValueKind
	Text     string
	Position int
}

func (n *Value) String() string {
	return n.Text
}

// NewValue is a convenience constructor for hand-built trees.
func NewValue(kind ValueKind, text string) *Value {
	return &Value{Kind: kind, Text: text}
}

// NewMember builds a member from a dotted path of TEXT values.
func NewMember(path string) *Member {
	parts := strings.Split(path, ".")
	m := &Member{Value: NewValue(KindText, parts[0])}
	for _, p := range parts[1:] {
		m.Fields = append(m.Fields, NewValue(KindText, p))
	}
	return m
}

// Literal wraps a single value into an arg.
func Literal(kind ValueKind, text string) *Member {
	return &Member{Value: NewValue(kind, text)}
}
