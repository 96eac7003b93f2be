package filter

// Comparator is one of the restriction operators of the filter grammar.
type Comparator string

const (
	Eq  Comparator = "="
	Lt  Comparator = "<"
	Lte Comparator = "<="
	Gte Comparator = ">="
	Gt  Comparator = ">"
	Ne  Comparator = "!="
	Has Comparator = ":"
)

var comparators = map[string]Comparator{
	string(Eq):  Eq,
	string(Lt):  Lt,
	string(Lte): Lte,
	string(Gte): Gte,
	string(Gt):  Gt,
	string(Ne):  Ne,
	string(Has): Has,
}

// ParseComparator matches the comparator text exactly.
func ParseComparator(text string) (Comparator, error) {
	c, ok := comparators[text]
	if !ok {
		return "", &UnsupportedComparatorError{Comparator: text}
	}
	return c, nil
}
