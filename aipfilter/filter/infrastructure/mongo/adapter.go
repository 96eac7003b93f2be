// Package mongo builds MongoDB query documents from AIP-160 filters.
package mongo

import (
	"regexp"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	filter "github.com/krew-solutions/aip-filter-go/aipfilter/filter/domain"
)

const BackendName = "mongo"

var comparisonOperators = map[filter.Comparator]string{
	filter.Lt:  "$lt",
	filter.Lte: "$lte",
	filter.Gt:  "$gt",
	filter.Gte: "$gte",
	filter.Ne:  "$ne",
}

// Adapter builds bson.D predicates on plain field names.
type Adapter struct{}

var _ filter.Adapter[bson.D] = (*Adapter)(nil)

func NewAdapter() *Adapter {
	return &Adapter{}
}

// Name reports the backend name carried by compiled results.
func (a *Adapter) Name() string {
	return BackendName
}

func (a *Adapter) And(predicates []bson.D) (bson.D, error) {
	return combine("$and", predicates)
}

func (a *Adapter) Or(predicates []bson.D) (bson.D, error) {
	return combine("$or", predicates)
}

func (a *Adapter) Not(predicate bson.D) (bson.D, error) {
	return nor(predicate), nil
}

func (a *Adapter) PrefixSearch(field string, literal string) (bson.D, error) {
	return prefix(field, literal), nil
}

func (a *Adapter) SuffixSearch(field string, literal string) (bson.D, error) {
	return suffix(field, literal), nil
}

func (a *Adapter) LessThan(field string, value filter.TypedValue) (bson.D, error) {
	return compare(field, filter.Lt, value.Native()), nil
}

func (a *Adapter) LessThanEquals(field string, value filter.TypedValue) (bson.D, error) {
	return compare(field, filter.Lte, value.Native()), nil
}

func (a *Adapter) GreaterThan(field string, value filter.TypedValue) (bson.D, error) {
	return compare(field, filter.Gt, value.Native()), nil
}

func (a *Adapter) GreaterThanEquals(field string, value filter.TypedValue) (bson.D, error) {
	return compare(field, filter.Gte, value.Native()), nil
}

func (a *Adapter) NotEquals(field string, value filter.TypedValue) (bson.D, error) {
	return compare(field, filter.Ne, value.Native()), nil
}

func (a *Adapter) Equality(field string, value filter.TypedValue) (bson.D, error) {
	return compare(field, filter.Eq, value.Native()), nil
}

func (a *Adapter) Has(field string, value filter.TypedValue) (bson.D, error) {
	return has(field, value.Native()), nil
}

func combine(operator string, predicates []bson.D) (bson.D, error) {
	if len(predicates) == 0 {
		return nil, errors.Errorf("%s needs at least one operand", operator)
	}
	operands := make(bson.A, len(predicates))
	for i, p := range predicates {
		operands[i] = p
	}
	return bson.D{{Key: operator, Value: operands}}, nil
}

func nor(predicate bson.D) bson.D {
	return bson.D{{Key: "$nor", Value: bson.A{predicate}}}
}

func compare(field string, comparator filter.Comparator, value any) bson.D {
	if comparator == filter.Eq {
		return bson.D{{Key: field, Value: value}}
	}
	return bson.D{{Key: field, Value: bson.D{{Key: comparisonOperators[comparator], Value: value}}}}
}

func has(field string, value any) bson.D {
	return bson.D{{Key: field, Value: bson.D{{Key: "$elemMatch", Value: bson.D{{Key: "$eq", Value: value}}}}}}
}

func prefix(field, literal string) bson.D {
	pattern := "^" + regexp.QuoteMeta(filter.PrefixPattern(literal))
	return bson.D{{Key: field, Value: primitive.Regex{Pattern: pattern}}}
}

func suffix(field, literal string) bson.D {
	pattern := regexp.QuoteMeta(filter.SuffixPattern(literal)) + "$"
	return bson.D{{Key: field, Value: primitive.Regex{Pattern: pattern}}}
}
