package mongo

import (
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	filter "github.com/krew-solutions/aip-filter-go/aipfilter/filter/domain"
)

// Filter is a query document for documents decoded into T.
// It can be passed to collection methods directly.
type Filter[T any] struct {
	doc bson.D
}

func (f Filter[T]) Document() bson.D {
	return f.doc
}

func (f Filter[T]) MarshalBSON() ([]byte, error) {
	return bson.Marshal(f.doc)
}

type TypedOption func(*typedOptions)

type typedOptions struct {
	logger *zap.Logger
}

// WithTypedLogger sets the logger unknown fields are reported to at debug level.
func WithTypedLogger(logger *zap.Logger) TypedOption {
	return func(o *typedOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// TypedAdapter builds Filter[T] predicates and coerces values into the Go
// types of T's fields, addressed by their bson names.
// Fields missing from T get the resolved value unchanged.
type TypedAdapter[T any] struct {
	fields map[string]reflect.Type
	logger *zap.Logger
}

func NewTypedAdapter[T any](opts ...TypedOption) (*TypedAdapter[T], error) {
	o := typedOptions{logger: zap.NewNop()}
	for i := range opts {
		opts[i](&o)
	}
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, errors.Errorf("typed adapter needs a struct, got %s", t)
	}
	fields := make(map[string]reflect.Type)
	indexFields(fields, "", t, map[reflect.Type]bool{})
	return &TypedAdapter[T]{fields: fields, logger: o.logger}, nil
}

func (a *TypedAdapter[T]) Name() string {
	return BackendName
}

func (a *TypedAdapter[T]) And(predicates []Filter[T]) (Filter[T], error) {
	doc, err := combine("$and", documents(predicates))
	return Filter[T]{doc: doc}, err
}

func (a *TypedAdapter[T]) Or(predicates []Filter[T]) (Filter[T], error) {
	doc, err := combine("$or", documents(predicates))
	return Filter[T]{doc: doc}, err
}

func (a *TypedAdapter[T]) Not(predicate Filter[T]) (Filter[T], error) {
	return Filter[T]{doc: nor(predicate.doc)}, nil
}

func (a *TypedAdapter[T]) PrefixSearch(field string, literal string) (Filter[T], error) {
	return Filter[T]{doc: prefix(field, literal)}, nil
}

func (a *TypedAdapter[T]) SuffixSearch(field string, literal string) (Filter[T], error) {
	return Filter[T]{doc: suffix(field, literal)}, nil
}

func (a *TypedAdapter[T]) LessThan(field string, value filter.TypedValue) (Filter[T], error) {
	return a.compare(field, filter.Lt, value)
}

func (a *TypedAdapter[T]) LessThanEquals(field string, value filter.TypedValue) (Filter[T], error) {
	return a.compare(field, filter.Lte, value)
}

func (a *TypedAdapter[T]) GreaterThan(field string, value filter.TypedValue) (Filter[T], error) {
	return a.compare(field, filter.Gt, value)
}

func (a *TypedAdapter[T]) GreaterThanEquals(field string, value filter.TypedValue) (Filter[T], error) {
	return a.compare(field, filter.Gte, value)
}

func (a *TypedAdapter[T]) NotEquals(field string, value filter.TypedValue) (Filter[T], error) {
	return a.compare(field, filter.Ne, value)
}

func (a *TypedAdapter[T]) Equality(field string, value filter.TypedValue) (Filter[T], error) {
	return a.compare(field, filter.Eq, value)
}

func (a *TypedAdapter[T]) Has(field string, value filter.TypedValue) (Filter[T], error) {
	v, err := a.coerce(field, value)
	if err != nil {
		return Filter[T]{}, err
	}
	return Filter[T]{doc: has(field, v)}, nil
}

func (a *TypedAdapter[T]) compare(field string, comparator filter.Comparator, value filter.TypedValue) (Filter[T], error) {
	v, err := a.coerce(field, value)
	if err != nil {
		return Filter[T]{}, err
	}
	return Filter[T]{doc: compare(field, comparator, v)}, nil
}

func (a *TypedAdapter[T]) coerce(field string, value filter.TypedValue) (any, error) {
	t, ok := a.fields[field]
	if !ok {
		a.logger.Debug("field is not part of the document type, value left as resolved",
			zap.String("field", field), zap.Stringer("kind", value.Kind()))
		return value.Native(), nil
	}
	v, err := coerceTo(t, value)
	if err != nil {
		return nil, errors.Wrapf(err, "field %q", field)
	}
	return v, nil
}

func documents[T any](predicates []Filter[T]) []bson.D {
	docs := make([]bson.D, len(predicates))
	for i, p := range predicates {
		docs[i] = p.doc
	}
	return docs
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
	uuidType     = reflect.TypeOf(uuid.UUID{})
	ulidType     = reflect.TypeOf(ulid.ULID{})
	objectIDType = reflect.TypeOf(primitive.ObjectID{})
	bytesType    = reflect.TypeOf([]byte(nil))
)

// indexFields maps bson field paths of t to their Go types.
// Embedded documents contribute dotted paths, inline structs are flattened.
func indexFields(index map[string]reflect.Type, prefix string, t reflect.Type, seen map[reflect.Type]bool) {
	if seen[t] {
		return
	}
	seen[t] = true
	defer delete(seen, t)

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, inline, skip := bsonName(f)
		if skip {
			continue
		}
		ft := f.Type
		if inline {
			if st := structType(ft); st != nil {
				indexFields(index, prefix, st, seen)
			}
			continue
		}
		path := prefix + name
		index[path] = ft
		if st := structType(elemType(ft)); st != nil && !isScalar(st) {
			indexFields(index, path+".", st, seen)
		}
	}
}

func bsonName(f reflect.StructField) (name string, inline, skip bool) {
	tag, ok := f.Tag.Lookup("bson")
	if !ok {
		return strings.ToLower(f.Name), false, false
	}
	if tag == "-" {
		return "", false, true
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	for _, opt := range parts[1:] {
		if opt == "inline" {
			inline = true
		}
	}
	if name == "" {
		name = strings.ToLower(f.Name)
	}
	return name, inline, false
}

func structType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	return t
}

// elemType unwraps pointers and collections down to the element type.
func elemType(t reflect.Type) reflect.Type {
	for {
		switch {
		case t.Kind() == reflect.Pointer:
			t = t.Elem()
		case t == bytesType:
			return t
		case t.Kind() == reflect.Slice, t.Kind() == reflect.Array && !isScalar(t):
			t = t.Elem()
		default:
			return t
		}
	}
}

// isScalar reports types stored as single bson values even though their Go kind is composite.
func isScalar(t reflect.Type) bool {
	switch t {
	case timeType, uuidType, ulidType, objectIDType, bytesType:
		return true
	}
	return false
}

func mismatch(t reflect.Type, value filter.TypedValue) error {
	return &CoercionError{Type: t.String(), Kind: value.Kind(), Text: value.Raw()}
}

// wholeNumber returns integers, and durations of whole milliseconds, as int64.
func wholeNumber(value filter.TypedValue) (int64, bool) {
	if i, ok := value.Int64(); ok {
		return i, true
	}
	if value.Kind() != filter.KindDurationMillis {
		return 0, false
	}
	ms, _ := value.Float()
	if ms != math.Trunc(ms) || ms < math.MinInt64 || ms >= math.MaxInt64 {
		return 0, false
	}
	return int64(ms), true
}

// coerceTo converts a resolved value into the Go type of a document field.
// Collection fields take the element type. Durations are milliseconds in
// numeric fields and time.Duration only in time.Duration fields.
func coerceTo(t reflect.Type, value filter.TypedValue) (any, error) {
	t = elemType(t)
	text, isText := value.Text()
	if !isText {
		text = value.Raw()
	}

	switch t {
	case timeType:
		if instant, ok := value.Time(); ok {
			return instant, nil
		}
		if isText {
			instant, err := filter.ParseDatetime(text)
			if err != nil {
				return nil, errors.Wrap(err, "parse datetime")
			}
			return instant, nil
		}
		return nil, mismatch(t, value)
	case durationType:
		if d, ok := value.Duration(); ok {
			return d, nil
		}
		return nil, mismatch(t, value)
	case uuidType:
		id, err := uuid.Parse(text)
		if err != nil {
			return nil, errors.Wrap(err, "parse uuid")
		}
		return id, nil
	case ulidType:
		id, err := ulid.ParseStrict(text)
		if err != nil {
			return nil, errors.Wrap(err, "parse ulid")
		}
		return id, nil
	case objectIDType:
		id, err := primitive.ObjectIDFromHex(text)
		if err != nil {
			return nil, errors.Wrap(err, "parse object id")
		}
		return id, nil
	}

	switch t.Kind() {
	case reflect.String:
		return reflect.ValueOf(text).Convert(t).Interface(), nil
	case reflect.Bool:
		if value.Kind() != filter.KindBool {
			return nil, mismatch(t, value)
		}
		return reflect.ValueOf(value.Native()).Convert(t).Interface(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, ok := wholeNumber(value)
		if !ok {
			return nil, mismatch(t, value)
		}
		rv := reflect.New(t).Elem()
		if rv.OverflowInt(i) {
			return nil, errors.Errorf("%d overflows %s", i, t)
		}
		rv.SetInt(i)
		return rv.Interface(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		i, ok := wholeNumber(value)
		if !ok {
			return nil, mismatch(t, value)
		}
		rv := reflect.New(t).Elem()
		if i < 0 || rv.OverflowUint(uint64(i)) {
			return nil, errors.Errorf("%d overflows %s", i, t)
		}
		rv.SetUint(uint64(i))
		return rv.Interface(), nil
	case reflect.Float32, reflect.Float64:
		f, ok := value.Float()
		if !ok {
			return nil, mismatch(t, value)
		}
		rv := reflect.New(t).Elem()
		if t.Kind() == reflect.Float32 && math.Abs(f) > math.MaxFloat32 {
			return nil, errors.Errorf("%v overflows %s", f, t)
		}
		rv.SetFloat(f)
		return rv.Interface(), nil
	}
	return value.Native(), nil
}
