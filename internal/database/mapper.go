package database

import (
	"sync"
	"time"

	"github.com/huandu/xstrings"
)

// FieldMapping binds one named field of T to the column with the same name
// in snake_case.
type FieldMapping[T any] struct {
	name   string
	assign func(dst *T, v any) error
}

// Name returns the field name the mapping was declared with
func (f FieldMapping[T]) Name() string { return f.name }

// Int64Field maps an integer column through set
func Int64Field[T any](name string, set func(*T, int64)) FieldMapping[T] {
	return FieldMapping[T]{name: name, assign: func(dst *T, v any) error {
		n, err := asInt64(v)
		if err != nil {
			return err
		}
		set(dst, n)
		return nil
	}}
}

// IntField maps an integer column into an int
func IntField[T any](name string, set func(*T, int)) FieldMapping[T] {
	return Int64Field(name, func(dst *T, n int64) { set(dst, int(n)) })
}

// Float64Field maps a numeric column through set
func Float64Field[T any](name string, set func(*T, float64)) FieldMapping[T] {
	return FieldMapping[T]{name: name, assign: func(dst *T, v any) error {
		f, err := asFloat64(v)
		if err != nil {
			return err
		}
		set(dst, f)
		return nil
	}}
}

// StringField maps a column through set, formatting numbers and times as text
func StringField[T any](name string, set func(*T, string)) FieldMapping[T] {
	return FieldMapping[T]{name: name, assign: func(dst *T, v any) error {
		s, err := asString(v)
		if err != nil {
			return err
		}
		set(dst, s)
		return nil
	}}
}

// BoolField maps a boolean or numeric column; nonzero numbers are true
func BoolField[T any](name string, set func(*T, bool)) FieldMapping[T] {
	return FieldMapping[T]{name: name, assign: func(dst *T, v any) error {
		b, err := asBool(v)
		if err != nil {
			return err
		}
		set(dst, b)
		return nil
	}}
}

// TimeField maps a date-time column, parsing text values when needed
func TimeField[T any](name string, set func(*T, time.Time)) FieldMapping[T] {
	return FieldMapping[T]{name: name, assign: func(dst *T, v any) error {
		t, err := asTime(v)
		if err != nil {
			return err
		}
		set(dst, t)
		return nil
	}}
}

// NullTimeField maps a nullable date-time column; NULL leaves the pointer nil
func NullTimeField[T any](name string, set func(*T, *time.Time)) FieldMapping[T] {
	return TimeField(name, func(dst *T, t time.Time) { set(dst, &t) })
}

// CustomField hands the raw normalized value to assign
func CustomField[T any](name string, assign func(*T, any) error) FieldMapping[T] {
	return FieldMapping[T]{name: name, assign: assign}
}

// Mapper converts rows into T using a field table built once. Columns are
// matched to fields by their snake_case form, so created_date, createdDate
// and CreatedDate all reach the field declared as "createdDate". Columns
// without a field are ignored; fields without a column keep their zero value.
// A Mapper is safe for concurrent use.
type Mapper[T any] struct {
	fields  map[string]FieldMapping[T]
	columns sync.Map // column name -> columnBinding[T]
}

type columnBinding[T any] struct {
	field FieldMapping[T]
	ok    bool
}

// NewMapper builds the field table for T
func NewMapper[T any](fields ...FieldMapping[T]) *Mapper[T] {
	m := &Mapper[T]{fields: make(map[string]FieldMapping[T], len(fields))}
	for _, f := range fields {
		m.fields[nameKey(f.name)] = f
	}
	return m
}

// Map builds a T from row
func (m *Mapper[T]) Map(row Row) (T, error) {
	var out T
	for i, column := range row.Columns() {
		f, ok := m.lookup(column)
		if !ok {
			continue
		}
		v := row.At(i)
		if v == nil {
			continue
		}
		if err := f.assign(&out, v); err != nil {
			var zero T
			return zero, &MappingError{Column: column, Field: f.name, Err: err}
		}
	}
	return out, nil
}

func (m *Mapper[T]) lookup(column string) (FieldMapping[T], bool) {
	if b, ok := m.columns.Load(column); ok {
		cb := b.(columnBinding[T])
		return cb.field, cb.ok
	}
	f, ok := m.fields[nameKey(column)]
	m.columns.Store(column, columnBinding[T]{field: f, ok: ok})
	return f, ok
}

func nameKey(name string) string {
	return xstrings.ToSnakeCase(name)
}
