package database

import (
	"database/sql"
	"strings"
	"time"
)

// Row is one result row: column names in select order and their normalized
// values. Values are nil, bool, int64, float64, string, []byte or time.Time.
type Row struct {
	columns []string
	values  []any
	index   map[string]int
}

// NewRow builds a Row from parallel column and value slices
func NewRow(columns []string, values []any) Row {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c] = i
	}
	return Row{columns: columns, values: values, index: index}
}

// Columns returns the column names in select order
func (r Row) Columns() []string { return r.columns }

// Len returns the number of columns
func (r Row) Len() int { return len(r.columns) }

// At returns the value of the i-th column (0-based)
func (r Row) At(i int) any { return r.values[i] }

// Get returns the value of the named column. With duplicate names the last
// one wins.
func (r Row) Get(column string) (any, bool) {
	i, ok := r.index[column]
	if !ok {
		return nil, false
	}
	return r.values[i], true
}

// Map copies the row into a plain map
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.columns))
	for i, c := range r.columns {
		m[c] = r.values[i]
	}
	return m
}

// Int64 returns the named column as an int64
func (r Row) Int64(column string) (int64, error) {
	v, _ := r.Get(column)
	n, err := asInt64(v)
	if err != nil {
		return 0, &MappingError{Column: column, Err: err}
	}
	return n, nil
}

// Text returns the named column as a string
func (r Row) Text(column string) (string, error) {
	v, _ := r.Get(column)
	s, err := asString(v)
	if err != nil {
		return "", &MappingError{Column: column, Err: err}
	}
	return s, nil
}

// Bool returns the named column as a bool
func (r Row) Bool(column string) (bool, error) {
	v, _ := r.Get(column)
	b, err := asBool(v)
	if err != nil {
		return false, &MappingError{Column: column, Err: err}
	}
	return b, nil
}

// Time returns the named column as a time.Time
func (r Row) Time(column string) (time.Time, error) {
	v, _ := r.Get(column)
	t, err := asTime(v)
	if err != nil {
		return time.Time{}, &MappingError{Column: column, Err: err}
	}
	return t, nil
}

type columnKind uint8

const (
	columnOther columnKind = iota
	columnBool
	columnFlag // TINYINT: bool only when the value is 0 or 1
	columnTime
	columnBinary
)

func classifyColumn(databaseType string) columnKind {
	t := strings.ToUpper(databaseType)
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = t[:i]
	}
	switch strings.TrimSpace(t) {
	case "BOOL", "BOOLEAN", "BIT":
		return columnBool
	case "TINYINT":
		return columnFlag
	case "DATE", "DATETIME", "TIMESTAMP", "TIMESTAMPTZ":
		return columnTime
	case "BLOB", "BINARY", "VARBINARY", "TINYBLOB", "MEDIUMBLOB", "LONGBLOB", "BYTEA":
		return columnBinary
	}
	return columnOther
}

func normalizeValue(v any, kind columnKind) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		if kind == columnBinary {
			return append([]byte(nil), x...)
		}
		// MySQL BIT(1)
		if kind == columnBool && len(x) == 1 && x[0] <= 1 {
			return x[0] == 1
		}
		return normalizeValue(string(x), kind)
	case string:
		if kind == columnTime {
			if t, ok := parseTime(x); ok {
				return t
			}
		}
		switch kind {
		case columnBool:
			if b, err := asBool(x); err == nil {
				return b
			}
		case columnFlag:
			if n, err := asInt64(x); err == nil {
				return normalizeValue(n, kind)
			}
		}
		return x
	case bool, time.Time:
		return x
	case float32:
		return float64(x)
	case float64:
		return x
	}
	if n, err := asInt64(v); err == nil {
		switch {
		case kind == columnBool:
			return n != 0
		case kind == columnFlag && (n == 0 || n == 1):
			return n == 1
		}
		return n
	}
	return v
}

// columnKinds classifies the result columns of rs. Untyped reads leave every
// column as columnOther so integers stay integers.
func columnKinds(rs *sql.Rows, n int, typed bool) []columnKind {
	kinds := make([]columnKind, n)
	if !typed {
		return kinds
	}
	if types, err := rs.ColumnTypes(); err == nil {
		for i, ct := range types {
			if i < n {
				kinds[i] = classifyColumn(ct.DatabaseTypeName())
			}
		}
	}
	return kinds
}

// scanRows reads every remaining row of rs. With typed set, values are
// normalized by their column type (flags to bool, date-times to time.Time).
func scanRows(rs *sql.Rows, typed bool) ([]Row, error) {
	columns, err := rs.Columns()
	if err != nil {
		return nil, err
	}
	kinds := columnKinds(rs, len(columns), typed)

	out := make([]Row, 0)
	for rs.Next() {
		raw := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := rs.Scan(dest...); err != nil {
			return nil, err
		}
		for i := range raw {
			raw[i] = normalizeValue(raw[i], kinds[i])
		}
		out = append(out, NewRow(columns, raw))
	}
	if err := rs.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
