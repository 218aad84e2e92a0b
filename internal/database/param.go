package database

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// ParamKind identifies which variant a Param holds
type ParamKind uint8

const (
	KindNull ParamKind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindTime
)

func (k ParamKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	}
	return fmt.Sprintf("ParamKind(%d)", uint8(k))
}

// Param is a bound statement parameter. Only the variants listed in ParamKind
// can be sent to the driver.
type Param struct {
	kind ParamKind
	i    int64
	f    float64
	s    string
	b    bool
	t    time.Time
}

// Null returns a SQL NULL parameter
func Null() Param { return Param{kind: KindNull} }

// Int returns an integer parameter
func Int(v int64) Param { return Param{kind: KindInt, i: v} }

// Float returns a floating point parameter
func Float(v float64) Param { return Param{kind: KindFloat, f: v} }

// String returns a text parameter
func String(v string) Param { return Param{kind: KindString, s: v} }

// Bool returns a boolean parameter
func Bool(v bool) Param { return Param{kind: KindBool, b: v} }

// Time returns a date-time parameter
func Time(v time.Time) Param { return Param{kind: KindTime, t: v} }

// Kind returns the variant held by p
func (p Param) Kind() ParamKind { return p.kind }

// IsNull reports whether p is NULL
func (p Param) IsNull() bool { return p.kind == KindNull }

// Value implements driver.Valuer
func (p Param) Value() (driver.Value, error) {
	switch p.kind {
	case KindInt:
		return p.i, nil
	case KindFloat:
		return p.f, nil
	case KindString:
		return p.s, nil
	case KindBool:
		return p.b, nil
	case KindTime:
		return p.t, nil
	}
	return nil, nil
}

func (p Param) String() string {
	switch p.kind {
	case KindInt:
		return fmt.Sprintf("%d", p.i)
	case KindFloat:
		return fmt.Sprintf("%g", p.f)
	case KindString:
		return fmt.Sprintf("%q", p.s)
	case KindBool:
		return fmt.Sprintf("%t", p.b)
	case KindTime:
		return p.t.Format(time.RFC3339Nano)
	}
	return "NULL"
}

// ParamOf converts a Go value into a Param. Pointers to supported types are
// dereferenced; nil pointers become NULL.
func ParamOf(v any) (Param, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Param:
		return x, nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return uintParam(uint64(x))
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case uint64:
		return uintParam(x)
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	case string:
		return String(x), nil
	case bool:
		return Bool(x), nil
	case time.Time:
		return Time(x), nil
	case *int64:
		if x == nil {
			return Null(), nil
		}
		return Int(*x), nil
	case *int:
		if x == nil {
			return Null(), nil
		}
		return Int(int64(*x)), nil
	case *float64:
		if x == nil {
			return Null(), nil
		}
		return Float(*x), nil
	case *string:
		if x == nil {
			return Null(), nil
		}
		return String(*x), nil
	case *bool:
		if x == nil {
			return Null(), nil
		}
		return Bool(*x), nil
	case *time.Time:
		if x == nil {
			return Null(), nil
		}
		return Time(*x), nil
	}
	return Param{}, fmt.Errorf("unsupported parameter type %T", v)
}

func uintParam(v uint64) (Param, error) {
	if v > 1<<63-1 {
		return Param{}, fmt.Errorf("unsigned value %d overflows int64", v)
	}
	return Int(int64(v)), nil
}
