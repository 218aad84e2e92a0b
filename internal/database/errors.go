package database

import (
	"fmt"
)

// ConnectionError reports a failure to open or close a connection handle
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("database: failed to %s connection: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// TransactionError reports a failed begin, commit or rollback. It is returned
// only after the transaction handle has been released.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("database: failed to %s transaction: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

// ParameterBindingError reports a placeholder/parameter count mismatch or a
// parameter value of an unsupported type. Index is the 1-based parameter
// position, or 0 when the error concerns the whole parameter list.
type ParameterBindingError struct {
	Index  int
	Reason string
	Err    error
}

func (e *ParameterBindingError) Error() string {
	msg := "database: parameter binding failed"
	if e.Index > 0 {
		msg = fmt.Sprintf("%s at position %d", msg, e.Index)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParameterBindingError) Unwrap() error { return e.Err }

// QueryError wraps any driver failure raised while preparing, executing or
// reading a statement
type QueryError struct {
	SQL string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("database: query failed: %v [sql: %s]", e.Err, e.SQL)
}

func (e *QueryError) Unwrap() error { return e.Err }

// MappingError reports a value that could not be converted into the requested
// Go type
type MappingError struct {
	Column string
	Field  string
	Err    error
}

func (e *MappingError) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("database: cannot map column %q to field %q: %v", e.Column, e.Field, e.Err)
	case e.Column != "":
		return fmt.Sprintf("database: cannot map column %q: %v", e.Column, e.Err)
	default:
		return fmt.Sprintf("database: cannot map value: %v", e.Err)
	}
}

func (e *MappingError) Unwrap() error { return e.Err }
