package database

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/saltyorg/simpledb/internal/config"
)

// Statement accumulates SQL fragments and positional parameters for a single
// query. It is built with Append/AppendIn and consumed by exactly one
// terminal call (Execute, Insert, Update, Delete or one of the Select
// methods). A Statement is not safe for concurrent use.
type Statement struct {
	db     *DB
	sql    strings.Builder
	params []any
}

// Append adds fragment to the statement text, separated from any previous
// text by a single space, and queues params in order. Placeholder and
// parameter counts are checked when the statement runs.
func (s *Statement) Append(fragment string, params ...any) *Statement {
	s.write(fragment)
	s.params = append(s.params, params...)
	return s
}

// AppendIn is Append for variable-length lists: the first ? in fragment is
// replaced by one ? per param, so
//
//	AppendIn("id IN (?)", 1, 2, 3)
//
// renders "id IN (?, ?, ?)". Only the first marker is expanded; use one call
// per list.
func (s *Statement) AppendIn(fragment string, params ...any) *Statement {
	if i := findPlaceholder(fragment, s.backslashEscapes()); i >= 0 {
		fragment = fragment[:i] + placeholders(len(params)) + fragment[i+1:]
	}
	s.write(fragment)
	s.params = append(s.params, params...)
	return s
}

// String returns the rendered SQL text
func (s *Statement) String() string {
	return s.sql.String()
}

// Params returns a copy of the queued parameters
func (s *Statement) Params() []any {
	return append([]any(nil), s.params...)
}

// backslashEscapes reports whether the driver treats a backslash inside a
// quoted literal as an escape. Only MySQL does; SQLite and PostgreSQL with
// standard_conforming_strings take it literally.
func (s *Statement) backslashEscapes() bool {
	return s.db != nil && s.db.driver == config.DriverMySQL
}

func (s *Statement) write(fragment string) {
	if s.sql.Len() > 0 {
		s.sql.WriteByte(' ')
	}
	s.sql.WriteString(fragment)
}

// bind checks the parameter count against the markers in query and converts
// every parameter into a Param
func (s *Statement) bind(query string) ([]any, error) {
	markers := countPlaceholders(query, s.backslashEscapes())
	if markers != len(s.params) {
		return nil, &ParameterBindingError{
			Reason: "placeholder count does not match parameter count",
			Err:    errors.Errorf("%d placeholders, %d parameters", markers, len(s.params)),
		}
	}

	args := make([]any, len(s.params))
	for i, v := range s.params {
		p, err := ParamOf(v)
		if err != nil {
			return nil, &ParameterBindingError{Index: i + 1, Reason: "unsupported value", Err: err}
		}
		args[i] = p
	}
	return args, nil
}

// Args spreads a typed slice into the variadic parameter list of Append and
// AppendIn.
func Args[T any](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

// scanPlaceholders calls fn with the byte offset of every ? marker in query.
// Markers inside quoted literals or identifiers are skipped. A backslash
// escapes the next byte of a quoted literal only when backslash is set.
// Returning false from fn stops the scan.
func scanPlaceholders(query string, backslash bool, fn func(int) bool) {
	var quote byte
	for i := 0; i < len(query); i++ {
		c := query[i]
		if quote != 0 {
			if c == quote {
				// doubled quote is an escaped quote
				if i+1 < len(query) && query[i+1] == quote {
					i++
					continue
				}
				quote = 0
			} else if backslash && c == '\\' && quote != '`' {
				i++
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '?':
			if !fn(i) {
				return
			}
		}
	}
}

func countPlaceholders(query string, backslash bool) int {
	n := 0
	scanPlaceholders(query, backslash, func(int) bool {
		n++
		return true
	})
	return n
}

func findPlaceholder(fragment string, backslash bool) int {
	at := -1
	scanPlaceholders(fragment, backslash, func(i int) bool {
		at = i
		return false
	})
	return at
}
