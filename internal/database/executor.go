package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// run binds the statement, echoes it in dev mode and hands a prepared
// statement to fn. The connection is released on every path; a release
// failure is reported only when nothing else failed.
func (s *Statement) run(ctx context.Context, fn func(stmt *sql.Stmt, args []any) error) (err error) {
	query := s.String()
	args, err := s.bind(query)
	if err != nil {
		return err
	}
	s.db.logSQL(query)

	h, err := s.db.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := s.db.Release(h); rerr != nil {
			if err == nil {
				err = rerr
				return
			}
			log.Error().Err(rerr).Msg("Failed to release connection")
		}
	}()

	stmt, err := h.prepare(ctx, s.db.rebind(query))
	if err != nil {
		return &QueryError{SQL: query, Err: err}
	}
	defer stmt.Close()

	if err := fn(stmt, args); err != nil {
		var me *MappingError
		if errors.As(err, &me) {
			return err
		}
		return &QueryError{SQL: query, Err: err}
	}
	return nil
}

func (s *Statement) query(ctx context.Context, fn func(rs *sql.Rows) error) error {
	return s.run(ctx, func(stmt *sql.Stmt, args []any) error {
		rs, err := stmt.QueryContext(ctx, args...)
		if err != nil {
			return err
		}
		defer rs.Close()
		return fn(rs)
	})
}

// Execute runs the statement without reading any result
func (s *Statement) Execute(ctx context.Context) (*Statement, error) {
	err := s.run(ctx, func(stmt *sql.Stmt, args []any) error {
		_, err := stmt.ExecContext(ctx, args...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Insert runs the statement and returns the generated key, or 0 when the
// statement produced none or the driver cannot report it
func (s *Statement) Insert(ctx context.Context) (int64, error) {
	var id int64
	err := s.run(ctx, func(stmt *sql.Stmt, args []any) error {
		res, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			return err
		}
		if id, err = res.LastInsertId(); err != nil {
			log.Debug().Err(err).Msg("Driver returned no generated key")
			id = 0
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Update runs the statement and returns the number of affected rows
func (s *Statement) Update(ctx context.Context) (int64, error) {
	return s.affected(ctx)
}

// Delete runs the statement and returns the number of affected rows
func (s *Statement) Delete(ctx context.Context) (int64, error) {
	return s.affected(ctx)
}

func (s *Statement) affected(ctx context.Context) (int64, error) {
	var n int64
	err := s.run(ctx, func(stmt *sql.Stmt, args []any) error {
		res, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// SelectRows returns every result row. It returns an empty, non-nil slice
// when nothing matches.
func (s *Statement) SelectRows(ctx context.Context) ([]Row, error) {
	return s.selectRows(ctx, true)
}

func (s *Statement) selectRows(ctx context.Context, typed bool) ([]Row, error) {
	var rows []Row
	err := s.query(ctx, func(rs *sql.Rows) error {
		var err error
		rows, err = scanRows(rs, typed)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SelectRow returns the first result row; ok is false when nothing matches
func (s *Statement) SelectRow(ctx context.Context) (row Row, ok bool, err error) {
	rows, err := s.SelectRows(ctx)
	if err != nil || len(rows) == 0 {
		return Row{}, false, err
	}
	return rows[0], true, nil
}

// SelectLong returns column 1 of row 1 as an int64. ok is false when there is
// no row or the value is NULL.
func (s *Statement) SelectLong(ctx context.Context) (int64, bool, error) {
	return selectScalar(ctx, s, false, asInt64)
}

// SelectString returns column 1 of row 1 as a string
func (s *Statement) SelectString(ctx context.Context) (string, bool, error) {
	return selectScalar(ctx, s, false, asString)
}

// SelectBoolean returns column 1 of row 1 as a bool. Booleans are taken as is
// and numbers are true when nonzero.
func (s *Statement) SelectBoolean(ctx context.Context) (bool, bool, error) {
	return selectScalar(ctx, s, true, asBool)
}

// SelectDatetime returns column 1 of row 1 as a time.Time
func (s *Statement) SelectDatetime(ctx context.Context) (time.Time, bool, error) {
	return selectScalar(ctx, s, true, asTime)
}

// SelectLongs returns column 1 of every row as an int64; NULL reads as 0
func (s *Statement) SelectLongs(ctx context.Context) ([]int64, error) {
	rows, err := s.selectRows(ctx, false)
	if err != nil {
		return nil, err
	}

	out := make([]int64, 0, len(rows))
	for _, r := range rows {
		if r.Len() == 0 {
			return nil, &MappingError{Err: errors.New("query returned zero columns")}
		}
		v := r.At(0)
		if v == nil {
			out = append(out, 0)
			continue
		}
		n, err := asInt64(v)
		if err != nil {
			return nil, &MappingError{Column: r.Columns()[0], Err: err}
		}
		out = append(out, n)
	}
	return out, nil
}

// SelectRowsAs maps every result row into a T with m
func SelectRowsAs[T any](ctx context.Context, s *Statement, m *Mapper[T]) ([]T, error) {
	rows, err := s.SelectRows(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(rows))
	for _, r := range rows {
		v, err := m.Map(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// SelectRowAs maps the first result row into a T with m; ok is false when
// nothing matches
func SelectRowAs[T any](ctx context.Context, s *Statement, m *Mapper[T]) (out T, ok bool, err error) {
	row, ok, err := s.SelectRow(ctx)
	if err != nil || !ok {
		return out, false, err
	}
	out, err = m.Map(row)
	if err != nil {
		return out, false, err
	}
	return out, true, nil
}

func selectScalar[V any](ctx context.Context, s *Statement, typed bool, conv func(any) (V, error)) (out V, ok bool, err error) {
	err = s.query(ctx, func(rs *sql.Rows) error {
		column, v, found, err := firstValue(rs, typed)
		if err != nil || !found || v == nil {
			return err
		}
		if out, err = conv(v); err != nil {
			return &MappingError{Column: column, Err: err}
		}
		ok = true
		return nil
	})
	if err != nil {
		var zero V
		return zero, false, err
	}
	return out, ok, nil
}

// firstValue reads column 1 of the first row, normalized by column type when
// typed is set
func firstValue(rs *sql.Rows, typed bool) (column string, v any, found bool, err error) {
	columns, err := rs.Columns()
	if err != nil {
		return "", nil, false, err
	}
	if len(columns) == 0 {
		return "", nil, false, &MappingError{Err: errors.New("query returned zero columns")}
	}

	kind := columnKinds(rs, 1, typed)[0]

	if !rs.Next() {
		return columns[0], nil, false, rs.Err()
	}

	raw := make([]any, len(columns))
	dest := make([]any, len(columns))
	for i := range raw {
		dest[i] = &raw[i]
	}
	if err := rs.Scan(dest...); err != nil {
		return columns[0], nil, false, err
	}
	return columns[0], normalizeValue(raw[0], kind), true, nil
}
