package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/saltyorg/simpledb/internal/config"
)

func TestAppend_JoinsFragmentsWithSingleSpace(t *testing.T) {
	s := (&DB{}).GenSQL()
	got := s.Append("SELECT *").
		Append("FROM article").
		Append("WHERE id = ?", 1).
		Append("AND title = ?", "hello")

	require.Same(t, s, got)
	require.Equal(t, "SELECT * FROM article WHERE id = ? AND title = ?", s.String())
	require.Equal(t, []any{1, "hello"}, s.Params())
}

func TestAppendIn_ExpandsMarker(t *testing.T) {
	s := (&DB{}).GenSQL().
		Append("SELECT COUNT(*) FROM article").
		AppendIn("WHERE id IN (?)", 1, 2, 3)

	require.Equal(t, "SELECT COUNT(*) FROM article WHERE id IN (?, ?, ?)", s.String())
	require.Equal(t, []any{1, 2, 3}, s.Params())
	require.Equal(t, 3, countPlaceholders(s.String(), false))
}

func TestAppendIn_OnlyFirstMarkerExpanded(t *testing.T) {
	s := (&DB{}).GenSQL().AppendIn("id IN (?) AND title = ?", 1, 2)

	require.Equal(t, "id IN (?, ?) AND title = ?", s.String())
}

func TestAppendIn_WithArgs(t *testing.T) {
	ids := []int64{4, 5}
	s := (&DB{}).GenSQL().AppendIn("id IN (?)", Args(ids)...)

	require.Equal(t, "id IN (?, ?)", s.String())
	require.Equal(t, []any{int64(4), int64(5)}, s.Params())
}

func TestCountPlaceholders_SkipsQuotedText(t *testing.T) {
	cases := map[string]int{
		"SELECT 1":                             0,
		"a = ? AND b = ?":                      2,
		"title = '?' AND id = ?":               1,
		`title = "why?" AND id = ?`:            1,
		"title = 'it''s ?' AND id = ?":         1,
		"`odd?col` = ?":                        1,
		`path = 'C:\' || ?`:                    1,
		"id IN (?, ?, ?) AND title LIKE '%?%'": 3,
	}
	for query, want := range cases {
		require.Equal(t, want, countPlaceholders(query, false), query)
	}
}

func TestCountPlaceholders_MySQLBackslashEscapes(t *testing.T) {
	require.Equal(t, 1, countPlaceholders(`body = 'esc \' ?' AND id = ?`, true))
	require.Equal(t, 0, countPlaceholders(`path = 'C:\' || ?`, true))
	require.Equal(t, 1, countPlaceholders("`a\\` = ?", true))
}

func TestStatement_BackslashEscapesFollowDriver(t *testing.T) {
	query := `SELECT 'C:\' || ?`

	s := (&DB{driver: config.DriverSQLite}).GenSQL().Append(query, "x")
	_, err := s.bind(s.String())
	require.NoError(t, err)

	s = (&DB{driver: config.DriverMySQL}).GenSQL().Append(query, "x")
	_, err = s.bind(s.String())
	var be *ParameterBindingError
	require.True(t, errors.As(err, &be))
}

func TestSelectString_BackslashLiteralOnSQLite(t *testing.T) {
	db := newTestDB(t)

	got, ok, err := db.GenSQL().Append(`SELECT 'C:\' || ?`, "x").SelectString(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `C:\x`, got)
}

func TestBind_CountMismatch(t *testing.T) {
	s := (&DB{}).GenSQL().Append("SELECT * FROM article WHERE id = ? AND title = ?", 1)

	_, err := s.bind(s.String())

	var be *ParameterBindingError
	require.True(t, errors.As(err, &be))
	require.Equal(t, 0, be.Index)
}

func TestBind_UnsupportedType(t *testing.T) {
	s := (&DB{}).GenSQL().Append("SELECT * FROM article WHERE id = ? AND title = ?", 1, struct{}{})

	_, err := s.bind(s.String())

	var be *ParameterBindingError
	require.True(t, errors.As(err, &be))
	require.Equal(t, 2, be.Index)
}

func TestBind_ConvertsToParams(t *testing.T) {
	s := (&DB{}).GenSQL().Append("x = ? AND y = ? AND z = ?", 7, "a", nil)

	args, err := s.bind(s.String())
	require.NoError(t, err)
	require.Equal(t, []any{Int(7), String("a"), Null()}, args)
}
