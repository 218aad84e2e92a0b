package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParamOf(t *testing.T) {
	when := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	name := "x"
	var nilName *string

	cases := []struct {
		in   any
		kind ParamKind
		val  any
	}{
		{nil, KindNull, nil},
		{42, KindInt, int64(42)},
		{int8(-3), KindInt, int64(-3)},
		{uint32(9), KindInt, int64(9)},
		{1.5, KindFloat, 1.5},
		{float32(0.5), KindFloat, 0.5},
		{"s", KindString, "s"},
		{true, KindBool, true},
		{when, KindTime, when},
		{&name, KindString, "x"},
		{nilName, KindNull, nil},
		{Bool(false), KindBool, false},
	}
	for _, c := range cases {
		p, err := ParamOf(c.in)
		require.NoError(t, err, "%T", c.in)
		require.Equal(t, c.kind, p.Kind(), "%T", c.in)
		v, err := p.Value()
		require.NoError(t, err)
		require.Equal(t, c.val, v, "%T", c.in)
	}
}

func TestParamOf_Rejects(t *testing.T) {
	for _, in := range []any{struct{}{}, []int{1}, map[string]int{}, uint64(1 << 63), []byte("raw")} {
		_, err := ParamOf(in)
		require.Error(t, err, "%T", in)
	}
}
