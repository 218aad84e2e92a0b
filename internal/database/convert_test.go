package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAsBool(t *testing.T) {
	for _, v := range []any{true, int64(1), int64(-2), 0.5, "1", "true", []byte("7")} {
		b, err := asBool(v)
		require.NoError(t, err, "%v", v)
		require.True(t, b, "%v", v)
	}
	for _, v := range []any{false, int64(0), 0.0, "0", "false"} {
		b, err := asBool(v)
		require.NoError(t, err, "%v", v)
		require.False(t, b, "%v", v)
	}
	_, err := asBool("maybe")
	require.Error(t, err)
	_, err = asBool(time.Now())
	require.Error(t, err)
}

func TestAsInt64(t *testing.T) {
	n, err := asInt64(3.0)
	require.NoError(t, err)
	require.Equal(t, int64(3), n)

	_, err = asInt64(3.5)
	require.Error(t, err)
	_, err = asInt64(uint64(1 << 63))
	require.Error(t, err)
}

func TestNormalizeValue(t *testing.T) {
	require.Equal(t, true, normalizeValue(int64(1), classifyColumn("TINYINT(1)")))
	require.Equal(t, false, normalizeValue([]byte{0}, classifyColumn("BIT")))
	require.Equal(t, "abc", normalizeValue([]byte("abc"), classifyColumn("VARCHAR")))
	require.Equal(t, []byte("abc"), normalizeValue([]byte("abc"), classifyColumn("BLOB")))
	require.Equal(t, int64(5), normalizeValue(int32(5), columnOther))
	require.Equal(t, 1.5, normalizeValue(float32(1.5), columnOther))

	v := normalizeValue("2024-05-01 10:30:00", classifyColumn("datetime"))
	ts, ok := v.(time.Time)
	require.True(t, ok)
	require.Equal(t, time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC), ts)
}

func TestNormalizeValue_TinyIntFlag(t *testing.T) {
	kind := classifyColumn("TINYINT")
	require.Equal(t, int64(42), normalizeValue(int64(42), kind))
	require.Equal(t, int64(-1), normalizeValue(int64(-1), kind))
	require.Equal(t, true, normalizeValue(int64(1), kind))
	require.Equal(t, false, normalizeValue([]byte("0"), kind))
	require.Equal(t, int64(42), normalizeValue([]byte("42"), kind))
}
