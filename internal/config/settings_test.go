package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoader_TypedGettersWithDefaults(t *testing.T) {
	l := NewLoader(Map{
		"int":      "12",
		"bad_int":  "twelve",
		"bool":     "true",
		"bool_num": "0",
		"dur":      "1m30s",
		"str":      "  padded  ",
	})

	require.Equal(t, 12, l.Int("int", 1))
	require.Equal(t, 1, l.Int("bad_int", 1))
	require.Equal(t, 1, l.Int("missing", 1))
	require.True(t, l.Bool("bool", false))
	require.False(t, l.Bool("bool_num", true))
	require.True(t, l.Bool("missing", true))
	require.Equal(t, 90*time.Second, l.Duration("dur", 0))
	require.Equal(t, "padded", l.String("str", "x"))
	require.Equal(t, "x", l.String("missing", "x"))
}

func TestLoader_NilSource(t *testing.T) {
	var l *Loader
	require.Equal(t, 3, l.Int("anything", 3))
	require.Equal(t, "d", NewLoader(nil).String("anything", "d"))
}

func TestEnv_GetSetting(t *testing.T) {
	t.Setenv("SIMPLEDB_DB_HOST", "db.internal")
	t.Setenv("SIMPLEDB_DB_DEV_MODE", "1")

	v, err := Env("simpledb").GetSetting("db.host")
	require.NoError(t, err)
	require.Equal(t, "db.internal", v)

	cfg := LoadDatabase(NewLoader(Env("simpledb")))
	require.Equal(t, "db.internal", cfg.Host)
	require.True(t, cfg.DevMode)
	require.Equal(t, DriverMySQL, cfg.Driver)
	require.Equal(t, 0, cfg.Port)
	require.Equal(t, DefaultConnectTimeout, cfg.ConnectTimeout)
}

func TestLoadDatabase(t *testing.T) {
	cfg := LoadDatabase(NewLoader(Map{
		"db.driver":          DriverSQLite,
		"db.name":            "/var/lib/simpledb/app.db",
		"db.port":            "5433",
		"db.username":        "app",
		"db.connect_timeout": "3s",
	}))

	require.Equal(t, Database{
		Driver:   DriverSQLite,
		Host:     "localhost",
		Port:     5433,
		Username: "app",
		Name:     "/var/lib/simpledb/app.db",

		ConnectTimeout: 3 * time.Second,
	}, cfg)
}
