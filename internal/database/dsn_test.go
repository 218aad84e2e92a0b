package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/saltyorg/simpledb/internal/config"
)

func TestDataSource_MySQLFixedFlags(t *testing.T) {
	driver, dsn, err := DataSource(config.Database{
		Host:     "db.example.com",
		Username: "sbsst",
		Password: "sbs123414",
		Name:     "simpleDb__test",

		ConnectTimeout: 3 * time.Second,
	})
	require.NoError(t, err)
	require.Equal(t, config.DriverMySQL, driver)
	require.Contains(t, dsn, "sbsst:sbs123414@tcp(db.example.com:3306)/simpleDb__test?")
	require.Contains(t, dsn, "tls=false")
	require.Contains(t, dsn, "parseTime=true")
	require.Contains(t, dsn, "loc=Asia%2FSeoul")
	require.Contains(t, dsn, "timeout=3s")
}

func TestDataSource_Postgres(t *testing.T) {
	driver, dsn, err := DataSource(config.Database{
		Driver:   config.DriverPostgres,
		Host:     "pg.example.com",
		Username: "app",
		Password: "secret",
		Name:     "articles",
	})
	require.NoError(t, err)
	require.Equal(t, config.DriverPostgres, driver)
	require.NotEmpty(t, dsn)
}

func TestDataSource_SQLite(t *testing.T) {
	driver, dsn, err := DataSource(config.Database{Driver: config.DriverSQLite, Name: "/tmp/a.db"})
	require.NoError(t, err)
	require.Equal(t, config.DriverSQLite, driver)
	require.Equal(t, SQLiteDSN("/tmp/a.db"), dsn)

	_, _, err = DataSource(config.Database{Driver: config.DriverSQLite})
	require.Error(t, err)
}

func TestDataSource_UnknownDriver(t *testing.T) {
	_, _, err := DataSource(config.Database{Driver: "oracle"})
	require.Error(t, err)
}
