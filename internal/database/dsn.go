package database

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/saltyorg/simpledb/internal/config"
)

// Fixed connection flags. They are part of the provider, not of the settings.
const (
	ServerTimeZone = "Asia/Seoul"

	defaultMySQLPort    = 3306
	defaultPostgresPort = 5432
)

// DataSource returns the database/sql driver name and DSN for cfg. TLS is
// disabled and the server time zone is fixed to ServerTimeZone for the
// network drivers; for SQLite, cfg.Name is the database file path.
func DataSource(cfg config.Database) (driverName, dsn string, err error) {
	switch cfg.Driver {
	case "", config.DriverMySQL:
		dsn, err = mysqlDSN(cfg)
		return config.DriverMySQL, dsn, err
	case config.DriverPostgres:
		dsn, err = postgresDSN(cfg)
		return config.DriverPostgres, dsn, err
	case config.DriverSQLite:
		if cfg.Name == "" {
			return "", "", fmt.Errorf("sqlite database path is required")
		}
		return config.DriverSQLite, SQLiteDSN(cfg.Name), nil
	}
	return "", "", fmt.Errorf("unsupported driver %q", cfg.Driver)
}

func mysqlDSN(cfg config.Database) (string, error) {
	loc, err := time.LoadLocation(ServerTimeZone)
	if err != nil {
		return "", fmt.Errorf("failed to load time zone %s: %w", ServerTimeZone, err)
	}

	mc := mysql.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(hostOrDefault(cfg.Host), strconv.Itoa(portOrDefault(cfg.Port, defaultMySQLPort)))
	mc.DBName = cfg.Name
	mc.TLSConfig = "false"
	mc.Loc = loc
	mc.ParseTime = true
	mc.Timeout = cfg.ConnectTimeout
	// Without TLS the driver fetches the server's RSA public key for
	// caching_sha2_password when it needs to.
	mc.AllowNativePasswords = true

	return mc.FormatDSN(), nil
}

func postgresDSN(cfg config.Database) (string, error) {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(hostOrDefault(cfg.Host), strconv.Itoa(portOrDefault(cfg.Port, defaultPostgresPort))),
		Path:   "/" + cfg.Name,
	}
	if cfg.Username != "" {
		u.User = url.UserPassword(cfg.Username, cfg.Password)
	}
	q := url.Values{}
	q.Set("sslmode", "disable")
	q.Set("timezone", ServerTimeZone)
	u.RawQuery = q.Encode()

	cc, err := pgx.ParseConfig(u.String())
	if err != nil {
		return "", fmt.Errorf("invalid postgres config: %w", err)
	}
	cc.ConnectTimeout = cfg.ConnectTimeout
	return stdlib.RegisterConnConfig(cc), nil
}

// SQLiteDSN returns the modernc.org/sqlite DSN for the database file at path
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_time_format=sqlite", path)
}

func hostOrDefault(host string) string {
	if host == "" {
		return "localhost"
	}
	return host
}

func portOrDefault(port, def int) int {
	if port <= 0 {
		return def
	}
	return port
}
