package config

import "time"

// Supported database/sql driver names
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// DefaultConnectTimeout applies when db.connect_timeout is not set
const DefaultConnectTimeout = 10 * time.Second

// Database holds the settings needed to reach one database
type Database struct {
	Driver   string
	Host     string
	Port     int // 0 selects the driver's default port
	Username string
	Password string

	// Name is the database name, or the file path for SQLite
	Name string

	// DevMode echoes every statement before it runs
	DevMode bool

	// ConnectTimeout bounds dialing and the initial ping; 0 disables it
	ConnectTimeout time.Duration
}

// LoadDatabase reads the db.* settings
func LoadDatabase(l *Loader) Database {
	return Database{
		Driver:   l.String("db.driver", DriverMySQL),
		Host:     l.String("db.host", "localhost"),
		Port:     l.Int("db.port", 0),
		Username: l.String("db.username", ""),
		Password: l.String("db.password", ""),
		Name:     l.String("db.name", ""),
		DevMode:  l.Bool("db.dev_mode", false),

		ConnectTimeout: l.Duration("db.connect_timeout", DefaultConnectTimeout),
	}
}
