package database

import (
	"context"
	"database/sql"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/saltyorg/simpledb/internal/config"
	"github.com/saltyorg/simpledb/internal/logging"
)

// DB hands out connections and generates statements. It holds no open
// connection of its own: every statement runs on a dedicated connection that
// is closed afterwards, unless the statement's context carries a transaction.
type DB struct {
	conn     *sql.DB
	driver   string
	bindType int

	devMode atomic.Bool
	mu      sync.RWMutex
	diag    zerolog.Logger
}

// New opens the database described by cfg
func New(cfg config.Database) (*DB, error) {
	driverName, dsn, err := DataSource(cfg)
	if err != nil {
		return nil, &ConnectionError{Op: "configure", Err: err}
	}

	ctx := context.Background()
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	db, err := open(ctx, driverName, dsn)
	if err != nil {
		return nil, err
	}
	db.SetDevMode(cfg.DevMode)

	log.Debug().
		Str("driver", driverName).
		Str("host", cfg.Host).
		Str("database", cfg.Name).
		Msg("Database connection established")

	return db, nil
}

// Open opens a database from a raw driver name and data source name
func Open(driverName, dsn string) (*DB, error) {
	return open(context.Background(), driverName, dsn)
}

func open(ctx context.Context, driverName, dsn string) (*DB, error) {
	conn, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, &ConnectionError{Op: "open", Err: err}
	}

	// No idle pool: closing a handle closes the physical connection
	conn.SetMaxIdleConns(0)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, &ConnectionError{Op: "open", Err: err}
	}

	return &DB{
		conn:     conn,
		driver:   driverName,
		bindType: sqlx.BindType(driverName),
		diag:     logging.Diagnostic(os.Stdout),
	}, nil
}

// Close closes the underlying driver handle
func (db *DB) Close() error {
	if err := db.conn.Close(); err != nil {
		return &ConnectionError{Op: "close", Err: err}
	}
	return nil
}

// DriverName returns the database/sql driver in use
func (db *DB) DriverName() string {
	return db.driver
}

// DevMode reports whether statements are echoed to the diagnostic output
func (db *DB) DevMode() bool {
	return db.devMode.Load()
}

// SetDevMode toggles echoing of every statement before it runs
func (db *DB) SetDevMode(on bool) {
	db.devMode.Store(on)
}

// SetDiagnosticOutput redirects the dev mode SQL echo
func (db *DB) SetDiagnosticOutput(w io.Writer) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.diag = logging.Diagnostic(w)
}

// GenSQL starts a new statement
func (db *DB) GenSQL() *Statement {
	return &Statement{db: db}
}

// Run appends query and args to a new statement and executes it
func (db *DB) Run(ctx context.Context, query string, args ...any) error {
	_, err := db.GenSQL().Append(query, args...).Execute(ctx)
	return err
}

func (db *DB) logSQL(query string) {
	if !db.devMode.Load() {
		return
	}
	db.mu.RLock()
	diag := db.diag
	db.mu.RUnlock()
	diag.Log().Str("sql", query).Msg("SQL")
}

// rebind rewrites ? markers into the driver's bind style
func (db *DB) rebind(query string) string {
	return sqlx.Rebind(db.bindType, query)
}
