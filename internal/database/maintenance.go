package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Ping opens a connection, checks it and closes it again
func (db *DB) Ping(ctx context.Context) (err error) {
	if db == nil || db.conn == nil {
		return fmt.Errorf("database not initialized")
	}

	h, err := db.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := db.Release(h); rerr != nil {
			if err == nil {
				err = rerr
				return
			}
			log.Error().Err(rerr).Msg("Failed to release connection after ping")
		}
	}()

	if err := h.conn.PingContext(ctx); err != nil {
		return &ConnectionError{Op: "ping", Err: err}
	}
	return nil
}

// Stats returns the driver's connection statistics. With no transaction
// open and no statement running, OpenConnections is 0.
func (db *DB) Stats() sql.DBStats {
	return db.conn.Stats()
}
