package database

import (
	"context"
	"database/sql"
)

// Handle is one live connection. A transactional handle also carries its open
// transaction and belongs to it: Release leaves it open.
type Handle struct {
	conn *sql.Conn
	tx   *sql.Tx
}

// Transactional reports whether the handle belongs to a transaction
func (h *Handle) Transactional() bool {
	return h.tx != nil
}

func (h *Handle) prepare(ctx context.Context, query string) (*sql.Stmt, error) {
	if h.tx != nil {
		return h.tx.PrepareContext(ctx, query)
	}
	return h.conn.PrepareContext(ctx, query)
}

func (db *DB) connect(ctx context.Context) (*sql.Conn, error) {
	conn, err := db.conn.Conn(ctx)
	if err != nil {
		return nil, &ConnectionError{Op: "open", Err: err}
	}
	return conn, nil
}

// Acquire returns the handle of the transaction carried by ctx, or opens a
// new connection when there is none
func (db *DB) Acquire(ctx context.Context) (*Handle, error) {
	if st := txFromContext(ctx); st != nil {
		if h := st.current(); h != nil {
			return h, nil
		}
	}

	conn, err := db.connect(ctx)
	if err != nil {
		return nil, err
	}
	return &Handle{conn: conn}, nil
}

// Release closes h unless it belongs to a transaction
func (db *DB) Release(h *Handle) error {
	if h == nil || h.tx != nil {
		return nil
	}
	if err := h.conn.Close(); err != nil {
		return &ConnectionError{Op: "close", Err: err}
	}
	return nil
}
