package database

import (
	"context"
	"database/sql"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type txKey struct{}

// txState is the transaction slot carried by a context. The handle is cleared
// exactly once, by whichever of commit, rollback or close gets there first.
type txState struct {
	mu     sync.Mutex
	handle *Handle
}

func (t *txState) current() *Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.handle
}

func (t *txState) take() *Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	h := t.handle
	t.handle = nil
	return h
}

func txFromContext(ctx context.Context) *txState {
	st, _ := ctx.Value(txKey{}).(*txState)
	return st
}

// BeginTransaction opens a dedicated connection, starts a transaction on it
// and returns a context carrying that transaction. Statements run with the
// returned context (or any context derived from it) share the transaction
// until Commit, Rollback or CloseTransaction is called with it.
//
// Calling BeginTransaction with a context that already carries a transaction
// shadows the outer one; ending the outer transaction remains the caller's
// job.
func (db *DB) BeginTransaction(ctx context.Context) (context.Context, error) {
	conn, err := db.connect(ctx)
	if err != nil {
		return ctx, err
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		if cerr := conn.Close(); cerr != nil {
			log.Error().Err(cerr).Msg("Failed to close connection after failed begin")
		}
		return ctx, &TransactionError{Op: "begin", Err: err}
	}

	log.Debug().Msg("Transaction started")
	return context.WithValue(ctx, txKey{}, &txState{handle: &Handle{conn: conn, tx: tx}}), nil
}

// IsInTransaction reports whether ctx carries an open transaction
func (db *DB) IsInTransaction(ctx context.Context) bool {
	st := txFromContext(ctx)
	return st != nil && st.current() != nil
}

// Commit commits the transaction carried by ctx. The connection is closed
// and the transaction cleared even when the commit fails.
func (db *DB) Commit(ctx context.Context) error {
	return db.endTransaction(ctx, "commit", (*sql.Tx).Commit)
}

// Rollback rolls back the transaction carried by ctx. The connection is
// closed and the transaction cleared even when the rollback fails.
func (db *DB) Rollback(ctx context.Context) error {
	return db.endTransaction(ctx, "rollback", (*sql.Tx).Rollback)
}

// CloseTransaction discards the transaction carried by ctx, rolling back
// whatever it has not committed, and closes its connection
func (db *DB) CloseTransaction(ctx context.Context) error {
	return db.endTransaction(ctx, "close", func(tx *sql.Tx) error {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			return err
		}
		return nil
	})
}

// WithTransaction runs fn inside a transaction, committing when fn succeeds
// and rolling back otherwise
func (db *DB) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	txCtx, err := db.BeginTransaction(ctx)
	if err != nil {
		return err
	}

	if err := fn(txCtx); err != nil {
		if rbErr := db.Rollback(txCtx); rbErr != nil {
			log.Error().Err(rbErr).Msg("Failed to rollback transaction")
		}
		return err
	}

	return db.Commit(txCtx)
}

func (db *DB) endTransaction(ctx context.Context, op string, finish func(*sql.Tx) error) (err error) {
	st := txFromContext(ctx)
	if st == nil {
		return nil
	}
	h := st.take()
	if h == nil {
		return nil
	}

	defer func() {
		if cerr := h.conn.Close(); cerr != nil {
			log.Error().Err(cerr).Str("op", op).Msg("Failed to close transaction connection")
			if err == nil {
				err = &ConnectionError{Op: "close", Err: cerr}
			}
		}
	}()

	if ferr := finish(h.tx); ferr != nil {
		return &TransactionError{Op: op, Err: ferr}
	}

	log.Debug().Str("op", op).Msg("Transaction finished")
	return nil
}
