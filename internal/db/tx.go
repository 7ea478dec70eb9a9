package db

import (
	"context"
	"database/sql"
	"fmt"
)

// WithinTx runs fn on a single checked-out connection. The transaction commits only when fn
// returns nil; any error or panic rolls it back and the connection goes back to the pool.
// fn's error is returned unwrapped.
func WithinTx(ctx context.Context, conn *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
