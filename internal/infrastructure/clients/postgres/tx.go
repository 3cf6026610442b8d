package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

type txKey struct{}

type txState struct {
	tx         *sql.Tx
	savepoints int
}

// InTransaction reports whether ctx carries an open transaction
func InTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*txState)
	return ok
}

// WithinTransaction runs fn in a transaction carried by the context handed to fn.
// When ctx already carries a transaction, fn runs inside a savepoint instead and
// a failure rolls back to that savepoint only.
func (c *Client) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if state, ok := ctx.Value(txKey{}).(*txState); ok {
		return state.withinSavepoint(ctx, fn)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, &txState{tx: tx})); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *txState) withinSavepoint(ctx context.Context, fn func(ctx context.Context) error) error {
	s.savepoints++
	name := fmt.Sprintf("sp_%d", s.savepoints)

	if _, err := s.tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to create savepoint: %w", err)
	}

	if err := fn(ctx); err != nil {
		if _, rbErr := s.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			return fmt.Errorf("%w (rollback to savepoint failed: %v)", err, rbErr)
		}
		return err
	}

	if _, err := s.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to release savepoint: %w", err)
	}
	return nil
}
