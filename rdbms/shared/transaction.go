package shared

import (
	"context"

	"github.com/pkg/errors"
)

// WithTransaction begins a transaction on conn and runs fn inside it.
// The transaction is committed if fn returns nil and rolled back if fn returns an error or panics.
// A panic is re-raised after the rollback.
func WithTransaction(ctx context.Context, conn Connector, fn func(tx Transacter) error) (err error) {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "unable to begin transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Wrapf(err, "rollback failed (%v) after error", rbErr)
		}
		return err
	}
	if err = tx.Commit(); err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "unable to commit transaction")
	}
	return nil
}
