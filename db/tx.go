package db

import (
	"context"
	"database/sql"
)

// Tx decorates sql.Tx with outcome callbacks. A callback registered for
// commit runs only once the commit has succeeded, so side effects that are
// observable outside the transaction can be parked on it.
type Tx struct {
	*sql.Tx
	onCommit   []func()
	onRollback []func()
}

// NewTx begins a transaction on database and wraps it.
func NewTx(ctx context.Context, database *sql.DB) (*Tx, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	return &Tx{Tx: tx}, nil
}

// AddCommitCallback parks cb until Commit succeeds.
func (t *Tx) AddCommitCallback(cb func()) {
	t.onCommit = append(t.onCommit, cb)
}

// AddRollbackCallback parks cb until Rollback succeeds.
func (t *Tx) AddRollbackCallback(cb func()) {
	t.onRollback = append(t.onRollback, cb)
}

func (t *Tx) Commit() error {
	if err := t.Tx.Commit(); err != nil {
		return err
	}
	for _, cb := range t.onCommit {
		cb()
	}

	return nil
}

func (t *Tx) Rollback() error {
	if err := t.Tx.Rollback(); err != nil {
		return err
	}
	for _, cb := range t.onRollback {
		cb()
	}

	return nil
}
