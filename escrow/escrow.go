// Package escrow implements hash-time-locked transfers over a local value
// domain. Value enters in either asset form, is normalized into the vault's
// native balance and leaves through exactly one of two doors: a secret
// reveal pays the recipient, an expired time lock pays back the originator.
package escrow

import (
	"context"
	"database/sql"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/russross/meddler"
	"github.com/zabit11/movement/db"
	"github.com/zabit11/movement/escrow/migrations"
	"github.com/zabit11/movement/fungible"
	"github.com/zabit11/movement/log"
)

const errWhileRollbackFormat = "error while rolling back tx: %v"

// Escrow is the transfer state machine. All writes are serialized through
// one lock and ride a single SQL transaction, so a transfer can never pay
// out twice.
type Escrow struct {
	logger *log.Logger
	db     *sql.DB
	pool   normalizer
	now    func() time.Time

	writeLock sync.Mutex

	subscriptionsLock sync.RWMutex
	subscriptions     map[string]*Subscription
}

// New runs the migrations on cfg.DBPath and builds the state machine on top
// of the given ledgers. The native ledger is the canonical form escrowed
// value is held in, the wrapped asset is pulled via allowances.
func New(logger *log.Logger, cfg Config, native *fungible.Ledger, wrapped WrappedAsset) (*Escrow, error) {
	if err := migrations.RunMigrations(cfg.DBPath); err != nil {
		return nil, err
	}
	database, err := db.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	return &Escrow{
		logger: logger,
		db:     database,
		pool: normalizer{
			native:  native,
			wrapped: wrapped,
			vault:   cfg.VaultAddress,
		},
		now:           time.Now,
		subscriptions: make(map[string]*Subscription),
	}, nil
}

// DB exposes the handle so collaborators operating the same value domain
// file, like the local asset endpoints, can share it.
func (e *Escrow) DB() *sql.DB {
	return e.db
}

// Vault returns the account that custodies all escrowed value.
func (e *Escrow) Vault() common.Address {
	return e.pool.vault
}

// Initiate locks value for the recipient behind hashLock until timeLock.
// Both asset legs are pulled from the originator and the transfer record is
// written in one transaction. It returns the id of the new transfer.
func (e *Escrow) Initiate(
	ctx context.Context,
	originator common.Address,
	recipient common.Hash,
	hashLock common.Hash,
	timeLock uint64,
	nativeAmount *big.Int,
	wrappedAmount *big.Int,
) (common.Hash, error) {
	combined, err := combinedAmount(nativeAmount, wrappedAmount)
	if err != nil {
		return common.Hash{}, err
	}
	if timeLock <= uint64(e.now().Unix()) {
		return common.Hash{}, ErrInvalidTimeLock
	}

	e.writeLock.Lock()
	defer e.writeLock.Unlock()

	tx, err := db.NewTx(ctx, e.db)
	if err != nil {
		return common.Hash{}, err
	}
	defer func() {
		if err != nil {
			if errRllbck := tx.Rollback(); errRllbck != nil {
				e.logger.Errorf(errWhileRollbackFormat, errRllbck)
			}
		}
	}()

	nonce, err := nextNonce(tx)
	if err != nil {
		return common.Hash{}, err
	}
	id := deriveTransferID(originator, recipient, hashLock, combined, nonce)

	if err = e.pool.deposit(tx, originator, nativeAmount, wrappedAmount); err != nil {
		return common.Hash{}, err
	}

	transfer := &BridgeTransfer{
		ID:         id,
		Amount:     combined,
		Originator: originator,
		Recipient:  recipient,
		HashLock:   hashLock,
		TimeLock:   timeLock,
		State:      StateInitiated,
	}
	if err = meddler.Insert(tx, "bridge_transfer", transfer); err != nil {
		return common.Hash{}, err
	}

	snapshot := *transfer
	tx.AddCommitCallback(func() {
		e.notifySubscribers(Event{Type: EventInitiated, Transfer: snapshot})
	})
	if err = tx.Commit(); err != nil {
		return common.Hash{}, err
	}

	e.logger.Infof("transfer %s initiated by %s, %s units locked until %d",
		id, originator, combined, timeLock)

	return id, nil
}

// Complete releases the transfer to the recipient in exchange for the
// secret behind the hash lock. Anyone who knows the secret may call it.
func (e *Escrow) Complete(ctx context.Context, id common.Hash, secret common.Hash) error {
	e.writeLock.Lock()
	defer e.writeLock.Unlock()

	tx, err := db.NewTx(ctx, e.db)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if errRllbck := tx.Rollback(); errRllbck != nil {
				e.logger.Errorf(errWhileRollbackFormat, errRllbck)
			}
		}
	}()

	transfer, err := getTransfer(tx, id)
	if err != nil {
		return err
	}
	if transfer.State != StateInitiated {
		err = ErrAlreadyFinalized
		return err
	}
	if HashSecret(secret) != transfer.HashLock {
		err = ErrInvalidSecret
		return err
	}

	if err = e.finalize(tx, transfer, StateCompleted); err != nil {
		return err
	}
	if err = e.pool.payout(tx, transfer.RecipientAddress(), transfer.Amount); err != nil {
		return err
	}

	snapshot := *transfer
	tx.AddCommitCallback(func() {
		e.notifySubscribers(Event{Type: EventCompleted, Transfer: snapshot})
	})
	if err = tx.Commit(); err != nil {
		return err
	}

	e.logger.Infof("transfer %s completed, %s units credited to %s",
		id, transfer.Amount, transfer.RecipientAddress())

	return nil
}

// Refund returns the locked value to the originator once the time lock has
// expired. Anyone may call it on behalf of the originator.
func (e *Escrow) Refund(ctx context.Context, id common.Hash) error {
	e.writeLock.Lock()
	defer e.writeLock.Unlock()

	tx, err := db.NewTx(ctx, e.db)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if errRllbck := tx.Rollback(); errRllbck != nil {
				e.logger.Errorf(errWhileRollbackFormat, errRllbck)
			}
		}
	}()

	transfer, err := getTransfer(tx, id)
	if err != nil {
		return err
	}
	if transfer.State != StateInitiated {
		err = ErrAlreadyFinalized
		return err
	}
	if uint64(e.now().Unix()) < transfer.TimeLock {
		err = ErrTimeLockNotExpired
		return err
	}

	if err = e.finalize(tx, transfer, StateRefunded); err != nil {
		return err
	}
	if err = e.pool.payout(tx, transfer.Originator, transfer.Amount); err != nil {
		return err
	}

	snapshot := *transfer
	tx.AddCommitCallback(func() {
		e.notifySubscribers(Event{Type: EventRefunded, Transfer: snapshot})
	})
	if err = tx.Commit(); err != nil {
		return err
	}

	e.logger.Infof("transfer %s refunded, %s units returned to %s",
		id, transfer.Amount, transfer.Originator)

	return nil
}

// GetTransfer returns the stored record for the given id.
func (e *Escrow) GetTransfer(ctx context.Context, id common.Hash) (*BridgeTransfer, error) {
	return getTransfer(e.db, id)
}

// GetExpiredPending lists transfers still initiated whose time lock has
// expired, oldest lock first.
func (e *Escrow) GetExpiredPending(ctx context.Context, limit int) ([]BridgeTransfer, error) {
	transfers := []*BridgeTransfer{}
	err := meddler.QueryAll(e.db, &transfers, `
		SELECT * FROM bridge_transfer
		WHERE state = $1 AND time_lock <= $2
		ORDER BY time_lock ASC
		LIMIT $3;
	`, StateInitiated, uint64(e.now().Unix()), limit)
	if err != nil {
		return nil, err
	}

	return db.SlicePtrsToSlice(transfers).([]BridgeTransfer), nil
}

// VaultBalance returns the native units currently held by the vault. While
// no transfer is in flight it equals the sum of all initiated, not yet
// finalized amounts.
func (e *Escrow) VaultBalance(ctx context.Context) (*big.Int, error) {
	return e.pool.native.BalanceOf(e.db, e.pool.vault)
}

// finalize moves the transfer out of the initiated state. The state guard
// on the update keeps the write first committer wins even outside the
// escrow lock.
func (e *Escrow) finalize(tx db.Querier, transfer *BridgeTransfer, state TransferState) error {
	res, err := tx.Exec(`
		UPDATE bridge_transfer SET state = $1 WHERE id = $2 AND state = $3;
	`, state, transfer.ID.Hex(), StateInitiated)
	if err != nil {
		return err
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrAlreadyFinalized
	}
	transfer.State = state

	return nil
}

func getTransfer(q db.Querier, id common.Hash) (*BridgeTransfer, error) {
	transfer := &BridgeTransfer{}
	err := meddler.QueryRow(q, transfer, `
		SELECT * FROM bridge_transfer WHERE id = $1;
	`, id.Hex())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTransferNotFound
	}
	if err != nil {
		return nil, err
	}

	return transfer, nil
}
