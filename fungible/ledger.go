// Package fungible implements a minimal account ledger for one fungible
// asset: balances, owner to spender allowances and delegated transfers.
// All methods take a db.Querier so the caller decides the transaction
// boundary, which lets several ledgers and other state share one atomic
// write.
package fungible

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/russross/meddler"
	"github.com/zabit11/movement/db"
	"github.com/zabit11/movement/log"
)

var (
	// ErrInsufficientBalance is returned when a debit exceeds the balance
	// held by the debited account.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInsufficientAllowance is returned when a delegated transfer exceeds
	// the allowance the owner granted to the spender.
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	// ErrNegativeAmount is returned when a negative amount reaches any
	// ledger operation.
	ErrNegativeAmount = errors.New("negative amount")
)

// Account is a row of the account table.
type Account struct {
	Address common.Address `meddler:"address,address"`
	Balance *big.Int       `meddler:"balance,bigint"`
}

// Approval is a row of the allowance table.
type Approval struct {
	Owner   common.Address `meddler:"owner,address"`
	Spender common.Address `meddler:"spender,address"`
	Amount  *big.Int       `meddler:"amount,bigint"`
}

// Allocation is a genesis balance assignment.
type Allocation struct {
	Address common.Address `mapstructure:"Address"`
	Balance *big.Int       `mapstructure:"Balance"`
}

// Ledger gives access to the tables of one asset. The prefix selects which
// instance of the schema the ledger operates on.
type Ledger struct {
	prefix string
}

func NewLedger(prefix string) *Ledger {
	return &Ledger{prefix: prefix}
}

// Prefix returns the table prefix this ledger operates on.
func (l *Ledger) Prefix() string {
	return l.prefix
}

func (l *Ledger) accountTable() string   { return l.prefix + "account" }
func (l *Ledger) allowanceTable() string { return l.prefix + "allowance" }
func (l *Ledger) metaTable() string      { return l.prefix + "meta" }

func validAmount(amount *big.Int) (*big.Int, error) {
	if amount == nil {
		return big.NewInt(0), nil
	}
	if amount.Sign() < 0 {
		return nil, ErrNegativeAmount
	}
	return amount, nil
}

// BalanceOf returns the balance held by account. Accounts without a row hold
// zero.
func (l *Ledger) BalanceOf(q db.Querier, account common.Address) (*big.Int, error) {
	acc := &Account{}
	err := meddler.QueryRow(q, acc, fmt.Sprintf(`
		SELECT * FROM %s WHERE address = $1;
	`, l.accountTable()), account.Hex())
	if errors.Is(err, sql.ErrNoRows) {
		return big.NewInt(0), nil
	}
	if err != nil {
		return nil, err
	}

	return acc.Balance, nil
}

// Allowance returns the amount of the owner's balance that spender may move
// through TransferFrom.
func (l *Ledger) Allowance(q db.Querier, owner, spender common.Address) (*big.Int, error) {
	approval := &Approval{}
	err := meddler.QueryRow(q, approval, fmt.Sprintf(`
		SELECT * FROM %s WHERE owner = $1 AND spender = $2;
	`, l.allowanceTable()), owner.Hex(), spender.Hex())
	if errors.Is(err, sql.ErrNoRows) {
		return big.NewInt(0), nil
	}
	if err != nil {
		return nil, err
	}

	return approval.Amount, nil
}

func (l *Ledger) setBalance(q db.Querier, account common.Address, balance *big.Int) error {
	_, err := q.Exec(fmt.Sprintf(`
		INSERT INTO %s (address, balance) VALUES ($1, $2)
		ON CONFLICT(address) DO UPDATE SET balance = excluded.balance;
	`, l.accountTable()), account.Hex(), balance.String())

	return err
}

func (l *Ledger) setAllowance(q db.Querier, owner, spender common.Address, amount *big.Int) error {
	_, err := q.Exec(fmt.Sprintf(`
		INSERT INTO %s (owner, spender, amount) VALUES ($1, $2, $3)
		ON CONFLICT(owner, spender) DO UPDATE SET amount = excluded.amount;
	`, l.allowanceTable()), owner.Hex(), spender.Hex(), amount.String())

	return err
}

// Mint credits amount to the account, growing the asset supply.
func (l *Ledger) Mint(q db.Querier, to common.Address, amount *big.Int) error {
	amount, err := validAmount(amount)
	if err != nil {
		return err
	}
	balance, err := l.BalanceOf(q, to)
	if err != nil {
		return err
	}

	return l.setBalance(q, to, new(big.Int).Add(balance, amount))
}

// Approve sets the allowance of spender over the owner's balance. It
// overwrites any previous value.
func (l *Ledger) Approve(q db.Querier, owner, spender common.Address, amount *big.Int) error {
	amount, err := validAmount(amount)
	if err != nil {
		return err
	}

	return l.setAllowance(q, owner, spender, amount)
}

// Transfer moves amount from one account to another. It fails with
// ErrInsufficientBalance when the sender does not hold enough.
func (l *Ledger) Transfer(q db.Querier, from, to common.Address, amount *big.Int) error {
	amount, err := validAmount(amount)
	if err != nil {
		return err
	}
	fromBalance, err := l.BalanceOf(q, from)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if err := l.setBalance(q, from, new(big.Int).Sub(fromBalance, amount)); err != nil {
		return err
	}

	// re-read so a self transfer credits the already debited balance
	toBalance, err := l.BalanceOf(q, to)
	if err != nil {
		return err
	}

	return l.setBalance(q, to, new(big.Int).Add(toBalance, amount))
}

// TransferFrom moves amount from the owner to the destination on behalf of
// spender, consuming allowance. The allowance is checked before the balance.
func (l *Ledger) TransferFrom(q db.Querier, spender, from, to common.Address, amount *big.Int) error {
	amount, err := validAmount(amount)
	if err != nil {
		return err
	}
	allowance, err := l.Allowance(q, from, spender)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	if err := l.setAllowance(q, from, spender, new(big.Int).Sub(allowance, amount)); err != nil {
		return err
	}

	return l.Transfer(q, from, to, amount)
}

// ApplyGenesis mints the configured allocations. The first successful call
// marks the ledger, later calls are no-ops, so nodes can run it on every
// start.
func (l *Ledger) ApplyGenesis(ctx context.Context, database *sql.DB, allocations []Allocation) error {
	tx, err := db.NewTx(ctx, database)
	if err != nil {
		return err
	}
	shouldRollback := true
	defer func() {
		if shouldRollback {
			if errRllbck := tx.Rollback(); errRllbck != nil {
				log.Errorf("error while rolling back tx %v", errRllbck)
			}
		}
	}()

	_, err = tx.Exec(fmt.Sprintf(`
		INSERT INTO %s (k, v) VALUES ('genesis', 'applied');
	`, l.metaTable()))
	if err != nil {
		if db.IsUniqueConstraintViolation(err) {
			log.Debugf("genesis already applied on %s ledger", l.prefix)
			return nil
		}
		return err
	}

	for _, allocation := range allocations {
		if err := l.Mint(tx, allocation.Address, allocation.Balance); err != nil {
			return fmt.Errorf("error minting genesis allocation for %s: %w", allocation.Address, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	shouldRollback = false

	return nil
}
