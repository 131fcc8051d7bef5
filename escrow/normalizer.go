package escrow

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/zabit11/movement/db"
	"github.com/zabit11/movement/fungible"
)

// WrappedAsset is the surface the vault needs from the wrapped form of the
// asset. Pulling through TransferFrom requires a prior allowance from the
// originator to the vault address.
type WrappedAsset interface {
	BalanceOf(q db.Querier, account common.Address) (*big.Int, error)
	Allowance(q db.Querier, owner, spender common.Address) (*big.Int, error)
	TransferFrom(q db.Querier, spender, from, to common.Address, amount *big.Int) error
}

// normalizer funnels both inbound asset forms into the single native balance
// held by the vault, and pays out of that balance. Wrapped units pulled to
// the vault are matched by native units issued to it, so one canonical
// balance carries the whole escrow liability.
type normalizer struct {
	native  *fungible.Ledger
	wrapped WrappedAsset
	vault   common.Address
}

func (n normalizer) deposit(tx db.Querier, from common.Address, nativeAmount, wrappedAmount *big.Int) error {
	if nativeAmount != nil && nativeAmount.Sign() > 0 {
		if err := n.native.Transfer(tx, from, n.vault, nativeAmount); err != nil {
			return err
		}
	}
	if wrappedAmount != nil && wrappedAmount.Sign() > 0 {
		if err := n.wrapped.TransferFrom(tx, n.vault, from, n.vault, wrappedAmount); err != nil {
			return err
		}
		if err := n.native.Mint(tx, n.vault, wrappedAmount); err != nil {
			return err
		}
	}

	return nil
}

func (n normalizer) payout(tx db.Querier, to common.Address, amount *big.Int) error {
	return n.native.Transfer(tx, n.vault, to, amount)
}

// combinedAmount adds up both legs and validates them. Either leg may be nil
// or zero, together they must be positive.
func combinedAmount(nativeAmount, wrappedAmount *big.Int) (*big.Int, error) {
	combined := new(big.Int)
	for _, amount := range []*big.Int{nativeAmount, wrappedAmount} {
		if amount == nil {
			continue
		}
		if amount.Sign() < 0 {
			return nil, fungible.ErrNegativeAmount
		}
		combined.Add(combined, amount)
	}
	if combined.Sign() == 0 {
		return nil, ErrZeroAmount
	}

	return combined, nil
}
