package rpc

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/zabit11/movement/db"
	"github.com/zabit11/movement/escrow"
)

// TransferEscrower is the escrow surface the bridge endpoints expose.
type TransferEscrower interface {
	Initiate(
		ctx context.Context,
		originator common.Address,
		recipient common.Hash,
		hashLock common.Hash,
		timeLock uint64,
		nativeAmount *big.Int,
		wrappedAmount *big.Int,
	) (common.Hash, error)
	Complete(ctx context.Context, id common.Hash, secret common.Hash) error
	Refund(ctx context.Context, id common.Hash) error
	GetTransfer(ctx context.Context, id common.Hash) (*escrow.BridgeTransfer, error)
	Vault() common.Address
}

// AssetLedger is the fungible ledger surface the asset endpoints expose.
type AssetLedger interface {
	BalanceOf(q db.Querier, account common.Address) (*big.Int, error)
	Allowance(q db.Querier, owner, spender common.Address) (*big.Int, error)
	Approve(q db.Querier, owner, spender common.Address, amount *big.Int) error
	Mint(q db.Querier, to common.Address, amount *big.Int) error
}
