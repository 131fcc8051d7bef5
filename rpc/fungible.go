package rpc

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	"github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/ethereum/go-ethereum/common"
	"github.com/zabit11/movement/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	// FUNGIBLE is the namespace of the local asset service
	FUNGIBLE = "fungible"

	// AssetNative selects the canonical asset form
	AssetNative = "native"
	// AssetWrapped selects the wrapped asset form
	AssetWrapped = "wrapped"
)

// FungibleEndpoints contains implementations for the "fungible" RPC
// endpoints, operating the node's local asset ledgers.
type FungibleEndpoints struct {
	logger       *log.Logger
	meter        metric.Meter
	readTimeout  time.Duration
	writeTimeout time.Duration
	db           *sql.DB
	native       AssetLedger
	wrapped      AssetLedger
}

// NewFungibleEndpoints returns FungibleEndpoints
func NewFungibleEndpoints(
	logger *log.Logger,
	writeTimeout time.Duration,
	readTimeout time.Duration,
	db *sql.DB,
	native AssetLedger,
	wrapped AssetLedger,
) *FungibleEndpoints {
	meter := otel.Meter(meterName)

	return &FungibleEndpoints{
		logger:       logger,
		meter:        meter,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
		db:           db,
		native:       native,
		wrapped:      wrapped,
	}
}

func (f *FungibleEndpoints) ledgerFor(asset string) (AssetLedger, rpc.Error) {
	switch asset {
	case AssetNative:
		return f.native, nil
	case AssetWrapped:
		return f.wrapped, nil
	default:
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("unknown asset %q", asset))
	}
}

// BalanceOf returns the balance the account holds on the given asset.
func (f *FungibleEndpoints) BalanceOf(asset string, account common.Address) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), f.readTimeout)
	defer cancel()

	c, merr := f.meter.Int64Counter("balance_of")
	if merr != nil {
		f.logger.Warnf("failed to create balance_of counter: %s", merr)
	}
	c.Add(ctx, 1)

	ledger, rpcErr := f.ledgerFor(asset)
	if rpcErr != nil {
		return zeroHex, rpcErr
	}
	balance, err := ledger.BalanceOf(f.db, account)
	if err != nil {
		return zeroHex, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("failed to get balance, error: %s", err))
	}

	return balance, nil
}

// Allowance returns what spender may move from the owner on the given asset.
func (f *FungibleEndpoints) Allowance(asset string, owner, spender common.Address) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), f.readTimeout)
	defer cancel()

	c, merr := f.meter.Int64Counter("allowance")
	if merr != nil {
		f.logger.Warnf("failed to create allowance counter: %s", merr)
	}
	c.Add(ctx, 1)

	ledger, rpcErr := f.ledgerFor(asset)
	if rpcErr != nil {
		return zeroHex, rpcErr
	}
	allowance, err := ledger.Allowance(f.db, owner, spender)
	if err != nil {
		return zeroHex, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("failed to get allowance, error: %s", err))
	}

	return allowance, nil
}

// Approve sets what spender may move from the owner on the given asset,
// overwriting any previous allowance.
func (f *FungibleEndpoints) Approve(asset string, owner, spender common.Address, amount *big.Int) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), f.writeTimeout)
	defer cancel()

	c, merr := f.meter.Int64Counter("approve")
	if merr != nil {
		f.logger.Warnf("failed to create approve counter: %s", merr)
	}
	c.Add(ctx, 1)

	ledger, rpcErr := f.ledgerFor(asset)
	if rpcErr != nil {
		return zeroHex, rpcErr
	}
	if err := ledger.Approve(f.db, owner, spender, amount); err != nil {
		return zeroHex, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("failed to approve, error: %s", err))
	}

	return nil, nil
}

// Mint credits freshly issued units to the account on the given asset.
func (f *FungibleEndpoints) Mint(asset string, to common.Address, amount *big.Int) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), f.writeTimeout)
	defer cancel()

	c, merr := f.meter.Int64Counter("mint")
	if merr != nil {
		f.logger.Warnf("failed to create mint counter: %s", merr)
	}
	c.Add(ctx, 1)

	ledger, rpcErr := f.ledgerFor(asset)
	if rpcErr != nil {
		return zeroHex, rpcErr
	}
	if err := ledger.Mint(f.db, to, amount); err != nil {
		return zeroHex, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("failed to mint, error: %s", err))
	}

	return nil, nil
}
