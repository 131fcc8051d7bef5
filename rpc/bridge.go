package rpc

import (
	"context"
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
	// BRIDGE is the namespace of the bridge service
	BRIDGE    = "bridge"
	meterName = "github.com/zabit11/movement/rpc"

	zeroHex = "0x0"
)

// BridgeEndpoints contains implementations for the "bridge" RPC endpoints
type BridgeEndpoints struct {
	logger       *log.Logger
	meter        metric.Meter
	readTimeout  time.Duration
	writeTimeout time.Duration
	networkID    uint32
	escrow       TransferEscrower
}

// NewBridgeEndpoints returns BridgeEndpoints
func NewBridgeEndpoints(
	logger *log.Logger,
	writeTimeout time.Duration,
	readTimeout time.Duration,
	networkID uint32,
	escrow TransferEscrower,
) *BridgeEndpoints {
	meter := otel.Meter(meterName)

	return &BridgeEndpoints{
		logger:       logger,
		meter:        meter,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
		networkID:    networkID,
		escrow:       escrow,
	}
}

// InitiateTransfer locks value for the recipient behind the hash lock until
// the time lock and returns the id of the new transfer. The native and
// wrapped legs are pulled from the originator, the wrapped one requires a
// prior allowance for the vault address.
func (b *BridgeEndpoints) InitiateTransfer(
	originator common.Address,
	recipient common.Hash,
	hashLock common.Hash,
	timeLock uint64,
	nativeAmount *big.Int,
	wrappedAmount *big.Int,
) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.writeTimeout)
	defer cancel()

	c, merr := b.meter.Int64Counter("initiate_transfer")
	if merr != nil {
		b.logger.Warnf("failed to create initiate_transfer counter: %s", merr)
	}
	c.Add(ctx, 1)

	id, err := b.escrow.Initiate(ctx, originator, recipient, hashLock, timeLock, nativeAmount, wrappedAmount)
	if err != nil {
		return zeroHex, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("failed to initiate transfer, error: %s", err))
	}

	return id, nil
}

// CompleteTransfer releases the transfer to its recipient in exchange for
// the secret behind the hash lock. Anyone who knows the secret may call it.
func (b *BridgeEndpoints) CompleteTransfer(id common.Hash, secret common.Hash) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.writeTimeout)
	defer cancel()

	c, merr := b.meter.Int64Counter("complete_transfer")
	if merr != nil {
		b.logger.Warnf("failed to create complete_transfer counter: %s", merr)
	}
	c.Add(ctx, 1)

	if err := b.escrow.Complete(ctx, id, secret); err != nil {
		return zeroHex, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("failed to complete transfer %s, error: %s", id, err))
	}

	return nil, nil
}

// RefundTransfer returns an expired transfer to its originator. Anyone may
// call it on the originator's behalf.
func (b *BridgeEndpoints) RefundTransfer(id common.Hash) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.writeTimeout)
	defer cancel()

	c, merr := b.meter.Int64Counter("refund_transfer")
	if merr != nil {
		b.logger.Warnf("failed to create refund_transfer counter: %s", merr)
	}
	c.Add(ctx, 1)

	if err := b.escrow.Refund(ctx, id); err != nil {
		return zeroHex, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("failed to refund transfer %s, error: %s", id, err))
	}

	return nil, nil
}

// GetTransfer returns the stored record of the transfer with the given id.
func (b *BridgeEndpoints) GetTransfer(id common.Hash) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.readTimeout)
	defer cancel()

	c, merr := b.meter.Int64Counter("get_transfer")
	if merr != nil {
		b.logger.Warnf("failed to create get_transfer counter: %s", merr)
	}
	c.Add(ctx, 1)

	transfer, err := b.escrow.GetTransfer(ctx, id)
	if err != nil {
		return zeroHex, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("failed to get transfer %s, error: %s", id, err))
	}

	return transfer, nil
}

// VaultAddress returns the account that custodies escrowed value. Wrapped
// allowances have to be granted to this address before initiating.
func (b *BridgeEndpoints) VaultAddress() (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.readTimeout)
	defer cancel()

	c, merr := b.meter.Int64Counter("vault_address")
	if merr != nil {
		b.logger.Warnf("failed to create vault_address counter: %s", merr)
	}
	c.Add(ctx, 1)

	return b.escrow.Vault(), nil
}

// NetworkID returns the identifier this node reports for its local domain.
func (b *BridgeEndpoints) NetworkID() (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.readTimeout)
	defer cancel()

	c, merr := b.meter.Int64Counter("network_id")
	if merr != nil {
		b.logger.Warnf("failed to create network_id counter: %s", merr)
	}
	c.Add(ctx, 1)

	return b.networkID, nil
}
