package escrow

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TransferState is the lifecycle state of a transfer. Initiated is the only
// state funds can leave from, the other two are terminal and mutually
// exclusive.
type TransferState string

const (
	// StateInitiated value has been locked and waits for a secret or the
	// time lock.
	StateInitiated = TransferState("initiated")
	// StateCompleted the secret was revealed and the recipient was paid.
	StateCompleted = TransferState("completed")
	// StateRefunded the time lock expired and the originator was paid back.
	StateRefunded = TransferState("refunded")
)

// BridgeTransfer is a hash-time-locked transfer held by the vault.
type BridgeTransfer struct {
	// ID identifies the transfer, derived from its parameters and a nonce.
	ID common.Hash `meddler:"id,hash"`
	// Amount is the combined native value locked for the recipient.
	Amount *big.Int `meddler:"amount,bigint"`
	// Originator is the local account that locked the value.
	Originator common.Address `meddler:"originator,address"`
	// Recipient is an opaque 32 byte word naming the counterparty account.
	Recipient common.Hash `meddler:"recipient,hash"`
	// HashLock is the keccak256 commitment the secret must satisfy.
	HashLock common.Hash `meddler:"hash_lock,hash"`
	// TimeLock is the unix second after which the transfer is refundable.
	TimeLock uint64        `meddler:"time_lock"`
	State    TransferState `meddler:"state"`
}

// RecipientAddress maps the recipient word onto a local account, taking its
// rightmost 20 bytes.
func (t *BridgeTransfer) RecipientAddress() common.Address {
	return common.BytesToAddress(t.Recipient.Bytes())
}
