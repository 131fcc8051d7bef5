package rpc

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/ethereum/go-ethereum/common"
	"github.com/zabit11/movement/escrow"
)

// BridgeClientInterface is the interface that defines the implementation of all the endpoints
type BridgeClientInterface interface {
	InitiateTransfer(
		originator common.Address,
		recipient common.Hash,
		hashLock common.Hash,
		timeLock uint64,
		nativeAmount, wrappedAmount *big.Int,
	) (common.Hash, error)
	CompleteTransfer(id, secret common.Hash) error
	RefundTransfer(id common.Hash) error
	GetTransfer(id common.Hash) (*escrow.BridgeTransfer, error)
	VaultAddress() (common.Address, error)
	NetworkID() (uint32, error)
}

// InitiateTransfer locks value for the recipient behind the hash lock until
// the time lock. It returns the id assigned to the new transfer.
func (c *Client) InitiateTransfer(
	originator common.Address,
	recipient common.Hash,
	hashLock common.Hash,
	timeLock uint64,
	nativeAmount, wrappedAmount *big.Int,
) (common.Hash, error) {
	response, err := rpc.JSONRPCCall(c.url, "bridge_initiateTransfer",
		originator, recipient, hashLock, timeLock, nativeAmount, wrappedAmount)
	if err != nil {
		return common.Hash{}, err
	}
	if response.Error != nil {
		return common.Hash{}, fmt.Errorf("%v %v", response.Error.Code, response.Error.Message)
	}
	var result common.Hash
	return result, json.Unmarshal(response.Result, &result)
}

// CompleteTransfer releases the transfer to its recipient in exchange for
// the secret behind the hash lock.
func (c *Client) CompleteTransfer(id, secret common.Hash) error {
	response, err := rpc.JSONRPCCall(c.url, "bridge_completeTransfer", id, secret)
	if err != nil {
		return err
	}
	if response.Error != nil {
		return fmt.Errorf("%v %v", response.Error.Code, response.Error.Message)
	}

	return nil
}

// RefundTransfer returns an expired transfer to its originator.
func (c *Client) RefundTransfer(id common.Hash) error {
	response, err := rpc.JSONRPCCall(c.url, "bridge_refundTransfer", id)
	if err != nil {
		return err
	}
	if response.Error != nil {
		return fmt.Errorf("%v %v", response.Error.Code, response.Error.Message)
	}

	return nil
}

// GetTransfer returns the stored record of the transfer with the given id.
func (c *Client) GetTransfer(id common.Hash) (*escrow.BridgeTransfer, error) {
	response, err := rpc.JSONRPCCall(c.url, "bridge_getTransfer", id)
	if err != nil {
		return nil, err
	}
	if response.Error != nil {
		return nil, fmt.Errorf("%v %v", response.Error.Code, response.Error.Message)
	}
	var result escrow.BridgeTransfer
	if err := json.Unmarshal(response.Result, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// VaultAddress returns the address holding the escrowed value. Wrapped
// transfers need an allowance for this address before they can be initiated.
func (c *Client) VaultAddress() (common.Address, error) {
	response, err := rpc.JSONRPCCall(c.url, "bridge_vaultAddress")
	if err != nil {
		return common.Address{}, err
	}
	if response.Error != nil {
		return common.Address{}, fmt.Errorf("%v %v", response.Error.Code, response.Error.Message)
	}
	var result common.Address
	return result, json.Unmarshal(response.Result, &result)
}

// NetworkID returns the networkID of the network the node operates on
func (c *Client) NetworkID() (uint32, error) {
	response, err := rpc.JSONRPCCall(c.url, "bridge_networkID")
	if err != nil {
		return 0, err
	}
	if response.Error != nil {
		return 0, fmt.Errorf("%v %v", response.Error.Code, response.Error.Message)
	}
	var result uint32
	return result, json.Unmarshal(response.Result, &result)
}
