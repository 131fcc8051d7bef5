package rpc

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/ethereum/go-ethereum/common"
)

// FungibleClientInterface is the interface that defines the implementation of all the endpoints
type FungibleClientInterface interface {
	BalanceOf(asset string, account common.Address) (*big.Int, error)
	Allowance(asset string, owner, spender common.Address) (*big.Int, error)
	Approve(asset string, owner, spender common.Address, amount *big.Int) error
	Mint(asset string, to common.Address, amount *big.Int) error
}

// BalanceOf returns the balance the account holds on the given asset.
func (c *Client) BalanceOf(asset string, account common.Address) (*big.Int, error) {
	response, err := rpc.JSONRPCCall(c.url, "fungible_balanceOf", asset, account)
	if err != nil {
		return nil, err
	}
	if response.Error != nil {
		return nil, fmt.Errorf("%v %v", response.Error.Code, response.Error.Message)
	}
	result := new(big.Int)
	return result, json.Unmarshal(response.Result, result)
}

// Allowance returns what spender may move from the owner on the given asset.
func (c *Client) Allowance(asset string, owner, spender common.Address) (*big.Int, error) {
	response, err := rpc.JSONRPCCall(c.url, "fungible_allowance", asset, owner, spender)
	if err != nil {
		return nil, err
	}
	if response.Error != nil {
		return nil, fmt.Errorf("%v %v", response.Error.Code, response.Error.Message)
	}
	result := new(big.Int)
	return result, json.Unmarshal(response.Result, result)
}

// Approve sets what spender may move from the owner on the given asset.
func (c *Client) Approve(asset string, owner, spender common.Address, amount *big.Int) error {
	response, err := rpc.JSONRPCCall(c.url, "fungible_approve", asset, owner, spender, amount)
	if err != nil {
		return err
	}
	if response.Error != nil {
		return fmt.Errorf("%v %v", response.Error.Code, response.Error.Message)
	}

	return nil
}

// Mint credits freshly issued units to the account on the given asset.
func (c *Client) Mint(asset string, to common.Address, amount *big.Int) error {
	response, err := rpc.JSONRPCCall(c.url, "fungible_mint", asset, to, amount)
	if err != nil {
		return err
	}
	if response.Error != nil {
		return fmt.Errorf("%v %v", response.Error.Code, response.Error.Message)
	}

	return nil
}
