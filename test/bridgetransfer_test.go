package test

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"github.com/zabit11/movement/escrow"
	"github.com/zabit11/movement/rpc"
	"github.com/zabit11/movement/test/helpers"
)

func TestBridgeTransferComplete(t *testing.T) {
	env := helpers.NewBridgeEnv(t)

	alice := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	bob := common.HexToAddress("0x00000000000000000000000000000000000000bb")
	secret := common.HexToHash("0x736563726574")
	hashLock := escrow.HashSecret(secret)

	// Fund the originator with both asset forms and let the vault pull the
	// wrapped leg.
	require.NoError(t, env.Client.Mint(rpc.AssetNative, alice, big.NewInt(1000)))
	require.NoError(t, env.Client.Mint(rpc.AssetWrapped, alice, big.NewInt(500)))
	require.NoError(t, env.Client.Approve(rpc.AssetWrapped, alice, env.Vault, big.NewInt(500)))

	timeLock := uint64(time.Now().Add(time.Hour).Unix())
	id, err := env.Client.InitiateTransfer(
		alice, common.BytesToHash(bob.Bytes()), hashLock, timeLock,
		big.NewInt(100), big.NewInt(40),
	)
	require.NoError(t, err)

	transfer, err := env.Client.GetTransfer(id)
	require.NoError(t, err)
	require.Equal(t, escrow.StateInitiated, transfer.State)
	require.Equal(t, big.NewInt(140), transfer.Amount)

	// The combined value sits on the vault until the secret shows up.
	balance, err := env.Client.BalanceOf(rpc.AssetNative, env.Vault)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(140), balance)

	require.NoError(t, env.Client.CompleteTransfer(id, secret))

	transfer, err = env.Client.GetTransfer(id)
	require.NoError(t, err)
	require.Equal(t, escrow.StateCompleted, transfer.State)

	balance, err = env.Client.BalanceOf(rpc.AssetNative, bob)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(140), balance)

	balance, err = env.Client.BalanceOf(rpc.AssetNative, env.Vault)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(0), balance)

	balance, err = env.Client.BalanceOf(rpc.AssetNative, alice)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(900), balance)

	balance, err = env.Client.BalanceOf(rpc.AssetWrapped, alice)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(460), balance)
}

func TestBridgeTransferRefundedBySponsor(t *testing.T) {
	env := helpers.NewBridgeEnv(t)

	alice := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	bob := common.HexToAddress("0x00000000000000000000000000000000000000bb")
	secret := common.HexToHash("0x736563726574")

	require.NoError(t, env.Client.Mint(rpc.AssetNative, alice, big.NewInt(300)))

	timeLock := uint64(time.Now().Add(time.Second).Unix())
	id, err := env.Client.InitiateTransfer(
		alice, common.BytesToHash(bob.Bytes()), escrow.HashSecret(secret), timeLock,
		big.NewInt(120), nil,
	)
	require.NoError(t, err)

	// The sponsor picks the transfer up on its own once the lock expires.
	helpers.RequireTransferState(t, env.Client, id, escrow.StateRefunded)

	balance, err := env.Client.BalanceOf(rpc.AssetNative, alice)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(300), balance)

	// A late secret no longer unlocks anything.
	err = env.Client.CompleteTransfer(id, secret)
	require.ErrorContains(t, err, "already finalized")
}

func TestBridgeMetadata(t *testing.T) {
	env := helpers.NewBridgeEnv(t)

	vault, err := env.Client.VaultAddress()
	require.NoError(t, err)
	require.Equal(t, env.Vault, vault)

	networkID, err := env.Client.NetworkID()
	require.NoError(t, err)
	require.Equal(t, helpers.NetworkID, networkID)

	_, err = env.Client.BalanceOf("frozen", vault)
	require.ErrorContains(t, err, "unknown asset")
}
