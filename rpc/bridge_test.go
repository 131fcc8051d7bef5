package rpc

import (
	"math/big"
	"path"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"github.com/zabit11/movement/escrow"
	"github.com/zabit11/movement/escrow/migrations"
	"github.com/zabit11/movement/fungible"
	"github.com/zabit11/movement/log"
)

var (
	testVault = common.HexToAddress("0x0000000000000000000000000000000000000e5c")
	testAlice = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	testBob   = common.HexToAddress("0x00000000000000000000000000000000000000bb")

	testSecret   = common.HexToHash("0x0000000000000000000000000000000000000000000000000000000000736563")
	testHashLock = escrow.HashSecret(testSecret)
)

type bridgeWithBackends struct {
	bridge   *BridgeEndpoints
	fungible *FungibleEndpoints
	escrow   *escrow.Escrow
	native   *fungible.Ledger
	wrapped  *fungible.Ledger
}

func newBridgeWithBackends(t *testing.T) bridgeWithBackends {
	t.Helper()
	native := fungible.NewLedger(migrations.NativeLedgerPrefix)
	wrapped := fungible.NewLedger(migrations.WrappedLedgerPrefix)
	esc, err := escrow.New(log.GetDefaultLogger(), escrow.Config{
		DBPath:       path.Join(t.TempDir(), "bridge_rpc_test.sqlite"),
		VaultAddress: testVault,
	}, native, wrapped)
	require.NoError(t, err)
	t.Cleanup(func() { esc.DB().Close() })

	b := bridgeWithBackends{
		escrow:  esc,
		native:  native,
		wrapped: wrapped,
	}
	b.bridge = NewBridgeEndpoints(log.GetDefaultLogger(), 2*time.Second, 2*time.Second, 2, esc)
	b.fungible = NewFungibleEndpoints(log.GetDefaultLogger(), 2*time.Second, 2*time.Second, esc.DB(), native, wrapped)

	return b
}

func TestBridgeEndpointsRoundTrip(t *testing.T) {
	b := newBridgeWithBackends(t)

	_, rpcErr := b.fungible.Mint(AssetNative, testAlice, big.NewInt(1000))
	require.Nil(t, rpcErr)
	_, rpcErr = b.fungible.Mint(AssetWrapped, testAlice, big.NewInt(500))
	require.Nil(t, rpcErr)
	_, rpcErr = b.fungible.Approve(AssetWrapped, testAlice, testVault, big.NewInt(500))
	require.Nil(t, rpcErr)

	recipient := common.BytesToHash(testBob.Bytes())
	timeLock := uint64(time.Now().Add(time.Hour).Unix())

	res, rpcErr := b.bridge.InitiateTransfer(
		testAlice, recipient, testHashLock, timeLock, big.NewInt(100), big.NewInt(40),
	)
	require.Nil(t, rpcErr)
	id, ok := res.(common.Hash)
	require.True(t, ok)

	res, rpcErr = b.bridge.GetTransfer(id)
	require.Nil(t, rpcErr)
	transfer, ok := res.(*escrow.BridgeTransfer)
	require.True(t, ok)
	require.Equal(t, id, transfer.ID)
	require.Equal(t, testAlice, transfer.Originator)
	require.Equal(t, recipient, transfer.Recipient)
	require.Equal(t, big.NewInt(140), transfer.Amount)
	require.Equal(t, escrow.StateInitiated, transfer.State)

	wrongSecret := common.HexToHash("0xbad")
	_, rpcErr = b.bridge.CompleteTransfer(id, wrongSecret)
	require.NotNil(t, rpcErr)
	require.Contains(t, rpcErr.Error(), "secret")

	_, rpcErr = b.bridge.CompleteTransfer(id, testSecret)
	require.Nil(t, rpcErr)

	res, rpcErr = b.bridge.GetTransfer(id)
	require.Nil(t, rpcErr)
	transfer, ok = res.(*escrow.BridgeTransfer)
	require.True(t, ok)
	require.Equal(t, escrow.StateCompleted, transfer.State)

	res, rpcErr = b.fungible.BalanceOf(AssetNative, testBob)
	require.Nil(t, rpcErr)
	balance, ok := res.(*big.Int)
	require.True(t, ok)
	require.Equal(t, big.NewInt(140), balance)
}

func TestBridgeEndpointErrors(t *testing.T) {
	b := newBridgeWithBackends(t)

	_, rpcErr := b.fungible.Mint(AssetNative, testAlice, big.NewInt(100))
	require.Nil(t, rpcErr)

	recipient := common.BytesToHash(testBob.Bytes())
	timeLock := uint64(time.Now().Add(time.Hour).Unix())
	unknown := common.HexToHash("0xdead")

	res, rpcErr := b.bridge.InitiateTransfer(testAlice, recipient, testHashLock, timeLock, big.NewInt(50), nil)
	require.Nil(t, rpcErr)
	id, ok := res.(common.Hash)
	require.True(t, ok)

	testCases := []struct {
		description string
		run         func() (interface{}, error)
		expectedMsg string
	}{
		{
			description: "get unknown transfer",
			run:         func() (interface{}, error) { return b.bridge.GetTransfer(unknown) },
			expectedMsg: "not found",
		},
		{
			description: "complete unknown transfer",
			run:         func() (interface{}, error) { return b.bridge.CompleteTransfer(unknown, testSecret) },
			expectedMsg: "not found",
		},
		{
			description: "initiate without value",
			run: func() (interface{}, error) {
				return b.bridge.InitiateTransfer(testAlice, recipient, testHashLock, timeLock, nil, nil)
			},
			expectedMsg: "zero",
		},
		{
			description: "initiate with expired time lock",
			run: func() (interface{}, error) {
				past := uint64(time.Now().Add(-time.Hour).Unix())
				return b.bridge.InitiateTransfer(testAlice, recipient, testHashLock, past, big.NewInt(1), nil)
			},
			expectedMsg: "time lock",
		},
		{
			description: "refund before expiry",
			run:         func() (interface{}, error) { return b.bridge.RefundTransfer(id) },
			expectedMsg: "time lock",
		},
	}

	for _, tc := range testCases {
		log.Debugf("running test case: %s", tc.description)
		_, err := tc.run()
		require.Error(t, err, tc.description)
		require.Contains(t, err.Error(), tc.expectedMsg, tc.description)
	}
}

func TestBridgeEndpointRefund(t *testing.T) {
	b := newBridgeWithBackends(t)

	_, rpcErr := b.fungible.Mint(AssetNative, testAlice, big.NewInt(100))
	require.Nil(t, rpcErr)

	recipient := common.BytesToHash(testBob.Bytes())
	timeLock := uint64(time.Now().Add(time.Second).Unix())

	res, rpcErr := b.bridge.InitiateTransfer(testAlice, recipient, testHashLock, timeLock, big.NewInt(70), nil)
	require.Nil(t, rpcErr)
	id, ok := res.(common.Hash)
	require.True(t, ok)

	require.Eventually(t, func() bool {
		_, rpcErr := b.bridge.RefundTransfer(id)
		return rpcErr == nil
	}, 10*time.Second, 250*time.Millisecond)

	res, rpcErr = b.bridge.GetTransfer(id)
	require.Nil(t, rpcErr)
	transfer, ok := res.(*escrow.BridgeTransfer)
	require.True(t, ok)
	require.Equal(t, escrow.StateRefunded, transfer.State)

	res, rpcErr = b.fungible.BalanceOf(AssetNative, testAlice)
	require.Nil(t, rpcErr)
	balance, ok := res.(*big.Int)
	require.True(t, ok)
	require.Equal(t, big.NewInt(100), balance)
}

func TestBridgeEndpointMetadata(t *testing.T) {
	b := newBridgeWithBackends(t)

	res, rpcErr := b.bridge.VaultAddress()
	require.Nil(t, rpcErr)
	require.Equal(t, testVault, res)

	res, rpcErr = b.bridge.NetworkID()
	require.Nil(t, rpcErr)
	require.Equal(t, uint32(2), res)
}

func TestFungibleEndpoints(t *testing.T) {
	b := newBridgeWithBackends(t)

	_, rpcErr := b.fungible.Mint(AssetWrapped, testAlice, big.NewInt(300))
	require.Nil(t, rpcErr)
	_, rpcErr = b.fungible.Approve(AssetWrapped, testAlice, testVault, big.NewInt(120))
	require.Nil(t, rpcErr)

	res, rpcErr := b.fungible.BalanceOf(AssetWrapped, testAlice)
	require.Nil(t, rpcErr)
	require.Equal(t, big.NewInt(300), res)

	res, rpcErr = b.fungible.Allowance(AssetWrapped, testAlice, testVault)
	require.Nil(t, rpcErr)
	require.Equal(t, big.NewInt(120), res)

	res, rpcErr = b.fungible.BalanceOf(AssetNative, testAlice)
	require.Nil(t, rpcErr)
	require.Equal(t, big.NewInt(0), res)

	_, rpcErr = b.fungible.BalanceOf("frozen", testAlice)
	require.NotNil(t, rpcErr)
	require.Contains(t, rpcErr.Error(), "unknown asset")

	_, rpcErr = b.fungible.Mint("frozen", testAlice, big.NewInt(1))
	require.NotNil(t, rpcErr)

	_, rpcErr = b.fungible.Approve("frozen", testAlice, testVault, big.NewInt(1))
	require.NotNil(t, rpcErr)

	_, rpcErr = b.fungible.Allowance("frozen", testAlice, testVault)
	require.NotNil(t, rpcErr)
}
