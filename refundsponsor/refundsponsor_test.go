package refundsponsor

import (
	"context"
	"math/big"
	"path"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"github.com/zabit11/movement/config/types"
	"github.com/zabit11/movement/escrow"
	"github.com/zabit11/movement/escrow/migrations"
	"github.com/zabit11/movement/fungible"
	"github.com/zabit11/movement/log"
)

func TestSponsoredRefund(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	alice := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	vaultAddr := common.HexToAddress("0x0000000000000000000000000000000000000e5c")

	native := fungible.NewLedger(migrations.NativeLedgerPrefix)
	wrapped := fungible.NewLedger(migrations.WrappedLedgerPrefix)
	esc, err := escrow.New(log.GetDefaultLogger(), escrow.Config{
		DBPath:       path.Join(t.TempDir(), "refundsponsor_test.sqlite"),
		VaultAddress: vaultAddr,
	}, native, wrapped)
	require.NoError(t, err)
	defer esc.DB().Close()

	require.NoError(t, native.Mint(esc.DB(), alice, big.NewInt(100)))

	secret := common.HexToHash("0x01")
	recipient := common.BytesToHash(alice.Bytes())
	timeLock := uint64(time.Now().Add(time.Second).Unix())

	id, err := esc.Initiate(ctx, alice, recipient, escrow.HashSecret(secret), timeLock, big.NewInt(60), nil)
	require.NoError(t, err)

	sponsor := New(log.GetDefaultLogger(), Config{
		ScanPeriod:                 types.NewDuration(50 * time.Millisecond),
		MaxPendingPerScan:          10,
		RetryAfterErrorPeriod:      types.NewDuration(50 * time.Millisecond),
		MaxRetryAttemptsAfterError: -1,
	}, esc)
	go sponsor.Start(ctx)

	require.Eventually(t, func() bool {
		transfer, err := esc.GetTransfer(ctx, id)
		require.NoError(t, err)

		return transfer.State == escrow.StateRefunded
	}, 10*time.Second, 100*time.Millisecond)

	balance, err := native.BalanceOf(esc.DB(), alice)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(100), balance)
}
