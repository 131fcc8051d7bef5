package helpers

import (
	"fmt"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"github.com/zabit11/movement/escrow"
)

type TransferGetter interface {
	GetTransfer(id common.Hash) (*escrow.BridgeTransfer, error)
}

func RequireTransferState(t *testing.T, client TransferGetter, id common.Hash, state escrow.TransferState) {
	t.Helper()

	for i := 0; i < 200; i++ {
		transfer, err := client.GetTransfer(id)
		require.NoError(t, err)
		if transfer.State == state {
			return
		}
		time.Sleep(time.Millisecond * 25)
	}
	require.NoError(t, fmt.Errorf("transfer %s did not reach state %s", id, state))
}
