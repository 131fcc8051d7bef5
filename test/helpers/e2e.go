package helpers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"path"
	"testing"
	"time"

	rpctypes "github.com/0xPolygon/cdk-rpc/config/types"
	jRPC "github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	cfgtypes "github.com/zabit11/movement/config/types"
	"github.com/zabit11/movement/escrow"
	"github.com/zabit11/movement/escrow/migrations"
	"github.com/zabit11/movement/fungible"
	"github.com/zabit11/movement/log"
	"github.com/zabit11/movement/refundsponsor"
	"github.com/zabit11/movement/rpc"
)

const (
	// NetworkID is the identifier the test server reports to clients.
	NetworkID = uint32(7)

	vaultHex       = "0x0000000000000000000000000000000000000e5c"
	serverTimeout  = time.Second * 2
	sponsorPeriod  = time.Millisecond * 100
	maxPendingScan = 32
)

// BridgeEnv bundles an escrow node wired the same way the run command wires
// it: sqlite backed escrow with both asset ledgers, the refund sponsor, the
// JSON-RPC server and a typed client pointing at it.
type BridgeEnv struct {
	Escrow  *escrow.Escrow
	Native  *fungible.Ledger
	Wrapped *fungible.Ledger
	Sponsor *refundsponsor.RefundSponsor
	Vault   common.Address
	URL     string
	Client  rpc.ClientInterface
}

func NewBridgeEnv(t *testing.T) *BridgeEnv {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	vault := common.HexToAddress(vaultHex)
	native := fungible.NewLedger(migrations.NativeLedgerPrefix)
	wrapped := fungible.NewLedger(migrations.WrappedLedgerPrefix)
	esc, err := escrow.New(log.GetDefaultLogger(), escrow.Config{
		DBPath:       path.Join(t.TempDir(), "e2e.sqlite"),
		VaultAddress: vault,
	}, native, wrapped)
	require.NoError(t, err)

	sponsor := refundsponsor.New(log.GetDefaultLogger(), refundsponsor.Config{
		ScanPeriod:                 cfgtypes.NewDuration(sponsorPeriod),
		RetryAfterErrorPeriod:      cfgtypes.NewDuration(sponsorPeriod),
		MaxPendingPerScan:          maxPendingScan,
		MaxRetryAttemptsAfterError: -1,
	}, esc)
	go sponsor.Start(ctx)

	port := freeTCPPort(t)
	server := createTestRPC(port, esc, native, wrapped)
	go func() {
		if err := server.Start(); err != nil {
			log.Errorf("rpc server stopped: %v", err)
		}
	}()

	url := fmt.Sprintf("http://localhost:%d", port)
	client := rpc.NewClient(url)
	waitServerReady(t, client)

	return &BridgeEnv{
		Escrow:  esc,
		Native:  native,
		Wrapped: wrapped,
		Sponsor: sponsor,
		Vault:   vault,
		URL:     url,
		Client:  client,
	}
}

func createTestRPC(port int, esc *escrow.Escrow, native, wrapped *fungible.Ledger) *jRPC.Server {
	logger := log.WithFields("module", "rpc")
	cfg := jRPC.Config{
		Host:                      "localhost",
		Port:                      port,
		ReadTimeout:               rpctypes.NewDuration(serverTimeout),
		WriteTimeout:              rpctypes.NewDuration(serverTimeout),
		MaxRequestsPerIPAndSecond: 1000,
	}
	services := []jRPC.Service{
		{
			Name: rpc.BRIDGE,
			Service: rpc.NewBridgeEndpoints(
				logger,
				cfg.WriteTimeout.Duration,
				cfg.ReadTimeout.Duration,
				NetworkID,
				esc,
			),
		},
		{
			Name: rpc.FUNGIBLE,
			Service: rpc.NewFungibleEndpoints(
				logger,
				cfg.WriteTimeout.Duration,
				cfg.ReadTimeout.Duration,
				esc.DB(),
				native,
				wrapped,
			),
		},
	}

	return jRPC.NewServer(cfg, services, jRPC.WithLogger(logger.GetSugaredLogger()))
}

// freeTCPPort asks the kernel for an unused port to bind the test server on.
func freeTCPPort(t *testing.T) int {
	t.Helper()

	listener, err := net.Listen("tcp", "localhost:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	return port
}

func waitServerReady(t *testing.T, client rpc.ClientInterface) {
	t.Helper()

	for i := 0; i < 100; i++ {
		if _, err := client.NetworkID(); err == nil {
			return
		}
		time.Sleep(time.Millisecond * 50)
	}
	require.NoError(t, errors.New("rpc server not ready"))
}
