package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	jRPC "github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/urfave/cli/v2"
	movement "github.com/zabit11/movement"
	movementcommon "github.com/zabit11/movement/common"
	"github.com/zabit11/movement/config"
	"github.com/zabit11/movement/escrow"
	"github.com/zabit11/movement/escrow/migrations"
	"github.com/zabit11/movement/fungible"
	"github.com/zabit11/movement/log"
	"github.com/zabit11/movement/refundsponsor"
	"github.com/zabit11/movement/rpc"
)

func start(cliCtx *cli.Context) error {
	c, err := config.Load(cliCtx)
	if err != nil {
		return err
	}

	log.Init(c.Log)

	if c.Log.Environment == log.EnvironmentDevelopment {
		movement.PrintVersion(os.Stdout)
		log.Info("Starting application")
	} else if c.Log.Environment == log.EnvironmentProduction {
		logVersion()
	}

	components := cliCtx.StringSlice(config.FlagComponents)

	native := fungible.NewLedger(migrations.NativeLedgerPrefix)
	wrapped := fungible.NewLedger(migrations.WrappedLedgerPrefix)
	esc := createEscrow(cliCtx.Context, c.Escrow, native, wrapped)
	go logTransferEvents(cliCtx.Context, esc)
	runRefundSponsorIfNeeded(cliCtx.Context, components, c.RefundSponsor, esc)

	for _, component := range components {
		switch component {
		case movementcommon.RPC:
			server := createRPC(c.RPC, c.Common.NetworkID, esc, native, wrapped)
			go func() {
				if err := server.Start(); err != nil {
					log.Fatal(err)
				}
			}()
		}
	}

	waitSignal(nil)

	return nil
}

func createEscrow(
	ctx context.Context,
	cfg escrow.Config,
	native, wrapped *fungible.Ledger,
) *escrow.Escrow {
	logger := log.WithFields("module", "escrow")
	esc, err := escrow.New(logger, cfg, native, wrapped)
	if err != nil {
		log.Fatal(err)
	}
	if err := native.ApplyGenesis(ctx, esc.DB(), cfg.GenesisNative); err != nil {
		log.Fatal(err)
	}
	if err := wrapped.ApplyGenesis(ctx, esc.DB(), cfg.GenesisWrapped); err != nil {
		log.Fatal(err)
	}

	return esc
}

// logTransferEvents drains the escrow event feed so operators get one log
// line per committed transition.
func logTransferEvents(ctx context.Context, esc *escrow.Escrow) {
	logger := log.WithFields("module", "escrow")
	sub := esc.Subscribe(appName)
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-sub.Events:
			logger.Infof("transfer %s %s, amount %s, originator %s",
				event.Transfer.ID, event.Type, event.Transfer.Amount, event.Transfer.Originator)
		}
	}
}

func runRefundSponsorIfNeeded(
	ctx context.Context,
	components []string,
	cfg refundsponsor.Config,
	esc *escrow.Escrow,
) *refundsponsor.RefundSponsor {
	if !isNeeded([]string{movementcommon.REFUND_SPONSOR}, components) || !cfg.Enabled {
		return nil
	}
	logger := log.WithFields("module", movementcommon.REFUND_SPONSOR)
	sponsor := refundsponsor.New(logger, cfg, esc)
	go sponsor.Start(ctx)
	log.Info("refund sponsor started")

	return sponsor
}

func createRPC(
	cfg jRPC.Config,
	networkID uint32,
	esc *escrow.Escrow,
	native, wrapped *fungible.Ledger,
) *jRPC.Server {
	logger := log.WithFields("module", movementcommon.RPC)
	services := []jRPC.Service{
		{
			Name: rpc.BRIDGE,
			Service: rpc.NewBridgeEndpoints(
				logger,
				cfg.WriteTimeout.Duration,
				cfg.ReadTimeout.Duration,
				networkID,
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

func isNeeded(casesWhereNeeded, actualCases []string) bool {
	for _, actualCase := range actualCases {
		for _, caseWhereNeeded := range casesWhereNeeded {
			if actualCase == caseWhereNeeded {
				return true
			}
		}
	}

	return false
}

func logVersion() {
	log.Infow("Starting application",
		// version is already logged by default
		"gitRevision", movement.GitRev,
		"gitBranch", movement.GitBranch,
		"goVersion", runtime.Version(),
		"built", movement.BuildDate,
		"os/arch", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	)
}

func waitSignal(cancelFuncs []context.CancelFunc) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)

	for sig := range signals {
		switch sig {
		case os.Interrupt, os.Kill:
			log.Info("terminating application gracefully...")

			exitStatus := 0
			for _, cancel := range cancelFuncs {
				cancel()
			}
			os.Exit(exitStatus)
		}
	}
}
