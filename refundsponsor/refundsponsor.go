// Package refundsponsor runs a keeper that returns expired transfers to
// their originators. Refunds are permissionless, so the sponsor needs no
// authority, it just spares originators from watching their own time locks.
package refundsponsor

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/zabit11/movement/config/types"
	"github.com/zabit11/movement/escrow"
	"github.com/zabit11/movement/log"
	"github.com/zabit11/movement/sync"
)

type Config struct {
	// Enabled indicates if the sponsor should be run or not
	Enabled bool `mapstructure:"Enabled"`
	// ScanPeriod time between two scans for expired transfers
	ScanPeriod types.Duration `mapstructure:"ScanPeriod"`
	// MaxPendingPerScan caps how many refunds a single scan attempts
	MaxPendingPerScan int `mapstructure:"MaxPendingPerScan"`
	// RetryAfterErrorPeriod time to wait before retrying after an error
	RetryAfterErrorPeriod types.Duration `mapstructure:"RetryAfterErrorPeriod"`
	// MaxRetryAttemptsAfterError maximum consecutive scan failures before
	// giving up, -1 retries forever
	MaxRetryAttemptsAfterError int `mapstructure:"MaxRetryAttemptsAfterError"`
}

// TransferRefunder is the escrow surface the sponsor drives.
type TransferRefunder interface {
	GetExpiredPending(ctx context.Context, limit int) ([]escrow.BridgeTransfer, error)
	Refund(ctx context.Context, id common.Hash) error
}

type RefundSponsor struct {
	logger            *log.Logger
	escrow            TransferRefunder
	rh                *sync.RetryHandler
	scanPeriod        time.Duration
	maxPendingPerScan int
}

func New(logger *log.Logger, cfg Config, transferRefunder TransferRefunder) *RefundSponsor {
	rh := &sync.RetryHandler{
		MaxRetryAttemptsAfterError: cfg.MaxRetryAttemptsAfterError,
		RetryAfterErrorPeriod:      cfg.RetryAfterErrorPeriod.Duration,
	}

	return &RefundSponsor{
		logger:            logger,
		escrow:            transferRefunder,
		rh:                rh,
		scanPeriod:        cfg.ScanPeriod.Duration,
		maxPendingPerScan: cfg.MaxPendingPerScan,
	}
}

// Start scans for expired transfers and refunds them until ctx is done.
func (r *RefundSponsor) Start(ctx context.Context) {
	var (
		attempts int
		err      error
	)
	for {
		if err != nil {
			attempts++
			r.rh.Handle("refundsponsor main loop", attempts)
		}
		select {
		case <-ctx.Done():
			return
		default:
		}

		expired, err2 := r.escrow.GetExpiredPending(ctx, r.maxPendingPerScan)
		if err2 != nil {
			err = err2
			r.logger.Errorf("error getting expired transfers: %v", err)

			continue
		}
		attempts = 0
		err = nil

		for _, transfer := range expired {
			err2 := r.escrow.Refund(ctx, transfer.ID)
			switch {
			case err2 == nil:
				r.logger.Infof("sponsored refund of transfer %s, %s units returned to %s",
					transfer.ID, transfer.Amount, transfer.Originator)
			case errors.Is(err2, escrow.ErrAlreadyFinalized):
				// someone else finalized it between the scan and the refund
				r.logger.Debugf("transfer %s was finalized before the sponsored refund", transfer.ID)
			case errors.Is(err2, escrow.ErrTimeLockNotExpired):
				r.logger.Debugf("transfer %s is not refundable yet", transfer.ID)
			default:
				err = err2
				r.logger.Errorf("error refunding transfer %s: %v", transfer.ID, err)
			}
		}
		if err != nil {
			continue
		}

		time.Sleep(r.scanPeriod)
	}
}
