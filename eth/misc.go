package eth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// WaitSync waits for the synchronization of the Geth node.
func WaitSync(ctx context.Context, client GethClient, logger *slog.Logger,
	pauseTime time.Duration) error {
	for {
		progress, err := client.SyncProgress(ctx)
		if err != nil {
			return err
		}

		if progress == nil {
			break
		}

		logger.Info("node syncing",
			"startingBlock", progress.StartingBlock,
			"currentBlock", progress.CurrentBlock,
			"highestBlock", progress.HighestBlock)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pauseTime):
		}
	}

	header, err := client.HeaderByNumber(ctx, nil)
	if err != nil {
		return err
	}

	logger.Info("ethereum node synchronized", "block", header.Number)

	return nil
}

// HashString formats a transaction hash the way it is stored.
func HashString(hash common.Hash) string {
	return strings.ToLower(hash.Hex())
}

// AddressString formats an address the way it is stored.
func AddressString(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}
