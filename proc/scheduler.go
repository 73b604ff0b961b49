package proc

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/dzeckelev/quickpay/config"
	"github.com/dzeckelev/quickpay/data"
	"github.com/dzeckelev/quickpay/eth"
)

// settleBatch bounds the pending transactions examined per round.
const settleBatch = 100

// PendingStore lists and settles transactions awaiting their receipt.
type PendingStore interface {
	Pending(ctx context.Context, limit uint64) ([]*data.Transaction, error)
	Settle(ctx context.Context, tx *data.Transaction, status string,
		block uint64) error
}

// Pruner closes idle chat sessions.
type Pruner interface {
	Prune(maxIdle time.Duration) int
}

// Scheduler is a task scheduler.
type Scheduler struct {
	cfg      config.Proc
	cancel   context.CancelFunc
	ctx      context.Context
	eth      eth.GethClient
	pending  PendingStore
	sessions Pruner
	logger   *slog.Logger

	mtx          sync.RWMutex
	lastBlockNum uint64

	wg sync.WaitGroup
}

// NewScheduler creates a new task scheduler.
func NewScheduler(ctx context.Context, cfg config.Proc,
	ethClient eth.GethClient, pending PendingStore, sessions Pruner,
	logger *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(ctx)

	return &Scheduler{
		cfg:      cfg,
		cancel:   cancel,
		ctx:      ctx,
		eth:      ethClient,
		pending:  pending,
		sessions: sessions,
		logger:   logger,
	}
}

// Start starts a task scheduler.
func (s *Scheduler) Start() error {
	if err := s.refreshLastBlock(); err != nil {
		return err
	}

	s.wg.Add(3)

	go s.every(s.cfg.UpdateLastBlockPause, func() {
		if err := s.refreshLastBlock(); err != nil {
			s.logger.Warn("failed to get last block", "error", err)
		}
	})
	go s.every(s.cfg.UpdateTransactionsPause, func() {
		if err := s.updateTransactions(); err != nil {
			s.logger.Warn("failed to update transactions", "error", err)
		}
	})
	go s.every(s.cfg.SessionPrunePause, func() {
		if n := s.sessions.Prune(s.cfg.SessionMaxIdle); n > 0 {
			s.logger.Info("pruned idle chat sessions", "count", n)
		}
	})

	return nil
}

// Close closes a task scheduler.
func (s *Scheduler) Close() {
	s.cancel()

	s.wg.Wait()
}

// LastBlock returns the latest known block number.
func (s *Scheduler) LastBlock() uint64 {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.lastBlockNum
}

func (s *Scheduler) every(pause time.Duration, task func()) {
	defer s.wg.Done()

	tic := time.NewTicker(pause)
	defer tic.Stop()

	for {
		select {
		case <-tic.C:
			task()
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) refreshLastBlock() error {
	header, err := s.eth.HeaderByNumber(s.ctx, nil)
	if err != nil {
		return err
	}

	s.mtx.Lock()
	s.lastBlockNum = header.Number.Uint64()
	s.mtx.Unlock()

	return nil
}

// updateTransactions settles pending transactions whose receipt is at least
// the configured number of confirmations deep.
func (s *Scheduler) updateTransactions() error {
	txs, err := s.pending.Pending(s.ctx, settleBatch)
	if err != nil {
		return err
	}

	lastBlock := s.LastBlock()

	for _, tx := range txs {
		receipt, err := s.eth.TransactionReceipt(s.ctx,
			common.HexToHash(tx.Hash))
		if err == ethereum.NotFound {
			continue
		}
		if err != nil {
			s.logger.Warn("failed to get transaction receipt",
				"hash", tx.Hash, "error", err)
			continue
		}

		block := receipt.BlockNumber.Uint64()
		if lastBlock < block || lastBlock-block < s.cfg.Confirmations {
			continue
		}

		status := data.TxCompleted
		if receipt.Status != types.ReceiptStatusSuccessful {
			status = data.TxFailed
		}

		if err := s.pending.Settle(s.ctx, tx, status, block); err != nil {
			return err
		}

		s.logger.Info("transaction settled", "hash", tx.Hash,
			"status", status, "block", block)
	}

	return nil
}
