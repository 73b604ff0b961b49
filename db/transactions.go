package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/reform.v1"

	"github.com/dzeckelev/quickpay/data"
	"github.com/dzeckelev/quickpay/errs"
)

// Transactions stores recorded payments keyed by transaction hash.
type Transactions struct {
	db *reform.DB
}

// NewTransactions creates a transaction store.
func NewTransactions(database *reform.DB) *Transactions {
	return &Transactions{db: database}
}

// Record inserts tx. A transaction with the same hash is left untouched and
// errs.ErrAlreadyExists is returned.
func (s *Transactions) Record(ctx context.Context, tx *data.Transaction) error {
	q := s.db.WithContext(ctx)

	existing := &data.Transaction{}
	err := q.FindByPrimaryKeyTo(existing, tx.Hash)
	switch {
	case err == nil:
		return errs.ErrAlreadyExists
	case err != reform.ErrNoRows:
		return errors.Wrap(err, "find transaction")
	}

	if err := q.Insert(tx); err != nil {
		// Lost a race with a concurrent writer of the same hash.
		if isUniqueViolation(err) {
			return errs.ErrAlreadyExists
		}
		return errors.Wrap(err, "insert transaction")
	}

	return nil
}

// Find returns the transaction with the given hash.
func (s *Transactions) Find(ctx context.Context, hash string) (*data.Transaction, error) {
	tx := &data.Transaction{}
	if err := s.db.WithContext(ctx).FindByPrimaryKeyTo(tx, hash); err != nil {
		if err == reform.ErrNoRows {
			return nil, errs.NotFound("transaction", hash)
		}
		return nil, errors.Wrap(err, "find transaction")
	}
	return tx, nil
}

// ListByAddress returns transactions sent or received by address, newest
// first.
func (s *Transactions) ListByAddress(ctx context.Context,
	address string) ([]*data.Transaction, error) {
	q := s.db.WithContext(ctx)

	tail := fmt.Sprintf(`WHERE sender = %[1]s OR recipient = %[1]s
			  ORDER BY "timestamp" DESC`, q.Placeholder(1))

	items, err := q.SelectAllFrom(data.TransactionTable, tail,
		strings.ToLower(address))
	if err != nil {
		return nil, errors.Wrap(err, "list transactions")
	}

	return toTransactions(items), nil
}

// Pending returns up to limit transactions still waiting for settlement,
// oldest first.
func (s *Transactions) Pending(ctx context.Context,
	limit uint64) ([]*data.Transaction, error) {
	q := s.db.WithContext(ctx)

	tail := fmt.Sprintf(`WHERE status = %s ORDER BY "timestamp" ASC LIMIT %s`,
		q.Placeholder(1), q.Placeholder(2))

	items, err := q.SelectAllFrom(data.TransactionTable, tail,
		data.TxPending, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list pending transactions")
	}

	return toTransactions(items), nil
}

// Settle records the final status of a pending transaction and the block it
// was mined in. Other fields never change after Record.
func (s *Transactions) Settle(ctx context.Context, tx *data.Transaction,
	status string, block uint64) error {
	tx.Status = status
	tx.Block = &block

	err := s.db.WithContext(ctx).UpdateColumns(tx, "status", "block")
	return errors.Wrap(err, "settle transaction")
}

func toTransactions(items []reform.Struct) []*data.Transaction {
	result := make([]*data.Transaction, len(items))
	for k, item := range items {
		result[k] = item.(*data.Transaction)
	}
	return result
}
