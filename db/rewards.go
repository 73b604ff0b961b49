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

// Rewards stores claimed rewards, at most one per address and transaction.
type Rewards struct {
	db *reform.DB
}

// NewRewards creates a reward store.
func NewRewards(database *reform.DB) *Rewards {
	return &Rewards{db: database}
}

// Find returns the reward claimed by address for transactionID.
func (s *Rewards) Find(ctx context.Context, address,
	transactionID string) (*data.Reward, error) {
	q := s.db.WithContext(ctx)

	tail := fmt.Sprintf("WHERE address = %s AND transaction_id = %s",
		q.Placeholder(1), q.Placeholder(2))

	reward := &data.Reward{}
	err := q.SelectOneTo(reward, tail, strings.ToLower(address), transactionID)
	if err != nil {
		if err == reform.ErrNoRows {
			return nil, errs.NotFound("reward", transactionID)
		}
		return nil, errors.Wrap(err, "find reward")
	}

	return reward, nil
}

// Create inserts reward. errs.ErrAlreadyExists is returned when the address
// already claimed the transaction.
func (s *Rewards) Create(ctx context.Context, reward *data.Reward) error {
	if err := s.db.WithContext(ctx).Insert(reward); err != nil {
		if isUniqueViolation(err) {
			return errs.ErrAlreadyExists
		}
		return errors.Wrap(err, "insert reward")
	}
	return nil
}

// ListByAddress returns rewards of address, newest first.
func (s *Rewards) ListByAddress(ctx context.Context,
	address string) ([]*data.Reward, error) {
	q := s.db.WithContext(ctx)

	tail := fmt.Sprintf("WHERE address = %s ORDER BY claimed_at DESC",
		q.Placeholder(1))

	items, err := q.SelectAllFrom(data.RewardTable, tail,
		strings.ToLower(address))
	if err != nil {
		return nil, errors.Wrap(err, "list rewards")
	}

	result := make([]*data.Reward, len(items))
	for k, item := range items {
		result[k] = item.(*data.Reward)
	}

	return result, nil
}
