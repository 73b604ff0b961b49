// Package service implements the ledger and payment operations behind the
// REST and chat endpoints.
package service

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/dzeckelev/quickpay/data"
	"github.com/dzeckelev/quickpay/reward"
)

// TransactionStore persists transactions.
type TransactionStore interface {
	Record(ctx context.Context, tx *data.Transaction) error
	Find(ctx context.Context, hash string) (*data.Transaction, error)
	ListByAddress(ctx context.Context, address string) ([]*data.Transaction, error)
}

// RewardStore persists rewards.
type RewardStore interface {
	Find(ctx context.Context, address, transactionID string) (*data.Reward, error)
	Create(ctx context.Context, reward *data.Reward) error
	ListByAddress(ctx context.Context, address string) ([]*data.Reward, error)
}

// Usernames resolves between usernames and addresses.
type Usernames interface {
	Resolve(ctx context.Context, username string) (string, error)
	UsernameOf(ctx context.Context, address string) (string, error)
}

// Generator draws rewards.
type Generator interface {
	Generate() reward.Draw
}

// Payer executes a payment to a registered username.
type Payer interface {
	Pay(ctx context.Context, from common.Address, username, purpose string,
		value *big.Int) (string, error)
}
