package eth

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
)

// Decimals of the native currency.
const Decimals = 18

// ToWei converts an amount of native currency to wei, truncating anything
// below one wei.
func ToWei(amount decimal.Decimal) *big.Int {
	return amount.Shift(Decimals).BigInt()
}

// FromWei converts wei to native currency.
func FromWei(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -Decimals)
}

// WaitReceipt polls for the receipt of hash until it is mined or ctx ends.
func WaitReceipt(ctx context.Context, client GethClient, hash common.Hash,
	pause time.Duration) (*types.Receipt, error) {
	for {
		receipt, err := client.TransactionReceipt(ctx, hash)
		if err == nil && receipt != nil {
			return receipt, nil
		}
		if err != nil && err != ethereum.NotFound {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pause):
		}
	}
}

// Balance returns the latest balance of addr in native currency.
func Balance(ctx context.Context, client GethClient,
	addr common.Address) (decimal.Decimal, error) {
	wei, err := client.BalanceAt(ctx, addr, nil)
	if err != nil {
		return decimal.Zero, err
	}
	return FromWei(wei), nil
}
