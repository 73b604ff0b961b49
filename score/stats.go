package score

import (
	"github.com/shopspring/decimal"

	"github.com/dzeckelev/quickpay/data"
)

// Stats summarises the amounts of a history.
type Stats struct {
	TotalTransactions  int             `json:"totalTransactions"`
	TotalVolume        decimal.Decimal `json:"totalVolume"`
	AverageAmount      decimal.Decimal `json:"averageAmount"`
	LargestTransaction decimal.Decimal `json:"largestTransaction"`
}

// Statistics computes Stats over txs.
func Statistics(txs []*data.Transaction) Stats {
	stats := Stats{
		TotalTransactions:  len(txs),
		TotalVolume:        TotalVolume(txs),
		AverageAmount:      decimal.Zero,
		LargestTransaction: decimal.Zero,
	}

	for _, tx := range txs {
		stats.LargestTransaction = decimal.Max(stats.LargestTransaction,
			Amount(tx))
	}

	if len(txs) > 0 {
		stats.AverageAmount = stats.TotalVolume.Div(
			decimal.NewFromInt(int64(len(txs))))
	}

	return stats
}
