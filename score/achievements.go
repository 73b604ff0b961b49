package score

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dzeckelev/quickpay/data"
)

// Badge is an earned achievement.
type Badge struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Date        time.Time `json:"date"`
}

var highVolume = decimal.NewFromInt(10)

const (
	trustedSenderCompleted  = 10
	reliablePayerRecipients = 5
)

// Achievements returns the badges earned by txs. Count and volume badges are
// dated at now, not at the moment the threshold was crossed.
func Achievements(txs []*data.Transaction, now time.Time) []Badge {
	badges := []Badge{}
	if len(txs) == 0 {
		return badges
	}

	badges = append(badges, Badge{
		ID:          "first_transaction",
		Title:       "First Transaction",
		Description: "Completed your first QuickPay transaction",
		Icon:        "🚀",
		Date:        earliest(txs).Time().UTC(),
	})

	if volume := TotalVolume(txs); volume.GreaterThanOrEqual(highVolume) {
		badges = append(badges, Badge{
			ID:    "high_volume",
			Title: "High Volume",
			Description: fmt.Sprintf("Transacted over %s ETH in total",
				volume.StringFixed(2)),
			Icon: "💰",
			Date: now,
		})
	}

	if Completed(txs) >= trustedSenderCompleted {
		badges = append(badges, Badge{
			ID:          "trusted_sender",
			Title:       "Trusted Sender",
			Description: "Made 10+ successful transactions",
			Icon:        "🛡️",
			Date:        now,
		})
	}

	if uniqueRecipients(txs) >= reliablePayerRecipients {
		badges = append(badges, Badge{
			ID:          "reliable_payer",
			Title:       "Reliable Payer",
			Description: "Never missed a payment request",
			Icon:        "✅",
			Date:        now,
		})
	}

	return badges
}

func earliest(txs []*data.Transaction) *data.Transaction {
	first := txs[0]
	for _, tx := range txs[1:] {
		if tx.Timestamp < first.Timestamp {
			first = tx
		}
	}
	return first
}

// Earliest returns the time of the oldest transaction, or false when txs is
// empty.
func Earliest(txs []*data.Transaction) (time.Time, bool) {
	if len(txs) == 0 {
		return time.Time{}, false
	}
	return earliest(txs).Time(), true
}
