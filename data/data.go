//go:generate reform

package data

import (
	"strings"
	"time"
)

// Transaction statuses.
const (
	TxPending   = "pending"
	TxCompleted = "completed"
	TxFailed    = "failed"
)

// RewardClaimed is the only reward status.
const RewardClaimed = "claimed"

// DefaultCurrency is used when a recorded transaction carries no currency.
const DefaultCurrency = "ETH"

//reform:transactions
type Transaction struct {
	Hash              string  `json:"txHash" reform:"tx_hash,pk"`
	Sender            string  `json:"sender" reform:"sender"`
	Recipient         string  `json:"recipient" reform:"recipient"`
	SenderUsername    *string `json:"senderUsername" reform:"sender_username"`
	RecipientUsername *string `json:"recipientUsername" reform:"recipient_username"`
	// Decimal string.
	Amount   string `json:"amount" reform:"amount"`
	Currency string `json:"currency" reform:"currency"`
	Purpose  string `json:"purpose" reform:"purpose"`
	Tag      string `json:"tag" reform:"tag"`
	// Epoch milliseconds.
	Timestamp int64   `json:"timestamp" reform:"timestamp"`
	Status    string  `json:"status" reform:"status"`
	Block     *uint64 `json:"block" reform:"block"`
}

//reform:rewards
type Reward struct {
	ID            string    `json:"id" reform:"id,pk"`
	Address       string    `json:"address" reform:"address"`
	TransactionID string    `json:"transactionId" reform:"transaction_id"`
	Amount        string    `json:"amount" reform:"amount"`
	Currency      string    `json:"currency" reform:"currency"`
	ClaimedAt     time.Time `json:"claimedAt" reform:"claimed_at"`
	Status        string    `json:"status" reform:"status"`
}

//reform:usernames
type Username struct {
	Username  string    `json:"username" reform:"username,pk"`
	Address   string    `json:"address" reform:"address"`
	UpdatedAt time.Time `json:"updatedAt" reform:"updated_at"`
}

// TagOf derives the stored tag of a purpose: its first lower-cased
// whitespace-separated word.
func TagOf(purpose string) string {
	words := strings.Fields(strings.ToLower(purpose))
	if len(words) == 0 {
		return ""
	}
	return words[0]
}

// Tags returns the tag as a list, empty when there is none.
func (t *Transaction) Tags() []string {
	if t.Tag == "" {
		return []string{}
	}
	return []string{t.Tag}
}

// Time returns the transaction timestamp.
func (t *Transaction) Time() time.Time {
	return time.UnixMilli(t.Timestamp)
}
