// Package score derives credibility, badges and statistics from a
// transaction history.
package score

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dzeckelev/quickpay/data"
)

// Score bounds.
const (
	MinScore = 300
	MaxScore = 850
)

// Levels.
const (
	LevelExcellent    = "Excellent"
	LevelGood         = "Good"
	LevelFair         = "Fair"
	LevelBelowAverage = "Below Average"
	LevelPoor         = "Poor"
)

// Component weights, summing to 1.
const (
	weightPaymentHistory    = 0.35
	weightTransactionVolume = 0.30
	weightNetworkActivity   = 0.15
	weightAccountAge        = 0.10
	weightVerification      = 0.10
)

const maxVerificationLevel = 2

// Input is a user's history and account metadata.
type Input struct {
	Transactions           []*data.Transaction
	AccountCreated         time.Time
	VerificationLevel      int // 0, 1 or 2
	SuccessfulTransactions int
}

// Components are the sub-scores, each in [0, 100].
type Components struct {
	PaymentHistory    int `json:"paymentHistory"`
	TransactionVolume int `json:"transactionVolume"`
	NetworkActivity   int `json:"networkActivity"`
	AccountAge        int `json:"accountAge"`
	VerificationLevel int `json:"verificationLevel"`
}

// Credibility is the derived 300-850 score.
type Credibility struct {
	TotalScore int        `json:"totalScore"`
	Components Components `json:"components"`
	Level      string     `json:"level"`
}

// Score computes the credibility of in at now. A missing or empty history
// scores the floor.
func Score(in *Input, now time.Time) Credibility {
	if in == nil || len(in.Transactions) == 0 {
		return Credibility{TotalScore: MinScore, Level: LevelPoor}
	}

	total := len(in.Transactions)
	volume := TotalVolume(in.Transactions).InexactFloat64()

	var c Components
	c.PaymentHistory = clamp(round(100*float64(in.SuccessfulTransactions)/
		float64(total)), 0, 100)
	c.TransactionVolume = clamp(round(20*math.Log10(volume+1)), 0, 100)
	c.NetworkActivity = clamp(round(15*math.Log2(
		float64(uniqueRecipients(in.Transactions))+1)), 0, 100)
	c.AccountAge = clamp(round(30*math.Log10(
		math.Max(1, ageInDays(in.AccountCreated, now)))), 0, 100)
	c.VerificationLevel = clamp(round(100*float64(in.VerificationLevel)/
		maxVerificationLevel), 0, 100)

	weighted := float64(c.PaymentHistory)*weightPaymentHistory +
		float64(c.TransactionVolume)*weightTransactionVolume +
		float64(c.NetworkActivity)*weightNetworkActivity +
		float64(c.AccountAge)*weightAccountAge +
		float64(c.VerificationLevel)*weightVerification

	totalScore := clamp(round(MinScore+weighted*(MaxScore-MinScore)/100),
		MinScore, MaxScore)

	return Credibility{
		TotalScore: totalScore,
		Components: c,
		Level:      Level(totalScore),
	}
}

// Level maps a total score to its category.
func Level(totalScore int) string {
	switch {
	case totalScore >= 750:
		return LevelExcellent
	case totalScore >= 700:
		return LevelGood
	case totalScore >= 650:
		return LevelFair
	case totalScore >= 600:
		return LevelBelowAverage
	default:
		return LevelPoor
	}
}

// Amount parses a stored amount. Non-numeric amounts count as zero.
func Amount(tx *data.Transaction) decimal.Decimal {
	amount, err := decimal.NewFromString(strings.TrimSpace(tx.Amount))
	if err != nil {
		return decimal.Zero
	}
	return amount
}

// TotalVolume sums the amounts of txs.
func TotalVolume(txs []*data.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, tx := range txs {
		sum = sum.Add(Amount(tx))
	}
	return sum
}

// Completed counts transactions with the completed status.
func Completed(txs []*data.Transaction) int {
	var n int
	for _, tx := range txs {
		if tx.Status == data.TxCompleted {
			n++
		}
	}
	return n
}

func uniqueRecipients(txs []*data.Transaction) int {
	seen := make(map[string]struct{}, len(txs))
	for _, tx := range txs {
		seen[strings.ToLower(tx.Recipient)] = struct{}{}
	}
	return len(seen)
}

func ageInDays(created, now time.Time) float64 {
	if created.IsZero() {
		return 0
	}
	return math.Floor(now.Sub(created).Hours() / 24)
}

func round(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(v))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
