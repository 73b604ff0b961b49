package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/AlekSi/pointer"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/dzeckelev/quickpay/data"
	"github.com/dzeckelev/quickpay/errs"
	"github.com/dzeckelev/quickpay/gen"
	"github.com/dzeckelev/quickpay/score"
)

// Ledger records transactions and rewards and derives profiles from them.
type Ledger struct {
	txs       TransactionStore
	rewards   RewardStore
	usernames Usernames
	generator Generator
	newID     gen.IDFunc
	now       func() time.Time
	logger    *slog.Logger
}

// NewLedger creates a ledger. usernames may be nil when no registry is
// configured.
func NewLedger(txs TransactionStore, rewards RewardStore, usernames Usernames,
	generator Generator, newID gen.IDFunc, logger *slog.Logger) *Ledger {
	return &Ledger{
		txs:       txs,
		rewards:   rewards,
		usernames: usernames,
		generator: generator,
		newID:     newID,
		now:       time.Now,
		logger:    logger,
	}
}

// TransactionInput is a transaction to record.
type TransactionInput struct {
	TxHash            string           `json:"txHash"`
	Sender            string           `json:"sender"`
	Recipient         string           `json:"recipient"`
	SenderUsername    string           `json:"senderUsername"`
	RecipientUsername string           `json:"recipientUsername"`
	Amount            *decimal.Decimal `json:"amount"`
	Currency          string           `json:"currency"`
	Purpose           string           `json:"purpose"`
	// Epoch milliseconds, the write time when absent.
	Timestamp *int64  `json:"timestamp"`
	Status    string  `json:"status"`
	Block     *uint64 `json:"block"`
}

// RecordResult reports the outcome of RecordTransaction.
type RecordResult struct {
	Success       bool              `json:"success"`
	AlreadyExists bool              `json:"alreadyExists,omitempty"`
	Message       string            `json:"message"`
	Transaction   *data.Transaction `json:"transaction,omitempty"`
}

func (in *TransactionInput) validate() error {
	switch {
	case strings.TrimSpace(in.TxHash) == "":
		return errs.Required("txHash")
	case strings.TrimSpace(in.Sender) == "":
		return errs.Required("sender")
	case strings.TrimSpace(in.Recipient) == "":
		return errs.Required("recipient")
	case in.Amount == nil:
		return errs.Required("amount")
	case !in.Amount.IsPositive():
		return errs.Invalid("amount", "must be positive")
	}

	switch in.Status {
	case "", data.TxPending, data.TxCompleted, data.TxFailed:
	default:
		return errs.Invalid("status", "unknown status "+in.Status)
	}

	return nil
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return pointer.ToString(s)
}

// RecordTransaction stores a transaction once. A repeated hash is a
// successful no-op.
func (l *Ledger) RecordTransaction(ctx context.Context,
	in *TransactionInput) (*RecordResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	tx := &data.Transaction{
		Hash:              strings.ToLower(strings.TrimSpace(in.TxHash)),
		Sender:            strings.ToLower(strings.TrimSpace(in.Sender)),
		Recipient:         strings.ToLower(strings.TrimSpace(in.Recipient)),
		SenderUsername:    optional(in.SenderUsername),
		RecipientUsername: optional(in.RecipientUsername),
		Amount:            in.Amount.String(),
		Currency:          strings.ToUpper(strings.TrimSpace(in.Currency)),
		Purpose:           strings.TrimSpace(in.Purpose),
		Status:            in.Status,
		Block:             in.Block,
	}

	if tx.Currency == "" {
		tx.Currency = data.DefaultCurrency
	}
	if tx.Status == "" {
		tx.Status = data.TxPending
	}
	tx.Tag = data.TagOf(tx.Purpose)

	if in.Timestamp != nil && *in.Timestamp > 0 {
		tx.Timestamp = *in.Timestamp
	} else {
		tx.Timestamp = l.now().UnixMilli()
	}

	if err := l.txs.Record(ctx, tx); err != nil {
		if err == errs.ErrAlreadyExists {
			return &RecordResult{
				Success:       true,
				AlreadyExists: true,
				Message:       "Transaction already exists",
			}, nil
		}
		return nil, err
	}

	return &RecordResult{
		Success:     true,
		Message:     "Transaction stored successfully",
		Transaction: tx,
	}, nil
}

// TransactionView is a transaction seen from one of its parties.
type TransactionView struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	Status       string   `json:"status"`
	To           string   `json:"to,omitempty"`
	From         string   `json:"from,omitempty"`
	ToUsername   *string  `json:"toUsername,omitempty"`
	FromUsername *string  `json:"fromUsername,omitempty"`
	Amount       string   `json:"amount"`
	Currency     string   `json:"currency"`
	Timestamp    int64    `json:"timestamp"`
	Date         string   `json:"date"`
	Purpose      string   `json:"purpose"`
	Tags         []string `json:"tags"`
	Block        *uint64  `json:"block,omitempty"`
}

// View types.
const (
	Sent     = "sent"
	Received = "received"
)

// NewTransactionView builds the view of tx for address.
func NewTransactionView(tx *data.Transaction, address string) TransactionView {
	view := TransactionView{
		ID:        tx.Hash,
		Status:    tx.Status,
		Amount:    tx.Amount,
		Currency:  tx.Currency,
		Timestamp: tx.Timestamp,
		Date:      tx.Time().UTC().Format(time.RFC3339),
		Purpose:   tx.Purpose,
		Tags:      tx.Tags(),
		Block:     tx.Block,
	}

	if strings.EqualFold(tx.Sender, address) {
		view.Type = Sent
		view.To = tx.Recipient
		view.ToUsername = tx.RecipientUsername
	} else {
		view.Type = Received
		view.From = tx.Sender
		view.FromUsername = tx.SenderUsername
	}

	return view
}

// ListTransactions returns the transactions of address, newest first.
func (l *Ledger) ListTransactions(ctx context.Context,
	address string) ([]TransactionView, error) {
	if strings.TrimSpace(address) == "" {
		return nil, errs.Required("address")
	}

	txs, err := l.txs.ListByAddress(ctx, address)
	if err != nil {
		return nil, err
	}

	result := make([]TransactionView, len(txs))
	for k, tx := range txs {
		result[k] = NewTransactionView(tx, address)
	}
	return result, nil
}

// ClaimResult reports the outcome of ClaimReward.
type ClaimResult struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Reward  *data.Reward `json:"reward"`
}

// ClaimReward grants a reward for a recorded transaction. Claiming the same
// transaction again returns the stored reward.
func (l *Ledger) ClaimReward(ctx context.Context, address,
	transactionID string) (*ClaimResult, error) {
	address = strings.ToLower(strings.TrimSpace(address))
	transactionID = strings.ToLower(strings.TrimSpace(transactionID))

	if address == "" {
		return nil, errs.Required("address")
	}
	if transactionID == "" {
		return nil, errs.Required("transactionId")
	}

	if _, err := l.txs.Find(ctx, transactionID); err != nil {
		return nil, err
	}

	existing, err := l.rewards.Find(ctx, address, transactionID)
	if err == nil {
		return claimed(existing), nil
	}
	if !errs.IsNotFound(err) {
		return nil, err
	}

	draw := l.generator.Generate()
	reward := &data.Reward{
		ID:            l.newID(),
		Address:       address,
		TransactionID: transactionID,
		Amount:        draw.Amount,
		Currency:      draw.Currency,
		ClaimedAt:     l.now().UTC(),
		Status:        data.RewardClaimed,
	}

	if err := l.rewards.Create(ctx, reward); err != nil {
		if err != errs.ErrAlreadyExists {
			return nil, err
		}

		// A concurrent claim won.
		existing, err := l.rewards.Find(ctx, address, transactionID)
		if err != nil {
			return nil, errors.Wrap(err, "reload reward")
		}
		return claimed(existing), nil
	}

	l.logger.Info("reward claimed", "address", address,
		"transaction", transactionID, "currency", reward.Currency,
		"amount", reward.Amount)

	return &ClaimResult{
		Success: true,
		Message: "Reward claimed successfully",
		Reward:  reward,
	}, nil
}

func claimed(reward *data.Reward) *ClaimResult {
	return &ClaimResult{
		Success: true,
		Message: "Reward already claimed for this transaction",
		Reward:  reward,
	}
}

// ListRewards returns the rewards of address, newest first.
func (l *Ledger) ListRewards(ctx context.Context,
	address string) ([]*data.Reward, error) {
	if strings.TrimSpace(address) == "" {
		return nil, errs.Required("address")
	}
	return l.rewards.ListByAddress(ctx, address)
}

// EligibleTransactions returns the transactions of address not yet rewarded
// to it.
func (l *Ledger) EligibleTransactions(ctx context.Context,
	address string) ([]TransactionView, error) {
	views, err := l.ListTransactions(ctx, address)
	if err != nil {
		return nil, err
	}

	rewards, err := l.rewards.ListByAddress(ctx, address)
	if err != nil {
		return nil, err
	}

	claimed := make(map[string]struct{}, len(rewards))
	for _, r := range rewards {
		claimed[r.TransactionID] = struct{}{}
	}

	eligible := make([]TransactionView, 0, len(views))
	for _, v := range views {
		if _, ok := claimed[v.ID]; !ok {
			eligible = append(eligible, v)
		}
	}
	return eligible, nil
}

// Profile is the derived standing of an address.
type Profile struct {
	Address      string            `json:"address"`
	Username     string            `json:"username,omitempty"`
	MemberSince  time.Time         `json:"memberSince"`
	Credibility  score.Credibility `json:"credibility"`
	Achievements []score.Badge     `json:"achievements"`
	Stats        score.Stats       `json:"stats"`
}

// Profile computes the credibility, badges and statistics of address.
func (l *Ledger) Profile(ctx context.Context, address string) (*Profile, error) {
	address = strings.ToLower(strings.TrimSpace(address))
	if address == "" {
		return nil, errs.Required("address")
	}

	txs, err := l.txs.ListByAddress(ctx, address)
	if err != nil {
		return nil, err
	}

	now := l.now().UTC()

	created, ok := score.Earliest(txs)
	if !ok {
		created = now
	}

	profile := &Profile{
		Address:     address,
		MemberSince: created.UTC(),
	}

	var verification int
	if l.usernames != nil {
		name, err := l.usernames.UsernameOf(ctx, address)
		switch {
		case err == nil:
			profile.Username = name
			verification = 1
		case !errs.IsNotFound(err):
			l.logger.Warn("username lookup failed", "address", address,
				"error", err)
		}
	}

	profile.Credibility = score.Score(&score.Input{
		Transactions:           txs,
		AccountCreated:         created,
		VerificationLevel:      verification,
		SuccessfulTransactions: score.Completed(txs),
	}, now)
	profile.Achievements = score.Achievements(txs, now)
	profile.Stats = score.Statistics(txs)

	return profile, nil
}
