package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/AlekSi/pointer"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/dzeckelev/quickpay/command"
	"github.com/dzeckelev/quickpay/config"
	"github.com/dzeckelev/quickpay/data"
	"github.com/dzeckelev/quickpay/errs"
	"github.com/dzeckelev/quickpay/eth"
	"github.com/dzeckelev/quickpay/registry"
)

// Payments executes payments from unlocked node accounts.
type Payments struct {
	cfg       config.Payment
	client    eth.GethClient
	payer     Payer
	usernames Usernames
	txs       TransactionStore
	now       func() time.Time
	logger    *slog.Logger
}

// NewPayments creates a payment service.
func NewPayments(cfg config.Payment, client eth.GethClient, payer Payer,
	usernames Usernames, txs TransactionStore,
	logger *slog.Logger) *Payments {
	return &Payments{
		cfg:       cfg,
		client:    client,
		payer:     payer,
		usernames: usernames,
		txs:       txs,
		now:       time.Now,
		logger:    logger,
	}
}

// PaymentRequest is a confirmed payment.
type PaymentRequest struct {
	From      string
	Recipient string
	Amount    float64
	Currency  string
	Purpose   string
}

// PaymentResult reports the outcome of a payment.
type PaymentResult struct {
	Success bool   `json:"success"`
	TxHash  string `json:"txHash,omitempty"`
	Message string `json:"message"`
}

func failed(format string, args ...interface{}) *PaymentResult {
	return &PaymentResult{Message: fmt.Sprintf(format, args...)}
}

func (p *Payments) supported(currency string) bool {
	for _, s := range p.cfg.SupportedSymbols {
		if strings.EqualFold(s, currency) {
			return true
		}
	}
	return false
}

// SendPayment sends req and waits for its receipt. Rejections are reported
// in the result; the error is reserved for failures of the node itself.
func (p *Payments) SendPayment(ctx context.Context,
	req *PaymentRequest) (*PaymentResult, error) {
	if !registry.IsAddress(req.From) {
		return nil, errs.Invalid("from", "not a hex address")
	}
	if math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) || req.Amount <= 0 {
		return failed("Invalid amount."), nil
	}

	currency := command.NormalizeCurrency(req.Currency)
	if !p.supported(currency) {
		return failed("Currently only %s payments are supported.",
			strings.Join(p.cfg.SupportedSymbols, " and ")), nil
	}

	name := registry.Normalize(req.Recipient)
	to, err := p.usernames.Resolve(ctx, req.Recipient)
	if err != nil {
		var nf *errs.NotFoundError
		if errors.As(err, &nf) {
			msg := fmt.Sprintf("Username @%s is not registered.", name)
			if nf.Hint != "" {
				msg += " " + nf.Hint
			}
			return &PaymentResult{Message: msg}, nil
		}
		return nil, err
	}

	amount := decimal.NewFromFloat(req.Amount)
	value := eth.ToWei(amount)
	from := common.HexToAddress(req.From)

	var hash string
	if registry.IsAddress(req.Recipient) {
		hash, err = p.client.SendTransaction(ctx, from,
			common.HexToAddress(to), value, nil)
	} else {
		hash, err = p.payer.Pay(ctx, from, name, req.Purpose, value)
	}
	if err != nil {
		return nil, errs.Remote("node", err)
	}

	p.logger.Info("payment sent", "hash", hash, "from", req.From,
		"to", to, "amount", amount.String(), "currency", currency)

	tx := &data.Transaction{
		Hash:      hash,
		Sender:    strings.ToLower(req.From),
		Recipient: to,
		Amount:    amount.String(),
		Currency:  currency,
		Purpose:   strings.TrimSpace(req.Purpose),
		Timestamp: p.now().UnixMilli(),
		Status:    data.TxPending,
	}
	tx.Tag = data.TagOf(tx.Purpose)
	if !registry.IsAddress(req.Recipient) {
		tx.RecipientUsername = pointer.ToString(name)
	}
	if sender, err := p.usernames.UsernameOf(ctx, tx.Sender); err == nil {
		tx.SenderUsername = pointer.ToString(sender)
	}

	waitCtx, cancel := context.WithTimeout(ctx, p.cfg.ReceiptTimeout)
	defer cancel()

	receipt, err := eth.WaitReceipt(waitCtx, p.client, common.HexToHash(hash),
		p.cfg.ReceiptPause)
	if err != nil {
		p.record(ctx, tx)
		return &PaymentResult{
			TxHash: hash,
			Message: fmt.Sprintf(
				"Transaction %s was not confirmed in time.", hash),
		}, nil
	}

	tx.Block = pointer.ToUint64(receipt.BlockNumber.Uint64())
	if receipt.Status != types.ReceiptStatusSuccessful {
		tx.Status = data.TxFailed
		p.record(ctx, tx)
		return &PaymentResult{
			TxHash:  hash,
			Message: "Transaction reverted.",
		}, nil
	}

	tx.Status = data.TxCompleted
	p.record(ctx, tx)

	target := "@" + name
	if registry.IsAddress(req.Recipient) {
		target = to
	}

	return &PaymentResult{
		Success: true,
		TxHash:  hash,
		Message: fmt.Sprintf("Successfully sent %s %s to %s.",
			amount.String(), currency, target),
	}, nil
}

func (p *Payments) record(ctx context.Context, tx *data.Transaction) {
	if err := p.txs.Record(ctx, tx); err != nil && err != errs.ErrAlreadyExists {
		p.logger.Error("failed to record payment", "hash", tx.Hash,
			"error", err)
	}
}

// Balance returns the native currency balance of address.
func (p *Payments) Balance(ctx context.Context,
	address string) (decimal.Decimal, error) {
	if !registry.IsAddress(address) {
		return decimal.Zero, errs.Invalid("address", "not a hex address")
	}

	balance, err := eth.Balance(ctx, p.client, common.HexToAddress(address))
	if err != nil {
		return decimal.Zero, errs.Remote("node", err)
	}
	return balance, nil
}
