// Package chat drives payment conversations: it turns chat messages into
// intents, keeps the pending payment of each session and executes payments
// once confirmed.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dzeckelev/quickpay/command"
	"github.com/dzeckelev/quickpay/service"
)

// Message roles.
const (
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one reply line.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func say(format string, args ...interface{}) Message {
	return Message{Role: RoleAssistant, Content: fmt.Sprintf(format, args...)}
}

// Replies that never vary.
const (
	HelpText = `**Available Commands:**

**Transaction Commands:**
- Send [amount] [currency] to @[username] for [purpose]
  Example: "Send 0.1 ETH to @alice for lunch"

**Utility Commands:**
- /help - Show this help message
- /balance - Check your current wallet balance
- /transactions - View your transaction history

**Questions you can ask:**
- "What's my balance?"
- "How do I register a username?"
- "What cryptocurrencies are supported?"`

	Greeting = "Hi there! I'm your QuickPay AI assistant. You can ask me to " +
		"send payments using natural language. For example, try saying " +
		"\"Send 0.1 MON to @alice for lunch\"."

	canceled          = "Payment canceled. Is there anything else I can help you with?"
	abandoned         = "Previous payment discarded."
	connectToSend     = "Please connect your wallet first to send payments."
	connectForBalance = "Please connect your wallet first to check your balance."
	transactionsLink  = "You can view your transactions on the [Transactions page](/transactions)."
	balanceFailed     = "Failed to get balance."
	confirmHint       = "Type 'yes' to confirm or 'no' to cancel."
)

var (
	confirmWords = []string{"yes", "confirm", "sure", "ok", "okay", "proceed",
		"go ahead"}
	cancelWords = []string{"no", "cancel", "stop", "abort"}
)

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// Interpreter turns free text into an intent.
type Interpreter interface {
	Parse(ctx context.Context, text string) command.Intent
}

// Payments executes payments and balance queries.
type Payments interface {
	SendPayment(ctx context.Context,
		req *service.PaymentRequest) (*service.PaymentResult, error)
	Balance(ctx context.Context, address string) (decimal.Decimal, error)
}

// Bot handles messages of chat sessions.
type Bot struct {
	parser       Interpreter
	payments     Payments
	assistant    *Assistant
	nativeSymbol string
	now          func() time.Time
	logger       *slog.Logger
}

// NewBot creates a bot. assistant may be nil, in which case unrecognized
// messages get the help text.
func NewBot(parser Interpreter, payments Payments, assistant *Assistant,
	nativeSymbol string, logger *slog.Logger) *Bot {
	return &Bot{
		parser:       parser,
		payments:     payments,
		assistant:    assistant,
		nativeSymbol: nativeSymbol,
		now:          time.Now,
		logger:       logger,
	}
}

// Handle processes one message of s and returns the replies. Failures are
// reported as replies, never as errors.
func (b *Bot) Handle(ctx context.Context, s *Session, text string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch(b.now())
	defer func() { s.touch(b.now()) }()

	input := strings.TrimSpace(text)
	lower := strings.ToLower(input)

	switch lower {
	case "/help":
		return []Message{say(HelpText)}
	case "/balance":
		return []Message{b.balance(ctx, s)}
	case "/transactions":
		return []Message{say(transactionsLink)}
	}

	var replies []Message

	switch state := s.state.(type) {
	case AwaitingConfirmation:
		if containsAny(lower, confirmWords) {
			s.state = Idle{}
			return b.execute(ctx, s, state.Payment)
		}
		if containsAny(lower, cancelWords) {
			s.state = Idle{}
			return []Message{say(canceled)}
		}
		s.state = Idle{}
		replies = append(replies, Message{Role: RoleSystem, Content: abandoned})
	case AwaitingCurrency:
		if containsAny(lower, cancelWords) {
			s.state = Idle{}
			return []Message{say(canceled)}
		}
		payment := Payment{
			Recipient: state.Recipient,
			Amount:    state.Amount,
			Currency:  command.PickCurrency(lower),
			Purpose:   state.Purpose,
		}
		s.state = AwaitingConfirmation{Payment: payment}
		return []Message{say("Great! To confirm, you want to send %s. %s",
			payment.describe(), confirmHint)}
	}

	return append(replies, b.interpret(ctx, s, input)...)
}

func (b *Bot) interpret(ctx context.Context, s *Session,
	input string) []Message {
	intent := b.parser.Parse(ctx, input)

	switch intent.Action {
	case command.ActionSend:
		if s.Address == "" {
			return []Message{say(connectToSend)}
		}

		if intent.Currency == "" {
			s.state = AwaitingCurrency{
				Recipient: intent.Recipient,
				Amount:    intent.Amount,
				Purpose:   intent.Purpose,
			}
			return []Message{say(
				"Which currency would you like to send %s in to @%s? "+
					"For example ETH or MON.",
				formatAmount(intent.Amount), intent.Recipient)}
		}

		payment := Payment{
			Recipient: intent.Recipient,
			Amount:    intent.Amount,
			Currency:  intent.Currency,
			Purpose:   intent.Purpose,
		}
		s.state = AwaitingConfirmation{Payment: payment}

		return []Message{say("It looks like you're ready to make a payment! "+
			"To confirm, you want to send %s %s to the recipient @%s%s. %s",
			formatAmount(payment.Amount), payment.Currency, payment.Recipient,
			forPurpose(payment.Purpose), confirmHint)}
	case command.ActionBalance:
		return []Message{b.balance(ctx, s)}
	}

	if !b.assistant.Enabled() {
		return []Message{say(HelpText)}
	}
	return []Message{{
		Role:    RoleAssistant,
		Content: b.assistant.Answer(ctx, input, s.Address != ""),
	}}
}

func forPurpose(purpose string) string {
	if purpose == "" {
		return ""
	}
	return " for " + purpose
}

func (b *Bot) execute(ctx context.Context, s *Session,
	payment Payment) []Message {
	replies := []Message{say("Processing payment of %s...", payment.describe())}

	result, err := b.payments.SendPayment(ctx, &service.PaymentRequest{
		From:      s.Address,
		Recipient: payment.Recipient,
		Amount:    payment.Amount,
		Currency:  payment.Currency,
		Purpose:   payment.Purpose,
	})
	if err != nil {
		b.logger.Error("payment failed", "session", s.ID, "error", err)
		return append(replies,
			say("❌ Error processing payment: %s", err.Error()))
	}

	if !result.Success {
		return append(replies, say("❌ Failed to send payment: %s",
			result.Message))
	}

	return append(replies,
		say("✅ Successfully sent %s!", payment.describe()),
		Message{Role: RoleSystem, Content: "Transaction hash: " + result.TxHash})
}

func (b *Bot) balance(ctx context.Context, s *Session) Message {
	if s.Address == "" {
		return say(connectForBalance)
	}

	balance, err := b.payments.Balance(ctx, s.Address)
	if err != nil {
		b.logger.Warn("balance query failed", "address", s.Address,
			"error", err)
		return say(balanceFailed)
	}

	return say("Your current balance is %s %s.", balance.StringFixed(4),
		b.nativeSymbol)
}
