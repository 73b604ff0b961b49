// Package command turns free-form chat text into payment intents.
package command

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Intent actions.
const (
	ActionSend    = "send"
	ActionBalance = "balance"
	ActionInvalid = "invalid"
)

// ErrUnparsed is the error of an intent nothing could interpret.
const ErrUnparsed = "Failed to parse transaction command. " +
	"Please try again with a clearer instruction."

// Intent is the structured interpretation of a chat message.
type Intent struct {
	Action    string  `json:"action"`
	Amount    float64 `json:"amount,omitempty"`
	Currency  string  `json:"currency,omitempty"`
	Recipient string  `json:"recipient,omitempty"`
	Purpose   string  `json:"purpose,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// Send returns a send intent.
func Send(amount float64, currency, recipient, purpose string) Intent {
	return Intent{
		Action:    ActionSend,
		Amount:    amount,
		Currency:  currency,
		Recipient: recipient,
		Purpose:   purpose,
	}
}

// Balance returns a balance intent.
func Balance() Intent {
	return Intent{Action: ActionBalance}
}

// Invalid returns an invalid intent carrying reason.
func Invalid(reason string) Intent {
	return Intent{Action: ActionInvalid, Error: reason}
}

// Parser interprets one message. ok is false when the parser has no answer
// and the next strategy should be tried.
type Parser interface {
	Parse(ctx context.Context, text string) (intent Intent, ok bool)
}

var balancePhrases = []string{"balance", "how much", "what's my"}

const (
	amountExpr   = `(\d*\.?\d+)`
	currencyExpr = `(eth|ether|mon|usdc|dai|btc)`
	userExpr     = `@?(\w+)`
	purposeExpr  = `(?:\s+for\s+([#\w\s]+))?`
)

// sendPattern is one deterministic phrasing with its group positions.
type sendPattern struct {
	re                                  *regexp.Regexp
	amount, currency, recipient, reason int
}

func amountFirst(prefix string) sendPattern {
	return sendPattern{
		re: regexp.MustCompile(prefix + amountExpr + `\s+` + currencyExpr +
			`\s+to\s+` + userExpr + purposeExpr),
		amount: 1, currency: 2, recipient: 3, reason: 4,
	}
}

// Checked in order, first match wins.
var sendPatterns = []sendPattern{
	amountFirst(`send\s+`),
	amountFirst(`transfer\s+`),
	{
		re: regexp.MustCompile(`pay\s+` + userExpr + `\s+` + amountExpr +
			`\s+` + currencyExpr + purposeExpr),
		amount: 2, currency: 3, recipient: 1, reason: 4,
	},
	amountFirst(`give\s+`),
	amountFirst(`(?:^|\s)`),
}

// Patterns is the deterministic parser.
type Patterns struct{}

// Parse implements Parser.
func (Patterns) Parse(_ context.Context, text string) (Intent, bool) {
	return matchPatterns(text)
}

func matchPatterns(text string) (Intent, bool) {
	input := strings.TrimSpace(strings.ToLower(text))

	for _, phrase := range balancePhrases {
		if strings.Contains(input, phrase) {
			return Balance(), true
		}
	}

	for _, p := range sendPatterns {
		m := p.re.FindStringSubmatch(input)
		if m == nil {
			continue
		}

		amount, err := strconv.ParseFloat(m[p.amount], 64)
		if err != nil || !validAmount(amount) {
			continue
		}

		return Send(amount, NormalizeCurrency(m[p.currency]), m[p.recipient],
			strings.TrimSpace(m[p.reason])), true
	}

	return Intent{}, false
}

func validAmount(amount float64) bool {
	return amount > 0 && !math.IsInf(amount, 0) && !math.IsNaN(amount)
}

// Interpreter tries the deterministic patterns and then the remote parser.
type Interpreter struct {
	patterns Patterns
	remote   Parser
}

// NewInterpreter creates an interpreter. remote may be nil.
func NewInterpreter(remote Parser) *Interpreter {
	return &Interpreter{remote: remote}
}

// Parse never fails: anything unrecognized becomes an invalid intent.
func (i *Interpreter) Parse(ctx context.Context, text string) Intent {
	if intent, ok := i.patterns.Parse(ctx, text); ok {
		return intent
	}

	if i.remote != nil {
		if intent, ok := i.remote.Parse(ctx, text); ok {
			return intent
		}
	}

	if intent, ok := i.patterns.Parse(ctx, text); ok {
		return intent
	}

	return Invalid(ErrUnparsed)
}
