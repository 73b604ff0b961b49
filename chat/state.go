package chat

import (
	"fmt"
	"strconv"
)

// State names.
const (
	StateIdle                 = "idle"
	StateAwaitingCurrency     = "awaiting_currency"
	StateAwaitingConfirmation = "awaiting_confirmation"
)

// Payment is a payment waiting for confirmation.
type Payment struct {
	Recipient string  `json:"recipient"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Purpose   string  `json:"purpose,omitempty"`
}

// describe renders "1.5 ETH to @bob for lunch".
func (p Payment) describe() string {
	s := fmt.Sprintf("%s %s to @%s", formatAmount(p.Amount), p.Currency,
		p.Recipient)
	if p.Purpose != "" {
		s += " for " + p.Purpose
	}
	return s
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// State is the pending payment context of a session. It is one of Idle,
// AwaitingCurrency and AwaitingConfirmation.
type State interface {
	Name() string
	isState()
}

// Idle has nothing pending.
type Idle struct{}

// AwaitingCurrency has a send intent that lacks a currency.
type AwaitingCurrency struct {
	Recipient string
	Amount    float64
	Purpose   string
}

// AwaitingConfirmation has a complete payment waiting for yes or no.
type AwaitingConfirmation struct {
	Payment Payment
}

func (Idle) Name() string                 { return StateIdle }
func (AwaitingCurrency) Name() string     { return StateAwaitingCurrency }
func (AwaitingConfirmation) Name() string { return StateAwaitingConfirmation }

func (Idle) isState()                 {}
func (AwaitingCurrency) isState()     {}
func (AwaitingConfirmation) isState() {}

// StateView is the serialized form of a State.
type StateView struct {
	Name    string   `json:"name"`
	Payment *Payment `json:"payment,omitempty"`
}

// View serializes s.
func View(s State) StateView {
	switch s := s.(type) {
	case AwaitingCurrency:
		return StateView{Name: s.Name(), Payment: &Payment{
			Recipient: s.Recipient,
			Amount:    s.Amount,
			Purpose:   s.Purpose,
		}}
	case AwaitingConfirmation:
		p := s.Payment
		return StateView{Name: s.Name(), Payment: &p}
	default:
		return StateView{Name: StateIdle}
	}
}
