// Package reward draws randomized token rewards.
package reward

import (
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Token is one entry of the reward table.
type Token struct {
	Currency    string
	Min, Max    float64
	Probability float64
}

// Table is the reward table. Probabilities sum to 1.
var Table = []Token{
	{Currency: "TRUMP", Min: 0.5, Max: 2.5, Probability: 0.2},
	{Currency: "DAK", Min: 1, Max: 5, Probability: 0.2},
	{Currency: "CHOG", Min: 0.75, Max: 3, Probability: 0.2},
	{Currency: "MOYAKI", Min: 1.5, Max: 4, Probability: 0.2},
	{Currency: "GMON", Min: 0.5, Max: 2, Probability: 0.2},
}

// Source yields uniform numbers in [0, 1).
type Source interface {
	Float64() float64
}

// Draw is a generated reward.
type Draw struct {
	Currency string
	Amount   string // two decimal places
}

// Generator draws rewards from a table. It is safe for concurrent use.
type Generator struct {
	mu    sync.Mutex
	src   Source
	table []Token
}

// NewGenerator creates a generator over Table. A nil src is seeded from the
// clock.
func NewGenerator(src Source) *Generator {
	if src == nil {
		src = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{src: src, table: Table}
}

// Generate draws a token by cumulative probability and an amount uniformly
// within its range.
func (g *Generator) Generate() Draw {
	g.mu.Lock()
	r := g.src.Float64()
	u := g.src.Float64()
	g.mu.Unlock()

	token := g.table[len(g.table)-1]
	var cumulative float64
	for _, t := range g.table {
		cumulative += t.Probability
		if cumulative >= r {
			token = t
			break
		}
	}

	amount := token.Min + u*(token.Max-token.Min)

	return Draw{
		Currency: token.Currency,
		Amount:   decimal.NewFromFloat(amount).StringFixed(2),
	}
}
