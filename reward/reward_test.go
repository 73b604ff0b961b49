package reward_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dzeckelev/quickpay/reward"
)

type fixed []float64

func (f *fixed) Float64() float64 {
	v := (*f)[0]
	*f = (*f)[1:]
	return v
}

func TestGenerateDistribution(t *testing.T) {
	const draws = 100000

	gen := reward.NewGenerator(rand.New(rand.NewSource(42)))

	bounds := make(map[string]reward.Token)
	for _, tok := range reward.Table {
		bounds[tok.Currency] = tok
	}

	counts := make(map[string]int)
	for i := 0; i < draws; i++ {
		d := gen.Generate()
		counts[d.Currency]++

		tok, ok := bounds[d.Currency]
		require.True(t, ok, d.Currency)

		amount := decimal.RequireFromString(d.Amount)
		require.Equal(t, int32(-2), amount.Exponent(), d.Amount)
		require.True(t, amount.GreaterThanOrEqual(decimal.NewFromFloat(tok.Min)), d.Amount)
		require.True(t, amount.LessThanOrEqual(decimal.NewFromFloat(tok.Max)), d.Amount)
	}

	require.Len(t, counts, len(reward.Table))
	for currency, n := range counts {
		share := float64(n) / draws
		require.Less(t, math.Abs(share-0.2), 0.01, currency)
	}
}

func TestGenerateWalk(t *testing.T) {
	cases := []struct {
		r, u     float64
		currency string
		amount   string
	}{
		{0, 0, "TRUMP", "0.50"},
		{0.2, 1, "TRUMP", "2.50"},
		{0.21, 0.5, "DAK", "3.00"},
		{0.999, 0.5, "GMON", "1.25"},
	}

	for _, c := range cases {
		src := fixed{c.r, c.u}
		d := reward.NewGenerator(&src).Generate()
		require.Equal(t, c.currency, d.Currency)
		require.Equal(t, c.amount, d.Amount)
	}
}
