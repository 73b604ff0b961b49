package command_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/dzeckelev/quickpay/command"
	"github.com/dzeckelev/quickpay/logging"
)

type completer struct {
	answer string
	err    error
	calls  int
}

func (c *completer) CompleteJSON(context.Context, string, string) (string, error) {
	c.calls++
	return c.answer, c.err
}

func newInterpreter(c *completer) *command.Interpreter {
	return command.NewInterpreter(command.NewRemote(c, logging.Discard()))
}

func TestParsePatterns(t *testing.T) {
	cases := []struct {
		text string
		exp  command.Intent
	}{
		{"send 0.1 eth to @alice for lunch",
			command.Send(0.1, "ETH", "alice", "lunch")},
		{"pay @bob 2 mon for #rent",
			command.Send(2, "MON", "bob", "#rent")},
		{"  Transfer 3 Ether to carol  ",
			command.Send(3, "ETH", "carol", "")},
		{"give .5 usdc to @dave for #coffee and cake",
			command.Send(0.5, "USDC", "dave", "#coffee and cake")},
		{"please 1 dai to @erin",
			command.Send(1, "DAI", "erin", "")},
		{"what's my balance?", command.Balance()},
		{"How much do I have", command.Balance()},
		// Balance phrases win over payments.
		{"send 1 eth to @bob and show balance", command.Balance()},
	}

	for _, c := range cases {
		comp := &completer{err: errors.New("unused")}
		got := newInterpreter(comp).Parse(context.Background(), c.text)
		require.Equal(t, c.exp, got, c.text)
		require.Zero(t, comp.calls, "remote called for %q", c.text)
	}
}

func TestParseZeroAmountFallsThrough(t *testing.T) {
	comp := &completer{answer: `{"action":"invalid","error":"amount must be positive"}`}

	got := newInterpreter(comp).Parse(context.Background(), "send 0 eth to @bob")
	require.Equal(t, command.Invalid("amount must be positive"), got)
	require.Equal(t, 1, comp.calls)
}

func TestParsePartialNumberFallsThrough(t *testing.T) {
	for _, text := range []string{
		"send 1e309 eth to @bob",
		"send 2,500 mon to @bob",
	} {
		comp := &completer{answer: `{"action":"invalid","error":"unclear amount"}`}

		got := newInterpreter(comp).Parse(context.Background(), text)
		require.Equal(t, command.Invalid("unclear amount"), got, text)
		require.Equal(t, 1, comp.calls, text)
	}
}

func TestParseRemote(t *testing.T) {
	comp := &completer{answer: "Sure! Here it is:\n```json\n" +
		`{"action": "send", "amount": "0.25", "currency": "mon", ` +
		`"recipient": "@frank", "purpose": "pizza {large}"}` + "\n```"}

	got := newInterpreter(comp).Parse(context.Background(),
		"could you move a quarter mon over to frank for pizza")
	require.Equal(t, command.Send(0.25, "MON", "frank", "pizza {large}"), got)
	require.Equal(t, 1, comp.calls)
}

func TestParseRemoteWithoutCurrency(t *testing.T) {
	comp := &completer{answer: `{"action":"send","amount":4,"recipient":"gina"}`}

	got := newInterpreter(comp).Parse(context.Background(), "4 to gina please")
	require.Equal(t, command.ActionSend, got.Action)
	require.Empty(t, got.Currency)
	require.Equal(t, "gina", got.Recipient)
}

func TestParseRemoteFailure(t *testing.T) {
	for _, comp := range []*completer{
		{err: errors.New("timeout")},
		{answer: "no json here"},
		{answer: `{"amount": 1}`},
		{answer: `{"action":"send","amount":-1,"recipient":"bob"}`},
		{answer: `{"action":"send","amount":1}`},
		{answer: `{"action":"dance"}`},
	} {
		got := newInterpreter(comp).Parse(context.Background(), "asdkjfh")
		require.Equal(t, command.ActionInvalid, got.Action)
		require.Equal(t, command.ErrUnparsed, got.Error)
	}

	got := command.NewInterpreter(nil).Parse(context.Background(), "asdkjfh")
	require.Equal(t, command.Invalid(command.ErrUnparsed), got)
}

func TestParseRemoteInvalidWithoutError(t *testing.T) {
	comp := &completer{answer: `{"action":"invalid"}`}

	got := newInterpreter(comp).Parse(context.Background(), "hello")
	require.Equal(t, command.Invalid(command.ErrUnparsed), got)
}

func TestExtractObject(t *testing.T) {
	obj, ok := command.ExtractObject(`text {"a":{"b":"}"}} tail {"c":1}`)
	require.True(t, ok)
	require.Equal(t, `{"a":{"b":"}"}}`, obj)

	_, ok = command.ExtractObject(`{"a": 1`)
	require.False(t, ok)
}

func TestNormalizeCurrency(t *testing.T) {
	for in, exp := range map[string]string{
		"eth": "ETH", "Ether": "ETH", "MON": "MON", "usdc": "USDC",
		"dai": "DAI", "btc": "BTC", "sol": "SOL", "": "",
	} {
		require.Equal(t, exp, command.NormalizeCurrency(in), in)
	}
}

func TestPickCurrency(t *testing.T) {
	require.Equal(t, "MON", command.PickCurrency("Mon please"))
	require.Equal(t, "USDC", command.PickCurrency("usdc"))
	require.Equal(t, "ETH", command.PickCurrency("whatever"))
}
