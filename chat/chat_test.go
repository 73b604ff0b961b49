package chat_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dzeckelev/quickpay/chat"
	"github.com/dzeckelev/quickpay/command"
	"github.com/dzeckelev/quickpay/logging"
	"github.com/dzeckelev/quickpay/service"
)

const wallet = "0xe7dc9fe68da458b54f648146a817126053eeef66"

type payments struct {
	requests []*service.PaymentRequest
	result   *service.PaymentResult
	err      error
}

func (p *payments) SendPayment(_ context.Context,
	req *service.PaymentRequest) (*service.PaymentResult, error) {
	p.requests = append(p.requests, req)
	return p.result, p.err
}

func (p *payments) Balance(context.Context, string) (decimal.Decimal, error) {
	return decimal.RequireFromString("12.345678"), p.err
}

// remote answers every unmatched message with a send lacking a currency.
type remote struct{}

func (remote) Parse(_ context.Context, text string) (command.Intent, bool) {
	if strings.Contains(text, "bob") {
		return command.Send(3, "", "bob", "books"), true
	}
	return command.Intent{}, false
}

type replier struct {
	reply string
	err   error
}

func (r replier) Enabled() bool { return true }

func (r replier) Reply(context.Context, string, string) (string, error) {
	return r.reply, r.err
}

func newBot(p *payments, assistant *chat.Assistant) (*chat.Bot, *chat.Sessions) {
	var n int
	sessions := chat.NewSessions(func() string {
		n++
		return fmt.Sprintf("session-%d", n)
	})
	bot := chat.NewBot(command.NewInterpreter(remote{}), p, assistant, "MON",
		logging.Discard())
	return bot, sessions
}

func contents(messages []chat.Message) []string {
	result := make([]string, len(messages))
	for k, m := range messages {
		result[k] = m.Content
	}
	return result
}

func TestConfirmPayment(t *testing.T) {
	p := &payments{result: &service.PaymentResult{Success: true,
		TxHash: "0xfeed"}}
	bot, sessions := newBot(p, nil)
	s := sessions.Open(wallet)
	ctx := context.Background()

	replies := bot.Handle(ctx, s, "Send 0.5 eth to @alice for #lunch")
	require.Equal(t, []string{"It looks like you're ready to make a payment! " +
		"To confirm, you want to send 0.5 ETH to the recipient @alice for " +
		"#lunch. Type 'yes' to confirm or 'no' to cancel."}, contents(replies))
	require.Equal(t, chat.StateAwaitingConfirmation, s.State().Name())

	replies = bot.Handle(ctx, s, "Yes please")
	require.Equal(t, []string{
		"Processing payment of 0.5 ETH to @alice for #lunch...",
		"✅ Successfully sent 0.5 ETH to @alice for #lunch!",
		"Transaction hash: 0xfeed",
	}, contents(replies))
	require.Equal(t, chat.Idle{}, s.State())

	require.Len(t, p.requests, 1)
	require.Equal(t, &service.PaymentRequest{
		From:      wallet,
		Recipient: "alice",
		Amount:    0.5,
		Currency:  "ETH",
		Purpose:   "#lunch",
	}, p.requests[0])
}

func TestPaymentFailure(t *testing.T) {
	p := &payments{result: &service.PaymentResult{
		Message: "Username @alice is not registered."}}
	bot, sessions := newBot(p, nil)
	s := sessions.Open(wallet)
	ctx := context.Background()

	bot.Handle(ctx, s, "send 1 mon to @alice")
	replies := bot.Handle(ctx, s, "ok")
	require.Equal(t, "❌ Failed to send payment: Username @alice is not "+
		"registered.", replies[1].Content)
	require.Equal(t, chat.StateIdle, s.State().Name())

	p.err = errors.New("node down")
	bot.Handle(ctx, s, "send 1 mon to @alice")
	replies = bot.Handle(ctx, s, "confirm")
	require.Equal(t, "❌ Error processing payment: node down",
		replies[1].Content)
	require.Equal(t, chat.StateIdle, s.State().Name())
}

func TestCancelPayment(t *testing.T) {
	p := &payments{}
	bot, sessions := newBot(p, nil)
	s := sessions.Open(wallet)
	ctx := context.Background()

	bot.Handle(ctx, s, "transfer 2 eth to @carol")
	replies := bot.Handle(ctx, s, "no, cancel that")
	require.Equal(t, []string{"Payment canceled. Is there anything else I " +
		"can help you with?"}, contents(replies))
	require.Equal(t, chat.Idle{}, s.State())
	require.Empty(t, p.requests)
}

func TestConfirmationWinsOverCancellation(t *testing.T) {
	p := &payments{result: &service.PaymentResult{Success: true, TxHash: "0x2"}}
	bot, sessions := newBot(p, nil)
	s := sessions.Open(wallet)
	ctx := context.Background()

	bot.Handle(ctx, s, "send 1 eth to @alice")
	replies := bot.Handle(ctx, s, "yes no")
	require.Equal(t, "Processing payment of 1 ETH to @alice...",
		replies[0].Content)
	require.Len(t, p.requests, 1)
	require.Equal(t, chat.StateIdle, s.State().Name())
}

// slowPayments tracks how many payments run at once.
type slowPayments struct {
	calls    atomic.Int32
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (p *slowPayments) SendPayment(context.Context,
	*service.PaymentRequest) (*service.PaymentResult, error) {
	p.calls.Add(1)
	n := p.inFlight.Add(1)
	defer p.inFlight.Add(-1)

	for {
		peak := p.peak.Load()
		if n <= peak || p.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	time.Sleep(50 * time.Millisecond)
	return &service.PaymentResult{Success: true, TxHash: "0x3"}, nil
}

func (p *slowPayments) Balance(context.Context, string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func TestConcurrentConfirmationsPayOnce(t *testing.T) {
	p := &slowPayments{}
	sessions := chat.NewSessions(func() string { return "session" })
	bot := chat.NewBot(command.NewInterpreter(remote{}), p, nil, "MON",
		logging.Discard())
	s := sessions.Open(wallet)
	ctx := context.Background()

	bot.Handle(ctx, s, "send 1 eth to @alice")

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bot.Handle(ctx, s, "yes")
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), p.calls.Load())
	require.Equal(t, int32(1), p.peak.Load())
	require.Equal(t, chat.StateIdle, s.State().Name())
}

func TestCurrencySelection(t *testing.T) {
	p := &payments{result: &service.PaymentResult{Success: true, TxHash: "0x1"}}
	bot, sessions := newBot(p, nil)
	s := sessions.Open(wallet)
	ctx := context.Background()

	bot.Handle(ctx, s, "please get bob some money")
	require.Equal(t, chat.AwaitingCurrency{Recipient: "bob", Amount: 3,
		Purpose: "books"}, s.State())

	view := chat.View(s.State())
	require.Equal(t, chat.StateAwaitingCurrency, view.Name)
	require.Equal(t, "bob", view.Payment.Recipient)

	replies := bot.Handle(ctx, s, "in MON")
	require.Equal(t, []string{"Great! To confirm, you want to send 3 MON to " +
		"@bob for books. Type 'yes' to confirm or 'no' to cancel."},
		contents(replies))
	require.Equal(t, chat.AwaitingConfirmation{Payment: chat.Payment{
		Recipient: "bob", Amount: 3, Currency: "MON", Purpose: "books"}},
		s.State())

	bot.Handle(ctx, s, "go ahead")
	require.Equal(t, "MON", p.requests[0].Currency)
}

func TestCurrencySelectionDefaultsToETH(t *testing.T) {
	bot, sessions := newBot(&payments{}, nil)
	s := sessions.Open(wallet)
	ctx := context.Background()

	bot.Handle(ctx, s, "bob deserves something")
	bot.Handle(ctx, s, "whatever you like")
	require.Equal(t, "ETH",
		s.State().(chat.AwaitingConfirmation).Payment.Currency)

	bot.Handle(ctx, s, "bob deserves something")
	replies := bot.Handle(ctx, s, "stop")
	require.Equal(t, "Payment canceled. Is there anything else I can help "+
		"you with?", replies[0].Content)
}

func TestAbandonPendingPayment(t *testing.T) {
	bot, sessions := newBot(&payments{}, nil)
	s := sessions.Open(wallet)
	ctx := context.Background()

	bot.Handle(ctx, s, "send 1 eth to @alice")
	replies := bot.Handle(ctx, s, "send 4 dai to @dave")
	require.Len(t, replies, 2)
	require.Equal(t, chat.RoleSystem, replies[0].Role)
	require.Equal(t, chat.AwaitingConfirmation{Payment: chat.Payment{
		Recipient: "dave", Amount: 4, Currency: "DAI"}}, s.State())
}

func TestWalletRequired(t *testing.T) {
	p := &payments{}
	bot, sessions := newBot(p, nil)
	s := sessions.Open("")
	ctx := context.Background()

	replies := bot.Handle(ctx, s, "send 1 eth to @alice")
	require.Equal(t, []string{"Please connect your wallet first to send " +
		"payments."}, contents(replies))
	require.Equal(t, chat.Idle{}, s.State())

	replies = bot.Handle(ctx, s, "/balance")
	require.Equal(t, []string{"Please connect your wallet first to check " +
		"your balance."}, contents(replies))
}

func TestBalance(t *testing.T) {
	p := &payments{}
	bot, sessions := newBot(p, nil)
	s := sessions.Open(wallet)
	ctx := context.Background()

	replies := bot.Handle(ctx, s, "what's my balance?")
	require.Equal(t, []string{"Your current balance is 12.3457 MON."},
		contents(replies))

	p.err = errors.New("node down")
	replies = bot.Handle(ctx, s, "/balance")
	require.Equal(t, []string{"Failed to get balance."}, contents(replies))
}

func TestSlashCommands(t *testing.T) {
	bot, sessions := newBot(&payments{}, nil)
	s := sessions.Open(wallet)
	ctx := context.Background()

	require.Equal(t, chat.HelpText, bot.Handle(ctx, s, " /HELP ")[0].Content)
	require.Contains(t, bot.Handle(ctx, s, "/transactions")[0].Content,
		"(/transactions)")

	// Without a model, unrecognized messages get the help text.
	require.Equal(t, chat.HelpText, bot.Handle(ctx, s, "hello")[0].Content)
}

func TestAssistant(t *testing.T) {
	ctx := context.Background()

	bot, sessions := newBot(&payments{}, chat.NewAssistant(replier{
		reply: "Gas is the fee paid to miners."}))
	s := sessions.Open(wallet)

	require.Equal(t, "Gas is the fee paid to miners.",
		bot.Handle(ctx, s, "what is gas?")[0].Content)
	require.Contains(t, bot.Handle(ctx, s, "best pizza in town?")[0].Content,
		"I'm designed to help with Web3 payments")

	bot, sessions = newBot(&payments{}, chat.NewAssistant(replier{
		err: errors.New("timeout")}))
	s = sessions.Open(wallet)
	require.Equal(t, "I encountered an error while processing your request. "+
		"Please try again.", bot.Handle(ctx, s, "what is gas?")[0].Content)
}

func TestSessions(t *testing.T) {
	_, sessions := newBot(&payments{}, nil)

	s := sessions.Open(" 0xE7DC9FE68DA458B54F648146A817126053EEEF66 ")
	require.Equal(t, "session-1", s.ID)
	require.Equal(t, wallet, s.Address)

	got, ok := sessions.Get(s.ID)
	require.True(t, ok)
	require.Equal(t, s, got)

	_, ok = sessions.Get("missing")
	require.False(t, ok)

	require.Zero(t, sessions.Prune(time.Hour))
	require.Equal(t, 1, sessions.Prune(-time.Second))
	require.Zero(t, sessions.Len())
}
