package chat

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

const assistantInstruction = `You are an AI assistant for a Web3 payment app called QuickPay.
Your primary function is to help users send cryptocurrency payments using natural language.

If the user asks about sending money or making a payment, extract the relevant information.

If the user's message is not related to payments, respond politely and helpfully about Web3 topics.

If the user asks about topics unrelated to Web3, cryptocurrency, or finance, politely explain that you're focused on helping with Web3 payments and related topics.

Important guidelines:
1. Be concise and helpful in your responses
2. If you're unsure about a request, suggest using the /help command
3. For payment-related questions, provide clear instructions
4. If the user's request is completely unrelated to Web3, cryptocurrency, or finance, respond with: "I'm designed to help with Web3 payments and related topics. For assistance with this topic, please try a general-purpose AI assistant."
5. Always maintain a friendly, professional tone`

const (
	offTopicReply = "I'm designed to help with Web3 payments and related topics. " +
		"For assistance with this topic, please try a general-purpose AI " +
		"assistant. Type /help to see what I can help you with."
	assistantFailure = "I encountered an error while processing your " +
		"request. Please try again."
)

var web3Keywords = []string{
	"crypto", "blockchain", "bitcoin", "ethereum", "web3", "token", "wallet",
	"nft", "defi", "transaction", "send", "payment", "eth", "btc", "coin",
	"address", "balance", "transfer", "smart contract", "gas", "mining",
	"block", "ledger", "metamask", "exchange", "trade", "invest", "finance",
	"money", "currency", "quickpay", "username", "register", "monad",
}

var refusals = []string{
	"I'm designed to help with Web3",
	"I'm focused on helping with Web3",
	"I can only assist with Web3",
}

var paymentLike = regexp.MustCompile(`(?:send|pay) [\d.]+ (?:eth|btc|mon|dai|usdc)`)

// Replier produces free-form model replies.
type Replier interface {
	Enabled() bool
	Reply(ctx context.Context, system, user string) (string, error)
}

// Assistant answers messages that are not commands, staying on Web3 topics.
type Assistant struct {
	replier Replier
}

// NewAssistant creates an assistant.
func NewAssistant(replier Replier) *Assistant {
	return &Assistant{replier: replier}
}

// Enabled reports whether a model is configured.
func (a *Assistant) Enabled() bool {
	return a != nil && a.replier != nil && a.replier.Enabled()
}

// Answer replies to message. Off-topic messages get a refusal unless the
// model already gave one.
func (a *Assistant) Answer(ctx context.Context, message string,
	walletConnected bool) string {
	wallet := "not connected"
	if walletConnected {
		wallet = "connected"
	}

	reply, err := a.replier.Reply(ctx, assistantInstruction,
		fmt.Sprintf("My wallet is %s. Here's my message: %s", wallet, message))
	if err != nil {
		return assistantFailure
	}

	if !isWeb3Related(message) && !refused(reply) {
		return offTopicReply
	}
	return reply
}

func refused(reply string) bool {
	for _, r := range refusals {
		if strings.Contains(reply, r) {
			return true
		}
	}
	return false
}

func isWeb3Related(message string) bool {
	lower := strings.ToLower(message)

	for _, k := range web3Keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}

	return paymentLike.MatchString(lower) ||
		strings.Contains(lower, "@") ||
		strings.HasPrefix(lower, "/") ||
		strings.Contains(lower, "0x")
}
