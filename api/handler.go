package api

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/dzeckelev/quickpay/auth"
	"github.com/dzeckelev/quickpay/chat"
	"github.com/dzeckelev/quickpay/registry"
)

// ErrSessionNotFound is returned for tokens of closed sessions.
var ErrSessionNotFound = errors.New("chat session not found")

// Handler is the chat RPC handler, served under the "chat" namespace.
type Handler struct {
	sessions *chat.Sessions
	bot      *chat.Bot
	tokens   *auth.Tokens
	logger   *slog.Logger
}

// OpenResult is result of Open method.
type OpenResult struct {
	SessionID string         `json:"sessionId"`
	Token     string         `json:"token"`
	Messages  []chat.Message `json:"messages"`
}

// SendResult is result of Send method.
type SendResult struct {
	Messages []chat.Message `json:"messages"`
	State    chat.StateView `json:"state"`
}

// StateResult is result of State method.
type StateResult struct {
	State chat.StateView `json:"state"`
}

// NewHandler creates a new handler.
func NewHandler(sessions *chat.Sessions, bot *chat.Bot, tokens *auth.Tokens,
	logger *slog.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		bot:      bot,
		tokens:   tokens,
		logger:   logger,
	}
}

// Open starts a chat session. address is the connected wallet and may be
// empty.
func (h *Handler) Open(address string) (*OpenResult, error) {
	if address != "" && !registry.IsAddress(address) {
		return nil, errors.New(`invalid "address" argument`)
	}

	s := h.sessions.Open(address)

	token, err := h.tokens.Issue(s.ID, s.Address)
	if err != nil {
		return nil, err
	}

	messages := []chat.Message{{Role: chat.RoleAssistant, Content: chat.Greeting}}
	if s.Address != "" {
		messages = append(messages, chat.Message{
			Role: chat.RoleSystem,
			Content: fmt.Sprintf("Wallet connected: %s...%s",
				s.Address[:6], s.Address[len(s.Address)-4:]),
		})
	}

	h.logger.Info("chat session opened", "session", s.ID,
		"address", s.Address)

	return &OpenResult{
		SessionID: s.ID,
		Token:     token,
		Messages:  messages,
	}, nil
}

// Send handles a chat message.
func (h *Handler) Send(ctx context.Context, token,
	message string) (*SendResult, error) {
	s, err := h.session(token)
	if err != nil {
		return nil, err
	}

	messages := h.bot.Handle(ctx, s, message)

	return &SendResult{
		Messages: messages,
		State:    chat.View(s.State()),
	}, nil
}

// State returns the pending payment of a session.
func (h *Handler) State(token string) (*StateResult, error) {
	s, err := h.session(token)
	if err != nil {
		return nil, err
	}
	return &StateResult{State: chat.View(s.State())}, nil
}

func (h *Handler) session(token string) (*chat.Session, error) {
	claims, err := h.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	s, ok := h.sessions.Get(claims.SessionID())
	if !ok || s.Address != claims.Address {
		return nil, ErrSessionNotFound
	}
	return s, nil
}
