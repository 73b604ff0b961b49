// Package llm talks to an OpenAI-compatible chat completions endpoint.
package llm

import (
	"context"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/pkg/errors"

	"github.com/dzeckelev/quickpay/config"
	"github.com/dzeckelev/quickpay/errs"
)

const service = "language model"

// ErrDisabled is returned by a client built without an API key.
var ErrDisabled = errors.New("language model is not configured")

// Client is a chat completions client. The zero timeout means no limit.
type Client struct {
	client  openai.Client
	model   string
	timeout time.Duration
	enabled bool
}

// New creates a client for cfg. An empty API key yields a client whose
// calls fail with ErrDisabled.
func New(cfg config.LLM) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(1),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		client:  openai.NewClient(opts...),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		enabled: cfg.APIKey != "",
	}
}

// Enabled reports whether the client has credentials.
func (c *Client) Enabled() bool {
	return c != nil && c.enabled
}

// CompleteJSON asks the model for a JSON answer and returns the raw text.
// The caller extracts and validates the object.
func (c *Client) CompleteJSON(ctx context.Context, system,
	user string) (string, error) {
	return c.complete(ctx, system, user, 0.1, 256)
}

// Reply asks the model for a short free-form answer.
func (c *Client) Reply(ctx context.Context, system,
	user string) (string, error) {
	return c.complete(ctx, system, user, 0.5, 500)
}

func (c *Client) complete(ctx context.Context, system, user string,
	temperature float64, maxTokens int64) (string, error) {
	if !c.Enabled() {
		return "", errs.Remote(service, ErrDisabled)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	res, err := c.client.Chat.Completions.New(ctx,
		openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(system),
				openai.UserMessage(user),
			},
			Model:       openai.ChatModel(c.model),
			Temperature: openai.Float(temperature),
			MaxTokens:   openai.Int(maxTokens),
		})
	if err != nil {
		return "", errs.Remote(service, err)
	}

	if len(res.Choices) == 0 {
		return "", errs.Remote(service, errors.New("empty completion"))
	}

	content := strings.TrimSpace(res.Choices[0].Message.Content)
	if content == "" {
		return "", errs.Remote(service, errors.New("empty completion"))
	}

	return content, nil
}
