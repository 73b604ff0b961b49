package command

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Completer returns the raw text answer of a language model.
type Completer interface {
	CompleteJSON(ctx context.Context, system, user string) (string, error)
}

const instruction = `Parse this transaction command and return ONLY a JSON object with the following structure.
Do not include any other text, explanations, or markdown formatting.

For sending transactions:
{
  "action": "send",
  "amount": number,
  "currency": "ETH" or "MON" or other supported currencies,
  "recipient": "username_without_@",
  "purpose": "reason (including hashtags like #dinner, #lunch, etc.) or empty string"
}

For balance inquiries:
{
  "action": "balance"
}

If not a valid command:
{
  "action": "invalid",
  "error": "error message"
}

Examples:
- "send 0.02 mon to @alice for #dinner" -> amount: 0.02, currency: "MON", recipient: "alice", purpose: "#dinner"
- "send 1 eth to @bob for coffee" -> amount: 1, currency: "ETH", recipient: "bob", purpose: "coffee"
- "pay @charlie 0.5 mon for #groceries" -> amount: 0.5, currency: "MON", recipient: "charlie", purpose: "#groceries"`

// Remote parses with a language model.
type Remote struct {
	completer Completer
	logger    *slog.Logger
}

// NewRemote creates a remote parser.
func NewRemote(completer Completer, logger *slog.Logger) *Remote {
	return &Remote{completer: completer, logger: logger}
}

// Parse implements Parser. Any failure of the model, the JSON or the
// schema is reported as no answer.
func (r *Remote) Parse(ctx context.Context, text string) (Intent, bool) {
	answer, err := r.completer.CompleteJSON(ctx, instruction,
		"User input: "+text+"\n\nJSON only:")
	if err != nil {
		r.logger.Warn("remote parse failed", "error", err)
		return Intent{}, false
	}

	intent, err := decodeIntent(answer)
	if err != nil {
		r.logger.Warn("remote parse rejected", "error", err,
			"answer", answer)
		return Intent{}, false
	}

	return intent, true
}

// remoteIntent accepts the loose shapes models produce.
type remoteIntent struct {
	Action    string      `json:"action"`
	Amount    interface{} `json:"amount"`
	Currency  string      `json:"currency"`
	Recipient string      `json:"recipient"`
	Purpose   string      `json:"purpose"`
	Error     string      `json:"error"`
}

func decodeIntent(answer string) (Intent, error) {
	object, ok := ExtractObject(answer)
	if !ok {
		return Intent{}, errors.New("no JSON object in answer")
	}

	var raw remoteIntent
	if err := json.Unmarshal([]byte(object), &raw); err != nil {
		return Intent{}, errors.Wrap(err, "decode answer")
	}

	switch strings.ToLower(strings.TrimSpace(raw.Action)) {
	case ActionBalance:
		return Balance(), nil
	case ActionInvalid:
		if raw.Error == "" {
			return Invalid(ErrUnparsed), nil
		}
		return Invalid(raw.Error), nil
	case ActionSend:
		amount, err := toAmount(raw.Amount)
		if err != nil {
			return Intent{}, err
		}

		recipient := strings.TrimPrefix(strings.TrimSpace(raw.Recipient), "@")
		if recipient == "" {
			return Intent{}, errors.New("send without recipient")
		}

		// An empty currency is kept: the dialogue asks for it.
		currency := ""
		if strings.TrimSpace(raw.Currency) != "" {
			currency = NormalizeCurrency(raw.Currency)
		}

		return Send(amount, currency, recipient,
			strings.TrimSpace(raw.Purpose)), nil
	default:
		return Intent{}, errors.Errorf("unknown action %q", raw.Action)
	}
}

func toAmount(v interface{}) (float64, error) {
	var amount float64
	switch value := v.(type) {
	case float64:
		amount = value
	case string:
		var err error
		amount, err = strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0, errors.Wrap(err, "parse amount")
		}
	default:
		return 0, errors.New("send without amount")
	}

	if !validAmount(amount) {
		return 0, errors.Errorf("invalid amount %v", amount)
	}
	return amount, nil
}

// ExtractObject strips markdown fences and returns the first balanced JSON
// object in text.
func ExtractObject(text string) (string, bool) {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}

	return "", false
}
