package command

import "strings"

var currencyAliases = map[string]string{
	"eth":   "ETH",
	"ether": "ETH",
	"mon":   "MON",
	"usdc":  "USDC",
	"dai":   "DAI",
	"btc":   "BTC",
}

// NormalizeCurrency maps a currency token to its canonical symbol. Unknown
// tokens are upper-cased.
func NormalizeCurrency(token string) string {
	token = strings.TrimSpace(token)
	if symbol, ok := currencyAliases[strings.ToLower(token)]; ok {
		return symbol
	}
	return strings.ToUpper(token)
}

// Currencies offered when a send lacks one, in matching order.
var selectable = []string{"eth", "mon", "usdc", "dai"}

// PickCurrency infers the currency mentioned in a reply by substring,
// defaulting to ETH.
func PickCurrency(reply string) string {
	reply = strings.ToLower(reply)
	for _, token := range selectable {
		if strings.Contains(reply, token) {
			return NormalizeCurrency(token)
		}
	}
	return "ETH"
}
