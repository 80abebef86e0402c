package parse

import (
	"regexp"
	"strings"
)

// currencyPattern recognizes a fixed vocabulary of ISO codes plus the common
// symbol variants. Codes require word boundaries; symbols match anywhere.
var currencyPattern = regexp.MustCompile(`(?i)\b(USD|EUR|GBP|NGN|KES|ZAR|CAD|AUD|INR|JPY|CNY|CHF|SEK|NOK|DKK|RUB|BRL)\b|(USD\$|US\$|\$|€|£)`)

// ExtractCurrency returns the ISO currency code for the first currency token
// in text, or "" when none is found. Symbol variants are mapped to their ISO
// code; the caller applies the USD default at persistence time, not here.
func ExtractCurrency(text string) string {
	m := currencyPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}

	if m[1] != "" {
		return strings.ToUpper(m[1])
	}

	switch strings.ToUpper(m[2]) {
	case "$", "US$", "USD$":
		return "USD"
	case "€":
		return "EUR"
	case "£":
		return "GBP"
	}
	return ""
}
