package document

import (
	"fmt"
	"strings"

	"github.com/divan/num2words"
	"github.com/gtemgoua/property-manager-app/internal/domain"
	"github.com/shopspring/decimal"
)

// narrowNBSP is the fr-FR thousands separator
const narrowNBSP = " "

// FormatAmount renders an amount for receipts and reports.
// XAF is truncated to whole francs, EUR uses French grouping, USD uses US grouping.
func FormatAmount(amount decimal.Decimal, currency domain.Currency) string {
	switch currency {
	case domain.CurrencyXAF:
		return currency.Symbol() + group(amount.Truncate(0), ",", "", 0)
	case domain.CurrencyEUR:
		return currency.Symbol() + group(amount, narrowNBSP, ",", 2)
	default:
		return currency.Symbol() + group(amount, ",", ".", 2)
	}
}

// ExcelNumberFormat returns the spreadsheet number format for a currency
func ExcelNumberFormat(currency domain.Currency) string {
	switch currency {
	case domain.CurrencyUSD:
		return `"$"#,##0.00`
	case domain.CurrencyEUR:
		return `"€"#,##0.00`
	case domain.CurrencyXAF:
		return `"FCFA "#,##0`
	}
	return "#,##0.00"
}

func group(amount decimal.Decimal, thousands, decimalSep string, places int32) string {
	s := amount.StringFixed(places)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i+1:]
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(thousands)
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteString(decimalSep)
		b.WriteString(frac)
	}
	return b.String()
}

var currencyWords = map[domain.Currency][2]string{
	domain.CurrencyUSD: {"dollars", "cents"},
	domain.CurrencyEUR: {"euros", "cents"},
	domain.CurrencyXAF: {"CFA francs", ""},
}

// AmountInWords spells out an amount for the receipt, e.g.
// "one thousand eight hundred dollars and 50 cents"
func AmountInWords(amount decimal.Decimal, currency domain.Currency) string {
	words, ok := currencyWords[currency]
	if !ok {
		words = [2]string{currency.Code(), ""}
	}

	whole := amount.Truncate(0)
	text := fmt.Sprintf("%s %s", num2words.Convert(int(whole.IntPart())), words[0])
	if currency.ZeroDecimal() || words[1] == "" {
		return text
	}
	cents := amount.Sub(whole).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if cents == 0 {
		return text
	}
	return fmt.Sprintf("%s and %d %s", text, cents, words[1])
}
