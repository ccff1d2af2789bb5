package exporter

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	billion = 1_000_000_000
	million = 1_000_000
)

// zeroCurrency is shown for missing amounts
const zeroCurrency = "R$ 0,00"

func printer() *message.Printer {
	return message.NewPrinter(language.BrazilianPortuguese)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// FormatCurrency renders an amount in Brazilian format: "R$ 1.234.567,89"
func FormatCurrency(value float64) string {
	if !finite(value) {
		return zeroCurrency
	}
	return printer().Sprintf("R$ %.2f", value)
}

// FormatCurrencyAbbreviated shortens amounts of a million or more to
// "R$ 2.30 Mi" and "R$ 1.50 Bi"; smaller amounts use FormatCurrency
func FormatCurrencyAbbreviated(value float64) string {
	switch {
	case !finite(value):
		return zeroCurrency
	case value >= billion:
		return fmt.Sprintf("R$ %.2f Bi", value/billion)
	case value >= million:
		return fmt.Sprintf("R$ %.2f Mi", value/million)
	default:
		return FormatCurrency(value)
	}
}

// FormatNumber groups thousands with '.' and uses ',' for the given number
// of decimals. With no decimals the value is truncated.
func FormatNumber(value float64, decimals int) string {
	if !finite(value) {
		return "0"
	}
	if decimals <= 0 {
		return printer().Sprintf("%d", int64(value))
	}
	return printer().Sprint(number.Decimal(value, number.Scale(decimals)))
}

// FormatTaxIDDisplay renders a 14-digit CNPJ as 12.345.678/9012-34.
// Anything else is returned unchanged.
func FormatTaxIDDisplay(id string) string {
	if len(id) != 14 {
		return id
	}
	return id[:2] + "." + id[2:5] + "." + id[5:8] + "/" + id[8:12] + "-" + id[12:14]
}
