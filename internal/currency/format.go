// Package currency renders monetary values for invoices and reports. The
// settlement core never rounds; this formatter is the single place where
// two-decimal rounding and thousands separators are applied.
package currency

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders amounts with locale-aware thousands separators.
type Formatter struct {
	printer *message.Printer
	symbol  string
}

// NewFormatter constructs a Formatter for the given BCP 47 tag and currency
// symbol. An unparsable tag falls back to English formatting.
func NewFormatter(tag, symbol string) *Formatter {
	lang, err := language.Parse(tag)
	if err != nil {
		lang = language.English
	}
	return &Formatter{printer: message.NewPrinter(lang), symbol: symbol}
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Amount renders a bare amount: "12,345.68".
func (f *Formatter) Amount(v float64) string {
	return f.printer.Sprintf("%.2f", Round2(v))
}

// WithSymbol renders an amount with the configured currency symbol. Negative
// settlements keep their sign ahead of the symbol.
func (f *Formatter) WithSymbol(v float64) string {
	r := Round2(v)
	if r < 0 {
		return f.printer.Sprintf("-%s%.2f", f.symbol, -r)
	}
	return f.printer.Sprintf("%s%.2f", f.symbol, r)
}
