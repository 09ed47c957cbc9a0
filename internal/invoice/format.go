package invoice

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// currencySymbols maps supported currency codes to display symbols.
var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"INR": "₹",
	"AUD": "A$",
	"CAD": "C$",
	"JPY": "¥",
	"CNY": "¥",
	"AED": "د.إ",
}

// IsValidCurrency reports whether the code is supported.
func IsValidCurrency(code string) bool {
	_, ok := currencySymbols[code]
	return ok
}

// CurrencySymbol returns the display symbol for a currency code, falling back
// to the code itself for anything unknown.
func CurrencySymbol(code string) string {
	if sym, ok := currencySymbols[code]; ok {
		return sym
	}
	return code
}

var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders a monetary amount with its currency symbol, exactly
// two decimal digits and locale-neutral thousands grouping.
func FormatAmount(code string, amount float64) string {
	return amountPrinter.Sprintf("%s%v", CurrencySymbol(code),
		number.Decimal(amount, number.Scale(2)))
}
