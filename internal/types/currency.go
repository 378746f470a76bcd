package types

import "strings"

// CURRENCY_CODES_SYMBOLS is a map of 3 digit ISO currency codes to their symbols
var CURRENCY_CODES_SYMBOLS = map[string]string{
	"myr": "RM",
	"sgd": "S$",
	"usd": "$",
	"eur": "€",
	"gbp": "£",
	"aud": "AU$",
	"idr": "Rp",
	"thb": "฿",
	"cny": "¥",
	"inr": "₹",
}

// GetCurrencySymbol returns the symbol for a given currency code
// if the code is not found, it returns the code itself
func GetCurrencySymbol(code string) string {
	if symbol, ok := CURRENCY_CODES_SYMBOLS[strings.ToLower(code)]; ok {
		return symbol
	}
	return code
}

// NormalizeCurrencyCode lowercases a currency code for table lookups
func NormalizeCurrencyCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
