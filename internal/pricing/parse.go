// File: internal/pricing/parse.go
package pricing

import (
	"strconv"
	"strings"
)

// priceCleaner strips the decoration marketplaces put around a price figure.
var priceCleaner = strings.NewReplacer("$", "", ",", "", "\u00a0", " ")

// ParsePrice extracts a numeric price from raw listing text. Currency symbols
// and thousands separators are stripped; anything that still is not a valid
// decimal ("Free shipping", "$10.00 to $12.00") is skipped by returning false.
// Skipped candidates are not errors and are not counted anywhere.
func ParsePrice(text string) (float64, bool) {
	cleaned := strings.TrimSpace(priceCleaner.Replace(text))
	if cleaned == "" {
		return 0, false
	}
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || price < 0 {
		return 0, false
	}
	return price, true
}

// QuotesFromTexts runs ParsePrice over raw node texts and tags the survivors
// with the source identity.
func QuotesFromTexts(source string, texts []string) []PriceQuote {
	var quotes []PriceQuote
	for _, t := range texts {
		if price, ok := ParsePrice(t); ok {
			quotes = append(quotes, PriceQuote{Source: source, Price: price})
		}
	}
	return quotes
}
