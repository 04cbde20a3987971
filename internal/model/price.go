package model

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	million    = decimal.NewFromInt(1_000_000)
	ten        = decimal.NewFromInt(10)
	priceSplit = regexp.MustCompile(`\s*-\s*`)
	priceJunk  = regexp.MustCompile(`[kK,.\s]`)
)

// ParsePriceLines splits a free-form price text into individual price tokens.
// Формат оператора: несколько цен на строке через " - ", например "52m - 54m - 50m".
func ParsePriceLines(text string) []string {
	var prices []string

	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, p := range priceSplit.Split(line, -1) {
			if p = strings.TrimSpace(p); p != "" {
				prices = append(prices, p)
			}
		}
	}

	return prices
}

// ParsePrice converts one price token to an exact decimal amount.
// Shorthand: a trailing "m" means millions, digits after it are tenths of a
// million, so "52m" is 52 000 000 and "31m5" is 31 500 000. Without the
// marker the token is a plain number with thousands separators allowed.
// Non-positive results fail with ErrBadPrice - the caller never sees a
// guessed amount.
func ParsePrice(token string) (decimal.Decimal, error) {
	trimmed := strings.ToLower(strings.TrimSpace(token))
	if trimmed == "" {
		return decimal.Zero, fmt.Errorf("%w: empty price", ErrBadPrice)
	}

	if strings.Contains(trimmed, "m") {
		parts := strings.SplitN(trimmed, "m", 2)

		millions := decimal.Zero
		if parts[0] != "" {
			var err error
			if millions, err = decimal.NewFromString(parts[0]); err != nil {
				return decimal.Zero, fmt.Errorf("%w: %q", ErrBadPrice, token)
			}
		}

		// хвост после "m" - десятые доли миллиона: "31m5" = 31.5 млн
		tail := decimal.Zero
		if parts[1] != "" {
			frac, err := decimal.NewFromString(parts[1])
			if err != nil {
				return decimal.Zero, fmt.Errorf("%w: %q", ErrBadPrice, token)
			}
			tail = frac.Div(ten)
		}

		res := millions.Add(tail).Mul(million)
		if !res.IsPositive() {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrBadPrice, token)
		}
		return res, nil
	}

	cleaned := priceJunk.ReplaceAllString(trimmed, "")
	res, err := decimal.NewFromString(cleaned)
	if err != nil || !res.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrBadPrice, token)
	}

	return res, nil
}

// ParsePrices parses a whole price text at once, failing on the first bad
// token with its 1-based position.
func ParsePrices(text string) ([]decimal.Decimal, error) {
	tokens := ParsePriceLines(text)

	prices := make([]decimal.Decimal, 0, len(tokens))
	for i, tok := range tokens {
		p, err := ParsePrice(tok)
		if err != nil {
			return nil, fmt.Errorf("price #%d: %w", i+1, err)
		}
		prices = append(prices, p)
	}

	return prices, nil
}
