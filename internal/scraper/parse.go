package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Rendered numbers carry currency symbols, percent signs, thousands
// separators and an explicit plus on gains: "$1,234.56", "+12.3%".
var numberJunk = regexp.MustCompile(`[$%,+]`)

// Number parses a rendered numeric cell. A bare "-" means the value is
// absent and yields null, not zero. Unparseable text also yields null.
func Number(text string) decimal.NullDecimal {
	cleaned := strings.TrimSpace(numberJunk.ReplaceAllString(text, ""))
	if cleaned == "" || cleaned == "-" {
		return decimal.NullDecimal{}
	}
	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: value, Valid: true}
}

// Integer parses a rendered integer cell, tolerating thousands separators.
func Integer(text string) (int, bool) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(text, ",", ""))
	if cleaned == "" || cleaned == "-" {
		return 0, false
	}
	value, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, false
	}
	return value, true
}

// RequiredNumber parses a cell whose value the schema requires. The source
// site historically defaulted unparseable required cells to zero; strict
// mode turns that into an error so the row is skipped instead of
// fabricating data.
func RequiredNumber(text string, strict bool) (decimal.Decimal, error) {
	value := Number(text)
	if value.Valid {
		return value.Decimal, nil
	}
	if strict {
		return decimal.Decimal{}, fmt.Errorf("unparseable required value %q", strings.TrimSpace(text))
	}
	return decimal.Zero, nil
}
