package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

type PrintSize string // print size

const (
	SizeA5 PrintSize = "A5"
	SizeA4 PrintSize = "A4"
	SizeA3 PrintSize = "A3"
)

var (
	// DefaultBasePrice applies to any size missing from the table
	DefaultBasePrice = decimal.RequireFromString("30.00")
	// FramingSurcharge is added on top of the base price for framed prints
	FramingSurcharge = decimal.RequireFromString("15.00")

	basePrices = map[PrintSize]decimal.Decimal{
		SizeA5: decimal.RequireFromString("25.00"),
		SizeA4: decimal.RequireFromString("30.00"),
		SizeA3: decimal.RequireFromString("35.00"),
	}
)

// BasePrice returns the table price for a size, falling back to DefaultBasePrice
func BasePrice(size PrintSize) decimal.Decimal {
	if price, ok := basePrices[size]; ok {
		return price
	}
	return DefaultBasePrice
}

// FinalPrice is the sale price of a print. It is read once when a line is
// added to a cart or a design is created, never recomputed afterwards.
func FinalPrice(size PrintSize, framed bool) decimal.Decimal {
	price := BasePrice(size)
	if framed {
		price = price.Add(FramingSurcharge)
	}
	return price.Round(2)
}

// ParsePrintSize accepts "a4", " A4 " and similar spellings
func ParsePrintSize(s string) (PrintSize, bool) {
	size := PrintSize(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := basePrices[size]
	return size, ok
}
