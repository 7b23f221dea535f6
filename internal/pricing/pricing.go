// Package pricing converts USD base prices into the INR amounts customers pay
// and computes cart totals.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/antonminaichev/mediexpress/internal/types/order"
	"github.com/antonminaichev/mediexpress/internal/types/product"
)

const Currency = "INR"

var (
	DefaultUSDToINR       = decimal.RequireFromString("83.5")
	FreeDeliveryThreshold = decimal.NewFromInt(499)
	DeliveryFee           = decimal.NewFromInt(49)
)

// USDToINR returns zero for a non-positive rate.
func USDToINR(usd, rate decimal.Decimal) decimal.Decimal {
	if !rate.IsPositive() {
		return decimal.Zero
	}
	return usd.Mul(rate)
}

// PrimaryINR is the INR price shown first. A non-negative DisplayPriceINR wins
// over the converted base price.
func PrimaryINR(p product.Product, rate decimal.Decimal) decimal.Decimal {
	if p.DisplayPriceINR != nil && !p.DisplayPriceINR.IsNegative() {
		return *p.DisplayPriceINR
	}
	return USDToINR(p.Price, rate)
}

// SecondaryUSD is the USD price shown next to the INR one. With an INR override
// it is derived back from the override so both figures agree.
func SecondaryUSD(p product.Product, rate decimal.Decimal) decimal.Decimal {
	if p.DisplayPriceINR != nil && !p.DisplayPriceINR.IsNegative() && rate.IsPositive() {
		return p.DisplayPriceINR.Div(rate)
	}
	return p.Price
}

type LinePrices struct {
	EachINR decimal.Decimal `json:"eachInr"`
	EachUSD decimal.Decimal `json:"eachUsd"`
	LineINR decimal.Decimal `json:"lineInr"`
	LineUSD decimal.Decimal `json:"lineUsd"`
}

// Line prices qty units of p. A non-positive quantity prices as zero.
func Line(p product.Product, qty int, rate decimal.Decimal) LinePrices {
	q := decimal.Zero
	if qty > 0 {
		q = decimal.NewFromInt(int64(qty))
	}
	eachINR := PrimaryINR(p, rate)
	eachUSD := SecondaryUSD(p, rate)
	return LinePrices{
		EachINR: eachINR,
		EachUSD: eachUSD,
		LineINR: eachINR.Mul(q),
		LineUSD: eachUSD.Mul(q),
	}
}

// Totals prices a cart in INR. Delivery is free above the threshold and not
// charged at all for an empty cart.
func Totals(items []order.Item, rate decimal.Decimal) order.Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(Line(it.Product, it.Qty, rate).LineINR)
	}
	subtotal = subtotal.Round(2)

	delivery := decimal.Zero
	if len(items) > 0 && !subtotal.GreaterThan(FreeDeliveryThreshold) {
		delivery = DeliveryFee
	}
	return order.Totals{
		Subtotal: subtotal,
		Delivery: delivery,
		Total:    subtotal.Add(delivery),
		Currency: Currency,
	}
}
