package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FinancialInputs are the six priced fields of an order. Only these trigger derivation.
type FinancialInputs struct {
	UnitPrice   float64 `json:"unitPrice"`
	Quantity    float64 `json:"quantity"`
	Discount    float64 `json:"discount"`
	ShippingFee float64 `json:"shippingFee"`
	Deposit     float64 `json:"deposit"`
	CostPrice   float64 `json:"costPrice"`
}

// Financials are the fields derived from FinancialInputs
type Financials struct {
	TotalAmount float64 `json:"totalAmount"`
	CODAmount   float64 `json:"codAmount"`
	Profit      float64 `json:"profit"`
}

// Sanitized replaces NaN and infinite values with zero
func (in FinancialInputs) Sanitized() FinancialInputs {
	return FinancialInputs{
		UnitPrice:   finiteOrZero(in.UnitPrice),
		Quantity:    finiteOrZero(in.Quantity),
		Discount:    finiteOrZero(in.Discount),
		ShippingFee: finiteOrZero(in.ShippingFee),
		Deposit:     finiteOrZero(in.Deposit),
		CostPrice:   finiteOrZero(in.CostPrice),
	}
}

// Derive computes the order totals:
//
//	totalAmount = unitPrice*quantity - discount + shippingFee
//	codAmount   = totalAmount - deposit
//	profit      = (unitPrice - costPrice)*quantity - discount
//
// It is pure. Non-finite inputs count as zero.
func Derive(in FinancialInputs) Financials {
	in = in.Sanitized()

	unitPrice := decimal.NewFromFloat(in.UnitPrice)
	quantity := decimal.NewFromFloat(in.Quantity)
	discount := decimal.NewFromFloat(in.Discount)
	shippingFee := decimal.NewFromFloat(in.ShippingFee)
	deposit := decimal.NewFromFloat(in.Deposit)
	costPrice := decimal.NewFromFloat(in.CostPrice)

	total := unitPrice.Mul(quantity).Sub(discount).Add(shippingFee)
	cod := total.Sub(deposit)
	profit := unitPrice.Sub(costPrice).Mul(quantity).Sub(discount)

	return Financials{
		TotalAmount: total.InexactFloat64(),
		CODAmount:   cod.InexactFloat64(),
		Profit:      profit.InexactFloat64(),
	}
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Amount is a numeric request field. It accepts a JSON number, a numeric
// string (form inputs post strings), null, or nothing; anything else is 0.
type Amount float64

// UnmarshalJSON implements json.Unmarshaler
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*a = 0
			return nil
		}
		raw = strings.TrimSpace(s)
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*a = 0
		return nil
	}
	*a = Amount(finiteOrZero(v))
	return nil
}
