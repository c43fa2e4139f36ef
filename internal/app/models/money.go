package models

import "github.com/shopspring/decimal"

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Money is a monetary amount in the clinic's currency.
type Money = decimal.Decimal

var ZeroMoney = decimal.Zero

func NewMoneyFromInt(amount int64) Money {
	return decimal.NewFromInt(amount)
}
