package model

import "github.com/shopspring/decimal"

// Milliunits is a fixed-point currency amount: 1000 milliunits per major unit.
// Negative values are outflows (charges, debits), positive values are inflows.
type Milliunits int64

// Transaction is the canonical record every vendor analyzer converges to.
type Transaction struct {
	Date      string     `json:"date"` // YYYY-MM-DD when the source date was well formed
	Amount    Milliunits `json:"amount"`
	PayeeName string     `json:"payee_name"`
	Memo      string     `json:"memo"`
}

// IsExpense reports whether the transaction is an outflow.
func (t Transaction) IsExpense() bool {
	return t.Amount < 0
}

// MajorUnits converts milliunits back to a decimal amount in major units.
func (m Milliunits) MajorUnits() decimal.Decimal {
	return decimal.New(int64(m), -3)
}
