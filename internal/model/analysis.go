package model

import "github.com/shopspring/decimal"

// VendorClass separates bank statements from card statements. Card statements
// report charges owed, which the ledger keeps as a negative balance.
type VendorClass string

const (
	VendorClassBank       VendorClass = "bank"
	VendorClassCreditCard VendorClass = "credit_card"
)

// VendorInfo is the static description of a registered vendor.
type VendorInfo struct {
	Kind        string      `json:"kind"`
	Name        string      `json:"name"`
	Class       VendorClass `json:"class"`
	Confidence  float64     `json:"confidence"`
	Identifiers []string    `json:"identifierList"` // source labels the vendor is recognized by
}

// FileAnalysis is the per-file result of the normalization pipeline.
// Either Error is set and Vendor is nil, or Error is empty.
type FileAnalysis struct {
	FileName           string                     `json:"fileName"`
	Vendor             *VendorInfo                `json:"vendorInfo"`
	Identifier         *string                    `json:"identifier"`
	Transactions       []Transaction              `json:"transactions"`
	FinalBalance       *decimal.Decimal           `json:"finalBalance"`
	BalanceBreakdown   map[string]decimal.Decimal `json:"balanceBreakdown,omitempty"`
	SuggestedAccountID string                     `json:"suggestedAccountId,omitempty"`
	Error              string                     `json:"error,omitempty"`
}

// Failed reports whether the analysis ended in an error.
func (a FileAnalysis) Failed() bool {
	return a.Error != ""
}

// Recognized reports whether a vendor matched the file.
func (a FileAnalysis) Recognized() bool {
	return a.Vendor != nil
}

// ReconciliationRecord compares a statement balance with a ledger account.
// Amounts are milliunits. Difference is nil only when FileBalance is nil.
type ReconciliationRecord struct {
	AccountName    string      `json:"accountName"`
	CurrentBalance Milliunits  `json:"currentBalance"`
	ClearedBalance Milliunits  `json:"clearedBalance"`
	FileBalance    *Milliunits `json:"fileBalance"`
	Difference     *Milliunits `json:"difference"`
	Direction      string      `json:"direction,omitempty"`
	FileName       string      `json:"fileName"`
}
