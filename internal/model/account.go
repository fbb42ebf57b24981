package model

// AccountType classifies ledger accounts.
type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCreditCard AccountType = "creditCard"
	AccountTypeCash       AccountType = "cash"
	AccountTypeOther      AccountType = "otherAsset"
)

// LedgerAccount is an account in the external budgeting ledger.
// Balances are in milliunits, as the ledger reports them.
type LedgerAccount struct {
	ID             string
	Name           string
	Type           AccountType
	Balance        Milliunits
	ClearedBalance Milliunits
	Closed         bool
}
