// Package reconcile compares a statement's closing balance with the cleared
// balance the ledger holds for the mapped account.
package reconcile

import (
	"github.com/shekelsync/shekelsync/internal/cells"
	"github.com/shekelsync/shekelsync/internal/model"
)

// Direction notes for a non-zero difference.
const (
	DirectionMissing = "missing transactions in ledger"
	DirectionExtra   = "extra transactions in ledger"
)

// Result is the outcome of one comparison. Difference is nil when the
// statement carried no balance.
type Result struct {
	Difference *model.Milliunits `json:"difference"`
	Direction  string            `json:"direction,omitempty"`
}

// Reconcile returns fileBalance - cleared and a hint about which side is
// short. It has no side effects.
func Reconcile(fileBalance *model.Milliunits, cleared model.Milliunits) Result {
	if fileBalance == nil {
		return Result{}
	}
	diff := *fileBalance - cleared
	r := Result{Difference: &diff}
	switch {
	case diff < 0:
		r.Direction = DirectionMissing
	case diff > 0:
		r.Direction = DirectionExtra
	}
	return r
}

// FileBalance scales an analysis' closing balance to milliunits in the
// ledger's sign convention. Card statements state the amount owed, which the
// ledger carries as a negative balance.
func FileBalance(a model.FileAnalysis) *model.Milliunits {
	if a.FinalBalance == nil {
		return nil
	}
	m := cells.ToMilliunits(*a.FinalBalance, cells.HalfAwayFromZero)
	if a.Vendor != nil && a.Vendor.Class == model.VendorClassCreditCard {
		m = -m
	}
	return &m
}

// BuildRecord reconciles one analyzed statement against a ledger account.
func BuildRecord(account model.LedgerAccount, a model.FileAnalysis) model.ReconciliationRecord {
	fb := FileBalance(a)
	res := Reconcile(fb, account.ClearedBalance)
	return model.ReconciliationRecord{
		AccountName:    account.Name,
		CurrentBalance: account.Balance,
		ClearedBalance: account.ClearedBalance,
		FileBalance:    fb,
		Difference:     res.Difference,
		Direction:      res.Direction,
		FileName:       a.FileName,
	}
}
