package ledger

import (
	"fmt"

	"github.com/shekelsync/shekelsync/internal/importid"
	"github.com/shekelsync/shekelsync/internal/model"
)

// ClearedStatus is the ledger's reconciliation state for a transaction.
type ClearedStatus string

const (
	Cleared    ClearedStatus = "cleared"
	Uncleared  ClearedStatus = "uncleared"
	Reconciled ClearedStatus = "reconciled"
)

// ParseClearedStatus validates a configured cleared status.
func ParseClearedStatus(s string) (ClearedStatus, error) {
	switch ClearedStatus(s) {
	case Cleared, Uncleared, Reconciled:
		return ClearedStatus(s), nil
	case "":
		return Cleared, nil
	default:
		return "", fmt.Errorf("invalid cleared status %q (want cleared, uncleared or reconciled)", s)
	}
}

// Field limits enforced by the ledger API.
const (
	maxPayeeLen = 50
	maxMemoLen  = 200
)

// Payload is one transaction as the ledger API accepts it.
type Payload struct {
	AccountID string           `json:"account_id"`
	Date      string           `json:"date"`
	Amount    model.Milliunits `json:"amount"`
	PayeeName string           `json:"payee_name,omitempty"`
	Memo      string           `json:"memo,omitempty"`
	Cleared   ClearedStatus    `json:"cleared"`
	Approved  bool             `json:"approved"`
	ImportID  string           `json:"import_id,omitempty"`
}

// BuildPayloads turns canonical transactions into ledger payloads for one
// account, attaching deterministic import IDs.
func BuildPayloads(accountID string, txns []model.Transaction, cleared ClearedStatus, approved bool) []Payload {
	ids := importid.Assign(txns)
	out := make([]Payload, len(txns))
	for i, t := range txns {
		out[i] = Payload{
			AccountID: accountID,
			Date:      t.Date,
			Amount:    t.Amount,
			PayeeName: truncate(t.PayeeName, maxPayeeLen),
			Memo:      truncate(t.Memo, maxMemoLen),
			Cleared:   cleared,
			Approved:  approved,
			ImportID:  ids[i],
		}
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
