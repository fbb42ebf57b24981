// Package importid builds the idempotency keys sent with ledger transactions.
// The ledger ignores a transaction whose key it has already seen for the
// account, so re-importing a statement never duplicates entries.
package importid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shekelsync/shekelsync/internal/model"
)

// Prefix marks keys generated by this tool.
const Prefix = "SHEKEL"

// Format returns an import ID like "SHEKEL:-100500:2025-04-15:1". occurrence
// is 1 for the first transaction with this amount and date in a batch.
func Format(amount model.Milliunits, date string, occurrence int) string {
	return fmt.Sprintf("%s:%d:%s:%d", Prefix, int64(amount), date, occurrence)
}

// Assign returns one import ID per transaction, numbering repeats of the same
// amount and date in input order.
func Assign(txns []model.Transaction) []string {
	seen := make(map[string]int, len(txns))
	ids := make([]string, len(txns))
	for i, t := range txns {
		key := fmt.Sprintf("%d:%s", int64(t.Amount), t.Date)
		seen[key]++
		ids[i] = Format(t.Amount, t.Date, seen[key])
	}
	return ids
}

// Parse splits an import ID into amount, date and occurrence.
func Parse(id string) (amount model.Milliunits, date string, occurrence int, err error) {
	parts := strings.Split(id, ":")
	if len(parts) != 4 || parts[0] != Prefix {
		return 0, "", 0, fmt.Errorf("invalid import ID format: %q", id)
	}

	n, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, "", 0, fmt.Errorf("invalid amount in import ID %q: %w", id, err)
	}

	occurrence, err = strconv.Atoi(parts[3])
	if err != nil {
		return 0, "", 0, fmt.Errorf("invalid occurrence in import ID %q: %w", id, err)
	}
	if occurrence < 1 {
		return 0, "", 0, fmt.Errorf("invalid occurrence in import ID %q", id)
	}

	return model.Milliunits(n), parts[2], occurrence, nil
}
