package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shekelsync/shekelsync/internal/model"
)

const (
	numFields         = 6
	colID             = 0
	colName           = 1
	colType           = 2
	colBalance        = 3
	colClearedBalance = 4
	colClosed         = 5
)

var header = []string{"account_id", "account_name", "account_type", "balance", "cleared_balance", "closed"}

// ReadAccounts reads ledger-accounts.csv.
func ReadAccounts(r io.Reader) ([]model.LedgerAccount, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.LedgerAccount
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes ledger-accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.LedgerAccount) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts a LedgerAccount to a CSV row. Balances are
// milliunits.
func MarshalAccount(acct model.LedgerAccount) []string {
	row := make([]string, numFields)
	row[colID] = acct.ID
	row[colName] = acct.Name
	row[colType] = string(acct.Type)
	row[colBalance] = strconv.FormatInt(int64(acct.Balance), 10)
	row[colClearedBalance] = strconv.FormatInt(int64(acct.ClearedBalance), 10)
	row[colClosed] = strconv.FormatBool(acct.Closed)
	return row
}

// UnmarshalAccount converts a CSV row to a LedgerAccount.
func UnmarshalAccount(record []string) (model.LedgerAccount, error) {
	if len(record) != numFields {
		return model.LedgerAccount{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	if record[colID] == "" {
		return model.LedgerAccount{}, fmt.Errorf("empty account_id")
	}

	balance, err := strconv.ParseInt(record[colBalance], 10, 64)
	if err != nil {
		return model.LedgerAccount{}, fmt.Errorf("parsing balance %q: %w", record[colBalance], err)
	}

	cleared, err := strconv.ParseInt(record[colClearedBalance], 10, 64)
	if err != nil {
		return model.LedgerAccount{}, fmt.Errorf("parsing cleared_balance %q: %w", record[colClearedBalance], err)
	}

	var closed bool
	if record[colClosed] != "" {
		closed, err = strconv.ParseBool(record[colClosed])
		if err != nil {
			return model.LedgerAccount{}, fmt.Errorf("parsing closed %q: %w", record[colClosed], err)
		}
	}

	return model.LedgerAccount{
		ID:             record[colID],
		Name:           record[colName],
		Type:           model.AccountType(record[colType]),
		Balance:        model.Milliunits(balance),
		ClearedBalance: model.Milliunits(cleared),
		Closed:         closed,
	}, nil
}
