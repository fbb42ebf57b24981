package importer

import (
	"path/filepath"
	"regexp"

	"github.com/shekelsync/shekelsync/internal/cells"
	"github.com/shekelsync/shekelsync/internal/model"
)

// Bank Hapoalim CSV export headers.
const (
	hapoalimDate      = "תאריך"
	hapoalimDesc      = "תיאור הפעולה"
	hapoalimDetails   = "פרטים"
	hapoalimAccount   = "חשבון"
	hapoalimReference = "אסמכתא"
	hapoalimDebit     = "חובה"
	hapoalimCredit    = "זכות"
	hapoalimBalance   = "יתרה לאחר פעולה"
)

// hapoalimFile matches the export's default file name, shekel<account>.csv.
var hapoalimFile = regexp.MustCompile(`(?i)^shekel(\d+)`)

var hapoalimMappings = []FieldMapping{
	{Source: hapoalimDate, Target: FieldDate, Transform: date},
	{Source: hapoalimDesc, Target: FieldPayee},
	{Source: hapoalimDetails, Target: FieldMemo},
	{Source: hapoalimReference, Target: FieldMemo},
	{Source: hapoalimDebit, Target: FieldAmount, Transform: debit(cells.HalfAwayFromZero)},
	{Source: hapoalimCredit, Target: FieldAmount, Transform: credit(cells.HalfAwayFromZero)},
}

// Hapoalim parses Bank Hapoalim current-account CSV exports.
type Hapoalim struct{}

func (*Hapoalim) Kind() Kind { return KindHapoalim }

func (*Hapoalim) Info() model.VendorInfo {
	return model.VendorInfo{
		Kind:        KindHapoalim.String(),
		Name:        "Bank Hapoalim",
		Class:       model.VendorClassBank,
		Confidence:  1,
		Identifiers: []string{hapoalimDate, hapoalimDebit, hapoalimCredit, hapoalimBalance},
	}
}

func (*Hapoalim) Accepts() ContentKind { return ContentDelimited }

func (*Hapoalim) Detect(fileName string, c Content) (string, bool) {
	t := c.Table
	if c.Kind != ContentDelimited || t == nil {
		return "", false
	}
	if !t.HasHeaders(hapoalimDate, hapoalimDebit, hapoalimCredit, hapoalimBalance) {
		return "", false
	}
	if m := hapoalimFile.FindStringSubmatch(filepath.Base(fileName)); m != nil {
		return m[1], true
	}
	if rows := t.DataRows(); len(rows) > 0 {
		if acct := t.Value(rows[0], hapoalimAccount); acct != "" {
			return acct, true
		}
	}
	return stem(fileName), true
}

func (*Hapoalim) Extract(_ string, c Content) (Extraction, error) {
	t, err := requireTable(c)
	if err != nil {
		return Extraction{}, err
	}
	idx := indexHeaders(t.Headers)
	dateCol := idx.col(hapoalimDate)

	var (
		out  Extraction
		last []string
	)
	for _, row := range t.DataRows() {
		if endOfBlock(row, dateCol) {
			break
		}
		last = row
		txn, ok := applyMappings(hapoalimMappings, idx.getter(row))
		if !ok {
			out.Dropped++
			continue
		}
		out.Transactions = append(out.Transactions, txn)
	}

	if last != nil {
		if bal, ok := cells.ParseAmount(idx.value(last, hapoalimBalance)); ok {
			out.FinalBalance = &bal
		}
	}
	return out, nil
}
