package importer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shekelsync/shekelsync/internal/cells"
	"github.com/shekelsync/shekelsync/internal/htmltable"
	"github.com/shekelsync/shekelsync/internal/model"
	"github.com/shekelsync/shekelsync/internal/sheet"
)

// leumiMarkerStyle is the inline style of the first transaction row in
// Leumi's HTML export; rows above it are page chrome.
const leumiMarkerStyle = "background-color:#e9eef4"

// Leumi HTML row layout.
const (
	leumiColDate = iota
	leumiColValueDate
	leumiColDescription
	leumiColReference
	leumiColDebit
	leumiColCredit
	leumiColBalance
	leumiColumns
)

// Positional sources for applyMappings.
const (
	leumiDate        = "date"
	leumiDescription = "description"
	leumiReference   = "reference"
	leumiDebit       = "debit"
	leumiCredit      = "credit"
)

var leumiPositions = columnIndex{
	leumiDate:        leumiColDate,
	leumiDescription: leumiColDescription,
	leumiReference:   leumiColReference,
	leumiDebit:       leumiColDebit,
	leumiCredit:      leumiColCredit,
}

var leumiMappings = []FieldMapping{
	{Source: leumiDate, Target: FieldDate, Transform: date},
	{Source: leumiDescription, Target: FieldPayee},
	{Source: leumiReference, Target: FieldMemo},
	{Source: leumiDebit, Target: FieldAmount, Transform: debit(cells.HalfAwayFromZero)},
	{Source: leumiCredit, Target: FieldAmount, Transform: credit(cells.HalfAwayFromZero)},
}

// Balance cells on the summary sheet, in preference order.
var leumiBalanceCells = []string{"B3", "C3", "B4", "C4"}

var leumiAccountNumber = regexp.MustCompile(`\d{2,3}-\d{4,6}/\d{2,3}`)

// Leumi parses Bank Leumi exports: an HTML table embedded in the first sheet
// plus a summary sheet with the account number and balance.
type Leumi struct{}

func (*Leumi) Kind() Kind { return KindLeumi }

func (*Leumi) Info() model.VendorInfo {
	return model.VendorInfo{
		Kind:        KindLeumi.String(),
		Name:        "Bank Leumi",
		Class:       model.VendorClassBank,
		Confidence:  1,
		Identifiers: []string{"תאריך", "תאריך ערך", "תיאור", "אסמכתא", "חובה", "זכות", "יתרה"},
	}
}

func (*Leumi) Accepts() ContentKind { return ContentWorkbook }

func (*Leumi) Detect(fileName string, c Content) (string, bool) {
	if c.Kind != ContentWorkbook || c.Workbook == nil {
		return "", false
	}
	doc := leumiHTML(c.Workbook.Sheet(0))
	if doc == "" || !strings.Contains(squashStyle(doc), squashStyle(leumiMarkerStyle)) {
		return "", false
	}
	if id := leumiIdentifier(c.Workbook, doc); id != "" {
		return id, true
	}
	return stem(fileName), true
}

func (*Leumi) Extract(_ string, c Content) (Extraction, error) {
	wb, err := requireWorkbook(c)
	if err != nil {
		return Extraction{}, err
	}
	doc := leumiHTML(wb.Sheet(0))
	if doc == "" {
		return Extraction{}, fmt.Errorf("%w: no html table in first sheet", ErrFormat)
	}
	rows, err := htmltable.Rows(doc, htmltable.Options{MarkerStyle: leumiMarkerStyle, Columns: leumiColumns})
	if err != nil {
		return Extraction{}, fmt.Errorf("reading leumi table: %w", err)
	}

	var out Extraction
	for _, row := range rows {
		d := row[leumiColDate]
		// Header rows carry no digits; summary rows carry no date.
		if !cells.HasDigit(d) || !strings.Contains(d, "/") {
			continue
		}
		txn, ok := applyMappings(leumiMappings, leumiPositions.getter(row))
		if !ok {
			out.Dropped++
			continue
		}
		out.Transactions = append(out.Transactions, txn)
	}

	if summary := wb.Sheet(1); summary != nil {
		for _, ref := range leumiBalanceCells {
			if bal, ok := cells.ParseAmount(summary.CellAt(ref)); ok {
				out.FinalBalance = &bal
				break
			}
		}
	}
	return out, nil
}

// leumiHTML returns the first cell in the leading rows that holds markup.
func leumiHTML(s *sheet.Sheet) string {
	if s == nil {
		return ""
	}
	for i := 0; i < 5 && i < len(s.Rows); i++ {
		for _, cell := range s.Rows[i] {
			if htmltable.LooksLikeHTML(cell) {
				return cell
			}
		}
	}
	return ""
}

func leumiIdentifier(wb *sheet.Workbook, doc string) string {
	if id := cells.Clean(wb.Sheet(1).CellAt("B1")); id != "" {
		return id
	}
	return leumiAccountNumber.FindString(doc)
}

func squashStyle(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}
