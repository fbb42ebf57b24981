package importer

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shekelsync/shekelsync/internal/cells"
	"github.com/shekelsync/shekelsync/internal/model"
)

// Discount Bank exports use a fixed layout: title in A1, account in A3,
// balance in E9 and the transaction table header on row 11.
const (
	discountTitle     = "עובר ושב"
	discountTitleCell = "A1"
	discountAccount   = "A3"
	discountBalance   = "E9"
	discountHeaderRow = 10
	discountDate      = "תאריך"
	discountValueDate = "תאריך ערך"
	discountDesc      = "תיאור התנועה"
	discountAmount    = "₪ זכות/חובה"
	discountRunning   = "₪ יתרה"
	discountReference = "אסמכתא"
)

var discountAccountNumber = regexp.MustCompile(`\d[\d-]*\d`)

var discountMappings = []FieldMapping{
	{Source: discountDate, Target: FieldDate, Transform: date},
	{Source: discountDesc, Target: FieldPayee},
	{Source: discountReference, Target: FieldMemo},
	{Source: discountAmount, Target: FieldAmount, Transform: signed(cells.Floor)},
}

// Discount parses Israel Discount Bank current-account workbooks.
type Discount struct{}

func (*Discount) Kind() Kind { return KindDiscount }

func (*Discount) Info() model.VendorInfo {
	return model.VendorInfo{
		Kind:        KindDiscount.String(),
		Name:        "Discount Bank",
		Class:       model.VendorClassBank,
		Confidence:  1,
		Identifiers: []string{discountDate, discountValueDate, discountDesc, discountAmount, discountRunning, discountReference},
	}
}

func (*Discount) Accepts() ContentKind { return ContentWorkbook }

func (*Discount) Detect(fileName string, c Content) (string, bool) {
	if c.Kind != ContentWorkbook || c.Workbook == nil {
		return "", false
	}
	s := c.Workbook.Sheet(0)
	if !strings.Contains(cells.Label(s.CellAt(discountTitleCell)), discountTitle) {
		return "", false
	}
	if id := discountAccountNumber.FindString(s.CellAt(discountAccount)); id != "" {
		return id, true
	}
	return stem(fileName), true
}

func (*Discount) Extract(_ string, c Content) (Extraction, error) {
	wb, err := requireWorkbook(c)
	if err != nil {
		return Extraction{}, err
	}
	s := wb.Sheet(0)

	var out Extraction
	if bal, ok := discountParseBalance(s.CellAt(discountBalance)); ok {
		out.FinalBalance = &bal
	}

	header := s.Row(discountHeaderRow)
	if header == nil {
		return out, nil
	}
	idx := indexHeaders(header)
	dateCol := idx.col(discountDate)
	for _, row := range s.Rows[discountHeaderRow+1:] {
		if endOfBlock(row, dateCol) {
			break
		}
		txn, ok := applyMappings(discountMappings, idx.getter(row))
		if !ok {
			out.Dropped++
			continue
		}
		out.Transactions = append(out.Transactions, txn)
	}
	return out, nil
}

func discountParseBalance(raw string) (decimal.Decimal, bool) {
	if d, err := decimal.NewFromString(strings.TrimSpace(raw)); err == nil {
		return d, true
	}
	return cells.StripNonNumeric(raw)
}
