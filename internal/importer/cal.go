package importer

import (
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shekelsync/shekelsync/internal/cells"
	"github.com/shekelsync/shekelsync/internal/model"
)

// calFilePrefix is how Cal names its per-card charge exports.
const calFilePrefix = "פירוט חיובים לכרטיס"

// Cal header labels after whitespace collapse ("תאריך\nעסקה" -> "תאריך עסקה").
const (
	calDate     = "תאריך עסקה"
	calMerchant = "שם בית עסק"
	calCharge   = "סכום חיוב"
	calDetails  = "פירוט נוסף"
	calNotes    = "הערות"
)

// calBalanceMarkers introduce the statement's upcoming charge total.
var calBalanceMarkers = []string{"עסקאות לחיוב", "Charges as of"}

const calTotal = `סה"כ`

var calMappings = []FieldMapping{
	{Source: calDate, Target: FieldDate, Transform: date},
	{Source: calMerchant, Target: FieldPayee},
	{Source: calDetails, Target: FieldMemo},
	{Source: calNotes, Target: FieldMemo},
	{Source: calCharge, Target: FieldAmount, Transform: charge(cells.HalfAwayFromZero)},
}

// Cal parses Cal (Visa Cal) credit card statements.
type Cal struct{}

func (*Cal) Kind() Kind { return KindCal }

func (*Cal) Info() model.VendorInfo {
	return model.VendorInfo{
		Kind:        KindCal.String(),
		Name:        "Cal",
		Class:       model.VendorClassCreditCard,
		Confidence:  1,
		Identifiers: []string{calDate, calMerchant, calCharge, calDetails},
	}
}

func (*Cal) Accepts() ContentKind { return ContentWorkbook }

func (*Cal) Detect(fileName string, c Content) (string, bool) {
	if c.Kind != ContentWorkbook || c.Workbook == nil {
		return "", false
	}
	if !strings.HasPrefix(filepath.Base(fileName), calFilePrefix) {
		return "", false
	}
	s := c.Workbook.Sheet(0)
	if row, _ := findHeader(s, 10, calDate, calMerchant, calCharge); row < 0 {
		return "", false
	}
	if card := firstFourDigits(stem(fileName)); card != "" {
		return card, true
	}
	if card := firstFourDigits(s.Cell(0, 0)); card != "" {
		return card, true
	}
	return stem(fileName), true
}

func (*Cal) Extract(_ string, c Content) (Extraction, error) {
	wb, err := requireWorkbook(c)
	if err != nil {
		return Extraction{}, err
	}
	s := wb.Sheet(0)

	var out Extraction
	headerRow, idx := findHeader(s, 10, calDate, calMerchant, calCharge)
	for i := 0; i < len(s.Rows) && (headerRow < 0 || i < headerRow); i++ {
		if bal, ok := calBalance(s.Rows[i]); ok {
			out.FinalBalance = &bal
			break
		}
	}
	if headerRow < 0 {
		return out, nil
	}

	dateCol := idx.col(calDate)
	for _, row := range s.Rows[headerRow+1:] {
		if endOfBlock(row, dateCol, calTotal) {
			break
		}
		txn, ok := applyMappings(calMappings, idx.getter(row))
		if !ok {
			out.Dropped++
			continue
		}
		out.Transactions = append(out.Transactions, txn)
	}
	return out, nil
}

func calBalance(row []string) (decimal.Decimal, bool) {
	if len(row) == 0 {
		return decimal.Decimal{}, false
	}
	first := cells.Label(row[0])
	for _, marker := range calBalanceMarkers {
		if strings.Contains(first, marker) {
			return cells.ExtractNumber(first)
		}
	}
	return decimal.Decimal{}, false
}
