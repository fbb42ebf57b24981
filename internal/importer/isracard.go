package importer

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shekelsync/shekelsync/internal/cells"
	"github.com/shekelsync/shekelsync/internal/model"
	"github.com/shekelsync/shekelsync/internal/sheet"
)

// Isracard section markers.
const (
	isracardDomestic     = "עסקאות בארץ"
	isracardForeign      = `עסקאות בחו"ל`
	isracardTotalCharge  = "סך חיוב"
	isracardTotalForDate = "TOTAL FOR DATE"
	isracardBalanceCol   = 4
)

// Isracard column labels. Domestic and foreign sections share some labels
// but not their positions.
const (
	isracardPurchaseDate = "תאריך רכישה"
	isracardChargeDate   = "תאריך חיוב"
	isracardMerchant     = "שם בית עסק"
	isracardCity         = "עיר"
	isracardTxnAmount    = "סכום עסקה"
	isracardTxnCurrency  = "מטבע עסקה"
	isracardCharge       = "סכום חיוב"
	isracardChargeCur    = "מטבע חיוב"
	isracardVoucher      = "מס' שובר"
	isracardDetails      = "פירוט נוסף"
	isracardOrigCurrency = "מטבע מקור"
	isracardOrigAmount   = "סכום מקור"
)

var isracardCardLine = regexp.MustCompile(`כרטיס\D*?(\d{4})`)

var isracardDomesticMappings = []FieldMapping{
	{Source: isracardPurchaseDate, Target: FieldDate, Transform: date},
	{Source: isracardMerchant, Target: FieldPayee},
	{Source: isracardDetails, Target: FieldMemo},
	{Source: isracardCharge, Target: FieldAmount, Transform: charge(cells.Truncate)},
}

var isracardForeignMappings = []FieldMapping{
	{Source: isracardPurchaseDate, Target: FieldDate, Transform: date},
	{Source: isracardMerchant, Target: FieldPayee},
	{Source: isracardCharge, Target: FieldAmount, Transform: charge(cells.Truncate)},
}

// Isracard parses Isracard and Amex statements, which split domestic and
// foreign transactions into separate sections of one sheet.
type Isracard struct{}

func (*Isracard) Kind() Kind { return KindIsracard }

func (*Isracard) Info() model.VendorInfo {
	return model.VendorInfo{
		Kind:       KindIsracard.String(),
		Name:       "Isracard",
		Class:      model.VendorClassCreditCard,
		Confidence: 1,
		Identifiers: []string{
			isracardDomestic, isracardForeign, isracardPurchaseDate,
			isracardMerchant, isracardCharge,
		},
	}
}

func (*Isracard) Accepts() ContentKind { return ContentWorkbook }

func (*Isracard) Detect(fileName string, c Content) (string, bool) {
	if c.Kind != ContentWorkbook || c.Workbook == nil {
		return "", false
	}
	s := c.Workbook.Sheet(0)
	if s == nil {
		return "", false
	}
	var marker, header bool
	for _, row := range s.Rows {
		if len(row) == 0 {
			continue
		}
		first := cells.Label(row[0])
		if strings.Contains(first, isracardDomestic) || strings.Contains(first, isracardForeign) {
			marker = true
		}
		if first == isracardPurchaseDate {
			header = true
		}
	}
	if !marker || !header {
		return "", false
	}
	for i := 0; i < 10 && i < len(s.Rows); i++ {
		for _, cell := range s.Rows[i] {
			if m := isracardCardLine.FindStringSubmatch(cells.Label(cell)); m != nil {
				return m[1], true
			}
		}
	}
	return stem(fileName), true
}

type isracardSection int

const (
	sectionNone isracardSection = iota
	sectionDomestic
	sectionForeign
)

func (*Isracard) Extract(_ string, c Content) (Extraction, error) {
	wb, err := requireWorkbook(c)
	if err != nil {
		return Extraction{}, err
	}
	s := wb.Sheet(0)

	var (
		out     Extraction
		section = sectionNone
		idx     columnIndex
	)
	for _, row := range s.Rows {
		if section == sectionNone || idx == nil {
			if next := isracardMarker(row); next != sectionNone {
				section, idx = next, nil
				continue
			}
			if section != sectionNone && len(row) > 0 && cells.Label(row[0]) == isracardPurchaseDate {
				idx = indexHeaders(row)
			}
			continue
		}

		dateCol := idx.col(isracardPurchaseDate)
		if section == sectionForeign {
			if dateCol >= 0 && dateCol < len(row) && strings.Contains(cells.Label(row[dateCol]), isracardTotalForDate) {
				section, idx = sectionNone, nil
				continue
			}
			if strings.Contains(idx.value(row, isracardMerchant), isracardTotalForDate) {
				continue
			}
		}
		if endOfBlock(row, dateCol) || rowContains(row, isracardTotalCharge) {
			section, idx = sectionNone, nil
			// A marker can directly follow the previous section.
			if next := isracardMarker(row); next != sectionNone {
				section = next
			}
			continue
		}

		mappings := isracardDomesticMappings
		if section == sectionForeign {
			mappings = isracardForeignMappings
		}
		txn, ok := applyMappings(mappings, idx.getter(row))
		if !ok {
			out.Dropped++
			continue
		}
		if section == sectionForeign {
			txn.Memo = joinNonEmpty(" ", idx.value(row, isracardOrigCurrency), idx.value(row, isracardOrigAmount))
		}
		out.Transactions = append(out.Transactions, txn)
	}

	if bal, ok := isracardBalance(s); ok {
		out.FinalBalance = &bal
	}
	return out, nil
}

func isracardMarker(row []string) isracardSection {
	if len(row) == 0 {
		return sectionNone
	}
	first := cells.Label(row[0])
	switch {
	case strings.Contains(first, isracardDomestic):
		return sectionDomestic
	case strings.Contains(first, isracardForeign):
		return sectionForeign
	default:
		return sectionNone
	}
}

// isracardBalance reads the first total-charge row: the fixed balance column
// when it parses, otherwise the first number after the marker cell.
func isracardBalance(s *sheet.Sheet) (decimal.Decimal, bool) {
	if s == nil {
		return decimal.Decimal{}, false
	}
	for _, row := range s.Rows {
		marker := -1
		for i, cell := range row {
			if strings.Contains(cells.Label(cell), isracardTotalCharge) {
				marker = i
				break
			}
		}
		if marker < 0 {
			continue
		}
		if isracardBalanceCol < len(row) {
			if bal, ok := cells.ParseAmount(row[isracardBalanceCol]); ok {
				return bal, true
			}
		}
		for i, cell := range row {
			if i == marker {
				continue
			}
			if bal, ok := cells.ExtractNumber(cell); ok {
				return bal, true
			}
		}
		return decimal.Decimal{}, false
	}
	return decimal.Decimal{}, false
}
