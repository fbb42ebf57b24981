package importer

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shekelsync/shekelsync/internal/cells"
	"github.com/shekelsync/shekelsync/internal/model"
)

// Max "transaction details" export headers.
const (
	maxDate         = "תאריך עסקה"
	maxMerchant     = "שם בית העסק"
	maxCategory     = "קטגוריה"
	maxCard         = "4 ספרות אחרונות של כרטיס האשראי"
	maxType         = "סוג עסקה"
	maxCharge       = "סכום חיוב"
	maxChargeCur    = "מטבע חיוב"
	maxOriginal     = "סכום עסקה מקורי"
	maxOriginalCur  = "מטבע עסקה מקורי"
	maxChargeDate   = "תאריך חיוב"
	maxNotes        = "הערות"
	maxHeaderWindow = 5
)

// maxTotal starts the per-tab summary; the tab total sits in the next row.
const maxTotal = "סך הכל"

const shekelSign = "₪"

var maxMappings = []FieldMapping{
	{Source: maxDate, Target: FieldDate, Transform: date},
	{Source: maxMerchant, Target: FieldPayee},
	{Source: maxCharge, Target: FieldAmount, Transform: chargeOrZero(cells.Truncate)},
}

// Max parses Max (formerly Leumi Card) multi-tab transaction exports. Each tab
// holds one transaction category (domestic, foreign, pending) with its own
// total.
type Max struct{}

func (*Max) Kind() Kind { return KindMax }

func (*Max) Info() model.VendorInfo {
	return model.VendorInfo{
		Kind:       KindMax.String(),
		Name:       "Max",
		Class:      model.VendorClassCreditCard,
		Confidence: 1,
		Identifiers: []string{
			maxDate, maxMerchant, maxCategory, maxCard, maxType, maxCharge,
			maxChargeCur, maxOriginal, maxOriginalCur, maxChargeDate, maxNotes,
		},
	}
}

func (*Max) Accepts() ContentKind { return ContentWorkbook }

func (*Max) Detect(_ string, c Content) (string, bool) {
	if c.Kind != ContentWorkbook || c.Workbook == nil {
		return "", false
	}
	// Some exports open with an empty summary tab.
	found := false
	for i := 0; i < 2 && !found; i++ {
		row, _ := findHeader(c.Workbook.Sheet(i), maxHeaderWindow, maxDate, maxCard, maxCharge)
		found = row >= 0
	}
	if !found {
		return "", false
	}
	if cards := maxCards(c); len(cards) > 0 {
		return strings.Join(cards, ", "), true
	}
	return "Max", true
}

// maxCards returns the distinct card suffixes across all tabs in first-seen
// order.
func maxCards(c Content) []string {
	var (
		cards []string
		seen  = map[string]bool{}
	)
	for _, s := range c.Workbook.Sheets {
		headerRow, idx := findHeader(s, maxHeaderWindow, maxDate, maxCard, maxCharge)
		if headerRow < 0 {
			continue
		}
		for _, row := range s.Rows[headerRow+1:] {
			card := idx.value(row, maxCard)
			if card == "" || !cells.HasDigit(card) || seen[card] {
				continue
			}
			seen[card] = true
			cards = append(cards, card)
		}
	}
	return cards
}

func (*Max) Extract(_ string, c Content) (Extraction, error) {
	wb, err := requireWorkbook(c)
	if err != nil {
		return Extraction{}, err
	}

	var (
		out     Extraction
		total   decimal.Decimal
		haveAny bool
	)
	for _, s := range wb.Sheets {
		headerRow, idx := findHeader(s, maxHeaderWindow, maxDate, maxCard, maxCharge)
		if headerRow < 0 {
			continue
		}
		dateCol := idx.col(maxDate)
		for _, row := range s.Rows[headerRow+1:] {
			if endOfBlock(row, dateCol, maxTotal) {
				break
			}
			txn, _ := applyMappings(maxMappings, idx.getter(row))
			txn.Memo = joinNonEmpty(" | ", idx.value(row, maxCategory), idx.value(row, maxNotes))
			out.Transactions = append(out.Transactions, txn)
		}

		if bal, ok := maxTabBalance(s.Rows); ok {
			if out.BalanceBreakdown == nil {
				out.BalanceBreakdown = make(map[string]decimal.Decimal)
			}
			out.BalanceBreakdown[s.Name] = bal
			total = total.Add(bal)
			haveAny = true
		}
	}
	if haveAny {
		out.FinalBalance = &total
	}
	return out, nil
}

// maxTabBalance reads the tab total from the first cell of the row after the
// summary row, falling back to the first cell that carries a shekel sign.
func maxTabBalance(rows [][]string) (decimal.Decimal, bool) {
	for i, row := range rows {
		if len(row) == 0 || !strings.Contains(cells.Label(row[0]), maxTotal) {
			continue
		}
		if i+1 < len(rows) && len(rows[i+1]) > 0 {
			if bal, ok := cells.ExtractNumber(rows[i+1][0]); ok {
				return bal, true
			}
		}
		break
	}
	for _, row := range rows {
		for _, cell := range row {
			if strings.Contains(cell, shekelSign) {
				if bal, ok := cells.ExtractNumber(cell); ok {
					return bal, true
				}
			}
		}
	}
	return decimal.Decimal{}, false
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
