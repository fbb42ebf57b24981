package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shekelsync/shekelsync/internal/model"
	"github.com/shekelsync/shekelsync/internal/sheet/sheettest"
)

var maxHeaderRow = []any{
	"תאריך עסקה", "שם בית העסק", "קטגוריה", "4 ספרות אחרונות של כרטיס האשראי", "סוג עסקה",
	"סכום חיוב", "מטבע חיוב", "סכום עסקה מקורי", "מטבע עסקה מקורי", "תאריך חיוב", "הערות",
}

func maxSheets() []sheettest.Sheet {
	return []sheettest.Sheet{
		{
			Name: "עסקאות במועד החיוב",
			Rows: [][]any{
				{"כל המשתמשים (1)"},
				nil,
				maxHeaderRow,
				{"10-04-2025", "שופרסל", "מזון וצריכה", "1111", "רגילה", "250.75", "₪", "250.75", "₪", "10-05-2025", ""},
				{"12-04-2025", "נטפליקס", "פנאי", "2222", "הוראת קבע", "49.90", "₪", "49.90", "₪", "10-05-2025", "תשלום חודשי"},
				{"13-04-2025", "לא ברור", "", "1111", "רגילה", "לא ידוע", "₪", "", "₪", "10-05-2025", ""},
				{"סך הכל"},
				{"₪ 300.65"},
			},
		},
		{
			Name: "עסקאות חול",
			Rows: [][]any{
				{"עסקאות חו\"ל ומט\"ח"},
				maxHeaderRow,
				{"20-04-2025", "AMAZON", "קניות", "1111", "רגילה", "99.9999", "₪", "27", "USD", "10-05-2025", ""},
				{"סך הכל"},
				nil,
				{"", "99.99 ₪"},
			},
		},
	}
}

func TestMax_Detect(t *testing.T) {
	c := workbook(t, maxSheets()...)

	id, ok := (&Max{}).Detect("transaction-details_export.xlsx", c)
	require.True(t, ok)
	assert.Equal(t, "1111, 2222", id)
}

func TestMax_Detect_HeaderOnSecondSheet(t *testing.T) {
	sheets := maxSheets()
	sheets[0] = sheettest.Sheet{Name: "סיכום", Rows: [][]any{{"אין עסקאות"}}}
	c := workbook(t, sheets...)

	id, ok := (&Max{}).Detect("export.xlsx", c)
	require.True(t, ok)
	assert.Equal(t, "1111", id)
}

func TestMax_Detect_NoHeader(t *testing.T) {
	c := workbook(t, sheettest.Sheet{Name: "Sheet1", Rows: [][]any{{"תאריך עסקה", "סכום"}}})
	_, ok := (&Max{}).Detect("export.xlsx", c)
	assert.False(t, ok)
}

func TestMax_Extract(t *testing.T) {
	c := workbook(t, maxSheets()...)

	out, err := (&Max{}).Extract("export.xlsx", c)
	require.NoError(t, err)
	require.Len(t, out.Transactions, 4)
	assert.Zero(t, out.Dropped)

	assert.Equal(t, model.Transaction{
		Date:      "2025-04-10",
		Amount:    -250750,
		PayeeName: "שופרסל",
		Memo:      "מזון וצריכה",
	}, out.Transactions[0])
	assert.Equal(t, "פנאי | תשלום חודשי", out.Transactions[1].Memo)

	// Unparseable charge is kept as a zero amount.
	assert.Equal(t, "לא ברור", out.Transactions[2].PayeeName)
	assert.Equal(t, model.Milliunits(0), out.Transactions[2].Amount)

	// Truncated, not rounded.
	assert.Equal(t, model.Milliunits(-99999), out.Transactions[3].Amount)

	require.NotNil(t, out.FinalBalance)
	assert.Equal(t, "400.64", out.FinalBalance.StringFixed(2))
	require.Len(t, out.BalanceBreakdown, 2)
	assert.Equal(t, "300.65", out.BalanceBreakdown["עסקאות במועד החיוב"].StringFixed(2))
	assert.Equal(t, "99.99", out.BalanceBreakdown["עסקאות חול"].StringFixed(2))
}

func TestMaxTabBalance_None(t *testing.T) {
	_, ok := maxTabBalance([][]string{{"a", "b"}, {"סך הכל"}})
	assert.False(t, ok)
}
