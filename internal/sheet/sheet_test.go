package sheet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/shekelsync/shekelsync/internal/cells"
	"github.com/shekelsync/shekelsync/internal/sheet/sheettest"
)

func TestOpen_XLSX(t *testing.T) {
	data := sheettest.Build(t,
		sheettest.Sheet{
			Name: "עסקאות",
			Rows: [][]any{
				{"תאריך", "סכום"},
				{"15/04/25", "100.50"},
			},
			Cells: map[string]any{"E9": "₪ 1,234.00"},
		},
		sheettest.Sheet{Name: "פרטים", Rows: [][]any{{"מספר חשבון", "800-123456/78"}}},
	)

	wb, err := Open("statement.xlsx", data)
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 2)

	first := wb.Sheet(0)
	assert.Equal(t, "עסקאות", first.Name)
	assert.Equal(t, "15/04/25", first.Cell(1, 0))
	assert.Equal(t, "100.50", first.Cell(1, 1))
	assert.Equal(t, "₪ 1,234.00", first.CellAt("E9"))
	assert.Equal(t, "", first.CellAt("Z99"))
	assert.Equal(t, "", first.CellAt("not a ref"))

	assert.Equal(t, "800-123456/78", wb.Sheet(1).CellAt("B1"))
	assert.Nil(t, wb.Sheet(2))
}

func TestOpen_XLSMUsesXLSXReader(t *testing.T) {
	data := sheettest.Build(t, sheettest.Sheet{Name: "a", Rows: [][]any{{"x"}}})
	wb, err := Open("MACRO.XLSM", data)
	require.NoError(t, err)
	assert.Equal(t, "x", wb.Sheet(0).Cell(0, 0))
}

func TestOpen_Corrupt(t *testing.T) {
	_, err := Open("statement.xlsx", []byte("this is plain text, not a zip"))
	assert.Error(t, err)

	_, err = Open("statement.xls", []byte("plain text pretending to be BIFF"))
	assert.Error(t, err)
}

func TestOpen_HTMLDisguisedAsXLS(t *testing.T) {
	html := "<html><body><table><tr><td>01/04/25</td></tr></table></body></html>"
	wb, err := Open("export.xls", []byte(html))
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 1)
	assert.Equal(t, html, wb.Sheet(0).Cell(0, 0))
}

func TestOpen_Unsupported(t *testing.T) {
	_, err := Open("notes.txt", []byte("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestExtensions(t *testing.T) {
	assert.True(t, IsSpreadsheet("a.XLSX"))
	assert.True(t, IsSpreadsheet("a.xls"))
	assert.True(t, IsSpreadsheet("a.xlsm"))
	assert.False(t, IsSpreadsheet("a.csv"))
	assert.True(t, IsDelimited("shekel1.CSV"))
	assert.True(t, Accepted("x.csv"))
	assert.False(t, Accepted("x.txt"))
}

func TestSheetAccessorsOutOfRange(t *testing.T) {
	var s *Sheet
	assert.Nil(t, s.Row(0))
	assert.Equal(t, "", s.Cell(3, 3))

	s = &Sheet{Rows: [][]string{{"a"}}}
	assert.Equal(t, "", s.Cell(0, 5))
	assert.Equal(t, "", s.Cell(-1, 0))
}

func TestOpen_XLSXDateCellsAreDayFirst(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	shortDate, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	require.NoError(t, err)
	isoFmt := "yyyy-mm-dd"
	custom, err := f.NewStyle(&excelize.Style{CustomNumFmt: &isoFmt})
	require.NoError(t, err)
	timeOnly, err := f.NewStyle(&excelize.Style{NumFmt: 20})
	require.NoError(t, err)

	day := time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, f.SetCellValue("Sheet1", "A1", day))
	require.NoError(t, f.SetCellStyle("Sheet1", "A1", "A1", shortDate))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", day))
	require.NoError(t, f.SetCellStyle("Sheet1", "B1", "B1", custom))
	require.NoError(t, f.SetCellValue("Sheet1", "C1", 100.5))
	require.NoError(t, f.SetCellValue("Sheet1", "D1", 0.5))
	require.NoError(t, f.SetCellStyle("Sheet1", "D1", "D1", timeOnly))
	require.NoError(t, f.SetCellValue("Sheet1", "E1", "15/04/25"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	wb, err := Open("statement.xlsx", buf.Bytes())
	require.NoError(t, err)
	s := wb.Sheet(0)

	assert.Equal(t, "15/04/2025", s.CellAt("A1"))
	assert.Equal(t, "2025-04-15", cells.NormalizeDate(s.CellAt("A1")))
	assert.Equal(t, "15/04/2025", s.CellAt("B1"))
	assert.Equal(t, "100.5", s.CellAt("C1"))
	assert.NotEqual(t, "30/12/1899", s.CellAt("D1"))
	assert.Equal(t, "15/04/25", s.CellAt("E1"))
}

func TestIsDateFormat(t *testing.T) {
	custom := func(code string) *excelize.Style { return &excelize.Style{CustomNumFmt: &code} }

	assert.True(t, isDateFormat(&excelize.Style{NumFmt: 14}))
	assert.True(t, isDateFormat(&excelize.Style{NumFmt: 22}))
	assert.False(t, isDateFormat(&excelize.Style{NumFmt: 20}))
	assert.False(t, isDateFormat(&excelize.Style{NumFmt: 4}))
	assert.True(t, isDateFormat(custom("dd/mm/yyyy")))
	assert.False(t, isDateFormat(custom(`#,##0.00 "days"`)))
	assert.False(t, isDateFormat(custom("[Red]0.00")))
}
