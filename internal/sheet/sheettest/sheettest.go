// Package sheettest builds in-memory .xlsx workbooks for tests.
package sheettest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Sheet describes one worksheet. Rows are written from A1 down; Cells are
// written afterwards by A1-style reference.
type Sheet struct {
	Name  string
	Rows  [][]any
	Cells map[string]any
}

// Build returns the bytes of an .xlsx workbook holding sheets in order.
func Build(t testing.TB, sheets ...Sheet) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", s.Name))
		} else {
			_, err := f.NewSheet(s.Name)
			require.NoError(t, err)
		}
		for r, row := range s.Rows {
			if len(row) == 0 {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(s.Name, cell, &row))
		}
		for ref, v := range s.Cells {
			require.NoError(t, f.SetCellValue(s.Name, ref, v))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}
