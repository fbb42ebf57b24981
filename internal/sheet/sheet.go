// Package sheet loads spreadsheet exports into a plain grid of cell strings,
// whatever the container format.
package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedType is returned for file extensions that are not statement exports.
var ErrUnsupportedType = errors.New("unsupported file type")

// Workbook is an opened spreadsheet.
type Workbook struct {
	Sheets []*Sheet
}

// Sheet is one worksheet as displayed values, row-major.
type Sheet struct {
	Name string
	Rows [][]string
}

// Sheet returns the i-th worksheet or nil.
func (w *Workbook) Sheet(i int) *Sheet {
	if w == nil || i < 0 || i >= len(w.Sheets) {
		return nil
	}
	return w.Sheets[i]
}

// Row returns row i (0-based) or nil.
func (s *Sheet) Row(i int) []string {
	if s == nil || i < 0 || i >= len(s.Rows) {
		return nil
	}
	return s.Rows[i]
}

// Cell returns the value at 0-based row and column, or "".
func (s *Sheet) Cell(row, col int) string {
	r := s.Row(row)
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// CellAt returns the value at an A1-style reference such as "E9".
func (s *Sheet) CellAt(ref string) string {
	col, row, err := excelize.CellNameToCoordinates(ref)
	if err != nil {
		return ""
	}
	return s.Cell(row-1, col-1)
}

// Extensions handled by this package and by the delimited reader.
const (
	ExtCSV  = ".csv"
	ExtXLS  = ".xls"
	ExtXLSX = ".xlsx"
	ExtXLSM = ".xlsm"
)

// Ext returns the lower-cased extension of name.
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// IsSpreadsheet reports whether name has a spreadsheet extension.
func IsSpreadsheet(name string) bool {
	switch Ext(name) {
	case ExtXLS, ExtXLSX, ExtXLSM:
		return true
	}
	return false
}

// IsDelimited reports whether name has a delimited-text extension.
func IsDelimited(name string) bool {
	return Ext(name) == ExtCSV
}

// Accepted reports whether name is a statement export this tool reads.
func Accepted(name string) bool {
	return IsDelimited(name) || IsSpreadsheet(name)
}

// Open reads a spreadsheet by extension. Legacy .xls downloads that are
// really HTML pages are returned as a one-cell workbook holding the markup.
func Open(name string, data []byte) (wb *Workbook, err error) {
	switch Ext(name) {
	case ExtXLSX, ExtXLSM:
		return openXLSX(data)
	case ExtXLS:
		if looksLikeMarkup(data) {
			return &Workbook{Sheets: []*Sheet{{Name: "html", Rows: [][]string{{string(data)}}}}}, nil
		}
		return openXLS(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, Ext(name))
	}
}

func openXLSX(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening xlsx: %w", err)
	}
	defer f.Close()

	dates := newDateCells(f)
	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("reading sheet %q: %w", name, err)
		}
		raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("reading sheet %q: %w", name, err)
		}
		dates.rewrite(name, rows, raw)
		wb.Sheets = append(wb.Sheets, &Sheet{Name: name, Rows: rows})
	}
	return wb, nil
}

// dateLayout is how true date cells are rendered, matching the DD/MM/YYYY
// text the vendors export.
const dateLayout = "02/01/2006"

// dateCells renders date-styled serial cells as DD/MM/YYYY. The display text
// excelize produces for built-in format 14 is month first, which would be
// read back with day and month swapped.
type dateCells struct {
	f        *excelize.File
	date1904 bool
	isDate   map[int]bool
}

func newDateCells(f *excelize.File) *dateCells {
	d := &dateCells{f: f, isDate: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		d.date1904 = *props.Date1904
	}
	return d
}

func (d *dateCells) rewrite(sheet string, rows, raw [][]string) {
	for r, row := range rows {
		if r >= len(raw) {
			return
		}
		for c := range row {
			if c >= len(raw[r]) || raw[r][c] == "" {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil || !d.styled(sheet, ref) {
				continue
			}
			serial, err := strconv.ParseFloat(raw[r][c], 64)
			if err != nil {
				continue
			}
			t, err := excelize.ExcelDateToTime(serial, d.date1904)
			if err != nil {
				continue
			}
			row[c] = t.Format(dateLayout)
		}
	}
}

func (d *dateCells) styled(sheet, ref string) bool {
	id, err := d.f.GetCellStyle(sheet, ref)
	if err != nil || id == 0 {
		return false
	}
	if v, ok := d.isDate[id]; ok {
		return v
	}
	v := false
	if style, err := d.f.GetStyle(id); err == nil {
		v = isDateFormat(style)
	}
	d.isDate[id] = v
	return v
}

// isDateFormat reports whether a style shows a calendar date. Time-only
// formats are excluded.
func isDateFormat(s *excelize.Style) bool {
	switch {
	case s.NumFmt >= 14 && s.NumFmt <= 17, s.NumFmt == 22,
		s.NumFmt >= 27 && s.NumFmt <= 36, s.NumFmt >= 50 && s.NumFmt <= 58:
		return true
	case s.CustomNumFmt == nil:
		return false
	}
	code := strings.ToLower(*s.CustomNumFmt)
	var b strings.Builder
	quoted, bracket := false, false
	for _, r := range code {
		switch {
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '[':
			bracket = true
		case r == ']':
			bracket = false
		case bracket:
		default:
			b.WriteRune(r)
		}
	}
	return strings.ContainsAny(b.String(), "dy")
}

func openXLS(data []byte) (wb *Workbook, err error) {
	// The BIFF reader panics on some truncated files.
	defer func() {
		if r := recover(); r != nil {
			wb, err = nil, fmt.Errorf("opening xls: %v", r)
		}
	}()

	f, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("opening xls: %w", err)
	}

	wb = &Workbook{}
	for i := 0; i < f.NumSheets(); i++ {
		ws := f.GetSheet(i)
		if ws == nil {
			continue
		}
		s := &Sheet{Name: ws.Name}
		for r := 0; r <= int(ws.MaxRow); r++ {
			row := ws.Row(r)
			if row == nil {
				s.Rows = append(s.Rows, nil)
				continue
			}
			vals := make([]string, 0, row.LastCol())
			for c := 0; c < row.LastCol(); c++ {
				vals = append(vals, row.Col(c))
			}
			s.Rows = append(s.Rows, vals)
		}
		wb.Sheets = append(wb.Sheets, s)
	}
	if len(wb.Sheets) == 0 {
		return nil, errors.New("opening xls: no sheets")
	}
	return wb, nil
}

func looksLikeMarkup(data []byte) bool {
	head := bytes.TrimSpace(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF}))
	if len(head) > 512 {
		head = head[:512]
	}
	lower := bytes.ToLower(head)
	return bytes.HasPrefix(lower, []byte("<")) &&
		(bytes.Contains(lower, []byte("<html")) || bytes.Contains(lower, []byte("<table")))
}
