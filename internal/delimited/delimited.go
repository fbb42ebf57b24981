// Package delimited reads delimiter-separated statement exports: it decodes
// legacy Hebrew code pages, sniffs the delimiter and recovers from broken
// header rows.
package delimited

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/shekelsync/shekelsync/internal/cells"
)

// Candidate delimiters in tie-break order.
var candidates = []rune{',', ';', '\t', '|'}

// sniffLines is how many non-empty lines DetectDelimiter inspects.
const sniffLines = 5

// minUsableRows is the row count below which the header-based parse is
// considered suspect and the headerless fallback runs.
const minUsableRows = 2

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is a parsed delimited file: one header row and the data rows after it.
type Table struct {
	Headers   []string
	Rows      [][]string
	Delimiter rune
}

// Decode returns the text of a statement export. UTF-8 (with or without BOM)
// is used as is; anything else is read as Windows-1255, the code page Israeli
// banks export in.
func Decode(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}
	out, _, err := transform.Bytes(charmap.Windows1255.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("decoding windows-1255: %w", err)
	}
	return string(out), nil
}

// DetectDelimiter counts each candidate over the first few non-empty lines
// and returns the most frequent one. Comma wins when nothing is found.
func DetectDelimiter(text string) rune {
	counts := make(map[rune]int, len(candidates))
	seen := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		for _, c := range candidates {
			counts[c] += strings.Count(line, string(c))
		}
		seen++
		if seen == sniffLines {
			break
		}
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return best
}

// Parse decodes and parses a delimited export.
func Parse(data []byte) (*Table, error) {
	text, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return ParseText(text)
}

// ParseText parses already-decoded text. A strict header-based parse is tried
// first; when it fails or yields fewer than two usable rows the text is
// re-read leniently and the first non-empty row is zipped on as headers.
func ParseText(text string) (*Table, error) {
	delim := DetectDelimiter(text)

	if t, err := parseStrict(text, delim); err == nil && usableRows(t.Rows) >= minUsableRows {
		return t, nil
	}

	return parseLenient(text, delim)
}

func parseStrict(text string, delim rune) (*Table, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading delimited text: %w", err)
	}
	if len(records) == 0 {
		return nil, io.ErrUnexpectedEOF
	}
	return &Table{
		Headers:   cleanAll(records[0]),
		Rows:      records[1:],
		Delimiter: delim,
	}, nil
}

func parseLenient(text string, delim rune) (*Table, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading delimited text: %w", err)
		}
		if len(records) == 0 && isEmptyRow(rec) {
			continue
		}
		records = append(records, rec)
	}

	t := &Table{Delimiter: delim}
	if len(records) == 0 {
		return t, nil
	}
	t.Headers = cleanAll(records[0])
	for _, rec := range records[1:] {
		t.Rows = append(t.Rows, zip(rec, len(t.Headers)))
	}
	return t, nil
}

// zip pads or cuts a record to the header width.
func zip(rec []string, width int) []string {
	row := make([]string, width)
	copy(row, rec)
	return row
}

func usableRows(rows [][]string) int {
	n := 0
	for _, r := range rows {
		if !isEmptyRow(r) {
			n++
		}
	}
	return n
}

func isEmptyRow(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func cleanAll(in []string) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = cells.Clean(v)
	}
	return out
}

// Index returns the column of the header whose label matches name, or -1.
func (t *Table) Index(name string) int {
	want := cells.Label(name)
	for i, h := range t.Headers {
		if cells.Label(h) == want {
			return i
		}
	}
	return -1
}

// HasHeaders reports whether every name is present among the headers.
func (t *Table) HasHeaders(names ...string) bool {
	for _, n := range names {
		if t.Index(n) < 0 {
			return false
		}
	}
	return true
}

// Value returns the cell of row under header name, or "" when either is missing.
func (t *Table) Value(row []string, name string) string {
	i := t.Index(name)
	if i < 0 || i >= len(row) {
		return ""
	}
	return cells.Clean(row[i])
}

// DataRows returns the rows that carry at least one non-empty cell.
func (t *Table) DataRows() [][]string {
	var out [][]string
	for _, r := range t.Rows {
		if !isEmptyRow(r) {
			out = append(out, r)
		}
	}
	return out
}
