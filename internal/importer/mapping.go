package importer

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/shekelsync/shekelsync/internal/cells"
	"github.com/shekelsync/shekelsync/internal/model"
	"github.com/shekelsync/shekelsync/internal/sheet"
)

// Field names a transaction attribute a mapping writes.
type Field int

const (
	FieldDate Field = iota
	FieldPayee
	FieldMemo
	FieldAmount
)

type valueStatus int

const (
	valueEmpty valueStatus = iota
	valueSet
	valueInvalid
)

type value struct {
	text   string
	amount model.Milliunits
	status valueStatus
}

// FieldMapping copies one source column into a transaction field.
// A nil Transform copies the cleaned text.
type FieldMapping struct {
	Source    string
	Target    Field
	Transform func(raw string) value
}

func text(raw string) value {
	s := cells.Clean(raw)
	if s == "" {
		return value{}
	}
	return value{text: s, status: valueSet}
}

func date(raw string) value {
	v := text(raw)
	v.text = cells.NormalizeDate(v.text)
	return v
}

func parsedAmount(raw string, sign int64, r cells.Rounding) value {
	if cells.IsBlank(raw) {
		return value{}
	}
	d, ok := cells.ParseAmount(raw)
	if !ok {
		return value{status: valueInvalid}
	}
	return value{amount: model.Milliunits(sign) * cells.ToMilliunits(d, r), status: valueSet}
}

// debit reads an outflow column; the result is negative.
func debit(r cells.Rounding) func(string) value {
	return func(raw string) value { return parsedAmount(raw, -1, r) }
}

// credit reads an inflow column.
func credit(r cells.Rounding) func(string) value {
	return func(raw string) value { return parsedAmount(raw, 1, r) }
}

// charge reads a card charge column: charges become negative and refunds,
// stated as negative charges, become positive.
func charge(r cells.Rounding) func(string) value {
	return func(raw string) value { return parsedAmount(raw, -1, r) }
}

// chargeOrZero is charge with malformed cells read as zero.
func chargeOrZero(r cells.Rounding) func(string) value {
	return func(raw string) value {
		v := parsedAmount(raw, -1, r)
		if v.status == valueInvalid {
			return value{status: valueSet}
		}
		return v
	}
}

// signed reads a column that already carries the sign.
func signed(r cells.Rounding) func(string) value {
	return func(raw string) value { return parsedAmount(raw, 1, r) }
}

// applyMappings builds a transaction from one row. Mappings run in order and
// the first one to produce a non-empty, non-zero value for a field wins. ok is
// false when the amount could not be parsed from any mapped column.
func applyMappings(mappings []FieldMapping, get func(label string) (string, bool)) (model.Transaction, bool) {
	var (
		txn       model.Transaction
		amountSet bool
		invalid   bool
	)
	for _, m := range mappings {
		raw, found := get(m.Source)
		if !found {
			continue
		}
		transform := m.Transform
		if transform == nil {
			transform = text
		}
		v := transform(raw)

		switch m.Target {
		case FieldAmount:
			if amountSet {
				continue
			}
			switch v.status {
			case valueSet:
				txn.Amount = v.amount
				amountSet = v.amount != 0
			case valueInvalid:
				invalid = true
			}
		case FieldDate:
			if txn.Date == "" {
				txn.Date = v.text
			}
		case FieldPayee:
			if txn.PayeeName == "" {
				txn.PayeeName = v.text
			}
		case FieldMemo:
			if txn.Memo == "" {
				txn.Memo = v.text
			}
		}
	}
	return txn, amountSet || !invalid
}

// columnIndex maps normalized header labels to column positions.
type columnIndex map[string]int

func indexHeaders(row []string) columnIndex {
	idx := make(columnIndex, len(row))
	for i, h := range row {
		label := cells.Label(h)
		if label == "" {
			continue
		}
		if _, dup := idx[label]; !dup {
			idx[label] = i
		}
	}
	return idx
}

func (c columnIndex) has(labels ...string) bool {
	for _, l := range labels {
		if _, ok := c[cells.Label(l)]; !ok {
			return false
		}
	}
	return true
}

func (c columnIndex) col(label string) int {
	if i, ok := c[cells.Label(label)]; ok {
		return i
	}
	return -1
}

// getter returns a lookup over one row for applyMappings.
func (c columnIndex) getter(row []string) func(string) (string, bool) {
	return func(label string) (string, bool) {
		i := c.col(label)
		if i < 0 {
			return "", false
		}
		if i >= len(row) {
			return "", true
		}
		return row[i], true
	}
}

func (c columnIndex) value(row []string, label string) string {
	i := c.col(label)
	if i < 0 || i >= len(row) {
		return ""
	}
	return cells.Clean(row[i])
}

// findHeader returns the first row within limit rows that carries every
// required label, or -1.
func findHeader(s *sheet.Sheet, limit int, required ...string) (int, columnIndex) {
	if s == nil {
		return -1, nil
	}
	for i := 0; i < len(s.Rows) && i < limit; i++ {
		idx := indexHeaders(s.Rows[i])
		if idx.has(required...) {
			return i, idx
		}
	}
	return -1, nil
}

func rowEmpty(row []string) bool {
	for _, c := range row {
		if cells.Clean(c) != "" {
			return false
		}
	}
	return true
}

func rowContains(row []string, phrase string) bool {
	for _, c := range row {
		if strings.Contains(cells.Label(c), phrase) {
			return true
		}
	}
	return false
}

// endOfBlock reports whether row terminates a transaction block: an empty
// row, an empty date cell, or a total/summary row.
func endOfBlock(row []string, dateCol int, totals ...string) bool {
	if rowEmpty(row) {
		return true
	}
	if dateCol < 0 || dateCol >= len(row) || cells.Clean(row[dateCol]) == "" {
		return true
	}
	lead := cells.Label(row[0]) + " " + cells.Label(row[dateCol])
	for _, t := range totals {
		if strings.Contains(lead, t) {
			return true
		}
	}
	return false
}

var digitRuns = regexp.MustCompile(`\d+`)

// firstFourDigits returns the first run of exactly four digits in s.
func firstFourDigits(s string) string {
	for _, m := range digitRuns.FindAllString(s, -1) {
		if len(m) == 4 {
			return m
		}
	}
	return ""
}

// stem is the file name without directories or extension.
func stem(fileName string) string {
	base := filepath.Base(fileName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
