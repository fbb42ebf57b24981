package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shekelsync/shekelsync/internal/cells"
	"github.com/shekelsync/shekelsync/internal/model"
)

var debitCreditMappings = []FieldMapping{
	{Source: "date", Target: FieldDate, Transform: date},
	{Source: "payee", Target: FieldPayee},
	{Source: "memo", Target: FieldMemo},
	{Source: "ref", Target: FieldMemo},
	{Source: "debit", Target: FieldAmount, Transform: debit(cells.HalfAwayFromZero)},
	{Source: "credit", Target: FieldAmount, Transform: credit(cells.HalfAwayFromZero)},
}

func rowGetter(row map[string]string) func(string) (string, bool) {
	return func(label string) (string, bool) {
		v, ok := row[label]
		return v, ok
	}
}

func TestApplyMappings(t *testing.T) {
	tests := []struct {
		name   string
		row    map[string]string
		want   model.Transaction
		wantOK bool
	}{
		{
			name:   "credit only",
			row:    map[string]string{"date": "01/04/2025", "payee": "משכורת", "debit": "", "credit": "5000"},
			want:   model.Transaction{Date: "2025-04-01", PayeeName: "משכורת", Amount: 5000000},
			wantOK: true,
		},
		{
			name:   "debit only",
			row:    map[string]string{"date": "02/04/25", "payee": "כספומט", "debit": "200", "credit": ""},
			want:   model.Transaction{Date: "2025-04-02", PayeeName: "כספומט", Amount: -200000},
			wantOK: true,
		},
		{
			name:   "both populated, first mapping wins",
			row:    map[string]string{"debit": "10", "credit": "20"},
			want:   model.Transaction{Amount: -10000},
			wantOK: true,
		},
		{
			name:   "zero debit yields to credit",
			row:    map[string]string{"debit": "0", "credit": "20"},
			want:   model.Transaction{Amount: 20000},
			wantOK: true,
		},
		{
			name:   "both empty is a zero amount",
			row:    map[string]string{"date": "03/04/2025", "debit": "", "credit": ""},
			want:   model.Transaction{Date: "2025-04-03"},
			wantOK: true,
		},
		{
			name:   "malformed amount is dropped",
			row:    map[string]string{"debit": "לא מספר", "credit": ""},
			wantOK: false,
		},
		{
			name:   "malformed debit recovered by credit",
			row:    map[string]string{"debit": "n/a", "credit": "12.5"},
			want:   model.Transaction{Amount: 12500},
			wantOK: true,
		},
		{
			name:   "empty memo falls through to next mapping",
			row:    map[string]string{"memo": "  ", "ref": "99017", "credit": "1"},
			want:   model.Transaction{Memo: "99017", Amount: 1000},
			wantOK: true,
		},
		{
			name:   "first memo wins",
			row:    map[string]string{"memo": "פרטים", "ref": "99017", "credit": "1"},
			want:   model.Transaction{Memo: "פרטים", Amount: 1000},
			wantOK: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := applyMappings(debitCreditMappings, rowGetter(tt.row))
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestAmountTransforms_Sign(t *testing.T) {
	assert.Equal(t, model.Milliunits(-100500), charge(cells.HalfAwayFromZero)("100.50").amount)
	assert.Equal(t, model.Milliunits(50000), charge(cells.HalfAwayFromZero)("-50").amount)
	assert.Equal(t, model.Milliunits(-200000), debit(cells.HalfAwayFromZero)("200").amount)
	assert.Equal(t, model.Milliunits(5000000), credit(cells.HalfAwayFromZero)("5,000").amount)
	assert.Equal(t, model.Milliunits(-612346), signed(cells.Floor)("-612.3456").amount)
}

func TestChargeOrZero(t *testing.T) {
	v := chargeOrZero(cells.Truncate)("לא ידוע")
	assert.Equal(t, valueSet, v.status)
	assert.Equal(t, model.Milliunits(0), v.amount)

	v = chargeOrZero(cells.Truncate)("99.9999")
	assert.Equal(t, model.Milliunits(-99999), v.amount)
}

func TestEndOfBlock(t *testing.T) {
	assert.True(t, endOfBlock(nil, 0))
	assert.True(t, endOfBlock([]string{"", " "}, 0))
	assert.True(t, endOfBlock([]string{"", "payee"}, 0))
	assert.True(t, endOfBlock([]string{`סה"כ`, "", "150"}, 0, `סה"כ`))
	assert.True(t, endOfBlock([]string{"a"}, -1))
	assert.False(t, endOfBlock([]string{"01/04/2025", "payee"}, 0, `סה"כ`))
}

func TestFirstFourDigits(t *testing.T) {
	assert.Equal(t, "4321", firstFourDigits("פירוט חיובים לכרטיס 4321 - 05-2025"))
	assert.Equal(t, "", firstFourDigits("no digits 12 123456"))
}

func TestStem(t *testing.T) {
	assert.Equal(t, "shekel123", stem("/tmp/import/shekel123.csv"))
}
