package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMilliunitsMajorUnits(t *testing.T) {
	tests := []struct {
		in   Milliunits
		want string
	}{
		{5000000, "5000.00"},
		{-200000, "-200.00"},
		{-100500, "-100.50"},
		{1, "0.00"},
		{0, "0.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.MajorUnits().StringFixed(2), "MajorUnits(%d)", tt.in)
	}
}

func TestTransactionIsExpense(t *testing.T) {
	assert.True(t, Transaction{Amount: -1}.IsExpense())
	assert.False(t, Transaction{Amount: 0}.IsExpense())
	assert.False(t, Transaction{Amount: 5000000}.IsExpense())
}

func TestFileAnalysisState(t *testing.T) {
	failed := FileAnalysis{FileName: "a.xlsx", Error: "boom"}
	assert.True(t, failed.Failed())
	assert.False(t, failed.Recognized())

	ok := FileAnalysis{FileName: "b.csv", Vendor: &VendorInfo{Name: "Bank Hapoalim"}}
	assert.False(t, ok.Failed())
	assert.True(t, ok.Recognized())
}
