package cells

import (
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"15/04/25", "2025-04-15"},
		{"15/04/2025", "2025-04-15"},
		{"5/4/2025", "2025-04-05"},
		{"05-04-2025", "2025-04-05"},
		{" 01/12/24 ", "2024-12-01"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDate(tt.in), "NormalizeDate(%q)", tt.in)
	}
}

func TestNormalizeDate_PassThrough(t *testing.T) {
	for _, in := range []string{"", "20250415", "15/04", "1/2/3/4", "2025-04-15", "תאריך", "aa/bb/cc"} {
		assert.Equal(t, in, NormalizeDate(in), "NormalizeDate(%q)", in)
	}
}

func TestNormalizeDate_RoundTrip(t *testing.T) {
	iso := regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	for day := 1; day <= 31; day += 3 {
		for month := 1; month <= 12; month++ {
			for _, year := range []int{2000, 2019, 2025, 2099} {
				short := strconv.Itoa(day) + "/" + strconv.Itoa(month) + "/" + strconv.Itoa(year%100)
				long := strconv.Itoa(day) + "/" + strconv.Itoa(month) + "/" + strconv.Itoa(year)
				for _, in := range []string{short, long} {
					got := NormalizeDate(in)
					assert.Regexp(t, iso, got)
					y, _ := strconv.Atoi(got[0:4])
					m, _ := strconv.Atoi(got[5:7])
					d, _ := strconv.Atoi(got[8:10])
					assert.Equal(t, day, d)
					assert.Equal(t, month, m)
					assert.Equal(t, year%100, y%100)
				}
			}
		}
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "תאריך עסקה", Label("תאריך\nעסקה"))
	assert.Equal(t, "סכום חיוב", Label("  סכום \r\n חיוב "))
	assert.Equal(t, "יתרה", Label("\u200fיתרה"))
}

func TestHasDigit(t *testing.T) {
	assert.True(t, HasDigit("15/04"))
	assert.False(t, HasDigit("תאריך"))
}
