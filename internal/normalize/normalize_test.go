package normalize

import (
	"testing"
	"time"

	"github.com/ginjaninja78/collections-automation/internal/sheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMobile(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"639171234567", "09171234567"},
		{"9171234567", "09171234567"},
		{"0917-123-4567", "09171234567"},
		{" 09171234567 ", "09171234567"},
		{"63917123456", "63917123456"},
		{"(02) 8123 4567", "(02) 8123 4567"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeMobile(tt.in))
		})
	}
}

func TestParseDate(t *testing.T) {
	native := time.Date(2024, 1, 10, 9, 15, 0, 0, time.UTC)

	tests := []struct {
		name   string
		cell   sheet.Cell
		want   time.Time
		wantOK bool
	}{
		{"native", sheet.Time(native), native, true},
		{"date time text", sheet.Text("2024-01-10 09:15:00"), native, true},
		{"date text", sheet.Text("2024-01-10"), time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), true},
		{"unpadded date text", sheet.Text("2024-1-5"), time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), true},
		{"padded with spaces", sheet.Text(" 2024-01-10 "), time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), true},
		{"slash text not a source layout", sheet.Text("01/10/2024"), time.Time{}, false},
		{"garbage", sheet.Text("next week"), time.Time{}, false},
		{"number", sheet.Float(45301), time.Time{}, false},
		{"blank", sheet.Empty(), time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.cell, SourceLayouts...)
			require.Equal(t, tt.wantOK, ok)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestParseDateLenient(t *testing.T) {
	got, ok := ParseDate(sheet.Text("3/7/2024"), LenientLayouts...)
	require.True(t, ok)
	assert.Equal(t, "03/07/2024", FormatMDY(got))
}

func TestAtTimeOfDay(t *testing.T) {
	base := time.Date(2024, 1, 10, 23, 59, 59, 0, time.UTC)
	got := AtTimeOfDay(base, 14, 40, 0)
	assert.Equal(t, "01/10/2024 02:40:00 PM", got.Format(DateTimeLayout))
}
