package endorsement

import (
	"testing"
	"time"

	"github.com/ginjaninja78/collections-automation/internal/sheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func col(t *testing.T, tbl *sheet.Table, name string) int {
	t.Helper()
	i := tbl.ColumnIndex(name)
	require.GreaterOrEqual(t, i, 0, "column %s", name)
	return i
}

func TestRemap(t *testing.T) {
	src := sheet.New("Sheet1",
		"LAN", "NAME", "PAST DUE", "PAYOFF AMOUNT", "EMAIL",
		"CONTACT NUMBER 1", "CONTACT NUMBER 2", "ENDO DATE", "DPD", "EXTRA")
	src.Append(
		sheet.Text("L001"), sheet.Text("JUAN DELA CRUZ"), sheet.Float(1234.567), sheet.Text("n/a"),
		sheet.Text("juan@example.com"), sheet.Text("639171234567"), sheet.Float(9181234567),
		sheet.Time(time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)), sheet.Float(31), sheet.Text("ignored"),
	)
	src.Append(
		sheet.Text("L002"), sheet.Text("MARIA"), sheet.Text(" 99.5 "), sheet.Empty(),
		sheet.Empty(), sheet.Empty(), sheet.Text("0917-000-1111"),
		sheet.Text("4/15/2024"), sheet.Empty(), sheet.Empty(),
	)

	out, stats, err := Remap(src)
	require.NoError(t, err)

	assert.Equal(t, Headers, out.Headers)
	require.Equal(t, 2, out.Len())
	assert.Equal(t, 2, stats.Rows)
	assert.Equal(t, 2, stats.CoercedToZero)
	assert.ElementsMatch(t, []string{"CTL4", "PRINCIPAL", "LPC", "ADA SHORTAGE", "UNIT"}, stats.MissingColumns)

	assert.Equal(t, "L001", out.At(0, col(t, out, "LAN")).String())
	assert.Equal(t, "L001", out.At(0, col(t, out, "CH CODE")).String())
	assert.Equal(t, "JUAN DELA CRUZ", out.At(0, col(t, out, "NAME")).String())
	assert.Equal(t, "1234.57", out.At(0, col(t, out, "PAST DUE")).String())
	assert.Equal(t, "0", out.At(0, col(t, out, "PAYOFF AMOUNT")).String())
	assert.Equal(t, "juan@example.com", out.At(0, col(t, out, "EMAIL_ALS")).String())
	assert.Equal(t, "09171234567", out.At(0, col(t, out, "MOBILE_NO_ALS")).String())
	assert.Equal(t, "09181234567", out.At(0, col(t, out, "MOBILE_ALFES")).String())
	assert.Equal(t, "04/02/2024", out.At(0, col(t, out, "DATE REFERRED")).String())
	assert.Equal(t, "31", out.At(0, col(t, out, "DPD")).String())

	assert.Equal(t, "99.5", out.At(1, col(t, out, "PAST DUE")).String())
	assert.Equal(t, "0", out.At(1, col(t, out, "PAYOFF AMOUNT")).String())
	assert.Equal(t, "09170001111", out.At(1, col(t, out, "MOBILE_ALFES")).String())
	assert.Equal(t, "04/15/2024", out.At(1, col(t, out, "DATE REFERRED")).String())

	for i := range out.Rows {
		assert.True(t, out.At(i, col(t, out, "LANDLINE_NO_ALFES")).IsEmpty())
		assert.True(t, out.At(i, col(t, out, "CTL4")).IsEmpty())
		assert.True(t, out.At(i, col(t, out, "PRINCIPAL")).IsEmpty())
	}

	assert.Equal(t, sheet.FormatDecimal2, out.FormatOf(col(t, out, "PAST DUE")))
	assert.Equal(t, sheet.FormatText, out.FormatOf(col(t, out, "DATE REFERRED")))
	assert.Equal(t, sheet.FormatGeneral, out.FormatOf(col(t, out, "LAN")))
}

func TestRemapUnparseableDateKeptVerbatim(t *testing.T) {
	src := sheet.New("Sheet1", "LAN", "ENDO DATE")
	src.Append(sheet.Text("L1"), sheet.Text("Q2 batch"))

	out, _, err := Remap(src)
	require.NoError(t, err)
	assert.Equal(t, "Q2 batch", out.At(0, col(t, out, "DATE REFERRED")).String())
}

func TestRemapMissingLAN(t *testing.T) {
	src := sheet.New("Sheet1", "NAME")
	_, _, err := Remap(src)
	assert.ErrorIs(t, err, ErrMissingLAN)
}

func TestToNumber(t *testing.T) {
	tests := []struct {
		name   string
		cell   sheet.Cell
		want   string
		wantOK bool
	}{
		{"number", sheet.Float(12.345), "12.345", true},
		{"text", sheet.Text("1500.00"), "1500", true},
		{"padded text", sheet.Text(" 7 "), "7", true},
		{"comma text", sheet.Text("1,500"), "0", false},
		{"blank", sheet.Empty(), "0", false},
		{"time", sheet.Time(time.Now()), "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := ToNumber(tt.cell)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, d.String())
		})
	}
}
