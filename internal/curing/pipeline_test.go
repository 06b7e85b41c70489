package curing

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ginjaninja78/collections-automation/internal/sheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = func() time.Time {
	return time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)
}

type srcRow struct {
	barcode   string
	collector string
	date      sheet.Cell
	amount    sheet.Cell
	flag      string
	phone1    string
	phone2    string
}

func (r srcRow) cells() []sheet.Cell {
	row := make([]sheet.Cell, 43)
	row[0] = sheet.Text(r.barcode)
	row[1] = sheet.Text(r.collector)
	row[2] = r.date
	row[3] = r.amount
	row[7] = sheet.Text(r.flag)
	if r.barcode != "" {
		row[16] = sheet.Text("LAN-" + r.barcode)
		row[17] = sheet.Text("NAME " + r.barcode)
	}
	row[41] = sheet.Text(r.phone1)
	row[42] = sheet.Text(r.phone2)
	return row
}

func newSource(rows ...srcRow) *sheet.Table {
	headers := make([]string, 43)
	for i := range headers {
		headers[i] = fmt.Sprintf("COL%d", i+1)
	}
	headers[0] = "BARCODE"
	headers[1] = "COLLECTOR"

	t := sheet.New("Sheet1", headers...)
	for _, r := range rows {
		t.Append(r.cells()...)
	}
	return t
}

func column(t *sheet.Table, col int) []string {
	out := make([]string, 0, t.Len())
	for i := range t.Rows {
		out = append(out, t.At(i, col).String())
	}
	return out
}

func run(t *testing.T, src *sheet.Table) *Output {
	t.Helper()
	out, err := Run(src, Options{Now: fixedNow})
	require.NoError(t, err)
	return out
}

// =============================================================================
// CLASSIFIER
// =============================================================================

func TestClassifyPartitionsEveryRow(t *testing.T) {
	src := newSource(
		srcRow{barcode: "A", collector: "C1"},
		srcRow{barcode: "B", collector: "C1", flag: "PTP"},
		srcRow{barcode: "C", collector: DefaultSpecialCollector, flag: "PTP"},
		srcRow{barcode: "D", collector: "C2", flag: "CALLBACK"},
		srcRow{barcode: "E", collector: DefaultSpecialCollector},
		srcRow{barcode: "F", collector: "C2", flag: "KEPT PTP"},
	)

	buckets := Classify(src.Rows, DefaultLayout(), DefaultSpecialCollector)

	assert.Equal(t, src.Len(), buckets.Total())
	assert.Len(t, buckets[CategoryNegotiation], 2)
	assert.Len(t, buckets[CategoryPTPFollowUp], 2)
	assert.Len(t, buckets[CategorySpecialCollector], 2)

	seen := make(map[string]int)
	for _, c := range Categories {
		for _, row := range buckets[c] {
			seen[row[0].String()]++
		}
	}
	for _, r := range src.Rows {
		assert.Equal(t, 1, seen[r[0].String()], "barcode %s", r[0].String())
	}

	assert.Equal(t, "A", buckets[CategoryNegotiation][0][0].String())
	assert.Equal(t, "D", buckets[CategoryNegotiation][1][0].String())
}

// =============================================================================
// EXPANDER
// =============================================================================

func TestExpandIsLabelMajor(t *testing.T) {
	src := newSource(
		srcRow{barcode: "A", collector: "C1"},
		srcRow{barcode: "B", collector: "C1"},
		srcRow{barcode: "C", collector: "C1"},
	)

	out := run(t, src)

	assert.Equal(t,
		[]string{"A", "B", "C", "A", "B", "C", "A", "B", "C"},
		column(out.Remarks, 0))

	status := column(out.Remarks, 1)
	assert.Equal(t, LabelPTPNew.Status, status[0])
	assert.Equal(t, LabelPTPNew.Status, status[2])
	assert.Equal(t, LabelPTPFollowUp.Status, status[3])
	assert.Equal(t, LabelPaymentCured.Status, status[8])
}

func TestExpandCategoryOrderAndCount(t *testing.T) {
	src := newSource(
		srcRow{barcode: "S1", collector: DefaultSpecialCollector},
		srcRow{barcode: "P1", collector: "C1", flag: "PTP"},
		srcRow{barcode: "N1", collector: "C1"},
		srcRow{barcode: "P2", collector: "C1", flag: "PTP"},
	)

	buckets := Classify(src.Rows, DefaultLayout(), DefaultSpecialCollector)
	items := Expand(buckets, DefaultLayout())

	require.Len(t, items, ExpectedItems(buckets))
	assert.Equal(t, 1*3+2*2+1*2, len(items))

	var got []string
	for _, it := range items {
		got = append(got, it.Barcode.String()+"/"+it.Label.Status)
	}
	assert.Equal(t, []string{
		"N1/" + LabelPTPNew.Status,
		"N1/" + LabelPTPFollowUp.Status,
		"N1/" + LabelPaymentCured.Status,
		"P1/" + LabelPTPFollowUp.Status,
		"P2/" + LabelPTPFollowUp.Status,
		"P1/" + LabelPaymentCured.Status,
		"P2/" + LabelPaymentCured.Status,
		"S1/" + LabelPTPNewGhost.Status,
		"S1/" + LabelPaymentCured.Status,
	}, got)
}

func TestExpandSkipsEmptyCategories(t *testing.T) {
	src := newSource(srcRow{barcode: "P1", collector: "C1", flag: "PTP"})
	out := run(t, src)
	assert.Equal(t, 2, out.Remarks.Len())
	assert.Equal(t, 0, out.Stats.Categories[CategoryNegotiation])
}

// =============================================================================
// ENRICHER
// =============================================================================

func TestEnrichTimeOfDayPerLabel(t *testing.T) {
	src := newSource(srcRow{barcode: "A", collector: "C1", date: sheet.Text("2024-01-10")})
	out := run(t, src)

	assert.Equal(t, []string{
		"01/10/2024 02:40:00 PM",
		"01/10/2024 02:50:00 PM",
		"01/10/2024 03:00:00 PM",
	}, column(out.Remarks, colRemarkDate))
	assert.Equal(t, []string{"01/10/2024", "01/10/2024", "01/10/2024"}, column(out.Remarks, colPTPDate))
	assert.Equal(t, []string{"", "", "01/10/2024"}, column(out.Remarks, colClaimPaidDate))
}

func TestEnrichNativeDateKeepsCalendarDay(t *testing.T) {
	native := sheet.Time(time.Date(2024, 2, 29, 9, 15, 0, 0, time.UTC))
	src := newSource(srcRow{barcode: "G", collector: DefaultSpecialCollector, date: native})
	out := run(t, src)

	assert.Equal(t, []string{
		"02/29/2024 02:40:00 PM",
		"02/29/2024 03:00:00 PM",
	}, column(out.Remarks, colRemarkDate))
	assert.Equal(t, LabelPTPNewGhost.Status, out.Remarks.At(0, 1).String())
}

func TestEnrichAmountInversion(t *testing.T) {
	src := newSource(srcRow{barcode: "A", collector: "C1", flag: "PTP", amount: sheet.Float(1500.5)})
	out := run(t, src)

	const ptpAmount, claimAmount = 8, 9

	// follow-up label
	assert.Equal(t, "1500.5", out.Remarks.At(0, ptpAmount).String())
	assert.True(t, out.Remarks.At(0, claimAmount).IsEmpty())

	// payment label
	assert.True(t, out.Remarks.At(1, ptpAmount).IsEmpty())
	assert.Equal(t, "1500.5", out.Remarks.At(1, claimAmount).String())
}

func TestEnrichRemarkAndPhone(t *testing.T) {
	src := newSource(srcRow{
		barcode:   "A",
		collector: "C1",
		phone1:    "639171234567",
		phone2:    "09998887777",
	})
	out := run(t, src)

	const remark, remarkBy, phone = 6, 10, 11

	assert.Equal(t, []string{
		"1_09171234567 - PTP NEW",
		"09171234567 - FPTP",
		CuredRemark,
	}, column(out.Remarks, remark))
	assert.Equal(t, []string{"09171234567", "09171234567", ""}, column(out.Remarks, phone))
	assert.Equal(t, []string{"C1", "C1", "C1"}, column(out.Remarks, remarkBy))
}

func TestEnrichPhoneFallsBackToPhone2(t *testing.T) {
	src := newSource(srcRow{barcode: "A", collector: "C1", phone2: "0917-555-0000"})
	out := run(t, src)

	assert.Equal(t, "1_09175550000 - PTP NEW", out.Remarks.At(0, 6).String())
	assert.Equal(t, "09175550000", out.Remarks.At(0, 11).String())
}

func TestEnrichLastOccurrenceWins(t *testing.T) {
	src := newSource(
		srcRow{barcode: "A", collector: "FIRST", amount: sheet.Float(100)},
		srcRow{barcode: "A", collector: "LAST", amount: sheet.Float(200)},
	)
	out := run(t, src)

	for i := range out.Remarks.Rows {
		assert.Equal(t, "LAST", out.Remarks.At(i, 10).String())
	}
}

func TestEnrichUnparseableDateUsesClock(t *testing.T) {
	src := newSource(srcRow{barcode: "A", collector: "C1", flag: "PTP", date: sheet.Text("sometime")})
	out := run(t, src)

	assert.Equal(t, "03/15/2024 02:50:00 PM", out.Remarks.At(0, colRemarkDate).String())
	assert.Equal(t, "03/15/2024 03:00:00 PM", out.Remarks.At(1, colRemarkDate).String())
	assert.Empty(t, out.Remarks.At(1, colClaimPaidDate).String())
	assert.Equal(t, 2, out.Stats.DateFallbacks)
}

func TestEnrichBlankDateLeavesDatesBlank(t *testing.T) {
	src := newSource(srcRow{barcode: "A", collector: "C1"})
	out := run(t, src)

	for i := range out.Remarks.Rows {
		assert.True(t, out.Remarks.At(i, colRemarkDate).IsEmpty())
		assert.True(t, out.Remarks.At(i, colPTPDate).IsEmpty())
	}
	assert.Zero(t, out.Stats.DateFallbacks)
}

func TestEnrichLookupMissBlanksRow(t *testing.T) {
	src := newSource(srcRow{collector: "C1", date: sheet.Text("2024-01-10"), amount: sheet.Float(10)})
	out := run(t, src)

	require.Equal(t, 3, out.Remarks.Len())
	assert.Equal(t, 3, out.Stats.LookupMisses)
	for i, row := range out.Remarks.Rows {
		assert.NotEmpty(t, row[1].String(), "status kept on row %d", i)
		for col, c := range row {
			if col == 1 {
				continue
			}
			assert.True(t, c.IsEmpty(), "row %d col %d", i, col)
		}
	}
}

func TestRemarksTextColumns(t *testing.T) {
	out := run(t, newSource(srcRow{barcode: "A", collector: "C1"}))
	assert.Equal(t, RemarkHeaders, out.Remarks.Headers)
	assert.Equal(t, sheet.FormatText, out.Remarks.FormatOf(colRemarkDate))
	assert.Equal(t, sheet.FormatText, out.Remarks.FormatOf(colPTPDate))
	assert.Equal(t, sheet.FormatText, out.Remarks.FormatOf(colClaimPaidDate))
	assert.Equal(t, sheet.FormatGeneral, out.Remarks.FormatOf(0))
}

// =============================================================================
// PROJECTOR
// =============================================================================

func TestReshuffleFirstMatchWins(t *testing.T) {
	src := newSource(
		srcRow{barcode: "A1", collector: "Q"},
		srcRow{barcode: "A2", collector: "Q"},
		srcRow{barcode: "B100", collector: "X"},
		srcRow{barcode: "A3", collector: "Q"},
		srcRow{barcode: "A4", collector: "Q"},
		srcRow{barcode: "A5", collector: "Q"},
		srcRow{barcode: "B100", collector: "Y"},
	)
	out := run(t, src)

	assert.Equal(t, []string{"BARCODE", ReshuffleCollectorHeader}, out.Reshuffle.Headers)
	require.Equal(t, src.Len(), out.Reshuffle.Len())
	assert.Equal(t, "B100", out.Reshuffle.At(2, 0).String())
	assert.Equal(t, "X", out.Reshuffle.At(2, 1).String())
	assert.Equal(t, "B100", out.Reshuffle.At(6, 0).String())
	assert.Equal(t, "X", out.Reshuffle.At(6, 1).String())
}

func TestPayments(t *testing.T) {
	src := newSource(
		srcRow{barcode: "A", collector: "C1", amount: sheet.Float(2500), date: sheet.Text("2024-01-10 10:00:00")},
		srcRow{barcode: "B", collector: "C1", amount: sheet.Float(0), date: sheet.Time(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))},
		srcRow{barcode: "C", collector: "C1", date: sheet.Text("May 1st")},
		srcRow{barcode: "D", collector: "C1"},
	)
	out := run(t, src)
	p := out.Payments

	assert.Equal(t, PaymentHeaders, p.Headers)
	require.Equal(t, 4, p.Len())

	assert.Equal(t, "LAN-A", p.At(0, 0).String())
	assert.True(t, p.At(0, 1).IsEmpty())
	assert.Equal(t, "NAME A", p.At(0, 2).String())
	assert.True(t, p.At(0, 3).IsEmpty())
	assert.Equal(t, "2500", p.At(0, 4).String())

	assert.Equal(t, []string{"01/10/2024", "05/01/2024", "May 1st", ""}, column(p, colPaymentDate))
	assert.True(t, p.At(1, 4).IsEmpty(), "zero amount is blank")
	assert.Equal(t, sheet.FormatText, p.FormatOf(colPaymentDate))
}

// =============================================================================
// ORCHESTRATOR
// =============================================================================

func TestRunStructuralError(t *testing.T) {
	src := sheet.New("Sheet1", "BARCODE", "COLLECTOR")
	src.Append(sheet.Text("A"), sheet.Text("C1"))

	out, err := Run(src, Options{})
	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, ErrStructural))

	var serr *StructuralError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, 43, serr.Required)
	assert.Equal(t, 2, serr.Actual)
}

func TestRunRejectsInvalidLayout(t *testing.T) {
	layout := DefaultLayout()
	layout.Phone2 = 50

	_, err := Run(newSource(), Options{Layout: layout})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrStructural))
}

func TestRunCountsAndIdempotence(t *testing.T) {
	src := newSource(
		srcRow{barcode: "N1", collector: "C1", date: sheet.Text("2024-01-10"), amount: sheet.Float(10)},
		srcRow{barcode: "N2", collector: "C2", flag: "CALL", date: sheet.Text("bad date")},
		srcRow{barcode: "P1", collector: "C1", flag: "PTP", amount: sheet.Float(99.99)},
		srcRow{barcode: "S1", collector: DefaultSpecialCollector, flag: "PTP", phone1: "9171112222"},
	)

	first := run(t, src)
	second := run(t, src)

	assert.Equal(t, 2*3+1*2+1*2, first.Remarks.Len())
	assert.Equal(t, src.Len(), first.Stats.SourceRows)
	assert.Equal(t, first.Remarks.Len(), first.Stats.RemarkRows)
	assert.Equal(t, src.Len(), first.Payments.Len())
	assert.Equal(t, src.Len(), first.Reshuffle.Len())

	assert.Equal(t, first.Remarks.Rows, second.Remarks.Rows)
	assert.Equal(t, first.Reshuffle.Rows, second.Reshuffle.Rows)
	assert.Equal(t, first.Payments.Rows, second.Payments.Rows)
}

func TestRunDoesNotModifySource(t *testing.T) {
	src := newSource(srcRow{barcode: "A", collector: "C1", phone1: "9171234567"})
	before := src.Clone()

	run(t, src)
	assert.Equal(t, before.Rows, src.Rows)
}

func TestLabelTimeOfDay(t *testing.T) {
	tests := []struct {
		label Label
		want  [3]int
	}{
		{LabelPTPNew, [3]int{14, 40, 0}},
		{LabelPTPNewGhost, [3]int{14, 40, 0}},
		{LabelPTPFollowUp, [3]int{14, 50, 0}},
		{LabelPaymentCured, [3]int{15, 0, 0}},
		{Label{Status: "OTHER"}, [3]int{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.label.Status, func(t *testing.T) {
			h, m, s := tt.label.TimeOfDay()
			assert.Equal(t, tt.want, [3]int{h, m, s})
		})
	}
}
