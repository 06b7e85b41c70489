package manipulation

import (
	"testing"

	"github.com/ginjaninja78/collections-automation/internal/config"
	"github.com/ginjaninja78/collections-automation/internal/sheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func accounts() *sheet.Table {
	t := sheet.New("Sheet1", "LAN", "NAME", "STATUS", "BALANCE")
	t.Append(sheet.Text("lan-1"), sheet.Text(" Ana Cruz "), sheet.Text("Active"), sheet.Float(1500))
	t.Append(sheet.Text("lan-2"), sheet.Text("Ben Reyes"), sheet.Text("closed"), sheet.Float(0))
	t.Append(sheet.Text("lan-3"), sheet.Text("Cara Lim"), sheet.Text("INACTIVE"), sheet.Float(1500))
	return t
}

func column(t *sheet.Table, name string) []string {
	col := t.ColumnIndex(name)
	out := make([]string, t.Len())
	for i := range t.Rows {
		out[i] = t.At(i, col).String()
	}
	return out
}

func TestApplyTransformation(t *testing.T) {
	tests := []struct {
		action config.TransformationAction
		input  string
		want   string
	}{
		{config.TransformationAction{Type: "prepend_string", Value: "BPI-"}, "123", "BPI-123"},
		{config.TransformationAction{Type: "append_string", Value: "-00"}, "123", "123-00"},
		{config.TransformationAction{Type: "uppercase"}, "Ana", "ANA"},
		{config.TransformationAction{Type: "lowercase"}, "Ana", "ana"},
		{config.TransformationAction{Type: "trim"}, "  Ana \t", "Ana"},
	}
	for _, tt := range tests {
		t.Run(tt.action.Type, func(t *testing.T) {
			got, err := ApplyTransformation(tt.input, tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ApplyTransformation("x", config.TransformationAction{Type: "custom_function"})
	assert.ErrorContains(t, err, "unknown transformation type")
}

func TestAddColumn(t *testing.T) {
	t.Run("fixed value", func(t *testing.T) {
		tbl := accounts()
		stats, err := Apply(tbl, []config.Manipulation{
			{Type: config.ManipulationAddColumn, Column: "CAMPAIGN", Value: "BPI"},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, stats.ColumnsAdded)
		assert.Equal(t, []string{"LAN", "NAME", "STATUS", "BALANCE", "CAMPAIGN"}, tbl.Headers)
		assert.Equal(t, []string{"BPI", "BPI", "BPI"}, column(tbl, "CAMPAIGN"))
	})

	t.Run("copy keeps cell type", func(t *testing.T) {
		tbl := accounts()
		_, err := Apply(tbl, []config.Manipulation{
			{Type: config.ManipulationAddColumn, Column: "OB", Source: "BALANCE"},
		})
		require.NoError(t, err)
		assert.Equal(t, sheet.KindNumber, tbl.At(0, tbl.ColumnIndex("OB")).Kind)
	})

	t.Run("copy through actions", func(t *testing.T) {
		tbl := accounts()
		_, err := Apply(tbl, []config.Manipulation{{
			Type:   config.ManipulationAddColumn,
			Column: "ACCOUNT",
			Source: "LAN",
			Actions: []config.TransformationAction{
				{Type: "uppercase"},
				{Type: "prepend_string", Value: "BPI/"},
				{Type: "append_string", Value: "/X"},
			},
		}})
		require.NoError(t, err)
		assert.Equal(t, []string{"BPI/LAN-1/X", "BPI/LAN-2/X", "BPI/LAN-3/X"}, column(tbl, "ACCOUNT"))
	})

	t.Run("existing column is replaced in place", func(t *testing.T) {
		tbl := accounts()
		stats, err := Apply(tbl, []config.Manipulation{{
			Type:    config.ManipulationAddColumn,
			Column:  "NAME",
			Source:  "NAME",
			Actions: []config.TransformationAction{{Type: "trim"}, {Type: "lowercase"}},
		}})
		require.NoError(t, err)
		assert.Equal(t, 0, stats.ColumnsAdded)
		assert.Len(t, tbl.Headers, 4)
		assert.Equal(t, []string{"ana cruz", "ben reyes", "cara lim"}, column(tbl, "NAME"))
	})

	t.Run("missing source", func(t *testing.T) {
		_, err := Apply(accounts(), []config.Manipulation{
			{Type: config.ManipulationAddColumn, Column: "X", Source: "NOPE"},
		})
		assert.ErrorContains(t, err, `source column "NOPE" not found`)
	})
}

func TestRemoveAndRenameColumns(t *testing.T) {
	tbl := accounts()
	stats, err := Apply(tbl, []config.Manipulation{
		{Type: config.ManipulationRemoveColumns, Columns: []string{"STATUS", "BALANCE"}},
		{Type: config.ManipulationRenameColumn, Column: "NAME", Value: "BORROWER"},
	})
	require.NoError(t, err)
	assert.Equal(t, Stats{ColumnsRemoved: 2, ColumnsRenamed: 1}, stats)
	assert.Equal(t, []string{"LAN", "BORROWER"}, tbl.Headers)
	assert.Len(t, tbl.Rows[0], 2)

	_, err = Apply(tbl, []config.Manipulation{{Type: config.ManipulationRemoveColumns, Columns: []string{"STATUS"}}})
	assert.ErrorContains(t, err, "manipulation 1 (remove_columns) failed")

	_, err = Apply(tbl, []config.Manipulation{{Type: config.ManipulationRenameColumn, Column: "NAME", Value: "X"}})
	assert.ErrorContains(t, err, `column "NAME" not found`)
}

func TestFilterRows(t *testing.T) {
	tests := []struct {
		name   string
		m      config.Manipulation
		wanted []string
	}{
		{
			name:   "contains ignores case",
			m:      config.Manipulation{Type: config.ManipulationFilterRows, Column: "STATUS", Value: "active"},
			wanted: []string{"lan-1", "lan-3"},
		},
		{
			name:   "equals ignores case",
			m:      config.Manipulation{Type: config.ManipulationFilterRows, Column: "STATUS", Value: "active", Match: config.MatchEquals},
			wanted: []string{"lan-1"},
		},
		{
			name:   "numeric equality",
			m:      config.Manipulation{Type: config.ManipulationFilterRows, Column: "BALANCE", Value: "1500.00"},
			wanted: []string{"lan-1", "lan-3"},
		},
		{
			name:   "numeric value is not a substring match",
			m:      config.Manipulation{Type: config.ManipulationFilterRows, Column: "BALANCE", Value: "15"},
			wanted: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := accounts()
			stats, err := Apply(tbl, []config.Manipulation{tt.m})
			require.NoError(t, err)
			assert.Equal(t, 3-len(tt.wanted), stats.RowsFiltered)
			assert.Equal(t, tt.wanted, column(tbl, "LAN"))
		})
	}
}

func TestMatchesBlankCell(t *testing.T) {
	assert.False(t, Matches(sheet.Empty(), "", config.MatchContains))
	assert.True(t, Matches(sheet.Text("PTP NEW"), "ptp", ""))
}

func TestApplyUnknownType(t *testing.T) {
	_, err := Apply(accounts(), []config.Manipulation{{Type: "formula"}})
	assert.ErrorContains(t, err, "unknown manipulation type")
}
