package source_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/opsdeck/opsdeck/internal/source"
	"github.com/opsdeck/opsdeck/internal/table"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]any{
		{"task_id", "Project id", "assignee_User_id", "status", "estimated_hours"},
		{"T1", "P1", "X1", "To Do", 8},
		{"T2", 101, "X2", "Done", nil},
		{"T3", "P1", "X1", "Open", "NaN"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	path := filepath.Join(t.TempDir(), "tasks.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestXLSXSource_Fetch(t *testing.T) {
	path := writeWorkbook(t)

	src := source.NewXLSXSource(table.KindTask, path, "")
	require.Equal(t, table.KindTask, src.Kind())

	tbl, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, tbl, 3)

	require.Equal(t, 0, tbl[0].RowIndex)
	require.Equal(t, "T1", tbl[0].Fields["task_id"])
	require.Equal(t, 8.0, table.Float(tbl[0].Fields["estimated_hours"]))

	// Numeric cells stay numeric and still match by string comparison.
	require.Equal(t, float64(101), tbl[1].Fields["Project id"])
	_, hasEst := tbl[1].Fields["estimated_hours"]
	require.False(t, hasEst, "blank cells stay absent")

	// "NaN" parses as a float but the value model carries no non-finite
	// numbers, so the cell stays a string and coerces to zero.
	require.Equal(t, "NaN", tbl[2].Fields["estimated_hours"])
	require.Equal(t, 0.0, table.Float(tbl[2].Fields["estimated_hours"]))
}

func TestXLSXSource_MissingFile(t *testing.T) {
	src := source.NewXLSXSource(table.KindTask, filepath.Join(t.TempDir(), "nope.xlsx"), "")
	_, err := src.Fetch(context.Background())
	require.ErrorIs(t, err, source.ErrUnavailable)
}
