package source

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/opsdeck/opsdeck/internal/table"
	"github.com/xuri/excelize/v2"
)

// XLSXSource reads one sheet of a workbook. The first row carries the
// raw field names; each following row becomes one record with its origin
// position as RowIndex. Cells that parse as numbers stay numeric so ids
// exported as numbers keep matching their string forms downstream.
type XLSXSource struct {
	kind  table.Kind
	path  string
	sheet string
}

// NewXLSXSource creates a source for one sheet. An empty sheet name
// means the workbook's first sheet.
func NewXLSXSource(kind table.Kind, path, sheet string) *XLSXSource {
	return &XLSXSource{kind: kind, path: path, sheet: sheet}
}

func (s *XLSXSource) Kind() table.Kind { return s.kind }

func (s *XLSXSource) Fetch(ctx context.Context) (table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrUnavailable, s.path, err)
	}
	defer f.Close()

	sheet := s.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q in %s: %v", ErrUnavailable, sheet, s.path, err)
	}
	if len(rows) == 0 {
		return table.Table{}, nil
	}

	header := rows[0]
	out := make(table.Table, 0, len(rows)-1)
	for i, row := range rows[1:] {
		fields := make(map[string]any, len(header))
		for col, name := range header {
			name = strings.TrimSpace(name)
			if name == "" || col >= len(row) {
				continue
			}
			if v := sheetCell(row[col]); v != nil {
				fields[name] = v
			}
		}
		out = append(out, table.Record{RowIndex: i, Fields: fields})
	}
	return out, nil
}

// sheetCell maps a formatted cell to the record value model: blank is
// absent, a clean finite numeric rendering stays a number, everything
// else is the string as-is. "NaN" and "Inf" parse as floats but are not
// numbers the record model carries, so they stay strings.
func sheetCell(cell string) any {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return cell
}
