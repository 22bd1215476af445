package export

import (
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/sartorproj/covidframe/frame"
)

// DefaultSheet names the worksheet when none is given.
const DefaultSheet = "data"

// WriteXLSX writes t to a single-sheet workbook: a bold header row, dates
// as spreadsheet dates, metrics as numbers and nulls as empty cells.
func WriteXLSX(w io.Writer, t *frame.Table, sheet string) error {
	if sheet == "" {
		sheet = DefaultSheet
	}
	cols, err := columns(t)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet %q: %w", sheet, err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	dateFmt := "yyyy-mm-dd"
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open sheet %q: %w", sheet, err)
	}
	header := make([]interface{}, len(cols))
	for i, c := range cols {
		header[i] = excelize.Cell{StyleID: bold, Value: c.name}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	row := make([]interface{}, len(cols))
	for r := 0; r < t.NumRows(); r++ {
		for i, c := range cols {
			row[i] = xlsxValue(c.cell(r), dateStyle)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func xlsxValue(v frame.Value, dateStyle int) interface{} {
	switch v.Kind() {
	case frame.KindNumber:
		if math.IsNaN(v.Float()) {
			return nil
		}
		return v.Float()
	case frame.KindDate:
		return excelize.Cell{StyleID: dateStyle, Value: v.Time()}
	case frame.KindString:
		return v.Str()
	default:
		return nil
	}
}
