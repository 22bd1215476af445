package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/sartorproj/covidframe/frame"
)

// WriteCSV writes t with a header row. Nulls and NaN become empty cells.
func WriteCSV(w io.Writer, t *frame.Table) error {
	cols, err := columns(t)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.name
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(cols))
	for r := 0; r < t.NumRows(); r++ {
		for i, c := range cols {
			record[i] = c.cell(r).String()
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes t as an array of objects keyed by column name. Nulls
// and NaN become JSON null.
func WriteJSON(w io.Writer, t *frame.Table) error {
	cols, err := columns(t)
	if err != nil {
		return err
	}
	rows := make([]map[string]interface{}, t.NumRows())
	for r := range rows {
		obj := make(map[string]interface{}, len(cols))
		for _, c := range cols {
			obj[c.name] = jsonValue(c.cell(r))
		}
		rows[r] = obj
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func jsonValue(v frame.Value) interface{} {
	switch v.Kind() {
	case frame.KindNumber:
		if math.IsNaN(v.Float()) || math.IsInf(v.Float(), 0) {
			return nil
		}
		return v.Float()
	case frame.KindString, frame.KindDate:
		return v.String()
	default:
		return nil
	}
}
