package cli

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/sartorproj/covidframe/export"
	"github.com/sartorproj/covidframe/frame"
)

// renderTable writes t in the configured output mode.
func renderTable(w io.Writer, t *frame.Table, cfg *Config) error {
	switch cfg.Output {
	case OutputCSV:
		return export.WriteCSV(w, t)
	case OutputJSON:
		return export.WriteJSON(w, t)
	default:
		return renderPretty(w, t, cfg.Limit)
	}
}

func renderPretty(w io.Writer, t *frame.Table, limit int) error {
	if t.NumRows() == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	cols := t.Columns()
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)

	header := make(table.Row, len(cols))
	var configs []table.ColumnConfig
	for i, c := range cols {
		header[i] = c
		if t.HasMetric(c) {
			configs = append(configs, table.ColumnConfig{Number: i + 1, Align: text.AlignRight})
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	n := t.NumRows()
	if limit > 0 && limit < n {
		n = limit
	}
	for r := 0; r < n; r++ {
		row := make(table.Row, len(cols))
		for i, c := range cols {
			v, err := t.Cell(c, r)
			if err != nil {
				return err
			}
			row[i] = formatCell(v)
		}
		tw.AppendRow(row)
	}

	tw.Render()
	if n < t.NumRows() {
		_, _ = fmt.Fprintf(w, "(%d of %d rows)\n", n, t.NumRows())
	} else {
		_, _ = fmt.Fprintf(w, "(%d rows)\n", n)
	}
	return nil
}

func formatCell(v frame.Value) string {
	if v.IsNull() {
		return "NULL"
	}
	return v.String()
}
