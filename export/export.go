package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sartorproj/covidframe/frame"
)

// Format is a table file format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatJSON    Format = "json"
	FormatXLSX    Format = "xlsx"
	FormatParquet Format = "parquet"
)

// ParseFormat maps a format name or file extension to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")); f {
	case FormatCSV, FormatJSON, FormatXLSX, FormatParquet:
		return f, nil
	default:
		return "", frame.ArgumentError("export.ParseFormat", "unknown table format %q (want csv, json, xlsx or parquet)", s)
	}
}

// Write writes t to w in the given format. sheet is only used for XLSX.
func Write(w io.Writer, t *frame.Table, f Format, sheet string) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatJSON:
		return WriteJSON(w, t)
	case FormatXLSX:
		return WriteXLSX(w, t, sheet)
	case FormatParquet:
		return WriteParquet(w, t)
	default:
		return frame.ArgumentError("export.Write", "unknown table format %q", f)
	}
}

// WriteFile writes t to path in the format named by its extension.
func WriteFile(path string, t *frame.Table) (err error) {
	f, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return Write(file, t, f, "")
}

type column struct {
	name string
	kind frame.Kind
	cell func(row int) frame.Value
}

// columns describes every column of t with a single value kind. A key
// column mixing kinds is reported as strings.
func columns(t *frame.Table) ([]column, error) {
	names := t.Columns()
	out := make([]column, len(names))
	for i, name := range names {
		name := name
		out[i] = column{name: name, cell: func(row int) frame.Value {
			v, _ := t.Cell(name, row)
			return v
		}}
		switch {
		case name == frame.DateColumn && t.Layout() == frame.Long:
			out[i].kind = frame.KindDate
		case t.HasMetric(name):
			out[i].kind = frame.KindNumber
		default:
			vals, err := t.Keys(name)
			if err != nil {
				return nil, err
			}
			out[i].kind = keyKind(vals)
		}
	}
	return out, nil
}

func keyKind(vals []frame.Value) frame.Kind {
	kind := frame.KindNull
	for _, v := range vals {
		if v.IsNull() {
			continue
		}
		if kind == frame.KindNull {
			kind = v.Kind()
		} else if v.Kind() != kind {
			return frame.KindString
		}
	}
	if kind == frame.KindNull {
		return frame.KindString
	}
	return kind
}
