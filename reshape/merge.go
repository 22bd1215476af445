package reshape

import (
	"time"

	"github.com/sartorproj/covidframe/frame"
)

// MergeMetrics outer-joins long tables on (date, identifier columns). All
// tables must share the same identifier column names; every metric column
// of every table appears once in the result. Cells missing from a table are
// filled with 0. The result is sorted by date and then identifiers.
func MergeMetrics(tables ...*frame.Table) (*frame.Table, error) {
	const op = "reshape.MergeMetrics"
	if len(tables) == 0 {
		return nil, frame.ArgumentError(op, "no tables to merge")
	}

	idNames := tables[0].KeyNames()
	seenMetric := make(map[string]bool)
	var metricNames []string
	for _, t := range tables {
		if t.Layout() != frame.Long || !t.HasDate() {
			return nil, &frame.InvalidShapeError{Op: op, Reason: "table has no date column", Columns: t.Columns()}
		}
		if !sameSet(idNames, t.KeyNames()) {
			return nil, &frame.InvalidShapeError{Op: op, Reason: "tables have different identifier columns", Columns: t.Columns()}
		}
		for _, m := range t.MetricNames() {
			if seenMetric[m] {
				return nil, frame.ArgumentError(op, "metric %q appears in more than one table", m)
			}
			seenMetric[m] = true
			metricNames = append(metricNames, m)
		}
	}

	groupCols := append([]string{frame.DateColumn}, idNames...)
	index := make(map[string]int)
	var rowKeys [][]frame.Value
	metricPos := make(map[string]int, len(metricNames))
	for i, m := range metricNames {
		metricPos[m] = i
	}
	values := make([][]float64, len(metricNames))

	for _, t := range tables {
		groups, err := frame.GroupBy(t, groupCols)
		if err != nil {
			return nil, err
		}
		cols := make(map[string][]float64)
		for _, m := range t.MetricNames() {
			if cols[m], err = t.Values(m); err != nil {
				return nil, err
			}
		}
		for _, g := range groups {
			if len(g.Rows) > 1 {
				return nil, &frame.DuplicateKeyError{Op: op, Columns: groupCols, Key: g.Key}
			}
			key := g.Key
			k := frame.KeyOf(key)
			row, ok := index[k]
			if !ok {
				row = len(rowKeys)
				index[k] = row
				rowKeys = append(rowKeys, key)
				for i := range values {
					values[i] = append(values[i], 0)
				}
			}
			for m, col := range cols {
				values[metricPos[m]][row] = col[g.Rows[0]]
			}
		}
	}

	dates := make([]time.Time, len(rowKeys))
	keyCols := make([]frame.KeyColumn, len(idNames))
	for c, name := range idNames {
		keyCols[c] = frame.KeyColumn{Name: name, Values: make([]frame.Value, len(rowKeys))}
	}
	for r, key := range rowKeys {
		dates[r] = key[0].Time()
		for c := range idNames {
			keyCols[c].Values[r] = key[c+1]
		}
	}
	metricCols := make([]frame.MetricColumn, len(metricNames))
	for i, m := range metricNames {
		metricCols[i] = frame.MetricColumn{Name: m, Values: values[i]}
	}

	out, err := frame.NewLong(dates, keyCols, metricCols)
	if err != nil {
		return nil, err
	}
	out, err = frame.SortBy(out, groupCols...)
	if err != nil {
		return nil, err
	}
	return frame.Inherit(out, tables[0].Schema()), nil
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, s := range a {
		set[s] = true
	}
	for _, s := range b {
		if !set[s] {
			return false
		}
	}
	return true
}
