package timeseries

import (
	"fmt"
	"time"

	"github.com/sartorproj/covidframe/frame"
)

// Transform maps a date-sorted series to a series of the same length.
// ApplyGroups and ApplyRows reject results of any other length.
type Transform func(*Series) *Series

// ApplyGroups runs fn over the series of column in every group, ordered by
// date, and returns the results scattered back to each row's original
// position. Rows are never reordered. Equal dates keep table order.
func ApplyGroups(t *frame.Table, groups []frame.Group, column string, fn Transform) ([]float64, error) {
	values, err := t.Values(column)
	if err != nil {
		return nil, err
	}
	dates := t.Dates()
	out := make([]float64, t.NumRows())
	for _, g := range groups {
		d := make([]time.Time, len(g.Rows))
		v := make([]float64, len(g.Rows))
		for i, r := range g.Rows {
			d[i] = dates[r]
			v[i] = values[r]
		}
		s, err := NewWithDates(d, v)
		if err != nil {
			return nil, err
		}
		s.Name = column
		sorted, perm := s.SortByDate()
		res := fn(sorted)
		if res.Len() != sorted.Len() {
			return nil, fmt.Errorf("timeseries: transform of %q returned %d values for %d rows", column, res.Len(), sorted.Len())
		}
		for i, p := range perm {
			out[g.Rows[p]] = res.Values[i]
		}
	}
	return out, nil
}

// ApplyRows runs fn along the date headers of every row of a wide table and
// returns the result in the same header-major shape NewWide takes.
func ApplyRows(t *frame.Table, fn Transform) ([][]float64, error) {
	dates := t.Dates()
	cols := make([][]float64, len(dates))
	for j, d := range dates {
		col, err := t.DateValues(d)
		if err != nil {
			return nil, err
		}
		cols[j] = col
	}

	out := make([][]float64, len(dates))
	for j := range out {
		out[j] = make([]float64, t.NumRows())
	}
	for r := 0; r < t.NumRows(); r++ {
		row := make([]float64, len(dates))
		for j := range dates {
			row[j] = cols[j][r]
		}
		s, err := NewWithDates(dates, row)
		if err != nil {
			return nil, err
		}
		s.Name = t.MetricName()
		res := fn(s)
		if res.Len() != s.Len() {
			return nil, fmt.Errorf("timeseries: transform of row %d returned %d values for %d dates", r, res.Len(), s.Len())
		}
		for j := range dates {
			out[j][r] = res.Values[j]
		}
	}
	return out, nil
}

// GroupsByDate checks a long table for a per-group date transform over
// valueColumns and returns its groups. keyColumns defaults to the schema
// keys; (date, keys) must be unique.
func GroupsByDate(t *frame.Table, op string, valueColumns, keyColumns []string) ([]frame.Group, error) {
	if err := frame.RequireDate(t, op); err != nil {
		return nil, err
	}
	keys, err := frame.ResolveKeys(t, op, keyColumns)
	if err != nil {
		return nil, err
	}
	if err := frame.RequireColumns(t, op, valueColumns...); err != nil {
		return nil, err
	}
	for _, v := range valueColumns {
		if !t.HasMetric(v) {
			return nil, frame.ArgumentError(op, "value column %q is not numeric", v)
		}
	}
	if err := frame.CheckUnique(t, op, append([]string{frame.DateColumn}, keys...)); err != nil {
		return nil, err
	}
	return frame.GroupBy(t, keys)
}

// RebuildWide returns a wide table with the identifiers and date headers of
// t and the given metric values.
func RebuildWide(t *frame.Table, metric string, values [][]float64) (*frame.Table, error) {
	keys := make([]frame.KeyColumn, 0, len(t.KeyNames()))
	for _, name := range t.KeyNames() {
		vals, err := t.Keys(name)
		if err != nil {
			return nil, err
		}
		keys = append(keys, frame.KeyColumn{Name: name, Values: vals})
	}
	out, err := frame.NewWide(metric, keys, t.Dates(), values)
	if err != nil {
		return nil, err
	}
	return frame.Inherit(out, t.Schema()), nil
}
