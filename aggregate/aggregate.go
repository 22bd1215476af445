package aggregate

import (
	"time"

	"github.com/sartorproj/covidframe/frame"
	"github.com/sartorproj/covidframe/timeseries"
)

// Func reduces the values of one group. Missing measurements (NaN) are
// passed through; each Func decides how to treat them.
type Func func(values []float64) float64

// Sum adds the non-NaN values. An empty or all-NaN group sums to 0.
func Sum(values []float64) float64 {
	return timeseries.New(values).Sum()
}

// Mean averages the non-NaN values. An empty or all-NaN group is NaN.
func Mean(values []float64) float64 {
	return timeseries.New(values).Mean()
}

// GroupSum sums valueColumns over every distinct tuple of keyColumns.
func GroupSum(t *frame.Table, keyColumns, valueColumns []string) (*frame.Table, error) {
	return By(t, "aggregate.GroupSum", keyColumns, valueColumns, Sum)
}

// GroupMean averages valueColumns over every distinct tuple of keyColumns.
func GroupMean(t *frame.Table, keyColumns, valueColumns []string) (*frame.Table, error) {
	return By(t, "aggregate.GroupMean", keyColumns, valueColumns, Mean)
}

// By groups t by keyColumns and reduces each value column with fn.
//
// For long tables keyColumns may include the date column; the result has a
// date column only if it does. Columns outside keyColumns and valueColumns
// are dropped. For wide tables keyColumns must be identifier columns, every
// date header is reduced and valueColumns is ignored.
//
// Rows with null keys group together and keep the null in the result. Groups
// appear in order of first appearance; that order is not part of the
// contract, so callers that need one sort explicitly.
func By(t *frame.Table, op string, keyColumns, valueColumns []string, fn Func) (*frame.Table, error) {
	if t.Layout() == frame.Wide {
		return byWide(t, op, keyColumns, fn)
	}
	if err := frame.RequireColumns(t, op, append(append([]string(nil), keyColumns...), valueColumns...)...); err != nil {
		return nil, err
	}
	for _, v := range valueColumns {
		if !t.HasMetric(v) {
			return nil, frame.ArgumentError(op, "value column %q is not numeric", v)
		}
	}

	groups, err := frame.GroupBy(t, keyColumns)
	if err != nil {
		return nil, err
	}

	datePos := -1
	var keyCols []frame.KeyColumn
	keyPos := make([]int, 0, len(keyColumns))
	for i, name := range keyColumns {
		if name == frame.DateColumn {
			datePos = i
			continue
		}
		keyCols = append(keyCols, frame.KeyColumn{Name: name, Values: make([]frame.Value, len(groups))})
		keyPos = append(keyPos, i)
	}
	var dates []time.Time
	if datePos >= 0 {
		dates = make([]time.Time, len(groups))
	}

	metrics := make([]frame.MetricColumn, len(valueColumns))
	for m, name := range valueColumns {
		src, err := t.Values(name)
		if err != nil {
			return nil, err
		}
		out := make([]float64, len(groups))
		buf := make([]float64, 0, 8)
		for gi, g := range groups {
			buf = buf[:0]
			for _, r := range g.Rows {
				buf = append(buf, src[r])
			}
			out[gi] = fn(buf)
		}
		metrics[m] = frame.MetricColumn{Name: name, Values: out}
	}

	for gi, g := range groups {
		if datePos >= 0 {
			dates[gi] = g.Key[datePos].Time()
		}
		for c, pos := range keyPos {
			keyCols[c].Values[gi] = g.Key[pos]
		}
	}

	var out *frame.Table
	if datePos >= 0 {
		out, err = frame.NewLong(dates, keyCols, metrics)
	} else {
		out, err = frame.NewKeyed(keyCols, metrics)
	}
	if err != nil {
		return nil, err
	}
	return frame.Inherit(out, t.Schema()), nil
}

func byWide(t *frame.Table, op string, keyColumns []string, fn Func) (*frame.Table, error) {
	for _, k := range keyColumns {
		if !t.HasKey(k) {
			if k == frame.DateColumn {
				return nil, frame.ArgumentError(op, "wide tables are aggregated per date header, not by %q", k)
			}
			return nil, &frame.MissingColumnError{Op: op, Missing: []string{k}, Columns: t.Columns()}
		}
	}

	groups, err := frame.GroupBy(t, keyColumns)
	if err != nil {
		return nil, err
	}

	keyCols := make([]frame.KeyColumn, len(keyColumns))
	for c, name := range keyColumns {
		vals := make([]frame.Value, len(groups))
		for gi, g := range groups {
			vals[gi] = g.Key[c]
		}
		keyCols[c] = frame.KeyColumn{Name: name, Values: vals}
	}

	dates := t.Dates()
	values := make([][]float64, len(dates))
	buf := make([]float64, 0, 8)
	for j, d := range dates {
		src, err := t.DateValues(d)
		if err != nil {
			return nil, err
		}
		values[j] = make([]float64, len(groups))
		for gi, g := range groups {
			buf = buf[:0]
			for _, r := range g.Rows {
				buf = append(buf, src[r])
			}
			values[j][gi] = fn(buf)
		}
	}

	out, err := frame.NewWide(t.MetricName(), keyCols, dates, values)
	if err != nil {
		return nil, err
	}
	return frame.Inherit(out, t.Schema()), nil
}
