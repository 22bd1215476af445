package align

import (
	"math"
	"strconv"

	"github.com/sartorproj/covidframe/frame"
	"github.com/sartorproj/covidframe/reshape"
)

// ColumnName returns the name of the sequence column DaysSince writes,
// days_since_<minCount>_<metric>. minCount is printed without trailing
// zeros.
func ColumnName(metric string, minCount float64) string {
	return "days_since_" + strconv.FormatFloat(minCount, 'f', -1, 64) + "_" + metric
}

// DaysSince aligns groups on the day they first reached minCount.
//
// Rows whose metric is below minCount, or missing, are dropped. Within each
// group of keyColumns (default: the schema keys) the remaining rows are
// numbered 0, 1, 2, ... in date order. A wide table is melted first,
// keeping zero days, with metricColumn as the value column name.
//
// The result is always long, keeps the date column and is sorted by date
// and then keys.
func DaysSince(t *frame.Table, metricColumn string, minCount float64, keyColumns []string) (*frame.Table, error) {
	const op = "align.DaysSince"
	if t.Layout() == frame.Wide {
		long, err := reshape.Melt(t, metricColumn)
		if err != nil {
			return nil, err
		}
		t = long
	}
	if err := frame.RequireDate(t, op); err != nil {
		return nil, err
	}
	keys, err := frame.ResolveKeys(t, op, keyColumns)
	if err != nil {
		return nil, err
	}
	if err := frame.RequireColumns(t, op, metricColumn); err != nil {
		return nil, err
	}
	if !t.HasMetric(metricColumn) {
		return nil, frame.ArgumentError(op, "metric column %q is not numeric", metricColumn)
	}

	values, err := t.Values(metricColumn)
	if err != nil {
		return nil, err
	}
	kept := t.Filter(func(r int) bool {
		return !math.IsNaN(values[r]) && values[r] >= minCount
	})

	sortCols := append([]string{frame.DateColumn}, keys...)
	if err := frame.CheckUnique(kept, op, sortCols); err != nil {
		return nil, err
	}
	sorted, err := frame.SortBy(kept, sortCols...)
	if err != nil {
		return nil, err
	}

	// Rows are in date order now, so a running count per group is the
	// sequence number.
	groups, err := frame.GroupBy(sorted, keys)
	if err != nil {
		return nil, err
	}
	seq := make([]float64, sorted.NumRows())
	for _, g := range groups {
		for i, r := range g.Rows {
			seq[r] = float64(i)
		}
	}
	return sorted.WithMetric(ColumnName(metricColumn, minCount), seq)
}
