package delta

import (
	"github.com/sartorproj/covidframe/frame"
	"github.com/sartorproj/covidframe/timeseries"
)

// DailyPrefix prefixes every daily-change column name.
const DailyPrefix = "daily_"

// DailyOptions configures DailyChange.
type DailyOptions struct {
	// DropCumulative removes the cumulative source columns from the result.
	DropCumulative bool
}

// DailyChange converts cumulative counts to daily changes.
//
// For a long table each value column gets a daily_<col> column: per group
// of keyColumns (default: the schema keys) in ascending date order, the
// value minus the previous value of the group. The first row of a group
// keeps its full value. Rows are not reordered and results may be negative
// where the provider corrected a count downward. An empty valueColumns
// means every metric column.
//
// A wide table is differenced along its date headers and returned wide with
// metric daily_<metric>; valueColumns and keyColumns are ignored for it.
func DailyChange(t *frame.Table, valueColumns, keyColumns []string, opts DailyOptions) (*frame.Table, error) {
	const op = "delta.DailyChange"
	diff := func(s *timeseries.Series) *timeseries.Series { return s.OffsetDiff() }

	if t.Layout() == frame.Wide {
		values, err := timeseries.ApplyRows(t, diff)
		if err != nil {
			return nil, err
		}
		return timeseries.RebuildWide(t, DailyPrefix+t.MetricName(), values)
	}

	if len(valueColumns) == 0 {
		valueColumns = t.MetricNames()
	}
	groups, err := timeseries.GroupsByDate(t, op, valueColumns, keyColumns)
	if err != nil {
		return nil, err
	}
	out := t
	for _, col := range valueColumns {
		daily, err := timeseries.ApplyGroups(t, groups, col, diff)
		if err != nil {
			return nil, err
		}
		if out, err = out.WithMetric(DailyPrefix+col, daily); err != nil {
			return nil, err
		}
	}
	if opts.DropCumulative {
		out = out.Drop(valueColumns...)
	}
	return out, nil
}
