package window

import (
	"sort"
	"time"

	"github.com/sartorproj/covidframe/frame"
	"github.com/sartorproj/covidframe/reshape"
	"github.com/sartorproj/covidframe/timeseries"
)

// Bucket key columns added by BucketedMean.
const (
	BucketStart = "bucket_start"
	BucketEnd   = "bucket_end"
)

// MeanPrefix prefixes every averaged column name.
const MeanPrefix = "mean_"

// RollingOptions configures RollingMean.
type RollingOptions struct {
	// Window is the number of rows averaged. Must be at least 1.
	Window int
	// Centered places the window around each row instead of ending at it.
	Centered bool
	// DropOriginals removes the averaged source columns from the result.
	DropOriginals bool
}

// DefaultRollingOptions returns a trailing seven-day window that keeps the
// source columns.
func DefaultRollingOptions() RollingOptions {
	return RollingOptions{Window: 7}
}

// RollingMean adds a mean_<col> column for each value column holding the
// mean of up to opts.Window rows of the same group, in date order.
//
// Windows count rows, not calendar days, and are clipped at the edges of a
// group, so every row gets the mean of the points available. NaN values are
// skipped. keyColumns defaults to the table's schema keys and an empty
// valueColumns means every metric column.
//
// A wide table is averaged along its date headers and returned wide with
// metric mean_<metric>; valueColumns and keyColumns are ignored for it.
func RollingMean(t *frame.Table, valueColumns, keyColumns []string, opts RollingOptions) (*frame.Table, error) {
	const op = "window.RollingMean"
	if opts.Window < 1 {
		return nil, frame.ArgumentError(op, "window must be at least 1, got %d", opts.Window)
	}
	roll := func(s *timeseries.Series) *timeseries.Series {
		return s.RollingMean(opts.Window, opts.Centered)
	}

	if t.Layout() == frame.Wide {
		values, err := timeseries.ApplyRows(t, roll)
		if err != nil {
			return nil, err
		}
		return timeseries.RebuildWide(t, MeanPrefix+t.MetricName(), values)
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
		means, err := timeseries.ApplyGroups(t, groups, col, roll)
		if err != nil {
			return nil, err
		}
		if out, err = out.WithMetric(MeanPrefix+col, means); err != nil {
			return nil, err
		}
	}
	if opts.DropOriginals {
		out = out.Drop(valueColumns...)
	}
	return out, nil
}

// BucketedMean splits the distinct dates of the whole table into
// consecutive buckets of x dates (the last may be shorter), tags every row
// with its bucket's first and last date, and adds mean_<col> holding the
// mean of the value column over the rows sharing the row's identifiers and
// bucket.
//
// With keepOriginals false the date and original metric columns are
// dropped and one row is kept per (identifiers, bucket). A wide table is
// melted first, keeping zero days; keepOriginals is then rejected because
// a wide table has no per-date rows to keep. An empty valueColumns means
// every metric column.
func BucketedMean(t *frame.Table, x int, keepOriginals bool, valueColumns []string) (*frame.Table, error) {
	const op = "window.BucketedMean"
	if x < 1 {
		return nil, frame.ArgumentError(op, "bucket size must be at least 1, got %d", x)
	}
	if t.Layout() == frame.Wide {
		if keepOriginals {
			return nil, &frame.InvalidShapeError{Op: op, Reason: "cannot keep original columns of a wide table", Columns: t.Columns()}
		}
		long, err := reshape.Melt(t, "")
		if err != nil {
			return nil, err
		}
		t = long
		valueColumns = []string{t.MetricNames()[0]}
	}
	if err := frame.RequireDate(t, op); err != nil {
		return nil, err
	}
	if len(valueColumns) == 0 {
		valueColumns = t.MetricNames()
	}
	if err := frame.RequireColumns(t, op, valueColumns...); err != nil {
		return nil, err
	}
	for _, v := range valueColumns {
		if !t.HasMetric(v) {
			return nil, frame.ArgumentError(op, "value column %q is not numeric", v)
		}
	}

	idNames := t.KeyNames()
	rowDates := t.Dates()
	starts, ends := buckets(rowDates, x)
	startCol := make([]frame.Value, len(rowDates))
	endCol := make([]frame.Value, len(rowDates))
	for r, d := range rowDates {
		startCol[r] = frame.Date(starts[d])
		endCol[r] = frame.Date(ends[d])
	}
	work, err := t.WithKey(BucketStart, startCol)
	if err != nil {
		return nil, err
	}
	if work, err = work.WithKey(BucketEnd, endCol); err != nil {
		return nil, err
	}

	groupCols := append(append([]string(nil), idNames...), BucketStart)
	groups, err := frame.GroupBy(work, groupCols)
	if err != nil {
		return nil, err
	}
	for _, col := range valueColumns {
		src, err := work.Values(col)
		if err != nil {
			return nil, err
		}
		means := make([]float64, len(src))
		for _, g := range groups {
			vals := make([]float64, len(g.Rows))
			for i, r := range g.Rows {
				vals[i] = src[r]
			}
			m := timeseries.New(vals).Mean()
			for _, r := range g.Rows {
				means[r] = m
			}
		}
		if work, err = work.WithMetric(MeanPrefix+col, means); err != nil {
			return nil, err
		}
	}

	if keepOriginals {
		return work, nil
	}
	first := make([]int, len(groups))
	for i, g := range groups {
		first[i] = g.Rows[0]
	}
	drop := append([]string{frame.DateColumn}, t.MetricNames()...)
	return work.Take(first).Drop(drop...), nil
}

// buckets maps every distinct date to the first and last date of its
// bucket.
func buckets(dates []time.Time, x int) (map[time.Time]time.Time, map[time.Time]time.Time) {
	seen := make(map[time.Time]bool)
	var distinct []time.Time
	for _, d := range dates {
		if !seen[d] {
			seen[d] = true
			distinct = append(distinct, d)
		}
	}
	sort.Slice(distinct, func(a, b int) bool { return distinct[a].Before(distinct[b]) })

	starts := make(map[time.Time]time.Time, len(distinct))
	ends := make(map[time.Time]time.Time, len(distinct))
	for lo := 0; lo < len(distinct); lo += x {
		hi := lo + x
		if hi > len(distinct) {
			hi = len(distinct)
		}
		for _, d := range distinct[lo:hi] {
			starts[d] = distinct[lo]
			ends[d] = distinct[hi-1]
		}
	}
	return starts, ends
}
