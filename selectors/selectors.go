package selectors

import (
	"sort"
	"time"

	"github.com/sartorproj/covidframe/aggregate"
	"github.com/sartorproj/covidframe/frame"
	"github.com/sartorproj/covidframe/reshape"
)

// TopOptions configures TopX.
type TopOptions struct {
	// Metric ranks the regions.
	Metric string
	// RegionColumns identify a region. Defaults to the schema keys.
	RegionColumns []string
	// X is how many regions to keep.
	X int
	// CombineSubregions sums the kept rows per region (and date).
	CombineSubregions bool
	// OtherMetricsToKeep are summed alongside Metric when combining a long
	// table. Every other metric is dropped.
	OtherMetricsToKeep []string
	// Exclude removes any region one of whose key values is listed.
	Exclude []string
}

// TopX keeps the X regions with the largest Metric on the most recent date.
//
// Ranking sums Metric per region on that date after removing excluded
// regions, sorts ascending and keeps the last X, so ties resolve by the
// order regions first appear. The winners' rows on every date are then
// returned in the input's layout, optionally combined per region. Fewer
// than X available regions return all of them.
func TopX(t *frame.Table, opts TopOptions) (*frame.Table, error) {
	const op = "selectors.TopX"
	if opts.X < 1 {
		return nil, frame.ArgumentError(op, "x must be at least 1, got %d", opts.X)
	}
	regionCols, err := frame.ResolveKeys(t, op, opts.RegionColumns)
	if err != nil {
		return nil, err
	}

	long := t
	if t.Layout() == frame.Wide {
		if long, err = reshape.Melt(t, opts.Metric); err != nil {
			return nil, err
		}
	}
	if err := frame.RequireDate(long, op); err != nil {
		return nil, err
	}
	if err := frame.RequireColumns(long, op, opts.Metric); err != nil {
		return nil, err
	}
	metric, err := long.Values(opts.Metric)
	if err != nil {
		return nil, err
	}

	var last time.Time
	for _, d := range long.Dates() {
		if d.After(last) {
			last = d
		}
	}
	dates := long.Dates()
	var latest []int
	for r, d := range dates {
		if d.Equal(last) {
			latest = append(latest, r)
		}
	}

	excluded := make(map[string]bool, len(opts.Exclude))
	for _, e := range opts.Exclude {
		excluded[e] = true
	}
	groups, err := frame.GroupRows(long, regionCols, latest)
	if err != nil {
		return nil, err
	}
	type ranked struct {
		key string
		sum float64
	}
	var ranking []ranked
	for _, g := range groups {
		if anyExcluded(g.Key, excluded) {
			continue
		}
		vals := make([]float64, len(g.Rows))
		for i, r := range g.Rows {
			vals[i] = metric[r]
		}
		ranking = append(ranking, ranked{key: frame.KeyOf(g.Key), sum: aggregate.Sum(vals)})
	}
	sort.SliceStable(ranking, func(a, b int) bool { return ranking[a].sum < ranking[b].sum })
	if len(ranking) > opts.X {
		ranking = ranking[len(ranking)-opts.X:]
	}
	winners := make(map[string]bool, len(ranking))
	for _, r := range ranking {
		winners[r.key] = true
	}

	selected, err := filterGroups(t, regionCols, func(key []frame.Value) bool {
		return winners[frame.KeyOf(key)]
	})
	if err != nil {
		return nil, err
	}
	if !opts.CombineSubregions {
		return selected, nil
	}
	return combine(selected, regionCols, append([]string{opts.Metric}, opts.OtherMetricsToKeep...))
}

// SelectRegions keeps the rows whose regionColumn value, in string form, is
// one of regions. With combineSubregions the rows are summed per region
// (and date), keeping dataColumnsToKeep for long tables.
func SelectRegions(t *frame.Table, regionColumn string, regions []string, combineSubregions bool, dataColumnsToKeep []string) (*frame.Table, error) {
	const op = "selectors.SelectRegions"
	if err := frame.RequireColumns(t, op, regionColumn); err != nil {
		return nil, err
	}
	want := make(map[string]bool, len(regions))
	for _, r := range regions {
		want[r] = true
	}
	selected, err := filterGroups(t, []string{regionColumn}, func(key []frame.Value) bool {
		return want[key[0].String()]
	})
	if err != nil {
		return nil, err
	}
	if selected.NumRows() == 0 {
		return nil, &frame.EmptySelectionError{Op: op, Column: regionColumn, Values: append([]string(nil), regions...)}
	}
	if !combineSubregions {
		return selected, nil
	}
	return combine(selected, []string{regionColumn}, dataColumnsToKeep)
}

// filterGroups keeps, in table order, the rows of every group of names
// accepted by keep.
func filterGroups(t *frame.Table, names []string, keep func([]frame.Value) bool) (*frame.Table, error) {
	groups, err := frame.GroupBy(t, names)
	if err != nil {
		return nil, err
	}
	mask := make([]bool, t.NumRows())
	for _, g := range groups {
		if keep(g.Key) {
			for _, r := range g.Rows {
				mask[r] = true
			}
		}
	}
	return t.Filter(func(r int) bool { return mask[r] }), nil
}

// combine sums a selection per region. Long tables group by date as well
// and keep only metrics; wide tables sum every date header.
func combine(t *frame.Table, regionCols, metrics []string) (*frame.Table, error) {
	if t.Layout() == frame.Wide {
		return aggregate.GroupSum(t, regionCols, nil)
	}
	keys := regionCols
	if t.HasDate() {
		keys = append([]string{frame.DateColumn}, regionCols...)
	}
	return aggregate.GroupSum(t, keys, metrics)
}

func anyExcluded(key []frame.Value, excluded map[string]bool) bool {
	for _, v := range key {
		if excluded[v.String()] {
			return true
		}
	}
	return false
}
