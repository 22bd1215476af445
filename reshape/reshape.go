package reshape

import (
	"math"
	"sort"
	"time"

	"github.com/sartorproj/covidframe/frame"
)

// ToLong converts a wide table to long layout. Each (identifier tuple, date)
// becomes one row with the value in a column named metricName (the table's
// own metric name when empty).
//
// Rows whose value is 0 or NaN are dropped so sparse zero-filled history
// is not materialized. Callers that need the zero rows use Melt.
func ToLong(t *frame.Table, metricName string) (*frame.Table, error) {
	return melt("reshape.ToLong", t, metricName, true)
}

// Melt is ToLong without dropping empty rows.
func Melt(t *frame.Table, metricName string) (*frame.Table, error) {
	return melt("reshape.Melt", t, metricName, false)
}

func melt(op string, t *frame.Table, metricName string, dropEmpty bool) (*frame.Table, error) {
	if t.Layout() != frame.Wide || len(t.Dates()) == 0 {
		return nil, &frame.InvalidShapeError{Op: op, Reason: "table has no date-typed column headers", Columns: t.Columns()}
	}
	if metricName == "" {
		metricName = t.MetricName()
	}
	if t.HasKey(metricName) {
		return nil, frame.ArgumentError(op, "metric name %q collides with an identifier column", metricName)
	}

	keyNames := t.KeyNames()
	src := make([][]frame.Value, len(keyNames))
	for c, name := range keyNames {
		vals, err := t.Keys(name)
		if err != nil {
			return nil, err
		}
		src[c] = vals
	}

	var dates []time.Time
	var values []float64
	keys := make([][]frame.Value, len(keyNames))
	for _, d := range t.Dates() {
		col, err := t.DateValues(d)
		if err != nil {
			return nil, err
		}
		for r, v := range col {
			if dropEmpty && (v == 0 || math.IsNaN(v)) {
				continue
			}
			dates = append(dates, d)
			values = append(values, v)
			for c := range keyNames {
				keys[c] = append(keys[c], src[c][r])
			}
		}
	}

	keyCols := make([]frame.KeyColumn, len(keyNames))
	for c, name := range keyNames {
		keyCols[c] = frame.KeyColumn{Name: name, Values: keys[c]}
	}
	out, err := frame.NewLong(dates, keyCols, []frame.MetricColumn{{Name: metricName, Values: values}})
	if err != nil {
		return nil, err
	}
	return frame.Inherit(out, t.Schema()), nil
}

// ToWide converts a long table to wide layout carrying metricName.
//
// Metric columns listed in otherMetricsToDrop are removed first; metricName
// itself is never dropped even when listed. Any other metric column still
// present is turned into an identifier column, which splits rows by its
// values, so callers with several metrics must list them.
//
// The result has one row per identifier tuple, in order of first
// appearance, and one column per distinct date, ascending. Identifier and
// date pairs absent from the input are filled with 0, not null: an
// untracked day counts as zero. If sortBy is not empty, rows are stably
// sorted by that identifier column.
func ToWide(t *frame.Table, metricName string, otherMetricsToDrop []string, sortBy string) (*frame.Table, error) {
	const op = "reshape.ToWide"
	if t.Layout() != frame.Long || !t.HasDate() {
		return nil, &frame.InvalidShapeError{Op: op, Reason: "table has no date column", Columns: t.Columns()}
	}
	if !t.HasMetric(metricName) {
		return nil, &frame.MissingColumnError{Op: op, Missing: []string{metricName}, Columns: t.Columns()}
	}

	var drop []string
	for _, m := range otherMetricsToDrop {
		if m != metricName {
			drop = append(drop, m)
		}
	}
	work := t.Drop(drop...)

	for _, m := range work.MetricNames() {
		if m == metricName {
			continue
		}
		vals, err := work.Values(m)
		if err != nil {
			return nil, err
		}
		asKeys := make([]frame.Value, len(vals))
		for i, v := range vals {
			if math.IsNaN(v) {
				asKeys[i] = frame.Null()
			} else {
				asKeys[i] = frame.Number(v)
			}
		}
		if work, err = work.Drop(m).WithKey(m, asKeys); err != nil {
			return nil, err
		}
	}

	idNames := work.KeyNames()
	if sortBy != "" && !work.HasKey(sortBy) {
		return nil, &frame.MissingColumnError{Op: op, Missing: []string{sortBy}, Columns: work.Columns()}
	}

	groups, err := frame.GroupBy(work, idNames)
	if err != nil {
		return nil, err
	}
	if sortBy != "" {
		pos := indexOf(idNames, sortBy)
		sort.SliceStable(groups, func(a, b int) bool {
			return frame.Compare(groups[a].Key[pos], groups[b].Key[pos]) < 0
		})
	}

	rowDates := work.Dates()
	dates := distinctDates(rowDates)
	dateIdx := make(map[time.Time]int, len(dates))
	for j, d := range dates {
		dateIdx[d] = j
	}

	metric, err := work.Values(metricName)
	if err != nil {
		return nil, err
	}
	values := make([][]float64, len(dates))
	filled := make([][]bool, len(dates))
	for j := range values {
		values[j] = make([]float64, len(groups))
		filled[j] = make([]bool, len(groups))
	}
	for gi, g := range groups {
		for _, r := range g.Rows {
			j := dateIdx[rowDates[r]]
			if filled[j][gi] {
				key := append([]frame.Value{frame.Date(rowDates[r])}, g.Key...)
				return nil, &frame.DuplicateKeyError{Op: op, Columns: append([]string{frame.DateColumn}, idNames...), Key: key}
			}
			filled[j][gi] = true
			values[j][gi] = metric[r]
		}
	}

	keyCols := make([]frame.KeyColumn, len(idNames))
	for c, name := range idNames {
		vals := make([]frame.Value, len(groups))
		for gi, g := range groups {
			vals[gi] = g.Key[c]
		}
		keyCols[c] = frame.KeyColumn{Name: name, Values: vals}
	}
	out, err := frame.NewWide(metricName, keyCols, dates, values)
	if err != nil {
		return nil, err
	}
	return frame.Inherit(out, t.Schema()), nil
}

func distinctDates(dates []time.Time) []time.Time {
	seen := make(map[time.Time]bool)
	var out []time.Time
	for _, d := range dates {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Before(out[b]) })
	return out
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
