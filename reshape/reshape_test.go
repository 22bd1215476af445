package reshape

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/covidframe/frame"
)

func values(vals ...string) []frame.Value {
	out := make([]frame.Value, len(vals))
	for i, v := range vals {
		if v == "<null>" {
			out[i] = frame.Null()
			continue
		}
		out[i] = frame.String(v)
	}
	return out
}

func wideFixture(t *testing.T) *frame.Table {
	t.Helper()
	tbl, err := frame.NewWide("cases",
		[]frame.KeyColumn{
			{Name: frame.ColProvinceState, Values: values("<null>", "Hubei", "<null>")},
			{Name: frame.ColCountryRegion, Values: values("Italy", "China", "Spain")},
		},
		[]time.Time{frame.D(2020, 1, 22), frame.D(2020, 1, 23), frame.D(2020, 1, 24)},
		[][]float64{
			{0, 444, 0},
			{2, 444, 0},
			{3, 549, 1},
		})
	require.NoError(t, err)
	return tbl
}

func TestToLongDropsEmptyRows(t *testing.T) {
	wide := wideFixture(t)
	long, err := ToLong(wide, "cases")
	require.NoError(t, err)

	assert.Equal(t, frame.Long, long.Layout())
	assert.Equal(t, []string{frame.DateColumn, frame.ColProvinceState, frame.ColCountryRegion, "cases"}, long.Columns())
	assert.Equal(t, frame.SchemaJHUGlobal, long.Schema().Kind())

	cases, err := long.Values("cases")
	require.NoError(t, err)
	assert.Equal(t, []float64{444, 2, 444, 3, 549, 1}, cases)

	countries, _ := long.Keys(frame.ColCountryRegion)
	assert.Equal(t, "China", countries[0].Str())
	provinces, _ := long.Keys(frame.ColProvinceState)
	assert.True(t, provinces[1].IsNull(), "null identifiers survive the melt")
}

func TestMeltKeepsZeros(t *testing.T) {
	long, err := Melt(wideFixture(t), "")
	require.NoError(t, err)
	assert.Equal(t, 9, long.NumRows())
	assert.True(t, long.HasMetric("cases"), "defaults to the wide table's metric")
}

func TestToLongRequiresDateHeaders(t *testing.T) {
	long, err := frame.NewLong([]time.Time{frame.D(2020, 1, 1)}, nil,
		[]frame.MetricColumn{{Name: "cases", Values: []float64{1}}})
	require.NoError(t, err)

	_, err = ToLong(long, "cases")
	assert.ErrorIs(t, err, frame.ErrInvalidShape)

	empty, err := frame.NewWide("cases",
		[]frame.KeyColumn{{Name: "state", Values: values("A")}}, nil, nil)
	require.NoError(t, err)
	_, err = ToLong(empty, "cases")
	assert.ErrorIs(t, err, frame.ErrInvalidShape)
}

func TestRoundTrip(t *testing.T) {
	wide := wideFixture(t)
	long, err := ToLong(wide, "cases")
	require.NoError(t, err)
	back, err := ToWide(long, "cases", nil, "")
	require.NoError(t, err)

	assert.Equal(t, frame.Wide, back.Layout())
	assert.Equal(t, "cases", back.MetricName())
	assert.Equal(t, wide.Dates(), back.Dates())

	// Compare by identifier tuple; row order may differ after dropping zeros.
	index := func(tbl *frame.Table) map[string]int {
		groups, err := frame.GroupBy(tbl, tbl.KeyNames())
		require.NoError(t, err)
		m := make(map[string]int)
		for _, g := range groups {
			m[frame.KeyOf(g.Key)] = g.Rows[0]
		}
		return m
	}
	src, dst := index(wide), index(back)
	require.Len(t, dst, len(src))
	for _, d := range wide.Dates() {
		want, _ := wide.DateValues(d)
		got, _ := back.DateValues(d)
		for k, r := range src {
			assert.Equal(t, want[r], got[dst[k]], "date %s key %q", d.Format(frame.DateFormat), k)
		}
	}
}

func TestToWideZeroFillAndNullKeys(t *testing.T) {
	long, err := frame.NewLong(
		[]time.Time{frame.D(2020, 3, 1), frame.D(2020, 3, 2), frame.D(2020, 3, 2)},
		[]frame.KeyColumn{{Name: "county", Values: values("<null>", "<null>", "Kent")}},
		[]frame.MetricColumn{{Name: "cases", Values: []float64{1, 2, 5}}})
	require.NoError(t, err)

	wide, err := ToWide(long, "cases", nil, "")
	require.NoError(t, err)
	require.Equal(t, 2, wide.NumRows())

	counties, _ := wide.Keys("county")
	assert.True(t, counties[0].IsNull(), "identifier null stays null")

	first, _ := wide.DateValues(frame.D(2020, 3, 1))
	assert.Equal(t, []float64{1, 0}, first, "absent pair is zero, not null")
	assert.False(t, math.IsNaN(first[1]))
}

func TestToWideDropsOtherMetrics(t *testing.T) {
	long, err := frame.NewLong(
		[]time.Time{frame.D(2020, 3, 1), frame.D(2020, 3, 1)},
		[]frame.KeyColumn{{Name: "state", Values: values("Ohio", "Iowa")}},
		[]frame.MetricColumn{
			{Name: "cases", Values: []float64{10, 20}},
			{Name: "deaths", Values: []float64{1, 2}},
		})
	require.NoError(t, err)

	wide, err := ToWide(long, "cases", []string{"cases", "deaths"}, "state")
	require.NoError(t, err)
	assert.Equal(t, []string{"state", "2020-03-01"}, wide.Columns())
	states, _ := wide.Keys("state")
	assert.Equal(t, "Iowa", states[0].Str(), "sorted by state")

	// An unlisted metric becomes an identifier column.
	kept, err := ToWide(long, "cases", nil, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"state", "deaths", "2020-03-01"}, kept.Columns())
}

func TestToWideErrors(t *testing.T) {
	long, err := frame.NewLong(
		[]time.Time{frame.D(2020, 3, 1), frame.D(2020, 3, 1)},
		[]frame.KeyColumn{{Name: "state", Values: values("Ohio", "Ohio")}},
		[]frame.MetricColumn{{Name: "cases", Values: []float64{10, 20}}})
	require.NoError(t, err)

	_, err = ToWide(long, "cases", nil, "")
	assert.ErrorIs(t, err, frame.ErrDuplicateKey)

	_, err = ToWide(long, "deaths", nil, "")
	assert.ErrorIs(t, err, frame.ErrMissingColumn)

	_, err = ToWide(long.Drop("cases").Drop(frame.DateColumn), "cases", nil, "")
	assert.ErrorIs(t, err, frame.ErrInvalidShape)

	_, err = ToWide(long.Take([]int{0}), "cases", nil, "county")
	assert.ErrorIs(t, err, frame.ErrMissingColumn)
}

func TestToWideNoDates(t *testing.T) {
	long, err := frame.NewLong(nil,
		[]frame.KeyColumn{{Name: "state", Values: nil}},
		[]frame.MetricColumn{{Name: "cases", Values: nil}})
	require.NoError(t, err)

	wide, err := ToWide(long, "cases", nil, "")
	require.NoError(t, err)
	assert.Empty(t, wide.Dates())
	assert.Equal(t, 0, wide.NumRows())
}

func TestMergeMetrics(t *testing.T) {
	cases, err := frame.NewLong(
		[]time.Time{frame.D(2020, 3, 2), frame.D(2020, 3, 1)},
		[]frame.KeyColumn{{Name: "state", Values: values("Ohio", "Ohio")}},
		[]frame.MetricColumn{{Name: "cases", Values: []float64{5, 3}}})
	require.NoError(t, err)
	deaths, err := frame.NewLong(
		[]time.Time{frame.D(2020, 3, 2), frame.D(2020, 3, 2)},
		[]frame.KeyColumn{{Name: "state", Values: values("Ohio", "Iowa")}},
		[]frame.MetricColumn{{Name: "deaths", Values: []float64{1, 4}}})
	require.NoError(t, err)

	merged, err := MergeMetrics(cases, deaths)
	require.NoError(t, err)
	assert.Equal(t, []string{frame.DateColumn, "state", "cases", "deaths"}, merged.Columns())

	c, _ := merged.Values("cases")
	d, _ := merged.Values("deaths")
	states, _ := merged.Keys("state")
	require.Equal(t, 3, merged.NumRows())
	assert.Equal(t, "Ohio", states[0].Str())
	assert.Equal(t, []float64{3, 0, 5}, c)
	assert.Equal(t, []float64{0, 4, 1}, d)

	_, err = MergeMetrics(cases, cases)
	assert.ErrorIs(t, err, frame.ErrInvalidArgument)
}
