package delta

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/covidframe/frame"
)

func regions(names ...string) []frame.Value {
	out := make([]frame.Value, len(names))
	for i, n := range names {
		out[i] = frame.String(n)
	}
	return out
}

func TestDailyChangeScenario(t *testing.T) {
	d1, d2 := frame.D(2020, 1, 22), frame.D(2020, 1, 23)
	tbl, err := frame.NewLong(
		[]time.Time{d1, d2, d1, d2},
		[]frame.KeyColumn{{Name: "region", Values: regions("A", "A", "B", "B")}},
		[]frame.MetricColumn{{Name: "cases", Values: []float64{10, 15, 5, 5}}})
	require.NoError(t, err)

	out, err := DailyChange(tbl, []string{"cases"}, []string{"region"}, DailyOptions{})
	require.NoError(t, err)

	daily, err := out.Values("daily_cases")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 5, 5, 0}, daily)
	assert.True(t, out.HasMetric("cases"), "cumulative column kept by default")

	cases, _ := tbl.Values("cases")
	assert.Equal(t, []float64{10, 15, 5, 5}, cases, "input untouched")
}

func TestDailyChangeReconstruction(t *testing.T) {
	// Shuffled rows, negative correction, three regions.
	days := []int{3, 1, 2, 1, 4, 2, 3, 1, 2}
	names := []string{"A", "A", "A", "B", "A", "B", "B", "C", "C"}
	cum := []float64{12, 4, 9, 100, 11, 130, 131, 0, 7}
	dates := make([]time.Time, len(days))
	for i, d := range days {
		dates[i] = frame.D(2020, 5, d)
	}
	tbl, err := frame.NewLong(dates,
		[]frame.KeyColumn{{Name: "region", Values: regions(names...)}},
		[]frame.MetricColumn{{Name: "cases", Values: cum}})
	require.NoError(t, err)

	out, err := DailyChange(tbl, []string{"cases"}, nil, DailyOptions{})
	require.NoError(t, err)
	daily, _ := out.Values("daily_cases")

	prev := map[string]int{}
	order := []int{1, 3, 7, 2, 5, 8, 0, 6, 4} // rows by ascending date
	for _, r := range order {
		p, ok := prev[names[r]]
		if !ok {
			assert.Equal(t, cum[r], daily[r], "first row of %s keeps its value", names[r])
		} else {
			assert.Equal(t, cum[r], cum[p]+daily[r], "row %d", r)
		}
		prev[names[r]] = r
	}
	assert.Equal(t, -1.0, daily[4], "corrections stay negative")
}

func TestDailyChangeOptionsAndErrors(t *testing.T) {
	d1, d2 := frame.D(2020, 1, 22), frame.D(2020, 1, 23)
	tbl, err := frame.NewLong(
		[]time.Time{d1, d2},
		[]frame.KeyColumn{{Name: "state", Values: regions("Ohio", "Ohio")}},
		[]frame.MetricColumn{
			{Name: "cases", Values: []float64{1, 3}},
			{Name: "deaths", Values: []float64{0, 1}},
		})
	require.NoError(t, err)

	out, err := DailyChange(tbl, []string{"cases", "deaths"}, nil, DailyOptions{DropCumulative: true})
	require.NoError(t, err)
	assert.Equal(t, []string{frame.DateColumn, "state", "daily_cases", "daily_deaths"}, out.Columns())

	_, err = DailyChange(tbl, []string{"recovered"}, nil, DailyOptions{})
	assert.ErrorIs(t, err, frame.ErrMissingColumn)

	_, err = DailyChange(tbl, []string{"cases"}, []string{"county"}, DailyOptions{})
	assert.ErrorIs(t, err, frame.ErrMissingColumn)

	_, err = DailyChange(tbl.Drop(frame.DateColumn), []string{"cases"}, nil, DailyOptions{})
	assert.ErrorIs(t, err, frame.ErrInvalidShape)

	dup, err := frame.NewLong(
		[]time.Time{d1, d1},
		[]frame.KeyColumn{{Name: "state", Values: regions("Ohio", "Ohio")}},
		[]frame.MetricColumn{{Name: "cases", Values: []float64{1, 3}}})
	require.NoError(t, err)
	_, err = DailyChange(dup, []string{"cases"}, nil, DailyOptions{})
	assert.ErrorIs(t, err, frame.ErrDuplicateKey)
}

func TestDailyChangeWide(t *testing.T) {
	wide, err := frame.NewWide("cases",
		[]frame.KeyColumn{{Name: "state", Values: regions("Ohio", "Iowa")}},
		[]time.Time{frame.D(2020, 1, 24), frame.D(2020, 1, 22), frame.D(2020, 1, 23)},
		[][]float64{{9, 4}, {1, 2}, {4, 2}})
	require.NoError(t, err)

	out, err := DailyChange(wide, nil, nil, DailyOptions{})
	require.NoError(t, err)
	assert.Equal(t, frame.Wide, out.Layout())
	assert.Equal(t, "daily_cases", out.MetricName())
	assert.Equal(t, []string{"state", "2020-01-22", "2020-01-23", "2020-01-24"}, out.Columns())

	for _, tc := range []struct {
		day  int
		want []float64
	}{
		{22, []float64{1, 2}},
		{23, []float64{3, 0}},
		{24, []float64{5, 2}},
	} {
		got, err := out.DateValues(frame.D(2020, 1, tc.day))
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "day %d", tc.day)
	}
}

func TestDailyChangeDefaultsToEveryMetric(t *testing.T) {
	d1, d2 := frame.D(2020, 1, 22), frame.D(2020, 1, 23)
	tbl, err := frame.NewLong(
		[]time.Time{d1, d2},
		[]frame.KeyColumn{{Name: "state", Values: regions("Ohio", "Ohio")}},
		[]frame.MetricColumn{
			{Name: "cases", Values: []float64{1, 3}},
			{Name: "deaths", Values: []float64{0, 1}},
		})
	require.NoError(t, err)

	out, err := DailyChange(tbl, nil, nil, DailyOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{frame.DateColumn, "state", "cases", "deaths", "daily_cases", "daily_deaths"}, out.Columns())
	deaths, _ := out.Values("daily_deaths")
	assert.Equal(t, []float64{0, 1}, deaths)

	out, err = DailyChange(tbl, []string{}, nil, DailyOptions{DropCumulative: true})
	require.NoError(t, err)
	assert.Equal(t, []string{frame.DateColumn, "state", "daily_cases", "daily_deaths"}, out.Columns())
}
