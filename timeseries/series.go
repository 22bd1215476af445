package timeseries

import (
	"errors"
	"math"
	"sort"
	"time"
)

// Series represents one entity's values ordered by date.
type Series struct {
	Dates  []time.Time
	Values []float64
	Name   string
}

// New creates a series from values without dates.
func New(values []float64) *Series {
	return &Series{Values: values}
}

// NewWithDates creates a series with explicit dates.
func NewWithDates(dates []time.Time, values []float64) (*Series, error) {
	if len(dates) != len(values) {
		return nil, errors.New("dates and values must have the same length")
	}
	return &Series{
		Dates:  dates,
		Values: values,
	}, nil
}

// Len returns the length of the series.
func (s *Series) Len() int {
	return len(s.Values)
}

// Sum adds the non-NaN values. An empty or all-NaN series sums to 0.
func (s *Series) Sum() float64 {
	sum := 0.0
	for _, v := range s.Values {
		if !math.IsNaN(v) {
			sum += v
		}
	}
	return sum
}

// Mean calculates the arithmetic mean of the non-NaN values.
// It returns NaN when there are none.
func (s *Series) Mean() float64 {
	return meanOf(s.Values)
}

// SortByDate returns a copy sorted by ascending date, keeping the original
// order of equal dates, and the permutation applied: sorted[i] came from
// position perm[i].
func (s *Series) SortByDate() (*Series, []int) {
	perm := make([]int, len(s.Values))
	for i := range perm {
		perm[i] = i
	}
	if len(s.Dates) == len(s.Values) {
		sort.SliceStable(perm, func(a, b int) bool {
			return s.Dates[perm[a]].Before(s.Dates[perm[b]])
		})
	}

	out := &Series{Values: make([]float64, len(perm)), Name: s.Name}
	if len(s.Dates) == len(s.Values) {
		out.Dates = make([]time.Time, len(perm))
	}
	for i, p := range perm {
		out.Values[i] = s.Values[p]
		if out.Dates != nil {
			out.Dates[i] = s.Dates[p]
		}
	}
	return out, perm
}

// OffsetDiff subtracts from each value the value before it. The first value
// is kept as is, as if preceded by 0. Unlike a plain first difference the
// result has the same length as the series.
func (s *Series) OffsetDiff() *Series {
	result := make([]float64, len(s.Values))
	prev := 0.0
	for i, v := range s.Values {
		result[i] = v - prev
		prev = v
	}
	return &Series{
		Dates:  copyDates(s.Dates),
		Values: result,
		Name:   "daily_" + s.Name,
	}
}

// RollingMean calculates a moving average over window positions.
//
// A trailing window covers [i-window+1, i]. A centered window covers
// [i-window/2, i+(window-1)/2], which is symmetric for odd windows. Windows
// are clipped at the ends of the series and NaN values are skipped, so
// every position gets the mean of whatever points are available. A
// position whose window holds no valid values gets NaN.
func (s *Series) RollingMean(window int, centered bool) *Series {
	if window < 1 {
		window = 1
	}
	n := len(s.Values)

	result := make([]float64, n)
	for i := range result {
		lo, hi := i-window+1, i
		if centered {
			lo, hi = i-window/2, i+(window-1)/2
		}
		if lo < 0 {
			lo = 0
		}
		if hi > n-1 {
			hi = n - 1
		}
		result[i] = meanOf(s.Values[lo : hi+1])
	}

	return &Series{
		Dates:  copyDates(s.Dates),
		Values: result,
		Name:   "mean_" + s.Name,
	}
}

func meanOf(values []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range values {
		if !math.IsNaN(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

func copyDates(dates []time.Time) []time.Time {
	if dates == nil {
		return nil
	}
	out := make([]time.Time, len(dates))
	copy(out, dates)
	return out
}
