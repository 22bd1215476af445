// Package timeseries provides the per-group series behind the table
// transforms.
//
// A Series holds one entity's values in date order. The window and delta
// transforms split a table into groups, build one Series per group and
// metric, and write the results back to each row's original position.
//
// # Creating a Series
//
//	series, err := timeseries.NewWithDates(dates, values)
//	sorted, perm := series.SortByDate()
//
// # Transformations
//
//	daily := sorted.OffsetDiff()             // cumulative -> daily, first value kept
//	trailing := sorted.RollingMean(7, false) // mean of up to the last 7 values
//	centered := sorted.RollingMean(7, true)  // mean of up to 3 values either side
//
// Rolling windows are clipped at the ends of the series (minimum periods of
// one), so short series never produce empty results.
//
// # Basic Statistics
//
//	mean := series.Mean() // NaN values are skipped
//	sum := series.Sum()
package timeseries
