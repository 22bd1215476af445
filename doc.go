// Package covidframe fetches the public COVID-19 case files and reshapes
// them into tables ready for analysis and plotting.
//
// Two providers are supported: the Johns Hopkins CSSE time series (global
// and US) and the New York Times state and county files. Both publish
// cumulative counts; covidframe turns them into long tables (one row per
// date and region) or wide tables (one column per date) and derives the
// usual views from them.
//
// # Quick Start
//
// Fetch the global JHU table and add daily changes:
//
//	f := source.NewFetcher(source.DefaultConfig())
//	res, _ := f.Fetch(ctx, source.DefaultRequest())
//	daily, _ := delta.DailyChange(res.Table, []string{"cases"}, nil, delta.DailyOptions{})
//
// Smooth and align them:
//
//	smooth, _ := window.RollingMean(daily, []string{"daily_cases"}, nil, window.DefaultRollingOptions())
//	aligned, _ := align.DaysSince(res.Table, "cases", 100, nil)
//
// # Packages
//
//   - frame: the Table type, null-aware values, schemas and typed errors
//   - reshape: long/wide conversion and metric merging
//   - aggregate: group-by sums and means
//   - timeseries: per-region series and the helpers that run them over tables
//   - delta: day-over-day changes
//   - window: rolling and bucketed means
//   - align: days since a threshold
//   - selectors: top regions and region selection
//   - source: CSV reading, provider normalization and the caching fetcher
//   - plot: line charts
//   - export: CSV, JSON, XLSX, Arrow and Parquet writers
//
// The covidframe command (cmd/covidframe) exposes all of it from the shell.
package covidframe
