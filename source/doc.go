// Package source loads provider files into tables.
//
// Two providers are supported: the Johns Hopkins CSSE time series (JHU),
// published as wide CSV files with one date per column, and the New York
// Times state and county files (NYT), published long.
//
// # Fetching
//
// A Fetcher downloads the files a Request needs, keeps a copy of each in
// an on-disk cache and normalizes them:
//
//	f := source.NewFetcher(source.DefaultConfig(), source.WithLogger(logger))
//	res, err := f.Fetch(ctx, source.Request{
//	    Source: source.JHU, Format: source.FormatLong, DataType: source.DataAll,
//	    Region: "global", Update: true,
//	})
//
// When a download fails, or Update is false, the cached copy is used and
// the Result is marked Stale with a warning per file. Without a cached
// copy Fetch returns ErrNoData.
//
// # Normalizing
//
// The normalizers can also be used on files read some other way:
//
//	raw, err := source.LoadCSV("time_series_covid19_confirmed_global.csv", nil)
//	wide, err := source.NormalizeJHU(raw, source.Global, "cases")
//
// JHU files get the provider's known fixes: "Taiwan*" becomes "Taiwan",
// the "Recovered, Canada" and "Southwest, Utah, US" rows are dropped, the
// Long_ column is renamed Long and spaces are removed from Combined_Key.
package source
