// Package align re-indexes time series by days since a threshold, so
// regions whose outbreaks started on different dates can be compared on
// the same axis.
//
//	aligned, err := align.DaysSince(long, "cases", 100, []string{"Country/Region"})
//	// column "days_since_100_cases" holds 0, 1, 2, ... per country
package align
