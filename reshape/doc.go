// Package reshape converts tables between wide and long layout.
//
//	long, err := reshape.ToLong(wide, "cases")             // drops 0 and NaN rows
//	all, err := reshape.Melt(wide, "cases")                // keeps them
//	wide, err := reshape.ToWide(long, "cases", []string{"deaths"}, "state")
//	merged, err := reshape.MergeMetrics(cases, deaths)     // outer join on (date, keys)
//
// Two different "nothing here" policies meet in this package: identifier
// cells may be null, while a missing (identifier, date) pair in a wide table
// is a count of 0.
package reshape
