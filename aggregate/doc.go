// Package aggregate implements keyed group-by reductions over tables.
//
// GroupSum and GroupMean group rows by a tuple of key columns and reduce the
// requested metric columns. Rows whose key cell is null are grouped with
// each other and the null is kept in the output key, so subregion rollups
// such as summing every province of a country do not lose rows that have no
// province.
//
//	byCountry, err := aggregate.GroupSum(long,
//	    []string{"date", "Country/Region"}, []string{"cases"})
//
// Output row order follows first appearance in the input. Use frame.SortBy
// when a stable presentation order matters.
package aggregate
