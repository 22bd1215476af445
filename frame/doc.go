// Package frame provides the canonical table used by every covidframe
// transform.
//
// A Table has identifier (key) columns holding nullable Values, numeric
// metric columns, and dates. Dates are either a column of a long table or
// the headers of a wide table; the Layout tag says which.
//
// # Building Tables
//
//	long, err := frame.NewLong(
//	    []time.Time{frame.D(2020, 1, 22), frame.D(2020, 1, 23)},
//	    []frame.KeyColumn{{Name: "state", Values: []frame.Value{frame.String("Utah"), frame.String("Utah")}}},
//	    []frame.MetricColumn{{Name: "cases", Values: []float64{1, 3}}},
//	)
//
//	wide, err := frame.NewWide("cases",
//	    []frame.KeyColumn{{Name: "state", Values: []frame.Value{frame.String("Utah")}}},
//	    []time.Time{frame.D(2020, 1, 22), frame.D(2020, 1, 23)},
//	    [][]float64{{1}, {3}},
//	)
//
// # Schemas
//
// Each table carries a Schema naming the identifier columns of one region.
// It is inferred once from the key column names (JHU global, JHU US, NYT
// state, NYT county, or generic) and is used as the default grouping keys
// by the transforms.
//
// # Null Keys
//
// Identifier cells may be null. GroupBy groups null cells of a column
// together and hands the null back in the group key, so rollups over
// partially-missing identifiers neither drop rows nor leak placeholders.
//
// # Errors
//
// Precondition failures are returned as *InvalidShapeError,
// *MissingColumnError, *DuplicateKeyError or *EmptySelectionError, each
// matching its sentinel through errors.Is.
package frame
