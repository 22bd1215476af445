// Package plot draws line charts from long tables with go-chart.
//
//	ch, err := plot.Lines(tbl, "date", "cases", "Country/Region", plot.DefaultOptions())
//	err = plot.WriteFile(ch, "cases.png")
//
// A log scale plots log10 of the values and labels the ticks with the
// original magnitudes.
package plot
