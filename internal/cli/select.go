package cli

import (
	"github.com/spf13/cobra"

	"github.com/sartorproj/covidframe/frame"
	"github.com/sartorproj/covidframe/selectors"
)

// NewTopCommand creates the top command.
func NewTopCommand() *cobra.Command {
	var regions, keep, exclude string
	opts := selectors.TopOptions{Metric: "cases", X: 10}
	cmd := tableCommand("top", "Keep the regions with the largest values",
		`Rank regions by --metric on the most recent date and keep the top --x,
with all their rows.`,
		func(_ *cobra.Command, t *frame.Table) (*frame.Table, error) {
			opts.RegionColumns = splitList(regions)
			opts.OtherMetricsToKeep = splitList(keep)
			opts.Exclude = splitList(exclude)
			return selectors.TopX(t, opts)
		})
	cmd.Flags().StringVar(&opts.Metric, "metric", opts.Metric, "metric to rank by")
	cmd.Flags().IntVar(&opts.X, "x", opts.X, "number of regions to keep")
	cmd.Flags().StringVar(&regions, "regions", "", "comma separated region columns (default: schema keys)")
	cmd.Flags().BoolVar(&opts.CombineSubregions, "combine", false, "sum the rows of each kept region")
	cmd.Flags().StringVar(&keep, "keep", "", "other metrics summed alongside when combining")
	cmd.Flags().StringVar(&exclude, "exclude", "", "comma separated region values to leave out")
	return cmd
}

// NewSelectCommand creates the select command.
func NewSelectCommand() *cobra.Command {
	var column, regions, keep string
	var combine bool
	cmd := tableCommand("select", "Keep the named regions",
		`Keep the rows whose --column value is one of --regions, optionally summing
subregions into one row per region and date.`,
		func(_ *cobra.Command, t *frame.Table) (*frame.Table, error) {
			metrics := splitList(keep)
			if len(metrics) == 0 {
				metrics = t.MetricNames()
			}
			return selectors.SelectRegions(t, column, splitList(regions), combine, metrics)
		})
	cmd.Flags().StringVar(&column, "column", frame.ColCountryRegion, "region column to match")
	cmd.Flags().StringVar(&regions, "regions", "", "comma separated region values")
	cmd.Flags().BoolVar(&combine, "combine", false, "sum subregions per region")
	cmd.Flags().StringVar(&keep, "keep", "", "metrics kept when combining (default: all)")
	_ = cmd.MarkFlagRequired("regions")
	return cmd
}
