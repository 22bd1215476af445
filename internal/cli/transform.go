package cli

import (
	"github.com/spf13/cobra"

	"github.com/sartorproj/covidframe/align"
	"github.com/sartorproj/covidframe/delta"
	"github.com/sartorproj/covidframe/frame"
	"github.com/sartorproj/covidframe/reshape"
	"github.com/sartorproj/covidframe/window"
)

// tableCommand builds a command that loads the input table, transforms it
// and renders the result.
func tableCommand(use, short, long string, run func(cmd *cobra.Command, t *frame.Table) (*frame.Table, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := loadTable(cmd)
			if err != nil {
				return err
			}
			out, err := run(cmd, in)
			if err != nil {
				return err
			}
			return renderTable(cmd.OutOrStdout(), out, GetConfig(cmd.Context()))
		},
	}
}

// NewFetchCommand creates the fetch command.
func NewFetchCommand() *cobra.Command {
	return tableCommand("fetch", "Fetch or read a table and print it",
		`Fetch a provider table (or read --input) and print it unchanged.

Downloads are cached; when a download fails the cached copy is used and a
warning is logged.`,
		func(_ *cobra.Command, t *frame.Table) (*frame.Table, error) { return t, nil })
}

// NewWideCommand creates the wide command.
func NewWideCommand() *cobra.Command {
	var metric, sortBy, drop string
	cmd := tableCommand("wide", "Pivot a long table to wide",
		`Pivot one metric of a long table into one column per date.

Other metrics are either dropped (--drop) or kept as identifier columns.`,
		func(_ *cobra.Command, t *frame.Table) (*frame.Table, error) {
			return reshape.ToWide(t, metric, splitList(drop), sortBy)
		})
	cmd.Flags().StringVar(&metric, "metric", "cases", "metric to pivot")
	cmd.Flags().StringVar(&drop, "drop", "", "comma separated metrics to drop")
	cmd.Flags().StringVar(&sortBy, "sort-by", "", "identifier column to sort rows by")
	return cmd
}

// NewLongCommand creates the long command.
func NewLongCommand() *cobra.Command {
	var metric string
	var keepZeros bool
	cmd := tableCommand("long", "Unpivot a wide table to long",
		`Unpivot a wide table into one row per date and region.

Zero and missing values are dropped unless --keep-zeros is set.`,
		func(_ *cobra.Command, t *frame.Table) (*frame.Table, error) {
			if keepZeros {
				return reshape.Melt(t, metric)
			}
			return reshape.ToLong(t, metric)
		})
	cmd.Flags().StringVar(&metric, "metric", "", "name of the value column (default: the table's metric)")
	cmd.Flags().BoolVar(&keepZeros, "keep-zeros", false, "keep zero and missing values")
	return cmd
}

// NewDailyCommand creates the daily command.
func NewDailyCommand() *cobra.Command {
	var columns, keys string
	var opts delta.DailyOptions
	cmd := tableCommand("daily", "Add day-over-day changes",
		`Add daily_<metric> columns holding the change from the previous date of
each region. The first date of a region keeps its cumulative value.`,
		func(_ *cobra.Command, t *frame.Table) (*frame.Table, error) {
			return delta.DailyChange(t, splitList(columns), splitList(keys), opts)
		})
	cmd.Flags().StringVar(&columns, "columns", "", "comma separated metrics (default: all)")
	cmd.Flags().StringVar(&keys, "keys", "", "comma separated region columns (default: schema keys)")
	cmd.Flags().BoolVar(&opts.DropCumulative, "drop-cumulative", false, "drop the cumulative columns")
	return cmd
}

// NewRollingCommand creates the rolling command.
func NewRollingCommand() *cobra.Command {
	var columns, keys string
	opts := window.DefaultRollingOptions()
	cmd := tableCommand("rolling", "Add rolling means",
		`Add mean_<metric> columns holding the mean over a window of rows of each
region. Windows are trailing unless --centered is set.`,
		func(_ *cobra.Command, t *frame.Table) (*frame.Table, error) {
			return window.RollingMean(t, splitList(columns), splitList(keys), opts)
		})
	cmd.Flags().StringVar(&columns, "columns", "", "comma separated metrics (default: all)")
	cmd.Flags().StringVar(&keys, "keys", "", "comma separated region columns (default: schema keys)")
	cmd.Flags().IntVar(&opts.Window, "window", opts.Window, "window length in rows")
	cmd.Flags().BoolVar(&opts.Centered, "centered", false, "center the window on each row")
	cmd.Flags().BoolVar(&opts.DropOriginals, "drop-originals", false, "drop the source columns")
	return cmd
}

// NewBucketsCommand creates the buckets command.
func NewBucketsCommand() *cobra.Command {
	var columns string
	var days int
	var keepOriginals bool
	cmd := tableCommand("buckets", "Average metrics over fixed date buckets",
		`Split the date range into consecutive buckets of --days days and average
each metric per region and bucket.`,
		func(_ *cobra.Command, t *frame.Table) (*frame.Table, error) {
			return window.BucketedMean(t, days, keepOriginals, splitList(columns))
		})
	cmd.Flags().StringVar(&columns, "columns", "", "comma separated metrics (default: all)")
	cmd.Flags().IntVar(&days, "days", 7, "bucket length in days")
	cmd.Flags().BoolVar(&keepOriginals, "keep-originals", false, "keep one row per date with the bucket mean alongside")
	return cmd
}

// NewSinceCommand creates the since command.
func NewSinceCommand() *cobra.Command {
	var metric, keys string
	var minCount float64
	cmd := tableCommand("since", "Count days since a threshold was reached",
		`Keep the rows where --metric is at least --min and number them per region
from 0, so regions can be compared from the day they crossed the threshold.`,
		func(_ *cobra.Command, t *frame.Table) (*frame.Table, error) {
			return align.DaysSince(t, metric, minCount, splitList(keys))
		})
	cmd.Flags().StringVar(&metric, "metric", "cases", "metric compared with the threshold")
	cmd.Flags().Float64Var(&minCount, "min", 1, "threshold value")
	cmd.Flags().StringVar(&keys, "keys", "", "comma separated region columns (default: schema keys)")
	return cmd
}
