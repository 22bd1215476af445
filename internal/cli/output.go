package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/sartorproj/covidframe/export"
	"github.com/sartorproj/covidframe/frame"
	"github.com/sartorproj/covidframe/plot"
)

// NewPlotCommand creates the plot command.
func NewPlotCommand() *cobra.Command {
	var x, y, y2, group, legend, out string
	opts := plot.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Draw a line chart",
		Long: `Draw --y against --x from a long table, one line per --group value, or
two metrics on separate axes with --y2. The image format follows the
extension of --out (.png or .svg).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := loadTable(cmd)
			if err != nil {
				return err
			}
			opts.LegendOrder = splitList(legend)

			var ch *chart.Chart
			if y2 != "" {
				ch, err = plot.LinesTwoY(t, x, y, y2, opts)
			} else {
				ch, err = plot.Lines(t, x, y, group, opts)
			}
			if err != nil {
				return err
			}
			if err := plot.WriteFile(ch, out); err != nil {
				return err
			}
			GetLogger(cmd.Context()).Info("wrote chart", "path", out, "series", len(ch.Series))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&x, "x", frame.DateColumn, "x axis column")
	f.StringVar(&y, "y", "cases", "y axis metric")
	f.StringVar(&y2, "y2", "", "metric for a secondary y axis")
	f.StringVar(&group, "group", frame.ColCountryRegion, "column splitting the lines")
	f.StringVar(&legend, "legend-order", "", "comma separated group values to draw, in order")
	f.StringVar(&out, "out", "chart.png", "output image (.png or .svg)")
	f.StringVar(&opts.Title, "title", "", "chart title")
	f.StringVar(&opts.XLabel, "x-label", "", "x axis label")
	f.StringVar(&opts.YLabel, "y-label", "", "y axis label")
	f.StringVar(&opts.Y2Label, "y2-label", "", "secondary y axis label")
	f.BoolVar(&opts.LogScale, "log", false, "logarithmic y axis")
	f.IntVar(&opts.Width, "width", opts.Width, "image width in pixels")
	f.IntVar(&opts.Height, "height", opts.Height, "image height in pixels")
	return cmd
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	var out, sheet string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a table to a file",
		Long: `Write the input table to --out. The format follows the extension:
.csv, .json, .xlsx or .parquet.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := export.ParseFormat(filepath.Ext(out))
			if err != nil {
				return err
			}
			t, err := loadTable(cmd)
			if err != nil {
				return err
			}
			if err := writeTable(out, t, format, sheet); err != nil {
				return err
			}
			GetLogger(cmd.Context()).Info("wrote table", "path", out, "format", string(format), "rows", t.NumRows())
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output file (.csv, .json, .xlsx or .parquet)")
	cmd.Flags().StringVar(&sheet, "sheet", export.DefaultSheet, "worksheet name for .xlsx output")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func writeTable(path string, t *frame.Table, format export.Format, sheet string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return export.Write(f, t, format, sheet)
}
