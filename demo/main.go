// Package main walks a small cumulative case table through the covidframe
// transforms without touching the network.
//
// Run with no arguments to use a generated three-country table, or pass a
// long CSV file (date, region columns, cumulative metrics):
//
//	go run ./demo [file.csv]
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sartorproj/covidframe/align"
	"github.com/sartorproj/covidframe/delta"
	"github.com/sartorproj/covidframe/export"
	"github.com/sartorproj/covidframe/frame"
	"github.com/sartorproj/covidframe/plot"
	"github.com/sartorproj/covidframe/reshape"
	"github.com/sartorproj/covidframe/selectors"
	"github.com/sartorproj/covidframe/source"
	"github.com/sartorproj/covidframe/window"
)

// Outbreak describes one generated country curve.
type Outbreak struct {
	Country string
	Start   int     // first day with cases
	Seed    float64 // cases on the first day
	Growth  float64 // daily growth factor
	Fatal   float64 // deaths per case
}

// StepResult summarizes one transform for the JSON report.
type StepResult struct {
	Step    string   `json:"step"`
	Rows    int      `json:"rows"`
	Columns []string `json:"columns"`
}

// Report holds everything the demo exports.
type Report struct {
	Input   string       `json:"input"`
	Steps   []StepResult `json:"steps"`
	Leaders []string     `json:"leaders"`
}

const days = 28

func main() {
	if err := run("demo_output", os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "demo: %v\n", err)
		os.Exit(1)
	}
}

// run executes the demo, reading args[0] when given, and writes its files
// to outDir.
func run(outDir string, args []string, w io.Writer) error {
	banner(w, "covidframe demonstration - reshaping cumulative case tables")

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	input := "generated"
	var tbl *frame.Table
	var err error
	if len(args) > 0 {
		input = args[0]
		tbl, err = load(input)
	} else {
		tbl, err = generate([]Outbreak{
			{Country: "Italy", Start: 0, Seed: 3, Growth: 1.28, Fatal: 0.08},
			{Country: "Spain", Start: 4, Seed: 2, Growth: 1.33, Fatal: 0.07},
			{Country: "France", Start: 2, Seed: 5, Growth: 1.2, Fatal: 0.05},
		})
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nInput: %s\n  %s\n", input, tbl)

	report := Report{Input: input}
	record := func(step string, t *frame.Table) {
		report.Steps = append(report.Steps, StepResult{Step: step, Rows: t.NumRows(), Columns: t.Columns()})
		fmt.Fprintf(w, "  %-10s %s\n", step, t)
	}

	section(w, "1. Daily changes and rolling means")
	daily, err := delta.DailyChange(tbl, nil, nil, delta.DailyOptions{})
	if err != nil {
		return err
	}
	record("daily", daily)
	smoothed, err := window.RollingMean(daily, []string{delta.DailyPrefix + "cases"}, nil, window.DefaultRollingOptions())
	if err != nil {
		return err
	}
	record("rolling", smoothed)
	weekly, err := window.BucketedMean(daily, 7, false, []string{delta.DailyPrefix + "cases"})
	if err != nil {
		return err
	}
	record("weekly", weekly)

	section(w, "2. Aligning on the 100th case")
	aligned, err := align.DaysSince(tbl, "cases", 100, nil)
	if err != nil {
		return err
	}
	record("since", aligned)

	section(w, "3. Ranking and reshaping")
	top, err := selectors.TopX(tbl, selectors.TopOptions{Metric: "cases", X: 2})
	if err != nil {
		return err
	}
	record("top", top)
	report.Leaders = distinct(top, tbl.Schema().KeyColumns())
	fmt.Fprintf(w, "  leaders: %s\n", strings.Join(report.Leaders, ", "))

	wide, err := reshape.ToWide(tbl, "cases", []string{"deaths"}, "")
	if err != nil {
		return err
	}
	record("wide", wide)

	section(w, "4. Exporting")
	ch, err := plot.Lines(smoothed, frame.DateColumn, window.MeanPrefix+delta.DailyPrefix+"cases", tbl.Schema().KeyColumns()[0], plot.Options{
		Title:  "New cases, 7-day mean",
		YLabel: "cases per day",
	})
	if err != nil {
		return err
	}
	for _, out := range []string{"daily_cases.png", "daily.parquet", "report.json"} {
		path := filepath.Join(outDir, out)
		switch filepath.Ext(out) {
		case ".png":
			err = plot.WriteFile(ch, path)
		case ".parquet":
			err = export.WriteFile(path, smoothed)
		default:
			var data []byte
			if data, err = json.MarshalIndent(report, "", "  "); err == nil {
				err = os.WriteFile(path, data, 0o644)
			}
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  wrote %s\n", path)
	}

	fmt.Fprintln(w, strings.Repeat("=", 80))
	return nil
}

// generate builds a cumulative long table from exponential curves.
func generate(outbreaks []Outbreak) (*frame.Table, error) {
	start := frame.D(2020, 2, 20)
	var dates []time.Time
	var country []frame.Value
	var cases, deaths []float64
	for _, o := range outbreaks {
		for d := 0; d < days; d++ {
			c := 0.0
			if d >= o.Start {
				c = math.Round(o.Seed * math.Pow(o.Growth, float64(d-o.Start)))
			}
			dates = append(dates, start.AddDate(0, 0, d))
			country = append(country, frame.String(o.Country))
			cases = append(cases, c)
			deaths = append(deaths, math.Floor(c*o.Fatal))
		}
	}
	return frame.NewLong(dates,
		[]frame.KeyColumn{{Name: frame.ColCountryRegion, Values: country}},
		[]frame.MetricColumn{{Name: "cases", Values: cases}, {Name: "deaths", Values: deaths}})
}

func load(path string) (*frame.Table, error) {
	raw, err := source.LoadCSV(path, nil)
	if err != nil {
		return nil, err
	}
	return source.ReadLong(raw, nil)
}

func distinct(t *frame.Table, keys []string) []string {
	groups, err := frame.GroupBy(t, keys)
	if err != nil {
		return nil
	}
	out := make([]string, len(groups))
	for i, g := range groups {
		parts := make([]string, len(g.Key))
		for j, v := range g.Key {
			parts[j] = v.String()
		}
		out[i] = strings.Join(parts, "/")
	}
	return out
}

func banner(w io.Writer, title string) {
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("=", 80))
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n", title)
}
