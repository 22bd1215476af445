package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sartorproj/covidframe/frame"
	"github.com/sartorproj/covidframe/source"
)

// loadTable reads the command input: the --input file when set, otherwise
// a provider fetch. A file's region keys come from --input-keys when set.
// Provider attribution and stale-data warnings go to stderr.
func loadTable(cmd *cobra.Command) (*frame.Table, error) {
	ctx := cmd.Context()
	cfg := GetConfig(ctx)
	logger := GetLogger(ctx)

	if cfg.Input != "" {
		raw, err := source.LoadCSV(cfg.Input, nil)
		if err != nil {
			return nil, err
		}
		logger.Debug("read input file", "path", cfg.Input, "rows", len(raw.Records), "layout", cfg.InputLayout)
		var t *frame.Table
		if cfg.InputLayout == "wide" {
			t, err = source.ReadWide(raw, cfg.InputMetric)
		} else {
			t, err = source.ReadLong(raw, nil)
		}
		if err != nil {
			return nil, err
		}
		if keys := splitList(cfg.InputKeys); len(keys) > 0 {
			return t.WithSchema(frame.Generic(keys...))
		}
		return t, nil
	}

	fetcher := source.NewFetcher(cfg.Fetch, source.WithLogger(logger))
	res, err := fetcher.Fetch(ctx, cfg.Request())
	if err != nil {
		return nil, err
	}
	for _, w := range res.Warnings {
		logger.Warn(w)
	}
	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), res.Attribution)
	return res.Table, nil
}

// splitList splits a comma separated flag value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
