package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sartorproj/covidframe/frame"
	"github.com/sartorproj/covidframe/reshape"
)

// ErrNoData is returned when a file could not be downloaded and no cached
// copy exists.
var ErrNoData = errors.New("no data available")

// Attribution lines printed with provider data.
const (
	JHUAttribution = "These data were obtained from Johns Hopkins University (https://github.com/CSSEGISandData/COVID-19)."
	NYTAttribution = "These data were obtained from The New York Times (https://github.com/nytimes/covid-19-data)."
)

// Config holds the Fetcher settings.
type Config struct {
	JHUSeriesURL      string        `koanf:"jhu_series_url"`
	JHULookupURL      string        `koanf:"jhu_lookup_url"`
	NYTURL            string        `koanf:"nyt_url"`
	CacheDir          string        `koanf:"cache_dir"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`
}

// DefaultConfig returns the public provider locations and a cache under
// the user cache directory.
func DefaultConfig() Config {
	cache, err := os.UserCacheDir()
	if err != nil {
		cache = os.TempDir()
	}
	return Config{
		JHUSeriesURL:      "https://raw.githubusercontent.com/CSSEGISandData/COVID-19/master/csse_covid_19_data/csse_covid_19_time_series/",
		JHULookupURL:      "https://raw.githubusercontent.com/CSSEGISandData/COVID-19/master/csse_covid_19_data/",
		NYTURL:            "https://raw.githubusercontent.com/nytimes/covid-19-data/master/",
		CacheDir:          filepath.Join(cache, "covidframe"),
		Timeout:           30 * time.Second,
		RequestsPerSecond: 4,
		Burst:             2,
	}
}

const lookupFile = "UID_ISO_FIPS_LookUp_Table.csv"

var jhuFiles = map[Region]map[string]string{
	Global: {
		DataCases:     "time_series_covid19_confirmed_global.csv",
		DataDeaths:    "time_series_covid19_deaths_global.csv",
		DataRecovered: "time_series_covid19_recovered_global.csv",
	},
	US: {
		DataCases:  "time_series_covid19_confirmed_US.csv",
		DataDeaths: "time_series_covid19_deaths_US.csv",
	},
}

// Result is a fetched table.
type Result struct {
	Table *frame.Table
	// Stale is set when at least one file came from the cache instead of
	// a fresh download.
	Stale       bool
	Warnings    []string
	Attribution string
}

// Fetcher downloads provider files into an on-disk cache and normalizes
// them.
type Fetcher struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// NewFetcher creates a Fetcher.
func NewFetcher(cfg Config, opts ...Option) *Fetcher {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	f := &Fetcher{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, max(cfg.Burst, 1)),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With(slog.String("component", "fetcher"))
	return f
}

// file is one downloaded (or cached) provider file.
type file struct {
	raw     *RawTable
	stale   bool
	warning string
}

// Fetch returns the table described by req.
func (f *Fetcher) Fetch(ctx context.Context, req Request) (*Result, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Source == NYT {
		return f.fetchNYT(ctx, req)
	}
	return f.fetchJHU(ctx, req)
}

func (f *Fetcher) fetchJHU(ctx context.Context, req Request) (*Result, error) {
	region := Region(req.Region)
	types := req.DataTypes()

	files := make([]file, len(types)+1)
	eg, egctx := errgroup.WithContext(ctx)
	for i, dt := range types {
		eg.Go(func() error {
			var err error
			files[i], err = f.get(egctx, JHU, f.cfg.JHUSeriesURL, jhuFiles[region][dt], req.Update)
			return err
		})
	}
	eg.Go(func() error {
		var err error
		files[len(types)], err = f.get(egctx, JHU, f.cfg.JHULookupURL, lookupFile, req.Update)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var parts []*frame.Table
	for i, dt := range types {
		wide, err := NormalizeJHU(files[i].raw, region, dt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", jhuFiles[region][dt], err)
		}
		if req.Format == FormatWide {
			parts = append(parts, wide)
			continue
		}
		long, err := reshape.Melt(wide, dt)
		if err != nil {
			return nil, err
		}
		parts = append(parts, long)
	}

	t := parts[0]
	if req.Format == FormatLong {
		var err error
		if t, err = reshape.MergeMetrics(parts...); err != nil {
			return nil, err
		}
	}

	locations, err := NormalizeJHULocations(files[len(types)].raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", lookupFile, err)
	}
	if t, err = AttachLocations(t, locations, region); err != nil {
		return nil, err
	}
	if t, err = sortJHU(t, region); err != nil {
		return nil, err
	}
	return newResult(t, JHUAttribution, files), nil
}

func sortJHU(t *frame.Table, region Region) (*frame.Table, error) {
	cols := []string{frame.ColCountryRegion, frame.ColProvinceState}
	if region == US {
		cols = nil
		for _, c := range []string{ColCountryRegion, ColProvinceState, ColAdmin2, frame.ColCombinedKey} {
			if t.HasKey(c) {
				cols = append(cols, c)
			}
		}
	}
	if t.Layout() == frame.Long {
		cols = append([]string{frame.DateColumn}, cols...)
	}
	return frame.SortBy(t, cols...)
}

func (f *Fetcher) fetchNYT(ctx context.Context, req Request) (*Result, error) {
	name := "us-states.csv"
	if req.Counties {
		name = "us-counties.csv"
	}
	got, err := f.get(ctx, NYT, f.cfg.NYTURL, name, req.Update)
	if err != nil {
		return nil, err
	}
	t, err := NormalizeNYT(got.raw, req.Counties)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	switch req.DataType {
	case DataCases:
		t = t.Drop(DataDeaths)
	case DataDeaths:
		t = t.Drop(DataCases)
	}
	if req.Format == FormatWide {
		if t, err = reshape.ToWide(t, req.DataType, nil, frame.ColState); err != nil {
			return nil, err
		}
	}
	return newResult(t, NYTAttribution, []file{got}), nil
}

func newResult(t *frame.Table, attribution string, files []file) *Result {
	res := &Result{Table: t, Attribution: attribution}
	for _, fl := range files {
		if fl.stale {
			res.Stale = true
			res.Warnings = append(res.Warnings, fl.warning)
		}
	}
	return res
}

// get returns a provider file, downloading it first when update is set.
// A failed download falls back to the cached copy and marks it stale.
func (f *Fetcher) get(ctx context.Context, provider, baseURL, name string, update bool) (file, error) {
	path := filepath.Join(f.cfg.CacheDir, provider, name)
	var out file

	if update {
		data, err := f.download(ctx, baseURL+name)
		if err == nil {
			if err := writeFileAtomic(path, data); err != nil {
				f.logger.Warn("could not cache file", slog.String("file", name), slog.String("error", err.Error()))
			}
			raw, err := ReadCSV(bytes.NewReader(data), nil)
			if err != nil {
				return out, fmt.Errorf("%s: %w", name, err)
			}
			f.logger.Debug("downloaded file", slog.String("file", name), slog.Int("bytes", len(data)))
			out.raw = raw
			return out, nil
		}
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		f.logger.Warn("download failed, using cached copy", slog.String("file", name), slog.String("error", err.Error()))
		out.warning = fmt.Sprintf("could not update %s (%v); data from the most recent download is used", name, err)
		raw, rerr := LoadCSV(path, nil)
		if rerr != nil {
			if errors.Is(rerr, fs.ErrNotExist) {
				return out, fmt.Errorf("%w: %s has not been downloaded before and the download failed: %v", ErrNoData, name, err)
			}
			return out, fmt.Errorf("%s: %w", path, rerr)
		}
		out.raw, out.stale = raw, true
		return out, nil
	}

	out.warning = fmt.Sprintf("update disabled; data for %s from the most recent download is used", name)
	raw, err := LoadCSV(path, nil)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return out, fmt.Errorf("%w: %s has not been downloaded before", ErrNoData, name)
		}
		return out, fmt.Errorf("%s: %w", path, err)
	}
	out.raw, out.stale = raw, true
	return out, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: unexpected status %s", url, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return data, nil
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
