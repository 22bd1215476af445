package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/covidframe/frame"
	"github.com/sartorproj/covidframe/internal/testutil"
)

var providerFiles = map[string]string{
	"/series/time_series_covid19_confirmed_global.csv": `Province/State,Country/Region,Lat,Long,1/22/20,1/23/20
,Afghanistan,33.0,65.0,0,1
Hubei,China,30.9,112.2,444,549
`,
	"/series/time_series_covid19_deaths_global.csv": `Province/State,Country/Region,Lat,Long,1/22/20,1/23/20
,Afghanistan,33.0,65.0,0,0
Hubei,China,30.9,112.2,17,24
`,
	"/series/time_series_covid19_recovered_global.csv": `Province/State,Country/Region,Lat,Long,1/22/20,1/23/20
,Afghanistan,33.0,65.0,0,0
Hubei,China,30.9,112.2,28,28
`,
	"/lookup/UID_ISO_FIPS_LookUp_Table.csv": lookupCSV,
	"/nyt/us-states.csv": `date,state,fips,cases,deaths
2020-01-21,Washington,53,1,0
2020-01-22,Washington,53,1,0
2020-01-22,Illinois,17,1,0
`,
}

type provider struct {
	srv   *httptest.Server
	fail  atomic.Bool
	calls atomic.Int32
}

func newProvider(t *testing.T) *provider {
	t.Helper()
	p := &provider{}
	p.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.calls.Add(1)
		if p.fail.Load() {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		body, ok := providerFiles[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(p.srv.Close)
	return p
}

func (p *provider) config(cacheDir string) Config {
	cfg := DefaultConfig()
	cfg.JHUSeriesURL = p.srv.URL + "/series/"
	cfg.JHULookupURL = p.srv.URL + "/lookup/"
	cfg.NYTURL = p.srv.URL + "/nyt/"
	cfg.CacheDir = cacheDir
	cfg.RequestsPerSecond = 0
	return cfg
}

func TestFetchJHULong(t *testing.T) {
	p := newProvider(t)
	cache := t.TempDir()
	f := NewFetcher(p.config(cache), WithLogger(testutil.NewTestLogger(t)))

	res, err := f.Fetch(context.Background(), DefaultRequest())
	require.NoError(t, err)
	assert.False(t, res.Stale)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, JHUAttribution, res.Attribution)
	assert.Equal(t, int32(4), p.calls.Load())

	tbl := res.Table
	assert.Equal(t, frame.SchemaJHUGlobal, tbl.Schema().Kind())
	for _, col := range []string{frame.DateColumn, "cases", "deaths", "recovered", "iso3", "Population"} {
		assert.True(t, tbl.HasColumn(col), col)
	}
	cases, _ := tbl.Values("cases")
	deaths, _ := tbl.Values("deaths")
	assert.Equal(t, []float64{0, 444, 1, 549}, cases)
	assert.Equal(t, []float64{0, 17, 0, 24}, deaths)

	_, err = os.Stat(filepath.Join(cache, JHU, "time_series_covid19_deaths_global.csv"))
	assert.NoError(t, err, "downloads are cached")
}

func TestFetchFallsBackToCache(t *testing.T) {
	p := newProvider(t)
	cache := t.TempDir()
	f := NewFetcher(p.config(cache), WithLogger(testutil.NewTestLogger(t)))

	req := DefaultRequest()
	req.DataType = DataCases
	_, err := f.Fetch(context.Background(), req)
	require.NoError(t, err)

	p.fail.Store(true)
	res, err := f.Fetch(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.Stale)
	require.Len(t, res.Warnings, 2)
	assert.Contains(t, res.Warnings[0], "could not update")
	assert.Equal(t, 4, res.Table.NumRows())
}

func TestFetchWithoutUpdate(t *testing.T) {
	p := newProvider(t)
	f := NewFetcher(p.config(t.TempDir()), WithLogger(testutil.NewTestLogger(t)))

	req := DefaultRequest()
	req.Update = false
	_, err := f.Fetch(context.Background(), req)
	assert.ErrorIs(t, err, ErrNoData)
	assert.Equal(t, int32(0), p.calls.Load(), "no download without update")

	p.fail.Store(true)
	req.Update = true
	_, err = f.Fetch(context.Background(), req)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestFetchNYTWide(t *testing.T) {
	p := newProvider(t)
	f := NewFetcher(p.config(t.TempDir()), WithLogger(testutil.NewTestLogger(t)))

	res, err := f.Fetch(context.Background(), Request{Source: NYT, Format: FormatWide, DataType: DataCases, Update: true})
	require.NoError(t, err)
	assert.Equal(t, NYTAttribution, res.Attribution)

	tbl := res.Table
	assert.Equal(t, frame.Wide, tbl.Layout())
	assert.Equal(t, []string{frame.ColState, "fips", "2020-01-21", "2020-01-22"}, tbl.Columns())
	states, _ := tbl.Keys(frame.ColState)
	assert.Equal(t, "Illinois", states[0].Str(), "sorted by state")
	first, _ := tbl.DateValues(frame.D(2020, 1, 21))
	assert.Equal(t, []float64{0, 1}, first)
}

func TestFetchNYTLongDropsUnrequested(t *testing.T) {
	p := newProvider(t)
	f := NewFetcher(p.config(t.TempDir()), WithLogger(testutil.NewTestLogger(t)))

	res, err := f.Fetch(context.Background(), Request{Source: NYT, Format: FormatLong, DataType: DataDeaths, Update: true})
	require.NoError(t, err)
	assert.False(t, res.Table.HasColumn("cases"))
	assert.True(t, res.Table.HasColumn("deaths"))
}

func TestFetchErrors(t *testing.T) {
	p := newProvider(t)
	f := NewFetcher(p.config(t.TempDir()), WithLogger(testutil.NewTestLogger(t)))

	_, err := f.Fetch(context.Background(), Request{Source: JHU, Format: FormatWide, DataType: DataAll})
	assert.ErrorIs(t, err, frame.ErrInvalidArgument)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.Fetch(ctx, DefaultRequest())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "context canceled"))
}
