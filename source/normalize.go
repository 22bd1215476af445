package source

import (
	"fmt"
	"strings"
	"time"

	"github.com/sartorproj/covidframe/frame"
)

// Region selects the JHU table family.
type Region string

const (
	Global Region = "global"
	US     Region = "us"
)

// Columns of the JHU location lookup table.
const (
	ColAdmin2        = "Admin2"
	ColFIPS          = "FIPS"
	ColProvinceState = "Province_State"
	ColCountryRegion = "Country_Region"
)

// JoinColumns returns the identifier columns JHU tables of the region are
// keyed by.
func (r Region) JoinColumns() []string {
	if r == US {
		return []string{frame.ColCombinedKey}
	}
	return []string{frame.ColProvinceState, frame.ColCountryRegion}
}

// fixJHU applies the provider's known data fixes to a copy of raw.
func fixJHU(raw *RawTable) *RawTable {
	out := &RawTable{Header: append([]string(nil), raw.Header...), nulls: raw.nulls}
	for i, h := range out.Header {
		if h == "Long_" {
			out.Header[i] = "Long"
		}
	}
	prov, country := raw.Index(frame.ColProvinceState), raw.Index(frame.ColCountryRegion)
	admin2, combined := raw.Index(ColAdmin2), raw.Index(frame.ColCombinedKey)

	for _, rec := range raw.Records {
		if prov >= 0 && country >= 0 && rec[prov] == "Recovered" && rec[country] == "Canada" {
			continue
		}
		// All zeros, and a typo for a real county.
		if admin2 >= 0 && combined >= 0 && rec[combined] == "Southwest, Utah, US" {
			continue
		}
		fixed := make([]string, len(rec))
		for i, cell := range rec {
			if cell == "Taiwan*" {
				cell = "Taiwan"
			}
			fixed[i] = cell
		}
		// Spacing in this column is inconsistent across files.
		if combined >= 0 {
			fixed[combined] = strings.ReplaceAll(fixed[combined], " ", "")
		}
		out.Records = append(out.Records, fixed)
	}
	return out
}

// NormalizeJHU turns a JHU time series file into a wide table carrying
// metric. Only the region's identifier columns and the date headers are
// kept; location details are joined back with AttachLocations.
func NormalizeJHU(raw *RawTable, region Region, metric string) (*frame.Table, error) {
	const op = "source.NormalizeJHU"
	raw = fixJHU(raw)

	idCols := region.JoinColumns()
	idIdx := make([]int, len(idCols))
	var missing []string
	for i, c := range idCols {
		if idIdx[i] = raw.Index(c); idIdx[i] < 0 {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &frame.MissingColumnError{Op: op, Missing: missing, Columns: raw.Header}
	}

	var dates []time.Time
	var dateIdx []int
	for i, h := range raw.Header {
		if d, ok := ParseDate(h); ok {
			dates = append(dates, d)
			dateIdx = append(dateIdx, i)
		}
	}
	if len(dates) == 0 {
		return nil, &frame.InvalidShapeError{Op: op, Reason: "no date column headers", Columns: raw.Header}
	}

	keys := make([]frame.KeyColumn, len(idCols))
	for c, name := range idCols {
		keys[c] = frame.KeyColumn{Name: name, Values: make([]frame.Value, len(raw.Records))}
	}
	values := make([][]float64, len(dates))
	for j := range values {
		values[j] = make([]float64, len(raw.Records))
	}
	for r, rec := range raw.Records {
		for c, i := range idIdx {
			keys[c].Values[r] = raw.key(rec[i])
		}
		for j, i := range dateIdx {
			v, err := raw.number(rec[i])
			if err != nil {
				return nil, fmt.Errorf("%s: row %d column %q: %w", op, r+1, raw.Header[i], err)
			}
			values[j][r] = v
		}
	}
	return frame.NewWide(metric, keys, dates, values)
}

// NormalizeJHULocations types the JHU UID/ISO/FIPS lookup table. Every
// column becomes an identifier column; columns whose cells are all numeric
// hold numbers.
func NormalizeJHULocations(raw *RawTable) (*frame.Table, error) {
	raw = fixJHU(raw)
	keys := make([]frame.KeyColumn, len(raw.Header))
	for c, name := range raw.Header {
		numeric := true
		for _, rec := range raw.Records {
			if raw.IsNull(rec[c]) {
				continue
			}
			if _, err := raw.number(rec[c]); err != nil {
				numeric = false
				break
			}
		}
		vals := make([]frame.Value, len(raw.Records))
		for r, rec := range raw.Records {
			switch {
			case raw.IsNull(rec[c]):
				vals[r] = frame.Null()
			case numeric:
				f, _ := raw.number(rec[c])
				vals[r] = frame.Number(f)
			default:
				vals[r] = frame.String(rec[c])
			}
		}
		keys[c] = frame.KeyColumn{Name: name, Values: vals}
	}
	return frame.NewKeyed(keys, nil)
}

// AttachLocations left-joins the location lookup table onto a JHU table by
// the region's identifier columns. Lookup columns become identifier
// columns; rows without a match get nulls.
//
// For the global region the lookup's county rows are dropped and its
// Province_State and Country_Region columns are matched against
// Province/State and Country/Region. FIPS and Admin2 are US only and are
// not attached.
func AttachLocations(t, locations *frame.Table, region Region) (*frame.Table, error) {
	const op = "source.AttachLocations"
	if region == Global {
		var err error
		if locations.HasKey(ColAdmin2) {
			admin2, err := locations.Keys(ColAdmin2)
			if err != nil {
				return nil, err
			}
			locations = locations.Filter(func(r int) bool { return admin2[r].IsNull() })
		}
		locations, err = renameKeys(locations, map[string]string{
			ColProvinceState: frame.ColProvinceState,
			ColCountryRegion: frame.ColCountryRegion,
		})
		if err != nil {
			return nil, err
		}
		locations = locations.Drop(ColFIPS, ColAdmin2)
	}

	join := region.JoinColumns()
	if err := frame.RequireColumns(t, op, join...); err != nil {
		return nil, err
	}
	if err := frame.RequireColumns(locations, op, join...); err != nil {
		return nil, err
	}

	locGroups, err := frame.GroupBy(locations, join)
	if err != nil {
		return nil, err
	}
	lookup := make(map[string]int, len(locGroups))
	for _, g := range locGroups {
		if len(g.Rows) > 1 {
			return nil, &frame.DuplicateKeyError{Op: op, Columns: join, Key: g.Key}
		}
		lookup[frame.KeyOf(g.Key)] = g.Rows[0]
	}

	match := make([]int, t.NumRows())
	groups, err := frame.GroupBy(t, join)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		loc, ok := lookup[frame.KeyOf(g.Key)]
		if !ok {
			loc = -1
		}
		for _, r := range g.Rows {
			match[r] = loc
		}
	}

	out := t
	for _, name := range locations.KeyNames() {
		if out.HasColumn(name) {
			continue
		}
		src, err := locations.Keys(name)
		if err != nil {
			return nil, err
		}
		vals := make([]frame.Value, t.NumRows())
		for r, loc := range match {
			if loc < 0 {
				vals[r] = frame.Null()
			} else {
				vals[r] = src[loc]
			}
		}
		if out, err = out.WithKey(name, vals); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// renameKeys rebuilds a keyed table with some identifier columns renamed.
func renameKeys(t *frame.Table, names map[string]string) (*frame.Table, error) {
	keys := make([]frame.KeyColumn, 0, len(t.KeyNames()))
	for _, name := range t.KeyNames() {
		vals, err := t.Keys(name)
		if err != nil {
			return nil, err
		}
		if to, ok := names[name]; ok {
			name = to
		}
		keys = append(keys, frame.KeyColumn{Name: name, Values: vals})
	}
	return frame.NewKeyed(keys, nil)
}

// NormalizeNYT types an NYT state or county file as a long table with
// identifier columns county (counties only), state and fips, and metric
// columns cases and deaths.
func NormalizeNYT(raw *RawTable, counties bool) (*frame.Table, error) {
	const op = "source.NormalizeNYT"
	idCols := []string{frame.ColState}
	if counties {
		idCols = []string{frame.ColCounty, frame.ColState}
	}
	if raw.Index("fips") >= 0 {
		idCols = append(idCols, "fips")
	}
	var metrics []string
	for _, m := range []string{"cases", "deaths"} {
		if raw.Index(m) >= 0 {
			metrics = append(metrics, m)
		}
	}
	required := append([]string{frame.DateColumn}, idCols...)
	if len(metrics) == 0 {
		required = append(required, "cases")
	}
	var missing []string
	for _, c := range required {
		if raw.Index(c) < 0 {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &frame.MissingColumnError{Op: op, Missing: missing, Columns: raw.Header}
	}
	return readLong(op, raw, idCols, metrics)
}

// ReadLong types a generic long CSV: a date column, the named metric
// columns and every other column as an identifier. With no metrics named,
// every column whose cells are all numeric is a metric.
func ReadLong(raw *RawTable, metrics []string) (*frame.Table, error) {
	const op = "source.ReadLong"
	if raw.Index(frame.DateColumn) < 0 {
		return nil, &frame.InvalidShapeError{Op: op, Reason: "no date column", Columns: raw.Header}
	}
	if len(metrics) == 0 {
		metrics = numericColumns(raw, frame.DateColumn)
	}
	isMetric := make(map[string]bool, len(metrics))
	var missing []string
	for _, m := range metrics {
		isMetric[m] = true
		if raw.Index(m) < 0 {
			missing = append(missing, m)
		}
	}
	if len(missing) > 0 {
		return nil, &frame.MissingColumnError{Op: op, Missing: missing, Columns: raw.Header}
	}
	var idCols []string
	for _, h := range raw.Header {
		if h != frame.DateColumn && !isMetric[h] {
			idCols = append(idCols, h)
		}
	}
	return readLong(op, raw, idCols, metrics)
}

func readLong(op string, raw *RawTable, idCols, metrics []string) (*frame.Table, error) {
	dateIdx := raw.Index(frame.DateColumn)
	dates := make([]time.Time, len(raw.Records))
	keys := make([]frame.KeyColumn, len(idCols))
	for c, name := range idCols {
		keys[c] = frame.KeyColumn{Name: name, Values: make([]frame.Value, len(raw.Records))}
	}
	cols := make([]frame.MetricColumn, len(metrics))
	for m, name := range metrics {
		cols[m] = frame.MetricColumn{Name: name, Values: make([]float64, len(raw.Records))}
	}

	for r, rec := range raw.Records {
		d, ok := ParseDate(rec[dateIdx])
		if !ok {
			return nil, fmt.Errorf("%s: row %d: cannot parse date %q", op, r+1, rec[dateIdx])
		}
		dates[r] = d
		for c, name := range idCols {
			keys[c].Values[r] = raw.key(rec[raw.Index(name)])
		}
		for m, name := range metrics {
			i := raw.Index(name)
			v, err := raw.number(rec[i])
			if err != nil {
				return nil, fmt.Errorf("%s: row %d column %q: %w", op, r+1, name, err)
			}
			cols[m].Values[r] = v
		}
	}
	return frame.NewLong(dates, keys, cols)
}

// ReadWide types a generic wide CSV: every header that parses as a date is
// a date column holding metric, every other column is an identifier.
func ReadWide(raw *RawTable, metric string) (*frame.Table, error) {
	const op = "source.ReadWide"
	var dates []time.Time
	var dateIdx, idIdx []int
	for i, h := range raw.Header {
		if d, ok := ParseDate(h); ok {
			dates = append(dates, d)
			dateIdx = append(dateIdx, i)
		} else {
			idIdx = append(idIdx, i)
		}
	}
	if len(dates) == 0 {
		return nil, &frame.InvalidShapeError{Op: op, Reason: "no date column headers", Columns: raw.Header}
	}

	keys := make([]frame.KeyColumn, len(idIdx))
	for c, i := range idIdx {
		vals := make([]frame.Value, len(raw.Records))
		for r, rec := range raw.Records {
			vals[r] = raw.key(rec[i])
		}
		keys[c] = frame.KeyColumn{Name: raw.Header[i], Values: vals}
	}
	values := make([][]float64, len(dates))
	for j, i := range dateIdx {
		values[j] = make([]float64, len(raw.Records))
		for r, rec := range raw.Records {
			v, err := raw.number(rec[i])
			if err != nil {
				return nil, fmt.Errorf("%s: row %d column %q: %w", op, r+1, raw.Header[i], err)
			}
			values[j][r] = v
		}
	}
	return frame.NewWide(metric, keys, dates, values)
}

func numericColumns(raw *RawTable, skip string) []string {
	var out []string
	for c, name := range raw.Header {
		if name == skip {
			continue
		}
		numeric, seen := true, false
		for _, rec := range raw.Records {
			if raw.IsNull(rec[c]) {
				continue
			}
			seen = true
			if _, err := raw.number(rec[c]); err != nil {
				numeric = false
				break
			}
		}
		if numeric && seen {
			out = append(out, name)
		}
	}
	return out
}
