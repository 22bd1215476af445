package frame

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// DateColumn is the name of the date column of a long table.
const DateColumn = "date"

// DateFormat renders dates and wide-table date headers.
const DateFormat = "2006-01-02"

// Layout tells whether dates are row values or column headers.
type Layout uint8

const (
	// Long holds one row per (entity, date); the date is a column value.
	Long Layout = iota
	// Wide holds one row per entity; each date is its own column.
	Wide
)

func (l Layout) String() string {
	if l == Wide {
		return "wide"
	}
	return "long"
}

// KeyColumn is an identifier column.
type KeyColumn struct {
	Name   string
	Values []Value
}

// MetricColumn is a numeric column. NaN marks a missing measurement.
type MetricColumn struct {
	Name   string
	Values []float64
}

// Table is the canonical in-memory table. Tables are immutable by
// convention: accessors hand out copies and every transform builds a new
// Table.
//
// In a long table, dates holds one date per row and metrics holds the
// metric columns. In a wide table, dates holds the ascending header dates
// and metrics[j] holds the values under dates[j].
type Table struct {
	layout  Layout
	schema  Schema
	metric  string
	hasDate bool
	dates   []time.Time
	keys    []KeyColumn
	metrics []MetricColumn
	rows    int
}

// NewLong builds a long table with a date column.
func NewLong(dates []time.Time, keys []KeyColumn, metrics []MetricColumn) (*Table, error) {
	d := make([]time.Time, len(dates))
	for i, t := range dates {
		d[i] = Day(t)
	}
	t := &Table{
		layout:  Long,
		hasDate: true,
		dates:   d,
		keys:    copyKeys(keys),
		metrics: copyMetrics(metrics),
		rows:    len(dates),
	}
	if err := t.validate("frame.NewLong"); err != nil {
		return nil, err
	}
	t.schema = InferSchema(t.KeyNames())
	return t, nil
}

// NewKeyed builds a long table without a date column, such as the result
// of aggregating the date away.
func NewKeyed(keys []KeyColumn, metrics []MetricColumn) (*Table, error) {
	rows := 0
	switch {
	case len(keys) > 0:
		rows = len(keys[0].Values)
	case len(metrics) > 0:
		rows = len(metrics[0].Values)
	}
	t := &Table{
		layout:  Long,
		keys:    copyKeys(keys),
		metrics: copyMetrics(metrics),
		rows:    rows,
	}
	if err := t.validate("frame.NewKeyed"); err != nil {
		return nil, err
	}
	t.schema = InferSchema(t.KeyNames())
	return t, nil
}

// NewWide builds a wide table carrying metric. values[j] holds the column
// under dates[j]. Headers are sorted ascending; identifier tuples must be
// unique.
func NewWide(metric string, keys []KeyColumn, dates []time.Time, values [][]float64) (*Table, error) {
	const op = "frame.NewWide"
	if metric == "" {
		return nil, ArgumentError(op, "metric name is empty")
	}
	if len(dates) != len(values) {
		return nil, ArgumentError(op, "%d date headers but %d value columns", len(dates), len(values))
	}
	rows := 0
	switch {
	case len(keys) > 0:
		rows = len(keys[0].Values)
	case len(values) > 0:
		rows = len(values[0])
	}

	order := make([]int, len(dates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return dates[order[a]].Before(dates[order[b]]) })

	hdr := make([]time.Time, len(dates))
	cols := make([]MetricColumn, len(dates))
	for j, src := range order {
		hdr[j] = Day(dates[src])
		cols[j] = MetricColumn{
			Name:   hdr[j].Format(DateFormat),
			Values: append([]float64(nil), values[src]...),
		}
	}

	t := &Table{
		layout:  Wide,
		metric:  metric,
		dates:   hdr,
		keys:    copyKeys(keys),
		metrics: cols,
		rows:    rows,
	}
	for j := 1; j < len(hdr); j++ {
		if hdr[j].Equal(hdr[j-1]) {
			return nil, &DuplicateKeyError{Op: op, Columns: []string{"date header"}, Key: []Value{Date(hdr[j])}}
		}
	}
	if err := t.validate(op); err != nil {
		return nil, err
	}
	if err := CheckUnique(t, op, t.KeyNames()); err != nil {
		return nil, err
	}
	t.schema = InferSchema(t.KeyNames())
	return t, nil
}

func (t *Table) validate(op string) error {
	seen := make(map[string]bool)
	if t.hasDate {
		seen[DateColumn] = true
	}
	check := func(name string, n int) error {
		if name == "" {
			return ArgumentError(op, "empty column name")
		}
		if t.layout == Long && name == DateColumn {
			return ArgumentError(op, "%q is reserved for the date column", DateColumn)
		}
		if seen[name] {
			return ArgumentError(op, "duplicate column %q", name)
		}
		seen[name] = true
		if n != t.rows {
			return ArgumentError(op, "column %q has %d values, want %d", name, n, t.rows)
		}
		return nil
	}
	for _, k := range t.keys {
		if err := check(k.Name, len(k.Values)); err != nil {
			return err
		}
	}
	for _, m := range t.metrics {
		if err := check(m.Name, len(m.Values)); err != nil {
			return err
		}
	}
	return nil
}

// Layout returns the table layout.
func (t *Table) Layout() Layout { return t.layout }

// Schema returns the schema tag.
func (t *Table) Schema() Schema { return t.schema }

// WithSchema returns a copy of t tagged with s. Keys of s must exist.
func (t *Table) WithSchema(s Schema) (*Table, error) {
	if missing := t.missing(s.keys); len(missing) > 0 {
		return nil, &MissingColumnError{Op: "frame.WithSchema", Missing: missing, Columns: t.Columns()}
	}
	out := t.clone()
	out.schema = s
	return out, nil
}

// Inherit tags t with the parent schema s when all of its keys are still
// present, and leaves t's own schema otherwise.
func Inherit(t *Table, s Schema) *Table {
	if len(t.missing(s.keys)) > 0 || (s.kind == SchemaGeneric && len(s.keys) == 0) {
		return t
	}
	out := t.clone()
	out.schema = s
	return out
}

// MetricName returns the metric carried by a wide table's date headers.
// It is empty for long tables.
func (t *Table) MetricName() string { return t.metric }

// HasDate reports whether a long table has a date column. Wide tables
// always report true.
func (t *Table) HasDate() bool { return t.layout == Wide || t.hasDate }

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return t.rows }

// Columns lists column names in display order: for long tables the date
// column, keys and metrics; for wide tables keys and then date headers.
func (t *Table) Columns() []string {
	cols := make([]string, 0, 1+len(t.keys)+len(t.metrics))
	if t.layout == Long && t.hasDate {
		cols = append(cols, DateColumn)
	}
	for _, k := range t.keys {
		cols = append(cols, k.Name)
	}
	for _, m := range t.metrics {
		cols = append(cols, m.Name)
	}
	return cols
}

// KeyNames lists identifier column names.
func (t *Table) KeyNames() []string {
	names := make([]string, len(t.keys))
	for i, k := range t.keys {
		names[i] = k.Name
	}
	return names
}

// MetricNames lists metric column names of a long table; nil for wide.
func (t *Table) MetricNames() []string {
	if t.layout == Wide {
		return nil
	}
	names := make([]string, len(t.metrics))
	for i, m := range t.metrics {
		names[i] = m.Name
	}
	return names
}

// Dates returns the per-row dates of a long table, or the header dates of a
// wide table.
func (t *Table) Dates() []time.Time {
	if t.layout == Long && !t.hasDate {
		return nil
	}
	return append([]time.Time(nil), t.dates...)
}

// HasKey reports whether name is an identifier column.
func (t *Table) HasKey(name string) bool {
	_, ok := t.keyIndex(name)
	return ok
}

// HasMetric reports whether name is a metric column (or date header).
func (t *Table) HasMetric(name string) bool {
	_, ok := t.metricIndex(name)
	return ok
}

// HasColumn reports whether name is any column of the table.
func (t *Table) HasColumn(name string) bool {
	if name == DateColumn && t.layout == Long && t.hasDate {
		return true
	}
	return t.HasKey(name) || t.HasMetric(name)
}

// Keys returns a copy of an identifier column.
func (t *Table) Keys(name string) ([]Value, error) {
	i, ok := t.keyIndex(name)
	if !ok {
		return nil, &MissingColumnError{Op: "frame.Keys", Missing: []string{name}, Columns: t.Columns()}
	}
	return append([]Value(nil), t.keys[i].Values...), nil
}

// Values returns a copy of a metric column. For wide tables name is a date
// header formatted with DateFormat.
func (t *Table) Values(name string) ([]float64, error) {
	i, ok := t.metricIndex(name)
	if !ok {
		return nil, &MissingColumnError{Op: "frame.Values", Missing: []string{name}, Columns: t.Columns()}
	}
	return append([]float64(nil), t.metrics[i].Values...), nil
}

// DateValues returns a copy of the wide column under date d.
func (t *Table) DateValues(d time.Time) ([]float64, error) {
	return t.Values(Day(d).Format(DateFormat))
}

// Cell returns the value at (column, row) as a Value: dates as Date,
// metrics as Number (NaN as null).
func (t *Table) Cell(name string, row int) (Value, error) {
	get, err := t.reader("frame.Cell", name)
	if err != nil {
		return Value{}, err
	}
	if row < 0 || row >= t.rows {
		return Value{}, ArgumentError("frame.Cell", "row %d out of range [0, %d)", row, t.rows)
	}
	return get(row), nil
}

// Take returns a new table holding the given rows in the given order.
func (t *Table) Take(rows []int) *Table {
	out := &Table{
		layout:  t.layout,
		schema:  t.schema,
		metric:  t.metric,
		hasDate: t.hasDate,
		rows:    len(rows),
	}
	if t.layout == Wide {
		out.dates = append([]time.Time(nil), t.dates...)
	} else if t.hasDate {
		out.dates = make([]time.Time, len(rows))
		for i, r := range rows {
			out.dates[i] = t.dates[r]
		}
	}
	out.keys = make([]KeyColumn, len(t.keys))
	for c, k := range t.keys {
		vals := make([]Value, len(rows))
		for i, r := range rows {
			vals[i] = k.Values[r]
		}
		out.keys[c] = KeyColumn{Name: k.Name, Values: vals}
	}
	out.metrics = make([]MetricColumn, len(t.metrics))
	for c, m := range t.metrics {
		vals := make([]float64, len(rows))
		for i, r := range rows {
			vals[i] = m.Values[r]
		}
		out.metrics[c] = MetricColumn{Name: m.Name, Values: vals}
	}
	return out
}

// Filter returns the rows for which keep returns true, in order.
func (t *Table) Filter(keep func(row int) bool) *Table {
	var rows []int
	for i := 0; i < t.rows; i++ {
		if keep(i) {
			rows = append(rows, i)
		}
	}
	return t.Take(rows)
}

// Drop removes identifier or metric columns. Unknown names are ignored.
// Date headers of a wide table cannot be dropped.
func (t *Table) Drop(names ...string) *Table {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := t.clone()
	out.keys = out.keys[:0]
	for _, k := range t.keys {
		if !drop[k.Name] {
			out.keys = append(out.keys, k)
		}
	}
	if t.layout == Long {
		out.metrics = out.metrics[:0]
		for _, m := range t.metrics {
			if !drop[m.Name] {
				out.metrics = append(out.metrics, m)
			}
		}
		if drop[DateColumn] {
			out.hasDate = false
			out.dates = nil
		}
	}
	out.schema = t.schema.derive(out.KeyNames())
	return out
}

// WithMetric returns a long table with the metric column set to values,
// replacing a column of the same name or appending a new one.
func (t *Table) WithMetric(name string, values []float64) (*Table, error) {
	const op = "frame.WithMetric"
	if t.layout != Long {
		return nil, &InvalidShapeError{Op: op, Reason: "metric columns can only be added to long tables", Columns: t.Columns()}
	}
	if len(values) != t.rows {
		return nil, ArgumentError(op, "column %q has %d values, want %d", name, len(values), t.rows)
	}
	if name == "" || name == DateColumn || t.HasKey(name) {
		return nil, ArgumentError(op, "cannot use %q as a metric column name", name)
	}
	out := t.clone()
	col := MetricColumn{Name: name, Values: append([]float64(nil), values...)}
	if i, ok := out.metricIndex(name); ok {
		out.metrics[i] = col
	} else {
		out.metrics = append(out.metrics, col)
	}
	return out, nil
}

// WithKey returns a table with the identifier column set to values,
// replacing a column of the same name or appending a new one.
func (t *Table) WithKey(name string, values []Value) (*Table, error) {
	const op = "frame.WithKey"
	if len(values) != t.rows {
		return nil, ArgumentError(op, "column %q has %d values, want %d", name, len(values), t.rows)
	}
	if name == "" || (t.layout == Long && name == DateColumn) || t.HasMetric(name) {
		return nil, ArgumentError(op, "cannot use %q as a key column name", name)
	}
	out := t.clone()
	col := KeyColumn{Name: name, Values: append([]Value(nil), values...)}
	if i, ok := out.keyIndex(name); ok {
		out.keys[i] = col
	} else {
		out.keys = append(out.keys, col)
	}
	out.schema = t.schema.derive(out.KeyNames())
	return out, nil
}

// clone copies the column headers; column storage is shared and must not
// be written through the copy.
func (t *Table) clone() *Table {
	out := *t
	out.keys = append([]KeyColumn(nil), t.keys...)
	out.metrics = append([]MetricColumn(nil), t.metrics...)
	return &out
}

func (t *Table) keyIndex(name string) (int, bool) {
	for i, k := range t.keys {
		if k.Name == name {
			return i, true
		}
	}
	return -1, false
}

func (t *Table) metricIndex(name string) (int, bool) {
	for i, m := range t.metrics {
		if m.Name == name {
			return i, true
		}
	}
	return -1, false
}

func (t *Table) missing(names []string) []string {
	var out []string
	for _, n := range names {
		if !t.HasColumn(n) {
			out = append(out, n)
		}
	}
	return out
}

// reader returns a row accessor for any column as a Value.
func (t *Table) reader(op, name string) (func(int) Value, error) {
	if name == DateColumn && t.layout == Long && t.hasDate {
		return func(r int) Value { return Date(t.dates[r]) }, nil
	}
	if i, ok := t.keyIndex(name); ok {
		vals := t.keys[i].Values
		return func(r int) Value { return vals[r] }, nil
	}
	if i, ok := t.metricIndex(name); ok {
		vals := t.metrics[i].Values
		return func(r int) Value {
			if math.IsNaN(vals[r]) {
				return Null()
			}
			return Number(vals[r])
		}, nil
	}
	return nil, &MissingColumnError{Op: op, Missing: []string{name}, Columns: t.Columns()}
}

// RequireColumns returns a MissingColumnError naming every absent column.
func RequireColumns(t *Table, op string, names ...string) error {
	if missing := t.missing(names); len(missing) > 0 {
		return &MissingColumnError{Op: op, Missing: missing, Columns: t.Columns()}
	}
	return nil
}

// RequireDate fails unless t is a long table with a date column or a wide
// table with at least one date header.
func RequireDate(t *Table, op string) error {
	if t.layout == Long && !t.hasDate {
		return &InvalidShapeError{Op: op, Reason: "table has neither a date column nor date headers", Columns: t.Columns()}
	}
	return nil
}

// ResolveKeys returns keys, or the schema's key columns when keys is
// empty, after checking they exist.
func ResolveKeys(t *Table, op string, keys []string) ([]string, error) {
	if len(keys) == 0 {
		keys = t.schema.KeyColumns()
	}
	if err := RequireColumns(t, op, keys...); err != nil {
		return nil, err
	}
	return append([]string(nil), keys...), nil
}

func copyKeys(in []KeyColumn) []KeyColumn {
	out := make([]KeyColumn, len(in))
	for i, k := range in {
		out[i] = KeyColumn{Name: k.Name, Values: append([]Value(nil), k.Values...)}
	}
	return out
}

func copyMetrics(in []MetricColumn) []MetricColumn {
	out := make([]MetricColumn, len(in))
	for i, m := range in {
		out[i] = MetricColumn{Name: m.Name, Values: append([]float64(nil), m.Values...)}
	}
	return out
}

func (t *Table) String() string {
	return fmt.Sprintf("Table(%s, %s, %d rows, columns %v)", t.layout, t.schema, t.rows, t.Columns())
}
