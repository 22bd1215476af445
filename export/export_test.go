package export

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sartorproj/covidframe/frame"
)

func sample(t *testing.T) *frame.Table {
	t.Helper()
	tbl, err := frame.NewLong(
		[]time.Time{frame.D(2020, 3, 1), frame.D(2020, 3, 2)},
		[]frame.KeyColumn{
			{Name: frame.ColProvinceState, Values: []frame.Value{frame.Null(), frame.String("Hubei")}},
			{Name: frame.ColCountryRegion, Values: []frame.Value{frame.String("Italy"), frame.String("China")}},
			{Name: "Population", Values: []frame.Value{frame.Number(60.5), frame.Null()}},
		},
		[]frame.MetricColumn{{Name: "cases", Values: []float64{10, math.NaN()}}})
	require.NoError(t, err)
	return tbl
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample(t)))
	want := "date,Province/State,Country/Region,Population,cases\n" +
		"2020-03-01,,Italy,60.5,10\n" +
		"2020-03-02,Hubei,China,,\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSVWide(t *testing.T) {
	wide, err := frame.NewWide("cases",
		[]frame.KeyColumn{{Name: frame.ColState, Values: []frame.Value{frame.String("Ohio")}}},
		[]time.Time{frame.D(2020, 1, 2), frame.D(2020, 1, 1)}, [][]float64{{5}, {3}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, wide))
	assert.Equal(t, "state,2020-01-01,2020-01-02\nOhio,3,5\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sample(t)))

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "2020-03-01", rows[0]["date"])
	assert.Nil(t, rows[0][frame.ColProvinceState])
	assert.Equal(t, 10.0, rows[0]["cases"])
	assert.Nil(t, rows[1]["cases"])
	assert.Nil(t, rows[1]["Population"])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sample(t), ""))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{DefaultSheet}, f.GetSheetList())
	header, err := f.GetCellValue(DefaultSheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, frame.ColProvinceState, header)

	country, err := f.GetCellValue(DefaultSheet, "C3")
	require.NoError(t, err)
	assert.Equal(t, "China", country)
	cases, err := f.GetCellValue(DefaultSheet, "E2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "10", cases)
	missing, err := f.GetCellValue(DefaultSheet, "E3")
	require.NoError(t, err)
	assert.Empty(t, missing)
	date, err := f.GetCellValue(DefaultSheet, "A2")
	require.NoError(t, err)
	assert.NotEmpty(t, date)
}

func TestToArrow(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	tbl, err := ToArrow(sample(t), mem)
	require.NoError(t, err)
	defer tbl.Release()

	schema := tbl.Schema()
	require.Equal(t, 5, len(schema.Fields()))
	assert.Equal(t, arrow.FixedWidthTypes.Date32, schema.Field(0).Type)
	assert.Equal(t, arrow.BinaryTypes.String, schema.Field(1).Type)
	assert.Equal(t, arrow.PrimitiveTypes.Float64, schema.Field(3).Type, "numeric key column")
	assert.Equal(t, arrow.PrimitiveTypes.Float64, schema.Field(4).Type)
	layout, ok := schema.Metadata().GetValue(MetaLayout)
	require.True(t, ok)
	assert.Equal(t, frame.Long.String(), layout)

	assert.Equal(t, int64(2), tbl.NumRows())
	assert.Equal(t, 1, tbl.Column(1).Data().NullN(), "null province")
	assert.Equal(t, 1, tbl.Column(4).Data().NullN(), "NaN cases")

	dates := tbl.Column(0).Data().Chunk(0).(*array.Date32)
	assert.Equal(t, frame.D(2020, 3, 2), dates.Value(1).ToTime().UTC())
}

func TestWriteParquetRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteParquet(&buf, sample(t)))

	pf, err := file.NewParquetReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer pf.Close()
	reader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, memory.NewGoAllocator())
	require.NoError(t, err)
	tbl, err := reader.ReadTable(context.Background())
	require.NoError(t, err)
	defer tbl.Release()

	assert.Equal(t, int64(2), tbl.NumRows())
	names := make([]string, 0, tbl.NumCols())
	for _, f := range tbl.Schema().Fields() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{frame.DateColumn, frame.ColProvinceState, frame.ColCountryRegion, "Population", "cases"}, names)

	cases := tbl.Column(4).Data().Chunk(0).(*array.Float64)
	assert.Equal(t, 10.0, cases.Value(0))
	assert.True(t, cases.IsNull(1))
}

// closeCounter is a buffer that records Close calls.
type closeCounter struct {
	bytes.Buffer
	closed int
}

func (c *closeCounter) Close() error {
	c.closed++
	return nil
}

func TestWriteParquetLeavesWriterOpen(t *testing.T) {
	var sink closeCounter
	require.NoError(t, WriteParquet(&sink, sample(t)))
	assert.Zero(t, sink.closed)
	assert.Equal(t, "PAR1", string(sink.Bytes()[:4]))

	path := filepath.Join(t.TempDir(), "cases.parquet")
	require.NoError(t, WriteFile(path, sample(t)))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	pf, err := file.NewParquetReader(f)
	require.NoError(t, err)
	defer pf.Close()
	assert.Equal(t, int64(2), pf.NumRows())
}

func TestWriteFileByExtension(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"out.csv", "out.json", "out.xlsx", "out.parquet"} {
		path := filepath.Join(dir, name)
		require.NoError(t, WriteFile(path, sample(t)), name)
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size(), name)
	}

	err := WriteFile(filepath.Join(dir, "out.txt"), sample(t))
	assert.ErrorIs(t, err, frame.ErrInvalidArgument)
}

func TestKeyKind(t *testing.T) {
	tests := []struct {
		name string
		vals []frame.Value
		want frame.Kind
	}{
		{"all null", []frame.Value{frame.Null()}, frame.KindString},
		{"numbers", []frame.Value{frame.Null(), frame.Number(1)}, frame.KindNumber},
		{"mixed", []frame.Value{frame.Number(1), frame.String("a")}, frame.KindString},
		{"dates", []frame.Value{frame.Date(frame.D(2020, 1, 1))}, frame.KindDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, keyKind(tt.vals))
		})
	}
}
