package export

import (
	"fmt"
	"io"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/sartorproj/covidframe/frame"
)

// Schema metadata keys set by ToArrow.
const (
	MetaLayout = "covidframe.layout"
	MetaSchema = "covidframe.schema"
	MetaMetric = "covidframe.metric"
)

const parquetRowGroup = 64 * 1024

// ToArrow converts t to an Arrow table: the date column as date32,
// metrics and numeric keys as float64 and other keys as strings. Nulls and
// NaN become Arrow nulls. The caller releases the result.
func ToArrow(t *frame.Table, mem memory.Allocator) (arrow.Table, error) {
	cols, err := columns(t)
	if err != nil {
		return nil, err
	}

	fields := make([]arrow.Field, len(cols))
	arrs := make([]arrow.Array, len(cols))
	defer func() {
		for _, a := range arrs {
			if a != nil {
				a.Release()
			}
		}
	}()
	for i, c := range cols {
		fields[i], arrs[i] = buildColumn(c, t.NumRows(), mem)
	}

	meta := arrow.NewMetadata(
		[]string{MetaLayout, MetaSchema, MetaMetric},
		[]string{t.Layout().String(), t.Schema().String(), t.MetricName()})
	schema := arrow.NewSchema(fields, &meta)

	arrowCols := make([]arrow.Column, len(cols))
	for i := range cols {
		chunked := arrow.NewChunked(fields[i].Type, []arrow.Array{arrs[i]})
		arrowCols[i] = *arrow.NewColumn(fields[i], chunked)
		chunked.Release()
	}
	tbl := array.NewTable(schema, arrowCols, int64(t.NumRows()))
	for i := range arrowCols {
		arrowCols[i].Release()
	}
	return tbl, nil
}

func buildColumn(c column, rows int, mem memory.Allocator) (arrow.Field, arrow.Array) {
	switch c.kind {
	case frame.KindDate:
		b := array.NewDate32Builder(mem)
		defer b.Release()
		for r := 0; r < rows; r++ {
			if v := c.cell(r); v.IsNull() {
				b.AppendNull()
			} else {
				b.Append(arrow.Date32FromTime(v.Time()))
			}
		}
		return arrow.Field{Name: c.name, Type: arrow.FixedWidthTypes.Date32, Nullable: true}, b.NewArray()
	case frame.KindNumber:
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		for r := 0; r < rows; r++ {
			if v := c.cell(r); v.IsNull() || math.IsNaN(v.Float()) {
				b.AppendNull()
			} else {
				b.Append(v.Float())
			}
		}
		return arrow.Field{Name: c.name, Type: arrow.PrimitiveTypes.Float64, Nullable: true}, b.NewArray()
	default:
		b := array.NewStringBuilder(mem)
		defer b.Release()
		for r := 0; r < rows; r++ {
			if v := c.cell(r); v.IsNull() {
				b.AppendNull()
			} else {
				b.Append(v.String())
			}
		}
		return arrow.Field{Name: c.name, Type: arrow.BinaryTypes.String, Nullable: true}, b.NewArray()
	}
}

// WriteParquet writes t as a Snappy-compressed Parquet file with the Arrow
// schema stored alongside. It does not close w.
func WriteParquet(w io.Writer, t *frame.Table) error {
	tbl, err := ToArrow(t, memory.NewGoAllocator())
	if err != nil {
		return err
	}
	defer tbl.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())
	// The parquet writer closes sinks that are io.Closers; w stays the
	// caller's to close.
	writer, err := pqarrow.NewFileWriter(tbl.Schema(), struct{ io.Writer }{w}, props, arrowProps)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := writer.WriteTable(tbl, parquetRowGroup); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write table to parquet: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}
