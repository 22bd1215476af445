// Package export writes tables to CSV, JSON, Excel workbooks, Arrow and
// Parquet.
//
// Every writer emits the columns in Table.Columns order. Null cells and
// NaN metrics come out as empty CSV cells, JSON null, empty spreadsheet
// cells or Arrow nulls.
package export
