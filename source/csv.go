package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sartorproj/covidframe/frame"
)

// CSVOptions holds options for CSV loading.
type CSVOptions struct {
	HasHeader  bool     // Whether CSV has header row (default: true)
	Delimiter  rune     // Field delimiter (default: ',')
	SkipRows   int      // Number of rows to skip at start
	NullValues []string // Cells read as missing (default: "", NA, NaN, null)
}

// DefaultCSVOptions returns default options for CSV loading.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		HasHeader:  true,
		Delimiter:  ',',
		NullValues: []string{"", "NA", "NaN", "null"},
	}
}

// RawTable is a CSV file before any typing: a header and string records.
type RawTable struct {
	Header  []string
	Records [][]string

	nulls map[string]bool
}

// Index returns the position of a header, or -1.
func (r *RawTable) Index(name string) int {
	for i, h := range r.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// IsNull reports whether a cell is one of the configured missing markers.
func (r *RawTable) IsNull(cell string) bool {
	return r.nulls[cell]
}

// LoadCSV loads a raw table from a CSV file.
func LoadCSV(filename string, opts *CSVOptions) (*RawTable, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadCSV(file, opts)
}

// ReadCSV loads a raw table from an io.Reader. Cells are trimmed of
// surrounding spaces and quotes. Short records are padded with empty cells.
func ReadCSV(r io.Reader, opts *CSVOptions) (*RawTable, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	reader := csv.NewReader(r)
	reader.Comma = opts.Delimiter
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	// Skip rows if needed
	for i := 0; i < opts.SkipRows; i++ {
		if _, err := reader.Read(); err != nil {
			return nil, err
		}
	}

	raw := &RawTable{nulls: make(map[string]bool, len(opts.NullValues))}
	for _, n := range opts.NullValues {
		raw.nulls[n] = true
	}

	if opts.HasHeader {
		header, err := reader.Read()
		if err == io.EOF {
			return nil, errors.New("csv has no header row")
		}
		if err != nil {
			return nil, err
		}
		for i := range header {
			header[i] = clean(header[i])
		}
		raw.Header = header
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		for i := range record {
			record[i] = clean(record[i])
		}
		raw.Records = append(raw.Records, record)
	}

	// No header - name columns by position
	if !opts.HasHeader {
		width := 0
		for _, rec := range raw.Records {
			width = max(width, len(rec))
		}
		raw.Header = make([]string, width)
		for i := range raw.Header {
			raw.Header[i] = "column_" + strconv.Itoa(i+1)
		}
	}

	for i, rec := range raw.Records {
		if len(rec) > len(raw.Header) {
			return nil, fmt.Errorf("csv record %d has %d fields, header has %d", i+1, len(rec), len(raw.Header))
		}
		for len(rec) < len(raw.Header) {
			rec = append(rec, "")
		}
		raw.Records[i] = rec
	}
	return raw, nil
}

func clean(s string) string {
	return strings.TrimSpace(strings.Trim(s, "\""))
}

var dateFormats = []string{
	"2006-01-02",
	"1/2/06",
	"1/2/2006",
	"2006/01/02",
	"2006-01-02T15:04:05",
}

// ParseDate parses the date spellings found in provider files: ISO dates
// and the JHU month/day/year headers.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateFormats {
		if ts, err := time.Parse(layout, s); err == nil {
			return frame.Day(ts), true
		}
	}
	return time.Time{}, false
}

// number parses a metric cell. Missing markers read as NaN.
func (r *RawTable) number(cell string) (float64, error) {
	if r.IsNull(cell) {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(cell, 64)
}

// key turns an identifier cell into a Value; missing markers are null.
func (r *RawTable) key(cell string) frame.Value {
	if r.IsNull(cell) {
		return frame.Null()
	}
	return frame.String(cell)
}
