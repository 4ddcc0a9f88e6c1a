package parser

import (
	"bufio"
	"bytes"
	"call-insights/errors"
	"call-insights/metrics"
	"call-insights/models"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

// utf8BOM prefixes many spreadsheet CSV exports.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse reads a CSV call log from r and returns normalized call records.
// The first row is the header. Cells are kept as strings; typing happens
// during normalization.
func Parse(r io.Reader, opts Options) ([]models.CallRecord, error) {
	start := time.Now()
	defer func() { metrics.ParserDurationSeconds.Observe(time.Since(start).Seconds()) }()

	table, err := ReadCSV(r)
	if err != nil {
		return nil, err
	}
	return Normalize(table, opts)
}

// ParseXLSX reads the first sheet of an Excel workbook as a call log.
func ParseXLSX(r io.Reader, opts Options) ([]models.CallRecord, error) {
	start := time.Now()
	defer func() { metrics.ParserDurationSeconds.Observe(time.Since(start).Seconds()) }()

	table, err := ReadXLSX(r)
	if err != nil {
		return nil, err
	}
	return Normalize(table, opts)
}

// ParseFile picks the reader from the file extension (.csv or .xlsx).
func ParseFile(path string, opts Options) ([]models.CallRecord, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".csv" && ext != ".xlsx" {
		metrics.ParserErrorsTotal.WithLabelValues("unsupported_format").Inc()
		return nil, &errors.MalformedInputError{
			Err: fmt.Errorf("%w: %q", errors.ErrUnsupportedFormat, ext),
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	if ext == ".xlsx" {
		return ParseXLSX(file, opts)
	}
	return Parse(file, opts)
}

// ReadCSV loads a CSV into a Table through a gota dataframe with type
// detection disabled, so every column stays a string column. No token is
// treated as NA: cells such as "NA" are kept verbatim. A leading UTF-8 BOM
// is dropped. A file with only a header row yields a Table without rows.
func ReadCSV(r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	records, err := csv.NewReader(br).ReadAll()
	if err != nil {
		metrics.ParserErrorsTotal.WithLabelValues("unreadable_input").Inc()
		return nil, &errors.MalformedInputError{
			Err: fmt.Errorf("%w: %v", errors.ErrUnreadableInput, err),
		}
	}
	if len(records) == 0 {
		metrics.ParserErrorsTotal.WithLabelValues("empty_input").Inc()
		return nil, &errors.MalformedInputError{Err: errors.ErrEmptyInput}
	}
	// gota refuses a frame without data rows.
	if len(records) == 1 {
		return &Table{Columns: records[0]}, nil
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		metrics.ParserErrorsTotal.WithLabelValues("unreadable_input").Inc()
		return nil, &errors.MalformedInputError{
			Err: fmt.Errorf("%w: %v", errors.ErrUnreadableInput, df.Err),
		}
	}

	// Records() repeats the header as its first row.
	return &Table{Columns: records[0], Rows: df.Records()[1:]}, nil
}

// ReadXLSX loads the first sheet of a workbook into a Table.
// Short rows are padded to the header width.
func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		metrics.ParserErrorsTotal.WithLabelValues("unreadable_input").Inc()
		return nil, &errors.MalformedInputError{
			Err: fmt.Errorf("%w: %v", errors.ErrUnreadableInput, err),
		}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		metrics.ParserErrorsTotal.WithLabelValues("empty_input").Inc()
		return nil, &errors.MalformedInputError{Err: errors.ErrEmptyInput}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		metrics.ParserErrorsTotal.WithLabelValues("unreadable_input").Inc()
		return nil, &errors.MalformedInputError{
			Err: fmt.Errorf("%w: %v", errors.ErrUnreadableInput, err),
		}
	}
	if len(rows) == 0 {
		metrics.ParserErrorsTotal.WithLabelValues("empty_input").Inc()
		return nil, &errors.MalformedInputError{Err: errors.ErrEmptyInput}
	}

	table := &Table{Columns: rows[0]}
	width := len(rows[0])
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		padded := make([]string, width)
		copy(padded, row)
		table.Rows = append(table.Rows, padded)
	}
	return table, nil
}
