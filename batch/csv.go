// Copyright 2026 The JamLocate Authors
// SPDX-License-Identifier: Apache-2.0

// Package batch resolves address files in bulk: a semicolon-separated CSV
// in, a comma-separated CSV with coordinate and boundary columns out.
package batch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/jamaicageo/jamlocate/geocode"
)

// DefaultColumn is the input column holding the address to resolve.
const DefaultColumn = "address"

// nameColumn, when present and non-empty, is prepended to the address so
// that "Sangster Intl" plus "Montego Bay" queries as one string.
const nameColumn = "name"

// resultColumns are appended to the input header in the output file.
var resultColumns = []string{
	"latitude",
	"longitude",
	"geocode_confidence",
	"ADM1_PCODE",
	"ADM1_EN",
	"ADM2_PCODE",
	"ADM2_EN",
}

// Table is a parsed input file: the original header and rows, plus the
// location of the address column.
type Table struct {
	Header []string
	Rows   [][]string

	column int
	name   int
}

// ReadTable parses a semicolon-separated CSV, tolerating a UTF-8 byte order
// mark and ragged rows. When the address column is missing and the file has
// a single column, that column is used regardless of its header. A positive
// limit keeps only the first rows.
func ReadTable(r io.Reader, column string, limit int) (*Table, error) {
	if column == "" {
		column = DefaultColumn
	}

	reader := csv.NewReader(transform.NewReader(r, unicode.UTF8BOM.NewDecoder()))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("reading csv: file has no header row")
	}

	table := &Table{
		Header: records[0],
		Rows:   records[1:],
		column: indexOf(records[0], column),
		name:   indexOf(records[0], nameColumn),
	}

	if table.column < 0 {
		if len(table.Header) != 1 {
			return nil, fmt.Errorf("column %q not found, available columns: %s",
				column, strings.Join(table.Header, ", "))
		}

		// A one-column file is an address list whatever its header says.
		table.Header[0] = column
		table.column = 0
	}

	if limit > 0 && len(table.Rows) > limit {
		table.Rows = table.Rows[:limit]
	}

	return table, nil
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Query builds the resolution query for row i. An empty address yields an
// empty query, which the processor skips.
func (t *Table) Query(i int) string {
	address := strings.TrimSpace(cell(t.Rows[i], t.column))
	if address == "" {
		return ""
	}

	if t.name >= 0 {
		if name := strings.TrimSpace(cell(t.Rows[i], t.name)); name != "" {
			return name + ", " + address
		}
	}

	return address
}

// WriteResults writes the table with the resolution columns appended, as a
// comma-separated CSV. Failed and skipped rows keep their input cells and
// leave the appended columns empty.
func WriteResults(w io.Writer, t *Table, results []Result) error {
	if len(results) != t.Len() {
		return fmt.Errorf("got %d results for %d rows", len(results), t.Len())
	}

	writer := csv.NewWriter(w)

	header := make([]string, 0, len(t.Header)+len(resultColumns))
	header = append(header, t.Header...)
	header = append(header, resultColumns...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for i, row := range t.Rows {
		record := make([]string, len(t.Header), len(header))
		for j := range t.Header {
			record[j] = cell(row, j)
		}
		record = append(record, resultCells(results[i].Resolution)...)

		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing csv row %d: %w", i, err)
		}
	}

	writer.Flush()

	return writer.Error()
}

func resultCells(resolution *geocode.Resolution) []string {
	if resolution == nil {
		return make([]string, len(resultColumns))
	}

	return []string{
		strconv.FormatFloat(resolution.Point.Lat, 'f', -1, 64),
		strconv.FormatFloat(resolution.Point.Lng, 'f', -1, 64),
		resolution.Quality.String(),
		resolution.ParishCode,
		resolution.ParishName,
		resolution.CommunityCode,
		resolution.CommunityName,
	}
}

func indexOf(header []string, column string) int {
	for i, name := range header {
		if name == column {
			return i
		}
	}

	return -1
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}

	return row[i]
}
