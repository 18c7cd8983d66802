// Package analysis parses uploaded CSV documents and answers the
// exploratory questions the dashboard asks of them: column summaries,
// filtering, value counts and grouped aggregates.
package analysis

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/minibi/internal/common"
)

// Kind is the inferred type of a column.
type Kind string

const (
	Numeric     Kind = "numeric"
	Categorical Kind = "categorical"
)

type Column struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// Table is a parsed CSV document: a header and rows of equal width.
type Table struct {
	Columns []Column
	Rows    [][]string
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse reads a comma-separated document with a header row. Every record
// must have as many fields as the header. Failures wrap common.ErrParse.
func Parse(data []byte) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = 0

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: no columns to parse", common.ErrParse)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrParse, err)
	}

	rows := make([][]string, 0)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrParse, err)
		}
		rows = append(rows, rec)
	}

	t := &Table{Columns: make([]Column, len(header)), Rows: rows}
	for i, name := range header {
		t.Columns[i] = Column{Name: name, Kind: inferKind(rows, i)}
	}
	return t, nil
}

func inferKind(rows [][]string, col int) Kind {
	seen := false
	for _, row := range rows {
		cell := strings.TrimSpace(row[col])
		if cell == "" {
			continue
		}
		if _, ok := parseNumber(cell); !ok {
			return Categorical
		}
		seen = true
	}
	if seen {
		return Numeric
	}
	return Categorical
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Shape returns the number of data rows and columns.
func (t *Table) Shape() (rows, cols int) {
	return len(t.Rows), len(t.Columns)
}

// Index returns the position of the named column.
func (t *Table) Index(name string) (int, error) {
	for i, c := range t.Columns {
		if c.Name == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", common.ErrUnknownColumn, name)
}

// Names returns the header.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Number returns the numeric value of a cell; empty or non-numeric cells
// report false.
func (t *Table) Number(row, col int) (float64, bool) {
	return parseNumber(t.Rows[row][col])
}

func (t *Table) withRows(rows [][]string) *Table {
	return &Table{Columns: t.Columns, Rows: rows}
}

// WriteCSV writes the header and every row.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Names()); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}
