package representatives

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Table names a reference table in CSV imports.
type Table string

const (
	TableMLA Table = "mla"
	TableMP  Table = "mp"
)

// Row is one parsed reference row. Seat is the assembly constituency for
// TableMLA and the parliamentary constituency for TableMP.
type Row struct {
	State string
	Seat  string
	Name  string
	Party string
}

func seatColumn(t Table) (string, error) {
	switch t {
	case TableMLA:
		return "constituency", nil
	case TableMP:
		return "parliamentary_constituency", nil
	}
	return "", fmt.Errorf("unknown reference table %q", t)
}

// ParseCSVFile reads a reference CSV with header
// state,<seat column>,name[,party].
func ParseCSVFile(path string, t Table) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseCSV(bufio.NewReader(f), t)
}

func ParseCSV(in io.Reader, t Table) ([]Row, error) {
	seatCol, err := seatColumn(t)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(in)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, errors.New("csv has no data rows")
	}

	header := records[0]
	// Handle BOM on first header cell
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, k := range []string{"state", seatCol, "name"} {
		if _, ok := col[k]; !ok {
			return nil, fmt.Errorf("missing required column: %s", k)
		}
	}

	seen := map[string]int{}
	out := make([]Row, 0, len(records)-1)
	for rowIdx := 1; rowIdx < len(records); rowIdx++ {
		rec := records[rowIdx]
		get := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		row := Row{
			State: get("state"),
			Seat:  get(seatCol),
			Name:  get("name"),
			Party: get("party"),
		}
		if row.State == "" || row.Seat == "" || row.Name == "" {
			return nil, fmt.Errorf("row %d: state, %s and name are required", rowIdx+1, seatCol)
		}

		key := seatKey(row.State, row.Seat)
		if prev, dup := seen[key]; dup {
			return nil, fmt.Errorf("row %d: duplicate seat %s/%s (first seen on row %d)", rowIdx+1, row.State, row.Seat, prev)
		}
		seen[key] = rowIdx + 1

		out = append(out, row)
	}
	return out, nil
}
