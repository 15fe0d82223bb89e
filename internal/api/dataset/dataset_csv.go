package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/1457cus/shaoguan-travel-planner/internal/types"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// MalformedHint is shown to operators when a file fails structural parsing.
const MalformedHint = "check the file for unescaped commas or quotes (请检查文件中是否存在未转义的逗号或引号)"

// Backslash escapes are swapped for private-use runes before the csv reader
// sees them and restored per cell afterwards.
const (
	escapedQuote = "\uE000"
	escapedComma = "\uE001"
)

var (
	escapeReplacer  = strings.NewReplacer(`\"`, escapedQuote, `\,`, escapedComma)
	restoreReplacer = strings.NewReplacer(escapedQuote, `"`, escapedComma, ",")
)

// ReadStats describes what the reader had to tolerate.
type ReadStats struct {
	Rows     int
	Skipped  int
	Padded   int
	Warnings []string
}

// ReadCSV parses a UTF-8 delimited file with an optional byte-order mark.
// Rows with more fields than the header are skipped with a warning, shorter
// rows are padded with nulls.
func ReadCSV(r io.Reader, category types.Category) (*types.Table, ReadStats, error) {
	var stats ReadStats

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, stats, fmt.Errorf("read input: %w", err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)
	text := escapeReplacer.Replace(string(raw))

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, stats, fmt.Errorf("%w: file has no header row", types.ErrMalformedInput)
	}
	if err != nil {
		return nil, stats, fmt.Errorf("%w: %v", types.ErrMalformedInput, err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(restoreReplacer.Replace(h))
	}

	table := types.NewTable(category, header)
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("%w: %v", types.ErrMalformedInput, err)
		}
		line, _ := reader.FieldPos(0)
		if len(fields) > len(header) {
			stats.Skipped++
			stats.Warnings = append(stats.Warnings,
				fmt.Sprintf("line %d: expected %d fields, saw %d", line, len(header), len(fields)))
			continue
		}
		if len(fields) < len(header) {
			stats.Padded++
		}
		rec := make(types.Record, len(header))
		for i, col := range header {
			if i < len(fields) {
				rec[col] = restoreReplacer.Replace(fields[i])
			} else {
				rec[col] = ""
			}
		}
		table.Rows = append(table.Rows, rec)
	}
	stats.Rows = len(table.Rows)
	return table, stats, nil
}

// WriteCSV writes the table with a leading byte-order mark so spreadsheet
// tools detect UTF-8.
func WriteCSV(w io.Writer, table *types.Table) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(table.Columns))
	for _, rec := range table.Rows {
		for i, col := range table.Columns {
			row[i] = rec[col]
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
