package parsers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	rosterdomain "github.com/combine-day/combine-bot/app/modules/roster/domain"
)

// CSVParser parses comma or tab separated uploads, including text pasted from
// a spreadsheet.
type CSVParser struct{}

// NewCSVParser creates a new CSVParser.
func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

// Parse reads the first row as headers and every following row as data.
// Line numbers are 1-based over data rows, matching what the engine reports.
func (p *CSVParser) Parse(data []byte) (rosterdomain.RawTable, error) {
	data = stripBOM(data)
	if len(bytes.TrimSpace(data)) == 0 {
		return rosterdomain.RawTable{}, fmt.Errorf("file is empty")
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return rosterdomain.RawTable{}, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(rows) == 0 {
		return rosterdomain.RawTable{}, fmt.Errorf("file has no header row")
	}

	headers := make([]string, 0, len(rows[0]))
	for _, h := range rows[0] {
		headers = append(headers, strings.TrimSpace(h))
	}

	table := rosterdomain.RawTable{Headers: headers}
	line := 0
	for _, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		line++
		cells := make(map[string]string, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			if i < len(row) {
				cells[header] = strings.TrimSpace(row[i])
			} else {
				cells[header] = ""
			}
		}
		table.Rows = append(table.Rows, rosterdomain.RawRow{Line: line, Cells: cells})
	}
	return table, nil
}

// sniffDelimiter picks tab when the header line carries tabs but no commas,
// so pasted spreadsheet text parses without the caller declaring a format.
func sniffDelimiter(data []byte) rune {
	firstLine := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		firstLine = data[:i]
	}
	if bytes.ContainsRune(firstLine, '\t') && !bytes.ContainsRune(firstLine, ',') {
		return '\t'
	}
	return ','
}

func stripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
