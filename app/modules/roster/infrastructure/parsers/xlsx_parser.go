package parsers

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	rosterdomain "github.com/combine-day/combine-bot/app/modules/roster/domain"
)

// XLSXParser parses Excel workbooks. Only the first sheet is read.
type XLSXParser struct{}

// NewXLSXParser creates a new XLSXParser.
func NewXLSXParser() *XLSXParser {
	return &XLSXParser{}
}

// Parse reads the first sheet into a RawTable.
func (p *XLSXParser) Parse(data []byte) (rosterdomain.RawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		if strings.Contains(err.Error(), "zip") {
			// A CSV renamed to .xlsx is the usual cause here.
			return rosterdomain.RawTable{}, fmt.Errorf("failed to open XLSX file (is it actually a CSV?): %w", err)
		}
		return rosterdomain.RawTable{}, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return rosterdomain.RawTable{}, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return rosterdomain.RawTable{}, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return rosterdomain.RawTable{}, fmt.Errorf("sheet %q has no header row", sheets[0])
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
