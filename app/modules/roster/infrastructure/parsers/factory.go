// Package parsers turns uploaded file bytes into the ordered header/row table
// consumed by the import engine. The engine itself never touches file bytes.
package parsers

import (
	"fmt"
	"strings"

	rosterdomain "github.com/combine-day/combine-bot/app/modules/roster/domain"
)

// Parser converts raw file bytes into a RawTable.
type Parser interface {
	Parse(data []byte) (rosterdomain.RawTable, error)
}

// Factory selects a parser by filename extension.
type Factory struct{}

// NewFactory creates a new parser factory.
func NewFactory() *Factory {
	return &Factory{}
}

// GetParser returns the parser for the given filename.
func (f *Factory) GetParser(filename string) (Parser, error) {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".csv"), strings.HasSuffix(lower, ".txt"):
		return NewCSVParser(), nil
	case strings.HasSuffix(lower, ".xlsx"), strings.HasSuffix(lower, ".xls"):
		return NewXLSXParser(), nil
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filename)
	}
}
