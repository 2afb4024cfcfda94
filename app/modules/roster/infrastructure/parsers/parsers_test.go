package parsers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFactory_GetParser(t *testing.T) {
	factory := NewFactory()

	tests := []struct {
		name     string
		filename string
		wantType interface{}
		wantErr  bool
	}{
		{name: "csv file", filename: "roster.csv", wantType: &CSVParser{}},
		{name: "uppercase extension", filename: "ROSTER.CSV", wantType: &CSVParser{}},
		{name: "text file", filename: "pasted.txt", wantType: &CSVParser{}},
		{name: "xlsx file", filename: "roster.xlsx", wantType: &XLSXParser{}},
		{name: "legacy xls", filename: "roster.xls", wantType: &XLSXParser{}},
		{name: "unsupported", filename: "roster.pdf", wantErr: true},
		{name: "no extension", filename: "roster", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser, err := factory.GetParser(tt.filename)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.IsType(t, tt.wantType, parser)
		})
	}
}

func TestCSVParser_Parse(t *testing.T) {
	parser := NewCSVParser()

	t.Run("basic roster", func(t *testing.T) {
		data := []byte("First Name,Last Name,Number\nEthan,Garcia,1002\nMia,Lopez,1010\n")

		table, err := parser.Parse(data)
		require.NoError(t, err)
		require.Equal(t, []string{"First Name", "Last Name", "Number"}, table.Headers)
		require.Len(t, table.Rows, 2)
		require.Equal(t, 1, table.Rows[0].Line)
		require.Equal(t, "Ethan", table.Rows[0].Cells["First Name"])
		require.Equal(t, "1010", table.Rows[1].Cells["Number"])
	})

	t.Run("strips BOM", func(t *testing.T) {
		data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("name,number\nEthan Garcia,7\n")...)

		table, err := parser.Parse(data)
		require.NoError(t, err)
		require.Equal(t, "name", table.Headers[0])
	})

	t.Run("tab separated paste", func(t *testing.T) {
		data := []byte("first_name\tlast_name\tnumber\nEthan\tGarcia\t1002\n")

		table, err := parser.Parse(data)
		require.NoError(t, err)
		require.Equal(t, []string{"first_name", "last_name", "number"}, table.Headers)
		require.Equal(t, "Garcia", table.Rows[0].Cells["last_name"])
	})

	t.Run("skips blank rows without renumbering", func(t *testing.T) {
		data := []byte("first_name,last_name\nEthan,Garcia\n,,\nMia,Lopez\n")

		table, err := parser.Parse(data)
		require.NoError(t, err)
		require.Len(t, table.Rows, 2)
		require.Equal(t, 2, table.Rows[1].Line)
	})

	t.Run("short row pads missing cells", func(t *testing.T) {
		data := []byte("first_name,last_name,number\nEthan,Garcia\n")

		table, err := parser.Parse(data)
		require.NoError(t, err)
		require.Equal(t, "", table.Rows[0].Cells["number"])
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := parser.Parse([]byte("  \n "))
		require.Error(t, err)
	})
}

func TestXLSXParser_Parse_RejectsCSVBytes(t *testing.T) {
	parser := NewXLSXParser()

	_, err := parser.Parse([]byte("first_name,last_name\nEthan,Garcia\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "CSV")
}
