package data

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
)

// CSVProvider implements DataProvider for delimited files with a header row
type CSVProvider struct {
	comma rune
}

// NewCSVProvider creates a new comma-separated provider
func NewCSVProvider() *CSVProvider {
	return &CSVProvider{comma: ','}
}

// NewCSVProviderWithDelimiter creates a provider for another delimiter
func NewCSVProviderWithDelimiter(comma rune) *CSVProvider {
	return &CSVProvider{comma: comma}
}

// GetName returns the name of the data provider
func (p *CSVProvider) GetName() string {
	return "CSV Provider"
}

// LoadTable reads the header and every record of a file
func (p *CSVProvider) LoadTable(ctx context.Context, source string) (*Table, error) {
	file, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", source, err)
	}
	defer file.Close()

	return p.ReadTable(ctx, file)
}

// ReadTable parses a table from r. Rows with a different cell count than
// the header are padded or truncated.
func (p *CSVProvider) ReadTable(ctx context.Context, r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = p.comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty file: no header row")
		}
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}

	table := &Table{Columns: header}
	lineNum := 1
	for {
		if lineNum%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("error reading CSV at line %d: %w", lineNum+1, err)
		}
		lineNum++

		if len(record) != len(header) {
			log.Debug().Int("line", lineNum).Int("cells", len(record)).Int("expected", len(header)).
				Msg("⚠️ Ragged CSV row normalized")
			row := make([]string, len(header))
			copy(row, record)
			record = row
		}
		table.Rows = append(table.Rows, record)
	}

	return table, nil
}
