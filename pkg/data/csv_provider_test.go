package data

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCSVProvider_LoadTable(t *testing.T) {
	path := writeFile(t, t.TempDir(), "2330.csv",
		"\ufeffDate,Open,Close\n2023-01-02,10,10.5\n2023-01-03,10.5,11\n")

	table, err := NewCSVProvider().LoadTable(context.Background(), path)
	require.NoError(t, err)

	// the byte-order mark is left for the preprocessor to strip
	assert.Equal(t, []string{"\ufeffDate", "Open", "Close"}, table.Columns)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, "11", table.Rows[1][2])
}

func TestCSVProvider_RaggedRowsNormalized(t *testing.T) {
	input := "Date,Close\n2023-01-02\n2023-01-03,11,extra\n"
	table, err := NewCSVProvider().ReadTable(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"2023-01-02", ""}, table.Rows[0])
	assert.Equal(t, []string{"2023-01-03", "11"}, table.Rows[1])
}

func TestCSVProvider_Semicolon(t *testing.T) {
	input := "Date;Close\n2023-01-02;10\n"
	table, err := NewCSVProviderWithDelimiter(';').ReadTable(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"Date", "Close"}, table.Columns)
}

func TestCSVProvider_Errors(t *testing.T) {
	_, err := NewCSVProvider().LoadTable(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	_, err = NewCSVProvider().ReadTable(context.Background(), strings.NewReader(""))
	assert.ErrorContains(t, err, "no header")
}

func TestTable_CloneIsDeep(t *testing.T) {
	table := &Table{Columns: []string{"Date"}, Rows: [][]string{{"2024-01-01"}}}
	clone := table.Clone()
	clone.Rows[0][0] = "changed"
	clone.Columns[0] = "X"

	assert.Equal(t, "2024-01-01", table.Rows[0][0])
	assert.Equal(t, "Date", table.Columns[0])
	assert.Nil(t, (*Table)(nil).Clone())
	assert.Equal(t, 0, (*Table)(nil).Len())
}
