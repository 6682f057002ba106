package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/pressroom-labs/brandwatch-cli/internal/model"
)

func exportBrands() []model.BrandSpec {
	return []model.BrandSpec{
		{Name: "Acme", TracksSpokespersons: true},
		{Name: "Acme Capital"},
	}
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, f.Sheets)
	var rows [][]string
	for _, row := range f.Sheets[0].Rows {
		var cells []string
		for _, c := range row.Cells {
			cells = append(cells, c.String())
		}
		rows = append(rows, cells)
	}
	return rows
}

func TestWriteRecords(t *testing.T) {
	dir := t.TempDir()
	records := []model.Record{
		{
			ArticleID: "a1", ViewURL: "https://v/1", SourceURL: "https://s/1", Title: "Acme up",
			Results: map[string]model.ClassificationResult{
				"Acme": {
					Brand: "Acme", Tier: model.TierContent, Occurrences: 3,
					Spokespersons: []string{"Maria Souza", "João Lima"},
				},
				"Acme Capital": {Brand: "Acme Capital", Tier: model.TierNone},
			},
		},
		{
			ArticleID: "a2", Title: "Fund news",
			Results: map[string]model.ClassificationResult{
				// Acme excluded by pre-filter: no entry at all.
				"Acme Capital": {Brand: "Acme Capital", Failed: true},
			},
		},
	}

	snapshot, err := WriteRecords(dir, records, exportBrands())
	require.NoError(t, err)

	rows := readRows(t, snapshot)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{
		"ID", "View URL", "Source URL", "Title",
		"Protagonism Acme", "Spokespersons Acme", "Mentions Acme",
		"Protagonism Acme Capital", "Mentions Acme Capital",
	}, rows[0])

	assert.Equal(t, []string{
		"a1", "https://v/1", "https://s/1", "Acme up",
		"Content", "Maria Souza; João Lima", "3",
		"None", "0",
	}, rows[1])

	// Excluded pair leaves blank cells; failed oracle shows as Error.
	assert.Equal(t, "a2", rows[2][0])
	assert.Equal(t, "", rows[2][4])
	assert.Equal(t, "Error", rows[2][7])

	// Canonical latest file carries the same content.
	canonical := readRows(t, filepath.Join(dir, CanonicalName))
	assert.Equal(t, rows, canonical)
}

func TestWriteRecordsEmpty(t *testing.T) {
	dir := t.TempDir()
	snapshot, err := WriteRecords(dir, nil, exportBrands())
	require.NoError(t, err)
	rows := readRows(t, snapshot)
	assert.Len(t, rows, 1)
}
