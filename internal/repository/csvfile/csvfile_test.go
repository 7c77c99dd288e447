package csvfile

import (
	"encoding/csv"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/jgivc/gdocexport/internal/common"
	"github.com/jgivc/gdocexport/internal/config"
	"github.com/jgivc/gdocexport/internal/entity"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func testRecords() []*entity.ExportRecord {
	return []*entity.ExportRecord{
		{
			Folder:        "",
			Filename:      "Doc1",
			FileID:        "d1",
			CreatedDate:   "2024-01-01",
			ModifiedDate:  "2024-02-01",
			ContentLength: 23,
			Content:       "Hello, \"world\"\nline two",
			Status:        entity.StatusOK,
		},
		{
			Folder:        "Sub",
			Filename:      "Doc2",
			FileID:        "d2",
			CreatedDate:   "2024-02-01",
			ModifiedDate:  "",
			ContentLength: 0,
			Content:       "",
			Status:        entity.StatusFailed,
		},
	}
}

func testConfig(dir string, legacy bool) *config.ExportConfig {
	cfg := &config.Config{}
	cfg.SetDefaults()
	cfg.ExportConfig.OutputDir = dir
	cfg.ExportConfig.LegacyColumns = legacy

	return &cfg.ExportConfig
}

func readCSV(t *testing.T, fs afero.Fs, path string) [][]string {
	t.Helper()

	f, err := fs.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	return rows
}

func discardLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestSave(t *testing.T) {
	testCases := []struct {
		name             string
		outputDir        string
		legacy           bool
		expectedContent  [][]string
		expectedMetadata [][]string
	}{
		{
			name: "Scenario 1: Status column",
			expectedContent: [][]string{
				{"folder", "filename", "file_id", "created_date", "modified_date", "content_length", "content", "status"},
				{"", "Doc1", "d1", "2024-01-01", "2024-02-01", "23", "Hello, \"world\"\nline two", "ok"},
				{"Sub", "Doc2", "d2", "2024-02-01", "", "0", "", "failed"},
			},
			expectedMetadata: [][]string{
				{"folder", "filename", "file_id", "created_date", "modified_date", "content_length", "status"},
				{"", "Doc1", "d1", "2024-01-01", "2024-02-01", "23", "ok"},
				{"Sub", "Doc2", "d2", "2024-02-01", "", "0", "failed"},
			},
		},
		{
			name:      "Scenario 2: Legacy columns in an output dir",
			outputDir: "/out/run",
			legacy:    true,
			expectedContent: [][]string{
				{"folder", "filename", "file_id", "created_date", "modified_date", "content_length", "content"},
				{"", "Doc1", "d1", "2024-01-01", "2024-02-01", "23", "Hello, \"world\"\nline two"},
				{"Sub", "Doc2", "d2", "2024-02-01", "", "0", ""},
			},
			expectedMetadata: [][]string{
				{"folder", "filename", "file_id", "created_date", "modified_date", "content_length"},
				{"", "Doc1", "d1", "2024-01-01", "2024-02-01", "23"},
				{"Sub", "Doc2", "d2", "2024-02-01", "", "0"},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			repo := NewCSVRepositoryWithFS(fs, testConfig(tc.outputDir, tc.legacy), discardLog())

			contentPath, metadataPath, err := repo.Save(testRecords())
			require.NoError(t, err)

			require.Equal(t, filepath.Join(tc.outputDir, "fathom_docs_content.csv"), contentPath)
			require.Equal(t, filepath.Join(tc.outputDir, "fathom_docs_metadata.csv"), metadataPath)

			require.Equal(t, tc.expectedContent, readCSV(t, fs, contentPath))
			require.Equal(t, tc.expectedMetadata, readCSV(t, fs, metadataPath))

			exists, err := afero.Exists(fs, contentPath+tmpSuffix)
			require.NoError(t, err)
			require.False(t, exists)
		})
	}
}

func TestSaveEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	repo := NewCSVRepositoryWithFS(fs, testConfig("", false), discardLog())

	_, _, err := repo.Save(nil)
	require.ErrorIs(t, err, common.ErrNothingToWrite)

	for _, name := range []string{"fathom_docs_content.csv", "fathom_docs_metadata.csv"} {
		exists, err := afero.Exists(fs, name)
		require.NoError(t, err)
		require.False(t, exists)
	}
}

func TestSaveReadOnly(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	repo := NewCSVRepositoryWithFS(fs, testConfig("", false), discardLog())

	_, _, err := repo.Save(testRecords())
	require.Error(t, err)
}

func TestSaveOverwrites(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "fathom_docs_metadata.csv", []byte("stale,data\n1,2\n3,4\n5,6\n"), 0644))

	repo := NewCSVRepositoryWithFS(fs, testConfig("", true), discardLog())
	_, metadataPath, err := repo.Save(testRecords()[:1])
	require.NoError(t, err)

	rows := readCSV(t, fs, metadataPath)
	require.Len(t, rows, 2)
	require.Equal(t, MetadataColumns, rows[0])
}
