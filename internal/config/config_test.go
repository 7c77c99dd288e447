package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()

	require.NoError(t, cfg.Validate())
	require.Equal(t, "Fathom", cfg.DriveConfig.TargetFolder())
	require.Equal(t, "Marketing DevRel", cfg.DriveConfig.ParentFolder())
	require.Equal(t, "fathom_docs_content.csv", cfg.ExportConfig.ContentFileName)
	require.Equal(t, "fathom_docs_metadata.csv", cfg.ExportConfig.MetadataFileName)
	require.Equal(t, 1, cfg.ExportConfig.Workers)
}

func TestFolderPathParts(t *testing.T) {
	testCases := []struct {
		path   string
		target string
		parent string
	}{
		{path: "Fathom", target: "Fathom"},
		{path: "/GTM//Fathom/", target: "Fathom", parent: "GTM"},
		{path: "", target: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			c := DriveConfig{FolderPath: tc.path}
			require.Equal(t, tc.target, c.TargetFolder())
			require.Equal(t, tc.parent, c.ParentFolder())
		})
	}
}

func TestLoadWithFS(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/gdocexport.yml", []byte(`
log_level: debug
drive:
  folder_path: Team/Notes
  strict_match: true
export:
  workers: 3
  report_filename: report.html
`), 0644))

	t.Setenv("GDOCEXPORT_CONFIG", "/etc/gdocexport.yml")
	t.Setenv("PROJECT_ID", "proj-1")
	t.Setenv("BUCKET_NAME", "bucket-1")
	t.Setenv("EXPORT_WORKERS", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LEGACY_COLUMNS", "true")

	cfg, err := LoadWithFS(fs)
	require.NoError(t, err)

	require.Equal(t, "proj-1", cfg.ProjectID)
	require.Equal(t, "bucket-1", cfg.BucketName)
	require.Equal(t, LogLevelDebug, cfg.LogLevel)
	require.Equal(t, "Notes", cfg.DriveConfig.TargetFolder())
	require.Equal(t, "Team", cfg.DriveConfig.ParentFolder())
	require.True(t, cfg.DriveConfig.StrictMatch)
	require.True(t, cfg.ExportConfig.LegacyColumns)
	require.Equal(t, 3, cfg.ExportConfig.Workers)
	require.Equal(t, "report.html", cfg.ExportConfig.ReportFileName)
	// Untouched by the file, so defaults survive.
	require.Equal(t, "fathom_docs_content.csv", cfg.ExportConfig.ContentFileName)
}

func TestLoadErrors(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "Scenario 1: Unknown log level",
			env:  map[string]string{"LOG_LEVEL": "trace"},
		},
		{
			name: "Scenario 2: Bad workers",
			env:  map[string]string{"EXPORT_WORKERS": "many"},
		},
		{
			name: "Scenario 3: Zero workers",
			env:  map[string]string{"EXPORT_WORKERS": "0"},
		},
		{
			name: "Scenario 4: Bad bool",
			env:  map[string]string{"STRICT_MATCH": "sometimes"},
		},
		{
			name: "Scenario 5: Missing config file",
			env:  map[string]string{"GDOCEXPORT_CONFIG": "/nope.yml"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for _, key := range []string{"GDOCEXPORT_CONFIG", "LOG_LEVEL", "EXPORT_WORKERS", "STRICT_MATCH"} {
				t.Setenv(key, "")
			}
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := LoadWithFS(afero.NewMemMapFs())
			require.Error(t, err)
		})
	}
}
