package entity

// ExportStatus tells an empty document apart from a failed export.
type ExportStatus string

const (
	StatusOK     ExportStatus = "ok"
	StatusEmpty  ExportStatus = "empty"
	StatusFailed ExportStatus = "failed"
)

// ExportRecord is one output row. ContentLength always equals the character
// count of Content, so a failed export has ContentLength 0.
type ExportRecord struct {
	Folder        string       `yaml:"folder"`
	Filename      string       `yaml:"filename"`
	FileID        string       `yaml:"file_id"`
	CreatedDate   string       `yaml:"created_date"`
	ModifiedDate  string       `yaml:"modified_date"`
	ContentLength int          `yaml:"content_length"`
	Content       string       `yaml:"-"`
	Status        ExportStatus `yaml:"status"`
}

// FolderSummary holds per-folder statistics over ContentLength.
type FolderSummary struct {
	Folder      string `yaml:"folder"`
	Count       int    `yaml:"count"`
	MeanLength  int64  `yaml:"mean"`
	TotalLength int64  `yaml:"sum"`
}

// RunInfo describes one export run.
type RunInfo struct {
	ID        string `yaml:"run_id"`
	Project   string `yaml:"project"`
	Bucket    string `yaml:"bucket"`
	RootID    string `yaml:"root_id"`
	Documents int    `yaml:"documents"`
	Failed    int    `yaml:"failed"`
	Generated string `yaml:"generated"`
}
