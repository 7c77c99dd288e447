package csvfile

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jgivc/gdocexport/internal/common"
	"github.com/jgivc/gdocexport/internal/config"
	"github.com/jgivc/gdocexport/internal/entity"
	"github.com/spf13/afero"
)

const (
	tmpSuffix = ".tmp"
	fileMode  = 0644
	openFlags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
)

var (
	MetadataColumns = []string{"folder", "filename", "file_id", "created_date", "modified_date", "content_length"}
	ContentColumns  = append(append([]string{}, MetadataColumns...), "content")
)

type csvRepository struct {
	fs     afero.Fs
	cfg    *config.ExportConfig
	legacy bool
	log    *slog.Logger
}

func NewCSVRepository(cfg *config.ExportConfig, log *slog.Logger) *csvRepository {
	return NewCSVRepositoryWithFS(afero.NewOsFs(), cfg, log)
}

func NewCSVRepositoryWithFS(fs afero.Fs, cfg *config.ExportConfig, log *slog.Logger) *csvRepository {
	return &csvRepository{
		fs:     fs,
		cfg:    cfg,
		legacy: cfg.LegacyColumns,
		log:    log.With(slog.String("item", "CSVRepository")),
	}
}

/*
Save writes the full content file and the metadata file and returns their
paths. Each file is written next to its destination and renamed into place,
so a file is either complete or absent. Nothing is written for an empty set.
*/
func (r *csvRepository) Save(records []*entity.ExportRecord) (string, string, error) {
	if len(records) < 1 {
		return "", "", common.ErrNothingToWrite
	}

	contentPath := r.path(r.cfg.ContentFileName)
	if err := r.writeFile(contentPath, r.header(ContentColumns), records, r.contentRow); err != nil {
		return "", "", fmt.Errorf("cannot save %s: %w", contentPath, err)
	}
	r.log.Info("Saved content file", slog.String("path", contentPath), slog.Int("rows", len(records)))

	metadataPath := r.path(r.cfg.MetadataFileName)
	if err := r.writeFile(metadataPath, r.header(MetadataColumns), records, r.metadataRow); err != nil {
		return "", "", fmt.Errorf("cannot save %s: %w", metadataPath, err)
	}
	r.log.Info("Saved metadata file", slog.String("path", metadataPath), slog.Int("rows", len(records)))

	return contentPath, metadataPath, nil
}

func (r *csvRepository) path(name string) string {
	if r.cfg.OutputDir == "" {
		return name
	}

	return filepath.Join(r.cfg.OutputDir, name)
}

func (r *csvRepository) header(columns []string) []string {
	if r.legacy {
		return columns
	}

	return append(append([]string{}, columns...), "status")
}

func (r *csvRepository) metadataRow(rec *entity.ExportRecord) []string {
	return r.withStatus(rec, metadataFields(rec))
}

func (r *csvRepository) contentRow(rec *entity.ExportRecord) []string {
	return r.withStatus(rec, append(metadataFields(rec), rec.Content))
}

func (r *csvRepository) withStatus(rec *entity.ExportRecord, row []string) []string {
	if r.legacy {
		return row
	}

	return append(row, string(rec.Status))
}

func metadataFields(rec *entity.ExportRecord) []string {
	return []string{
		rec.Folder,
		rec.Filename,
		rec.FileID,
		rec.CreatedDate,
		rec.ModifiedDate,
		strconv.Itoa(rec.ContentLength),
	}
}

func (r *csvRepository) writeFile(path string, header []string, records []*entity.ExportRecord, row func(*entity.ExportRecord) []string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := r.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("cannot create output dir: %w", err)
		}
	}

	tmpPath := path + tmpSuffix
	f, err := r.fs.OpenFile(tmpPath, openFlags, fileMode)
	if err != nil {
		return fmt.Errorf("cannot create file: %w", err)
	}

	if err := writeRows(f, header, records, row); err != nil {
		f.Close()
		r.fs.Remove(tmpPath)

		return err
	}

	if err := f.Close(); err != nil {
		r.fs.Remove(tmpPath)

		return fmt.Errorf("cannot close file: %w", err)
	}

	if err := r.fs.Rename(tmpPath, path); err != nil {
		r.fs.Remove(tmpPath)

		return fmt.Errorf("cannot rename file: %w", err)
	}

	return nil
}

func writeRows(f afero.File, header []string, records []*entity.ExportRecord, row func(*entity.ExportRecord) []string) error {
	w := csv.NewWriter(f)

	if err := w.Write(header); err != nil {
		return fmt.Errorf("cannot write header: %w", err)
	}

	for _, rec := range records {
		if err := w.Write(row(rec)); err != nil {
			return fmt.Errorf("cannot write row %s: %w", rec.FileID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("cannot flush rows: %w", err)
	}

	return nil
}
