package report

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/jgivc/gdocexport/internal/adapter/mdadapter"
	"github.com/jgivc/gdocexport/internal/adapter/tpladapter"
	"github.com/jgivc/gdocexport/internal/config"
	"github.com/jgivc/gdocexport/internal/entity"
	"github.com/spf13/afero"
)

const (
	reportTitle  = "Fathom docs export"
	markdownExt  = ".md"
	reportPerm   = 0644
	reportTmpExt = ".tmp"
)

type ReportBuilder interface {
	Report(data *tpladapter.ReportData) ([]byte, error)
	Page(title string, body []byte) ([]byte, error)
}

type MarkdownRenderer interface {
	Render(src []byte) ([]byte, *mdadapter.Meta, error)
}

type reportService struct {
	fs   afero.Fs
	path string
	tpl  ReportBuilder
	md   MarkdownRenderer
	log  *slog.Logger
}

func NewReportService(cfg *config.ExportConfig, log *slog.Logger) (*reportService, error) {
	return NewReportServiceWithFS(afero.NewOsFs(), cfg, log)
}

func NewReportServiceWithFS(fs afero.Fs, cfg *config.ExportConfig, log *slog.Logger) (*reportService, error) {
	tpl, err := tpladapter.NewTplAdapter()
	if err != nil {
		return nil, fmt.Errorf("cannot create template adapter: %w", err)
	}

	path := cfg.ReportFileName
	if path != "" && cfg.OutputDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(cfg.OutputDir, path)
	}

	return &reportService{
		fs:   fs,
		path: path,
		tpl:  tpl,
		md:   mdadapter.NewMDAdapter(),
		log:  log.With(slog.String("service", "ReportService")),
	}, nil
}

// Enabled reports whether a report file is configured.
func (s *reportService) Enabled() bool {
	return s.path != ""
}

/*
Write renders the run report and stores it. A path ending in .md keeps the
markdown source, any other path gets a standalone html page.
*/
func (s *reportService) Write(run *entity.RunInfo, folder string, summaries []entity.FolderSummary, records []*entity.ExportRecord) (string, error) {
	if !s.Enabled() {
		return "", nil
	}

	src, err := s.tpl.Report(&tpladapter.ReportData{
		Title:     reportTitle,
		Folder:    folder,
		Run:       run,
		Summaries: summaries,
		Records:   records,
	})
	if err != nil {
		return "", fmt.Errorf("cannot build report: %w", err)
	}

	data := src
	if !strings.EqualFold(filepath.Ext(s.path), markdownExt) {
		body, meta, err := s.md.Render(src)
		if err != nil {
			return "", fmt.Errorf("cannot render report: %w", err)
		}

		data, err = s.tpl.Page(meta.Title, body)
		if err != nil {
			return "", fmt.Errorf("cannot build report page: %w", err)
		}
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("cannot create report dir %s: %w", dir, err)
		}
	}

	tmp := s.path + reportTmpExt
	if err := afero.WriteFile(s.fs, tmp, data, reportPerm); err != nil {
		return "", fmt.Errorf("cannot write report %s: %w", tmp, err)
	}

	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)

		return "", fmt.Errorf("cannot move report to %s: %w", s.path, err)
	}

	s.log.Info("Report written", slog.String("path", s.path), slog.Int("size", len(data)))

	return s.path, nil
}
