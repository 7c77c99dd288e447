package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/jgivc/gdocexport/internal/config"
	"github.com/jgivc/gdocexport/internal/entity"
	"github.com/jgivc/gdocexport/internal/util"
	"golang.org/x/sync/errgroup"
)

const (
	serviceName = "export"
)

type DocumentExporter interface {
	Export(ctx context.Context, id string, w io.Writer) error
}

type exportService struct {
	exporter      DocumentExporter
	workers       int
	progressEvery int

	mu  sync.Mutex
	out io.Writer
	log *slog.Logger
}

// NewExportService builds the exporter. Progress lines are written to out.
func NewExportService(exporter DocumentExporter, cfg *config.ExportConfig, out io.Writer, log *slog.Logger) *exportService {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	progressEvery := cfg.ProgressEvery
	if progressEvery < 1 {
		progressEvery = 5
	}

	return &exportService{
		exporter:      exporter,
		workers:       workers,
		progressEvery: progressEvery,
		out:           out,
		log:           log.With(slog.String("service", serviceName)),
	}
}

// ExportText returns the trimmed plain text of a document. Export errors are
// logged and reported as an empty text with StatusFailed.
func (s *exportService) ExportText(ctx context.Context, id string) (string, entity.ExportStatus) {
	var buf bytes.Buffer

	if err := s.exporter.Export(ctx, id, &buf); err != nil {
		s.log.Error("Cannot export file", slog.String("file_id", id), slog.Any("error", err))
		s.printf("Error exporting file %s: %s\n", id, err)

		return "", entity.StatusFailed
	}

	text := util.CleanText(buf.Bytes())
	if text == "" {
		return "", entity.StatusEmpty
	}

	return text, entity.StatusOK
}

func BuildRecord(ref *entity.DocumentRef, text string, status entity.ExportStatus) *entity.ExportRecord {
	return &entity.ExportRecord{
		Folder:        ref.Folder,
		Filename:      ref.Name,
		FileID:        ref.ID,
		CreatedDate:   util.DateOnly(ref.CreatedTime),
		ModifiedDate:  util.DateOnly(ref.ModifiedTime),
		ContentLength: util.CharCount(text),
		Content:       text,
		Status:        status,
	}
}

// Process exports every document and returns the records in the order of refs.
func (s *exportService) Process(ctx context.Context, refs []*entity.DocumentRef) []*entity.ExportRecord {
	records := make([]*entity.ExportRecord, len(refs))
	total := len(refs)

	if s.workers == 1 {
		for i, ref := range refs {
			s.printf("\nProcessing %d/%d: %s\n", i+1, total, ref.Name)
			records[i] = s.process(ctx, ref)
			s.progress(i+1, total)
		}

		return records
	}

	var (
		g    errgroup.Group
		done atomic.Int64
	)
	g.SetLimit(s.workers)

	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			s.printf("\nProcessing %d/%d: %s\n", i+1, total, ref.Name)
			records[i] = s.process(ctx, ref)
			s.progress(int(done.Add(1)), total)

			return nil
		})
	}

	_ = g.Wait()

	return records
}

func (s *exportService) process(ctx context.Context, ref *entity.DocumentRef) *entity.ExportRecord {
	text, status := s.ExportText(ctx, ref.ID)
	record := BuildRecord(ref, text, status)

	s.log.Debug("Export file", slog.String("file_id", ref.ID), slog.String("folder", ref.Folder), slog.Int("content_length", record.ContentLength), slog.String("status", string(status)))

	return record
}

func (s *exportService) progress(n, total int) {
	if n%s.progressEvery == 0 {
		s.printf("Progress: %d/%d documents processed\n", n, total)
	}
}

func (s *exportService) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fmt.Fprintf(s.out, format, args...)
}
