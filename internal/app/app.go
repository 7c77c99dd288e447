package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jgivc/gdocexport/internal/adapter/driveadapter"
	"github.com/jgivc/gdocexport/internal/common"
	"github.com/jgivc/gdocexport/internal/config"
	"github.com/jgivc/gdocexport/internal/entity"
	"github.com/jgivc/gdocexport/internal/repository/csvfile"
	"github.com/jgivc/gdocexport/internal/repository/index"
	"github.com/jgivc/gdocexport/internal/service/export"
	"github.com/jgivc/gdocexport/internal/service/report"
	"github.com/jgivc/gdocexport/internal/service/resolver"
	"github.com/jgivc/gdocexport/internal/service/summary"
	"github.com/jgivc/gdocexport/internal/storage/tree"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
)

const (
	ExitOK    = 0
	ExitError = 1

	bannerWidth    = 50
	publishTimeout = 10 * time.Second
)

type Drive interface {
	resolver.FolderFinder
	tree.ChildLister
	export.DocumentExporter
	FindSharedDrive(ctx context.Context, name string) (string, error)
}

// DriveConnector sets up an authenticated Drive client.
type DriveConnector func(ctx context.Context) (Drive, error)

type App struct {
	cfg     *config.Config
	fs      afero.Fs
	out     io.Writer
	connect DriveConnector
	log     *slog.Logger
}

func New(cfg *config.Config) *App {
	log := NewLogger(os.Stderr, cfg.LogLevel)
	fs := afero.NewOsFs()

	connect := func(ctx context.Context) (Drive, error) {
		return driveadapter.NewDriveAdapterWithFS(ctx, fs, &cfg.DriveConfig, log)
	}

	return NewWithFS(fs, cfg, os.Stdout, connect, log)
}

func NewWithFS(fs afero.Fs, cfg *config.Config, out io.Writer, connect DriveConnector, log *slog.Logger) *App {
	return &App{
		cfg:     cfg,
		fs:      fs,
		out:     out,
		connect: connect,
		log:     log,
	}
}

func NewLogger(w io.Writer, level string) *slog.Logger {
	lo := &slog.HandlerOptions{}
	switch level {
	case config.LogLevelWarn:
		lo.Level = slog.LevelWarn
	case config.LogLevelError:
		lo.Level = slog.LevelError
	case config.LogLevelDebug:
		lo.Level = slog.LevelDebug
	default:
		lo.Level = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(w, lo))
}

// Run performs one export and returns the process exit code.
func (a *App) Run(ctx context.Context) int {
	dc := &a.cfg.DriveConfig
	target := dc.TargetFolder()

	a.banner()

	drive, err := a.connect(ctx)
	if err != nil {
		a.log.Error("Cannot set up drive client", slog.Any("error", err))
		a.printf("Error setting up credentials: %s\n", err)

		return ExitError
	}

	var driveID string
	if dc.SharedDriveOnly {
		driveID, err = drive.FindSharedDrive(ctx, dc.SharedDriveName)
		if err != nil {
			a.log.Error("Cannot find shared drive", slog.String("name", dc.SharedDriveName), slog.Any("error", err))
			a.printf("ERROR: Could not find shared drive %s: %s\n", dc.SharedDriveName, err)

			return ExitError
		}
	}

	folderID, err := a.findFolder(ctx, drive, driveID)
	if err != nil {
		a.log.Error("Cannot find folder", slog.String("folder", target), slog.Any("error", err))
		a.printf("ERROR: Could not find %s folder!\n", target)
		a.println("Please check:")
		a.println("1. The folder name is correct")
		a.println("2. The service account has access to the shared drive")
		a.println("3. The folder exists in the specified location")

		return ExitError
	}

	a.printf("Found %s folder with ID: %s\n", target, folderID)

	records, err := a.process(ctx, drive, folderID)
	if err != nil {
		a.log.Error("Nothing to export", slog.String("folder_id", folderID), slog.Any("error", err))
		a.println("No documents processed!")

		return ExitError
	}

	summaries := summary.Summarize(records)

	files, err := a.save(records, summaries)
	if err != nil {
		a.log.Error("Cannot save export", slog.Any("error", err))
		a.println("Failed to create CSV files!")

		return ExitError
	}

	run := a.runInfo(folderID, records)
	a.publish(ctx, run, records)

	if path := a.writeReport(run, summaries, records); path != "" {
		files = append(files, path)
	}

	a.printf("\nSuccess! Created %d document exports\n", len(records))
	a.println("Files created:")
	for _, f := range files {
		a.printf("  - %s\n", f)
	}

	return ExitOK
}

func (a *App) banner() {
	line := strings.Repeat("=", bannerWidth)

	a.println("Google Docs to CSV Export")
	a.println(line)
	a.println("Configuration:")
	a.printf("  Project: %s\n", a.cfg.ProjectID)
	a.printf("  Bucket: %s\n", a.cfg.BucketName)
	a.printf("  Looking for: %s/%s\n", a.cfg.DriveConfig.SharedDriveName, a.cfg.DriveConfig.FolderPath)
	a.println(line)
}

// findFolder resolves the target folder, first under its parent name and then by name alone.
func (a *App) findFolder(ctx context.Context, drive Drive, driveID string) (string, error) {
	dc := &a.cfg.DriveConfig
	target := dc.TargetFolder()
	r := resolver.NewResolverService(drive, driveID, dc.StrictMatch, a.log)

	a.printf("\nSearching for %s folder...\n", target)

	id, err := r.Resolve(ctx, target, dc.ParentFolder())
	if err == nil {
		return id, nil
	}

	a.log.Warn("Folder not resolved under parent", slog.String("folder", target), slog.String("parent", dc.ParentFolder()), slog.Any("error", err))
	a.println("Trying broader search...")

	return r.Resolve(ctx, target, "")
}

func (a *App) process(ctx context.Context, drive Drive, folderID string) ([]*entity.ExportRecord, error) {
	a.println("\nFinding all Google Docs...")

	refs := tree.NewTreeStorage(drive, a.log).Scan(ctx, folderID, "")
	a.printf("Found %d Google Docs\n", len(refs))

	if len(refs) == 0 {
		a.println("No Google Docs found!")

		return nil, common.ErrNoDocumentsFound
	}

	records := export.NewExportService(drive, &a.cfg.ExportConfig, a.out, a.log).Process(ctx, refs)
	a.printf("\nFinished processing %d documents\n", len(records))

	return records, nil
}

func (a *App) save(records []*entity.ExportRecord, summaries []entity.FolderSummary) ([]string, error) {
	a.println("\nDocument Summary:")
	if err := summary.WriteSummary(a.out, summaries); err != nil {
		a.log.Error("Cannot write summary", slog.Any("error", err))
		a.printf("Could not generate summary: %s\n", err)
	}

	contentPath, metadataPath, err := csvfile.NewCSVRepositoryWithFS(a.fs, &a.cfg.ExportConfig, a.log).Save(records)
	if err != nil {
		if errors.Is(err, common.ErrNothingToWrite) {
			a.println("No data to save!")
		}

		return nil, err
	}

	a.printf("\nSaved to %s\n", contentPath)

	a.println("\nPreview of documents:")
	if err := summary.WritePreview(a.out, records, a.cfg.ExportConfig.PreviewRows); err != nil {
		a.log.Error("Cannot write preview", slog.Any("error", err))
	}

	a.printf("\nCreated files: %s and %s\n", contentPath, metadataPath)

	return []string{contentPath, metadataPath}, nil
}

func (a *App) runInfo(rootID string, records []*entity.ExportRecord) *entity.RunInfo {
	failed := 0
	for _, r := range records {
		if r.Status == entity.StatusFailed {
			failed++
		}
	}

	return &entity.RunInfo{
		ID:        uuid.NewString(),
		Project:   a.cfg.ProjectID,
		Bucket:    a.cfg.BucketName,
		RootID:    rootID,
		Documents: len(records),
		Failed:    failed,
		Generated: time.Now().UTC().Format(time.RFC3339),
	}
}

// publish stores the export index in redis when REDIS_URL is set. Errors are only logged.
func (a *App) publish(ctx context.Context, run *entity.RunInfo, records []*entity.ExportRecord) {
	if a.cfg.RedisConfig.URL == "" {
		return
	}

	log := a.log.With(slog.String("run_id", run.ID))

	opt, err := redis.ParseURL(a.cfg.RedisConfig.URL)
	if err != nil {
		log.Error("Cannot parse redis url", slog.Any("error", err))

		return
	}

	rdb := redis.NewClient(opt)
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Error("Cannot connect to redis", slog.Any("error", err))

		return
	}

	repo, err := index.NewIndexRepository(ctx, rdb, log)
	if err != nil {
		log.Error("Cannot create index repository", slog.Any("error", err))

		return
	}

	if err := repo.Save(ctx, run, records); err != nil {
		log.Error("Cannot publish export index", slog.Any("error", err))

		return
	}

	log.Info("Export index published", slog.String("version", repo.ActiveVersion()), slog.Int("documents", len(records)))
}

func (a *App) writeReport(run *entity.RunInfo, summaries []entity.FolderSummary, records []*entity.ExportRecord) string {
	rs, err := report.NewReportServiceWithFS(a.fs, &a.cfg.ExportConfig, a.log)
	if err != nil {
		a.log.Error("Cannot create report service", slog.Any("error", err))

		return ""
	}

	if !rs.Enabled() {
		return ""
	}

	folder := a.cfg.DriveConfig.SharedDriveName + "/" + a.cfg.DriveConfig.FolderPath

	path, err := rs.Write(run, folder, summaries, records)
	if err != nil {
		a.log.Error("Cannot write report", slog.Any("error", err))

		return ""
	}

	return path
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(s string) {
	fmt.Fprintln(a.out, s)
}
