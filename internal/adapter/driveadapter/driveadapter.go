package driveadapter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jgivc/gdocexport/internal/common"
	"github.com/jgivc/gdocexport/internal/config"
	"github.com/jgivc/gdocexport/internal/entity"
	"github.com/spf13/afero"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	mimeTypeText     = "text/plain"
	defaultChunkSize = 32 * 1024

	searchFields = "nextPageToken, files(id, name, parents)"
	listFields   = "nextPageToken, files(id, name, mimeType, createdTime, modifiedTime)"
	drivesFields = "nextPageToken, drives(id, name)"
)

var queryEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

type driveAdapter struct {
	srv       *drive.Service
	chunkSize int
	log       *slog.Logger
}

// NewDriveAdapter reads the service account key file and builds a read-only
// Drive client. Key file problems are reported as common.ErrCredentialsError.
func NewDriveAdapter(ctx context.Context, cfg *config.DriveConfig, log *slog.Logger) (*driveAdapter, error) {
	return NewDriveAdapterWithFS(ctx, afero.NewOsFs(), cfg, log)
}

func NewDriveAdapterWithFS(ctx context.Context, fs afero.Fs, cfg *config.DriveConfig, log *slog.Logger) (*driveAdapter, error) {
	data, err := afero.ReadFile(fs, cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read key file %s: %w", common.ErrCredentialsError, cfg.KeyFile, err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot parse key file %s: %w", common.ErrCredentialsError, cfg.KeyFile, err)
	}

	srv, err := drive.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("%w: cannot create drive service: %w", common.ErrCredentialsError, err)
	}

	return NewDriveAdapterWithService(srv, log), nil
}

func NewDriveAdapterWithService(srv *drive.Service, log *slog.Logger) *driveAdapter {
	return &driveAdapter{
		srv:       srv,
		chunkSize: defaultChunkSize,
		log:       log.With(slog.String("item", "DriveAdapter")),
	}
}

// FindFolders returns every folder called name, in the order Drive returns
// them. An empty driveID searches all drives visible to the account.
func (a *driveAdapter) FindFolders(ctx context.Context, name, driveID string) ([]*entity.DriveItem, error) {
	q := fmt.Sprintf("name='%s' and mimeType='%s'", escapeQuery(name), entity.MIMETypeFolder)

	call := a.srv.Files.List().
		Q(q).
		Spaces("drive").
		Fields(searchFields).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true)

	if driveID != "" {
		call = call.Corpora("drive").DriveId(driveID)
	}

	var items []*entity.DriveItem
	err := call.Pages(ctx, func(page *drive.FileList) error {
		for _, f := range page.Files {
			items = append(items, toItem(f))
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cannot search folder %q: %w", name, err)
	}

	a.log.Debug("Search folders", slog.String("name", name), slog.Int("count", len(items)))

	return items, nil
}

func (a *driveAdapter) GetName(ctx context.Context, id string) (string, error) {
	f, err := a.srv.Files.Get(id).
		Fields("name").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("cannot get file %s: %w", id, err)
	}

	return f.Name, nil
}

// ListChildren returns the direct children of a folder across all result pages.
func (a *driveAdapter) ListChildren(ctx context.Context, folderID string) ([]*entity.DriveItem, error) {
	call := a.srv.Files.List().
		Q(fmt.Sprintf("'%s' in parents", escapeQuery(folderID))).
		Fields(listFields).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true)

	var items []*entity.DriveItem
	err := call.Pages(ctx, func(page *drive.FileList) error {
		for _, f := range page.Files {
			items = append(items, toItem(f))
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cannot list folder %s: %w", folderID, err)
	}

	return items, nil
}

func (a *driveAdapter) FindSharedDrive(ctx context.Context, name string) (string, error) {
	var id string

	err := a.srv.Drives.List().
		Fields(drivesFields).
		Pages(ctx, func(page *drive.DriveList) error {
			for _, d := range page.Drives {
				if id == "" && d.Name == name {
					id = d.Id
				}
			}

			return nil
		})
	if err != nil {
		return "", fmt.Errorf("cannot list shared drives: %w", err)
	}

	if id == "" {
		return "", common.ErrSharedDriveNotFound
	}

	return id, nil
}

// Export streams the plain text export of a Google Doc into w chunk by chunk.
func (a *driveAdapter) Export(ctx context.Context, id string, w io.Writer) error {
	resp, err := a.srv.Files.Export(id, mimeTypeText).Context(ctx).Download()
	if err != nil {
		return fmt.Errorf("cannot export file %s: %w", id, err)
	}
	defer resp.Body.Close()

	chunk := make([]byte, a.chunkSize)
	for {
		n, err := resp.Body.Read(chunk)
		if n > 0 {
			if _, werr := w.Write(chunk[:n]); werr != nil {
				return fmt.Errorf("cannot write file %s content: %w", id, werr)
			}
		}

		if err == io.EOF {
			break
		}

		if err != nil {
			return fmt.Errorf("cannot read file %s content: %w", id, err)
		}
	}

	return nil
}

func toItem(f *drive.File) *entity.DriveItem {
	return &entity.DriveItem{
		ID:           f.Id,
		Name:         f.Name,
		MIMEType:     f.MimeType,
		Parents:      f.Parents,
		CreatedTime:  f.CreatedTime,
		ModifiedTime: f.ModifiedTime,
	}
}

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}
