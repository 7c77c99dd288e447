package resolver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jgivc/gdocexport/internal/common"
	"github.com/jgivc/gdocexport/internal/entity"
)

const (
	serviceName = "resolver"
)

type FolderFinder interface {
	FindFolders(ctx context.Context, name, driveID string) ([]*entity.DriveItem, error)
	GetName(ctx context.Context, id string) (string, error)
}

type resolverService struct {
	finder  FolderFinder
	driveID string
	strict  bool
	log     *slog.Logger
}

// NewResolverService builds a folder resolver. driveID limits the search to
// one shared drive when not empty. With strict set, several matches that the
// parent name cannot tell apart are an error instead of the first match.
func NewResolverService(finder FolderFinder, driveID string, strict bool, log *slog.Logger) *resolverService {
	return &resolverService{
		finder:  finder,
		driveID: driveID,
		strict:  strict,
		log:     log.With(slog.String("service", serviceName)),
	}
}

func (r *resolverService) Resolve(ctx context.Context, name, parentName string) (string, error) {
	log := r.log.With(slog.String("name", name), slog.String("parent", parentName))

	folders, err := r.finder.FindFolders(ctx, name, r.driveID)
	if err != nil {
		log.Error("Cannot find folder", slog.Any("error", err))

		return "", fmt.Errorf("%w: %s: %w", common.ErrFolderNotFoundError, name, err)
	}

	if len(folders) < 1 {
		return "", fmt.Errorf("%w: %s", common.ErrFolderNotFoundError, name)
	}

	if len(folders) == 1 {
		return folders[0].ID, nil
	}

	if parentName != "" {
		for _, folder := range folders {
			if len(folder.Parents) < 1 {
				continue
			}

			pName, err := r.finder.GetName(ctx, folder.Parents[0])
			if err != nil {
				log.Warn("Cannot get parent folder", slog.String("folder_id", folder.ID), slog.Any("error", err))

				continue
			}

			if pName == parentName {
				return folder.ID, nil
			}
		}
	}

	if r.strict {
		return "", fmt.Errorf("%w: %s has %d matches", common.ErrAmbiguousFolder, name, len(folders))
	}

	log.Warn("Several folders match, use the first one", slog.Int("count", len(folders)), slog.String("folder_id", folders[0].ID))

	return folders[0].ID, nil
}
