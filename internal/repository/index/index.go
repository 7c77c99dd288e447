package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/jgivc/gdocexport/internal/entity"
	"github.com/jgivc/gdocexport/internal/util"
	"github.com/redis/go-redis/v9"
)

const (
	KeyPrefix         = "gde"
	KeyVersion1       = "v1"
	KeyVersion2       = "v2"
	KeyActiveVersion  = "av"  // STRING.
	KeyFilesMap       = "fm"  // HASH. files_map:ver file_id: folder/filename
	KeyFolderMap      = "dm"  // HASH. folder_map:ver folder_key: folder label
	KeyFolderFilesMap = "dfm" // HASH. folder_files_map:ver:folder_key file_id: content_length
	KeyRunInfo        = "ri"  // HASH. run_info:ver field: value

	KeyEmpty     = ""
	KeySeparator = ":"

	ScanCount = 1000
)

var (
	ClearableKeys = []string{KeyFilesMap, KeyFolderMap, KeyFolderFilesMap, KeyRunInfo}
)

var ErrNoIndex = errors.New("export index not found")

type indexRepository struct {
	ver atomic.Value
	cl  *redis.Client
	log *slog.Logger
}

func NewIndexRepository(ctx context.Context, cl *redis.Client, log *slog.Logger) (*indexRepository, error) {
	repo := &indexRepository{
		cl:  cl,
		log: log.With(slog.String("item", "IndexRepository")),
	}

	ver, _, err := repo.getVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot get active version: %w", err)
	}

	repo.ver.Store(ver)

	return repo, nil
}

/*
Save publishes the records of one run. The new index is written into the
standby version and then made active, so readers never see a half written run.
*/
func (r *indexRepository) Save(ctx context.Context, run *entity.RunInfo, records []*entity.ExportRecord) error {
	verActive, verStandby, err := r.getVersions(ctx)
	if err != nil {
		r.log.Error("Cannot get standby data version")

		return fmt.Errorf("cannot get active version: %w", err)
	}
	r.log.Info("Save new index", slog.String("active_version", verActive), slog.String("standby_version", verStandby))

	if err := r.clearOldData(ctx, verStandby); err != nil {
		r.log.Error("Cannot clear old data", slog.String("version", verStandby), slog.Any("error", err))

		return fmt.Errorf("cannot clear old data: %w", err)
	}

	if err := r.saveNewData(ctx, verStandby, run, records); err != nil {
		r.log.Error("Cannot save new data", slog.String("version", verStandby), slog.Any("error", err))

		return fmt.Errorf("cannot save new data: %w", err)
	}

	if _, err := r.cl.Set(ctx, getKey(KeyPrefix, KeyActiveVersion), verStandby, 0).Result(); err != nil {
		r.log.Error("Cannot switch to new version", slog.String("version", verStandby), slog.Any("error", err))

		return fmt.Errorf("cannot switch to new version: %w", err)
	}

	r.ver.Store(verStandby)

	return nil
}

func (r *indexRepository) saveNewData(ctx context.Context, ver string, run *entity.RunInfo, records []*entity.ExportRecord) error {
	log := r.log.With(slog.String("op", "saveNewData"), slog.String("version", ver))
	log.Info("Save new data", slog.Int("records", len(records)))

	pipe := r.cl.Pipeline()

	keyFilesMap := getKey(KeyPrefix, KeyFilesMap, ver)
	keyFolderMap := getKey(KeyPrefix, KeyFolderMap, ver)
	for _, rec := range records {
		folderKey := FolderKey(rec.Folder)

		pipe.HSet(ctx, keyFilesMap, rec.FileID, util.JoinLabel(rec.Folder, rec.Filename))
		pipe.HSet(ctx, keyFolderMap, folderKey, rec.Folder)
		pipe.HSet(ctx, getKey(KeyPrefix, KeyFolderFilesMap, ver, folderKey), rec.FileID, rec.ContentLength)
	}

	pipe.HSet(ctx, getKey(KeyPrefix, KeyRunInfo, ver),
		"run_id", run.ID,
		"project", run.Project,
		"bucket", run.Bucket,
		"root_id", run.RootID,
		"documents", run.Documents,
		"failed", run.Failed,
		"generated", run.Generated,
	)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cannot save new data: %w", err)
	}

	return nil
}

func (r *indexRepository) clearOldData(ctx context.Context, ver string) error {
	log := r.log.With(slog.String("op", "clearOldData"), slog.String("version", ver))

	for _, key := range ClearableKeys {
		pattern := getKey(KeyPrefix, key, ver, "*")

		var (
			cursor       uint64
			deletedCount int64
		)

		for {
			keys, nextCursor, err := r.cl.Scan(ctx, cursor, pattern, ScanCount).Result()
			if err != nil {
				return fmt.Errorf("error scanning keys: %w", err)
			}

			if len(keys) > 0 {
				count, err := r.cl.Del(ctx, keys...).Result()
				if err != nil {
					return fmt.Errorf("error deleting keys: %w", err)
				}
				deletedCount += count
			}

			cursor = nextCursor
			if cursor == 0 {
				break
			}
		}

		if _, err := r.cl.Del(ctx, getKey(KeyPrefix, key, ver)).Result(); err != nil {
			return fmt.Errorf("error deleting keys: %w", err)
		}

		log.Debug("Clear keys", slog.String("pattern", pattern), slog.Int64("key_count", deletedCount))
	}

	return nil
}

/*
getVersions return active and standby versions
*/
func (r *indexRepository) getVersions(ctx context.Context) (string, string, error) {
	ver, err := r.cl.Get(ctx, getKey(KeyPrefix, KeyActiveVersion)).Result()
	if err != nil && err != redis.Nil {
		return KeyEmpty, KeyEmpty, fmt.Errorf("cannot get active version: %w", err)
	}

	switch ver {
	case KeyVersion1:
		return KeyVersion1, KeyVersion2, nil
	case KeyVersion2:
		return KeyVersion2, KeyVersion1, nil
	}

	r.log.Info("Active version key is not found. Try to set new one", slog.String("version", KeyVersion1))

	if _, err = r.cl.Set(ctx, getKey(KeyPrefix, KeyActiveVersion), KeyVersion1, 0).Result(); err != nil {
		return KeyEmpty, KeyEmpty, fmt.Errorf("cannot set version key: %w", err)
	}

	return KeyVersion1, KeyVersion2, nil
}

func (r *indexRepository) ActiveVersion() string {
	return r.ver.Load().(string)
}

func (r *indexRepository) GetFilePath(ctx context.Context, fileID string) (string, error) {
	path, err := r.cl.HGet(ctx, getKey(KeyPrefix, KeyFilesMap, r.ActiveVersion()), fileID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNoIndex
		}

		return "", fmt.Errorf("cannot get file %s path: %w", fileID, err)
	}

	return path, nil
}

// FolderLengths returns file_id -> content_length for one folder label.
func (r *indexRepository) FolderLengths(ctx context.Context, folder string) (map[string]int, error) {
	files, err := r.cl.HGetAll(ctx, getKey(KeyPrefix, KeyFolderFilesMap, r.ActiveVersion(), FolderKey(folder))).Result()
	if err != nil {
		return nil, fmt.Errorf("cannot get folder files: %w", err)
	}

	lengths := make(map[string]int, len(files))
	for fileID, v := range files {
		n, err := strconv.Atoi(v)
		if err != nil {
			r.log.Error("Cannot convert content length", slog.String("file_id", fileID), slog.Any("error", err))

			continue
		}

		lengths[fileID] = n
	}

	return lengths, nil
}

// FolderKey is the stable redis key part for a folder label.
func FolderKey(folder string) string {
	return util.GetIDFromString(&folder)
}

func getKey(keys ...string) string {
	return strings.Join(keys, KeySeparator)
}
