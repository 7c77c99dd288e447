package tree

import (
	"context"
	"log/slog"

	"github.com/jgivc/gdocexport/internal/entity"
	"github.com/jgivc/gdocexport/internal/util"
)

type ChildLister interface {
	ListChildren(ctx context.Context, folderID string) ([]*entity.DriveItem, error)
}

type treeStorage struct {
	lister ChildLister
	log    *slog.Logger
}

// frame is one folder listing being consumed by the walk.
type frame struct {
	label string
	items []*entity.DriveItem
	pos   int
}

func NewTreeStorage(lister ChildLister, log *slog.Logger) *treeStorage {
	return &treeStorage{
		lister: lister,
		log:    log.With(slog.String("item", "TreeStorage")),
	}
}

/*
Scan walks the folder tree below rootID depth first and returns every Google
Doc in it. Each document carries the slash-joined names of the folders between
the root and itself, prefixed by rootLabel when it is not empty.

The order matches a recursive walk: a folder's children are visited in listing
order, and a subfolder is fully walked before its next sibling. A folder that
cannot be listed contributes no documents; the rest of the walk goes on.
*/
func (s *treeStorage) Scan(ctx context.Context, rootID, rootLabel string) []*entity.DocumentRef {
	var (
		docs  []*entity.DocumentRef
		stack []*frame
	)

	if root := s.list(ctx, rootID, rootLabel); root != nil {
		stack = append(stack, root)
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.pos >= len(top.items) {
			stack = stack[:len(stack)-1]

			continue
		}

		item := top.items[top.pos]
		top.pos++

		switch {
		case item.IsDocument():
			docs = append(docs, &entity.DocumentRef{
				ID:           item.ID,
				Name:         item.Name,
				Folder:       top.label,
				CreatedTime:  item.CreatedTime,
				ModifiedTime: item.ModifiedTime,
			})
		case item.IsFolder():
			if sub := s.list(ctx, item.ID, util.JoinLabel(top.label, item.Name)); sub != nil {
				stack = append(stack, sub)
			}
		}
	}

	return docs
}

func (s *treeStorage) list(ctx context.Context, folderID, label string) *frame {
	items, err := s.lister.ListChildren(ctx, folderID)
	if err != nil {
		s.log.Error("Cannot get files from folder", slog.String("folder_id", folderID), slog.String("folder", label), slog.Any("error", err))

		return nil
	}

	s.log.Debug("List folder", slog.String("folder_id", folderID), slog.String("folder", label), slog.Int("count", len(items)))

	return &frame{
		label: label,
		items: items,
	}
}
