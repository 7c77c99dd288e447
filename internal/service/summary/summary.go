package summary

import (
	"fmt"
	"io"
	"math"
	"sort"
	"text/tabwriter"

	"github.com/jgivc/gdocexport/internal/entity"
)

// Summarize groups records by folder and computes count, mean and sum of
// content length. Folders are sorted by label; the mean is rounded half to even.
func Summarize(records []*entity.ExportRecord) []entity.FolderSummary {
	if len(records) < 1 {
		return nil
	}

	byFolder := make(map[string]*entity.FolderSummary)
	for _, r := range records {
		s, exists := byFolder[r.Folder]
		if !exists {
			s = &entity.FolderSummary{Folder: r.Folder}
			byFolder[r.Folder] = s
		}

		s.Count++
		s.TotalLength += int64(r.ContentLength)
	}

	summaries := make([]entity.FolderSummary, 0, len(byFolder))
	for _, s := range byFolder {
		s.MeanLength = int64(math.RoundToEven(float64(s.TotalLength) / float64(s.Count)))
		summaries = append(summaries, *s)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Folder < summaries[j].Folder
	})

	return summaries
}

func WriteSummary(w io.Writer, summaries []entity.FolderSummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "folder\tcount\tmean\tsum")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", s.Folder, s.Count, s.MeanLength, s.TotalLength)
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("cannot write summary: %w", err)
	}

	return nil
}

// WritePreview prints the first limit records without their content.
func WritePreview(w io.Writer, records []*entity.ExportRecord, limit int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "\tfolder\tfilename\tcreated_date\tcontent_length")
	for i, r := range records {
		if i >= limit {
			break
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", i, r.Folder, r.Filename, r.CreatedDate, r.ContentLength)
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("cannot write preview: %w", err)
	}

	return nil
}
