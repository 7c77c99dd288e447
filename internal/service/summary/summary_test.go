package summary

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/jgivc/gdocexport/internal/entity"
	"github.com/stretchr/testify/require"
)

func rec(folder string, length int) *entity.ExportRecord {
	return &entity.ExportRecord{Folder: folder, Filename: fmt.Sprintf("%s-%d", folder, length), ContentLength: length}
}

func TestSummarize(t *testing.T) {
	testCases := []struct {
		name     string
		records  []*entity.ExportRecord
		expected []entity.FolderSummary
	}{
		{
			name: "Scenario 1: Empty set",
		},
		{
			name:    "Scenario 2: One folder",
			records: []*entity.ExportRecord{rec("", 10), rec("", 20)},
			expected: []entity.FolderSummary{
				{Folder: "", Count: 2, MeanLength: 15, TotalLength: 30},
			},
		},
		{
			name:    "Scenario 3: Folders sorted, mean rounded half to even",
			records: []*entity.ExportRecord{rec("Sub", 1), rec("", 3), rec("Sub", 2), rec("A", 0), rec("", 4)},
			expected: []entity.FolderSummary{
				{Folder: "", Count: 2, MeanLength: 4, TotalLength: 7},
				{Folder: "A", Count: 1, MeanLength: 0, TotalLength: 0},
				{Folder: "Sub", Count: 2, MeanLength: 2, TotalLength: 3},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, Summarize(tc.records))
		})
	}
}

func TestSummaryCountMatchesRecords(t *testing.T) {
	var records []*entity.ExportRecord
	for i := 0; i < 50; i++ {
		records = append(records, rec(fmt.Sprintf("F%d", i%4), i))
	}

	total := 0
	var sum int64
	for _, s := range Summarize(records) {
		total += s.Count
		sum += s.TotalLength
	}

	require.Equal(t, len(records), total)
	require.Equal(t, int64(49*50/2), sum)
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, Summarize([]*entity.ExportRecord{rec("Sub", 10), rec("Sub", 30)})))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, []string{"folder", "count", "mean", "sum"}, strings.Fields(lines[0]))
	require.Equal(t, []string{"Sub", "2", "20", "40"}, strings.Fields(lines[1]))
}

func TestWritePreview(t *testing.T) {
	var records []*entity.ExportRecord
	for i := 0; i < 15; i++ {
		records = append(records, rec("F", i))
	}

	var buf bytes.Buffer
	require.NoError(t, WritePreview(&buf, records, 10))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 11)
	require.Equal(t, []string{"9", "F", "F-9", "9"}, strings.Fields(lines[10]))
}
