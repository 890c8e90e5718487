package exportfile

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/foxseedlab/kaigolog/internal/clock"
	"github.com/foxseedlab/kaigolog/internal/export"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// FileExporter writes flattened rows to activity-history-YYYY-MM-DD.<ext>
// in the configured export directory.
type FileExporter struct {
	dir string
	clk clock.Clock
}

func NewFileExporter(dir string, clk clock.Clock) export.Exporter {
	return &FileExporter{dir: dir, clk: clk}
}

func (e *FileExporter) Export(_ context.Context, format string, rows []export.Row) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	name := fmt.Sprintf("activity-history-%s.%s", e.clk.Now().Format("2006-01-02"), format)
	path := filepath.Join(e.dir, name)

	switch format {
	case FormatCSV:
		if err := writeCSV(path, rows); err != nil {
			return "", err
		}
	case FormatJSON:
		if err := writeJSON(path, rows); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("unknown export format %q (want csv or json)", format)
	}
	return path, nil
}

func writeCSV(path string, rows []export.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(export.Header()); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row.Fields()); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Sync()
}

type jsonRow struct {
	Resident  string `json:"resident,omitempty"`
	Activity  string `json:"activity"`
	StartDate string `json:"startDate"`
	StartTime string `json:"startTime"`
	EndDate   string `json:"endDate"`
	EndTime   string `json:"endTime"`
	Duration  string `json:"duration"`
	Seconds   int64  `json:"seconds"`
	Deleted   bool   `json:"deleted"`
}

func writeJSON(path string, rows []export.Row) error {
	out := make([]jsonRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, jsonRow{
			Resident:  row.Resident,
			Activity:  row.Activity,
			StartDate: row.StartDate,
			StartTime: row.StartTime,
			EndDate:   row.EndDate,
			EndTime:   row.EndTime,
			Duration:  row.Duration,
			Seconds:   row.Seconds,
			Deleted:   row.Deleted == "true",
		})
	}
	blob, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, blob, 0o644)
}
