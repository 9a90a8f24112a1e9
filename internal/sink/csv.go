package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"

	"dromcrawl/pkg/types"
)

// utf8BOM lets spreadsheet tools display non-Latin text correctly.
var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// CSVSink writes the tabular artifact: one row per record in the fixed
// column order, BOM-prefixed UTF-8, unknown fields rendered as the sentinel.
type CSVSink struct {
	path   string
	logger *slog.Logger
}

// NewCSVSink constructs a CSV sink targeting path.
func NewCSVSink(path string, logger *slog.Logger) *CSVSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVSink{path: path, logger: logger}
}

// Write persists the records. A zero-length record list writes nothing and
// reports a no-op.
func (s *CSVSink) Write(_ context.Context, records []types.Record) error {
	if len(records) == 0 {
		s.logger.Info("no records to save, skipping csv artifact", "path", s.path)
		return nil
	}

	fh, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create csv artifact: %w", err)
	}
	defer fh.Close()

	if _, err := fh.Write(utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	w := csv.NewWriter(fh)
	if err := w.Write(types.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		if err := w.Write(rec.Row()); err != nil {
			return fmt.Errorf("write row for %s: %w", rec.URL, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv artifact: %w", err)
	}

	s.logger.Info("saved csv artifact", "path", s.path, "records", len(records))
	return nil
}

// Close is a no-op; the file handle does not outlive Write.
func (s *CSVSink) Close() error {
	return nil
}
