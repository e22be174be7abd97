package export

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"accounting-dataset-generator/internal/models"
	"accounting-dataset-generator/internal/pipeline"
	"accounting-dataset-generator/pkg/errors"
	"accounting-dataset-generator/pkg/logger"
)

// ReportExporter writes a plain-text run summary: identities, counts per
// topology and the skip counters needed to judge a run.
type ReportExporter struct {
	outputDir string
	logger    logger.Logger
}

// NewReportExporter creates a summary-report exporter writing into outputDir.
func NewReportExporter(outputDir string) *ReportExporter {
	return &ReportExporter{
		outputDir: outputDir,
		logger:    logger.WithComponent("export.report"),
	}
}

// Name implements Exporter.
func (e *ReportExporter) Name() string { return "report" }

// Export writes summary.txt.
func (e *ReportExporter) Export(dataset *pipeline.Dataset) error {
	if err := ensureDir(e.outputDir); err != nil {
		return err
	}

	path := filepath.Join(e.outputDir, "summary.txt")
	file, err := os.Create(path)
	if err != nil {
		return errors.ExportError(errors.CodeFileError, path, err)
	}
	defer file.Close()

	stats := dataset.Stats
	w := bufio.NewWriter(file)

	fmt.Fprintln(w, "DATASET GENERATION SUMMARY")
	fmt.Fprintln(w, "==========================")
	fmt.Fprintf(w, "Run ID:         %s\n", stats.RunID)
	fmt.Fprintf(w, "Seed:           %d\n", stats.Seed)
	fmt.Fprintf(w, "Reference date: %s\n", formatDate(stats.ReferenceDate))
	fmt.Fprintf(w, "Duration:       %s\n", stats.Duration)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Records")
	fmt.Fprintf(w, "  Clients:         %d\n", stats.Clients)
	fmt.Fprintf(w, "  Invoices:        %d\n", stats.Invoices)
	fmt.Fprintf(w, "  Expenses:        %d\n", stats.Expenses)
	fmt.Fprintf(w, "  Statement lines: %d\n", stats.StatementLines)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Statement lines by match type")
	for _, mt := range []models.MatchType{
		models.MatchTypeMatched,
		models.MatchTypePartial,
		models.MatchTypeGrouped,
		models.MatchTypeUnmatched,
		models.MatchTypeExpense,
		models.MatchTypeOrphan,
	} {
		count := stats.LinesByMatchType[mt]
		share := 0.0
		if stats.StatementLines > 0 {
			share = float64(count) / float64(stats.StatementLines) * 100
		}
		fmt.Fprintf(w, "  %-10s %6d (%.1f%%)\n", mt.String(), count, share)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Skipped")
	fmt.Fprintf(w, "  Invoice candidates outside unit-price band: %d\n", stats.SkippedInvoices)
	fmt.Fprintf(w, "  Statement lines with degenerate amounts:    %d\n", stats.SkippedLines)

	if err := w.Flush(); err != nil {
		return errors.ExportError(errors.CodeWriteFailed, path, err)
	}

	e.logger.WithField("file", path).Info("Summary report written")
	return nil
}
