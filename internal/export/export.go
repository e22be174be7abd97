// Package export writes a generated dataset to the supported output
// formats. Every exporter streams records row by row; datasets are never
// duplicated in memory.
package export

import (
	"os"
	"strconv"
	"strings"
	"time"

	"accounting-dataset-generator/internal/pipeline"
	"accounting-dataset-generator/pkg/errors"

	"github.com/shopspring/decimal"
)

// Exporter writes a dataset to one output format.
type Exporter interface {
	// Name identifies the format in logs and reports.
	Name() string
	// Export writes the dataset.
	Export(dataset *pipeline.Dataset) error
}

// ForFormat returns the exporter for a format name.
func ForFormat(format, outputDir string) (Exporter, error) {
	switch strings.ToLower(format) {
	case "csv":
		return NewCSVExporter(outputDir), nil
	case "sql":
		return NewSQLExporter(outputDir), nil
	case "xlsx":
		return NewXLSXExporter(outputDir), nil
	case "sqlite":
		return NewSQLiteExporter(outputDir), nil
	case "report":
		return NewReportExporter(outputDir), nil
	default:
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "format", format)
	}
}

const dateLayout = "2006-01-02"

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.ExportError(errors.CodeFileError, dir, err)
	}
	return nil
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func formatDecimal(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func formatDecimalPtr(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatIDList(ids []int) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
