package export

import (
	"fmt"
	"path/filepath"

	"accounting-dataset-generator/internal/pipeline"
	"accounting-dataset-generator/pkg/errors"
	"accounting-dataset-generator/pkg/logger"

	"github.com/xuri/excelize/v2"
)

// XLSXExporter writes the dataset as one workbook with a sheet per
// record type, the format accountants review datasets in.
type XLSXExporter struct {
	outputDir string
	logger    logger.Logger
}

// NewXLSXExporter creates an XLSX exporter writing into outputDir.
func NewXLSXExporter(outputDir string) *XLSXExporter {
	return &XLSXExporter{
		outputDir: outputDir,
		logger:    logger.WithComponent("export.xlsx"),
	}
}

// Name implements Exporter.
func (e *XLSXExporter) Name() string { return "xlsx" }

// Export writes dataset.xlsx.
func (e *XLSXExporter) Export(dataset *pipeline.Dataset) error {
	if err := ensureDir(e.outputDir); err != nil {
		return err
	}
	path := filepath.Join(e.outputDir, "dataset.xlsx")

	book := excelize.NewFile()
	defer book.Close()

	if err := e.writeSheet(book, "Clients", clientHeader, len(dataset.Clients), func(i int) []string {
		return clientRow(&dataset.Clients[i])
	}); err != nil {
		return errors.ExportError(errors.CodeWriteFailed, path, err)
	}
	if err := e.writeSheet(book, "Invoices", invoiceHeader, len(dataset.Invoices), func(i int) []string {
		return invoiceRow(&dataset.Invoices[i])
	}); err != nil {
		return errors.ExportError(errors.CodeWriteFailed, path, err)
	}
	if err := e.writeSheet(book, "Expenses", expenseHeader, len(dataset.Expenses), func(i int) []string {
		return expenseRow(&dataset.Expenses[i])
	}); err != nil {
		return errors.ExportError(errors.CodeWriteFailed, path, err)
	}
	if err := e.writeSheet(book, "Bank Statements", statementHeader, len(dataset.StatementLines), func(i int) []string {
		return statementRow(&dataset.StatementLines[i])
	}); err != nil {
		return errors.ExportError(errors.CodeWriteFailed, path, err)
	}

	// Drop the default sheet created by the library.
	if err := book.DeleteSheet("Sheet1"); err != nil {
		return errors.ExportError(errors.CodeWriteFailed, path, err)
	}

	if err := book.SaveAs(path); err != nil {
		return errors.ExportError(errors.CodeFileError, path, err)
	}

	e.logger.WithField("file", path).Info("XLSX export completed")
	return nil
}

func (e *XLSXExporter) writeSheet(book *excelize.File, name string, header []string, count int, row func(i int) []string) error {
	if _, err := book.NewSheet(name); err != nil {
		return err
	}

	writer, err := book.NewStreamWriter(name)
	if err != nil {
		return err
	}

	if err := writer.SetRow("A1", toCells(header)); err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		cell := fmt.Sprintf("A%d", i+2)
		if err := writer.SetRow(cell, toCells(row(i))); err != nil {
			return err
		}
	}
	return writer.Flush()
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
