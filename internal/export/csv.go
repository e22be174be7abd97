package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"accounting-dataset-generator/internal/models"
	"accounting-dataset-generator/internal/pipeline"
	"accounting-dataset-generator/pkg/errors"
	"accounting-dataset-generator/pkg/logger"
)

// CSVExporter writes one CSV file per record type.
type CSVExporter struct {
	outputDir string
	logger    logger.Logger
}

// NewCSVExporter creates a CSV exporter writing into outputDir.
func NewCSVExporter(outputDir string) *CSVExporter {
	return &CSVExporter{
		outputDir: outputDir,
		logger:    logger.WithComponent("export.csv"),
	}
}

// Name implements Exporter.
func (e *CSVExporter) Name() string { return "csv" }

// Export writes clients.csv, invoices.csv, expenses.csv and
// bank_statements.csv.
func (e *CSVExporter) Export(dataset *pipeline.Dataset) error {
	if err := ensureDir(e.outputDir); err != nil {
		return err
	}

	if err := e.writeFile("clients.csv", clientHeader, len(dataset.Clients), func(i int) []string {
		return clientRow(&dataset.Clients[i])
	}); err != nil {
		return err
	}
	if err := e.writeFile("invoices.csv", invoiceHeader, len(dataset.Invoices), func(i int) []string {
		return invoiceRow(&dataset.Invoices[i])
	}); err != nil {
		return err
	}
	if err := e.writeFile("expenses.csv", expenseHeader, len(dataset.Expenses), func(i int) []string {
		return expenseRow(&dataset.Expenses[i])
	}); err != nil {
		return err
	}
	if err := e.writeFile("bank_statements.csv", statementHeader, len(dataset.StatementLines), func(i int) []string {
		return statementRow(&dataset.StatementLines[i])
	}); err != nil {
		return err
	}

	e.logger.WithField("dir", e.outputDir).Info("CSV export completed")
	return nil
}

func (e *CSVExporter) writeFile(name string, header []string, count int, row func(i int) []string) error {
	path := filepath.Join(e.outputDir, name)
	file, err := os.Create(path)
	if err != nil {
		return errors.ExportError(errors.CodeFileError, path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return errors.ExportError(errors.CodeWriteFailed, path, err)
	}
	for i := 0; i < count; i++ {
		if err := writer.Write(row(i)); err != nil {
			return errors.ExportError(errors.CodeWriteFailed, path, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.ExportError(errors.CodeWriteFailed, path, err)
	}

	e.logger.WithFields(logger.Fields{"file": name, "rows": count}).Debug("Wrote CSV file")
	return nil
}

var clientHeader = []string{
	"id", "company_name", "category", "contact_name", "email", "phone", "city", "created_at",
}

func clientRow(c *models.Client) []string {
	return []string{
		strconv.Itoa(c.ID),
		c.CompanyName,
		c.Category.String(),
		c.ContactName,
		c.Email,
		c.Phone,
		c.City,
		formatDate(c.CreatedAt),
	}
}

var invoiceHeader = []string{
	"id", "client_id", "invoice_number", "label", "status",
	"issue_date", "expected_payment_date", "payment_date",
	"gross", "vat", "ttc", "withholding_5pct", "withholding_vat", "net_payable",
	"quantity", "unit_price", "created_at",
}

func invoiceRow(inv *models.Invoice) []string {
	return []string{
		strconv.Itoa(inv.ID),
		strconv.Itoa(inv.ClientID),
		inv.InvoiceNumber,
		inv.Label,
		inv.Status.String(),
		formatDate(inv.IssueDate),
		formatDate(inv.ExpectedPaymentDate),
		formatDatePtr(inv.PaymentDate),
		formatDecimal(inv.Gross),
		formatDecimal(inv.VAT),
		formatDecimal(inv.TTC),
		formatDecimal(inv.Withholding5Pct),
		formatDecimal(inv.WithholdingVAT),
		formatDecimal(inv.NetPayable),
		strconv.Itoa(inv.Quantity),
		formatDecimal(inv.UnitPrice),
		formatDate(inv.CreatedAt),
	}
}

var expenseHeader = []string{
	"id", "number", "label", "category", "status",
	"amount", "expense_date", "expected_payment_date", "created_at",
}

func expenseRow(exp *models.Expense) []string {
	return []string{
		strconv.Itoa(exp.ID),
		exp.Number,
		exp.Label,
		exp.Category,
		exp.Status.String(),
		formatDecimal(exp.Amount),
		formatDate(exp.ExpenseDate),
		formatDate(exp.ExpectedPaymentDate),
		formatDate(exp.CreatedAt),
	}
}

var statementHeader = []string{
	"id", "statement_date", "value_date", "operation_label", "additional_label",
	"debit", "credit", "related_invoice_id", "related_expense_id",
	"grouped_invoice_ids", "match_type", "created_at",
}

func statementRow(line *models.BankStatementLine) []string {
	return []string{
		strconv.Itoa(line.ID),
		formatDate(line.StatementDate),
		formatDate(line.ValueDate),
		line.OperationLabel,
		line.AdditionalLabel,
		formatDecimalPtr(line.Debit),
		formatDecimalPtr(line.Credit),
		formatIntPtr(line.RelatedInvoiceID),
		formatIntPtr(line.RelatedExpenseID),
		formatIDList(line.GroupedInvoiceIDs),
		line.MatchType.String(),
		formatDate(line.CreatedAt),
	}
}
