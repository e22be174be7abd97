package export

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"accounting-dataset-generator/internal/pipeline"
	"accounting-dataset-generator/pkg/errors"
	"accounting-dataset-generator/pkg/logger"
)

// SQLExporter writes a single SQL script creating the schema and
// inserting every record, for loading the dataset into a database the
// reconciliation engine under test reads from.
type SQLExporter struct {
	outputDir string
	logger    logger.Logger
}

// NewSQLExporter creates a SQL script exporter writing into outputDir.
func NewSQLExporter(outputDir string) *SQLExporter {
	return &SQLExporter{
		outputDir: outputDir,
		logger:    logger.WithComponent("export.sql"),
	}
}

// Name implements Exporter.
func (e *SQLExporter) Name() string { return "sql" }

const sqlSchema = `CREATE TABLE clients (
    id INTEGER PRIMARY KEY,
    company_name TEXT NOT NULL,
    category TEXT NOT NULL,
    contact_name TEXT,
    email TEXT,
    phone TEXT,
    city TEXT,
    created_at DATE
);

CREATE TABLE invoices (
    id INTEGER PRIMARY KEY,
    client_id INTEGER NOT NULL REFERENCES clients(id),
    invoice_number TEXT NOT NULL,
    label TEXT,
    status TEXT NOT NULL,
    issue_date DATE NOT NULL,
    expected_payment_date DATE NOT NULL,
    payment_date DATE,
    gross NUMERIC(12,2) NOT NULL,
    vat NUMERIC(12,2) NOT NULL,
    ttc NUMERIC(12,2) NOT NULL,
    withholding_5pct NUMERIC(12,2) NOT NULL,
    withholding_vat NUMERIC(12,2) NOT NULL,
    net_payable NUMERIC(12,2) NOT NULL,
    quantity INTEGER NOT NULL,
    unit_price NUMERIC(12,2) NOT NULL,
    created_at DATE
);

CREATE TABLE expenses (
    id INTEGER PRIMARY KEY,
    number TEXT NOT NULL,
    label TEXT,
    category TEXT,
    status TEXT NOT NULL,
    amount NUMERIC(12,2) NOT NULL,
    expense_date DATE NOT NULL,
    expected_payment_date DATE NOT NULL,
    created_at DATE
);

CREATE TABLE bank_statements (
    id INTEGER PRIMARY KEY,
    statement_date DATE NOT NULL,
    value_date DATE NOT NULL,
    operation_label TEXT NOT NULL,
    additional_label TEXT,
    debit NUMERIC(12,2),
    credit NUMERIC(12,2),
    related_invoice_id INTEGER REFERENCES invoices(id),
    related_expense_id INTEGER REFERENCES expenses(id),
    grouped_invoice_ids TEXT,
    match_type TEXT NOT NULL,
    created_at DATE
);
`

// Export writes dataset.sql.
func (e *SQLExporter) Export(dataset *pipeline.Dataset) error {
	if err := ensureDir(e.outputDir); err != nil {
		return err
	}

	path := filepath.Join(e.outputDir, "dataset.sql")
	file, err := os.Create(path)
	if err != nil {
		return errors.ExportError(errors.CodeFileError, path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fmt.Fprint(w, sqlSchema, "\n")

	for i := range dataset.Clients {
		c := &dataset.Clients[i]
		fmt.Fprintf(w, "INSERT INTO clients VALUES (%d, %s, %s, %s, %s, %s, %s, %s);\n",
			c.ID, quote(c.CompanyName), quote(c.Category.String()), quote(c.ContactName),
			quote(c.Email), quote(c.Phone), quote(c.City), quote(formatDate(c.CreatedAt)))
	}
	fmt.Fprintln(w)

	for i := range dataset.Invoices {
		inv := &dataset.Invoices[i]
		fmt.Fprintf(w, "INSERT INTO invoices VALUES (%d, %d, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %d, %s, %s);\n",
			inv.ID, inv.ClientID, quote(inv.InvoiceNumber), quote(inv.Label), quote(inv.Status.String()),
			quote(formatDate(inv.IssueDate)), quote(formatDate(inv.ExpectedPaymentDate)),
			quoteNullable(formatDatePtr(inv.PaymentDate)),
			formatDecimal(inv.Gross), formatDecimal(inv.VAT), formatDecimal(inv.TTC),
			formatDecimal(inv.Withholding5Pct), formatDecimal(inv.WithholdingVAT), formatDecimal(inv.NetPayable),
			inv.Quantity, formatDecimal(inv.UnitPrice), quote(formatDate(inv.CreatedAt)))
	}
	fmt.Fprintln(w)

	for i := range dataset.Expenses {
		exp := &dataset.Expenses[i]
		fmt.Fprintf(w, "INSERT INTO expenses VALUES (%d, %s, %s, %s, %s, %s, %s, %s, %s);\n",
			exp.ID, quote(exp.Number), quote(exp.Label), quote(exp.Category), quote(exp.Status.String()),
			formatDecimal(exp.Amount), quote(formatDate(exp.ExpenseDate)),
			quote(formatDate(exp.ExpectedPaymentDate)), quote(formatDate(exp.CreatedAt)))
	}
	fmt.Fprintln(w)

	for i := range dataset.StatementLines {
		line := &dataset.StatementLines[i]
		fmt.Fprintf(w, "INSERT INTO bank_statements VALUES (%d, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s);\n",
			line.ID, quote(formatDate(line.StatementDate)), quote(formatDate(line.ValueDate)),
			quote(line.OperationLabel), quote(line.AdditionalLabel),
			nullableNumber(formatDecimalPtr(line.Debit)), nullableNumber(formatDecimalPtr(line.Credit)),
			nullableNumber(formatIntPtr(line.RelatedInvoiceID)), nullableNumber(formatIntPtr(line.RelatedExpenseID)),
			quoteNullable(formatIDList(line.GroupedInvoiceIDs)),
			quote(line.MatchType.String()), quote(formatDate(line.CreatedAt)))
	}

	if err := w.Flush(); err != nil {
		return errors.ExportError(errors.CodeWriteFailed, path, err)
	}

	e.logger.WithFields(logger.Fields{
		"file":  path,
		"lines": len(dataset.StatementLines),
	}).Info("SQL export completed")
	return nil
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteNullable(s string) string {
	if s == "" {
		return "NULL"
	}
	return quote(s)
}

func nullableNumber(s string) string {
	if s == "" {
		return "NULL"
	}
	return s
}

