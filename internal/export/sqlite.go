package export

import (
	"database/sql"
	"os"
	"path/filepath"

	"accounting-dataset-generator/internal/models"
	"accounting-dataset-generator/internal/pipeline"
	"accounting-dataset-generator/pkg/errors"
	"accounting-dataset-generator/pkg/logger"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteExporter writes the dataset into a ready-to-query SQLite file,
// so a reconciliation engine can be pointed at it without a load step.
type SQLiteExporter struct {
	outputDir string
	logger    logger.Logger
}

// NewSQLiteExporter creates a SQLite exporter writing into outputDir.
func NewSQLiteExporter(outputDir string) *SQLiteExporter {
	return &SQLiteExporter{
		outputDir: outputDir,
		logger:    logger.WithComponent("export.sqlite"),
	}
}

// Name implements Exporter.
func (e *SQLiteExporter) Name() string { return "sqlite" }

// Export writes dataset.db, replacing any previous file. All inserts run
// in one transaction.
func (e *SQLiteExporter) Export(dataset *pipeline.Dataset) error {
	if err := ensureDir(e.outputDir); err != nil {
		return err
	}

	path := filepath.Join(e.outputDir, "dataset.db")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.ExportError(errors.CodeFileError, path, err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return errors.ExportError(errors.CodeFileError, path, err)
	}
	defer db.Close()

	if _, err := db.Exec(sqlSchema); err != nil {
		return errors.ExportError(errors.CodeWriteFailed, path, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.ExportError(errors.CodeWriteFailed, path, err)
	}
	defer tx.Rollback()

	if err := e.insertClients(tx, dataset.Clients); err != nil {
		return errors.ExportError(errors.CodeWriteFailed, path, err)
	}
	if err := e.insertInvoices(tx, dataset.Invoices); err != nil {
		return errors.ExportError(errors.CodeWriteFailed, path, err)
	}
	if err := e.insertExpenses(tx, dataset.Expenses); err != nil {
		return errors.ExportError(errors.CodeWriteFailed, path, err)
	}
	if err := e.insertStatements(tx, dataset.StatementLines); err != nil {
		return errors.ExportError(errors.CodeWriteFailed, path, err)
	}

	if err := tx.Commit(); err != nil {
		return errors.ExportError(errors.CodeWriteFailed, path, err)
	}

	e.logger.WithFields(logger.Fields{
		"file":  path,
		"lines": len(dataset.StatementLines),
	}).Info("SQLite export completed")
	return nil
}

func (e *SQLiteExporter) insertClients(tx *sql.Tx, clients []models.Client) error {
	stmt, err := tx.Prepare("INSERT INTO clients VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range clients {
		c := &clients[i]
		if _, err := stmt.Exec(c.ID, c.CompanyName, c.Category.String(), c.ContactName,
			c.Email, c.Phone, c.City, formatDate(c.CreatedAt)); err != nil {
			return err
		}
	}
	return nil
}

func (e *SQLiteExporter) insertInvoices(tx *sql.Tx, invoices []models.Invoice) error {
	stmt, err := tx.Prepare("INSERT INTO invoices VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range invoices {
		inv := &invoices[i]
		if _, err := stmt.Exec(inv.ID, inv.ClientID, inv.InvoiceNumber, inv.Label, inv.Status.String(),
			formatDate(inv.IssueDate), formatDate(inv.ExpectedPaymentDate), nullString(formatDatePtr(inv.PaymentDate)),
			formatDecimal(inv.Gross), formatDecimal(inv.VAT), formatDecimal(inv.TTC),
			formatDecimal(inv.Withholding5Pct), formatDecimal(inv.WithholdingVAT), formatDecimal(inv.NetPayable),
			inv.Quantity, formatDecimal(inv.UnitPrice), formatDate(inv.CreatedAt)); err != nil {
			return err
		}
	}
	return nil
}

func (e *SQLiteExporter) insertExpenses(tx *sql.Tx, expenses []models.Expense) error {
	stmt, err := tx.Prepare("INSERT INTO expenses VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range expenses {
		exp := &expenses[i]
		if _, err := stmt.Exec(exp.ID, exp.Number, exp.Label, exp.Category, exp.Status.String(),
			formatDecimal(exp.Amount), formatDate(exp.ExpenseDate),
			formatDate(exp.ExpectedPaymentDate), formatDate(exp.CreatedAt)); err != nil {
			return err
		}
	}
	return nil
}

func (e *SQLiteExporter) insertStatements(tx *sql.Tx, lines []models.BankStatementLine) error {
	stmt, err := tx.Prepare("INSERT INTO bank_statements VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range lines {
		line := &lines[i]
		if _, err := stmt.Exec(line.ID, formatDate(line.StatementDate), formatDate(line.ValueDate),
			line.OperationLabel, line.AdditionalLabel,
			nullString(formatDecimalPtr(line.Debit)), nullString(formatDecimalPtr(line.Credit)),
			nullString(formatIntPtr(line.RelatedInvoiceID)), nullString(formatIntPtr(line.RelatedExpenseID)),
			nullString(formatIDList(line.GroupedInvoiceIDs)),
			line.MatchType.String(), formatDate(line.CreatedAt)); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
