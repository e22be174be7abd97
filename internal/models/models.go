package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ClientCategory represents the tax treatment category of a client
type ClientCategory string

const (
	// ClientCategoryPublic represents public-sector clients subject to withholding
	ClientCategoryPublic ClientCategory = "PUBLIC"
	// ClientCategoryPrivate represents private-sector clients
	ClientCategoryPrivate ClientCategory = "PRIVATE"
)

// String returns the string representation of ClientCategory
func (c ClientCategory) String() string {
	return string(c)
}

// IsValid checks if the client category is valid
func (c ClientCategory) IsValid() bool {
	return c == ClientCategoryPublic || c == ClientCategoryPrivate
}

// InvoiceStatus represents the lifecycle status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusSent      InvoiceStatus = "SENT"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusPartial   InvoiceStatus = "PARTIAL"
	InvoiceStatusOverdue   InvoiceStatus = "OVERDUE"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsValid checks if the invoice status is valid
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid,
		InvoiceStatusPartial, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// ImpliesPayment reports whether invoices with this status carry a payment date
func (s InvoiceStatus) ImpliesPayment() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusPartial
}

// ExpenseStatus represents the settlement status of an expense
type ExpenseStatus string

const (
	ExpenseStatusPaid   ExpenseStatus = "paid"
	ExpenseStatusUnpaid ExpenseStatus = "unpaid"
)

// String returns the string representation of ExpenseStatus
func (s ExpenseStatus) String() string {
	return string(s)
}

// IsValid checks if the expense status is valid
func (s ExpenseStatus) IsValid() bool {
	return s == ExpenseStatusPaid || s == ExpenseStatusUnpaid
}

// MatchType classifies how a bank statement line relates to the invoices
// and expenses it settles. It is the ground-truth label a reconciliation
// engine under test is expected to recover.
type MatchType string

const (
	// MatchTypeMatched is a one-to-one invoice settlement
	MatchTypeMatched MatchType = "MATCHED"
	// MatchTypePartial is one of several partial payments of a single invoice
	MatchTypePartial MatchType = "PARTIAL"
	// MatchTypeGrouped settles several invoices with one payment
	MatchTypeGrouped MatchType = "GROUPED"
	// MatchTypeUnmatched settles one invoice but carries no parseable reference
	MatchTypeUnmatched MatchType = "UNMATCHED"
	// MatchTypeExpense settles an expense
	MatchTypeExpense MatchType = "EXPENSE"
	// MatchTypeOrphan has no linkage at all (fees, adjustments)
	MatchTypeOrphan MatchType = "ORPHAN"
)

// String returns the string representation of MatchType
func (m MatchType) String() string {
	return string(m)
}

// IsValid checks if the match type is valid
func (m MatchType) IsValid() bool {
	switch m {
	case MatchTypeMatched, MatchTypePartial, MatchTypeGrouped,
		MatchTypeUnmatched, MatchTypeExpense, MatchTypeOrphan:
		return true
	}
	return false
}

// Client represents a billed customer. Category is immutable once
// assigned and drives the tax-calculation branch for every invoice
// referencing the client.
type Client struct {
	ID          int            `json:"id" csv:"id"`
	CompanyName string         `json:"company_name" csv:"company_name"`
	Category    ClientCategory `json:"category" csv:"category"`
	ContactName string         `json:"contact_name" csv:"contact_name"`
	Email       string         `json:"email" csv:"email"`
	Phone       string         `json:"phone" csv:"phone"`
	City        string         `json:"city" csv:"city"`
	CreatedAt   time.Time      `json:"created_at" csv:"created_at"`
}

// Validate performs basic validation on the Client
func (c *Client) Validate() error {
	if c.ID <= 0 {
		return fmt.Errorf("client ID must be positive, got %d", c.ID)
	}
	if strings.TrimSpace(c.CompanyName) == "" {
		return fmt.Errorf("client company name cannot be empty")
	}
	if !c.Category.IsValid() {
		return fmt.Errorf("invalid client category: %s", c.Category)
	}
	return nil
}

// String returns a string representation of the Client
func (c *Client) String() string {
	return fmt.Sprintf("Client{ID: %d, Company: %s, Category: %s}",
		c.ID, c.CompanyName, c.Category)
}

// Invoice represents a client invoice with derived tax amounts.
// Monetary invariant: NetPayable = TTC - Withholding5Pct - WithholdingVAT,
// with both withholding components zero unless the owning client is PUBLIC.
type Invoice struct {
	ID                  int             `json:"id" csv:"id"`
	ClientID            int             `json:"client_id" csv:"client_id"`
	IssueDate           time.Time       `json:"issue_date" csv:"issue_date"`
	PaymentDate         *time.Time      `json:"payment_date,omitempty" csv:"payment_date"`
	ExpectedPaymentDate time.Time       `json:"expected_payment_date" csv:"expected_payment_date"`
	Status              InvoiceStatus   `json:"status" csv:"status"`
	InvoiceNumber       string          `json:"invoice_number" csv:"invoice_number"`
	Label               string          `json:"label" csv:"label"`
	Gross               decimal.Decimal `json:"gross" csv:"gross"`
	VAT                 decimal.Decimal `json:"vat" csv:"vat"`
	TTC                 decimal.Decimal `json:"ttc" csv:"ttc"`
	Withholding5Pct     decimal.Decimal `json:"withholding_5pct" csv:"withholding_5pct"`
	WithholdingVAT      decimal.Decimal `json:"withholding_vat" csv:"withholding_vat"`
	NetPayable          decimal.Decimal `json:"net_payable" csv:"net_payable"`
	Quantity            int             `json:"quantity" csv:"quantity"`
	UnitPrice           decimal.Decimal `json:"unit_price" csv:"unit_price"`
	CreatedAt           time.Time       `json:"created_at" csv:"created_at"`
}

// Validate performs basic validation on the Invoice
func (inv *Invoice) Validate() error {
	if inv.ID <= 0 {
		return fmt.Errorf("invoice ID must be positive, got %d", inv.ID)
	}
	if inv.ClientID <= 0 {
		return fmt.Errorf("invoice %d: client ID must be positive, got %d", inv.ID, inv.ClientID)
	}
	if !inv.Status.IsValid() {
		return fmt.Errorf("invoice %d: invalid status %s", inv.ID, inv.Status)
	}
	if strings.TrimSpace(inv.InvoiceNumber) == "" {
		return fmt.Errorf("invoice %d: invoice number cannot be empty", inv.ID)
	}
	if inv.IssueDate.IsZero() {
		return fmt.Errorf("invoice %d: issue date cannot be zero", inv.ID)
	}
	if inv.Status.ImpliesPayment() != (inv.PaymentDate != nil) {
		return fmt.Errorf("invoice %d: payment date presence does not match status %s", inv.ID, inv.Status)
	}
	if inv.PaymentDate != nil && inv.PaymentDate.Before(inv.IssueDate) {
		return fmt.Errorf("invoice %d: payment date precedes issue date", inv.ID)
	}
	expectedNet := inv.TTC.Sub(inv.Withholding5Pct).Sub(inv.WithholdingVAT)
	if !inv.NetPayable.Equal(expectedNet) {
		return fmt.Errorf("invoice %d: net payable %s does not equal TTC - withholdings %s",
			inv.ID, inv.NetPayable.String(), expectedNet.String())
	}
	return nil
}

// String returns a string representation of the Invoice
func (inv *Invoice) String() string {
	return fmt.Sprintf("Invoice{ID: %d, Number: %s, Status: %s, Net: %s}",
		inv.ID, inv.InvoiceNumber, inv.Status, inv.NetPayable.String())
}

// Expense represents an operating expense, independent of invoices and
// linked to statement lines only via its identity.
type Expense struct {
	ID                  int             `json:"id" csv:"id"`
	Number              string          `json:"number" csv:"number"`
	Label               string          `json:"label" csv:"label"`
	Amount              decimal.Decimal `json:"amount" csv:"amount"`
	Category            string          `json:"category" csv:"category"`
	Status              ExpenseStatus   `json:"status" csv:"status"`
	ExpenseDate         time.Time       `json:"expense_date" csv:"expense_date"`
	ExpectedPaymentDate time.Time       `json:"expected_payment_date" csv:"expected_payment_date"`
	CreatedAt           time.Time       `json:"created_at" csv:"created_at"`
}

// Validate performs basic validation on the Expense
func (e *Expense) Validate() error {
	if e.ID <= 0 {
		return fmt.Errorf("expense ID must be positive, got %d", e.ID)
	}
	if !e.Status.IsValid() {
		return fmt.Errorf("expense %d: invalid status %s", e.ID, e.Status)
	}
	if !e.Amount.IsPositive() {
		return fmt.Errorf("expense %d: amount must be positive, got %s", e.ID, e.Amount.String())
	}
	if e.ExpenseDate.IsZero() {
		return fmt.Errorf("expense %d: expense date cannot be zero", e.ID)
	}
	if e.ExpectedPaymentDate.Before(e.ExpenseDate) {
		return fmt.Errorf("expense %d: expected payment date precedes expense date", e.ID)
	}
	return nil
}

// ValueDateBound is how far a value date may precede its statement date.
const ValueDateBound = 24 * time.Hour

// BankStatementLine represents one line of a synthetic bank statement.
// Exactly one of Debit/Credit is set. A line references at most one
// invoice or one expense; grouped lines additionally carry the full set
// of settled invoice identities alongside the primary reference.
// Lines are never mutated after creation.
type BankStatementLine struct {
	ID                int              `json:"id" csv:"id"`
	StatementDate     time.Time        `json:"statement_date" csv:"statement_date"`
	ValueDate         time.Time        `json:"value_date" csv:"value_date"`
	OperationLabel    string           `json:"operation_label" csv:"operation_label"`
	AdditionalLabel   string           `json:"additional_label" csv:"additional_label"`
	Debit             *decimal.Decimal `json:"debit,omitempty" csv:"debit"`
	Credit            *decimal.Decimal `json:"credit,omitempty" csv:"credit"`
	RelatedInvoiceID  *int             `json:"related_invoice_id,omitempty" csv:"related_invoice_id"`
	RelatedExpenseID  *int             `json:"related_expense_id,omitempty" csv:"related_expense_id"`
	GroupedInvoiceIDs []int            `json:"grouped_invoice_ids,omitempty" csv:"grouped_invoice_ids"`
	MatchType         MatchType        `json:"match_type" csv:"match_type"`
	CreatedAt         time.Time        `json:"created_at" csv:"created_at"`
}

// Validate performs basic validation on the BankStatementLine
func (l *BankStatementLine) Validate() error {
	if l.ID <= 0 {
		return fmt.Errorf("statement line ID must be positive, got %d", l.ID)
	}
	if !l.MatchType.IsValid() {
		return fmt.Errorf("statement line %d: invalid match type %s", l.ID, l.MatchType)
	}
	if (l.Debit == nil) == (l.Credit == nil) {
		return fmt.Errorf("statement line %d: exactly one of debit/credit must be set", l.ID)
	}
	if l.Debit != nil && !l.Debit.IsPositive() {
		return fmt.Errorf("statement line %d: debit must be positive, got %s", l.ID, l.Debit.String())
	}
	if l.Credit != nil && !l.Credit.IsPositive() {
		return fmt.Errorf("statement line %d: credit must be positive, got %s", l.ID, l.Credit.String())
	}
	if l.RelatedInvoiceID != nil && l.RelatedExpenseID != nil {
		return fmt.Errorf("statement line %d: cannot reference both an invoice and an expense", l.ID)
	}
	if len(l.GroupedInvoiceIDs) > 0 && l.MatchType != MatchTypeGrouped {
		return fmt.Errorf("statement line %d: grouped invoice IDs on non-grouped line", l.ID)
	}
	if l.StatementDate.IsZero() || l.ValueDate.IsZero() {
		return fmt.Errorf("statement line %d: statement and value dates cannot be zero", l.ID)
	}
	if l.ValueDate.Before(l.StatementDate.Add(-ValueDateBound)) {
		return fmt.Errorf("statement line %d: value date %s too far before statement date %s",
			l.ID, l.ValueDate.Format("2006-01-02"), l.StatementDate.Format("2006-01-02"))
	}
	return nil
}

// Amount returns whichever of debit or credit is set
func (l *BankStatementLine) Amount() decimal.Decimal {
	if l.Debit != nil {
		return *l.Debit
	}
	if l.Credit != nil {
		return *l.Credit
	}
	return decimal.Zero
}

// IsCredit returns true if the line carries a credit amount
func (l *BankStatementLine) IsCredit() bool {
	return l.Credit != nil
}

// IsDebit returns true if the line carries a debit amount
func (l *BankStatementLine) IsDebit() bool {
	return l.Debit != nil
}

// String returns a string representation of the BankStatementLine
func (l *BankStatementLine) String() string {
	side := "DEBIT"
	if l.IsCredit() {
		side = "CREDIT"
	}
	return fmt.Sprintf("BankStatementLine{ID: %d, Date: %s, %s: %s, Match: %s}",
		l.ID, l.StatementDate.Format("2006-01-02"), side, l.Amount().String(), l.MatchType)
}
