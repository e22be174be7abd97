// Package validate checks a generated dataset against its structural and
// monetary invariants before it is exported. A violation here means a
// generator bug, not bad input, so nothing is repaired.
package validate

import (
	"fmt"

	"accounting-dataset-generator/internal/models"
	"accounting-dataset-generator/pkg/errors"
	"accounting-dataset-generator/pkg/logger"

	"github.com/shopspring/decimal"
)

// Validator checks generated datasets for invariant violations.
type Validator struct {
	logger logger.Logger
}

// NewValidator creates a dataset validator.
func NewValidator(log logger.Logger) *Validator {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Validator{logger: log.WithComponent("validate")}
}

// ValidateDataset checks record-level validity, referential integrity and
// the per-topology monetary invariants. All violations are collected and
// returned together as an error summary.
func (v *Validator) ValidateDataset(
	clients []models.Client,
	invoices []models.Invoice,
	expenses []models.Expense,
	lines []models.BankStatementLine,
) error {
	var errs []*errors.GeneratorError

	clientIDs := make(map[int]bool, len(clients))
	for i := range clients {
		if err := clients[i].Validate(); err != nil {
			errs = append(errs, errors.ValidationError(errors.CodeInvalidRecord, err.Error(), nil))
		}
		clientIDs[clients[i].ID] = true
	}

	invoiceByID := make(map[int]*models.Invoice, len(invoices))
	for i := range invoices {
		inv := &invoices[i]
		if err := inv.Validate(); err != nil {
			errs = append(errs, errors.ValidationError(errors.CodeInvalidRecord, err.Error(), nil))
		}
		if !clientIDs[inv.ClientID] {
			errs = append(errs, errors.ValidationError(errors.CodeBrokenReference,
				fmt.Sprintf("invoice %d references unknown client %d", inv.ID, inv.ClientID), nil))
		}
		invoiceByID[inv.ID] = inv
	}

	expenseIDs := make(map[int]bool, len(expenses))
	for i := range expenses {
		if err := expenses[i].Validate(); err != nil {
			errs = append(errs, errors.ValidationError(errors.CodeInvalidRecord, err.Error(), nil))
		}
		expenseIDs[expenses[i].ID] = true
	}

	errs = append(errs, v.validateLines(lines, invoiceByID, expenseIDs)...)
	errs = append(errs, v.validateSums(lines, invoiceByID)...)

	if len(errs) > 0 {
		summary := errors.NewErrorSummary(errs)
		v.logger.WithField("violations", summary.Total).Error("Dataset validation failed")
		return summary
	}

	v.logger.WithFields(logger.Fields{
		"clients":  len(clients),
		"invoices": len(invoices),
		"expenses": len(expenses),
		"lines":    len(lines),
	}).Info("Dataset validation passed")
	return nil
}

func (v *Validator) validateLines(
	lines []models.BankStatementLine,
	invoiceByID map[int]*models.Invoice,
	expenseIDs map[int]bool,
) []*errors.GeneratorError {
	var errs []*errors.GeneratorError

	// An invoice must be settled through exactly one topology.
	invoiceTopology := make(map[int]models.MatchType)

	for i := range lines {
		line := &lines[i]
		if err := line.Validate(); err != nil {
			errs = append(errs, errors.ValidationError(errors.CodeInvalidRecord, err.Error(), nil))
		}

		if line.RelatedInvoiceID != nil && !hasInvoice(invoiceByID, *line.RelatedInvoiceID) {
			errs = append(errs, errors.ValidationError(errors.CodeBrokenReference,
				fmt.Sprintf("line %d references unknown invoice %d", line.ID, *line.RelatedInvoiceID), nil))
		}
		if line.RelatedExpenseID != nil && !expenseIDs[*line.RelatedExpenseID] {
			errs = append(errs, errors.ValidationError(errors.CodeBrokenReference,
				fmt.Sprintf("line %d references unknown expense %d", line.ID, *line.RelatedExpenseID), nil))
		}
		for _, id := range line.GroupedInvoiceIDs {
			if !hasInvoice(invoiceByID, id) {
				errs = append(errs, errors.ValidationError(errors.CodeBrokenReference,
					fmt.Sprintf("line %d groups unknown invoice %d", line.ID, id), nil))
			}
		}

		ids := referencedInvoices(line)
		for _, id := range ids {
			previous, seen := invoiceTopology[id]
			if seen && previous != line.MatchType {
				errs = append(errs, errors.ValidationError(errors.CodeInvalidRecord,
					fmt.Sprintf("invoice %d settled through both %s and %s", id, previous, line.MatchType), nil))
				continue
			}
			invoiceTopology[id] = line.MatchType
			if line.MatchType != models.MatchTypePartial && seen {
				errs = append(errs, errors.ValidationError(errors.CodeInvalidRecord,
					fmt.Sprintf("invoice %d settled by more than one %s line", id, line.MatchType), nil))
			}
		}
	}

	return errs
}

// validateSums checks the monetary invariants: partial installments sum
// exactly to the invoice net, grouped credits equal the exact sum of the
// grouped nets, and unmatched credits equal the net unchanged.
func (v *Validator) validateSums(
	lines []models.BankStatementLine,
	invoiceByID map[int]*models.Invoice,
) []*errors.GeneratorError {
	var errs []*errors.GeneratorError

	partialSums := make(map[int]decimal.Decimal)
	partialCounts := make(map[int]int)

	for i := range lines {
		line := &lines[i]
		switch line.MatchType {
		case models.MatchTypePartial:
			if line.RelatedInvoiceID == nil {
				continue
			}
			id := *line.RelatedInvoiceID
			partialSums[id] = partialSums[id].Add(line.Amount())
			partialCounts[id]++

		case models.MatchTypeGrouped:
			total := decimal.Zero
			complete := true
			for _, id := range line.GroupedInvoiceIDs {
				inv, ok := invoiceByID[id]
				if !ok {
					complete = false
					break
				}
				total = total.Add(inv.NetPayable)
			}
			if complete && !line.Amount().Equal(total) {
				errs = append(errs, errors.ValidationError(errors.CodeSumMismatch,
					fmt.Sprintf("grouped line %d credits %s, grouped nets sum to %s",
						line.ID, line.Amount().String(), total.String()), nil))
			}

		case models.MatchTypeUnmatched:
			if line.RelatedInvoiceID == nil {
				continue
			}
			if inv, ok := invoiceByID[*line.RelatedInvoiceID]; ok && !line.Amount().Equal(inv.NetPayable) {
				errs = append(errs, errors.ValidationError(errors.CodeSumMismatch,
					fmt.Sprintf("unmatched line %d credits %s, invoice %d net is %s",
						line.ID, line.Amount().String(), inv.ID, inv.NetPayable.String()), nil))
			}
		}
	}

	for id, sum := range partialSums {
		inv, ok := invoiceByID[id]
		if !ok {
			continue
		}
		if partialCounts[id] < 2 {
			errs = append(errs, errors.ValidationError(errors.CodeInvalidRecord,
				fmt.Sprintf("invoice %d has a single partial installment", id), nil))
		}
		if !sum.Equal(inv.NetPayable) {
			errs = append(errs, errors.ValidationError(errors.CodeSumMismatch,
				fmt.Sprintf("partial installments of invoice %d sum to %s, net is %s",
					id, sum.String(), inv.NetPayable.String()), nil))
		}
	}

	return errs
}

// referencedInvoices returns the invoice identities a settlement line
// claims. Orphan and expense lines claim none.
func referencedInvoices(line *models.BankStatementLine) []int {
	if line.MatchType == models.MatchTypeGrouped {
		return line.GroupedInvoiceIDs
	}
	if line.RelatedInvoiceID != nil {
		return []int{*line.RelatedInvoiceID}
	}
	return nil
}

func hasInvoice(invoiceByID map[int]*models.Invoice, id int) bool {
	_, ok := invoiceByID[id]
	return ok
}
