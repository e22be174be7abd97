// Package partition splits the paid-invoice population into the
// reconciliation topologies a statement line can realize.
package partition

import (
	"fmt"

	"accounting-dataset-generator/internal/models"
	"accounting-dataset-generator/pkg/errors"
	"accounting-dataset-generator/pkg/logger"
)

// Ratios defines the target share of each reconciliation topology among
// paid invoices. Counts are derived by truncation, so the shares are
// upper bounds; invoices not claimed by Matched, Partial or Grouped fall
// into Unmatched.
type Ratios struct {
	Matched   float64
	Partial   float64
	Grouped   float64
	Unmatched float64
}

// DefaultRatios returns the reference topology mix.
func DefaultRatios() Ratios {
	return Ratios{
		Matched:   0.60,
		Partial:   0.15,
		Grouped:   0.15,
		Unmatched: 0.10,
	}
}

// Validate checks the ratios for fatal configuration errors.
func (r Ratios) Validate() error {
	for _, entry := range []struct {
		name  string
		value float64
	}{
		{"matched", r.Matched},
		{"partial", r.Partial},
		{"grouped", r.Grouped},
		{"unmatched", r.Unmatched},
	} {
		if entry.value < 0 {
			return errors.ConfigurationError(errors.CodeInvalidRatio, entry.name, entry.value)
		}
	}

	if sum := r.Matched + r.Partial + r.Grouped; sum > 1 {
		return errors.ConfigurationError(errors.CodeInvalidRatio, "matched+partial+grouped", sum).
			WithSuggestion("the claimed shares must not exceed 1; the remainder is assigned to unmatched")
	}
	return nil
}

// Buckets holds the partitioned invoice population. The four slices are
// disjoint and together cover every input invoice exactly once.
type Buckets struct {
	Matched   []models.Invoice
	Partial   []models.Invoice
	Grouped   []models.Invoice
	Unmatched []models.Invoice
}

// Total returns the number of invoices across all buckets.
func (b *Buckets) Total() int {
	return len(b.Matched) + len(b.Partial) + len(b.Grouped) + len(b.Unmatched)
}

// Partitioner assigns paid invoices to reconciliation topologies.
type Partitioner struct {
	ratios Ratios
	logger logger.Logger
}

// NewPartitioner creates a partitioner after validating the ratios.
func NewPartitioner(ratios Ratios, log logger.Logger) (*Partitioner, error) {
	if err := ratios.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Partitioner{
		ratios: ratios,
		logger: log.WithComponent("partition"),
	}, nil
}

// Partition splits the payment-carrying invoices among the topologies.
// Invoices whose status does not imply a payment are ignored. Slicing
// follows stable input order, not random sampling: matched takes the
// prefix, then partial, then grouped, and unmatched takes the tail, so
// the assignment of any invoice can be audited from its position.
func (p *Partitioner) Partition(invoices []models.Invoice) (*Buckets, error) {
	paid := make([]models.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if inv.Status.ImpliesPayment() {
			paid = append(paid, inv)
		}
	}

	n := len(paid)
	matchedCount := int(float64(n) * p.ratios.Matched)
	partialCount := int(float64(n) * p.ratios.Partial)
	groupedCount := int(float64(n) * p.ratios.Grouped)

	claimed := matchedCount + partialCount + groupedCount
	if claimed > n {
		return nil, errors.ConfigurationError(errors.CodeInvalidRatio, "topology-ratios",
			fmt.Sprintf("claimed %d of %d paid invoices", claimed, n))
	}

	buckets := &Buckets{
		Matched:   paid[:matchedCount],
		Partial:   paid[matchedCount : matchedCount+partialCount],
		Grouped:   paid[matchedCount+partialCount : claimed],
		Unmatched: paid[claimed:],
	}

	p.logger.WithFields(logger.Fields{
		"paid":      n,
		"matched":   len(buckets.Matched),
		"partial":   len(buckets.Partial),
		"grouped":   len(buckets.Grouped),
		"unmatched": len(buckets.Unmatched),
	}).Info("Partitioned paid invoices")

	return buckets, nil
}
