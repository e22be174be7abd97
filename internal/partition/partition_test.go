package partition

import (
	"testing"
	"time"

	"accounting-dataset-generator/internal/models"

	"github.com/shopspring/decimal"
)

func paidInvoices(n int) []models.Invoice {
	invoices := make([]models.Invoice, n)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range invoices {
		payment := base.AddDate(0, 0, i)
		invoices[i] = models.Invoice{
			ID:          i + 1,
			ClientID:    1,
			Status:      models.InvoiceStatusPaid,
			PaymentDate: &payment,
			NetPayable:  decimal.NewFromInt(int64(100 + i)),
		}
	}
	return invoices
}

func TestRatios_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ratios  Ratios
		wantErr bool
	}{
		{"default", DefaultRatios(), false},
		{"all matched", Ratios{Matched: 1}, false},
		{"negative", Ratios{Matched: -0.1}, true},
		{"claims above one", Ratios{Matched: 0.6, Partial: 0.3, Grouped: 0.2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ratios.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPartition_DisjointAndExhaustive(t *testing.T) {
	p, err := NewPartitioner(DefaultRatios(), nil)
	if err != nil {
		t.Fatalf("NewPartitioner() error = %v", err)
	}

	invoices := paidInvoices(100)
	buckets, err := p.Partition(invoices)
	if err != nil {
		t.Fatalf("Partition() error = %v", err)
	}

	if buckets.Total() != len(invoices) {
		t.Errorf("buckets cover %d invoices, want %d", buckets.Total(), len(invoices))
	}

	seen := make(map[int]string)
	for bucket, invs := range map[string][]models.Invoice{
		"matched":   buckets.Matched,
		"partial":   buckets.Partial,
		"grouped":   buckets.Grouped,
		"unmatched": buckets.Unmatched,
	} {
		for _, inv := range invs {
			if previous, ok := seen[inv.ID]; ok {
				t.Errorf("invoice %d assigned to both %s and %s", inv.ID, previous, bucket)
			}
			seen[inv.ID] = bucket
		}
	}
	for _, inv := range invoices {
		if _, ok := seen[inv.ID]; !ok {
			t.Errorf("invoice %d missing from all buckets", inv.ID)
		}
	}
}

func TestPartition_StableInputOrder(t *testing.T) {
	p, err := NewPartitioner(Ratios{Matched: 0.5, Partial: 0.3, Grouped: 0.2}, nil)
	if err != nil {
		t.Fatalf("NewPartitioner() error = %v", err)
	}

	buckets, err := p.Partition(paidInvoices(10))
	if err != nil {
		t.Fatalf("Partition() error = %v", err)
	}

	tests := []struct {
		name   string
		bucket []models.Invoice
		ids    []int
	}{
		{"matched is the input prefix", buckets.Matched, []int{1, 2, 3, 4, 5}},
		{"partial follows matched", buckets.Partial, []int{6, 7, 8}},
		{"grouped follows partial", buckets.Grouped, []int{9, 10}},
		{"unmatched takes the tail", buckets.Unmatched, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.bucket) != len(tt.ids) {
				t.Fatalf("bucket has %d invoices, want %d", len(tt.bucket), len(tt.ids))
			}
			for i, want := range tt.ids {
				if tt.bucket[i].ID != want {
					t.Errorf("bucket[%d].ID = %d, want %d", i, tt.bucket[i].ID, want)
				}
			}
		})
	}
}

func TestPartition_TruncatedCounts(t *testing.T) {
	p, err := NewPartitioner(Ratios{Matched: 0.6, Partial: 0.15, Grouped: 0.15, Unmatched: 0.1}, nil)
	if err != nil {
		t.Fatalf("NewPartitioner() error = %v", err)
	}

	buckets, err := p.Partition(paidInvoices(101))
	if err != nil {
		t.Fatalf("Partition() error = %v", err)
	}

	if len(buckets.Matched) != 60 {
		t.Errorf("matched = %d, want 60", len(buckets.Matched))
	}
	if len(buckets.Partial) != 15 {
		t.Errorf("partial = %d, want 15", len(buckets.Partial))
	}
	if len(buckets.Grouped) != 15 {
		t.Errorf("grouped = %d, want 15", len(buckets.Grouped))
	}
	// The remainder, including truncation leftovers, lands in unmatched.
	if len(buckets.Unmatched) != 11 {
		t.Errorf("unmatched = %d, want 11", len(buckets.Unmatched))
	}
}

func TestPartition_IgnoresUnpaid(t *testing.T) {
	p, err := NewPartitioner(DefaultRatios(), nil)
	if err != nil {
		t.Fatalf("NewPartitioner() error = %v", err)
	}

	invoices := paidInvoices(10)
	invoices[0].Status = models.InvoiceStatusDraft
	invoices[0].PaymentDate = nil
	invoices[5].Status = models.InvoiceStatusCancelled
	invoices[5].PaymentDate = nil

	buckets, err := p.Partition(invoices)
	if err != nil {
		t.Fatalf("Partition() error = %v", err)
	}
	if buckets.Total() != 8 {
		t.Errorf("buckets cover %d invoices, want 8 paid", buckets.Total())
	}
	for _, bucket := range [][]models.Invoice{buckets.Matched, buckets.Partial, buckets.Grouped, buckets.Unmatched} {
		for _, inv := range bucket {
			if !inv.Status.ImpliesPayment() {
				t.Errorf("unpaid invoice %d assigned to a bucket", inv.ID)
			}
		}
	}
}
