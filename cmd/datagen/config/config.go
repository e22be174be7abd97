// Package config translates CLI flag values into the component
// configurations of the generation pipeline.
package config

import (
	"time"

	"accounting-dataset-generator/internal/emitter"
	"accounting-dataset-generator/internal/entities"
	"accounting-dataset-generator/internal/partition"
	"accounting-dataset-generator/internal/pipeline"
	apperrors "accounting-dataset-generator/pkg/errors"
)

// GenerateOptions holds the resolved flag values of the generate command.
type GenerateOptions struct {
	Seed          int64
	ReferenceDate string

	Clients  int
	Invoices int
	Expenses int
	Orphans  int

	PublicRatio  float64
	MatchedRatio float64
	PartialRatio float64
	GroupedRatio float64

	GrossMin float64
	GrossMax float64

	MatchedVariation float64
	ExpenseVariation float64

	OutputDir string
	Formats   []string
}

// DateLayout is the wire format of all CLI-supplied dates.
const DateLayout = "2006-01-02"

// BuildPipelineConfig turns the CLI options into a validated pipeline
// configuration. An empty reference date means today.
func BuildPipelineConfig(opts *GenerateOptions) (*pipeline.Config, error) {
	referenceDate := time.Now().UTC().Truncate(24 * time.Hour)
	if opts.ReferenceDate != "" {
		parsed, err := time.Parse(DateLayout, opts.ReferenceDate)
		if err != nil {
			return nil, apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "reference-date", opts.ReferenceDate).
				WithSuggestion("use the YYYY-MM-DD format")
		}
		referenceDate = parsed
	}

	cfg := pipeline.DefaultConfig(referenceDate)
	cfg.Seed = opts.Seed
	cfg.ClientCount = opts.Clients
	cfg.InvoiceCount = opts.Invoices
	cfg.ExpenseCount = opts.Expenses
	cfg.OrphanCount = opts.Orphans

	cfg.Entities.PublicClientRatio = opts.PublicRatio
	cfg.Entities.GrossMin = opts.GrossMin
	cfg.Entities.GrossMax = opts.GrossMax

	unmatched := 1 - opts.MatchedRatio - opts.PartialRatio - opts.GroupedRatio
	if unmatched < 0 {
		unmatched = 0
	}
	cfg.Ratios = partition.Ratios{
		Matched:   opts.MatchedRatio,
		Partial:   opts.PartialRatio,
		Grouped:   opts.GroupedRatio,
		Unmatched: unmatched,
	}

	cfg.Emitter.MatchedVariation = opts.MatchedVariation
	cfg.Emitter.ExpenseVariation = opts.ExpenseVariation

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultGenerateOptions returns the reference option values.
func DefaultGenerateOptions() *GenerateOptions {
	entCfg := entities.DefaultConfig()
	emitCfg := emitter.DefaultConfig()
	ratios := partition.DefaultRatios()

	return &GenerateOptions{
		Seed:             42,
		Clients:          800,
		Invoices:         5000,
		Expenses:         2000,
		Orphans:          800,
		PublicRatio:      entCfg.PublicClientRatio,
		MatchedRatio:     ratios.Matched,
		PartialRatio:     ratios.Partial,
		GroupedRatio:     ratios.Grouped,
		GrossMin:         entCfg.GrossMin,
		GrossMax:         entCfg.GrossMax,
		MatchedVariation: emitCfg.MatchedVariation,
		ExpenseVariation: emitCfg.ExpenseVariation,
		OutputDir:        "output",
		Formats:          []string{"csv", "report"},
	}
}
