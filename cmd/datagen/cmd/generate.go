package cmd

import (
	"fmt"
	"os"
	"time"

	"accounting-dataset-generator/cmd/datagen/config"
	"accounting-dataset-generator/internal/export"
	"accounting-dataset-generator/internal/pipeline"
	"accounting-dataset-generator/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the generate command
var opts = config.DefaultGenerateOptions()

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic accounting dataset",
	Long: `Generate produces clients, invoices, expenses and bank statement
lines, then writes them in the requested output formats.

Paid invoices are split across four reconciliation topologies: exact
one-to-one settlements, multi-installment partial payments, grouped
payments settling several invoices at once, and payments carrying no
parseable reference. Expense settlements and orphan noise lines complete
the statement. Every line carries its ground-truth match type.

Runs with the same seed and reference date produce identical datasets.

Examples:
  # Reference dataset into ./output
  datagen generate

  # Reproducible dataset with a pinned reference date
  datagen generate --seed 7 --reference-date 2026-01-15

  # Larger dataset, more unmatched lines, SQLite output
  datagen generate --invoices 20000 --matched-ratio 0.4 --formats sqlite,report`,

	PreRunE: validateGenerateFlags,
	RunE:    runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	// Determinism flags
	generateCmd.Flags().Int64Var(&opts.Seed, "seed", opts.Seed, "random seed")
	generateCmd.Flags().StringVar(&opts.ReferenceDate, "reference-date", "", "generation reference date (YYYY-MM-DD, default: today)")

	// Volume flags
	generateCmd.Flags().IntVar(&opts.Clients, "clients", opts.Clients, "number of clients")
	generateCmd.Flags().IntVar(&opts.Invoices, "invoices", opts.Invoices, "number of invoice candidates")
	generateCmd.Flags().IntVar(&opts.Expenses, "expenses", opts.Expenses, "number of expenses")
	generateCmd.Flags().IntVar(&opts.Orphans, "orphans", opts.Orphans, "number of orphan noise lines")

	// Distribution flags
	generateCmd.Flags().Float64Var(&opts.PublicRatio, "public-ratio", opts.PublicRatio, "share of PUBLIC clients (0.0-1.0)")
	generateCmd.Flags().Float64Var(&opts.MatchedRatio, "matched-ratio", opts.MatchedRatio, "share of paid invoices settled one-to-one")
	generateCmd.Flags().Float64Var(&opts.PartialRatio, "partial-ratio", opts.PartialRatio, "share of paid invoices settled in installments")
	generateCmd.Flags().Float64Var(&opts.GroupedRatio, "grouped-ratio", opts.GroupedRatio, "share of paid invoices settled in grouped payments")
	generateCmd.Flags().Float64Var(&opts.GrossMin, "gross-min", opts.GrossMin, "minimum invoice gross amount")
	generateCmd.Flags().Float64Var(&opts.GrossMax, "gross-max", opts.GrossMax, "maximum invoice gross amount")
	generateCmd.Flags().Float64Var(&opts.MatchedVariation, "matched-variation", opts.MatchedVariation, "amount perturbation of one-to-one settlements (fraction)")
	generateCmd.Flags().Float64Var(&opts.ExpenseVariation, "expense-variation", opts.ExpenseVariation, "amount perturbation of expense settlements (fraction)")

	// Output flags
	generateCmd.Flags().StringVarP(&opts.OutputDir, "output-dir", "o", opts.OutputDir, "output directory")
	generateCmd.Flags().StringSliceVarP(&opts.Formats, "formats", "f", opts.Formats, "output formats: csv, sql, xlsx, sqlite, report")

	// Bind flags to viper
	viper.BindPFlag("seed", generateCmd.Flags().Lookup("seed"))
	viper.BindPFlag("reference-date", generateCmd.Flags().Lookup("reference-date"))
	viper.BindPFlag("clients", generateCmd.Flags().Lookup("clients"))
	viper.BindPFlag("invoices", generateCmd.Flags().Lookup("invoices"))
	viper.BindPFlag("expenses", generateCmd.Flags().Lookup("expenses"))
	viper.BindPFlag("orphans", generateCmd.Flags().Lookup("orphans"))
	viper.BindPFlag("public-ratio", generateCmd.Flags().Lookup("public-ratio"))
	viper.BindPFlag("matched-ratio", generateCmd.Flags().Lookup("matched-ratio"))
	viper.BindPFlag("partial-ratio", generateCmd.Flags().Lookup("partial-ratio"))
	viper.BindPFlag("grouped-ratio", generateCmd.Flags().Lookup("grouped-ratio"))
	viper.BindPFlag("gross-min", generateCmd.Flags().Lookup("gross-min"))
	viper.BindPFlag("gross-max", generateCmd.Flags().Lookup("gross-max"))
	viper.BindPFlag("matched-variation", generateCmd.Flags().Lookup("matched-variation"))
	viper.BindPFlag("expense-variation", generateCmd.Flags().Lookup("expense-variation"))
	viper.BindPFlag("output-dir", generateCmd.Flags().Lookup("output-dir"))
	viper.BindPFlag("formats", generateCmd.Flags().Lookup("formats"))
}

func validateGenerateFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	opts.Seed = viper.GetInt64("seed")
	opts.ReferenceDate = viper.GetString("reference-date")
	opts.Clients = viper.GetInt("clients")
	opts.Invoices = viper.GetInt("invoices")
	opts.Expenses = viper.GetInt("expenses")
	opts.Orphans = viper.GetInt("orphans")
	opts.PublicRatio = viper.GetFloat64("public-ratio")
	opts.MatchedRatio = viper.GetFloat64("matched-ratio")
	opts.PartialRatio = viper.GetFloat64("partial-ratio")
	opts.GroupedRatio = viper.GetFloat64("grouped-ratio")
	opts.GrossMin = viper.GetFloat64("gross-min")
	opts.GrossMax = viper.GetFloat64("gross-max")
	opts.MatchedVariation = viper.GetFloat64("matched-variation")
	opts.ExpenseVariation = viper.GetFloat64("expense-variation")
	opts.OutputDir = viper.GetString("output-dir")
	opts.Formats = viper.GetStringSlice("formats")

	if opts.ReferenceDate != "" {
		if _, err := time.Parse(config.DateLayout, opts.ReferenceDate); err != nil {
			return fmt.Errorf("invalid reference date format. Use YYYY-MM-DD: %w", err)
		}
	}

	if opts.OutputDir == "" {
		return fmt.Errorf("output-dir cannot be empty")
	}
	if len(opts.Formats) == 0 {
		return fmt.Errorf("at least one output format is required")
	}
	for _, format := range opts.Formats {
		if _, err := export.ForFormat(format, opts.OutputDir); err != nil {
			return fmt.Errorf("invalid output format '%s'. Valid formats: csv, sql, xlsx, sqlite, report", format)
		}
	}

	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Starting dataset generation...\n")
		fmt.Fprintf(os.Stderr, "Seed: %d\n", opts.Seed)
		fmt.Fprintf(os.Stderr, "Output dir: %s\n", opts.OutputDir)
	}

	cfg, err := config.BuildPipelineConfig(opts)
	if err != nil {
		return err
	}

	pipe, err := pipeline.NewPipeline(cfg, logger.GetGlobalLogger())
	if err != nil {
		return err
	}

	dataset, err := pipe.Run()
	if err != nil {
		return err
	}

	for _, format := range opts.Formats {
		exporter, err := export.ForFormat(format, opts.OutputDir)
		if err != nil {
			return err
		}
		if err := exporter.Export(dataset); err != nil {
			return err
		}
	}

	stats := dataset.Stats
	fmt.Printf("Generated %d clients, %d invoices, %d expenses, %d statement lines\n",
		stats.Clients, stats.Invoices, stats.Expenses, stats.StatementLines)
	fmt.Printf("Run %s (seed %d) written to %s\n", stats.RunID, stats.Seed, opts.OutputDir)

	return nil
}
