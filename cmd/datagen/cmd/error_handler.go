package cmd

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"accounting-dataset-generator/pkg/errors"
	"accounting-dataset-generator/pkg/logger"

	"github.com/spf13/viper"
)

// CLIErrorHandler provides user-friendly error handling for CLI operations
type CLIErrorHandler struct {
	logger  logger.Logger
	verbose bool
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler() *CLIErrorHandler {
	return &CLIErrorHandler{
		logger:  logger.GetGlobalLogger().WithComponent("cli"),
		verbose: viper.GetBool("verbose"),
	}
}

// HandleError handles errors and provides user-friendly messages,
// returning the process exit code.
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	h.logger.WithError(err).Error("Command failed")

	if generatorErr, ok := errors.AsGeneratorError(err); ok {
		return h.handleGeneratorError(generatorErr)
	}

	return h.handleGenericError(err)
}

// handleGeneratorError handles GeneratorError with detailed context
func (h *CLIErrorHandler) handleGeneratorError(err *errors.GeneratorError) int {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Message)

	if len(err.Context) > 0 {
		fmt.Fprintf(os.Stderr, "\nContext:\n")
		for key, value := range err.Context {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", key, value)
		}
	}

	if err.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "\nSuggestion: %s\n", err.Suggestion)
	}

	fmt.Fprintf(os.Stderr, "\n%s\n", h.getCategoryHelp(err.Category))

	if h.verbose && err.Cause != nil {
		fmt.Fprintf(os.Stderr, "\nUnderlying error: %v\n", err.Cause)
	}

	return err.GetExitCode()
}

// handleGenericError handles non-GeneratorError types
func (h *CLIErrorHandler) handleGenericError(err error) int {
	if h.isPermissionError(err) {
		fmt.Fprintf(os.Stderr, "Error: Permission denied\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Check permissions on the output directory\n")
		return 2
	}

	if h.isDiskFullError(err) {
		fmt.Fprintf(os.Stderr, "Error: Insufficient disk space\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Free up disk space and try again\n")
		return 2
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	if h.verbose {
		fmt.Fprintf(os.Stderr, "\nFor more details, check the logs or run with --verbose flag\n")
	}

	return 1
}

// getCategoryHelp returns category-specific help text
func (h *CLIErrorHandler) getCategoryHelp(category errors.ErrorCategory) string {
	switch category {
	case errors.CategoryConfiguration:
		return `Configuration error help:
• Check your command-line flags and arguments
• Verify configuration file syntax if using --config
• Use 'datagen generate --help' to see all available options
• Try running with default settings first`

	case errors.CategoryGeneration:
		return `Generation error help:
• Check the configured counts, ratios and amount bounds
• Relax the unit-price band if too many invoices are discarded
• Increase the invoice count if the paid population is too small`

	case errors.CategoryValidation:
		return `Validation error help:
• The generated dataset violated one of its invariants
• This indicates a generator bug, not bad input
• Report the seed, reference date and full configuration`

	case errors.CategoryExport:
		return `Export error help:
• Check that the output directory exists and is writable
• Verify available disk space
• Try a different output directory or format`

	default:
		return `For more help:
• Use 'datagen --help' for general help
• Use 'datagen generate --help' for command-specific help
• Report bugs on the project repository`
	}
}

// Error detection helpers

func (h *CLIErrorHandler) isPermissionError(err error) bool {
	return os.IsPermission(err) ||
		strings.Contains(err.Error(), "permission denied") ||
		strings.Contains(err.Error(), "access denied")
}

func (h *CLIErrorHandler) isDiskFullError(err error) bool {
	if err == syscall.ENOSPC {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "no space left") ||
		strings.Contains(errStr, "disk full") ||
		strings.Contains(errStr, "device full")
}
