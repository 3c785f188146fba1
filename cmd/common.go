package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"mufawter/internal/analytics"
	"mufawter/internal/api"
	"mufawter/internal/config"
	"mufawter/internal/invoice"
	"mufawter/internal/ocr"
	"mufawter/internal/pdfexport"
	"mufawter/pkg/models"
)

// defaultTimeoutSecs bounds a whole command. Each API call is additionally
// bounded by HTTP_TIMEOUT_SECONDS.
const defaultTimeoutSecs = 300

// loadConfig reads the environment and explains what is missing.
func loadConfig(log zerolog.Logger) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Configuration invalid")
		return nil, fmt.Errorf("%w\n\nSet API_BASE to the invoice API root, e.g. in .env:\n"+
			"  API_BASE=http://localhost:8000", err)
	}
	return cfg, nil
}

// newAPIClient creates the invoice API client from cfg.
func newAPIClient(cfg *config.Config, log zerolog.Logger) (*api.Client, error) {
	client, err := api.NewClient(cfg.APIBase, api.WithTimeout(cfg.HTTPTimeout()))
	if err != nil {
		log.Error().Err(err).Str("api_base", cfg.APIBase).Msg("Failed to create API client")
		return nil, err
	}
	log.Debug().
		Str("api_base", client.BaseURL()).
		Dur("timeout", cfg.HTTPTimeout()).
		Msg("API client created")
	return client, nil
}

// createCommandContext creates a context with timeout and signal handling
func createCommandContext(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	if timeoutSecs <= 0 {
		timeoutSecs = defaultTimeoutSecs
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// handleCommandError provides user-friendly error messages for failures of
// the invoice API and the local helpers.
func handleCommandError(err error, action string, log zerolog.Logger) error {
	log.Error().Err(err).Str("action", action).Msg("Command failed")

	var apiErr *api.APIError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s timed out. Try increasing --timeout or HTTP_TIMEOUT_SECONDS", action)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%s was canceled", action)
	case errors.Is(err, invoice.ErrNotAnInvoice):
		return fmt.Errorf("the image does not look like an invoice. Please retake the photo with the whole receipt in frame: %w", err)
	case errors.Is(err, invoice.ErrInvalidOverride):
		return fmt.Errorf("invalid --set value: %w", err)
	case errors.Is(err, ocr.ErrNoText):
		return fmt.Errorf("no readable text was found in the file. Please retake the photo in better light")
	case errors.Is(err, ocr.ErrMissingCredentials):
		return fmt.Errorf("Google Vision precheck needs credentials. Set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS, or disable --precheck")
	case errors.Is(err, ocr.ErrFileTooLarge), errors.Is(err, ocr.ErrUnsupportedFormat):
		return fmt.Errorf("the file cannot be checked: %w", err)
	case errors.Is(err, pdfexport.ErrNoImage):
		return fmt.Errorf("this invoice has no stored image, so there is nothing to export")
	case errors.Is(err, pdfexport.ErrImageTooLarge):
		return fmt.Errorf("the invoice image is too large to export: %w", err)
	case errors.Is(err, pdfexport.ErrFetchFailed), errors.Is(err, pdfexport.ErrDecodeFailed):
		return fmt.Errorf("could not download the invoice image: %w", err)
	case errors.Is(err, api.ErrAnalysisFailed):
		return fmt.Errorf("the invoice could not be analyzed. Please try another photo: %w", err)
	case errors.Is(err, api.ErrStatsUnavailable):
		return fmt.Errorf("dashboard statistics are unavailable right now: %w", err)
	case errors.Is(err, api.ErrRequestFailed):
		return fmt.Errorf("could not reach the invoice API. Check API_BASE and that the server is running: %w", err)
	case errors.As(err, &apiErr) && apiErr.StatusCode >= 500:
		return fmt.Errorf("the invoice API reported a server error (%d): %w", apiErr.StatusCode, err)
	case errors.Is(err, api.ErrUnexpectedStatus):
		return fmt.Errorf("the invoice API rejected the request: %w", err)
	case errors.Is(err, api.ErrDecodeResponse):
		return fmt.Errorf("the invoice API returned an unexpected response: %w", err)
	default:
		return fmt.Errorf("%s failed: %w", action, err)
	}
}

// outputJSON formats v as indented JSON to outputPath, or stdout when empty.
func outputJSON(v any, outputPath string, log zerolog.Logger) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal output to JSON")
		return fmt.Errorf("failed to create JSON output: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0o644); err != nil {
			log.Error().
				Err(err).
				Str("output_file", outputPath).
				Msg("Failed to write output file")
			return fmt.Errorf("failed to write output file: %w", err)
		}

		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(jsonData)).
			Msg("Output written to file")
		return nil
	}

	if _, err := os.Stdout.Write(jsonData); err != nil {
		log.Error().Err(err).Msg("Failed to write to stdout")
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Println()
	return nil
}

// validateInputFile checks that path is a readable regular file within the
// upload limit.
func validateInputFile(path string) (os.FileInfo, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file does not exist: %s", path)
		}
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	if fileInfo.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if fileInfo.Size() == 0 {
		return nil, fmt.Errorf("file is empty: %s", path)
	}
	if fileInfo.Size() > api.MaxUploadSizeBytes {
		return nil, fmt.Errorf("file is too large (%d bytes, maximum %d)", fileInfo.Size(), api.MaxUploadSizeBytes)
	}
	return fileInfo, nil
}

// addFilterFlags registers the invoice filter flags shared by list,
// dashboard and export.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("category", analytics.All, "Category (invoice type or Arabic category label)")
	cmd.Flags().String("month", analytics.All, "Calendar month, 0 (January) to 11 (December)")
	cmd.Flags().String("payment", analytics.All, "Payment method substring, case-insensitive")
	cmd.Flags().String("search", "", "Free-text search over vendor, invoice number and category")
}

// readCriteria builds the filter criteria from the flags of addFilterFlags.
func readCriteria(cmd *cobra.Command) (analytics.Criteria, error) {
	category, _ := cmd.Flags().GetString("category")
	month, _ := cmd.Flags().GetString("month")
	payment, _ := cmd.Flags().GetString("payment")
	search, _ := cmd.Flags().GetString("search")
	return analytics.ParseCriteria(category, month, payment, search)
}

// fetchInvoices lists all invoices and applies the criteria locally.
func fetchInvoices(ctx context.Context, client *api.Client, criteria analytics.Criteria, log zerolog.Logger) ([]models.Invoice, []models.Invoice, error) {
	all, err := client.ListInvoices(ctx)
	if err != nil {
		return nil, nil, err
	}
	filtered := analytics.Filter(all, criteria)

	log.Debug().
		Int("fetched", len(all)).
		Int("matching", len(filtered)).
		Bool("filtered", !criteria.IsZero()).
		Msg("Invoices loaded")

	return all, filtered, nil
}
