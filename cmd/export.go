package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"mufawter/internal/logger"
	"mufawter/internal/report"
	"mufawter/internal/sheets"
	"mufawter/pkg/models"
)

const (
	formatXLSX  = "xlsx"
	formatSheet = "sheet"

	// stdoutPath streams the workbook to standard output.
	stdoutPath = "-"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export invoices to Excel or Google Sheets",
	Long: `Export the invoices matching the filters.

--format xlsx writes a workbook with the invoices, the summary, the totals by
category, month, payment method and weekday, and the smart insights.
Use -o - to stream the workbook to standard output.

--format sheet appends the invoices to the Google Sheet in GOOGLE_SHEET_URL
(worksheet GOOGLE_SHEET_WORKSHEET, created with a header row if missing).
Invoices already in the sheet, by ID, are skipped. The service account in
GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS needs edit access.`,
	Example: `  mufawter export --format xlsx -o invoices.xlsx
  mufawter export --format xlsx --month 2 -o march.xlsx
  mufawter export --category مقهى -o - > cafes.xlsx
  mufawter export --format sheet --payment cash`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	addFilterFlags(exportCmd)
	exportCmd.Flags().StringP("format", "f", formatXLSX, "Export format: xlsx or sheet")
	exportCmd.Flags().StringP("output", "o", "invoices.xlsx", "Workbook path for --format xlsx, or - for standard output")
	exportCmd.Flags().String("worksheet", "", "Worksheet name for --format sheet (default GOOGLE_SHEET_WORKSHEET)")
	exportCmd.Flags().IntP("timeout", "t", defaultTimeoutSecs, "Timeout in seconds")
}

func runExport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("export")

	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	worksheet, _ := cmd.Flags().GetString("worksheet")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	format = strings.ToLower(strings.TrimSpace(format))
	if format != formatXLSX && format != formatSheet {
		return fmt.Errorf("invalid format %q: expected %q or %q", format, formatXLSX, formatSheet)
	}

	criteria, err := readCriteria(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if format == formatSheet && cfg.GoogleSheetURL == "" {
		return fmt.Errorf("GOOGLE_SHEET_URL environment variable is required for --format sheet")
	}
	if worksheet == "" {
		worksheet = cfg.GoogleSheetWorksheet
	}

	client, err := newAPIClient(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := createCommandContext(timeoutSecs, log)
	defer cancel()

	_, invoices, err := fetchInvoices(ctx, client, criteria, log)
	if err != nil {
		return handleCommandError(err, "loading invoices", log)
	}

	labels := cfg.Labels()
	out := cmd.OutOrStdout()

	switch format {
	case formatXLSX:
		if err := writeWorkbook(out, report.NewBuilder(labels), outputPath, invoices, time.Now()); err != nil {
			log.Error().Err(err).Str("output_file", outputPath).Msg("Failed to write workbook")
			return fmt.Errorf("failed to write workbook: %w", err)
		}
		if outputPath != stdoutPath {
			fmt.Fprintf(out, "✅ %s written to %s\n", labels.Invoices(len(invoices)), outputPath)
		}

	case formatSheet:
		sheetsService, err := sheets.NewSheetsService(ctx, cfg.GoogleSheetURL)
		if err != nil {
			return handleCommandError(fmt.Errorf("failed to create Google Sheets service: %w", err), "sheet export", log)
		}
		written, err := sheetsService.WriteInvoices(ctx, invoices, worksheet, labels)
		if err != nil {
			return handleCommandError(fmt.Errorf("failed to write to Google Sheet: %w", err), "sheet export", log)
		}
		fmt.Fprintf(out, "✅ Sheet %q: %d rows added, %d already present\n", worksheet, written, len(invoices)-written)
		fmt.Fprintf(out, "URL: %s\n", cfg.GoogleSheetURL)
	}

	log.Info().
		Str("format", format).
		Int("invoices", len(invoices)).
		Msg("Export completed")

	return nil
}

// writeWorkbook saves the workbook at path, or writes it to out when path is "-".
func writeWorkbook(out io.Writer, builder *report.Builder, path string, invoices []models.Invoice, now time.Time) error {
	if path == stdoutPath {
		return builder.Write(out, invoices, now)
	}
	return builder.Save(path, invoices, now)
}
