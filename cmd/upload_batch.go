package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"mufawter/internal/config"
	"mufawter/internal/invoice"
	"mufawter/internal/logger"
	"mufawter/internal/sheets"
	"mufawter/pkg/models"
)

// WorkerJob represents a file processing job
type WorkerJob struct {
	FilePath string
	Index    int
}

// BatchResult is the outcome for one file of a batch.
type BatchResult struct {
	Filename  string        `json:"filename"`
	Status    string        `json:"status"`
	InvoiceID int64         `json:"invoice_id,omitempty"`
	Output    *UploadOutput `json:"output,omitempty"`
	Error     string        `json:"error,omitempty"`
	Index     int           `json:"-"`
}

// BatchSummary is written with --output.
type BatchSummary struct {
	Folder   string        `json:"folder"`
	Total    int           `json:"total"`
	Success  int           `json:"success"`
	Warnings int           `json:"warnings"`
	Errors   int           `json:"errors"`
	Results  []BatchResult `json:"results"`
}

const (
	statusSuccess = "success"
	statusWarning = "warning"
	statusError   = "error"
)

// invoiceExtensions are the file types the upload endpoint accepts.
var invoiceExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".heic": true,
	".pdf":  true,
}

var uploadBatchCmd = &cobra.Command{
	Use:   "upload-batch [folder]",
	Short: "Upload and analyze every invoice in a folder",
	Long: `Upload all invoice images and PDFs in a folder (recursively) in parallel.
Each file is uploaded, analyzed, validated and saved exactly like
"mufawter upload" without --review.

Files where too few invoice fields could be read are reported as warnings.
The number of parallel uploads is UPLOAD_WORKERS (default 4).

With --sheet the saved invoices are also appended to the Google Sheet in
GOOGLE_SHEET_URL (worksheet GOOGLE_SHEET_WORKSHEET).`,
	Example: `  # Upload a folder of receipts
  mufawter upload-batch ./receipts

  # Check each file with Google Vision first and keep a JSON summary
  mufawter upload-batch ./receipts --precheck -o batch.json

  # Also append the saved invoices to Google Sheets
  mufawter upload-batch ./receipts --sheet`,
	Args: cobra.ExactArgs(1),
	RunE: runUploadBatch,
}

func init() {
	rootCmd.AddCommand(uploadBatchCmd)

	uploadBatchCmd.Flags().Bool("precheck", false, "Check each file for readable text with Google Cloud Vision before uploading")
	uploadBatchCmd.Flags().Bool("sheet", false, "Append saved invoices to the configured Google Sheet")
	uploadBatchCmd.Flags().StringP("output", "o", "", "Write the batch summary as JSON to this file")
	uploadBatchCmd.Flags().BoolP("verbose-results", "V", false, "Log details for every file")
	uploadBatchCmd.Flags().IntP("timeout", "t", 1800, "Timeout in seconds for the whole batch")
}

func runUploadBatch(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("upload-batch")
	folderPath := args[0]

	precheck, _ := cmd.Flags().GetBool("precheck")
	toSheet, _ := cmd.Flags().GetBool("sheet")
	outputPath, _ := cmd.Flags().GetString("output")
	verbose, _ := cmd.Flags().GetBool("verbose-results")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	folderInfo, err := os.Stat(folderPath)
	if err != nil {
		return fmt.Errorf("cannot access folder: %w", err)
	}
	if !folderInfo.IsDir() {
		return fmt.Errorf("path is not a folder: %s", folderPath)
	}

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if toSheet && cfg.GoogleSheetURL == "" {
		return fmt.Errorf("GOOGLE_SHEET_URL environment variable is required for --sheet")
	}

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("                         MUFAWTER BATCH UPLOAD")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Folder: %s\n", folderPath)
	fmt.Println()

	ctx, cancel := createCommandContext(timeoutSecs, log)
	defer cancel()

	files, err := findInvoiceFiles(folderPath)
	if err != nil {
		return fmt.Errorf("failed to find invoice files: %w", err)
	}
	if len(files) == 0 {
		fmt.Println("No invoice images or PDFs found in the folder.")
		return nil
	}

	u, err := newUploader(ctx, cfg, precheck || cfg.VisionPrecheck, log)
	if err != nil {
		return handleCommandError(err, "batch upload", log)
	}
	defer u.close()

	numWorkers := cfg.UploadWorkers
	fmt.Printf("Uploading %d files with %d parallel workers...\n", len(files), numWorkers)
	fmt.Println()

	results := processFilesInParallel(ctx, files, u, numWorkers, log, verbose)

	fmt.Println()

	summary := summarizeBatch(folderPath, results)

	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("                 RESULT")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Saved: %d\n", summary.Success)
	if summary.Warnings > 0 {
		fmt.Printf("Not an invoice: %d\n", summary.Warnings)
	}
	if summary.Errors > 0 {
		fmt.Printf("Failed: %d\n", summary.Errors)
	}
	fmt.Println()

	if toSheet && summary.Success > 0 {
		fmt.Println("Writing saved invoices to Google Sheet...")
		written, err := appendBatchToSheet(ctx, u, cfg, results, log)
		if err != nil {
			return handleCommandError(err, "sheet export", log)
		}
		fmt.Printf("Sheet: %s\n", cfg.GoogleSheetWorksheet)
		fmt.Printf("Rows added: %d\n", written)
		fmt.Printf("URL: %s\n", cfg.GoogleSheetURL)
	}

	if outputPath != "" {
		if err := outputJSON(summary, outputPath, log); err != nil {
			return err
		}
	}

	fmt.Println(strings.Repeat("=", 80))

	log.Info().
		Int("total", summary.Total).
		Int("success", summary.Success).
		Int("warnings", summary.Warnings).
		Int("errors", summary.Errors).
		Msg("Batch upload completed")

	if ctx.Err() != nil {
		return handleCommandError(ctx.Err(), "batch upload", log)
	}
	return nil
}

// findInvoiceFiles finds all invoice images and PDFs in the folder
func findInvoiceFiles(folderPath string) ([]string, error) {
	var files []string

	err := filepath.Walk(folderPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && invoiceExtensions[strings.ToLower(filepath.Ext(info.Name()))] {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

// processSingleFile uploads one file and classifies the outcome
func processSingleFile(ctx context.Context, filePath string, u *uploader, log zerolog.Logger, verbose bool) BatchResult {
	result := BatchResult{Status: statusError}

	if _, err := validateInputFile(filePath); err != nil {
		result.Error = err.Error()
		return result
	}

	out, err := u.process(ctx, filePath, uploadOptions{})
	result.Output = out
	switch {
	case errors.Is(err, invoice.ErrNotAnInvoice):
		result.Status = statusWarning
		result.Error = err.Error()
		return result
	case err != nil:
		result.Error = err.Error()
		return result
	}

	result.Status = statusSuccess
	if out.Invoice != nil {
		result.InvoiceID = out.Invoice.ID
	}

	if verbose {
		log.Info().
			Str("file", out.File).
			Str("image_url", out.ImageURL).
			Int64("invoice_id", result.InvoiceID).
			Int("fields", len(out.PopulatedFields)).
			Msg("File processed successfully")
	}

	return result
}

// processFilesInParallel uploads files using a worker pool
func processFilesInParallel(ctx context.Context, files []string, u *uploader, numWorkers int, log zerolog.Logger, verbose bool) []BatchResult {
	if numWorkers < 1 {
		numWorkers = 1
	}

	jobs := make(chan WorkerJob, len(files))
	results := make([]BatchResult, len(files))

	var processedCount int
	var mu sync.Mutex

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for job := range jobs {
				log.Debug().
					Int("worker", workerID).
					Str("file", job.FilePath).
					Int("index", job.Index+1).
					Msg("Worker processing file")

				result := processSingleFile(ctx, job.FilePath, u, log, verbose)
				result.Index = job.Index
				result.Filename = filepath.Base(job.FilePath)

				results[job.Index] = result

				mu.Lock()
				processedCount++
				fmt.Printf("[%d/%d] %s - %s", processedCount, len(files), result.Filename, getStatusEmoji(result.Status))
				switch {
				case result.Error != "":
					fmt.Printf(" (%s)", result.Error)
				case result.InvoiceID != 0:
					fmt.Printf(" (#%d)", result.InvoiceID)
				}
				fmt.Println()
				mu.Unlock()
			}
		}(w)
	}

	for i, file := range files {
		jobs <- WorkerJob{
			FilePath: file,
			Index:    i,
		}
	}
	close(jobs)

	wg.Wait()

	return results
}

func summarizeBatch(folder string, results []BatchResult) BatchSummary {
	summary := BatchSummary{
		Folder:  folder,
		Total:   len(results),
		Results: results,
	}
	for _, r := range results {
		switch r.Status {
		case statusSuccess:
			summary.Success++
		case statusWarning:
			summary.Warnings++
		case statusError:
			summary.Errors++
		}
	}
	return summary
}

// appendBatchToSheet reloads the invoices saved by this batch and appends
// them to the sheet.
func appendBatchToSheet(ctx context.Context, u *uploader, cfg *config.Config, results []BatchResult, log zerolog.Logger) (int, error) {
	all, err := u.client.ListInvoices(ctx)
	if err != nil {
		return 0, err
	}
	saved := savedInvoices(all, results)
	if len(saved) == 0 {
		log.Warn().Msg("No saved invoices found to write to the sheet")
		return 0, nil
	}

	sheetsService, err := sheets.NewSheetsService(ctx, cfg.GoogleSheetURL)
	if err != nil {
		return 0, fmt.Errorf("failed to create Google Sheets service: %w", err)
	}
	written, err := sheetsService.WriteInvoices(ctx, saved, cfg.GoogleSheetWorksheet, cfg.Labels())
	if err != nil {
		return 0, fmt.Errorf("failed to write to Google Sheet: %w", err)
	}
	return written, nil
}

// savedInvoices picks the invoices with the ids saved by a batch, in batch
// order.
func savedInvoices(all []models.Invoice, results []BatchResult) []models.Invoice {
	byID := make(map[int64]models.Invoice, len(all))
	for _, inv := range all {
		byID[inv.ID] = inv
	}
	var out []models.Invoice
	for _, r := range results {
		if r.Status != statusSuccess || r.InvoiceID == 0 {
			continue
		}
		if inv, ok := byID[r.InvoiceID]; ok {
			out = append(out, inv)
		}
	}
	return out
}

// getStatusEmoji returns an emoji for the processing status
func getStatusEmoji(status string) string {
	switch status {
	case statusSuccess:
		return "✅"
	case statusWarning:
		return "⚠️"
	case statusError:
		return "❌"
	default:
		return "❓"
	}
}
