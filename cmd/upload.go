package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"mufawter/internal/api"
	"mufawter/internal/config"
	"mufawter/internal/invoice"
	"mufawter/internal/logger"
	"mufawter/internal/ocr"
	"mufawter/internal/render"
	"mufawter/pkg/models"
)

// PrecheckOutput summarizes the local text detection run before upload.
type PrecheckOutput struct {
	Pages      int      `json:"pages"`
	Characters int      `json:"characters"`
	Confidence float32  `json:"confidence"`
	Languages  []string `json:"languages,omitempty"`
}

// UploadOutput is the result of uploading and analyzing one file.
type UploadOutput struct {
	File             string           `json:"file"`
	ImageURL         string           `json:"image_url,omitempty"`
	ConvertedFromPDF bool             `json:"converted_from_pdf,omitempty"`
	Precheck         *PrecheckOutput  `json:"precheck,omitempty"`
	Analysis         *models.Analysis `json:"analysis,omitempty"`
	PopulatedFields  []string         `json:"populated_fields,omitempty"`
	MissingFields    []string         `json:"missing_fields,omitempty"`
	Invoice          *models.Invoice  `json:"invoice,omitempty"`
	Saved            bool             `json:"saved"`
	ProcessedAt      time.Time        `json:"processed_at"`
}

// uploader runs the upload → analyze → validate → save flow for one file.
type uploader struct {
	client    *api.Client
	checker   ocr.Checker
	validator *invoice.Validator
	log       zerolog.Logger
}

// uploadOptions selects the review flow. confirm, when set, is asked
// before saving.
type uploadOptions struct {
	review    bool
	overrides map[string]string
	confirm   func(models.Analysis) bool
}

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload an invoice photo or PDF for extraction",
	Long: `Upload an invoice image or PDF to the invoice API, run the vision model
on it and save the result.

The extracted fields are validated before anything is saved. With --review
they are shown first, can be corrected with --set, and are saved only after
confirmation.

Images where fewer than 5 of the 10 expected fields (invoice number, date,
vendor, tax number, cashier, branch, phone, subtotal, tax, total) could be
read are rejected as "not an invoice".

With --precheck (or VISION_PRECHECK=true) the file is first checked locally
with Google Cloud Vision; files without readable text are not uploaded.`,
	Example: `  # Upload and save without review
  mufawter upload receipt.jpg

  # Review, fix the vendor name and save
  mufawter upload receipt.jpg --review --set "Vendor=Half Million"

  # Save the full result as JSON
  mufawter upload scan.pdf -o result.json`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)

	uploadCmd.Flags().Bool("review", false, "Show extracted fields and confirm before saving")
	uploadCmd.Flags().StringArray("set", nil, "Correct an extracted field before saving (Field=Value, repeatable; implies --review)")
	uploadCmd.Flags().BoolP("yes", "y", false, "Save reviewed fields without asking")
	uploadCmd.Flags().Bool("precheck", false, "Check the file for readable text with Google Cloud Vision before uploading")
	uploadCmd.Flags().StringP("output", "o", "", "Write the result as JSON to this file")
	uploadCmd.Flags().Bool("json", false, "Print the result as JSON")
	uploadCmd.Flags().IntP("timeout", "t", defaultTimeoutSecs, "Timeout in seconds for the whole upload")
}

func runUpload(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("upload")
	filePath := args[0]

	review, _ := cmd.Flags().GetBool("review")
	sets, _ := cmd.Flags().GetStringArray("set")
	yes, _ := cmd.Flags().GetBool("yes")
	precheck, _ := cmd.Flags().GetBool("precheck")
	outputPath, _ := cmd.Flags().GetString("output")
	asJSON, _ := cmd.Flags().GetBool("json")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	log.Info().
		Str("file", filePath).
		Bool("review", review).
		Int("overrides", len(sets)).
		Msg("Starting invoice upload")

	if _, err := validateInputFile(filePath); err != nil {
		return err
	}

	overrides, err := invoice.ParseOverrides(sets)
	if err != nil {
		return handleCommandError(err, "upload", log)
	}

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	ctx, cancel := createCommandContext(timeoutSecs, log)
	defer cancel()

	u, err := newUploader(ctx, cfg, precheck || cfg.VisionPrecheck, log)
	if err != nil {
		return handleCommandError(err, "upload", log)
	}
	defer u.close()

	opts := uploadOptions{
		review:    review || len(overrides) > 0,
		overrides: overrides,
	}
	if opts.review && !yes {
		opts.confirm = confirmSave(cmd.InOrStdin(), cmd.OutOrStdout())
	}

	result, err := u.process(ctx, filePath, opts)
	if err != nil && result == nil {
		return handleCommandError(err, "upload", log)
	}

	if outputPath != "" || asJSON {
		if outErr := outputJSON(result, outputPath, log); outErr != nil {
			return outErr
		}
	} else {
		printUploadResult(cmd.OutOrStdout(), result, cfg, opts.review)
	}

	if err != nil {
		return handleCommandError(err, "upload", log)
	}
	return nil
}

func newUploader(ctx context.Context, cfg *config.Config, precheck bool, log zerolog.Logger) (*uploader, error) {
	client, err := newAPIClient(cfg, log)
	if err != nil {
		return nil, err
	}

	u := &uploader{
		client:    client,
		validator: invoice.NewValidator(),
		log:       log,
	}
	if precheck {
		checker, err := ocr.NewVisionChecker(ctx)
		if err != nil {
			return nil, err
		}
		u.checker = checker
	}
	return u, nil
}

func (u *uploader) close() {
	if u.checker == nil {
		return
	}
	if err := u.checker.Close(); err != nil {
		u.log.Warn().Err(err).Msg("Failed to close Vision client")
	}
}

// process uploads one file and analyzes it. A partial result is returned
// alongside validation errors so callers can show what was read.
func (u *uploader) process(ctx context.Context, filePath string, opts uploadOptions) (*UploadOutput, error) {
	out := &UploadOutput{
		File:        filepath.Base(filePath),
		ProcessedAt: time.Now(),
	}

	if u.checker != nil {
		result, err := u.precheck(ctx, filePath)
		if err != nil {
			return nil, err
		}
		out.Precheck = result
	}

	uploaded, err := u.upload(ctx, filePath)
	if err != nil {
		return nil, err
	}
	out.ImageURL = uploaded.URL
	out.ConvertedFromPDF = uploaded.ConvertedFromPDF

	// Nothing is stored before validation passes.
	analysis, err := u.client.AnalyzeOnly(ctx, uploaded.URL)
	if err != nil {
		return nil, err
	}
	if len(opts.overrides) > 0 {
		analysis.Output = invoice.ApplyOverrides(analysis.Output, opts.overrides)
	}
	out.Analysis = analysis

	report, err := u.validator.Validate(analysis.Output)
	if report != nil {
		out.PopulatedFields = report.Populated
		out.MissingFields = report.Missing
	}
	if err != nil {
		return out, err
	}

	if opts.confirm != nil && !opts.confirm(*analysis) {
		u.log.Info().Str("file", out.File).Msg("Save declined")
		return out, nil
	}

	req, err := invoice.ToSaveRequest(*analysis, uploaded.URL)
	if err != nil {
		return out, err
	}
	saved, err := u.client.SaveAnalyzed(ctx, req)
	if err != nil {
		return out, err
	}
	out.Invoice = saved
	out.Saved = true

	u.log.Info().
		Str("file", out.File).
		Int64("invoice_id", saved.ID).
		Bool("reviewed", opts.review).
		Msg("Invoice saved")

	return out, nil
}

func (u *uploader) precheck(ctx context.Context, filePath string) (*PrecheckOutput, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	result, err := u.checker.Check(ctx, filepath.Base(filePath), file)
	if err != nil {
		return nil, err
	}
	return &PrecheckOutput{
		Pages:      result.PageCount,
		Characters: len([]rune(result.Text)),
		Confidence: result.Confidence,
		Languages:  result.LanguageCodes,
	}, nil
}

func (u *uploader) upload(ctx context.Context, filePath string) (*models.UploadResult, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return u.client.Upload(ctx, filePath, file)
}

// fieldNames lists the extraction fields in prompt order.
func fieldNames() []string {
	names := make([]string, 0, len(invoice.Fields))
	for _, f := range invoice.Fields {
		if f.Name == "AI_Insight" {
			continue
		}
		names = append(names, f.Name)
	}
	return names
}

// confirmSave shows the reviewed fields and asks before saving. Anything
// but an explicit "n"/"no" saves.
func confirmSave(in io.Reader, out io.Writer) func(models.Analysis) bool {
	reader := bufio.NewReader(in)
	return func(a models.Analysis) bool {
		fmt.Fprintln(out, render.Title("Extracted fields"))
		fmt.Fprintln(out, render.Analysis(a, fieldNames()))
		fmt.Fprint(out, "Save this invoice? [Y/n] ")

		answer, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "n", "no", "لا":
			return false
		default:
			return true
		}
	}
}

func printUploadResult(w io.Writer, result *UploadOutput, cfg *config.Config, reviewed bool) {
	fmt.Fprintln(w, render.Title("Invoice uploaded"))
	fmt.Fprintf(w, "File:  %s\n", result.File)
	fmt.Fprintf(w, "Image: %s\n", result.ImageURL)
	if result.ConvertedFromPDF {
		fmt.Fprintln(w, "       (converted from PDF)")
	}
	if result.Precheck != nil {
		fmt.Fprintf(w, "Precheck: %d page(s), %d characters, confidence %.0f%%\n",
			result.Precheck.Pages, result.Precheck.Characters, result.Precheck.Confidence*100)
	}
	fmt.Fprintf(w, "Fields read: %d of %d\n", len(result.PopulatedFields), len(invoice.ExpectedFields))

	if result.Analysis != nil && !reviewed {
		fmt.Fprintln(w, render.Analysis(*result.Analysis, fieldNames()))
	}

	switch {
	case result.Invoice != nil:
		fmt.Fprintf(w, "Saved as invoice #%d (%s)\n", result.Invoice.ID, cfg.Labels().Money(result.Invoice.Total()))
	case result.Saved:
		fmt.Fprintln(w, "Saved.")
	default:
		fmt.Fprintln(w, render.Warning("Not saved."))
	}
}
