package ocr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	"mufawter/internal/logger"
)

const (
	// MaxFileSizeBytes is the maximum file size for synchronous processing (20MB)
	MaxFileSizeBytes = 20 * 1024 * 1024

	// MaxPagesSync is the maximum number of PDF pages read synchronously
	MaxPagesSync = 5
)

// annotator is the part of the Vision client the checker uses.
type annotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
	BatchAnnotateFiles(ctx context.Context, req *visionpb.BatchAnnotateFilesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateFilesResponse, error)
	Close() error
}

// VisionChecker implements Checker with Google Cloud Vision document text detection.
type VisionChecker struct {
	client annotator
	log    zerolog.Logger
}

// NewVisionChecker creates a checker with credentials from the environment.
func NewVisionChecker(ctx context.Context) (*VisionChecker, error) {
	const op = "NewVisionChecker"

	var client *vision.ImageAnnotatorClient
	var err error

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_CREDENTIALS")
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
	} else {
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
	}

	return newVisionChecker(client), nil
}

func newVisionChecker(client annotator) *VisionChecker {
	return &VisionChecker{
		client: client,
		log:    logger.WithComponent("ocr"),
	}
}

// Check detects text in the file. PDFs are sent as files, everything else as
// an image.
func (v *VisionChecker) Check(ctx context.Context, filename string, r io.Reader) (*Result, error) {
	const op = "Check"
	start := time.Now()

	data, err := io.ReadAll(io.LimitReader(r, MaxFileSizeBytes+1))
	if err != nil {
		return nil, WrapOCRError(op, err, "failed to read file")
	}
	if len(data) > MaxFileSizeBytes {
		return nil, WrapOCRError(op, ErrFileTooLarge, fmt.Sprintf("file size: %d bytes", len(data)))
	}

	var pages []*visionpb.AnnotateImageResponse
	switch kind := fileKind(data); kind {
	case "pdf":
		pages, err = v.annotatePDF(ctx, data)
	case "image":
		pages, err = v.annotateImage(ctx, data)
	default:
		return nil, WrapOCRError(op, ErrUnsupportedFormat, filename)
	}
	if err != nil {
		return nil, WrapOCRError(op, err, filename)
	}

	result, err := collectText(pages)
	if err != nil {
		return nil, WrapOCRError(op, err, filename)
	}
	result.Duration = time.Since(start)

	v.log.Info().
		Str("file", filename).
		Int("pages", result.PageCount).
		Int("chars", len(result.Text)).
		Float32("confidence", result.Confidence).
		Strs("languages", result.LanguageCodes).
		Dur("duration", result.Duration).
		Msg("Text precheck passed")

	return result, nil
}

func (v *VisionChecker) annotateImage(ctx context.Context, data []byte) ([]*visionpb.AnnotateImageResponse, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: data},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: Vision API call failed: %w", ErrPrecheckFailed, err)
	}
	if len(resp.GetResponses()) == 0 {
		return nil, fmt.Errorf("%w: no response from Vision API", ErrPrecheckFailed)
	}
	return resp.GetResponses(), nil
}

func (v *VisionChecker) annotatePDF(ctx context.Context, data []byte) ([]*visionpb.AnnotateImageResponse, error) {
	req := &visionpb.BatchAnnotateFilesRequest{
		Requests: []*visionpb.AnnotateFileRequest{
			{
				InputConfig: &visionpb.InputConfig{
					Content:  data,
					MimeType: "application/pdf",
				},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
				Pages: firstPages(MaxPagesSync),
			},
		},
	}

	resp, err := v.client.BatchAnnotateFiles(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: Vision API call failed: %w", ErrPrecheckFailed, err)
	}
	if len(resp.GetResponses()) == 0 {
		return nil, fmt.Errorf("%w: no response from Vision API", ErrPrecheckFailed)
	}

	fileResp := resp.GetResponses()[0]
	if fileResp.GetError() != nil {
		return nil, fmt.Errorf("%w: Vision API error: %s", ErrPrecheckFailed, fileResp.GetError().GetMessage())
	}
	return fileResp.GetResponses(), nil
}

// collectText joins the page texts, averages page confidence and gathers
// detected languages.
func collectText(pages []*visionpb.AnnotateImageResponse) (*Result, error) {
	var text strings.Builder
	var confidenceSum float32
	var confidenceCount int
	languages := make(map[string]bool)

	for idx, page := range pages {
		if page.GetError() != nil {
			return nil, fmt.Errorf("%w: page %d: %s", ErrPrecheckFailed, idx+1, page.GetError().GetMessage())
		}

		annotation := page.GetFullTextAnnotation()
		if annotation == nil {
			continue
		}
		if idx > 0 && text.Len() > 0 {
			fmt.Fprintf(&text, "\n\n--- Page %d ---\n\n", idx+1)
		}
		text.WriteString(annotation.GetText())

		for _, p := range annotation.GetPages() {
			if p.GetConfidence() > 0 {
				confidenceSum += p.GetConfidence()
				confidenceCount++
			}
			for _, lang := range p.GetProperty().GetDetectedLanguages() {
				if lang.GetLanguageCode() != "" {
					languages[lang.GetLanguageCode()] = true
				}
			}
		}
	}

	if strings.TrimSpace(text.String()) == "" {
		return nil, ErrNoText
	}

	result := &Result{
		Text:      text.String(),
		PageCount: len(pages),
	}
	if confidenceCount > 0 {
		result.Confidence = confidenceSum / float32(confidenceCount)
	}
	for lang := range languages {
		result.LanguageCodes = append(result.LanguageCodes, lang)
	}
	slices.Sort(result.LanguageCodes)
	return result, nil
}

// fileKind sniffs "pdf", "image" or "" from the first bytes.
func fileKind(data []byte) string {
	if bytes.HasPrefix(data, []byte("%PDF")) {
		return "pdf"
	}
	if strings.HasPrefix(http.DetectContentType(data), "image/") {
		return "image"
	}
	return ""
}

func firstPages(n int) []int32 {
	pages := make([]int32, n)
	for i := range pages {
		pages[i] = int32(i + 1)
	}
	return pages
}

// Close closes the underlying Vision client.
func (v *VisionChecker) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}
