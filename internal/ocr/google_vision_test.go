package ocr

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnnotator struct {
	images    *visionpb.BatchAnnotateImagesResponse
	files     *visionpb.BatchAnnotateFilesResponse
	err       error
	imageReqs int
	fileReqs  []*visionpb.BatchAnnotateFilesRequest
	closed    bool
}

func (f *fakeAnnotator) BatchAnnotateImages(_ context.Context, _ *visionpb.BatchAnnotateImagesRequest, _ ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error) {
	f.imageReqs++
	return f.images, f.err
}

func (f *fakeAnnotator) BatchAnnotateFiles(_ context.Context, req *visionpb.BatchAnnotateFilesRequest, _ ...gax.CallOption) (*visionpb.BatchAnnotateFilesResponse, error) {
	f.fileReqs = append(f.fileReqs, req)
	return f.files, f.err
}

func (f *fakeAnnotator) Close() error {
	f.closed = true
	return nil
}

func page(text string, confidence float32, langs ...string) *visionpb.AnnotateImageResponse {
	var detected []*visionpb.TextAnnotation_DetectedLanguage
	for _, l := range langs {
		detected = append(detected, &visionpb.TextAnnotation_DetectedLanguage{LanguageCode: l})
	}
	return &visionpb.AnnotateImageResponse{
		FullTextAnnotation: &visionpb.TextAnnotation{
			Text: text,
			Pages: []*visionpb.Page{{
				Confidence: confidence,
				Property:   &visionpb.TextAnnotation_TextProperty{DetectedLanguages: detected},
			}},
		},
	}
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestCheckImage(t *testing.T) {
	fake := &fakeAnnotator{
		images: &visionpb.BatchAnnotateImagesResponse{
			Responses: []*visionpb.AnnotateImageResponse{page("فاتورة ضريبية\nTotal 115.00", 0.9, "en", "ar")},
		},
	}
	checker := newVisionChecker(fake)

	res, err := checker.Check(context.Background(), "receipt.png", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, 1, fake.imageReqs)
	assert.Contains(t, res.Text, "Total 115.00")
	assert.Equal(t, 1, res.PageCount)
	assert.InDelta(t, 0.9, res.Confidence, 0.0001)
	assert.Equal(t, []string{"ar", "en"}, res.LanguageCodes)

	require.NoError(t, checker.Close())
	assert.True(t, fake.closed)
}

func TestCheckPDF(t *testing.T) {
	fake := &fakeAnnotator{
		files: &visionpb.BatchAnnotateFilesResponse{
			Responses: []*visionpb.AnnotateFileResponse{{
				Responses: []*visionpb.AnnotateImageResponse{page("Page one", 0.8), page("Page two", 0.6)},
			}},
		},
	}

	res, err := newVisionChecker(fake).Check(context.Background(), "bill.pdf", strings.NewReader("%PDF-1.7 ..."))
	require.NoError(t, err)
	require.Len(t, fake.fileReqs, 1)
	assert.Equal(t, "application/pdf", fake.fileReqs[0].Requests[0].InputConfig.MimeType)
	assert.Len(t, fake.fileReqs[0].Requests[0].Pages, MaxPagesSync)
	assert.Equal(t, 2, res.PageCount)
	assert.Contains(t, res.Text, "--- Page 2 ---")
	assert.InDelta(t, 0.7, res.Confidence, 0.0001)
}

func TestCheckNoText(t *testing.T) {
	fake := &fakeAnnotator{
		images: &visionpb.BatchAnnotateImagesResponse{
			Responses: []*visionpb.AnnotateImageResponse{{}},
		},
	}

	_, err := newVisionChecker(fake).Check(context.Background(), "blank.png", bytes.NewReader(pngHeader))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoText)

	var ocrErr *OCRError
	require.True(t, errors.As(err, &ocrErr))
	assert.Equal(t, "Check", ocrErr.Op)
}

func TestCheckAPIError(t *testing.T) {
	fake := &fakeAnnotator{err: errors.New("permission denied")}

	_, err := newVisionChecker(fake).Check(context.Background(), "a.png", bytes.NewReader(pngHeader))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPrecheckFailed)
}

func TestCheckUnsupported(t *testing.T) {
	fake := &fakeAnnotator{}

	_, err := newVisionChecker(fake).Check(context.Background(), "notes.txt", strings.NewReader("plain text notes"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Zero(t, fake.imageReqs)
	assert.Empty(t, fake.fileReqs)
}

func TestCheckTooLarge(t *testing.T) {
	big := bytes.Repeat([]byte{0}, MaxFileSizeBytes+1)

	_, err := newVisionChecker(&fakeAnnotator{}).Check(context.Background(), "big.png", bytes.NewReader(big))
	assert.ErrorIs(t, err, ErrFileTooLarge)
}
