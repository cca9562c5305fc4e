package marking

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/document-context/pkg/config"
	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/image"
)

// Upload is one file of a multipart submission.
type Upload struct {
	Filename string
	Data     []byte
}

// Intake converts uploads into page images in upload order. PNG and JPEG
// files are one page each; PDFs are rendered page by page. The total page
// count is capped at maxPages.
func Intake(ctx context.Context, uploads []Upload, maxPages int) ([][]byte, error) {
	if len(uploads) == 0 {
		return nil, fmt.Errorf("%w: no files", ErrInvalidSubmission)
	}

	var pages [][]byte
	for _, u := range uploads {
		switch contentType := http.DetectContentType(u.Data); contentType {
		case "image/png", "image/jpeg":
			pages = append(pages, u.Data)
		case "application/pdf":
			rendered, err := renderPDF(ctx, u, maxPages-len(pages))
			if err != nil {
				return nil, err
			}
			pages = append(pages, rendered...)
		default:
			return nil, fmt.Errorf("%w: %s has unsupported type %s", ErrInvalidSubmission, u.Filename, contentType)
		}

		if len(pages) > maxPages {
			return nil, fmt.Errorf("%w: %d pages, limit %d", ErrTooManyPages, len(pages), maxPages)
		}
	}

	return pages, nil
}

func renderPDF(ctx context.Context, u Upload, remaining int) ([][]byte, error) {
	count, err := api.PageCount(bytes.NewReader(u.Data), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSubmission, u.Filename, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: %s has no pages", ErrInvalidSubmission, u.Filename)
	}
	if count > remaining {
		return nil, fmt.Errorf("%w: %s has %d pages, %d remaining", ErrTooManyPages, u.Filename, count, max(remaining, 0))
	}

	tempDir, err := os.MkdirTemp("", "examiner-intake-*")
	if err != nil {
		return nil, fmt.Errorf("%w: create temp directory: %w", ErrRenderFailed, err)
	}
	defer os.RemoveAll(tempDir)

	pdfPath := filepath.Join(tempDir, "source.pdf")
	if err := os.WriteFile(pdfPath, u.Data, 0600); err != nil {
		return nil, fmt.Errorf("%w: write temp pdf: %w", ErrRenderFailed, err)
	}

	pdfDoc, err := document.OpenPDF(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf: %w", ErrRenderFailed, err)
	}
	defer pdfDoc.Close()

	renderer, err := image.NewImageMagickRenderer(config.DefaultImageConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: create renderer: %w", ErrRenderFailed, err)
	}

	allPages, err := pdfDoc.ExtractAllPages()
	if err != nil {
		return nil, fmt.Errorf("%w: extract pages: %w", ErrRenderFailed, err)
	}

	rendered := make([][]byte, len(allPages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(len(allPages)))

	for i, page := range allPages {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			data, err := page.ToImage(renderer, nil)
			if err != nil {
				return fmt.Errorf("render page %d: %w", i+1, err)
			}
			rendered[i] = data
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}

	return rendered, nil
}
