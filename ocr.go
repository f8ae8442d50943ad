package bolparser

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/sirupsen/logrus"
)

// OCRClient wraps the Tesseract engine for recognizing scanned pages. It
// requires tesseract to be installed on the system and should be closed when
// no longer needed.
type OCRClient struct {
	client *gosseract.Client
}

// NewOCRClient creates an OCR client for the given tesseract language code.
func NewOCRClient(lang string) (*OCRClient, error) {
	client := gosseract.NewClient()
	if lang != "" {
		if err := client.SetLanguage(lang); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to set OCR language %q: %w", lang, err)
		}
	}
	return &OCRClient{client: client}, nil
}

// Close releases the Tesseract resources.
func (c *OCRClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// RecognizeImage performs OCR on encoded image data (PNG, TIFF, JPEG).
func (c *OCRClient) RecognizeImage(imageData []byte) (string, error) {
	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}
	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// ocrPages recognizes the images embedded in each page. Scanned documents
// carry one full-page image per page, so the recognized text comes back in
// page order.
func (p *Parser) ocrPages(data []byte) ([]page, error) {
	client, err := NewOCRClient(p.ocrLang)
	if err != nil {
		return nil, fmt.Errorf("tesseract is not available: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logrus.Warnf("could not close OCR client: %v", err)
		}
	}()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read and validate PDF: %w", err)
	}

	var pages []page
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		images, err := pdfcpu.ExtractPageImages(ctx, pageNr, false)
		if err != nil {
			logrus.Warnf("could not extract images from page %d: %v", pageNr, err)
			continue
		}

		// Keep a stable order within the page.
		objNrs := make([]int, 0, len(images))
		for objNr := range images {
			objNrs = append(objNrs, objNr)
		}
		sort.Ints(objNrs)

		var sb strings.Builder
		for _, objNr := range objNrs {
			img := images[objNr]
			raw, err := io.ReadAll(img)
			if err != nil {
				logrus.Warnf("could not read image %d on page %d: %v", objNr, pageNr, err)
				continue
			}
			text, err := client.RecognizeImage(raw)
			if err != nil {
				logrus.Warnf("OCR failed for image %d on page %d: %v", objNr, pageNr, err)
				continue
			}
			if text != "" {
				sb.WriteString(text)
				sb.WriteString("\n")
			}
		}
		pages = append(pages, page{text: sb.String()})
	}
	return pages, nil
}
