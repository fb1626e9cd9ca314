// Package pdftext turns raw PDF bytes into the text layer and page count
// the validation engine works on. Two libraries cooperate: pdfcpu reads
// the document structure in relaxed mode and supplies the page count;
// ledongthuc/pdf extracts the plain text page by page.
package pdftext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Document is the extracted view of one PDF.
type Document struct {
	Text  string
	Pages int
}

// Extractor extracts Documents from PDF bytes under size constraints.
type Extractor struct {
	maxFileSize int64
	maxTextSize int
}

// NewExtractor returns an Extractor rejecting inputs over maxFileSize
// bytes. A zero or negative limit disables the size check.
func NewExtractor(maxFileSize int64) *Extractor {
	return &Extractor{
		maxFileSize: maxFileSize,
		maxTextSize: 10 * 1024 * 1024, // 10MB text limit
	}
}

// Extract parses data and returns its text layer and page count. The
// page count comes from pdfcpu's relaxed structural read, so it survives
// documents whose text layer is partially broken; individual pages that
// fail text extraction are skipped.
func (e *Extractor) Extract(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty PDF data")
	}
	if e.maxFileSize > 0 && int64(len(data)) > e.maxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			len(data), e.maxFileSize)
	}

	pages, err := e.pageCount(data)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF structure: %w", err)
	}

	text, err := e.extractText(data)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text content: %w", err)
	}

	return &Document{Text: text, Pages: pages}, nil
}

func (e *Extractor) pageCount(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return 0, err
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return 0, err
	}
	return ctx.PageCount, nil
}

func (e *Extractor) extractText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	totalLength := 0

	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			// Continue with other pages even if one fails
			continue
		}

		if totalLength+len(content) > e.maxTextSize {
			remaining := e.maxTextSize - totalLength
			if remaining > 0 {
				builder.WriteString(content[:remaining])
			}
			break
		}

		builder.WriteString(content)
		builder.WriteString("\n")
		totalLength += len(content) + 1
	}

	return builder.String(), nil
}
