package content

import (
	"bytes"
	"errors"
	"io"

	"github.com/ledongthuc/pdf"
)

var (
	errNilSourceReader = errors.New("pdf source reader is nil")
	errEmptyPDFContent = errors.New("pdf content is empty")
	errNilPDFDocument  = errors.New("pdf document is nil")
)

// ExtractTextFromPDFReader extracts text content from a PDF provided via an io.Reader.
// This is intended for use with HTTP response bodies or other in-memory streams.
func ExtractTextFromPDFReader(r io.Reader) (string, error) {
	if r == nil {
		return "", errNilSourceReader
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}

	return ExtractTextFromPDFBytes(buf.Bytes())
}

// ExtractTextFromPDFBytes extracts text content from an in-memory PDF document.
// Publishers that declare transcript URLs frequently point them at PDF files,
// so the declared-fetch strategy routes application/pdf payloads here.
func ExtractTextFromPDFBytes(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errEmptyPDFContent
	}

	byteReader := bytes.NewReader(data)
	doc, err := pdf.NewReader(byteReader, int64(len(data)))
	if err != nil {
		return "", err
	}

	return extractTextFromPDFDocument(doc)
}

// extractTextFromPDFDocument is the shared helper that turns a pdf.Reader into a plain-text string.
func extractTextFromPDFDocument(doc *pdf.Reader) (string, error) {
	if doc == nil {
		return "", errNilPDFDocument
	}

	textReader, err := doc.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, textReader); err != nil {
		return "", err
	}

	return buf.String(), nil
}
