// Package resume turns uploaded resume files into plain text.
package resume

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// MaxSize is the largest upload accepted.
const MaxSize = 5 << 20

var (
	ErrUnsupportedFormat = errors.New("unsupported resume format")
	ErrEmptyDocument     = errors.New("resume contains no text")
	ErrTooLarge          = errors.New("resume file too large")
)

// Format is a supported input format.
type Format string

const (
	FormatText Format = "txt"
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

const (
	mimeText = "text/plain"
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Document is an uploaded file.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// DetectFormat picks the format from the content type, falling back to the
// file extension when the browser sent a generic type.
func (d Document) DetectFormat() (Format, error) {
	ct := strings.ToLower(strings.TrimSpace(d.ContentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch ct {
	case mimeText:
		return FormatText, nil
	case mimePDF:
		return FormatPDF, nil
	case mimeDOCX:
		return FormatDOCX, nil
	}

	switch strings.ToLower(filepath.Ext(d.Filename)) {
	case ".txt":
		return FormatText, nil
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	}
	return "", fmt.Errorf("%w: %q (%s)", ErrUnsupportedFormat, d.Filename, d.ContentType)
}

// Extract returns the document text with surrounding whitespace trimmed.
func Extract(d Document) (string, error) {
	if len(d.Data) > MaxSize {
		return "", fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, len(d.Data), MaxSize)
	}

	format, err := d.DetectFormat()
	if err != nil {
		return "", err
	}

	var text string
	switch format {
	case FormatText:
		text = strings.ToValidUTF8(string(d.Data), "")
	case FormatPDF:
		text, err = extractPDFText(d.Data)
	case FormatDOCX:
		text, err = extractDocxText(d.Data)
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}

func extractPDFText(data []byte) (text string, err error) {
	// The parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to read pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return strings.ToValidUTF8(sb.String(), ""), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return docxPlainText(doc.Editable().GetContent()), nil
}

var (
	xmlTag     = regexp.MustCompile(`<[^>]*>`)
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// docxPlainText converts WordprocessingML into text, one paragraph per line.
func docxPlainText(xml string) string {
	r := strings.NewReplacer(
		"</w:p>", "\n",
		"<w:tab/>", "\t",
		"<w:br/>", "\n",
	)
	text := xmlTag.ReplaceAllString(r.Replace(xml), "")
	text = html.UnescapeString(text)
	return blankLines.ReplaceAllString(text, "\n\n")
}
