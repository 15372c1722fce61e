package ingestion

import (
	"bytes"
	"fmt"
	"html"
	"mime"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"github.com/jonathan/job-matcher/internal/fetch"
)

// Format is a supported document type.
type Format string

const (
	FormatText     Format = "txt"
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatPDF      Format = "pdf"
	FormatDOCX     Format = "docx"
	FormatUnknown  Format = ""
)

var mimeFormats = map[string]Format{
	"text/plain":      FormatText,
	"text/markdown":   FormatMarkdown,
	"text/html":       FormatHTML,
	"application/pdf": FormatPDF,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": FormatDOCX,
}

var extFormats = map[string]Format{
	".txt":      FormatText,
	".text":     FormatText,
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
	".html":     FormatHTML,
	".htm":      FormatHTML,
	".pdf":      FormatPDF,
	".docx":     FormatDOCX,
}

// DetectFormat picks the format from a MIME type, falling back to the file
// extension of name. Files without an extension are treated as plain text.
func DetectFormat(name, mimeType string) Format {
	if mimeType != "" {
		if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
			if f, ok := mimeFormats[mt]; ok {
				return f
			}
		}
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return FormatText
	}
	if f, ok := extFormats[ext]; ok {
		return f
	}
	return FormatUnknown
}

// ExtractText returns the plain text of a document.
func ExtractText(format Format, data []byte) (string, error) {
	switch format {
	case FormatText, FormatMarkdown:
		return string(data), nil
	case FormatHTML:
		return fetch.ExtractMainText(string(data), fetch.JobPostingSelectors())
	case FormatPDF:
		return extractPDFText(data)
	case FormatDOCX:
		return extractDocxText(data)
	default:
		return "", &UnsupportedFormatError{Format: string(format)}
	}
}

func extractPDFText(data []byte) (text string, err error) {
	// The PDF reader panics on some malformed font tables.
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
			return "", fmt.Errorf("failed to read pdf page %d: %w", i, err)
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

var (
	docxTag       = regexp.MustCompile(`<[^>]+>`)
	docxParagraph = strings.NewReplacer("</w:p>", "\n", "<w:tab/>", "\t", "<w:br/>", "\n")
)

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer func() { _ = doc.Close() }()

	// GetContent returns the raw document XML.
	content := docxParagraph.Replace(doc.Editable().GetContent())
	text := docxTag.ReplaceAllString(content, "")
	return html.UnescapeString(text), nil
}
