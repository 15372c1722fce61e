// Package ingestion turns job postings and CV documents into clean plain text.
package ingestion

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	innerSpace     = regexp.MustCompile(`\s+`)
	extraBlankLine = regexp.MustCompile(`\n\n\n+`)
	invisible      = strings.NewReplacer("\u00a0", " ", "\u200b", "", "\ufeff", "", "\u00ad", "")
)

// CleanText normalizes text content while preserving line structure.
// Text is converted to Unicode NFC so that accented letters compare equal
// whatever the source encoding produced.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = norm.NFC.String(content)
	content = invisible.Replace(content)
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleanedLines := make([]string, 0, len(lines))
	for _, line := range lines {
		cleanedLines = append(cleanedLines, cleanLine(line))
	}

	result := strings.Join(cleanedLines, "\n")
	result = extraBlankLine.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine cleans a single line while keeping headings, bullets and indentation.
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	if strings.TrimSpace(line) == "" {
		return ""
	}

	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}

	indent := len(line) - len(trimmed)
	content := innerSpace.ReplaceAllString(strings.TrimSpace(line), " ")
	if isBulletLine(trimmed) {
		content = "- " + strings.TrimSpace(content[bulletWidth(content):])
	}
	if indent > 0 {
		return strings.Repeat(" ", indent) + content
	}
	return content
}

var bulletPrefixes = []string{"- ", "* ", "• ", "· ", "▪ "}

func isBulletLine(trimmed string) bool {
	for _, p := range bulletPrefixes {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}

func bulletWidth(s string) int {
	for _, p := range bulletPrefixes {
		if strings.HasPrefix(s, p) {
			return len(p)
		}
	}
	return 0
}

// IngestFromFile reads a job posting or CV document, extracts its text,
// cleans it and returns the cleaned text with metadata.
func IngestFromFile(path string) (string, *Metadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("file not found: %w", err)
		}
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}

	return IngestBytes(filepath.Base(path), "", content)
}

// IngestBytes extracts and cleans the text of an in-memory document. The
// format comes from mimeType when known, otherwise from the extension of name.
func IngestBytes(name, mimeType string, data []byte) (string, *Metadata, error) {
	format := DetectFormat(name, mimeType)
	text, err := ExtractText(format, data)
	if err != nil {
		return "", nil, fmt.Errorf("failed to extract text from %s: %w", name, err)
	}

	cleanedText := CleanText(text)
	metadata := NewMetadata(cleanedText, name, format)
	return cleanedText, metadata, nil
}
