// Package ingest validates uploaded resume files and extracts their text
// content for analysis.
package ingest

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// MaxFileSize is the upload size ceiling.
const MaxFileSize = 5 * 1024 * 1024

// MinExtractedChars is the floor below which an extraction is treated as an
// empty or corrupted document.
const MinExtractedChars = 50

var supportedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".doc":  true,
	".txt":  true,
}

// Validate checks the file name and size before any extraction work.
func Validate(name string, size int64) error {
	ext := strings.ToLower(filepath.Ext(name))
	if !supportedExtensions[ext] {
		return fmt.Errorf("unsupported file type %q: please upload a PDF, Word document, or text file", ext)
	}
	if size <= 0 {
		return fmt.Errorf("file is empty")
	}
	if size > MaxFileSize {
		return fmt.Errorf("file is too large (%.1f MB): maximum size is 5 MB", float64(size)/(1024*1024))
	}
	return nil
}

// ExtractText pulls the plain text out of an uploaded resume by extension.
// The result is cleaned and must clear MinExtractedChars.
func ExtractText(name string, data []byte) (string, error) {
	if err := Validate(name, int64(len(data))); err != nil {
		return "", err
	}

	var text string
	var err error
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt":
		text = string(data)
	case ".pdf":
		text, err = extractPDFText(data)
	case ".docx", ".doc":
		text, err = extractDocxText(data)
	}
	if err != nil {
		return "", err
	}

	text = CleanText(text)
	if len(text) < MinExtractedChars {
		return "", fmt.Errorf("could not read resume content: the file appears empty or corrupted")
	}
	return text, nil
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}
	var textBuilder strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, _ := page.GetPlainText(nil)
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}
	return textBuilder.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return stripDocxTags(doc.Editable().GetContent()), nil
}

// stripDocxTags drops the XML markup GetContent leaves in place.
func stripDocxTags(content string) string {
	var sb strings.Builder
	inTag := false
	for _, r := range content {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			sb.WriteString(" ")
		case !inTag:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// DeriveNameFromFilename guesses a candidate name from an uploaded file name
// by stripping the extension and turning separators into spaces. Used as a
// late fallback when neither analysis nor the stored record carries a name.
func DeriveNameFromFilename(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	base = strings.ReplaceAll(base, "_", " ")
	base = strings.ReplaceAll(base, "-", " ")
	return strings.TrimSpace(multiSpace.ReplaceAllString(base, " "))
}
