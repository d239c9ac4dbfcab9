// Package extract converts uploaded document files into plain text.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/mrcgomez/safetyagent/internal/domain"
)

// supportedExtensions lists the file types the extractor accepts, lowercase
// with leading dot.
var supportedExtensions = map[string]bool{
	".pdf":  true,
	".txt":  true,
	".md":   true,
	".docx": true,
	".doc":  true,
}

// IsSupported reports whether a filename's extension can be extracted.
func IsSupported(filename string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Extract reads the file at path and returns its plain text content.
//
// An unsupported extension is the caller's mistake and returns
// ErrUnsupportedFileType. Failures inside a supported format are deliberately
// lenient: the returned text is a bracketed note describing the failure, so a
// single corrupt file degrades to a searchable placeholder instead of
// blocking ingestion.
func Extract(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".pdf":
		return extractPDF(path), nil
	case ".txt", ".md":
		return extractTextFile(path), nil
	case ".docx", ".doc":
		return extractWord(path), nil
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, ext)
	}
}

func extractPDF(path string) string {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return fmt.Sprintf("[Error extracting PDF content: %v]", err)
	}
	defer f.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return fmt.Sprintf("[Error extracting PDF content: %v]", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return fmt.Sprintf("[Error extracting PDF content: %v]", err)
	}
	return buf.String()
}

func extractTextFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("[Error reading text file: %v]", err)
	}
	return string(data)
}

// extractWord reads a Word document. Modern .docx files are ZIP archives
// containing word/document.xml; legacy binary .doc files cannot be opened as
// ZIP and degrade to a placeholder.
func extractWord(path string) string {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Sprintf("[Error extracting Word content: %v]", err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return fmt.Sprintf("[Error extracting Word content: %v]", err)
		}

		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Sprintf("[Error extracting Word content: %v]", err)
		}

		return parseDocumentXML(content)
	}

	return fmt.Sprintf("[Error extracting Word content: %s has no word/document.xml]", filepath.Base(path))
}

// documentXML mirrors the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

func parseDocumentXML(content []byte) string {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return fmt.Sprintf("[Error extracting Word content: %v]", err)
	}

	var result strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			result.WriteString("\n")
		}
		for _, r := range para.Runs {
			for _, text := range r.Text {
				result.WriteString(text.Content)
			}
		}
	}
	return strings.TrimSpace(result.String())
}
