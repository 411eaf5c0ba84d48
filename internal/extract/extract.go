// Package extract turns uploaded resume documents into plain text.
// Libraries used: github.com/ledongthuc/pdf (PDF) and github.com/nguyenthenguyen/docx (DOCX).
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var (
	// ErrEmptyDocument means no bytes were uploaded.
	ErrEmptyDocument = errors.New("document is empty")
	// ErrEmptyText means the document parsed but held no extractable text.
	ErrEmptyText = errors.New("no text could be extracted from the document")
	// ErrUnsupportedType means the document is neither PDF nor DOCX.
	ErrUnsupportedType = errors.New("unsupported document type")
)

// Error wraps every extraction failure so callers can map it to a single kind.
type Error struct {
	MimeType string
	Err      error
}

func (e *Error) Error() string {
	if e.MimeType == "" {
		return "extract: " + e.Err.Error()
	}
	return fmt.Sprintf("extract %s: %v", e.MimeType, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Text extracts normalized plain text from an in-memory document.
// Empty output is reported as ErrEmptyText.
func Text(ctx context.Context, data []byte, mimeType string, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &Error{Err: err}
	}
	if len(data) == 0 {
		return "", &Error{Err: ErrEmptyDocument}
	}

	normalized := DetectMimeType(mimeType, fileName, data)
	var (
		text string
		err  error
	)
	switch normalized {
	case MimePDF:
		text, err = extractPDF(data)
	case MimeDOCX:
		text, err = extractDOCX(data)
	default:
		return "", &Error{MimeType: normalized, Err: fmt.Errorf("%w: %s", ErrUnsupportedType, normalized)}
	}
	if err != nil {
		return "", &Error{MimeType: normalized, Err: err}
	}

	text = normalizeText(text)
	if text == "" {
		return "", &Error{MimeType: normalized, Err: ErrEmptyText}
	}
	return text, nil
}

// DetectMimeType resolves the document type from the declared type, the
// file extension and the content itself, in that order of trust.
func DetectMimeType(mimeType string, fileName string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	switch clean {
	case MimePDF, MimeDOCX:
		return clean
	case "", "application/octet-stream", "binary/octet-stream", "application/zip":
	default:
		return clean
	}

	if bytes.HasPrefix(data, []byte("%PDF")) {
		return MimePDF
	}
	if mapped := mapOOXMLFromZip(data); mapped != "" {
		return mapped
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDOCX
	}
	if clean == "" {
		return strings.Split(http.DetectContentType(data), ";")[0]
	}
	return clean
}

func extractPDF(data []byte) (text string, err error) {
	// The PDF parser panics on some malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf parse panic: %v", rec)
		}
	}()

	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err == nil {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, plain); err == nil && strings.TrimSpace(buf.String()) != "" {
			return buf.String(), nil
		}
	}
	return extractPDFPages(pdfReader)
}

// extractPDFPages reads page by page, skipping pages that fail to decode.
func extractPDFPages(r *pdf.Reader) (string, error) {
	var b strings.Builder
	var firstErr error
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	if b.Len() == 0 && firstErr != nil {
		return "", firstErr
	}
	return b.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer doc.Close()
	return stripDocxXML(doc.Editable().GetContent()), nil
}

func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.StartElement:
			if t.Name.Local == "tab" {
				buf.WriteString("\t")
			}
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if last := buf.Len(); last > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

var (
	trailingSpace = regexp.MustCompile(`[ \t]+\n`)
	blankRuns     = regexp.MustCompile(`\n{3,}`)
)

func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\x00", "")
	text = trailingSpace.ReplaceAllString(text, "\n")
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func mapOOXMLFromZip(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	readerAt := bytes.NewReader(data)
	zr, err := zip.NewReader(readerAt, int64(len(data)))
	if err != nil {
		return ""
	}
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		switch name {
		case "word/document.xml":
			return MimeDOCX
		case "xl/workbook.xml":
			return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		case "ppt/presentation.xml":
			return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
		}
	}
	return ""
}
