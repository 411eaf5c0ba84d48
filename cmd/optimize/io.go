package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"resume-optimizer/internal/extract"
	"resume-optimizer/resume/model"
	"resume-optimizer/resume/render"
)

// readSource returns the text of a resume or job description file. PDF and
// DOCX files go through extraction; anything else is read as plain text.
func readSource(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".docx":
		return extract.Text(ctx, data, "", filepath.Base(path))
	default:
		return strings.TrimSpace(string(data)), nil
	}
}

func readRecord(path string) (model.ResumeRecord, error) {
	var record model.ResumeRecord
	data, err := os.ReadFile(path)
	if err != nil {
		return record, fmt.Errorf("read record: %w", err)
	}
	if err := json.Unmarshal(data, &record); err != nil {
		return record, fmt.Errorf("parse record %s: %w", path, err)
	}
	record.Normalize()
	return record, nil
}

// renderRecord produces the bytes for format: json, html or pdf.
func renderRecord(ctx context.Context, record model.ResumeRecord, format, chromePath string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "json":
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "html":
		return render.HTML(record)
	case "pdf":
		return render.NewPDFRenderer(chromePath).Render(ctx, record)
	default:
		return nil, fmt.Errorf("unknown format %q (want json, html or pdf)", format)
	}
}

// writeOutput writes data to path, or to w when path is empty or "-".
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := w.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
