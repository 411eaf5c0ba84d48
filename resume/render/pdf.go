package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"resume-optimizer/resume/model"
)

// A4 in inches.
const (
	a4Width  = 8.27
	a4Height = 11.69
)

// PDFRenderer prints the HTML rendering through headless Chrome.
type PDFRenderer struct {
	ChromePath string
	Timeout    time.Duration
}

// NewPDFRenderer returns a renderer using chromePath, or the Chrome found on
// PATH when it is empty.
func NewPDFRenderer(chromePath string) *PDFRenderer {
	return &PDFRenderer{ChromePath: chromePath, Timeout: 60 * time.Second}
}

// Render returns record as an A4 PDF with backgrounds.
func (r *PDFRenderer) Render(ctx context.Context, record model.ResumeRecord) ([]byte, error) {
	html, err := HTML(record)
	if err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return r.PrintHTML(ctx, html)
}

// PrintHTML prints an HTML document to PDF.
func (r *PDFRenderer) PrintHTML(ctx context.Context, html []byte) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if r.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.ChromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	runCtx, cancelRun := context.WithTimeout(browserCtx, timeout)
	defer cancelRun()

	dir, err := os.MkdirTemp("", "resume-render-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)
	htmlPath := filepath.Join(dir, "index.html")
	if err := os.WriteFile(htmlPath, html, 0o600); err != nil {
		return nil, err
	}

	var pdf []byte
	err = chromedp.Run(runCtx,
		chromedp.Navigate("file://"+htmlPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(a4Width).
				WithPaperHeight(a4Height).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	return pdf, nil
}
