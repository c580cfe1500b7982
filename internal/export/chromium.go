// Package export prints rendered reports to PDF with headless Chromium.
package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// DefaultTimeout bounds a single export.
const DefaultTimeout = 60 * time.Second

// ErrEmptySource is returned when neither HTML nor a URL was given.
var ErrEmptySource = errors.New("export source is empty")

// Source is what gets printed: an inline HTML document or a page URL.
// HTML wins when both are set.
type Source struct {
	HTML string
	URL  string
}

// Exporter produces PDF bytes for a source.
type Exporter interface {
	Export(ctx context.Context, src Source) ([]byte, error)
}

// ExportError wraps a failed browser run.
type ExportError struct {
	Target string
	Cause  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("pdf export of %s failed: %v", e.Target, e.Cause)
}

func (e *ExportError) Unwrap() error {
	return e.Cause
}

// ChromiumExporter drives a fresh headless browser per export. The report
// templates declare their own @page size, so CSS page size is preferred.
type ChromiumExporter struct {
	ChromePath string
	Timeout    time.Duration
	// WaitSelector is awaited before printing.
	WaitSelector string
	Verbose      bool
}

// NewChromiumExporter returns an exporter using the first Chromium found on
// the usual paths, or the one chromedp locates itself.
func NewChromiumExporter(timeout time.Duration, verbose bool) *ChromiumExporter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ChromiumExporter{
		ChromePath:   detectChromePath(),
		Timeout:      timeout,
		WaitSelector: "body",
		Verbose:      verbose,
	}
}

// Export prints src to PDF.
func (e *ChromiumExporter) Export(ctx context.Context, src Source) ([]byte, error) {
	target, label, err := navigationTarget(src)
	if err != nil {
		return nil, err
	}
	if e.Verbose {
		log.Printf("[export] printing %s", label)
	}

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
	}
	if e.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(e.ChromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(timeoutCtx, append(chromedp.DefaultExecAllocatorOptions[:], opts...)...)
	defer allocCancel()

	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()

	wait := e.WaitSelector
	if wait == "" {
		wait = "body"
	}

	var pdf []byte
	err = chromedp.Run(taskCtx,
		chromedp.Navigate(target),
		chromedp.WaitReady(wait, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			out, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = out
			return nil
		}),
	)
	if err != nil {
		return nil, &ExportError{Target: label, Cause: err}
	}
	if !IsPDF(pdf) {
		return nil, &ExportError{Target: label, Cause: errors.New("browser returned a non-PDF payload")}
	}
	if e.Verbose {
		log.Printf("[export] %s: %d bytes", label, len(pdf))
	}
	return pdf, nil
}

// navigationTarget turns src into something the browser can navigate to.
func navigationTarget(src Source) (target, label string, err error) {
	if strings.TrimSpace(src.HTML) != "" {
		return DataURL(src.HTML), "inline document", nil
	}
	raw := strings.TrimSpace(src.URL)
	if raw == "" {
		return "", "", ErrEmptySource
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "file") || (u.Scheme != "file" && u.Host == "") {
		return "", "", fmt.Errorf("invalid export url %q", raw)
	}
	return u.String(), u.String(), nil
}

// DataURL encodes an HTML document as a base64 data URL.
func DataURL(htmlDoc string) string {
	return "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(htmlDoc))
}

// IsPDF reports whether b starts with the PDF magic header.
func IsPDF(b []byte) bool {
	return bytes.HasPrefix(b, []byte("%PDF-"))
}

// ChromeAvailable reports whether a browser binary was found on a known path.
func ChromeAvailable() bool {
	return detectChromePath() != ""
}

func detectChromePath() string {
	if p := os.Getenv("CHROME_PATH"); p != "" {
		return p
	}
	candidates := []string{
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/usr/bin/google-chrome",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
