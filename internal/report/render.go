package report

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/strategy-report/internal/types"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	placeholderTemplate = "placeholder.html"
	blurredTemplate     = "blurred.html"
	documentTemplate    = "document.html"
)

var (
	loadOnce sync.Once
	pageSet  *template.Template
	loadErr  error
)

// PageContext is everything a page template may read.
type PageContext struct {
	Data        *types.AnalysisData
	CompanyName string
	Date        time.Time
	Blurred     bool
}

// Page is one rendered physical page.
type Page struct {
	Number      int                `json:"number"`
	Title       string             `json:"title"`
	Template    string             `json:"template"`
	Rule        string             `json:"rule"`
	Framework   types.FrameworkKey `json:"framework,omitempty"`
	IsDivider   bool               `json:"is_divider,omitempty"`
	Placeholder bool               `json:"placeholder,omitempty"`
	HTML        template.HTML      `json:"-"`
}

// Report is the assembled document.
type Report struct {
	Pages []Page `json:"pages"`
	HTML  string `json:"-"`
}

type pageData struct {
	Page        PageMapping
	CompanyName string
	Date        string
	Total       int
	Data        *types.AnalysisData
	Contents    []PageMapping
	Frameworks  []types.FrameworkInfo
}

// rule is one step of the page dispatch chain. The first rule whose match
// returns true renders the page with the returned template name.
type rule struct {
	name  string
	match func(m PageMapping, pc PageContext) (string, bool)
}

var rules = []rule{
	{
		name: "divider",
		match: func(m PageMapping, _ PageContext) (string, bool) {
			return m.TemplateFile, m.IsDivider
		},
	},
	{
		name: "blurred",
		match: func(m PageMapping, pc PageContext) (string, bool) {
			return blurredTemplate, pc.Blurred && IsPremium(m.PageNumber)
		},
	},
	{
		name: "static",
		match: func(m PageMapping, _ PageContext) (string, bool) {
			return m.TemplateFile, m.Framework == "" && hasTemplate(m.TemplateFile)
		},
	},
	{
		name: "framework",
		match: func(m PageMapping, pc PageContext) (string, bool) {
			return m.TemplateFile, m.Framework != "" && pc.Data.Has(m.Framework) && hasTemplate(m.TemplateFile)
		},
	},
	{
		name: "placeholder",
		match: func(PageMapping, PageContext) (string, bool) {
			return placeholderTemplate, true
		},
	},
}

// RuleNames lists the dispatch chain in evaluation order.
func RuleNames() []string {
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.name
	}
	return names
}

func loadTemplates() (*template.Template, error) {
	loadOnce.Do(func() {
		pageSet, loadErr = template.New("report").Funcs(template.FuncMap{
			"markdown": markdownHTML,
			"percent": func(w float64) float64 {
				if w <= 1 {
					return w * 100
				}
				return w
			},
		}).ParseFS(templateFS, "templates/*.html")
		if loadErr != nil {
			loadErr = &TemplateError{Template: "templates/*.html", Message: "failed to parse templates", Cause: loadErr}
		}
	})
	return pageSet, loadErr
}

func hasTemplate(name string) bool {
	set, err := loadTemplates()
	if err != nil {
		return false
	}
	return set.Lookup(name) != nil
}

// FormatDate renders a report date as dd/mm/yyyy.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Format("02/01/2006")
}

// RenderPage renders physical page n. Every page in range renders: missing data
// or a missing template degrades to a titled placeholder.
func RenderPage(n int, pc PageContext) (Page, error) {
	m := GetPageMapping(n)
	if m == nil {
		return Page{}, &PageRangeError{Page: n}
	}
	set, err := loadTemplates()
	if err != nil {
		return Page{}, err
	}
	if pc.Data == nil {
		pc.Data = &types.AnalysisData{}
	}

	for _, r := range rules {
		name, ok := r.match(*m, pc)
		if !ok {
			continue
		}
		html, err := execute(set, name, *m, pc)
		if err != nil {
			if r.name == "placeholder" {
				return Page{}, &RenderError{Page: n, Message: "placeholder failed", Cause: err}
			}
			// a broken template must not cost the page
			continue
		}
		return Page{
			Number:      m.PageNumber,
			Title:       m.Title,
			Template:    name,
			Rule:        r.name,
			Framework:   m.Framework,
			IsDivider:   m.IsDivider,
			Placeholder: r.name == "placeholder" || r.name == "blurred",
			HTML:        html,
		}, nil
	}
	return Page{}, &RenderError{Page: n, Message: "no rule matched"}
}

func execute(set *template.Template, name string, m PageMapping, pc PageContext) (template.HTML, error) {
	data := pageData{
		Page:        m,
		CompanyName: pc.CompanyName,
		Date:        FormatDate(pc.Date),
		Total:       TotalPages,
		Data:        pc.Data,
	}
	switch name {
	case "table_of_contents.html":
		data.Contents = PageMappings
	case "methodology.html":
		for _, k := range types.FrameworkKeys {
			data.Frameworks = append(data.Frameworks, k.Info())
		}
	}
	var buf bytes.Buffer
	if err := set.ExecuteTemplate(&buf, name, data); err != nil {
		return "", &TemplateError{Template: name, Message: "failed to execute template", Cause: err}
	}
	return template.HTML(buf.String()), nil
}

// RenderReport renders all pages concurrently into fixed slots and assembles
// the HTML document.
func RenderReport(ctx context.Context, pc PageContext) (*Report, error) {
	if err := ValidateMappings(PageMappings); err != nil {
		return nil, err
	}
	set, err := loadTemplates()
	if err != nil {
		return nil, err
	}

	pages := make([]Page, TotalPages)
	g, ctx := errgroup.WithContext(ctx)
	for i := range pages {
		n := i + 1
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := RenderPage(n, pc)
			if err != nil {
				return err
			}
			pages[n-1] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = set.ExecuteTemplate(&buf, documentTemplate, struct {
		CompanyName string
		Pages       []Page
	}{pc.CompanyName, pages})
	if err != nil {
		return nil, &TemplateError{Template: documentTemplate, Message: "failed to assemble document", Cause: err}
	}

	html := buf.String()
	count, err := CountPages(html)
	if err != nil {
		return nil, err
	}
	if count != TotalPages {
		return nil, &RenderError{Page: count, Message: fmt.Sprintf("document has %d pages, want %d", count, TotalPages)}
	}
	return &Report{Pages: pages, HTML: html}, nil
}

// CountPages counts the page sections in a rendered document.
func CountPages(html string) (int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0, fmt.Errorf("failed to parse report HTML: %w", err)
	}
	return doc.Find("section.page").Length(), nil
}
