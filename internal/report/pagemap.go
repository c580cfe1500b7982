// Package report renders the fixed 24-page strategic report from a sparse analysis.
package report

import (
	"fmt"

	"github.com/jonathan/strategy-report/internal/types"
)

// TotalPages is the physical page count of every report.
const TotalPages = 24

// PageMapping ties a physical page to its template and, optionally, the
// framework that feeds it.
type PageMapping struct {
	PageNumber   int                `json:"page_number"`
	TemplateFile string             `json:"template_file"`
	Title        string             `json:"title"`
	Framework    types.FrameworkKey `json:"framework,omitempty"`
	IsDivider    bool               `json:"is_divider,omitempty"`
}

// PageMappings is the page table. It never changes at runtime.
var PageMappings = []PageMapping{
	{PageNumber: 1, TemplateFile: "cover.html", Title: "Capa"},
	{PageNumber: 2, TemplateFile: "executive_summary.html", Title: "Sumário Executivo", Framework: types.FrameworkSynthesis},
	{PageNumber: 3, TemplateFile: "table_of_contents.html", Title: "Índice"},
	{PageNumber: 4, TemplateFile: "divider.html", Title: "Parte 1: Análise Ambiental", IsDivider: true},
	{PageNumber: 5, TemplateFile: "pestel_pes.html", Title: "PESTEL: Político, Econômico e Social", Framework: types.FrameworkPestel},
	{PageNumber: 6, TemplateFile: "pestel_tel.html", Title: "PESTEL: Tecnológico, Ambiental e Legal", Framework: types.FrameworkPestel},
	{PageNumber: 7, TemplateFile: "porter.html", Title: "Cinco Forças de Porter", Framework: types.FrameworkPorter},
	{PageNumber: 8, TemplateFile: "swot.html", Title: "Análise SWOT", Framework: types.FrameworkSwot},
	{PageNumber: 9, TemplateFile: "tam_sam_som.html", Title: "Tamanho de Mercado (TAM/SAM/SOM)", Framework: types.FrameworkTamSamSom},
	{PageNumber: 10, TemplateFile: "divider.html", Title: "Parte 2: Análise Competitiva", IsDivider: true},
	{PageNumber: 11, TemplateFile: "benchmarking.html", Title: "Benchmarking Competitivo", Framework: types.FrameworkBenchmarking},
	{PageNumber: 12, TemplateFile: "blue_ocean.html", Title: "Estratégia do Oceano Azul", Framework: types.FrameworkBlueOcean},
	{PageNumber: 13, TemplateFile: "growth_hacking.html", Title: "Growth Hacking", Framework: types.FrameworkGrowthHacking},
	{PageNumber: 14, TemplateFile: "divider.html", Title: "Parte 3: Estratégia e Cenários", IsDivider: true},
	{PageNumber: 15, TemplateFile: "scenarios.html", Title: "Planejamento de Cenários", Framework: types.FrameworkScenarios},
	{PageNumber: 16, TemplateFile: "okrs.html", Title: "OKRs", Framework: types.FrameworkOKRs},
	{PageNumber: 17, TemplateFile: "bsc.html", Title: "Balanced Scorecard", Framework: types.FrameworkBSC},
	{PageNumber: 18, TemplateFile: "decision_matrix.html", Title: "Matriz de Decisão", Framework: types.FrameworkDecisionMatrix},
	{PageNumber: 19, TemplateFile: "divider.html", Title: "Parte 4: Plano de Ação", IsDivider: true},
	{PageNumber: 20, TemplateFile: "recommendations.html", Title: "Recomendações Estratégicas", Framework: types.FrameworkSynthesis},
	{PageNumber: 21, TemplateFile: "roadmap.html", Title: "Roadmap de Implementação", Framework: types.FrameworkOKRs},
	{PageNumber: 22, TemplateFile: "risks.html", Title: "Riscos e Mitigação", Framework: types.FrameworkScenarios},
	{PageNumber: 23, TemplateFile: "methodology.html", Title: "Metodologia"},
	{PageNumber: 24, TemplateFile: "back_cover.html", Title: "Contracapa"},
}

// GetPageMapping returns the mapping for page n, or nil when n is out of range.
func GetPageMapping(n int) *PageMapping {
	for i := range PageMappings {
		if PageMappings[i].PageNumber == n {
			m := PageMappings[i]
			return &m
		}
	}
	return nil
}

// GetFrameworkPages returns every page fed by key. Unused keys yield an empty slice.
func GetFrameworkPages(key types.FrameworkKey) []int {
	pages := []int{}
	for _, m := range PageMappings {
		if m.Framework != "" && m.Framework == key {
			pages = append(pages, m.PageNumber)
		}
	}
	return pages
}

// Dividers returns the section divider pages in order.
func Dividers() []PageMapping {
	var out []PageMapping
	for _, m := range PageMappings {
		if m.IsDivider {
			out = append(out, m)
		}
	}
	return out
}

// ValidateMappings checks that the table covers 1..TotalPages exactly once, in order.
func ValidateMappings(mappings []PageMapping) error {
	if len(mappings) != TotalPages {
		return &MappingError{Message: fmt.Sprintf("expected %d page mappings, found %d", TotalPages, len(mappings))}
	}
	seen := make(map[int]bool, len(mappings))
	for i, m := range mappings {
		if m.PageNumber < 1 || m.PageNumber > TotalPages {
			return &MappingError{Page: m.PageNumber, Message: "page number out of range"}
		}
		if seen[m.PageNumber] {
			return &MappingError{Page: m.PageNumber, Message: "duplicate page number"}
		}
		seen[m.PageNumber] = true
		if m.PageNumber != i+1 {
			return &MappingError{Page: m.PageNumber, Message: fmt.Sprintf("page listed at position %d", i+1)}
		}
		if m.TemplateFile == "" || m.Title == "" {
			return &MappingError{Page: m.PageNumber, Message: "template and title are required"}
		}
		if m.Framework != "" && !m.Framework.Valid() {
			return &MappingError{Page: m.PageNumber, Message: fmt.Sprintf("unknown framework %q", m.Framework)}
		}
	}
	return nil
}

// IsPremium reports whether page n is hidden when the report is blurred.
func IsPremium(n int) bool {
	return n >= 11 && n <= 22
}
