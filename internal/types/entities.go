package types

import "time"

// Submission is the company intake record. It is created by the intake form and
// never mutated by this service.
type Submission struct {
	ID            string         `json:"id"`
	CompanyName   string         `json:"companyName"`
	CNPJ          string         `json:"cnpj,omitempty"`
	Industry      string         `json:"industry,omitempty"`
	Website       string         `json:"website,omitempty"`
	StrategicGoal string         `json:"strategicGoal,omitempty"`
	ContactEmail  string         `json:"contactEmail,omitempty"`
	Answers       map[string]any `json:"answers,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// Enrichment is the market-research payload attached to a submission.
// The sections are opaque to this service and are only displayed.
type Enrichment struct {
	ID                   string           `json:"id"`
	SubmissionID         string           `json:"submissionId"`
	Status               EnrichmentStatus `json:"status"`
	ProfileOverview      map[string]any   `json:"profileOverview,omitempty"`
	Financials           map[string]any   `json:"financials,omitempty"`
	MarketPosition       map[string]any   `json:"marketPosition,omitempty"`
	CompetitiveLandscape map[string]any   `json:"competitiveLandscape,omitempty"`
	StrategicAssessment  map[string]any   `json:"strategicAssessment,omitempty"`
	DataSources          []any            `json:"dataSources,omitempty"`
	UpdatedAt            time.Time        `json:"updatedAt"`
}

// Analysis is the central record holding every framework fragment plus the
// release flags controlled from the War Room.
type Analysis struct {
	ID              string         `json:"id"`
	SubmissionID    string         `json:"submissionId"`
	Status          AnalysisStatus `json:"status"`
	Version         int            `json:"version"`
	IsVisibleToUser bool           `json:"isVisibleToUser"`
	IsBlurred       bool           `json:"isBlurred"`
	PDFURL          string         `json:"pdfUrl,omitempty"`
	Analysis        AnalysisData   `json:"analysis"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// EnrichmentStatusOf returns the enrichment status, treating a missing record as pending.
func EnrichmentStatusOf(e *Enrichment) EnrichmentStatus {
	if e == nil {
		return EnrichmentPending
	}
	return ParseEnrichmentStatus(string(e.Status))
}

// AnalysisStatusOf returns the analysis status, treating a missing record as pending.
func AnalysisStatusOf(a *Analysis) AnalysisStatus {
	if a == nil {
		return AnalysisPending
	}
	return ParseAnalysisStatus(string(a.Status))
}

// VisibleToUser reports the visibility flag of a possibly missing analysis.
func VisibleToUser(a *Analysis) bool {
	return a != nil && a.IsVisibleToUser
}

// WizardStepSummary records one approved wizard step. The ordered list of
// summaries is the audit trail shown in the wizard context panel.
type WizardStepSummary struct {
	Step          int        `json:"step"`
	FrameworkCode string     `json:"framework_code"`
	FrameworkName string     `json:"framework_name"`
	Status        string     `json:"status"`
	ApprovedAt    *time.Time `json:"approved_at,omitempty"`
}
