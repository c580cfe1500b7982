// Package types provides type definitions for the submissions, enrichments and analyses
// consumed by the strategy-report service.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// EnrichmentStatus is the backend-reported state of the market-research payload.
type EnrichmentStatus string

// EnrichmentStatus values, in pipeline order.
const (
	EnrichmentPending    EnrichmentStatus = "pending"
	EnrichmentProcessing EnrichmentStatus = "processing"
	EnrichmentCompleted  EnrichmentStatus = "completed"
	EnrichmentApproved   EnrichmentStatus = "approved"
)

// EnrichmentStatuses lists every enrichment status in pipeline order.
var EnrichmentStatuses = []EnrichmentStatus{
	EnrichmentPending,
	EnrichmentProcessing,
	EnrichmentCompleted,
	EnrichmentApproved,
}

// ParseEnrichmentStatus maps a backend string onto the enum.
// Unknown or empty values fall back to pending.
func ParseEnrichmentStatus(s string) EnrichmentStatus {
	v := EnrichmentStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range EnrichmentStatuses {
		if v == known {
			return v
		}
	}
	return EnrichmentPending
}

// Valid reports whether s is one of the known enrichment statuses.
func (s EnrichmentStatus) Valid() bool {
	for _, known := range EnrichmentStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// AnalysisStatus is the backend-reported state of the analysis record.
type AnalysisStatus string

// AnalysisStatus values.
const (
	AnalysisPending    AnalysisStatus = "pending"
	AnalysisGenerating AnalysisStatus = "generating"
	AnalysisGenerated  AnalysisStatus = "generated"
	AnalysisCompleted  AnalysisStatus = "completed"
	AnalysisApproved   AnalysisStatus = "approved"
	AnalysisSent       AnalysisStatus = "sent"
	AnalysisFailed     AnalysisStatus = "failed"
)

// AnalysisStatuses lists every analysis status.
var AnalysisStatuses = []AnalysisStatus{
	AnalysisPending,
	AnalysisGenerating,
	AnalysisGenerated,
	AnalysisCompleted,
	AnalysisApproved,
	AnalysisSent,
	AnalysisFailed,
}

// ParseAnalysisStatus maps a backend string onto the enum.
// Unknown or empty values fall back to pending.
func ParseAnalysisStatus(s string) AnalysisStatus {
	v := AnalysisStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AnalysisStatuses {
		if v == known {
			return v
		}
	}
	return AnalysisPending
}

// Valid reports whether s is one of the known analysis statuses.
func (s AnalysisStatus) Valid() bool {
	for _, known := range AnalysisStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// HasContent reports whether the analysis has generated framework content.
func (s AnalysisStatus) HasContent() bool {
	switch s {
	case AnalysisGenerated, AnalysisCompleted, AnalysisApproved, AnalysisSent:
		return true
	default:
		return false
	}
}

// HasContent reports whether the enrichment payload is ready for review.
func (s EnrichmentStatus) HasContent() bool {
	return s == EnrichmentCompleted || s == EnrichmentApproved
}
