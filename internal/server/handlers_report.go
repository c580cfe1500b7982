package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jonathan/strategy-report/internal/backend"
	"github.com/jonathan/strategy-report/internal/export"
	"github.com/jonathan/strategy-report/internal/report"
	"github.com/jonathan/strategy-report/internal/types"
	"github.com/jonathan/strategy-report/internal/workflow"
)

// reportContext builds the render input for a submission. Admins always see
// the full report; viewers need a released analysis and get the blur rules.
func (s *Server) reportContext(ctx context.Context, r *http.Request, id string) (report.PageContext, error) {
	d, err := s.loadDashboard(ctx, id)
	if err != nil {
		return report.PageContext{}, err
	}
	pc := report.PageContext{
		Data:        &types.AnalysisData{},
		CompanyName: d.Submission.CompanyName,
		Date:        time.Now(),
	}
	if d.Analysis != nil {
		pc.Data = &d.Analysis.Analysis
	}
	if isAdmin(r) {
		return pc, nil
	}
	if d.Analysis == nil || !d.Visibility.AnalysisVisible {
		analysisID := ""
		if d.Analysis != nil {
			analysisID = d.Analysis.ID
		}
		return report.PageContext{}, &ErrNotReleased{AnalysisID: analysisID}
	}
	pc.Blurred = !d.Visibility.PremiumVisible
	return pc, nil
}

func (s *Server) writeHTML(w http.ResponseWriter, html string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

// handleReportHTML renders the 24-page report document.
func (s *Server) handleReportHTML(w http.ResponseWriter, r *http.Request) {
	pc, err := s.reportContext(r.Context(), r, r.PathValue("id"))
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	rep, err := report.RenderReport(r.Context(), pc)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	s.writeHTML(w, rep.HTML)
}

// handleReportPages lists the rendered pages with their rule and placeholder flag.
func (s *Server) handleReportPages(w http.ResponseWriter, r *http.Request) {
	pc, err := s.reportContext(r.Context(), r, r.PathValue("id"))
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	rep, err := report.RenderReport(r.Context(), pc)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	placeholders := 0
	for _, p := range rep.Pages {
		if p.Placeholder {
			placeholders++
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"pages":        rep.Pages,
		"total":        len(rep.Pages),
		"placeholders": placeholders,
		"blurred":      pc.Blurred,
	})
}

// handleReportPDF prints the report through the configured exporter.
func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		s.writeError(w, &ErrUnavailable{Feature: "pdf export"}, nil)
		return
	}
	id := r.PathValue("id")
	pc, err := s.reportContext(r.Context(), r, id)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	rep, err := report.RenderReport(r.Context(), pc)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	pdf, err := s.exporter.Export(r.Context(), export.Source{HTML: rep.HTML})
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "report-"+id+".pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

// handlePageMappings returns the static page table.
func (s *Server) handlePageMappings(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"pages":    report.PageMappings,
		"total":    report.TotalPages,
		"dividers": report.Dividers(),
	})
}

// handleFrameworkPages returns the pages a framework feeds.
func (s *Server) handleFrameworkPages(w http.ResponseWriter, r *http.Request) {
	key, err := pathFrameworkKey(r)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"framework": key,
		"pages":     report.GetFrameworkPages(key),
	})
}

// handlePublicReport serves the shared report for an access code. The link
// only works while the report is released to the client; hiding it again
// turns existing links off.
func (s *Server) handlePublicReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := s.backend.GetAnalysisByAccessCode(ctx, r.PathValue("code"))
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	snap, err := backend.Snapshot(ctx, s.backend, a.SubmissionID)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	vis := workflow.VisibilityFor(snap.Stage(), a.IsBlurred)
	if !vis.AnalysisVisible {
		s.writeError(w, &ErrNotReleased{AnalysisID: a.ID}, nil)
		return
	}
	sub, err := s.backend.GetSubmission(ctx, a.SubmissionID)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	rep, err := report.RenderReport(ctx, report.PageContext{
		Data:        &a.Analysis,
		CompanyName: sub.CompanyName,
		Date:        time.Now(),
		Blurred:     !vis.PremiumVisible,
	})
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	s.writeHTML(w, rep.HTML)
}
