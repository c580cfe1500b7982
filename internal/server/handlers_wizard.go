package server

import (
	"net/http"

	"github.com/jonathan/strategy-report/internal/types"
	"github.com/jonathan/strategy-report/internal/wizard"
)

func (s *Server) requireWizard(w http.ResponseWriter) bool {
	if s.wizard == nil {
		s.writeError(w, &ErrUnavailable{Feature: "wizard"}, nil)
		return false
	}
	return true
}

func (s *Server) wizardResult(w http.ResponseWriter, state wizard.State, err error) {
	if err != nil {
		var details any
		if state.AnalysisID != "" {
			details = state
		}
		s.writeError(w, err, details)
		return
	}
	s.jsonResponse(w, http.StatusOK, state)
}

// handleWizardState returns the live session state.
func (s *Server) handleWizardState(w http.ResponseWriter, r *http.Request) {
	if !s.requireWizard(w) {
		return
	}
	sess, err := s.wizard.Session(r.PathValue("analysis_id"))
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	s.jsonResponse(w, http.StatusOK, sess.State())
}

// handleWizardStart opens or resumes the wizard for an analysis.
func (s *Server) handleWizardStart(w http.ResponseWriter, r *http.Request) {
	if !s.requireWizard(w) {
		return
	}
	id := r.PathValue("analysis_id")
	var req types.WizardStartRequest
	if err := decodeBody(r, &req, true); err != nil {
		s.writeError(w, err, nil)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, err, nil)
		return
	}
	if _, err := s.backend.GetAnalysis(r.Context(), id); err != nil {
		s.writeError(w, err, nil)
		return
	}
	state, err := s.wizard.Start(r.Context(), id)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	if req.HumanContext != "" || len(req.HumanAnswers) > 0 {
		state, err = s.wizard.SetContext(id, req.HumanContext, req.HumanAnswers)
	}
	s.wizardResult(w, state, err)
}

// handleWizardGenerate generates the current step.
func (s *Server) handleWizardGenerate(w http.ResponseWriter, r *http.Request) {
	if !s.requireWizard(w) {
		return
	}
	var req types.GenerateRequest
	if err := decodeBody(r, &req, true); err != nil {
		s.writeError(w, err, nil)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, err, nil)
		return
	}
	state, err := s.wizard.Generate(r.Context(), r.PathValue("analysis_id"), req.HumanContext, req.HumanAnswers)
	s.wizardResult(w, state, err)
}

// handleWizardRefine regenerates the current step with extra context.
func (s *Server) handleWizardRefine(w http.ResponseWriter, r *http.Request) {
	if !s.requireWizard(w) {
		return
	}
	var req types.RefineRequest
	if err := decodeBody(r, &req, false); err != nil {
		s.writeError(w, err, nil)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, err, nil)
		return
	}
	state, err := s.wizard.Refine(r.Context(), r.PathValue("analysis_id"), req.Context)
	s.wizardResult(w, state, err)
}

// handleWizardRetry repeats the last failed call.
func (s *Server) handleWizardRetry(w http.ResponseWriter, r *http.Request) {
	if !s.requireWizard(w) {
		return
	}
	state, err := s.wizard.Retry(r.Context(), r.PathValue("analysis_id"))
	s.wizardResult(w, state, err)
}

// handleWizardApprove approves the current step and advances.
func (s *Server) handleWizardApprove(w http.ResponseWriter, r *http.Request) {
	if !s.requireWizard(w) {
		return
	}
	state, err := s.wizard.Approve(r.Context(), r.PathValue("analysis_id"))
	s.wizardResult(w, state, err)
}
