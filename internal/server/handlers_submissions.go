package server

import (
	"context"
	"log"
	"net/http"

	"github.com/jonathan/strategy-report/internal/backend"
	"github.com/jonathan/strategy-report/internal/editor"
	"github.com/jonathan/strategy-report/internal/types"
	"github.com/jonathan/strategy-report/internal/wizard"
	"github.com/jonathan/strategy-report/internal/workflow"
	"golang.org/x/sync/errgroup"
)

// dashboard is everything the submission page shows.
type dashboard struct {
	Submission *types.Submission   `json:"submission"`
	Enrichment *types.Enrichment   `json:"enrichment,omitempty"`
	Analysis   *types.Analysis     `json:"analysis,omitempty"`
	Stage      stageView           `json:"stage"`
	Frameworks []editor.NavItem    `json:"frameworks,omitempty"`
	Visibility workflow.Visibility `json:"visibility"`
	snapshot   workflow.Snapshot
}

// moveView is one legal target of the stage selector.
type moveView struct {
	To        workflow.AdminStage `json:"to"`
	Name      string              `json:"name"`
	Action    workflow.Action     `json:"action,omitempty"`
	Direction workflow.Direction  `json:"direction,omitempty"`
	Automatic bool                `json:"automatic"`
}

// stageView is the computed stage of a submission.
type stageView struct {
	SubmissionID string              `json:"submission_id"`
	AdminStage   workflow.AdminStage `json:"admin_stage"`
	AdminName    string              `json:"admin_stage_name"`
	UserStage    workflow.UserStage  `json:"user_stage"`
	UserName     string              `json:"user_stage_name"`
	Visibility   workflow.Visibility `json:"visibility"`
	LegalMoves   []moveView          `json:"legal_moves,omitempty"`
	InFlight     bool                `json:"in_flight"`
}

func (s *Server) stageViewOf(snap workflow.Snapshot, blurred bool) stageView {
	current := snap.Stage()
	user := workflow.UserStageFor(current)
	v := stageView{
		SubmissionID: snap.SubmissionID,
		AdminStage:   current,
		AdminName:    current.Name(),
		UserStage:    user,
		UserName:     user.Name(),
		Visibility:   workflow.VisibilityFor(current, blurred),
		LegalMoves:   []moveView{},
		InFlight:     s.guard.Busy(snap.SubmissionID),
	}
	for _, to := range workflow.LegalTargets(current, snap.EnrichmentStatus, snap.AnalysisStatus) {
		m := moveView{To: to, Name: to.Name(), Automatic: workflow.IsAutomatic(current, to)}
		if t := workflow.GetStageTransition(current, to); t != nil {
			m.Action, m.Direction, m.Automatic = t.Action, t.Direction, false
		}
		v.LegalMoves = append(v.LegalMoves, m)
	}
	return v
}

// loadDashboard fetches the submission, enrichment and analysis concurrently.
func (s *Server) loadDashboard(ctx context.Context, id string) (*dashboard, error) {
	d := &dashboard{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sub, err := s.backend.GetSubmission(gctx, id)
		d.Submission = sub
		return err
	})
	g.Go(func() error {
		e, err := s.backend.GetEnrichment(gctx, id)
		d.Enrichment = e
		return err
	})
	g.Go(func() error {
		a, err := s.backend.GetSubmissionAnalysis(gctx, id)
		d.Analysis = a
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d.snapshot = workflow.Snapshot{
		SubmissionID:     id,
		EnrichmentStatus: types.EnrichmentStatusOf(d.Enrichment),
		AnalysisStatus:   types.AnalysisStatusOf(d.Analysis),
		VisibleToUser:    types.VisibleToUser(d.Analysis),
	}
	blurred := d.Analysis != nil && d.Analysis.IsBlurred
	d.Stage = s.stageViewOf(d.snapshot, blurred)
	d.Visibility = d.Stage.Visibility
	return d, nil
}

// handleListSubmissions returns all submissions, newest first.
func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.backend.ListSubmissions(r.Context())
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"submissions": subs,
		"count":       len(subs),
	})
}

// handleDashboard returns a submission with its enrichment, analysis and
// computed stage. Viewers only see panels the stage has released.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.loadDashboard(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err, nil)
		return
	}

	if !isAdmin(r) {
		if !d.Visibility.EnrichmentVisible {
			d.Enrichment = nil
		}
		if !d.Visibility.AnalysisVisible {
			d.Analysis = nil
		}
		d.Stage.LegalMoves = nil
	}
	if d.Analysis != nil {
		d.Frameworks = editor.NavigationItems(&d.Analysis.Analysis)
	}
	s.jsonResponse(w, http.StatusOK, d)
}

// handleGetStage returns the current stage and the legal moves from it.
func (s *Server) handleGetStage(w http.ResponseWriter, r *http.Request) {
	d, err := s.loadDashboard(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	s.jsonResponse(w, http.StatusOK, d.Stage)
}

func decodeStageRequest(r *http.Request) (*types.StageChangeRequest, error) {
	var req types.StageChangeRequest
	if err := decodeBody(r, &req, false); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}

// prepareStageChange builds a controller from fresh statuses and arms target.
func (s *Server) prepareStageChange(ctx context.Context, id string, target workflow.AdminStage) (*workflow.Controller, *workflow.Confirmation, error) {
	snap, err := backend.Snapshot(ctx, s.backend, id)
	if err != nil {
		return nil, nil, err
	}
	ctrl := workflow.NewController(snap, workflow.WithGuard(s.guard), workflow.WithTimeout(s.stageTimeout))
	if reason, ok := ctrl.Select(target); !ok {
		return nil, nil, &workflow.MoveRejectedError{From: snap.Stage(), To: target, Reason: reason}
	}
	conf, err := ctrl.Apply()
	if err != nil {
		return nil, nil, err
	}
	return ctrl, conf, nil
}

// handlePreviewStage returns the confirmation for a move without applying it.
func (s *Server) handlePreviewStage(w http.ResponseWriter, r *http.Request) {
	req, err := decodeStageRequest(r)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	_, conf, err := s.prepareStageChange(r.Context(), r.PathValue("id"), workflow.AdminStage(req.TargetStage))
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	s.jsonResponse(w, http.StatusOK, conf)
}

// handleChangeStage applies a confirmed stage move and returns the new stage.
func (s *Server) handleChangeStage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	req, err := decodeStageRequest(r)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	if !req.Confirm {
		s.writeError(w, &ErrValidation{Field: "confirm", Message: "must be true to apply a stage change"}, nil)
		return
	}

	ctrl, conf, err := s.prepareStageChange(r.Context(), id, workflow.AdminStage(req.TargetStage))
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	if err := ctrl.Confirm(r.Context(), s.backend); err != nil {
		s.writeError(w, err, conf)
		return
	}

	d, err := s.loadDashboard(r.Context(), id)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	resp := map[string]any{
		"transition": conf,
		"stage":      d.Stage,
	}
	if st, ok := s.restartGeneration(r.Context(), conf.To, d.Analysis); ok {
		resp["wizard"] = st
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// restartGeneration opens a fresh wizard run when the move sends the
// analysis to generation. The stage change already stands, so a failure is
// only logged.
func (s *Server) restartGeneration(ctx context.Context, target workflow.AdminStage, analysis *types.Analysis) (wizard.State, bool) {
	eff, err := workflow.EffectFor(target)
	if err != nil || !eff.StartGeneration || s.wizard == nil || analysis == nil {
		return wizard.State{}, false
	}
	st, err := s.wizard.Restart(ctx, analysis.ID)
	if err != nil {
		log.Printf("[wizard] failed to restart generation for analysis %s: %v", analysis.ID, err)
		return wizard.State{}, false
	}
	return st, true
}
