package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/jonathan/strategy-report/internal/backend"
	"github.com/jonathan/strategy-report/internal/editor"
	"github.com/jonathan/strategy-report/internal/types"
)

// openEditor loads the analysis of a submission into a War Room session
// bound to the current stage.
func (s *Server) openEditor(ctx context.Context, submissionID string) (*editor.Session, error) {
	d, err := s.loadDashboard(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if d.Analysis == nil {
		return nil, fmt.Errorf("analysis for submission %s: %w", submissionID, backend.ErrNotFound)
	}
	return editor.NewSession(d.Analysis, d.Stage.AdminStage)
}

// saveEditor persists the session and writes the saved analysis.
func (s *Server) saveEditor(w http.ResponseWriter, r *http.Request, sess *editor.Session) {
	if err := sess.Save(r.Context(), s.backend); err != nil {
		s.writeError(w, err, nil)
		return
	}
	a := sess.Analysis()
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"analysis":   a,
		"frameworks": editor.NavigationItems(&a.Analysis),
	})
}

func pathFrameworkKey(r *http.Request) (types.FrameworkKey, error) {
	key, ok := types.ParseFrameworkKey(r.PathValue("key"))
	if !ok {
		return "", &ErrValidation{Field: "key", Message: "unknown framework: " + r.PathValue("key")}
	}
	return key, nil
}

func pathIndex(r *http.Request) (int, error) {
	i, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		return 0, &ErrValidation{Field: "index", Message: "must be an integer"}
	}
	return i, nil
}

// decodeFramework runs a bare fragment through the normalization boundary.
func decodeFramework(key types.FrameworkKey, raw json.RawMessage) (types.Framework, error) {
	wrapped, err := json.Marshal(map[string]json.RawMessage{string(key): raw})
	if err != nil {
		return nil, &ErrValidation{Field: "data", Message: err.Error()}
	}
	res, err := types.DecodeAnalysisData(wrapped)
	if err != nil {
		return nil, &ErrValidation{Field: "data", Message: err.Error()}
	}
	if f := res.Data.Get(key); f != nil {
		return f, nil
	}
	reason := "empty fragment"
	for _, d := range res.Dropped {
		if d.Key == key {
			reason = d.Reason
		}
	}
	return nil, &ErrValidation{Field: "data", Message: reason}
}

// handlePutFramework replaces one framework fragment.
func (s *Server) handlePutFramework(w http.ResponseWriter, r *http.Request) {
	key, err := pathFrameworkKey(r)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	var req types.FrameworkUpdateRequest
	if err := decodeBody(r, &req, false); err != nil {
		s.writeError(w, err, nil)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, err, nil)
		return
	}
	f, err := decodeFramework(key, req.Data)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}

	sess, err := s.openEditor(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	if err := sess.ReplaceFramework(f); err != nil {
		s.writeError(w, err, nil)
		return
	}
	s.saveEditor(w, r, sess)
}

// handleDeleteFramework clears one framework fragment.
func (s *Server) handleDeleteFramework(w http.ResponseWriter, r *http.Request) {
	key, err := pathFrameworkKey(r)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	sess, err := s.openEditor(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	if err := sess.ClearFramework(key); err != nil {
		s.writeError(w, err, nil)
		return
	}
	s.saveEditor(w, r, sess)
}

func decodeSwotItem(r *http.Request) (types.SwotItem, error) {
	var req types.SwotItemRequest
	if err := decodeBody(r, &req, false); err != nil {
		return types.SwotItem{}, err
	}
	if err := req.Validate(); err != nil {
		return types.SwotItem{}, err
	}
	return req.Item(), nil
}

// handleAddSwotItem appends an item to a SWOT quadrant.
func (s *Server) handleAddSwotItem(w http.ResponseWriter, r *http.Request) {
	item, err := decodeSwotItem(r)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	sess, err := s.openEditor(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	if err := sess.AddItem(types.SwotQuadrant(r.PathValue("quadrant")), item); err != nil {
		s.writeError(w, err, nil)
		return
	}
	s.saveEditor(w, r, sess)
}

// handleUpdateSwotItem replaces the item at index.
func (s *Server) handleUpdateSwotItem(w http.ResponseWriter, r *http.Request) {
	i, err := pathIndex(r)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	item, err := decodeSwotItem(r)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	sess, err := s.openEditor(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	if err := sess.UpdateItem(types.SwotQuadrant(r.PathValue("quadrant")), i, item); err != nil {
		s.writeError(w, err, nil)
		return
	}
	s.saveEditor(w, r, sess)
}

// handleDeleteSwotItem removes the item at index.
func (s *Server) handleDeleteSwotItem(w http.ResponseWriter, r *http.Request) {
	i, err := pathIndex(r)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	sess, err := s.openEditor(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	if err := sess.DeleteItem(types.SwotQuadrant(r.PathValue("quadrant")), i); err != nil {
		s.writeError(w, err, nil)
		return
	}
	s.saveEditor(w, r, sess)
}

// handleSetBlur toggles the premium blur of an analysis.
func (s *Server) handleSetBlur(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req types.BlurRequest
	if err := decodeBody(r, &req, false); err != nil {
		s.writeError(w, err, nil)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, err, nil)
		return
	}
	if err := s.backend.SetBlur(r.Context(), id, *req.Blurred); err != nil {
		s.writeError(w, err, nil)
		return
	}
	a, err := s.backend.GetAnalysis(r.Context(), id)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	s.jsonResponse(w, http.StatusOK, a)
}

// handleShare issues an access code and the public link for it.
func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	code, err := s.backend.GenerateAccessCode(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	s.jsonResponse(w, http.StatusCreated, map[string]string{
		"access_code": code,
		"url":         backend.ShareURL(s.origin, code),
	})
}
