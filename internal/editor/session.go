package editor

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/strategy-report/internal/report"
	"github.com/jonathan/strategy-report/internal/types"
	"github.com/jonathan/strategy-report/internal/workflow"
)

// Saver persists an edited analysis.
type Saver interface {
	SaveAnalysis(ctx context.Context, analysis *types.Analysis) error
}

// Session holds a working copy of an analysis being edited in the War Room.
type Session struct {
	analysis types.Analysis
	stage    workflow.AdminStage
	dirty    bool
}

// NewSession copies analysis so edits never touch the caller's value.
func NewSession(analysis *types.Analysis, stage workflow.AdminStage) (*Session, error) {
	if analysis == nil {
		return nil, fmt.Errorf("analysis is required")
	}
	data, err := analysis.Analysis.Clone()
	if err != nil {
		return nil, err
	}
	cp := *analysis
	cp.Analysis = data
	return &Session{analysis: cp, stage: stage}, nil
}

// Analysis returns the working copy.
func (s *Session) Analysis() *types.Analysis {
	return &s.analysis
}

// Dirty reports unsaved edits.
func (s *Session) Dirty() bool {
	return s.dirty
}

// Editable reports whether the stage allows analysis edits.
func (s *Session) Editable() bool {
	return workflow.VisibilityFor(s.stage, s.analysis.IsBlurred).AnalysisEditable
}

func (s *Session) guard() error {
	if !s.Editable() {
		return fmt.Errorf("%w (stage %d)", ErrNotEditable, s.stage)
	}
	return nil
}

// AddItem appends a SWOT item.
func (s *Session) AddItem(q types.SwotQuadrant, item types.SwotItem) error {
	if err := s.guard(); err != nil {
		return err
	}
	next, err := AddSwotItem(EnsureSwot(s.analysis.Analysis.Swot), q, item)
	if err != nil {
		return err
	}
	s.analysis.Analysis.Swot = &next
	s.dirty = true
	return nil
}

// UpdateItem replaces a SWOT item.
func (s *Session) UpdateItem(q types.SwotQuadrant, i int, item types.SwotItem) error {
	if err := s.guard(); err != nil {
		return err
	}
	next, err := UpdateSwotItem(EnsureSwot(s.analysis.Analysis.Swot), q, i, item)
	if err != nil {
		return err
	}
	s.analysis.Analysis.Swot = &next
	s.dirty = true
	return nil
}

// DeleteItem removes a SWOT item.
func (s *Session) DeleteItem(q types.SwotQuadrant, i int) error {
	if err := s.guard(); err != nil {
		return err
	}
	next, err := DeleteSwotItem(EnsureSwot(s.analysis.Analysis.Swot), q, i)
	if err != nil {
		return err
	}
	s.analysis.Analysis.Swot = &next
	s.dirty = true
	return nil
}

// AddFactor appends a PESTEL factor.
func (s *Session) AddFactor(d types.PestelDimension, factor string) error {
	if err := s.guard(); err != nil {
		return err
	}
	var p types.Pestel
	if s.analysis.Analysis.Pestel != nil {
		p = *s.analysis.Analysis.Pestel
	}
	next, err := AddPestelFactor(p, d, factor)
	if err != nil {
		return err
	}
	s.analysis.Analysis.Pestel = &next
	s.dirty = true
	return nil
}

// DeleteFactor removes a PESTEL factor.
func (s *Session) DeleteFactor(d types.PestelDimension, i int) error {
	if err := s.guard(); err != nil {
		return err
	}
	var p types.Pestel
	if s.analysis.Analysis.Pestel != nil {
		p = *s.analysis.Analysis.Pestel
	}
	next, err := DeletePestelFactor(p, d, i)
	if err != nil {
		return err
	}
	s.analysis.Analysis.Pestel = &next
	s.dirty = true
	return nil
}

// SetSummary sets the PESTEL summary.
func (s *Session) SetSummary(summary string) error {
	if err := s.guard(); err != nil {
		return err
	}
	var p types.Pestel
	if s.analysis.Analysis.Pestel != nil {
		p = *s.analysis.Analysis.Pestel
	}
	p.Summary = summary
	s.analysis.Analysis.Pestel = &p
	s.dirty = true
	return nil
}

// SetForce upserts a Porter force.
func (s *Session) SetForce(name, intensity, description string) error {
	if err := s.guard(); err != nil {
		return err
	}
	var p types.Porter
	if s.analysis.Analysis.Porter != nil {
		p = *s.analysis.Analysis.Porter
	}
	next, err := SetPorterForce(p, types.PorterForce{Force: name, Intensity: intensity, Description: description})
	if err != nil {
		return err
	}
	s.analysis.Analysis.Porter = &next
	s.dirty = true
	return nil
}

// DeleteForce removes a Porter force.
func (s *Session) DeleteForce(name string) error {
	if err := s.guard(); err != nil {
		return err
	}
	if s.analysis.Analysis.Porter == nil {
		return &FieldError{Field: "force", Message: "not found: " + name}
	}
	next, err := DeletePorterForce(*s.analysis.Analysis.Porter, name)
	if err != nil {
		return err
	}
	s.analysis.Analysis.Porter = &next
	s.dirty = true
	return nil
}

// ReplaceFramework swaps in a whole fragment.
func (s *Session) ReplaceFramework(f types.Framework) error {
	if err := s.guard(); err != nil {
		return err
	}
	if f == nil {
		return &FieldError{Field: "framework", Message: "must not be nil"}
	}
	s.analysis.Analysis.Set(f)
	s.dirty = true
	return nil
}

// ClearFramework removes a fragment.
func (s *Session) ClearFramework(key types.FrameworkKey) error {
	if err := s.guard(); err != nil {
		return err
	}
	if !key.Valid() {
		return &FieldError{Field: "framework", Message: string(key)}
	}
	s.analysis.Analysis.Clear(key)
	s.dirty = true
	return nil
}

// Save bumps the version and calls saver once. The bump is rolled back on failure.
func (s *Session) Save(ctx context.Context, saver Saver) error {
	s.analysis.Version++
	if err := saver.SaveAnalysis(ctx, &s.analysis); err != nil {
		s.analysis.Version--
		log.Printf("[editor] save of analysis %s failed: %v", s.analysis.ID, err)
		return &SaveError{AnalysisID: s.analysis.ID, Version: s.analysis.Version + 1, Cause: err}
	}
	s.dirty = false
	return nil
}

// NavItem is one entry of the framework navigation sidebar.
type NavItem struct {
	Key     types.FrameworkKey `json:"key"`
	Code    string             `json:"code"`
	Name    string             `json:"name"`
	Present bool               `json:"present"`
	Pages   []int              `json:"pages"`
}

// NavigationItems lists the twelve frameworks with presence flags and the
// report pages each one feeds.
func NavigationItems(data *types.AnalysisData) []NavItem {
	items := make([]NavItem, 0, len(types.FrameworkKeys))
	for _, k := range types.FrameworkKeys {
		info := k.Info()
		items = append(items, NavItem{
			Key:     k,
			Code:    info.Code,
			Name:    info.Name,
			Present: data.Has(k),
			Pages:   report.GetFrameworkPages(k),
		})
	}
	return items
}
