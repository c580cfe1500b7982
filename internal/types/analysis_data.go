package types

import (
	"encoding/json"
	"fmt"
)

// AnalysisData is the framework-keyed payload of an analysis. A nil field means
// the framework has not been generated yet.
type AnalysisData struct {
	Synthesis      *Synthesis      `json:"synthesis,omitempty"`
	Pestel         *Pestel         `json:"pestel,omitempty"`
	Porter         *Porter         `json:"porter,omitempty"`
	Swot           *Swot           `json:"swot,omitempty"`
	TamSamSom      *TamSamSom      `json:"tamSamSom,omitempty"`
	Benchmarking   *Benchmarking   `json:"benchmarking,omitempty"`
	BlueOcean      *BlueOcean      `json:"blueOcean,omitempty"`
	GrowthHacking  *GrowthHacking  `json:"growthHacking,omitempty"`
	Scenarios      *Scenarios      `json:"scenarios,omitempty"`
	OKRs           *OKRs           `json:"okrs,omitempty"`
	BSC            *BSC            `json:"bsc,omitempty"`
	DecisionMatrix *DecisionMatrix `json:"decisionMatrix,omitempty"`
}

// Get returns the fragment for key, or nil when it is absent.
func (d *AnalysisData) Get(key FrameworkKey) Framework {
	switch key {
	case FrameworkSynthesis:
		if d.Synthesis != nil {
			return d.Synthesis
		}
	case FrameworkPestel:
		if d.Pestel != nil {
			return d.Pestel
		}
	case FrameworkPorter:
		if d.Porter != nil {
			return d.Porter
		}
	case FrameworkSwot:
		if d.Swot != nil {
			return d.Swot
		}
	case FrameworkTamSamSom:
		if d.TamSamSom != nil {
			return d.TamSamSom
		}
	case FrameworkBenchmarking:
		if d.Benchmarking != nil {
			return d.Benchmarking
		}
	case FrameworkBlueOcean:
		if d.BlueOcean != nil {
			return d.BlueOcean
		}
	case FrameworkGrowthHacking:
		if d.GrowthHacking != nil {
			return d.GrowthHacking
		}
	case FrameworkScenarios:
		if d.Scenarios != nil {
			return d.Scenarios
		}
	case FrameworkOKRs:
		if d.OKRs != nil {
			return d.OKRs
		}
	case FrameworkBSC:
		if d.BSC != nil {
			return d.BSC
		}
	case FrameworkDecisionMatrix:
		if d.DecisionMatrix != nil {
			return d.DecisionMatrix
		}
	}
	return nil
}

// Has reports whether the fragment for key is present.
func (d *AnalysisData) Has(key FrameworkKey) bool {
	return d != nil && d.Get(key) != nil
}

// Set stores f under its own key.
func (d *AnalysisData) Set(f Framework) {
	switch v := f.(type) {
	case *Synthesis:
		d.Synthesis = v
	case *Pestel:
		d.Pestel = v
	case *Porter:
		d.Porter = v
	case *Swot:
		d.Swot = v
	case *TamSamSom:
		d.TamSamSom = v
	case *Benchmarking:
		d.Benchmarking = v
	case *BlueOcean:
		d.BlueOcean = v
	case *GrowthHacking:
		d.GrowthHacking = v
	case *Scenarios:
		d.Scenarios = v
	case *OKRs:
		d.OKRs = v
	case *BSC:
		d.BSC = v
	case *DecisionMatrix:
		d.DecisionMatrix = v
	}
}

// Clear removes the fragment for key.
func (d *AnalysisData) Clear(key FrameworkKey) {
	switch key {
	case FrameworkSynthesis:
		d.Synthesis = nil
	case FrameworkPestel:
		d.Pestel = nil
	case FrameworkPorter:
		d.Porter = nil
	case FrameworkSwot:
		d.Swot = nil
	case FrameworkTamSamSom:
		d.TamSamSom = nil
	case FrameworkBenchmarking:
		d.Benchmarking = nil
	case FrameworkBlueOcean:
		d.BlueOcean = nil
	case FrameworkGrowthHacking:
		d.GrowthHacking = nil
	case FrameworkScenarios:
		d.Scenarios = nil
	case FrameworkOKRs:
		d.OKRs = nil
	case FrameworkBSC:
		d.BSC = nil
	case FrameworkDecisionMatrix:
		d.DecisionMatrix = nil
	}
}

// Present lists the keys that carry data, in report order.
func (d *AnalysisData) Present() []FrameworkKey {
	keys := make([]FrameworkKey, 0, len(FrameworkKeys))
	for _, k := range FrameworkKeys {
		if d.Has(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// Clone returns a deep copy by round-tripping through JSON.
func (d *AnalysisData) Clone() (AnalysisData, error) {
	var out AnalysisData
	if d == nil {
		return out, nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return out, fmt.Errorf("failed to copy analysis data: %w", err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("failed to copy analysis data: %w", err)
	}
	return out, nil
}
