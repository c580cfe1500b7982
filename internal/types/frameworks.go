package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FrameworkKey names one fragment under Analysis.Analysis.
type FrameworkKey string

// Framework keys in canonical (camelCase) form.
const (
	FrameworkSynthesis      FrameworkKey = "synthesis"
	FrameworkPestel         FrameworkKey = "pestel"
	FrameworkPorter         FrameworkKey = "porter"
	FrameworkSwot           FrameworkKey = "swot"
	FrameworkTamSamSom      FrameworkKey = "tamSamSom"
	FrameworkBenchmarking   FrameworkKey = "benchmarking"
	FrameworkBlueOcean      FrameworkKey = "blueOcean"
	FrameworkGrowthHacking  FrameworkKey = "growthHacking"
	FrameworkScenarios      FrameworkKey = "scenarios"
	FrameworkOKRs           FrameworkKey = "okrs"
	FrameworkBSC            FrameworkKey = "bsc"
	FrameworkDecisionMatrix FrameworkKey = "decisionMatrix"
)

// FrameworkKeys lists every key in report order.
var FrameworkKeys = []FrameworkKey{
	FrameworkSynthesis,
	FrameworkPestel,
	FrameworkPorter,
	FrameworkSwot,
	FrameworkTamSamSom,
	FrameworkBenchmarking,
	FrameworkBlueOcean,
	FrameworkGrowthHacking,
	FrameworkScenarios,
	FrameworkOKRs,
	FrameworkBSC,
	FrameworkDecisionMatrix,
}

// FrameworkInfo carries display metadata for a framework.
type FrameworkInfo struct {
	Key  FrameworkKey `json:"key"`
	Code string       `json:"code"`
	Name string       `json:"name"`
}

var frameworkInfo = map[FrameworkKey]FrameworkInfo{
	FrameworkSynthesis:      {FrameworkSynthesis, "SYNTHESIS", "Síntese Estratégica"},
	FrameworkPestel:         {FrameworkPestel, "PESTEL", "Análise PESTEL"},
	FrameworkPorter:         {FrameworkPorter, "PORTER", "Cinco Forças de Porter"},
	FrameworkSwot:           {FrameworkSwot, "SWOT", "Análise SWOT"},
	FrameworkTamSamSom:      {FrameworkTamSamSom, "TAM_SAM_SOM", "TAM / SAM / SOM"},
	FrameworkBenchmarking:   {FrameworkBenchmarking, "BENCHMARKING", "Benchmarking Competitivo"},
	FrameworkBlueOcean:      {FrameworkBlueOcean, "BLUE_OCEAN", "Estratégia do Oceano Azul"},
	FrameworkGrowthHacking:  {FrameworkGrowthHacking, "GROWTH_HACKING", "Growth Hacking"},
	FrameworkScenarios:      {FrameworkScenarios, "SCENARIOS", "Planejamento de Cenários"},
	FrameworkOKRs:           {FrameworkOKRs, "OKRS", "OKRs"},
	FrameworkBSC:            {FrameworkBSC, "BSC", "Balanced Scorecard"},
	FrameworkDecisionMatrix: {FrameworkDecisionMatrix, "DECISION_MATRIX", "Matriz de Decisão"},
}

// Info returns the display metadata for k. Unknown keys echo the key as name.
func (k FrameworkKey) Info() FrameworkInfo {
	if info, ok := frameworkInfo[k]; ok {
		return info
	}
	return FrameworkInfo{Key: k, Code: strings.ToUpper(string(k)), Name: string(k)}
}

// Valid reports whether k is a known framework key.
func (k FrameworkKey) Valid() bool {
	_, ok := frameworkInfo[k]
	return ok
}

// ParseFrameworkKey accepts camelCase, snake_case, kebab-case or the wizard code.
func ParseFrameworkKey(s string) (FrameworkKey, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	candidate := FrameworkKey(CamelCaseKey(strings.ReplaceAll(s, "-", "_")))
	if candidate.Valid() {
		return candidate, true
	}
	for key, info := range frameworkInfo {
		if strings.EqualFold(info.Code, s) || strings.EqualFold(string(key), s) {
			return key, true
		}
	}
	return "", false
}

// Framework is the sum type of the twelve fragment shapes. The unexported
// method seals the set to this package.
type Framework interface {
	Key() FrameworkKey
	framework()
}

// FlexString decodes JSON strings, numbers and booleans into text. Generators
// emit market sizes and probabilities either way.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*f = FlexString(v)
		return nil
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil || s == "true" || s == "false" {
		*f = FlexString(s)
		return nil
	}
	return fmt.Errorf("cannot decode %s as text", s)
}

// Synthesis is the executive summary and closing recommendations.
type Synthesis struct {
	ExecutiveSummary string   `json:"executiveSummary,omitempty"`
	KeyFindings      []string `json:"keyFindings,omitempty"`
	Recommendations  []string `json:"recommendations,omitempty"`
	NextSteps        []string `json:"nextSteps,omitempty"`
}

// Pestel holds the six macro-environment dimensions.
type Pestel struct {
	Political     []string `json:"political"`
	Economic      []string `json:"economic"`
	Social        []string `json:"social"`
	Technological []string `json:"technological"`
	Environmental []string `json:"environmental"`
	Legal         []string `json:"legal"`
	Summary       string   `json:"summary,omitempty"`
}

// PestelDimension names one PESTEL list.
type PestelDimension string

// PESTEL dimensions.
const (
	PestelPolitical     PestelDimension = "political"
	PestelEconomic      PestelDimension = "economic"
	PestelSocial        PestelDimension = "social"
	PestelTechnological PestelDimension = "technological"
	PestelEnvironmental PestelDimension = "environmental"
	PestelLegal         PestelDimension = "legal"
)

// PestelDimensions lists dimensions in display order.
var PestelDimensions = []PestelDimension{
	PestelPolitical, PestelEconomic, PestelSocial,
	PestelTechnological, PestelEnvironmental, PestelLegal,
}

// Dimension returns a pointer to the list for d, or nil for an unknown dimension.
func (p *Pestel) Dimension(d PestelDimension) *[]string {
	switch d {
	case PestelPolitical:
		return &p.Political
	case PestelEconomic:
		return &p.Economic
	case PestelSocial:
		return &p.Social
	case PestelTechnological:
		return &p.Technological
	case PestelEnvironmental:
		return &p.Environmental
	case PestelLegal:
		return &p.Legal
	default:
		return nil
	}
}

// PorterForce is one of the five competitive forces.
type PorterForce struct {
	Force       string `json:"force"`
	Intensity   string `json:"intensity"`
	Description string `json:"description,omitempty"`
}

// Porter holds the five-forces assessment.
type Porter struct {
	Forces  []PorterForce `json:"forces"`
	Summary string        `json:"summary,omitempty"`
}

// UnmarshalJSON accepts either a bare array of forces or the object form.
func (p *Porter) UnmarshalJSON(b []byte) error {
	if isJSONArray(b) {
		var forces []PorterForce
		if err := json.Unmarshal(b, &forces); err != nil {
			return err
		}
		*p = Porter{Forces: forces}
		return nil
	}
	type alias Porter
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*p = Porter(a)
	return nil
}

// SwotItem is one SWOT entry with its provenance.
type SwotItem struct {
	Content    string `json:"content"`
	Confidence string `json:"confidence,omitempty"`
	Source     string `json:"source,omitempty"`
}

// UnmarshalJSON accepts a plain string as an item without provenance.
func (s *SwotItem) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var content string
		if err := json.Unmarshal(b, &content); err != nil {
			return err
		}
		*s = SwotItem{Content: content}
		return nil
	}
	type alias SwotItem
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*s = SwotItem(a)
	return nil
}

// Swot holds the four quadrants.
type Swot struct {
	Strengths     []SwotItem `json:"strengths"`
	Weaknesses    []SwotItem `json:"weaknesses"`
	Opportunities []SwotItem `json:"opportunities"`
	Threats       []SwotItem `json:"threats"`
}

// SwotQuadrant names one SWOT list.
type SwotQuadrant string

// SWOT quadrants.
const (
	SwotStrengths     SwotQuadrant = "strengths"
	SwotWeaknesses    SwotQuadrant = "weaknesses"
	SwotOpportunities SwotQuadrant = "opportunities"
	SwotThreats       SwotQuadrant = "threats"
)

// SwotQuadrants lists quadrants in display order.
var SwotQuadrants = []SwotQuadrant{SwotStrengths, SwotWeaknesses, SwotOpportunities, SwotThreats}

// Quadrant returns a pointer to the list for q, or nil for an unknown quadrant.
func (s *Swot) Quadrant(q SwotQuadrant) *[]SwotItem {
	switch q {
	case SwotStrengths:
		return &s.Strengths
	case SwotWeaknesses:
		return &s.Weaknesses
	case SwotOpportunities:
		return &s.Opportunities
	case SwotThreats:
		return &s.Threats
	default:
		return nil
	}
}

// MarketSize is one TAM/SAM/SOM figure.
type MarketSize struct {
	Value       FlexString `json:"value"`
	Description string     `json:"description,omitempty"`
}

// TamSamSom holds the market sizing funnel.
type TamSamSom struct {
	Tam         *MarketSize `json:"tam,omitempty"`
	Sam         *MarketSize `json:"sam,omitempty"`
	Som         *MarketSize `json:"som,omitempty"`
	Currency    string      `json:"currency,omitempty"`
	Methodology string      `json:"methodology,omitempty"`
}

// Competitor is one benchmarked company.
type Competitor struct {
	Name        string     `json:"name"`
	Strengths   []string   `json:"strengths,omitempty"`
	Weaknesses  []string   `json:"weaknesses,omitempty"`
	MarketShare FlexString `json:"marketShare,omitempty"`
}

// Benchmarking compares the client against competitors.
type Benchmarking struct {
	Competitors []Competitor `json:"competitors"`
	Insights    []string     `json:"insights,omitempty"`
}

// BlueOcean is the ERRC grid.
type BlueOcean struct {
	Eliminate       []string `json:"eliminate"`
	Reduce          []string `json:"reduce"`
	Raise           []string `json:"raise"`
	Create          []string `json:"create"`
	ValueInnovation string   `json:"valueInnovation,omitempty"`
}

// GrowthExperiment is one growth-hacking experiment.
type GrowthExperiment struct {
	Name       string `json:"name"`
	Hypothesis string `json:"hypothesis,omitempty"`
	Channel    string `json:"channel,omitempty"`
	Metric     string `json:"metric,omitempty"`
}

// GrowthHacking lists experiments around a north-star metric.
type GrowthHacking struct {
	NorthStarMetric string             `json:"northStarMetric,omitempty"`
	Experiments     []GrowthExperiment `json:"experiments"`
}

// Scenario is one planning scenario.
type Scenario struct {
	Name         string     `json:"name"`
	Probability  FlexString `json:"probability,omitempty"`
	Description  string     `json:"description,omitempty"`
	Implications []string   `json:"implications,omitempty"`
}

// RiskItem is one identified risk with its mitigation.
type RiskItem struct {
	Description string `json:"description"`
	Impact      string `json:"impact,omitempty"`
	Mitigation  string `json:"mitigation,omitempty"`
}

// Scenarios holds planning scenarios and the derived risk list.
type Scenarios struct {
	Scenarios []Scenario `json:"scenarios"`
	Risks     []RiskItem `json:"risks,omitempty"`
}

// UnmarshalJSON accepts a bare array of scenarios.
func (s *Scenarios) UnmarshalJSON(b []byte) error {
	if isJSONArray(b) {
		var list []Scenario
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		*s = Scenarios{Scenarios: list}
		return nil
	}
	type alias Scenarios
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*s = Scenarios(a)
	return nil
}

// Objective is one OKR objective with its key results.
type Objective struct {
	Objective  string   `json:"objective"`
	KeyResults []string `json:"keyResults"`
	Timeline   string   `json:"timeline,omitempty"`
	Owner      string   `json:"owner,omitempty"`
}

// OKRs lists objectives.
type OKRs struct {
	Objectives []Objective `json:"objectives"`
}

// UnmarshalJSON accepts a bare array of objectives.
func (o *OKRs) UnmarshalJSON(b []byte) error {
	if isJSONArray(b) {
		var list []Objective
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		*o = OKRs{Objectives: list}
		return nil
	}
	type alias OKRs
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*o = OKRs(a)
	return nil
}

// BSCObjective is one scorecard line.
type BSCObjective struct {
	Objective string `json:"objective"`
	Indicator string `json:"indicator,omitempty"`
	Target    string `json:"target,omitempty"`
}

// BSC holds the four balanced-scorecard perspectives.
type BSC struct {
	Financial         []BSCObjective `json:"financial"`
	Customer          []BSCObjective `json:"customer"`
	InternalProcesses []BSCObjective `json:"internalProcesses"`
	LearningGrowth    []BSCObjective `json:"learningGrowth"`
}

// Criterion is one weighted decision criterion.
type Criterion struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// DecisionOption is one strategic option scored against the criteria.
type DecisionOption struct {
	Name   string             `json:"name"`
	Scores map[string]float64 `json:"scores,omitempty"`
	Total  float64            `json:"total,omitempty"`
}

// DecisionMatrix scores options against weighted criteria.
type DecisionMatrix struct {
	Criteria       []Criterion      `json:"criteria"`
	Options        []DecisionOption `json:"options"`
	Recommendation string           `json:"recommendation,omitempty"`
}

// WeightedTotal returns the option's total, computing it from the weighted
// scores when the generator did not supply one.
func (m *DecisionMatrix) WeightedTotal(o DecisionOption) float64 {
	if o.Total != 0 {
		return o.Total
	}
	var total float64
	for _, c := range m.Criteria {
		total += c.Weight * o.Scores[c.Name]
	}
	return total
}

func (*Synthesis) Key() FrameworkKey      { return FrameworkSynthesis }
func (*Pestel) Key() FrameworkKey         { return FrameworkPestel }
func (*Porter) Key() FrameworkKey         { return FrameworkPorter }
func (*Swot) Key() FrameworkKey           { return FrameworkSwot }
func (*TamSamSom) Key() FrameworkKey      { return FrameworkTamSamSom }
func (*Benchmarking) Key() FrameworkKey   { return FrameworkBenchmarking }
func (*BlueOcean) Key() FrameworkKey      { return FrameworkBlueOcean }
func (*GrowthHacking) Key() FrameworkKey  { return FrameworkGrowthHacking }
func (*Scenarios) Key() FrameworkKey      { return FrameworkScenarios }
func (*OKRs) Key() FrameworkKey           { return FrameworkOKRs }
func (*BSC) Key() FrameworkKey            { return FrameworkBSC }
func (*DecisionMatrix) Key() FrameworkKey { return FrameworkDecisionMatrix }

func (*Synthesis) framework()      {}
func (*Pestel) framework()         {}
func (*Porter) framework()         {}
func (*Swot) framework()           {}
func (*TamSamSom) framework()      {}
func (*Benchmarking) framework()   {}
func (*BlueOcean) framework()      {}
func (*GrowthHacking) framework()  {}
func (*Scenarios) framework()      {}
func (*OKRs) framework()           {}
func (*BSC) framework()            {}
func (*DecisionMatrix) framework() {}

// NewFramework returns an empty value of the concrete type behind key.
func NewFramework(key FrameworkKey) (Framework, error) {
	switch key {
	case FrameworkSynthesis:
		return &Synthesis{}, nil
	case FrameworkPestel:
		return &Pestel{}, nil
	case FrameworkPorter:
		return &Porter{}, nil
	case FrameworkSwot:
		return &Swot{}, nil
	case FrameworkTamSamSom:
		return &TamSamSom{}, nil
	case FrameworkBenchmarking:
		return &Benchmarking{}, nil
	case FrameworkBlueOcean:
		return &BlueOcean{}, nil
	case FrameworkGrowthHacking:
		return &GrowthHacking{}, nil
	case FrameworkScenarios:
		return &Scenarios{}, nil
	case FrameworkOKRs:
		return &OKRs{}, nil
	case FrameworkBSC:
		return &BSC{}, nil
	case FrameworkDecisionMatrix:
		return &DecisionMatrix{}, nil
	default:
		return nil, fmt.Errorf("unknown framework: %s", key)
	}
}

func isJSONArray(b []byte) bool {
	for _, c := range b {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}
