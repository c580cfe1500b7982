//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCamelCaseKey(t *testing.T) {
	tests := map[string]string{
		"tam_sam_som":        "tamSamSom",
		"key_results":        "keyResults",
		"is_visible_to_user": "isVisibleToUser",
		"tamSamSom":          "tamSamSom",
		"swot":               "swot",
		"_":                  "_",
		"pdf_url":            "pdfUrl",
	}
	for in, want := range tests {
		assert.Equal(t, want, CamelCaseKey(in), in)
	}
}

func TestNormalizeKeys_CamelWins(t *testing.T) {
	in := map[string]any{
		"tam_sam_som": map[string]any{"currency": "USD"},
		"tamSamSom":   map[string]any{"currency": "BRL"},
	}
	out := NormalizeKeys(in).(map[string]any)
	require.Len(t, out, 1)
	assert.Equal(t, "BRL", out["tamSamSom"].(map[string]any)["currency"])
}

func TestNormalizeKeys_KeepsFreeFormKeys(t *testing.T) {
	in := map[string]any{
		"options": []any{
			map[string]any{"name": "A", "scores": map[string]any{"custo_total": 3.0}},
		},
	}
	out := NormalizeKeys(in).(map[string]any)
	opt := out["options"].([]any)[0].(map[string]any)
	assert.Contains(t, opt["scores"], "custo_total")
}

func TestDecodeAnalysisData_SnakeCase(t *testing.T) {
	raw := `{
		"tam_sam_som": {"tam": {"value": 1500000}, "sam": {"value": "300 mi"}},
		"okrs": [{"objective": "Crescer", "key_results": ["+20% receita"]}],
		"growth_hacking": {"north_star_metric": "MAU", "experiments": []}
	}`
	res, err := DecodeAnalysisData([]byte(raw))
	require.NoError(t, err)
	assert.Empty(t, res.Dropped)

	require.NotNil(t, res.Data.TamSamSom)
	assert.Equal(t, FlexString("1500000"), res.Data.TamSamSom.Tam.Value)
	assert.Equal(t, FlexString("300 mi"), res.Data.TamSamSom.Sam.Value)

	require.NotNil(t, res.Data.OKRs)
	require.Len(t, res.Data.OKRs.Objectives, 1)
	assert.Equal(t, []string{"+20% receita"}, res.Data.OKRs.Objectives[0].KeyResults)

	require.NotNil(t, res.Data.GrowthHacking)
	assert.Equal(t, "MAU", res.Data.GrowthHacking.NorthStarMetric)

	assert.Equal(t, []FrameworkKey{FrameworkTamSamSom, FrameworkGrowthHacking, FrameworkOKRs}, res.Data.Present())
}

func TestDecodeAnalysisData_ShapeTolerance(t *testing.T) {
	raw := `{
		"porter": [{"force": "Rivalidade", "intensity": "Alta"}],
		"swot": {"strengths": ["Marca"], "weaknesses": [{"content": "Custo", "confidence": "Média"}]}
	}`
	res, err := DecodeAnalysisData([]byte(raw))
	require.NoError(t, err)

	require.NotNil(t, res.Data.Porter)
	assert.Equal(t, "Rivalidade", res.Data.Porter.Forces[0].Force)

	require.NotNil(t, res.Data.Swot)
	assert.Equal(t, SwotItem{Content: "Marca"}, res.Data.Swot.Strengths[0])
	assert.Equal(t, "Média", res.Data.Swot.Weaknesses[0].Confidence)
}

func TestDecodeAnalysisData_DropsInvalidFragment(t *testing.T) {
	raw := `{"swot": {"strengths": "não é lista"}, "pestel": {"political": ["Eleições"]}}`
	res, err := DecodeAnalysisData([]byte(raw))
	require.NoError(t, err)

	assert.Nil(t, res.Data.Swot)
	require.NotNil(t, res.Data.Pestel)
	require.Len(t, res.Dropped, 1)
	assert.Equal(t, FrameworkSwot, res.Dropped[0].Key)
	assert.NotEmpty(t, res.Dropped[0].Reason)
}

func TestDecodeAnalysisData_EmptyInputs(t *testing.T) {
	for _, raw := range []string{"", "null", "{}"} {
		res, err := DecodeAnalysisData([]byte(raw))
		require.NoError(t, err, raw)
		assert.Empty(t, res.Data.Present(), raw)
	}

	_, err := DecodeAnalysisData([]byte(`[1,2]`))
	assert.Error(t, err)
}

func TestDecodeAnalysis(t *testing.T) {
	raw := `{
		"id": "a1",
		"submission_id": "s1",
		"status": "APPROVED",
		"version": 3,
		"is_visible_to_user": true,
		"is_blurred": false,
		"pdf_url": "https://cdn/x.pdf",
		"analysis": {"swot": {"strengths": [], "weaknesses": [], "opportunities": [], "threats": []}}
	}`
	a, dropped, err := DecodeAnalysis([]byte(raw))
	require.NoError(t, err)
	assert.Empty(t, dropped)
	assert.Equal(t, "s1", a.SubmissionID)
	assert.Equal(t, AnalysisApproved, a.Status)
	assert.Equal(t, 3, a.Version)
	assert.True(t, a.IsVisibleToUser)
	assert.Equal(t, "https://cdn/x.pdf", a.PDFURL)
	require.NotNil(t, a.Analysis.Swot)
	assert.NotNil(t, a.Analysis.Swot.Weaknesses)
}

func TestDecodeEnrichmentAndSubmission(t *testing.T) {
	e, err := DecodeEnrichment([]byte(`{"id":"e1","submission_id":"s1","status":"weird","profile_overview":{"legal_name":"ACME"}}`))
	require.NoError(t, err)
	assert.Equal(t, EnrichmentPending, e.Status)
	assert.Equal(t, "ACME", e.ProfileOverview["legalName"])

	s, err := DecodeSubmission([]byte(`{"id":"s1","company_name":"ACME","strategic_goal":"Expandir","answers":{"q_1":"sim"}}`))
	require.NoError(t, err)
	assert.Equal(t, "ACME", s.CompanyName)
	assert.Equal(t, "Expandir", s.StrategicGoal)
	assert.Equal(t, "sim", s.Answers["q_1"])
}

func TestAnalysisData_GetSetClear(t *testing.T) {
	var d AnalysisData
	for _, key := range FrameworkKeys {
		assert.Nil(t, d.Get(key), key)

		f, err := NewFramework(key)
		require.NoError(t, err)
		assert.Equal(t, key, f.Key())

		d.Set(f)
		assert.True(t, d.Has(key), key)
		assert.Same(t, f, d.Get(key))
	}
	assert.Equal(t, FrameworkKeys, d.Present())

	for _, key := range FrameworkKeys {
		d.Clear(key)
		assert.False(t, d.Has(key), key)
	}
}

func TestAnalysisData_Clone(t *testing.T) {
	d := AnalysisData{Swot: &Swot{Strengths: []SwotItem{{Content: "A"}}}}
	c, err := d.Clone()
	require.NoError(t, err)
	c.Swot.Strengths[0].Content = "B"
	assert.Equal(t, "A", d.Swot.Strengths[0].Content)
}

func TestParseFrameworkKey(t *testing.T) {
	tests := []struct {
		in   string
		want FrameworkKey
		ok   bool
	}{
		{"tamSamSom", FrameworkTamSamSom, true},
		{"tam_sam_som", FrameworkTamSamSom, true},
		{"blue-ocean", FrameworkBlueOcean, true},
		{"DECISION_MATRIX", FrameworkDecisionMatrix, true},
		{"SWOT", FrameworkSwot, true},
		{"roadmap", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseFrameworkKey(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFlexString(t *testing.T) {
	var v struct {
		A FlexString `json:"a"`
		B FlexString `json:"b"`
		C FlexString `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"x","b":12.5,"c":null}`), &v))
	assert.Equal(t, FlexString("x"), v.A)
	assert.Equal(t, FlexString("12.5"), v.B)
	assert.Equal(t, FlexString(""), v.C)

	assert.Error(t, json.Unmarshal([]byte(`{"a":{}}`), &v))
}

func TestDecisionMatrix_WeightedTotal(t *testing.T) {
	m := DecisionMatrix{
		Criteria: []Criterion{{Name: "Custo", Weight: 0.5}, {Name: "Impacto", Weight: 0.5}},
	}
	assert.InDelta(t, 4.0, m.WeightedTotal(DecisionOption{Scores: map[string]float64{"Custo": 3, "Impacto": 5}}), 1e-9)
	assert.InDelta(t, 9.0, m.WeightedTotal(DecisionOption{Total: 9}), 1e-9)
}

func TestStatusParsing(t *testing.T) {
	assert.Equal(t, AnalysisSent, ParseAnalysisStatus(" Sent "))
	assert.Equal(t, AnalysisPending, ParseAnalysisStatus("archived"))
	assert.Equal(t, EnrichmentApproved, ParseEnrichmentStatus("approved"))
	assert.Equal(t, EnrichmentPending, ParseEnrichmentStatus(""))
	assert.True(t, AnalysisGenerated.HasContent())
	assert.False(t, AnalysisFailed.HasContent())
	assert.Equal(t, AnalysisPending, AnalysisStatusOf(nil))
	assert.False(t, VisibleToUser(nil))
}
