package schemas

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameworkSchemas_AllCompile(t *testing.T) {
	keys, err := FrameworkSchemas()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"synthesis", "pestel", "porter", "swot", "tamSamSom", "benchmarking",
		"blueOcean", "growthHacking", "scenarios", "okrs", "bsc", "decisionMatrix",
	}, keys)
}

func TestValidateFramework(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		doc     string
		wantErr bool
	}{
		{"swot object items", "swot", `{"strengths":[{"content":"A","confidence":"Alta","source":"fato"}],"weaknesses":[]}`, false},
		{"swot string items", "swot", `{"strengths":["Marca forte"],"threats":[]}`, false},
		{"swot item missing content", "swot", `{"strengths":[{"source":"x"}]}`, true},
		{"swot wrong type", "swot", `{"strengths":"none"}`, true},
		{"porter bare array", "porter", `[{"force":"Rivalidade","intensity":"Alta"}]`, false},
		{"porter object", "porter", `{"forces":[{"force":"Rivalidade"}],"summary":"ok"}`, false},
		{"porter number", "porter", `42`, true},
		{"pestel lists", "pestel", `{"political":["a"],"economic":[],"summary":"s"}`, false},
		{"pestel non-string factor", "pestel", `{"political":[1]}`, true},
		{"tam numeric value", "tamSamSom", `{"tam":{"value":1200000000}}`, false},
		{"okrs bare array", "okrs", `[{"objective":"Crescer","keyResults":["+20%"]}]`, false},
		{"scenarios object", "scenarios", `{"scenarios":[{"name":"Base","probability":0.5}]}`, false},
		{"decision matrix negative weight", "decisionMatrix", `{"criteria":[{"name":"Custo","weight":-1}]}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFramework(tt.key, []byte(tt.doc))
			if tt.wantErr {
				require.Error(t, err)
				var ve *ValidationError
				assert.ErrorAs(t, err, &ve)
				assert.NotEmpty(t, ve.Errors)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateFramework_UnknownKey(t *testing.T) {
	err := ValidateFramework("roadmap", []byte(`{}`))
	require.Error(t, err)
	var le *SchemaLoadError
	assert.ErrorAs(t, err, &le)
}

func TestValidateJSONFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "swot.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"strengths":["A"]}`), 0644))

	assert.NoError(t, ValidateJSONFile("swot", path))

	err := ValidateJSONFile("swot", filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Errors: []FieldError{{Field: "strengths.0", Message: "content is required"}}}
	assert.Contains(t, err.Error(), "1. strengths.0: content is required")
}
