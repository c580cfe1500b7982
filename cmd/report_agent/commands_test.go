package main

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonathan/strategy-report/internal/config"
	"github.com/jonathan/strategy-report/internal/report"
	"github.com/jonathan/strategy-report/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()

	be, err := openBackend(ctx, &config.Config{}, testSeedPath)
	require.NoError(t, err)
	defer be.close()
	assert.Equal(t, "memory", be.kind)
	subs, err := be.store.ListSubmissions(ctx)
	require.NoError(t, err)
	assert.Len(t, subs, 2)

	be, err = openBackend(ctx, &config.Config{BackendURL: "http://backend.local"}, "")
	require.NoError(t, err)
	assert.Equal(t, "http", be.kind)
	assert.Nil(t, be.history)

	_, err = openBackend(ctx, &config.Config{}, "")
	assert.Error(t, err)
}

func TestNewGenerator(t *testing.T) {
	ctx := context.Background()

	gen, closeFn, err := newGenerator(ctx, &config.Config{}, nil)
	require.NoError(t, err)
	assert.Nil(t, gen)
	closeFn()

	gen, _, err = newGenerator(ctx, &config.Config{GenerationURL: "https://gen.example.com"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &wizard.HTTPGenerator{}, gen)
}

func TestPrintPageTable(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printPageTable(&out, ""))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, report.TotalPages)
	assert.Contains(t, lines[7], "swot.html")

	out.Reset()
	require.NoError(t, printPageTable(&out, "pestel"))
	assert.Contains(t, out.String(), "[5 6]")

	assert.Error(t, printPageTable(&out, "roadmap"))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRunValidate_Framework(t *testing.T) {
	var out bytes.Buffer
	valid := writeFile(t, "pestel.json", `{"economic": ["Juros altos"], "legal": ["LGPD"]}`)
	require.NoError(t, runValidate(&out, valid, "pestel"))
	assert.Contains(t, out.String(), "Validation passed")

	invalid := writeFile(t, "pestel.json", `{"economic": 3}`)
	assert.Error(t, runValidate(&out, invalid, "pestel"))

	assert.Error(t, runValidate(&out, valid, "roadmap"))
	assert.Error(t, runValidate(&out, "/nonexistent/file.json", "pestel"))
}

func TestRunValidate_Analysis(t *testing.T) {
	var out bytes.Buffer
	path := writeFile(t, "analysis.json", `{
		"swot": {"strengths": ["Frota própria"], "weaknesses": [], "opportunities": [], "threats": []},
		"porter": "inválido"
	}`)
	err := runValidate(&out, path, "")
	require.Error(t, err)
	assert.Contains(t, out.String(), "ok       swot")
	assert.Contains(t, out.String(), "dropped  porter")
}

func TestLoadAnalysisFile(t *testing.T) {
	bare := writeFile(t, "bare.json", `{"pestel": {"economic": ["Juros altos"]}}`)
	a, err := loadAnalysisFile(bare)
	require.NoError(t, err)
	assert.NotNil(t, a.Analysis.Pestel)

	record := writeFile(t, "record.json", `{"id": "an-9", "status": "generated", "analysis": {"pestel": {"legal": ["LGPD"]}}}`)
	a, err = loadAnalysisFile(record)
	require.NoError(t, err)
	assert.Equal(t, "an-9", a.ID)
	assert.Equal(t, []string{"LGPD"}, a.Analysis.Pestel.Legal)
}

func TestRenderReportCommand_MissingOutputFlag(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "render-report", "--submission", "sub-1")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "required flag(s) \"out\" not set")
}

func TestRenderReportCommand_FromSeed(t *testing.T) {
	binaryPath := getBinaryPath(t)
	outputFile := filepath.Join(t.TempDir(), "report.html")

	cmd := exec.Command(binaryPath, "render-report",
		"--seed", testSeedPath,
		"--submission", "sub-2",
		"--out", outputFile)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, string(output))
	assert.Contains(t, string(output), "Rendered 24 pages")

	html, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	n, err := report.CountPages(string(html))
	require.NoError(t, err)
	assert.Equal(t, report.TotalPages, n)
}

func TestTokenCommand_MissingSecret(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "token", "--subject", "ana@consultoria.com")
	cmd.Env = []string{"PATH=" + os.Getenv("PATH")}
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "AUTH_JWT_SECRET")
}

func TestExportPDFCommand_RequiresSource(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "export-pdf", "--out", filepath.Join(t.TempDir(), "r.pdf"))
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "at least one of the flags")
}
