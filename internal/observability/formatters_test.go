package observability

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jonathan/strategy-report/internal/report"
	"github.com/jonathan/strategy-report/internal/types"
	"github.com/jonathan/strategy-report/internal/wizard"
	"github.com/jonathan/strategy-report/internal/workflow"
	"github.com/stretchr/testify/assert"
)

func assertBoxed(t *testing.T, out string) {
	t.Helper()
	for _, line := range strings.Split(strings.TrimSuffix(out, "\n"), "\n") {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(line), "line %q", line)
	}
}

func TestPrintStage(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.PrintStage(workflow.Snapshot{
		SubmissionID:     "sub-1",
		EnrichmentStatus: types.EnrichmentApproved,
		AnalysisStatus:   types.AnalysisGenerated,
	}, false)

	out := buf.String()
	assert.Contains(t, out, "SUBMISSION STAGE")
	assert.Contains(t, out, "Admin stage: 4")
	assert.Contains(t, out, "analysis editable")
	assert.Contains(t, out, string(workflow.ActionApproveAnalysis))
	assertBoxed(t, out)
}

func TestPrintConfirmation(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.PrintConfirmation(nil)
	assert.Empty(t, buf.String())

	p.PrintConfirmation(&workflow.Confirmation{
		From: 5, To: 4, Action: workflow.ActionUnlockAnalysis, Direction: workflow.Backward,
		Description: "Desbloqueia a análise", Consequences: []string{"Volta para revisão"}, Destructive: true,
	})
	out := buf.String()
	assert.Contains(t, out, "destructive")
	assert.Contains(t, out, "• Volta para revisão")
	assertBoxed(t, out)
}

func TestPrintPages(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.PrintPages([]report.Page{
		{Number: 1, Title: "Capa"},
		{Number: 4, Title: "Diagnóstico", IsDivider: true},
		{Number: 8, Title: "SWOT", Placeholder: true},
	})
	out := buf.String()
	assert.Contains(t, out, "§  4  Diagnóstico")
	assert.Contains(t, out, "3 pages, 1 placeholders")
	assertBoxed(t, out)
}

func TestPrintAnalysis(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.PrintAnalysis(&types.Analysis{
		ID: "an-1", Version: 2, Status: types.AnalysisGenerated,
		Analysis: types.AnalysisData{Swot: &types.Swot{}},
	})
	out := buf.String()
	assert.Contains(t, out, "Frameworks present: 1/12")
	assert.Contains(t, out, "Análise SWOT")
	assertBoxed(t, out)
}

func TestPrintWizard(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	st := wizard.NewSession("an-1").State()
	st.LastError = "timeout"
	p.PrintWizard(st)
	out := buf.String()
	assert.Contains(t, out, "Step 1/12")
	assert.Contains(t, out, "⚠ timeout")
	assertBoxed(t, out)
}

func TestPrintMoveRejected(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.PrintMoveRejected("")
	assert.Contains(t, buf.String(), "MOVE ALLOWED")
	buf.Reset()
	p.PrintMoveRejected(strings.Repeat("x", 100))
	assert.Contains(t, buf.String(), "...")
	assertBoxed(t, buf.String())
}
