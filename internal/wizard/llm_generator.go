package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/jonathan/strategy-report/internal/llm"
	"github.com/jonathan/strategy-report/internal/prompts"
	"github.com/jonathan/strategy-report/internal/types"
)

// Store is the slice of the backend the LLM generator reads and writes.
type Store interface {
	GetSubmission(ctx context.Context, id string) (*types.Submission, error)
	GetAnalysis(ctx context.Context, id string) (*types.Analysis, error)
	SaveAnalysis(ctx context.Context, analysis *types.Analysis) error
	SetAnalysisStatus(ctx context.Context, analysisID string, status types.AnalysisStatus) error
}

type draft struct {
	step   int
	prompt string
	raw    string
	output types.Framework
}

// LLMGenerator generates framework steps with an LLM client. Drafts are kept
// in memory until approved, then merged into the stored analysis.
type LLMGenerator struct {
	client llm.Client
	store  Store

	mu     sync.Mutex
	drafts map[string]*draft
}

// NewLLMGenerator creates a generator backed by client and store.
func NewLLMGenerator(client llm.Client, store Store) *LLMGenerator {
	return &LLMGenerator{client: client, store: store, drafts: make(map[string]*draft)}
}

// Generate implements Generator.
func (g *LLMGenerator) Generate(ctx context.Context, analysisID string, step int, humanContext string, answers map[string]string) (types.Framework, error) {
	key, err := FrameworkForStep(step)
	if err != nil {
		return nil, err
	}
	analysis, err := g.store.GetAnalysis(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	submission, err := g.store.GetSubmission(ctx, analysis.SubmissionID)
	if err != nil {
		return nil, err
	}

	previous, err := previousOutput(&analysis.Analysis)
	if err != nil {
		return nil, err
	}
	prompt, err := prompts.Framework(string(key), map[string]string{
		"CompanyName":    submission.CompanyName,
		"Industry":       orNone(submission.Industry),
		"StrategicGoal":  orNone(submission.StrategicGoal),
		"HumanContext":   orNone(humanContext),
		"HumanAnswers":   formatAnswers(answers),
		"PreviousOutput": previous,
	})
	if err != nil {
		return nil, err
	}
	return g.run(ctx, analysisID, step, key, prompt)
}

// Refine implements Generator. It needs a draft from an earlier Generate.
func (g *LLMGenerator) Refine(ctx context.Context, analysisID string, step int, additionalContext string) (types.Framework, error) {
	key, err := FrameworkForStep(step)
	if err != nil {
		return nil, err
	}
	d, ok := g.draft(analysisID, step)
	if !ok {
		return nil, fmt.Errorf("no draft to refine for analysis %s step %d", analysisID, step)
	}
	tmpl, err := prompts.Get(prompts.WizardFile, "refine")
	if err != nil {
		return nil, err
	}
	prompt := prompts.Format(tmpl, map[string]string{
		"Prompt":            d.prompt,
		"AdditionalContext": additionalContext,
		"PreviousVersion":   d.raw,
	})
	return g.run(ctx, analysisID, step, key, prompt)
}

// Approve implements Generator by merging the draft into the analysis.
func (g *LLMGenerator) Approve(ctx context.Context, analysisID string, step int) error {
	d, ok := g.draft(analysisID, step)
	if !ok {
		return fmt.Errorf("no draft to approve for analysis %s step %d", analysisID, step)
	}
	analysis, err := g.store.GetAnalysis(ctx, analysisID)
	if err != nil {
		return err
	}
	analysis.Analysis.Set(d.output)
	analysis.Version++
	if err := g.store.SaveAnalysis(ctx, analysis); err != nil {
		return err
	}

	next := analysis.Status
	if step == TotalSteps {
		next = types.AnalysisGenerated
	} else if next == types.AnalysisPending || next == types.AnalysisFailed {
		next = types.AnalysisGenerating
	}
	if next != analysis.Status {
		if err := g.store.SetAnalysisStatus(ctx, analysisID, next); err != nil {
			return err
		}
		log.Printf("[wizard] analysis %s is now %s", analysisID, next)
	}

	g.mu.Lock()
	delete(g.drafts, analysisID)
	g.mu.Unlock()
	return nil
}

func (g *LLMGenerator) run(ctx context.Context, analysisID string, step int, key types.FrameworkKey, prompt string) (types.Framework, error) {
	raw, err := g.client.GenerateJSON(ctx, prompt, llm.TierFor(key))
	if errors.Is(err, llm.ErrTruncated) {
		log.Printf("[wizard] %s output for analysis %s hit the token limit", key, analysisID)
	}
	if err != nil {
		return nil, err
	}
	raw = llm.CleanJSONBlock(raw)
	out, err := decodeStepOutput(key, []byte(raw))
	if err != nil {
		log.Printf("[wizard] discarding %s output for analysis %s: %v", key, analysisID, err)
		return nil, err
	}

	g.mu.Lock()
	g.drafts[analysisID] = &draft{step: step, prompt: prompt, raw: raw, output: out}
	g.mu.Unlock()
	return out, nil
}

func (g *LLMGenerator) draft(analysisID string, step int) (*draft, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	d, ok := g.drafts[analysisID]
	if !ok || d.step != step {
		return nil, false
	}
	return d, true
}

func previousOutput(data *types.AnalysisData) (string, error) {
	if len(data.Present()) == 0 {
		return "Nenhuma", nil
	}
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func formatAnswers(answers map[string]string) string {
	if len(answers) == 0 {
		return "Nenhuma"
	}
	keys := make([]string, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "- %s: %s\n", k, answers[k])
	}
	return strings.TrimRight(sb.String(), "\n")
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Nenhum"
	}
	return s
}
