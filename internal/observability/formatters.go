// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/strategy-report/internal/report"
	"github.com/jonathan/strategy-report/internal/types"
	"github.com/jonathan/strategy-report/internal/wizard"
	"github.com/jonathan/strategy-report/internal/workflow"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to n runes, ending in "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

// pad right-pads s with spaces to n runes. fmt's width counts bytes only for
// some verbs, so accented text is padded by hand.
func pad(s string, n int) string {
	if c := utf8.RuneCountInString(s); c < n {
		return s + strings.Repeat(" ", n-c)
	}
	return s
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(title, boxWidth-4), boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, boxWidth-4), boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintStage outputs the derived stages, panel gating and legal moves of a submission.
func (p *Printer) PrintStage(snap workflow.Snapshot, blurred bool) {
	stage := snap.Stage()
	vis := workflow.VisibilityFor(stage, blurred)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Submission: %s\n", snap.SubmissionID))
	sb.WriteString(fmt.Sprintf("Enrichment: %s\n", snap.EnrichmentStatus))
	sb.WriteString(fmt.Sprintf("Analysis:   %s (visible: %t)\n", snap.AnalysisStatus, snap.VisibleToUser))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Admin stage: %d  %s\n", stage, stage.Name()))
	user := workflow.UserStageFor(stage)
	sb.WriteString(fmt.Sprintf("User stage:  %d  %s\n", user, user.Name()))
	sb.WriteString("\n")

	flags := []string{}
	if vis.EnrichmentLocked {
		flags = append(flags, "enrichment locked")
	}
	if vis.AnalysisEditable {
		flags = append(flags, "analysis editable")
	}
	if vis.AnalysisVisible {
		flags = append(flags, "released")
	}
	if vis.PremiumVisible {
		flags = append(flags, "premium")
	}
	if len(flags) > 0 {
		sb.WriteString(fmt.Sprintf("[%s]\n\n", strings.Join(flags, ", ")))
	}

	targets := workflow.LegalTargets(stage, snap.EnrichmentStatus, snap.AnalysisStatus)
	if len(targets) == 0 {
		sb.WriteString("No legal moves")
	} else {
		sb.WriteString("Legal moves:\n")
		for _, t := range targets {
			line := fmt.Sprintf("  → %d  %s", t, t.Name())
			if tr := workflow.GetStageTransition(stage, t); tr != nil {
				line += fmt.Sprintf(" (%s)", tr.Action)
			} else {
				line += " (automatic)"
			}
			sb.WriteString(line + "\n")
		}
	}

	p.printBox("SUBMISSION STAGE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintConfirmation outputs the confirmation an admin sees before a stage change.
func (p *Printer) PrintConfirmation(c *workflow.Confirmation) {
	if c == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d → %d  %s (%s)\n", c.From, c.To, c.Action, c.Direction))
	sb.WriteString("\n")
	sb.WriteString(c.Description + "\n")
	for _, cons := range c.Consequences {
		sb.WriteString(fmt.Sprintf("  • %s\n", cons))
	}

	title := "STAGE CHANGE"
	if c.Destructive {
		title = "⚠ STAGE CHANGE (destructive)"
	}
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintPages outputs the rendered page list, marking dividers and placeholders.
func (p *Printer) PrintPages(pages []report.Page) {
	if len(pages) == 0 {
		return
	}

	var sb strings.Builder
	placeholders := 0
	for _, pg := range pages {
		marker := " "
		switch {
		case pg.IsDivider:
			marker = "§"
		case pg.Placeholder:
			marker = "○"
			placeholders++
		}
		sb.WriteString(fmt.Sprintf("%s %2d  %s\n", marker, pg.Number, pg.Title))
	}
	sb.WriteString(fmt.Sprintf("\n%d pages, %d placeholders", len(pages), placeholders))

	p.printBox("REPORT PAGES", sb.String())
}

// PrintAnalysis outputs which framework fragments an analysis carries.
func (p *Printer) PrintAnalysis(a *types.Analysis) {
	if a == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Analysis: %s (v%d)\n", a.ID, a.Version))
	sb.WriteString(fmt.Sprintf("Status:   %s\n", a.Status))
	sb.WriteString(fmt.Sprintf("Blurred:  %t\n", a.IsBlurred))
	sb.WriteString("\n")

	present := a.Analysis.Present()
	sb.WriteString(fmt.Sprintf("Frameworks present: %d/%d\n", len(present), len(types.FrameworkKeys)))
	count := min(len(present), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", present[i].Info().Name))
	}
	if len(present) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(present)-maxItemsToShow))
	}

	p.printBox("ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintWizard outputs the wizard position and approved-step trail.
func (p *Printer) PrintWizard(st wizard.State) {
	var sb strings.Builder
	if st.Completed {
		sb.WriteString(fmt.Sprintf("Completed: %d/%d steps approved\n", len(st.PreviousSteps), st.TotalSteps))
	} else {
		sb.WriteString(fmt.Sprintf("Step %d/%d: %s\n", st.CurrentStep, st.TotalSteps, st.Framework.Name))
		sb.WriteString(fmt.Sprintf("Status:    %s", st.Status))
		if st.IterationCount > 0 {
			sb.WriteString(fmt.Sprintf(" (refined %dx)", st.IterationCount))
		}
		sb.WriteString("\n")
		if st.LastError != "" {
			sb.WriteString(fmt.Sprintf("⚠ %s\n", st.LastError))
		}
	}

	if len(st.PreviousSteps) > 0 {
		sb.WriteString("\nApproved:\n")
		start := max(0, len(st.PreviousSteps)-maxItemsToShow)
		if start > 0 {
			sb.WriteString(fmt.Sprintf("  ... %d earlier\n", start))
		}
		for _, s := range st.PreviousSteps[start:] {
			sb.WriteString(fmt.Sprintf("  ✓ %2d %s\n", s.Step, s.FrameworkName))
		}
	}

	p.printBox("WIZARD", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMoveRejected outputs why a requested stage change was refused.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintMoveRejected(reason string) {
	if reason == "" {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %s │\n", pad("✅ MOVE ALLOWED", boxWidth-4))
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}
	p.printBox("⚠ MOVE REJECTED", reason)
}
