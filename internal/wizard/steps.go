// Package wizard sequences the twelve framework steps of a guided analysis:
// each step is generated, optionally refined, then approved before the next
// one starts.
package wizard

import (
	"fmt"

	"github.com/jonathan/strategy-report/internal/types"
)

// Steps is the wizard order. Synthesis comes last because it reads every
// other framework.
var Steps = []types.FrameworkKey{
	types.FrameworkPestel,
	types.FrameworkPorter,
	types.FrameworkSwot,
	types.FrameworkTamSamSom,
	types.FrameworkBenchmarking,
	types.FrameworkBlueOcean,
	types.FrameworkGrowthHacking,
	types.FrameworkScenarios,
	types.FrameworkOKRs,
	types.FrameworkBSC,
	types.FrameworkDecisionMatrix,
	types.FrameworkSynthesis,
}

// TotalSteps is len(Steps).
var TotalSteps = len(Steps)

// StepStatus is the state of the current step.
type StepStatus string

// Step statuses. Approved is terminal for a step.
const (
	StatusPending    StepStatus = "pending"
	StatusGenerating StepStatus = "generating"
	StatusGenerated  StepStatus = "generated"
	StatusApproved   StepStatus = "approved"
	StatusFailed     StepStatus = "failed"
)

// FrameworkForStep maps a 1-based step number onto its framework.
func FrameworkForStep(step int) (types.FrameworkKey, error) {
	if step < 1 || step > TotalSteps {
		return "", &StepRangeError{Step: step}
	}
	return Steps[step-1], nil
}

// StepRangeError reports a step number outside 1..TotalSteps.
type StepRangeError struct {
	Step int
}

func (e *StepRangeError) Error() string {
	return fmt.Sprintf("step %d out of range (1-%d)", e.Step, TotalSteps)
}
