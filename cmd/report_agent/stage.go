package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jonathan/strategy-report/internal/backend"
	"github.com/jonathan/strategy-report/internal/observability"
	"github.com/jonathan/strategy-report/internal/workflow"
	"github.com/spf13/cobra"
)

var (
	stageSeed   string
	stageTarget int
	stageYes    bool
)

var stageCmd = &cobra.Command{
	Use:   "stage <submission-id>",
	Short: "Show or change the admin stage of a submission",
	Long: `Print the computed stage, panel visibility and legal moves of a submission.

With --to, print the confirmation for the move; add --yes to apply it.`,
	Args: cobra.ExactArgs(1),
	RunE: runStage,
}

func init() {
	stageCmd.Flags().StringVar(&stageSeed, "seed", "", "Use an in-memory backend loaded from this seed JSON file")
	stageCmd.Flags().IntVar(&stageTarget, "to", 0, "Target admin stage (1-6)")
	stageCmd.Flags().BoolVarP(&stageYes, "yes", "y", false, "Apply the move without asking")
	rootCmd.AddCommand(stageCmd)
}

func runStage(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()
	be, err := openBackend(ctx, cfg, stageSeed)
	if err != nil {
		return err
	}
	defer be.close()

	return changeStage(ctx, be.store, os.Stdout, args[0], workflow.AdminStage(stageTarget), stageYes, cfg.StageChangeTimeout())
}

// changeStage prints the stage of id and, when target is set, previews or
// applies the move.
func changeStage(ctx context.Context, b backend.Backend, out io.Writer, id string, target workflow.AdminStage, apply bool, timeout time.Duration) error {
	p := observability.NewPrinter(out)
	snap, err := backend.Snapshot(ctx, b, id)
	if err != nil {
		return err
	}
	analysis, err := b.GetSubmissionAnalysis(ctx, id)
	if err != nil {
		return err
	}
	blurred := analysis != nil && analysis.IsBlurred
	p.PrintStage(snap, blurred)
	if target == 0 {
		return nil
	}

	ctrl := workflow.NewController(snap, workflow.WithTimeout(timeout))
	if reason, ok := ctrl.Select(target); !ok {
		p.PrintMoveRejected(reason)
		return &workflow.MoveRejectedError{From: snap.Stage(), To: target, Reason: reason}
	}
	conf, err := ctrl.Apply()
	if errors.Is(err, workflow.ErrAutomaticTransition) {
		return fmt.Errorf("stage %d is reached automatically from stage %d", target, snap.Stage())
	}
	if err != nil {
		return err
	}
	p.PrintConfirmation(conf)
	if !apply {
		_, _ = fmt.Fprintln(out, "Dry run: pass --yes to apply")
		return nil
	}

	if err := ctrl.Confirm(ctx, b); err != nil {
		return err
	}
	fresh, err := backend.Snapshot(ctx, b, id)
	if err != nil {
		return err
	}
	p.PrintStage(fresh, blurred)
	return nil
}
