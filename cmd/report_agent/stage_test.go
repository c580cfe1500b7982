package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/jonathan/strategy-report/internal/backend"
	"github.com/jonathan/strategy-report/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeStage_PrintOnly(t *testing.T) {
	m, err := backend.LoadSeed(testSeedPath)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, changeStage(context.Background(), m, &out, "sub-2", 0, false, time.Second))
	assert.Contains(t, out.String(), "approve_analysis")
}

func TestChangeStage_DryRun(t *testing.T) {
	m, err := backend.LoadSeed(testSeedPath)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, changeStage(context.Background(), m, &out, "sub-1", workflow.StageAnalysisGeneration, false, time.Second))
	assert.Contains(t, out.String(), "Dry run")

	snap, err := backend.Snapshot(context.Background(), m, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, workflow.StageEnrichmentReview, snap.Stage())
}

func TestChangeStage_Apply(t *testing.T) {
	m, err := backend.LoadSeed(testSeedPath)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, changeStage(context.Background(), m, &out, "sub-1", workflow.StageAnalysisGeneration, true, time.Second))

	snap, err := backend.Snapshot(context.Background(), m, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, workflow.StageAnalysisGeneration, snap.Stage())
}

func TestChangeStage_Rejected(t *testing.T) {
	m, err := backend.LoadSeed(testSeedPath)
	require.NoError(t, err)

	var out bytes.Buffer
	err = changeStage(context.Background(), m, &out, "sub-1", workflow.StageReleased, true, time.Second)
	var rejected *workflow.MoveRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, workflow.StageEnrichmentReview, rejected.From)
	assert.NotEmpty(t, rejected.Reason)
}

func TestChangeStage_UnknownSubmission(t *testing.T) {
	m, err := backend.LoadSeed(testSeedPath)
	require.NoError(t, err)
	err = changeStage(context.Background(), m, &bytes.Buffer{}, "nope", 0, false, time.Second)
	assert.ErrorIs(t, err, backend.ErrNotFound)
}
