package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonathan/strategy-report/internal/types"
	"github.com/jonathan/strategy-report/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	auth   string
	body   string
}

func newTestServer(t *testing.T, calls *[]recorded) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	record := func(r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		*calls = append(*calls, recorded{r.Method, r.URL.Path, r.Header.Get("Authorization"), string(b)})
	}
	mux.HandleFunc("GET /submissions", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		_, _ = w.Write([]byte(`[{"id":"s1","company_name":"Acme"},{"id":"s2","companyName":"Beta"}]`))
	})
	mux.HandleFunc("GET /submissions/{id}", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		if r.PathValue("id") != "s1" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"id":"s1","company_name":"Acme"}`))
	})
	mux.HandleFunc("GET /submissions/{id}/enrichment", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		if r.PathValue("id") != "s1" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"id":"e1","submission_id":"s1","status":"Approved"}`))
	})
	mux.HandleFunc("GET /submissions/{id}/analysis", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		_, _ = w.Write([]byte(`null`))
	})
	mux.HandleFunc("GET /analyses/{id}", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		_, _ = w.Write([]byte(`{"id":"a1","submission_id":"s1","status":"generated","is_visible_to_user":false,
			"analysis":{"blue_ocean":{"create":["App"]},"okrs":[{"objective":"Crescer"}]}}`))
	})
	mux.HandleFunc("POST /submissions/{id}/stage", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /analyses/{id}/blur", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	})
	mux.HandleFunc("POST /analyses/{id}/access-code", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		_, _ = w.Write([]byte(`{"access_code":"XYZ"}`))
	})
	mux.HandleFunc("PUT /analyses/{id}/content", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		if r.PathValue("id") == "stale" {
			http.Error(w, `{"error":"version conflict"}`, http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /analyses/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPClient_Reads(t *testing.T) {
	var calls []recorded
	srv := newTestServer(t, &calls)
	c, err := NewHTTPClient(srv.URL+"/", "svc")
	require.NoError(t, err)
	ctx := context.Background()

	subs, err := c.ListSubmissions(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "Acme", subs[0].CompanyName)
	assert.Equal(t, "Bearer svc", calls[0].auth)

	_, err = c.GetSubmission(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	e, err := c.GetEnrichment(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, types.EnrichmentApproved, e.Status)

	e, err = c.GetEnrichment(ctx, "s2")
	require.NoError(t, err)
	assert.Nil(t, e, "404 on an optional record is not an error")

	a, err := c.GetSubmissionAnalysis(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, a, "null body means no analysis yet")

	a, err = c.GetAnalysis(ctx, "a1")
	require.NoError(t, err)
	require.NotNil(t, a.Analysis.BlueOcean)
	assert.Equal(t, []string{"App"}, a.Analysis.BlueOcean.Create)
	require.NotNil(t, a.Analysis.OKRs)
	assert.Len(t, a.Analysis.OKRs.Objectives, 1)

	snap, err := Snapshot(ctx, c, "s1")
	require.NoError(t, err)
	assert.Equal(t, workflow.StageAnalysisGeneration, snap.Stage())
}

func TestHTTPClient_Writes(t *testing.T) {
	var calls []recorded
	srv := newTestServer(t, &calls)
	c, err := NewHTTPClient(srv.URL, "")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.ChangeStage(ctx, "s1", workflow.StageAnalysisGeneration))
	last := calls[len(calls)-1]
	assert.Equal(t, "/submissions/s1/stage", last.path)
	assert.JSONEq(t, `{"target_stage":3}`, last.body)
	assert.Empty(t, last.auth)

	err = c.SetBlur(ctx, "a1", true)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.NotErrorIs(t, err, ErrNotFound)

	code, err := c.GenerateAccessCode(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "XYZ", code)

	a := &types.Analysis{ID: "a1", Version: 4, Analysis: types.AnalysisData{BSC: &types.BSC{}}}
	require.NoError(t, c.SaveAnalysis(ctx, a))
	last = calls[len(calls)-1]
	assert.Equal(t, http.MethodPut, last.method)
	assert.Equal(t, "/analyses/a1/content", last.path)
	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(last.body), &sent))
	assert.EqualValues(t, 4, sent["version"])
	assert.EqualValues(t, 3, sent["expected_version"])
	assert.Contains(t, sent, "analysis")
	assert.NotContains(t, sent, "isBlurred", "release flags are not part of a content save")
	assert.NotContains(t, sent, "status")

	err = c.SaveAnalysis(ctx, &types.Analysis{ID: "stale", Version: 2})
	assert.ErrorIs(t, err, ErrVersionConflict)

	require.NoError(t, c.SetAnalysisStatus(ctx, "a1", types.AnalysisGenerated))
	last = calls[len(calls)-1]
	assert.Equal(t, "/analyses/a1/status", last.path)
	assert.JSONEq(t, `{"status":"generated"}`, last.body)
}

func TestNewHTTPClient_InvalidURL(t *testing.T) {
	_, err := NewHTTPClient("localhost:3000", "")
	assert.Error(t, err)
}
