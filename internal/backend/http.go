package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/strategy-report/internal/types"
	"github.com/jonathan/strategy-report/internal/workflow"
)

// DefaultTimeout is the per-request timeout of the REST adapter.
const DefaultTimeout = 30 * time.Second

// APIError is a non-2xx response from the backend.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend %s %s: HTTP %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// Unwrap maps 404 onto ErrNotFound and 409 onto ErrVersionConflict.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrVersionConflict
	}
	return nil
}

// HTTPClient implements Backend over the backend's REST API. Every payload
// passes through the types normalization boundary.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPClient creates a REST adapter for baseURL authenticated with a
// service bearer token.
func NewHTTPClient(baseURL, token string) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid backend URL %q", baseURL)
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: DefaultTimeout},
	}, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	endpoint := c.baseURL + path

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 20<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read backend response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Method: method, URL: endpoint, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return data, nil
}

// optional turns a 404 or an empty body into a nil result.
func optional(data []byte, err error) ([]byte, error) {
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	return data, nil
}

// ListSubmissions implements Backend.
func (c *HTTPClient) ListSubmissions(ctx context.Context) ([]types.Submission, error) {
	data, err := c.do(ctx, http.MethodGet, "/submissions", nil)
	if err != nil {
		return nil, err
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse submissions: %w", err)
	}
	out := make([]types.Submission, 0, len(raw))
	for _, r := range raw {
		s, err := types.DecodeSubmission(r)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, nil
}

// GetSubmission implements Backend.
func (c *HTTPClient) GetSubmission(ctx context.Context, id string) (*types.Submission, error) {
	data, err := c.do(ctx, http.MethodGet, "/submissions/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return types.DecodeSubmission(data)
}

// GetEnrichment implements Backend.
func (c *HTTPClient) GetEnrichment(ctx context.Context, submissionID string) (*types.Enrichment, error) {
	data, err := optional(c.do(ctx, http.MethodGet, "/submissions/"+url.PathEscape(submissionID)+"/enrichment", nil))
	if err != nil || data == nil {
		return nil, err
	}
	return types.DecodeEnrichment(data)
}

// GetSubmissionAnalysis implements Backend.
func (c *HTTPClient) GetSubmissionAnalysis(ctx context.Context, submissionID string) (*types.Analysis, error) {
	data, err := optional(c.do(ctx, http.MethodGet, "/submissions/"+url.PathEscape(submissionID)+"/analysis", nil))
	if err != nil || data == nil {
		return nil, err
	}
	return decodeAnalysis(data)
}

// GetAnalysis implements Backend.
func (c *HTTPClient) GetAnalysis(ctx context.Context, id string) (*types.Analysis, error) {
	data, err := c.do(ctx, http.MethodGet, "/analyses/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeAnalysis(data)
}

// GetAnalysisByAccessCode implements Backend.
func (c *HTTPClient) GetAnalysisByAccessCode(ctx context.Context, code string) (*types.Analysis, error) {
	data, err := c.do(ctx, http.MethodGet, "/access-codes/"+url.PathEscape(code)+"/analysis", nil)
	if err != nil {
		return nil, err
	}
	return decodeAnalysis(data)
}

func decodeAnalysis(data []byte) (*types.Analysis, error) {
	a, dropped, err := types.DecodeAnalysis(data)
	if err != nil {
		return nil, err
	}
	for _, d := range dropped {
		log.Printf("[backend] analysis %s: dropped %s: %s", a.ID, d.Key, d.Reason)
	}
	return a, nil
}

// ChangeStage implements Backend.
func (c *HTTPClient) ChangeStage(ctx context.Context, submissionID string, target workflow.AdminStage) error {
	_, err := c.do(ctx, http.MethodPost, "/submissions/"+url.PathEscape(submissionID)+"/stage", map[string]int{"target_stage": int(target)})
	return err
}

// SetBlur implements Backend.
func (c *HTTPClient) SetBlur(ctx context.Context, analysisID string, blurred bool) error {
	_, err := c.do(ctx, http.MethodPost, "/analyses/"+url.PathEscape(analysisID)+"/blur", map[string]bool{"blurred": blurred})
	return err
}

// GenerateAccessCode implements Backend.
func (c *HTTPClient) GenerateAccessCode(ctx context.Context, analysisID string) (string, error) {
	data, err := c.do(ctx, http.MethodPost, "/analyses/"+url.PathEscape(analysisID)+"/access-code", nil)
	if err != nil {
		return "", err
	}
	var resp struct {
		Code       string `json:"code"`
		AccessCode string `json:"access_code"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("failed to parse access code: %w", err)
	}
	code := resp.Code
	if code == "" {
		code = resp.AccessCode
	}
	if code == "" {
		return "", fmt.Errorf("backend returned an empty access code")
	}
	return code, nil
}

// SaveAnalysis implements Backend. The backend answers 409 when the stored
// version is not the one this edit started from.
func (c *HTTPClient) SaveAnalysis(ctx context.Context, analysis *types.Analysis) error {
	_, err := c.do(ctx, http.MethodPut, "/analyses/"+url.PathEscape(analysis.ID)+"/content", map[string]any{
		"version":          analysis.Version,
		"expected_version": analysis.Version - 1,
		"analysis":         &analysis.Analysis,
	})
	return err
}

// SetAnalysisStatus implements Backend.
func (c *HTTPClient) SetAnalysisStatus(ctx context.Context, analysisID string, status types.AnalysisStatus) error {
	_, err := c.do(ctx, http.MethodPost, "/analyses/"+url.PathEscape(analysisID)+"/status", map[string]string{"status": string(status)})
	return err
}
