package wizard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/strategy-report/internal/types"
)

// DefaultGenerationTimeout bounds a single call to the generation service.
const DefaultGenerationTimeout = 5 * time.Minute

// HTTPError is a non-2xx response from the generation service.
type HTTPError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("generation service %s returned HTTP %d: %s", e.URL, e.StatusCode, e.Body)
}

// HTTPGenerator calls an external generation service over JSON.
type HTTPGenerator struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPGenerator creates a generator for the service at baseURL.
func NewHTTPGenerator(baseURL, token string, timeout time.Duration) (*HTTPGenerator, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid generation URL %q", baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultGenerationTimeout
	}
	return &HTTPGenerator{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

type generateBody struct {
	Step         int               `json:"step"`
	HumanContext string            `json:"humanContext,omitempty"`
	HumanAnswers map[string]string `json:"humanAnswers,omitempty"`
}

type refineBody struct {
	Step              int    `json:"step"`
	AdditionalContext string `json:"additionalContext"`
}

type stepResponse struct {
	Framework string          `json:"framework"`
	Output    json.RawMessage `json:"output"`
}

// Generate implements Generator.
func (g *HTTPGenerator) Generate(ctx context.Context, analysisID string, step int, humanContext string, answers map[string]string) (types.Framework, error) {
	key, err := FrameworkForStep(step)
	if err != nil {
		return nil, err
	}
	body, err := g.post(ctx, analysisID, "generate", generateBody{Step: step, HumanContext: humanContext, HumanAnswers: answers})
	if err != nil {
		return nil, err
	}
	return decodeResponse(key, body)
}

// Refine implements Generator.
func (g *HTTPGenerator) Refine(ctx context.Context, analysisID string, step int, additionalContext string) (types.Framework, error) {
	key, err := FrameworkForStep(step)
	if err != nil {
		return nil, err
	}
	body, err := g.post(ctx, analysisID, "refine", refineBody{Step: step, AdditionalContext: additionalContext})
	if err != nil {
		return nil, err
	}
	return decodeResponse(key, body)
}

// Approve implements Generator.
func (g *HTTPGenerator) Approve(ctx context.Context, analysisID string, step int) error {
	_, err := g.post(ctx, analysisID, "approve", map[string]int{"step": step})
	return err
}

func decodeResponse(key types.FrameworkKey, body []byte) (types.Framework, error) {
	var resp stepResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse generation response: %w", err)
	}
	if resp.Framework != "" {
		if got, ok := types.ParseFrameworkKey(resp.Framework); ok && got != key {
			return nil, fmt.Errorf("generation service returned %s for step %s", got, key)
		}
	}
	if len(resp.Output) == 0 {
		return nil, fmt.Errorf("generation response has no output")
	}
	return decodeStepOutput(key, resp.Output)
}

func (g *HTTPGenerator) post(ctx context.Context, analysisID, action string, payload any) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/wizard/%s/%s", g.baseURL, url.PathEscape(analysisID), action)

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generation request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read generation response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{URL: endpoint, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return data, nil
}
