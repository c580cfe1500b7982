package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/jonathan/strategy-report/internal/schemas"
)

// freeFormKeys hold user data keyed by arbitrary labels. Their keys are kept verbatim.
var freeFormKeys = map[string]bool{
	"scores":       true,
	"answers":      true,
	"humanAnswers": true,
}

// DroppedFramework records a framework fragment discarded at ingestion.
type DroppedFramework struct {
	Key    FrameworkKey `json:"key"`
	Reason string       `json:"reason"`
}

// DecodeResult is the canonical analysis payload plus anything that was dropped.
type DecodeResult struct {
	Data    AnalysisData       `json:"data"`
	Dropped []DroppedFramework `json:"dropped,omitempty"`
}

// CamelCaseKey converts a snake_case key to camelCase. Keys without
// underscores are returned unchanged.
func CamelCaseKey(key string) string {
	if !strings.Contains(key, "_") {
		return key
	}
	parts := strings.Split(key, "_")
	var sb strings.Builder
	first := true
	for _, p := range parts {
		if p == "" {
			continue
		}
		if first {
			sb.WriteString(p)
			first = false
			continue
		}
		r := []rune(p)
		r[0] = unicode.ToUpper(r[0])
		sb.WriteString(string(r))
	}
	if sb.Len() == 0 {
		return key
	}
	return sb.String()
}

// NormalizeKeys walks a decoded JSON tree and renames every snake_case object key
// to camelCase. When both spellings are present the camelCase value wins.
func NormalizeKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if CamelCaseKey(k) == k {
				out[k] = normalizeValue(k, val)
			}
		}
		for k, val := range t {
			ck := CamelCaseKey(k)
			if ck == k {
				continue
			}
			if _, exists := out[ck]; exists {
				continue
			}
			out[ck] = normalizeValue(ck, val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = NormalizeKeys(val)
		}
		return out
	default:
		return v
	}
}

func normalizeValue(key string, val any) any {
	if freeFormKeys[key] {
		return val
	}
	return NormalizeKeys(val)
}

func decodeTree(raw []byte) (map[string]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return map[string]any{}, nil
	}
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	obj, ok := NormalizeKeys(tree).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a JSON object")
	}
	return obj, nil
}

// DecodeAnalysisData is the ingestion boundary for framework payloads. Each
// fragment is validated against its schema; invalid fragments are dropped and
// reported instead of failing the whole document.
func DecodeAnalysisData(raw []byte) (DecodeResult, error) {
	tree, err := decodeTree(raw)
	if err != nil {
		return DecodeResult{}, err
	}
	return decodeFrameworks(tree), nil
}

func decodeFrameworks(tree map[string]any) DecodeResult {
	var res DecodeResult
	for _, key := range FrameworkKeys {
		fragment, ok := tree[string(key)]
		if !ok || fragment == nil {
			continue
		}
		b, err := json.Marshal(fragment)
		if err != nil {
			res.Dropped = append(res.Dropped, DroppedFramework{Key: key, Reason: err.Error()})
			continue
		}
		if err := schemas.ValidateFramework(string(key), b); err != nil {
			res.Dropped = append(res.Dropped, DroppedFramework{Key: key, Reason: strings.TrimSpace(err.Error())})
			continue
		}
		f, err := NewFramework(key)
		if err != nil {
			continue
		}
		if err := json.Unmarshal(b, f); err != nil {
			res.Dropped = append(res.Dropped, DroppedFramework{Key: key, Reason: err.Error()})
			continue
		}
		res.Data.Set(f)
	}
	return res
}

// DecodeAnalysis normalizes a full analysis record. The nested framework payload
// goes through the same per-fragment validation as DecodeAnalysisData.
func DecodeAnalysis(raw []byte) (*Analysis, []DroppedFramework, error) {
	tree, err := decodeTree(raw)
	if err != nil {
		return nil, nil, err
	}
	var frameworks map[string]any
	if inner, ok := tree["analysis"].(map[string]any); ok {
		frameworks = inner
	}
	delete(tree, "analysis")

	b, err := json.Marshal(tree)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode analysis: %w", err)
	}
	var a Analysis
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, nil, fmt.Errorf("failed to decode analysis: %w", err)
	}
	a.Status = ParseAnalysisStatus(string(a.Status))

	res := decodeFrameworks(frameworks)
	a.Analysis = res.Data
	return &a, res.Dropped, nil
}

// DecodeEnrichment normalizes an enrichment record.
func DecodeEnrichment(raw []byte) (*Enrichment, error) {
	var e Enrichment
	if err := decodeInto(raw, &e); err != nil {
		return nil, fmt.Errorf("failed to decode enrichment: %w", err)
	}
	e.Status = ParseEnrichmentStatus(string(e.Status))
	return &e, nil
}

// DecodeSubmission normalizes a submission record.
func DecodeSubmission(raw []byte) (*Submission, error) {
	var s Submission
	if err := decodeInto(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to decode submission: %w", err)
	}
	return &s, nil
}

func decodeInto(raw []byte, dst any) error {
	tree, err := decodeTree(raw)
	if err != nil {
		return err
	}
	b, err := json.Marshal(tree)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}
