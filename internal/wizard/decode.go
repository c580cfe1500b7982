package wizard

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/strategy-report/internal/types"
)

// decodeStepOutput runs generator output through the normalization boundary.
// raw may be wrapped in its framework key or be the bare fragment.
func decodeStepOutput(key types.FrameworkKey, raw []byte) (types.Framework, error) {
	if wrapped(raw) {
		res, err := types.DecodeAnalysisData(raw)
		if err == nil {
			if f := res.Data.Get(key); f != nil {
				return f, nil
			}
			if reason, dropped := droppedReason(res, key); dropped {
				return nil, fmt.Errorf("output for %s does not match its schema: %s", key, reason)
			}
		}
	}

	wrapped, err := json.Marshal(map[string]json.RawMessage{string(key): raw})
	if err != nil {
		return nil, fmt.Errorf("decode %s output: %w", key, err)
	}
	res, err := types.DecodeAnalysisData(wrapped)
	if err != nil {
		return nil, fmt.Errorf("decode %s output: %w", key, err)
	}
	if f := res.Data.Get(key); f != nil {
		return f, nil
	}
	reason, _ := droppedReason(res, key)
	return nil, fmt.Errorf("output for %s does not match its schema: %s", key, reason)
}

// wrapped reports whether raw is an object keyed only by framework keys.
// {"scenarios":[...],"risks":[...]} is a bare scenarios fragment.
func wrapped(raw []byte) bool {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || len(obj) == 0 {
		return false
	}
	for k := range obj {
		if !types.FrameworkKey(types.CamelCaseKey(k)).Valid() {
			return false
		}
	}
	return true
}

func droppedReason(res types.DecodeResult, key types.FrameworkKey) (string, bool) {
	for _, d := range res.Dropped {
		if d.Key == key {
			return d.Reason, true
		}
	}
	return "", false
}
