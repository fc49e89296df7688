package sqlite

import (
	"encoding/json"
	"fmt"
)

// marshalTokens encodes a token slice as a JSON array. Nil encodes as
// "[]" so column values are always valid JSON.
func marshalTokens(tokens []string) (string, error) {
	if tokens == nil {
		tokens = []string{}
	}
	data, err := json.Marshal(tokens)
	if err != nil {
		return "", fmt.Errorf("failed to encode tokens: %w", err)
	}
	return string(data), nil
}

// unmarshalTokens decodes a JSON token column. Empty arrays decode to
// nil to keep round-trips comparable to parser output.
func unmarshalTokens(data string) ([]string, error) {
	var tokens []string
	if err := json.Unmarshal([]byte(data), &tokens); err != nil {
		return nil, fmt.Errorf("failed to decode tokens: %w", err)
	}
	if len(tokens) == 0 {
		return nil, nil
	}
	return tokens, nil
}
