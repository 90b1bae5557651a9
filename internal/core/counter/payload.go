package counter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/scriptseq/scriptseq/internal/core"
)

// DecodePayload accepts the two shapes the counter has been seen to emit:
// a serialized tuple {"Item1": 42, "Item2": "abc"} or a pair [42, "abc"].
func DecodePayload(body []byte) (*core.CounterResponse, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedPayload)
	}

	var (
		id    int64
		token string
	)

	switch trimmed[0] {
	case '[':
		var pair []json.RawMessage
		if err := json.Unmarshal(trimmed, &pair); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		if len(pair) != 2 {
			return nil, fmt.Errorf("%w: expected 2 elements, found %d", ErrMalformedPayload, len(pair))
		}
		if err := json.Unmarshal(pair[0], &id); err != nil {
			return nil, fmt.Errorf("%w: numeric id: %v", ErrMalformedPayload, err)
		}
		if err := json.Unmarshal(pair[1], &token); err != nil {
			return nil, fmt.Errorf("%w: token: %v", ErrMalformedPayload, err)
		}
	case '{':
		var tuple struct {
			Item1 *int64  `json:"Item1"`
			Item2 *string `json:"Item2"`
		}
		if err := json.Unmarshal(trimmed, &tuple); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		if tuple.Item1 == nil || tuple.Item2 == nil {
			return nil, fmt.Errorf("%w: Item1 and Item2 are required", ErrMalformedPayload)
		}
		id, token = *tuple.Item1, *tuple.Item2
	default:
		return nil, fmt.Errorf("%w: unexpected content %q", ErrMalformedPayload, preview(trimmed))
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: token is empty", ErrMalformedPayload)
	}

	return &core.CounterResponse{NumericID: id, Token: token}, nil
}

func preview(body []byte) string {
	const limit = 64
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit]) + "..."
}
