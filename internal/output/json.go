package output

import (
	"encoding/json"
	"time"

	"github.com/scriptseq/scriptseq/internal/core"
)

// JSONFormatter renders results as JSON.
type JSONFormatter struct {
	Indent   bool
	Cooldown time.Duration
}

type outcomeDocument struct {
	*core.Outcome
	Message string `json:"message,omitempty"`
}

type statusDocument struct {
	*Status
	CooldownSeconds  int64 `json:"cooldown_seconds"`
	RemainingSeconds int64 `json:"remaining_seconds,omitempty"`
}

// FormatOutcome renders a generate outcome as JSON.
func (f *JSONFormatter) FormatOutcome(outcome *core.Outcome) (string, error) {
	if outcome == nil {
		return "", nil
	}
	return f.marshal(outcomeDocument{Outcome: outcome, Message: OutcomeMessage(outcome, f.Cooldown)})
}

// FormatStatus renders the stored state as JSON.
func (f *JSONFormatter) FormatStatus(status *Status) (string, error) {
	if status == nil {
		return "", nil
	}
	doc := statusDocument{Status: status, CooldownSeconds: int64(status.Cooldown / time.Second)}
	if !status.Allowed && status.Remaining > 0 {
		doc.RemainingSeconds = int64((status.Remaining + time.Second - 1) / time.Second)
	}
	return f.marshal(doc)
}

func (f *JSONFormatter) marshal(value any) (string, error) {
	var (
		data []byte
		err  error
	)

	if f.Indent {
		data, err = json.MarshalIndent(value, "", "  ")
	} else {
		data, err = json.Marshal(value)
	}
	if err != nil {
		return "", err
	}

	return string(data), nil
}
