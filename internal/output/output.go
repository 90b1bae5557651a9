package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/scriptseq/scriptseq/internal/core"
)

// Format represents an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Formatter renders generate outcomes and state status.
type Formatter interface {
	FormatOutcome(outcome *core.Outcome) (string, error)
	FormatStatus(status *Status) (string, error)
}

// Status describes the stored record as seen by the status and last commands.
type Status struct {
	Backend       string        `json:"backend"`
	Location      string        `json:"location"`
	Present       bool          `json:"present"`
	Token         string        `json:"token,omitempty"`
	IssuedAt      time.Time     `json:"issued_at,omitzero"`
	NextAllowedAt time.Time     `json:"next_allowed_at,omitzero"`
	Allowed       bool          `json:"allowed"`
	Remaining     time.Duration `json:"-"`
	Cooldown      time.Duration `json:"-"`
}

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatMarkdown), "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// NewFormatter returns a formatter for the requested format. The cooldown is
// quoted in the blocked message.
func NewFormatter(format Format, cooldown time.Duration) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true, Cooldown: cooldown}
	case FormatMarkdown:
		return &MarkdownFormatter{Cooldown: cooldown}
	default:
		return &TableFormatter{Cooldown: cooldown}
	}
}
