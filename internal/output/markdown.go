package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/scriptseq/scriptseq/internal/core"
)

// MarkdownFormatter renders results as a markdown table.
type MarkdownFormatter struct {
	Cooldown time.Duration
}

// FormatOutcome renders a generate outcome as Markdown.
func (f *MarkdownFormatter) FormatOutcome(outcome *core.Outcome) (string, error) {
	if outcome == nil {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("## Script sequence\n\n")
	if message := OutcomeMessage(outcome, f.Cooldown); message != "" {
		sb.WriteString(fmt.Sprintf("> %s\n\n", escapeMarkdownCell(message)))
	}

	sb.WriteString("| Status | Sequence | Issued | Next Allowed |\n")
	sb.WriteString("|--------|----------|--------|--------------|\n")

	sequence := "-"
	if outcome.Token != "" {
		sequence = "`" + outcome.Token + "`"
	}
	sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
		escapeMarkdownCell(statusLabel(outcome.Kind)),
		sequence,
		escapeMarkdownCell(formatTime(outcome.IssuedAt)),
		escapeMarkdownCell(formatTime(outcome.NextAllowedAt)),
	))

	return sb.String(), nil
}

// FormatStatus renders the stored state as Markdown.
func (f *MarkdownFormatter) FormatStatus(status *Status) (string, error) {
	if status == nil {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("## Sequence state\n\n")
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")

	rows := [][2]string{
		{"Backend", status.Backend},
		{"Location", status.Location},
	}
	if status.Present {
		generate := "allowed"
		if !status.Allowed {
			generate = fmt.Sprintf("blocked (%s remaining)", Remaining(status.Remaining))
		}
		rows = append(rows,
			[2]string{"Last sequence", "`" + status.Token + "`"},
			[2]string{"Issued", formatTime(status.IssuedAt)},
			[2]string{"Next allowed", formatTime(status.NextAllowedAt)},
			[2]string{"Generate", generate},
		)
	} else {
		rows = append(rows, [2]string{"Last sequence", "none"}, [2]string{"Generate", "allowed"})
	}

	for _, row := range rows {
		value := row[1]
		if !strings.HasPrefix(value, "`") {
			value = escapeMarkdownCell(value)
		}
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", row[0], value))
	}
	return sb.String(), nil
}
