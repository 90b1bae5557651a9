package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/ascii"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/scriptseq/scriptseq/internal/core"
)

// TableFormatter renders results as an ASCII table.
type TableFormatter struct {
	Cooldown time.Duration
}

// FormatOutcome renders a generate outcome as a table, preceded by the
// outcome message when there is one.
func (f *TableFormatter) FormatOutcome(outcome *core.Outcome) (string, error) {
	if outcome == nil {
		return "", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Status", "Sequence", "Issued", "Next Allowed"})

	sequence := outcome.Token
	if sequence == "" {
		sequence = "-"
	}
	t.AppendRow(table.Row{
		statusLabel(outcome.Kind),
		sequence,
		formatTime(outcome.IssuedAt),
		formatTime(outcome.NextAllowedAt),
	})

	if outcome.Err != nil {
		t.AppendFooter(table.Row{errorKindLabel(outcome), "", "", ""})
	}

	var sb strings.Builder
	if message := OutcomeMessage(outcome, f.Cooldown); message != "" {
		sb.WriteString(message)
		sb.WriteString("\n")
	}
	sb.WriteString(t.Render())
	return sb.String(), nil
}

// FormatStatus renders the stored state inside a box.
func (f *TableFormatter) FormatStatus(status *Status) (string, error) {
	if status == nil {
		return "", nil
	}

	lines := []string{
		"Sequence State",
		"",
		fmt.Sprintf("Backend:       %s", status.Backend),
		fmt.Sprintf("Location:      %s", status.Location),
	}

	if !status.Present {
		lines = append(lines, "Last sequence: none", "Generate:      allowed")
		return ascii.DrawBox(strings.Join(lines, "\n"), 0), nil
	}

	lines = append(lines,
		fmt.Sprintf("Last sequence: %s", status.Token),
		fmt.Sprintf("Issued:        %s", formatTime(status.IssuedAt)),
		fmt.Sprintf("Next allowed:  %s", formatTime(status.NextAllowedAt)),
	)
	if status.Allowed {
		lines = append(lines, "Generate:      allowed")
	} else {
		lines = append(lines, fmt.Sprintf("Generate:      blocked (%s remaining)", Remaining(status.Remaining)))
	}
	return ascii.DrawBox(strings.Join(lines, "\n"), 0), nil
}
