package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/scriptseq/scriptseq/internal/core"
)

const timestampLayout = "2006-01-02 15:04:05 MST"

// BlockedMessage explains why a cached sequence was returned.
func BlockedMessage(cooldown time.Duration) string {
	return fmt.Sprintf("You cannot generate script sequence more than once within a span of %s. Your last generated sequence is shown below", HumanDuration(cooldown))
}

// OutcomeMessage is the user-facing line accompanying an outcome.
func OutcomeMessage(outcome *core.Outcome, cooldown time.Duration) string {
	if outcome == nil {
		return ""
	}
	switch outcome.Kind {
	case core.OutcomeBlocked:
		return BlockedMessage(cooldown)
	case core.OutcomeError:
		if outcome.Err != nil {
			return outcome.Err.Message
		}
		return "Sequence generation failed"
	default:
		return ""
	}
}

// HumanDuration renders whole hours and minutes in words and falls back to
// Go duration syntax otherwise.
func HumanDuration(d time.Duration) string {
	if d <= 0 {
		return "0 seconds"
	}
	switch {
	case d%time.Hour == 0:
		return plural(int64(d/time.Hour), "hour")
	case d%time.Minute == 0:
		return plural(int64(d/time.Minute), "minute")
	case d%time.Second == 0:
		return plural(int64(d/time.Second), "second")
	default:
		return d.String()
	}
}

// Remaining renders a wait rounded up to the minute.
func Remaining(d time.Duration) string {
	if d <= 0 {
		return "now"
	}
	rounded := (d + time.Minute - 1).Truncate(time.Minute)
	hours := int64(rounded / time.Hour)
	minutes := int64((rounded % time.Hour) / time.Minute)
	parts := make([]string, 0, 2)
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	return strings.Join(parts, " ")
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timestampLayout)
}

func statusLabel(kind core.OutcomeKind) string {
	switch kind {
	case core.OutcomeGenerated:
		return "generated"
	case core.OutcomeBlocked:
		return "cached"
	case core.OutcomeError:
		return "failed"
	default:
		return string(kind)
	}
}

func errorKindLabel(outcome *core.Outcome) string {
	if outcome == nil || outcome.Err == nil {
		return ""
	}
	return strings.ReplaceAll(string(outcome.Err.Kind), "_", " ")
}

func escapeMarkdownCell(value string) string {
	value = strings.ReplaceAll(value, "|", "\\|")
	value = strings.ReplaceAll(value, "\n", " ")
	return value
}
