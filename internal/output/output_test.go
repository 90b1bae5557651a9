package output

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/scriptseq/scriptseq/internal/core"
)

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("table")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	format, err = ParseFormat("JSON")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, format)

	format, err = ParseFormat("md")
	require.NoError(t, err)
	require.Equal(t, FormatMarkdown, format)

	format, err = ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	_, err = ParseFormat("csv")
	require.Error(t, err)
}

func TestBlockedMessage(t *testing.T) {
	require.Equal(t,
		"You cannot generate script sequence more than once within a span of 24 hours. Your last generated sequence is shown below",
		BlockedMessage(24*time.Hour),
	)
	require.Contains(t, BlockedMessage(time.Hour), "span of 1 hour.")
	require.Contains(t, BlockedMessage(90*time.Minute), "span of 90 minutes.")
}

func TestHumanDuration(t *testing.T) {
	require.Equal(t, "24 hours", HumanDuration(24*time.Hour))
	require.Equal(t, "1 minute", HumanDuration(time.Minute))
	require.Equal(t, "45 seconds", HumanDuration(45*time.Second))
	require.Equal(t, "1.5s", HumanDuration(1500*time.Millisecond))
	require.Equal(t, "0 seconds", HumanDuration(0))
}

func TestRemaining(t *testing.T) {
	require.Equal(t, "now", Remaining(0))
	require.Equal(t, "1 minute", Remaining(5*time.Second))
	require.Equal(t, "12 hours", Remaining(12*time.Hour))
	require.Equal(t, "3 hours 15 minutes", Remaining(3*time.Hour+14*time.Minute+30*time.Second))
}

func sampleOutcomes() map[string]*core.Outcome {
	issued := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	return map[string]*core.Outcome{
		"generated": {
			InvocationID:  "inv-generated",
			Kind:          core.OutcomeGenerated,
			Token:         "42-abc.sql",
			IssuedAt:      issued,
			NextAllowedAt: issued.Add(24 * time.Hour),
		},
		"blocked": {
			InvocationID:  "inv-blocked",
			Kind:          core.OutcomeBlocked,
			Token:         "42-abc.sql",
			IssuedAt:      issued,
			NextAllowedAt: issued.Add(24 * time.Hour),
		},
		"error": {
			InvocationID: "inv-error",
			Kind:         core.OutcomeError,
			Err: &core.SequenceError{
				Kind:        core.ErrorNetworkUnreachable,
				Message:     "Couldn't connect to global counter. Directly visit https://counter.example.test/ to get a sequence if issue persists",
				FallbackURL: "https://counter.example.test/",
			},
		},
	}
}

func TestFormatters(t *testing.T) {
	outcomes := sampleOutcomes()

	for _, format := range []Format{FormatTable, FormatMarkdown} {
		formatter := NewFormatter(format, 24*time.Hour)

		rendered, err := formatter.FormatOutcome(outcomes["generated"])
		require.NoError(t, err)
		require.Contains(t, rendered, "42-abc.sql")
		require.Contains(t, rendered, "generated")
		require.NotContains(t, rendered, "You cannot generate")

		rendered, err = formatter.FormatOutcome(outcomes["blocked"])
		require.NoError(t, err)
		require.Contains(t, rendered, "42-abc.sql")
		require.Contains(t, rendered, "within a span of 24 hours")

		rendered, err = formatter.FormatOutcome(outcomes["error"])
		require.NoError(t, err)
		require.Contains(t, rendered, "Couldn't connect to global counter")
		require.Contains(t, rendered, "https://counter.example.test/")

		rendered, err = formatter.FormatOutcome(nil)
		require.NoError(t, err)
		require.Empty(t, rendered)
	}
}

func TestJSONFormatterOutcome(t *testing.T) {
	formatter := NewFormatter(FormatJSON, 24*time.Hour)

	rendered, err := formatter.FormatOutcome(sampleOutcomes()["blocked"])
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(rendered), &doc))
	require.Equal(t, "blocked", doc["kind"])
	require.Equal(t, "42-abc.sql", doc["token"])
	require.Equal(t, "inv-blocked", doc["invocation_id"])
	require.Equal(t, "2020-01-01T00:00:00Z", doc["issued_at"])
	require.True(t, strings.HasPrefix(doc["message"].(string), "You cannot generate"))
	require.NotContains(t, doc, "error")

	rendered, err = formatter.FormatOutcome(sampleOutcomes()["error"])
	require.NoError(t, err)
	require.Contains(t, rendered, `"kind": "network_unreachable"`)
	require.Contains(t, rendered, `"fallback_url": "https://counter.example.test/"`)
	require.NotContains(t, rendered, "issued_at")
}

func TestFormatStatus(t *testing.T) {
	issued := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	blocked := &Status{
		Backend:       "file",
		Location:      "/tmp/spsa.cfg",
		Present:       true,
		Token:         "42-abc.sql",
		IssuedAt:      issued,
		NextAllowedAt: issued.Add(24 * time.Hour),
		Remaining:     2 * time.Hour,
		Cooldown:      24 * time.Hour,
	}
	empty := &Status{Backend: "file", Location: "/tmp/spsa.cfg", Allowed: true, Cooldown: 24 * time.Hour}

	for _, format := range []Format{FormatTable, FormatMarkdown} {
		formatter := NewFormatter(format, 24*time.Hour)

		rendered, err := formatter.FormatStatus(blocked)
		require.NoError(t, err)
		require.Contains(t, rendered, "42-abc.sql")
		require.Contains(t, rendered, "blocked (2 hours remaining)")

		rendered, err = formatter.FormatStatus(empty)
		require.NoError(t, err)
		require.Contains(t, rendered, "none")
		require.Contains(t, rendered, "allowed")
	}

	rendered, err := NewFormatter(FormatJSON, 24*time.Hour).FormatStatus(blocked)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(rendered), &doc))
	require.Equal(t, "file", doc["backend"])
	require.Equal(t, float64(86400), doc["cooldown_seconds"])
	require.Equal(t, float64(7200), doc["remaining_seconds"])
	require.Equal(t, false, doc["allowed"])
}
