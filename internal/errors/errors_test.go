package errors

import (
	stderrors "errors"
	"testing"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/stretchr/testify/require"

	"github.com/scriptseq/scriptseq/internal/core"
)

func TestFromOutcomeSuccessIsNil(t *testing.T) {
	require.Nil(t, FromOutcome(&core.Outcome{Kind: core.OutcomeGenerated, Token: "42-abc.sql"}))
	require.Nil(t, FromOutcome(&core.Outcome{Kind: core.OutcomeBlocked, Token: "42-abc.sql"}))
}

func TestFromOutcomeNetwork(t *testing.T) {
	outcome := &core.Outcome{
		InvocationID: "inv-1",
		Kind:         core.OutcomeError,
		Err: &core.SequenceError{
			Kind:        core.ErrorNetworkUnreachable,
			Message:     "Couldn't connect to global counter",
			FallbackURL: "https://counter.example.test/",
			Cause:       stderrors.New("connection refused"),
		},
	}

	envelope := FromOutcome(outcome)
	require.NotNil(t, envelope)
	require.Equal(t, CodeNetworkUnreachable, envelope.Code)
	require.Equal(t, "Couldn't connect to global counter", envelope.Message)
	require.Equal(t, "inv-1", envelope.CorrelationID)
	require.Equal(t, "https://counter.example.test/", envelope.Context["fallback_url"])
	require.Equal(t, "connection refused", envelope.Context["wrapped_error"])
	require.Equal(t, "inv-1", envelope.Context["invocation_id"])
}

func TestFromOutcomeMissingError(t *testing.T) {
	envelope := FromOutcome(&core.Outcome{Kind: core.OutcomeError})
	require.Equal(t, CodeUnexpected, envelope.Code)
}

func TestCodeForKind(t *testing.T) {
	require.Equal(t, CodeCorruptState, CodeForKind(core.ErrorCorruptState))
	require.Equal(t, CodeNetworkUnreachable, CodeForKind(core.ErrorNetworkUnreachable))
	require.Equal(t, CodeUnexpected, CodeForKind(core.ErrorUnexpected))
}

func TestExitCodeForOutcome(t *testing.T) {
	require.Equal(t, ExitSuccess, ExitCodeForOutcome(&core.Outcome{Kind: core.OutcomeGenerated}))
	require.Equal(t, ExitSuccess, ExitCodeForOutcome(&core.Outcome{Kind: core.OutcomeBlocked}))
	require.Equal(t, foundry.ExitFailure, ExitCodeForOutcome(nil))

	cases := map[core.ErrorKind]foundry.ExitCode{
		core.ErrorCorruptState:       foundry.ExitConfigInvalid,
		core.ErrorNetworkUnreachable: foundry.ExitExternalServiceUnavailable,
		core.ErrorUnexpected:         foundry.ExitFailure,
	}
	for kind, want := range cases {
		outcome := &core.Outcome{Kind: core.OutcomeError, Err: &core.SequenceError{Kind: kind}}
		require.Equal(t, want, ExitCodeForOutcome(outcome), kind)
	}
}

func TestEnsureEnvelope(t *testing.T) {
	require.Equal(t, CodeInternal, EnsureEnvelope(nil).Code)

	wrapped := EnsureEnvelope(stderrors.New("boom"))
	require.Equal(t, CodeInternal, wrapped.Code)
	require.Equal(t, "boom", wrapped.Context["wrapped_error"])

	original := NewConfigInvalidError("bad config")
	require.Same(t, original, EnsureEnvelope(original))
}

func TestWrapConfigInvalid(t *testing.T) {
	envelope := WrapConfigInvalid(stderrors.New("cooldown must be positive"), "Invalid configuration")
	require.Equal(t, CodeConfigInvalid, envelope.Code)
	require.NotEmpty(t, envelope.CorrelationID)
	require.Equal(t, "cooldown must be positive", envelope.Context["wrapped_error"])
}
