package errors

import (
	"github.com/fulmenhq/gofulmen/errors"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/google/uuid"

	"github.com/scriptseq/scriptseq/internal/core"
)

// ExitSuccess is returned for generated and blocked outcomes.
const ExitSuccess foundry.ExitCode = 0

// Error codes carried by envelopes built in this package.
const (
	CodeCorruptState       = "CORRUPT_STATE"
	CodeNetworkUnreachable = "NETWORK_UNREACHABLE"
	CodeUnexpected         = "UNEXPECTED_ERROR"
	CodeConfigInvalid      = "CONFIG_INVALID"
	CodeStateNotFound      = "STATE_NOT_FOUND"
	CodeInternal           = "INTERNAL_ERROR"
)

func NewConfigInvalidError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeConfigInvalid, message)
}

func NewStateNotFoundError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeStateNotFound, message)
}

// WrapConfigInvalid wraps a configuration failure, keeping the cause in context.
func WrapConfigInvalid(err error, message string) *errors.ErrorEnvelope {
	envelope := errors.NewErrorEnvelope(CodeConfigInvalid, message)
	envelope = envelope.WithCorrelationID(uuid.New().String())
	return withWrappedError(envelope, err)
}

// FromOutcome converts a failed outcome into an envelope. It returns nil for
// generated and blocked outcomes. The invocation ID doubles as correlation ID.
func FromOutcome(outcome *core.Outcome) *errors.ErrorEnvelope {
	if outcome == nil {
		return EnsureEnvelope(nil)
	}
	if outcome.OK() {
		return nil
	}

	seqErr := outcome.Err
	if seqErr == nil {
		seqErr = &core.SequenceError{Kind: core.ErrorUnexpected, Message: "sequence generation failed"}
	}

	envelope := errors.NewErrorEnvelope(CodeForKind(seqErr.Kind), seqErr.Message)
	if outcome.InvocationID != "" {
		envelope = envelope.WithCorrelationID(outcome.InvocationID)
	}

	details := map[string]interface{}{
		"error_kind": string(seqErr.Kind),
	}
	if outcome.InvocationID != "" {
		details["invocation_id"] = outcome.InvocationID
	}
	if seqErr.FallbackURL != "" {
		details["fallback_url"] = seqErr.FallbackURL
	}
	if outcome.Token != "" {
		details["sequence_token"] = outcome.Token
	}
	if seqErr.Cause != nil {
		details["wrapped_error"] = seqErr.Cause.Error()
	}
	if updated, err := envelope.WithContext(details); err == nil {
		envelope = updated
	}

	severity := errors.SeverityHigh
	if seqErr.Kind == core.ErrorNetworkUnreachable {
		severity = errors.SeverityMedium
	}
	if updated, err := envelope.WithSeverity(severity); err == nil {
		envelope = updated
	}
	return envelope
}

// CodeForKind maps an outcome error kind to its envelope code.
func CodeForKind(kind core.ErrorKind) string {
	switch kind {
	case core.ErrorCorruptState:
		return CodeCorruptState
	case core.ErrorNetworkUnreachable:
		return CodeNetworkUnreachable
	default:
		return CodeUnexpected
	}
}

// ExitCodeForOutcome resolves the process exit code for an outcome.
// Generated and blocked runs both succeed.
func ExitCodeForOutcome(outcome *core.Outcome) foundry.ExitCode {
	if outcome == nil {
		return foundry.ExitFailure
	}
	if outcome.OK() {
		return ExitSuccess
	}
	if outcome.Err == nil {
		return foundry.ExitFailure
	}
	return ExitCodeForKind(outcome.Err.Kind)
}

// ExitCodeForKind resolves the exit code for an error kind.
func ExitCodeForKind(kind core.ErrorKind) foundry.ExitCode {
	switch kind {
	case core.ErrorCorruptState:
		return foundry.ExitConfigInvalid
	case core.ErrorNetworkUnreachable:
		return foundry.ExitExternalServiceUnavailable
	default:
		return foundry.ExitFailure
	}
}

// EnsureEnvelope normalizes any error into a gofulmen ErrorEnvelope.
func EnsureEnvelope(err error) *errors.ErrorEnvelope {
	if err == nil {
		env := errors.NewErrorEnvelope(CodeInternal, "unexpected nil error")
		env, _ = env.WithSeverity(errors.SeverityCritical)
		return env
	}

	if envelope, ok := err.(*errors.ErrorEnvelope); ok && envelope != nil {
		return envelope
	}

	env := errors.NewErrorEnvelope(CodeInternal, "unexpected error")
	env, _ = env.WithContext(map[string]interface{}{
		"wrapped_error": err.Error(),
	})
	env, _ = env.WithSeverity(errors.SeverityHigh)
	return env
}

func withWrappedError(envelope *errors.ErrorEnvelope, err error) *errors.ErrorEnvelope {
	if envelope == nil || err == nil {
		return envelope
	}

	updated, updateErr := envelope.WithContext(map[string]interface{}{
		"wrapped_error": err.Error(),
	})
	if updateErr != nil {
		return envelope
	}
	return updated
}
