package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/scriptseq/scriptseq/internal/core"
	"github.com/scriptseq/scriptseq/internal/core/counter"
)

// Orchestrator runs one generate invocation: consult the stored record, apply
// the cooldown, and either return the cached token or fetch, persist, and
// return a new one.
type Orchestrator struct {
	Store       StateStore
	Fetcher     Fetcher
	Limiter     *RateLimiter
	FallbackURL string
	Clock       func() time.Time
}

// StateStore holds the single most recent generation record.
type StateStore interface {
	Read(ctx context.Context) (*core.SequenceRecord, error)
	Write(ctx context.Context, record core.SequenceRecord) error
}

// Fetcher obtains a new value from the counter service.
type Fetcher interface {
	FetchSequence(ctx context.Context) (*core.CounterResponse, error)
}

// Generate never returns nil. Blocked is a successful outcome; failures are
// reported through Outcome.Err rather than a Go error so callers handle every
// ending in one place.
func (o *Orchestrator) Generate(ctx context.Context) *core.Outcome {
	if ctx == nil {
		ctx = context.Background()
	}

	outcome := &core.Outcome{InvocationID: uuid.New().String()}

	if o == nil || o.Store == nil || o.Fetcher == nil {
		return o.fail(outcome, core.ErrorUnexpected, errors.New("sequence generator is not configured"))
	}

	record, err := o.Store.Read(ctx)
	if err != nil {
		if errors.Is(err, core.ErrCorruptState) {
			return o.fail(outcome, core.ErrorCorruptState, err)
		}
		return o.fail(outcome, core.ErrorUnexpected, fmt.Errorf("read sequence state: %w", err))
	}

	now := o.now()
	limiter := o.limiter()

	if allowed, _ := limiter.AllowAt(now, record); !allowed {
		outcome.Kind = core.OutcomeBlocked
		outcome.Token = record.Token
		outcome.IssuedAt = record.IssuedAt
		outcome.NextAllowedAt = limiter.NextAllowedAt(record)
		return outcome
	}

	resp, err := o.Fetcher.FetchSequence(ctx)
	if err != nil {
		if counter.IsNetwork(err) {
			return o.fail(outcome, core.ErrorNetworkUnreachable, err)
		}
		return o.fail(outcome, core.ErrorUnexpected, err)
	}

	next := core.SequenceRecord{
		IssuedAt: now.Truncate(core.TimestampResolution),
		Token:    resp.SequenceToken(),
	}

	if err := o.Store.Write(ctx, next); err != nil {
		outcome.Token = next.Token
		return o.fail(outcome, core.ErrorUnexpected, fmt.Errorf("persist sequence state: %w", err))
	}

	outcome.Kind = core.OutcomeGenerated
	outcome.Token = next.Token
	outcome.IssuedAt = next.IssuedAt
	outcome.NextAllowedAt = limiter.NextAllowedAt(&next)
	return outcome
}

func (o *Orchestrator) fail(outcome *core.Outcome, kind core.ErrorKind, err error) *core.Outcome {
	fallback := counter.DefaultBaseURL
	if o != nil && o.FallbackURL != "" {
		fallback = o.FallbackURL
	}

	var message string
	switch kind {
	case core.ErrorNetworkUnreachable:
		message = fmt.Sprintf("Couldn't connect to global counter. Directly visit %s to get a sequence if issue persists", fallback)
	case core.ErrorCorruptState:
		message = fmt.Sprintf("Stored sequence state could not be read: %v", err)
		fallback = ""
	default:
		message = fmt.Sprintf("%v. Directly visit %s to get a sequence if issue persists", err, fallback)
	}

	outcome.Kind = core.OutcomeError
	outcome.Err = &core.SequenceError{
		Kind:        kind,
		Message:     message,
		FallbackURL: fallback,
		Cause:       err,
	}
	return outcome
}

func (o *Orchestrator) limiter() *RateLimiter {
	if o != nil && o.Limiter != nil {
		return o.Limiter
	}
	return &RateLimiter{Cooldown: DefaultCooldown}
}

func (o *Orchestrator) now() time.Time {
	if o != nil && o.Clock != nil {
		return o.Clock().UTC()
	}
	return time.Now().UTC()
}
