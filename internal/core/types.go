package core

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// SequenceSuffix is appended to every composed sequence token.
const SequenceSuffix = ".sql"

// TimestampResolution is the precision persisted records keep.
const TimestampResolution = 100 * time.Nanosecond

// ErrCorruptState is matched by state stores' parse failures.
var ErrCorruptState = errors.New("corrupt sequence state")

// SequenceRecord is the single persisted generation record.
type SequenceRecord struct {
	IssuedAt time.Time `json:"issued_at"`
	Token    string    `json:"token"`
}

// CounterResponse is the counter service reply for one generation.
type CounterResponse struct {
	NumericID int64  `json:"numeric_id"`
	Token     string `json:"token"`
}

// SequenceToken composes the identifier handed to the user.
func (r CounterResponse) SequenceToken() string {
	return strconv.FormatInt(r.NumericID, 10) + "-" + r.Token + SequenceSuffix
}

// OutcomeKind identifies how an invocation ended.
type OutcomeKind string

const (
	OutcomeGenerated OutcomeKind = "generated"
	OutcomeBlocked   OutcomeKind = "blocked"
	OutcomeError     OutcomeKind = "error"
)

// ErrorKind classifies failed invocations.
type ErrorKind string

const (
	ErrorCorruptState       ErrorKind = "corrupt_state"
	ErrorNetworkUnreachable ErrorKind = "network_unreachable"
	ErrorUnexpected         ErrorKind = "unexpected"
)

// SequenceError describes a failed invocation.
type SequenceError struct {
	Kind        ErrorKind `json:"kind"`
	Message     string    `json:"message"`
	FallbackURL string    `json:"fallback_url,omitempty"`
	Cause       error     `json:"-"`
}

func (e *SequenceError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil && e.Message == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	return e.Message
}

func (e *SequenceError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Outcome is the result of one generate invocation.
//
// Generated and Blocked both carry a Token. Error carries Err and, when the
// failure happened after a successful fetch, the fetched Token as well.
type Outcome struct {
	InvocationID  string         `json:"invocation_id"`
	Kind          OutcomeKind    `json:"kind"`
	Token         string         `json:"token,omitempty"`
	IssuedAt      time.Time      `json:"issued_at,omitzero"`
	NextAllowedAt time.Time      `json:"next_allowed_at,omitzero"`
	Err           *SequenceError `json:"error,omitempty"`
}

// OK reports whether the outcome is a defined success (generated or blocked).
func (o *Outcome) OK() bool {
	return o != nil && o.Kind != OutcomeError
}
