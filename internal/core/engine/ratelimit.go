package engine

import (
	"time"

	"github.com/scriptseq/scriptseq/internal/core"
)

// DefaultCooldown is the minimum time between two successful generations.
const DefaultCooldown = 24 * time.Hour

// IsAllowed reports whether a new generation may happen at now.
// Without a record generation is always allowed; otherwise the cooldown must
// have fully elapsed, and reaching it exactly counts as elapsed.
func IsAllowed(now time.Time, record *core.SequenceRecord, cooldown time.Duration) bool {
	if record == nil {
		return true
	}
	return !record.IssuedAt.Add(cooldown).After(now)
}

// RateLimiter applies the generation cooldown.
type RateLimiter struct {
	Cooldown time.Duration
	Clock    func() time.Time
}

// Allow checks the record against the current time and returns the remaining
// wait when generation is not yet permitted.
func (r *RateLimiter) Allow(record *core.SequenceRecord) (bool, time.Duration) {
	return r.AllowAt(r.now(), record)
}

// AllowAt is Allow evaluated at a caller-supplied instant.
func (r *RateLimiter) AllowAt(now time.Time, record *core.SequenceRecord) (bool, time.Duration) {
	if IsAllowed(now, record, r.cooldown()) {
		return true, 0
	}
	return false, r.NextAllowedAt(record).Sub(now)
}

// NextAllowedAt returns when the record stops blocking generation. It is the
// zero time when there is no record.
func (r *RateLimiter) NextAllowedAt(record *core.SequenceRecord) time.Time {
	if record == nil {
		return time.Time{}
	}
	return record.IssuedAt.Add(r.cooldown())
}

// CooldownDuration returns the effective cooldown.
func (r *RateLimiter) CooldownDuration() time.Duration {
	return r.cooldown()
}

func (r *RateLimiter) cooldown() time.Duration {
	if r == nil || r.Cooldown <= 0 {
		return DefaultCooldown
	}
	return r.Cooldown
}

func (r *RateLimiter) now() time.Time {
	if r != nil && r.Clock != nil {
		return r.Clock()
	}
	return time.Now().UTC()
}
