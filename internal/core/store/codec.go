package store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/scriptseq/scriptseq/internal/core"
)

// Ticks are 100ns intervals since 0001-01-01T00:00:00Z, the resolution the
// state file has always been written with.
const (
	ticksPerSecond = int64(10_000_000)
	nanosPerTick   = int64(100)
	unixEpochTicks = int64(621_355_968_000_000_000)
	maxTicks       = int64(3_155_378_975_999_999_999)
)

// ErrCorruptState matches any CorruptStateError via errors.Is.
var ErrCorruptState = core.ErrCorruptState

// CorruptStateError reports a stored record that exists but cannot be parsed.
type CorruptStateError struct {
	Location string
	Reason   string
	Err      error
}

func (e *CorruptStateError) Error() string {
	if e.Location == "" {
		return fmt.Sprintf("%s: %s", ErrCorruptState, e.Reason)
	}
	return fmt.Sprintf("%s at %s: %s", ErrCorruptState, e.Location, e.Reason)
}

func (e *CorruptStateError) Is(target error) bool {
	return target == ErrCorruptState
}

func (e *CorruptStateError) Unwrap() error {
	return e.Err
}

// TicksFromTime converts t to ticks. Sub-tick precision is dropped.
func TicksFromTime(t time.Time) int64 {
	t = t.UTC()
	return unixEpochTicks + t.Unix()*ticksPerSecond + int64(t.Nanosecond())/nanosPerTick
}

// TimeFromTicks converts ticks back to a UTC time.
func TimeFromTicks(ticks int64) time.Time {
	delta := ticks - unixEpochTicks
	sec := delta / ticksPerSecond
	rem := delta % ticksPerSecond
	if rem < 0 {
		rem += ticksPerSecond
		sec--
	}
	return time.Unix(sec, rem*nanosPerTick).UTC()
}

// EncodeRecord renders a record as the single-line "ticks,token" form.
func EncodeRecord(record core.SequenceRecord) ([]byte, error) {
	if err := validateToken(record.Token); err != nil {
		return nil, err
	}
	line := strconv.FormatInt(TicksFromTime(record.IssuedAt), 10) + "," + record.Token
	return []byte(line), nil
}

// DecodeRecord parses the single-line "ticks,token" form.
// Surrounding whitespace, such as a trailing newline, is ignored.
func DecodeRecord(data []byte) (*core.SequenceRecord, error) {
	line := strings.TrimSpace(string(data))
	fields := strings.Split(line, ",")
	if len(fields) != 2 {
		return nil, &CorruptStateError{Reason: fmt.Sprintf("expected 2 comma-separated fields, found %d", len(fields))}
	}
	return decodeFields(fields[0], fields[1])
}

func decodeFields(rawTicks, rawToken string) (*core.SequenceRecord, error) {
	ticks, err := strconv.ParseInt(strings.TrimSpace(rawTicks), 10, 64)
	if err != nil {
		return nil, &CorruptStateError{Reason: fmt.Sprintf("timestamp %q is not numeric", rawTicks), Err: err}
	}
	if ticks < 0 || ticks > maxTicks {
		return nil, &CorruptStateError{Reason: fmt.Sprintf("timestamp %d is out of range", ticks)}
	}

	token := strings.TrimSpace(rawToken)
	if token == "" {
		return nil, &CorruptStateError{Reason: "sequence token is empty"}
	}

	return &core.SequenceRecord{
		IssuedAt: TimeFromTicks(ticks),
		Token:    token,
	}, nil
}

func validateToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("sequence token is required")
	}
	if strings.ContainsAny(token, ",\r\n") {
		return fmt.Errorf("sequence token %q cannot contain commas or line breaks", token)
	}
	return nil
}

func withLocation(err error, location string) error {
	var corrupt *CorruptStateError
	if errors.As(err, &corrupt) && corrupt.Location == "" {
		corrupt.Location = location
	}
	return err
}
