package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/scriptseq/scriptseq/internal/core"
)

func TestTicksConversion(t *testing.T) {
	t.Run("UnixEpoch", func(t *testing.T) {
		require.Equal(t, int64(621355968000000000), TicksFromTime(time.Unix(0, 0)))
	})

	t.Run("KnownInstant", func(t *testing.T) {
		instant := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		require.Equal(t, int64(637134336000000000), TicksFromTime(instant))
		require.True(t, instant.Equal(TimeFromTicks(637134336000000000)))
	})

	t.Run("SubTickPrecisionDropped", func(t *testing.T) {
		instant := time.Date(2025, 6, 1, 12, 0, 0, 150, time.UTC)
		back := TimeFromTicks(TicksFromTime(instant))
		require.True(t, back.Equal(instant.Truncate(core.TimestampResolution)))
	})

	t.Run("BeforeUnixEpoch", func(t *testing.T) {
		instant := time.Date(1969, 12, 31, 23, 59, 59, 999999900, time.UTC)
		require.True(t, instant.Equal(TimeFromTicks(TicksFromTime(instant))))
	})

	t.Run("NonUTCInput", func(t *testing.T) {
		zone := time.FixedZone("UTC+3", 3*60*60)
		local := time.Date(2025, 1, 1, 3, 0, 0, 0, zone)
		require.Equal(t, TicksFromTime(local.UTC()), TicksFromTime(local))
	})
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	record := core.SequenceRecord{
		IssuedAt: time.Date(2025, 3, 4, 5, 6, 7, 123456700, time.UTC),
		Token:    "42-abc.sql",
	}

	data, err := EncodeRecord(record)
	require.NoError(t, err)
	require.Equal(t, "638766615671234567,42-abc.sql", string(data))

	decoded, err := DecodeRecord(data)
	require.NoError(t, err)
	require.True(t, record.IssuedAt.Equal(decoded.IssuedAt))
	require.Equal(t, record.Token, decoded.Token)
}

func TestDecodeRecordToleratesTrailingNewline(t *testing.T) {
	decoded, err := DecodeRecord([]byte("637134336000000000,7-xyz.sql\r\n"))
	require.NoError(t, err)
	require.Equal(t, "7-xyz.sql", decoded.Token)
	require.True(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).Equal(decoded.IssuedAt))
}

func TestDecodeRecordCorrupt(t *testing.T) {
	cases := map[string]string{
		"Empty":           "",
		"MissingComma":    "63713433600000000042-abc.sql",
		"ExtraField":      "637134336000000000,42-abc.sql,extra",
		"NonNumericTicks": "yesterday,42-abc.sql",
		"NegativeTicks":   "-5,42-abc.sql",
		"EmptyToken":      "637134336000000000,",
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeRecord([]byte(content))
			require.Error(t, err)
			require.ErrorIs(t, err, ErrCorruptState)
			require.ErrorIs(t, err, core.ErrCorruptState)

			var corrupt *CorruptStateError
			require.True(t, errors.As(err, &corrupt))
			require.NotEmpty(t, corrupt.Reason)
		})
	}
}

func TestEncodeRecordRejectsUnencodableTokens(t *testing.T) {
	now := time.Now().UTC()

	_, err := EncodeRecord(core.SequenceRecord{IssuedAt: now, Token: "1-a,b.sql"})
	require.Error(t, err)

	_, err = EncodeRecord(core.SequenceRecord{IssuedAt: now, Token: "1-a\nb.sql"})
	require.Error(t, err)

	_, err = EncodeRecord(core.SequenceRecord{IssuedAt: now, Token: " "})
	require.Error(t, err)
}
