package stream

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectEnvelopes(sink *[]Envelope) Sink {
	return SinkFunc(func(e Envelope) error {
		*sink = append(*sink, e)
		return nil
	})
}

func TestRelayForwardsVerbatimWithTerminal(t *testing.T) {
	r := NewChunkReader(&scriptedReader{chunks: []string{`{"text":"a"}`, "b"}, err: io.EOF})

	var got []Envelope
	err := Relay(r, collectEnvelopes(&got))
	require.NoError(t, err)

	require.Len(t, got, 3)
	// Chunks are relayed raw, not reinterpreted.
	assert.Equal(t, Envelope{Text: `{"text":"a"}`}, got[0])
	assert.Equal(t, Envelope{Text: "b"}, got[1])
	assert.Equal(t, Envelope{Done: true}, got[2])
}

func TestRelayErrorEnvelopeOnAbnormalTermination(t *testing.T) {
	broken := errors.New("connection reset")
	r := NewChunkReader(&scriptedReader{chunks: []string{"partial"}, err: broken})

	var got []Envelope
	err := Relay(r, collectEnvelopes(&got))
	assert.ErrorIs(t, err, broken)

	require.Len(t, got, 2)
	assert.Equal(t, Envelope{Text: "partial"}, got[0], "already-sent envelopes are not retracted")
	assert.True(t, got[1].Done)
	assert.Equal(t, broken.Error(), got[1].Error)
}

func TestRelayExactlyOneTerminalEnvelope(t *testing.T) {
	for name, src := range map[string]*scriptedReader{
		"success": {chunks: []string{"x", "y"}, err: io.EOF},
		"failure": {chunks: []string{"x"}, err: errors.New("boom")},
		"empty":   {err: io.EOF},
	} {
		t.Run(name, func(t *testing.T) {
			var got []Envelope
			Relay(NewChunkReader(src), collectEnvelopes(&got))

			terminals := 0
			for i, e := range got {
				if e.Done {
					terminals++
					assert.Equal(t, len(got)-1, i, "terminal envelope must be last")
				}
			}
			assert.Equal(t, 1, terminals)
		})
	}
}

func TestRelayStopsOnSinkFailure(t *testing.T) {
	r := NewChunkReader(&scriptedReader{chunks: []string{"a", "b", "c"}, err: io.EOF})

	gone := errors.New("caller disconnected")
	sent := 0
	err := Relay(r, SinkFunc(func(e Envelope) error {
		sent++
		if sent >= 2 {
			return gone
		}
		return nil
	}))

	assert.ErrorIs(t, err, gone)
	assert.Equal(t, 2, sent, "relay must stop on the first sink failure")

	var sinkErr *SinkError
	assert.ErrorAs(t, err, &sinkErr, "sink failures must be distinguishable from stream errors")
}
