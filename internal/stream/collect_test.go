package stream

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedReader delivers each entry as exactly one Read, then finishes
// with err (io.EOF for normal termination). It simulates transport chunk
// boundaries, which bufio-style readers would otherwise erase.
type scriptedReader struct {
	chunks []string
	err    error
}

func (s *scriptedReader) Read(p []byte) (int, error) {
	if len(s.chunks) == 0 {
		return 0, s.err
	}
	n := copy(p, s.chunks[0])
	if n == len(s.chunks[0]) {
		s.chunks = s.chunks[1:]
	} else {
		s.chunks[0] = s.chunks[0][n:]
	}
	return n, nil
}

func TestChunkReaderPreservesBoundaries(t *testing.T) {
	r := NewChunkReader(&scriptedReader{chunks: []string{"abc", "def"}, err: io.EOF})

	chunk, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "abc", chunk)

	chunk, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, "def", chunk)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestChunkReaderDeferredError(t *testing.T) {
	broken := errors.New("connection reset")
	r := NewChunkReader(io.MultiReader(strings.NewReader("tail"), &scriptedReader{err: broken}))

	chunk, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "tail", chunk)

	_, err = r.Next()
	assert.ErrorIs(t, err, broken)
}

func TestCollectConcatenatesInOrder(t *testing.T) {
	chunks := []string{`{"text":"one "}`, "two ", `{"delta":{"content":"three"}}`}
	r := NewChunkReader(&scriptedReader{chunks: chunks, err: io.EOF})

	got, err := Collect(r)
	require.NoError(t, err)
	assert.Equal(t, "one two three", got)
}

func TestCollectMatchesPerChunkInterpretation(t *testing.T) {
	chunks := []string{`{"content":"a"}`, `{"x":1}`, "raw"}
	var want strings.Builder
	for _, c := range chunks {
		want.WriteString(Interpret(c).Text)
	}

	r := NewChunkReader(&scriptedReader{chunks: chunks, err: io.EOF})
	got, err := Collect(r)
	require.NoError(t, err)
	assert.Equal(t, want.String(), got)
}

func TestCollectAbnormalTerminationDiscardsPartial(t *testing.T) {
	broken := errors.New("stream interrupted")
	r := NewChunkReader(&scriptedReader{chunks: []string{"F1", "F2"}, err: broken})

	got, err := Collect(r)
	assert.ErrorIs(t, err, broken)
	assert.Empty(t, got, "a truncated answer must not be returned as success")
}

func TestCollectEmptyStream(t *testing.T) {
	r := NewChunkReader(&scriptedReader{err: io.EOF})
	got, err := Collect(r)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}
