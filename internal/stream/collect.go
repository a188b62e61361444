package stream

import (
	"io"
	"strings"
)

// Collect drains the chunk sequence, interprets each chunk, and returns the
// concatenation of the extracted text in arrival order. If the sequence
// terminates abnormally the partial accumulation is discarded and the
// error is returned: a truncated answer must never be mistaken for a
// complete one.
func Collect(chunks *ChunkReader) (string, error) {
	var b strings.Builder
	for {
		chunk, err := chunks.Next()
		if err == io.EOF {
			return b.String(), nil
		}
		if err != nil {
			return "", err
		}
		b.WriteString(Interpret(chunk).Text)
	}
}
